package nutrition

import (
	"context"
	"sync"

	"lg/coach-energy-api/oracle"
)

// stubOracle returns a fixed reply (or error) and records every request.
type stubOracle struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []oracle.Request
}

func (s *stubOracle) Estimate(_ context.Context, req oracle.Request) (*oracle.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &oracle.Response{Text: s.text, Model: "stub"}, nil
}

func (s *stubOracle) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func ptr[T any](v T) *T { return &v }
