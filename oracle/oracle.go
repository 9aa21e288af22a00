package oracle

import "context"

// Request is a single estimation prompt.
type Request struct {
	Task         Task
	SystemPrompt string
	UserPrompt   string
}

// Response holds the raw text returned by the oracle.
type Response struct {
	Text      string
	Model     string
	LatencyMs int64
	Cached    bool
}

// Oracle is the external estimation service. Implementations must honour
// ctx cancellation; callers always hold a deterministic fallback.
type Oracle interface {
	Estimate(ctx context.Context, req Request) (*Response, error)
}

// ResponseCache is implemented by oracles that keep answers between calls.
// Estimate never stores on its own; the caller decides what was usable.
type ResponseCache interface {
	Store(ctx context.Context, req Request, resp *Response)
	Evict(ctx context.Context, req Request)
}

// EstimateJSON sends req and decodes the response into T, running validator
// (if non-nil) on the decoded value. Any failure is reported as an error;
// callers route every error to their fallback path. With a ResponseCache,
// only answers that decode and validate are stored, and a cached answer that
// fails is evicted.
func EstimateJSON[T any](ctx context.Context, o Oracle, req Request, validator SchemaValidator[T]) (T, error) {
	var zero T
	if o == nil {
		return zero, ErrNotConfigured
	}
	resp, err := o.Estimate(ctx, req)
	if err != nil {
		return zero, err
	}
	out, err := ExtractJSON[T](resp.Text, validator)

	cache, ok := o.(ResponseCache)
	switch {
	case !ok:
	case err != nil && resp.Cached:
		cache.Evict(ctx, req)
	case err == nil && !resp.Cached:
		cache.Store(ctx, req, resp)
	}
	return out, err
}
