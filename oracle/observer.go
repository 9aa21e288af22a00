package oracle

import "lg/coach-energy-api/logger"

// CallEvent records metadata about a single oracle invocation.
type CallEvent struct {
	Task      Task
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about oracle calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	log *logger.Logger
}

func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log.With("component", "oracle")}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	kv := []interface{}{
		"task", event.Task,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
	}
	if event.Success {
		o.log.Debug("oracle call ok", kv...)
		return
	}
	o.log.Warn("oracle call failed", append(kv, "error_code", event.ErrorCode)...)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
