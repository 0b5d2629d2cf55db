package pipeline

import (
	"log/slog"
	"time"

	"github.com/cwbudde/algo-eeg/metrics"
)

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. Default slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics attaches a metrics collector. Default none.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) {
		p.metrics = c
	}
}

// WithClock sets the time source used for recordings, baselines and reports.
// Default time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithFrameSink registers a callback that receives every completed frame,
// including frames produced by Run.
func WithFrameSink(sink func(Frame)) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}
