package telemetry

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Metrics wraps a DataDog statsd client for the per-pipeline-call
// counters and timers cmd/repet reports. A nil *Metrics is
// valid and every method becomes a no-op, so library callers never have
// to wire a real agent just to call a pipeline.
type Metrics struct {
	client *statsd.Client
}

// NewMetrics dials the DogStatsD agent at addr (typically
// "127.0.0.1:8125"), tagging every metric with namespace "repet.".
func NewMetrics(addr string) (*Metrics, error) {
	client, err := statsd.New(addr, statsd.WithNamespace("repet."))
	if err != nil {
		return nil, err
	}
	return &Metrics{client: client}, nil
}

// PipelineDuration records how long a separation call took, tagged by
// the pipeline name (original, extended, adaptive, sim, simonline).
func (m *Metrics) PipelineDuration(pipeline string, d time.Duration) {
	if m == nil || m.client == nil {
		return
	}
	_ = m.client.Timing("pipeline.duration", d, []string{"pipeline:" + pipeline}, 1)
}

// PipelineError increments a failure counter tagged by pipeline name.
func (m *Metrics) PipelineError(pipeline string) {
	if m == nil || m.client == nil {
		return
	}
	_ = m.client.Incr("pipeline.error", []string{"pipeline:" + pipeline}, 1)
}

// Close flushes and closes the underlying statsd client.
func (m *Metrics) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}
