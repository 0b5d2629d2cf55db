// Package metrics exposes calibration pipeline counters through Prometheus.
//
// All methods are safe on a nil *Collector, so callers can leave metrics
// disabled without guarding every call.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eeg_calibration"

// Collector holds the pipeline metrics.
type Collector struct {
	samplesReceived  prometheus.Counter
	samplesDropped   prometheus.Counter
	windowsProcessed prometheus.Counter
	windowsShort     prometheus.Counter
	vectorsRecorded  *prometheus.CounterVec // by phase
	processDuration  prometheus.Histogram
	currentPhase     *prometheus.GaugeVec // 1 for the active phase, 0 otherwise
	contribution     prometheus.Gauge
}

// New registers the pipeline metrics on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Collector{
		samplesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_received_total",
			Help:      "Raw samples pushed into the ring buffer",
		}),
		samplesDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_dropped_total",
			Help:      "Unprocessed samples overwritten because the ring buffer was full",
		}),
		windowsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_processed_total",
			Help:      "Windows conditioned and turned into feature vectors",
		}),
		windowsShort: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_zeroed_total",
			Help:      "Windows too short to filter or analyse, emitted as zero vectors",
		}),
		vectorsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vectors_recorded_total",
			Help:      "Feature vectors appended to a phase recording",
		}, []string{"phase"}),
		processDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "window_processing_seconds",
			Help:      "Time spent conditioning and extracting one window",
			Buckets:   prometheus.ExponentialBuckets(50e-6, 2, 12),
		}),
		currentPhase: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_active",
			Help:      "1 for the active calibration phase",
		}, []string{"phase"}),
		contribution: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "smoothed_contribution",
			Help:      "Latest smoothed band contribution",
		}),
	}
}

// SamplesReceived adds n received samples.
func (c *Collector) SamplesReceived(n int) {
	if c == nil || n <= 0 {
		return
	}

	c.samplesReceived.Add(float64(n))
}

// SamplesDropped adds n dropped samples.
func (c *Collector) SamplesDropped(n int) {
	if c == nil || n <= 0 {
		return
	}

	c.samplesDropped.Add(float64(n))
}

// WindowProcessed records one processed window and its duration.
func (c *Collector) WindowProcessed(d time.Duration) {
	if c == nil {
		return
	}

	c.windowsProcessed.Inc()
	c.processDuration.Observe(d.Seconds())
}

// WindowZeroed counts a window the conditioner could not filter.
func (c *Collector) WindowZeroed() {
	if c == nil {
		return
	}

	c.windowsShort.Inc()
}

// VectorRecorded counts a vector appended during phase.
func (c *Collector) VectorRecorded(phase string) {
	if c == nil {
		return
	}

	c.vectorsRecorded.WithLabelValues(phase).Inc()
}

// SetPhase marks phase as the only active phase among all.
func (c *Collector) SetPhase(phase string, all []string) {
	if c == nil {
		return
	}

	for _, p := range all {
		v := 0.0
		if p == phase {
			v = 1
		}

		c.currentPhase.WithLabelValues(p).Set(v)
	}
}

// SetContribution publishes the latest smoothed contribution.
func (c *Collector) SetContribution(v float64) {
	if c == nil {
		return
	}

	c.contribution.Set(v)
}
