// Package baseline summarises the feature vectors recorded during the
// eyes-closed and eyes-open calibration phases.
//
// For every feature key the [Engine] reports mean, population standard
// deviation, extrema, median, quartiles and a histogram across all baseline
// windows. A baseline shorter than the configured minimum duration is still
// summarised; it carries a warning instead of failing.
package baseline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-eeg/feature"
	"github.com/cwbudde/algo-eeg/session"
)

// ErrInsufficientData is returned when the selected recordings hold no
// vectors.
var ErrInsufficientData = errors.New("baseline: no baseline vectors recorded")

const (
	// DefaultMinDuration is the shortest baseline that does not raise a
	// warning.
	DefaultMinDuration = 120 * time.Second
	// DefaultHistogramBins is the per-feature histogram resolution.
	DefaultHistogramBins = 10
)

// Config parameterises an Engine.
type Config struct {
	Policy        Policy
	MinDuration   time.Duration
	HistogramBins int
}

// DefaultConfig returns the default baseline configuration.
func DefaultConfig() Config {
	return Config{
		Policy:        CombinedEyes,
		MinDuration:   DefaultMinDuration,
		HistogramBins: DefaultHistogramBins,
	}
}

// Histogram holds bin counts over Edges[i] <= x < Edges[i+1].
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// FeatureStats summarises one feature across the baseline windows.
type FeatureStats struct {
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Median    float64   `json:"median"`
	Q25       float64   `json:"q25"`
	Q75       float64   `json:"q75"`
	Count     int       `json:"count"`
	Histogram Histogram `json:"histogram"`
}

// Stats is an immutable baseline summary.
type Stats struct {
	Features        map[string]FeatureStats `json:"features"`
	Windows         int                     `json:"windows"`
	Duration        time.Duration           `json:"-"`
	DurationSeconds float64                 `json:"duration_seconds"`
	Policy          Policy                  `json:"policy"`
	Warnings        []string                `json:"warnings,omitempty"`
	ComputedAt      time.Time               `json:"computed_at"`

	// Vectors are the raw baseline windows the summary was computed from.
	Vectors []feature.Vector `json:"-"`
}

// Feature returns the summary for one feature key.
func (s Stats) Feature(name string) (FeatureStats, bool) {
	fs, ok := s.Features[name]
	return fs, ok
}

// Values returns the raw baseline values of one feature key in window order.
func (s Stats) Values(name string) []float64 {
	out := make([]float64, 0, len(s.Vectors))

	for _, v := range s.Vectors {
		if x, ok := v.Get(name); ok {
			out = append(out, x)
		}
	}

	return out
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for the short-baseline warning.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the time source for Stats.ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine computes baseline statistics.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine returns an engine for cfg. Non-positive bin counts fall back to
// DefaultHistogramBins.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = DefaultHistogramBins
	}

	e := &Engine{cfg: cfg, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Compute summarises the recordings selected by the engine policy. Recordings
// of other phases are ignored.
func (e *Engine) Compute(recordings ...session.Recording) (Stats, error) {
	var (
		vectors  []feature.Vector
		duration time.Duration
	)

	for _, rec := range recordings {
		if !e.cfg.Policy.Includes(rec.Phase) {
			continue
		}

		vectors = append(vectors, rec.Vectors()...)
		duration += rec.Duration()
	}

	if len(vectors) == 0 {
		return Stats{}, fmt.Errorf("%w (policy %s)", ErrInsufficientData, e.cfg.Policy)
	}

	st := Stats{
		Features:        make(map[string]FeatureStats, feature.NumFeatures()),
		Windows:         len(vectors),
		Duration:        duration,
		DurationSeconds: duration.Seconds(),
		Policy:          e.cfg.Policy,
		ComputedAt:      e.now(),
		Vectors:         vectors,
	}

	rows := make([][]float64, len(vectors))
	for j, v := range vectors {
		rows[j] = v.Values()
	}

	column := make([]float64, len(vectors))

	for i, name := range feature.Names() {
		for j, row := range rows {
			column[j] = row[i]
		}

		fs, err := Summarize(column, e.cfg.HistogramBins)
		if err != nil {
			return Stats{}, fmt.Errorf("baseline: %s: %w", name, err)
		}

		st.Features[name] = fs
	}

	if duration < e.cfg.MinDuration {
		msg := fmt.Sprintf("baseline duration %s is below the recommended %s",
			duration.Round(time.Millisecond), e.cfg.MinDuration)
		st.Warnings = append(st.Warnings, msg)

		e.logger.Warn("short baseline",
			"duration", duration, "min_duration", e.cfg.MinDuration,
			"windows", len(vectors), "policy", e.cfg.Policy.String())
	}

	return st, nil
}

// Summarize computes the statistics of one feature column. The input is not
// modified.
func Summarize(values []float64, bins int) (FeatureStats, error) {
	if len(values) == 0 {
		return FeatureStats{}, ErrInsufficientData
	}

	data := stats.Float64Data(values)

	mean, err := stats.Mean(data)
	if err != nil {
		return FeatureStats{}, err
	}

	std, err := stats.StandardDeviation(data)
	if err != nil {
		return FeatureStats{}, err
	}

	lo, err := stats.Min(data)
	if err != nil {
		return FeatureStats{}, err
	}

	hi, err := stats.Max(data)
	if err != nil {
		return FeatureStats{}, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return FeatureStats{}, err
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return FeatureStats{
		Mean:      mean,
		Std:       std,
		Min:       lo,
		Max:       hi,
		Median:    median,
		Q25:       stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Q75:       stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Count:     len(values),
		Histogram: histogram(sorted, bins),
	}, nil
}

// histogram bins sorted data into equal-width bins spanning its range. A
// constant column gets a unit-wide range centred on its value.
func histogram(sorted []float64, bins int) Histogram {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// The top edge is exclusive; nudge it so the maximum lands in the last bin.
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	return Histogram{
		Edges:  edges,
		Counts: stat.Histogram(nil, edges, sorted, nil),
	}
}
