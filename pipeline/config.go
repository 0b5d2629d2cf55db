package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-eeg/condition"
	"github.com/cwbudde/algo-eeg/feature"
	"github.com/cwbudde/algo-eeg/smooth"
	"github.com/cwbudde/algo-eeg/stats/baseline"
	"github.com/cwbudde/algo-eeg/stats/significance"
)

// ErrInvalidConfig is returned by Validate, New and LoadConfig for unusable
// settings.
var ErrInvalidConfig = errors.New("pipeline: invalid configuration")

// Config holds every pipeline setting. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
	WindowSize   int     `yaml:"window_size" json:"window_size"`
	Hop          int     `yaml:"hop" json:"hop"`
	RingCapacity int     `yaml:"ring_capacity" json:"ring_capacity"`
	Channel      int     `yaml:"channel" json:"channel"`

	Filter    FilterConfig    `yaml:"filter" json:"filter"`
	Smoothing SmoothingConfig `yaml:"smoothing" json:"smoothing"`
	Baseline  BaselineConfig  `yaml:"baseline" json:"baseline"`
	Analysis  AnalysisConfig  `yaml:"analysis" json:"analysis"`
}

// FilterConfig configures signal conditioning.
type FilterConfig struct {
	MainsHz       float64 `yaml:"mains_hz" json:"mains_hz"`
	NotchQ        float64 `yaml:"notch_q" json:"notch_q"`
	BandLowHz     float64 `yaml:"band_low_hz" json:"band_low_hz"`
	BandHighHz    float64 `yaml:"band_high_hz" json:"band_high_hz"`
	BandOrder     int     `yaml:"band_order" json:"band_order"`
	Neighbourhood int     `yaml:"artifact_neighbourhood" json:"artifact_neighbourhood"`
	ArtifactSigma float64 `yaml:"artifact_sigma" json:"artifact_sigma"`
}

// SmoothingConfig configures the smoothed band contribution.
type SmoothingConfig struct {
	Alpha  float64         `yaml:"alpha" json:"alpha"`
	Band   feature.Band    `yaml:"band" json:"band"`
	MinSNR float64         `yaml:"min_snr" json:"min_snr"`
	Signal feature.Range   `yaml:"signal" json:"signal"`
	Noise  []feature.Range `yaml:"noise" json:"noise"`
}

// BaselineConfig configures baseline statistics.
type BaselineConfig struct {
	Policy        baseline.Policy `yaml:"policy" json:"policy"`
	MinDuration   time.Duration   `yaml:"min_duration" json:"min_duration"`
	HistogramBins int             `yaml:"histogram_bins" json:"histogram_bins"`
}

// AnalysisConfig configures task significance testing.
type AnalysisConfig struct {
	Alpha      float64  `yaml:"alpha" json:"alpha"`
	Iterations int      `yaml:"iterations" json:"iterations"`
	Seed       uint64   `yaml:"seed" json:"seed"`
	Features   []string `yaml:"features,omitempty" json:"features,omitempty"`
}

// DefaultConfig returns the defaults for a 512 Hz single-channel stream with
// 50 Hz mains.
func DefaultConfig() Config {
	cond := condition.DefaultConfig()
	base := baseline.DefaultConfig()
	sig := significance.DefaultConfig()

	return Config{
		SampleRate:   512,
		WindowSize:   512,
		Hop:          256,
		RingCapacity: 4 * 512,
		Filter: FilterConfig{
			MainsHz:       cond.MainsHz,
			NotchQ:        cond.NotchQ,
			BandLowHz:     cond.BandLowHz,
			BandHighHz:    cond.BandHighHz,
			BandOrder:     cond.BandOrder,
			Neighbourhood: cond.Neighbourhood,
			ArtifactSigma: cond.ArtifactSigma,
		},
		Smoothing: SmoothingConfig{
			Alpha:  smooth.DefaultAlpha,
			Band:   feature.Theta,
			MinSNR: smooth.DefaultMinSNR,
			Signal: feature.Range{Lo: 3, Hi: 9},
			Noise:  []feature.Range{{Lo: 1, Hi: 3}, {Lo: 9, Hi: 15}},
		},
		Baseline: BaselineConfig{
			Policy:        base.Policy,
			MinDuration:   base.MinDuration,
			HistogramBins: base.HistogramBins,
		},
		Analysis: AnalysisConfig{
			Alpha:      sig.Alpha,
			Iterations: sig.Iterations,
			Seed:       sig.Seed,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first unusable setting, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return invalid("sample_rate must be positive, got %g", c.SampleRate)
	case c.WindowSize < 2:
		return invalid("window_size must be at least 2, got %d", c.WindowSize)
	case c.Hop < 1 || c.Hop > c.WindowSize:
		return invalid("hop must be in [1, window_size], got %d", c.Hop)
	case c.RingCapacity < c.WindowSize:
		return invalid("ring_capacity %d is smaller than window_size %d", c.RingCapacity, c.WindowSize)
	case c.Channel < 0:
		return invalid("channel must be non-negative, got %d", c.Channel)
	case !(c.Smoothing.Alpha > 0 && c.Smoothing.Alpha <= 1):
		return invalid("smoothing.alpha must be in (0, 1], got %g", c.Smoothing.Alpha)
	case !c.Smoothing.Band.Valid():
		return invalid("smoothing.band %d is not a band", int(c.Smoothing.Band))
	case !c.Smoothing.Signal.Valid():
		return invalid("smoothing.signal %v is empty", c.Smoothing.Signal)
	case len(c.Smoothing.Noise) == 0:
		return invalid("smoothing.noise needs at least one band")
	case c.Baseline.MinDuration < 0:
		return invalid("baseline.min_duration must not be negative")
	case !(c.Analysis.Alpha > 0 && c.Analysis.Alpha < 1):
		return invalid("analysis.alpha must be in (0, 1), got %g", c.Analysis.Alpha)
	case c.Analysis.Iterations < 0:
		return invalid("analysis.iterations must not be negative, got %d", c.Analysis.Iterations)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func (c Config) conditionConfig() condition.Config {
	return condition.Config{
		SampleRate:    c.SampleRate,
		MainsHz:       c.Filter.MainsHz,
		NotchQ:        c.Filter.NotchQ,
		BandLowHz:     c.Filter.BandLowHz,
		BandHighHz:    c.Filter.BandHighHz,
		BandOrder:     c.Filter.BandOrder,
		Neighbourhood: c.Filter.Neighbourhood,
		ArtifactSigma: c.Filter.ArtifactSigma,
	}
}

func (c Config) featureConfig() feature.Config {
	fc := feature.DefaultConfig()
	fc.SampleRate = c.SampleRate
	fc.WindowSize = c.WindowSize
	fc.ShapeRange = feature.Range{Lo: c.Filter.BandLowHz, Hi: min(c.Filter.BandHighHz, c.SampleRate/2)}

	return fc
}

func (c Config) baselineConfig() baseline.Config {
	return baseline.Config{
		Policy:        c.Baseline.Policy,
		MinDuration:   c.Baseline.MinDuration,
		HistogramBins: c.Baseline.HistogramBins,
	}
}

func (c Config) significanceConfig() significance.Config {
	return significance.Config{
		Alpha:      c.Analysis.Alpha,
		Iterations: c.Analysis.Iterations,
		Seed:       c.Analysis.Seed,
		Features:   c.Analysis.Features,
	}
}
