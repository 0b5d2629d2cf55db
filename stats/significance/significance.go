// Package significance compares a task recording against baseline
// statistics.
//
// Per feature it reports z-scores, outliers and a two-sample comparison
// (Welch t-test and Mann-Whitney U, taking the smaller p-value) with Cohen's d.
// Across features it sums the per-feature p-values against a
// Bonferroni-style threshold and tests the cosine similarity of the mean
// vectors with a seeded permutation bootstrap.
package significance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-eeg/feature"
	"github.com/cwbudde/algo-eeg/session"
	"github.com/cwbudde/algo-eeg/stats/baseline"
)

var (
	// ErrMissingBaseline is returned when no baseline statistics are
	// available.
	ErrMissingBaseline = errors.New("significance: baseline not computed")
	// ErrInsufficientData is returned for an empty task recording.
	ErrInsufficientData = errors.New("significance: task recording is empty")
)

const (
	// Epsilon keeps z-scores finite for zero-variance baselines.
	Epsilon = 1e-10
	// OutlierZ is the |z| above which a task window is an outlier.
	OutlierZ = 2.0
	// ChangeSigmas is the baseline-std multiple a mean shift must exceed to
	// count as a significant change.
	ChangeSigmas = 2.0

	DefaultAlpha      = 0.05
	DefaultIterations = 1000
	DefaultSeed       = 42
)

// Config parameterises an Engine.
type Config struct {
	Alpha      float64
	Iterations int
	Seed       uint64

	// Features restricts the analysis to these keys; empty means all.
	Features []string
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		Alpha:      DefaultAlpha,
		Iterations: DefaultIterations,
		Seed:       DefaultSeed,
	}
}

// FeatureResult is the per-feature task analysis.
type FeatureResult struct {
	TaskMean          float64   `json:"task_mean"`
	TaskStd           float64   `json:"task_std"`
	BaselineMean      float64   `json:"baseline_mean"`
	BaselineStd       float64   `json:"baseline_std"`
	ZScores           []float64 `json:"z_scores"`
	OutlierFlags      []bool    `json:"outlier_flags"`
	OutlierPercentage float64   `json:"outlier_percentage"`
	SignificantChange bool      `json:"significant_change"`

	TTestP       float64 `json:"t_test_p"`
	MannWhitneyP float64 `json:"mann_whitney_p"`
	PValue       float64 `json:"p_value"`
	CohensD      float64 `json:"cohens_d"`
}

// CompositeResult aggregates the per-feature tests.
type CompositeResult struct {
	SummedP                 float64   `json:"summed_p"`
	Threshold               float64   `json:"threshold"`
	MeanEffectSize          float64   `json:"mean_effect_size"`
	EffectMagnitude         Magnitude `json:"effect_magnitude"`
	SignificantFeatureCount int       `json:"significant_feature_count"`
	SignificantFeatures     []string  `json:"significant_features"`
	Composite               bool      `json:"composite_significant"`
}

// Summary is the whole-recording verdict.
type Summary struct {
	FeaturesUsed int             `json:"features_used"`
	Significance CompositeResult `json:"significance"`
	Cosine       CosineResult    `json:"cosine"`
}

// Engine runs task analyses. It holds no mutable state.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine for cfg. Out-of-range alpha falls back to
// DefaultAlpha.
func NewEngine(cfg Config) *Engine {
	if !(cfg.Alpha > 0 && cfg.Alpha < 1) {
		cfg.Alpha = DefaultAlpha
	}

	return &Engine{cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Analyze compares task against base. base must come from a successful
// baseline computation.
func (e *Engine) Analyze(task session.Recording, base *baseline.Stats) (map[string]FeatureResult, Summary, error) {
	if base == nil || len(base.Features) == 0 {
		return nil, Summary{}, ErrMissingBaseline
	}

	if task.Len() == 0 {
		return nil, Summary{}, fmt.Errorf("%w (task %q)", ErrInsufficientData, task.TaskID)
	}

	names, err := e.featureNames()
	if err != nil {
		return nil, Summary{}, err
	}

	taskVectors := task.Vectors()
	results := make(map[string]FeatureResult, len(names))

	var (
		comp      CompositeResult
		sumAbsD   float64
		taskMeans = make([]float64, len(names))
		baseMeans = make([]float64, len(names))
	)

	comp.SignificantFeatures = []string{}

	for i, name := range names {
		taskValues := column(taskVectors, name)
		baseValues := base.Values(name)
		bs := base.Features[name]

		r := e.analyzeFeature(taskValues, baseValues, bs)
		results[name] = r

		comp.SummedP += r.PValue
		sumAbsD += math.Abs(r.CohensD)

		if r.PValue < e.cfg.Alpha {
			comp.SignificantFeatures = append(comp.SignificantFeatures, name)
		}

		taskMeans[i] = r.TaskMean
		baseMeans[i] = bs.Mean
	}

	comp.Threshold = e.cfg.Alpha * float64(len(names))
	comp.Composite = comp.SummedP < comp.Threshold
	comp.MeanEffectSize = sumAbsD / float64(len(names))
	comp.EffectMagnitude = ClassifyEffect(comp.MeanEffectSize)
	comp.SignificantFeatureCount = len(comp.SignificantFeatures)

	summary := Summary{
		FeaturesUsed: len(names),
		Significance: comp,
		Cosine:       CosineTest(taskMeans, baseMeans, e.cfg.Iterations, e.cfg.Seed, e.cfg.Alpha),
	}

	return results, summary, nil
}

func (e *Engine) featureNames() ([]string, error) {
	if len(e.cfg.Features) == 0 {
		return feature.Names(), nil
	}

	var v feature.Vector
	for _, name := range e.cfg.Features {
		if _, ok := v.Get(name); !ok {
			return nil, fmt.Errorf("significance: unknown feature %q", name)
		}
	}

	return e.cfg.Features, nil
}

func (e *Engine) analyzeFeature(task, base []float64, bs baseline.FeatureStats) FeatureResult {
	r := FeatureResult{
		BaselineMean: bs.Mean,
		BaselineStd:  bs.Std,
		ZScores:      make([]float64, len(task)),
		OutlierFlags: make([]bool, len(task)),
	}

	mean, variance := stat.PopMeanVariance(task, nil)
	r.TaskMean, r.TaskStd = mean, math.Sqrt(variance)

	outliers := 0

	for i, v := range task {
		z := (v - bs.Mean) / (bs.Std + Epsilon)
		r.ZScores[i] = z

		if math.Abs(z) > OutlierZ {
			r.OutlierFlags[i] = true
			outliers++
		}
	}

	r.OutlierPercentage = 100 * float64(outliers) / float64(len(task))
	r.SignificantChange = math.Abs(r.TaskMean-bs.Mean) > ChangeSigmas*bs.Std

	_, r.TTestP = WelchTTest(task, base)
	_, r.MannWhitneyP = MannWhitneyU(task, base)
	r.PValue = min(r.TTestP, r.MannWhitneyP)
	r.CohensD = CohensD(task, base)

	return r
}

func column(vectors []feature.Vector, name string) []float64 {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i], _ = v.Get(name)
	}

	return out
}
