package significance

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/cwbudde/algo-eeg/feature"
	"github.com/cwbudde/algo-eeg/internal/testutil"
	"github.com/cwbudde/algo-eeg/session"
	"github.com/cwbudde/algo-eeg/stats/baseline"
)

func TestWelchTTest(t *testing.T) {
	tt, p := WelchTTest([]float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})

	testutil.RequireClose(t, "t", tt, -5, 1e-12)

	if p < 0.0009 || p > 0.0012 {
		t.Fatalf("p = %v, want ~0.00105", p)
	}

	if _, p := WelchTTest([]float64{1, 2, 3}, []float64{1, 2, 3}); p != 1 {
		t.Errorf("identical samples p = %v, want 1", p)
	}

	if _, p := WelchTTest([]float64{2, 2}, []float64{2, 2, 2}); p != 1 {
		t.Errorf("equal constants p = %v, want 1", p)
	}

	if _, p := WelchTTest([]float64{2, 2}, []float64{3, 3}); p != 0 {
		t.Errorf("different constants p = %v, want 0", p)
	}

	if _, p := WelchTTest([]float64{1}, []float64{3, 4}); p != 1 {
		t.Errorf("single value p = %v, want 1", p)
	}
}

func TestMannWhitneyU(t *testing.T) {
	u, p := MannWhitneyU([]float64{1, 2, 3}, []float64{4, 5, 6})
	if u != 0 {
		t.Fatalf("u = %v, want 0", u)
	}

	if p < 0.07 || p > 0.09 {
		t.Fatalf("p = %v, want ~0.081", p)
	}

	if _, p := MannWhitneyU([]float64{5, 5}, []float64{5, 5, 5}); p != 1 {
		t.Errorf("all ties p = %v, want 1", p)
	}

	if _, p := MannWhitneyU(nil, []float64{1}); p != 1 {
		t.Errorf("empty p = %v, want 1", p)
	}

	// Mid-ranks: 1, 2.5, 2.5, 4 for a={1,2} b={2,3}.
	u, _ = MannWhitneyU([]float64{1, 2}, []float64{2, 3})
	testutil.RequireClose(t, "tied u", u, 0.5, 1e-12)
}

func TestCohensD(t *testing.T) {
	testutil.RequireClose(t, "d", CohensD([]float64{1, 2, 3}, []float64{3, 4, 5}), -2, 1e-12)

	if d := CohensD([]float64{4, 4}, []float64{4, 4}); d != 0 {
		t.Errorf("zero pooled std d = %v, want 0", d)
	}

	if d := CohensD([]float64{1}, []float64{2}); d != 0 {
		t.Errorf("undefined pooled std d = %v, want 0", d)
	}
}

func TestClassifyEffect(t *testing.T) {
	tests := []struct {
		d    float64
		want Magnitude
	}{
		{0, Small},
		{0.1, Small},
		{0.49, Small},
		{-0.3, Small},
		{0.5, Medium},
		{0.8, Medium},
		{-1.2, Large},
	}

	for _, tt := range tests {
		if got := ClassifyEffect(tt.d); got != tt.want {
			t.Errorf("ClassifyEffect(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}

func TestCosineTest(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	same := CosineTest(x, slices.Clone(x), 500, 7, 0.05)
	testutil.RequireClose(t, "similarity", same.Similarity, 1, 1e-12)

	if same.PValue < 0.05 || same.Significant {
		t.Fatalf("identical vectors: %+v", same)
	}

	zero := CosineTest(x, make([]float64, len(x)), 500, 7, 0.05)
	if zero.Similarity != 0 || zero.Distance != 1 || zero.PValue != 1 {
		t.Fatalf("zero norm: %+v", zero)
	}

	y := []float64{9, 0, 0, 0, 0, 0, 0, 1}
	a := CosineTest(x, y, 300, 11, 0.05)
	b := CosineTest(x, y, 300, 11, 0.05)

	if a != b {
		t.Fatalf("same seed gave %+v and %+v", a, b)
	}

	if a.PValue < 0 || a.PValue > 1 || a.Iterations != 300 {
		t.Fatalf("result = %+v", a)
	}
}

func recording(phase session.Phase, alphas []float64) session.Recording {
	rec := session.Recording{Phase: phase, TaskID: "t"}
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, a := range alphas {
		var v feature.Vector
		v.Bands[feature.Alpha].Power = a
		v.Bands[feature.Theta].Power = 5

		rec.Entries = append(rec.Entries, session.Entry{Vector: v, Time: start.Add(time.Duration(i) * time.Second)})
	}

	return rec
}

func computeBaseline(t *testing.T, alphas []float64) *baseline.Stats {
	t.Helper()

	eng := baseline.NewEngine(baseline.DefaultConfig(),
		baseline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	st, err := eng.Compute(recording(session.EyesClosed, alphas))
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}

	return &st
}

func TestAnalyze_ShiftIsSignificant(t *testing.T) {
	base := computeBaseline(t, testutil.GaussianSeries(1, 10, 1, 60))
	task := recording(session.Task, testutil.GaussianSeries(2, 13, 1, 20))

	results, summary, err := NewEngine(DefaultConfig()).Analyze(task, base)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	alpha := results["alpha_power"]
	if !alpha.SignificantChange {
		t.Fatalf("alpha_power not flagged: %+v", alpha)
	}

	if alpha.PValue >= 0.05 || alpha.PValue != min(alpha.TTestP, alpha.MannWhitneyP) {
		t.Fatalf("alpha_power p = %v (t %v, mw %v)", alpha.PValue, alpha.TTestP, alpha.MannWhitneyP)
	}

	if alpha.CohensD < 0.8 {
		t.Fatalf("cohen's d = %v, want large", alpha.CohensD)
	}

	if alpha.OutlierPercentage < 50 || len(alpha.ZScores) != 20 {
		t.Fatalf("outliers = %v%%, z = %d", alpha.OutlierPercentage, len(alpha.ZScores))
	}

	if !slices.Contains(summary.Significance.SignificantFeatures, "alpha_power") {
		t.Fatalf("alpha_power not listed: %v", summary.Significance.SignificantFeatures)
	}

	if theta := results["theta_power"]; theta.SignificantChange || theta.PValue != 1 {
		t.Fatalf("constant theta flagged: %+v", theta)
	}

	if summary.FeaturesUsed != feature.NumFeatures() {
		t.Fatalf("FeaturesUsed = %d", summary.FeaturesUsed)
	}
}

func TestAnalyze_IdenticalRecordings(t *testing.T) {
	alphas := testutil.GaussianSeries(3, 10, 1, 40)
	base := computeBaseline(t, alphas)
	task := recording(session.Task, alphas)

	results, summary, err := NewEngine(DefaultConfig()).Analyze(task, base)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	testutil.RequireClose(t, "similarity", summary.Cosine.Similarity, 1, 1e-9)

	if summary.Cosine.PValue < 0.05 || summary.Cosine.Significant {
		t.Fatalf("cosine = %+v", summary.Cosine)
	}

	if results["alpha_power"].SignificantChange {
		t.Fatal("identical data flagged as change")
	}

	if summary.Significance.Composite {
		t.Fatal("identical data composite significant")
	}
}

func TestAnalyze_FeatureSubset(t *testing.T) {
	base := computeBaseline(t, testutil.GaussianSeries(4, 10, 1, 60))
	task := recording(session.Task, testutil.GaussianSeries(5, 14, 1, 20))

	cfg := DefaultConfig()
	cfg.Features = []string{"alpha_power"}

	results, summary, err := NewEngine(cfg).Analyze(task, base)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(results) != 1 || summary.FeaturesUsed != 1 {
		t.Fatalf("results = %d, used = %d", len(results), summary.FeaturesUsed)
	}

	if !summary.Significance.Composite || summary.Significance.EffectMagnitude != Large {
		t.Fatalf("summary = %+v", summary.Significance)
	}

	testutil.RequireClose(t, "threshold", summary.Significance.Threshold, 0.05, 1e-12)

	cfg.Features = []string{"kappa_power"}
	if _, _, err := NewEngine(cfg).Analyze(task, base); err == nil {
		t.Fatal("unknown feature accepted")
	}
}

func TestAnalyze_Errors(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	task := recording(session.Task, []float64{1, 2})

	if _, _, err := eng.Analyze(task, nil); !errors.Is(err, ErrMissingBaseline) {
		t.Errorf("nil baseline err = %v", err)
	}

	base := computeBaseline(t, []float64{1, 2, 3})

	if _, _, err := eng.Analyze(session.Recording{Phase: session.Task}, base); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty task err = %v", err)
	}
}

func TestNewEngine_AlphaFallback(t *testing.T) {
	if got := NewEngine(Config{Alpha: 2}).Config().Alpha; math.Abs(got-DefaultAlpha) > 0 {
		t.Fatalf("alpha = %v, want %v", got, DefaultAlpha)
	}
}
