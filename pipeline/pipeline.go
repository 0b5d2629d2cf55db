// Package pipeline wires the calibration core together: a ring buffer of raw
// samples, the signal conditioner, the feature extractor, the contribution
// smoother, the phase controller and the baseline and significance engines.
//
// Samples enter through PushSample, PushSamples or Run. Every Hop samples,
// once a full window is buffered, the newest window is conditioned and turned
// into a feature vector, which is recorded if a calibration phase is active.
// Baselines and task analyses are computed on demand and kept as immutable
// snapshots until recomputed.
package pipeline

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-eeg/condition"
	"github.com/cwbudde/algo-eeg/dsp/buffer"
	"github.com/cwbudde/algo-eeg/feature"
	"github.com/cwbudde/algo-eeg/metrics"
	"github.com/cwbudde/algo-eeg/session"
	"github.com/cwbudde/algo-eeg/smooth"
	"github.com/cwbudde/algo-eeg/source"
	"github.com/cwbudde/algo-eeg/stats/baseline"
	"github.com/cwbudde/algo-eeg/stats/significance"
)

var phaseLabels = []string{
	session.Idle.String(),
	session.EyesClosed.String(),
	session.EyesOpen.String(),
	session.Task.String(),
}

// Frame is the result of one processed window.
type Frame struct {
	Vector feature.Vector `json:"features"`

	// Contribution is the smoothed, SNR-weighted relative power of the
	// configured band.
	Contribution float64 `json:"contribution"`
	// PeakSNR is the signal/noise band peak ratio; NaN when undefined.
	PeakSNR float64 `json:"-"`

	Phase    session.Phase `json:"phase"`
	TaskID   string        `json:"task_id,omitempty"`
	Recorded bool          `json:"recorded"`
	Time     time.Time     `json:"time"`
}

// TaskAnalysis is a stored task comparison.
type TaskAnalysis struct {
	TaskID     string                                `json:"task_id"`
	Windows    int                                   `json:"windows"`
	Features   map[string]significance.FeatureResult `json:"features"`
	Summary    significance.Summary                  `json:"summary"`
	ComputedAt time.Time                             `json:"computed_at"`
}

// Status is a snapshot of the pipeline.
type Status struct {
	Session        session.Status     `json:"session"`
	Buffered       int                `json:"buffered"`
	SamplesTotal   uint64             `json:"samples_total"`
	SamplesDropped uint64             `json:"samples_dropped"`
	Windows        uint64             `json:"windows"`
	Contribution   float64            `json:"contribution"`
	BaselineReady  bool               `json:"baseline_ready"`
	Device         *source.DeviceMeta `json:"device,omitempty"`
	Contact        []bool             `json:"contact,omitempty"`
}

// Pipeline is the calibration session object. All methods are safe for
// concurrent use.
type Pipeline struct {
	id      uuid.UUID
	created time.Time
	cfg     Config

	ring       *buffer.Ring
	cond       *condition.Conditioner
	controller *session.Controller
	baseEng    *baseline.Engine
	sigEng     *significance.Engine

	logger  *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time
	sink    func(Frame)

	// procMu serialises window processing.
	procMu     sync.Mutex
	extractor  *feature.Extractor
	ema        *smooth.EMA
	window     []float64
	pending    int
	windows    uint64
	dropLogged bool

	// resMu guards the result snapshots and device state.
	resMu    sync.RWMutex
	baseline *baseline.Stats
	analyses map[string]TaskAnalysis
	device   *source.DeviceMeta
	contact  []bool
}

// New validates cfg and builds a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		id:       uuid.New(),
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		analyses: make(map[string]TaskAnalysis),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	p.created = p.now()

	var err error

	if p.cond, err = condition.New(cfg.conditionConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if p.extractor, err = feature.NewExtractor(cfg.featureConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if p.ema, err = smooth.NewEMA(cfg.Smoothing.Alpha); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	p.ring = buffer.NewRing(cfg.RingCapacity)
	p.window = make([]float64, cfg.WindowSize)
	p.controller = session.NewController(session.WithClock(p.now), session.WithLogger(p.logger))
	p.baseEng = baseline.NewEngine(cfg.baselineConfig(), baseline.WithLogger(p.logger), baseline.WithClock(p.now))
	p.sigEng = significance.NewEngine(cfg.significanceConfig())

	p.metrics.SetPhase(session.Idle.String(), phaseLabels)

	return p, nil
}

// ID returns the session identifier used in reports.
func (p *Pipeline) ID() uuid.UUID {
	return p.id
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// PushSample feeds one raw sample. It returns the frame and true when the
// sample completed a window.
func (p *Pipeline) PushSample(v float64) (Frame, bool) {
	dropped := p.ring.Push(v)

	p.metrics.SamplesReceived(1)

	p.procMu.Lock()
	defer p.procMu.Unlock()

	if dropped {
		p.noteDropLocked()
	}

	p.pending++
	if p.pending < p.cfg.Hop {
		return Frame{}, false
	}

	if !p.ring.Latest(p.window) {
		return Frame{}, false
	}

	// Every pending sample lies inside the window just copied.
	p.ring.Consume(p.pending)
	p.pending = 0

	return p.processLocked(), true
}

// PushSamples feeds samples in order and returns every completed frame.
func (p *Pipeline) PushSamples(samples []float64) []Frame {
	var frames []Frame

	for _, v := range samples {
		if f, ok := p.PushSample(v); ok {
			frames = append(frames, f)
		}
	}

	return frames
}

func (p *Pipeline) noteDropLocked() {
	p.metrics.SamplesDropped(1)

	if !p.dropLogged {
		p.dropLogged = true
		p.logger.Warn("sample ring full, dropping unprocessed samples",
			"capacity", p.ring.Cap(), "dropped_total", p.ring.Dropped())
	}
}

func (p *Pipeline) processLocked() Frame {
	start := time.Now()

	if len(p.window) < max(p.cond.MinLength(), p.extractor.MinLength()) {
		p.metrics.WindowZeroed()
	}

	clean := p.cond.Process(p.window)

	// An extraction error leaves vec zeroed and the spectrum empty, which
	// yields a NaN peak SNR and therefore a zero contribution.
	vec, sp, err := p.extractor.Extract(clean)
	if err != nil {
		p.logger.Error("feature extraction failed", "error", err)
	}

	snr := sp.PeakSNR(p.cfg.Smoothing.Signal, p.cfg.Smoothing.Noise...)

	rel := vec.Band(p.cfg.Smoothing.Band).Relative
	contribution := p.ema.Update(smooth.Contribution(rel, snr, p.cfg.Smoothing.MinSNR))

	phase, taskID, recorded := p.controller.Record(vec)
	if recorded {
		p.metrics.VectorRecorded(phase.String())
	}

	p.windows++
	p.dropLogged = false

	p.metrics.WindowProcessed(time.Since(start))
	p.metrics.SetContribution(contribution)

	frame := Frame{
		Vector:       vec,
		Contribution: contribution,
		PeakSNR:      snr,
		Phase:        phase,
		TaskID:       taskID,
		Recorded:     recorded,
		Time:         p.now(),
	}

	if p.sink != nil {
		p.sink(frame)
	}

	return frame
}

// StartPhase starts a calibration phase; see session.Controller.Start.
func (p *Pipeline) StartPhase(phase session.Phase, taskID string) error {
	if err := p.controller.Start(phase, taskID); err != nil {
		return err
	}

	p.metrics.SetPhase(phase.String(), phaseLabels)

	return nil
}

// StopPhase returns to Idle, keeping the recording.
func (p *Pipeline) StopPhase() error {
	if err := p.controller.Stop(); err != nil {
		return err
	}

	p.metrics.SetPhase(session.Idle.String(), phaseLabels)

	return nil
}

// Status returns a snapshot of the session and buffer state.
func (p *Pipeline) Status() Status {
	st := Status{
		Session:        p.controller.Status(),
		Buffered:       p.ring.Len(),
		SamplesTotal:   p.ring.Total(),
		SamplesDropped: p.ring.Dropped(),
	}

	p.procMu.Lock()
	st.Windows = p.windows
	st.Contribution, _ = p.ema.Value()
	p.procMu.Unlock()

	p.resMu.RLock()
	defer p.resMu.RUnlock()

	st.BaselineReady = p.baseline != nil

	if p.device != nil {
		d := *p.device
		st.Device = &d
	}

	st.Contact = append([]bool(nil), p.contact...)

	return st
}

// Session returns the phase controller, for read access to recordings.
func (p *Pipeline) Session() *session.Controller {
	return p.controller
}

// ComputeBaseline summarises the eyes recordings selected by the baseline
// policy and replaces the stored baseline.
func (p *Pipeline) ComputeBaseline() (baseline.Stats, error) {
	st, err := p.baseEng.Compute(
		p.controller.Recording(session.EyesClosed),
		p.controller.Recording(session.EyesOpen),
	)
	if err != nil {
		return baseline.Stats{}, err
	}

	p.resMu.Lock()
	p.baseline = &st
	p.resMu.Unlock()

	p.logger.Info("baseline computed",
		"windows", st.Windows, "duration", st.Duration, "policy", st.Policy.String())

	return st, nil
}

// Baseline returns the stored baseline, if any.
func (p *Pipeline) Baseline() (baseline.Stats, bool) {
	p.resMu.RLock()
	defer p.resMu.RUnlock()

	if p.baseline == nil {
		return baseline.Stats{}, false
	}

	return *p.baseline, true
}

// AnalyzeTask compares the most recently started task against the stored
// baseline.
func (p *Pipeline) AnalyzeTask() (map[string]significance.FeatureResult, significance.Summary, error) {
	id := p.controller.LastTaskID()
	if id == "" {
		return nil, significance.Summary{}, fmt.Errorf("%w: no task recorded", significance.ErrInsufficientData)
	}

	return p.AnalyzeTaskID(id)
}

// AnalyzeTaskID compares the recording of task id against the stored
// baseline. The task recording is kept on failure, so the call can be
// retried after ComputeBaseline.
func (p *Pipeline) AnalyzeTaskID(id string) (map[string]significance.FeatureResult, significance.Summary, error) {
	p.resMu.RLock()
	base := p.baseline
	p.resMu.RUnlock()

	if base == nil {
		return nil, significance.Summary{}, significance.ErrMissingBaseline
	}

	rec, ok := p.controller.TaskRecording(id)
	if !ok {
		return nil, significance.Summary{}, fmt.Errorf("%w: unknown task %q", significance.ErrInsufficientData, id)
	}

	results, summary, err := p.sigEng.Analyze(rec, base)
	if err != nil {
		return nil, significance.Summary{}, err
	}

	p.resMu.Lock()
	p.analyses[id] = TaskAnalysis{
		TaskID:     id,
		Windows:    rec.Len(),
		Features:   results,
		Summary:    summary,
		ComputedAt: p.now(),
	}
	p.resMu.Unlock()

	p.logger.Info("task analysed",
		"task_id", id, "windows", rec.Len(),
		"significant_features", summary.Significance.SignificantFeatureCount,
		"cosine_p", summary.Cosine.PValue)

	return results, summary, nil
}
