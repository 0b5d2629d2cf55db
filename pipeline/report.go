package pipeline

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/cwbudde/algo-eeg/session"
	"github.com/cwbudde/algo-eeg/source"
	"github.com/cwbudde/algo-eeg/stats/baseline"
)

// ReportVersion identifies the report layout.
const ReportVersion = 1

// PhaseSummary describes one recording in a report.
type PhaseSummary struct {
	Phase           session.Phase `json:"phase"`
	TaskID          string        `json:"task_id,omitempty"`
	Windows         int           `json:"windows"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// Report is the exportable summary of a calibration session.
type Report struct {
	Version     int                `json:"version"`
	SessionID   string             `json:"session_id"`
	CreatedAt   time.Time          `json:"created_at"`
	GeneratedAt time.Time          `json:"generated_at"`
	Config      Config             `json:"config"`
	Device      *source.DeviceMeta `json:"device,omitempty"`
	Phases      []PhaseSummary     `json:"phases"`
	Baseline    *baseline.Stats    `json:"baseline,omitempty"`
	Tasks       []TaskAnalysis     `json:"tasks"`
}

// GenerateReport snapshots the configuration, recordings, baseline and every
// stored task analysis. Tasks are ordered by id.
func (p *Pipeline) GenerateReport() Report {
	r := Report{
		Version:     ReportVersion,
		SessionID:   p.id.String(),
		CreatedAt:   p.created,
		GeneratedAt: p.now(),
		Config:      p.cfg,
		Tasks:       []TaskAnalysis{},
	}

	for _, ph := range []session.Phase{session.EyesClosed, session.EyesOpen} {
		r.Phases = append(r.Phases, summarize(p.controller.Recording(ph)))
	}

	for _, id := range p.controller.TaskIDs() {
		if rec, ok := p.controller.TaskRecording(id); ok {
			r.Phases = append(r.Phases, summarize(rec))
		}
	}

	p.resMu.RLock()
	defer p.resMu.RUnlock()

	if p.device != nil {
		d := *p.device
		r.Device = &d
	}

	if p.baseline != nil {
		b := *p.baseline
		r.Baseline = &b
	}

	for _, a := range p.analyses {
		r.Tasks = append(r.Tasks, a)
	}

	sort.Slice(r.Tasks, func(i, j int) bool { return r.Tasks[i].TaskID < r.Tasks[j].TaskID })

	return r
}

func summarize(rec session.Recording) PhaseSummary {
	return PhaseSummary{
		Phase:           rec.Phase,
		TaskID:          rec.TaskID,
		Windows:         rec.Len(),
		DurationSeconds: rec.Duration().Seconds(),
	}
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
