// Package session tracks the calibration phase state machine and the feature
// vectors recorded in each phase.
//
// The Controller moves between Idle and one active phase at a time:
//
//	Idle --Start(p)--> p --Stop()--> Idle
//
// Starting a phase clears its previous recording; stopping keeps it. Task
// recordings are kept separately per task id. One mutex guards the current
// phase and every recording, so appends from the sample path and transitions
// from the control path never interleave.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cwbudde/algo-eeg/feature"
)

var (
	// ErrInvalidPhaseTransition is returned for Start outside Idle, Stop in
	// Idle or Start(Idle). The controller state is left unchanged.
	ErrInvalidPhaseTransition = errors.New("session: invalid phase transition")
	// ErrMissingTaskID is returned when a Task phase is started without an id.
	ErrMissingTaskID = errors.New("session: task phase requires a task id")
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source used to stamp entries and transitions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for phase transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Status is a snapshot of the controller state.
type Status struct {
	Phase      Phase          `json:"phase"`
	TaskID     string         `json:"task_id,omitempty"`
	Since      time.Time      `json:"since"`
	EyesClosed int            `json:"eyes_closed_windows"`
	EyesOpen   int            `json:"eyes_open_windows"`
	Tasks      map[string]int `json:"task_windows,omitempty"`
	LastTaskID string         `json:"last_task_id,omitempty"`
}

// Controller is the calibration phase state machine.
type Controller struct {
	mu sync.Mutex

	phase  Phase
	taskID string
	since  time.Time

	eyesClosed Recording
	eyesOpen   Recording
	tasks      map[string]*Recording
	lastTask   string

	now    func() time.Time
	logger *slog.Logger
}

// NewController returns an idle controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		eyesClosed: Recording{Phase: EyesClosed},
		eyesOpen:   Recording{Phase: EyesOpen},
		tasks:      make(map[string]*Recording),
		now:        time.Now,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.since = c.now()

	return c
}

// Start enters phase, clearing its recording. It is only valid from Idle.
// taskID is required for Task and ignored otherwise.
func (c *Controller) Start(phase Phase, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != Idle {
		return fmt.Errorf("%w: start %s while %s", ErrInvalidPhaseTransition, phase, c.phase)
	}

	switch phase {
	case EyesClosed:
		c.eyesClosed.Entries = nil
		taskID = ""
	case EyesOpen:
		c.eyesOpen.Entries = nil
		taskID = ""
	case Task:
		if taskID == "" {
			return ErrMissingTaskID
		}

		c.tasks[taskID] = &Recording{Phase: Task, TaskID: taskID}
		c.lastTask = taskID
	default:
		return fmt.Errorf("%w: cannot start %s", ErrInvalidPhaseTransition, phase)
	}

	c.phase = phase
	c.taskID = taskID
	c.since = c.now()

	c.logger.Info("phase started", "phase", phase.String(), "task_id", taskID)

	return nil
}

// Stop returns to Idle, keeping what was recorded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == Idle {
		return fmt.Errorf("%w: stop while idle", ErrInvalidPhaseTransition)
	}

	rec := c.activeLocked()
	c.logger.Info("phase stopped",
		"phase", c.phase.String(), "task_id", c.taskID,
		"windows", rec.Len(), "duration", rec.Duration())

	c.phase = Idle
	c.taskID = ""
	c.since = c.now()

	return nil
}

// Append records v in the active phase and reports whether it was recorded.
// Nothing is recorded while Idle.
func (c *Controller) Append(v feature.Vector) bool {
	_, _, ok := c.Record(v)
	return ok
}

// Record is Append that also returns the phase and task id v was recorded
// under, read atomically with the append.
func (c *Controller) Record(v feature.Vector) (Phase, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.activeLocked()
	if rec == nil {
		return Idle, "", false
	}

	rec.Entries = append(rec.Entries, Entry{Vector: v, Time: c.now()})

	return c.phase, c.taskID, true
}

// Phase returns the current phase and task id.
func (c *Controller) Phase() (Phase, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase, c.taskID
}

// Recording returns a copy of an eyes-phase recording. Use TaskRecording for
// tasks.
func (c *Controller) Recording(phase Phase) Recording {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch phase {
	case EyesClosed:
		return c.eyesClosed.clone()
	case EyesOpen:
		return c.eyesOpen.clone()
	default:
		return Recording{Phase: phase}
	}
}

// TaskRecording returns a copy of the recording for task id.
func (c *Controller) TaskRecording(id string) (Recording, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.tasks[id]
	if !ok {
		return Recording{Phase: Task, TaskID: id}, false
	}

	return rec.clone(), true
}

// LastTaskID returns the id of the most recently started task.
func (c *Controller) LastTaskID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastTask
}

// TaskIDs returns every task id with a recording, sorted.
func (c *Controller) TaskIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.tasks))
	for id := range c.tasks {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Phase:      c.phase,
		TaskID:     c.taskID,
		Since:      c.since,
		EyesClosed: c.eyesClosed.Len(),
		EyesOpen:   c.eyesOpen.Len(),
		LastTaskID: c.lastTask,
	}

	if len(c.tasks) > 0 {
		st.Tasks = make(map[string]int, len(c.tasks))
		for id, rec := range c.tasks {
			st.Tasks[id] = rec.Len()
		}
	}

	return st
}

func (c *Controller) activeLocked() *Recording {
	switch c.phase {
	case EyesClosed:
		return &c.eyesClosed
	case EyesOpen:
		return &c.eyesOpen
	case Task:
		return c.tasks[c.taskID]
	default:
		return nil
	}
}
