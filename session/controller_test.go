package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/algo-eeg/feature"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.t = f.t.Add(time.Second)

	return f.t
}

func newTestController() *Controller {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewController(WithClock(clk.Now), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func vec(alpha float64) feature.Vector {
	var v feature.Vector
	v.Bands[feature.Alpha].Power = alpha

	return v
}

func TestController_IdleRecordsNothing(t *testing.T) {
	c := newTestController()

	if c.Append(vec(1)) {
		t.Fatal("Append recorded while idle")
	}

	st := c.Status()
	if st.Phase != Idle || st.EyesClosed != 0 || st.EyesOpen != 0 || len(st.Tasks) != 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestController_DoubleStartKeepsRecording(t *testing.T) {
	c := newTestController()

	if err := c.Start(EyesOpen, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}

	c.Append(vec(1))
	c.Append(vec(2))

	err := c.Start(EyesOpen, "")
	if !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("second Start err = %v, want ErrInvalidPhaseTransition", err)
	}

	if p, _ := c.Phase(); p != EyesOpen {
		t.Fatalf("phase = %s, want eyes_open", p)
	}

	rec := c.Recording(EyesOpen)
	if rec.Len() != 2 || rec.Entries[1].Vector != vec(2) {
		t.Fatalf("recording changed: %+v", rec)
	}
}

func TestController_Transitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Controller) error
		want error
	}{
		{"stop while idle", func(c *Controller) error { return c.Stop() }, ErrInvalidPhaseTransition},
		{"start idle", func(c *Controller) error { return c.Start(Idle, "") }, ErrInvalidPhaseTransition},
		{"task without id", func(c *Controller) error { return c.Start(Task, "") }, ErrMissingTaskID},
		{"start during task", func(c *Controller) error {
			if err := c.Start(Task, "math"); err != nil {
				return err
			}

			return c.Start(EyesClosed, "")
		}, ErrInvalidPhaseTransition},
		{"start stop start", func(c *Controller) error {
			if err := c.Start(EyesClosed, ""); err != nil {
				return err
			}

			if err := c.Stop(); err != nil {
				return err
			}

			return c.Start(EyesOpen, "")
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(newTestController())
			if tt.want == nil {
				if err != nil {
					t.Fatalf("err = %v", err)
				}

				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestController_StopKeepsAndRestartClears(t *testing.T) {
	c := newTestController()

	_ = c.Start(EyesClosed, "")
	c.Append(vec(1))
	c.Append(vec(2))
	c.Append(vec(3))
	_ = c.Stop()

	rec := c.Recording(EyesClosed)
	if rec.Len() != 3 {
		t.Fatalf("len = %d, want 3", rec.Len())
	}

	if rec.Duration() != 2*time.Second {
		t.Fatalf("duration = %v, want 2s", rec.Duration())
	}

	_ = c.Start(EyesClosed, "")

	if got := c.Recording(EyesClosed).Len(); got != 0 {
		t.Fatalf("restart kept %d entries", got)
	}
}

func TestController_TasksAreKeptPerID(t *testing.T) {
	c := newTestController()

	_ = c.Start(Task, "reading")
	c.Append(vec(1))
	_ = c.Stop()

	_ = c.Start(Task, "math")
	c.Append(vec(2))
	c.Append(vec(3))
	_ = c.Stop()

	if got := c.LastTaskID(); got != "math" {
		t.Fatalf("LastTaskID = %q", got)
	}

	reading, ok := c.TaskRecording("reading")
	if !ok || reading.Len() != 1 {
		t.Fatalf("reading = %+v, %v", reading, ok)
	}

	if _, ok := c.TaskRecording("nope"); ok {
		t.Fatal("unknown task reported present")
	}

	ids := c.TaskIDs()
	if len(ids) != 2 || ids[0] != "math" || ids[1] != "reading" {
		t.Fatalf("TaskIDs = %v", ids)
	}

	if st := c.Status(); st.Tasks["math"] != 2 || st.LastTaskID != "math" {
		t.Fatalf("status = %+v", st)
	}
}

func TestController_SnapshotsAreCopies(t *testing.T) {
	c := newTestController()

	_ = c.Start(EyesOpen, "")
	c.Append(vec(1))

	rec := c.Recording(EyesOpen)
	rec.Entries[0].Vector = vec(99)

	if got := c.Recording(EyesOpen).Entries[0].Vector; got != vec(1) {
		t.Fatal("snapshot aliases controller state")
	}
}

func TestController_ConcurrentAppendAndStatus(t *testing.T) {
	c := newTestController()
	_ = c.Start(EyesClosed, "")

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				c.Append(vec(1))
				_ = c.Status()
			}
		}()
	}

	wg.Wait()

	if got := c.Recording(EyesClosed).Len(); got != 400 {
		t.Fatalf("len = %d, want 400", got)
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range []Phase{Idle, EyesClosed, EyesOpen, Task} {
		got, err := ParsePhase(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), got, err)
		}
	}

	if _, err := ParsePhase("rem"); err == nil {
		t.Error("ParsePhase accepted unknown phase")
	}

	if !EyesOpen.Baseline() || Task.Baseline() {
		t.Error("Baseline() misclassified")
	}
}
