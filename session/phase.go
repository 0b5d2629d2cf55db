package session

import "fmt"

// Phase is a calibration state.
type Phase int

const (
	Idle Phase = iota
	EyesClosed
	EyesOpen
	Task
)

var phaseNames = [...]string{
	Idle:       "idle",
	EyesClosed: "eyes_closed",
	EyesOpen:   "eyes_open",
	Task:       "task",
}

// String returns the snake_case phase name.
func (p Phase) String() string {
	if p < Idle || p > Task {
		return fmt.Sprintf("phase(%d)", int(p))
	}

	return phaseNames[p]
}

// Baseline reports whether p is one of the eyes phases.
func (p Phase) Baseline() bool {
	return p == EyesClosed || p == EyesOpen
}

// ParsePhase maps a phase name to its Phase.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}

	return Idle, fmt.Errorf("session: unknown phase %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
