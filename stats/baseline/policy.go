package baseline

import (
	"fmt"

	"github.com/cwbudde/algo-eeg/session"
)

// Policy selects which eyes phases form the baseline.
type Policy int

const (
	// CombinedEyes pools the eyes-closed and eyes-open recordings.
	CombinedEyes Policy = iota
	// EyesOpenOnly uses the eyes-open recording.
	EyesOpenOnly
	// EyesClosedOnly uses the eyes-closed recording.
	EyesClosedOnly
)

var policyNames = [...]string{
	CombinedEyes:   "combined",
	EyesOpenOnly:   "eyes_open",
	EyesClosedOnly: "eyes_closed",
}

func (p Policy) String() string {
	if p < CombinedEyes || p > EyesClosedOnly {
		return fmt.Sprintf("policy(%d)", int(p))
	}

	return policyNames[p]
}

// Includes reports whether recordings of phase contribute to the baseline.
func (p Policy) Includes(phase session.Phase) bool {
	switch p {
	case CombinedEyes:
		return phase == session.EyesClosed || phase == session.EyesOpen
	case EyesOpenOnly:
		return phase == session.EyesOpen
	case EyesClosedOnly:
		return phase == session.EyesClosed
	default:
		return false
	}
}

// ParsePolicy maps a policy name to its Policy.
func ParsePolicy(name string) (Policy, error) {
	for i, n := range policyNames {
		if n == name {
			return Policy(i), nil
		}
	}

	return CombinedEyes, fmt.Errorf("baseline: unknown policy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
