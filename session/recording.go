package session

import (
	"time"

	"github.com/cwbudde/algo-eeg/feature"
)

// Entry is one recorded feature vector.
type Entry struct {
	Vector feature.Vector `json:"vector"`
	Time   time.Time      `json:"time"`
}

// Recording is an ordered list of vectors captured during one phase. Values
// returned by the Controller are copies and may be kept by the caller.
type Recording struct {
	Phase   Phase   `json:"phase"`
	TaskID  string  `json:"task_id,omitempty"`
	Entries []Entry `json:"entries"`
}

// Len returns the number of entries.
func (r Recording) Len() int {
	return len(r.Entries)
}

// Vectors returns the recorded vectors in order.
func (r Recording) Vectors() []feature.Vector {
	out := make([]feature.Vector, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Vector
	}

	return out
}

// Duration is the time between the first and the last entry.
func (r Recording) Duration() time.Duration {
	if len(r.Entries) < 2 {
		return 0
	}

	return r.Entries[len(r.Entries)-1].Time.Sub(r.Entries[0].Time)
}

func (r Recording) clone() Recording {
	r.Entries = append([]Entry(nil), r.Entries...)
	return r
}
