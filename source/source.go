// Package source defines the events a sample transport delivers to the
// calibration pipeline and a blocking dispatcher for them.
//
// Device discovery and the transport itself live outside this module; a
// transport only needs to send [Event] values on a channel.
package source

import (
	"context"
	"fmt"
	"time"
)

// Event is one of Sample, DeviceMeta, SignalQuality or Disconnected.
type Event interface {
	event()
}

// Sample carries one multi-channel frame of raw values.
type Sample struct {
	Values []float64
	Time   time.Time // zero when the transport has no timestamp
}

// DeviceMeta describes the connected device.
type DeviceMeta struct {
	Name       string  `json:"name"`
	SampleRate float64 `json:"sample_rate"`
	Channels   int     `json:"channels"`
}

// SignalQuality reports electrode contact per channel.
type SignalQuality struct {
	Contact []bool `json:"contact"`
}

// Good reports whether every channel has contact.
func (q SignalQuality) Good() bool {
	for _, c := range q.Contact {
		if !c {
			return false
		}
	}

	return len(q.Contact) > 0
}

// Disconnected reports that the device went away. Err may be nil for an
// orderly shutdown.
type Disconnected struct {
	Err error
}

func (Sample) event()        {}
func (DeviceMeta) event()    {}
func (SignalQuality) event() {}
func (Disconnected) event()  {}

// Handler consumes events.
type Handler interface {
	OnSample(Sample)
	OnDeviceMeta(DeviceMeta)
	OnSignalQuality(SignalQuality)
	OnDisconnected(Disconnected)
}

// Dispatch delivers events to h in order until events is closed (nil is
// returned) or ctx is done (ctx.Err() is returned).
func Dispatch(ctx context.Context, events <-chan Event, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if err := deliver(ev, h); err != nil {
				return err
			}
		}
	}
}

func deliver(ev Event, h Handler) error {
	switch e := ev.(type) {
	case Sample:
		h.OnSample(e)
	case DeviceMeta:
		h.OnDeviceMeta(e)
	case SignalQuality:
		h.OnSignalQuality(e)
	case Disconnected:
		h.OnDisconnected(e)
	default:
		return fmt.Errorf("source: unexpected event %T", ev)
	}

	return nil
}
