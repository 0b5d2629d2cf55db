package pipeline

import (
	"context"
	"slices"

	"github.com/cwbudde/algo-eeg/source"
)

// Run consumes transport events until events is closed or ctx is done. Only
// the configured channel of each Sample is processed; frames go to the sink
// set with WithFrameSink.
func (p *Pipeline) Run(ctx context.Context, events <-chan source.Event) error {
	p.logger.Info("pipeline running", "session_id", p.id.String(), "channel", p.cfg.Channel)

	err := source.Dispatch(ctx, events, handler{p})

	p.logger.Info("pipeline stopped", "session_id", p.id.String(), "error", err)

	return err
}

type handler struct {
	p *Pipeline
}

func (h handler) OnSample(s source.Sample) {
	ch := h.p.cfg.Channel
	if ch >= len(s.Values) {
		h.p.logger.Debug("sample lacks configured channel", "channel", ch, "values", len(s.Values))
		return
	}

	h.p.PushSample(s.Values[ch])
}

func (h handler) OnDeviceMeta(m source.DeviceMeta) {
	h.p.resMu.Lock()
	h.p.device = &m
	h.p.resMu.Unlock()

	h.p.logger.Info("device connected", "name", m.Name, "sample_rate", m.SampleRate, "channels", m.Channels)

	if m.SampleRate > 0 && m.SampleRate != h.p.cfg.SampleRate {
		h.p.logger.Warn("device sample rate differs from configuration",
			"device", m.SampleRate, "configured", h.p.cfg.SampleRate)
	}

	if m.Channels > 0 && h.p.cfg.Channel >= m.Channels {
		h.p.logger.Warn("configured channel not provided by device",
			"channel", h.p.cfg.Channel, "channels", m.Channels)
	}
}

func (h handler) OnSignalQuality(q source.SignalQuality) {
	h.p.resMu.Lock()
	changed := !slices.Equal(h.p.contact, q.Contact)
	h.p.contact = slices.Clone(q.Contact)
	h.p.resMu.Unlock()

	if changed {
		h.p.logger.Debug("signal quality changed", "contact", q.Contact, "good", q.Good())
	}
}

func (h handler) OnDisconnected(d source.Disconnected) {
	if d.Err != nil {
		h.p.logger.Warn("device disconnected", "error", d.Err)
		return
	}

	h.p.logger.Info("device disconnected")
}
