// internal/metrics/port.go
package metrics

import (
	"context"
	"time"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Port wraps next so every call is counted and timed.
func (m *Metrics) Port(next hw.Port) hw.Port {
	return &instrumentedPort{next: next, m: m}
}

type instrumentedPort struct {
	next hw.Port
	m    *Metrics
}

func (p *instrumentedPort) observe(idx hw.Index, op string, start time.Time, err error) {
	p.m.hwRequestsTotal.WithLabelValues(idx.String(), op, statusLabel(err)).Inc()
	p.m.hwRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (p *instrumentedPort) SetConfig(ctx context.Context, idx hw.Index, pl hw.Payload) error {
	start := time.Now()
	err := p.next.SetConfig(ctx, idx, pl)
	p.observe(idx, "set", start, err)
	return err
}

func (p *instrumentedPort) GetConfig(ctx context.Context, idx hw.Index) (hw.Payload, error) {
	start := time.Now()
	pl, err := p.next.GetConfig(ctx, idx)
	p.observe(idx, "get", start, err)
	return pl, err
}

func (p *instrumentedPort) RegisterForEvent(kind hw.EventKind, idx hw.Index, w chan<- hw.Event) error {
	err := p.next.RegisterForEvent(kind, idx, w)
	p.m.hwRequestsTotal.WithLabelValues(idx.String(), "register", statusLabel(err)).Inc()
	return err
}

func (p *instrumentedPort) SignalEvent(kind hw.EventKind, idx hw.Index, pl hw.Payload) error {
	err := p.next.SignalEvent(kind, idx, pl)
	p.m.hwSignalsTotal.WithLabelValues(idx.String(), statusLabel(err)).Inc()
	return err
}
