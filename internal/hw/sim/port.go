// internal/hw/sim/port.go

// Package sim is an in-memory hardware port. It backs the "sim" transport
// and is the shared fake for controller tests.
package sim

import (
	"context"
	"sync"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Write records one SetConfig call.
type Write struct {
	Index   hw.Index
	Payload hw.Payload
}

// Port keeps one payload per index and records every write.
type Port struct {
	d *hw.Dispatcher

	mu      sync.Mutex
	regs    map[hw.Index]hw.Payload
	writes  []Write
	failSet map[hw.Index]error
	failGet map[hw.Index]error
	onSet   func(idx hw.Index, p hw.Payload)
}

var _ hw.Port = (*Port)(nil)

// New creates a port whose component is already executing.
func New() *Port {
	p := &Port{
		d:       hw.NewDispatcher(0),
		regs:    make(map[hw.Index]hw.Payload),
		failSet: make(map[hw.Index]error),
		failGet: make(map[hw.Index]error),
	}
	for _, idx := range hw.Indexes {
		p.regs[idx] = make(hw.Payload, idx.Words())
	}
	p.regs[hw.IndexComponentState] = hw.Words(uint16(hw.StateExecuting))
	return p
}

// Run delivers events until ctx is done.
func (p *Port) Run(ctx context.Context) error {
	p.d.Run(ctx)
	return nil
}

func (p *Port) SetConfig(ctx context.Context, idx hw.Index, pl hw.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := hw.CheckPayload(idx, pl); err != nil {
		return err
	}

	p.mu.Lock()
	if err := p.failSet[idx]; err != nil {
		p.mu.Unlock()
		return err
	}
	cp := append(hw.Payload(nil), pl...)
	p.regs[idx] = cp
	p.writes = append(p.writes, Write{Index: idx, Payload: cp})
	hook := p.onSet
	p.mu.Unlock()

	if hook != nil {
		hook(idx, cp)
	}
	return nil
}

func (p *Port) GetConfig(ctx context.Context, idx hw.Index) (hw.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.failGet[idx]; err != nil {
		return nil, err
	}
	v, ok := p.regs[idx]
	if !ok {
		return nil, hw.ErrUnknownIndex
	}
	return append(hw.Payload(nil), v...), nil
}

func (p *Port) RegisterForEvent(kind hw.EventKind, idx hw.Index, w chan<- hw.Event) error {
	return p.d.Register(kind, idx, w)
}

func (p *Port) SignalEvent(kind hw.EventKind, idx hw.Index, pl hw.Payload) error {
	return p.d.Signal(kind, idx, pl)
}

// ---- test / emulation helpers ----

// Fire publishes a hardware "setting changed" event for idx.
func (p *Port) Fire(idx hw.Index) error {
	p.mu.Lock()
	v := append(hw.Payload(nil), p.regs[idx]...)
	p.mu.Unlock()
	return p.d.Publish(hw.Event{Kind: hw.EventSettingChanged, Index: idx, Payload: v})
}

// Set seeds the stored payload for idx without recording a write.
func (p *Port) Set(idx hw.Index, pl hw.Payload) {
	p.mu.Lock()
	p.regs[idx] = append(hw.Payload(nil), pl...)
	p.mu.Unlock()
}

// SetState seeds the component state.
func (p *Port) SetState(s hw.ComponentState) {
	p.Set(hw.IndexComponentState, hw.Words(uint16(s)))
}

// FailSet makes writes to idx fail with err (nil clears).
func (p *Port) FailSet(idx hw.Index, err error) {
	p.mu.Lock()
	p.failSet[idx] = err
	p.mu.Unlock()
}

// FailGet makes reads of idx fail with err (nil clears).
func (p *Port) FailGet(idx hw.Index, err error) {
	p.mu.Lock()
	p.failGet[idx] = err
	p.mu.Unlock()
}

// OnSet installs a hook run after every successful write, outside the lock.
func (p *Port) OnSet(fn func(idx hw.Index, pl hw.Payload)) {
	p.mu.Lock()
	p.onSet = fn
	p.mu.Unlock()
}

// Writes returns the recorded writes for idx, in order.
func (p *Port) Writes(idx hw.Index) []hw.Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []hw.Payload
	for _, w := range p.writes {
		if w.Index == idx {
			out = append(out, w.Payload)
		}
	}
	return out
}

// AllWrites returns every recorded write, in order.
func (p *Port) AllWrites() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Write(nil), p.writes...)
}

// Pending reports armed waiters for (kind, idx).
func (p *Port) Pending(kind hw.EventKind, idx hw.Index) int {
	return p.d.Pending(kind, idx)
}
