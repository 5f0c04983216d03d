// internal/hw/modbus/port.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/status"
)

// Port implements hw.Port over Modbus holding registers.
// Every config index owns a fixed register span; SetConfig is a
// multiple-register write, GetConfig a holding-register read.
// It serializes requests because the transport is half-duplex.
type Port struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client

	regs       map[hw.Index]uint16
	eventBlock uint16
	poll       time.Duration

	d      *hw.Dispatcher
	health *status.Tracker
	log    *slog.Logger

	// event poller state, owned by Run
	lastSeq uint16
	seqSeen bool
}

var _ hw.Port = (*Port)(nil)

// handler is what both TCP and RTU client handlers provide.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// New connects to the component (fail fast at startup).
func New(cfg Config, logger *slog.Logger) (*Port, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}

	h, err := newHandler(cfg)
	if err != nil {
		return nil, err
	}
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("hw modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return newPort(cfg, h, modbus.NewClient(h), logger), nil
}

func newPort(cfg Config, h handler, c modbus.Client, logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.Default()
	}
	regs := make(map[hw.Index]uint16, len(cfg.Registers))
	for k, v := range cfg.Registers {
		regs[k] = v
	}
	return &Port{
		handler:    h,
		client:     c,
		regs:       regs,
		eventBlock: cfg.EventBlock,
		poll:       cfg.EventPoll,
		d:          hw.NewDispatcher(0),
		health:     status.NewTracker(),
		log:        logger,
	}
}

// Close closes the transport.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handler == nil {
		return nil
	}
	return p.handler.Close()
}

// Health returns the link tracker.
func (p *Port) Health() *status.Tracker {
	return p.health
}

// ---- hw.Port ----

func (p *Port) SetConfig(ctx context.Context, idx hw.Index, pl hw.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := hw.CheckPayload(idx, pl); err != nil {
		return err
	}
	addr, ok := p.regs[idx]
	if !ok {
		return fmt.Errorf("%w: %s has no register", hw.ErrUnknownIndex, idx)
	}

	p.mu.Lock()
	_, err := p.client.WriteMultipleRegisters(addr, uint16(len(pl)), pl.Bytes())
	p.mu.Unlock()

	err = wrap(err)
	p.health.Observe(err)
	if err != nil {
		return fmt.Errorf("hw modbus: set %s addr=%d: %w", idx, addr, err)
	}
	return nil
}

func (p *Port) GetConfig(ctx context.Context, idx hw.Index) (hw.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, ok := p.regs[idx]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no register", hw.ErrUnknownIndex, idx)
	}
	pl, err := p.readRegisters(addr, uint16(idx.Words()))
	if err != nil {
		return nil, fmt.Errorf("hw modbus: get %s addr=%d: %w", idx, addr, err)
	}
	return pl, nil
}

func (p *Port) RegisterForEvent(kind hw.EventKind, idx hw.Index, w chan<- hw.Event) error {
	return p.d.Register(kind, idx, w)
}

func (p *Port) SignalEvent(kind hw.EventKind, idx hw.Index, pl hw.Payload) error {
	return p.d.Signal(kind, idx, pl)
}

// ---- internal request helpers ----

func (p *Port) readRegisters(addr, qty uint16) (hw.Payload, error) {
	p.mu.Lock()
	raw, err := p.client.ReadHoldingRegisters(addr, qty)
	p.mu.Unlock()

	err = wrap(err)
	p.health.Observe(err)
	if err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, errors.New("hw modbus: read-registers byte count not even")
	}
	pl := hw.FromBytes(raw)
	if len(pl) < int(qty) {
		return nil, fmt.Errorf("hw modbus: short read: got=%d want=%d", len(pl), qty)
	}
	return pl[:qty], nil
}

// ExceptionError exposes the Modbus exception code to status.ErrorCode.
type ExceptionError struct {
	err *modbus.ModbusError
}

func (e *ExceptionError) Error() string { return e.err.Error() }
func (e *ExceptionError) Unwrap() error { return e.err }
func (e *ExceptionError) Code() uint16  { return uint16(e.err.ExceptionCode) }

func wrap(err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &ExceptionError{err: me}
	}
	return err
}
