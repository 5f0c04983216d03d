// internal/zoom/controller.go

// Package zoom owns the digital zoom stage. Stages are applied either
// immediately or as a ramp that moves one stage per frame tick.
package zoom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/state"
)

var (
	ErrOutOfRange   = errors.New("zoom: stage out of range")
	ErrSmoothActive = errors.New("zoom: smooth zoom active")
)

// StateTracker is the slice of the adapter state machine zoom needs.
type StateTracker interface {
	Transition(op state.Op) error
}

// Notifier receives ramp progress.
type Notifier interface {
	OnZoomChanged(index int, final bool)
}

// State is a snapshot of the controller.
type State struct {
	Current       int
	Target        int
	Increment     int
	Smooth        bool
	ReturnPending bool
	// RampStart is the stage the last ramp began on.
	RampStart int

	// Applied is the last stage the hardware accepted.
	Applied int
	// Confirmed is false while Current has not been written successfully.
	Confirmed bool
}

// Controller is safe for concurrent use. Configuration calls and the
// frame tick may run on different goroutines.
type Controller struct {
	port    hw.Port
	table   Table
	tracker StateTracker
	notify  Notifier
	log     *slog.Logger

	mu            sync.Mutex
	current       int
	target        int
	inc           int
	smooth        bool
	returnPending bool
	rampStart     int

	// hwMu serializes hardware writes; never taken with mu held.
	hwMu    sync.Mutex
	applied int
}

// New returns a controller at stage 0. The hardware is assumed to be at
// stage 0 too, so applying stage 0 first is a no-op.
func New(port hw.Port, table Table, tracker StateTracker, notify Notifier, logger *slog.Logger) *Controller {
	if len(table) == 0 {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		port:    port,
		table:   table,
		tracker: tracker,
		notify:  notify,
		log:     logger,
	}
}

// Stages returns the number of zoom stages.
func (c *Controller) Stages() int {
	return c.table.Stages()
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		Current:       c.current,
		Target:        c.target,
		Increment:     c.inc,
		Smooth:        c.smooth,
		ReturnPending: c.returnPending,
		RampStart:     c.rampStart,
	}
	c.mu.Unlock()

	c.hwMu.Lock()
	s.Applied = c.applied
	c.hwMu.Unlock()

	s.Confirmed = s.Applied == s.Current
	return s
}

// SetImmediate jumps to stage and writes it before returning.
func (c *Controller) SetImmediate(ctx context.Context, stage int) error {
	c.mu.Lock()
	if !c.table.Valid(stage) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0,%d]", ErrOutOfRange, stage, c.table.Stages()-1)
	}
	if c.smooth {
		c.mu.Unlock()
		return ErrSmoothActive
	}
	c.current = stage
	c.target = stage
	c.mu.Unlock()

	c.log.Debug("zoom immediate", "stage", stage)
	return c.apply(ctx, stage)
}

// StartSmoothZoom begins a ramp toward target. Ticks do the stepping.
func (c *Controller) StartSmoothZoom(target int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.table.Valid(target) {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrOutOfRange, target, c.table.Stages()-1)
	}
	if c.smooth {
		return ErrSmoothActive
	}
	if c.tracker != nil {
		if err := c.tracker.Transition(state.OpStartSmoothZoom); err != nil {
			return fmt.Errorf("zoom: start smooth: %w", err)
		}
	}

	c.target = target
	c.rampStart = c.current
	c.returnPending = false
	c.smooth = true

	c.log.Debug("smooth zoom start", "from", c.current, "target", target)
	return nil
}

// StopSmoothZoom asks the next tick to take one more step and report the
// ramp as stopped. Without an active ramp it does nothing.
func (c *Controller) StopSmoothZoom() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.smooth {
		return nil
	}
	c.inc = sign(c.target - c.current)
	c.returnPending = true

	c.log.Debug("smooth zoom stop", "current", c.current, "target", c.target)
	return nil
}

// Tick advances the ramp by one stage. Call it once per delivered frame.
func (c *Controller) Tick(ctx context.Context) error {
	var (
		write    bool
		notify   bool
		final    bool
		stopRamp bool
	)

	c.mu.Lock()
	switch {
	case c.returnPending:
		c.current += c.inc
		c.target = c.current
		c.returnPending = false
		c.smooth = false
		write, notify, final, stopRamp = true, true, true, true

	case c.current != c.target:
		if c.smooth {
			c.inc = sign(c.target - c.current)
			c.current += c.inc
		} else {
			c.current = c.target
		}
		write = true

		if c.smooth {
			notify = true
			if c.current == c.target {
				c.smooth = false
				final, stopRamp = true, true
			}
		}

	case c.smooth:
		// ramp started on the stage it targets
		c.smooth = false
		stopRamp = true
	}
	stage := c.current
	c.mu.Unlock()

	var err error
	if write {
		err = c.apply(ctx, stage)
	}
	if stopRamp && c.tracker != nil {
		if terr := c.tracker.Transition(state.OpStopSmoothZoom); terr != nil {
			c.log.Warn("smooth zoom stop transition failed", "err", terr)
		}
	}
	if notify && c.notify != nil {
		c.notify.OnZoomChanged(stage, final)
	}
	return err
}

// apply writes stage unless it is already the last stage written.
func (c *Controller) apply(ctx context.Context, stage int) error {
	c.hwMu.Lock()
	defer c.hwMu.Unlock()

	if stage == c.applied {
		return nil
	}
	scale := c.table[stage]
	if err := c.port.SetConfig(ctx, hw.IndexDigitalZoom, hw.Uint32s(scale, scale)); err != nil {
		c.log.Error("digital zoom write failed", "stage", stage, "err", err)
		return fmt.Errorf("zoom: apply stage %d: %w", stage, err)
	}
	c.applied = stage
	return nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
