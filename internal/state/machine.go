// internal/state/machine.go

// Package state tracks which adapter activities are running.
// A transition is staged with Set, then made visible with Commit or
// discarded with Rollback.
package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Flag is one activity bit.
type Flag uint8

const (
	Autofocus Flag = 1 << iota
	SmoothZoom
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{Autofocus, "autofocus"},
	{SmoothZoom, "smooth_zoom"},
}

// String names the set flags joined by "|", or "idle".
func (f Flag) String() string {
	if f == 0 {
		return "idle"
	}
	var names []string
	rest := f
	for _, n := range flagNames {
		if f&n.f != 0 {
			names = append(names, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("flag(%d)", uint8(rest)))
	}
	return strings.Join(names, "|")
}

// Op is a requested transition.
type Op uint8

const (
	OpStartAutofocus Op = iota + 1
	OpCancelAutofocus
	OpStartSmoothZoom
	OpStopSmoothZoom
)

func (o Op) String() string {
	switch o {
	case OpStartAutofocus:
		return "start_autofocus"
	case OpCancelAutofocus:
		return "cancel_autofocus"
	case OpStartSmoothZoom:
		return "start_smooth_zoom"
	case OpStopSmoothZoom:
		return "stop_smooth_zoom"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

var (
	ErrInvalidTransition = errors.New("state: invalid transition")
	ErrNoPending         = errors.New("state: no pending transition")
	ErrPending           = errors.New("state: transition already pending")
)

// Machine holds the committed flags and at most one staged transition.
type Machine struct {
	mu      sync.Mutex
	current Flag
	next    Flag
	pending bool
}

// New returns an idle machine.
func New() *Machine {
	return &Machine{}
}

// Set stages op. Starting an activity that is running, or stopping one that
// is not, is invalid.
func (m *Machine) Set(op Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage(op)
}

func (m *Machine) stage(op Op) error {
	if m.pending {
		return fmt.Errorf("%w: %s", ErrPending, op)
	}

	next := m.current
	switch op {
	case OpStartAutofocus:
		if m.current&Autofocus != 0 {
			return fmt.Errorf("%w: %s while %s active", ErrInvalidTransition, op, Autofocus)
		}
		next |= Autofocus
	case OpCancelAutofocus:
		if m.current&Autofocus == 0 {
			return fmt.Errorf("%w: %s while %s idle", ErrInvalidTransition, op, Autofocus)
		}
		next &^= Autofocus
	case OpStartSmoothZoom:
		if m.current&SmoothZoom != 0 {
			return fmt.Errorf("%w: %s while %s active", ErrInvalidTransition, op, SmoothZoom)
		}
		next |= SmoothZoom
	case OpStopSmoothZoom:
		if m.current&SmoothZoom == 0 {
			return fmt.Errorf("%w: %s while %s idle", ErrInvalidTransition, op, SmoothZoom)
		}
		next &^= SmoothZoom
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTransition, op)
	}

	m.next = next
	m.pending = true
	return nil
}

// Commit makes the staged transition current.
func (m *Machine) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit()
}

func (m *Machine) commit() error {
	if !m.pending {
		return ErrNoPending
	}
	m.current = m.next
	m.pending = false
	return nil
}

// Rollback discards the staged transition. Rolling back with nothing
// staged is a no-op.
func (m *Machine) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rollback()
}

func (m *Machine) rollback() error {
	m.next = m.current
	m.pending = false
	return nil
}

// Transition stages and commits op as one unit, rolling back on failure.
// A transition staged by someone else through Set is left alone.
func (m *Machine) Transition(op Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.stage(op); err != nil {
		if errors.Is(err, ErrPending) {
			return err
		}
		return errors.Join(err, m.rollback())
	}
	if err := m.commit(); err != nil {
		return errors.Join(err, m.rollback())
	}
	return nil
}

// Active reports whether f is set in the committed state.
func (m *Machine) Active(f Flag) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current&f != 0
}

// Current returns the committed flags.
func (m *Machine) Current() Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
