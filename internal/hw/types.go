// internal/hw/types.go

// Package hw defines the hardware config port the controllers drive.
// The port is geometry-only: it moves register payloads keyed by a
// configuration index and delivers "setting changed" events.
package hw

import (
	"context"
	"errors"
	"fmt"
)

// Index identifies one configuration on the imaging component.
type Index uint16

const (
	IndexComponentState Index = iota + 1
	IndexFocusControl
	IndexFocusStatus
	IndexFocusDistance
	IndexDigitalZoom
	IndexFaceDetection
	IndexFaceExtraData
	IndexTouchFocusRegion
	IndexCallbackRequest
	IndexLock3A
)

// Indexes lists every configuration index in declaration order.
var Indexes = []Index{
	IndexComponentState,
	IndexFocusControl,
	IndexFocusStatus,
	IndexFocusDistance,
	IndexDigitalZoom,
	IndexFaceDetection,
	IndexFaceExtraData,
	IndexTouchFocusRegion,
	IndexCallbackRequest,
	IndexLock3A,
}

var indexNames = map[Index]string{
	IndexComponentState:   "component_state",
	IndexFocusControl:     "focus_control",
	IndexFocusStatus:      "focus_status",
	IndexFocusDistance:    "focus_distance",
	IndexDigitalZoom:      "digital_zoom",
	IndexFaceDetection:    "face_detection",
	IndexFaceExtraData:    "face_extra_data",
	IndexTouchFocusRegion: "touch_focus_region",
	IndexCallbackRequest:  "callback_request",
	IndexLock3A:           "lock_3a",
}

// indexWords is the fixed payload width (16-bit words) per index.
var indexWords = map[Index]int{
	IndexComponentState:   1,
	IndexFocusControl:     1,
	IndexFocusStatus:      1,
	IndexFocusDistance:    6, // near, optimal, far (u32 each)
	IndexDigitalZoom:      4, // width, height scale (Q16 u32 each)
	IndexFaceDetection:    2, // enable, orientation
	IndexFaceExtraData:    1,
	IndexTouchFocusRegion: 4, // left, top, width, height
	IndexCallbackRequest:  2, // watched index, enable
	IndexLock3A:           2, // exposure, white balance
}

func (i Index) String() string {
	if n, ok := indexNames[i]; ok {
		return n
	}
	return fmt.Sprintf("index(%d)", uint16(i))
}

// Words returns the payload width of the index, or 0 if unknown.
func (i Index) Words() int {
	return indexWords[i]
}

// ParseIndex resolves a configuration name (as used in config files).
func ParseIndex(name string) (Index, bool) {
	for idx, n := range indexNames {
		if n == name {
			return idx, true
		}
	}
	return 0, false
}

// EventKind classifies an asynchronous notification from the component.
type EventKind uint8

const (
	EventSettingChanged EventKind = 1
)

// Event is one asynchronous notification. Synthetic events are injected
// locally to release a waiter whose hardware event may never come.
type Event struct {
	Kind      EventKind
	Index     Index
	Payload   Payload
	Synthetic bool
}

// ComponentState mirrors the imaging component's lifecycle state.
type ComponentState uint16

const (
	StateInvalid ComponentState = iota
	StateLoaded
	StateIdle
	StateExecuting
	StatePause
)

func (s ComponentState) String() string {
	switch s {
	case StateInvalid:
		return "invalid"
	case StateLoaded:
		return "loaded"
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StatePause:
		return "pause"
	default:
		return fmt.Sprintf("state(%d)", uint16(s))
	}
}

// Port is the synchronous configuration + event-registration contract.
type Port interface {
	SetConfig(ctx context.Context, idx Index, p Payload) error
	GetConfig(ctx context.Context, idx Index) (Payload, error)

	// RegisterForEvent arms a one-shot waiter for (kind, idx).
	RegisterForEvent(kind EventKind, idx Index, w chan<- Event) error
	// SignalEvent injects a synthetic event through the same queue
	// hardware events are delivered on.
	SignalEvent(kind EventKind, idx Index, p Payload) error
}

var (
	ErrUnknownIndex = errors.New("hw: unknown config index")
	ErrPayloadSize  = errors.New("hw: payload size mismatch")
	ErrClosed       = errors.New("hw: port closed")
)

// CheckPayload validates payload width for idx.
func CheckPayload(idx Index, p Payload) error {
	n := idx.Words()
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownIndex, uint16(idx))
	}
	if len(p) != n {
		return fmt.Errorf("%w: %s wants %d words, got %d", ErrPayloadSize, idx, n, len(p))
	}
	return nil
}

// ReadState reads the component state through the port.
func ReadState(ctx context.Context, p Port) (ComponentState, error) {
	pl, err := p.GetConfig(ctx, IndexComponentState)
	if err != nil {
		return StateInvalid, err
	}
	if len(pl) < 1 {
		return StateInvalid, fmt.Errorf("%w: component_state empty", ErrPayloadSize)
	}
	return ComponentState(pl[0]), nil
}
