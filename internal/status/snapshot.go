// internal/status/snapshot.go
package status

import (
	"errors"
	"sync"
)

// Snapshot is the current link health. No memory of the past.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Tracker owns a Snapshot and applies the runner rules:
// success resets error fields, failure records a code, Tick counts
// seconds while not OK.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Observe folds one request outcome into the snapshot.
// It reports whether anything changed.
func (t *Tracker) Observe(err error) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false

	if err == nil {
		if t.snap.Health != HealthOK {
			t.snap.Health = HealthOK
			changed = true
		}
		if t.snap.LastErrorCode != 0 {
			t.snap.LastErrorCode = 0
			changed = true
		}
		if t.snap.SecondsInError != 0 {
			t.snap.SecondsInError = 0
			changed = true
		}
		return t.snap, changed
	}

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	code := ErrorCode(err)
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}
	// seconds_in_error increments on Tick only
	return t.snap, changed
}

// Tick advances seconds_in_error while not OK. Saturates, never wraps.
func (t *Tracker) Tick() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.Health != HealthOK && t.snap.Health != HealthUnknown {
		if t.snap.SecondsInError < SecondsInErrorMax {
			t.snap.SecondsInError++
		}
	}
	return t.snap
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns GenericErrorCode.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return GenericErrorCode
}
