// internal/focus/lock3a.go
package focus

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Lock3A holds auto-exposure and auto-white-balance once focus is acquired.
type Lock3A struct {
	port   hw.Port
	locked atomic.Bool
}

func newLock3A(port hw.Port) *Lock3A {
	return &Lock3A{port: port}
}

// Apply locks or releases both AE and AWB.
func (l *Lock3A) Apply(ctx context.Context, lock bool) error {
	v := hw.Bool(lock)
	if err := l.port.SetConfig(ctx, hw.IndexLock3A, hw.Words(v, v)); err != nil {
		return fmt.Errorf("focus: 3A lock=%t: %w", lock, err)
	}
	l.locked.Store(lock)
	return nil
}

// Locked reports the last state the hardware accepted.
func (l *Lock3A) Locked() bool {
	return l.locked.Load()
}
