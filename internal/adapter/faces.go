// internal/adapter/faces.go
package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/tamzrod/camera-adapter/internal/face"
	"github.com/tamzrod/camera-adapter/internal/hw"
)

// faceDetection owns the hardware face detector and the delivery gate
// the focus controller closes while it runs.
type faceDetection struct {
	port hw.Port

	mu          sync.Mutex
	running     bool
	paused      bool
	orientation int
}

func (f *faceDetection) set(ctx context.Context, enable bool, orientation int) error {
	orientation = face.NormalizeOrientation(orientation)
	on := hw.Bool(enable)

	if err := f.port.SetConfig(ctx, hw.IndexFaceDetection, hw.Words(on, uint16(orientation))); err != nil {
		return fmt.Errorf("adapter: face detection enable=%t: %w", enable, err)
	}
	if err := f.port.SetConfig(ctx, hw.IndexFaceExtraData, hw.Words(on)); err != nil {
		return fmt.Errorf("adapter: face extra data enable=%t: %w", enable, err)
	}

	f.mu.Lock()
	f.running = enable
	f.orientation = orientation
	f.mu.Unlock()
	return nil
}

// PauseFaceDetection gates delivery without touching the hardware.
func (f *faceDetection) PauseFaceDetection(paused bool) {
	f.mu.Lock()
	f.paused = paused
	f.mu.Unlock()
}

func (f *faceDetection) delivering() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running && !f.paused
}

func (f *faceDetection) status() (running, paused bool, orientation int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running, f.paused, f.orientation
}
