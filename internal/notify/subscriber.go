// internal/notify/subscriber.go

// Package notify delivers controller results to interested parties.
package notify

import "github.com/tamzrod/camera-adapter/internal/face"

// Subscriber receives fire-and-forget notifications. Implementations must
// not block.
type Subscriber interface {
	OnFocusResult(locked bool)
	OnZoomChanged(index int, final bool)
	OnFaces(faces []face.Face)
}

// Fanout forwards every notification to each subscriber in order.
type Fanout []Subscriber

func (f Fanout) OnFocusResult(locked bool) {
	for _, s := range f {
		s.OnFocusResult(locked)
	}
}

func (f Fanout) OnZoomChanged(index int, final bool) {
	for _, s := range f {
		s.OnZoomChanged(index, final)
	}
}

func (f Fanout) OnFaces(faces []face.Face) {
	for _, s := range f {
		s.OnFaces(faces)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) OnFocusResult(bool)      {}
func (Nop) OnZoomChanged(int, bool) {}
func (Nop) OnFaces([]face.Face)     {}
