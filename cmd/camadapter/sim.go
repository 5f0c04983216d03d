// cmd/camadapter/sim.go
package main

import (
	"context"
	"time"

	"github.com/tamzrod/camera-adapter/internal/adapter"
	"github.com/tamzrod/camera-adapter/internal/face"
	"github.com/tamzrod/camera-adapter/internal/focus"
	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/hw/sim"
	"github.com/tamzrod/camera-adapter/internal/log"
)

const (
	simFrameInterval = 33 * time.Millisecond
	simScanTime      = 300 * time.Millisecond
	simWidth         = 640
	simHeight        = 480
)

// simulator stands in for the imaging component when transport is "sim":
// scans settle after simScanTime and frames carry one wandering face.
type simulator struct {
	port *sim.Port
}

func newSimulator(p *sim.Port) *simulator {
	s := &simulator{port: p}

	// near 0.5 m, optimal 1.2 m, far 3 m
	p.Set(hw.IndexFocusDistance, hw.Uint32s(500, 1200, 3000))

	p.OnSet(func(idx hw.Index, pl hw.Payload) {
		if idx != hw.IndexFocusControl {
			return
		}
		if focus.Mode(pl.Word(0)) == focus.ModeOff {
			p.Set(hw.IndexFocusStatus, hw.Words(uint16(focus.StatusOff)))
			return
		}
		p.Set(hw.IndexFocusStatus, hw.Words(uint16(focus.StatusRequest)))
		time.AfterFunc(simScanTime, func() {
			cur, err := p.GetConfig(context.Background(), hw.IndexFocusControl)
			if err != nil || focus.Mode(cur.Word(0)) == focus.ModeOff {
				return
			}
			p.Set(hw.IndexFocusStatus, hw.Words(uint16(focus.StatusReached)))
			if err := p.Fire(hw.IndexFocusStatus); err != nil {
				log.Debug("sim focus event dropped", "error", err)
			}
		})
	})
	return s
}

// drive feeds frames to the adapter until ctx is done.
func (s *simulator) drive(ctx context.Context, a *adapter.Adapter) error {
	t := time.NewTicker(simFrameInterval)
	defer t.Stop()

	var n uint32
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		n++
		_, _, orientation := a.FaceDetection()
		x := 100 + (n*4)%(simWidth-300)
		f := adapter.Frame{
			PreviewWidth:  simWidth,
			PreviewHeight: simHeight,
			Orientation:   orientation,
			Faces: face.NewMetadata([]face.RawFace{
				{Left: x, Top: 120, Width: 160, Height: 200, Score: 90},
			}),
		}
		if err := a.OnFrame(ctx, f); err != nil {
			log.Debug("sim frame", "error", err)
		}
	}
}
