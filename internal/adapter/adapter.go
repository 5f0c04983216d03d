// internal/adapter/adapter.go

// Package adapter is the application-facing surface of the camera
// adapter. It owns the focus and zoom controllers, face detection and
// the activity state machine, and routes frames to them.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/camera-adapter/internal/config"
	"github.com/tamzrod/camera-adapter/internal/face"
	"github.com/tamzrod/camera-adapter/internal/focus"
	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/notify"
	"github.com/tamzrod/camera-adapter/internal/state"
	"github.com/tamzrod/camera-adapter/internal/zoom"
)

// Options configures an Adapter.
type Options struct {
	Focus focus.Options
	Zoom  zoom.Table
}

// OptionsFromConfig maps a normalized config onto Options.
func OptionsFromConfig(a config.AdapterConfig) (Options, error) {
	var opts Options

	if a.Focus.Mode != "" {
		m, err := focus.ParseMode(a.Focus.Mode)
		if err != nil {
			return Options{}, err
		}
		opts.Focus.Mode = m
	}
	opts.Focus.Timeout = time.Duration(a.Focus.TimeoutMs) * time.Millisecond
	opts.Focus.MaxAreas = a.Focus.MaxAreas

	table, err := zoom.NewTable(a.Zoom.Stages)
	if err != nil {
		return Options{}, err
	}
	opts.Zoom = table
	return opts, nil
}

// Parameters is one configuration pass. Nil fields are left unchanged.
type Parameters struct {
	Zoom       *int
	FocusMode  *focus.Mode
	FocusAreas []focus.Area
}

// Frame is what the frame-delivery path hands over per preview frame.
type Frame struct {
	PreviewWidth  int
	PreviewHeight int
	Orientation   int

	// Faces is the decoded face metadata; FaceData the raw block. At most
	// one is set, and neither when the frame carries no face data.
	Faces    *face.Metadata
	FaceData []byte
}

// Adapter is safe for concurrent use.
type Adapter struct {
	port  hw.Port
	state *state.Machine
	focus *focus.Controller
	zoom  *zoom.Controller
	faces *faceDetection
	sub   notify.Subscriber
	log   *slog.Logger
}

// New wires the controllers to port. sub may be nil.
func New(port hw.Port, opts Options, sub notify.Subscriber, logger *slog.Logger) *Adapter {
	if sub == nil {
		sub = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		port:  port,
		state: state.New(),
		faces: &faceDetection{port: port},
		sub:   sub,
		log:   logger,
	}
	a.focus = focus.New(port, opts.Focus, a.state, sub, a.faces, logger.With("component", "focus"))
	a.zoom = zoom.New(port, opts.Zoom, a.state, sub, logger.With("component", "zoom"))
	return a
}

// Focus returns the autofocus controller.
func (a *Adapter) Focus() *focus.Controller { return a.focus }

// Zoom returns the zoom controller.
func (a *Adapter) Zoom() *zoom.Controller { return a.zoom }

// State returns the committed activity flags.
func (a *Adapter) State() state.Flag { return a.state.Current() }

// SetParameters applies one configuration pass. A zoom stage arriving
// while smooth zoom runs is ignored.
func (a *Adapter) SetParameters(ctx context.Context, p Parameters) error {
	var errs []error

	if p.FocusMode != nil {
		if err := a.focus.SetMode(*p.FocusMode); err != nil {
			errs = append(errs, err)
		}
	}
	if p.FocusAreas != nil {
		if err := a.focus.SetFocusAreas(p.FocusAreas); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.focus.ApplyPending(ctx); err != nil {
		errs = append(errs, err)
	}

	if p.Zoom != nil {
		err := a.zoom.SetImmediate(ctx, *p.Zoom)
		switch {
		case errors.Is(err, zoom.ErrSmoothActive):
			a.log.Debug("immediate zoom skipped during smooth zoom", "stage", *p.Zoom)
		case err != nil:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AutoFocus runs one focus cycle; see focus.Controller.Start.
func (a *Adapter) AutoFocus(ctx context.Context) error {
	return a.focus.Start(ctx)
}

// CancelAutoFocus abandons a running focus cycle.
func (a *Adapter) CancelAutoFocus(ctx context.Context) error {
	return a.focus.Cancel(ctx)
}

func (a *Adapter) StartSmoothZoom(target int) error {
	return a.zoom.StartSmoothZoom(target)
}

func (a *Adapter) StopSmoothZoom() error {
	return a.zoom.StopSmoothZoom()
}

// SetTouchFocus takes a region already scaled into preview pixels.
func (a *Adapter) SetTouchFocus(ctx context.Context, x, y, w, h, previewWidth, previewHeight int) error {
	return a.focus.SetTouchFocus(ctx, x, y, w, h, previewWidth, previewHeight)
}

// StartFaceDetection enables the hardware detector for orientation.
func (a *Adapter) StartFaceDetection(ctx context.Context, orientation int) error {
	st, err := hw.ReadState(ctx, a.port)
	if err != nil {
		return fmt.Errorf("adapter: face detection: %w", err)
	}
	if st == hw.StateInvalid {
		return fmt.Errorf("adapter: face detection: component %s", st)
	}
	return a.faces.set(ctx, true, orientation)
}

// StopFaceDetection disables the hardware detector.
func (a *Adapter) StopFaceDetection(ctx context.Context) error {
	_, _, orientation := a.FaceDetection()
	return a.faces.set(ctx, false, orientation)
}

// FaceDetection reports whether detection runs, whether delivery is
// paused and the orientation last written.
func (a *Adapter) FaceDetection() (running, paused bool, orientation int) {
	return a.faces.status()
}

// OnFrame is called once per delivered preview frame. It advances the
// zoom ramp and, while detection runs and is not paused, converts and
// publishes the frame's faces.
func (a *Adapter) OnFrame(ctx context.Context, f Frame) error {
	var errs []error

	if err := a.zoom.Tick(ctx); err != nil {
		errs = append(errs, err)
	}

	if a.faces.delivering() && (f.Faces != nil || f.FaceData != nil) {
		faces, err := a.detect(f)
		if err != nil {
			a.log.Warn("face result dropped", "err", err)
			errs = append(errs, err)
		} else {
			a.sub.OnFaces(faces)
		}
	}
	return errors.Join(errs...)
}

func (a *Adapter) detect(f Frame) ([]face.Face, error) {
	meta := f.Faces
	if meta == nil {
		var err error
		if meta, err = face.Decode(f.FaceData); err != nil {
			return nil, err
		}
	}
	return face.Transform(meta, f.PreviewWidth, f.PreviewHeight, f.Orientation)
}
