// internal/focus/controller.go

// Package focus runs autofocus against the hardware port.
//
// A focus run writes the focus-control mode and, for modes that scan,
// waits a bounded time for the hardware's focus-status event. Every exit
// from that wait disarms the hardware callback and pushes a synthetic
// event through the port's queue, so a late hardware event always finds
// nobody waiting. Each run carries a generation token and completions for
// any other generation are dropped. Synthetic events carry the token of
// the run that sent them, so a waiter skips ones meant for an earlier run.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/state"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxAreas = 1
)

var (
	ErrNotReady     = errors.New("focus: component not executing")
	ErrBusy         = errors.New("focus: run already in progress")
	ErrInvalidMode  = errors.New("focus: invalid mode")
	ErrTooManyAreas = errors.New("focus: too many focus areas")
	ErrPreviewSize  = errors.New("focus: non-positive preview size")
	ErrTouchRegion  = errors.New("focus: invalid touch region")
)

// StateTracker is the slice of the adapter state machine focus needs.
type StateTracker interface {
	Transition(op state.Op) error
	Active(f state.Flag) bool
}

// Notifier receives focus results.
type Notifier interface {
	OnFocusResult(locked bool)
}

// FaceGate suspends face result delivery while focus runs.
type FaceGate interface {
	PauseFaceDetection(paused bool)
}

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	Timeout  time.Duration
	MaxAreas int
	Mode     Mode
}

type awaitState uint8

const (
	awaitIdle awaitState = iota
	awaitWaiting
	awaitTimedOut
	awaitCompleted
)

// session is one focus run.
type session struct {
	gen   uuid.UUID
	mode  Mode // effective mode for this run
	armed bool // hardware callback enabled; only while waiting
	await awaitState
}

type outcome uint8

const (
	outcomeEvent     outcome = iota // read the real status
	outcomeImmediate                // no wait, status taken as reached
	outcomeTimeout
)

// Controller is safe for concurrent use. Its mutex is never held across
// a hardware call or the wait.
type Controller struct {
	port    hw.Port
	tracker StateTracker
	notify  Notifier
	faces   FaceGate
	lock    *Lock3A
	log     *slog.Logger

	timeout  time.Duration
	maxAreas int

	mu          sync.Mutex
	mode        Mode // persistent
	pendingMode bool
	sess        *session
	distances   Distances
	areas       []Area
}

// New builds a controller. notify and faces may be nil.
func New(port hw.Port, opts Options, tracker StateTracker, notify Notifier, faces FaceGate, logger *slog.Logger) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAreas <= 0 {
		opts.MaxAreas = DefaultMaxAreas
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		port:      port,
		tracker:   tracker,
		notify:    notify,
		faces:     faces,
		lock:      newLock3A(port),
		log:       logger,
		timeout:   opts.Timeout,
		maxAreas:  opts.MaxAreas,
		mode:      opts.Mode,
		distances: encodeDistances(0, 0, 0, opts.Mode),
	}
}

// Mode returns the persistent focus mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode changes the persistent mode. It reaches hardware on the next
// ApplyPending.
func (c *Controller) SetMode(m Mode) error {
	if _, ok := modeNames[m]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidMode, uint16(m))
	}
	c.mu.Lock()
	if c.mode != m {
		c.mode = m
		c.pendingMode = true
	}
	c.mu.Unlock()
	return nil
}

// ApplyPending writes the persistent mode if it was changed, or if a run
// substituted another mode for it.
func (c *Controller) ApplyPending(ctx context.Context) error {
	c.mu.Lock()
	if !c.pendingMode || c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	m := c.mode
	c.mu.Unlock()

	if err := c.port.SetConfig(ctx, hw.IndexFocusControl, hw.Words(uint16(m))); err != nil {
		return fmt.Errorf("focus: apply mode %s: %w", m, err)
	}

	c.mu.Lock()
	if c.mode == m {
		c.pendingMode = false
	}
	c.mu.Unlock()
	return nil
}

// Pending reports whether the persistent mode still has to be written.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingMode
}

// Lock3A exposes the AE/AWB lock.
func (c *Controller) Lock3A() *Lock3A {
	return c.lock
}

// Running reports whether a focus run is in progress.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil
}

// Start runs one autofocus cycle. For scanning modes it blocks until the
// hardware reports, the timeout fires, Cancel is called or ctx is done.
// A timeout is reported to the notifier as not locked and is not an error.
func (c *Controller) Start(ctx context.Context) error {
	st, err := hw.ReadState(ctx, c.port)
	if err != nil {
		return fmt.Errorf("focus: read component state: %w", err)
	}
	if st != hw.StateExecuting {
		return fmt.Errorf("%w: component %s", ErrNotReady, st)
	}

	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return ErrBusy
	}
	s := &session{gen: uuid.New(), mode: c.mode, await: awaitWaiting}
	c.sess = s
	persistent := c.mode
	c.mu.Unlock()

	log := c.log.With("gen", s.gen.String())

	if persistent == ModeAuto {
		status, err := c.readStatus(ctx)
		if err != nil {
			c.release(s)
			return err
		}
		if status != StatusReached {
			c.mu.Lock()
			s.mode = ModeAutoLock
			c.mu.Unlock()
		}
	}
	effective := s.mode

	c.pauseFaces(true)
	if err := c.tracker.Transition(state.OpStartAutofocus); err != nil {
		c.release(s)
		c.pauseFaces(false)
		return fmt.Errorf("focus: start: %w", err)
	}

	var events chan hw.Event
	if !effective.immediate() {
		events = make(chan hw.Event, 1)
		if err := c.port.RegisterForEvent(hw.EventSettingChanged, hw.IndexFocusStatus, events); err != nil {
			c.abort(ctx, s, false)
			return fmt.Errorf("focus: register waiter: %w", err)
		}
		if err := c.setCallback(ctx, true); err != nil {
			c.abort(ctx, s, true)
			return fmt.Errorf("focus: arm callback: %w", err)
		}
		c.mu.Lock()
		s.armed = true
		c.mu.Unlock()
	}

	if err := c.port.SetConfig(ctx, hw.IndexFocusControl, hw.Words(uint16(effective))); err != nil {
		c.abort(ctx, s, events != nil)
		return fmt.Errorf("focus: write mode %s: %w", effective, err)
	}
	log.Debug("autofocus started", "mode", effective, "persistent", persistent)

	if persistent == ModeAuto && effective == ModeAutoLock {
		c.mu.Lock()
		c.pendingMode = true
		c.mu.Unlock()
	}

	if events == nil {
		return c.complete(ctx, s.gen, outcomeImmediate)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-events:
			if ev.Synthetic && !ownsToken(ev.Payload, s.gen) {
				// left over from an earlier run; it consumed our registration
				log.Debug("foreign synthetic focus event ignored")
				if err := c.port.RegisterForEvent(hw.EventSettingChanged, hw.IndexFocusStatus, events); err != nil {
					c.expire(ctx, s)
					return errors.Join(fmt.Errorf("focus: re-register waiter: %w", err), c.complete(ctx, s.gen, outcomeTimeout))
				}
				continue
			}
			if err := c.disarm(ctx, s); err != nil {
				log.Warn("focus callback disarm failed", "err", err)
			}
			if ev.Synthetic {
				// Cancel got here first; complete drops it by generation.
				return c.complete(ctx, s.gen, outcomeTimeout)
			}
			return c.complete(ctx, s.gen, outcomeEvent)

		case <-timer.C:
			log.Warn("autofocus callback timeout", "timeout", c.timeout)
			c.expire(ctx, s)
			return c.complete(ctx, s.gen, outcomeTimeout)

		case <-ctx.Done():
			cctx := context.WithoutCancel(ctx)
			c.expire(cctx, s)
			return errors.Join(ctx.Err(), c.complete(cctx, s.gen, outcomeTimeout))
		}
	}
}

// expire disarms and releases the dispatcher registration with a
// synthetic event.
func (c *Controller) expire(ctx context.Context, s *session) {
	if err := c.disarm(ctx, s); err != nil {
		c.log.Warn("focus callback disarm failed", "err", err)
	}
	if err := c.signal(s.gen); err != nil {
		c.log.Warn("synthetic focus event failed", "err", err)
	}
}

// signal injects a synthetic completion tagged with run gen.
func (c *Controller) signal(gen uuid.UUID) error {
	return c.port.SignalEvent(hw.EventSettingChanged, hw.IndexFocusStatus, tokenPayload(gen))
}

// tokenPayload packs a run token into eight words.
func tokenPayload(gen uuid.UUID) hw.Payload {
	p := make(hw.Payload, len(gen)/2)
	for i := range p {
		p[i] = uint16(gen[2*i])<<8 | uint16(gen[2*i+1])
	}
	return p
}

// ownsToken reports whether a synthetic payload was sent for run gen.
func ownsToken(p hw.Payload, gen uuid.UUID) bool {
	return slices.Equal(tokenPayload(gen), p)
}

// abort undoes a Start that failed after entering autofocus.
func (c *Controller) abort(ctx context.Context, s *session, registered bool) {
	if registered {
		c.expire(ctx, s)
	}
	if err := c.tracker.Transition(state.OpCancelAutofocus); err != nil {
		c.log.Warn("autofocus rollback failed", "err", err)
	}
	c.release(s)
	c.pauseFaces(false)
}

// release ends s if it is still the current run.
func (c *Controller) release(s *session) {
	c.mu.Lock()
	s.armed = false
	if s.await == awaitWaiting {
		s.await = awaitCompleted
	}
	if c.sess == s {
		c.sess = nil
	}
	c.mu.Unlock()
}

// disarm turns the hardware callback off if s still has it on.
func (c *Controller) disarm(ctx context.Context, s *session) error {
	c.mu.Lock()
	armed := s.armed
	s.armed = false
	c.mu.Unlock()

	if !armed {
		return nil
	}
	return c.setCallback(ctx, false)
}

func (c *Controller) setCallback(ctx context.Context, enable bool) error {
	p := hw.Words(uint16(hw.IndexFocusStatus), hw.Bool(enable))
	if err := c.port.SetConfig(ctx, hw.IndexCallbackRequest, p); err != nil {
		return fmt.Errorf("focus: callback enable=%t: %w", enable, err)
	}
	return nil
}

func (c *Controller) readStatus(ctx context.Context) (Status, error) {
	p, err := c.port.GetConfig(ctx, hw.IndexFocusStatus)
	if err != nil {
		return StatusOff, fmt.Errorf("focus: read status: %w", err)
	}
	return Status(p.Word(0)), nil
}

func (c *Controller) readMode(ctx context.Context) (Mode, error) {
	p, err := c.port.GetConfig(ctx, hw.IndexFocusControl)
	if err != nil {
		return ModeOff, fmt.Errorf("focus: read mode: %w", err)
	}
	return Mode(p.Word(0)), nil
}

// complete reports the result of run gen. Runs that were cancelled or
// superseded, or that the state tracker no longer shows as active, are
// dropped without a notification.
func (c *Controller) complete(ctx context.Context, gen uuid.UUID, how outcome) error {
	c.mu.Lock()
	s := c.sess
	if s == nil || s.gen != gen {
		c.mu.Unlock()
		c.log.Debug("stale focus completion dropped", "gen", gen.String())
		return nil
	}
	s.armed = false
	if how == outcomeTimeout {
		s.await = awaitTimedOut
	} else {
		s.await = awaitCompleted
	}
	persistent := c.mode
	c.mu.Unlock()

	if !c.tracker.Active(state.Autofocus) {
		c.release(s)
		c.log.Debug("focus completion without active autofocus dropped")
		return nil
	}

	var (
		locked  bool
		readErr error
	)
	switch {
	case how == outcomeTimeout:
		locked = false

	case persistent == ModeAuto:
		// continuous mode status is not trusted
		locked = true

	default:
		status := StatusReached
		if how == outcomeEvent {
			status, readErr = c.readStatus(ctx)
			if readErr != nil {
				c.log.Error("focus status read failed", "err", readErr)
			}
		}
		if readErr == nil && status == StatusReached {
			locked = true
			if err := c.lock.Apply(ctx, true); err != nil {
				c.log.Warn("3A lock failed", "err", err)
			}
		}
		if err := c.Stop(ctx); err != nil {
			c.log.Warn("stop after focus failed", "err", err)
		}
	}

	terr := c.tracker.Transition(state.OpCancelAutofocus)
	c.release(s)

	if terr != nil {
		c.log.Error("autofocus complete transition failed", "err", terr)
	} else if c.notify != nil {
		c.notify.OnFocusResult(locked)
	}
	c.pauseFaces(false)

	c.log.Info("autofocus finished", "locked", locked, "timeout", how == outcomeTimeout)
	return errors.Join(readErr, terr)
}

// Stop turns focus off and refreshes the focus distances. It does
// nothing in infinity mode. The distance refresh always runs.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	mode := c.mode
	if c.sess != nil {
		c.sess.armed = false
	}
	c.mu.Unlock()

	if mode == ModeInfinity {
		return nil
	}

	var errs []error
	if err := c.setCallback(ctx, false); err != nil {
		errs = append(errs, err)
	} else if err := c.port.SetConfig(ctx, hw.IndexFocusControl, hw.Words(uint16(ModeOff))); err != nil {
		errs = append(errs, fmt.Errorf("focus: write off: %w", err))
	}
	if err := c.refreshDistances(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Cancel abandons any focus run. It releases the 3A lock and always
// resumes face detection.
func (c *Controller) Cancel(ctx context.Context) error {
	defer c.pauseFaces(false)

	if err := c.lock.Apply(ctx, false); err != nil {
		c.log.Warn("3A unlock failed", "err", err)
	}

	mode, err := c.readMode(ctx)

	c.mu.Lock()
	s := c.sess
	c.sess = nil
	if s != nil {
		s.armed = false
		s.await = awaitCompleted
	}
	c.mu.Unlock()

	var errs []error
	if err != nil {
		errs = append(errs, err)
	} else if !mode.immediate() {
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		// nobody waits when no run was in progress
		if s != nil {
			if err := c.signal(s.gen); err != nil {
				errs = append(errs, fmt.Errorf("focus: synthetic event: %w", err))
			}
		}
	}

	if c.tracker.Active(state.Autofocus) {
		if err := c.tracker.Transition(state.OpCancelAutofocus); err != nil {
			errs = append(errs, fmt.Errorf("focus: cancel: %w", err))
		}
	}

	if s != nil {
		c.log.Info("autofocus cancelled", "gen", s.gen.String())
	}
	return errors.Join(errs...)
}

func (c *Controller) pauseFaces(paused bool) {
	if c.faces != nil {
		c.faces.PauseFaceDetection(paused)
	}
}
