// internal/zoom/controller_test.go
package zoom

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/camera-adapter/internal/hw"
	"github.com/tamzrod/camera-adapter/internal/hw/sim"
	"github.com/tamzrod/camera-adapter/internal/log"
	"github.com/tamzrod/camera-adapter/internal/state"
)

type zoomEvent struct {
	Index int
	Final bool
}

type recorder struct {
	mu     sync.Mutex
	events []zoomEvent
}

func (r *recorder) OnZoomChanged(index int, final bool) {
	r.mu.Lock()
	r.events = append(r.events, zoomEvent{index, final})
	r.mu.Unlock()
}

func (r *recorder) all() []zoomEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]zoomEvent(nil), r.events...)
}

func newController(t *testing.T) (*Controller, *sim.Port, *state.Machine, *recorder) {
	t.Helper()
	port := sim.New()
	m := state.New()
	rec := &recorder{}
	return New(port, DefaultTable, m, rec, log.Discard()), port, m, rec
}

func TestDefaultTable(t *testing.T) {
	require.NoError(t, DefaultTable.Validate())
	assert.Equal(t, 31, DefaultTable.Stages())
	assert.Equal(t, uint32(65536), DefaultTable[0])
	assert.Equal(t, uint32(524288), DefaultTable[30])
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, tbl)

	tbl, err = NewTable([]uint32{65536, 131072})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Stages())

	_, err = NewTable([]uint32{65536, 65536})
	assert.Error(t, err)
}

func TestSetImmediate_WritesOnceUnlessAlreadyApplied(t *testing.T) {
	ctx := context.Background()
	c, port, _, rec := newController(t)

	// hardware starts at stage 0
	require.NoError(t, c.SetImmediate(ctx, 0))
	assert.Empty(t, port.Writes(hw.IndexDigitalZoom))

	require.NoError(t, c.SetImmediate(ctx, 3))
	writes := port.Writes(hw.IndexDigitalZoom)
	require.Len(t, writes, 1)
	assert.Equal(t, hw.Uint32s(DefaultTable[3], DefaultTable[3]), writes[0])

	st := c.State()
	assert.Equal(t, 3, st.Current)
	assert.Equal(t, 3, st.Target)
	assert.True(t, st.Confirmed)

	require.NoError(t, c.SetImmediate(ctx, 3))
	assert.Len(t, port.Writes(hw.IndexDigitalZoom), 1)

	require.NoError(t, c.SetImmediate(ctx, 0))
	assert.Len(t, port.Writes(hw.IndexDigitalZoom), 2)

	// immediate zoom never notifies
	assert.Empty(t, rec.all())
}

func TestSmoothZoom_FiveStepRamp(t *testing.T) {
	ctx := context.Background()
	c, port, m, rec := newController(t)

	require.NoError(t, c.StartSmoothZoom(5))
	assert.True(t, m.Active(state.SmoothZoom))

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Tick(ctx))
	}

	assert.Equal(t, []zoomEvent{
		{1, false}, {2, false}, {3, false}, {4, false}, {5, true},
	}, rec.all())
	assert.Len(t, port.Writes(hw.IndexDigitalZoom), 5)

	st := c.State()
	assert.Equal(t, 5, st.Current)
	assert.False(t, st.Smooth)
	assert.Equal(t, 0, st.RampStart)
	assert.False(t, m.Active(state.SmoothZoom))

	// converged: further ticks are silent
	require.NoError(t, c.Tick(ctx))
	assert.Len(t, rec.all(), 5)
}

func TestSmoothZoom_ConvergesDownward(t *testing.T) {
	ctx := context.Background()
	c, _, _, rec := newController(t)

	require.NoError(t, c.SetImmediate(ctx, 5))
	require.NoError(t, c.StartSmoothZoom(2))
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Tick(ctx))
	}
	assert.Equal(t, []zoomEvent{{4, false}, {3, false}, {2, true}}, rec.all())
}

func TestStopSmoothZoom_OneTickEndsRamp(t *testing.T) {
	ctx := context.Background()
	c, _, m, rec := newController(t)

	require.NoError(t, c.StartSmoothZoom(10))
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Tick(ctx))
	}
	require.NoError(t, c.StopSmoothZoom())
	require.NoError(t, c.Tick(ctx))

	events := rec.all()
	require.Len(t, events, 4)
	assert.Equal(t, zoomEvent{4, true}, events[3])

	st := c.State()
	assert.False(t, st.Smooth)
	assert.False(t, st.ReturnPending)
	assert.Equal(t, 4, st.Current)
	assert.Equal(t, 4, st.Target)
	assert.False(t, m.Active(state.SmoothZoom))

	require.NoError(t, c.Tick(ctx))
	assert.Len(t, rec.all(), 4)
}

func TestStopSmoothZoom_AtTargetStillReportsOnce(t *testing.T) {
	ctx := context.Background()
	c, _, m, rec := newController(t)

	require.NoError(t, c.StartSmoothZoom(0))
	require.NoError(t, c.StopSmoothZoom())
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))

	assert.Equal(t, []zoomEvent{{0, true}}, rec.all())
	assert.False(t, m.Active(state.SmoothZoom))
}

func TestStopSmoothZoom_WithoutRampIsNoop(t *testing.T) {
	c, _, _, rec := newController(t)

	require.NoError(t, c.StopSmoothZoom())
	require.NoError(t, c.Tick(context.Background()))
	assert.Empty(t, rec.all())
	assert.False(t, c.State().ReturnPending)
}

func TestSmoothZoom_StartOnTargetStopsSilently(t *testing.T) {
	c, _, m, rec := newController(t)

	require.NoError(t, c.StartSmoothZoom(0))
	require.NoError(t, c.Tick(context.Background()))

	assert.Empty(t, rec.all())
	assert.False(t, c.State().Smooth)
	assert.False(t, m.Active(state.SmoothZoom))
}

func TestApply_WriteFailureLeavesStageUnconfirmed(t *testing.T) {
	ctx := context.Background()
	c, port, _, _ := newController(t)

	boom := errors.New("bus fault")
	port.FailSet(hw.IndexDigitalZoom, boom)

	err := c.SetImmediate(ctx, 2)
	require.ErrorIs(t, err, boom)

	st := c.State()
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, 0, st.Applied)
	assert.False(t, st.Confirmed)

	port.FailSet(hw.IndexDigitalZoom, nil)
	require.NoError(t, c.SetImmediate(ctx, 2))
	assert.Len(t, port.Writes(hw.IndexDigitalZoom), 1)
	assert.True(t, c.State().Confirmed)
}

func TestApply_RampWriteFailureStillNotifies(t *testing.T) {
	ctx := context.Background()
	c, port, _, rec := newController(t)

	require.NoError(t, c.StartSmoothZoom(2))
	port.FailSet(hw.IndexDigitalZoom, errors.New("nack"))
	assert.Error(t, c.Tick(ctx))
	assert.False(t, c.State().Confirmed)

	port.FailSet(hw.IndexDigitalZoom, nil)
	require.NoError(t, c.Tick(ctx))

	assert.Equal(t, []zoomEvent{{1, false}, {2, true}}, rec.all())
	assert.True(t, c.State().Confirmed)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	c, port, _, _ := newController(t)

	assert.ErrorIs(t, c.SetImmediate(ctx, 31), ErrOutOfRange)
	assert.ErrorIs(t, c.SetImmediate(ctx, -1), ErrOutOfRange)
	assert.ErrorIs(t, c.StartSmoothZoom(31), ErrOutOfRange)
	assert.ErrorIs(t, c.StartSmoothZoom(-1), ErrOutOfRange)

	require.NoError(t, c.StartSmoothZoom(4))
	assert.ErrorIs(t, c.SetImmediate(ctx, 2), ErrSmoothActive)
	assert.ErrorIs(t, c.StartSmoothZoom(6), ErrSmoothActive)

	// rejected calls touch nothing
	assert.Empty(t, port.Writes(hw.IndexDigitalZoom))
	assert.Equal(t, 4, c.State().Target)
}

func TestStartSmoothZoom_TrackerRejects(t *testing.T) {
	c, _, m, _ := newController(t)

	require.NoError(t, m.Transition(state.OpStartSmoothZoom))
	err := c.StartSmoothZoom(3)
	require.ErrorIs(t, err, state.ErrInvalidTransition)
	assert.False(t, c.State().Smooth)
}
