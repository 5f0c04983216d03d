// internal/focus/touch_test.go
package focus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		mm   uint32
		mode Mode
		want string
	}{
		{1234, ModeAutoLock, "1.234"},
		{5, ModeAutoLock, "0.005"},
		{12345678, ModeMacro, "12345.678"},
		{0, ModeAutoLock, DistanceInfinity},
		{1234, ModeInfinity, DistanceInfinity},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatDistance(tc.mm, tc.mode), "mm=%d mode=%s", tc.mm, tc.mode)
	}
}

func TestSetTouchFocus_Scales(t *testing.T) {
	f := newFixture(t, Options{})

	require.NoError(t, f.c.SetTouchFocus(context.Background(), 320, 240, 64, 48, 640, 480))
	writes := f.port.Writes(hw.IndexTouchFocusRegion)
	require.Len(t, writes, 1)
	assert.Equal(t, hw.Words(127, 127, 25, 25), writes[0])

	require.NoError(t, f.c.SetTouchFocus(context.Background(), 640, 480, 640, 480, 640, 480))
	assert.Equal(t, hw.Words(TouchRange, TouchRange, TouchRange, TouchRange), f.port.Writes(hw.IndexTouchFocusRegion)[1])
}

func TestSetTouchFocus_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	assert.ErrorIs(t, f.c.SetTouchFocus(ctx, 0, 0, 1, 1, 0, 480), ErrPreviewSize)
	assert.ErrorIs(t, f.c.SetTouchFocus(ctx, -1, 0, 1, 1, 640, 480), ErrTouchRegion)

	f.port.SetState(hw.StateInvalid)
	assert.ErrorIs(t, f.c.SetTouchFocus(ctx, 0, 0, 1, 1, 640, 480), ErrNotReady)
	assert.Empty(t, f.port.Writes(hw.IndexTouchFocusRegion))
}

func TestSetFocusAreas(t *testing.T) {
	f := newFixture(t, Options{})

	one := []Area{{Left: -100, Top: -100, Right: 100, Bottom: 100, Weight: 1}}
	require.NoError(t, f.c.SetFocusAreas(one))
	assert.Equal(t, one, f.c.Areas())

	two := append(one, Area{Left: 0, Top: 0, Right: 10, Bottom: 10, Weight: 1})
	assert.ErrorIs(t, f.c.SetFocusAreas(two), ErrTooManyAreas)
	assert.Equal(t, one, f.c.Areas())

	wide := newFixture(t, Options{MaxAreas: 2})
	assert.NoError(t, wide.c.SetFocusAreas(two))
}
