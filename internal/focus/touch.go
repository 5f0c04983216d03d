// internal/focus/touch.go
package focus

import (
	"context"
	"fmt"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// TouchRange is the full scale of touch-focus coordinates.
const TouchRange = 0xFF

// Area is one focus area in the normalized [-1000, 1000] space.
type Area struct {
	Left   int
	Top    int
	Right  int
	Bottom int
	Weight int
}

// SetFocusAreas stores the areas used by the next focus run.
func (c *Controller) SetFocusAreas(areas []Area) error {
	if c.maxAreas > 0 && len(areas) > c.maxAreas {
		return fmt.Errorf("%w: supported %d, set %d", ErrTooManyAreas, c.maxAreas, len(areas))
	}
	c.mu.Lock()
	c.areas = append([]Area(nil), areas...)
	c.mu.Unlock()
	return nil
}

// Areas returns the stored focus areas.
func (c *Controller) Areas() []Area {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Area(nil), c.areas...)
}

// SetTouchFocus writes a touch region given in preview pixels. The
// hardware takes it scaled to [0, TouchRange].
func (c *Controller) SetTouchFocus(ctx context.Context, x, y, w, h, previewWidth, previewHeight int) error {
	if previewWidth <= 0 || previewHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrPreviewSize, previewWidth, previewHeight)
	}
	if x < 0 || y < 0 || w < 0 || h < 0 {
		return fmt.Errorf("%w: negative region %d,%d %dx%d", ErrTouchRegion, x, y, w, h)
	}

	st, err := hw.ReadState(ctx, c.port)
	if err != nil {
		return fmt.Errorf("focus: touch: %w", err)
	}
	if st == hw.StateInvalid {
		return fmt.Errorf("%w: component %s", ErrNotReady, st)
	}

	region := hw.Words(
		scaleTouch(x, previewWidth),
		scaleTouch(y, previewHeight),
		scaleTouch(w, previewWidth),
		scaleTouch(h, previewHeight),
	)
	if err := c.port.SetConfig(ctx, hw.IndexTouchFocusRegion, region); err != nil {
		return fmt.Errorf("focus: touch region: %w", err)
	}
	c.log.Debug("touch focus", "left", region[0], "top", region[1], "width", region[2], "height", region[3])
	return nil
}

func scaleTouch(v, dim int) uint16 {
	return uint16(min(v*TouchRange/dim, TouchRange))
}
