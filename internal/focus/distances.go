// internal/focus/distances.go
package focus

import (
	"context"
	"fmt"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// DistanceInfinity is reported for a zero distance or in infinity mode.
const DistanceInfinity = "Infinity"

// Distances are the near, optimal and far focus distances in metres.
type Distances struct {
	Near    string
	Optimal string
	Far     string
}

// String joins the distances as "near,optimal,far".
func (d Distances) String() string {
	return d.Near + "," + d.Optimal + "," + d.Far
}

func formatDistance(mm uint32, mode Mode) string {
	if mode == ModeInfinity || mm == 0 {
		return DistanceInfinity
	}
	return fmt.Sprintf("%5.3f", float64(mm)/1000)
}

func encodeDistances(near, optimal, far uint32, mode Mode) Distances {
	return Distances{
		Near:    formatDistance(near, mode),
		Optimal: formatDistance(optimal, mode),
		Far:     formatDistance(far, mode),
	}
}

// refreshDistances reads the distances (millimetres) from hardware.
func (c *Controller) refreshDistances(ctx context.Context) error {
	p, err := c.port.GetConfig(ctx, hw.IndexFocusDistance)
	if err != nil {
		return fmt.Errorf("focus: read distances: %w", err)
	}

	c.mu.Lock()
	c.distances = encodeDistances(p.Uint32(0), p.Uint32(1), p.Uint32(2), c.mode)
	d := c.distances
	c.mu.Unlock()

	c.log.Debug("focus distances", "distances", d.String())
	return nil
}

// Distances returns the distances read by the last Stop.
func (c *Controller) Distances() Distances {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distances
}
