// internal/metrics/subscriber.go
package metrics

import (
	"strconv"

	"github.com/tamzrod/camera-adapter/internal/face"
	"github.com/tamzrod/camera-adapter/internal/notify"
)

// Subscriber records notifications as metrics.
func (m *Metrics) Subscriber() notify.Subscriber {
	return subscriber{m}
}

type subscriber struct {
	m *Metrics
}

func (s subscriber) OnFocusResult(locked bool) {
	result := "failed"
	if locked {
		result = "locked"
	}
	s.m.focusResultsTotal.WithLabelValues(result).Inc()
}

func (s subscriber) OnZoomChanged(index int, final bool) {
	s.m.zoomStage.Set(float64(index))
	s.m.zoomChangesTotal.WithLabelValues(strconv.FormatBool(final)).Inc()
}

func (s subscriber) OnFaces(faces []face.Face) {
	s.m.facesDetected.Set(float64(len(faces)))
	s.m.faceFramesTotal.Inc()
}
