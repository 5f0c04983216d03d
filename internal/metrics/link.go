// internal/metrics/link.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/camera-adapter/internal/status"
)

// linkCollector reads the link tracker on every scrape.
type linkCollector struct {
	snap func() status.Snapshot

	health         *prometheus.Desc
	lastErrorCode  *prometheus.Desc
	secondsInError *prometheus.Desc
}

func newLinkCollector(snap func() status.Snapshot) *linkCollector {
	return &linkCollector{
		snap: snap,
		health: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "health"),
			"Hardware link health (0 unknown, 1 ok, 2 error, 3 stale)",
			nil, nil,
		),
		lastErrorCode: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "last_error_code"),
			"Last hardware link error code, 0 when healthy",
			nil, nil,
		),
		secondsInError: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "seconds_in_error"),
			"Seconds the hardware link has been unhealthy",
			nil, nil,
		),
	}
}

func (c *linkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.health
	ch <- c.lastErrorCode
	ch <- c.secondsInError
}

func (c *linkCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snap()
	ch <- prometheus.MustNewConstMetric(c.health, prometheus.GaugeValue, float64(s.Health))
	ch <- prometheus.MustNewConstMetric(c.lastErrorCode, prometheus.GaugeValue, float64(s.LastErrorCode))
	ch <- prometheus.MustNewConstMetric(c.secondsInError, prometheus.GaugeValue, float64(s.SecondsInError))
}
