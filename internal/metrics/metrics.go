// internal/metrics/metrics.go

// Package metrics exports adapter activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/camera-adapter/internal/status"
)

const namespace = "camadapter"

// Metrics owns a registry and the adapter's collectors.
type Metrics struct {
	registry *prometheus.Registry

	// hwRequestsTotal counts port calls by index, op and status.
	hwRequestsTotal *prometheus.CounterVec
	// hwRequestDuration is the round-trip time of port calls.
	hwRequestDuration *prometheus.HistogramVec
	// hwSignalsTotal counts synthetic events injected.
	hwSignalsTotal *prometheus.CounterVec

	focusResultsTotal *prometheus.CounterVec
	zoomChangesTotal  *prometheus.CounterVec
	zoomStage         prometheus.Gauge
	facesDetected     prometheus.Gauge
	faceFramesTotal   prometheus.Counter
}

// New builds the collectors and registers them with a fresh registry,
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		hwRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hw_requests_total",
				Help:      "Total hardware config port requests",
			},
			[]string{"index", "op", "status"}, // op: set, get, register; status: success, error
		),
		hwRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "hw_request_duration_seconds",
				Help:      "Duration of hardware config port requests in seconds",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		hwSignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hw_synthetic_events_total",
				Help:      "Total synthetic events injected into the port queue",
			},
			[]string{"index", "status"},
		),
		focusResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "focus_results_total",
				Help:      "Total autofocus results reported",
			},
			[]string{"result"}, // locked, failed
		),
		zoomChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "zoom_changes_total",
				Help:      "Total smooth zoom notifications",
			},
			[]string{"final"},
		),
		zoomStage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "zoom_stage",
				Help:      "Last reported smooth zoom stage",
			},
		),
		facesDetected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "faces_detected",
				Help:      "Faces in the last delivered frame",
			},
		),
		faceFramesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "face_frames_total",
				Help:      "Total frames that delivered face results",
			},
		),
	}

	m.registry.MustRegister(
		m.hwRequestsTotal,
		m.hwRequestDuration,
		m.hwSignalsTotal,
		m.focusResultsTotal,
		m.zoomChangesTotal,
		m.zoomStage,
		m.facesDetected,
		m.faceFramesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// WatchLink exports the hardware link status read from snap at scrape time.
func (m *Metrics) WatchLink(snap func() status.Snapshot) {
	m.registry.MustRegister(newLinkCollector(snap))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
