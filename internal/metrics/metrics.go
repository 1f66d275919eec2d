// Package metrics exposes relay counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wirechat"

// Recorder owns the relay collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	sessions prometheus.Gauge
	rooms    prometheus.Gauge
	messages *prometheus.CounterVec
	dropped  prometheus.Counter
	rejected *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_connected",
			Help:      "Number of live WebSocket sessions.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Number of rooms in the registry.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Messages appended to a room history and broadcast, by kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Outbound frames dropped because a session outbox was full.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rejected_total",
			Help:      "Inbound frames answered with an error, by reason.",
		}, []string{"reason"}),
	}

	r.registry.MustRegister(
		r.sessions,
		r.rooms,
		r.messages,
		r.dropped,
		r.rejected,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) SessionOpened() {
	if r != nil {
		r.sessions.Inc()
	}
}

func (r *Recorder) SessionClosed() {
	if r != nil {
		r.sessions.Dec()
	}
}

// SetRooms records the current registry size.
func (r *Recorder) SetRooms(n int) {
	if r != nil {
		r.rooms.Set(float64(n))
	}
}

func (r *Recorder) MessageRelayed(kind string) {
	if r != nil {
		r.messages.WithLabelValues(kind).Inc()
	}
}

func (r *Recorder) FrameDropped() {
	if r != nil {
		r.dropped.Inc()
	}
}

func (r *Recorder) FrameRejected(reason string) {
	if r != nil {
		r.rejected.WithLabelValues(reason).Inc()
	}
}
