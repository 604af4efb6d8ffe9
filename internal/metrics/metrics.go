// Package metrics turns the session event stream into Prometheus series.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specialistvlad/blockgridgo/internal/event"
)

const namespace = "blockgrid"

// Sink is an event.Sink that counts events and run outcomes.
type Sink struct {
	gatherer prometheus.Gatherer

	events   *prometheus.CounterVec
	runs     *prometheus.CounterVec
	moves    prometheus.Histogram
	rejected prometheus.Counter
}

// New registers the collectors on reg. A nil reg gets a fresh registry, so
// several sinks can live in one process.
func New(reg *prometheus.Registry) *Sink {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Sink{
		gatherer: reg,
		// Labels: kind (moved, blocked, turned, won, lost, diagnostic, board)
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Events emitted by sessions, by kind",
		}, []string{"kind"}),
		// Labels: outcome (won, lost), reason (empty on wins)
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "runs_total",
			Help:      "Finished program runs by outcome",
		}, []string{"outcome", "reason"}),
		moves: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "run_moves",
			Help:      "Moves charged per finished run",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 15, 20, 30, 50},
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "diagnostics_total",
			Help:      "Rejected edits and other diagnostics",
		}),
	}
}

// Emit implements event.Sink.
func (s *Sink) Emit(_ context.Context, e event.Event) {
	s.events.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case event.Won:
		s.runs.WithLabelValues(string(e.Kind), "").Inc()
	case event.Lost:
		s.runs.WithLabelValues(string(e.Kind), e.Message).Inc()
	case event.Diagnostic:
		s.rejected.Inc()
	}
	if e.Kind.Terminal() && e.Board != nil {
		s.moves.Observe(float64(e.Board.Moves))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}
