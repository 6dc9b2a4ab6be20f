// Package metrics provides Prometheus metrics for the MindDuel backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service registers.
type Metrics struct {
	PoolJoins        *prometheus.CounterVec
	RoundsStarted    *prometheus.CounterVec
	RoundsSettled    *prometheus.CounterVec
	AnswersProcessed *prometheus.CounterVec
	StaleEvents      prometheus.Counter
	ProviderFailures prometheus.Counter
	ActiveSessions   prometheus.Gauge
	ConnectedClients prometheus.Gauge
}

// New registers all collectors with the given registerer under the
// mindduel namespace.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PoolJoins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "pool_joins_total",
			Help:      "Pool join requests, including duplicate re-joins.",
		}, []string{"pool"}),
		RoundsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "rounds_started_total",
			Help:      "Rounds that reached the Active state.",
		}, []string{"pool"}),
		RoundsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "rounds_settled_total",
			Help:      "Rounds that completed and paid out.",
		}, []string{"pool"}),
		AnswersProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "answers_processed_total",
			Help:      "Accepted answer and timeout events.",
		}, []string{"pool"}),
		StaleEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "stale_events_total",
			Help:      "Player events dropped for a question index mismatch.",
		}),
		ProviderFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mindduel",
			Name:      "provider_failures_total",
			Help:      "Question generations that exhausted the retry budget.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mindduel",
			Name:      "active_sessions",
			Help:      "Pools currently running a round.",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mindduel",
			Name:      "connected_clients",
			Help:      "Open websocket connections.",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
