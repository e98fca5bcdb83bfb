package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	PersonasCreated   prometheus.Counter
	PersonasDeleted   prometheus.Counter
	PersonasPopulated prometheus.Counter
	ResetsTotal       prometheus.Counter
}

// New creates all metrics and registers them with the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PersonasCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "personas_created_total",
			Help: "Total number of personas created",
		}),
		PersonasDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "personas_deleted_total",
			Help: "Total number of personas deleted individually",
		}),
		PersonasPopulated: factory.NewCounter(prometheus.CounterOpts{
			Name: "personas_populated_total",
			Help: "Total number of personas inserted by the synthetic populate endpoint",
		}),
		ResetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "personas_resets_total",
			Help: "Total number of full table resets",
		}),
	}
}
