package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BattlesSettled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battles_settled_total",
			Help: "Battles settled by the sweep worker",
		},
	)
	OutboxProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recalc_outbox_processed_total",
			Help: "Outbox events processed, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(BattlesSettled)
	prometheus.MustRegister(OutboxProcessed)
}
