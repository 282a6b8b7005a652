package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackjack_ledger_calls_total",
			Help: "Ledger calls by operation and result",
		},
		[]string{"op", "result"},
	)

	compensationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackjack_compensations_total",
			Help: "Saga compensations by result",
		},
		[]string{"result"},
	)
)

// RecordLedger counts one ledger call. op: "debit" | "credit" | "balance".
func RecordLedger(op, result string) {
	ledgerCallTotal.WithLabelValues(op, normalizeResult(result)).Inc()
}

// RecordCompensation counts one compensation run.
func RecordCompensation(result string) {
	compensationTotal.WithLabelValues(normalizeResult(result)).Inc()
}
