package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundStartTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackjack_round_start_total",
			Help: "Round starts by result",
		},
		[]string{"result"},
	)

	roundSettleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackjack_round_settle_total",
			Help: "Settled rounds by outcome",
		},
		[]string{"outcome"},
	)

	roundSettleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blackjack_round_settle_duration_ms",
			Help:    "Settlement duration in milliseconds, ledger and history included",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"outcome"},
	)

	stateCorruptionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blackjack_state_corruption_total",
			Help: "Rounds discarded after failing the consistency check",
		},
	)
)

// RecordRoundStart counts a start_round_with_bet call.
// result should be "success" or "fail".
func RecordRoundStart(result string) {
	roundStartTotal.WithLabelValues(normalizeResult(result)).Inc()
}

// RecordSettle records a completed settlement.
// outcome: "win" | "loss" | "push".
func RecordSettle(outcome string, started time.Time) {
	oc := strings.ToLower(strings.TrimSpace(outcome))
	if oc == "" {
		oc = "unknown"
	}
	roundSettleTotal.WithLabelValues(oc).Inc()
	roundSettleDuration.WithLabelValues(oc).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordCorruption counts a round discarded by the consistency check.
func RecordCorruption() {
	stateCorruptionTotal.Inc()
}

func normalizeResult(result string) string {
	if result != "success" {
		return "fail"
	}
	return result
}
