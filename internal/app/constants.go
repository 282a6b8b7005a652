package app

// DefaultCreditRetryAttempts bounds how often a credit is retried before the
// failure is surfaced. Debits are never retried.
const DefaultCreditRetryAttempts = 3

// DefaultHistoryLimit caps get_history when the caller passes no limit.
const DefaultHistoryLimit = 20

// Legal action names reported in StatusView.
const (
	ActionStartRound = "start_round"
	ActionHit        = "hit"
	ActionStand      = "stand"
	ActionHint       = "hint"
	ActionDealerPlay = "dealer_play"
	ActionSettle     = "settle"
)
