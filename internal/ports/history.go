package ports

import (
	"context"
	"time"

	"blackjack/internal/domain"

	"github.com/shopspring/decimal"
)

// RoundSummary is the persisted record of one settled or refunded round.
type RoundSummary struct {
	RoundID     string          `json:"round_id"`
	Bet         decimal.Decimal `json:"bet"`
	Outcome     string          `json:"outcome"`
	Payout      decimal.Decimal `json:"payout"`
	PlayerHand  []domain.Card   `json:"player_hand"`
	DealerHand  []domain.Card   `json:"dealer_hand"`
	PlayerTotal int             `json:"player_total"`
	DealerTotal int             `json:"dealer_total"`
	PlayerBust  bool            `json:"player_bust"`
	DealerBust  bool            `json:"dealer_bust"`
	// Blackjack flags are naturals only; a three card 21 leaves them false.
	PlayerBlackjack bool            `json:"player_blackjack"`
	DealerBlackjack bool            `json:"dealer_blackjack"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	SettledAt       time.Time       `json:"settled_at"`
	Receipt         string          `json:"receipt,omitempty"`
}

// HistoryPort stores finished rounds per user.
type HistoryPort interface {
	// SaveRound appends a summary to the user's history.
	SaveRound(ctx context.Context, userID string, summary RoundSummary) error

	// ListRounds returns up to limit summaries, newest first.
	ListRounds(ctx context.Context, userID string, limit int) ([]RoundSummary, error)
}
