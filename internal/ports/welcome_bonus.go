package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// WelcomeBonusPort grants the starting chip stack at most once per user.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce credits amount and records a marker in one step.
	// Returns granted=false when the bonus was already granted.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount decimal.Decimal, meta LedgerMeta) (bool, error)
}
