package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned by LedgerPort.Debit when the balance
// cannot cover the amount. Nothing is debited in that case.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger reasons recorded alongside each balance change.
const (
	ReasonBet          = "bet"
	ReasonSettle       = "settle"
	ReasonRefund       = "refund"
	ReasonWelcomeBonus = "welcome_bonus"
)

// LedgerMeta describes why a balance changed.
type LedgerMeta struct {
	Reason  string
	RoundID string
	// IdempotencyKey identifies one logical movement across retries.
	IdempotencyKey string
}

// Map flattens the metadata for wallet ledgers that store free-form maps.
func (m LedgerMeta) Map() map[string]interface{} {
	out := map[string]interface{}{"reason": m.Reason}
	if m.RoundID != "" {
		out["round_id"] = m.RoundID
	}
	if m.IdempotencyKey != "" {
		out["idempotency_key"] = m.IdempotencyKey
	}
	return out
}

// LedgerPort is the player's monetary balance. Implementations must be safe
// to call from one session at a time; they need not serialize across users.
type LedgerPort interface {
	// GetBalance returns the current balance for a user.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Debit removes amount from the balance or fails with ErrInsufficientFunds.
	// A debit is never retried by callers.
	Debit(ctx context.Context, userID string, amount decimal.Decimal, meta LedgerMeta) error

	// Credit adds amount to the balance. Callers may retry a failed credit
	// with the same metadata.
	Credit(ctx context.Context, userID string, amount decimal.Decimal, meta LedgerMeta) error
}
