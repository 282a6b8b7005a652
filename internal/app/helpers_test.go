package app

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"blackjack/internal/bot"
	"blackjack/internal/domain"
	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type ledgerCall struct {
	amount decimal.Decimal
	meta   ports.LedgerMeta
}

// fakeLedger is an in-memory ledger. creditFailures makes the next n credit
// calls fail before any succeed.
type fakeLedger struct {
	balance        decimal.Decimal
	debitErr       error
	balanceErr     error
	creditFailures int
	debits         []ledgerCall
	credits        []ledgerCall
	creditAttempts int
}

func newFakeLedger(balance int64) *fakeLedger {
	return &fakeLedger{balance: decimal.NewFromInt(balance)}
}

func (f *fakeLedger) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal, meta ports.LedgerMeta) error {
	if f.debitErr != nil {
		return f.debitErr
	}
	if amount.GreaterThan(f.balance) {
		return ports.ErrInsufficientFunds
	}
	f.balance = f.balance.Sub(amount)
	f.debits = append(f.debits, ledgerCall{amount: amount, meta: meta})
	return nil
}

func (f *fakeLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal, meta ports.LedgerMeta) error {
	f.creditAttempts++
	if f.creditFailures > 0 {
		f.creditFailures--
		return errors.New("ledger timeout")
	}
	f.balance = f.balance.Add(amount)
	f.credits = append(f.credits, ledgerCall{amount: amount, meta: meta})
	return nil
}

type fakeHistory struct {
	saveErr error
	saved   []ports.RoundSummary
}

func (f *fakeHistory) SaveRound(ctx context.Context, userID string, summary ports.RoundSummary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, summary)
	return nil
}

func (f *fakeHistory) ListRounds(ctx context.Context, userID string, limit int) ([]ports.RoundSummary, error) {
	out := make([]ports.RoundSummary, 0, limit)
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.saved[i])
	}
	return out, nil
}

// newTestSession builds a session whose first shoe deals next in order.
func newTestSession(t *testing.T, ledger *fakeLedger, history *fakeHistory, next ...domain.Card) *Session {
	t.Helper()
	deps := Deps{
		Ledger:  ledger,
		Advisor: &bot.SmartBot{},
		Logger:  noopLogger{},
	}
	if history != nil {
		deps.History = history
	}
	s := NewSession("user-1", deps, DefaultSettings(), rand.New(rand.NewSource(1)))
	first := true
	s.newShoe = func() domain.Shoe {
		if first {
			first = false
			return stackedShoe(next...)
		}
		return domain.NewOrderedShoe()
	}
	return s
}

// stackedShoe returns a full, unshuffled shoe whose first draws are next.
func stackedShoe(next ...domain.Card) domain.Shoe {
	shoe := domain.NewOrderedShoe()
	for _, want := range next {
		for i, c := range shoe {
			if c == want {
				shoe = append(shoe[:i], shoe[i+1:]...)
				break
			}
		}
	}
	for i := len(next) - 1; i >= 0; i-- {
		shoe = append(shoe, next[i])
	}
	return shoe
}

func card(r domain.Rank, s domain.Suit) domain.Card {
	return domain.Card{Suit: s, Rank: r}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
