package domain

import "github.com/shopspring/decimal"

// BetLimits bounds an acceptable wager.
type BetLimits struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Increment decimal.Decimal
}

// DefaultBetLimits matches the stock table configuration.
func DefaultBetLimits() BetLimits {
	return BetLimits{
		Min:       decimal.NewFromInt(1),
		Max:       decimal.NewFromInt(1000),
		Increment: decimal.New(5, -1),
	}
}

// ValidateBet checks a wager against the table limits and the balance the
// ledger currently reports. The ledger debit remains the authority on funds;
// this only rejects obviously unpayable bets early.
func ValidateBet(amount, available decimal.Decimal, limits BetLimits) error {
	if !amount.IsPositive() {
		return newError(KindInvalidBet, "bet amount must be positive, got %s", amount)
	}
	if limits.Min.IsPositive() && amount.LessThan(limits.Min) {
		return newError(KindInvalidBet, "bet %s is below the table minimum %s", amount, limits.Min)
	}
	if limits.Max.IsPositive() && amount.GreaterThan(limits.Max) {
		return newError(KindInvalidBet, "bet %s exceeds the table maximum %s", amount, limits.Max)
	}
	if limits.Increment.IsPositive() && !amount.Mod(limits.Increment).IsZero() {
		return newError(KindInvalidBet, "bet %s is not a multiple of %s", amount, limits.Increment)
	}
	if amount.GreaterThan(available) {
		return newError(KindInsufficientBalance, "insufficient balance: bet %s, balance %s", amount, available)
	}
	return nil
}

// Outcome is the result of a settled round from the player's side.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// Settlement is the outcome of a round and the total amount returned to the
// player. The stake was taken at bet time, so a payout of 0 is a loss, the
// bet itself is a push, and anything above the bet is a win.
type Settlement struct {
	Outcome Outcome         `json:"outcome"`
	Payout  decimal.Decimal `json:"payout"`
}

var (
	evenMoneyMultiplier = decimal.NewFromInt(2)
	blackjackMultiplier = decimal.New(25, -1)
)

// ComputePayout applies the payout rule. The checks are ordered: a three
// card 21 is not a blackjack and only pays even money.
func ComputePayout(player, dealer HandEvaluation, bet decimal.Decimal) Settlement {
	switch {
	case player.IsBust:
		return Settlement{Outcome: OutcomeLoss, Payout: decimal.Zero}
	case dealer.IsBust:
		return Settlement{Outcome: OutcomeWin, Payout: bet.Mul(evenMoneyMultiplier)}
	case player.IsBlackjack && !dealer.IsBlackjack:
		return Settlement{Outcome: OutcomeWin, Payout: bet.Mul(blackjackMultiplier)}
	case dealer.IsBlackjack && !player.IsBlackjack:
		return Settlement{Outcome: OutcomeLoss, Payout: decimal.Zero}
	case player.IsBlackjack && dealer.IsBlackjack:
		return Settlement{Outcome: OutcomePush, Payout: bet}
	case player.Total > dealer.Total:
		return Settlement{Outcome: OutcomeWin, Payout: bet.Mul(evenMoneyMultiplier)}
	case player.Total < dealer.Total:
		return Settlement{Outcome: OutcomeLoss, Payout: decimal.Zero}
	default:
		return Settlement{Outcome: OutcomePush, Payout: bet}
	}
}
