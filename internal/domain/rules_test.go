package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateBet(t *testing.T) {
	limits := DefaultBetLimits()
	balance := decimal.NewFromInt(100)

	tests := []struct {
		name   string
		amount string
		want   error
	}{
		{name: "ok", amount: "25", want: nil},
		{name: "half chip", amount: "2.5", want: nil},
		{name: "zero", amount: "0", want: ErrInvalidBet},
		{name: "negative", amount: "-5", want: ErrInvalidBet},
		{name: "below min", amount: "0.5", want: ErrInvalidBet},
		{name: "above max", amount: "1000.5", want: ErrInvalidBet},
		{name: "off increment", amount: "2.25", want: ErrInvalidBet},
		{name: "over balance", amount: "100.5", want: ErrInsufficientBalance},
		{name: "exact balance", amount: "100", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBet(decimal.RequireFromString(tt.amount), balance, limits)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("ValidateBet(%s) unexpected error: %v", tt.amount, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("ValidateBet(%s) error = %v, want %v", tt.amount, err, tt.want)
			}
		})
	}
}

func TestValidateBetZeroLimitsDisableChecks(t *testing.T) {
	err := ValidateBet(decimal.RequireFromString("0.01"), decimal.NewFromInt(1), BetLimits{})
	if err != nil {
		t.Fatalf("ValidateBet with zero limits: %v", err)
	}
}

func TestComputePayout(t *testing.T) {
	bet := decimal.NewFromInt(40)
	hard := func(total int) HandEvaluation {
		return HandEvaluation{Total: total, IsBust: total > BlackjackTotal}
	}
	natural := HandEvaluation{Total: 21, IsSoft: true, IsBlackjack: true}

	tests := []struct {
		name        string
		player      HandEvaluation
		dealer      HandEvaluation
		wantOutcome Outcome
		wantPayout  string
	}{
		{name: "player bust beats dealer bust", player: hard(23), dealer: hard(25), wantOutcome: OutcomeLoss, wantPayout: "0"},
		{name: "dealer bust", player: hard(12), dealer: hard(22), wantOutcome: OutcomeWin, wantPayout: "80"},
		{name: "player blackjack", player: natural, dealer: hard(21), wantOutcome: OutcomeWin, wantPayout: "100"},
		{name: "dealer blackjack", player: hard(21), dealer: natural, wantOutcome: OutcomeLoss, wantPayout: "0"},
		{name: "both blackjack", player: natural, dealer: natural, wantOutcome: OutcomePush, wantPayout: "40"},
		{name: "higher total", player: hard(20), dealer: hard(19), wantOutcome: OutcomeWin, wantPayout: "80"},
		{name: "lower total", player: hard(16), dealer: hard(21), wantOutcome: OutcomeLoss, wantPayout: "0"},
		{name: "equal total", player: hard(18), dealer: hard(18), wantOutcome: OutcomePush, wantPayout: "40"},
		{name: "three card 21 vs 21", player: hard(21), dealer: hard(21), wantOutcome: OutcomePush, wantPayout: "40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePayout(tt.player, tt.dealer, bet)
			if got.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", got.Outcome, tt.wantOutcome)
			}
			if !got.Payout.Equal(decimal.RequireFromString(tt.wantPayout)) {
				t.Errorf("payout = %s, want %s", got.Payout, tt.wantPayout)
			}
		})
	}
}

func TestComputePayoutOutcomeMatchesAmount(t *testing.T) {
	bet := decimal.NewFromInt(10)
	for p := 4; p <= 26; p++ {
		for d := 17; d <= 26; d++ {
			player := HandEvaluation{Total: p, IsBust: p > 21}
			dealer := HandEvaluation{Total: d, IsBust: d > 21}
			s := ComputePayout(player, dealer, bet)
			switch s.Outcome {
			case OutcomeLoss:
				if !s.Payout.IsZero() {
					t.Fatalf("p=%d d=%d loss paid %s", p, d, s.Payout)
				}
			case OutcomePush:
				if !s.Payout.Equal(bet) {
					t.Fatalf("p=%d d=%d push paid %s", p, d, s.Payout)
				}
			case OutcomeWin:
				if !s.Payout.GreaterThan(bet) {
					t.Fatalf("p=%d d=%d win paid %s", p, d, s.Payout)
				}
			}
		}
	}
}
