package app

import (
	"blackjack/internal/bot"
	"blackjack/internal/domain"

	"github.com/shopspring/decimal"
)

// HandView is a hand as shown to the player. Evaluation is omitted for a
// hidden or empty hand.
type HandView struct {
	Cards      []domain.Card          `json:"cards"`
	Evaluation *domain.HandEvaluation `json:"evaluation,omitempty"`
}

// StatusView is the read model of the round.
type StatusView struct {
	RoundID       string          `json:"round_id,omitempty"`
	Phase         domain.Phase    `json:"phase"`
	Bet           decimal.Decimal `json:"bet"`
	Balance       decimal.Decimal `json:"balance"`
	ShoeRemaining int             `json:"shoe_remaining"`
	Player        HandView        `json:"player"`
	Dealer        HandView        `json:"dealer"`
	// HoleHidden is true while only the dealer up card is shown.
	HoleHidden   bool     `json:"hole_hidden"`
	Stood        bool     `json:"stood"`
	DealerPlayed bool     `json:"dealer_played"`
	LegalActions []string `json:"legal_actions"`
}

type CardDrawn struct {
	Card   domain.Card `json:"card"`
	Status StatusView  `json:"status"`
}

type DealerResult struct {
	Drawn  []domain.Card `json:"drawn"`
	Status StatusView    `json:"status"`
}

// SettlementResult reports a settled round. HistoryError carries a failed
// history write, which never fails the settlement itself.
type SettlementResult struct {
	RoundID       string          `json:"round_id"`
	Outcome       domain.Outcome  `json:"outcome"`
	Bet           decimal.Decimal `json:"bet"`
	Payout        decimal.Decimal `json:"payout"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Player        HandView        `json:"player"`
	Dealer        HandView        `json:"dealer"`
	Reshuffled    bool            `json:"reshuffled"`
	HistorySaved  bool            `json:"history_saved"`
	HistoryError  string          `json:"history_error,omitempty"`
	Receipt       string          `json:"receipt,omitempty"`
}

type HintView struct {
	Action       bot.Action  `json:"action"`
	Reason       string      `json:"reason"`
	PlayerTotal  int         `json:"player_total"`
	DealerUpCard domain.Card `json:"dealer_up_card"`
}

func handView(h domain.Hand) HandView {
	v := HandView{Cards: append([]domain.Card{}, h...)}
	if len(h) > 0 {
		eval := h.Evaluate()
		v.Evaluation = &eval
	}
	return v
}

func legalActions(r *domain.Round) []string {
	if !r.IsActive() {
		return []string{ActionStartRound}
	}
	var actions []string
	if r.PlayerTurnReady() {
		actions = append(actions, ActionHit, ActionStand, ActionHint)
	}
	if r.DealerTurnReady() && !r.DealerPlayed && !r.Player.Evaluate().IsBust {
		actions = append(actions, ActionDealerPlay)
	}
	if r.SettlementReady() {
		actions = append(actions, ActionSettle)
	}
	return actions
}
