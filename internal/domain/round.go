package domain

import "github.com/shopspring/decimal"

// NewRound returns an empty round drawing from the given shoe.
func NewRound(shoe Shoe) *Round {
	return &Round{Shoe: shoe, Bet: decimal.Zero}
}

// HandsDealt reports whether both hands hold at least two cards.
func (r *Round) HandsDealt() bool {
	return len(r.Player) >= 2 && len(r.Dealer) >= 2
}

// BetPlaced reports whether a positive wager is on the table.
func (r *Round) BetPlaced() bool {
	return r.Bet.IsPositive()
}

// IsActive reports whether any round data exists that has not been reset.
func (r *Round) IsActive() bool {
	return r.BetPlaced() || len(r.Player) > 0 || len(r.Dealer) > 0
}

// PlayerTurnReady reports whether the player may still hit or stand.
func (r *Round) PlayerTurnReady() bool {
	return r.HandsDealt() && r.BetPlaced() && !r.Player.Evaluate().IsBust && !r.Stood
}

// DealerTurnReady reports whether the player's turn is over.
func (r *Round) DealerTurnReady() bool {
	return r.HandsDealt() && (r.Player.Evaluate().IsBust || r.Stood)
}

// SettlementReady reports whether both turns are resolved. A bust player
// settles without dealer play; otherwise the dealer must have played out to
// a standing total.
func (r *Round) SettlementReady() bool {
	if !r.HandsDealt() || !r.BetPlaced() {
		return false
	}
	if r.Player.Evaluate().IsBust {
		return true
	}
	return r.DealerPlayed && r.Dealer.Evaluate().Total >= DealerStandTotal
}

// Phase derives the lifecycle stage from the round contents.
func (r *Round) Phase() Phase {
	switch {
	case len(r.Player) == 0 && len(r.Dealer) == 0:
		if r.BetPlaced() {
			return PhaseBetPlaced
		}
		return PhaseNotStarted
	case !r.HandsDealt():
		return PhaseDealing
	case r.SettlementReady():
		return PhaseSettlement
	case r.DealerTurnReady():
		return PhaseDealerTurn
	default:
		return PhasePlayerTurn
	}
}

// PlaceBet puts a validated wager on an idle round.
func (r *Round) PlaceBet(amount, available decimal.Decimal, limits BetLimits) error {
	if r.IsActive() {
		return r.notAllowed("place bet", "a round is already in progress", PhaseNotStarted)
	}
	if err := ValidateBet(amount, available, limits); err != nil {
		return err
	}
	r.Bet = amount
	return nil
}

// DealInitialHands deals player, dealer, player, dealer. A draw failure
// leaves the round partially dealt; the caller must treat the whole deal as
// failed and reset.
func (r *Round) DealInitialHands() error {
	if !r.BetPlaced() {
		return r.notAllowed("deal", "no bet placed", PhaseBetPlaced)
	}
	if len(r.Player) > 0 || len(r.Dealer) > 0 {
		return r.notAllowed("deal", "hands already dealt", PhaseBetPlaced)
	}
	for i := 0; i < 2; i++ {
		card, err := r.Shoe.Draw()
		if err != nil {
			return err
		}
		r.Player = append(r.Player, card)

		card, err = r.Shoe.Draw()
		if err != nil {
			return err
		}
		r.Dealer = append(r.Dealer, card)
	}
	return nil
}

// PlayerHit draws one card into the player's hand.
func (r *Round) PlayerHit() (Card, error) {
	if err := r.requirePlayerTurn("hit"); err != nil {
		return Card{}, err
	}
	card, err := r.Shoe.Draw()
	if err != nil {
		return Card{}, err
	}
	r.Player = append(r.Player, card)
	return card, nil
}

// PlayerStand ends the player's turn without moving any card.
func (r *Round) PlayerStand() error {
	if err := r.requirePlayerTurn("stand"); err != nil {
		return err
	}
	r.Stood = true
	return nil
}

// DealerPlay draws for the dealer while the total is below 17. The dealer
// stands on every 17, soft or hard. The drawn cards are returned even when
// the shoe runs out part way.
func (r *Round) DealerPlay() ([]Card, error) {
	if r.DealerPlayed {
		return nil, newError(KindDealerAlreadyPlayed, "dealer has already played this round")
	}
	if !r.DealerTurnReady() {
		reason := "player turn not finished"
		if !r.HandsDealt() {
			reason = "hands have not been dealt"
		}
		return nil, r.notAllowed("play dealer", reason, PhaseDealerTurn)
	}

	var drawn []Card
	for r.Dealer.Evaluate().Total < DealerStandTotal {
		card, err := r.Shoe.Draw()
		if err != nil {
			return drawn, err
		}
		r.Dealer = append(r.Dealer, card)
		drawn = append(drawn, card)
	}
	r.DealerPlayed = true
	return drawn, nil
}

// Settle computes the settlement of a fully played round. It does not reset
// the round; the caller does that once the ledger has been credited.
func (r *Round) Settle() (Settlement, error) {
	if !r.IsActive() {
		return Settlement{}, newError(KindRoundNotActive, "no active round to settle")
	}
	if !r.SettlementReady() {
		return Settlement{}, r.notAllowed("settle", "round is not finished", PhaseSettlement)
	}
	return ComputePayout(r.Player.Evaluate(), r.Dealer.Evaluate(), r.Bet), nil
}

func (r *Round) requirePlayerTurn(action string) error {
	switch {
	case !r.BetPlaced():
		return r.notAllowed(action, "no bet placed", PhasePlayerTurn)
	case !r.HandsDealt():
		return r.notAllowed(action, "hands have not been dealt", PhasePlayerTurn)
	case r.Player.Evaluate().IsBust:
		return r.notAllowed(action, "player already bust", PhasePlayerTurn)
	case r.Stood:
		return r.notAllowed(action, "player already stood", PhasePlayerTurn)
	}
	return nil
}

func (r *Round) notAllowed(action, reason string, expected Phase) *GameError {
	return newError(KindActionNotAllowed, "cannot %s: %s (expected phase %s, actual %s, bet %s)", action, reason, expected, r.Phase(), r.Bet)
}
