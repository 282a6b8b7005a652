package bot

import (
	"blackjack/internal/domain"
)

// Action is a player decision during the player turn.
type Action string

const (
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// Move represents the decision made by the advisor.
type Move struct {
	Action Action
	Reason string
}

// Brain is the interface that all advisor strategies must implement.
type Brain interface {
	CalculateMove(player domain.Hand, dealerUp domain.Card) (Move, error)
}
