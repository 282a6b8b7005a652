package domain

import "github.com/shopspring/decimal"

// Suit is one of the four French suits.
type Suit string

const (
	SuitClubs    Suit = "C"
	SuitDiamonds Suit = "D"
	SuitHearts   Suit = "H"
	SuitSpades   Suit = "S"
)

// Suits lists every suit in deck-building order.
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Rank is the face of a card ("2".."10", "J", "Q", "K", "A").
type Rank string

const (
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankAce   Rank = "A"
)

// Ranks lists every rank in deck-building order.
var Ranks = []Rank{
	RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight,
	RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
}

// Card is an immutable playing card. It encodes as its short code ("10H")
// in JSON and storage.
type Card struct {
	Suit Suit
	Rank Rank
}

// Phase is the lifecycle stage of a round. It is always derived from the
// round contents by (*Round).Phase and never stored.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseBetPlaced  Phase = "bet_placed"
	// PhaseDealing means at least one hand holds fewer than two cards while
	// the other is non-empty. Only observable if a deal was interrupted.
	PhaseDealing    Phase = "dealing"
	PhasePlayerTurn Phase = "player_turn"
	PhaseDealerTurn Phase = "dealer_turn"
	PhaseSettlement Phase = "settlement"
)

// Round is the single mutable aggregate for one blackjack seat. A session
// owns exactly one Round and resets it in place between hands.
type Round struct {
	Shoe   Shoe
	Player Hand
	Dealer Hand
	Bet    decimal.Decimal
	// Discards holds cards from finished rounds until the next reshuffle.
	Discards []Card

	// Stood records an explicit stand; card count alone cannot tell a player
	// who hit and then stood apart from one who has not acted.
	Stood bool
	// DealerPlayed is set once dealer play has run to completion.
	DealerPlayed bool
}
