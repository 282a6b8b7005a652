package domain

const (
	// DecksPerShoe is the number of 52-card decks in a fresh shoe.
	DecksPerShoe = 6
	// DeckSize is the number of cards in one deck.
	DeckSize = 52
	// ShoeSize is the number of cards in a fresh shoe.
	ShoeSize = DecksPerShoe * DeckSize

	// BlackjackTotal is the best possible hand total.
	BlackjackTotal = 21
	// DealerStandTotal is the total at which the dealer stops drawing,
	// soft or hard.
	DealerStandTotal = 17

	// DefaultShoeThreshold is the remaining-card count below which the shoe
	// is replaced at round reset.
	DefaultShoeThreshold = 50

	// cardCountTolerance bounds how far shoe+hands may drift from ShoeSize
	// before the round is considered corrupt.
	cardCountTolerance = 8
)
