package domain

import "math/rand"

// Shoe is a stack of cards. The draw end is the end of the slice.
type Shoe []Card

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// NewOrderedShoe returns DecksPerShoe unshuffled decks stacked together.
func NewOrderedShoe() Shoe {
	shoe := make(Shoe, 0, ShoeSize)
	for i := 0; i < DecksPerShoe; i++ {
		shoe = append(shoe, NewDeck()...)
	}
	return shoe
}

// NewShoe returns a uniformly shuffled 312-card shoe.
func NewShoe(rng *rand.Rand) Shoe {
	shoe := NewOrderedShoe()
	// rand.Shuffle is a Fisher-Yates shuffle.
	rng.Shuffle(len(shoe), func(i, j int) { shoe[i], shoe[j] = shoe[j], shoe[i] })
	return shoe
}

// Draw removes and returns the card at the draw end of the shoe.
// It fails with ErrShoeExhausted on an empty shoe.
func (s *Shoe) Draw() (Card, error) {
	n := len(*s)
	if n == 0 {
		return Card{}, newError(KindShoeExhausted, "shoe is empty, cannot draw card")
	}
	card := (*s)[n-1]
	*s = (*s)[:n-1]
	return card, nil
}

// Len reports the number of cards left in the shoe.
func (s Shoe) Len() int {
	return len(s)
}
