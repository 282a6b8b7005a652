package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewShoeComposition(t *testing.T) {
	shoe := NewShoe(rand.New(rand.NewSource(7)))
	if len(shoe) != ShoeSize {
		t.Fatalf("len(shoe) = %d, want %d", len(shoe), ShoeSize)
	}

	counts := make(map[Card]int)
	for _, card := range shoe {
		counts[card]++
	}
	if len(counts) != DeckSize {
		t.Fatalf("distinct cards = %d, want %d", len(counts), DeckSize)
	}
	for card, n := range counts {
		if n != DecksPerShoe {
			t.Errorf("card %s appears %d times, want %d", card, n, DecksPerShoe)
		}
	}
}

func TestNewShoeIsShuffled(t *testing.T) {
	a := NewShoe(rand.New(rand.NewSource(1)))
	b := NewShoe(rand.New(rand.NewSource(2)))
	ordered := NewOrderedShoe()

	same := func(x, y Shoe) bool {
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	}
	if same(a, ordered) {
		t.Fatal("shoe left in deck order")
	}
	if same(a, b) {
		t.Fatal("different seeds produced identical shoes")
	}
}

func TestDrawTakesFromEnd(t *testing.T) {
	shoe := Shoe{c(SuitClubs, RankTwo), c(SuitHearts, RankAce)}
	card, err := shoe.Draw()
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if card != c(SuitHearts, RankAce) {
		t.Fatalf("Draw() = %s, want AH", card)
	}
	if shoe.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", shoe.Len())
	}
}

func TestDrawEmptyShoe(t *testing.T) {
	var shoe Shoe
	_, err := shoe.Draw()
	if !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("Draw() error = %v, want ErrShoeExhausted", err)
	}
}

func TestStackedShoe(t *testing.T) {
	order := []Card{c(SuitSpades, RankAce), c(SuitHearts, RankKing), c(SuitSpades, RankAce)}
	shoe := stackedShoe(order...)
	if len(shoe) != ShoeSize {
		t.Fatalf("len(shoe) = %d, want %d", len(shoe), ShoeSize)
	}
	for i, want := range order {
		got, err := shoe.Draw()
		if err != nil {
			t.Fatalf("draw %d error: %v", i, err)
		}
		if got != want {
			t.Fatalf("draw %d = %s, want %s", i, got, want)
		}
	}
}

// stackedShoe returns a full, unshuffled shoe arranged so that successive
// draws yield next in order.
func stackedShoe(next ...Card) Shoe {
	shoe := NewOrderedShoe()
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

func c(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}
