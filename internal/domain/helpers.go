package domain

import (
	"fmt"
	"strings"
)

// String renders a card as rank followed by suit, e.g. "10H" or "AS".
func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// ParseCard is the inverse of Card.String.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	rank := Rank(code[:len(code)-1])
	suit := Suit(code[len(code)-1:])
	if !validRank(rank) || !validSuit(suit) {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MarshalText encodes the card code. The zero Card encodes as "".
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Card{}
		return nil
	}
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatCards renders a hand for logs and displays.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// UpCard returns the dealer's first card, the only one shown during the
// player's turn.
func (r *Round) UpCard() (Card, bool) {
	if len(r.Dealer) == 0 {
		return Card{}, false
	}
	return r.Dealer[0], true
}

// HoleRevealed reports whether the dealer's full hand may be shown.
func (r *Round) HoleRevealed() bool {
	return r.DealerTurnReady() || r.DealerPlayed
}

func validRank(r Rank) bool {
	for _, known := range Ranks {
		if known == r {
			return true
		}
	}
	return false
}

func validSuit(s Suit) bool {
	for _, known := range Suits {
		if known == s {
			return true
		}
	}
	return false
}
