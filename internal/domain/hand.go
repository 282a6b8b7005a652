package domain

// Hand is an ordered card sequence. It only grows by append and is cleared
// at round reset.
type Hand []Card

// HandEvaluation is derived from a Hand on every read and never cached.
type HandEvaluation struct {
	Total       int  `json:"total"`
	IsSoft      bool `json:"is_soft"`
	IsBlackjack bool `json:"is_blackjack"`
	IsBust      bool `json:"is_bust"`
}

// Value returns the base point value of a card with aces counted as 1.
func (c Card) Value() int {
	switch c.Rank {
	case RankAce:
		return 1
	case RankJack, RankQueen, RankKing, RankTen:
		return 10
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	}
	return 0
}

// Evaluate computes the best total of a hand. Every ace counts 1; one ace is
// promoted to 11 when that keeps the total at or under 21. Two promoted aces
// would add 20, which can never satisfy that guard.
func Evaluate(hand Hand) HandEvaluation {
	total := 0
	aces := 0
	for _, c := range hand {
		if c.Rank == RankAce {
			aces++
		}
		total += c.Value()
	}

	soft := false
	if aces > 0 && total+10 <= BlackjackTotal {
		total += 10
		soft = true
	}

	return HandEvaluation{
		Total:       total,
		IsSoft:      soft,
		IsBlackjack: len(hand) == 2 && total == BlackjackTotal,
		IsBust:      total > BlackjackTotal,
	}
}

// Evaluate is a convenience for Evaluate(h).
func (h Hand) Evaluate() HandEvaluation {
	return Evaluate(h)
}
