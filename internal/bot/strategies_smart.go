package bot

import (
	"fmt"

	"blackjack/internal/domain"
)

// SmartBot follows hit/stand basic strategy for a multi-deck shoe where the
// dealer stands on soft 17. Doubles and splits are not offered at this table,
// so those cells collapse to hit.
type SmartBot struct{}

func (b *SmartBot) CalculateMove(player domain.Hand, dealerUp domain.Card) (Move, error) {
	if len(player) < 2 {
		return Move{}, fmt.Errorf("hand not dealt")
	}
	eval := player.Evaluate()
	if eval.IsBust {
		return Move{Action: ActionStand, Reason: "bust"}, nil
	}

	up := upCardValue(dealerUp)
	if up == 0 {
		return Move{}, fmt.Errorf("invalid dealer up card %q", dealerUp.String())
	}

	if eval.IsSoft {
		return softMove(eval.Total, up), nil
	}
	return hardMove(eval.Total, up), nil
}

func hardMove(total, up int) Move {
	switch {
	case total <= 11:
		return Move{Action: ActionHit, Reason: fmt.Sprintf("hard %d cannot bust", total)}
	case total == 12 && up >= 4 && up <= 6:
		return Move{Action: ActionStand, Reason: fmt.Sprintf("hard 12 against a weak %d", up)}
	case total == 12:
		return Move{Action: ActionHit, Reason: fmt.Sprintf("hard 12 against %d", up)}
	case total <= 16 && up <= 6:
		return Move{Action: ActionStand, Reason: fmt.Sprintf("hard %d, dealer %d is likely to bust", total, up)}
	case total <= 16:
		return Move{Action: ActionHit, Reason: fmt.Sprintf("hard %d against a strong %d", total, up)}
	default:
		return Move{Action: ActionStand, Reason: fmt.Sprintf("hard %d", total)}
	}
}

func softMove(total, up int) Move {
	switch {
	case total <= 17:
		return Move{Action: ActionHit, Reason: fmt.Sprintf("soft %d cannot bust", total)}
	case total == 18 && up >= 9:
		return Move{Action: ActionHit, Reason: fmt.Sprintf("soft 18 against %d", up)}
	default:
		return Move{Action: ActionStand, Reason: fmt.Sprintf("soft %d", total)}
	}
}

// upCardValue counts the dealer ace as 11.
func upCardValue(c domain.Card) int {
	if c.Rank == domain.RankAce {
		return 11
	}
	return c.Value()
}
