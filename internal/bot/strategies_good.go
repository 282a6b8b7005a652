package bot

import (
	"fmt"

	"blackjack/internal/domain"
)

// GoodBot plays the dealer's rule: hit below 17, stand otherwise. It ignores
// the dealer up card.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(player domain.Hand, dealerUp domain.Card) (Move, error) {
	if len(player) < 2 {
		return Move{}, fmt.Errorf("hand not dealt")
	}
	eval := player.Evaluate()
	if eval.IsBust {
		return Move{Action: ActionStand, Reason: "bust"}, nil
	}
	if eval.Total < domain.DealerStandTotal {
		return Move{Action: ActionHit, Reason: fmt.Sprintf("%d is below %d", eval.Total, domain.DealerStandTotal)}, nil
	}
	return Move{Action: ActionStand, Reason: fmt.Sprintf("%d stands", eval.Total)}, nil
}
