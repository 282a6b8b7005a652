package domain

import "fmt"

// Validate checks the structural invariants of a round. It runs before every
// operation, read-only ones included. A failed round is unrecoverable and
// must be discarded, not repaired.
func Validate(r *Round) (bool, string) {
	if r == nil {
		return false, "round state missing"
	}

	shoe := len(r.Shoe)
	if shoe > ShoeSize {
		return false, fmt.Sprintf("invalid shoe count: %d exceeds %d", shoe, ShoeSize)
	}

	total := shoe + len(r.Player) + len(r.Dealer) + len(r.Discards)
	if total > ShoeSize+cardCountTolerance || total < ShoeSize-cardCountTolerance {
		return false, fmt.Sprintf("card count corruption: %d cards in play, expected %d", total, ShoeSize)
	}

	if r.Bet.IsNegative() {
		return false, fmt.Sprintf("negative bet %s", r.Bet)
	}
	if (len(r.Player) > 0 || len(r.Dealer) > 0) && !r.BetPlaced() {
		return false, "cards dealt without a bet"
	}
	if (len(r.Player) == 0) != (len(r.Dealer) == 0) || len(r.Player) == 1 || len(r.Dealer) == 1 {
		return false, fmt.Sprintf("incomplete deal: player holds %d cards, dealer holds %d", len(r.Player), len(r.Dealer))
	}
	if r.DealerPlayed && !r.DealerTurnReady() {
		return false, "dealer played before the player turn ended"
	}

	return true, "game state is consistent"
}

// CheckConsistency wraps Validate as a StateCorruption error.
func CheckConsistency(r *Round) error {
	if ok, reason := Validate(r); !ok {
		return newError(KindStateCorruption, "state corruption detected: %s", reason)
	}
	return nil
}
