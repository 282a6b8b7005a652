package domain

import "github.com/shopspring/decimal"

// IsExhausted reports whether fewer than threshold cards remain in the shoe.
func IsExhausted(r *Round, threshold int) bool {
	return len(r.Shoe) < threshold
}

// ResetForNextRound moves both hands to the discard tray and clears the bet
// and turn flags. The shoe is carried over like a physical casino shoe and
// only replaced by fresh() once it falls below threshold. It reports whether
// a reshuffle happened.
func (r *Round) ResetForNextRound(threshold int, fresh func() Shoe) bool {
	r.Discards = append(r.Discards, r.Player...)
	r.Discards = append(r.Discards, r.Dealer...)

	reshuffled := false
	if IsExhausted(r, threshold) {
		r.Shoe = fresh()
		r.Discards = nil
		reshuffled = true
	}
	r.Player = nil
	r.Dealer = nil
	r.Bet = decimal.Zero
	r.Stood = false
	r.DealerPlayed = false
	return reshuffled
}

// HardReset discards everything and starts over on a fresh shoe.
func (r *Round) HardReset(shoe Shoe) {
	*r = Round{Shoe: shoe, Bet: decimal.Zero}
}
