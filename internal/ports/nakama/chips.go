package nakama

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// chipCodec converts chip amounts to the integer minor units Nakama wallets
// store, e.g. 12.5 chips at scale 2 is 1250.
type chipCodec struct {
	currency string
	scale    int32
}

func (c chipCodec) toMinor(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(c.scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, c.scale)
	}
	return shifted.IntPart(), nil
}

func (c chipCodec) fromMinor(units int64) decimal.Decimal {
	return decimal.New(units, -c.scale)
}

// balanceOf reads the currency from an account wallet JSON document.
func (c chipCodec) balanceOf(wallet string) (decimal.Decimal, error) {
	if wallet == "" {
		return decimal.Zero, nil
	}
	var values map[string]int64
	if err := json.Unmarshal([]byte(wallet), &values); err != nil {
		return decimal.Zero, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}
	return c.fromMinor(values[c.currency]), nil
}
