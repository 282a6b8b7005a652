package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
)

const (
	welcomeBonusCollection = "onboarding"
	welcomeBonusKey        = "welcome_bonus_v1"
)

// multiUpdateModule is the slice of runtime.NakamaModule the welcome bonus
// adapter uses.
type multiUpdateModule interface {
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

// NakamaWelcomeBonusAdapter grants starting chips using Nakama storage + wallet updates.
type NakamaWelcomeBonusAdapter struct {
	nk    multiUpdateModule
	chips chipCodec
	now   func() time.Time
}

// NewNakamaWelcomeBonusAdapter creates a new welcome bonus adapter.
func NewNakamaWelcomeBonusAdapter(nk multiUpdateModule, currency string, scale int32) *NakamaWelcomeBonusAdapter {
	return &NakamaWelcomeBonusAdapter{
		nk:    nk,
		chips: chipCodec{currency: currency, scale: scale},
		now:   time.Now,
	}
}

// GrantWelcomeBonusOnce credits amount and records a marker atomically. The
// marker is written with version "*", so a second grant is rejected by
// storage and reported as granted=false.
func (a *NakamaWelcomeBonusAdapter) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount decimal.Decimal, meta ports.LedgerMeta) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	units, err := a.chips.toMinor(amount)
	if err != nil {
		return false, err
	}
	if units <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	marker := map[string]interface{}{
		"amount":     amount.String(),
		"currency":   a.chips.currency,
		"granted_at": a.now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal welcome bonus marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      welcomeBonusCollection,
			Key:             welcomeBonusKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{a.chips.currency: units},
			Metadata:  meta.Map(),
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant welcome bonus: %w", err)
	}

	return true, nil
}

var (
	_ ports.WelcomeBonusPort = (*NakamaWelcomeBonusAdapter)(nil)
	_ multiUpdateModule      = (runtime.NakamaModule)(nil)
)
