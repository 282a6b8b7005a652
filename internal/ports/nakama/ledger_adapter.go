package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
)

// CreditCollection holds one marker per applied keyed credit.
const CreditCollection = "ledger_credits"

// walletModule is the slice of runtime.NakamaModule the ledger adapter uses.
type walletModule interface {
	multiUpdateModule
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (updated map[string]int64, previous map[string]int64, err error)
}

// NakamaLedgerAdapter implements ports.LedgerPort on the Nakama wallet. Each
// wallet update is atomic on the server, so concurrent sessions of other
// users need no coordination here.
type NakamaLedgerAdapter struct {
	nk    walletModule
	chips chipCodec
}

// NewNakamaLedgerAdapter creates a ledger over the given wallet currency.
func NewNakamaLedgerAdapter(nk walletModule, currency string, scale int32) *NakamaLedgerAdapter {
	return &NakamaLedgerAdapter{
		nk:    nk,
		chips: chipCodec{currency: currency, scale: scale},
	}
}

// GetBalance retrieves the current chip balance for a user.
func (a *NakamaLedgerAdapter) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get account: %w", err)
	}
	return a.chips.balanceOf(account.GetWallet())
}

// Debit removes amount from the wallet. The balance is checked first; the
// server also rejects any update that would go negative.
func (a *NakamaLedgerAdapter) Debit(ctx context.Context, userID string, amount decimal.Decimal, meta ports.LedgerMeta) error {
	units, err := a.chips.toMinor(amount)
	if err != nil {
		return err
	}
	if units <= 0 {
		return fmt.Errorf("debit amount must be positive, got %s", amount)
	}

	balance, err := a.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(balance) {
		return ports.ErrInsufficientFunds
	}

	changes := map[string]int64{a.chips.currency: -units}
	if _, _, err := a.nk.WalletUpdate(ctx, userID, changes, meta.Map(), true); err != nil {
		if strings.Contains(err.Error(), "negative") {
			return ports.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to debit wallet for user %s: %w", userID, err)
	}
	return nil
}

// Credit adds amount to the wallet. A credit carrying an idempotency key is
// committed together with a marker written at version "*"; if the marker
// already exists the credit was applied by an earlier attempt and Credit
// returns nil without touching the wallet.
func (a *NakamaLedgerAdapter) Credit(ctx context.Context, userID string, amount decimal.Decimal, meta ports.LedgerMeta) error {
	units, err := a.chips.toMinor(amount)
	if err != nil {
		return err
	}
	if units <= 0 {
		return fmt.Errorf("credit amount must be positive, got %s", amount)
	}

	changes := map[string]int64{a.chips.currency: units}
	if meta.IdempotencyKey == "" {
		if _, _, err := a.nk.WalletUpdate(ctx, userID, changes, meta.Map(), true); err != nil {
			return fmt.Errorf("failed to credit wallet for user %s: %w", userID, err)
		}
		return nil
	}

	value, err := json.Marshal(map[string]interface{}{
		"amount":   amount.String(),
		"currency": a.chips.currency,
		"reason":   meta.Reason,
		"round_id": meta.RoundID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credit marker: %w", err)
	}
	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      CreditCollection,
			Key:             meta.IdempotencyKey,
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
			Changeset: changes,
			Metadata:  meta.Map(),
		},
	}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return nil
		}
		return fmt.Errorf("failed to credit wallet for user %s: %w", userID, err)
	}
	return nil
}

var (
	_ ports.LedgerPort = (*NakamaLedgerAdapter)(nil)
	_ walletModule     = (runtime.NakamaModule)(nil)
)
