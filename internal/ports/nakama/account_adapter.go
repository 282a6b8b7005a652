package nakama

import (
	"context"

	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// accountModule is the slice of runtime.NakamaModule the account adapter uses.
type accountModule interface {
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk accountModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk accountModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile sets username and display name, leaving other fields unchanged.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

var (
	_ ports.AccountPort = (*NakamaAccountAdapter)(nil)
	_ accountModule     = (runtime.NakamaModule)(nil)
)
