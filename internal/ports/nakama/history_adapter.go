package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// HistoryCollection holds one storage object per settled round.
const HistoryCollection = "blackjack_rounds"

// storageModule is the slice of runtime.NakamaModule the history adapter uses.
type storageModule interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error)
}

// NakamaHistoryAdapter implements ports.HistoryPort on Nakama storage.
type NakamaHistoryAdapter struct {
	nk storageModule
}

// NewNakamaHistoryAdapter creates a new history adapter.
func NewNakamaHistoryAdapter(nk storageModule) *NakamaHistoryAdapter {
	return &NakamaHistoryAdapter{nk: nk}
}

// SaveRound writes the summary owner-readable and server-writable only.
func (a *NakamaHistoryAdapter) SaveRound(ctx context.Context, userID string, summary ports.RoundSummary) error {
	if userID == "" || summary.RoundID == "" {
		return fmt.Errorf("userID and round id are required")
	}
	value, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal round summary: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      HistoryCollection,
			Key:             historyKey(summary),
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write round %s: %w", summary.RoundID, err)
	}
	return nil
}

// ListRounds returns the user's most recent rounds, newest first.
func (a *NakamaHistoryAdapter) ListRounds(ctx context.Context, userID string, limit int) ([]ports.RoundSummary, error) {
	objects, _, err := a.nk.StorageList(ctx, "", userID, HistoryCollection, limit, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	rounds := make([]ports.RoundSummary, 0, len(objects))
	for _, obj := range objects {
		var summary ports.RoundSummary
		if err := json.Unmarshal([]byte(obj.GetValue()), &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round %s: %w", obj.GetKey(), err)
		}
		rounds = append(rounds, summary)
	}
	sort.SliceStable(rounds, func(i, j int) bool {
		return rounds[i].SettledAt.After(rounds[j].SettledAt)
	})
	return rounds, nil
}

// historyKey sorts newest first under the lexical key order storage lists in.
func historyKey(s ports.RoundSummary) string {
	return fmt.Sprintf("%019d-%s", math.MaxInt64-s.SettledAt.UnixNano(), s.RoundID)
}

var (
	_ ports.HistoryPort = (*NakamaHistoryAdapter)(nil)
	_ storageModule     = (runtime.NakamaModule)(nil)
)
