package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type walletCall struct {
	userID    string
	changeset map[string]int64
	metadata  map[string]interface{}
}

// fakeNakama is an in-memory stand-in for the parts of the Nakama module the
// adapters, RPCs and hook use. Calling any other method panics.
type fakeNakama struct {
	runtime.NakamaModule

	wallets     map[string]map[string]int64
	walletCalls []walletCall
	walletErr   error
	// lostAcks makes that many MultiUpdate calls commit and then report an
	// error, as when the response is lost after the server applied it.
	lostAcks int

	storage    map[string]*api.StorageObject
	storageErr error

	matches      []*api.Match
	matchQueries []string
	created      []map[string]interface{}

	profiles map[string]string
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{
		wallets:  make(map[string]map[string]int64),
		storage:  make(map[string]*api.StorageObject),
		profiles: make(map[string]string),
	}
}

func (f *fakeNakama) fund(userID, currency string, units int64) {
	if f.wallets[userID] == nil {
		f.wallets[userID] = make(map[string]int64)
	}
	f.wallets[userID][currency] = units
}

func (f *fakeNakama) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	wallet, err := json.Marshal(f.wallets[userID])
	if err != nil {
		return nil, err
	}
	return &api.Account{User: &api.User{Id: userID}, Wallet: string(wallet)}, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.profiles[userID] = displayName
	return nil
}

func (f *fakeNakama) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	if f.walletErr != nil {
		return nil, nil, f.walletErr
	}
	if err := f.applyWallet(userID, changeset); err != nil {
		return nil, nil, err
	}
	f.walletCalls = append(f.walletCalls, walletCall{userID: userID, changeset: changeset, metadata: metadata})
	return f.wallets[userID], nil, nil
}

func (f *fakeNakama) applyWallet(userID string, changeset map[string]int64) error {
	current := f.wallets[userID]
	for k, v := range changeset {
		if current[k]+v < 0 {
			return errors.New("wallet update rejected: negative balance")
		}
	}
	for k, v := range changeset {
		if f.wallets[userID] == nil {
			f.wallets[userID] = make(map[string]int64)
		}
		f.wallets[userID][k] += v
	}
	return nil
}

func storageID(collection, userID, key string) string {
	return collection + "/" + userID + "/" + key
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.storageErr != nil {
		return nil, f.storageErr
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		f.storage[storageID(w.Collection, w.UserID, w.Key)] = &api.StorageObject{
			Collection:      w.Collection,
			Key:             w.Key,
			UserId:          w.UserID,
			Value:           w.Value,
			PermissionRead:  int32(w.PermissionRead),
			PermissionWrite: int32(w.PermissionWrite),
		}
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (f *fakeNakama) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	if f.storageErr != nil {
		return nil, "", f.storageErr
	}
	var objects []*api.StorageObject
	for _, obj := range f.storage {
		if obj.GetUserId() == userID && obj.GetCollection() == collection {
			objects = append(objects, obj)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].GetKey() < objects[j].GetKey() })
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects, "", nil
}

func (f *fakeNakama) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	for _, w := range storageWrites {
		if _, exists := f.storage[storageID(w.Collection, w.UserID, w.Key)]; exists && w.Version == "*" {
			return nil, nil, runtime.ErrStorageRejectedVersion
		}
	}
	acks, err := f.StorageWrite(ctx, storageWrites)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range walletUpdates {
		if err := f.applyWallet(u.UserID, u.Changeset); err != nil {
			return nil, nil, err
		}
		f.walletCalls = append(f.walletCalls, walletCall{userID: u.UserID, changeset: u.Changeset, metadata: u.Metadata})
	}
	if f.lostAcks > 0 {
		f.lostAcks--
		return nil, nil, errors.New("context deadline exceeded")
	}
	return acks, nil, nil
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.matchQueries = append(f.matchQueries, query)
	return f.matches, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return "match-" + strconv.Itoa(len(f.created)), nil
}

// fakePresence carries only the identity fields the handler reads.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string    { return p.userID }
func (p fakePresence) GetSessionId() string { return "session-" + p.userID }
func (p fakePresence) GetUsername() string  { return p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetUserId() string { return m.userID }
func (m fakeMatchData) GetOpCode() int64  { return m.opCode }
func (m fakeMatchData) GetData() []byte   { return m.data }

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records broadcasts for assertions.
type mockDispatcher struct {
	runtime.MatchDispatcher
	sent   []sentMessage
	labels []string
}

func (d *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	d.sent = append(d.sent, sentMessage{opCode: opCode, data: data, recipients: presences})
	return nil
}

func (d *mockDispatcher) MatchLabelUpdate(label string) error {
	d.labels = append(d.labels, label)
	return nil
}

func (d *mockDispatcher) last() sentMessage {
	if len(d.sent) == 0 {
		return sentMessage{}
	}
	return d.sent[len(d.sent)-1]
}

// decodeResult reads the ok flag and error kind of a Result body.
func decodeResult(data []byte) (ok bool, kind string, err error) {
	var body struct {
		OK    bool `json:"ok"`
		Error *struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return false, "", err
	}
	if body.Error != nil {
		kind = body.Error.Kind
	}
	return body.OK, kind, nil
}
