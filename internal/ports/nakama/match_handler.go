package nakama

import (
	"context"
	"database/sql"

	"blackjack/internal/app"
	"blackjack/internal/bot"
	"blackjack/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tickRate is one tick per second, so idle timeouts are counted in ticks.
const tickRate = 1

// maxCloseAttempts bounds how many ticks a closing table keeps retrying to
// resolve an abandoned round before it gives up and closes anyway.
const maxCloseAttempts = 30

// tableSession is the part of *app.Session the match handler drives.
type tableSession interface {
	UserID() string
	Active() bool
	Handle(ctx context.Context, cmd app.Command) app.Event
	ResolveAbandoned(ctx context.Context) app.Result[app.SettlementResult]
}

// MatchState holds the authoritative runtime state of one player's table.
// The match loop is the only writer, which serializes every round operation.
type MatchState struct {
	OwnerID          string           `json:"owner_id"`
	Presence         runtime.Presence `json:"-"` // nil while the owner is not connected
	Session          tableSession     `json:"-"`
	LastActivityTick int64            `json:"last_activity_tick"`
	IdleTimeoutTicks int64            `json:"idle_timeout_ticks"` // 0 disables the timeout

	// Closing is set while an abandoned round could not be resolved yet.
	Closing       bool `json:"closing"`
	CloseAttempts int  `json:"close_attempts"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created. params must carry the
// owner's user id.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	ownerID, _ := params[MatchLabelKeyOwner].(string)
	if ownerID == "" {
		logger.Error("MatchInit: missing owner param")
		return nil, 0, ""
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.GetGameConfig().WithEnv(env)
	if err != nil {
		logger.Error("MatchInit: invalid configuration: %v", err)
		return nil, 0, ""
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state, err := newTableState(ownerID, cfg, nk, logger.WithField("match_id", matchID))
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, ""
	}

	label, err := tableLabel(ownerID)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Debug("MatchInit: table created for %s", ownerID)
	return state, tickRate, label
}

// newTableState wires a session for ownerID to the Nakama wallet and storage.
func newTableState(ownerID string, cfg config.GameConfig, nk runtime.NakamaModule, logger runtime.Logger) (*MatchState, error) {
	level, err := bot.ParseLevel(cfg.AdvisorLevel)
	if err != nil {
		return nil, err
	}
	advisor, err := bot.NewBrain(level)
	if err != nil {
		return nil, err
	}

	deps := app.Deps{
		Ledger:  NewNakamaLedgerAdapter(nk, cfg.Currency, cfg.WalletScale),
		History: NewNakamaHistoryAdapter(nk),
		Advisor: advisor,
		Logger:  logger,
	}
	if cfg.ReceiptSecret != "" {
		deps.Receipts = app.NewReceiptService(cfg.ReceiptSecret, cfg.ReceiptIssuer)
	} else {
		logger.Warn("newTableState: %s not set, settlements carry no receipt", config.EnvReceiptSecret)
	}

	return &MatchState{
		OwnerID:          ownerID,
		Session:          app.NewSession(ownerID, deps, settingsFrom(cfg), nil),
		IdleTimeoutTicks: int64(cfg.IdleTimeoutSeconds * tickRate),
	}, nil
}

func settingsFrom(cfg config.GameConfig) app.Settings {
	return app.Settings{
		Limits:              cfg.BetLimits(),
		ShoeThreshold:       cfg.ShoeThreshold,
		CreditRetryAttempts: cfg.CreditRetryAttempts,
		HistoryLimit:        cfg.HistoryLimit,
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if presence.GetUserId() != matchState.OwnerID {
		return state, false, "table is private"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() != matchState.OwnerID {
			continue
		}
		matchState.Presence = p
		matchState.LastActivityTick = tick
		matchState.Closing = false
		matchState.CloseAttempts = 0
		logger.Debug("MatchJoin: owner %s seated", p.GetUserId())

		// A reconnecting player picks up the round where it was left.
		ev := matchState.Session.Handle(ctx, app.Command{Kind: app.CommandStatus})
		mh.sendEvent(matchState, dispatcher, logger, ev)
	}
	return matchState
}

// MatchLeave resolves any round in progress and closes the table once the
// owner is gone.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() == matchState.OwnerID {
			matchState.Presence = nil
			logger.Info("MatchLeave: owner %s left, closing table", p.GetUserId())
			if mh.closeTable(ctx, matchState, logger) {
				return nil
			}
			return matchState
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	if matchState.Closing {
		if mh.closeTable(ctx, matchState, logger) {
			return nil
		}
		return matchState
	}

	for _, msg := range messages {
		if msg.GetUserId() != matchState.OwnerID {
			logger.Warn("MatchLoop: ignoring message from non-owner %s", msg.GetUserId())
			continue
		}
		matchState.LastActivityTick = tick

		cmd, err := decodeCommand(msg.GetOpCode(), msg.GetData())
		if err != nil {
			logger.Warn("MatchLoop: bad message (op %d) from %s: %v", msg.GetOpCode(), msg.GetUserId(), err)
			mh.sendError(matchState, dispatcher, logger, err)
			continue
		}
		ev := matchState.Session.Handle(ctx, cmd)
		mh.sendEvent(matchState, dispatcher, logger, ev)
	}

	if matchState.IdleTimeoutTicks > 0 && tick-matchState.LastActivityTick >= matchState.IdleTimeoutTicks {
		logger.Info("MatchLoop: table idle since tick %d, closing", matchState.LastActivityTick)
		if mh.closeTable(ctx, matchState, logger) {
			return nil
		}
	}

	return matchState
}

// closeTable reports whether the table may close. While an abandoned round
// stays unresolved the table is kept and retried on later ticks, up to
// maxCloseAttempts.
func (mh *matchHandler) closeTable(ctx context.Context, state *MatchState, logger runtime.Logger) bool {
	if mh.resolveAbandoned(ctx, state, logger) {
		return true
	}
	state.CloseAttempts++
	if state.CloseAttempts >= maxCloseAttempts {
		logger.Error("closeTable: giving up on round for %s after %d attempts", state.OwnerID, state.CloseAttempts)
		return true
	}
	state.Closing = true
	return false
}

// resolveAbandoned finishes an open round so the bet is never stranded. It
// reports false while the round is still open.
func (mh *matchHandler) resolveAbandoned(ctx context.Context, state *MatchState, logger runtime.Logger) bool {
	if !state.Session.Active() {
		return true
	}
	res := state.Session.ResolveAbandoned(ctx)
	if !res.OK {
		logger.Error("resolveAbandoned: round for %s not resolved: %v", state.OwnerID, res.Err())
		return !state.Session.Active()
	}
	logger.Info("resolveAbandoned: round %s settled as %s, payout %s", res.Payload.RoundID, res.Payload.Outcome, res.Payload.Payout)
	return true
}

// sendEvent delivers an app event to its recipients. Events addressed to a
// player who is not connected are dropped.
func (mh *matchHandler) sendEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("sendEvent: %v", err)
		return
	}

	var recipients []runtime.Presence
	for _, uid := range ev.Recipients {
		if state.Presence != nil && uid == state.Presence.GetUserId() {
			recipients = append(recipients, state.Presence)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("sendEvent: broadcast of %s failed: %v", ev.Kind, err)
	}
}

// sendError reports a request that could not be decoded to the owner.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, err error) {
	if state.Presence == nil {
		logger.Warn("Cannot send error to %s: Presence not found", state.OwnerID)
		return
	}
	if bErr := dispatcher.BroadcastMessage(OpError, encodeFailure(err), []runtime.Presence{state.Presence}, nil, true); bErr != nil {
		logger.Error("sendError: broadcast failed: %v", bErr)
	}
}

// MatchTerminate settles an open round before the server shuts the match down.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: terminating with %d seconds grace", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		mh.resolveAbandoned(ctx, matchState, logger)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

