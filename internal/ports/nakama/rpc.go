package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"blackjack/internal/app"
	"blackjack/internal/config"
	"blackjack/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateTableResponse is returned by RpcCreateTable.
type CreateTableResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// HistoryRequest is the optional payload of RpcHistory.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// RegisterRPCs registers all RPC endpoints with the Nakama initializer.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateTable, RpcCreateTableHandler); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcHistory, RpcHistoryHandler); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcVerifyReceipt, RpcVerifyReceiptHandler); err != nil {
		return err
	}
	return nil
}

// RpcCreateTableHandler returns the caller's table, creating it when the
// caller has none. Each player gets one private table.
func RpcCreateTableHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user ID in context", codeUnauthenticated)
	}

	minSize := 0
	maxSize := 1
	query := fmt.Sprintf("+label.%s:%q", MatchLabelKeyOwner, userID)
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("RpcCreateTable [User:%s]: Failed to list matches: %v", userID, err)
		return "", runtime.NewError("unable to look up table", codeInternal)
	}

	resp := CreateTableResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].GetMatchId()
		logger.Info("RpcCreateTable [User:%s]: Found existing table %s", userID, resp.MatchID)
	} else {
		matchID, err := nk.MatchCreate(ctx, MatchNameBlackjack, map[string]interface{}{MatchLabelKeyOwner: userID})
		if err != nil {
			logger.Error("RpcCreateTable [User:%s]: Failed to create match: %v", userID, err)
			return "", runtime.NewError("unable to create table", codeInternal)
		}
		resp.MatchID = matchID
		resp.IsNew = true
		logger.Info("RpcCreateTable [User:%s]: Created new table %s", userID, matchID)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("unable to encode response", codeInternal)
	}
	return string(out), nil
}

// RpcHistoryHandler lists the caller's recent rounds as a Result of round summaries.
//
// Payload: (Optional) {"limit": n}; limits outside (0, history_limit] use history_limit.
func RpcHistoryHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user ID in context", codeUnauthenticated)
	}

	var req HistoryRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload: expected {\"limit\": n}", codeInvalidArgument)
		}
	}

	cfg := config.GetGameConfig()
	logger = logger.WithField("user_id", userID)
	session := app.NewSession(userID, app.Deps{
		Ledger:  NewNakamaLedgerAdapter(nk, cfg.Currency, cfg.WalletScale),
		History: NewNakamaHistoryAdapter(nk),
		Logger:  logger,
	}, settingsFrom(cfg), nil)

	res := session.GetHistory(ctx, req.Limit)
	if !res.OK {
		logger.Error("RpcHistory: %v", res.Err())
		return "", runtime.NewError(res.Failure.Message, errorCode(res.Failure.Kind))
	}

	out, err := json.Marshal(res)
	if err != nil {
		return "", runtime.NewError("unable to encode response", codeInternal)
	}
	return string(out), nil
}

// VerifyReceiptRequest is the payload of RpcVerifyReceipt.
type VerifyReceiptRequest struct {
	Receipt string `json:"receipt"`
}

// RpcVerifyReceiptHandler returns the claims of a receipt token when it was
// signed by this server for the caller.
func RpcVerifyReceiptHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user ID in context", codeUnauthenticated)
	}

	var req VerifyReceiptRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Receipt == "" {
		return "", runtime.NewError("invalid payload: expected {\"receipt\": token}", codeInvalidArgument)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.GetGameConfig().WithEnv(env)
	if err != nil || cfg.ReceiptSecret == "" {
		return "", runtime.NewError("receipts are not enabled", codeFailedPrecondition)
	}

	claims, err := app.NewReceiptService(cfg.ReceiptSecret, cfg.ReceiptIssuer).Verify(req.Receipt)
	if err != nil {
		logger.Warn("RpcVerifyReceipt [User:%s]: %v", userID, err)
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}
	if claims.Subject != userID {
		return "", runtime.NewError("receipt was issued to another player", codeInvalidArgument)
	}

	out, err := json.Marshal(claims)
	if err != nil {
		return "", runtime.NewError("unable to encode response", codeInternal)
	}
	return string(out), nil
}

// errorCode maps a failure kind to a gRPC status code.
func errorCode(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidBet, domain.KindInsufficientBalance:
		return codeInvalidArgument
	case domain.KindActionNotAllowed, domain.KindRoundNotActive, domain.KindDealerAlreadyPlayed, domain.KindShoeExhausted:
		return codeFailedPrecondition
	default:
		return codeInternal
	}
}
