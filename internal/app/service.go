package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"blackjack/internal/bot"
	"blackjack/internal/domain"
	"blackjack/internal/metrics"
	"blackjack/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
)

// Settings are the table rules a session enforces.
type Settings struct {
	Limits              domain.BetLimits
	ShoeThreshold       int
	CreditRetryAttempts int
	HistoryLimit        int
}

// DefaultSettings returns the stock table rules.
func DefaultSettings() Settings {
	return Settings{
		Limits:              domain.DefaultBetLimits(),
		ShoeThreshold:       domain.DefaultShoeThreshold,
		CreditRetryAttempts: DefaultCreditRetryAttempts,
		HistoryLimit:        DefaultHistoryLimit,
	}
}

// Deps are the collaborators of a session. Ledger, Advisor and Logger are
// required; History and Receipts may be nil.
type Deps struct {
	Ledger   ports.LedgerPort
	History  ports.HistoryPort
	Receipts *ReceiptService
	Advisor  bot.Brain
	Logger   runtime.Logger
}

// Session owns the one round of one player and reconciles it with the
// ledger. It is not safe for concurrent use; the caller serializes calls.
type Session struct {
	userID   string
	ledger   ports.LedgerPort
	history  ports.HistoryPort
	receipts *ReceiptService
	advisor  bot.Brain
	logger   runtime.Logger
	settings Settings

	rng     *rand.Rand
	newShoe func() domain.Shoe
	newID   func() string
	now     func() time.Time
	check   func(*domain.Round) error

	// round is created on first use and reset in place afterwards.
	round         *domain.Round
	roundID       string
	balanceBefore decimal.Decimal
	balance       decimal.Decimal
}

// NewSession constructs a Session with provided rng or a time-seeded default.
func NewSession(userID string, deps Deps, settings Settings, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if settings.CreditRetryAttempts < 1 {
		settings.CreditRetryAttempts = 1
	}
	if settings.HistoryLimit < 1 {
		settings.HistoryLimit = DefaultHistoryLimit
	}
	s := &Session{
		userID:   userID,
		ledger:   deps.Ledger,
		history:  deps.History,
		receipts: deps.Receipts,
		advisor:  deps.Advisor,
		logger:   deps.Logger.WithField("user_id", userID),
		settings: settings,
		rng:      rng,
		newID:    uuid.NewString,
		now:      time.Now,
		check:    domain.CheckConsistency,
	}
	s.newShoe = func() domain.Shoe { return domain.NewShoe(s.rng) }
	return s
}

// UserID returns the player this session belongs to.
func (s *Session) UserID() string {
	return s.userID
}

// Active reports whether a round is in progress.
func (s *Session) Active() bool {
	return s.round != nil && s.round.IsActive()
}

// StartRoundWithBet debits amount, places the bet and deals. Any failure
// after the debit refunds it and hard-resets the round.
func (s *Session) StartRoundWithBet(ctx context.Context, amount decimal.Decimal) Result[StatusView] {
	if err := s.gate(ctx); err != nil {
		metrics.RecordRoundStart("fail")
		return Fail[StatusView](err)
	}
	if s.round.IsActive() {
		metrics.RecordRoundStart("fail")
		return Fail[StatusView](domain.NewError(domain.KindActionNotAllowed,
			"cannot start round: a round is already in progress (expected phase %s, actual %s)", domain.PhaseNotStarted, s.round.Phase()))
	}

	balance, err := s.getBalance(ctx)
	if err != nil {
		metrics.RecordRoundStart("fail")
		return Fail[StatusView](fmt.Errorf("could not read balance, nothing was debited: %w", err))
	}
	if err := domain.ValidateBet(amount, balance, s.settings.Limits); err != nil {
		metrics.RecordRoundStart("fail")
		return Fail[StatusView](err)
	}

	roundID := s.newID()
	logger := s.logger.WithField("round_id", roundID)

	err = runSaga(ctx, logger,
		sagaStep{
			name: "debit",
			action: func(ctx context.Context) error {
				return s.debit(ctx, amount, ports.LedgerMeta{Reason: ports.ReasonBet, RoundID: roundID, IdempotencyKey: roundID + ":bet"})
			},
			compensate: func(ctx context.Context) error {
				return s.creditWithRetry(ctx, amount, ports.LedgerMeta{Reason: ports.ReasonRefund, RoundID: roundID, IdempotencyKey: roundID + ":refund"})
			},
		},
		sagaStep{
			name: "place bet",
			action: func(ctx context.Context) error {
				return s.round.PlaceBet(amount, balance, s.settings.Limits)
			},
			compensate: func(ctx context.Context) error {
				s.round.HardReset(s.newShoe())
				return nil
			},
		},
		sagaStep{
			name: "deal",
			action: func(ctx context.Context) error {
				return s.round.DealInitialHands()
			},
		},
		sagaStep{
			name: "validate",
			action: func(ctx context.Context) error {
				return s.check(s.round)
			},
		},
	)
	if err != nil {
		metrics.RecordRoundStart("fail")
		return Fail[StatusView](s.describeStartFailure(err, amount, balance))
	}

	s.roundID = roundID
	s.balanceBefore = balance
	s.balance = balance.Sub(amount)
	metrics.RecordRoundStart("success")
	logger.Info("Round started: bet %s, player %s, dealer up %s", amount, domain.FormatCards(s.round.Player), domain.FormatCards(s.round.Dealer[:1]))
	return Ok(s.statusView())
}

// describeStartFailure turns a saga failure into a user-facing error that
// says whether money moved.
func (s *Session) describeStartFailure(err error, amount, balance decimal.Decimal) error {
	var serr *sagaError
	if !errors.As(err, &serr) {
		return err
	}
	if serr.step == "debit" {
		if errors.Is(serr.cause, ports.ErrInsufficientFunds) {
			return domain.NewError(domain.KindInsufficientBalance, "insufficient balance: bet %s, balance %s; nothing was debited", amount, balance)
		}
		return fmt.Errorf("debit of %s failed, nothing was debited: %w", amount, serr.cause)
	}

	kind := domain.KindOf(serr.cause)
	if !serr.compensated {
		s.logger.Error("StartRound: refund of %s failed after %s: %v", amount, serr.step, err)
		return domain.NewError(kind, "%s failed: %v; refund of %s FAILED, contact support", serr.step, serr.cause, amount)
	}
	s.balance = balance
	return domain.NewError(kind, "%s failed: %v; bet %s refunded, balance %s", serr.step, serr.cause, amount, balance)
}

// PlayerHit draws one card for the player.
func (s *Session) PlayerHit(ctx context.Context) Result[CardDrawn] {
	if err := s.gate(ctx); err != nil {
		return Fail[CardDrawn](err)
	}
	card, err := s.round.PlayerHit()
	if err != nil {
		if errors.Is(err, domain.ErrShoeExhausted) {
			err = s.voidRound(ctx, err)
		}
		return Fail[CardDrawn](err)
	}
	return Ok(CardDrawn{Card: card, Status: s.statusView()})
}

// PlayerStand ends the player turn.
func (s *Session) PlayerStand(ctx context.Context) Result[StatusView] {
	if err := s.gate(ctx); err != nil {
		return Fail[StatusView](err)
	}
	if err := s.round.PlayerStand(); err != nil {
		return Fail[StatusView](err)
	}
	return Ok(s.statusView())
}

// DealerPlay runs the dealer to a standing total.
func (s *Session) DealerPlay(ctx context.Context) Result[DealerResult] {
	if err := s.gate(ctx); err != nil {
		return Fail[DealerResult](err)
	}
	drawn, err := s.round.DealerPlay()
	if err != nil {
		if errors.Is(err, domain.ErrShoeExhausted) {
			err = s.voidRound(ctx, err)
		}
		return Fail[DealerResult](err)
	}
	return Ok(DealerResult{Drawn: drawn, Status: s.statusView()})
}

// SettleRound pays out a finished round, records it and resets for the next
// one. A payout that cannot be credited leaves the round open so settlement
// can be retried.
func (s *Session) SettleRound(ctx context.Context) Result[SettlementResult] {
	started := time.Now()
	if err := s.gate(ctx); err != nil {
		return Fail[SettlementResult](err)
	}
	settlement, err := s.round.Settle()
	if err != nil {
		return Fail[SettlementResult](err)
	}

	logger := s.logger.WithField("round_id", s.roundID)
	if settlement.Payout.IsPositive() {
		meta := ports.LedgerMeta{Reason: ports.ReasonSettle, RoundID: s.roundID, IdempotencyKey: s.roundID + ":settle"}
		if err := s.creditWithRetry(ctx, settlement.Payout, meta); err != nil {
			logger.Error("SettleRound: payout %s not credited: %v", settlement.Payout, err)
			return Fail[SettlementResult](fmt.Errorf("payout %s could not be credited, round left open to retry: %w", settlement.Payout, err))
		}
	}

	balanceAfter := s.balance.Add(settlement.Payout)
	if b, err := s.getBalance(ctx); err == nil {
		balanceAfter = b
	} else {
		logger.Warn("SettleRound: balance refresh failed, using computed %s: %v", balanceAfter, err)
	}

	player := s.round.Player.Evaluate()
	dealer := s.round.Dealer.Evaluate()
	result := SettlementResult{
		RoundID:       s.roundID,
		Outcome:       settlement.Outcome,
		Bet:           s.round.Bet,
		Payout:        settlement.Payout,
		BalanceBefore: s.balanceBefore,
		BalanceAfter:  balanceAfter,
		Player:        handView(s.round.Player),
		Dealer:        handView(s.round.Dealer),
	}

	if s.receipts != nil {
		token, err := s.receipts.Sign(Receipt{
			RoundID:      s.roundID,
			UserID:       s.userID,
			Bet:          result.Bet,
			Payout:       result.Payout,
			Outcome:      result.Outcome,
			BalanceAfter: balanceAfter,
		})
		if err != nil {
			logger.Warn("SettleRound: receipt not signed: %v", err)
		} else {
			result.Receipt = token
		}
	}

	if s.history != nil {
		summary := ports.RoundSummary{
			RoundID:         s.roundID,
			Bet:             result.Bet,
			Outcome:         string(result.Outcome),
			Payout:          result.Payout,
			PlayerHand:      result.Player.Cards,
			DealerHand:      result.Dealer.Cards,
			PlayerTotal:     player.Total,
			DealerTotal:     dealer.Total,
			PlayerBust:      player.IsBust,
			DealerBust:      dealer.IsBust,
			PlayerBlackjack: player.IsBlackjack,
			DealerBlackjack: dealer.IsBlackjack,
			BalanceBefore:   s.balanceBefore,
			BalanceAfter:    balanceAfter,
			SettledAt:       s.now().UTC(),
			Receipt:         result.Receipt,
		}
		if err := s.history.SaveRound(ctx, s.userID, summary); err != nil {
			logger.Warn("SettleRound: history not saved: %v", err)
			result.HistoryError = err.Error()
		} else {
			result.HistorySaved = true
		}
	}

	result.Reshuffled = s.round.ResetForNextRound(s.settings.ShoeThreshold, s.newShoe)
	if result.Reshuffled {
		logger.Info("SettleRound: shoe below %d cards, reshuffled", s.settings.ShoeThreshold)
	}
	s.roundID = ""
	s.balance = balanceAfter
	metrics.RecordSettle(string(result.Outcome), started)
	logger.Info("Round settled: %s, bet %s, payout %s", result.Outcome, result.Bet, result.Payout)
	return Ok(result)
}

// GetStatus reports the round and a fresh balance. It changes nothing unless
// the consistency check discards a corrupted round.
func (s *Session) GetStatus(ctx context.Context) Result[StatusView] {
	if err := s.gate(ctx); err != nil {
		return Fail[StatusView](err)
	}
	balance, err := s.getBalance(ctx)
	if err != nil {
		return Fail[StatusView](fmt.Errorf("could not read balance: %w", err))
	}
	s.balance = balance
	return Ok(s.statusView())
}

// GetHistory lists the player's recent rounds, newest first. A limit outside
// (0, HistoryLimit] is clamped to HistoryLimit.
func (s *Session) GetHistory(ctx context.Context, limit int) Result[[]ports.RoundSummary] {
	if s.history == nil {
		return Fail[[]ports.RoundSummary](errors.New("round history is not configured"))
	}
	if limit <= 0 || limit > s.settings.HistoryLimit {
		limit = s.settings.HistoryLimit
	}
	rounds, err := s.history.ListRounds(ctx, s.userID, limit)
	if err != nil {
		return Fail[[]ports.RoundSummary](fmt.Errorf("could not list history: %w", err))
	}
	return Ok(rounds)
}

// Hint returns the advisor's recommendation for the current player hand.
func (s *Session) Hint(ctx context.Context) Result[HintView] {
	if err := s.gate(ctx); err != nil {
		return Fail[HintView](err)
	}
	if !s.round.PlayerTurnReady() {
		return Fail[HintView](domain.NewError(domain.KindActionNotAllowed,
			"cannot hint: not the player's turn (expected phase %s, actual %s)", domain.PhasePlayerTurn, s.round.Phase()))
	}
	up, _ := s.round.UpCard()
	move, err := s.advisor.CalculateMove(s.round.Player, up)
	if err != nil {
		return Fail[HintView](err)
	}
	return Ok(HintView{
		Action:       move.Action,
		Reason:       move.Reason,
		PlayerTotal:  s.round.Player.Evaluate().Total,
		DealerUpCard: up,
	})
}

// ResolveAbandoned finishes a round the player walked away from: the player
// stands, the dealer plays out and the round settles. A bet without hands is
// refunded instead.
func (s *Session) ResolveAbandoned(ctx context.Context) Result[SettlementResult] {
	if err := s.gate(ctx); err != nil {
		return Fail[SettlementResult](err)
	}
	r := s.round
	if !r.IsActive() {
		return Fail[SettlementResult](domain.NewError(domain.KindRoundNotActive, "no active round to resolve"))
	}
	if !r.HandsDealt() {
		return Fail[SettlementResult](s.voidRound(ctx, domain.NewError(domain.KindRoundNotActive, "abandoned before the deal")))
	}
	if r.PlayerTurnReady() {
		if err := r.PlayerStand(); err != nil {
			return Fail[SettlementResult](err)
		}
	}
	if !r.SettlementReady() && !r.DealerPlayed {
		if res := s.DealerPlay(ctx); !res.OK {
			return Fail[SettlementResult](res.Failure)
		}
	}
	return s.SettleRound(ctx)
}

// gate creates the round on first use and runs the consistency check. A
// corrupted round is discarded and its bet refunded.
func (s *Session) gate(ctx context.Context) error {
	if s.round == nil {
		s.round = domain.NewRound(s.newShoe())
		return nil
	}
	err := s.check(s.round)
	if err == nil {
		return nil
	}
	metrics.RecordCorruption()
	s.logger.Error("Consistency check failed for round %s: %v", s.roundID, err)
	return s.voidRound(ctx, err)
}

// voidRound hard-resets the round and refunds any bet on it. The returned
// error keeps the kind of cause and states whether the refund happened.
func (s *Session) voidRound(ctx context.Context, cause error) error {
	bet := s.round.Bet
	roundID := s.roundID
	s.round.HardReset(s.newShoe())
	s.roundID = ""

	kind := domain.KindOf(cause)
	if !bet.IsPositive() {
		return domain.NewError(kind, "%v; round discarded, no bet to refund", cause)
	}
	meta := ports.LedgerMeta{Reason: ports.ReasonRefund, RoundID: roundID, IdempotencyKey: roundID + ":refund"}
	if err := s.creditWithRetry(ctx, bet, meta); err != nil {
		s.logger.Error("Refund of %s for round %s failed: %v", bet, roundID, err)
		metrics.RecordCompensation("fail")
		return domain.NewError(kind, "%v; round discarded, refund of %s FAILED, contact support", cause, bet)
	}
	metrics.RecordCompensation("success")
	s.balance = s.balance.Add(bet)
	s.logger.Warn("Round %s discarded, bet %s refunded", roundID, bet)
	return domain.NewError(kind, "%v; round discarded, bet %s refunded", cause, bet)
}

func (s *Session) getBalance(ctx context.Context) (decimal.Decimal, error) {
	balance, err := s.ledger.GetBalance(ctx, s.userID)
	if err != nil {
		metrics.RecordLedger("balance", "fail")
		return decimal.Zero, err
	}
	metrics.RecordLedger("balance", "success")
	return balance, nil
}

// debit is at-most-once: a failure is returned as is and never retried.
func (s *Session) debit(ctx context.Context, amount decimal.Decimal, meta ports.LedgerMeta) error {
	if err := s.ledger.Debit(ctx, s.userID, amount, meta); err != nil {
		metrics.RecordLedger("debit", "fail")
		return err
	}
	metrics.RecordLedger("debit", "success")
	return nil
}

// creditWithRetry is at-least-once: an ambiguous failure is retried with the
// same idempotency key.
func (s *Session) creditWithRetry(ctx context.Context, amount decimal.Decimal, meta ports.LedgerMeta) error {
	var err error
	for attempt := 1; attempt <= s.settings.CreditRetryAttempts; attempt++ {
		if err = s.ledger.Credit(ctx, s.userID, amount, meta); err == nil {
			metrics.RecordLedger("credit", "success")
			return nil
		}
		metrics.RecordLedger("credit", "fail")
		s.logger.Warn("Credit %s (%s) attempt %d/%d failed: %v", amount, meta.Reason, attempt, s.settings.CreditRetryAttempts, err)
	}
	return fmt.Errorf("credit of %s failed after %d attempts: %w", amount, s.settings.CreditRetryAttempts, err)
}

func (s *Session) statusView() StatusView {
	r := s.round
	v := StatusView{
		RoundID:       s.roundID,
		Phase:         r.Phase(),
		Bet:           r.Bet,
		Balance:       s.balance,
		ShoeRemaining: r.Shoe.Len(),
		Player:        handView(r.Player),
		Stood:         r.Stood,
		DealerPlayed:  r.DealerPlayed,
		LegalActions:  legalActions(r),
	}
	if up, ok := r.UpCard(); ok && !r.HoleRevealed() {
		v.Dealer = HandView{Cards: []domain.Card{up}}
		v.HoleHidden = true
	} else {
		v.Dealer = handView(r.Dealer)
	}
	return v
}
