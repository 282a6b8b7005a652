package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// CommandKind identifies a player request routed to a session.
type CommandKind string

const (
	CommandStartRound CommandKind = "start_round"
	CommandHit        CommandKind = "hit"
	CommandStand      CommandKind = "stand"
	CommandDealerPlay CommandKind = "dealer_play"
	CommandSettle     CommandKind = "settle"
	CommandStatus     CommandKind = "status"
	CommandHint       CommandKind = "hint"
	CommandHistory    CommandKind = "history"
)

// Command is one decoded player request.
type Command struct {
	Kind   CommandKind
	Amount decimal.Decimal
	Limit  int
}

// EventKind identifies emitted events for Nakama dispatch.
type EventKind string

const (
	EventRoundStarted EventKind = "round_started"
	EventCardDrawn    EventKind = "card_drawn"
	EventDealerPlayed EventKind = "dealer_played"
	EventRoundSettled EventKind = "round_settled"
	EventStatus       EventKind = "status"
	EventHint         EventKind = "hint"
	EventHistory      EventKind = "history"
	EventError        EventKind = "error"
)

// Event is an app event with optional targeted recipients. Payload is
// always a Result; failed results are emitted as EventError.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// Handle runs cmd against the session and wraps the result as an event
// addressed to the session owner.
func (s *Session) Handle(ctx context.Context, cmd Command) Event {
	switch cmd.Kind {
	case CommandStartRound:
		return s.event(EventRoundStarted, s.StartRoundWithBet(ctx, cmd.Amount))
	case CommandHit:
		return s.event(EventCardDrawn, s.PlayerHit(ctx))
	case CommandStand:
		return s.event(EventStatus, s.PlayerStand(ctx))
	case CommandDealerPlay:
		return s.event(EventDealerPlayed, s.DealerPlay(ctx))
	case CommandSettle:
		return s.event(EventRoundSettled, s.SettleRound(ctx))
	case CommandStatus:
		return s.event(EventStatus, s.GetStatus(ctx))
	case CommandHint:
		return s.event(EventHint, s.Hint(ctx))
	case CommandHistory:
		return s.event(EventHistory, s.GetHistory(ctx, cmd.Limit))
	default:
		return s.event(EventError, Fail[struct{}](errUnknownCommand(cmd.Kind)))
	}
}

type outcome interface {
	Err() error
}

func (s *Session) event(kind EventKind, result outcome) Event {
	if result.Err() != nil {
		kind = EventError
	}
	return Event{Kind: kind, Payload: result, Recipients: []string{s.userID}}
}
