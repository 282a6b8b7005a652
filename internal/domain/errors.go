package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the failure classes the round engine reports.
type ErrorKind string

const (
	KindInvalidBet          ErrorKind = "invalid_bet"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindShoeExhausted       ErrorKind = "shoe_exhausted"
	KindActionNotAllowed    ErrorKind = "action_not_allowed"
	KindDealerAlreadyPlayed ErrorKind = "dealer_already_played"
	KindRoundNotActive      ErrorKind = "round_not_active"
	KindStateCorruption     ErrorKind = "state_corruption"
	// KindInternal covers collaborator failures (ledger, history) that are
	// not one of the game rule kinds.
	KindInternal ErrorKind = "internal"
)

// GameError is a classified round-engine failure.
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *GameError of the same kind, so the package sentinels work
// with errors.Is regardless of message.
func (e *GameError) Is(target error) bool {
	var ge *GameError
	if !errors.As(target, &ge) {
		return false
	}
	return ge.Kind == e.Kind
}

var (
	ErrInvalidBet          = &GameError{Kind: KindInvalidBet}
	ErrInsufficientBalance = &GameError{Kind: KindInsufficientBalance}
	ErrShoeExhausted       = &GameError{Kind: KindShoeExhausted}
	ErrActionNotAllowed    = &GameError{Kind: KindActionNotAllowed}
	ErrDealerAlreadyPlayed = &GameError{Kind: KindDealerAlreadyPlayed}
	ErrRoundNotActive      = &GameError{Kind: KindRoundNotActive}
	ErrStateCorruption     = &GameError{Kind: KindStateCorruption}
)

func newError(kind ErrorKind, format string, args ...any) *GameError {
	return &GameError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewError builds a classified error for callers outside the package.
func NewError(kind ErrorKind, format string, args ...any) *GameError {
	return newError(kind, format, args...)
}

// KindOf extracts the error kind, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}
