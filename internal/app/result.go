package app

import (
	"errors"

	"blackjack/internal/domain"
)

// Failure is the error variant of a Result.
type Failure struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

// Is lets errors.Is match a Failure against the domain sentinels by kind.
func (f *Failure) Is(target error) bool {
	var ge *domain.GameError
	if errors.As(target, &ge) {
		return ge.Kind == f.Kind
	}
	return false
}

// Result is returned by every exposed operation. Exactly one of Payload and
// Failure is meaningful, selected by OK.
type Result[T any] struct {
	OK      bool     `json:"ok"`
	Payload T        `json:"payload"`
	Failure *Failure `json:"error,omitempty"`
}

// Ok wraps a successful payload.
func Ok[T any](payload T) Result[T] {
	return Result[T]{OK: true, Payload: payload}
}

// Fail classifies err into a Failure. A wrapped Failure keeps its kind.
func Fail[T any](err error) Result[T] {
	kind := domain.KindOf(err)
	var f *Failure
	if errors.As(err, &f) {
		kind = f.Kind
	}
	return Result[T]{Failure: &Failure{Kind: kind, Message: err.Error()}}
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.OK || r.Failure == nil {
		return nil
	}
	return r.Failure
}

func errUnknownCommand(kind CommandKind) error {
	return domain.NewError(domain.KindActionNotAllowed, "unknown command %q", kind)
}
