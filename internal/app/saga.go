package app

import (
	"context"
	"errors"
	"fmt"

	"blackjack/internal/metrics"

	"github.com/heroiclabs/nakama-common/runtime"
)

// sagaStep is one forward action and the compensation that undoes it.
// compensate may be nil for steps with nothing to undo.
type sagaStep struct {
	name       string
	action     func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// sagaError reports a failed saga and whether every compensation succeeded.
type sagaError struct {
	step        string
	cause       error
	compensated bool
	compErrs    []error
}

func (e *sagaError) Error() string {
	if e.compensated {
		return fmt.Sprintf("%s failed: %v", e.step, e.cause)
	}
	return fmt.Sprintf("%s failed: %v; compensation failed: %v", e.step, e.cause, errors.Join(e.compErrs...))
}

func (e *sagaError) Unwrap() error {
	return e.cause
}

// runSaga executes steps in order. When a step fails, the compensations of
// every step that completed before it run in reverse order. A step that can
// fail part way should be preceded by a step whose compensation clears its
// partial effects.
func runSaga(ctx context.Context, logger runtime.Logger, steps ...sagaStep) error {
	for i, step := range steps {
		err := step.action(ctx)
		if err == nil {
			continue
		}

		serr := &sagaError{step: step.name, cause: err, compensated: true}
		for j := i - 1; j >= 0; j-- {
			comp := steps[j].compensate
			if comp == nil {
				continue
			}
			if cerr := comp(ctx); cerr != nil {
				logger.Error("saga: compensation for %s failed: %v", steps[j].name, cerr)
				serr.compensated = false
				serr.compErrs = append(serr.compErrs, fmt.Errorf("%s: %w", steps[j].name, cerr))
				metrics.RecordCompensation("fail")
				continue
			}
			logger.Warn("saga: compensated %s after %s failed: %v", steps[j].name, step.name, err)
			metrics.RecordCompensation("success")
		}
		return serr
	}
	return nil
}
