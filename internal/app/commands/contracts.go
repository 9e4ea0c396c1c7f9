package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a state change on a venue calendar or a picker session. Key
// selects the handler.
type Command interface {
	Key() string
}

// Handler applies one command kind and returns its result, often a DTO of the
// changed aggregate.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets a plain function serve as a Handler, mostly in tests.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

// Handle calls f(ctx, cmd).
func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus is implemented by the in-memory bus and by every middleware layer
// wrapped around it.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and asserts the result to R. A cancelled
// context short-circuits before any handler runs. A nil result yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	switch v := res.(type) {
	case nil:
		return zero, nil
	case R:
		return v, nil
	case *R:
		if v == nil {
			return zero, nil
		}
		return *v, nil
	default:
		return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, cmd.Key(), res)
	}
}
