package middleware

import (
	"context"
	"fmt"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/queries"
)

// Validator checks a command or query before it reaches its handler.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects malformed commands. The returned error names the command
// key and wraps the validator's error.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, fmt.Errorf("%s: %w", cmd.Key(), err)
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		return AskFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, fmt.Errorf("%s: %w", q.Key(), err)
			}
			return next.Ask(ctx, q)
		})
	}
}
