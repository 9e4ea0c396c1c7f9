package middleware

import (
	"context"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/queries"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// DispatchFunc adapts a function to commands.Bus.
type DispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f DispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

// AskFunc adapts a function to queries.Bus.
type AskFunc func(ctx context.Context, q queries.Query) (any, error)

func (f AskFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

// ChainCommands wraps base so that mws[0] sees a command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

// ChainQueries wraps base so that mws[0] sees a query first.
func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, mws []M) B {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
