package shell

import "context"

// Command is the contract for all command types.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// Query is the contract for all query types.
type Query interface {
	QueryType() string
}

// CoreCommandHandler processes a command with pure business logic: load the Book, mutate it, save it.
// Handlers return a HandlerResult with the business outcome (idempotency) and the retry metadata.
// Observability is added from the outside with observable.CommandWrapper.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// CoreQueryHandler processes a query and returns its result.
// Observability is added from the outside with observable.QueryWrapper.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
