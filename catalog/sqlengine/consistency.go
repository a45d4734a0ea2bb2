package sqlengine

import "context"

// ConsistencyLevel tells the store whether a read may be served by a replica.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. It is the default, because command handlers
	// load a Book, mutate it, and must see their own writes.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Used by the list read path.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level.
const ConsistencyLevelKey contextKey = "sqlengine.consistency_level"

// WithStrongConsistency returns a context that makes reads use the primary database.
//
//	ctx = sqlengine.WithStrongConsistency(ctx)
//	book, err := store.Load(ctx, bookID, sqlengine.IncludeReviews)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows reads from a replica.
//
//	ctx = sqlengine.WithEventualConsistency(ctx)
//	page, err := store.Fetch(ctx, query)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
