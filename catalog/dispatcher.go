package catalog

import (
	"errors"
	"fmt"
)

// EventSource is an aggregate that raises events during a unit of work.
type EventSource interface {
	ReviewStats() ReviewStats
	TakePendingEvents() []Event
}

// DispatchError reports which event's handler failed.
type DispatchError struct {
	Index int
	Kind  EventKind
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatching event #%d (%s) failed: %v", e.Index, e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// DispatchEvents runs exactly one stat handler per pending event of source, synchronously and in raise order.
// Each handler sees the cached statistics as left by the previous one.
//
// It must be called by the unit of work immediately before commit. The events are consumed even if a
// handler fails; in that case the unit of work must be aborted and the in-memory aggregate discarded,
// because handlers that already ran have mutated it. It returns the number of dispatched events.
func DispatchEvents(source EventSource) (int, error) {
	events := source.TakePendingEvents()

	for i, event := range events {
		handler, ok := StatHandlerFor(event.Kind())
		if !ok {
			return i, &DispatchError{Index: i, Kind: event.Kind(), Err: ErrNoStatHandler}
		}

		if err := handler(source.ReviewStats(), event); err != nil {
			return i, &DispatchError{Index: i, Kind: event.Kind(), Err: err}
		}
	}

	return len(events), nil
}

// IsDispatchError tells whether err was caused by a failing stat handler.
func IsDispatchError(err error) bool {
	var dispatchErr *DispatchError
	return errors.As(err, &dispatchErr)
}
