package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrValidationFailed is matched by every ValidationErrors value via errors.Is.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPreconditionViolation is wrapped by the PreconditionViolation panic value.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrConcurrencyConflict is returned by a unit of work when a cached field was changed since the Book was loaded.
	ErrConcurrencyConflict = errors.New("concurrency conflict, the book was changed by someone else")

	// ErrBookNotFound is returned when a Book with the requested ID does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrStatsInconsistent is returned by a stat handler when an event does not fit the cached statistics.
	ErrStatsInconsistent = errors.New("cached review statistics are inconsistent with the event")

	// ErrNoStatHandler is returned when an event kind has no registered stat handler.
	ErrNoStatHandler = errors.New("no stat handler registered for event kind")
)

// FieldError is a single validation message for one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects all validation messages of one command.
// It is returned as a plain error value and is never raised as a panic.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, fe := range v {
		messages = append(messages, fe.Message)
	}

	return ErrValidationFailed.Error() + ": " + strings.Join(messages, " ")
}

// Is makes errors.Is(err, ErrValidationFailed) work.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Fields returns the names of the violated fields in the order they were reported.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}

	return fields
}

// PreconditionViolation is the panic value for programmer errors, e.g. mutating a collection that was not loaded.
// Callers are not expected to recover from it.
type PreconditionViolation struct {
	Reason string
}

func (p PreconditionViolation) Error() string {
	return ErrPreconditionViolation.Error() + ": " + p.Reason
}

func (p PreconditionViolation) Unwrap() error {
	return ErrPreconditionViolation
}

func violate(reason string) {
	panic(PreconditionViolation{Reason: reason})
}
