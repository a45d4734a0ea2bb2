// Package shell holds what the command and query slices of the book catalog share:
// the handler contracts, the HandlerResult, retries on concurrency conflicts, and the
// observability helpers that the observable wrappers build on.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'application' layer.
package shell
