// Package createbook implements the Create Book use case.
//
// A new Book is validated by catalog.CreateBook, which reports all input problems at once as
// catalog.ValidationErrors, and then inserted by the store. The assigned ID is returned in the
// HandlerResult.
package createbook
