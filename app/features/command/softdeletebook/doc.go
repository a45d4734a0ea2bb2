// Package softdeletebook implements the Soft Delete Book use case and its reverse.
//
// A soft-deleted book stays in the database and can still be loaded by ID, but the list read path
// never returns it. Setting the flag to the value it already has is idempotent.
package softdeletebook
