// Package changepublicationdate implements the Change Publication Date use case.
// Dates are kept at second precision in UTC, so a date that differs only below that is idempotent.
package changepublicationdate
