package sqlite

import "strings"

// The driver reports constraint violations as plain error text, e.g.
//
//	constraint failed: UNIQUE constraint failed: votes.poll_id, votes.voter_id (2067)
//	constraint failed: FOREIGN KEY constraint failed (787)
//
// These helpers pin each violation to the constraint that produced it so
// the repository methods can return the right apperror kind instead of
// leaking driver text.

func isUniqueViolation(err error, columns string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed: "+columns)
}

func isForeignKeyViolation(err error) bool {
	return err != nil &&
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
