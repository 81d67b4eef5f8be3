package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// IsUniqueViolation reports whether the error is a Postgres unique-constraint
// violation, optionally scoped to a named constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	code, constraint, ok := pgErrorParts(err)
	if !ok {
		return false
	}
	if code != pgUniqueViolation {
		return false
	}
	return constraintName == "" || constraint == constraintName
}

// IsExclusionViolation reports whether the error is a Postgres exclusion
// violation (overlapping ranges guarded by an EXCLUDE constraint).
func IsExclusionViolation(err error, constraintName string) bool {
	code, constraint, ok := pgErrorParts(err)
	if !ok {
		return false
	}
	if code != pgExclusionViolation {
		return false
	}
	return constraintName == "" || constraint == constraintName
}

func pgErrorParts(err error) (code, constraint string, ok bool) {
	if err == nil {
		return "", "", false
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}
