package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Class 23 integrity violation, unique.
const pgUniqueViolation = "23505"

// IsDuplicateKeyErr reports whether err is a unique-constraint violation on
// any of the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		// postgres without a typed error in the chain
		return true
	case strings.Contains(msg, "Error 1062"):
		// mysql
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"):
		// sqlite
		return true
	}

	return false
}
