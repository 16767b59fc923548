package repository

import (
	"database/sql"
	"errors"

	"github.com/ecochain/token-catalog/internal/apperr"

	"github.com/jackc/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a postgres unique constraint failure
func isUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

// isForeignKeyViolation reports whether err references a missing row
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == foreignKeyViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound maps sql.ErrNoRows to an apperr NotFound for resource
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return err
}

// requireAffected returns NotFound when an update or delete touched no rows
func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}
