package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jkarni/ndc-postgres/internal/errs"
)

// PostgreSQL SQLSTATE error codes (read-relevant only)
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrConnectionFailure     = "08006"
	pgErrInsufficientPrivilege = "42501"
	pgErrSyntaxError           = "42601"
	pgErrUndefinedTable        = "42P01"
	pgErrUndefinedColumn       = "42703"
	pgErrQueryCanceled         = "57014"
	pgErrSerializationFailure  = "40001"
	pgErrInvalidCatalogName    = "3D000"
	pgErrInvalidAuthorization  = "28000"
	pgErrInvalidPasswordAuth   = "28P01"
)

// mapError converts a pgx error into a unified errs.Error.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, "record not found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, "operation canceled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrConnectionFailure, pgErrInvalidCatalogName:
			return errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
		case pgErrInvalidAuthorization, pgErrInvalidPasswordAuth, pgErrInsufficientPrivilege:
			return errs.Wrap(errs.ErrKindPermissionDenied, "database access denied", err)
		case pgErrQueryCanceled:
			return errs.Wrap(errs.ErrKindTimeout, "query canceled", err)
		case pgErrSyntaxError, pgErrUndefinedTable, pgErrUndefinedColumn, pgErrSerializationFailure:
			return errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("query error: %s", pgErr.Message), err)
		}
	}

	return errs.Wrap(errs.ErrKindUnknown, err.Error(), err)
}
