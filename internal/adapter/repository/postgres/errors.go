package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
)

// Constraint names from the migrations.
const (
	constraintWalletsUserID  = "wallets_user_id_key"
	constraintWalletsBalance = "wallets_balance_check"
	constraintUsersEmail     = "users_email_key"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgErrUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

func isCheckViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgErrCheckViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
