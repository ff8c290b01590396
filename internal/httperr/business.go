package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

// ===============================
// Postgres (SQLSTATE)
// ===============================

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsExclusionConflict reconhece a recusa do banco para um horário já ocupado:
// violação da constraint de exclusão ou de unicidade do slot.
func IsExclusionConflict(err error) bool {
	pgErr, ok := pgError(err)
	if !ok {
		return false
	}
	return pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation
}

// IsUniqueViolationOn indica violação de unicidade num índice/constraint específico.
func IsUniqueViolationOn(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	if !ok {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
