package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Constraint causes, wrapped next to apperr.ErrConstraintViolation so callers
// can tell a duplicate from a dangling reference.
var (
	ErrUniqueViolation     = errors.New("unique violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check violation")
)

// translate maps store errors onto apperr kinds; op prefixes the message.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	entity := op
	if i := strings.IndexByte(op, ' '); i >= 0 {
		entity = op[i+1:]
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	if cause := constraintCause(err); cause != nil {
		return fmt.Errorf("%s: %v: %w: %w", op, err, cause, apperr.ErrConstraintViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// constraintCause reports which constraint err violated, or nil.
func constraintCause(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUniqueViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolation
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrCheckViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return causeFromCode(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return causeFromCode(string(pqErr.Code))
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrUniqueViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrForeignKeyViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return ErrCheckViolation
	}
	return nil
}

func causeFromCode(code string) error {
	switch code {
	case pgUniqueViolation:
		return ErrUniqueViolation
	case pgForeignKeyViolation:
		return ErrForeignKeyViolation
	case pgCheckViolation:
		return ErrCheckViolation
	}
	return nil
}
