package gormdb

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapConstraintError translates constraint violations from postgres or sqlite into
// the given domain errors. Any other error is returned unchanged.
func mapConstraintError(err error, onCheck, onUnique error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation:
			return errors.Join(onCheck, err)
		case pgerrcode.UniqueViolation:
			return errors.Join(onUnique, err)
		}
		return err
	}

	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE constraint failed"):
		return errors.Join(onUnique, err)
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return errors.Join(onCheck, err)
	}
	return err
}
