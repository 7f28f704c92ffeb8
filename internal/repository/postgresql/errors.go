package postgresql

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapConstraintError translates constraint violations into the given domain errors.
// Any other error is returned unchanged.
func mapConstraintError(err error, onCheck, onUnique error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation:
		if onCheck != nil {
			return errors.Join(onCheck, err)
		}
	case pgerrcode.UniqueViolation:
		if onUnique != nil {
			return errors.Join(onUnique, err)
		}
	}
	return err
}
