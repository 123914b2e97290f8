package repository

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const pqForeignKeyViolation = "23503"

// ForeignKeyError reports an insert or update referencing a row that does not exist.
type ForeignKeyError struct {
	Constraint string
	Err        error
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("foreign key violation on %s: %v", e.Constraint, e.Err)
}

func (e *ForeignKeyError) Unwrap() error { return e.Err }

// mapConstraintError converts driver constraint failures into repository errors.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
		return &ForeignKeyError{Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
