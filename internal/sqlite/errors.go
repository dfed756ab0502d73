package sqlite

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// classify maps engine constraint failures (foreign key, unique, check,
// not null) to ErrConstraintViolation, keeping the driver error in the chain.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %w", types.ErrConstraintViolation, err)
	}
	return err
}
