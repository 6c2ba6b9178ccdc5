package pgrepos

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ifNoneAffected returns errDup when an `ON CONFLICT DO NOTHING` statement skipped its row.
func ifNoneAffected(res sql.Result, errDup error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return errDup
	}
	return nil
}
