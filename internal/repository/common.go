package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

// staleWrite resolves a versioned UPDATE or DELETE that touched zero rows
// into either an optimistic-concurrency conflict (the row exists at another
// version) or sql.ErrNoRows (the row is gone). Callers pass an existence
// probe such as "SELECT 1 FROM persons WHERE reg_no = $1".
func staleWrite(ctx context.Context, q sqlx.QueryerContext, probe string, args ...interface{}) error {
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, probe, args...); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		return err
	}
	return apperrors.ErrConflict
}
