package sqlxutils

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Select runs the query into dest; an empty result is not an error.
func Select(ctx context.Context, db sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.SelectContext(ctx, db, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	return errors.Wrap(err, "select")
}
