package postgres

import (
	"context"
	_ "embed"

	kpool "github.com/servefab/servefab/pkg/conn/db/postgres/pool"
	xe "github.com/servefab/servefab/pkg/errors"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables and indexes this store needs, if they
// do not exist yet. Idempotent; no versioned migration is attempted.
func EnsureSchema(ctx context.Context, pool kpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return xe.Wrap(err)
	}
	return nil
}
