package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. Implemented by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates schema when it does not exist yet.
// Connections put Config.Schema on the search_path, so it must exist before migrating.
func EnsureSchema(ctx context.Context, db Execer, schema string) error {
	if schema == "" || schema == "public" {
		return nil
	}
	if _, err := db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	return nil
}
