package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a function that closes the connection pool.
// Register it with the lifecycle coordinator or as a server shutdown hook.
//
// Example:
//
//	coord := lifecycle.New(
//	    lifecycle.WithResource("postgres", db.Shutdown(pool)),
//	)
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
