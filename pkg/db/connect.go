package db

import (
	"context"
	"errors"

	cbackoff "github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/kickstart/pkg/backoff"
)

// Connect establishes a PostgreSQL connection pool, retrying with exponential
// backoff so a database that comes up after the service does not fail startup.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if cfg.Schema != "" {
		connConfig.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}

	policy, err := backoff.New(cfg.RetryInterval, max(cfg.RetryMaxInterval, cfg.RetryInterval))
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}

	pool, err := cbackoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			return nil, err
		}
		// Ping catches authentication and permission issues the pool defers.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	},
		cbackoff.WithBackOff(policy.NewDelay()),
		cbackoff.WithMaxTries(uint(max(cfg.RetryAttempts, 1))),
	)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}

	return pool, nil
}
