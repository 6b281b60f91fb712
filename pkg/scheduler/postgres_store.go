package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultTableName is the table PostgresStore keeps job state in.
const DefaultTableName = "scheduled_jobs"

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists job state in PostgreSQL.
type PostgresStore struct {
	db     DB
	schema string
	table  string
}

// NewPostgresStore creates a store using table scheduled_jobs in schema.
// An empty schema means "public".
func NewPostgresStore(db DB, schema string) *PostgresStore {
	if schema == "" {
		schema = "public"
	}
	return &PostgresStore{
		db:     db,
		schema: schema,
		table:  pgx.Identifier{schema, DefaultTableName}.Sanitize(),
	}
}

// EnsureSchema creates the schema and table when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{s.schema}.Sanitize(),
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			name        TEXT PRIMARY KEY,
			schedule    TEXT NOT NULL,
			next_run_at TIMESTAMPTZ,
			last_run_at TIMESTAMPTZ,
			last_status TEXT NOT NULL DEFAULT '',
			last_error  TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("scheduler: ensure job store schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, st JobState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO `+s.table+`
		(name, schedule, next_run_at, last_run_at, last_status, last_error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			schedule = EXCLUDED.schedule,
			next_run_at = EXCLUDED.next_run_at,
			last_run_at = EXCLUDED.last_run_at,
			last_status = EXCLUDED.last_status,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at`,
		st.Name, st.Schedule, nullTime(st.NextRunAt), nullTime(st.LastRunAt),
		st.LastStatus, st.LastError, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("scheduler: save job %q: %w", st.Name, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) (JobState, error) {
	row := s.db.QueryRow(ctx, `SELECT `+stateColumns+` FROM `+s.table+` WHERE name = $1`, name)
	st, err := scanState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobState{}, ErrJobNotFound
	}
	if err != nil {
		return JobState{}, fmt.Errorf("scheduler: load job %q: %w", name, err)
	}
	return st, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM `+s.table+` WHERE name = $1`, name); err != nil {
		return fmt.Errorf("scheduler: delete job %q: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]JobState, error) {
	rows, err := s.db.Query(ctx, `SELECT `+stateColumns+` FROM `+s.table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("scheduler: list jobs: %w", err)
	}
	defer rows.Close()

	var out []JobState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scheduler: scan job: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

const stateColumns = "name, schedule, next_run_at, last_run_at, last_status, last_error, updated_at"

func scanState(row pgx.Row) (JobState, error) {
	var (
		st         JobState
		next, last *time.Time
	)
	if err := row.Scan(&st.Name, &st.Schedule, &next, &last, &st.LastStatus, &st.LastError, &st.UpdatedAt); err != nil {
		return JobState{}, err
	}
	if next != nil {
		st.NextRunAt = *next
	}
	if last != nil {
		st.LastRunAt = *last
	}
	return st, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
