package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/kickstart/pkg/db"
)

// Repository persists samples. Get, Update and Delete only see rows that are
// active and not deleted, and return ErrNotFound otherwise.
type Repository interface {
	Create(ctx context.Context, s *Sample) error
	Get(ctx context.Context, id uuid.UUID) (*Sample, error)
	List(ctx context.Context, p ListParams) ([]Sample, error)
	Count(ctx context.Context, includeInactive bool) (int64, error)
	Search(ctx context.Context, term string, skip, limit int) ([]Sample, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Sample, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
}

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const columns = `id, is_active, is_deleted, created_on, modified_on, required_uuid, optional_uuid,
	string_field, optional_text, required_jsonb, optional_jsonb, big_int`

const visible = `is_deleted = FALSE AND is_active = TRUE`

// PostgresRepository stores samples in sample_table on the connection's search_path.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a repository backed by db.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *Sample) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO sample_table (id, is_active, is_deleted, required_uuid, optional_uuid,
			string_field, optional_text, required_jsonb, optional_jsonb, big_int)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+columns,
		s.ID, s.IsActive, s.IsDeleted, s.RequiredUUID, s.OptionalUUID,
		s.StringField, s.OptionalText, jsonArg(s.RequiredJSONB), jsonArg(s.OptionalJSONB), s.BigInt,
	)
	created, err := scanSample(row)
	if err != nil {
		return errors.Join(ErrFailedToCreate, err)
	}
	*s = *created
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Sample, error) {
	row := r.db.QueryRow(ctx, `SELECT `+columns+` FROM sample_table WHERE id = $1 AND `+visible, id)
	return notFound(scanSample(row))
}

func (r *PostgresRepository) List(ctx context.Context, p ListParams) ([]Sample, error) {
	q := `SELECT ` + columns + ` FROM sample_table`
	if !p.IncludeInactive {
		q += ` WHERE ` + visible
	}
	q += ` ORDER BY created_on DESC OFFSET $1 LIMIT $2`
	return r.query(ctx, q, p.Skip, p.Limit)
}

func (r *PostgresRepository) Count(ctx context.Context, includeInactive bool) (int64, error) {
	q := `SELECT count(*) FROM sample_table`
	if !includeInactive {
		q += ` WHERE ` + visible
	}
	var n int64
	if err := r.db.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, errors.Join(ErrFailedToQuery, err)
	}
	return n, nil
}

func (r *PostgresRepository) Search(ctx context.Context, term string, skip, limit int) ([]Sample, error) {
	return r.query(ctx, `SELECT `+columns+` FROM sample_table
		WHERE string_field ILIKE '%' || $1 || '%' AND `+visible+`
		ORDER BY created_on DESC OFFSET $2 LIMIT $3`,
		escapeLike(term), skip, limit)
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Sample, error) {
	set, args := updateAssignments(req)
	if len(set) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	var updated *Sample
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockVisible(ctx, tx, id); err != nil {
			return err
		}
		args = append(args, id)
		q := fmt.Sprintf(`UPDATE sample_table SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(set, ", "), len(args), columns)
		s, err := scanSample(tx.QueryRow(ctx, q, args...))
		if err != nil {
			return errors.Join(ErrFailedToUpdate, err)
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockVisible(ctx, tx, id); err != nil {
			return err
		}
		q := `UPDATE sample_table SET is_deleted = TRUE, is_active = FALSE WHERE id = $1`
		if hard {
			q = `DELETE FROM sample_table WHERE id = $1`
		}
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return errors.Join(ErrFailedToDelete, err)
		}
		return nil
	})
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Sample, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Join(ErrFailedToQuery, err)
	}
	defer rows.Close()

	items := []Sample{}
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, errors.Join(ErrFailedToQuery, err)
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrFailedToQuery, err)
	}
	return items, nil
}

func lockVisible(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM sample_table WHERE id = $1 AND `+visible+` FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Join(ErrFailedToQuery, err)
	}
	return nil
}

// updateAssignments builds the SET list for the fields present in req.
// Placeholders are numbered from $1 in the order of the returned args.
func updateAssignments(req UpdateRequest) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if req.RequiredUUID != nil {
		add("required_uuid", *req.RequiredUUID)
	}
	if req.OptionalUUID != nil {
		add("optional_uuid", *req.OptionalUUID)
	}
	if req.StringField != nil {
		add("string_field", *req.StringField)
	}
	if req.OptionalText != nil {
		add("optional_text", *req.OptionalText)
	}
	if req.RequiredJSONB != nil {
		add("required_jsonb", req.RequiredJSONB)
	}
	if req.OptionalJSONB != nil {
		add("optional_jsonb", req.OptionalJSONB)
	}
	if req.BigInt != nil {
		add("big_int", *req.BigInt)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}
	return set, args
}

func scanSample(row pgx.Row) (*Sample, error) {
	var (
		s                      Sample
		requiredRaw, optionRaw []byte
	)
	err := row.Scan(
		&s.ID, &s.IsActive, &s.IsDeleted, &s.CreatedOn, &s.ModifiedOn, &s.RequiredUUID, &s.OptionalUUID,
		&s.StringField, &s.OptionalText, &requiredRaw, &optionRaw, &s.BigInt,
	)
	if err != nil {
		return nil, err
	}
	if s.RequiredJSONB, err = decodeJSON(requiredRaw); err != nil {
		return nil, err
	}
	if s.OptionalJSONB, err = decodeJSON(optionRaw); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeJSON(raw []byte) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Join(ErrInvalidJSONColumn, err)
	}
	return m, nil
}

// jsonArg maps a nil map to SQL NULL rather than a JSON null literal.
func jsonArg(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

func notFound(s *Sample, err error) (*Sample, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToQuery, err)
	}
	return s, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
