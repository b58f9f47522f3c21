package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGExecutor is the subset of pgxpool.Pool used by PostgresRepository.
type PGExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS feedback_entries (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// PostgresRepository stores entries in the feedback_entries table.
type PostgresRepository struct {
	db PGExecutor
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db PGExecutor) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the backing table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("feedback: ensure schema: %w", err)
	}
	return nil
}

// Create inserts entry.
func (r *PostgresRepository) Create(ctx context.Context, entry Entry) error {
	const query = `INSERT INTO feedback_entries (id, name, email, message, created_at) VALUES ($1, $2, $3, $4, $5)`
	tag, err := r.db.Exec(ctx, query, entry.ID, entry.Name, entry.Email, entry.Message, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("feedback: insert entry: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("feedback: insert entry: %d rows affected", tag.RowsAffected())
	}
	return nil
}

// Get fetches a single entry by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	const query = `SELECT id, name, email, message, created_at FROM feedback_entries WHERE id = $1`
	var e Entry
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("feedback: get entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	const query = `SELECT id, name, email, message, created_at FROM feedback_entries ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("feedback: list entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("feedback: list entries: %w", err)
	}
	return entries, nil
}
