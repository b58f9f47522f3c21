package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	entry Entry
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanEntry(r.entry, dest)
}

type stubRows struct {
	entries []Entry
	idx     int
	scanErr error
	closed  bool
}

func (r *stubRows) Close()                                       { r.closed = true }
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.idx >= len(r.entries) {
		r.Close()
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return scanEntry(r.entries[r.idx-1], dest)
}

func scanEntry(e Entry, dest []any) error {
	if len(dest) != 5 {
		return errors.New("unexpected column count")
	}
	*dest[0].(*uuid.UUID) = e.ID
	*dest[1].(*string) = e.Name
	*dest[2].(*string) = e.Email
	*dest[3].(*string) = e.Message
	*dest[4].(*time.Time) = e.CreatedAt
	return nil
}

type stubExecutor struct {
	tag      pgconn.CommandTag
	execErr  error
	row      stubRow
	rows     *stubRows
	queryErr error

	execArgs  []any
	queryArgs []any
	queries   int
}

func (s *stubExecutor) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execArgs = args
	return s.tag, s.execErr
}

func (s *stubExecutor) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.queries++
	s.queryArgs = args
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.rows, nil
}

func (s *stubExecutor) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.row
}

func sampleEntry() Entry {
	return Entry{
		ID:        uuid.MustParse("5b0c8f5e-3b9a-4a2b-9f55-6f8a1d2c3e4f"),
		Name:      "Ana",
		Email:     "ana@example.com",
		Message:   "hello",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
	}
}

func TestPostgresRepositoryCreate(t *testing.T) {
	entry := sampleEntry()

	db := &stubExecutor{tag: pgconn.NewCommandTag("INSERT 0 1")}
	require.NoError(t, NewPostgresRepository(db).Create(context.Background(), entry))
	assert.Equal(t, []any{entry.ID, entry.Name, entry.Email, entry.Message, entry.CreatedAt}, db.execArgs)

	none := &stubExecutor{tag: pgconn.NewCommandTag("INSERT 0 0")}
	err := NewPostgresRepository(none).Create(context.Background(), entry)
	assert.ErrorContains(t, err, "0 rows affected")

	failing := &stubExecutor{execErr: errors.New("connection reset")}
	err = NewPostgresRepository(failing).Create(context.Background(), entry)
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresRepositoryGet(t *testing.T) {
	entry := sampleEntry()

	got, err := NewPostgresRepository(&stubExecutor{row: stubRow{entry: entry}}).Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	_, err = NewPostgresRepository(&stubExecutor{row: stubRow{err: pgx.ErrNoRows}}).Get(context.Background(), entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	dbErr := errors.New("timeout")
	_, err = NewPostgresRepository(&stubExecutor{row: stubRow{err: dbErr}}).Get(context.Background(), entry.ID)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositoryRecent(t *testing.T) {
	first := sampleEntry()
	second := sampleEntry()
	second.ID = uuid.MustParse("0f8a1d2c-3e4f-4a2b-9f55-5b0c8f5e3b9a")
	second.Message = "older"

	rows := &stubRows{entries: []Entry{first, second}}
	db := &stubExecutor{rows: rows}
	entries, err := NewPostgresRepository(db).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []Entry{first, second}, entries)
	assert.Equal(t, []any{5}, db.queryArgs)
	assert.True(t, rows.closed)

	idle := &stubExecutor{}
	entries, err = NewPostgresRepository(idle).Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Zero(t, idle.queries)

	_, err = NewPostgresRepository(&stubExecutor{queryErr: errors.New("down")}).Recent(context.Background(), 5)
	assert.ErrorContains(t, err, "down")

	scanErr := errors.New("bad column")
	_, err = NewPostgresRepository(&stubExecutor{rows: &stubRows{entries: []Entry{first}, scanErr: scanErr}}).Recent(context.Background(), 5)
	assert.ErrorIs(t, err, scanErr)
}
