package feedback

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when FORMCSRF_TEST_PG_DSN is set.
func TestPostgresRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("FORMCSRF_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("FORMCSRF_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, "TRUNCATE feedback_entries")
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := Entry{ID: uuid.New(), Name: "A", Email: "a@example.com", Message: "older", CreatedAt: base}
	newer := Entry{ID: uuid.New(), Name: "B", Email: "b@example.com", Message: "newer", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)

	got, err := repo.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.Message)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
