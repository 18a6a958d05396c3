package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func tx(id, user string, amount float64, cat core.Category, date core.Date) core.Transaction {
	return core.Transaction{
		ID:              id,
		UserID:          user,
		Amount:          amount,
		Category:        cat,
		Description:     "ăn tối",
		TransactionDate: date,
		RawInput:        "ăn tối 200k",
		AIConfidence:    0.95,
	}
}

func TestSQLiteRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := tx("t1", "u1", 200000, core.CategoryFood, core.NewDate(2025, 3, 14))
	in.Metadata = map[string]any{"session_id": "s1"}

	saved, err := repo.SaveTransaction(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "t1", saved.ID)
	assert.Equal(t, 200000.0, saved.Amount)
	assert.Equal(t, core.CategoryFood, saved.Category)
	assert.Equal(t, "2025-03-14", saved.TransactionDate.String())
	assert.Equal(t, "ăn tối 200k", saved.RawInput)
	assert.InDelta(t, 0.95, saved.AIConfidence, 1e-9)
	assert.Equal(t, "s1", saved.Metadata["session_id"])
	assert.False(t, saved.CreatedAt.IsZero(), "created_at is assigned by the store")

	got, err := repo.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestSQLiteRepository_SaveRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	bad := tx("t1", "u1", 0, core.CategoryFood, core.NewDate(2025, 3, 14))
	_, err := repo.SaveTransaction(context.Background(), bad)
	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSQLiteRepository_DuplicateIDFails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveTransaction(ctx, tx("t1", "u1", 100, core.CategoryFood, core.NewDate(2025, 3, 14)))
	require.NoError(t, err)
	_, err = repo.SaveTransaction(ctx, tx("t1", "u1", 100, core.CategoryFood, core.NewDate(2025, 3, 14)))
	require.Error(t, err)
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetTransaction(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepository_FindSimilar(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rows := []core.Transaction{
		tx("in-range", "u1", 110, core.CategoryFood, core.NewDate(2025, 3, 14)),
		tx("low-edge", "u1", 90, core.CategoryFood, core.NewDate(2025, 3, 13)),
		tx("too-high", "u1", 120, core.CategoryFood, core.NewDate(2025, 3, 14)),
		tx("too-old", "u1", 100, core.CategoryFood, core.NewDate(2025, 3, 12)),
		tx("other-cat", "u1", 100, core.CategoryTransport, core.NewDate(2025, 3, 14)),
		tx("other-user", "u2", 100, core.CategoryFood, core.NewDate(2025, 3, 14)),
	}
	for _, r := range rows {
		_, err := repo.SaveTransaction(ctx, r)
		require.NoError(t, err)
	}

	got, err := repo.FindSimilar(ctx, "u1", core.CategoryFood, core.NewDate(2025, 3, 13), 90, 110)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, g := range got {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"in-range", "low-edge"}, ids)
}

func TestSQLiteRepository_ListTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, r := range []core.Transaction{
		tx("feb", "u1", 50, core.CategoryOther, core.NewDate(2025, 2, 28)),
		tx("mar-1", "u1", 100, core.CategoryFood, core.NewDate(2025, 3, 1)),
		tx("mar-31", "u1", 300, core.CategoryBills, core.NewDate(2025, 3, 31)),
		tx("apr", "u1", 70, core.CategoryFood, core.NewDate(2025, 4, 1)),
		tx("other", "u2", 70, core.CategoryFood, core.NewDate(2025, 3, 10)),
	} {
		_, err := repo.SaveTransaction(ctx, r)
		require.NoError(t, err)
	}

	first, last := core.MonthBounds(2025, 3)
	got, err := repo.ListTransactions(ctx, "u1", first, last)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mar-31", got[0].ID)
	assert.Equal(t, "mar-1", got[1].ID)
}

func TestSQLiteRepository_Ping(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, repo.Close())
	assert.Error(t, repo.Ping(context.Background()))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	dsn := dsnFor(path)

	require.NoError(t, RunMigrations(dsn))
	require.NoError(t, RunMigrations(dsn))

	version, dirty, err := SchemaVersion(dsn)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestNewSQLiteRepository_LogsSchemaVersion(t *testing.T) {
	var buf bytes.Buffer
	cfg := applog.DefaultConfig()
	cfg.Output = &buf
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "v.db"), applog.New(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	assert.Contains(t, buf.String(), "Database ready")
	assert.Contains(t, buf.String(), "schema_version=2")
}
