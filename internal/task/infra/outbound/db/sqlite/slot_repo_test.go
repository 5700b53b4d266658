package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSQLite(db))
	return db
}

func TestSlotRepoSQLite_ReadMissing(t *testing.T) {
	repo := NewSlotRepoSQLite(setupSQLiteTestDB(t), "tasks")

	data, found, err := repo.Read(context.Background())

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestSlotRepoSQLite_WriteOverwrites(t *testing.T) {
	db := setupSQLiteTestDB(t)
	repo := NewSlotRepoSQLite(db, "tasks")
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, []byte(`[{"v":1}]`)))
	require.NoError(t, repo.Write(ctx, []byte(`[{"v":2}]`)))

	data, found, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"v":2}]`, string(data))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv_slots`).Scan(&count))
	assert.Equal(t, 1, count, "el hueco ocupa una única fila")
}

func TestSlotRepoSQLite_KeysAreIndependent(t *testing.T) {
	db := setupSQLiteTestDB(t)
	ctx := context.Background()
	a := NewSlotRepoSQLite(db, "a")
	b := NewSlotRepoSQLite(db, "b")

	require.NoError(t, a.Write(ctx, []byte("A")))

	_, found, err := b.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSlotRepoSQLite_ClosedDB(t *testing.T) {
	db := setupSQLiteTestDB(t)
	repo := NewSlotRepoSQLite(db, "tasks")
	db.Close()

	_, _, err := repo.Read(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.Write(context.Background(), []byte("[]")))
}
