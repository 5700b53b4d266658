package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPostgresTestDB se conecta a Postgres, crea el esquema y limpia la tabla.
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL no está configurada, saltando test de integración con Postgres")
	}

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, InitPostgresSlotSchema(db))

	// Limpiar la tabla antes de cada test para asegurar el aislamiento
	_, err = db.Exec(`TRUNCATE TABLE kv_slots`)
	require.NoError(t, err)
	return db
}

func TestSlotRepoPostgresIntegration(t *testing.T) {
	db := setupPostgresTestDB(t)
	defer db.Close()
	repo := NewSlotRepoPostgres(db, "tasks")
	ctx := context.Background()

	_, found, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Write(ctx, []byte(`[]`)))
	require.NoError(t, repo.Write(ctx, []byte(`not json`)))

	data, found, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "not json", string(data), "el contenido se guarda tal cual")
}
