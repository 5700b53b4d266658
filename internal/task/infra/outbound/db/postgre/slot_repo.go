package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// SlotRepoPostgres implementa persistence.Slot sobre la tabla kv_slots de PostgreSQL.
type SlotRepoPostgres struct {
	db  *sql.DB
	key string
}

var _ persistence.Slot = (*SlotRepoPostgres)(nil)

// NewSlotRepoPostgres es el constructor del repositorio.
func NewSlotRepoPostgres(db *sql.DB, key string) *SlotRepoPostgres {
	return &SlotRepoPostgres{db: db, key: key}
}

// Read recupera el contenido del hueco; found=false si no hay fila.
func (r *SlotRepoPostgres) Read(ctx context.Context) ([]byte, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key=$1`, r.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db scan error: %w", err)
	}
	return []byte(value), true, nil
}

// Write sobrescribe el hueco en una única sentencia (upsert atómico).
func (r *SlotRepoPostgres) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		r.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresSlotSchema crea la tabla 'kv_slots' si no existe.
// El valor se guarda como TEXT y no JSONB: el contenido corrupto debe poder leerse tal cual.
func InitPostgresSlotSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS kv_slots (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL
    )`)
	if err != nil {
		return fmt.Errorf("failed to create kv_slots table: %w", err)
	}
	return nil
}
