package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// SlotRepoSQLite guarda el hueco de tareas como una fila de la tabla kv_slots.
type SlotRepoSQLite struct {
	db  *sql.DB
	key string
}

var _ persistence.Slot = (*SlotRepoSQLite)(nil)

func NewSlotRepoSQLite(db *sql.DB, key string) *SlotRepoSQLite {
	return &SlotRepoSQLite{db: db, key: key}
}

// Read devuelve found=false si la fila no existe.
func (r *SlotRepoSQLite) Read(ctx context.Context) ([]byte, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = ?`, r.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db scan error: %w", err)
	}
	return []byte(value), true, nil
}

// Write hace un upsert de la fila completa.
func (r *SlotRepoSQLite) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		r.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla kv_slots si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS kv_slots (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at DATETIME NOT NULL
        )
    `)
	return err
}
