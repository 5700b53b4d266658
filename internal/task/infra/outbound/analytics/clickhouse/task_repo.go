package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	sharedEvents "github.com/davicafu/hexatasks/shared/events"
	sharedBus "github.com/davicafu/hexatasks/shared/platform/bus"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ActivityLog guarda cada evento de tarea en ClickHouse y responde consultas de tendencia.
type ActivityLog struct {
	db *sql.DB
}

// Open abre la conexión y hace ping.
func Open(addr string, dbName string) (*sql.DB, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}
	return conn, nil
}

// NewActivityLog es el constructor.
func NewActivityLog(db *sql.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

// Publish permite usar el log directamente como bus de eventos.
func (r *ActivityLog) Publish(ctx context.Context, event interface{}) error {
	evt, ok := event.(sharedEvents.IntegrationEvent)
	if !ok {
		return fmt.Errorf("clickhouse activity log: unsupported event %T", event)
	}
	return r.Record(ctx, evt)
}

// Record inserta un evento. completed=1 solo cuando un task.updated pasa de pendiente a completada.
func (r *ActivityLog) Record(ctx context.Context, evt sharedEvents.IntegrationEvent) error {
	completed, err := completionFlag(evt)
	if err != nil {
		return err
	}

	// ClickHouse funciona mejor con inserciones en lotes; aquí el lote es de un evento.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO task_activity (task_id, event_type, completed, payload, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, evt.Key, evt.Type, completed, string(evt.Data), evt.Timestamp); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record event for task %s: %w", evt.Key, err)
	}
	return tx.Commit()
}

// completionFlag marca las transiciones false→true. Editar una tarea ya completada no cuenta.
func completionFlag(evt sharedEvents.IntegrationEvent) (uint8, error) {
	if evt.Type != taskDomain.TaskUpdated {
		return 0, nil
	}
	var upd sharedEvents.TaskUpdated
	if err := json.Unmarshal(evt.Data, &upd); err != nil {
		return 0, fmt.Errorf("decode %s: %w", evt.Type, err)
	}
	if upd.Completed && !upd.WasCompleted {
		return 1, nil
	}
	return 0, nil
}

func (r *ActivityLog) GetDailyTrend(ctx context.Context, start, end time.Time) ([]taskDomain.DailyTaskTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			toInt64(countIf(event_type = 'task.created')) AS created,
			toInt64(countIf(event_type = 'task.updated' AND completed = 1)) AS completed
		FROM task_activity
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []taskDomain.DailyTaskTrend
	for rows.Next() {
		var trend taskDomain.DailyTaskTrend
		if err := rows.Scan(&trend.Day, &trend.CreatedCount, &trend.CompletedCount); err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

// GetAverageCompletionTime promedia, para las tareas completadas en el rango, el tiempo
// entre su evento task.created y su última compleción.
func (r *ActivityLog) GetAverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error) {
	query := `
		SELECT
			avg(dateDiff('second', creation_time, completion_time)) AS avg_completion_seconds
		FROM (
			SELECT
				task_id,
				minIf(event_time, event_type = 'task.created') AS creation_time,
				maxIf(event_time, completed = 1) AS completion_time
			FROM task_activity
			WHERE task_id IN (
				SELECT DISTINCT task_id FROM task_activity WHERE completed = 1 AND event_time BETWEEN ? AND ?
			)
			GROUP BY task_id
		)
		WHERE toUnixTimestamp64Nano(creation_time) > 0 AND completion_time >= creation_time
	`
	var avgSeconds sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, start, end).Scan(&avgSeconds); err != nil {
		return 0, err
	}
	if !avgSeconds.Valid {
		return 0, nil // No hay datos para calcular
	}
	return time.Duration(avgSeconds.Float64 * float64(time.Second)), nil
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *ActivityLog) InitSchema(ctx context.Context) error {
	// Se particiona por mes y se ordena por los campos de consulta habituales.
	query := `
		CREATE TABLE IF NOT EXISTS task_activity (
			task_id    String,
			event_type LowCardinality(String),
			completed  UInt8,
			payload    String,
			event_time DateTime64(9)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (event_type, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Verificación estática de la interfaz.
var (
	_ taskDomain.TaskTrendReader = (*ActivityLog)(nil)
	_ sharedBus.EventPublisher   = (*ActivityLog)(nil)
)
