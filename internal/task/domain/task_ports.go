package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrInvalidTask            = errors.New("invalid task")
	ErrPersistenceUnavailable = errors.New("task persistence unavailable")
	ErrTaskBusy               = errors.New("task has an operation in flight")
)

// --- Almacén de Tasks ---

// TaskStore guarda la colección completa y ordenada; se lee y escribe entera.
type TaskStore interface {
	Load(ctx context.Context) ([]*Task, error)
	Save(ctx context.Context, tasks []*Task) error
}

// DTO para transportar los resultados de la consulta de tendencia.
type DailyTaskTrend struct {
	Day            time.Time
	CreatedCount   int
	CompletedCount int
}

type TaskTrendReader interface {
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyTaskTrend, error)
	// GetAverageCompletionTime mide desde la creación hasta la última compleción; 0 si no hay datos.
	GetAverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error)
}
