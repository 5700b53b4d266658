package events

import (
	"time"

	"github.com/google/uuid"
)

// Contratos de integración, NO entidades del dominio.
type TaskCreated struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Category  string    `json:"category,omitempty"`
	DueDate   string    `json:"dueDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskUpdated lleva el estado anterior para distinguir una compleción real de una edición.
type TaskUpdated struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Completed    bool      `json:"completed"`
	WasCompleted bool      `json:"wasCompleted"`
	Priority     string    `json:"priority"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TaskDeleted struct {
	ID           uuid.UUID `json:"id"`
	WasCompleted bool      `json:"wasCompleted"`
}
