package domain

import (
	"fmt"
	"strings"
	"time"

	sharedBus "github.com/davicafu/hexatasks/shared/platform/bus"
	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank devuelve la severidad numérica usada al ordenar (high=3, medium=2, low=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority acepta el texto en cualquier combinación de mayúsculas.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, s)
	}
	return p, nil
}

// Categorías que la interfaz ofrece como sugerencia; el campo sigue siendo libre.
var SuggestedCategories = []string{"Work", "Personal", "Health", "Shopping", "Education", "Finance", "Other"}

type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *Date
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) PartitionKey() string {
	return t.ID.String()
}

// Clone devuelve una copia independiente; DueDate se copia por valor.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

// --- Métodos de dominio ---

// Apply fusiona los campos presentes en el patch. ID y CreatedAt no se tocan nunca.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	t.touch(now)
}

// touch garantiza que UpdatedAt nunca retrocede ni se repite tras una mutación.
func (t *Task) touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
}

// IsOverdue indica si la fecha límite es anterior al día de 'now' y la tarea sigue pendiente.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// Verificación estática para asegurar que Task implementa la interfaz
var _ sharedBus.Keyer = (*Task)(nil)
