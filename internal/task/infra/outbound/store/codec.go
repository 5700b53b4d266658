package store

import (
	"encoding/json"
	"fmt"
	"time"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/google/uuid"
)

// --- Structs JSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags.

type jsonTask struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Completed   bool             `json:"completed"`
	Priority    string           `json:"priority"`
	DueDate     *taskDomain.Date `json:"dueDate,omitempty"`
	Category    string           `json:"category,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func encodeTasks(tasks []*taskDomain.Task) ([]byte, error) {
	out := make([]jsonTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toJSONTask(t))
	}
	return json.Marshal(out)
}

// decodeTasks devuelve error ante cualquier contenido que no sea una secuencia de tareas válida.
func decodeTasks(data []byte) ([]*taskDomain.Task, error) {
	var raw []jsonTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	tasks := make([]*taskDomain.Task, 0, len(raw))
	for i, jt := range raw {
		t, err := fromJSONTask(jt)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func toJSONTask(t *taskDomain.Task) jsonTask {
	return jsonTask{
		ID: t.ID, Title: t.Title, Description: t.Description, Completed: t.Completed,
		Priority: string(t.Priority), DueDate: t.DueDate, Category: t.Category,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func fromJSONTask(jt jsonTask) (*taskDomain.Task, error) {
	if jt.ID == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	p := taskDomain.Priority(jt.Priority)
	if jt.Priority == "" {
		p = taskDomain.PriorityMedium
	}
	if !p.Valid() {
		return nil, fmt.Errorf("unknown priority %q", jt.Priority)
	}
	updated := jt.UpdatedAt
	if updated.Before(jt.CreatedAt) {
		updated = jt.CreatedAt
	}
	return &taskDomain.Task{
		ID: jt.ID, Title: jt.Title, Description: jt.Description, Completed: jt.Completed,
		Priority: p, DueDate: jt.DueDate, Category: jt.Category,
		CreatedAt: jt.CreatedAt, UpdatedAt: updated,
	}, nil
}
