// en internal/task/application/task_service.go
package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	sharedEvents "github.com/davicafu/hexatasks/shared/events"
	sharedBus "github.com/davicafu/hexatasks/shared/platform/bus"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService define los casos de uso relacionados con Task.
// Es el único componente que modifica el estado persistido.
type TaskService struct {
	store     taskDomain.TaskStore
	publisher sharedBus.EventPublisher
	log       *zap.Logger
	now       func() time.Time
	newID     func() uuid.UUID
	mu        sync.Mutex // Serializa cada ciclo load-modify-save.
}

type Option func(*TaskService)

// WithClock sustituye el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithIDGenerator sustituye el generador de ids (tests).
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *TaskService) { s.newID = gen }
}

// NewTaskService es el constructor para el servicio de tareas.
// Si publisher es nil, los eventos se descartan.
func NewTaskService(store taskDomain.TaskStore, publisher sharedBus.EventPublisher, log *zap.Logger, opts ...Option) *TaskService {
	if publisher == nil {
		publisher = sharedBus.NopPublisher{}
	}
	s := &TaskService{
		store:     store,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTasks devuelve la colección completa en el orden guardado (más reciente primero).
func (s *TaskService) ListTasks(ctx context.Context) ([]*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to list tasks", zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to fetch task", zap.String("task_id", id.String()), zap.Error(err))
		return nil, err
	}
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	s.log.Warn("Task not found", zap.String("task_id", id.String()))
	return nil, taskDomain.ErrTaskNotFound
}

// CreateTask crea una nueva tarea al principio de la colección, la persiste y publica el evento.
func (s *TaskService) CreateTask(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &taskDomain.ValidationError{Field: "title", Reason: "is required"}
	}
	priority := in.Priority
	if priority == "" {
		priority = taskDomain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &taskDomain.ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high (got %q)", in.Priority)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	now := s.now()
	task := &taskDomain.Task{
		ID:          s.uniqueID(tasks),
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		d := *in.DueDate
		task.DueDate = &d
	}

	next := make([]*taskDomain.Task, 0, len(tasks)+1)
	next = append(next, task)
	next = append(next, tasks...)
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	s.log.Info("✅ Task created", zap.String("task_id", task.ID.String()))
	s.publish(ctx, taskDomain.TaskCreated, task.ID, sharedEvents.TaskCreated{
		ID:        task.ID,
		Title:     task.Title,
		Priority:  string(task.Priority),
		Category:  task.Category,
		DueDate:   dueString(task.DueDate),
		CreatedAt: task.CreatedAt,
	})
	return task.Clone(), nil
}

// UpdateTask fusiona el patch en la tarea existente. ID y CreatedAt no cambian nunca.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, &taskDomain.ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high (got %q)", *patch.Priority)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		s.log.Warn("Task not found", zap.String("task_id", id.String()))
		return nil, taskDomain.ErrTaskNotFound
	}

	task := tasks[i]
	wasCompleted := task.Completed
	task.Apply(patch, s.now())
	if err := s.store.Save(ctx, tasks); err != nil {
		s.log.Error("Failed to update task", zap.String("task_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, taskDomain.TaskUpdated, task.ID, sharedEvents.TaskUpdated{
		ID:           task.ID,
		Title:        task.Title,
		Completed:    task.Completed,
		WasCompleted: wasCompleted,
		Priority:     string(task.Priority),
		UpdatedAt:    task.UpdatedAt,
	})
	return task.Clone(), nil
}

// DeleteTask es idempotente: un id inexistente no es un error y no escribe nada.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to delete task", zap.String("task_id", id.String()), zap.Error(err))
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		s.log.Debug("Delete of unknown task ignored", zap.String("task_id", id.String()))
		return nil
	}

	removed := tasks[i]
	next := append(tasks[:i:i], tasks[i+1:]...)
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error("Failed to delete task", zap.String("task_id", id.String()), zap.Error(err))
		return err
	}

	s.publish(ctx, taskDomain.TaskDeleted, id, sharedEvents.TaskDeleted{ID: id, WasCompleted: removed.Completed})
	return nil
}

// GetStats se recalcula desde una carga nueva en cada llamada.
func (s *TaskService) GetStats(ctx context.Context) (taskDomain.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("Failed to compute stats", zap.Error(err))
		return taskDomain.TaskStats{}, err
	}
	return taskDomain.ComputeStats(tasks), nil
}

// --- Helpers ---

// uniqueID regenera hasta no colisionar con ningún id existente.
func (s *TaskService) uniqueID(tasks []*taskDomain.Task) uuid.UUID {
	for {
		id := s.newID()
		if id != uuid.Nil && indexOf(tasks, id) < 0 {
			return id
		}
		s.log.Warn("Generated task id collides, retrying", zap.String("task_id", id.String()))
	}
}

// publish nunca hace fallar la operación: el cambio ya es durable.
func (s *TaskService) publish(ctx context.Context, eventType string, id uuid.UUID, payload interface{}) {
	evt, err := sharedEvents.NewIntegrationEvent(eventType, id.String(), s.now(), payload)
	if err != nil {
		s.log.Error("Failed to build integration event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("⚠️ Failed to publish task event",
			zap.String("event_type", eventType),
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
	}
}

func indexOf(tasks []*taskDomain.Task, id uuid.UUID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func dueString(d *taskDomain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
