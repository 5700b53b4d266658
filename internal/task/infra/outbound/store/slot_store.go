package store

import (
	"context"
	"fmt"
	"sync"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/davicafu/hexatasks/shared/platform/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotTaskStore implementa domain.TaskStore sobre un único hueco clave-valor.
type SlotTaskStore struct {
	slot persistence.Slot
	seed func() []*taskDomain.Task
	log  *zap.Logger
	mu   sync.Mutex // Serializa lecturas/escrituras completas del hueco.
}

// Verificación estática de la interfaz.
var _ taskDomain.TaskStore = (*SlotTaskStore)(nil)

// NewSlotTaskStore es el constructor. Si seed es nil, un hueco vacío arranca sin tareas.
func NewSlotTaskStore(slot persistence.Slot, seed func() []*taskDomain.Task, log *zap.Logger) *SlotTaskStore {
	return &SlotTaskStore{slot: slot, seed: seed, log: log}
}

// Load lee el estado persistido.
// - hueco inexistente: se guarda la semilla y se devuelve, así las cargas siguientes son estables;
// - contenido corrupto: se devuelve una lista vacía sin error;
// - fallo del medio: ErrPersistenceUnavailable.
func (s *SlotTaskStore) Load(ctx context.Context) ([]*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.slot.Read(ctx)
	if err != nil {
		s.log.Error("Failed to read task slot", zap.Error(err))
		return nil, fmt.Errorf("%w: read: %w", taskDomain.ErrPersistenceUnavailable, err)
	}

	if !found {
		tasks := []*taskDomain.Task{}
		if s.seed != nil {
			tasks = s.seed()
		}
		if err := s.write(ctx, tasks); err != nil {
			return nil, err
		}
		s.log.Info("Task slot initialized", zap.Int("seeded", len(tasks)))
		return tasks, nil
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		s.log.Warn("⚠️ Persisted tasks are malformed, starting empty", zap.Error(err))
		return []*taskDomain.Task{}, nil
	}
	return dedupe(tasks, s.log), nil
}

// Save sobrescribe el hueco con la secuencia completa.
func (s *SlotTaskStore) Save(ctx context.Context, tasks []*taskDomain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, tasks)
}

// write es un helper interno no concurrente.
func (s *SlotTaskStore) write(ctx context.Context, tasks []*taskDomain.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.log.Error("Failed to write task slot", zap.Error(err))
		return fmt.Errorf("%w: write: %w", taskDomain.ErrPersistenceUnavailable, err)
	}
	return nil
}

// dedupe conserva la primera aparición de cada id.
func dedupe(tasks []*taskDomain.Task, log *zap.Logger) []*taskDomain.Task {
	seen := make(map[uuid.UUID]struct{}, len(tasks))
	out := tasks[:0]
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			log.Warn("Duplicate task id in persisted state, dropping", zap.String("task_id", t.ID.String()))
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
