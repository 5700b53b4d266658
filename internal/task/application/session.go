package application

import (
	"context"
	"sync"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskRepository es lo que la sesión necesita del servicio. TaskService la cumple.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]*taskDomain.Task, error)
	CreateTask(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context) (taskDomain.TaskStats, error)
}

var _ TaskRepository = (*TaskService)(nil)

// Session mantiene la copia local de las tareas y de los contadores.
// La caché solo cambia después de que el repositorio confirme la operación.
type Session struct {
	repo     TaskRepository
	log      *zap.Logger
	mu       sync.Mutex
	tasks    []*taskDomain.Task
	stats    taskDomain.TaskStats
	inFlight map[uuid.UUID]struct{}
}

func NewSession(repo TaskRepository, log *zap.Logger) *Session {
	return &Session{repo: repo, log: log, inFlight: make(map[uuid.UUID]struct{})}
}

// Load sustituye la caché y los contadores por el estado del repositorio.
// Los contadores salen de la misma lista cargada, así ambos reflejan una única lectura.
func (s *Session) Load(ctx context.Context) error {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		s.log.Error("Session load failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneTasks(tasks)
	s.stats = taskDomain.ComputeStats(tasks)
	return nil
}

func (s *Session) Create(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	task, err := s.repo.CreateTask(ctx, in)
	if err != nil {
		s.log.Error("Session create failed", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]*taskDomain.Task{task.Clone()}, s.tasks...)
	s.stats = s.stats.Added()
	return task, nil
}

// Edit aplica una actualización parcial; los contadores siguen al cambio de estado si lo hubo.
func (s *Session) Edit(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := s.acquire(id); err != nil {
		return nil, err
	}
	defer s.release(id)

	task, err := s.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		s.log.Error("Session update failed", zap.String("task_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		wasCompleted := s.tasks[i].Completed
		s.tasks[i] = task.Clone()
		if wasCompleted != task.Completed {
			s.stats = s.stats.Toggled(task.Completed)
		}
	} else {
		s.log.Warn("Updated task missing from session cache", zap.String("task_id", id.String()))
	}
	return task, nil
}

// Toggle fija el estado de completado.
func (s *Session) Toggle(ctx context.Context, id uuid.UUID, completed bool) (*taskDomain.Task, error) {
	return s.Edit(ctx, id, taskDomain.TaskPatch{Completed: &completed})
}

// Delete quita la tarea de la caché usando el estado que tenía antes del borrado.
func (s *Session) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.acquire(id); err != nil {
		return err
	}
	defer s.release(id)

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		s.log.Error("Session delete failed", zap.String("task_id", id.String()), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		wasCompleted := s.tasks[i].Completed
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		s.stats = s.stats.Removed(wasCompleted)
	}
	return nil
}

func (s *Session) RefreshStats(ctx context.Context) error {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		s.log.Error("Session stats refresh failed", zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// --- Lectura ---

// Tasks devuelve una copia de la caché en orden de creación (más reciente primero).
func (s *Session) Tasks() []*taskDomain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Session) Stats() taskDomain.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) View(q taskDomain.ViewQuery) []*taskDomain.Task {
	return taskDomain.Project(s.Tasks(), q)
}

func (s *Session) Counts(search string) taskDomain.FilterCounts {
	return taskDomain.CountsFor(s.Tasks(), search)
}

func (s *Session) EmptyState(q taskDomain.ViewQuery) taskDomain.EmptyState {
	tasks := s.Tasks()
	return taskDomain.EmptyStateFor(len(tasks), len(taskDomain.Project(tasks, q)), q.Filter)
}

// Busy indica si hay una operación en curso para esa tarea.
func (s *Session) Busy(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

func (s *Session) acquire(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[id]; ok {
		return taskDomain.ErrTaskBusy
	}
	s.inFlight[id] = struct{}{}
	return nil
}

func (s *Session) release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func cloneTasks(tasks []*taskDomain.Task) []*taskDomain.Task {
	out := make([]*taskDomain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
