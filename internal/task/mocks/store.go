package mocks

import (
	"context"
	"sync"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/davicafu/hexatasks/shared/platform/persistence"
	"github.com/stretchr/testify/mock"
)

// InMemoryTaskStore simula TaskStore guardando copias de las tareas.
type InMemoryTaskStore struct {
	Tasks     []*taskDomain.Task
	SaveCalls int
	mu        sync.Mutex
}

var _ taskDomain.TaskStore = (*InMemoryTaskStore)(nil)

func NewInMemoryTaskStore(tasks ...*taskDomain.Task) *InMemoryTaskStore {
	return &InMemoryTaskStore{Tasks: cloneAll(tasks)}
}

func (s *InMemoryTaskStore) Load(ctx context.Context) ([]*taskDomain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.Tasks), nil
}

func (s *InMemoryTaskStore) Save(ctx context.Context, tasks []*taskDomain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tasks = cloneAll(tasks)
	s.SaveCalls++
	return nil
}

// Snapshot devuelve el estado persistido actual.
func (s *InMemoryTaskStore) Snapshot() []*taskDomain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.Tasks)
}

func cloneAll(tasks []*taskDomain.Task) []*taskDomain.Task {
	out := make([]*taskDomain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}

// MockTaskStore permite programar fallos del medio con testify/mock.
type MockTaskStore struct {
	mock.Mock
}

var _ taskDomain.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Load(ctx context.Context) ([]*taskDomain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]*taskDomain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskStore) Save(ctx context.Context, tasks []*taskDomain.Task) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

// MockSlot simula el medio de persistencia.
type MockSlot struct {
	mock.Mock
}

var _ persistence.Slot = (*MockSlot)(nil)

func (m *MockSlot) Read(ctx context.Context) ([]byte, bool, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *MockSlot) Write(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
