package mocks

import (
	"context"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository simula el servicio de tareas visto desde la sesión.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) ListTasks(ctx context.Context) ([]*taskDomain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]*taskDomain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error) {
	args := m.Called(ctx, in)
	task, _ := args.Get(0).(*taskDomain.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error) {
	args := m.Called(ctx, id, patch)
	task, _ := args.Get(0).(*taskDomain.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetStats(ctx context.Context) (taskDomain.TaskStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(taskDomain.TaskStats)
	return stats, args.Error(1)
}
