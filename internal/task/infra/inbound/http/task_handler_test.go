package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/davicafu/hexatasks/internal/task/application"
	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/davicafu/hexatasks/internal/task/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTrend struct {
	points []taskDomain.DailyTaskTrend
	avg    time.Duration
	err    error
	start  time.Time
}

func (f *fakeTrend) GetAverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error) {
	f.start = start
	return f.avg, f.err
}

func (f *fakeTrend) GetDailyTrend(ctx context.Context, start, end time.Time) ([]taskDomain.DailyTaskTrend, error) {
	f.start = start
	return f.points, f.err
}

func newTestRouter(t *testing.T, trend taskDomain.TaskTrendReader, tasks ...*taskDomain.Task) *gin.Engine {
	t.Helper()
	service := application.NewTaskService(mocks.NewInMemoryTaskStore(tasks...), nil, zap.NewNop())
	session := application.NewSession(service, zap.NewNop())
	require.NoError(t, session.Load(context.Background()))
	handler := NewTaskHandler(service, session, trend, language.English, zap.NewNop())
	return NewRouter(handler, zap.NewNop())
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHTTP_CreateListUpdateDelete(t *testing.T) {
	r := newTestRouter(t, nil)

	// Crear
	w := do(r, http.MethodPost, "/tasks", map[string]string{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[taskResponse](t, w).Data
	assert.Equal(t, "medium", created.Priority)
	assert.False(t, created.Completed)

	w = do(r, http.MethodPost, "/tasks", map[string]string{"title": "Write report", "category": "Work", "priority": "HIGH", "dueDate": "2030-01-02"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode[taskResponse](t, w).Data
	assert.Equal(t, "high", report.Priority)
	assert.Equal(t, "2030-01-02", report.DueDate)

	// Buscar
	w = do(r, http.MethodGet, "/tasks?q=work", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listResponse](t, w).Data
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, report.ID, list.Tasks[0].ID)
	assert.Equal(t, countsResponse{All: 1, Pending: 1}, list.Counts)

	// Completar
	w = do(r, http.MethodPatch, "/tasks/"+created.ID.String(), map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[taskResponse](t, w).Data
	assert.True(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	w = do(r, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, statsResponse{Total: 2, Completed: 1, Pending: 1, CompletionRate: 50}, decode[statsResponse](t, w).Data)

	// Borrar la fecha con null
	w = do(r, http.MethodPatch, "/tasks/"+report.ID.String(), `{"dueDate": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[taskResponse](t, w).Data.DueDate)

	// Borrar dos veces: idempotente
	w = do(r, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/tasks/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTP_ListSortsAndEmptyStates(t *testing.T) {
	seed := taskDomain.SeedTasks()
	r := newTestRouter(t, nil, seed...)

	w := do(r, http.MethodGet, "/tasks?sort=title", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listResponse](t, w).Data
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "Complete React assignment", list.Tasks[0].Title)
	assert.Equal(t, "", list.EmptyState)

	w = do(r, http.MethodGet, "/tasks?q=zzz&status=completed", nil)
	list = decode[listResponse](t, w).Data
	assert.Empty(t, list.Tasks)
	assert.NotNil(t, list.Tasks)
	assert.Equal(t, string(taskDomain.EmptyCompleted), list.EmptyState)

	w = do(r, http.MethodGet, "/tasks?sort=color", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodGet, "/tasks?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_ValidationErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	long := string(bytes.Repeat([]byte("x"), taskDomain.MaxTitleLength+1))

	cases := []struct {
		name   string
		method string
		body   interface{}
		code   string
	}{
		{"missing title", http.MethodPost, map[string]string{}, ""},
		{"blank title", http.MethodPost, map[string]string{"title": "   "}, "invalid_title"},
		{"title too long", http.MethodPost, map[string]string{"title": long}, "invalid_title"},
		{"bad priority", http.MethodPost, map[string]string{"title": "x", "priority": "urgent"}, ""},
		{"bad date", http.MethodPost, map[string]string{"title": "x", "dueDate": "mañana"}, ""},
		{"malformed json", http.MethodPost, "{", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.method, "/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			if tc.code != "" {
				assert.Equal(t, tc.code, decode[taskResponse](t, w).Error.Code)
			}
		})
	}

	w := do(r, http.MethodGet, "/tasks/no-es-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPatch, "/tasks/"+uuid.NewString(), map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodPatch, "/tasks/"+uuid.NewString(), `{"dueDate": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_ErrorMapping(t *testing.T) {
	repo := new(mocks.MockTaskRepository)
	repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil, taskDomain.ErrPersistenceUnavailable)
	repo.On("DeleteTask", mock.Anything, mock.Anything).Return(errors.New("boom"))
	session := application.NewSession(repo, zap.NewNop())
	service := application.NewTaskService(mocks.NewInMemoryTaskStore(), nil, zap.NewNop())
	r := NewRouter(NewTaskHandler(service, session, nil, language.English, zap.NewNop()), zap.NewNop())

	w := do(r, http.MethodPost, "/tasks", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(r, http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type busyCommands struct{}

func (busyCommands) Create(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error) {
	return nil, taskDomain.ErrTaskBusy
}

func (busyCommands) Edit(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error) {
	return nil, taskDomain.ErrTaskBusy
}

func (busyCommands) Delete(ctx context.Context, id uuid.UUID) error {
	return taskDomain.ErrTaskBusy
}

func TestHTTP_BusyIsConflict(t *testing.T) {
	service := application.NewTaskService(mocks.NewInMemoryTaskStore(), nil, zap.NewNop())
	r := NewRouter(NewTaskHandler(service, busyCommands{}, nil, language.English, zap.NewNop()), zap.NewNop())

	w := do(r, http.MethodPatch, "/tasks/"+uuid.NewString(), map[string]bool{"completed": true})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(r, http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHTTP_Trend(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	trend := &fakeTrend{points: []taskDomain.DailyTaskTrend{{Day: day, CreatedCount: 3, CompletedCount: 1}}}
	r := newTestRouter(t, trend)

	w := do(r, http.MethodGet, "/stats/trend?days=3", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	points := decode[[]trendPoint](t, w).Data
	assert.Equal(t, []trendPoint{{Day: "2024-01-15", Created: 3, Completed: 1}}, points)
	assert.Equal(t, taskDomain.DateOf(time.Now().UTC()).Time().AddDate(0, 0, -2), trend.start)

	w = do(r, http.MethodGet, "/stats/trend?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	trend.err = errors.New("down")
	w = do(r, http.MethodGet, "/stats/trend", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHTTP_CompletionTime(t *testing.T) {
	trend := &fakeTrend{avg: 90 * time.Minute}
	r := newTestRouter(t, trend)

	w := do(r, http.MethodGet, "/stats/completion-time", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, completionTimeResponse{Days: 30, AverageSeconds: 5400}, decode[completionTimeResponse](t, w).Data)
	assert.Equal(t, taskDomain.DateOf(time.Now().UTC()).Time().AddDate(0, 0, -29), trend.start)

	w = do(r, http.MethodGet, "/stats/completion-time?days=400", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	trend.err = errors.New("down")
	w = do(r, http.MethodGet, "/stats/completion-time", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHTTP_TrendNotConfiguredAndHealth(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/stats/trend", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodGet, "/stats/completion-time", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
