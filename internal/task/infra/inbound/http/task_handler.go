// en internal/task/infra/inbound/http/task_handler.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	"github.com/davicafu/hexatasks/pkg/utils"
)

// TaskQueries son las lecturas, servidas siempre desde el store.
type TaskQueries interface {
	ListTasks(ctx context.Context) ([]*taskDomain.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error)
	GetStats(ctx context.Context) (taskDomain.TaskStats, error)
}

// TaskCommands son las mutaciones; application.Session las cumple con su control de operaciones en curso.
type TaskCommands interface {
	Create(ctx context.Context, in taskDomain.TaskInput) (*taskDomain.Task, error)
	Edit(ctx context.Context, id uuid.UUID, patch taskDomain.TaskPatch) (*taskDomain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskHandler encapsula los endpoints HTTP relacionados con Task.
type TaskHandler struct {
	queries  TaskQueries
	commands TaskCommands
	trend    taskDomain.TaskTrendReader // nil si no hay analítica configurada
	lang     language.Tag
	log      *zap.Logger
	now      func() time.Time
}

// NewTaskHandler crea un nuevo TaskHandler. trend puede ser nil.
func NewTaskHandler(queries TaskQueries, commands TaskCommands, trend taskDomain.TaskTrendReader, lang language.Tag, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		queries:  queries,
		commands: commands,
		trend:    trend,
		lang:     lang,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// --- DTOs ---

type taskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"dueDate,omitempty"`
	Category    string    `json:"category,omitempty"`
	Overdue     bool      `json:"overdue"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *TaskHandler) toResponse(t *taskDomain.Task) taskResponse {
	resp := taskResponse{
		ID: t.ID, Title: t.Title, Description: t.Description, Completed: t.Completed,
		Priority: string(t.Priority), Category: t.Category, Overdue: t.IsOverdue(h.now()),
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.String()
	}
	return resp
}

type countsResponse struct {
	All       int `json:"all"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type listResponse struct {
	Tasks      []taskResponse `json:"tasks"`
	Counts     countsResponse `json:"counts"`
	EmptyState string         `json:"emptyState,omitempty"`
}

type statsResponse struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

type completionTimeResponse struct {
	Days           int   `json:"days"`
	AverageSeconds int64 `json:"averageSeconds"`
}

type trendPoint struct {
	Day       string `json:"day"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// --- Handlers CRUD ---

// CreateTask endpoint POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		DueDate     string `json:"dueDate"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	in := taskDomain.TaskInput{Title: req.Title, Description: req.Description, Category: req.Category}
	if req.Priority != "" {
		p, err := taskDomain.ParsePriority(req.Priority)
		if err != nil {
			h.respondError(c, err)
			return
		}
		in.Priority = p
	}
	if req.DueDate != "" {
		d, err := taskDomain.ParseDate(req.DueDate)
		if err != nil {
			h.respondError(c, err)
			return
		}
		in.DueDate = &d
	}

	task, err := h.commands.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, h.toResponse(task))
}

// GetTask endpoint GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.queries.GetTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, h.toResponse(task))
}

// UpdateTask endpoint PATCH /tasks/:id. "dueDate": null borra la fecha.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// Usamos punteros para que los campos sean opcionales en el JSON
	var req struct {
		Title       *string         `json:"title,omitempty"`
		Description *string         `json:"description,omitempty"`
		Completed   *bool           `json:"completed,omitempty"`
		Priority    *string         `json:"priority,omitempty"`
		DueDate     json.RawMessage `json:"dueDate,omitempty"`
		Category    *string         `json:"category,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	patch := taskDomain.TaskPatch{Title: req.Title, Description: req.Description, Completed: req.Completed, Category: req.Category}
	if req.Priority != nil {
		p, err := taskDomain.ParsePriority(*req.Priority)
		if err != nil {
			h.respondError(c, err)
			return
		}
		patch.Priority = &p
	}
	if len(req.DueDate) > 0 {
		if string(req.DueDate) == "null" {
			patch.ClearDueDate = true
		} else {
			var d taskDomain.Date
			if err := json.Unmarshal(req.DueDate, &d); err != nil {
				utils.SendBadRequest(c, "dueDate must be a YYYY-MM-DD string or null")
				return
			}
			patch.DueDate = &d
		}
	}

	task, err := h.commands.Edit(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, h.toResponse(task))
}

// DeleteTask endpoint DELETE /tasks/:id. Idempotente.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.commands.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTasks endpoint GET /tasks?q=&status=&sort=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter, err := taskDomain.ParseStatusFilter(c.Query("status"))
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	sortKey, err := taskDomain.ParseSortKey(c.Query("sort"))
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	tasks, err := h.queries.ListTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	q := taskDomain.ViewQuery{Search: c.Query("q"), Filter: filter, Sort: sortKey, Language: h.lang}
	visible := taskDomain.Project(tasks, q)
	counts := taskDomain.CountsFor(tasks, q.Search)

	resp := listResponse{
		Tasks:      make([]taskResponse, 0, len(visible)),
		Counts:     countsResponse{All: counts.All, Completed: counts.Completed, Pending: counts.Pending},
		EmptyState: string(taskDomain.EmptyStateFor(len(tasks), len(visible), filter)),
	}
	for _, t := range visible {
		resp.Tasks = append(resp.Tasks, h.toResponse(t))
	}
	utils.SendSuccess(c, http.StatusOK, resp)
}

// GetStats endpoint GET /stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.queries.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, statsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		Pending:        stats.Pending,
		CompletionRate: stats.CompletionRate(),
	})
}

// GetTrend endpoint GET /stats/trend?days=7
func (h *TaskHandler) GetTrend(c *gin.Context) {
	start, end, ok := h.analyticsWindow(c, 7)
	if !ok {
		return
	}
	trend, err := h.trend.GetDailyTrend(c.Request.Context(), start, end)
	if err != nil {
		h.log.Error("Failed to query task trend", zap.Error(err))
		utils.SendServiceUnavailable(c, "analytics unavailable")
		return
	}

	points := make([]trendPoint, 0, len(trend))
	for _, p := range trend {
		points = append(points, trendPoint{Day: taskDomain.DateOf(p.Day).String(), Created: p.CreatedCount, Completed: p.CompletedCount})
	}
	utils.SendSuccess(c, http.StatusOK, points)
}

// GetCompletionTime endpoint GET /stats/completion-time?days=30
func (h *TaskHandler) GetCompletionTime(c *gin.Context) {
	start, end, ok := h.analyticsWindow(c, 30)
	if !ok {
		return
	}
	avg, err := h.trend.GetAverageCompletionTime(c.Request.Context(), start, end)
	if err != nil {
		h.log.Error("Failed to query completion time", zap.Error(err))
		utils.SendServiceUnavailable(c, "analytics unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, completionTimeResponse{
		Days:           int(end.Sub(start).Hours()/24) + 1,
		AverageSeconds: int64(avg / time.Second),
	})
}

// analyticsWindow valida ?days= y devuelve [inicio del primer día, ahora]. Escribe la respuesta si falla.
func (h *TaskHandler) analyticsWindow(c *gin.Context, defaultDays int) (time.Time, time.Time, bool) {
	if h.trend == nil {
		utils.SendNotFound(c, "analytics not configured")
		return time.Time{}, time.Time{}, false
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultDays)))
	if err != nil || days < 1 || days > 365 {
		utils.SendBadRequest(c, "days must be an integer between 1 and 365")
		return time.Time{}, time.Time{}, false
	}
	end := h.now()
	start := taskDomain.DateOf(end).Time().AddDate(0, 0, -(days - 1))
	return start, end, true
}

// --- Helpers ---

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

// respondError traduce los errores de dominio a códigos HTTP.
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	var verr *taskDomain.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.SendErrorCode(c, http.StatusBadRequest, "invalid_"+verr.Field, verr.Error())
	case errors.Is(err, taskDomain.ErrInvalidTask):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, taskDomain.ErrTaskNotFound):
		utils.SendNotFound(c, "task not found")
	case errors.Is(err, taskDomain.ErrTaskBusy):
		utils.SendConflict(c, err.Error())
	case errors.Is(err, taskDomain.ErrPersistenceUnavailable):
		utils.SendServiceUnavailable(c, "task storage unavailable")
	default:
		h.log.Error("Unexpected error", zap.Error(err))
		utils.SendInternalServerError(c, err.Error())
	}
}
