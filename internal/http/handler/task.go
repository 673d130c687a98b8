package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jaekwang-park/task-api/internal/adapter"
	"github.com/jaekwang-park/task-api/internal/middleware"
	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/service"
	"github.com/jaekwang-park/task-api/internal/weather"
)

const (
	msgTaskNotFound = "Tarea no encontrada"
	msgTaskDeleted  = "Tarea eliminada exitosamente"
	msgReminderSent = "Recordatorio enviado exitosamente"
)

// timestampLayout renders UTC instants with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ServeHTTP routes /tasks, /tasks/{id}, /tasks/{id}/weather and
// /tasks/{id}/send-reminder.
func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks")
	path = strings.Trim(path, "/")

	parts := strings.SplitN(path, "/", 2)
	taskID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	switch {
	case taskID == "":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		}

	case subPath == "":
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, taskID)
		case http.MethodPut, http.MethodPatch:
			h.handleUpdate(w, r, taskID)
		case http.MethodDelete:
			h.handleDelete(w, r, taskID)
		default:
			WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		}

	case subPath == "weather":
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}
		h.handleWeather(w, r, taskID)

	case subPath == "send-reminder":
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}
		h.handleSendReminder(w, r, taskID)

	default:
		WriteError(w, http.StatusNotFound, msgRouteNotFound)
	}
}

// --- DTOs ---

// taskFields is the body of both create and update requests.
type taskFields struct {
	Title       optionalString `json:"title"`
	Description optionalString `json:"description"`
	Status      optionalString `json:"status"`
	DueDate     optionalString `json:"due_date"`
}

// malformed lists the fields sent with a non-string value.
func (f taskFields) malformed() []string {
	var names []string
	for _, field := range []struct {
		name string
		v    optionalString
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"status", f.Status},
		{"due_date", f.DueDate},
	} {
		if field.v.malformed {
			names = append(names, field.name)
		}
	}
	return names
}

type taskResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Status      model.TaskStatus `json:"status"`
	DueDate     *string          `json:"due_date"`
	UserID      string           `json:"user_id"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type listMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type taskSummary struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
}

type weatherResponse struct {
	Task    taskSummary      `json:"task"`
	Weather weather.Snapshot `json:"weather"`
}

type reminderResponse struct {
	TaskID string `json:"task_id"`
	SentTo string `json:"sent_to"`
	SentAt string `json:"sent_at"`
}

func toTaskResponse(t model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     formatDate(t.DueDate),
		UserID:      t.UserID,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(model.DateLayout)
	return &s
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// --- Handlers ---

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.List(r.Context(), getUserID(r), queryInt(r, "page"), queryInt(r, "per_page"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	data := make([]taskResponse, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		data = append(data, toTaskResponse(t))
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta: listMeta{
			CurrentPage: result.Page,
			LastPage:    result.LastPage(),
			PerPage:     result.PerPage,
			Total:       result.Total,
		},
	})
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req taskFields
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Create(r.Context(), getUserID(r), service.CreateTaskInput{
		Title:       req.Title.String(),
		Description: req.Description.value,
		Status:      req.Status.value,
		DueDate:     req.DueDate.value,
		Malformed:   req.malformed(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) handleGet(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.svc.Get(r.Context(), getUserID(r), taskID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request, taskID string) {
	var req taskFields
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Update(r.Context(), getUserID(r), taskID, service.UpdateTaskInput{
		Title:       req.Title.toService(),
		Description: req.Description.toService(),
		Status:      req.Status.toService(),
		DueDate:     req.DueDate.toService(),
		Malformed:   req.malformed(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := h.svc.Delete(r.Context(), getUserID(r), taskID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteMessage(w, http.StatusOK, msgTaskDeleted)
}

func (h *TaskHandler) handleWeather(w http.ResponseWriter, r *http.Request, taskID string) {
	result, err := h.svc.Weather(r.Context(), getUserID(r), taskID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, weatherResponse{
		Task: taskSummary{
			ID:      result.Task.ID,
			Title:   result.Task.Title,
			DueDate: formatDate(result.Task.DueDate),
		},
		Weather: result.Weather,
	})
}

func (h *TaskHandler) handleSendReminder(w http.ResponseWriter, r *http.Request, taskID string) {
	receipt, err := h.svc.SendReminder(r.Context(), getUserID(r), taskID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: msgReminderSent,
		Data: reminderResponse{
			TaskID: receipt.TaskID,
			SentTo: receipt.SentTo,
			SentAt: formatTimestamp(receipt.SentAt),
		},
	})
}

func getUserID(r *http.Request) string {
	return middleware.GetUserID(r)
}

// writeServiceError maps service and adapter errors to responses. Only
// fixed or adapter-public messages reach the client.
func (h *TaskHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var badReq *service.BadRequestError

	switch {
	case errors.As(err, &verr):
		WriteValidationErrors(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, msgTaskNotFound)
	case errors.As(err, &badReq):
		WriteError(w, http.StatusBadRequest, badReq.Message)
	default:
		if msg, ok := adapter.PublicMessage(err); ok {
			WriteError(w, http.StatusInternalServerError, msg)
			return
		}
		slog.ErrorContext(r.Context(), "task request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
