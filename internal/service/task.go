package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/reminder"
	"github.com/jaekwang-park/task-api/internal/repository"
	"github.com/jaekwang-park/task-api/internal/weather"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100

	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// Field-keyed validation messages.
const (
	msgTitleRequired    = "El campo título es obligatorio."
	msgTitleNotString   = "El campo título debe ser una cadena de texto."
	msgTitleTooLong     = "El campo título no debe contener más de 200 caracteres."
	msgDescTooLong      = "El campo descripción no debe contener más de 1000 caracteres."
	msgDescNotString    = "El campo descripción debe ser una cadena de texto."
	msgStatusInvalid    = "El estado seleccionado no es válido."
	msgDueDateInvalid   = "El campo fecha de vencimiento no es una fecha válida."
	msgDueDateInThePast = "El campo fecha de vencimiento debe ser una fecha posterior o igual a hoy."
)

// WeatherFetcher returns current weather; an empty city means the
// provider's configured default.
type WeatherFetcher interface {
	Fetch(ctx context.Context, city string) (weather.Snapshot, error)
}

type ReminderSender interface {
	Send(ctx context.Context, task model.Task, user model.User) (reminder.Receipt, error)
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *string
	DueDate     *string // YYYY-MM-DD

	// Malformed names fields whose submitted value was not a string.
	Malformed []string
}

// Optional tells an omitted field (Set == false) apart from an explicit
// null (Set with a nil Value).
type Optional struct {
	Set   bool
	Value *string
}

func Some(v string) Optional { return Optional{Set: true, Value: &v} }

func Null() Optional { return Optional{Set: true} }

type UpdateTaskInput struct {
	Title       Optional
	Description Optional
	Status      Optional
	DueDate     Optional

	// Malformed names fields whose submitted value was not a string.
	Malformed []string
}

// typeMessages is the error reported for a field submitted with a non-string value.
var typeMessages = map[string]string{
	"title":       msgTitleNotString,
	"description": msgDescNotString,
	"status":      msgStatusInvalid,
	"due_date":    msgDueDateInvalid,
}

// checkTypes reports malformed fields and returns them as a set so the
// remaining checks can skip them.
func checkTypes(verr *ValidationError, fields []string) map[string]bool {
	bad := make(map[string]bool, len(fields))
	for _, f := range fields {
		msg, ok := typeMessages[f]
		if !ok || bad[f] {
			continue
		}
		bad[f] = true
		verr.Add(f, msg)
	}
	return bad
}

// TaskWeather pairs a task with the weather fetched for it.
type TaskWeather struct {
	Task    model.Task
	Weather weather.Snapshot
}

type TaskServiceOption func(*TaskService)

// WithLocation sets the zone in which "today" is evaluated for due dates.
func WithLocation(loc *time.Location) TaskServiceOption {
	return func(s *TaskService) { s.loc = loc }
}

func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) { s.now = now }
}

type TaskService struct {
	repo      repository.TaskRepository
	users     repository.UserRepository
	weather   WeatherFetcher
	reminders ReminderSender
	loc       *time.Location
	now       func() time.Time
}

func NewTaskService(
	repo repository.TaskRepository,
	users repository.UserRepository,
	weather WeatherFetcher,
	reminders ReminderSender,
	opts ...TaskServiceOption,
) *TaskService {
	s := &TaskService{
		repo:      repo,
		users:     users,
		weather:   weather,
		reminders: reminders,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) List(ctx context.Context, userID string, page, perPage int) (model.TaskListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	result, err := s.repo.List(ctx, model.TaskListParams{
		UserID:  userID,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return model.TaskListResult{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (model.Task, error) {
	var verr ValidationError
	bad := checkTypes(&verr, input.Malformed)

	task := model.Task{
		UserID: userID,
		Status: model.TaskStatusPending,
	}

	if !bad["title"] {
		title := strings.TrimSpace(input.Title)
		s.checkTitle(&verr, &title)
		task.Title = title
	}

	if !bad["description"] {
		task.Description = s.checkDescription(&verr, input.Description)
	}

	if !bad["status"] && input.Status != nil && *input.Status != "" {
		status := model.TaskStatus(*input.Status)
		if !status.IsValid() {
			verr.Add("status", msgStatusInvalid)
		}
		task.Status = status
	}

	if !bad["due_date"] && input.DueDate != nil && strings.TrimSpace(*input.DueDate) != "" {
		task.DueDate = s.checkDueDate(&verr, *input.DueDate)
	}

	if err := verr.orNil(); err != nil {
		return model.Task{}, err
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (model.Task, error) {
	id, ok := normalizeID(taskID)
	if !ok {
		return model.Task{}, ErrNotFound
	}

	task, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update applies only the fields present in input. Ownership is checked
// before validation so a foreign id never leaks validation details.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input UpdateTaskInput) (model.Task, error) {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return model.Task{}, err
	}

	var verr ValidationError
	bad := checkTypes(&verr, input.Malformed)

	if input.Title.Set && !bad["title"] {
		var title string
		if input.Title.Value != nil {
			title = strings.TrimSpace(*input.Title.Value)
		}
		s.checkTitle(&verr, &title)
		existing.Title = title
	}

	if input.Description.Set && !bad["description"] {
		existing.Description = s.checkDescription(&verr, input.Description.Value)
	}

	if input.Status.Set && !bad["status"] {
		var status model.TaskStatus
		if input.Status.Value != nil {
			status = model.TaskStatus(*input.Status.Value)
		}
		if !status.IsValid() {
			verr.Add("status", msgStatusInvalid)
		}
		existing.Status = status
	}

	if input.DueDate.Set && !bad["due_date"] {
		existing.DueDate = nil
		if v := input.DueDate.Value; v != nil && strings.TrimSpace(*v) != "" {
			existing.DueDate = s.checkDueDate(&verr, *v)
		}
	}

	if err := verr.orNil(); err != nil {
		return model.Task{}, err
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	id, ok := normalizeID(taskID)
	if !ok {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Weather returns the current weather of the default city for a task that
// has a due date. The due date itself is not sent to the provider.
func (s *TaskService) Weather(ctx context.Context, userID, taskID string) (TaskWeather, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return TaskWeather{}, err
	}
	if task.DueDate == nil {
		return TaskWeather{}, ErrNoDueDate
	}

	snapshot, err := s.weather.Fetch(ctx, "")
	if err != nil {
		return TaskWeather{}, fmt.Errorf("failed to fetch weather: %w", err)
	}

	return TaskWeather{Task: task, Weather: snapshot}, nil
}

func (s *TaskService) SendReminder(ctx context.Context, userID, taskID string) (reminder.Receipt, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return reminder.Receipt{}, err
	}
	if task.DueDate == nil {
		return reminder.Receipt{}, ErrNoDueDate
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return reminder.Receipt{}, fmt.Errorf("failed to load user: %w", err)
	}

	receipt, err := s.reminders.Send(ctx, task, user)
	if err != nil {
		return reminder.Receipt{}, fmt.Errorf("failed to send reminder: %w", err)
	}
	return receipt, nil
}

func (s *TaskService) checkTitle(verr *ValidationError, title *string) {
	switch n := utf8.RuneCountInString(*title); {
	case n == 0:
		verr.Add("title", msgTitleRequired)
	case n > maxTitleLength:
		verr.Add("title", msgTitleTooLong)
	}
}

// checkDescription treats blank descriptions as absent.
func (s *TaskService) checkDescription(verr *ValidationError, desc *string) *string {
	if desc == nil {
		return nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil
	}
	if utf8.RuneCountInString(d) > maxDescriptionLength {
		verr.Add("description", msgDescTooLong)
	}
	return &d
}

func (s *TaskService) checkDueDate(verr *ValidationError, raw string) *time.Time {
	d, err := parseDate(strings.TrimSpace(raw))
	if err != nil {
		verr.Add("due_date", msgDueDateInvalid)
		return nil
	}
	if d.Before(s.today()) {
		verr.Add("due_date", msgDueDateInThePast)
	}
	return &d
}

// today is the current calendar date in the service's zone, expressed at
// midnight UTC like stored due dates.
func (s *TaskService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate accepts a bare date or an RFC 3339 timestamp, keeping the
// calendar day as written.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// normalizeID canonicalises a task id; anything that is not a UUID cannot
// name a stored task.
func normalizeID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
