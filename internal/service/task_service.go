package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/schedule"
	"github.com/foyerhq/foyer-api/internal/timezone"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

type taskRepository interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

// TaskService manages household tasks. Due dates cross this layer as local
// (date, time) pairs and are stored as UTC instants.
type TaskService struct {
	tasks      taskRepository
	households scheduleHouseholdRepository
	logger     *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(tasks taskRepository, households scheduleHouseholdRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, households: households, logger: logger}
}

// List returns tasks matching the filters. Local from/to dates widen to full
// UTC day bounds in the household's zone, so a "to" of 2024-06-10 includes
// everything up to 23:59:59 local on that day.
func (s *TaskService) List(ctx context.Context, householdID string, req dto.TaskListRequest) ([]models.Task, int, error) {
	loc, err := s.householdLocation(ctx, householdID)
	if err != nil {
		return nil, 0, err
	}

	filter := models.TaskFilter{
		HouseholdID: householdID,
		Status:      strings.ToUpper(strings.TrimSpace(req.Status)),
		AssigneeID:  req.AssigneeID,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.FromYMD != "" {
		if !schedule.IsValidDate(req.FromYMD) {
			return nil, 0, appErrors.Clone(appErrors.ErrInvalidDate, "invalid from date, expected YYYY-MM-DD")
		}
		start, _ := timezone.DayBounds(loc, req.FromYMD)
		filter.DueFrom = &start
	}
	if req.ToYMD != "" {
		if !schedule.IsValidDate(req.ToYMD) {
			return nil, 0, appErrors.Clone(appErrors.ErrInvalidDate, "invalid to date, expected YYYY-MM-DD")
		}
		_, end := timezone.DayBounds(loc, req.ToYMD)
		filter.DueTo = &end
	}

	return s.tasks.List(ctx, filter)
}

// Get fetches one task, scoped to the caller's household.
func (s *TaskService) Get(ctx context.Context, householdID, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch task")
	}
	if task.HouseholdID != householdID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	return task, nil
}

// Create stores a new task.
func (s *TaskService) Create(ctx context.Context, householdID string, req dto.TaskRequest) (*models.Task, error) {
	task := &models.Task{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Status:      models.TaskTodo,
	}
	if err := s.applyRequest(ctx, task, req); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// Update rewrites an existing task from the request payload.
func (s *TaskService) Update(ctx context.Context, householdID, id string, req dto.TaskRequest) (*models.Task, error) {
	task, err := s.Get(ctx, householdID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyRequest(ctx, task, req); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// Delete removes a task after a household-scope check.
func (s *TaskService) Delete(ctx context.Context, householdID, id string) error {
	if _, err := s.Get(ctx, householdID, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

// Today lists tasks due within the household's current local day.
func (s *TaskService) Today(ctx context.Context, householdID string, now time.Time) (*dto.TodayResponse, error) {
	loc, err := s.householdLocation(ctx, householdID)
	if err != nil {
		return nil, err
	}
	start, end, ymd := timezone.TodayRange(loc, now)

	tasks, _, err := s.tasks.List(ctx, models.TaskFilter{
		HouseholdID: householdID,
		DueFrom:     &start,
		DueTo:       &end,
		PageSize:    200,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &dto.TodayResponse{Date: ymd, Tasks: tasks}, nil
}

func (s *TaskService) applyRequest(ctx context.Context, task *models.Task, req dto.TaskRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	task.Title = title
	task.Description = req.Description
	task.AssigneeID = req.AssigneeID

	if req.Status != "" {
		status := models.TaskStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if status != models.TaskTodo && status != models.TaskDone {
			return appErrors.Clone(appErrors.ErrValidation, "status must be TODO or DONE")
		}
		task.Status = status
	}

	if req.DueYMD == "" {
		task.DueAt = nil
		return nil
	}
	if !schedule.IsValidDate(req.DueYMD) {
		return appErrors.Clone(appErrors.ErrInvalidDate, "invalid due date, expected YYYY-MM-DD")
	}
	dueTime := req.DueTime
	if dueTime == "" {
		dueTime = "09:00"
	}
	if !schedule.IsValidTime(dueTime) {
		return appErrors.Clone(appErrors.ErrInvalidTime, "invalid due time, expected HH:MM")
	}

	loc, err := s.householdLocation(ctx, task.HouseholdID)
	if err != nil {
		return err
	}
	hour := int(dueTime[0]-'0')*10 + int(dueTime[1]-'0')
	minute := int(dueTime[3]-'0')*10 + int(dueTime[4]-'0')
	due := timezone.LocalToUTC(loc, req.DueYMD, hour, minute, 0)
	task.DueAt = &due
	return nil
}

func (s *TaskService) householdLocation(ctx context.Context, householdID string) (*time.Location, error) {
	household, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "household not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch household")
	}
	return timezone.LoadLocation(household.Timezone), nil
}
