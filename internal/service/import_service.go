package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/schedule"
	"github.com/foyerhq/foyer-api/internal/timezone"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

// taskHeaders maps canonical columns to the header spellings accepted in
// uploaded files. Matching is case-insensitive on the trimmed header cell.
var taskHeaders = map[string][]string{
	"title":       {"title", "titre", "tache", "task", "libelle", "name"},
	"description": {"description", "desc", "details", "detail"},
	"date":        {"date", "jour", "due_date", "due date", "due", "ymd", "due_ymd"},
	"time":        {"time", "heure", "hour", "due_time", "due time", "time_hhmm"},
	"status":      {"status", "etat", "state"},
	"bucket":      {"moment", "bucket", "periode", "creneau"},
}

type taskBatchCreator interface {
	CreateBatch(ctx context.Context, tasks []models.Task) error
}

// ImportServiceConfig bounds a single import.
type ImportServiceConfig struct {
	MaxRows int
}

// ImportService loads tasks from CSV files. Rows are validated one by one so
// a bad line skips that row, not the whole file.
type ImportService struct {
	tasks      taskBatchCreator
	households scheduleHouseholdRepository
	logger     *zap.Logger
	config     ImportServiceConfig
}

// NewImportService constructs the service.
func NewImportService(tasks taskBatchCreator, households scheduleHouseholdRepository, logger *zap.Logger, config ImportServiceConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxRows <= 0 {
		config.MaxRows = 1000
	}
	return &ImportService{tasks: tasks, households: households, logger: logger, config: config}
}

// ImportTasks parses the CSV stream and creates the valid rows in one batch.
// Due instants are computed in the household's timezone; a bucket column
// (matin/aprem/soir) supplies the time when no explicit time is given.
func (s *ImportService) ImportTasks(ctx context.Context, householdID string, r io.Reader) (*dto.ImportResult, error) {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	loc := timezone.LoadLocation(household.Timezone)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty csv")
	}
	index := buildHeaderIndex(header)
	titleCol, ok := index["title"]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing title column")
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	batch := make([]models.Task, 0, 64)

	for line := 2; len(batch) < s.config.MaxRows; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Error: "unreadable_row"})
			result.Skipped++
			continue
		}

		title := strings.TrimSpace(cell(row, titleCol))
		if title == "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Error: "missing_title"})
			result.Skipped++
			continue
		}

		task := models.Task{
			ID:          uuid.NewString(),
			HouseholdID: householdID,
			Title:       title,
			Status:      normalizeStatus(cell(row, index["status"])),
		}
		if desc := strings.TrimSpace(cell(row, index["description"])); desc != "" {
			task.Description = &desc
		}

		if dateValue := strings.TrimSpace(cell(row, index["date"])); dateValue != "" {
			if !schedule.IsValidDate(dateValue) {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: line, Error: "invalid_date"})
				result.Skipped++
				continue
			}
			t := "09:00"
			timeValue := strings.TrimSpace(cell(row, index["time"]))
			bucketDefault := defaultTimeFromBucket(cell(row, index["bucket"]))
			if timeValue != "" && schedule.IsValidTime(timeValue) {
				t = timeValue
			} else if bucketDefault != "" {
				t = bucketDefault
			}
			hour := int(t[0]-'0')*10 + int(t[1]-'0')
			minute := int(t[3]-'0')*10 + int(t[4]-'0')
			due := timezone.LocalToUTC(loc, dateValue, hour, minute, 0)
			task.DueAt = &due
		}

		batch = append(batch, task)
	}

	if len(batch) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no valid rows")
	}
	if err := s.tasks.CreateBatch(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import tasks")
	}

	result.Created = len(batch)
	s.logger.Info("csv import completed",
		zap.String("household_id", householdID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ImportService) fetchHousehold(ctx context.Context, householdID string) (*models.Household, error) {
	household, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "household not found")
	}
	return household, nil
}

// buildHeaderIndex resolves each canonical column to the first header cell
// matching one of its aliases. Unmatched columns map to -1.
func buildHeaderIndex(header []string) map[string]int {
	index := make(map[string]int, len(taskHeaders))
	for key := range taskHeaders {
		index[key] = -1
	}
	for i, cellValue := range header {
		norm := strings.ToLower(strings.TrimSpace(cellValue))
		for key, aliases := range taskHeaders {
			if index[key] >= 0 {
				continue
			}
			for _, alias := range aliases {
				if norm == alias {
					index[key] = i
					break
				}
			}
		}
	}
	if index["title"] < 0 {
		delete(index, "title")
	}
	return index
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func normalizeStatus(value string) models.TaskStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "done", "fait", "termine", "ok", "completed":
		return models.TaskDone
	default:
		return models.TaskTodo
	}
}

func defaultTimeFromBucket(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "matin", "am", "morning":
		return "09:00"
	case "aprem", "apresmidi", "apres-midi", "pm", "afternoon":
		return "14:00"
	case "soir", "evening", "night":
		return "19:00"
	default:
		return ""
	}
}
