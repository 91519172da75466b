package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/schedule"
	"github.com/foyerhq/foyer-api/internal/timezone"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

type scheduleHouseholdRepository interface {
	GetByID(ctx context.Context, id string) (*models.Household, error)
	UpdateWeekly(ctx context.Context, id string, weekly json.RawMessage) error
	UpdateExceptions(ctx context.Context, id string, exceptions json.RawMessage) error
}

// ScheduleServiceConfig tunes the read endpoints.
type ScheduleServiceConfig struct {
	PlannerDays int
	CacheTTL    time.Duration
}

// ScheduleService owns the work-schedule endpoints. Writes validate loudly
// and persist normalized data; reads go through the schedule package's total
// resolution and therefore can never fail on stored content.
type ScheduleService struct {
	households scheduleHouseholdRepository
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     ScheduleServiceConfig
}

// NewScheduleService constructs the service.
func NewScheduleService(households scheduleHouseholdRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config ScheduleServiceConfig) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PlannerDays <= 0 {
		config.PlannerDays = 14
	}
	return &ScheduleService{households: households, cache: cache, metrics: metrics, validator: validate, logger: logger, config: config}
}

// Get returns the normalized stored schedule for a household.
func (s *ScheduleService) Get(ctx context.Context, householdID string) (*dto.ScheduleResponse, error) {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleResponse{
		Timezone:   household.Timezone,
		Weekly:     schedule.ParseWeekly(household.WorkScheduleWeekly),
		Exceptions: schedule.ParseExceptions(household.WorkScheduleExceptions),
	}, nil
}

// UpdateWeekly replaces the weekly template wholesale. The payload is run
// through the total parser so only the normalized 7-slot form is persisted.
func (s *ScheduleService) UpdateWeekly(ctx context.Context, householdID string, raw json.RawMessage) ([]schedule.WeeklySlot, error) {
	parsed := schedule.ParseWeekly(raw)
	for _, slot := range parsed {
		if slot.Enabled {
			if !schedule.IsValidTime(slot.Start) || !schedule.IsValidTime(slot.End) {
				return nil, appErrors.Clone(appErrors.ErrInvalidTime, fmt.Sprintf("weekday %d has invalid hours", slot.Weekday))
			}
			if slot.Start >= slot.End {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday %d must start before it ends", slot.Weekday))
			}
		}
	}

	payload, err := json.Marshal(parsed)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode weekly schedule")
	}
	if err := s.households.UpdateWeekly(ctx, householdID, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weekly schedule")
	}

	s.invalidate(ctx, householdID)
	return parsed, nil
}

// ListExceptions returns the stored override list in append order.
func (s *ScheduleService) ListExceptions(ctx context.Context, householdID string) ([]schedule.ScheduleException, error) {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return schedule.ParseExceptions(household.WorkScheduleExceptions), nil
}

// AddException validates and appends one override. Appending keeps the
// stored order authoritative for the REPLACE tie-break.
func (s *ScheduleService) AddException(ctx context.Context, householdID string, req dto.ExceptionRequest) (*schedule.ScheduleException, error) {
	created, err := s.buildException(req)
	if err != nil {
		return nil, err
	}
	created.ID = uuid.NewString()

	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	current := schedule.ParseExceptions(household.WorkScheduleExceptions)
	next := append(current, *created)

	if err := s.saveExceptions(ctx, householdID, next); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateException rewrites one override in place, matched by id. A missing
// id is reported here: the silent no-op policy belongs to the stored-list
// rewrite below this layer, not to the user-facing edit flow.
func (s *ScheduleService) UpdateException(ctx context.Context, householdID, id string, req dto.ExceptionRequest) (*schedule.ScheduleException, error) {
	updated, err := s.buildException(req)
	if err != nil {
		return nil, err
	}
	updated.ID = id

	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	current := schedule.ParseExceptions(household.WorkScheduleExceptions)

	found := false
	for i := range current {
		if current[i].ID == id {
			current[i] = *updated
			found = true
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exception not found")
	}

	if err := s.saveExceptions(ctx, householdID, current); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteException removes one override by id.
func (s *ScheduleService) DeleteException(ctx context.Context, householdID, id string) error {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return err
	}
	current := schedule.ParseExceptions(household.WorkScheduleExceptions)

	next := make([]schedule.ScheduleException, 0, len(current))
	for _, ex := range current {
		if ex.ID != id {
			next = append(next, ex)
		}
	}
	if len(next) == len(current) {
		return appErrors.Clone(appErrors.ErrNotFound, "exception not found")
	}

	return s.saveExceptions(ctx, householdID, next)
}

// ResolveDay computes the working segments for one date, serving from cache
// when possible. Resolution itself is cheap; the cache mostly spares the
// household row fetch.
func (s *ScheduleService) ResolveDay(ctx context.Context, householdID, ymd string) (*dto.DayResponse, error) {
	if !schedule.IsValidDate(ymd) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date, expected YYYY-MM-DD")
	}

	cacheKey := fmt.Sprintf("schedule:%s:day:%s", householdID, ymd)
	var cached dto.DayResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		if s.metrics != nil {
			s.metrics.RecordResolution(true)
		}
		return &cached, nil
	}

	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	res := schedule.ResolveDay(ymd,
		schedule.ParseWeekly(household.WorkScheduleWeekly),
		schedule.ParseExceptions(household.WorkScheduleExceptions),
	)
	out := &dto.DayResponse{Date: ymd, Off: res.Off, Segments: res.Segments}

	_ = s.cache.Set(ctx, cacheKey, out, s.config.CacheTTL)
	if s.metrics != nil {
		s.metrics.RecordResolution(false)
	}
	return out, nil
}

// Today resolves the household's current local date.
func (s *ScheduleService) Today(ctx context.Context, householdID string, now time.Time) (*dto.DayResponse, error) {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	loc := timezone.LoadLocation(household.Timezone)
	return s.ResolveDay(ctx, householdID, timezone.YMDIn(now, loc))
}

// Planner projects the schedule over a range of days starting at startYmd,
// defaulting to today in the household's zone.
func (s *ScheduleService) Planner(ctx context.Context, householdID, startYmd string, days int, now time.Time) (*dto.PlannerResponse, error) {
	household, err := s.fetchHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	if startYmd == "" {
		loc := timezone.LoadLocation(household.Timezone)
		startYmd = timezone.YMDIn(now, loc)
	} else if !schedule.IsValidDate(startYmd) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid start date, expected YYYY-MM-DD")
	}
	if days <= 0 || days > 92 {
		days = s.config.PlannerDays
	}

	projected := schedule.ProjectRange(startYmd,
		days,
		schedule.ParseWeekly(household.WorkScheduleWeekly),
		schedule.ParseExceptions(household.WorkScheduleExceptions),
	)
	return &dto.PlannerResponse{Start: startYmd, Days: projected}, nil
}

func (s *ScheduleService) fetchHousehold(ctx context.Context, householdID string) (*models.Household, error) {
	household, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "household not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch household")
	}
	return household, nil
}

// buildException is the loud write-path validator. It mirrors the inference
// rules of the read path but rejects instead of dropping.
func (s *ScheduleService) buildException(req dto.ExceptionRequest) (*schedule.ScheduleException, error) {
	if !schedule.IsValidDate(req.DateYMD) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date, expected YYYY-MM-DD")
	}

	kind := strings.ToUpper(strings.TrimSpace(req.Kind))
	if kind == "" {
		if req.Start != "" && req.End != "" {
			kind = string(schedule.KindReplace)
		} else {
			kind = string(schedule.KindOff)
		}
	}
	if !schedule.ValidKind(kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be OFF, REPLACE or ADD")
	}

	ex := &schedule.ScheduleException{
		DateYMD: req.DateYMD,
		Kind:    schedule.ExceptionKind(kind),
		Note:    strings.TrimSpace(req.Note),
	}

	if ex.Kind == schedule.KindOff {
		ex.Off = true
		return ex, nil
	}

	if !schedule.IsValidTime(req.Start) || !schedule.IsValidTime(req.End) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTime, "invalid time, expected HH:MM")
	}
	if req.Start >= req.End {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start must be before end")
	}
	ex.Start = req.Start
	ex.End = req.End
	return ex, nil
}

func (s *ScheduleService) saveExceptions(ctx context.Context, householdID string, exceptions []schedule.ScheduleException) error {
	payload, err := json.Marshal(exceptions)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode exceptions")
	}
	if err := s.households.UpdateExceptions(ctx, householdID, payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save exceptions")
	}
	s.invalidate(ctx, householdID)
	return nil
}

func (s *ScheduleService) invalidate(ctx context.Context, householdID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", householdID)); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("household_id", householdID), zap.Error(err))
	}
}
