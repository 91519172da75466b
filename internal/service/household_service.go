package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/models"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

type householdSettingsRepository interface {
	GetByID(ctx context.Context, id string) (*models.Household, error)
	UpdateSettings(ctx context.Context, id, name, tz string) error
}

type householdUserLister interface {
	ListByHousehold(ctx context.Context, householdID string) ([]models.User, error)
}

// HouseholdService covers household settings and membership reads.
type HouseholdService struct {
	households householdSettingsRepository
	users      householdUserLister
	cache      *CacheService
	logger     *zap.Logger
}

// NewHouseholdService constructs the service.
func NewHouseholdService(households householdSettingsRepository, users householdUserLister, cache *CacheService, logger *zap.Logger) *HouseholdService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HouseholdService{households: households, users: users, cache: cache, logger: logger}
}

// Get fetches the household row.
func (s *HouseholdService) Get(ctx context.Context, id string) (*models.Household, error) {
	household, err := s.households.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "household not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch household")
	}
	return household, nil
}

// UpdateSettings changes name and timezone. A timezone change shifts every
// derived local calendar, so the schedule cache is dropped with it.
func (s *HouseholdService) UpdateSettings(ctx context.Context, id, name, tz string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timezone is required")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimezone, fmt.Sprintf("unknown timezone %q", tz))
	}

	if err := s.households.UpdateSettings(ctx, id, name, tz); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update household")
	}

	if err := s.cache.Invalidate(ctx, fmt.Sprintf("schedule:%s:*", id)); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("household_id", id), zap.Error(err))
	}
	return s.Get(ctx, id)
}

// Members lists the household's users.
func (s *HouseholdService) Members(ctx context.Context, id string) ([]models.User, error) {
	members, err := s.users.ListByHousehold(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	if members == nil {
		members = []models.User{}
	}
	return members, nil
}
