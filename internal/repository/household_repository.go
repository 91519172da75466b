package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foyerhq/foyer-api/internal/models"
)

// HouseholdRepository persists households, including the schedule JSONB blobs.
type HouseholdRepository struct {
	db *sqlx.DB
}

// NewHouseholdRepository constructs a household repository.
func NewHouseholdRepository(db *sqlx.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// GetByID fetches a household.
func (r *HouseholdRepository) GetByID(ctx context.Context, id string) (*models.Household, error) {
	const query = `SELECT id, name, timezone, work_schedule_weekly, work_schedule_exceptions, created_at, updated_at
FROM households WHERE id = $1`
	var household models.Household
	if err := r.db.GetContext(ctx, &household, query, id); err != nil {
		return nil, err
	}
	return &household, nil
}

// Create inserts a household.
func (r *HouseholdRepository) Create(ctx context.Context, household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	household.CreatedAt = now
	household.UpdatedAt = now

	const query = `INSERT INTO households (id, name, timezone, work_schedule_weekly, work_schedule_exceptions, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		household.ID,
		household.Name,
		household.Timezone,
		household.WorkScheduleWeekly,
		household.WorkScheduleExceptions,
		household.CreatedAt,
		household.UpdatedAt,
	)
	return err
}

// UpdateSettings changes the household's name and timezone.
func (r *HouseholdRepository) UpdateSettings(ctx context.Context, id, name, tz string) error {
	const query = `UPDATE households SET name = $2, timezone = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, name, tz, time.Now().UTC())
	return err
}

// UpdateWeekly rewrites the weekly template blob wholesale.
func (r *HouseholdRepository) UpdateWeekly(ctx context.Context, id string, weekly json.RawMessage) error {
	const query = `UPDATE households SET work_schedule_weekly = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, weekly, time.Now().UTC())
	return err
}

// UpdateExceptions rewrites the exception list blob wholesale. The list is
// stored and replaced as one unit; append order in the blob is the REPLACE
// tie-break, so callers must preserve it.
func (r *HouseholdRepository) UpdateExceptions(ctx context.Context, id string, exceptions json.RawMessage) error {
	const query = `UPDATE households SET work_schedule_exceptions = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, exceptions, time.Now().UTC())
	return err
}
