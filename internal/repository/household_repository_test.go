package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerhq/foyer-api/internal/models"
)

func newHouseholdRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestHouseholdRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "timezone", "work_schedule_weekly", "work_schedule_exceptions", "created_at", "updated_at"}).
		AddRow("hh-1", "Dupont", "Europe/Paris", []byte(`[]`), []byte(`[]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, timezone, work_schedule_weekly, work_schedule_exceptions, created_at, updated_at")).
		WithArgs("hh-1").
		WillReturnRows(rows)

	household, err := repo.GetByID(context.Background(), "hh-1")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", household.Name)
	assert.Equal(t, "Europe/Paris", household.Timezone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	mock.ExpectExec("INSERT INTO households").
		WithArgs(sqlmock.AnyArg(), "Martin", "Europe/Paris", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	household := &models.Household{
		Name:                   "Martin",
		Timezone:               "Europe/Paris",
		WorkScheduleWeekly:     models.SignupWeeklySchedule(),
		WorkScheduleExceptions: json.RawMessage(`[]`),
	}
	require.NoError(t, repo.Create(context.Background(), household))
	assert.NotEmpty(t, household.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryUpdateWeekly(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	payload := json.RawMessage(`[{"weekday":0,"enabled":true,"start":"09:00","end":"18:00"}]`)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE households SET work_schedule_weekly = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("hh-1", payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateWeekly(context.Background(), "hh-1", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryUpdateExceptions(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	payload := json.RawMessage(`[{"id":"e-1","dateYmd":"2024-06-10","kind":"OFF","off":true}]`)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE households SET work_schedule_exceptions = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("hh-1", payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateExceptions(context.Background(), "hh-1", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHouseholdRepositoryUpdateSettings(t *testing.T) {
	db, mock, cleanup := newHouseholdRepoMock(t)
	defer cleanup()
	repo := NewHouseholdRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE households SET name = $2, timezone = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("hh-1", "Nouveau nom", "America/Montreal", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateSettings(context.Background(), "hh-1", "Nouveau nom", "America/Montreal"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
