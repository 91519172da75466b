package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerhq/foyer-api/internal/models"
)

func newTaskRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "household_id", "title", "description", "status", "due_at", "assignee_id", "created_at", "updated_at"})
}

func TestTaskRepositoryListDefaults(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE household_id = $1 ORDER BY due_at ASC NULLS LAST, created_at ASC LIMIT 50 OFFSET 0")).
		WithArgs("hh-1").
		WillReturnRows(taskRows().AddRow("t-1", "hh-1", "Courses", nil, "TODO", nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE household_id = $1")).
		WithArgs("hh-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tasks, total, err := repo.List(context.Background(), models.TaskFilter{HouseholdID: "hh-1"})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	from := time.Date(2024, 6, 9, 22, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 10, 21, 59, 59, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE household_id = $1 AND status = $2 AND due_at >= $3 AND due_at <= $4 ORDER BY due_at ASC NULLS LAST, created_at ASC LIMIT 10 OFFSET 10")).
		WithArgs("hh-1", "TODO", from, to).
		WillReturnRows(taskRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks")).
		WithArgs("hh-1", "TODO", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.TaskFilter{
		HouseholdID: "hh-1",
		Status:      "TODO",
		DueFrom:     &from,
		DueTo:       &to,
		Page:        2,
		PageSize:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	due := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(sqlmock.AnyArg(), "hh-1", "Courses", nil, "TODO", due, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.Task{HouseholdID: "hh-1", Title: "Courses", Status: models.TaskTodo, DueAt: &due}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryCreateBatchRunsInTx(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	batch := []models.Task{
		{HouseholdID: "hh-1", Title: "A", Status: models.TaskTodo},
		{HouseholdID: "hh-1", Title: "B", Status: models.TaskDone},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryCreateBatchEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("UPDATE tasks SET").
		WithArgs("t-1", "Courses", nil, "DONE", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Update(context.Background(), &models.Task{ID: "t-1", Title: "Courses", Status: models.TaskDone}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Delete(context.Background(), "t-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
