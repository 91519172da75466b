package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foyerhq/foyer-api/internal/models"
)

// TaskRepository persists household tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a task repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, household_id, title, description, status, due_at, assignee_id, created_at, updated_at`

// List returns tasks matching the filter, ordered by due instant with
// undated tasks last.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	where := []string{"household_id = $1"}
	args := []interface{}{filter.HouseholdID}

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.AssigneeID != "" {
		where = append(where, fmt.Sprintf("assignee_id = $%d", len(args)+1))
		args = append(args, filter.AssigneeID)
	}
	if filter.DueFrom != nil {
		where = append(where, fmt.Sprintf("due_at >= $%d", len(args)+1))
		args = append(args, *filter.DueFrom)
	}
	if filter.DueTo != nil {
		where = append(where, fmt.Sprintf("due_at <= $%d", len(args)+1))
		args = append(args, *filter.DueTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY due_at ASC NULLS LAST, created_at ASC LIMIT %d OFFSET %d`,
		taskColumns, whereClause, size, offset)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return tasks, total, nil
}

// GetByID fetches one task.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (id, household_id, title, description, status, due_at, assignee_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.HouseholdID,
		task.Title,
		task.Description,
		task.Status,
		task.DueAt,
		task.AssigneeID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

// CreateBatch inserts tasks inside one transaction; used by the CSV import.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO tasks (id, household_id, title, description, status, due_at, assignee_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now().UTC()
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query,
			tasks[i].ID,
			tasks[i].HouseholdID,
			tasks[i].Title,
			tasks[i].Description,
			tasks[i].Status,
			tasks[i].DueAt,
			tasks[i].AssigneeID,
			tasks[i].CreatedAt,
			tasks[i].UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert imported task: %w", err)
		}
	}
	return tx.Commit()
}

// Update rewrites a task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET title = $2, description = $3, status = $4, due_at = $5, assignee_id = $6, updated_at = $7
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.DueAt,
		task.AssigneeID,
		task.UpdatedAt,
	)
	return err
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
