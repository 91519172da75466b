package models

import "time"

// TaskStatus tracks completion.
type TaskStatus string

const (
	TaskTodo TaskStatus = "TODO"
	TaskDone TaskStatus = "DONE"
)

// Task is one household to-do. DueAt is stored as a UTC instant; the local
// (date, time) pair entered by the user is converted through the household's
// timezone at write time.
type Task struct {
	ID          string     `db:"id" json:"id"`
	HouseholdID string     `db:"household_id" json:"household_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      TaskStatus `db:"status" json:"status"`
	DueAt       *time.Time `db:"due_at" json:"due_at,omitempty"`
	AssigneeID  *string    `db:"assignee_id" json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskFilter describes query params for listing tasks. DueFrom/DueTo are UTC
// instant bounds computed from local calendar dates.
type TaskFilter struct {
	HouseholdID string
	Status      string
	AssigneeID  string
	DueFrom     *time.Time
	DueTo       *time.Time
	Page        int
	PageSize    int
}
