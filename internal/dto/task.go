package dto

import "github.com/foyerhq/foyer-api/internal/models"

// TaskRequest is the write payload for creating or updating a task. Due date
// and time are expressed in the household's local wall clock and converted to
// a UTC instant by the service.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	DueYMD      string  `json:"dueYmd"`
	DueTime     string  `json:"dueTime"`
	AssigneeID  *string `json:"assignee_id"`
}

// TaskListRequest carries list filters. FromYMD/ToYMD are local calendar
// dates; the service widens them to UTC day bounds.
type TaskListRequest struct {
	Status     string `form:"status"`
	AssigneeID string `form:"assignee_id"`
	FromYMD    string `form:"from"`
	ToYMD      string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// ImportRowError reports one rejected CSV row.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a CSV task import.
type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// TodayResponse groups the tasks due within the household's current local day.
type TodayResponse struct {
	Date  string        `json:"date"`
	Tasks []models.Task `json:"tasks"`
}
