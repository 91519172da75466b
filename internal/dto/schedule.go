package dto

import (
	"encoding/json"

	"github.com/foyerhq/foyer-api/internal/schedule"
)

// UpdateWeeklyRequest carries the raw weekly template payload. The body is
// deliberately kept opaque here: the schedule package's total parser is the
// single interpreter of this shape.
type UpdateWeeklyRequest struct {
	Weekly json.RawMessage `json:"weekly"`
}

// ExceptionRequest is the write payload for creating or updating one
// schedule exception.
type ExceptionRequest struct {
	DateYMD string `json:"dateYmd" validate:"required"`
	Kind    string `json:"kind"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Note    string `json:"note"`
}

// ScheduleResponse returns the normalized stored schedule.
type ScheduleResponse struct {
	Timezone   string                       `json:"timezone"`
	Weekly     []schedule.WeeklySlot        `json:"weekly"`
	Exceptions []schedule.ScheduleException `json:"exceptions"`
}

// DayResponse is the resolved view of a single date.
type DayResponse struct {
	Date     string                    `json:"date"`
	Off      bool                      `json:"off"`
	Segments []schedule.DayWorkSegment `json:"segments"`
}

// PlannerResponse is the multi-day projection used by week/month views.
type PlannerResponse struct {
	Start string                   `json:"start"`
	Days  []schedule.DayProjection `json:"days"`
}
