package models

import (
	"encoding/json"
	"time"
)

// Household is the tenant boundary: one weekly work template, one exception
// list, one timezone. The schedule blobs are stored as JSONB and kept opaque
// here; the schedule package owns their interpretation.
type Household struct {
	ID                     string          `db:"id" json:"id"`
	Name                   string          `db:"name" json:"name"`
	Timezone               string          `db:"timezone" json:"timezone"`
	WorkScheduleWeekly     json.RawMessage `db:"work_schedule_weekly" json:"work_schedule_weekly"`
	WorkScheduleExceptions json.RawMessage `db:"work_schedule_exceptions" json:"work_schedule_exceptions"`
	CreatedAt              time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updated_at"`
}

// SignupWeeklySchedule is the template seeded at account creation: Mon-Fri
// 09:00-18:00. Distinct from the schedule package's library fallback
// (14:30-19:30) on purpose; signup seeds office hours while the fallback only
// covers unreadable stored data.
func SignupWeeklySchedule() json.RawMessage {
	type slot struct {
		Weekday int    `json:"weekday"`
		Enabled bool   `json:"enabled"`
		Start   string `json:"start"`
		End     string `json:"end"`
	}
	slots := make([]slot, 7)
	for weekday := 0; weekday < 7; weekday++ {
		slots[weekday] = slot{
			Weekday: weekday,
			Enabled: weekday <= 4,
			Start:   "09:00",
			End:     "18:00",
		}
	}
	raw, _ := json.Marshal(slots)
	return raw
}
