// Package schedule resolves a household's working time segments for any
// calendar date from two stored inputs: the recurring weekly template and the
// list of date-scoped exceptions. Both inputs come out of JSONB columns in
// whatever shape past versions of the app wrote them, so every entry point
// here is total: malformed data is defaulted or dropped, never surfaced as an
// error. Handlers that need loud validation do it before persisting.
package schedule

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// WeeklySlot is the baseline working window for one weekday.
// Weekday runs 0=Monday through 6=Sunday.
type WeeklySlot struct {
	Weekday int    `json:"weekday"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Fallback hours applied when a stored slot is missing its times.
const (
	fallbackStart = "14:30"
	fallbackEnd   = "19:30"
)

// DefaultWeekly is the library fallback template: Mon-Fri 14:30-19:30,
// weekend off. It is used whenever the stored value is unusable. The signup
// flow seeds a different template (see models.SignupWeeklySchedule); the two
// defaults are distinct on purpose and must not be unified.
func DefaultWeekly() []WeeklySlot {
	out := make([]WeeklySlot, 7)
	for weekday := 0; weekday < 7; weekday++ {
		out[weekday] = WeeklySlot{
			Weekday: weekday,
			Enabled: weekday <= 4,
			Start:   fallbackStart,
			End:     fallbackEnd,
		}
	}
	return out
}

// IsValidTime reports whether a string is a zero-padded 24-hour "HH:MM".
func IsValidTime(hhmm string) bool {
	if !timeRe.MatchString(hhmm) {
		return false
	}
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// IsValidDate reports whether a string has the "YYYY-MM-DD" shape. Calendar
// validity beyond the shape is deliberately not checked here.
func IsValidDate(ymd string) bool {
	return dateRe.MatchString(ymd)
}

func timeMinutes(hhmm string) int {
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	return h*60 + m
}

// ParseWeekly turns a stored weekly template of any shape into exactly seven
// slots ordered by weekday. A value that is not a JSON array yields the
// library default wholesale. Within the array, the last well-formed entry for
// a weekday wins and weekdays with no entry fall back to the default slot.
func ParseWeekly(raw json.RawMessage) []WeeklySlot {
	defaults := DefaultWeekly()

	var values []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil {
		return defaults
	}

	byDay := make(map[int]WeeklySlot, 7)
	for _, value := range values {
		entry, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		weekday, ok := asWeekday(entry["weekday"])
		if !ok {
			continue
		}
		slot := WeeklySlot{
			Weekday: weekday,
			Enabled: asBool(entry["enabled"]),
			Start:   asTimeString(entry["start"], fallbackStart),
			End:     asTimeString(entry["end"], fallbackEnd),
		}
		byDay[weekday] = slot
	}

	out := make([]WeeklySlot, 7)
	for weekday := 0; weekday < 7; weekday++ {
		if slot, ok := byDay[weekday]; ok {
			out[weekday] = slot
		} else {
			out[weekday] = defaults[weekday]
		}
	}
	return out
}

func asWeekday(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		if int(n) < 0 || int(n) > 6 {
			return 0, false
		}
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || parsed < 0 || parsed > 6 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// asBool mirrors the loose coercion the stored data was written under:
// anything non-empty and non-zero counts as true.
func asBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	default:
		return false
	}
}

func asTimeString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}
