// Package timezone translates between absolute UTC instants and wall-clock
// fields observed in a household's IANA timezone. It is the only place in the
// codebase allowed to reason about zone offsets; everything else works with
// UTC instants or "YYYY-MM-DD" date strings.
package timezone

import (
	"fmt"
	"time"
)

// DefaultZone is used when a household has no timezone configured.
const DefaultZone = "Europe/Paris"

// Fields holds the calendar/clock components of an instant as observed in a
// particular zone.
type Fields struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// LoadLocation resolves an IANA zone name, falling back to DefaultZone when
// the name is empty or unknown. Zone names are validated at write time by the
// settings layer, so the fallback only covers legacy rows.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultZone)
	}
	return loc
}

// FieldsIn projects a UTC instant into the local fields of loc.
func FieldsIn(t time.Time, loc *time.Location) Fields {
	lt := t.In(loc)
	return Fields{
		Year:   lt.Year(),
		Month:  int(lt.Month()),
		Day:    lt.Day(),
		Hour:   lt.Hour(),
		Minute: lt.Minute(),
		Second: lt.Second(),
	}
}

// YMDIn formats the calendar date of an instant as "YYYY-MM-DD" in loc.
func YMDIn(t time.Time, loc *time.Location) string {
	f := FieldsIn(t, loc)
	return fmt.Sprintf("%04d-%02d-%02d", f.Year, f.Month, f.Day)
}

// splitYMD reads the numeric components of a "YYYY-MM-DD" string. Shape
// validation is the caller's responsibility (the schedule package checks the
// regex before calling in); out-of-range components normalize through
// time.Date the same way the stored data always has.
func splitYMD(ymd string) (year, month, day int) {
	fmt.Sscanf(ymd, "%04d-%02d-%02d", &year, &month, &day)
	return year, month, day
}

// AddDays adds n calendar days to a "YYYY-MM-DD" string. The date is anchored
// at noon UTC so the arithmetic itself can never straddle a DST transition.
func AddDays(ymd string, n int) string {
	y, m, d := splitYMD(ymd)
	t := time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// WeekdayIndex returns the ISO-style weekday of a date string, 0=Monday
// through 6=Sunday, computed from the same noon-UTC anchor as AddDays so the
// result never depends on the process clock zone.
func WeekdayIndex(ymd string) int {
	y, m, d := splitYMD(ymd)
	t := time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
	return (int(t.Weekday()) + 6) % 7
}

// fixedPointIterations bounds the LocalToUTC correction loop. Two passes are
// enough: UTC offsets are piecewise constant, and a single correction can only
// cross one transition boundary, which the second pass then lands inside of.
const fixedPointIterations = 2

// LocalToUTC converts a wall-clock moment observed in loc into the UTC
// instant it denotes, staying correct across DST transitions.
//
// The first guess treats the local fields as if they were UTC; each pass then
// reads the guess back in loc, measures the field error against the desired
// fields in seconds and subtracts it. For a nonexistent local time
// (spring-forward gap) the result is deterministic and shifted past the gap,
// so day ranges built from it always keep start before end.
func LocalToUTC(loc *time.Location, ymd string, hour, minute, second int) time.Time {
	y, m, d := splitYMD(ymd)
	want := time.Date(y, time.Month(m), d, hour, minute, second, 0, time.UTC)

	guess := want
	for i := 0; i < fixedPointIterations; i++ {
		f := FieldsIn(guess, loc)
		got := time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, 0, time.UTC)
		diff := got.Sub(want)
		guess = guess.Add(-diff)
	}
	return guess
}

// DayBounds returns the inclusive UTC instant range covering one local
// calendar day in loc: local midnight through one second before the next
// local midnight. Across DST transitions the range is 23 or 25 hours long,
// never empty.
func DayBounds(loc *time.Location, ymd string) (start, end time.Time) {
	start = LocalToUTC(loc, ymd, 0, 0, 0)
	nextStart := LocalToUTC(loc, AddDays(ymd, 1), 0, 0, 0)
	return start, nextStart.Add(-time.Second)
}

// TodayRange resolves "now" into the household's current calendar date and
// its UTC day bounds. Callers feed the bounds straight into due-date range
// filters.
func TodayRange(loc *time.Location, now time.Time) (start, end time.Time, ymd string) {
	ymd = YMDIn(now, loc)
	start, end = DayBounds(loc, ymd)
	return start, end, ymd
}
