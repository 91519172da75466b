package schedule

import (
	"fmt"

	"github.com/foyerhq/foyer-api/internal/timezone"
)

// SegmentSource identifies where a resolved segment came from.
type SegmentSource string

const (
	SourceWeekly    SegmentSource = "weekly"
	SourceException SegmentSource = "exception"
)

// SegmentKind distinguishes the day's primary window from supplementary ones.
type SegmentKind string

const (
	// SegmentBase is the primary working window: the weekly template or a
	// REPLACE override, never both.
	SegmentBase SegmentKind = "BASE"
	// SegmentAdd is an extra window layered on top of the base outcome.
	SegmentAdd SegmentKind = "ADD"
)

// DayWorkSegment is one resolved working window for a date. Segments are
// recomputed on every query and never persisted. ID is stable per source so
// clients can key on it.
type DayWorkSegment struct {
	ID     string        `json:"id"`
	Source SegmentSource `json:"source"`
	Kind   SegmentKind   `json:"kind"`
	Start  string        `json:"start"`
	End    string        `json:"end"`
	Note   string        `json:"note,omitempty"`
}

// DayResolution is the outcome of resolving one date.
type DayResolution struct {
	Segments []DayWorkSegment `json:"segments"`
	Off      bool             `json:"off"`
}

// ResolveDay computes the working segments for one date by layering the
// date's exceptions over the weekly template. Precedence, in fixed order:
//
//  1. any OFF exception suppresses the base window entirely;
//  2. otherwise the newest REPLACE exception (last in stored order) becomes
//     the base window, discarding the template;
//  3. otherwise the template's slot applies when enabled;
//  4. ADD exceptions are appended in stored order regardless of 1-3.
//
// Off is true exactly when no segment was emitted, so a day whose base is
// suppressed but that still has an ADD window is not reported as off.
// ResolveDay never fails: malformed exceptions are dropped by normalization.
func ResolveDay(ymd string, weekly []WeeklySlot, exceptions []ScheduleException) DayResolution {
	weekdayIdx := timezone.WeekdayIndex(ymd)

	var baseWeekly *WeeklySlot
	if weekdayIdx >= 0 && weekdayIdx < len(weekly) {
		baseWeekly = &weekly[weekdayIdx]
	}

	var dayExceptions []ScheduleException
	for _, ex := range exceptions {
		if ex.DateYMD != ymd {
			continue
		}
		if normalized, ok := normalize(ex); ok {
			dayExceptions = append(dayExceptions, normalized)
		}
	}

	hasOff := false
	var replace *ScheduleException
	var adds []ScheduleException
	for i := range dayExceptions {
		switch dayExceptions[i].Kind {
		case KindOff:
			hasOff = true
		case KindReplace:
			// Last in stored order wins: most recently appended.
			replace = &dayExceptions[i]
		case KindAdd:
			adds = append(adds, dayExceptions[i])
		}
	}

	segments := []DayWorkSegment{}
	if !hasOff {
		if replace != nil {
			id := replace.ID
			if id == "" {
				id = fmt.Sprintf("%s:replace", ymd)
			}
			segments = append(segments, DayWorkSegment{
				ID:     id,
				Source: SourceException,
				Kind:   SegmentBase,
				Start:  replace.Start,
				End:    replace.End,
				Note:   replace.Note,
			})
		} else if baseWeekly != nil && baseWeekly.Enabled {
			segments = append(segments, DayWorkSegment{
				ID:     fmt.Sprintf("%s:weekly", ymd),
				Source: SourceWeekly,
				Kind:   SegmentBase,
				Start:  baseWeekly.Start,
				End:    baseWeekly.End,
			})
		}
	}

	for _, ex := range adds {
		id := ex.ID
		if id == "" {
			id = fmt.Sprintf("%s:add:%d", ymd, len(segments))
		}
		segments = append(segments, DayWorkSegment{
			ID:     id,
			Source: SourceException,
			Kind:   SegmentAdd,
			Start:  ex.Start,
			End:    ex.End,
			Note:   ex.Note,
		})
	}

	return DayResolution{Segments: segments, Off: len(segments) == 0}
}

var weekdayLabels = [7]string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// WeekdayLabel returns the short French label for a weekday index (0=Monday).
func WeekdayLabel(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return fmt.Sprintf("%d", weekday)
	}
	return weekdayLabels[weekday]
}

// DayProjection is one entry of a multi-day planner view. Start/End/Note/
// Source summarize the primary segment: the base window when present,
// otherwise the first ADD.
type DayProjection struct {
	Date   string        `json:"date"`
	Label  string        `json:"label"`
	Off    bool          `json:"off"`
	Start  string        `json:"start,omitempty"`
	End    string        `json:"end,omitempty"`
	Note   string        `json:"note,omitempty"`
	Source SegmentSource `json:"source"`
}

// ProjectRange resolves count consecutive days starting at startYmd. It adds
// no semantics beyond repeated ResolveDay calls; it exists so range views do
// not re-derive weekday labels themselves.
func ProjectRange(startYmd string, count int, weekly []WeeklySlot, exceptions []ScheduleException) []DayProjection {
	out := make([]DayProjection, 0, count)
	for i := 0; i < count; i++ {
		ymd := timezone.AddDays(startYmd, i)
		res := ResolveDay(ymd, weekly, exceptions)

		proj := DayProjection{
			Date:   ymd,
			Label:  WeekdayLabel(timezone.WeekdayIndex(ymd)),
			Off:    res.Off,
			Source: SourceWeekly,
		}
		if primary := primarySegment(res.Segments); primary != nil {
			proj.Start = primary.Start
			proj.End = primary.End
			proj.Note = primary.Note
			proj.Source = primary.Source
		}
		out = append(out, proj)
	}
	return out
}

func primarySegment(segments []DayWorkSegment) *DayWorkSegment {
	for i := range segments {
		if segments[i].Kind == SegmentBase {
			return &segments[i]
		}
	}
	if len(segments) > 0 {
		return &segments[0]
	}
	return nil
}
