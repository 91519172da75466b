package schedule

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondayWeekly returns a template with only Monday enabled, 09:00-18:00.
func mondayWeekly() []WeeklySlot {
	slots := DefaultWeekly()
	for i := range slots {
		slots[i].Enabled = i == 0
		slots[i].Start = "09:00"
		slots[i].End = "18:00"
	}
	return slots
}

func TestResolveDayWeeklyBase(t *testing.T) {
	// 2024-06-10 is a Monday.
	res := ResolveDay("2024-06-10", mondayWeekly(), nil)
	require.Len(t, res.Segments, 1)
	assert.False(t, res.Off)

	seg := res.Segments[0]
	assert.Equal(t, "2024-06-10:weekly", seg.ID)
	assert.Equal(t, SourceWeekly, seg.Source)
	assert.Equal(t, SegmentBase, seg.Kind)
	assert.Equal(t, "09:00", seg.Start)
	assert.Equal(t, "18:00", seg.End)
}

func TestResolveDayDisabledWeekdayIsOff(t *testing.T) {
	// 2024-06-11 is a Tuesday, disabled in mondayWeekly.
	res := ResolveDay("2024-06-11", mondayWeekly(), nil)
	assert.Empty(t, res.Segments)
	assert.True(t, res.Off)
}

func TestResolveDayReplaceOverridesWeekly(t *testing.T) {
	exceptions := []ScheduleException{
		{ID: "x1", DateYMD: "2024-06-10", Kind: KindReplace, Start: "10:00", End: "12:00", Note: "demi-journee"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 1)

	seg := res.Segments[0]
	assert.Equal(t, "x1", seg.ID, "override's own id is kept")
	assert.Equal(t, SourceException, seg.Source)
	assert.Equal(t, SegmentBase, seg.Kind)
	assert.Equal(t, "10:00", seg.Start)
	assert.Equal(t, "12:00", seg.End)
	assert.Equal(t, "demi-journee", seg.Note)
}

func TestResolveDayOffBeatsReplace(t *testing.T) {
	// Precedence law: OFF suppresses the base even when a REPLACE exists.
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-10", Kind: KindReplace, Start: "10:00", End: "12:00"},
		{DateYMD: "2024-06-10", Kind: KindOff},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	assert.Empty(t, res.Segments)
	assert.True(t, res.Off)
}

func TestResolveDayLastReplaceWins(t *testing.T) {
	// Tie-break law: [R1, R2] in append order resolves to R2.
	exceptions := []ScheduleException{
		{ID: "r1", DateYMD: "2024-06-10", Kind: KindReplace, Start: "08:00", End: "10:00", Note: "first"},
		{ID: "r2", DateYMD: "2024-06-10", Kind: KindReplace, Start: "13:00", End: "17:00", Note: "second"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, "r2", res.Segments[0].ID)
	assert.Equal(t, "13:00", res.Segments[0].Start)
	assert.Equal(t, "17:00", res.Segments[0].End)
	assert.Equal(t, "second", res.Segments[0].Note)
}

func TestResolveDayAddOnOffDay(t *testing.T) {
	// ADD independence: the extra window survives an OFF, and Off reflects
	// the emitted segment list, not the base outcome.
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-10", Kind: KindOff},
		{ID: "extra", DateYMD: "2024-06-10", Kind: KindAdd, Start: "20:00", End: "21:00"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 1)
	assert.False(t, res.Off)
	assert.Equal(t, SegmentAdd, res.Segments[0].Kind)
	assert.Equal(t, "extra", res.Segments[0].ID)
}

func TestResolveDayOffIsAlwaysSegmentsEmpty(t *testing.T) {
	combos := [][]ScheduleException{
		nil,
		{{DateYMD: "2024-06-10", Kind: KindOff}},
		{{DateYMD: "2024-06-10", Kind: KindOff}, {DateYMD: "2024-06-10", Kind: KindAdd, Start: "08:00", End: "09:00"}},
		{{DateYMD: "2024-06-10", Kind: KindReplace, Start: "08:00", End: "09:00"}},
	}
	for i, exceptions := range combos {
		res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
		assert.Equal(t, len(res.Segments) == 0, res.Off, "combo %d", i)
	}
}

func TestResolveDayMalformedExceptionIsDroppedNotFatal(t *testing.T) {
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-10", Kind: KindReplace, Start: "18:00", End: "10:00"}, // inverted, dropped
		{DateYMD: "2024-06-10", Kind: KindAdd, Start: "19:00", End: "20:00"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 2)
	// The weekly base survives because the only REPLACE was invalid.
	assert.Equal(t, SourceWeekly, res.Segments[0].Source)
	assert.Equal(t, SegmentAdd, res.Segments[1].Kind)
}

func TestResolveDayIgnoresOtherDates(t *testing.T) {
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-11", Kind: KindOff},
		{DateYMD: "2024-06-12", Kind: KindAdd, Start: "08:00", End: "09:00"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, SourceWeekly, res.Segments[0].Source)
}

func TestResolveDaySyntheticAddIDs(t *testing.T) {
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-10", Kind: KindAdd, Start: "06:00", End: "07:00"},
		{DateYMD: "2024-06-10", Kind: KindAdd, Start: "20:00", End: "21:00"},
	}
	res := ResolveDay("2024-06-10", mondayWeekly(), exceptions)
	require.Len(t, res.Segments, 3)
	// Index counts the segments already emitted, base included.
	assert.Equal(t, "2024-06-10:add:1", res.Segments[1].ID)
	assert.Equal(t, "2024-06-10:add:2", res.Segments[2].ID)
}

func TestResolveDayReplaceAndAddScenario(t *testing.T) {
	// The documented end-to-end scenario: Monday 09:00-18:00 weekly, a
	// REPLACE 10:00-12:00 plus an ADD 19:00-20:00 on 2024-06-10.
	raw := json.RawMessage(`[
		{"dateYmd": "2024-06-10", "kind": "REPLACE", "start": "10:00", "end": "12:00"},
		{"dateYmd": "2024-06-10", "kind": "ADD", "start": "19:00", "end": "20:00"}
	]`)
	res := ResolveDay("2024-06-10", mondayWeekly(), ParseExceptions(raw))

	require.Len(t, res.Segments, 2)
	assert.False(t, res.Off)

	base := res.Segments[0]
	assert.Equal(t, SegmentBase, base.Kind)
	assert.Equal(t, SourceException, base.Source)
	assert.Equal(t, "10:00", base.Start)
	assert.Equal(t, "12:00", base.End)

	add := res.Segments[1]
	assert.Equal(t, SegmentAdd, add.Kind)
	assert.Equal(t, "19:00", add.Start)
	assert.Equal(t, "20:00", add.End)
}

func TestResolveDayOffOnAlreadyDisabledDay(t *testing.T) {
	raw := json.RawMessage(`[{"dateYmd": "2024-06-11", "kind": "OFF"}]`)
	res := ResolveDay("2024-06-11", mondayWeekly(), ParseExceptions(raw))
	assert.Empty(t, res.Segments)
	assert.True(t, res.Off)
}

func TestWeekdayLabel(t *testing.T) {
	want := []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}
	for i, label := range want {
		assert.Equal(t, label, WeekdayLabel(i))
	}
	assert.Equal(t, "7", WeekdayLabel(7))
	assert.Equal(t, "-1", WeekdayLabel(-1))
}

func TestProjectRangeWeekView(t *testing.T) {
	exceptions := []ScheduleException{
		{DateYMD: "2024-06-11", Kind: KindAdd, Start: "08:00", End: "09:00", Note: "garde"},
	}
	days := ProjectRange("2024-06-10", 7, mondayWeekly(), exceptions)
	require.Len(t, days, 7)

	for i, day := range days {
		assert.Equal(t, fmt.Sprintf("2024-06-%02d", 10+i), day.Date)
	}
	assert.Equal(t, "Lun", days[0].Label)
	assert.Equal(t, "Dim", days[6].Label)

	// Monday: weekly base.
	assert.False(t, days[0].Off)
	assert.Equal(t, SourceWeekly, days[0].Source)
	assert.Equal(t, "09:00", days[0].Start)

	// Tuesday: no base, but the ADD becomes the primary summary.
	assert.False(t, days[1].Off)
	assert.Equal(t, SourceException, days[1].Source)
	assert.Equal(t, "08:00", days[1].Start)
	assert.Equal(t, "garde", days[1].Note)

	// Wednesday onward: off.
	for _, day := range days[2:] {
		assert.True(t, day.Off)
		assert.Empty(t, day.Start)
	}
}

func TestProjectRangeCrossesYearBoundary(t *testing.T) {
	days := ProjectRange("2024-12-30", 4, DefaultWeekly(), nil)
	require.Len(t, days, 4)
	assert.Equal(t, "2024-12-31", days[1].Date)
	assert.Equal(t, "2025-01-01", days[2].Date)
	assert.Equal(t, "Mer", days[2].Label) // 2025-01-01 is a Wednesday
}
