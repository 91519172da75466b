package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeekly(t *testing.T) {
	slots := DefaultWeekly()
	require.Len(t, slots, 7)
	for weekday, slot := range slots {
		assert.Equal(t, weekday, slot.Weekday)
		assert.Equal(t, weekday <= 4, slot.Enabled, "weekday %d", weekday)
		assert.Equal(t, "14:30", slot.Start)
		assert.Equal(t, "19:30", slot.End)
	}
}

func TestParseWeeklyNonArrayYieldsDefaults(t *testing.T) {
	cases := []json.RawMessage{
		nil,
		json.RawMessage(`null`),
		json.RawMessage(`{}`),
		json.RawMessage(`"garbage"`),
		json.RawMessage(`42`),
		json.RawMessage(`{not json`),
	}
	want := DefaultWeekly()
	for _, raw := range cases {
		assert.Equal(t, want, ParseWeekly(raw), "raw=%s", string(raw))
	}
	// Empty array and nil agree: every weekday falls back to the default slot.
	assert.Equal(t, want, ParseWeekly(json.RawMessage(`[]`)))
}

func TestParseWeeklyLastEntryPerWeekdayWins(t *testing.T) {
	raw := json.RawMessage(`[
		{"weekday": 0, "enabled": true, "start": "08:00", "end": "12:00"},
		{"weekday": 0, "enabled": true, "start": "10:00", "end": "16:00"}
	]`)
	slots := ParseWeekly(raw)
	assert.Equal(t, "10:00", slots[0].Start)
	assert.Equal(t, "16:00", slots[0].End)
}

func TestParseWeeklySkipsMalformedEntries(t *testing.T) {
	raw := json.RawMessage(`[
		"not an object",
		{"weekday": 9, "enabled": true},
		{"weekday": -1, "enabled": true},
		{"weekday": 2.5, "enabled": true},
		{"enabled": true},
		{"weekday": 3, "enabled": true, "start": "07:00", "end": "11:00"}
	]`)
	slots := ParseWeekly(raw)
	require.Len(t, slots, 7)

	// Only weekday 3 was usable; the rest fall back to defaults.
	assert.Equal(t, "07:00", slots[3].Start)
	assert.Equal(t, "11:00", slots[3].End)
	assert.Equal(t, DefaultWeekly()[0], slots[0])
	assert.Equal(t, DefaultWeekly()[6], slots[6])
}

func TestParseWeeklyCoercesLooseValues(t *testing.T) {
	raw := json.RawMessage(`[
		{"weekday": "1", "enabled": 1, "start": 930, "end": null},
		{"weekday": 5, "enabled": "yes"}
	]`)
	slots := ParseWeekly(raw)

	assert.True(t, slots[1].Enabled)
	assert.Equal(t, "14:30", slots[1].Start, "non-string start falls back")
	assert.Equal(t, "19:30", slots[1].End, "non-string end falls back")
	assert.True(t, slots[5].Enabled)
}

func TestParseWeeklyOutputAlwaysOrderedByWeekday(t *testing.T) {
	raw := json.RawMessage(`[
		{"weekday": 6, "enabled": true, "start": "09:00", "end": "13:00"},
		{"weekday": 2, "enabled": false, "start": "09:00", "end": "13:00"}
	]`)
	slots := ParseWeekly(raw)
	require.Len(t, slots, 7)
	for weekday, slot := range slots {
		assert.Equal(t, weekday, slot.Weekday)
	}
}

func TestIsValidTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "14:30", "23:59"}
	for _, v := range valid {
		assert.True(t, IsValidTime(v), v)
	}
	invalid := []string{"", "24:00", "12:60", "9:30", "09:5", "09-30", "xx:yy", "09:30:00"}
	for _, v := range invalid {
		assert.False(t, IsValidTime(v), v)
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2024-06-10"))
	// Shape check only: calendar validity is out of contract.
	assert.True(t, IsValidDate("2024-02-30"))
	assert.False(t, IsValidDate("2024-6-10"))
	assert.False(t, IsValidDate("10-06-2024"))
	assert.False(t, IsValidDate(""))
}
