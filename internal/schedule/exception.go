package schedule

import "encoding/json"

// ExceptionKind tags a date-scoped override.
type ExceptionKind string

const (
	// KindOff removes the base working window for the date.
	KindOff ExceptionKind = "OFF"
	// KindReplace overrides the weekly template's window for the date.
	KindReplace ExceptionKind = "REPLACE"
	// KindAdd layers an extra window on top of whatever base applies.
	KindAdd ExceptionKind = "ADD"
)

// ValidKind reports whether s is one of the three exception kinds.
func ValidKind(s string) bool {
	switch ExceptionKind(s) {
	case KindOff, KindReplace, KindAdd:
		return true
	}
	return false
}

// ScheduleException is one stored override. Kind may be empty on rows written
// before it existed; it is inferred during normalization. Off is the legacy
// flag that predates Kind.
type ScheduleException struct {
	ID      string        `json:"id,omitempty"`
	DateYMD string        `json:"dateYmd"`
	Kind    ExceptionKind `json:"kind,omitempty"`
	Off     bool          `json:"off,omitempty"`
	Start   string        `json:"start,omitempty"`
	End     string        `json:"end,omitempty"`
	Note    string        `json:"note,omitempty"`
}

// ParseExceptions turns a stored override list of any shape into typed
// entries. A value that is not a JSON array yields an empty list. Entries
// without a shape-valid dateYmd are dropped. Stored order is preserved:
// appended-last means newest, which drives the REPLACE tie-break during
// resolution.
func ParseExceptions(raw json.RawMessage) []ScheduleException {
	var values []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil {
		return []ScheduleException{}
	}

	out := make([]ScheduleException, 0, len(values))
	for _, value := range values {
		entry, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		dateYmd, ok := entry["dateYmd"].(string)
		if !ok || !IsValidDate(dateYmd) {
			continue
		}

		ex := ScheduleException{DateYMD: dateYmd}
		if id, ok := entry["id"].(string); ok {
			ex.ID = id
		}
		if kind, ok := entry["kind"].(string); ok && ValidKind(kind) {
			ex.Kind = ExceptionKind(kind)
		}
		if off, ok := entry["off"].(bool); ok && off {
			ex.Off = true
		}
		if start, ok := entry["start"].(string); ok {
			ex.Start = start
		}
		if end, ok := entry["end"].(string); ok {
			ex.End = end
		}
		if note, ok := entry["note"].(string); ok {
			ex.Note = note
		}
		out = append(out, ex)
	}
	return out
}

// normalize infers a missing kind and applies the time-validity rules. It
// returns false when the exception must be excluded from resolution: bad time
// format or start >= end. One malformed override never breaks the whole
// day's view, which is why this drops instead of erroring.
func normalize(ex ScheduleException) (ScheduleException, bool) {
	kind := ex.Kind
	if kind == "" {
		switch {
		case ex.Off:
			kind = KindOff
		case ex.Start != "" && ex.End != "":
			kind = KindReplace
		default:
			kind = KindAdd
		}
	}

	if kind == KindOff {
		ex.Kind = KindOff
		ex.Off = true
		return ex, true
	}

	if ex.Start == "" || ex.End == "" {
		return ex, false
	}
	if !IsValidTime(ex.Start) || !IsValidTime(ex.End) {
		return ex, false
	}
	if timeMinutes(ex.Start) >= timeMinutes(ex.End) {
		return ex, false
	}
	ex.Kind = kind
	return ex, true
}
