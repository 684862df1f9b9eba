package schedule

import (
	"strings"
	"time"
)

// StampLayout is the canonical wire and storage form of a schedule instant:
// a wall-clock stamp with no timezone designator, interpreted in the single
// configured display location. Lexicographic order on this form is
// chronological, which the store's range filter relies on.
const StampLayout = "2006-01-02T15:04:05"

// DayKeyLayout is the date-only bucket key form.
const DayKeyLayout = "2006-01-02"

// ParseStamp parses a schedule instant in loc. It tolerates the variants
// that appear on the wire: a space instead of the `T` separator and a
// missing seconds component. A bare date parses as midnight.
func ParseStamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, " ", "T", 1)

	layouts := []string{StampLayout, "2006-01-02T15:04", DayKeyLayout}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}

// FormatStamp renders t in the canonical storage form. The location carried
// by t is kept as-is; callers are responsible for having parsed the stamp
// in the configured location.
func FormatStamp(t time.Time) string {
	return t.Format(StampLayout)
}

// WeekBounds returns the Monday that begins t's week and the Sunday that
// ends it, both at midnight, using calendar-day arithmetic in t's own
// location. Sunday counts as the last day of the previous Monday-rooted
// week.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	base := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	day := int(base.Weekday()) // 0 = Sunday .. 6 = Saturday
	diff := 1 - day
	if day == 0 {
		diff = -6
	}

	monday = base.AddDate(0, 0, diff)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// Bucket maps an instant to its weekly-grid cell: a date-only day key and a
// zero-padded hour key 00..23, both in t's location.
func Bucket(t time.Time) (dayKey, hourKey string) {
	return t.Format(DayKeyLayout), t.Format("15")
}
