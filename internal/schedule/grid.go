package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marchal/fieldplanner/pkg/models"
)

// techPalette is the fixed technician color rotation used by the calendar
// UI. Color assignment is derived, never stored.
var techPalette = [...]string{
	"#1d6fff", // blue
	"#f38b1a", // orange
	"#b14ff2", // purple
	"#22c55e", // green
	"#e11d48", // pink
	"#38bdf8", // cyan
	"#ffb800", // yellow
}

// Entry is one rendering-ready intervention inside a grid cell.
type Entry struct {
	models.Intervention

	// EndsAt is the duration-derived end stamp in canonical form.
	EndsAt string `json:"ends_at"`
	Color  string `json:"color"`
	Urgent bool   `json:"urgent"`
}

// Grid buckets a week's interventions into day and hour cells:
// Grid[dayKey][hourKey] -> entries in input order.
type Grid map[string]map[string][]Entry

// Project buckets every intervention whose scheduled_at falls within the
// 7-day window rooted at weekStart's Monday. Records with a missing or
// malformed stamp are skipped rather than failing the projection; entries
// within a cell preserve the input order. The caller is expected to have
// range-filtered already, the window check is defensive.
func Project(interventions []models.Intervention, weekStart time.Time, loc *time.Location) Grid {
	monday, _ := WeekBounds(weekStart)
	endExclusive := monday.AddDate(0, 0, 7)

	grid := make(Grid)
	for _, iv := range interventions {
		t, err := ParseStamp(iv.ScheduledAt, loc)
		if err != nil {
			continue
		}
		if t.Before(monday) || !t.Before(endExclusive) {
			continue
		}

		dayKey, hourKey := Bucket(t)
		if grid[dayKey] == nil {
			grid[dayKey] = make(map[string][]Entry)
		}

		duration := iv.DurationMinutes
		if duration <= 0 {
			duration = models.DefaultDurationMinutes
		}

		grid[dayKey][hourKey] = append(grid[dayKey][hourKey], Entry{
			Intervention: iv,
			EndsAt:       FormatStamp(t.Add(time.Duration(duration) * time.Minute)),
			Color:        TechColor(iv.TechnicianID),
			Urgent:       IsUrgent(iv.Priority),
		})
	}

	return grid
}

// TargetFromDrop is the inverse of Bucket: it composes a day key and an
// hour key back into the canonical schedule stamp a drop gesture targets.
// Re-bucketing the result always lands in the same (day, hour) cell.
func TargetFromDrop(dayKey, hourKey string) (string, error) {
	if _, err := time.Parse(DayKeyLayout, dayKey); err != nil {
		return "", invalidf("day", "want YYYY-MM-DD, got %q", dayKey)
	}

	hour, err := strconv.Atoi(hourKey)
	if err != nil || hour < 0 || hour > 23 {
		return "", invalidf("hour", "want 00..23, got %q", hourKey)
	}

	return fmt.Sprintf("%sT%02d:00:00", dayKey, hour), nil
}

// TechColor assigns a stable palette color from the technician id.
// Unassigned interventions get the first color.
func TechColor(techID *int64) string {
	if techID == nil || *techID <= 0 {
		return techPalette[0]
	}

	return techPalette[*techID%int64(len(techPalette))]
}

// IsUrgent reports whether a priority string marks the intervention urgent.
// The check is a case-insensitive prefix match so "Urgent", "urgente" and
// friends all highlight.
func IsUrgent(priority string) bool {
	return strings.HasPrefix(strings.ToLower(priority), models.PriorityUrgent)
}
