package schedule

import (
	"fmt"
	"testing"

	"github.com/marchal/fieldplanner/pkg/models"
)

func techID(id int64) *int64 {
	return &id
}

func TestProject(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")
	weekStart, _ := ParseStamp("2025-06-02T00:00:00", loc)

	interventions := []models.Intervention{
		{ID: 1, ScheduledAt: "2025-06-02T09:00:00", DurationMinutes: 90, TechnicianID: techID(1), Priority: "normal"},
		{ID: 2, ScheduledAt: "2025-06-02T09:45:00", DurationMinutes: 30, TechnicianID: techID(2), Priority: "Urgent"},
		{ID: 3, ScheduledAt: "2025-06-08T23:00:00", Priority: "normal"}, // sunday, in window
		{ID: 4, ScheduledAt: "2025-06-09T00:00:00", Priority: "normal"}, // next monday, out
		{ID: 5, ScheduledAt: "2025-06-01T23:59:59", Priority: "normal"}, // previous sunday, out
		{ID: 6, ScheduledAt: "not a stamp", Priority: "normal"},
		{ID: 7, ScheduledAt: "", Priority: "normal"},
	}

	grid := Project(interventions, weekStart, loc)

	cell := grid["2025-06-02"]["09"]
	if len(cell) != 2 {
		t.Fatalf("monday 09h cell has %d entries, want 2", len(cell))
	}
	if cell[0].ID != 1 || cell[1].ID != 2 {
		t.Errorf("cell order = [%d, %d], want [1, 2]", cell[0].ID, cell[1].ID)
	}
	if cell[0].EndsAt != "2025-06-02T10:30:00" {
		t.Errorf("entry 1 ends_at = %s, want 2025-06-02T10:30:00", cell[0].EndsAt)
	}
	if cell[0].Urgent {
		t.Error("entry 1 marked urgent")
	}
	if !cell[1].Urgent {
		t.Error("entry 2 not marked urgent")
	}

	if len(grid["2025-06-08"]["23"]) != 1 {
		t.Errorf("sunday entry missing from grid")
	}

	total := 0
	for _, day := range grid {
		for _, entries := range day {
			total += len(entries)
		}
	}
	if total != 3 {
		t.Errorf("grid holds %d entries, want 3 (out-of-window and malformed skipped)", total)
	}
}

func TestProjectDefaultsDuration(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")
	weekStart, _ := ParseStamp("2025-06-02T00:00:00", loc)

	grid := Project([]models.Intervention{
		{ID: 1, ScheduledAt: "2025-06-02T09:00:00"},
	}, weekStart, loc)

	cell := grid["2025-06-02"]["09"]
	if len(cell) != 1 {
		t.Fatalf("cell has %d entries, want 1", len(cell))
	}
	if cell[0].EndsAt != "2025-06-02T10:00:00" {
		t.Errorf("ends_at = %s, want one default hour after start", cell[0].EndsAt)
	}
}

func TestTargetFromDrop(t *testing.T) {
	tests := []struct {
		name    string
		day     string
		hour    string
		want    string
		wantErr bool
	}{
		{name: "padded hour", day: "2025-06-03", hour: "09", want: "2025-06-03T09:00:00"},
		{name: "bare hour", day: "2025-06-03", hour: "9", want: "2025-06-03T09:00:00"},
		{name: "afternoon", day: "2025-06-03", hour: "14", want: "2025-06-03T14:00:00"},
		{name: "midnight", day: "2025-06-03", hour: "0", want: "2025-06-03T00:00:00"},
		{name: "last hour", day: "2025-06-03", hour: "23", want: "2025-06-03T23:00:00"},
		{name: "hour out of range", day: "2025-06-03", hour: "24", wantErr: true},
		{name: "negative hour", day: "2025-06-03", hour: "-1", wantErr: true},
		{name: "hour not a number", day: "2025-06-03", hour: "noon", wantErr: true},
		{name: "bad day", day: "03/06/2025", hour: "09", wantErr: true},
		{name: "empty day", day: "", hour: "09", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetFromDrop(tt.day, tt.hour)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("TargetFromDrop(%q, %q) expected error, got %q", tt.day, tt.hour, got)
				}
				if !IsValidation(err) {
					t.Errorf("error %v is not a validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TargetFromDrop(%q, %q): %v", tt.day, tt.hour, err)
			}
			if got != tt.want {
				t.Errorf("TargetFromDrop(%q, %q) = %s, want %s", tt.day, tt.hour, got, tt.want)
			}
		})
	}
}

// Dropping into a cell and re-bucketing the resulting stamp must land in the
// same cell, for every hour of the day.
func TestDropBucketRoundTrip(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	for hour := 0; hour < 24; hour++ {
		hourKey := fmt.Sprintf("%02d", hour)
		target, err := TargetFromDrop("2025-06-04", hourKey)
		if err != nil {
			t.Fatalf("TargetFromDrop hour %s: %v", hourKey, err)
		}

		parsed, err := ParseStamp(target, loc)
		if err != nil {
			t.Fatalf("ParseStamp(%q): %v", target, err)
		}

		day, gotHour := Bucket(parsed)
		if day != "2025-06-04" || gotHour != hourKey {
			t.Errorf("round trip hour %s landed in (%s, %s)", hourKey, day, gotHour)
		}
	}
}

func TestTechColor(t *testing.T) {
	tests := []struct {
		name string
		id   *int64
		want string
	}{
		{name: "nil technician", id: nil, want: techPalette[0]},
		{name: "zero id", id: techID(0), want: techPalette[0]},
		{name: "id 1", id: techID(1), want: techPalette[1]},
		{name: "id 7 wraps", id: techID(7), want: techPalette[0]},
		{name: "id 10", id: techID(10), want: techPalette[3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TechColor(tt.id); got != tt.want {
				t.Errorf("TechColor = %s, want %s", got, tt.want)
			}
		})
	}

	// Stable across calls.
	id := techID(3)
	first := TechColor(id)
	for i := 0; i < 5; i++ {
		if TechColor(id) != first {
			t.Fatal("TechColor not stable for same id")
		}
	}
}

func TestIsUrgent(t *testing.T) {
	tests := []struct {
		priority string
		want     bool
	}{
		{"urgent", true},
		{"Urgent", true},
		{"URGENT", true},
		{"urgente", true},
		{"urgent - client asked twice", true},
		{"normal", false},
		{"", false},
		{"very urgent", false},
	}

	for _, tt := range tests {
		if got := IsUrgent(tt.priority); got != tt.want {
			t.Errorf("IsUrgent(%q) = %v, want %v", tt.priority, got, tt.want)
		}
	}
}

func TestProjectWindowIsMondayRooted(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	// Passing a mid-week reference must still root the window at Monday.
	thursday, _ := ParseStamp("2025-06-05T16:00:00", loc)
	grid := Project([]models.Intervention{
		{ID: 1, ScheduledAt: "2025-06-02T08:00:00"},
	}, thursday, loc)

	if len(grid["2025-06-02"]["08"]) != 1 {
		t.Error("monday entry missing when projecting from a thursday reference")
	}
}
