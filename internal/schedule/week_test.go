package schedule

import (
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestParseStamp(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical", input: "2025-06-02T09:00:00", want: "2025-06-02T09:00:00"},
		{name: "space separator", input: "2025-06-02 09:00:00", want: "2025-06-02T09:00:00"},
		{name: "no seconds", input: "2025-06-02T09:30", want: "2025-06-02T09:30:00"},
		{name: "bare date is midnight", input: "2025-06-02", want: "2025-06-02T00:00:00"},
		{name: "surrounding whitespace", input: "  2025-06-02T09:00:00 ", want: "2025-06-02T09:00:00"},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStamp(tt.input, loc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseStamp(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStamp(%q) unexpected error: %v", tt.input, err)
			}
			if got.Location() != loc {
				t.Errorf("ParseStamp(%q) location = %v, want %v", tt.input, got.Location(), loc)
			}
			if s := FormatStamp(got); s != tt.want {
				t.Errorf("ParseStamp(%q) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}
}

func TestWeekBounds(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	// 2025-06-02 is a Monday. Every day of that week, Sunday included,
	// must map to the same Monday..Sunday window.
	tests := []struct {
		name  string
		input string
	}{
		{name: "monday", input: "2025-06-02T00:00:00"},
		{name: "tuesday", input: "2025-06-03T10:00:00"},
		{name: "wednesday", input: "2025-06-04T23:59:59"},
		{name: "thursday", input: "2025-06-05T12:00:00"},
		{name: "friday", input: "2025-06-06T08:15:00"},
		{name: "saturday", input: "2025-06-07T19:00:00"},
		{name: "sunday", input: "2025-06-08T00:00:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseStamp(tt.input, loc)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			monday, sunday := WeekBounds(in)
			if got := FormatStamp(monday); got != "2025-06-02T00:00:00" {
				t.Errorf("monday = %s, want 2025-06-02T00:00:00", got)
			}
			if got := FormatStamp(sunday); got != "2025-06-08T00:00:00" {
				t.Errorf("sunday = %s, want 2025-06-08T00:00:00", got)
			}
			if monday.Weekday() != time.Monday {
				t.Errorf("monday weekday = %v", monday.Weekday())
			}
			if sunday.Weekday() != time.Sunday {
				t.Errorf("sunday weekday = %v", sunday.Weekday())
			}
		})
	}
}

func TestWeekBoundsAcrossDSTTransition(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	// The clock jumps forward on Sunday 2025-03-30. Calendar-day
	// arithmetic must still land exactly on midnight stamps.
	in, err := ParseStamp("2025-03-28T15:00:00", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	monday, sunday := WeekBounds(in)
	if got := FormatStamp(monday); got != "2025-03-24T00:00:00" {
		t.Errorf("monday = %s, want 2025-03-24T00:00:00", got)
	}
	if got := FormatStamp(sunday); got != "2025-03-30T00:00:00" {
		t.Errorf("sunday = %s, want 2025-03-30T00:00:00", got)
	}
}

func TestBucket(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	tests := []struct {
		input    string
		wantDay  string
		wantHour string
	}{
		{input: "2025-06-02T09:00:00", wantDay: "2025-06-02", wantHour: "09"},
		{input: "2025-06-02T09:59:59", wantDay: "2025-06-02", wantHour: "09"},
		{input: "2025-06-02T00:00:00", wantDay: "2025-06-02", wantHour: "00"},
		{input: "2025-06-02T23:30:00", wantDay: "2025-06-02", wantHour: "23"},
	}

	for _, tt := range tests {
		in, err := ParseStamp(tt.input, loc)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.input, err)
		}
		day, hour := Bucket(in)
		if day != tt.wantDay || hour != tt.wantHour {
			t.Errorf("Bucket(%s) = (%s, %s), want (%s, %s)", tt.input, day, hour, tt.wantDay, tt.wantHour)
		}
	}
}

func TestStampOrderIsChronological(t *testing.T) {
	loc := mustLocation(t, "Europe/Paris")

	stamps := []string{
		"2025-06-02T09:00:00",
		"2025-06-02T14:30:00",
		"2025-06-03T08:00:00",
		"2025-12-01T00:00:00",
		"2026-01-01T00:00:00",
	}

	for i := 1; i < len(stamps); i++ {
		a, err := ParseStamp(stamps[i-1], loc)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		b, err := ParseStamp(stamps[i], loc)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !a.Before(b) {
			t.Errorf("expected %s < %s chronologically", stamps[i-1], stamps[i])
		}
		if !(stamps[i-1] < stamps[i]) {
			t.Errorf("expected %s < %s lexicographically", stamps[i-1], stamps[i])
		}
	}
}
