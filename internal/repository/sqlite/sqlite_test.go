package sqlite_test

import (
	"context"
	"testing"

	dbfs "github.com/marchal/fieldplanner/db"
	"github.com/marchal/fieldplanner/internal/db"
	"github.com/marchal/fieldplanner/internal/repository/sqlite"
	"github.com/marchal/fieldplanner/pkg/models"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()

	ctx := context.Background()
	conn, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(conn)
}

func seedClient(t *testing.T, repo *sqlite.SQLiteRepo, name string) int64 {
	t.Helper()

	id, err := repo.CreateClient(context.Background(), &models.Client{Name: name})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}

	return id
}

func seedTechnician(t *testing.T, repo *sqlite.SQLiteRepo, name, phone, email string) int64 {
	t.Helper()

	id, err := repo.CreateTechnician(context.Background(), &models.Technician{Name: name, Phone: phone, Email: email})
	if err != nil {
		t.Fatalf("seed technician: %v", err)
	}

	return id
}

func seedIntervention(t *testing.T, repo *sqlite.SQLiteRepo, clientID int64, techID *int64, scheduledAt string) int64 {
	t.Helper()

	id, err := repo.CreateIntervention(context.Background(), &models.Intervention{
		ClientID:     clientID,
		TechnicianID: techID,
		ScheduledAt:  scheduledAt,
		Status:       models.StatusTodo,
		Priority:     models.PriorityNormal,
		Description:  "visit",
	})
	if err != nil {
		t.Fatalf("seed intervention: %v", err)
	}

	return id
}

func TestClientCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	lat, lng := 45.12, 5.73
	id, err := repo.CreateClient(ctx, &models.Client{
		Name:       "Farm A",
		Address:    "12 chemin des Vignes",
		GPSLat:     &lat,
		GPSLng:     &lng,
		Phone:      "0601020304",
		RobotModel: "X-500",
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	got, err := repo.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got == nil || got.Name != "Farm A" || got.RobotModel != "X-500" {
		t.Fatalf("GetClient = %+v", got)
	}
	if got.GPSLat == nil || *got.GPSLat != lat {
		t.Errorf("gps_lat = %v, want %v", got.GPSLat, lat)
	}

	got.Name = "Farm A (north)"
	got.GPSLat = nil
	if err := repo.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	updated, err := repo.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient after update: %v", err)
	}
	if updated.Name != "Farm A (north)" {
		t.Errorf("name = %s", updated.Name)
	}
	if updated.GPSLat != nil {
		t.Errorf("gps_lat = %v, want nil after clearing", updated.GPSLat)
	}

	list, err := repo.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListClients returned %d rows", len(list))
	}

	if err := repo.DeleteClient(ctx, id); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if gone, _ := repo.GetClient(ctx, id); gone != nil {
		t.Error("client still present after delete")
	}
}

func TestGetClientNotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetClient(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got != nil {
		t.Errorf("GetClient = %+v, want nil for missing row", got)
	}
}

func TestTechnicianIdentifierLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedTechnician(t, repo, "Marie Dupont", "0601020304", "marie@example.test")

	tests := []struct {
		name       string
		identifier string
		found      bool
	}{
		{name: "exact name", identifier: "Marie Dupont", found: true},
		{name: "name case-insensitive", identifier: "marie dupont", found: true},
		{name: "email", identifier: "marie@example.test", found: true},
		{name: "email case-insensitive", identifier: "MARIE@EXAMPLE.TEST", found: true},
		{name: "unknown", identifier: "jean", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetTechnicianByIdentifier(ctx, tt.identifier)
			if err != nil {
				t.Fatalf("GetTechnicianByIdentifier: %v", err)
			}
			if (got != nil) != tt.found {
				t.Errorf("found = %v, want %v", got != nil, tt.found)
			}
		})
	}
}

func TestTechnicianPasswordLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	count, err := repo.CountTechnicians(ctx)
	if err != nil || count != 0 {
		t.Fatalf("CountTechnicians = %d, %v; want 0", count, err)
	}

	id := seedTechnician(t, repo, "Marie", "0601020304", "")

	got, err := repo.GetTechnician(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetTechnician: %v", err)
	}
	if got.PasswordHash != "" {
		t.Errorf("fresh technician has password hash %q", got.PasswordHash)
	}

	if err := repo.SetTechnicianPassword(ctx, id, "$2a$10$fakehash"); err != nil {
		t.Fatalf("SetTechnicianPassword: %v", err)
	}
	got, _ = repo.GetTechnician(ctx, id)
	if got.PasswordHash != "$2a$10$fakehash" {
		t.Errorf("password hash = %q", got.PasswordHash)
	}

	// Profile updates must not clear the credential.
	got.Name = "Marie D."
	if err := repo.UpdateTechnician(ctx, got); err != nil {
		t.Fatalf("UpdateTechnician: %v", err)
	}
	after, _ := repo.GetTechnician(ctx, id)
	if after.PasswordHash != "$2a$10$fakehash" {
		t.Errorf("update cleared the password hash")
	}

	count, _ = repo.CountTechnicians(ctx)
	if count != 1 {
		t.Errorf("CountTechnicians = %d, want 1", count)
	}
}

func TestInterventionRangeFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	techID := seedTechnician(t, repo, "Marie", "", "")

	seedIntervention(t, repo, clientID, nil, "2025-06-01T23:59:59")  // sunday before
	inWeek1 := seedIntervention(t, repo, clientID, &techID, "2025-06-02T00:00:00") // monday midnight, inclusive
	inWeek2 := seedIntervention(t, repo, clientID, nil, "2025-06-05T14:00:00")
	inWeek3 := seedIntervention(t, repo, clientID, nil, "2025-06-08T23:59:59") // end bound, inclusive
	seedIntervention(t, repo, clientID, nil, "2025-06-09T00:00:00")  // next monday

	list, err := repo.ListInterventions(ctx, "2025-06-02T00:00:00", "2025-06-08T23:59:59")
	if err != nil {
		t.Fatalf("ListInterventions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("range returned %d rows, want 3", len(list))
	}
	if list[0].ID != inWeek1 || list[1].ID != inWeek2 || list[2].ID != inWeek3 {
		t.Errorf("order = [%d %d %d], want ascending by scheduled_at", list[0].ID, list[1].ID, list[2].ID)
	}

	// Display names are joined in.
	if list[0].ClientName != "Farm A" {
		t.Errorf("client_name = %q", list[0].ClientName)
	}
	if list[0].TechnicianName != "Marie" {
		t.Errorf("technician_name = %q", list[0].TechnicianName)
	}
	if list[1].TechnicianName != "" {
		t.Errorf("unassigned row has technician_name %q", list[1].TechnicianName)
	}

	// No bounds returns everything.
	all, err := repo.ListInterventions(ctx, "", "")
	if err != nil {
		t.Fatalf("ListInterventions all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("unbounded list returned %d rows, want 5", len(all))
	}
}

func TestInterventionUpdateAndEventID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	id := seedIntervention(t, repo, clientID, nil, "2025-06-02T09:00:00")

	if err := repo.UpdateIntervention(ctx, id, models.StatusDone, models.PriorityUrgent, "done, blades swapped", "2025-06-03T14:00:00"); err != nil {
		t.Fatalf("UpdateIntervention: %v", err)
	}

	got, err := repo.GetIntervention(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetIntervention: %v", err)
	}
	if got.Status != models.StatusDone || got.Priority != models.PriorityUrgent {
		t.Errorf("update did not replace fields: %+v", got)
	}
	if got.ScheduledAt != "2025-06-03T14:00:00" {
		t.Errorf("scheduled_at = %s", got.ScheduledAt)
	}
	if got.CalendarEventID != "" {
		t.Errorf("calendar_event_id = %q, want empty before binding", got.CalendarEventID)
	}

	if err := repo.SetCalendarEventID(ctx, id, "evt-42"); err != nil {
		t.Fatalf("SetCalendarEventID: %v", err)
	}
	got, _ = repo.GetIntervention(ctx, id)
	if got.CalendarEventID != "evt-42" {
		t.Errorf("calendar_event_id = %q, want evt-42", got.CalendarEventID)
	}

	// Full-replace update must not touch the binding.
	if err := repo.UpdateIntervention(ctx, id, got.Status, got.Priority, got.Description, got.ScheduledAt); err != nil {
		t.Fatalf("UpdateIntervention: %v", err)
	}
	got, _ = repo.GetIntervention(ctx, id)
	if got.CalendarEventID != "evt-42" {
		t.Errorf("update cleared the event binding")
	}
}

func TestInterventionDefaultDuration(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	id, err := repo.CreateIntervention(ctx, &models.Intervention{
		ClientID:    clientID,
		ScheduledAt: "2025-06-02T09:00:00",
		Description: "visit",
	})
	if err != nil {
		t.Fatalf("CreateIntervention: %v", err)
	}

	got, _ := repo.GetIntervention(ctx, id)
	if got.DurationMinutes != models.DefaultDurationMinutes {
		t.Errorf("duration = %d, want default %d", got.DurationMinutes, models.DefaultDurationMinutes)
	}
}

func TestDeleteClientCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	ivID := seedIntervention(t, repo, clientID, nil, "2025-06-02T09:00:00")

	if _, err := repo.CreateNote(ctx, &models.Note{InterventionID: ivID, Author: "Marie", Content: "gate code 1234"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := repo.CreatePhoto(ctx, ivID, "abc.jpg"); err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	if err := repo.DeleteClient(ctx, clientID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	if iv, _ := repo.GetIntervention(ctx, ivID); iv != nil {
		t.Error("intervention survived client delete")
	}
	notes, _ := repo.ListNotesByIntervention(ctx, ivID)
	if len(notes) != 0 {
		t.Error("notes survived cascade")
	}
	photos, _ := repo.ListPhotosByIntervention(ctx, ivID)
	if len(photos) != 0 {
		t.Error("photos survived cascade")
	}
}

func TestDeleteTechnicianUnassigns(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	techID := seedTechnician(t, repo, "Marie", "", "")
	ivID := seedIntervention(t, repo, clientID, &techID, "2025-06-02T09:00:00")

	if err := repo.DeleteTechnician(ctx, techID); err != nil {
		t.Fatalf("DeleteTechnician: %v", err)
	}

	iv, err := repo.GetIntervention(ctx, ivID)
	if err != nil || iv == nil {
		t.Fatalf("GetIntervention: %v", err)
	}
	if iv.TechnicianID != nil {
		t.Errorf("technician_id = %v, want NULL after technician delete", *iv.TechnicianID)
	}
}

func TestNotesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	ivID := seedIntervention(t, repo, clientID, nil, "2025-06-02T09:00:00")

	for _, content := range []string{"first", "second", "third"} {
		if _, err := repo.CreateNote(ctx, &models.Note{InterventionID: ivID, Author: "Marie", Content: content}); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
	}

	notes, err := repo.ListNotesByIntervention(ctx, ivID)
	if err != nil {
		t.Fatalf("ListNotesByIntervention: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("got %d notes", len(notes))
	}
	if notes[0].Content != "third" {
		t.Errorf("first listed note = %q, want newest", notes[0].Content)
	}
}

func TestPhotoFilenamesUnion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	ivID := seedIntervention(t, repo, clientID, nil, "2025-06-02T09:00:00")

	if _, err := repo.CreatePhoto(ctx, ivID, "iv.jpg"); err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}
	if _, err := repo.CreateClientPhoto(ctx, clientID, "site.jpg"); err != nil {
		t.Fatalf("CreateClientPhoto: %v", err)
	}

	names, err := repo.ListPhotoFilenames(ctx)
	if err != nil {
		t.Fatalf("ListPhotoFilenames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d filenames, want 2", len(names))
	}

	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["iv.jpg"] || !seen["site.jpg"] {
		t.Errorf("filenames = %v", names)
	}
}

func TestPhotoDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := seedClient(t, repo, "Farm A")
	ivID := seedIntervention(t, repo, clientID, nil, "2025-06-02T09:00:00")

	photoID, err := repo.CreatePhoto(ctx, ivID, "abc.jpg")
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	got, err := repo.GetPhoto(ctx, photoID)
	if err != nil || got == nil || got.Filename != "abc.jpg" {
		t.Fatalf("GetPhoto = %+v, %v", got, err)
	}

	if err := repo.DeletePhoto(ctx, photoID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if gone, _ := repo.GetPhoto(ctx, photoID); gone != nil {
		t.Error("photo still present after delete")
	}
}
