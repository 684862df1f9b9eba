package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

// EventInput describes the external calendar event mirrored from an
// intervention.
type EventInput struct {
	Title           string
	Description     string
	Start           time.Time
	DurationMinutes int
}

// Syncer mirrors intervention schedules into an external calendar. Both
// operations are fire-and-forget relative to the local mutation: the
// service logs their errors and never lets them fail the triggering write.
type Syncer interface {
	CreateEvent(ctx context.Context, ev EventInput) (string, error)
	// UpdateEvent patches only the time window of an existing event.
	// An empty eventID must be a no-op, never a create.
	UpdateEvent(ctx context.Context, eventID string, start time.Time, durationMinutes int) error
}

// NoSync is the Syncer used when no external calendar is configured.
type NoSync struct{}

func (NoSync) CreateEvent(context.Context, EventInput) (string, error) { return "", nil }
func (NoSync) UpdateEvent(context.Context, string, time.Time, int) error {
	return nil
}

// Service owns intervention scheduling: validation, persistence and the
// one-way-out calendar sync that follows every schedule change.
type Service struct {
	interventions repository.InterventionRepo
	clients       repository.ClientRepo
	syncer        Syncer
	logger        *slog.Logger
	loc           *time.Location
}

func NewService(iv repository.InterventionRepo, cl repository.ClientRepo, syncer Syncer, logger *slog.Logger, loc *time.Location) *Service {
	if syncer == nil {
		syncer = NoSync{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{interventions: iv, clients: cl, syncer: syncer, logger: logger, loc: loc}
}

// Location returns the display timezone all stamps are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// CreateInput carries the fields of a new intervention. Zero values for
// DurationMinutes, Status and Priority take their defaults.
type CreateInput struct {
	ClientID        int64
	TechnicianID    *int64
	ScheduledAt     string
	DurationMinutes int
	Status          string
	Priority        string
	Description     string
}

// Create validates and persists a new intervention, then attempts to mirror
// it into the external calendar. A failed event creation leaves the record
// permanently unbound (calendar_event_id stays empty); the create itself
// still succeeds.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Intervention, error) {
	if in.ClientID <= 0 {
		return nil, invalidf("client_id", "required")
	}
	client, err := s.clients.GetClient(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("lookup client: %w", err)
	}
	if client == nil {
		return nil, invalidf("client_id", "client %d does not exist", in.ClientID)
	}
	if in.Description == "" {
		return nil, invalidf("description", "required")
	}
	start, err := ParseStamp(in.ScheduledAt, s.loc)
	if err != nil {
		return nil, invalidf("scheduled_at", "unparseable stamp %q", in.ScheduledAt)
	}

	iv := &models.Intervention{
		ClientID:        in.ClientID,
		TechnicianID:    in.TechnicianID,
		ScheduledAt:     FormatStamp(start),
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		Priority:        in.Priority,
		Description:     in.Description,
	}
	if iv.DurationMinutes <= 0 {
		iv.DurationMinutes = models.DefaultDurationMinutes
	}
	if iv.Status == "" {
		iv.Status = models.StatusTodo
	}
	if iv.Priority == "" {
		iv.Priority = models.PriorityNormal
	}

	id, err := s.interventions.CreateIntervention(ctx, iv)
	if err != nil {
		return nil, fmt.Errorf("store intervention: %w", err)
	}
	iv.ID = id

	// Calendar sync is best-effort: the record is already committed and a
	// provider failure must not surface to the caller.
	eventID, err := s.syncer.CreateEvent(ctx, EventInput{
		Title:           client.Name,
		Description:     iv.Description,
		Start:           start,
		DurationMinutes: iv.DurationMinutes,
	})
	if err != nil {
		s.logger.Error("calendar event creation failed", "intervention_id", id, "err", err)
	} else if eventID != "" {
		if err := s.interventions.SetCalendarEventID(ctx, id, eventID); err != nil {
			s.logger.Error("storing calendar event id failed", "intervention_id", id, "err", err)
		}
	}

	return s.refresh(ctx, id)
}

// UpdateInput is the full-replace PUT body: all four mutable fields must be
// sent on every call, the UI resends current values for untouched fields.
type UpdateInput struct {
	Status      string
	Priority    string
	Description string
	ScheduledAt string
}

// Update replaces the four mutable fields in one call and patches the bound
// external event's window. Store failure aborts and surfaces; sync failure
// is logged and absorbed.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Intervention, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	start, err := ParseStamp(in.ScheduledAt, s.loc)
	if err != nil {
		return nil, invalidf("scheduled_at", "unparseable stamp %q", in.ScheduledAt)
	}

	if err := s.interventions.UpdateIntervention(ctx, id, in.Status, in.Priority, in.Description, FormatStamp(start)); err != nil {
		return nil, fmt.Errorf("update intervention: %w", err)
	}

	s.patchEvent(ctx, current, start)

	return s.refresh(ctx, id)
}

// Reschedule moves an intervention to a new instant, preserving the other
// mutable fields via the store's full-replace contract. Rescheduling to the
// current instant is a valid no-op that still runs every step, so repeated
// calls with the same target are idempotent.
func (s *Service) Reschedule(ctx context.Context, id int64, newScheduledAt string) (*models.Intervention, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	start, err := ParseStamp(newScheduledAt, s.loc)
	if err != nil {
		return nil, invalidf("scheduled_at", "unparseable stamp %q", newScheduledAt)
	}

	if err := s.interventions.UpdateIntervention(ctx, id, current.Status, current.Priority, current.Description, FormatStamp(start)); err != nil {
		return nil, fmt.Errorf("update intervention: %w", err)
	}

	s.patchEvent(ctx, current, start)

	return s.refresh(ctx, id)
}

// MoveToCell reschedules from a grid drop gesture: the (day, hour) cell is
// composed back into a target instant and applied like any reschedule.
func (s *Service) MoveToCell(ctx context.Context, id int64, dayKey, hourKey string) (*models.Intervention, error) {
	target, err := TargetFromDrop(dayKey, hourKey)
	if err != nil {
		return nil, err
	}

	return s.Reschedule(ctx, id, target)
}

func (s *Service) load(ctx context.Context, id int64) (*models.Intervention, error) {
	iv, err := s.interventions.GetIntervention(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load intervention: %w", err)
	}
	if iv == nil {
		return nil, ErrNotFound
	}

	return iv, nil
}

// patchEvent mirrors a schedule change to the bound external event, if any.
// Records without an event id are skipped: update never creates an event.
func (s *Service) patchEvent(ctx context.Context, current *models.Intervention, start time.Time) {
	if current.CalendarEventID == "" {
		return
	}

	duration := current.DurationMinutes
	if duration <= 0 {
		duration = models.DefaultDurationMinutes
	}

	if err := s.syncer.UpdateEvent(ctx, current.CalendarEventID, start, duration); err != nil {
		s.logger.Error("calendar event patch failed",
			"intervention_id", current.ID,
			"event_id", current.CalendarEventID,
			"err", err,
		)
	}
}

func (s *Service) refresh(ctx context.Context, id int64) (*models.Intervention, error) {
	iv, err := s.interventions.GetIntervention(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload intervention: %w", err)
	}
	if iv == nil {
		return nil, ErrNotFound
	}

	return iv, nil
}
