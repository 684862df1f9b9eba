// Package mock provides in-memory repository implementations for tests.
// Every method keeps data in plain maps guarded by a mutex and honors the
// (nil, nil) not-found convention of the real stores.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marchal/fieldplanner/internal/schedule"
	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

type Repo struct {
	mu sync.Mutex

	nextID        int64
	clients       map[int64]models.Client
	technicians   map[int64]models.Technician
	interventions map[int64]models.Intervention
	notes         map[int64]models.Note
	photos        map[int64]models.Photo
	clientPhotos  map[int64]models.ClientPhoto

	// FailWith, when set, makes every method return this error.
	FailWith error
}

var _ repository.ClientRepo = (*Repo)(nil)
var _ repository.TechnicianRepo = (*Repo)(nil)
var _ repository.InterventionRepo = (*Repo)(nil)
var _ repository.NoteRepo = (*Repo)(nil)
var _ repository.PhotoRepo = (*Repo)(nil)

func NewRepo() *Repo {
	return &Repo{
		clients:       make(map[int64]models.Client),
		technicians:   make(map[int64]models.Technician),
		interventions: make(map[int64]models.Intervention),
		notes:         make(map[int64]models.Note),
		photos:        make(map[int64]models.Photo),
		clientPhotos:  make(map[int64]models.ClientPhoto),
	}
}

func (r *Repo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *Repo) CreateClient(_ context.Context, c *models.Client) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	stored := *c
	stored.ID = id
	r.clients[id] = stored
	return id, nil
}

func (r *Repo) GetClient(_ context.Context, id int64) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *Repo) ListClients(_ context.Context) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) UpdateClient(_ context.Context, c *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	if _, ok := r.clients[c.ID]; !ok {
		return fmt.Errorf("client %d not found", c.ID)
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *Repo) DeleteClient(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	delete(r.clients, id)
	return nil
}

func (r *Repo) CreateTechnician(_ context.Context, t *models.Technician) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	stored := *t
	stored.ID = id
	r.technicians[id] = stored
	return id, nil
}

func (r *Repo) GetTechnician(_ context.Context, id int64) (*models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	t, ok := r.technicians[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *Repo) GetTechnicianByIdentifier(_ context.Context, identifier string) (*models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	needle := strings.ToLower(strings.TrimSpace(identifier))
	for _, t := range r.technicians {
		if strings.ToLower(t.Name) == needle || (t.Email != "" && strings.ToLower(t.Email) == needle) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (r *Repo) ListTechnicians(_ context.Context) ([]models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := make([]models.Technician, 0, len(r.technicians))
	for _, t := range r.technicians {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) CountTechnicians(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	return int64(len(r.technicians)), nil
}

func (r *Repo) UpdateTechnician(_ context.Context, t *models.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	existing, ok := r.technicians[t.ID]
	if !ok {
		return fmt.Errorf("technician %d not found", t.ID)
	}
	updated := *t
	updated.PasswordHash = existing.PasswordHash
	r.technicians[t.ID] = updated
	return nil
}

func (r *Repo) SetTechnicianPassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	t, ok := r.technicians[id]
	if !ok {
		return fmt.Errorf("technician %d not found", id)
	}
	t.PasswordHash = passwordHash
	r.technicians[id] = t
	return nil
}

func (r *Repo) DeleteTechnician(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	delete(r.technicians, id)
	return nil
}

func (r *Repo) CreateIntervention(_ context.Context, iv *models.Intervention) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	stored := *iv
	stored.ID = id
	r.interventions[id] = stored
	return id, nil
}

func (r *Repo) GetIntervention(_ context.Context, id int64) (*models.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	iv, ok := r.interventions[id]
	if !ok {
		return nil, nil
	}
	r.decorate(&iv)
	return &iv, nil
}

func (r *Repo) ListInterventions(_ context.Context, start, end string) ([]models.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := make([]models.Intervention, 0, len(r.interventions))
	for _, iv := range r.interventions {
		if start != "" && end != "" && (iv.ScheduledAt < start || iv.ScheduledAt > end) {
			continue
		}
		r.decorate(&iv)
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt != out[j].ScheduledAt {
			return out[i].ScheduledAt < out[j].ScheduledAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Repo) UpdateIntervention(_ context.Context, id int64, status, priority, description, scheduledAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	iv, ok := r.interventions[id]
	if !ok {
		return fmt.Errorf("intervention %d not found", id)
	}
	iv.Status = status
	iv.Priority = priority
	iv.Description = description
	iv.ScheduledAt = scheduledAt
	r.interventions[id] = iv
	return nil
}

func (r *Repo) SetCalendarEventID(_ context.Context, id int64, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	iv, ok := r.interventions[id]
	if !ok {
		return fmt.Errorf("intervention %d not found", id)
	}
	iv.CalendarEventID = eventID
	r.interventions[id] = iv
	return nil
}

// decorate fills the denormalized display names the real store joins in.
// Caller holds the lock.
func (r *Repo) decorate(iv *models.Intervention) {
	if c, ok := r.clients[iv.ClientID]; ok {
		iv.ClientName = c.Name
	}
	if iv.TechnicianID != nil {
		if t, ok := r.technicians[*iv.TechnicianID]; ok {
			iv.TechnicianName = t.Name
		}
	}
}

func (r *Repo) CreateNote(_ context.Context, n *models.Note) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	stored := *n
	stored.ID = id
	stored.Created = time.Now().UTC().UnixMilli()
	r.notes[id] = stored
	return id, nil
}

func (r *Repo) ListNotesByIntervention(_ context.Context, interventionID int64) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := []models.Note{}
	for _, n := range r.notes {
		if n.InterventionID == interventionID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Repo) CreatePhoto(_ context.Context, interventionID int64, filename string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	r.photos[id] = models.Photo{
		ID:             id,
		InterventionID: interventionID,
		Filename:       filename,
		Created:        time.Now().UTC().UnixMilli(),
	}
	return id, nil
}

func (r *Repo) GetPhoto(_ context.Context, id int64) (*models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	p, ok := r.photos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Repo) ListPhotosByIntervention(_ context.Context, interventionID int64) ([]models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := []models.Photo{}
	for _, p := range r.photos {
		if p.InterventionID == interventionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Repo) DeletePhoto(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	delete(r.photos, id)
	return nil
}

func (r *Repo) CreateClientPhoto(_ context.Context, clientID int64, filename string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	id := r.id()
	r.clientPhotos[id] = models.ClientPhoto{
		ID:       id,
		ClientID: clientID,
		Filename: filename,
		Created:  time.Now().UTC().UnixMilli(),
	}
	return id, nil
}

func (r *Repo) ListClientPhotos(_ context.Context, clientID int64) ([]models.ClientPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := []models.ClientPhoto{}
	for _, p := range r.clientPhotos {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Repo) ListPhotoFilenames(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	out := []string{}
	for _, p := range r.photos {
		out = append(out, p.Filename)
	}
	for _, p := range r.clientPhotos {
		out = append(out, p.Filename)
	}
	sort.Strings(out)
	return out, nil
}

// Syncer is a scripted schedule.Syncer recording every call it receives.
type Syncer struct {
	mu sync.Mutex

	// NextEventID is returned by CreateEvent when CreateErr is nil.
	NextEventID string
	CreateErr   error
	UpdateErr   error

	Created []schedule.EventInput
	Patched []PatchCall
}

type PatchCall struct {
	EventID         string
	Start           time.Time
	DurationMinutes int
}

var _ schedule.Syncer = (*Syncer)(nil)

func (s *Syncer) CreateEvent(_ context.Context, ev schedule.EventInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.Created = append(s.Created, ev)
	return s.NextEventID, nil
}

func (s *Syncer) UpdateEvent(_ context.Context, eventID string, start time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.Patched = append(s.Patched, PatchCall{EventID: eventID, Start: start, DurationMinutes: durationMinutes})
	return nil
}

// PatchCount returns how many window patches the syncer accepted.
func (s *Syncer) PatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Patched)
}
