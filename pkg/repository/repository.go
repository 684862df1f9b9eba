package repository

import (
	"context"

	"github.com/marchal/fieldplanner/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookup methods return (nil, nil) when the row does not exist; callers map
// that to their own not-found handling.

type ClientRepo interface {
	CreateClient(ctx context.Context, c *models.Client) (int64, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id int64) error
}

type TechnicianRepo interface {
	CreateTechnician(ctx context.Context, t *models.Technician) (int64, error)
	GetTechnician(ctx context.Context, id int64) (*models.Technician, error)
	// GetTechnicianByIdentifier matches name or email, case-insensitively.
	GetTechnicianByIdentifier(ctx context.Context, identifier string) (*models.Technician, error)
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	CountTechnicians(ctx context.Context) (int64, error)
	UpdateTechnician(ctx context.Context, t *models.Technician) error
	SetTechnicianPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteTechnician(ctx context.Context, id int64) error
}

type InterventionRepo interface {
	CreateIntervention(ctx context.Context, iv *models.Intervention) (int64, error)
	GetIntervention(ctx context.Context, id int64) (*models.Intervention, error)
	// ListInterventions filters by scheduled_at BETWEEN start AND end
	// (inclusive) when both bounds are non-empty, ordered by scheduled_at
	// ascending. Bounds are canonical stamp strings and are compared as
	// stored, never reinterpreted.
	ListInterventions(ctx context.Context, start, end string) ([]models.Intervention, error)
	// UpdateIntervention is a full-field replace of the four mutable
	// fields; callers must resend current values for fields they do not
	// intend to change.
	UpdateIntervention(ctx context.Context, id int64, status, priority, description, scheduledAt string) error
	SetCalendarEventID(ctx context.Context, id int64, eventID string) error
}

type NoteRepo interface {
	CreateNote(ctx context.Context, n *models.Note) (int64, error)
	ListNotesByIntervention(ctx context.Context, interventionID int64) ([]models.Note, error)
}

type PhotoRepo interface {
	CreatePhoto(ctx context.Context, interventionID int64, filename string) (int64, error)
	GetPhoto(ctx context.Context, id int64) (*models.Photo, error)
	ListPhotosByIntervention(ctx context.Context, interventionID int64) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, id int64) error
	CreateClientPhoto(ctx context.Context, clientID int64, filename string) (int64, error)
	ListClientPhotos(ctx context.Context, clientID int64) ([]models.ClientPhoto, error)
	// ListPhotoFilenames returns every stored filename across both photo
	// tables; the uploads sweep uses it to detect orphaned files.
	ListPhotoFilenames(ctx context.Context) ([]string, error)
}
