package models

// Client is a customer site that receives maintenance visits.
type Client struct {
	ID         int64    `json:"id" db:"id"`
	Name       string   `json:"name" db:"name" validate:"required"`
	Address    string   `json:"address,omitempty" db:"address"`
	GPSLat     *float64 `json:"gps_lat,omitempty" db:"gps_lat"`
	GPSLng     *float64 `json:"gps_lng,omitempty" db:"gps_lng"`
	Phone      string   `json:"phone,omitempty" db:"phone"`
	RobotModel string   `json:"robot_model,omitempty" db:"robot_model"`
}

// Technician is a field worker who can be assigned to interventions.
// PasswordHash is a bcrypt hash; an empty hash means the credential has not
// been set yet and the phone-as-password fallback applies at login.
type Technician struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Phone        string `json:"phone,omitempty" db:"phone"`
	Email        string `json:"email,omitempty" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// Intervention is a scheduled maintenance visit tying one client, optionally
// one technician, to a time window.
//
// ScheduledAt is a wall-clock stamp in the canonical `YYYY-MM-DDTHH:MM:SS`
// form, interpreted in the configured display timezone. CalendarEventID is
// the only binding to the mirrored external calendar event; it stays empty
// when event creation failed or sync is disabled.
type Intervention struct {
	ID              int64  `json:"id" db:"id"`
	ClientID        int64  `json:"client_id" db:"client_id"`
	TechnicianID    *int64 `json:"technician_id,omitempty" db:"technician_id"`
	ScheduledAt     string `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`
	Status          string `json:"status" db:"status"`
	Priority        string `json:"priority" db:"priority"`
	Description     string `json:"description" db:"description"`
	CalendarEventID string `json:"calendar_event_id,omitempty" db:"calendar_event_id"`

	// Denormalized display fields populated by list/get joins.
	ClientName     string `json:"client_name,omitempty" db:"client_name"`
	TechnicianName string `json:"technician_name,omitempty" db:"technician_name"`
}

// Intervention status and priority values as the UI enumerates them.
// Storage keeps them free-text.
const (
	StatusTodo       = "to do"
	StatusInProgress = "in progress"
	StatusDone       = "done"

	PriorityNormal = "normal"
	PriorityUrgent = "urgent"

	DefaultDurationMinutes = 60
)

// Note is an append-only free-text annotation on an intervention.
type Note struct {
	ID             int64  `json:"id" db:"id"`
	InterventionID int64  `json:"intervention_id" db:"intervention_id"`
	Author         string `json:"author" db:"author"`
	Content        string `json:"content" db:"content"`
	Created        int64  `json:"created_at" db:"created_at"`
}

// Photo is an uploaded image attached to an intervention.
type Photo struct {
	ID             int64  `json:"id" db:"id"`
	InterventionID int64  `json:"intervention_id" db:"intervention_id"`
	Filename       string `json:"filename" db:"filename"`
	Created        int64  `json:"created_at" db:"created_at"`
}

// ClientPhoto is an uploaded image attached directly to a client record.
type ClientPhoto struct {
	ID       int64  `json:"id" db:"id"`
	ClientID int64  `json:"client_id" db:"client_id"`
	Filename string `json:"filename" db:"filename"`
	Created  int64  `json:"created_at" db:"created_at"`
}
