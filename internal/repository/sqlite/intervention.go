package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marchal/fieldplanner/pkg/models"
)

const interventionColumns = `
	i.id, i.client_id, i.technician_id, i.scheduled_at, i.duration_minutes,
	i.status, i.priority, i.description, i.calendar_event_id,
	c.name AS client_name, t.name AS technician_name`

const interventionFrom = `
	FROM interventions i
	LEFT JOIN clients c ON i.client_id = c.id
	LEFT JOIN technicians t ON i.technician_id = t.id`

func (r *SQLiteRepo) CreateIntervention(ctx context.Context, iv *models.Intervention) (int64, error) {
	if iv == nil {
		return 0, fmt.Errorf("intervention is nil")
	}

	duration := iv.DurationMinutes
	if duration <= 0 {
		duration = models.DefaultDurationMinutes
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO interventions (client_id, technician_id, scheduled_at, duration_minutes, status, priority, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		iv.ClientID, iv.TechnicianID, iv.ScheduledAt, duration, iv.Status, iv.Priority, iv.Description)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetIntervention(ctx context.Context, id int64) (*models.Intervention, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+interventionColumns+interventionFrom+` WHERE i.id = ?`, id)

	iv, err := scanIntervention(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return iv, nil
}

// ListInterventions returns interventions ordered by scheduled_at ascending.
// When both bounds are non-empty the filter is an inclusive BETWEEN on the
// stored stamp strings, compared exactly as stored.
func (r *SQLiteRepo) ListInterventions(ctx context.Context, start, end string) ([]models.Intervention, error) {
	query := `SELECT ` + interventionColumns + interventionFrom
	args := []any{}
	if start != "" && end != "" {
		query += ` WHERE i.scheduled_at BETWEEN ? AND ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY i.scheduled_at`

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Intervention
	for rows.Next() {
		iv, err := scanIntervention(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *iv)
	}

	return out, rows.Err()
}

// UpdateIntervention replaces the four mutable fields in one statement.
// Partial updates do not exist at this layer: callers resend every field.
func (r *SQLiteRepo) UpdateIntervention(ctx context.Context, id int64, status, priority, description, scheduledAt string) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE interventions SET status = ?, priority = ?, description = ?, scheduled_at = ? WHERE id = ?`,
		status, priority, description, scheduledAt, id)
	return err
}

func (r *SQLiteRepo) SetCalendarEventID(ctx context.Context, id int64, eventID string) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE interventions SET calendar_event_id = ? WHERE id = ?`, eventID, id)
	return err
}

func scanIntervention(scan func(dest ...any) error) (*models.Intervention, error) {
	var iv models.Intervention
	var techID sql.NullInt64
	var eventID, clientName, techName sql.NullString
	if err := scan(
		&iv.ID, &iv.ClientID, &techID, &iv.ScheduledAt, &iv.DurationMinutes,
		&iv.Status, &iv.Priority, &iv.Description, &eventID,
		&clientName, &techName,
	); err != nil {
		return nil, err
	}

	if techID.Valid {
		v := techID.Int64
		iv.TechnicianID = &v
	}
	iv.CalendarEventID = eventID.String
	iv.ClientName = clientName.String
	iv.TechnicianName = techName.String

	return &iv, nil
}
