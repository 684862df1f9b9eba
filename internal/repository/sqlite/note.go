package sqlite

import (
	"context"
	"fmt"

	"github.com/marchal/fieldplanner/pkg/models"
)

func (r *SQLiteRepo) CreateNote(ctx context.Context, n *models.Note) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("note is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO notes (intervention_id, author, content, created_at) VALUES (?, ?, ?, ?)`,
		n.InterventionID, n.Author, n.Content, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ListNotesByIntervention returns notes newest-first.
func (r *SQLiteRepo) ListNotesByIntervention(ctx context.Context, interventionID int64) ([]models.Note, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, intervention_id, author, content, created_at FROM notes
		 WHERE intervention_id = ? ORDER BY created_at DESC, id DESC`, interventionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.InterventionID, &n.Author, &n.Content, &n.Created); err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, rows.Err()
}
