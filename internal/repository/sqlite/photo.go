package sqlite

import (
	"context"
	"database/sql"

	"github.com/marchal/fieldplanner/pkg/models"
)

func (r *SQLiteRepo) CreatePhoto(ctx context.Context, interventionID int64, filename string) (int64, error) {
	res, err := r.conn.Exec(ctx,
		`INSERT INTO photos (intervention_id, filename, created_at) VALUES (?, ?, ?)`,
		interventionID, filename, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPhoto(ctx context.Context, id int64) (*models.Photo, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, intervention_id, filename, created_at FROM photos WHERE id = ?`, id)

	var p models.Photo
	if err := row.Scan(&p.ID, &p.InterventionID, &p.Filename, &p.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

// ListPhotosByIntervention returns photos newest-first.
func (r *SQLiteRepo) ListPhotosByIntervention(ctx context.Context, interventionID int64) ([]models.Photo, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, intervention_id, filename, created_at FROM photos
		 WHERE intervention_id = ? ORDER BY created_at DESC, id DESC`, interventionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.InterventionID, &p.Filename, &p.Created); err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) DeletePhoto(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CreateClientPhoto(ctx context.Context, clientID int64, filename string) (int64, error) {
	res, err := r.conn.Exec(ctx,
		`INSERT INTO client_photos (client_id, filename, created_at) VALUES (?, ?, ?)`,
		clientID, filename, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListClientPhotos(ctx context.Context, clientID int64) ([]models.ClientPhoto, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, client_id, filename, created_at FROM client_photos
		 WHERE client_id = ? ORDER BY created_at DESC, id DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ClientPhoto
	for rows.Next() {
		var p models.ClientPhoto
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Filename, &p.Created); err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

// ListPhotoFilenames returns every referenced upload filename across both
// photo tables, for the orphan sweep.
func (r *SQLiteRepo) ListPhotoFilenames(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT filename FROM photos UNION SELECT filename FROM client_photos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		out = append(out, name)
	}

	return out, rows.Err()
}
