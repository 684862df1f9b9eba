package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marchal/fieldplanner/pkg/models"
)

func (r *SQLiteRepo) CreateTechnician(ctx context.Context, t *models.Technician) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("technician is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO technicians (name, phone, email, password_hash) VALUES (?, ?, ?, ?)`,
		t.Name, t.Phone, t.Email, t.PasswordHash)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetTechnician(ctx context.Context, id int64) (*models.Technician, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, name, phone, email, password_hash FROM technicians WHERE id = ?`, id)

	t, err := scanTechnician(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return t, nil
}

// GetTechnicianByIdentifier matches the login identifier against name or
// email, case-insensitively. The lowest id wins when several rows match.
func (r *SQLiteRepo) GetTechnicianByIdentifier(ctx context.Context, identifier string) (*models.Technician, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, name, phone, email, password_hash FROM technicians
		 WHERE LOWER(name) = LOWER(?) OR LOWER(email) = LOWER(?)
		 ORDER BY id ASC LIMIT 1`,
		identifier, identifier)

	t, err := scanTechnician(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return t, nil
}

func (r *SQLiteRepo) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, name, phone, email, password_hash FROM technicians ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *t)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountTechnicians(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM technicians`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}

	return cnt, nil
}

func (r *SQLiteRepo) UpdateTechnician(ctx context.Context, t *models.Technician) error {
	if t == nil {
		return fmt.Errorf("technician is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE technicians SET name = ?, phone = ?, email = ? WHERE id = ?`,
		t.Name, t.Phone, t.Email, t.ID)
	return err
}

func (r *SQLiteRepo) SetTechnicianPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE technicians SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// DeleteTechnician removes the technician; their interventions survive with
// the assignment cleared by the schema's SET NULL rule.
func (r *SQLiteRepo) DeleteTechnician(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM technicians WHERE id = ?`, id)
	return err
}

func scanTechnician(scan func(dest ...any) error) (*models.Technician, error) {
	var t models.Technician
	var phone, email, hash sql.NullString
	if err := scan(&t.ID, &t.Name, &phone, &email, &hash); err != nil {
		return nil, err
	}

	t.Phone = phone.String
	t.Email = email.String
	t.PasswordHash = hash.String

	return &t, nil
}
