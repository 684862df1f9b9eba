package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marchal/fieldplanner/pkg/models"
)

func (r *SQLiteRepo) CreateClient(ctx context.Context, c *models.Client) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO clients (name, address, gps_lat, gps_lng, phone, robot_model) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Address, c.GPSLat, c.GPSLng, c.Phone, c.RobotModel)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, name, address, gps_lat, gps_lng, phone, robot_model FROM clients WHERE id = ?`, id)

	c, err := scanClient(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, name, address, gps_lat, gps_lng, phone, robot_model FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateClient(ctx context.Context, c *models.Client) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE clients SET name = ?, address = ?, gps_lat = ?, gps_lng = ?, phone = ?, robot_model = ? WHERE id = ?`,
		c.Name, c.Address, c.GPSLat, c.GPSLng, c.Phone, c.RobotModel, c.ID)
	return err
}

// DeleteClient removes the client; dependent interventions (and their notes
// and photos) go with it through the schema's cascade rules, keeping
// intervention history scoped to existing clients.
func (r *SQLiteRepo) DeleteClient(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM clients WHERE id = ?`, id)
	return err
}

func scanClient(scan func(dest ...any) error) (*models.Client, error) {
	var c models.Client
	var address, phone, robotModel sql.NullString
	var lat, lng sql.NullFloat64
	if err := scan(&c.ID, &c.Name, &address, &lat, &lng, &phone, &robotModel); err != nil {
		return nil, err
	}

	c.Address = address.String
	c.Phone = phone.String
	c.RobotModel = robotModel.String
	if lat.Valid {
		v := lat.Float64
		c.GPSLat = &v
	}
	if lng.Valid {
		v := lng.Float64
		c.GPSLng = &v
	}

	return &c, nil
}
