package sqlite

import (
	"time"

	"github.com/marchal/fieldplanner/internal/db"
	"github.com/marchal/fieldplanner/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.ClientRepo = (*SQLiteRepo)(nil)
var _ repository.TechnicianRepo = (*SQLiteRepo)(nil)
var _ repository.InterventionRepo = (*SQLiteRepo)(nil)
var _ repository.NoteRepo = (*SQLiteRepo)(nil)
var _ repository.PhotoRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
