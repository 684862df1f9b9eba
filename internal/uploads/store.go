// Package uploads stores photo files on disk under random names. The
// database row referencing a filename is the source of truth; files whose
// row disappeared are orphans and get removed by the periodic sweep.
package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory files are served from.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the uploaded content under a fresh random name, keeping the
// original extension, and returns the stored filename.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by its filename. Names containing path
// separators are rejected outright.
func (s *Store) Remove(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}

	return nil
}

// SweepOrphans removes files that no stored photo row references anymore.
// known lists every referenced filename; the sweep is best-effort and
// reports how many files it removed.
func (s *Store) SweepOrphans(ctx context.Context, known func(ctx context.Context) ([]string, error)) (int, error) {
	referenced, err := known(ctx)
	if err != nil {
		return 0, fmt.Errorf("list referenced filenames: %w", err)
	}

	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read uploads dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Error("orphan sweep remove failed", "file", e.Name(), "err", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("orphaned uploads removed", "count", removed)
	}

	return removed, nil
}
