package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	return store
}

func TestSaveKeepsExtension(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("IMG_2041.JPG", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("stored name %q does not keep a lowercased extension", name)
	}
	if strings.Contains(name, "IMG_2041") {
		t.Errorf("stored name %q leaks the original filename", name)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		name, err := store.Save("photo.png", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Save #%d: %v", i+1, err)
		}
		if seen[name] {
			t.Fatalf("duplicate stored name %q", name)
		}
		seen[name] = true
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("photo.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Error("file still present after Remove")
	}

	// Removing a missing file is not an error.
	if err := store.Remove(name); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}

func TestRemoveRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "../escape.txt", "a/b.png", "/etc/passwd"} {
		if err := store.Remove(name); err == nil {
			t.Errorf("Remove(%q) accepted a non-basename", name)
		}
	}
}

func TestSweepOrphans(t *testing.T) {
	store := newTestStore(t)

	kept, err := store.Save("kept.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	orphan, err := store.Save("orphan.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	removed, err := store.SweepOrphans(context.Background(), func(context.Context) ([]string, error) {
		return []string{kept}, nil
	})
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d files, want 1", removed)
	}

	if _, err := os.Stat(filepath.Join(store.Dir(), kept)); err != nil {
		t.Error("referenced file was swept")
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), orphan)); !os.IsNotExist(err) {
		t.Error("orphan survived the sweep")
	}
}

func TestSweepOrphansListFailure(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("photo.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err = store.SweepOrphans(context.Background(), func(context.Context) ([]string, error) {
		return nil, os.ErrDeadlineExceeded
	})
	if err == nil {
		t.Fatal("expected error when listing referenced files fails")
	}

	// Nothing may be deleted on a failed listing.
	if _, statErr := os.Stat(filepath.Join(store.Dir(), name)); statErr != nil {
		t.Error("file deleted despite listing failure")
	}
}
