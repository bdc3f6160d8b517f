package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"savingsdash/internal/sources"
)

func TestReadDataset(t *testing.T) {
	dir := t.TempDir()
	entities := `[{"company":"A","savings":5}]`
	if err := os.WriteFile(filepath.Join(dir, EntitiesFile), []byte(entities), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := New(dir).ReadDataset(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw.Entities) != entities {
		t.Fatalf("unexpected entities %s", raw.Entities)
	}
	if string(raw.Timeline) != "[]" {
		t.Fatalf("missing timeline should read as empty list, got %s", raw.Timeline)
	}
}

func TestOpenBuildsStore(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, EntitiesFile), []byte(`[{"company":"A","savings":5},{"company":"B","savings":9}]`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, TimelineFile), []byte(`[{"month":"2024-01","value":3}]`), 0o644)

	store := sources.Open(context.Background(), New(dir), nil)
	if store.Len() != 2 || len(store.Timeline()) != 1 {
		t.Fatalf("unexpected store: %d entities %d points", store.Len(), len(store.Timeline()))
	}
	if k, _ := store.KeyAt(0); k != "B" {
		t.Fatalf("expected B first, got %s", k)
	}
}

func TestOpenDegradesOnReadError(t *testing.T) {
	dir := t.TempDir()
	// a directory where a file is expected cannot be read
	if err := os.Mkdir(filepath.Join(dir, EntitiesFile), 0o755); err != nil {
		t.Fatal(err)
	}
	store := sources.Open(context.Background(), New(dir), nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}
