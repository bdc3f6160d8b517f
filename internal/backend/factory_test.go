package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"savingsdash/internal/config"
	"savingsdash/internal/sources"
	"savingsdash/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "memory"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDirectory: "/srv/data"})
	if err != nil || cfg.Type != FileBackend || cfg.DataDirectory != "/srv/data" {
		t.Fatalf("unexpected conversion %+v %v", cfg, err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Type: FileBackend}, false},
		{Config{Type: SQLiteBackend}, true},
		{Config{Type: SheetsBackend}, true},
		{Config{Type: "redis"}, true},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
			t.Fatalf("Validate(%+v) error = %v, wantErr %v", tc.cfg, err, tc.wantErr)
		}
	}
	if got := GetBackendTypeStrings(); len(got) != 3 || got[0] != "file" {
		t.Fatalf("unexpected backend types %v", got)
	}
}

func TestCreateFileBackend(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "companies.json"), []byte(`[{"company":"A","savings":1}]`), 0o644)

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: FileBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("file backend is always ready: %v", err)
	}
	store := sources.Open(context.Background(), res.Reader, nil)
	if store.Len() != 1 {
		t.Fatalf("expected one entity, got %d", store.Len())
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	if _, ok := res.Reader.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected sqlite repository, got %T", res.Reader)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
