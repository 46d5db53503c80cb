package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"postgres://user:pw@host:5432/mely", "postgresql://user:pw@host:5432/mely"},
		{"postgresql://user:pw@host:5432/mely", "postgresql://user:pw@host:5432/mely"},
		{"sqlite:///mely.db", "sqlite:///mely.db"},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_disponibilites.sql": "CREATE TABLE disponibilites (id SERIAL);",
		"001_core.sql":           "CREATE TABLE residents (id SERIAL);",
		"notes.txt":              "ignored",
		"README.sql":             "ignored, no numeric prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations not sorted by version: %+v", migrations)
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected name: %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
