package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := writeMigrationFiles(t, map[string]string{
		"002_billing.sql": "CREATE TABLE invoice (id UUID);",
		"001_core.sql":    "CREATE TABLE patient (id UUID);",
		"010_reports.sql": "CREATE TABLE expense (id UUID);",
	})

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	expected := []int{1, 2, 10}
	for i, v := range expected {
		if migrations[i].Version != v {
			t.Errorf("migration[%d].Version = %d, expected %d", i, migrations[i].Version, v)
		}
	}
}

func TestLoadMigrations_SkipsNonNumericPrefix(t *testing.T) {
	dir := writeMigrationFiles(t, map[string]string{
		"001_core.sql": "SELECT 1;",
		"readme.sql":   "skip me",
		"notes.txt":    "skip me too",
	})

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected migration: %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
