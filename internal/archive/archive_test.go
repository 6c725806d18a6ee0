package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("archive file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		a, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		a.Close()
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer a.Close()

	var name string
	err = a.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='revisions'",
	).Scan(&name)
	if err != nil {
		t.Errorf("revisions table not found after idempotent opens: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	a := createTestArchive(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for name, expected := range checks {
		if err := a.verifyPragma(name, expected); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	a := createTestArchive(t)

	var version int
	if err := a.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := a.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version failed: %v", err)
	}
	a.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error opening an archive from a newer schema, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	a := &Archive{db: nil}
	if err := a.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClock_NextIncrements(t *testing.T) {
	c := NewClock()

	for want := int64(1); want <= 3; want++ {
		if got := c.Next(); got != want {
			t.Errorf("Next() = %d, expected %d", got, want)
		}
	}
	if got := c.Current(); got != 3 {
		t.Errorf("Current() = %d, expected 3", got)
	}
}

func TestClock_ResumesFromPosition(t *testing.T) {
	c := NewClockAt(41)

	if got := c.Current(); got != 41 {
		t.Errorf("Current() = %d, expected 41", got)
	}
	if got := c.Next(); got != 42 {
		t.Errorf("Next() = %d, expected 42", got)
	}
}
