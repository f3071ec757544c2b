package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T, titles ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nextup.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE tasks (id TEXT PRIMARY KEY, title TEXT NOT NULL)"); err != nil {
		t.Fatalf("failed to create tasks table: %v", err)
	}
	for i, title := range titles {
		if _, err := db.Exec("INSERT INTO tasks (id, title) VALUES (?, ?)", string(rune('a'+i)), title); err != nil {
			t.Fatalf("failed to insert task: %v", err)
		}
	}
	return dbPath
}

func taskTitles(t *testing.T, path string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT title FROM tasks ORDER BY id")
	if err != nil {
		t.Fatalf("failed to query tasks: %v", err)
	}
	defer rows.Close()
	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		titles = append(titles, title)
	}
	return titles
}

func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Hour)
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t, "write report")
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want %s", filepath.Dir(path), mgr.Dir())
	}
	if !strings.HasPrefix(filepath.Base(path), "nextup-") {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if got := taskTitles(t, path); len(got) != 1 || got[0] != "write report" {
		t.Errorf("backup contents = %v", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Fatal("Create() without a database should fail")
	}
}

func TestUniqueNamesWithinOneSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mgr := NewManager(dbPath).WithClock(func() time.Time { return at })

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("List() returned %d backups, want 3", len(backups))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath).WithClock(fixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	var paths []string
	for i := 0; i < 16; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() #%d failed: %v", i, err)
		}
		paths = append(paths, path)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 14 {
		t.Fatalf("List() returned %d backups, want 14", len(backups))
	}
	if backups[0].Path != paths[15] {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, paths[15])
	}
	for _, old := range paths[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("oldest backup %s should have been rotated away", old)
		}
	}
}

func TestList(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("List() before any backup = %v, %v", backups, err)
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "nextup-garbage.db", "nextup-20260301-090000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("List() returned %d backups, want 1", len(backups))
	}
	want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if !backups[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", backups[0].Timestamp, want)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"nextup-20260301-090000.db", true},
		{"nextup-20260301-090000-2.db", true},
		{"nextup-20260301.db", false},
		{"other-20260301-090000.db", false},
		{"nextup-20260301-090000.sqlite", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseName(tt.name); ok != tt.ok {
				t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t, "original")
	mgr := NewManager(dbPath).WithClock(fixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE tasks SET title = 'changed'"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if got := taskTitles(t, dbPath); len(got) != 1 || got[0] != "original" {
		t.Errorf("restored contents = %v, want [original]", got)
	}
	if safety == "" {
		t.Fatal("Restore() should snapshot the current database first")
	}
	if got := taskTitles(t, safety); len(got) != 1 || got[0] != "changed" {
		t.Errorf("safety backup contents = %v, want [changed]", got)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t, "original")
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "nextup-20260301-090000.db")
	if err := os.WriteFile(bogus, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("Restore() of a corrupt file should fail")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("Restore() of a missing file should fail")
	}
	if got := taskTitles(t, dbPath); len(got) != 1 || got[0] != "original" {
		t.Errorf("database changed after failed restore: %v", got)
	}
}
