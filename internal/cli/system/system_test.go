package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/nextup/internal/backup"
	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/engine"
	"github.com/julianstephens/nextup/internal/storage/sqlite"
)

func newTestContext(t *testing.T, initialize bool) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nextup.db")
	store := sqlite.NewStore(dbPath)
	if initialize {
		if err := store.Init(); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{
		Store:     store,
		Config:    config.Default(),
		ConfigDir: dir,
		Backups:   backup.NewManager(dbPath),
	}
}

func TestInitCmd(t *testing.T) {
	ctx := newTestContext(t, false)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := os.Stat(ctx.Store.GetConfigPath()); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if _, err := os.Stat(config.Path(ctx.ConfigDir)); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestInitCmd_Force(t *testing.T) {
	ctx := newTestContext(t, true)

	sess, err := ctx.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if _, err := sess.AddTask(engine.TaskInput{Title: "old task"}); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	cmd := &InitCmd{Force: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected an empty database after --force, got %d tasks", len(tasks))
	}

	backups, err := ctx.Backups.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected the old database to be backed up, got %d backups", len(backups))
	}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx := newTestContext(t, true)

	// Missing backups and AI key are warnings, not failures
	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_DuplicateTasks(t *testing.T) {
	ctx := newTestContext(t, true)

	sess, err := ctx.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := sess.AddTask(engine.TaskInput{Title: "write report"}); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected doctor to fail on duplicate tasks")
	}

	fix := &ValidateCmd{Fix: true}
	if err := fix.Run(ctx); err != nil {
		t.Fatalf("validate --fix failed: %v", err)
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("expected 1 task after fix, got %d", len(tasks))
	}

	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor still failing after fix: %v", err)
	}
}

func TestChecks_NoDatabase(t *testing.T) {
	ctx := newTestContext(t, false)

	if err := checkDBReachable(ctx); err == nil {
		t.Error("expected checkDBReachable to fail before init")
	}
	if err := checkClock(ctx); err != nil {
		t.Errorf("checkClock() error = %v", err)
	}
}
