package queue

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/nextup/internal/backup"
	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/engine"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/storage/sqlite"
)

func newTestContext(t *testing.T) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nextup.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{
		Store:     store,
		Config:    config.Default(),
		ConfigDir: dir,
		Backups:   backup.NewManager(dbPath),
	}
}

func addTask(t *testing.T, ctx *cli.Context, title string) models.Task {
	t.Helper()
	sess, err := ctx.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	task, err := sess.AddTask(engine.TaskInput{Title: title})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	return task
}

func getTask(t *testing.T, ctx *cli.Context, id string) models.Task {
	t.Helper()
	sess, err := ctx.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	task, err := sess.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	return task
}

func TestActionsDefaultToHead(t *testing.T) {
	tests := []struct {
		name  string
		run   func(ctx *cli.Context) error
		check func(t *testing.T, task models.Task)
	}{
		{
			name: "done",
			run:  func(ctx *cli.Context) error { return (&DoneCmd{}).Run(ctx) },
			check: func(t *testing.T, task models.Task) {
				if !task.Completed {
					t.Error("task not completed")
				}
			},
		},
		{
			name: "skip",
			run:  func(ctx *cli.Context) error { return (&SkipCmd{Reason: "tired"}).Run(ctx) },
			check: func(t *testing.T, task models.Task) {
				if !task.Skipped {
					t.Error("task not skipped")
				}
				if task.SkipReason != "tired" {
					t.Errorf("SkipReason = %q, want tired", task.SkipReason)
				}
			},
		},
		{
			name: "defer",
			run:  func(ctx *cli.Context) error { return (&DeferCmd{}).Run(ctx) },
			check: func(t *testing.T, task models.Task) {
				if task.CarriedFromDate == "" {
					t.Error("task not carried over")
				}
				if !task.IsOpen() {
					t.Error("deferred task should stay open")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			task := addTask(t, ctx, "write report")

			if err := tt.run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			tt.check(t, getTask(t, ctx, task.ID))
		})
	}
}

func TestActionsOnEmptyQueue(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx *cli.Context) error
	}{
		{"done", func(ctx *cli.Context) error { return (&DoneCmd{}).Run(ctx) }},
		{"skip", func(ctx *cli.Context) error { return (&SkipCmd{}).Run(ctx) }},
		{"defer", func(ctx *cli.Context) error { return (&DeferCmd{}).Run(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			if err := tt.run(ctx); err == nil {
				t.Error("expected an error for an empty queue")
			}
		})
	}
}

func TestDoneCmd_ByID(t *testing.T) {
	ctx := newTestContext(t)
	addTask(t, ctx, "first")
	second := addTask(t, ctx, "second")

	if err := (&DoneCmd{ID: second.ID[:8]}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !getTask(t, ctx, second.ID).Completed {
		t.Error("second task not completed")
	}

	sess, _ := ctx.Session()
	if sess.Stats().TotalCompleted != 1 {
		t.Errorf("TotalCompleted = %d, want 1", sess.Stats().TotalCompleted)
	}
}

func TestKeepCmd(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		wantErr bool
	}{
		{"with reason", "waiting on review", false},
		{"blank reason", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			task := addTask(t, ctx, "file taxes")

			err := (&KeepCmd{ID: task.ID, Reason: tt.reason}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			got := getTask(t, ctx, task.ID)
			if tt.wantErr {
				if got.Blocker != "" {
					t.Errorf("Blocker = %q, want empty", got.Blocker)
				}
				return
			}
			if got.Blocker != tt.reason {
				t.Errorf("Blocker = %q, want %q", got.Blocker, tt.reason)
			}
		})
	}
}

func TestEnergyCmd(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    func(before models.Energy) models.Energy
		wantErr bool
	}{
		{"show", "", func(before models.Energy) models.Energy { return before }, false},
		{"set low", "low", func(models.Energy) models.Energy { return models.EnergyLow }, false},
		{"set alias", "Peak", func(models.Energy) models.Energy { return models.EnergyHigh }, false},
		{"cycle", "cycle", func(before models.Energy) models.Energy { return before.Next() }, false},
		{"invalid", "sleepy", func(before models.Energy) models.Energy { return before }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			sess, err := ctx.Session()
			if err != nil {
				t.Fatalf("Session() error = %v", err)
			}
			before := sess.Energy()

			err = (&EnergyCmd{Level: tt.level}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got, want := sess.Energy(), tt.want(before); got != want {
				t.Errorf("Energy() = %s, want %s", got, want)
			}
		})
	}
}

func TestStatsCmd(t *testing.T) {
	ctx := newTestContext(t)
	addTask(t, ctx, "stretch")
	if err := (&DoneCmd{}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}
	if err := (&StatsCmd{}).Run(ctx); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
}
