package tasks

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/nextup/internal/backup"
	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/config"
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

func onlyTask(t *testing.T, ctx *cli.Context) models.Task {
	t.Helper()
	sess, err := ctx.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	tasks, err := sess.ListTasks(true)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	return tasks[0]
}

func TestTaskAddCmd(t *testing.T) {
	tests := []struct {
		name         string
		cmd          TaskAddCmd
		wantPriority models.Priority
		wantEnergy   models.Energy
		wantErr      bool
	}{
		{
			name:         "defaults",
			cmd:          TaskAddCmd{Title: "write report", Priority: "medium", Energy: "medium", Minutes: 25},
			wantPriority: models.PriorityMedium,
			wantEnergy:   models.EnergyNormal,
		},
		{
			name:         "peak energy high priority",
			cmd:          TaskAddCmd{Title: "deep work", Priority: "HIGH", Energy: "peak", Minutes: 90, Deadline: "2030-01-02"},
			wantPriority: models.PriorityHigh,
			wantEnergy:   models.EnergyHigh,
		},
		{
			name:    "invalid priority",
			cmd:     TaskAddCmd{Title: "oops", Priority: "critical", Energy: "medium", Minutes: 25},
			wantErr: true,
		},
		{
			name:    "invalid deadline",
			cmd:     TaskAddCmd{Title: "oops", Priority: "low", Energy: "low", Minutes: 25, Deadline: "next week"},
			wantErr: true,
		},
		{
			name:    "blank title",
			cmd:     TaskAddCmd{Title: "  ", Priority: "low", Energy: "low", Minutes: 25},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)

			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				sess, _ := ctx.Session()
				if tasks, _ := sess.ListTasks(true); len(tasks) != 0 {
					t.Errorf("rejected task was stored: %+v", tasks)
				}
				return
			}

			got := onlyTask(t, ctx)
			if got.Priority != tt.wantPriority {
				t.Errorf("Priority = %s, want %s", got.Priority, tt.wantPriority)
			}
			if got.Energy != tt.wantEnergy {
				t.Errorf("Energy = %s, want %s", got.Energy, tt.wantEnergy)
			}
			if got.EstimatedMinutes != tt.cmd.Minutes {
				t.Errorf("EstimatedMinutes = %d, want %d", got.EstimatedMinutes, tt.cmd.Minutes)
			}
			if (tt.cmd.Deadline != "") != (got.Deadline != nil) {
				t.Errorf("Deadline = %v, input %q", got.Deadline, tt.cmd.Deadline)
			}
		})
	}
}

func TestTaskAddCmd_Parent(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&TaskAddCmd{Title: "project", Priority: "medium", Energy: "medium", Minutes: 60}).Run(ctx); err != nil {
		t.Fatalf("add parent failed: %v", err)
	}
	parent := onlyTask(t, ctx)

	child := &TaskAddCmd{Title: "first step", Priority: "medium", Energy: "low", Minutes: 10, Parent: parent.ID[:8]}
	if err := child.Run(ctx); err != nil {
		t.Fatalf("add child failed: %v", err)
	}

	sess, _ := ctx.Session()
	tasks, err := sess.ListTasks(true)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	var found bool
	for _, task := range tasks {
		if task.Title == "first step" {
			found = true
			if task.ParentID != parent.ID {
				t.Errorf("ParentID = %q, want %q", task.ParentID, parent.ID)
			}
		}
	}
	if !found {
		t.Fatal("child task not stored")
	}

	if err := (&TaskAddCmd{Title: "orphan", Priority: "low", Energy: "low", Minutes: 5, Parent: "missing"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown parent")
	}
}

func TestTaskEditCmd(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&TaskAddCmd{Title: "draft", Priority: "low", Energy: "low", Minutes: 25}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	task := onlyTask(t, ctx)

	title := "final draft"
	priority := "high"
	if err := (&TaskEditCmd{ID: task.ID, Title: &title, Priority: &priority}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	got := onlyTask(t, ctx)
	if got.Title != title {
		t.Errorf("Title = %q, want %q", got.Title, title)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("Priority = %s, want high", got.Priority)
	}
	if got.Energy != models.EnergyLow {
		t.Errorf("Energy = %s, want unchanged low", got.Energy)
	}

	bad := "critical"
	if err := (&TaskEditCmd{ID: task.ID, Priority: &bad}).Run(ctx); err == nil {
		t.Error("expected an error for an invalid priority")
	}
}

func TestTaskDeleteAndRestore(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&TaskAddCmd{Title: "temp", Priority: "medium", Energy: "medium", Minutes: 25}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	task := onlyTask(t, ctx)
	sess, _ := ctx.Session()

	if err := (&TaskDeleteCmd{ID: task.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if tasks, _ := sess.ListTasks(true); len(tasks) != 0 {
		t.Errorf("deleted task still listed: %+v", tasks)
	}

	if err := (&TaskRestoreCmd{ID: task.ID}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := onlyTask(t, ctx); got.DeletedAt != nil {
		t.Error("restored task still marked deleted")
	}
}
