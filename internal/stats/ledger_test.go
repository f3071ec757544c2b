package stats

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/models"
)

type fakePersister struct {
	fail      error
	completed []models.Task
	skipped   []models.Task
	stats     models.UserStats
}

func (f *fakePersister) RecordCompletion(task models.Task, stats models.UserStats) error {
	if f.fail != nil {
		return f.fail
	}
	f.completed = append(f.completed, task)
	f.stats = stats
	return nil
}

func (f *fakePersister) RecordSkip(task models.Task, stats models.UserStats) error {
	if f.fail != nil {
		return f.fail
	}
	f.skipped = append(f.skipped, task)
	f.stats = stats
	return nil
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC)
}

func openTasks() []models.Task {
	deadline := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	return []models.Task{
		{ID: "a", Title: "write report", Priority: models.PriorityHigh, Energy: models.EnergyHigh, EstimatedMinutes: 45, Deadline: &deadline, Position: 0},
		{ID: "b", Title: "inbox", Priority: models.PriorityLow, Energy: models.EnergyLow, EstimatedMinutes: 15, Position: 1},
		{ID: "c", Title: "review PR", Priority: models.PriorityMedium, Energy: models.EnergyNormal, EstimatedMinutes: 25, CarriedFromDate: "2025-03-01", Position: 2},
	}
}

func TestApplyCompletionStreak(t *testing.T) {
	tests := []struct {
		name       string
		last       string
		streak     int
		at         time.Time
		wantStreak int
	}{
		{"first ever completion", "", 0, day(10), 1},
		{"consecutive day", "2025-03-09", 4, day(10), 5},
		{"same day", "2025-03-10", 4, day(10), 4},
		{"gap of two days", "2025-03-08", 4, day(10), 1},
		{"long gap", "2025-01-01", 9, day(10), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.UserStats{CurrentStreak: tt.streak, StreakBest: tt.streak, LastCompletedDate: tt.last, TrustScore: 50}
			got := ApplyCompletion(s, tt.at, time.UTC)
			if got.CurrentStreak != tt.wantStreak {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantStreak)
			}
			if got.StreakBest < got.CurrentStreak || got.StreakBest < tt.streak {
				t.Errorf("StreakBest = %d, not max of %d and %d", got.StreakBest, tt.streak, got.CurrentStreak)
			}
			if got.LastCompletedDate != "2025-03-10" {
				t.Errorf("LastCompletedDate = %q", got.LastCompletedDate)
			}
			if got.TotalCompleted != 1 {
				t.Errorf("TotalCompleted = %d, want 1", got.TotalCompleted)
			}
		})
	}
}

func TestStreakAcrossConsecutiveDays(t *testing.T) {
	s := models.NewUserStats()
	for d := 1; d <= 7; d++ {
		prev := s.CurrentStreak
		s = ApplyCompletion(s, day(d), time.UTC)
		if s.CurrentStreak != prev+1 {
			t.Fatalf("day %d: streak %d, want %d", d, s.CurrentStreak, prev+1)
		}
	}
	s = ApplyCompletion(s, day(10), time.UTC)
	if s.CurrentStreak != 1 || s.StreakBest != 7 {
		t.Errorf("after gap: streak %d best %d, want 1 and 7", s.CurrentStreak, s.StreakBest)
	}
}

func TestStreakUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	s := models.UserStats{CurrentStreak: 2, LastCompletedDate: "2025-03-09"}
	// 2025-03-11 03:00 UTC is still 2025-03-10 in loc.
	got := ApplyCompletion(s, time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC), loc)
	if got.CurrentStreak != 3 || got.LastCompletedDate != "2025-03-10" {
		t.Errorf("got streak %d on %s", got.CurrentStreak, got.LastCompletedDate)
	}
}

func TestTrustScoreClamped(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := models.NewUserStats()
	for i := 0; i < 2000; i++ {
		if r.Intn(2) == 0 {
			s = ApplyCompletion(s, day(1+r.Intn(28)), time.UTC)
		} else {
			s = ApplySkip(s)
		}
		if s.TrustScore < MinTrust || s.TrustScore > MaxTrust {
			t.Fatalf("step %d: trust %d out of range", i, s.TrustScore)
		}
	}

	high := models.UserStats{TrustScore: 99}
	if got := ApplyCompletion(high, day(1), time.UTC).TrustScore; got != 100 {
		t.Errorf("trust 99 + completion = %d, want 100", got)
	}
	low := models.UserStats{TrustScore: 2}
	if got := ApplySkip(low).TrustScore; got != 0 {
		t.Errorf("trust 2 - skip = %d, want 0", got)
	}
}

func TestLedgerComplete(t *testing.T) {
	p := &fakePersister{}
	l := NewLedger(p, State{Tasks: openTasks(), Stats: models.NewUserStats()}, time.UTC)

	var celebrated string
	l.OnCelebrate(func(task models.Task, _ models.UserStats) { celebrated = task.ID })

	task, err := l.Complete("b", day(10))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !task.Completed || task.CompletedAt == nil {
		t.Errorf("task not marked completed: %+v", task)
	}
	if celebrated != "b" {
		t.Errorf("celebration hook saw %q", celebrated)
	}
	if len(l.Tasks()) != 2 {
		t.Errorf("active tasks = %d, want 2", len(l.Tasks()))
	}
	if got := l.Stats(); got.TotalCompleted != 1 || got.CurrentStreak != 1 || got.TrustScore != models.InitialTrustScore+TrustCompletionBonus {
		t.Errorf("stats = %+v", got)
	}
	if !reflect.DeepEqual(p.stats, l.Stats()) {
		t.Error("persisted stats differ from in-memory stats")
	}
	if h := l.History(); len(h) != 1 || h[0].Op != OpComplete {
		t.Errorf("history = %+v", h)
	}
}

func TestLedgerSkip(t *testing.T) {
	p := &fakePersister{}
	l := NewLedger(p, State{Tasks: openTasks(), Stats: models.NewUserStats()}, time.UTC)

	task, err := l.Skip("a", "  no time  ", day(10))
	if err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if !task.Skipped || task.SkipReason != "no time" || task.Completed {
		t.Errorf("unexpected skipped task %+v", task)
	}
	if got := l.Stats(); got.TotalSkipped != 1 || got.TrustScore != models.InitialTrustScore-TrustSkipPenalty {
		t.Errorf("stats = %+v", got)
	}
}

func TestLedgerRollback(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Ledger) error
	}{
		{"complete", func(l *Ledger) error { _, err := l.Complete("c", day(10)); return err }},
		{"skip", func(l *Ledger) error { _, err := l.Skip("a", "later", day(10)); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := State{
				Tasks: openTasks(),
				Stats: models.UserStats{TotalCompleted: 4, TotalSkipped: 1, CurrentStreak: 2, StreakBest: 5, TrustScore: 61, LastCompletedDate: "2025-03-09"},
			}
			writeErr := errors.New("connection reset")
			l := NewLedger(&fakePersister{fail: writeErr}, initial, time.UTC)
			l.OnCelebrate(func(models.Task, models.UserStats) {})

			err := tt.run(l)
			var pe *apperrors.PersistenceError
			if !errors.As(err, &pe) || !errors.Is(err, writeErr) {
				t.Fatalf("error = %v, want PersistenceError wrapping the write error", err)
			}
			if !reflect.DeepEqual(l.State(), initial) {
				t.Errorf("state after rollback differs:\n got %+v\nwant %+v", l.State(), initial)
			}
			if len(l.History()) != 0 {
				t.Error("failed command recorded in history")
			}
		})
	}
}

func TestLedgerRejectsUnknownTask(t *testing.T) {
	l := NewLedger(&fakePersister{}, State{Tasks: openTasks()}, time.UTC)
	_, err := l.Complete("missing", day(10))
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if _, err := l.Complete("a", day(10)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if _, err := l.Complete("a", day(10)); !errors.As(err, &ve) {
		t.Errorf("completing twice error = %v, want ValidationError", err)
	}
}

func TestCommandUndo(t *testing.T) {
	before := State{Tasks: openTasks(), Stats: models.NewUserStats()}
	after := before.Clone()
	after.Tasks = after.Tasks[1:]
	after.Stats.TotalCompleted = 1

	cmd := Command{Op: OpComplete, TaskID: "a", Before: before, After: after}
	var s State
	cmd.Apply(&s)
	if len(s.Tasks) != 2 {
		t.Fatalf("Apply left %d tasks", len(s.Tasks))
	}
	s.Tasks[0].Title = "mutated"
	cmd.Undo(&s)
	if !reflect.DeepEqual(s, before) {
		t.Error("Undo did not restore the snapshot")
	}
	if cmd.After.Tasks[0].Title == "mutated" {
		t.Error("Apply shared memory with the command snapshot")
	}
}
