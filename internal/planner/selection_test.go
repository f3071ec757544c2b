package planner

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/ranking"
)

func ranked(minutes ...int) []ranking.TaskScore {
	out := make([]ranking.TaskScore, len(minutes))
	for i, m := range minutes {
		id := string(rune('a' + i))
		out[i] = ranking.TaskScore{Task: models.Task{ID: id, Title: id, EstimatedMinutes: m, Position: i}}
	}
	return out
}

func selectedIDs(s *Selection) []string {
	return ranking.IDs(s.Selected())
}

func TestNewSelectionGreedy(t *testing.T) {
	tests := []struct {
		name    string
		minutes []int
		budget  int
		want    []string
		total   int
	}{
		{
			name:    "everything fits",
			minutes: []int{30, 30, 30},
			budget:  120,
			want:    []string{"a", "b", "c"},
			total:   90,
		},
		{
			name:    "skips a task that does not fit and keeps going",
			minutes: []int{60, 90, 45, 15},
			budget:  120,
			want:    []string{"a", "c", "d"},
			total:   120,
		},
		{
			name:    "favours rank over packing",
			minutes: []int{70, 60, 60},
			budget:  120,
			want:    []string{"a"},
			total:   70,
		},
		{
			name:    "nothing fits",
			minutes: []int{200, 180},
			budget:  120,
			want:    []string{},
			total:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := NewSelection(ranked(tt.minutes...), tt.budget)
			if err != nil {
				t.Fatalf("NewSelection() error = %v", err)
			}
			if got := selectedIDs(sel); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selected = %v, want %v", got, tt.want)
			}
			if sel.TotalMinutes() != tt.total {
				t.Errorf("TotalMinutes() = %d, want %d", sel.TotalMinutes(), tt.total)
			}
		})
	}
}

func TestNewSelectionRejectsEmptyBudget(t *testing.T) {
	_, err := NewSelection(ranked(30), 0)
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("NewSelection(budget 0) error = %v, want ValidationError", err)
	}
}

func TestToggle(t *testing.T) {
	sel, err := NewSelection(ranked(60, 45, 30), 120)
	if err != nil {
		t.Fatalf("NewSelection() error = %v", err)
	}
	// a(60) + b(45) = 105; c(30) would overflow
	if got := selectedIDs(sel); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("selected = %v", got)
	}

	t.Run("overflowing toggle is rejected without error", func(t *testing.T) {
		before := selectedIDs(sel)
		ok, err := sel.Toggle("c")
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if ok {
			t.Error("Toggle() = true, want false for an overflowing task")
		}
		if got := selectedIDs(sel); !reflect.DeepEqual(got, before) {
			t.Errorf("selection changed to %v", got)
		}
		if sel.CanSelect("c") {
			t.Error("CanSelect(c) = true, want false")
		}
	})

	t.Run("toggle out then in", func(t *testing.T) {
		if ok, _ := sel.Toggle("b"); !ok {
			t.Fatal("Toggle(b) out failed")
		}
		if ok, _ := sel.Toggle("c"); !ok {
			t.Fatal("Toggle(c) in failed after freeing room")
		}
		if got := selectedIDs(sel); !reflect.DeepEqual(got, []string{"a", "c"}) {
			t.Errorf("selected = %v, want [a c]", got)
		}
		if sel.TotalMinutes() != 90 || sel.RemainingMinutes() != 30 {
			t.Errorf("total=%d remaining=%d, want 90 and 30", sel.TotalMinutes(), sel.RemainingMinutes())
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		if _, err := sel.Toggle("zzz"); !errors.Is(err, ErrUnknownTask) {
			t.Errorf("Toggle(unknown) error = %v, want ErrUnknownTask", err)
		}
	})
}

func TestSelectionNeverExceedsBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(12)
		minutes := make([]int, n)
		for i := range minutes {
			minutes[i] = 5 + rng.Intn(120)
		}
		budget := 15 + rng.Intn(300)

		sel, err := NewSelection(ranked(minutes...), budget)
		if err != nil {
			t.Fatalf("NewSelection() error = %v", err)
		}
		for step := 0; step < 30; step++ {
			id := string(rune('a' + rng.Intn(n)))
			if _, err := sel.Toggle(id); err != nil {
				t.Fatalf("Toggle(%s) error = %v", id, err)
			}
			sum := 0
			for _, ts := range sel.Selected() {
				sum += ts.Task.EstimatedMinutes
			}
			if sum > budget {
				t.Fatalf("round %d: selected %d minutes over budget %d", round, sum, budget)
			}
			if sum != sel.TotalMinutes() {
				t.Fatalf("round %d: TotalMinutes() = %d, actual sum %d", round, sel.TotalMinutes(), sum)
			}
		}
	}
}

func TestBuildUsesRankedIndex(t *testing.T) {
	sel, err := NewSelection(ranked(60, 90, 30), 100)
	if err != nil {
		t.Fatalf("NewSelection() error = %v", err)
	}
	now := time.Date(2025, 5, 14, 8, 0, 0, 0, time.UTC)
	plan, planned := sel.Build("2025-05-14", "peak", now)

	if plan.Date != "2025-05-14" || plan.AvailableMinutes != 100 || plan.Status != models.PlanStatusActive {
		t.Errorf("unexpected plan %+v", plan)
	}
	if plan.Energy != models.EnergyHigh {
		t.Errorf("plan energy = %q, want high", plan.Energy)
	}
	if len(planned) != 2 {
		t.Fatalf("planned %d tasks, want 2", len(planned))
	}
	if planned[0].TaskID != "a" || planned[0].Order != 0 {
		t.Errorf("planned[0] = %+v", planned[0])
	}
	if planned[1].TaskID != "c" || planned[1].Order != 2 {
		t.Errorf("planned[1] = %+v, want order 2 (ranked index)", planned[1])
	}
	for _, pt := range planned {
		if pt.PlanID != plan.ID || pt.Status != models.PlannedPending {
			t.Errorf("planned task %+v not linked to plan %s", pt, plan.ID)
		}
	}
}
