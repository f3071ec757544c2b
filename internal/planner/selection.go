package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/ranking"
	"github.com/julianstephens/nextup/internal/utils"
)

var ErrUnknownTask = errors.New("task is not part of this planning session")

// Selection is the set of tasks chosen for a day, built over a ranked list.
// The selected minutes never exceed the budget.
type Selection struct {
	ranked   []ranking.TaskScore
	budget   int
	selected map[string]bool
	index    map[string]int
	total    int
}

// NewSelection runs the greedy auto-selection pass over ranked, which must be
// in descending score order. A task is included whenever it still fits;
// higher-scored tasks win over packing more minutes.
func NewSelection(ranked []ranking.TaskScore, availableMinutes int) (*Selection, error) {
	if availableMinutes <= 0 {
		return nil, apperrors.Invalid("available minutes", "must be greater than zero, got %d", availableMinutes)
	}

	s := &Selection{
		ranked:   ranked,
		budget:   availableMinutes,
		selected: make(map[string]bool, len(ranked)),
		index:    make(map[string]int, len(ranked)),
	}
	for i, ts := range ranked {
		s.index[ts.Task.ID] = i
		if s.total+ts.Task.EstimatedMinutes <= s.budget {
			s.selected[ts.Task.ID] = true
			s.total += ts.Task.EstimatedMinutes
		}
	}
	return s, nil
}

// Toggle flips the selection state of a task. Adding a task that would push
// the total over the budget is rejected: the selection is left unchanged and
// Toggle returns false without an error.
func (s *Selection) Toggle(taskID string) (bool, error) {
	i, ok := s.index[taskID]
	if !ok {
		return false, ErrUnknownTask
	}
	minutes := s.ranked[i].Task.EstimatedMinutes

	if s.selected[taskID] {
		delete(s.selected, taskID)
		s.total -= minutes
		return true, nil
	}
	if !s.CanSelect(taskID) {
		return false, nil
	}
	s.selected[taskID] = true
	s.total += minutes
	return true, nil
}

// CanSelect reports whether adding taskID keeps the selection within budget.
// Already selected tasks report true.
func (s *Selection) CanSelect(taskID string) bool {
	i, ok := s.index[taskID]
	if !ok {
		return false
	}
	if s.selected[taskID] {
		return true
	}
	return s.total+s.ranked[i].Task.EstimatedMinutes <= s.budget
}

func (s *Selection) IsSelected(taskID string) bool {
	return s.selected[taskID]
}

// Ranked returns the ranked list the selection was built over.
func (s *Selection) Ranked() []ranking.TaskScore {
	return s.ranked
}

// Selected returns the selected tasks in ranked order.
func (s *Selection) Selected() []ranking.TaskScore {
	out := make([]ranking.TaskScore, 0, len(s.selected))
	for _, ts := range s.ranked {
		if s.selected[ts.Task.ID] {
			out = append(out, ts)
		}
	}
	return out
}

func (s *Selection) TotalMinutes() int {
	return s.total
}

func (s *Selection) Budget() int {
	return s.budget
}

func (s *Selection) RemainingMinutes() int {
	return s.budget - s.total
}

// Build turns the selection into a plan and its planned tasks. Each planned
// task's order is the task's index in the ranked list.
func (s *Selection) Build(date string, energy models.Energy, now time.Time) (models.DailyPlan, []models.PlannedTask) {
	plan := models.DailyPlan{
		ID:               uuid.New().String(),
		Date:             date,
		Energy:           models.NormalizeEnergy(energy),
		AvailableMinutes: s.budget,
		Status:           models.PlanStatusActive,
		CreatedAt:        utils.FormatTimestamp(now),
	}

	planned := make([]models.PlannedTask, 0, len(s.selected))
	for i, ts := range s.ranked {
		if !s.selected[ts.Task.ID] {
			continue
		}
		planned = append(planned, models.PlannedTask{
			PlanID: plan.ID,
			TaskID: ts.Task.ID,
			Order:  i,
			Status: models.PlannedPending,
		})
	}
	return plan, planned
}
