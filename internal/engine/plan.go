package engine

import (
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/validation"
)

// PlanCandidates ranks the open tasks against a budget and pre-selects
// what fits. A zero budget uses the default from preferences.
func (s *Session) PlanCandidates(energy models.Energy, budget int) (*planner.Selection, error) {
	if budget == 0 {
		budget = s.DefaultBudget()
	}
	if err := validation.ValidateBudget(budget); err != nil {
		return nil, err
	}
	ranked := s.ranker.ForPlanning(s.ledger.Tasks(), models.NormalizeEnergy(energy), budget)
	return planner.NewSelection(ranked, budget)
}

// DefaultBudget is the planning budget used when none is given: the stored
// preference, else the configured default.
func (s *Session) DefaultBudget() int {
	if s.prefs.DefaultBudgetMin > 0 {
		return s.prefs.DefaultBudgetMin
	}
	return s.cfg.Planning.DefaultMinutes
}

// StartDay persists sel as today's plan and remembers energy and the
// planning date.
func (s *Session) StartDay(sel *planner.Selection, energy models.Energy) (planner.Day, error) {
	energy = models.NormalizeEnergy(energy)
	today := s.Today()
	day, err := s.alloc.StartDay(sel, today, energy)
	if err != nil {
		return planner.Day{}, err
	}

	prefs := s.prefs
	prefs.Energy = energy
	prefs.LastPlanningDate = today
	if err := s.store.SavePreferences(prefs); err != nil {
		logger.Warn("Failed to save planning preferences", "error", err)
	} else {
		s.prefs = prefs
	}
	return day, nil
}

// Day loads today's plan, reconciling tasks completed outside it.
func (s *Session) Day() (planner.Day, error) {
	return s.DayFor(s.Today())
}

// DayFor loads the plan for date.
func (s *Session) DayFor(date string) (planner.Day, error) {
	all, err := s.store.GetAllTasksIncludingDeleted()
	if err != nil {
		return planner.Day{}, err
	}
	byID := make(map[string]models.Task, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	return s.alloc.Load(date, byID)
}

// History returns every stored plan, newest first.
func (s *Session) History() ([]models.DailyPlan, error) {
	return s.store.GetAllPlans()
}

// StartTask marks a planned task in progress.
func (s *Session) StartTask(id string) (models.PlannedTask, error) {
	release, err := s.guard(id)
	if err != nil {
		return models.PlannedTask{}, err
	}
	defer release()
	return s.alloc.StartTask(s.Today(), id)
}

// AbandonDay abandons today's plan so a new one can be started.
func (s *Session) AbandonDay() error {
	if err := s.alloc.Abandon(s.Today()); err != nil {
		return err
	}
	logger.Info("Abandoned day plan", "date", s.Today())
	return nil
}

// Validate checks every task and today's plan for conflicts.
func (s *Session) Validate() (validation.ValidationResult, error) {
	tasks, err := s.store.GetAllTasks()
	if err != nil {
		return validation.ValidationResult{}, err
	}
	v := validation.New()
	result := v.ValidateTasks(tasks)

	plan, err := s.store.GetPlan(s.Today())
	if err == nil {
		planned, err := s.store.GetPlannedTasks(plan.ID)
		if err != nil {
			return validation.ValidationResult{}, err
		}
		result.Conflicts = append(result.Conflicts, v.ValidatePlan(plan, planned, tasks).Conflicts...)
	}
	return result, nil
}

// FixDuplicates soft-deletes all but one of each group of open tasks with
// the same title.
func (s *Session) FixDuplicates(result validation.ValidationResult) ([]validation.FixAction, error) {
	tasks, err := s.store.GetAllTasks()
	if err != nil {
		return nil, err
	}
	actions := validation.AutoFixDuplicateTasks(result.Conflicts, tasks, s.store.DeleteTask)
	return actions, s.refresh()
}
