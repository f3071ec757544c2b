package planner

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/utils"
)

var (
	ErrNoPlan = errors.New("no plan for this date")
	// ErrPlanClosed is returned for changes to a completed or abandoned plan.
	ErrPlanClosed = errors.New("plan is no longer active")
)

// Store is the persistence the allocator needs.
type Store interface {
	CreatePlan(models.DailyPlan, []models.PlannedTask) error
	GetPlan(date string) (models.DailyPlan, error)
	UpdatePlan(models.DailyPlan) error
	GetPlannedTasks(planID string) ([]models.PlannedTask, error)
	UpdatePlannedTask(models.PlannedTask) error
	DeferTask(taskID, date string) error
}

// Day is a plan together with its tasks and derived progress.
type Day struct {
	Plan     models.DailyPlan     `json:"plan"`
	Tasks    []models.PlannedTask `json:"tasks"`
	Progress Progress             `json:"progress"`
}

// Allocator persists selections as daily plans and advances planned tasks.
type Allocator struct {
	store Store
	now   func() time.Time
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store, now: time.Now}
}

// WithClock replaces the allocator's time source.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// StartDay persists the selection as the plan for date. Only one plan may be
// active or completed per date.
func (a *Allocator) StartDay(sel *Selection, date string, energy models.Energy) (Day, error) {
	if sel == nil {
		return Day{}, apperrors.Invalid("selection", "is required")
	}
	if len(sel.Selected()) == 0 {
		return Day{}, apperrors.Invalid("selection", "select at least one task")
	}

	existing, err := a.store.GetPlan(date)
	switch {
	case err == nil && existing.Status != models.PlanStatusAbandoned:
		return Day{}, fmt.Errorf("%w: %s", storage.ErrPlanExists, date)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return Day{}, err
	}

	now := a.now()
	plan, planned := sel.Build(date, energy, now)
	if err := a.store.CreatePlan(plan, planned); err != nil {
		if errors.Is(err, storage.ErrPlanExists) {
			return Day{}, err
		}
		return Day{}, apperrors.Persistence("plan", err)
	}

	logger.Info("Started day plan", "date", date, "tasks", len(planned), "minutes", sel.TotalMinutes(), "budget", sel.Budget())
	return Day{Plan: plan, Tasks: planned, Progress: ComputeProgress(plan, planned, now)}, nil
}

// Load returns the plan for date. Planned tasks whose task was completed or
// removed outside the plan are reconciled, and a plan whose tasks are all finished
// is marked completed. tasks maps task ids to their current records; a nil
// map skips reconciliation.
func (a *Allocator) Load(date string, tasks map[string]models.Task) (Day, error) {
	plan, err := a.store.GetPlan(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Day{}, ErrNoPlan
		}
		return Day{}, err
	}
	planned, err := a.store.GetPlannedTasks(plan.ID)
	if err != nil {
		return Day{}, err
	}

	if tasks != nil && plan.Status == models.PlanStatusActive {
		for _, pt := range Reconcile(planned, tasks) {
			if err := a.store.UpdatePlannedTask(pt); err != nil {
				return Day{}, apperrors.Persistence("planned task", err)
			}
			logger.Debug("Reconciled planned task", "task", pt.TaskID, "status", pt.Status, "date", date)
			for i := range planned {
				if planned[i].TaskID == pt.TaskID {
					planned[i] = pt
				}
			}
		}
	}

	now := a.now()
	if plan.Status == models.PlanStatusActive && allTerminal(planned) {
		plan.Status = models.PlanStatusCompleted
		plan.CompletedAt = utils.StringPtr(utils.FormatTimestamp(now))
		if err := a.store.UpdatePlan(plan); err != nil {
			return Day{}, apperrors.Persistence("plan", err)
		}
		logger.Info("Day plan completed", "date", date)
	}

	return Day{Plan: plan, Tasks: planned, Progress: ComputeProgress(plan, planned, now)}, nil
}

// StartTask moves a pending planned task to in_progress.
func (a *Allocator) StartTask(date, taskID string) (models.PlannedTask, error) {
	pt, err := a.find(date, taskID)
	if err != nil {
		return models.PlannedTask{}, err
	}
	if !pt.Status.CanTransition(models.PlannedInProgress) {
		return models.PlannedTask{}, apperrors.Invalid("status", "cannot start a task that is %s", pt.Status)
	}
	pt.Status = models.PlannedInProgress
	pt.StartedAt = utils.StringPtr(utils.FormatTimestamp(a.now()))
	if err := a.store.UpdatePlannedTask(pt); err != nil {
		return models.PlannedTask{}, apperrors.Persistence("planned task", err)
	}
	return pt, nil
}

// Defer marks a planned task deferred and carries its task over from the
// plan's date, which feeds the aging score of the next planning cycle.
func (a *Allocator) Defer(date, taskID string) error {
	pt, err := a.find(date, taskID)
	if err != nil {
		return err
	}
	if !pt.Status.CanTransition(models.PlannedDeferred) {
		return apperrors.Invalid("status", "cannot defer a task that is %s", pt.Status)
	}
	if err := a.store.DeferTask(taskID, date); err != nil {
		return apperrors.Persistence("deferral", err)
	}
	return nil
}

// Abandon marks the active plan for date as abandoned. A new plan may then
// be started for the same date.
func (a *Allocator) Abandon(date string) error {
	plan, err := a.store.GetPlan(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoPlan
		}
		return err
	}
	if plan.Status != models.PlanStatusActive {
		return apperrors.Invalid("plan", "only an active plan can be abandoned (status %s)", plan.Status)
	}
	plan.Status = models.PlanStatusAbandoned
	if err := a.store.UpdatePlan(plan); err != nil {
		return apperrors.Persistence("plan", err)
	}
	return nil
}

func (a *Allocator) find(date, taskID string) (models.PlannedTask, error) {
	plan, err := a.store.GetPlan(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.PlannedTask{}, ErrNoPlan
		}
		return models.PlannedTask{}, err
	}
	if plan.Status != models.PlanStatusActive {
		return models.PlannedTask{}, fmt.Errorf("%w: plan for %s is %s", ErrPlanClosed, date, plan.Status)
	}
	planned, err := a.store.GetPlannedTasks(plan.ID)
	if err != nil {
		return models.PlannedTask{}, err
	}
	for _, pt := range planned {
		if pt.TaskID == taskID {
			return pt, nil
		}
	}
	return models.PlannedTask{}, ErrUnknownTask
}

// Reconcile returns the planned tasks whose task changed outside the plan.
// Completed tasks complete their entry. Tasks that were deleted, archived
// or are missing defer it, so the plan can still finish.
func Reconcile(planned []models.PlannedTask, tasks map[string]models.Task) []models.PlannedTask {
	var changed []models.PlannedTask
	for _, pt := range planned {
		if pt.Status.IsTerminal() {
			continue
		}
		task, ok := tasks[pt.TaskID]
		switch {
		case ok && task.Completed:
			pt.Status = models.PlannedCompleted
			pt.CompletedAt = task.CompletedAt
		case !ok || task.DeletedAt != nil || task.ArchivedAt != nil:
			pt.Status = models.PlannedDeferred
		default:
			continue
		}
		changed = append(changed, pt)
	}
	return changed
}

func allTerminal(planned []models.PlannedTask) bool {
	if len(planned) == 0 {
		return false
	}
	for _, pt := range planned {
		if !pt.Status.IsTerminal() {
			return false
		}
	}
	return true
}
