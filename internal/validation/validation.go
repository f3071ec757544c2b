package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/nextup/internal/constants"
	"github.com/julianstephens/nextup/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTaskTitle  ConflictType = "duplicate_task_title"
	ConflictCompletedAndSkipped ConflictType = "completed_and_skipped"
	ConflictInvalidEstimate     ConflictType = "invalid_estimate"
	ConflictInvalidDate         ConflictType = "invalid_date"
	ConflictOvercommitted       ConflictType = "overcommitted"
	ConflictMissingTaskID       ConflictType = "missing_task_id"
	ConflictDuplicateOrder      ConflictType = "duplicate_order"
)

// Conflict represents a detected conflict in tasks or plans
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Task titles involved
	TaskIDs     []string // IDs of tasks involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator validates stored tasks and plans for conflicts
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateTasks checks tasks for conflicts. Deleted tasks are ignored.
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]string)
	display := make(map[string]string)
	for _, task := range tasks {
		if task.DeletedAt != nil || task.ArchivedAt != nil || !task.IsOpen() {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(task.Title))
		if key == "" {
			continue
		}
		titles[key] = append(titles[key], task.ID)
		display[key] = task.Title
	}

	keys := make([]string, 0, len(titles))
	for k := range titles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ids := titles[key]
		if len(ids) < 2 {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateTaskTitle,
			Description: fmt.Sprintf("Duplicate open task: %q (IDs: %v)", display[key], ids),
			Items:       []string{display[key]},
			TaskIDs:     ids,
		})
	}

	for _, task := range tasks {
		if task.DeletedAt != nil {
			continue
		}
		if task.Completed && task.Skipped {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictCompletedAndSkipped,
				Description: fmt.Sprintf("Task %q is marked both completed and skipped", task.Title),
				Items:       []string{task.Title},
				TaskIDs:     []string{task.ID},
			})
		}
		if err := ValidateEstimate(task.EstimatedMinutes); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidEstimate,
				Description: fmt.Sprintf("Task %q has an invalid estimate of %d minutes", task.Title, task.EstimatedMinutes),
				Items:       []string{task.Title},
				TaskIDs:     []string{task.ID},
			})
		}
		if task.CarriedFromDate != "" {
			if _, err := time.Parse(constants.DateFormat, task.CarriedFromDate); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidDate,
					Description: fmt.Sprintf("Task %q has invalid carried_from_date: %s", task.Title, task.CarriedFromDate),
					Items:       []string{task.Title},
					TaskIDs:     []string{task.ID},
				})
			}
		}
	}

	return result
}

// ValidatePlan checks a day plan against the tasks it references.
func (v *Validator) ValidatePlan(plan models.DailyPlan, planned []models.PlannedTask, tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byID := make(map[string]models.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}

	total := 0
	orders := make(map[int][]string)
	for _, pt := range planned {
		orders[pt.Order] = append(orders[pt.Order], pt.TaskID)

		task, ok := byID[pt.TaskID]
		if !ok || task.DeletedAt != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingTaskID,
				Description: fmt.Sprintf("Plan %s references missing task %s", plan.Date, pt.TaskID),
				Date:        plan.Date,
				TaskIDs:     []string{pt.TaskID},
			})
			continue
		}
		total += task.EstimatedMinutes
	}

	if plan.AvailableMinutes > 0 && total > plan.AvailableMinutes {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOvercommitted,
			Description: fmt.Sprintf("Plan %s is overcommitted: %d minutes planned for a %d minute budget", plan.Date, total, plan.AvailableMinutes),
			Date:        plan.Date,
		})
	}

	dupOrders := make([]int, 0)
	for order, ids := range orders {
		if len(ids) > 1 {
			dupOrders = append(dupOrders, order)
		}
	}
	sort.Ints(dupOrders)
	for _, order := range dupOrders {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateOrder,
			Description: fmt.Sprintf("Plan %s has %d tasks at order %d", plan.Date, len(orders[order]), order),
			Date:        plan.Date,
			TaskIDs:     orders[order],
		})
	}

	return result
}

// AutoFixDuplicateTasks keeps the oldest task of each duplicate group and
// soft-deletes the rest through deleteFunc.
func AutoFixDuplicateTasks(conflicts []Conflict, tasks []models.Task, deleteFunc func(id string) error) []FixAction {
	actions := []FixAction{}

	taskMap := make(map[string]models.Task)
	for _, task := range tasks {
		taskMap[task.ID] = task
	}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictDuplicateTaskTitle || len(conflict.TaskIDs) <= 1 {
			continue
		}

		var group []models.Task
		for _, id := range conflict.TaskIDs {
			if task, ok := taskMap[id]; ok && task.DeletedAt == nil {
				group = append(group, task)
			}
		}
		if len(group) <= 1 {
			continue
		}

		// Oldest first by position, which follows insertion order.
		sort.Slice(group, func(i, j int) bool {
			if group[i].Position != group[j].Position {
				return group[i].Position < group[j].Position
			}
			return group[i].ID < group[j].ID
		})

		keep := group[0]
		var deletedIDs, failedIDs []string
		for _, task := range group[1:] {
			if err := deleteFunc(task.ID); err != nil {
				failedIDs = append(failedIDs, task.ID)
				continue
			}
			deletedIDs = append(deletedIDs, task.ID)
		}

		switch {
		case len(deletedIDs) > 0:
			msg := fmt.Sprintf("Removed %d duplicate task(s) titled %q (kept ID: %s, removed: %v)", len(deletedIDs), keep.Title, keep.ID, deletedIDs)
			if len(failedIDs) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failedIDs)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		case len(failedIDs) > 0:
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove duplicates for %q: %v", keep.Title, failedIDs),
				SourceConflict: conflict,
			})
		}
	}

	return actions
}
