package models

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusAbandoned PlanStatus = "abandoned"
)

type PlannedTaskStatus string

const (
	PlannedPending    PlannedTaskStatus = "pending"
	PlannedInProgress PlannedTaskStatus = "in_progress"
	PlannedCompleted  PlannedTaskStatus = "completed"
	PlannedSkipped    PlannedTaskStatus = "skipped"
	PlannedDeferred   PlannedTaskStatus = "deferred"
)

// IsTerminal reports whether no further transition is allowed.
func (s PlannedTaskStatus) IsTerminal() bool {
	return s == PlannedCompleted || s == PlannedSkipped || s == PlannedDeferred
}

func (s PlannedTaskStatus) stage() int {
	switch s {
	case PlannedPending:
		return 0
	case PlannedInProgress:
		return 1
	default:
		return 2
	}
}

// CanTransition reports whether moving from s to next keeps the status
// monotonic: pending -> in_progress -> terminal, or pending -> terminal.
func (s PlannedTaskStatus) CanTransition(next PlannedTaskStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return next.stage() > s.stage()
}

type DailyPlan struct {
	ID               string     `json:"id"`
	Date             string     `json:"date"` // YYYY-MM-DD format
	Energy           Energy     `json:"energy"`
	AvailableMinutes int        `json:"available_minutes"`
	Status           PlanStatus `json:"status"`
	CreatedAt        string     `json:"created_at"`
	CompletedAt      *string    `json:"completed_at,omitempty"`
}

type PlannedTask struct {
	PlanID        string            `json:"plan_id"`
	TaskID        string            `json:"task_id"`
	Order         int               `json:"order"`
	Status        PlannedTaskStatus `json:"status"`
	StartedAt     *string           `json:"started_at,omitempty"`
	CompletedAt   *string           `json:"completed_at,omitempty"`
	ActualMinutes *int              `json:"actual_minutes,omitempty"`
}
