package models

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Priority         Priority   `json:"priority"`
	Energy           Energy     `json:"energy"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Completed        bool       `json:"completed"`
	CompletedAt      *string    `json:"completed_at,omitempty"` // RFC3339 timestamp
	Skipped          bool       `json:"skipped"`
	SkippedAt        *string    `json:"skipped_at,omitempty"` // RFC3339 timestamp
	SkipReason       string     `json:"skip_reason,omitempty"`
	CarriedFromDate  string     `json:"carried_from_date,omitempty"` // YYYY-MM-DD format
	Position         int        `json:"position"`
	ParentID         string     `json:"parent_id,omitempty"`
	Blocker          string     `json:"blocker,omitempty"`
	CreatedAt        string     `json:"created_at"`
	ArchivedAt       *string    `json:"archived_at,omitempty"`
	DeletedAt        *string    `json:"deleted_at,omitempty"`
}

// IsOpen reports whether the task is still eligible for ranking.
func (t Task) IsOpen() bool {
	return !t.Completed && !t.Skipped && t.ArchivedAt == nil && t.DeletedAt == nil
}

// Validate checks the task's own invariants.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if t.EstimatedMinutes <= 0 {
		return fmt.Errorf("estimated minutes must be positive")
	}
	if t.Completed && t.Skipped {
		return fmt.Errorf("task %s cannot be both completed and skipped", t.ID)
	}
	if _, ok := ParsePriority(string(t.Priority)); !ok {
		return fmt.Errorf("invalid priority: %q", t.Priority)
	}
	if _, ok := ParseEnergy(string(t.Energy)); !ok {
		return fmt.Errorf("invalid energy: %q", t.Energy)
	}
	return nil
}

// SkipEvent is one entry of the skip audit trail.
type SkipEvent struct {
	TaskID    string `json:"task_id"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason,omitempty"`
	WasHead   bool   `json:"was_head"`
	CreatedAt string `json:"created_at"`
}

const (
	SkipEventSkip      = "skip"
	SkipEventComplete  = "complete"
	SkipEventKeep      = "keep"
	SkipEventDefer     = "defer"
	SkipEventBreakdown = "breakdown"
)

// StuckInfo is the derived skip state of a single task.
type StuckInfo struct {
	TaskID    string `json:"task_id"`
	SkipCount int    `json:"skip_count"`
	Blocker   string `json:"blocker,omitempty"`
}
