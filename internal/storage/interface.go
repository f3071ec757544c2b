package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/nextup/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrPlanExists = errors.New("a plan already exists for this date")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Preferences
	GetPreferences() (models.Preferences, error)
	SavePreferences(models.Preferences) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	// GetOpenTasks returns tasks that are neither completed, skipped,
	// archived nor deleted, ordered by position.
	GetOpenTasks() ([]models.Task, error)
	GetAllTasks() ([]models.Task, error)
	GetAllTasksIncludingDeleted() ([]models.Task, error)
	// GetTasksDueBefore returns open tasks whose deadline is at or before t.
	GetTasksDueBefore(t time.Time) ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id string) error
	RestoreTask(id string) error
	NextPosition() (int, error)
	// ArchiveFinished archives every completed or skipped task and returns
	// how many were archived.
	ArchiveFinished(at time.Time) (int, error)
	// ReviveSkipped returns tasks skipped before the given instant to the
	// open pool and returns how many were revived.
	ReviveSkipped(before time.Time) (int, error)

	// Stats ledger. Each call writes the task, the stats record and any
	// matching planned task of an active plan in one transaction.
	GetStats() (models.UserStats, error)
	RecordCompletion(task models.Task, stats models.UserStats) error
	RecordSkip(task models.Task, stats models.UserStats) error

	// Skip audit trail
	AddSkipEvent(models.SkipEvent) error
	GetSkipEvents() ([]models.SkipEvent, error)

	// DeferTask sets the task's carry date and marks its planned task in the
	// active plan for date as deferred, in one transaction.
	DeferTask(taskID, date string) error

	// Plans
	// CreatePlan stores a plan and its planned tasks in one transaction. It
	// returns ErrPlanExists when an active or completed plan exists for the
	// date; an abandoned plan for the date is replaced.
	CreatePlan(models.DailyPlan, []models.PlannedTask) error
	GetPlan(date string) (models.DailyPlan, error)
	GetAllPlans() ([]models.DailyPlan, error)
	UpdatePlan(models.DailyPlan) error
	GetPlannedTasks(planID string) ([]models.PlannedTask, error)
	UpdatePlannedTask(models.PlannedTask) error

	// Utils
	GetConfigPath() string
}
