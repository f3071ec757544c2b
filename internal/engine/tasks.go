package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nextup/internal/constants"
	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/stuck"
	"github.com/julianstephens/nextup/internal/utils"
	"github.com/julianstephens/nextup/internal/validation"
)

// TaskInput is a task as entered by the user. Priority and energy accept
// any known label; Deadline is YYYY-MM-DD or RFC 3339.
type TaskInput struct {
	Title            string
	Priority         string
	Energy           string
	EstimatedMinutes int
	Deadline         string
	ParentID         string
}

// TaskPatch changes the non-nil fields of a task. An empty Deadline clears it.
type TaskPatch struct {
	Title            *string
	Priority         *string
	Energy           *string
	EstimatedMinutes *int
	Deadline         *string
	Blocker          *string
}

// SkipOutcome is the result of a skip. Signal is set when the skip pushed
// the task to the stuck threshold.
type SkipOutcome struct {
	Task   models.Task
	Stuck  bool
	Signal stuck.Signal
}

func (s *Session) parseDeadline(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if d, err := utils.ParseDateInLocation(value, s.loc); err == nil {
		return &d, nil
	}
	if d, err := time.Parse(time.RFC3339, value); err == nil {
		return &d, nil
	}
	return nil, apperrors.Invalid("deadline", "expected YYYY-MM-DD or RFC 3339, got %q", value)
}

// AddTask validates and stores a new task at the end of the insertion order.
func (s *Session) AddTask(in TaskInput) (models.Task, error) {
	priority, err := validation.ParsePriorityInput(in.Priority)
	if err != nil {
		return models.Task{}, err
	}
	energy := models.EnergyNormal
	if strings.TrimSpace(in.Energy) != "" {
		if energy, err = validation.ParseEnergyInput(in.Energy); err != nil {
			return models.Task{}, err
		}
	}
	minutes := in.EstimatedMinutes
	if minutes == 0 {
		minutes = constants.DefaultEstimatedMinutes
	}
	deadline, err := s.parseDeadline(in.Deadline)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:               uuid.New().String(),
		Title:            strings.TrimSpace(in.Title),
		Priority:         priority,
		Energy:           energy,
		EstimatedMinutes: minutes,
		Deadline:         deadline,
		ParentID:         in.ParentID,
		CreatedAt:        utils.FormatTimestamp(s.now()),
	}
	return s.insert(task)
}

func (s *Session) insert(task models.Task) (models.Task, error) {
	if err := validation.ValidateTask(task); err != nil {
		return models.Task{}, err
	}
	pos, err := s.store.NextPosition()
	if err != nil {
		return models.Task{}, apperrors.Persistence("task", err)
	}
	task.Position = pos
	if err := s.store.AddTask(task); err != nil {
		return models.Task{}, apperrors.Persistence("task", err)
	}
	logger.Info("Added task", "id", task.ID, "title", task.Title)
	return task, s.refresh()
}

// EditTask applies patch to an open or finished task.
func (s *Session) EditTask(id string, patch TaskPatch) (models.Task, error) {
	release, err := s.guard(id)
	if err != nil {
		return models.Task{}, err
	}
	defer release()

	task, err := s.store.GetTask(id)
	if err != nil {
		return models.Task{}, err
	}
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Priority != nil {
		if task.Priority, err = validation.ParsePriorityInput(*patch.Priority); err != nil {
			return models.Task{}, err
		}
	}
	if patch.Energy != nil {
		if task.Energy, err = validation.ParseEnergyInput(*patch.Energy); err != nil {
			return models.Task{}, err
		}
	}
	if patch.EstimatedMinutes != nil {
		task.EstimatedMinutes = *patch.EstimatedMinutes
	}
	if patch.Deadline != nil {
		if task.Deadline, err = s.parseDeadline(*patch.Deadline); err != nil {
			return models.Task{}, err
		}
	}
	if patch.Blocker != nil {
		task.Blocker = strings.TrimSpace(*patch.Blocker)
	}
	if err := validation.ValidateTask(task); err != nil {
		return models.Task{}, err
	}
	if err := s.store.UpdateTask(task); err != nil {
		return models.Task{}, apperrors.Persistence("task", err)
	}
	return task, s.refresh()
}

func (s *Session) GetTask(id string) (models.Task, error) {
	return s.store.GetTask(id)
}

// ListTasks returns open tasks, or every non-deleted task when all is set.
func (s *Session) ListTasks(all bool) ([]models.Task, error) {
	if all {
		return s.store.GetAllTasks()
	}
	return s.store.GetOpenTasks()
}

// DeletedTasks returns soft-deleted tasks.
func (s *Session) DeletedTasks() ([]models.Task, error) {
	tasks, err := s.store.GetAllTasksIncludingDeleted()
	if err != nil {
		return nil, err
	}
	var deleted []models.Task
	for _, t := range tasks {
		if t.DeletedAt != nil {
			deleted = append(deleted, t)
		}
	}
	return deleted, nil
}

func (s *Session) DeleteTask(id string) error {
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	logger.Info("Deleted task", "id", id)
	return s.refresh()
}

func (s *Session) RestoreTask(id string) error {
	if err := s.store.RestoreTask(id); err != nil {
		return err
	}
	logger.Info("Restored task", "id", id)
	return s.refresh()
}

// DueBefore returns open tasks due at or before t.
func (s *Session) DueBefore(t time.Time) ([]models.Task, error) {
	return s.store.GetTasksDueBefore(t)
}

// Complete marks the task completed through the ledger. Any planned entry
// for the task in an active plan is completed in the same write.
func (s *Session) Complete(id string) (models.Task, error) {
	release, err := s.guard(id)
	if err != nil {
		return models.Task{}, err
	}
	defer release()

	task, err := s.ledger.Complete(id, s.now())
	if err != nil {
		return models.Task{}, err
	}
	s.detector.RecordCompletion(id)
	s.recordEvent(id, models.SkipEventComplete, "", false)
	logger.Info("Completed task", "id", id, "streak", s.ledger.Stats().CurrentStreak)
	return task, nil
}

// Skip declines the task for today. Only skips of the current head count
// towards the stuck threshold.
func (s *Session) Skip(id, reason string) (SkipOutcome, error) {
	release, err := s.guard(id)
	if err != nil {
		return SkipOutcome{}, err
	}
	defer release()

	head, ok := s.Current()
	wasHead := ok && head.Task.ID == id

	task, err := s.ledger.Skip(id, reason, s.now())
	if err != nil {
		return SkipOutcome{}, err
	}
	s.recordEvent(id, models.SkipEventSkip, task.SkipReason, wasHead)

	out := SkipOutcome{Task: task}
	out.Signal, out.Stuck = s.detector.RecordSkip(id, wasHead)
	if out.Stuck {
		logger.Info("Task is stuck", "id", id, "skips", out.Signal.SkipCount)
	}
	return out, nil
}

// Keep answers a stuck prompt by keeping the task with a blocker note.
func (s *Session) Keep(id, reason string) (models.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Task{}, apperrors.Invalid("reason", "is required to keep a task")
	}
	task, err := s.EditTask(id, TaskPatch{Blocker: &reason})
	if err != nil {
		return models.Task{}, err
	}
	s.detector.Keep(id, reason)
	s.recordEvent(id, models.SkipEventKeep, reason, false)
	return task, nil
}

// Defer carries the task over from today. When today's plan contains the
// task its planned entry becomes deferred.
func (s *Session) Defer(id string) error {
	release, err := s.guard(id)
	if err != nil {
		return err
	}
	defer release()

	today := s.Today()
	err = s.alloc.Defer(today, id)
	if errors.Is(err, planner.ErrNoPlan) || errors.Is(err, planner.ErrUnknownTask) || errors.Is(err, planner.ErrPlanClosed) {
		var task models.Task
		if task, err = s.store.GetTask(id); err == nil {
			if !task.IsOpen() {
				return apperrors.Invalid("task", "%s is already finished", id)
			}
			err = s.store.DeferTask(id, today)
		}
	}
	if err != nil {
		return err
	}

	s.detector.Defer(id)
	s.recordEvent(id, models.SkipEventDefer, "", false)
	logger.Info("Deferred task", "id", id, "date", today)
	return s.refresh()
}

// Reset archives every completed and skipped task. The database is backed
// up first when backups are available.
func (s *Session) Reset() (int, error) {
	if s.backups != nil {
		path, err := s.backups.Create()
		if err != nil {
			return 0, fmt.Errorf("backup before reset failed: %w", err)
		}
		logger.Info("Backed up before reset", "path", path)
	}
	n, err := s.store.ArchiveFinished(s.now())
	if err != nil {
		return 0, apperrors.Persistence("reset", err)
	}
	logger.Info("Archived finished tasks", "count", n)
	return n, s.refresh()
}
