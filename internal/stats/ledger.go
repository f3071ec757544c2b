// Package stats keeps the user's completion counters, streak and trust
// score, applying changes optimistically and rolling back on write failure.
package stats

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

// Persister writes a finished task and the new stats atomically.
type Persister interface {
	RecordCompletion(task models.Task, stats models.UserStats) error
	RecordSkip(task models.Task, stats models.UserStats) error
}

// State is the in-memory view the ledger mutates: the active task list and
// the stats record.
type State struct {
	Tasks []models.Task
	Stats models.UserStats
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Stats: s.Stats}
	if s.Tasks != nil {
		out.Tasks = make([]models.Task, len(s.Tasks))
		for i, t := range s.Tasks {
			out.Tasks[i] = cloneTask(t)
		}
	}
	return out
}

func cloneTask(t models.Task) models.Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	t.CompletedAt = cloneString(t.CompletedAt)
	t.SkippedAt = cloneString(t.SkippedAt)
	t.ArchivedAt = cloneString(t.ArchivedAt)
	t.DeletedAt = cloneString(t.DeletedAt)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type Op string

const (
	OpComplete Op = "complete"
	OpSkip     Op = "skip"
)

// Command is one ledger mutation. Before and After are full snapshots, so
// Undo restores the exact previous state.
type Command struct {
	Op     Op
	TaskID string
	Task   models.Task
	Before State
	After  State
	At     time.Time
}

func (c Command) Apply(s *State) {
	*s = c.After.Clone()
}

func (c Command) Undo(s *State) {
	*s = c.Before.Clone()
}

// CelebrateFunc is called after a completion has been applied in memory.
type CelebrateFunc func(task models.Task, stats models.UserStats)

// Ledger is the only writer of models.UserStats.
type Ledger struct {
	persister Persister
	loc       *time.Location
	state     State
	history   []Command
	celebrate CelebrateFunc
}

func NewLedger(p Persister, initial State, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{persister: p, loc: loc, state: initial.Clone()}
}

// OnCelebrate registers the completion hook.
func (l *Ledger) OnCelebrate(fn CelebrateFunc) {
	l.celebrate = fn
}

// State returns a copy of the current state.
func (l *Ledger) State() State {
	return l.state.Clone()
}

func (l *Ledger) Stats() models.UserStats {
	return l.state.Stats
}

func (l *Ledger) Tasks() []models.Task {
	return l.State().Tasks
}

// SetTasks replaces the active task list, e.g. after a task was created or
// edited elsewhere.
func (l *Ledger) SetTasks(tasks []models.Task) {
	l.state.Tasks = State{Tasks: tasks}.Clone().Tasks
}

// History returns the committed commands, oldest first.
func (l *Ledger) History() []Command {
	out := make([]Command, len(l.history))
	copy(out, l.history)
	return out
}

// Complete marks taskID completed at the given instant.
func (l *Ledger) Complete(taskID string, at time.Time) (models.Task, error) {
	cmd, err := l.prepare(OpComplete, taskID, at, func(t *models.Task, s *models.UserStats) {
		t.Completed = true
		t.CompletedAt = utils.StringPtr(utils.FormatTimestamp(at))
		*s = ApplyCompletion(*s, at, l.loc)
	})
	if err != nil {
		return models.Task{}, err
	}

	cmd.Apply(&l.state)
	if l.celebrate != nil {
		l.celebrate(cmd.Task, cmd.After.Stats)
	}

	if err := l.persister.RecordCompletion(cmd.Task, cmd.After.Stats); err != nil {
		cmd.Undo(&l.state)
		if l.celebrate != nil {
			logger.Warn("Completion rolled back after celebration was shown", "task", taskID, "error", err)
		}
		return models.Task{}, apperrors.Persistence("completion", err)
	}
	l.history = append(l.history, cmd)
	return cmd.Task, nil
}

// Skip marks taskID skipped with an optional reason.
func (l *Ledger) Skip(taskID, reason string, at time.Time) (models.Task, error) {
	cmd, err := l.prepare(OpSkip, taskID, at, func(t *models.Task, s *models.UserStats) {
		t.Skipped = true
		t.SkippedAt = utils.StringPtr(utils.FormatTimestamp(at))
		t.SkipReason = strings.TrimSpace(reason)
		*s = ApplySkip(*s)
	})
	if err != nil {
		return models.Task{}, err
	}

	cmd.Apply(&l.state)
	if err := l.persister.RecordSkip(cmd.Task, cmd.After.Stats); err != nil {
		cmd.Undo(&l.state)
		return models.Task{}, apperrors.Persistence("skip", err)
	}
	l.history = append(l.history, cmd)
	return cmd.Task, nil
}

func (l *Ledger) prepare(op Op, taskID string, at time.Time, mutate func(*models.Task, *models.UserStats)) (Command, error) {
	before := l.state.Clone()
	idx := -1
	for i, t := range before.Tasks {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Command{}, apperrors.Invalid("task", "%s is not an open task", taskID)
	}
	if !before.Tasks[idx].IsOpen() {
		return Command{}, apperrors.Invalid("task", "%s is already finished", taskID)
	}

	after := before.Clone()
	task := after.Tasks[idx]
	mutate(&task, &after.Stats)
	after.Tasks = append(after.Tasks[:idx], after.Tasks[idx+1:]...)

	if task.Completed && task.Skipped {
		return Command{}, fmt.Errorf("task %s cannot be both completed and skipped", taskID)
	}
	return Command{Op: op, TaskID: taskID, Task: task, Before: before, After: after, At: at}, nil
}
