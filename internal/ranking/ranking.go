package ranking

import (
	"sort"
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/scoring"
)

// TaskScore pairs a task with its score in the context it was ranked in.
type TaskScore struct {
	Task  models.Task       `json:"task"`
	Score scoring.Breakdown `json:"score"`
}

// Engine ranks open tasks. It keeps no state between calls: every ranking is
// recomputed from the task list it is given.
type Engine struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc, now: time.Now}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Location returns the timezone used for calendar-day calculations.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Queue returns every open task in continuous "do next" order.
func (e *Engine) Queue(tasks []models.Task, energy models.Energy) []TaskScore {
	return e.rank(tasks, energy, scoring.Unbounded)
}

// Current returns the head of the continuous queue.
func (e *Engine) Current(tasks []models.Task, energy models.Energy) (TaskScore, bool) {
	queue := e.Queue(tasks, energy)
	if len(queue) == 0 {
		return TaskScore{}, false
	}
	return queue[0], true
}

// ForPlanning ranks open tasks against a minute budget.
func (e *Engine) ForPlanning(tasks []models.Task, energy models.Energy, budgetMinutes int) []TaskScore {
	return e.rank(tasks, energy, budgetMinutes)
}

func (e *Engine) rank(tasks []models.Task, energy models.Energy, remaining int) []TaskScore {
	ctx := scoring.Context{
		UserEnergy:       models.NormalizeEnergy(energy),
		RemainingMinutes: remaining,
		Now:              e.now(),
		Location:         e.loc,
	}

	scored := make([]TaskScore, 0, len(tasks))
	for _, task := range tasks {
		if !task.IsOpen() {
			continue
		}
		scored = append(scored, TaskScore{Task: task, Score: scoring.Score(task, ctx)})
	}

	// Equal totals keep insertion order: lower position first, then input order.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score.Total != scored[j].Score.Total {
			return scored[i].Score.Total > scored[j].Score.Total
		}
		return scored[i].Task.Position < scored[j].Task.Position
	})

	return scored
}

// IDs returns the task ids of ranked in order.
func IDs(ranked []TaskScore) []string {
	ids := make([]string, len(ranked))
	for i, ts := range ranked {
		ids[i] = ts.Task.ID
	}
	return ids
}
