package planner

import (
	"math"
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

// Progress is derived from the planned tasks on every read.
type Progress struct {
	Completed        int `json:"completed"`
	Total            int `json:"total"`
	ElapsedMinutes   int `json:"elapsed_minutes"`
	RemainingMinutes int `json:"remaining_minutes"`
	Percentage       int `json:"percentage"`
}

// ComputeProgress derives the day's progress. In-progress tasks without a
// recorded actual duration count the minutes since they were started.
func ComputeProgress(plan models.DailyPlan, planned []models.PlannedTask, now time.Time) Progress {
	p := Progress{Total: len(planned)}

	for _, pt := range planned {
		if pt.Status == models.PlannedCompleted {
			p.Completed++
		}
		if pt.Status != models.PlannedCompleted && pt.Status != models.PlannedInProgress {
			continue
		}
		switch {
		case pt.ActualMinutes != nil:
			p.ElapsedMinutes += *pt.ActualMinutes
		case pt.Status == models.PlannedInProgress && pt.StartedAt != nil:
			p.ElapsedMinutes += minutesSince(*pt.StartedAt, now)
		}
	}

	p.RemainingMinutes = max(0, plan.AvailableMinutes-p.ElapsedMinutes)
	if p.Total > 0 {
		p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}

func minutesSince(timestamp string, now time.Time) int {
	started, err := utils.ParseTimestamp(timestamp)
	if err != nil {
		return 0
	}
	return max(0, int(now.Sub(started).Minutes()))
}
