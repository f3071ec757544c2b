// Package scoring computes the additive sub-scores used to rank tasks.
// Every function here is pure: the same task and context always produce
// the same breakdown.
package scoring

import (
	"math"
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

// Deadline urgency tiers
const (
	UrgencyOverdue  = 40
	UrgencyToday    = 35
	UrgencyTomorrow = 25
	UrgencyWeek     = 15
	UrgencyMonth    = 5
	UrgencyNone     = 0

	WeekHorizonDays  = 7
	MonthHorizonDays = 30
)

// Priority tiers
const (
	PriorityHighScore   = 30
	PriorityMediumScore = 15
	PriorityLowScore    = 5
)

// Energy match tiers, indexed by distance on [high, normal, low]
const (
	EnergyExact    = 20
	EnergyAdjacent = 10
	EnergyOpposite = 0
)

// Time fit tiers. The well-sized band is inclusive on both ends.
const (
	TimeFitNone      = 0
	TimeFitLoose     = 5
	TimeFitWellSized = 10

	WellSizedMinPercent = 30
	WellSizedMaxPercent = 70
)

// Aging
const (
	AgingPointsPerDay = 2
	AgingCap          = 10
)

// Unbounded is the remaining budget used when no time budget applies.
const Unbounded = math.MaxInt

// Context is everything besides the task that scoring depends on.
type Context struct {
	UserEnergy       models.Energy
	RemainingMinutes int
	Now              time.Time
	Location         *time.Location
}

// Breakdown is the per-component score of one task in one context.
type Breakdown struct {
	DeadlineUrgency int `json:"deadline_urgency"`
	PriorityMatch   int `json:"priority_match"`
	EnergyMatch     int `json:"energy_match"`
	TimeFit         int `json:"time_fit"`
	Aging           int `json:"aging"`
	Total           int `json:"total"`
}

// Score computes the full breakdown of task in ctx.
func Score(task models.Task, ctx Context) Breakdown {
	b := Breakdown{
		DeadlineUrgency: DeadlineUrgency(task.Deadline, ctx.Now, ctx.Location),
		PriorityMatch:   PriorityMatch(task.Priority),
		EnergyMatch:     EnergyMatch(task.Energy, ctx.UserEnergy),
		TimeFit:         TimeFit(task.EstimatedMinutes, ctx.RemainingMinutes),
		Aging:           Aging(task.CarriedFromDate, ctx.Now, ctx.Location),
	}
	b.Total = b.DeadlineUrgency + b.PriorityMatch + b.EnergyMatch + b.TimeFit + b.Aging
	return b
}

// DeadlineUrgency scores a deadline by its calendar-day distance from now.
func DeadlineUrgency(deadline *time.Time, now time.Time, loc *time.Location) int {
	if deadline == nil {
		return UrgencyNone
	}
	days := utils.CalendarDaysBetween(now, *deadline, loc)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyToday
	case days == 1:
		return UrgencyTomorrow
	case days <= WeekHorizonDays:
		return UrgencyWeek
	case days <= MonthHorizonDays:
		return UrgencyMonth
	default:
		return UrgencyNone
	}
}

// PriorityMatch scores a priority. Unset priorities score as medium.
func PriorityMatch(p models.Priority) int {
	switch models.NormalizePriority(p) {
	case models.PriorityHigh:
		return PriorityHighScore
	case models.PriorityLow:
		return PriorityLowScore
	default:
		return PriorityMediumScore
	}
}

// EnergyMatch scores how close the task's demand is to the user's capacity.
func EnergyMatch(taskEnergy, userEnergy models.Energy) int {
	distance := taskEnergy.Rank() - userEnergy.Rank()
	if distance < 0 {
		distance = -distance
	}
	switch distance {
	case 0:
		return EnergyExact
	case 1:
		return EnergyAdjacent
	default:
		return EnergyOpposite
	}
}

// TimeFit scores how well the estimate fits the remaining budget.
func TimeFit(estimatedMinutes, remainingMinutes int) int {
	if remainingMinutes == Unbounded {
		return TimeFitLoose
	}
	if remainingMinutes <= 0 || estimatedMinutes > remainingMinutes {
		return TimeFitNone
	}
	share := estimatedMinutes * 100
	if share >= WellSizedMinPercent*remainingMinutes && share <= WellSizedMaxPercent*remainingMinutes {
		return TimeFitWellSized
	}
	return TimeFitLoose
}

// Aging grows by AgingPointsPerDay for every full day since the task was
// carried over, up to AgingCap.
func Aging(carriedFromDate string, now time.Time, loc *time.Location) int {
	if carriedFromDate == "" {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}
	carried, err := utils.ParseDateInLocation(carriedFromDate, loc)
	if err != nil {
		return 0
	}
	days := utils.CalendarDaysBetween(carried, now, loc)
	if days <= 0 {
		return 0
	}
	return min(days*AgingPointsPerDay, AgingCap)
}
