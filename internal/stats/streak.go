package stats

import (
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

const (
	TrustCompletionBonus = 2
	TrustSkipPenalty     = 3
	MinTrust             = 0
	MaxTrust             = 100
)

// ApplyCompletion returns stats after a completion at the given instant.
// Dates are calendar dates in loc.
func ApplyCompletion(s models.UserStats, at time.Time, loc *time.Location) models.UserStats {
	today := utils.DateString(at, loc)
	yesterday := utils.DateString(at.In(loc).AddDate(0, 0, -1), loc)

	consecutive := s.LastCompletedDate == today || s.LastCompletedDate == yesterday
	newDay := s.LastCompletedDate != today

	switch {
	case !consecutive:
		s.CurrentStreak = 1
	case newDay:
		s.CurrentStreak++
	}
	s.StreakBest = max(s.StreakBest, s.CurrentStreak)
	s.TotalCompleted++
	s.TrustScore = min(MaxTrust, s.TrustScore+TrustCompletionBonus)
	s.LastCompletedDate = today
	return s
}

// ApplySkip returns stats after a skip.
func ApplySkip(s models.UserStats) models.UserStats {
	s.TotalSkipped++
	s.TrustScore = max(MinTrust, s.TrustScore-TrustSkipPenalty)
	return s
}
