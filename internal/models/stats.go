package models

// UserStats is the singleton behavioural record of the user.
type UserStats struct {
	TotalCompleted    int    `json:"total_completed"`
	TotalSkipped      int    `json:"total_skipped"`
	CurrentStreak     int    `json:"current_streak"`
	StreakBest        int    `json:"streak_best"`
	TrustScore        int    `json:"trust_score"`
	LastCompletedDate string `json:"last_completed_date,omitempty"` // YYYY-MM-DD format
}

// InitialTrustScore is the trust score of a user with no history.
const InitialTrustScore = 50

// NewUserStats returns the stats of a user with no history.
func NewUserStats() UserStats {
	return UserStats{TrustScore: InitialTrustScore}
}
