package planner

import (
	"testing"
	"time"

	"github.com/julianstephens/nextup/internal/models"
)

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}

func TestComputeProgress(t *testing.T) {
	now := time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC)
	plan := models.DailyPlan{AvailableMinutes: 120}

	tests := []struct {
		name    string
		planned []models.PlannedTask
		want    Progress
	}{
		{
			name: "empty plan",
			want: Progress{RemainingMinutes: 120},
		},
		{
			name: "completed with actuals and an in-progress fallback",
			planned: []models.PlannedTask{
				{TaskID: "a", Status: models.PlannedCompleted, ActualMinutes: intPtr(30)},
				{TaskID: "b", Status: models.PlannedInProgress, StartedAt: strPtr("2025-05-14T09:40:00Z")},
				{TaskID: "c", Status: models.PlannedPending},
			},
			want: Progress{Completed: 1, Total: 3, ElapsedMinutes: 50, RemainingMinutes: 70, Percentage: 33},
		},
		{
			name: "in progress with recorded actual",
			planned: []models.PlannedTask{
				{TaskID: "a", Status: models.PlannedInProgress, StartedAt: strPtr("2025-05-14T06:00:00Z"), ActualMinutes: intPtr(10)},
				{TaskID: "b", Status: models.PlannedSkipped, ActualMinutes: intPtr(99)},
			},
			want: Progress{Completed: 0, Total: 2, ElapsedMinutes: 10, RemainingMinutes: 110, Percentage: 0},
		},
		{
			name: "overrun clamps remaining at zero",
			planned: []models.PlannedTask{
				{TaskID: "a", Status: models.PlannedCompleted, ActualMinutes: intPtr(100)},
				{TaskID: "b", Status: models.PlannedCompleted, ActualMinutes: intPtr(50)},
				{TaskID: "c", Status: models.PlannedDeferred},
			},
			want: Progress{Completed: 2, Total: 3, ElapsedMinutes: 150, RemainingMinutes: 0, Percentage: 67},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeProgress(plan, tt.planned, now); got != tt.want {
				t.Errorf("ComputeProgress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
