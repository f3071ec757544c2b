package models

import "testing"

func TestParseEnergy(t *testing.T) {
	tests := []struct {
		input  string
		want   Energy
		wantOK bool
	}{
		{"peak", EnergyHigh, true},
		{"High", EnergyHigh, true},
		{"medium", EnergyNormal, true},
		{"normal", EnergyNormal, true},
		{" low ", EnergyLow, true},
		{"", "", false},
		{"exhausted", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseEnergy(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseEnergy(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEnergyRankAndLabels(t *testing.T) {
	if EnergyHigh.Rank() != 0 || EnergyNormal.Rank() != 1 || EnergyLow.Rank() != 2 {
		t.Fatalf("unexpected ranks: %d %d %d", EnergyHigh.Rank(), EnergyNormal.Rank(), EnergyLow.Rank())
	}
	if Energy("peak").Rank() != 0 {
		t.Errorf("peak should rank as high")
	}
	if EnergyHigh.TaskLabel() != "peak" || EnergyNormal.TaskLabel() != "medium" {
		t.Errorf("unexpected task labels: %s %s", EnergyHigh.TaskLabel(), EnergyNormal.TaskLabel())
	}
	if EnergyLow.Next() != EnergyHigh {
		t.Errorf("low.Next() = %s, want high", EnergyLow.Next())
	}
}

func TestNormalizePriority(t *testing.T) {
	if got := NormalizePriority(""); got != PriorityMedium {
		t.Errorf("NormalizePriority(\"\") = %q, want medium", got)
	}
	if got := NormalizePriority("URGENT"); got != PriorityHigh {
		t.Errorf("NormalizePriority(URGENT) = %q, want high", got)
	}
	if got := NormalizePriority("whenever"); got != PriorityMedium {
		t.Errorf("NormalizePriority(whenever) = %q, want medium", got)
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{ID: "t1", Title: "Write report", Priority: PriorityHigh, Energy: EnergyHigh, EstimatedMinutes: 25}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	both := valid
	both.Completed = true
	both.Skipped = true
	if err := both.Validate(); err == nil {
		t.Error("Validate() should reject a task that is completed and skipped")
	}

	noTitle := valid
	noTitle.Title = "  "
	if err := noTitle.Validate(); err == nil {
		t.Error("Validate() should reject an empty title")
	}
}

func TestPlannedTaskTransitions(t *testing.T) {
	tests := []struct {
		from, to PlannedTaskStatus
		want     bool
	}{
		{PlannedPending, PlannedInProgress, true},
		{PlannedPending, PlannedCompleted, true},
		{PlannedInProgress, PlannedDeferred, true},
		{PlannedInProgress, PlannedPending, false},
		{PlannedCompleted, PlannedSkipped, false},
		{PlannedPending, PlannedPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
