package models

import "strings"

// Energy is the canonical energy vocabulary shared by tasks and users.
// Tasks are often labelled peak/medium/low and users high/normal/low; both
// are converted to this type at every boundary.
type Energy string

const (
	EnergyHigh   Energy = "high"
	EnergyNormal Energy = "normal"
	EnergyLow    Energy = "low"
)

// Energies lists the energy levels from highest to lowest.
var Energies = []Energy{EnergyHigh, EnergyNormal, EnergyLow}

// ParseEnergy converts any known label (case-insensitive) into an Energy.
// peak and high map to high, medium and normal map to normal.
func ParseEnergy(s string) (Energy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "peak", "high":
		return EnergyHigh, true
	case "normal", "medium", "med":
		return EnergyNormal, true
	case "low":
		return EnergyLow, true
	}
	return "", false
}

// NormalizeEnergy returns the canonical form of e, falling back to normal.
func NormalizeEnergy(e Energy) Energy {
	if n, ok := ParseEnergy(string(e)); ok {
		return n
	}
	return EnergyNormal
}

// Rank is the position of the level on the ordered scale [high, normal, low].
func (e Energy) Rank() int {
	switch NormalizeEnergy(e) {
	case EnergyHigh:
		return 0
	case EnergyLow:
		return 2
	default:
		return 1
	}
}

// TaskLabel returns the label used for task energy in the task vocabulary.
func (e Energy) TaskLabel() string {
	switch NormalizeEnergy(e) {
	case EnergyHigh:
		return "peak"
	case EnergyLow:
		return "low"
	default:
		return "medium"
	}
}

// Next cycles high -> normal -> low -> high.
func (e Energy) Next() Energy {
	return Energies[(e.Rank()+1)%len(Energies)]
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority converts a label into a Priority. The empty string is not a
// valid priority; callers that accept unset values use NormalizePriority.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h", "urgent":
		return PriorityHigh, true
	case "medium", "med", "m", "normal":
		return PriorityMedium, true
	case "low", "l":
		return PriorityLow, true
	}
	return "", false
}

// NormalizePriority defaults unset or unknown priorities to medium.
func NormalizePriority(p Priority) Priority {
	if n, ok := ParsePriority(string(p)); ok {
		return n
	}
	return PriorityMedium
}
