package models

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/constants"
)

// Preferences is the subset of application state that survives restarts.
type Preferences struct {
	Timezone         string `json:"timezone"`           // IANA timezone name, or "Local" for the system timezone
	Energy           Energy `json:"energy"`             // last declared user energy
	DefaultBudgetMin int    `json:"default_budget_min"` // default planning budget in minutes
	LastPlanningDate string `json:"last_planning_date"` // YYYY-MM-DD of the last started plan
}

// MapToPreferences converts a map of key-value pairs to a Preferences struct.
func MapToPreferences(data map[string]string) (Preferences, error) {
	prefs := Preferences{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			prefs.Timezone = value
		case constants.SettingEnergy:
			prefs.Energy = Energy(value)
		case constants.SettingDefaultBudgetMin:
			if _, err := fmt.Sscanf(value, "%d", &prefs.DefaultBudgetMin); err != nil {
				return Preferences{}, fmt.Errorf("parsing default_budget_min: %w", err)
			}
		case constants.SettingLastPlanningDate:
			prefs.LastPlanningDate = value
		}
	}
	return prefs, nil
}

// PreferencesToMap converts a Preferences struct to a map of key-value pairs.
func PreferencesToMap(prefs Preferences) map[string]string {
	return map[string]string{
		constants.SettingTimezone:         prefs.Timezone,
		constants.SettingEnergy:           string(prefs.Energy),
		constants.SettingDefaultBudgetMin: fmt.Sprintf("%d", prefs.DefaultBudgetMin),
		constants.SettingLastPlanningDate: prefs.LastPlanningDate,
	}
}

// ApplyDefaultPreferences applies default values to missing preferences.
func ApplyDefaultPreferences(prefs *Preferences) {
	if prefs.Timezone == "" {
		prefs.Timezone = constants.DefaultTimezone
	}
	if n, ok := ParseEnergy(string(prefs.Energy)); ok {
		prefs.Energy = n
	} else {
		prefs.Energy = Energy(constants.DefaultEnergy)
	}
	if prefs.DefaultBudgetMin <= 0 {
		prefs.DefaultBudgetMin = constants.DefaultBudgetMin
	}
}
