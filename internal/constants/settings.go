package constants

const (
	// Preference keys persisted in the settings table
	SettingTimezone         = "timezone"
	SettingEnergy           = "energy"
	SettingDefaultBudgetMin = "default_budget_min"
	SettingLastPlanningDate = "last_planning_date"

	// Default preference values
	DefaultTimezone         = "Local" // Use system local timezone by default
	DefaultEnergy           = "normal"
	DefaultBudgetMin        = 240
	DefaultStuckThreshold   = 3
	DefaultAITimeoutSeconds = 20
	DefaultAIBaseURL        = "http://localhost:8787/v1"
	DefaultAIModel          = "gpt-4o-mini"
)

const (
	// Log file rotation
	LogDirName           = "logs"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)
