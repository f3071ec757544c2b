package constants

import "time"

const (
	AppName            = "nextup"
	DefaultConfigDir   = "~/.config/nextup"
	DefaultDBPath      = "~/.config/nextup/nextup.db"
	DefaultConfigFile  = "~/.config/nextup/config.yaml"
	ConfigFileName     = "config.yaml"
	DefaultKeyringUser = "database-connection"
	AIKeyringUser      = "ai-api-key"
	AIKeyEnvVar        = "NEXTUP_AI_API_KEY"
	DBConnectionEnvVar = "NEXTUP_DB_CONNECTION"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for every timestamp written to storage. Timestamps
	// are always stored in UTC so that text comparison orders them correctly.
	TimestampFormat = "2006-01-02T15:04:05Z"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "nextup-"
	BackupFileSuffix = ".db"

	// Lock constants
	LockfileName = "nextup.lock"

	// Task defaults
	DefaultEstimatedMinutes = 25
	MaxEstimatedMinutes     = 24 * 60
	MaxTitleLength          = 280

	// In-flight window for duplicate mutation suppression
	InFlightTTL = 5 * time.Second
)

// SessionState represents the current view of the TUI application
type SessionState int

const (
	StateQueue SessionState = iota
	StatePlanner
	StateStuck
	StateKeepReason
	StateAddTask
)
