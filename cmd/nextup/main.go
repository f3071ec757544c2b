package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/nextup/internal/backup"
	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/cli/backups"
	"github.com/julianstephens/nextup/internal/cli/plans"
	"github.com/julianstephens/nextup/internal/cli/queue"
	"github.com/julianstephens/nextup/internal/cli/system"
	"github.com/julianstephens/nextup/internal/cli/tasks"
	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/constants"
	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/keyring"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/storage/postgres"
	"github.com/julianstephens/nextup/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite database path or PostgreSQL connection string. Defaults to $NEXTUP_DB_CONNECTION, then the keyring, then nextup.db next to the config file. Credentials must NOT be embedded in a connection string given here." name:"db"`
	Config  string `help:"Path to config.yaml." type:"path" default:"~/.config/nextup/config.yaml"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize nextup storage and write a default config."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Next     queue.NextCmd      `cmd:"" help:"Show the task to do next."`
	Queue    queue.QueueCmd     `cmd:"" help:"Show the ranked queue."`
	Done     queue.DoneCmd      `cmd:"" help:"Complete a task."`
	Skip     queue.SkipCmd      `cmd:"" help:"Skip a task for today."`
	Keep     queue.KeepCmd      `cmd:"" help:"Keep a stuck task, noting what blocks it."`
	Defer    queue.DeferCmd     `cmd:"" help:"Carry a task over to a later day."`
	Energy   queue.EnergyCmd    `cmd:"" help:"Show or set your energy level."`
	Stats    queue.StatsCmd     `cmd:"" help:"Show streaks, trust score and stuck tasks."`
	Reset    queue.ResetCmd     `cmd:"" help:"Archive completed and skipped tasks."`
	Plan     plans.PlanCmd      `cmd:"" help:"Plan today against the time you have."`
	Day      plans.DayCmd       `cmd:"" help:"Show and work through today's plan."`
	Validate system.ValidateCmd `cmd:"" help:"Validate tasks and today's plan for conflicts."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Task     struct {
		Add       tasks.TaskAddCmd       `cmd:"" help:"Add a new task."`
		Edit      tasks.TaskEditCmd      `cmd:"" help:"Edit an existing task."`
		Delete    tasks.TaskDeleteCmd    `cmd:"" help:"Delete a task."`
		Restore   tasks.TaskRestoreCmd   `cmd:"" help:"Restore a deleted task."`
		List      tasks.TaskListCmd      `cmd:"" help:"List tasks." default:"1"`
		Parse     tasks.TaskParseCmd     `cmd:"" help:"Create a task from free text using the AI service."`
		Breakdown tasks.TaskBreakdownCmd `cmd:"" help:"Split a task into steps using the AI service."`
	} `cmd:"" help:"Manage tasks."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Secret struct {
		Set    system.SecretSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete system.SecretDeleteCmd `cmd:"" help:"Delete a secret from the OS keyring."`
		Status system.SecretStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("What should I do next? Ranks your tasks against your energy and time."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configDir := filepath.Dir(CLI.Config)
	cfg, err := config.Load(CLI.Config)
	apperrors.Fatal(err)

	if err := logger.Init(loggerConfig(cfg, configDir, CLI.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, backups, err := openStore(CLI.DB, configDir)
	apperrors.Fatal(err)

	appCtx := &cli.Context{
		Store:     store,
		Config:    cfg,
		ConfigDir: configDir,
		Backups:   backups,
	}

	// Load the store before running the command (Init command will handle its own loading)
	if ctx.Command() != "init" {
		apperrors.Fatal(store.Load())
	}

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	apperrors.Fatal(err)
}

// openStore picks the backend. A --db value or $NEXTUP_DB_CONNECTION wins,
// then a connection string in the keyring, then the default SQLite file.
func openStore(db, configDir string) (storage.Provider, *backup.Manager, error) {
	fromKeyring := false
	if db == "" {
		db = os.Getenv(constants.DBConnectionEnvVar)
	}
	if db == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			db = connStr
			fromKeyring = true
		case !errors.Is(err, keyring.ErrNotFound):
			logger.Debug("Keyring unavailable, using SQLite", "error", err)
		}
	}
	if db == "" {
		db = filepath.Join(configDir, constants.AppName+".db")
	}

	if isPostgres(db) {
		if err := postgres.ValidateConnString(db); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, nil, err
			}
			if !fromKeyring {
				return nil, nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are NOT allowed on the command line. " +
					"Store it with 'nextup secret set db', or use .pgpass or PGPASSWORD instead")
			}
		}
		return postgres.New(db), nil, nil
	}

	path, err := expandHome(db)
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewStore(path), backup.NewManager(path), nil
}

func isPostgres(db string) bool {
	return strings.HasPrefix(db, "postgres://") ||
		strings.HasPrefix(db, "postgresql://") ||
		strings.Contains(db, "host=")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func loggerConfig(cfg config.Config, configDir string, debug bool) logger.Config {
	return logger.Config{
		Debug:      debug,
		ConfigDir:  configDir,
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}
}
