package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/keyring"
	"github.com/julianstephens/nextup/internal/utils"
)

// schemaStore is implemented by the SQL stores.
type schemaStore interface {
	Ping() error
	SchemaVersion() (current, latest int, err error)
}

type check struct {
	name string
	// opensDB marks the check whose success enables the needsDB checks.
	opensDB  bool
	needsDB  bool
	optional bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", opensDB: true, run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", optional: true, run: checkBackupsPresent},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Timezone preference", needsDB: true, run: checkTimezone},
	{name: "Clock", run: checkClock},
	{name: "AI service key", optional: true, run: checkAIKey},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if c.opensDB {
				dbReachable = true
			}
		case c.optional:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	if err := s.Ping(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Backups == nil {
		return nil
	}
	backups, err := ctx.Backups.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'nextup backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	result, err := sess.Validate()
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found, run 'nextup validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	prefs, err := ctx.Store.GetPreferences()
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}
	if !utils.ValidateTimezone(prefs.Timezone) {
		return fmt.Errorf("invalid timezone %q, local time is used instead", prefs.Timezone)
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkAIKey(ctx *cli.Context) error {
	key, err := keyring.AIKey()
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("no AI key configured; 'task parse' and 'task breakdown' are unavailable")
	}
	return nil
}
