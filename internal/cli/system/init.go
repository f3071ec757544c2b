package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.deleteDatabase(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("✓ Initialized nextup storage at: %s\n", ctx.Store.GetConfigPath())

	cfgPath := config.Path(ctx.ConfigDir)
	created, err := config.EnsureFile(cfgPath)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("✓ Wrote default configuration to: %s\n", cfgPath)
	}
	return nil
}

func (c *InitCmd) deleteDatabase(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Some other error occurred while checking the database; surface it to the user
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	// Close first to prevent file locking issues
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	ctx.PerformAutomaticBackup()
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}
