package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/keyring"
	"github.com/julianstephens/nextup/internal/storage/postgres"
)

// SecretSetCmd stores a secret in the OS keyring
type SecretSetCmd struct {
	Name  string `arg:"" enum:"db,ai" help:"Which secret to store (db: PostgreSQL connection string, ai: AI service API key)."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *SecretSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}

	if secret == keyring.SecretDatabase {
		if !strings.HasPrefix(cmd.Value, "postgres://") &&
			!strings.HasPrefix(cmd.Value, "postgresql://") &&
			!strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			// Embedded credentials are fine in the encrypted keyring
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return err
	}

	fmt.Printf("✓ Stored %s in OS keyring\n", secret)
	if secret == keyring.SecretDatabase {
		fmt.Println("  nextup will now use PostgreSQL unless --db is given")
	}
	return nil
}

// SecretDeleteCmd removes a secret from the OS keyring
type SecretDeleteCmd struct {
	Name string `arg:"" enum:"db,ai" help:"Which secret to delete (db or ai)."`
}

func (cmd *SecretDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return err
	}

	fmt.Printf("✓ Deleted %s from OS keyring\n", secret)
	return nil
}

// SecretStatusCmd checks the availability of the OS keyring
type SecretStatusCmd struct{}

func (cmd *SecretStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	for _, s := range []keyring.Secret{keyring.SecretDatabase, keyring.SecretAIKey} {
		_, err := keyring.Get(s)
		switch {
		case err == nil:
			fmt.Printf("✓ %s is stored\n", s)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("ℹ No %s stored\n", s)
		default:
			fmt.Printf("⚠ %s: %v\n", s, err)
		}
	}
	return nil
}
