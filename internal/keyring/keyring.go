package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/nextup/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a value stored in the OS keyring.
type Secret string

const (
	SecretDatabase Secret = constants.DefaultKeyringUser
	SecretAIKey    Secret = constants.AIKeyringUser
)

// ParseSecret maps a CLI name onto a Secret.
func ParseSecret(name string) (Secret, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "db", "database", string(SecretDatabase):
		return SecretDatabase, nil
	case "ai", "ai-key", string(SecretAIKey):
		return SecretAIKey, nil
	}
	return "", fmt.Errorf("unknown secret %q (expected db or ai)", name)
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret.
func Set(s Secret, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

// Delete removes a secret.
func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(SecretDatabase)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return Set(SecretDatabase, connStr)
}

// AIKey returns the AI service key, preferring the environment over the
// keyring. An empty key with a nil error means none is configured.
func AIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(constants.AIKeyEnvVar)); key != "" {
		return key, nil
	}
	key, err := Get(SecretAIKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return key, err
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
