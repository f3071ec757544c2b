package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/nextup/internal/ai"
	"github.com/julianstephens/nextup/internal/backup"
	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/engine"
	"github.com/julianstephens/nextup/internal/keyring"
	"github.com/julianstephens/nextup/internal/lock"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/ranking"
	"github.com/julianstephens/nextup/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Config    config.Config
	ConfigDir string
	// Backups is nil when the store is not a local SQLite file.
	Backups *backup.Manager

	session *engine.Session
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Backups == nil {
		return
	}
	if _, err := c.Backups.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// AcquireLock takes the single-writer lock for commands that hold the
// database for a long time or replace it.
func (c *Context) AcquireLock() (*lock.Lock, error) {
	return lock.Acquire(c.ConfigDir)
}

// Session opens the engine session on first use. The AI assistant is
// attached when an API key is configured.
func (c *Context) Session() (*engine.Session, error) {
	if c.session != nil {
		return c.session, nil
	}

	var opts []engine.Option
	if c.Backups != nil {
		opts = append(opts, engine.WithBackups(c.Backups))
	}
	sess, err := engine.Open(c.Store, c.Config, opts...)
	if err != nil {
		return nil, err
	}

	key, err := keyring.AIKey()
	if err != nil {
		logger.Warn("Could not read AI key", "error", err)
	}
	if key != "" {
		client, err := ai.NewClient(context.Background(), c.Config.AI, key, sess.State().Location)
		if err != nil {
			logger.Warn("AI service unavailable", "error", err)
		} else {
			sess.SetAssistant(client)
		}
	}

	c.session = sess
	return sess, nil
}

// ResolveTaskID expands a unique id prefix to the full task id.
func ResolveTaskID(store storage.Provider, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("task id is required")
	}
	if _, err := store.GetTask(prefix); err == nil {
		return prefix, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	tasks, err := store.GetAllTasksIncludingDeleted()
	if err != nil {
		return "", fmt.Errorf("failed to get tasks: %w", err)
	}
	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %s: %w", prefix, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// ShortID is the id prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatTask renders a one-line summary of a task.
func FormatTask(t models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  (%s, %s energy, %dm", ShortID(t.ID), t.Title, t.Priority, t.Energy.TaskLabel(), t.EstimatedMinutes)
	if t.Deadline != nil {
		fmt.Fprintf(&b, ", due %s", t.Deadline.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString(")")
	if t.Blocker != "" {
		fmt.Fprintf(&b, " [blocked: %s]", t.Blocker)
	}
	return b.String()
}

// FormatScore renders the score breakdown of a ranked task.
func FormatScore(ts ranking.TaskScore) string {
	s := ts.Score
	return fmt.Sprintf("score %d = deadline %d + priority %d + energy %d + time %d + aging %d",
		s.Total, s.DeadlineUrgency, s.PriorityMatch, s.EnergyMatch, s.TimeFit, s.Aging)
}

// Confirm asks a y/N question on stdin.
func Confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
