package tasks

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
)

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID to delete."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	task, err := sess.GetTask(id)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", id, err)
	}
	if err := sess.DeleteTask(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("✓ Deleted task: %s (ID: %s)\n", task.Title, id)
	fmt.Println("  Run 'nextup task restore' with this ID to undo.")
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task ID to restore."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if err := sess.RestoreTask(id); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}

	fmt.Printf("✓ Restored task with ID: %s\n", id)
	return nil
}
