package tasks

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/engine"
)

type TaskAddCmd struct {
	Title    string `arg:"" help:"Task title."`
	Priority string `short:"p" help:"Priority (high|medium|low)." default:"medium"`
	Energy   string `short:"e" help:"Energy the task needs (peak|medium|low)." default:"medium"`
	Minutes  int    `short:"m" help:"Estimated minutes." default:"25"`
	Deadline string `short:"d" help:"Deadline (YYYY-MM-DD or RFC 3339)."`
	Parent   string `help:"Parent task ID."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	parentID := ""
	if c.Parent != "" {
		if parentID, err = cli.ResolveTaskID(ctx.Store, c.Parent); err != nil {
			return err
		}
	}

	task, err := sess.AddTask(engine.TaskInput{
		Title:            c.Title,
		Priority:         c.Priority,
		Energy:           c.Energy,
		EstimatedMinutes: c.Minutes,
		Deadline:         c.Deadline,
		ParentID:         parentID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}
