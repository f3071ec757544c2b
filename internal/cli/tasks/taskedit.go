package tasks

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/engine"
)

type TaskEditCmd struct {
	ID       string  `arg:"" help:"Task ID (a unique prefix is enough)."`
	Title    *string `help:"New title."`
	Priority *string `short:"p" help:"New priority (high|medium|low)."`
	Energy   *string `short:"e" help:"New energy (peak|medium|low)."`
	Minutes  *int    `short:"m" help:"New estimated minutes."`
	Deadline *string `short:"d" help:"New deadline (YYYY-MM-DD or RFC 3339). Empty clears it."`
	Blocker  *string `help:"Blocker note. Empty clears it."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	task, err := sess.EditTask(id, engine.TaskPatch{
		Title:            c.Title,
		Priority:         c.Priority,
		Energy:           c.Energy,
		EstimatedMinutes: c.Minutes,
		Deadline:         c.Deadline,
		Blocker:          c.Blocker,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Updated task: %s\n", cli.FormatTask(task))
	return nil
}
