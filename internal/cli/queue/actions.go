package queue

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/engine"
	"github.com/julianstephens/nextup/internal/models"
)

// headOrID resolves an optional task id argument, defaulting to the head
// of the queue.
func headOrID(ctx *cli.Context, sess *engine.Session, id string) (string, error) {
	if id != "" {
		return cli.ResolveTaskID(ctx.Store, id)
	}
	head, ok := sess.Current()
	if !ok {
		return "", fmt.Errorf("queue is empty")
	}
	return head.Task.ID, nil
}

type DoneCmd struct {
	ID string `arg:"" optional:"" help:"Task ID (defaults to the next task)."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	id, err := headOrID(ctx, sess, c.ID)
	if err != nil {
		return err
	}

	sess.OnCelebrate(func(task models.Task, st models.UserStats) {
		if st.CurrentStreak > 1 && st.CurrentStreak == st.StreakBest {
			fmt.Printf("🎉 New best streak: %d days\n", st.CurrentStreak)
		}
	})
	task, err := sess.Complete(id)
	if err != nil {
		return err
	}

	st := sess.Stats()
	fmt.Printf("✓ Completed: %s\n", task.Title)
	fmt.Printf("  Streak: %d day(s), trust %d\n", st.CurrentStreak, st.TrustScore)
	return nil
}

type SkipCmd struct {
	ID     string `arg:"" optional:"" help:"Task ID (defaults to the next task)."`
	Reason string `short:"r" help:"Why the task is skipped."`
}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	id, err := headOrID(ctx, sess, c.ID)
	if err != nil {
		return err
	}

	out, err := sess.Skip(id, c.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Skipped for today: %s\n", out.Task.Title)
	if out.Stuck {
		printStuckOptions(id, out.Signal.SkipCount)
	}
	return nil
}

type KeepCmd struct {
	ID     string `arg:"" help:"Task ID."`
	Reason string `short:"r" help:"What is blocking the task." required:""`
}

func (c *KeepCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	task, err := sess.Keep(id, c.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Keeping: %s (blocked: %s)\n", task.Title, task.Blocker)
	return nil
}

type DeferCmd struct {
	ID string `arg:"" optional:"" help:"Task ID (defaults to the next task)."`
}

func (c *DeferCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	id, err := headOrID(ctx, sess, c.ID)
	if err != nil {
		return err
	}

	if err := sess.Defer(id); err != nil {
		return err
	}
	fmt.Printf("✓ Deferred task %s to a later day\n", cli.ShortID(id))
	return nil
}
