package plans

import (
	"errors"
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/storage"
)

type DayCmd struct {
	Show    DayShowCmd    `cmd:"" help:"Show the plan for a day." default:"1"`
	Start   DayStartCmd   `cmd:"" help:"Mark a planned task as in progress."`
	Abandon DayAbandonCmd `cmd:"" help:"Abandon today's plan so the day can be replanned."`
	History DayHistoryCmd `cmd:"" help:"List past plans."`
}

type DayShowCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD), defaults to today."`
}

func (c *DayShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = sess.Today()
	}
	day, err := sess.DayFor(date)
	if errors.Is(err, planner.ErrNoPlan) || errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("No plan for %s. Run 'nextup plan' to start one.\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	printDay(ctx, day)
	return nil
}

func printDay(ctx *cli.Context, day planner.Day) {
	p := day.Progress
	fmt.Printf("Plan for %s (%s, %s energy, %dm available)\n",
		day.Plan.Date, day.Plan.Status, day.Plan.Energy, day.Plan.AvailableMinutes)
	fmt.Printf("Progress: %d/%d done, %d%% of planned time, %dm elapsed, %dm remaining\n\n",
		p.Completed, p.Total, p.Percentage, p.ElapsedMinutes, p.RemainingMinutes)

	for _, pt := range day.Tasks {
		title := pt.TaskID
		minutes := 0
		if task, err := ctx.Store.GetTask(pt.TaskID); err == nil {
			title = task.Title
			minutes = task.EstimatedMinutes
		}
		line := fmt.Sprintf("  %-11s %s  %s (%dm)", pt.Status, cli.ShortID(pt.TaskID), title, minutes)
		if pt.ActualMinutes != nil {
			line += fmt.Sprintf(", took %dm", *pt.ActualMinutes)
		}
		fmt.Println(line)
	}
}

type DayStartCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *DayStartCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	if _, err := sess.StartTask(id); err != nil {
		return err
	}
	fmt.Printf("✓ Started task %s\n", cli.ShortID(id))
	return nil
}

type DayAbandonCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DayAbandonCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if !c.Yes && !cli.Confirm(fmt.Sprintf("Abandon the plan for %s? [y/N]: ", sess.Today())) {
		fmt.Println("Plan kept.")
		return nil
	}

	if err := sess.AbandonDay(); err != nil {
		return err
	}
	fmt.Println("✓ Plan abandoned. Run 'nextup plan' to start a new one.")
	return nil
}

type DayHistoryCmd struct{}

func (c *DayHistoryCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	plans, err := sess.History()
	if err != nil {
		return fmt.Errorf("failed to get plans: %w", err)
	}
	if len(plans) == 0 {
		fmt.Println("No plans found")
		return nil
	}

	fmt.Println("Plans:")
	for _, plan := range plans {
		fmt.Printf("  %s  %-9s  %s energy, %dm\n", plan.Date, plan.Status, plan.Energy, plan.AvailableMinutes)
	}
	return nil
}
