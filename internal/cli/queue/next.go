package queue

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/stuck"
)

type NextCmd struct {
	Explain bool `short:"x" help:"Show the score breakdown."`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	head, ok := sess.Current()
	if !ok {
		fmt.Println("Nothing to do. Add a task with 'nextup task add'.")
		return nil
	}

	fmt.Printf("Next (%s energy): %s\n", sess.Energy(), cli.FormatTask(head.Task))
	if c.Explain {
		fmt.Printf("  %s\n", cli.FormatScore(head))
	}
	if info := sess.StuckInfo(head.Task.ID); info.SkipCount > 0 {
		fmt.Printf("  Skipped %d time(s) in a row\n", info.SkipCount)
	}
	return nil
}

type QueueCmd struct {
	Limit int `short:"n" help:"Show at most this many tasks (0 for all)." default:"10"`
}

func (c *QueueCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	ranked := sess.Queue()
	if len(ranked) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}
	if c.Limit > 0 && len(ranked) > c.Limit {
		ranked = ranked[:c.Limit]
	}

	fmt.Printf("Queue (%s energy):\n", sess.Energy())
	for i, ts := range ranked {
		fmt.Printf("  %2d. %s\n", i+1, cli.FormatTask(ts.Task))
		fmt.Printf("      %s\n", cli.FormatScore(ts))
	}
	return nil
}

func printStuckOptions(id string, skips int) {
	fmt.Printf("\n⚠ This task has been skipped %d times in a row. Options:\n", skips)
	for _, opt := range stuck.Options {
		switch opt {
		case stuck.OptionBreakdown:
			fmt.Printf("  - break it down:   nextup task breakdown %s\n", cli.ShortID(id))
		case stuck.OptionDelegate:
			fmt.Printf("  - delegate it:     nextup task delete %s\n", cli.ShortID(id))
		case stuck.OptionHireOut:
			fmt.Printf("  - hire it out:     nextup task delete %s\n", cli.ShortID(id))
		case stuck.OptionKeep:
			fmt.Printf("  - keep it:         nextup keep %s --reason \"what is blocking it\"\n", cli.ShortID(id))
		}
	}
}
