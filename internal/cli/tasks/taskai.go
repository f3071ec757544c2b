package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/nextup/internal/ai"
	"github.com/julianstephens/nextup/internal/cli"
)

type TaskParseCmd struct {
	Text []string `arg:"" help:"Free-text description of the task."`
	Yes  bool     `short:"y" help:"Add the parsed task without asking."`
}

func (c *TaskParseCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	parsed, err := sess.ParseTask(context.Background(), strings.Join(c.Text, " "))
	if err != nil {
		return err
	}
	printParsed(parsed)

	if !c.Yes && !cli.Confirm("Add this task? [y/N]: ") {
		fmt.Println("Task not added.")
		return nil
	}

	task, err := sess.AddParsed(parsed)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

func printParsed(p ai.ParsedTask) {
	fmt.Println("Parsed task:")
	fmt.Printf("  Title:     %s (%.0f%%)\n", p.Title, p.Confidence.Title*100)
	fmt.Printf("  Priority:  %s (%.0f%%)\n", p.Priority, p.Confidence.Priority*100)
	fmt.Printf("  Energy:    %s (%.0f%%)\n", p.Energy.TaskLabel(), p.Confidence.Energy*100)
	fmt.Printf("  Estimate:  %dm (%.0f%%)\n", p.EstimatedMinutes, p.Confidence.EstimatedMinutes*100)
	if p.Deadline != nil {
		fmt.Printf("  Deadline:  %s (%.0f%%)\n", p.Deadline.Local().Format("2006-01-02 15:04"), p.Confidence.Deadline*100)
	}
	if len(p.Corrected) > 0 {
		fmt.Printf("  Defaults used for: %s\n", strings.Join(p.Corrected, ", "))
	}
}

type TaskBreakdownCmd struct {
	ID string `arg:"" help:"Task ID to break into steps."`
}

func (c *TaskBreakdownCmd) Run(ctx *cli.Context) error {
	id, err := cli.ResolveTaskID(ctx.Store, c.ID)
	if err != nil {
		return err
	}
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	steps, err := sess.Breakdown(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Broke task into %d steps:\n", len(steps))
	for i, step := range steps {
		fmt.Printf("  %d. %s\n", i+1, cli.FormatTask(step))
	}
	return nil
}
