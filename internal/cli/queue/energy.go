package queue

import (
	"fmt"
	"strings"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/validation"
)

type EnergyCmd struct {
	Level string `arg:"" optional:"" help:"New energy level (high|normal|low), or 'cycle'."`
}

func (c *EnergyCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	var level models.Energy
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "":
		fmt.Printf("Energy: %s\n", sess.Energy())
		return nil
	case "cycle":
		if level, err = sess.CycleEnergy(); err != nil {
			return err
		}
	default:
		if level, err = validation.ParseEnergyInput(c.Level); err != nil {
			return err
		}
		if err := sess.SetEnergy(level); err != nil {
			return err
		}
	}

	fmt.Printf("✓ Energy set to %s\n", level)
	if head, ok := sess.Current(); ok {
		fmt.Printf("  Next: %s\n", cli.FormatTask(head.Task))
	}
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	st := sess.Stats()
	fmt.Println("Stats:")
	fmt.Printf("  Completed:     %d\n", st.TotalCompleted)
	fmt.Printf("  Skipped:       %d\n", st.TotalSkipped)
	fmt.Printf("  Streak:        %d day(s) (best %d)\n", st.CurrentStreak, st.StreakBest)
	fmt.Printf("  Trust score:   %d/100\n", st.TrustScore)
	if st.LastCompletedDate != "" {
		fmt.Printf("  Last done:     %s\n", st.LastCompletedDate)
	}

	stuckTasks := sess.Stuck()
	if len(stuckTasks) == 0 {
		return nil
	}
	fmt.Println("\nStuck tasks:")
	for _, info := range stuckTasks {
		title := info.TaskID
		if task, err := sess.GetTask(info.TaskID); err == nil {
			title = task.Title
		}
		line := fmt.Sprintf("  %s  %s (%d skips)", cli.ShortID(info.TaskID), title, info.SkipCount)
		if info.Blocker != "" {
			line += " [blocked: " + info.Blocker + "]"
		}
		fmt.Println(line)
	}
	return nil
}

type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}
	if !c.Yes && !cli.Confirm("Archive every completed and skipped task? [y/N]: ") {
		fmt.Println("Reset cancelled.")
		return nil
	}

	n, err := sess.Reset()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Archived %d finished task(s)\n", n)
	return nil
}
