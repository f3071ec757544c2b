package plans

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/validation"
)

type PlanCmd struct {
	Energy  string `short:"e" help:"Your energy today (high|normal|low). Prompted when omitted."`
	Minutes int    `short:"m" help:"Minutes available today. Prompted when omitted."`
	Yes     bool   `short:"y" help:"Accept the automatic selection without prompting."`
	DryRun  bool   `name:"dry-run" help:"Show the selection without starting the day."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	energy := sess.Energy()
	if c.Energy != "" {
		if energy, err = validation.ParseEnergyInput(c.Energy); err != nil {
			return err
		}
	}
	minutes := c.Minutes
	if !c.Yes && (c.Energy == "" || c.Minutes == 0) {
		if energy, minutes, err = promptDay(energy, minutes, sess.DefaultBudget()); err != nil {
			return err
		}
	}

	sel, err := sess.PlanCandidates(energy, minutes)
	if err != nil {
		return err
	}
	if len(sel.Ranked()) == 0 {
		fmt.Println("No open tasks to plan. Add a task with 'nextup task add'.")
		return nil
	}

	if !c.Yes {
		if err := pickTasks(sel); err != nil {
			return err
		}
	}

	printSelection(sel)
	if c.DryRun {
		return nil
	}
	if len(sel.Selected()) == 0 {
		fmt.Println("Nothing selected, day not started.")
		return nil
	}

	day, err := sess.StartDay(sel, energy)
	if errors.Is(err, storage.ErrPlanExists) {
		return fmt.Errorf("%w (run 'nextup day abandon' to replan)", err)
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ Started day %s with %d task(s)\n", day.Plan.Date, len(day.Tasks))
	return nil
}

func promptDay(energy models.Energy, minutes, defaultBudget int) (models.Energy, int, error) {
	if minutes == 0 {
		minutes = defaultBudget
	}
	level := string(energy)
	budget := strconv.Itoa(minutes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How is your energy today?").
				Options(
					huh.NewOption("High", string(models.EnergyHigh)),
					huh.NewOption("Normal", string(models.EnergyNormal)),
					huh.NewOption("Low", string(models.EnergyLow)),
				).
				Value(&level),
			huh.NewInput().
				Title("Minutes available").
				Value(&budget).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					return validation.ValidateBudget(i)
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", 0, fmt.Errorf("interactive form error: %w", err)
	}

	minutes, err := strconv.Atoi(budget)
	if err != nil {
		return "", 0, err
	}
	return models.NormalizeEnergy(models.Energy(level)), minutes, nil
}

func pickTasks(sel *planner.Selection) error {
	options := make([]huh.Option[string], 0, len(sel.Ranked()))
	for _, ts := range sel.Ranked() {
		label := fmt.Sprintf("%s (%dm, score %d)", ts.Task.Title, ts.Task.EstimatedMinutes, ts.Score.Total)
		options = append(options, huh.NewOption(label, ts.Task.ID).Selected(sel.IsSelected(ts.Task.ID)))
	}

	var chosen []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(fmt.Sprintf("Tasks for today (budget %dm)", sel.Budget())).
				Options(options...).
				Value(&chosen),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive form error: %w", err)
	}
	return applyChoice(sel, chosen)
}

// applyChoice moves sel to the chosen set. Deselections go first so they
// free budget for additions; additions that no longer fit are reported and
// left out.
func applyChoice(sel *planner.Selection, chosen []string) error {
	want := make(map[string]bool, len(chosen))
	for _, id := range chosen {
		want[id] = true
	}
	for _, ts := range sel.Ranked() {
		if sel.IsSelected(ts.Task.ID) && !want[ts.Task.ID] {
			if _, err := sel.Toggle(ts.Task.ID); err != nil {
				return err
			}
		}
	}
	for _, ts := range sel.Ranked() {
		if !sel.IsSelected(ts.Task.ID) && want[ts.Task.ID] {
			ok, err := sel.Toggle(ts.Task.ID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("  Left out %q: %dm does not fit the remaining %dm\n",
					ts.Task.Title, ts.Task.EstimatedMinutes, sel.RemainingMinutes())
			}
		}
	}
	return nil
}

func printSelection(sel *planner.Selection) {
	fmt.Printf("Plan: %dm of %dm\n", sel.TotalMinutes(), sel.Budget())
	for _, ts := range sel.Ranked() {
		mark := " "
		if sel.IsSelected(ts.Task.ID) {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, cli.FormatTask(ts.Task))
	}
}
