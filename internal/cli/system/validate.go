package system

import (
	"fmt"

	"github.com/julianstephens/nextup/internal/cli"
)

type ValidateCmd struct {
	Fix bool `help:"Delete duplicate open tasks, keeping the oldest of each group."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	fmt.Println("Validating tasks and today's plan...")
	result, err := sess.Validate()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Println()
	fmt.Println(result.FormatReport())

	if !cmd.Fix || !result.HasConflicts() {
		return nil
	}

	actions, err := sess.FixDuplicates(result)
	if err != nil {
		return fmt.Errorf("auto-fix failed: %w", err)
	}
	if len(actions) == 0 {
		fmt.Println("Nothing to fix automatically.")
		return nil
	}
	for _, a := range actions {
		fmt.Printf("✓ %s\n", a.Action)
	}
	return nil
}
