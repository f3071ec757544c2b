package tasks

import (
	"fmt"
	"time"

	"github.com/julianstephens/nextup/internal/cli"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

type TaskListCmd struct {
	All     bool   `help:"Include completed, skipped and archived tasks."`
	Deleted bool   `help:"Show deleted tasks instead."`
	DueBy   string `name:"due-by" help:"Only open tasks due on or before this date (YYYY-MM-DD)."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	var tasks []models.Task
	switch {
	case c.Deleted:
		tasks, err = sess.DeletedTasks()
	case c.DueBy != "":
		var day time.Time
		day, err = utils.ParseDateInLocation(c.DueBy, sess.State().Location)
		if err != nil {
			return fmt.Errorf("invalid --due-by date: %w", err)
		}
		tasks, err = sess.DueBefore(day.AddDate(0, 0, 1).Add(-time.Nanosecond))
	default:
		tasks, err = sess.ListTasks(c.All)
	}
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Println("Tasks:")
	for _, task := range tasks {
		fmt.Printf("  [%s] %s\n", status(task), cli.FormatTask(task))
	}
	return nil
}

func status(t models.Task) string {
	switch {
	case t.DeletedAt != nil:
		return "deleted"
	case t.ArchivedAt != nil:
		return "archived"
	case t.Completed:
		return "done"
	case t.Skipped:
		return "skipped"
	default:
		return "open"
	}
}
