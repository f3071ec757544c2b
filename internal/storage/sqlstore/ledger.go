package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

const statsColumns = `total_completed, total_skipped, current_streak, streak_best, trust_score, last_completed_date`

func (s *Store) GetStats() (models.UserStats, error) {
	var st models.UserStats
	err := s.queryRow(s.db, "SELECT "+statsColumns+" FROM user_stats WHERE id = 1").Scan(
		&st.TotalCompleted, &st.TotalSkipped, &st.CurrentStreak, &st.StreakBest, &st.TrustScore, &st.LastCompletedDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewUserStats(), nil
	}
	return st, err
}

func (s *Store) saveStats(tx *sql.Tx, st models.UserStats) error {
	_, err := s.exec(tx, `
		INSERT INTO user_stats (id, `+statsColumns+`) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			total_completed = excluded.total_completed,
			total_skipped = excluded.total_skipped,
			current_streak = excluded.current_streak,
			streak_best = excluded.streak_best,
			trust_score = excluded.trust_score,
			last_completed_date = excluded.last_completed_date`,
		st.TotalCompleted, st.TotalSkipped, st.CurrentStreak, st.StreakBest, st.TrustScore, st.LastCompletedDate,
	)
	return err
}

func (s *Store) saveTaskState(tx *sql.Tx, task models.Task) error {
	res, err := s.exec(tx, `
		UPDATE tasks SET completed = ?, completed_at = ?, skipped = ?, skipped_at = ?, skip_reason = ?
		WHERE id = ? AND deleted_at IS NULL`,
		task.Completed, nullString(task.CompletedAt), task.Skipped, nullString(task.SkippedAt), task.SkipReason, task.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "task "+task.ID)
}

// finishPlanned moves the task's open planned entries in active plans to
// status. Completed entries record actual minutes from their start time.
func (s *Store) finishPlanned(tx *sql.Tx, taskID string, status models.PlannedTaskStatus, finishedAt *string) error {
	rows, err := s.query(tx, `
		SELECT plan_id, started_at FROM planned_tasks
		WHERE task_id = ? AND status IN (?, ?)
		AND plan_id IN (SELECT id FROM daily_plans WHERE status = ?)`,
		taskID, string(models.PlannedPending), string(models.PlannedInProgress), string(models.PlanStatusActive),
	)
	if err != nil {
		return err
	}
	type entry struct {
		planID  string
		started sql.NullString
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.planID, &e.started); err != nil {
			rows.Close()
			return err
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range entries {
		var actual *int
		if status == models.PlannedCompleted && e.started.Valid && finishedAt != nil {
			actual = elapsedMinutes(e.started.String, *finishedAt)
		}
		completedAt := sql.NullString{}
		if status == models.PlannedCompleted {
			completedAt = nullString(finishedAt)
		}
		if _, err := s.exec(tx, `
			UPDATE planned_tasks SET status = ?, completed_at = ?, actual_minutes = COALESCE(actual_minutes, ?)
			WHERE plan_id = ? AND task_id = ?`,
			string(status), completedAt, nullInt(actual), e.planID, taskID,
		); err != nil {
			return err
		}
	}
	return nil
}

func elapsedMinutes(from, to string) *int {
	start, err := utils.ParseTimestamp(from)
	if err != nil {
		return nil
	}
	end, err := utils.ParseTimestamp(to)
	if err != nil || end.Before(start) {
		return nil
	}
	m := int(end.Sub(start) / time.Minute)
	return &m
}

// RecordCompletion writes the completed task, the stats and any planned
// entry for the task in one transaction.
func (s *Store) RecordCompletion(task models.Task, stats models.UserStats) error {
	if !task.Completed {
		return fmt.Errorf("task %s is not completed", task.ID)
	}
	return s.inTx(func(tx *sql.Tx) error {
		if err := s.saveTaskState(tx, task); err != nil {
			return err
		}
		if err := s.saveStats(tx, stats); err != nil {
			return err
		}
		return s.finishPlanned(tx, task.ID, models.PlannedCompleted, task.CompletedAt)
	})
}

// RecordSkip writes the skipped task, the stats and any planned entry for
// the task in one transaction.
func (s *Store) RecordSkip(task models.Task, stats models.UserStats) error {
	if !task.Skipped {
		return fmt.Errorf("task %s is not skipped", task.ID)
	}
	return s.inTx(func(tx *sql.Tx) error {
		if err := s.saveTaskState(tx, task); err != nil {
			return err
		}
		if err := s.saveStats(tx, stats); err != nil {
			return err
		}
		return s.finishPlanned(tx, task.ID, models.PlannedSkipped, task.SkippedAt)
	})
}

// DeferTask carries the task over from date and marks its entry in the
// active plan for date deferred.
func (s *Store) DeferTask(taskID, date string) error {
	return s.inTx(func(tx *sql.Tx) error {
		res, err := s.exec(tx, "UPDATE tasks SET carried_from_date = ? WHERE id = ? AND deleted_at IS NULL", date, taskID)
		if err != nil {
			return err
		}
		if err := requireRow(res, "task "+taskID); err != nil {
			return err
		}
		_, err = s.exec(tx, `
			UPDATE planned_tasks SET status = ?
			WHERE task_id = ? AND status IN (?, ?)
			AND plan_id IN (SELECT id FROM daily_plans WHERE date = ? AND status = ?)`,
			string(models.PlannedDeferred), taskID, string(models.PlannedPending), string(models.PlannedInProgress),
			date, string(models.PlanStatusActive),
		)
		return err
	})
}

func (s *Store) AddSkipEvent(ev models.SkipEvent) error {
	_, err := s.exec(s.db,
		"INSERT INTO skip_events (task_id, kind, reason, was_head, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.TaskID, ev.Kind, ev.Reason, ev.WasHead, ev.CreatedAt,
	)
	return err
}

func (s *Store) GetSkipEvents() ([]models.SkipEvent, error) {
	rows, err := s.query(s.db, "SELECT task_id, kind, reason, was_head, created_at FROM skip_events ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.SkipEvent
	for rows.Next() {
		var ev models.SkipEvent
		if err := rows.Scan(&ev.TaskID, &ev.Kind, &ev.Reason, &ev.WasHead, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
