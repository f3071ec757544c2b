package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/storage"
)

const planColumns = `id, date, energy, available_minutes, status, created_at, completed_at`

const plannedColumns = `plan_id, task_id, task_order, status, started_at, completed_at, actual_minutes`

func scanPlan(row rowScanner) (models.DailyPlan, error) {
	var p models.DailyPlan
	var energy, status string
	var completedAt sql.NullString
	if err := row.Scan(&p.ID, &p.Date, &energy, &p.AvailableMinutes, &status, &p.CreatedAt, &completedAt); err != nil {
		return models.DailyPlan{}, err
	}
	p.Energy = models.NormalizeEnergy(models.Energy(energy))
	p.Status = models.PlanStatus(status)
	p.CompletedAt = stringPtr(completedAt)
	return p, nil
}

// CreatePlan stores a plan and its tasks. An abandoned plan for the same
// date is replaced; any other existing plan yields storage.ErrPlanExists.
func (s *Store) CreatePlan(plan models.DailyPlan, planned []models.PlannedTask) error {
	return s.inTx(func(tx *sql.Tx) error {
		var existingID, status string
		err := s.queryRow(tx, "SELECT id, status FROM daily_plans WHERE date = ?", plan.Date).Scan(&existingID, &status)
		switch {
		case err == nil && models.PlanStatus(status) != models.PlanStatusAbandoned:
			return fmt.Errorf("%s: %w", plan.Date, storage.ErrPlanExists)
		case err == nil:
			if _, err := s.exec(tx, "DELETE FROM planned_tasks WHERE plan_id = ?", existingID); err != nil {
				return err
			}
			if _, err := s.exec(tx, "DELETE FROM daily_plans WHERE id = ?", existingID); err != nil {
				return err
			}
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		if _, err := s.exec(tx, "INSERT INTO daily_plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			plan.ID, plan.Date, string(plan.Energy), plan.AvailableMinutes, string(plan.Status), plan.CreatedAt, nullString(plan.CompletedAt),
		); err != nil {
			return err
		}

		for _, pt := range planned {
			if _, err := s.exec(tx, "INSERT INTO planned_tasks ("+plannedColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
				plan.ID, pt.TaskID, pt.Order, string(pt.Status), nullString(pt.StartedAt), nullString(pt.CompletedAt), nullInt(pt.ActualMinutes),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPlan(date string) (models.DailyPlan, error) {
	p, err := scanPlan(s.queryRow(s.db, "SELECT "+planColumns+" FROM daily_plans WHERE date = ?", date))
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyPlan{}, fmt.Errorf("plan for %s: %w", date, storage.ErrNotFound)
	}
	return p, err
}

func (s *Store) GetAllPlans() ([]models.DailyPlan, error) {
	rows, err := s.query(s.db, "SELECT "+planColumns+" FROM daily_plans ORDER BY date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.DailyPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) UpdatePlan(plan models.DailyPlan) error {
	res, err := s.exec(s.db,
		"UPDATE daily_plans SET energy = ?, available_minutes = ?, status = ?, completed_at = ? WHERE id = ?",
		string(plan.Energy), plan.AvailableMinutes, string(plan.Status), nullString(plan.CompletedAt), plan.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "plan "+plan.ID)
}

func (s *Store) GetPlannedTasks(planID string) ([]models.PlannedTask, error) {
	rows, err := s.query(s.db, "SELECT "+plannedColumns+" FROM planned_tasks WHERE plan_id = ? ORDER BY task_order", planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var planned []models.PlannedTask
	for rows.Next() {
		var pt models.PlannedTask
		var status string
		var startedAt, completedAt sql.NullString
		var actual sql.NullInt64
		if err := rows.Scan(&pt.PlanID, &pt.TaskID, &pt.Order, &status, &startedAt, &completedAt, &actual); err != nil {
			return nil, err
		}
		pt.Status = models.PlannedTaskStatus(status)
		pt.StartedAt = stringPtr(startedAt)
		pt.CompletedAt = stringPtr(completedAt)
		pt.ActualMinutes = intPtr(actual)
		planned = append(planned, pt)
	}
	return planned, rows.Err()
}

func (s *Store) UpdatePlannedTask(pt models.PlannedTask) error {
	res, err := s.exec(s.db, `
		UPDATE planned_tasks SET status = ?, started_at = ?, completed_at = ?, actual_minutes = ?
		WHERE plan_id = ? AND task_id = ?`,
		string(pt.Status), nullString(pt.StartedAt), nullString(pt.CompletedAt), nullInt(pt.ActualMinutes), pt.PlanID, pt.TaskID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "planned task "+pt.TaskID)
}
