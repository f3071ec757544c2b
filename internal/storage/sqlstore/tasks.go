package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/utils"
)

const taskColumns = `id, title, priority, energy, estimated_minutes, deadline,
	completed, completed_at, skipped, skipped_at, skip_reason, carried_from_date,
	position, parent_id, blocker, created_at, archived_at, deleted_at`

const openTaskFilter = `NOT completed AND NOT skipped AND archived_at IS NULL AND deleted_at IS NULL`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var priority, energy string
	var deadline, completedAt, skippedAt, archivedAt, deletedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.Title, &priority, &energy, &t.EstimatedMinutes, &deadline,
		&t.Completed, &completedAt, &t.Skipped, &skippedAt, &t.SkipReason, &t.CarriedFromDate,
		&t.Position, &t.ParentID, &t.Blocker, &t.CreatedAt, &archivedAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	t.Priority = models.NormalizePriority(models.Priority(priority))
	t.Energy = models.NormalizeEnergy(models.Energy(energy))
	if deadline.Valid {
		d, err := utils.ParseTimestamp(deadline.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %s: invalid deadline %q: %w", t.ID, deadline.String, err)
		}
		t.Deadline = &d
	}
	t.CompletedAt = stringPtr(completedAt)
	t.SkippedAt = stringPtr(skippedAt)
	t.ArchivedAt = stringPtr(archivedAt)
	t.DeletedAt = stringPtr(deletedAt)
	return t, nil
}

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.query(s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func deadlineValue(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: utils.FormatTimestamp(*d), Valid: true}
}

func (s *Store) AddTask(task models.Task) error {
	return s.UpdateTask(task)
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.queryRow(s.db, "SELECT "+taskColumns+" FROM tasks WHERE id = ? AND deleted_at IS NULL", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) GetOpenTasks() ([]models.Task, error) {
	return s.queryTasks("SELECT " + taskColumns + " FROM tasks WHERE " + openTaskFilter + " ORDER BY position, id")
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	return s.queryTasks("SELECT " + taskColumns + " FROM tasks WHERE deleted_at IS NULL ORDER BY position, id")
}

func (s *Store) GetAllTasksIncludingDeleted() ([]models.Task, error) {
	return s.queryTasks("SELECT " + taskColumns + " FROM tasks ORDER BY position, id")
}

func (s *Store) GetTasksDueBefore(t time.Time) ([]models.Task, error) {
	return s.queryTasks(
		"SELECT "+taskColumns+" FROM tasks WHERE "+openTaskFilter+
			" AND deadline IS NOT NULL AND deadline <= ? ORDER BY deadline, position",
		utils.FormatTimestamp(t),
	)
}

// UpdateTask inserts or fully replaces a task.
func (s *Store) UpdateTask(task models.Task) error {
	_, err := s.exec(s.db, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			priority = excluded.priority,
			energy = excluded.energy,
			estimated_minutes = excluded.estimated_minutes,
			deadline = excluded.deadline,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			skipped = excluded.skipped,
			skipped_at = excluded.skipped_at,
			skip_reason = excluded.skip_reason,
			carried_from_date = excluded.carried_from_date,
			position = excluded.position,
			parent_id = excluded.parent_id,
			blocker = excluded.blocker,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		task.ID, task.Title, string(models.NormalizePriority(task.Priority)), string(models.NormalizeEnergy(task.Energy)),
		task.EstimatedMinutes, deadlineValue(task.Deadline),
		task.Completed, nullString(task.CompletedAt), task.Skipped, nullString(task.SkippedAt),
		task.SkipReason, task.CarriedFromDate, task.Position, task.ParentID, task.Blocker, task.CreatedAt,
		nullString(task.ArchivedAt), nullString(task.DeletedAt),
	)
	return err
}

func (s *Store) DeleteTask(id string) error {
	now := utils.FormatTimestamp(time.Now())
	res, err := s.exec(s.db, "UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", now, id)
	if err != nil {
		return err
	}
	return requireRow(res, "task "+id)
}

func (s *Store) RestoreTask(id string) error {
	res, err := s.exec(s.db, "UPDATE tasks SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res, "deleted task "+id)
}

func (s *Store) NextPosition() (int, error) {
	var next int
	err := s.queryRow(s.db, "SELECT COALESCE(MAX(position) + 1, 0) FROM tasks").Scan(&next)
	return next, err
}

func (s *Store) ArchiveFinished(at time.Time) (int, error) {
	res, err := s.exec(s.db, `
		UPDATE tasks SET archived_at = ?
		WHERE (completed OR skipped) AND archived_at IS NULL AND deleted_at IS NULL`,
		utils.FormatTimestamp(at))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) ReviveSkipped(before time.Time) (int, error) {
	res, err := s.exec(s.db, `
		UPDATE tasks SET skipped = ?, skipped_at = NULL
		WHERE skipped AND skipped_at < ? AND archived_at IS NULL AND deleted_at IS NULL`,
		false, utils.FormatTimestamp(before))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
