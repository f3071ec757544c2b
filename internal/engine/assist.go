package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/julianstephens/nextup/internal/ai"
	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/utils"
)

// Assistant is the AI text service. *ai.Client implements it.
type Assistant interface {
	ParseTask(ctx context.Context, text string) (ai.ParsedTask, error)
	Breakdown(ctx context.Context, task models.Task) ([]ai.Step, error)
}

func (s *Session) assistant() (Assistant, error) {
	if s.ai == nil {
		return nil, ai.ErrNotConfigured
	}
	return s.ai, nil
}

// ParseTask turns free text into a normalized task draft without storing
// it.
func (s *Session) ParseTask(ctx context.Context, text string) (ai.ParsedTask, error) {
	a, err := s.assistant()
	if err != nil {
		return ai.ParsedTask{}, err
	}
	parsed, err := a.ParseTask(ctx, text)
	if err != nil {
		return ai.ParsedTask{}, err
	}
	if len(parsed.Corrected) > 0 {
		logger.Debug("AI parse corrected fields", "fields", parsed.Corrected)
	}
	return parsed, nil
}

// AddParsed stores a parsed draft as a new task.
func (s *Session) AddParsed(parsed ai.ParsedTask) (models.Task, error) {
	task := parsed.Task(uuid.New().String(), 0, utils.FormatTimestamp(s.now()))
	return s.insert(task)
}

// Breakdown asks the assistant to split an open task into steps and stores
// each step as a task under it. The parent is archived and its stuck state
// cleared.
func (s *Session) Breakdown(ctx context.Context, id string) ([]models.Task, error) {
	a, err := s.assistant()
	if err != nil {
		return nil, err
	}
	parent, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if !parent.IsOpen() {
		return nil, apperrors.Invalid("task", "%s is already finished", id)
	}

	steps, err := a.Breakdown(ctx, parent)
	if err != nil {
		return nil, err
	}

	release, err := s.guard(id)
	if err != nil {
		return nil, err
	}
	defer release()

	created := make([]models.Task, 0, len(steps))
	for _, step := range steps {
		task := models.Task{
			ID:               uuid.New().String(),
			Title:            step.Title,
			Priority:         parent.Priority,
			Energy:           step.Energy,
			EstimatedMinutes: step.EstimatedMinutes,
			Deadline:         parent.Deadline,
			ParentID:         parent.ID,
			CreatedAt:        utils.FormatTimestamp(s.now()),
		}
		stored, err := s.insert(task)
		if err != nil {
			return created, err
		}
		created = append(created, stored)
	}

	parent.ArchivedAt = utils.StringPtr(utils.FormatTimestamp(s.now()))
	if err := s.store.UpdateTask(parent); err != nil {
		return created, apperrors.Persistence("task", err)
	}
	s.detector.Resolve(id)
	s.recordEvent(id, models.SkipEventBreakdown, "", false)
	logger.Info("Broke task down", "id", id, "steps", len(created))
	return created, s.refresh()
}
