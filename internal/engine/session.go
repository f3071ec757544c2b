// Package engine ties ranking, planning, the stats ledger and stuck
// detection to a storage.Provider for one user session.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/inflight"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/ranking"
	"github.com/julianstephens/nextup/internal/stats"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/stuck"
	"github.com/julianstephens/nextup/internal/utils"
)

// ErrInFlight is returned when a mutation for the same task is still
// outstanding. Callers treat it as a dropped duplicate.
var ErrInFlight = errors.New("an update for this task is already in progress")

// AppState is the session state visible to the UI. Prefs is the part that
// is persisted.
type AppState struct {
	Prefs    models.Preferences
	Location *time.Location
	Today    string
	Stats    models.UserStats
}

// Backupper snapshots the database before destructive operations.
type Backupper interface {
	Create() (string, error)
}

type Session struct {
	store    storage.Provider
	cfg      config.Config
	prefs    models.Preferences
	loc      *time.Location
	now      func() time.Time
	ledger   *stats.Ledger
	detector *stuck.Detector
	inflight *inflight.Set
	ranker   *ranking.Engine
	alloc    *planner.Allocator
	backups  Backupper
	ai       Assistant

	// revivedOn is the date skipped tasks were last returned to the queue.
	revivedOn string
}

// Option configures a Session before it loads its state.
type Option func(*Session)

// WithClock replaces the session's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBackups enables automatic backups before Reset.
func WithBackups(b Backupper) Option {
	return func(s *Session) { s.backups = b }
}

// WithAssistant attaches the AI parse and breakdown services.
func WithAssistant(a Assistant) Option {
	return func(s *Session) { s.ai = a }
}

// SetAssistant attaches the AI services to an open session. The client
// needs the user's location, which is only known after Open.
func (s *Session) SetAssistant(a Assistant) {
	s.ai = a
}

// Open loads preferences, stats, open tasks and the skip audit trail from
// store. Tasks skipped on an earlier day return to the queue.
func Open(store storage.Provider, cfg config.Config, opts ...Option) (*Session, error) {
	s := &Session{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	prefs, err := store.GetPreferences()
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	loc, err := utils.LoadLocation(prefs.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone in preferences, using local time", "timezone", prefs.Timezone, "error", err)
		loc = time.Local
	}
	s.prefs = prefs
	s.loc = loc

	if err := s.rollover(); err != nil {
		return nil, err
	}

	tasks, err := store.GetOpenTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	st, err := store.GetStats()
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	events, err := store.GetSkipEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to load skip history: %w", err)
	}

	s.ledger = stats.NewLedger(store, stats.State{Tasks: tasks, Stats: st}, loc)
	s.detector = stuck.New(cfg.StuckPolicy())
	s.detector.Hydrate(events)
	s.inflight = inflight.New(inflight.DefaultTTL).WithClock(s.now)
	s.ranker = ranking.New(loc).WithClock(s.now)
	s.alloc = planner.NewAllocator(store).WithClock(s.now)
	return s, nil
}

// State returns a snapshot of the session state.
func (s *Session) State() AppState {
	return AppState{
		Prefs:    s.prefs,
		Location: s.loc,
		Today:    s.Today(),
		Stats:    s.ledger.Stats(),
	}
}

// Today is the current calendar date in the user's timezone.
func (s *Session) Today() string {
	return utils.DateString(s.now(), s.loc)
}

func (s *Session) Energy() models.Energy {
	return s.prefs.Energy
}

// SetEnergy records the user's declared energy. The queue is re-ranked on
// the next read.
func (s *Session) SetEnergy(e models.Energy) error {
	prefs := s.prefs
	prefs.Energy = models.NormalizeEnergy(e)
	if err := s.store.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save energy: %w", err)
	}
	s.prefs = prefs
	logger.Debug("Energy changed", "energy", prefs.Energy)
	return nil
}

// CycleEnergy moves high -> normal -> low -> high.
func (s *Session) CycleEnergy() (models.Energy, error) {
	next := s.prefs.Energy.Next()
	return next, s.SetEnergy(next)
}

// SetTimezone validates and stores an IANA timezone name.
func (s *Session) SetTimezone(name string) error {
	loc, err := utils.LoadLocation(name)
	if err != nil {
		return err
	}
	prefs := s.prefs
	prefs.Timezone = name
	if err := s.store.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save timezone: %w", err)
	}
	s.prefs = prefs
	s.loc = loc
	s.ranker = ranking.New(loc).WithClock(s.now)
	return nil
}

// OnCelebrate registers a hook fired when a completion is applied, before
// it is persisted.
func (s *Session) OnCelebrate(fn stats.CelebrateFunc) {
	s.ledger.OnCelebrate(fn)
}

func (s *Session) Stats() models.UserStats {
	return s.ledger.Stats()
}

// Stuck lists tasks that reached the skip threshold.
func (s *Session) Stuck() []models.StuckInfo {
	return s.detector.Stuck()
}

func (s *Session) StuckInfo(taskID string) models.StuckInfo {
	return s.detector.Info(taskID)
}

// Queue ranks the open tasks in continuous mode.
func (s *Session) Queue() []ranking.TaskScore {
	s.checkRollover()
	return s.ranker.Queue(s.ledger.Tasks(), s.prefs.Energy)
}

// Current returns the head of the queue.
func (s *Session) Current() (ranking.TaskScore, bool) {
	s.checkRollover()
	return s.ranker.Current(s.ledger.Tasks(), s.prefs.Energy)
}

// rollover returns tasks skipped on an earlier day to the queue. It runs
// once per calendar day, so a long-lived session picks up the new day.
func (s *Session) rollover() error {
	today := s.Today()
	if today == s.revivedOn {
		return nil
	}
	startOfDay, err := utils.ParseDateInLocation(today, s.loc)
	if err != nil {
		return err
	}
	revived, err := s.store.ReviveSkipped(startOfDay)
	if err != nil {
		return fmt.Errorf("failed to revive skipped tasks: %w", err)
	}
	s.revivedOn = today
	if revived == 0 {
		return nil
	}
	logger.Info("Returned skipped tasks to the queue", "count", revived, "date", today)
	if s.ledger != nil {
		return s.refresh()
	}
	return nil
}

func (s *Session) checkRollover() {
	if err := s.rollover(); err != nil {
		logger.Warn("Day rollover failed", "error", err)
	}
}

// refresh reloads the open task list after a write outside the ledger.
func (s *Session) refresh() error {
	tasks, err := s.store.GetOpenTasks()
	if err != nil {
		return err
	}
	s.ledger.SetTasks(tasks)
	return nil
}

func (s *Session) recordEvent(taskID, kind, reason string, wasHead bool) {
	ev := models.SkipEvent{
		TaskID:    taskID,
		Kind:      kind,
		Reason:    reason,
		WasHead:   wasHead,
		CreatedAt: utils.FormatTimestamp(s.now()),
	}
	if err := s.store.AddSkipEvent(ev); err != nil {
		logger.Warn("Failed to record skip event", "task", taskID, "kind", kind, "error", err)
	}
}

// guard holds taskID for the duration of one mutation.
func (s *Session) guard(taskID string) (func(), error) {
	if !s.inflight.Begin(taskID) {
		logger.Debug("Dropped duplicate mutation", "task", taskID)
		return nil, ErrInFlight
	}
	return func() { s.inflight.Done(taskID) }, nil
}
