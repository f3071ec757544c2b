package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nextup/internal/constants"
	"github.com/julianstephens/nextup/internal/engine"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
	"github.com/julianstephens/nextup/internal/storage"
	"github.com/julianstephens/nextup/internal/stuck"
	"github.com/julianstephens/nextup/internal/tui/components/plan"
	"github.com/julianstephens/nextup/internal/tui/components/tasklist"
)

var tabs = []string{"Queue", "Planner"}

type TaskFormModel struct {
	Title    string
	Minutes  string
	Priority string
	Energy   string
	Deadline string
}

type Model struct {
	sess          *engine.Session
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	queue         tasklist.Model
	planModel     plan.Model
	keepInput     textinput.Model
	form          *huh.Form
	taskForm      *TaskFormModel
	stuckTask     models.Task
	stuckSignal   stuck.Signal
	working       bool
	status        string
	warning       string
	quitting      bool
	width         int
	height        int
}

func NewModel(sess *engine.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "What is blocking it?"
	ti.CharLimit = constants.MaxTitleLength

	m := Model{
		sess:      sess,
		state:     constants.StateQueue,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		queue:     tasklist.New(sess.Queue(), 0, 0),
		planModel: plan.New(0, 0),
		keepInput: ti,
	}
	m.loadPlanner()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateQueue:
		keys = append(keys, m.keys.Add, m.keys.Energy)
	case constants.StatePlanner:
		pk := m.planModel.Keys()
		keys = append(keys, pk.Toggle, pk.Start, m.keys.Energy)
	case constants.StateStuck:
		keys = []key.Binding{m.keys.Breakdown, m.keys.Delegate, m.keys.HireOut, m.keys.Keep, m.keys.Back}
	case constants.StateKeepReason, constants.StateAddTask:
		keys = []key.Binding{m.keys.Back}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateQueue:
		qk := tasklist.DefaultKeyMap()
		actions = []key.Binding{qk.Complete, qk.Skip, qk.Defer, qk.Delete, m.keys.Add, m.keys.Energy, m.keys.Refresh}
	case constants.StatePlanner:
		pk := m.planModel.Keys()
		actions = []key.Binding{pk.Up, pk.Down, pk.Toggle, pk.Start, pk.More, pk.Less, m.keys.Energy, m.keys.Refresh}
	case constants.StateStuck:
		actions = []key.Binding{m.keys.Breakdown, m.keys.Delegate, m.keys.HireOut, m.keys.Keep, m.keys.Back}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return m.queue.Init()
}

// refresh reloads the queue and the planner after a mutation.
func (m *Model) refresh() {
	m.queue.SetQueue(m.sess.Queue())
	m.loadPlanner()
}

// loadPlanner shows today's plan when one was started, otherwise a fresh
// selection at the current energy level.
func (m *Model) loadPlanner() {
	day, err := m.sess.Day()
	if err == nil && day.Plan.Status != models.PlanStatusAbandoned {
		m.planModel.SetDay(day, m.titles(day))
		return
	}
	if err != nil && !errors.Is(err, planner.ErrNoPlan) && !errors.Is(err, storage.ErrNotFound) {
		m.warning = err.Error()
	}

	budget := m.sess.DefaultBudget()
	if sel := m.planModel.Selection(); sel != nil {
		budget = sel.Budget()
	}
	m.newSelection(budget)
}

func (m *Model) newSelection(budget int) {
	sel, err := m.sess.PlanCandidates(m.sess.Energy(), budget)
	if err != nil {
		m.warning = err.Error()
		return
	}
	m.planModel.SetSelection(sel)
}

func (m Model) titles(day planner.Day) map[string]string {
	titles := make(map[string]string, len(day.Tasks))
	for _, pt := range day.Tasks {
		if t, err := m.sess.GetTask(pt.TaskID); err == nil {
			titles[pt.TaskID] = t.Title
		}
	}
	return titles
}

func (m *Model) setError(err error) {
	logger.Debug("TUI action failed", "error", err)
	m.status = ""
	m.warning = err.Error()
}

func (m *Model) setStatus(format string, args ...any) {
	m.warning = ""
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) openTaskForm() tea.Cmd {
	m.taskForm = &TaskFormModel{
		Minutes:  strconv.Itoa(constants.DefaultEstimatedMinutes),
		Priority: string(models.PriorityMedium),
		Energy:   string(models.EnergyNormal),
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.taskForm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Estimated minutes").
				Value(&m.taskForm.Minutes).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 || n > constants.MaxEstimatedMinutes {
						return fmt.Errorf("enter 1-%d minutes", constants.MaxEstimatedMinutes)
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", string(models.PriorityHigh)),
					huh.NewOption("Medium", string(models.PriorityMedium)),
					huh.NewOption("Low", string(models.PriorityLow)),
				).
				Value(&m.taskForm.Priority),
			huh.NewSelect[string]().
				Title("Energy").
				Options(
					huh.NewOption("High", string(models.EnergyHigh)),
					huh.NewOption("Normal", string(models.EnergyNormal)),
					huh.NewOption("Low", string(models.EnergyLow)),
				).
				Value(&m.taskForm.Energy),
			huh.NewInput().
				Title("Deadline (YYYY-MM-DD, optional)").
				Value(&m.taskForm.Deadline),
		),
	)
	m.previousState = m.state
	m.state = constants.StateAddTask
	return m.form.Init()
}

func (m *Model) submitTaskForm() {
	defer func() {
		m.form = nil
		m.taskForm = nil
		m.state = m.previousState
	}()
	minutes, _ := strconv.Atoi(strings.TrimSpace(m.taskForm.Minutes))
	task, err := m.sess.AddTask(engine.TaskInput{
		Title:            m.taskForm.Title,
		Priority:         m.taskForm.Priority,
		Energy:           m.taskForm.Energy,
		EstimatedMinutes: minutes,
		Deadline:         m.taskForm.Deadline,
	})
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	m.setStatus("✓ Added %q", task.Title)
}
