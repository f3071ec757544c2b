package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/planner"
)

const (
	meterWidth = 30
	budgetStep = 15
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// StartDayMsg asks for the selection to be committed as today's plan.
type StartDayMsg struct{}

// BudgetMsg asks for a new selection with a different budget.
type BudgetMsg struct {
	Minutes int
}

// StartTaskMsg marks a planned task as in progress.
type StartTaskMsg struct {
	ID string
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Start  key.Binding
	More   key.Binding
	Less   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		More: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more time"),
		),
		Less: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less time"),
		),
	}
}

// Model shows either the selection being planned or the day already
// started.
type Model struct {
	viewport viewport.Model
	keys     KeyMap
	sel      *planner.Selection
	day      *planner.Day
	titles   map[string]string
	cursor   int
	note     string
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		titles:   make(map[string]string),
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetSelection switches to planning mode.
func (m *Model) SetSelection(sel *planner.Selection) {
	m.sel = sel
	m.day = nil
	m.note = ""
	if m.cursor >= m.rows() {
		m.cursor = max(m.rows()-1, 0)
	}
	m.Render()
}

// SetDay switches to the day view. titles maps task ids to titles.
func (m *Model) SetDay(day planner.Day, titles map[string]string) {
	m.day = &day
	m.sel = nil
	m.titles = titles
	m.note = ""
	if m.cursor >= m.rows() {
		m.cursor = max(m.rows()-1, 0)
	}
	m.Render()
}

func (m Model) Selection() *planner.Selection {
	return m.sel
}

func (m Model) HasDay() bool {
	return m.day != nil
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m Model) rows() int {
	switch {
	case m.day != nil:
		return len(m.day.Tasks)
	case m.sel != nil:
		return len(m.sel.Ranked())
	}
	return 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.toggle()
	case key.Matches(keyMsg, m.keys.Start):
		if m.day != nil {
			if m.cursor < len(m.day.Tasks) {
				id := m.day.Tasks[m.cursor].TaskID
				return m, func() tea.Msg { return StartTaskMsg{ID: id} }
			}
			return m, nil
		}
		if m.sel != nil && len(m.sel.Selected()) > 0 {
			return m, func() tea.Msg { return StartDayMsg{} }
		}
		m.note = "Select at least one task"
	case key.Matches(keyMsg, m.keys.More):
		if m.sel != nil {
			minutes := m.sel.Budget() + budgetStep
			return m, func() tea.Msg { return BudgetMsg{Minutes: minutes} }
		}
	case key.Matches(keyMsg, m.keys.Less):
		if m.sel != nil && m.sel.Budget() > budgetStep {
			minutes := m.sel.Budget() - budgetStep
			return m, func() tea.Msg { return BudgetMsg{Minutes: minutes} }
		}
	}
	m.Render()
	return m, nil
}

func (m *Model) toggle() {
	if m.sel == nil || m.cursor >= len(m.sel.Ranked()) {
		return
	}
	task := m.sel.Ranked()[m.cursor].Task
	ok, err := m.sel.Toggle(task.ID)
	switch {
	case err != nil:
		m.note = err.Error()
	case !ok:
		m.note = fmt.Sprintf("%q does not fit in the remaining %d min", task.Title, m.sel.RemainingMinutes())
	default:
		m.note = ""
	}
}

func (m Model) View() string {
	if m.sel == nil && m.day == nil {
		return "No plan for today."
	}
	return m.viewport.View()
}

func (m *Model) Render() {
	var b strings.Builder
	switch {
	case m.day != nil:
		m.renderDay(&b)
	case m.sel != nil:
		m.renderSelection(&b)
	default:
		m.viewport.SetContent("No plan loaded.")
		return
	}
	if m.note != "" {
		b.WriteString("\n" + mutedStyle.Render(m.note) + "\n")
	}
	m.viewport.SetContent(b.String())
}

func (m Model) renderSelection(b *strings.Builder) {
	fmt.Fprintf(b, "Budget %s %d/%d min\n\n", Meter(m.sel.TotalMinutes(), m.sel.Budget(), meterWidth), m.sel.TotalMinutes(), m.sel.Budget())
	ranked := m.sel.Ranked()
	if len(ranked) == 0 {
		b.WriteString(mutedStyle.Render("No open tasks to plan."))
		return
	}
	for i, ts := range ranked {
		box := "[ ]"
		if m.sel.IsSelected(ts.Task.ID) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s  %d min  score %d", box, ts.Task.Title, ts.Task.EstimatedMinutes, ts.Score.Total)
		b.WriteString(m.line(i, line, !m.sel.IsSelected(ts.Task.ID) && !m.sel.CanSelect(ts.Task.ID)))
	}
}

func (m Model) renderDay(b *strings.Builder) {
	p := m.day.Progress
	fmt.Fprintf(b, "%s  %s energy  %s\n", m.day.Plan.Date, m.day.Plan.Energy.TaskLabel(), m.day.Plan.Status)
	fmt.Fprintf(b, "Progress %s %d/%d (%d%%)  %d min elapsed, %d min left\n\n",
		Meter(p.Completed, p.Total, meterWidth), p.Completed, p.Total, p.Percentage, p.ElapsedMinutes, p.RemainingMinutes)
	for i, pt := range m.day.Tasks {
		title := m.titles[pt.TaskID]
		if title == "" {
			title = pt.TaskID
		}
		b.WriteString(m.line(i, fmt.Sprintf("%s %s", statusMark(pt.Status), title), pt.Status.IsTerminal()))
	}
}

func (m Model) line(i int, text string, muted bool) string {
	switch {
	case i == m.cursor:
		return cursorStyle.Render("> "+text) + "\n"
	case muted:
		return mutedStyle.Render("  "+text) + "\n"
	default:
		return taskStyle.Render("  "+text) + "\n"
	}
}

func statusMark(s models.PlannedTaskStatus) string {
	switch s {
	case models.PlannedInProgress:
		return "▶"
	case models.PlannedCompleted:
		return "✓"
	case models.PlannedSkipped:
		return "✗"
	case models.PlannedDeferred:
		return "→"
	default:
		return "·"
	}
}

// Meter renders used out of total as a bar of the given width.
func Meter(used, total, width int) string {
	filled := 0
	if total > 0 {
		filled = used * width / total
	}
	filled = min(max(filled, 0), width)
	return filledStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}
