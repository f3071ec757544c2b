package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nextup/internal/ranking"
)

type CompleteTaskMsg struct {
	ID string
}

type SkipTaskMsg struct {
	ID string
}

type DeferTaskMsg struct {
	ID string
}

type DeleteTaskMsg struct {
	ID string
}

type Item struct {
	Score ranking.TaskScore
	Head  bool
}

func (i Item) Title() string {
	t := i.Score.Task
	title := t.Title
	if i.Head {
		title = "▶ " + title
	}
	if t.Blocker != "" {
		title += " (blocked: " + t.Blocker + ")"
	}
	return title
}

func (i Item) Description() string {
	t := i.Score.Task
	s := i.Score.Score
	desc := fmt.Sprintf("%d min | %s | %s energy | score %d (deadline %d, priority %d, energy %d, time %d, aging %d)",
		t.EstimatedMinutes, t.Priority, t.Energy.TaskLabel(),
		s.Total, s.DeadlineUrgency, s.PriorityMatch, s.EnergyMatch, s.TimeFit, s.Aging)
	if t.Deadline != nil {
		desc += " | due " + t.Deadline.Local().Format("Jan 2 15:04")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Score.Task.Title }

type KeyMap struct {
	Complete key.Binding
	Skip     key.Binding
	Defer    key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Complete: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "complete"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Defer: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "defer"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
	}
}

// Model lists the ranked queue. Actions apply to the highlighted task.
type Model struct {
	list list.Model
	keys KeyMap
}

func New(ranked []ranking.TaskScore, width, height int) Model {
	l := list.New(items(ranked), list.NewDefaultDelegate(), width, height)
	l.Title = "Queue"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Skip, keys.Defer}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Skip, keys.Defer, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(ranked []ranking.TaskScore) []list.Item {
	out := make([]list.Item, len(ranked))
	for i, ts := range ranked {
		out[i] = Item{Score: ts, Head: i == 0}
	}
	return out
}

// SetQueue replaces the list, keeping the cursor in range.
func (m *Model) SetQueue(ranked []ranking.TaskScore) {
	m.list.SetItems(items(ranked))
	if idx := m.list.Index(); idx >= len(ranked) && len(ranked) > 0 {
		m.list.Select(len(ranked) - 1)
	}
}

// Selected returns the highlighted task.
func (m Model) Selected() (ranking.TaskScore, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return ranking.TaskScore{}, false
	}
	return i.Score, true
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		sel, ok := m.Selected()
		if !ok {
			break
		}
		id := sel.Task.ID
		switch {
		case key.Matches(msg, m.keys.Complete):
			return m, func() tea.Msg { return CompleteTaskMsg{ID: id} }
		case key.Matches(msg, m.keys.Skip):
			return m, func() tea.Msg { return SkipTaskMsg{ID: id} }
		case key.Matches(msg, m.keys.Defer):
			return m, func() tea.Msg { return DeferTaskMsg{ID: id} }
		case key.Matches(msg, m.keys.Delete):
			return m, func() tea.Msg { return DeleteTaskMsg{ID: id} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing to do.\n  Press 'a' to add a task."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
