package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nextup/internal/constants"
	"github.com/julianstephens/nextup/internal/models"
	"github.com/julianstephens/nextup/internal/tui/components/plan"
	"github.com/julianstephens/nextup/internal/tui/components/tasklist"
)

// chromeHeight is the rows taken by tabs, header, status line and help.
const chromeHeight = 6

type breakdownDoneMsg struct {
	parent   models.Task
	subtasks []models.Task
	err      error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.queue.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.planModel.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil

	case breakdownDoneMsg:
		m.working = false
		m.state = constants.StateQueue
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.refresh()
		m.setStatus("✓ Broke %q into %d steps", msg.parent.Title, len(msg.subtasks))
		return m, nil

	case tasklist.CompleteTaskMsg:
		m.complete(msg.ID)
		return m, nil
	case tasklist.SkipTaskMsg:
		m.skip(msg.ID)
		return m, nil
	case tasklist.DeferTaskMsg:
		if err := m.sess.Defer(msg.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setStatus("✓ Deferred task")
		return m, nil
	case tasklist.DeleteTaskMsg:
		if err := m.sess.DeleteTask(msg.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setStatus("✓ Deleted task (restore with `nextup task restore`)")
		return m, nil

	case plan.StartDayMsg:
		day, err := m.sess.StartDay(m.planModel.Selection(), m.sess.Energy())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setStatus("✓ Started day with %d tasks", len(day.Tasks))
		return m, nil
	case plan.BudgetMsg:
		m.newSelection(msg.Minutes)
		return m, nil
	case plan.StartTaskMsg:
		if _, err := m.sess.StartTask(msg.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setStatus("✓ Started task")
		return m, nil
	}

	switch m.state {
	case constants.StateAddTask:
		return m.updateForm(msg)
	case constants.StateKeepReason:
		return m.updateKeepReason(msg)
	case constants.StateStuck:
		return m.updateStuck(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == constants.StateQueue {
				m.state = constants.StatePlanner
			} else {
				m.state = constants.StateQueue
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Add):
			return m, m.openTaskForm()
		case key.Matches(msg, m.keys.Energy):
			energy, err := m.sess.CycleEnergy()
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.refresh()
			m.setStatus("Energy: %s", energy.TaskLabel())
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateQueue:
		m.queue, cmd = m.queue.Update(msg)
	case constants.StatePlanner:
		m.planModel, cmd = m.planModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) complete(id string) {
	task, err := m.sess.Complete(id)
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	st := m.sess.Stats()
	if st.CurrentStreak > 1 && st.CurrentStreak == st.StreakBest {
		m.setStatus("🎉 Completed %q. New best streak: %d days", task.Title, st.CurrentStreak)
		return
	}
	m.setStatus("✓ Completed %q (streak %d)", task.Title, st.CurrentStreak)
}

func (m *Model) skip(id string) {
	out, err := m.sess.Skip(id, "")
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	if out.Stuck {
		m.stuckTask = out.Task
		m.stuckSignal = out.Signal
		m.state = constants.StateStuck
		m.status = ""
		return
	}
	m.setStatus("✓ Skipped %q", out.Task.Title)
}

func (m Model) updateStuck(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.working {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Breakdown):
		m.working = true
		m.setStatus("Breaking down %q...", m.stuckTask.Title)
		sess, parent := m.sess, m.stuckTask
		return m, func() tea.Msg {
			steps, err := sess.Breakdown(context.Background(), parent.ID)
			return breakdownDoneMsg{parent: parent, subtasks: steps, err: err}
		}
	case key.Matches(keyMsg, m.keys.Delegate), key.Matches(keyMsg, m.keys.HireOut):
		if err := m.sess.DeleteTask(m.stuckTask.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.state = constants.StateQueue
		m.refresh()
		m.setStatus("✓ Handed off %q", m.stuckTask.Title)
	case key.Matches(keyMsg, m.keys.Keep):
		m.state = constants.StateKeepReason
		m.keepInput.SetValue("")
		focus := m.keepInput.Focus()
		return m, tea.Batch(focus, textinput.Blink)
	case key.Matches(keyMsg, m.keys.Back):
		m.state = constants.StateQueue
	}
	return m, nil
}

func (m Model) updateKeepReason(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.keepInput.Blur()
			m.state = constants.StateStuck
			return m, nil
		case tea.KeyEnter:
			task, err := m.sess.Keep(m.stuckTask.ID, m.keepInput.Value())
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.keepInput.Blur()
			m.state = constants.StateQueue
			m.refresh()
			m.setStatus("✓ Keeping %q (blocked: %s)", task.Title, task.Blocker)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.keepInput, cmd = m.keepInput.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
		m.form = nil
		m.taskForm = nil
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitTaskForm()
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.taskForm = nil
		m.state = m.previousState
		return m, nil
	}
	return m, cmd
}
