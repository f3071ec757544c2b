package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nextup/internal/constants"
	"github.com/julianstephens/nextup/internal/stuck"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateQueue:
		content = m.viewQueue()
	case constants.StatePlanner:
		content = docStyle.Render(m.planModel.View())
	case constants.StateStuck:
		content = m.viewStuck()
	case constants.StateKeepReason:
		content = m.viewKeepReason()
	case constants.StateAddTask:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := 0
	if m.state == constants.StatePlanner {
		active = 1
	}
	var rendered []string
	for i, title := range tabs {
		if i == active {
			rendered = append(rendered, activeTabStyle.Render(title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewHeader() string {
	st := m.sess.Stats()
	return headerStyle.Render(fmt.Sprintf("%s  energy: %s  streak: %d  trust: %d",
		m.sess.Today(), m.sess.Energy().TaskLabel(), st.CurrentStreak, st.TrustScore))
}

func (m Model) viewStatus() string {
	if m.warning != "" {
		return warningStyle.Render("⚠ " + m.warning)
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewQueue() string {
	head, ok := m.sess.Current()
	if !ok {
		return docStyle.Render(m.queue.View())
	}
	t := head.Task
	var b strings.Builder
	fmt.Fprintf(&b, "Next up: %s\n", t.Title)
	fmt.Fprintf(&b, "%d min · %s priority · %s energy", t.EstimatedMinutes, t.Priority, t.Energy.TaskLabel())
	if info := m.sess.StuckInfo(t.ID); info.SkipCount > 0 {
		fmt.Fprintf(&b, " · skipped %d×", info.SkipCount)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		docStyle.Render(headStyle.Render(b.String())),
		docStyle.Render(m.queue.View()),
	)
}

func (m Model) viewStuck() string {
	lines := []string{
		dangerStyle.Render(fmt.Sprintf("%q has been skipped %d times in a row.", m.stuckTask.Title, m.stuckSignal.SkipCount)),
		"",
	}
	for _, opt := range m.stuckSignal.Options {
		switch opt {
		case stuck.OptionBreakdown:
			lines = append(lines, "[b] Break it into smaller steps")
		case stuck.OptionDelegate:
			lines = append(lines, "[d] Delegate it")
		case stuck.OptionHireOut:
			lines = append(lines, "[h] Hire it out")
		case stuck.OptionKeep:
			lines = append(lines, "[k] Keep it and note what is blocking it")
		}
	}
	lines = append(lines, "", "[esc] Decide later")

	return lipgloss.Place(m.width, max(m.height-chromeHeight, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}

func (m Model) viewKeepReason() string {
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("Why keep %q?", m.stuckTask.Title),
			"",
			m.keepInput.View(),
			"",
			"[enter] Save  [esc] Back",
		),
	)
}
