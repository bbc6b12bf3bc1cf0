package ui

import (
	"strings"

	"dbchat/pkg/chat"
	"dbchat/pkg/ui/components/utils"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	appTitle    = "dbchat"
	footerIdle  = "enter send · shift+enter newline · tab focus · ctrl+t theme · ctrl+l clear · f1 help"
	footerFocus = "up/down select · y copy · pgup/pgdown scroll · esc back"
)

// View renders the UI (Bubble Tea lifecycle method)
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

func (m Model) render() string {
	if !m.ready {
		return "Initializing..."
	}

	body := m.transcript.View()
	switch {
	case m.confirming:
		body = m.overlay(m.confirmView())
	case m.showHelp:
		body = m.overlay(m.helpView())
	}

	parts := []string{
		m.headerView(),
		body,
		m.styles.Separator.Render(strings.Repeat("─", m.width)),
		m.inputView(),
		m.footerView(),
	}
	return strings.Join(parts, "\n")
}

func (m Model) headerView() string {
	left := m.styles.Title.Render(appTitle)
	if m.endpoint != "" {
		left += m.styles.Footer.Render(" " + m.endpoint)
	}
	right := m.styles.Footer.Render(string(m.styles.Theme))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return utils.TruncateStyled(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) inputView() string {
	if m.busy {
		line := m.spinner.View() + m.styles.Placeholder.Render(" Waiting for response...")
		lines := []string{utils.PadStyled(line, m.width)}
		for len(lines) < inputHeight {
			lines = append(lines, strings.Repeat(" ", m.width))
		}
		return strings.Join(lines, "\n")
	}
	return m.input.View()
}

func (m Model) footerView() string {
	hint := footerIdle
	if m.focus == FocusTranscript {
		hint = footerFocus
	}
	return m.styles.Footer.Render(utils.TruncateToWidth(hint, m.width))
}

func (m Model) confirmView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.BoxTitle.Render("Clear history"),
		"",
		m.styles.HelpValue.Render(chat.ClearConfirmPrompt),
		"",
		m.styles.HelpKey.Render("y")+m.styles.HelpValue.Render(" confirm   ")+
			m.styles.HelpKey.Render("n")+m.styles.HelpValue.Render(" cancel"),
	)
}

func (m Model) helpView() string {
	lines := []string{m.styles.BoxTitle.Render("Keys"), ""}
	for _, h := range m.dispatcher.Handlers() {
		key, ok := helpKey(h.Name())
		if !ok {
			continue
		}
		lines = append(lines, m.styles.HelpKey.Render(utils.PadPlain(key, 8))+m.styles.HelpValue.Render(h.Description()))
	}
	lines = append(lines,
		m.styles.HelpKey.Render(utils.PadPlain("tab", 8))+m.styles.HelpValue.Render("Switch focus"),
		m.styles.HelpKey.Render(utils.PadPlain("ctrl+c", 8))+m.styles.HelpValue.Render("Quit"),
	)
	return strings.Join(lines, "\n")
}

// overlay centers a boxed panel in the transcript area.
func (m Model) overlay(content string) string {
	box := m.styles.Box.Render(content)
	return lipgloss.Place(m.width, m.transcriptHeight(), lipgloss.Center, lipgloss.Center, box)
}
