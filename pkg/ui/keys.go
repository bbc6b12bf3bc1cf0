package ui

import (
	"dbchat/pkg/actions"
	"dbchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// keyBinding maps a key to the action it triggers.
type keyBinding struct {
	keys   []string
	action string
	help   string
}

var globalBindings = []keyBinding{
	{keys: []string{"ctrl+/", "ctrl+_", "ctrl+t"}, action: actions.ActionToggleTheme, help: "ctrl+t"},
	{keys: []string{"ctrl+l"}, action: actions.ActionClearHistory, help: "ctrl+l"},
	{keys: []string{"f1"}, action: actions.ActionHelp, help: "f1"},
}

var inputBindings = []keyBinding{
	{keys: []string{"enter"}, action: actions.ActionSend, help: "enter"},
}

var transcriptBindings = []keyBinding{
	{keys: []string{"y", "c"}, action: actions.ActionCopy, help: "y"},
}

// helpKey returns the key shown in the help overlay for action.
func helpKey(action string) (string, bool) {
	for _, group := range [][]keyBinding{inputBindings, globalBindings, transcriptBindings} {
		for _, b := range group {
			if b.action == action {
				return b.help, true
			}
		}
	}
	return "", false
}

func lookup(bindings []keyBinding, key string) (string, bool) {
	for _, b := range bindings {
		for _, k := range b.keys {
			if k == key {
				return b.action, true
			}
		}
	}
	return "", false
}

// handleKey routes a key press. Overlays take every key while open.
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if key == "ctrl+c" {
		m.saveScroll()
		return tea.Quit
	}

	if m.confirming {
		switch key {
		case "y", "Y", "enter":
			m.confirming = false
			m.ctrl.ClearHistory(true)
			m.transcript.ScrollToBottom()
			m.saveScroll()
		case "n", "N", "esc":
			m.confirming = false
			m.ctrl.ClearHistory(false)
		}
		return nil
	}

	if m.showHelp {
		switch key {
		case "esc", "f1", "q":
			m.showHelp = false
		}
		return nil
	}

	if action, ok := lookup(globalBindings, key); ok {
		return m.dispatch(action)
	}

	switch key {
	case "tab":
		if m.focus == FocusInput {
			return m.setFocus(FocusTranscript)
		}
		return m.setFocus(FocusInput)
	case "pgup", "pgdown":
		m.transcript.HandleScroll(key)
		m.saveScroll()
		return nil
	}

	if m.focus == FocusTranscript {
		return m.handleTranscriptKey(key)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleTranscriptKey(key string) tea.Cmd {
	if action, ok := lookup(transcriptBindings, key); ok {
		return m.dispatch(action)
	}

	switch key {
	case "esc":
		return m.setFocus(FocusInput)
	case "up", "k":
		m.transcript.Select(-1)
	case "down", "j":
		m.transcript.Select(1)
	case "home", "end":
		m.transcript.HandleScroll(key)
	default:
		return nil
	}
	m.saveScroll()
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if action, ok := lookup(inputBindings, key); ok {
		return m.dispatch(action)
	}

	switch key {
	case "up", "down":
		m.transcript.HandleScroll(key)
		m.saveScroll()
		return nil
	}

	if m.busy {
		return nil
	}

	switch key {
	case "shift+enter", "alt+enter", "ctrl+j":
		m.input.InsertString("\n")
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) dispatch(action string) tea.Cmd {
	result := m.dispatcher.Dispatch(action, actions.NewContext(m))
	if result == nil {
		return nil
	}
	if result.Error != nil || result.Title == "Error" {
		m.logger.Error("action_failed", "action", action, "content", result.Content, "error", result.Error)
		return nil
	}
	return result.Cmd
}

// SubmitInput sends the current input. The input is kept when the controller
// refuses it.
func (m *Model) SubmitInput() tea.Cmd {
	cmd := m.ctrl.Submit(m.input.Value())
	if cmd == nil {
		return nil
	}
	m.input.Reset()
	m.transcript.ScrollToBottom()
	return cmd
}

// ToggleTheme switches between the light and dark style sets.
func (m *Model) ToggleTheme() {
	m.styles = styles.For(m.ctrl.ToggleTheme())
	m.spinner.Style = m.styles.Spinner
	m.transcript.SetStyles(m.styles)
}

// RequestClear opens the clear confirmation dialog.
func (m *Model) RequestClear() {
	m.confirming = true
}

// CopySelected copies the selected message, or the newest one.
func (m *Model) CopySelected() tea.Cmd {
	v := m.transcript.Selected()
	if v == nil {
		return nil
	}
	return m.ctrl.Copy(v.ID)
}

// ToggleHelp shows or hides the key binding overlay.
func (m *Model) ToggleHelp() {
	m.showHelp = !m.showHelp
}
