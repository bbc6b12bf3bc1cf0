package actions

import tea "charm.land/bubbletea/v2"

// Target is the UI surface actions operate on.
type Target interface {
	SubmitInput() tea.Cmd
	ToggleTheme()
	RequestClear()
	CopySelected() tea.Cmd
	ToggleHelp()
}

// Context contains everything an action needs
type Context struct {
	Target Target
}

// NewContext creates a new action context
func NewContext(target Target) *Context {
	return &Context{Target: target}
}
