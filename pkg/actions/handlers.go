package actions

import "errors"

var errNoTarget = errors.New("no action target")

// Action names.
const (
	ActionSend         = "send"
	ActionToggleTheme  = "toggle-theme"
	ActionClearHistory = "clear-history"
	ActionCopy         = "copy"
	ActionHelp         = "help"
)

func missingTarget(title string) *Result {
	return &Result{Title: title, Error: errNoTarget}
}

// SendHandler submits the current input
type SendHandler struct{}

func (h *SendHandler) Name() string        { return ActionSend }
func (h *SendHandler) Description() string { return "Send the message" }

func (h *SendHandler) Execute(ctx *Context) *Result {
	if ctx == nil || ctx.Target == nil {
		return missingTarget("Send")
	}
	return &Result{Title: "Send", Cmd: ctx.Target.SubmitInput()}
}

// ToggleThemeHandler switches between light and dark
type ToggleThemeHandler struct{}

func (h *ToggleThemeHandler) Name() string        { return ActionToggleTheme }
func (h *ToggleThemeHandler) Description() string { return "Toggle light/dark theme" }

func (h *ToggleThemeHandler) Execute(ctx *Context) *Result {
	if ctx == nil || ctx.Target == nil {
		return missingTarget("Theme")
	}
	ctx.Target.ToggleTheme()
	return &Result{Title: "Theme"}
}

// ClearHistoryHandler asks for confirmation before clearing the chat
type ClearHistoryHandler struct{}

func (h *ClearHistoryHandler) Name() string        { return ActionClearHistory }
func (h *ClearHistoryHandler) Description() string { return "Clear chat history" }

func (h *ClearHistoryHandler) Execute(ctx *Context) *Result {
	if ctx == nil || ctx.Target == nil {
		return missingTarget("Clear")
	}
	ctx.Target.RequestClear()
	return &Result{Title: "Clear"}
}

// CopyHandler copies the selected message
type CopyHandler struct{}

func (h *CopyHandler) Name() string        { return ActionCopy }
func (h *CopyHandler) Description() string { return "Copy the selected message" }

func (h *CopyHandler) Execute(ctx *Context) *Result {
	if ctx == nil || ctx.Target == nil {
		return missingTarget("Copy")
	}
	return &Result{Title: "Copy", Cmd: ctx.Target.CopySelected()}
}

// HelpHandler shows the key bindings
type HelpHandler struct{}

func (h *HelpHandler) Name() string        { return ActionHelp }
func (h *HelpHandler) Description() string { return "Show help" }

func (h *HelpHandler) Execute(ctx *Context) *Result {
	if ctx == nil || ctx.Target == nil {
		return missingTarget("Help")
	}
	ctx.Target.ToggleHelp()
	return &Result{Title: "Help"}
}
