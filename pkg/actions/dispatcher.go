package actions

import (
	"sort"

	tea "charm.land/bubbletea/v2"
)

// Result represents the result of an action
type Result struct {
	Title   string
	Content string
	Cmd     tea.Cmd
	Error   error
}

// Handler is the interface for action handlers
type Handler interface {
	Execute(ctx *Context) *Result
	Name() string
	Description() string
}

// Dispatcher routes actions to their handlers
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher creates a dispatcher with the built-in actions registered
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
	}

	d.Register(&SendHandler{})
	d.Register(&ToggleThemeHandler{})
	d.Register(&ClearHistoryHandler{})
	d.Register(&CopyHandler{})
	d.Register(&HelpHandler{})

	return d
}

// Register adds a handler to the dispatcher
func (d *Dispatcher) Register(h Handler) {
	d.handlers[h.Name()] = h
}

// Dispatch executes an action by name
func (d *Dispatcher) Dispatch(name string, ctx *Context) *Result {
	handler, ok := d.handlers[name]
	if !ok {
		return &Result{
			Title:   "Error",
			Content: "Unknown action: " + name,
		}
	}

	return handler.Execute(ctx)
}

// GetHandler returns a handler by name
func (d *Dispatcher) GetHandler(name string) (Handler, bool) {
	h, ok := d.handlers[name]
	return h, ok
}

// Handlers returns all registered handlers sorted by name
func (d *Dispatcher) Handlers() []Handler {
	out := make([]Handler, 0, len(d.handlers))
	for _, h := range d.handlers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
