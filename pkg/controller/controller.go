// Package controller holds the chat state machine: Idle while waiting for
// input, Sending while one request is in flight.
//
// All state lives on Controller and changes only inside its methods, which the
// UI calls from the Bubble Tea update loop. Blocking work (the chat request,
// the response delay, the startup probe) runs as tea.Cmd values whose results
// come back through Update.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dbchat/pkg/api"
	"dbchat/pkg/chat"
	"dbchat/pkg/history"
	"dbchat/pkg/prefs"
	"dbchat/pkg/render"

	tea "charm.land/bubbletea/v2"
)

// Backend is the remote chat endpoint.
type Backend interface {
	Chat(ctx context.Context, message string) (string, error)
	Health(ctx context.Context) error
}

// ChatResultMsg carries the outcome of a chat request.
type ChatResultMsg struct {
	Response string
	Err      error
}

// ProbeResultMsg carries the outcome of the startup connectivity probe.
type ProbeResultMsg struct {
	Err error
}

// CopyResetMsg clears the copied indicator of a view.
type CopyResetMsg struct {
	ID string
}

type responseReadyMsg struct {
	content string
}

// Config wires a Controller.
type Config struct {
	Backend       Backend
	History       *history.Store
	Prefs         *prefs.Store // optional
	Renderer      *render.Renderer
	Clipboard     render.Clipboard
	ResponseDelay time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// Controller owns the transcript and the Idle/Sending state.
type Controller struct {
	ctx           context.Context
	backend       Backend
	history       *history.Store
	prefs         *prefs.Store
	renderer      *render.Renderer
	clipboard     render.Clipboard
	responseDelay time.Duration
	now           func() time.Time
	logger        *slog.Logger

	views        []*render.View
	revision     int
	isProcessing bool
	theme        prefs.Theme
	scrollOffset int
	hasScroll    bool
}

// New creates a controller. ctx bounds every outbound request.
func New(ctx context.Context, cfg Config) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Controller{
		ctx:           ctx,
		backend:       cfg.Backend,
		history:       cfg.History,
		prefs:         cfg.Prefs,
		renderer:      cfg.Renderer,
		clipboard:     cfg.Clipboard,
		responseDelay: cfg.ResponseDelay,
		now:           cfg.Now,
		logger:        cfg.Logger,
		theme:         prefs.ThemeLight,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.prefs != nil {
		c.theme = c.prefs.Theme()
		c.scrollOffset, c.hasScroll = c.prefs.ScrollOffset()
	}
	return c
}

// Views returns the transcript in display order.
func (c *Controller) Views() []*render.View {
	return c.views
}

// Revision increases every time the transcript changes.
func (c *Controller) Revision() int {
	return c.revision
}

// IsProcessing reports whether a send is in flight.
func (c *Controller) IsProcessing() bool {
	return c.isProcessing
}

// Load rebuilds the transcript from the persisted log. Replayed messages are
// not written again.
func (c *Controller) Load() {
	c.views = nil
	c.revision++

	msgs, err := c.history.LoadAll()
	if err != nil {
		c.logger.Error("history_replay_failed", "error", err)
		c.addMessage(chat.CorruptHistoryText, false)
		return
	}
	if len(msgs) == 0 {
		c.addMessage(chat.GreetingText, false)
		return
	}
	for _, msg := range msgs {
		if v := c.renderer.RenderMessage(msg); v != nil {
			c.views = append(c.views, v)
		}
	}
	c.logger.Info("history_replayed", "messages", len(msgs), "rendered", len(c.views))
}

// Submit starts sending input. It is a no-op while Sending or when the
// trimmed input is empty.
func (c *Controller) Submit(input string) tea.Cmd {
	if c.isProcessing {
		c.logger.Debug("submit_ignored_busy")
		return nil
	}
	message := strings.TrimSpace(input)
	if message == "" {
		return nil
	}

	c.isProcessing = true
	c.addMessage(message, true)

	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		resp, err := backend.Chat(ctx, message)
		return ChatResultMsg{Response: resp, Err: err}
	}
}

// Probe returns a command that checks connectivity once.
func (c *Controller) Probe() tea.Cmd {
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		return ProbeResultMsg{Err: backend.Health(ctx)}
	}
}

// Update applies a result message. Unknown messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ChatResultMsg:
		return c.handleChatResult(msg)

	case responseReadyMsg:
		c.addMessage(msg.content, false)
		c.finishSend()
		return nil

	case ProbeResultMsg:
		c.handleProbe(msg.Err)
		return nil

	case CopyResetMsg:
		if v := c.find(msg.ID); v != nil {
			v.Copied = false
			c.revision++
		}
		return nil
	}
	return nil
}

func (c *Controller) handleChatResult(msg ChatResultMsg) tea.Cmd {
	if msg.Err != nil {
		c.logger.Error("chat_send_failed", "error", msg.Err)
		c.addMessage(chat.NetworkErrorText, false)
		c.finishSend()
		return nil
	}
	if msg.Response == "" {
		c.logger.Warn("chat_empty_response")
		c.addMessage(chat.EmptyResponseText, false)
		c.finishSend()
		return nil
	}

	ready := responseReadyMsg{content: msg.Response}
	if c.responseDelay <= 0 {
		return func() tea.Msg { return ready }
	}
	return tea.Tick(c.responseDelay, func(time.Time) tea.Msg { return ready })
}

func (c *Controller) finishSend() {
	c.isProcessing = false
}

func (c *Controller) handleProbe(err error) {
	if err == nil {
		return
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		c.addMessage(chat.UnstableServerText, false)
		return
	}
	c.logger.Error("server_connection_error", "error", err)
	c.addMessage(chat.UnreachableText, false)
}

// ClearHistory removes the persisted log and re-seeds the greeting. Without
// confirmation nothing changes.
func (c *Controller) ClearHistory(confirmed bool) bool {
	if !confirmed {
		c.logger.Debug("history_clear_declined")
		return false
	}
	if err := c.history.Clear(); err != nil {
		c.addMessage(chat.ClearFailedText, false)
		return false
	}
	c.views = nil
	c.revision++
	c.addMessage(chat.GreetingText, false)
	return true
}

// Copy places the raw content of view id on the clipboard and marks the view
// as copied until the returned command resets it.
func (c *Controller) Copy(id string) tea.Cmd {
	v := c.find(id)
	if v == nil {
		return nil
	}
	if c.clipboard == nil {
		c.logger.Error("copy_failed", "error", "no clipboard")
		return nil
	}
	if err := c.clipboard.Copy(v.Raw); err != nil {
		c.logger.Error("copy_failed", "error", err)
		return nil
	}
	v.Copied = true
	c.revision++
	return tea.Tick(render.CopyIndicatorDuration, func(time.Time) tea.Msg {
		return CopyResetMsg{ID: id}
	})
}

// Theme returns the active theme.
func (c *Controller) Theme() prefs.Theme {
	return c.theme
}

// ToggleTheme switches between light and dark and persists the choice.
func (c *Controller) ToggleTheme() prefs.Theme {
	if c.theme == prefs.ThemeDark {
		c.theme = prefs.ThemeLight
	} else {
		c.theme = prefs.ThemeDark
	}
	if c.prefs != nil {
		c.prefs.SetTheme(c.theme)
	}
	return c.theme
}

// ScrollOffset returns the last saved scroll offset, if any.
func (c *Controller) ScrollOffset() (int, bool) {
	return c.scrollOffset, c.hasScroll
}

// SetScrollOffset records and persists the transcript scroll offset.
func (c *Controller) SetScrollOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	if c.hasScroll && c.scrollOffset == offset {
		return
	}
	c.scrollOffset = offset
	c.hasScroll = true
	if c.prefs != nil {
		c.prefs.SetScrollOffset(offset)
	}
}

// addMessage renders content, appends it to the transcript and persists it.
// A message that fails to render is skipped entirely.
func (c *Controller) addMessage(content string, isUser bool) {
	now := c.now()
	v := c.renderer.Render(content, isUser, now)
	if v == nil {
		return
	}
	c.views = append(c.views, v)
	c.revision++
	msg := chat.NewAssistantMessage(content, now)
	if isUser {
		msg = chat.NewUserMessage(content, now)
	}
	c.history.Append(msg)
}

func (c *Controller) find(id string) *render.View {
	for _, v := range c.views {
		if v.ID == id {
			return v
		}
	}
	return nil
}
