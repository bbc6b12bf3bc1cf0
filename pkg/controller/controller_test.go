package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dbchat/pkg/api"
	"dbchat/pkg/chat"
	"dbchat/pkg/history"
	"dbchat/pkg/prefs"
	"dbchat/pkg/render"
	"dbchat/pkg/storage"

	tea "charm.land/bubbletea/v2"
)

type fakeBackend struct {
	mu        sync.Mutex
	response  string
	chatErr   error
	healthErr error
	messages  []string
}

func (f *fakeBackend) Chat(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.response, f.chatErr
}

func (f *fakeBackend) Health(ctx context.Context) error {
	return f.healthErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeClipboard struct {
	copied []string
	err    error
}

func (f *fakeClipboard) Copy(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

type harness struct {
	ctrl      *Controller
	backend   *fakeBackend
	mem       *storage.MemoryStorage
	history   *history.Store
	clipboard *fakeClipboard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem := storage.NewMemory()
	hist := history.NewStore(mem)
	hist.SetLogger(quiet)
	renderer := render.NewRenderer(render.DefaultTemplate())
	renderer.SetLogger(quiet)

	h := &harness{
		backend:   &fakeBackend{response: "ok"},
		mem:       mem,
		history:   hist,
		clipboard: &fakeClipboard{},
	}
	fixed := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	h.ctrl = New(context.Background(), Config{
		Backend:   h.backend,
		History:   hist,
		Prefs:     prefs.NewStore(mem),
		Renderer:  renderer,
		Clipboard: h.clipboard,
		Now:       func() time.Time { return fixed },
		Logger:    quiet,
	})
	return h
}

func (h *harness) persisted(t *testing.T) []chat.Message {
	t.Helper()
	msgs, err := h.history.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	return msgs
}

// drive runs cmd and feeds every resulting message back until the chain ends.
func (h *harness) drive(cmd tea.Cmd) {
	for cmd != nil {
		cmd = h.ctrl.Update(cmd())
	}
}

func TestLoad_EmptyShowsGreeting(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Load()

	views := h.ctrl.Views()
	if len(views) != 1 {
		t.Fatalf("Expected 1 view, got %d", len(views))
	}
	if views[0].Raw != chat.GreetingText || views[0].Role != chat.RoleAssistant {
		t.Errorf("Expected greeting, got %+v", views[0])
	}
	if msgs := h.persisted(t); len(msgs) != 1 || msgs[0].Content != chat.GreetingText {
		t.Errorf("Expected greeting persisted once, got %+v", msgs)
	}
}

func TestLoad_ReplaysWithoutRewriting(t *testing.T) {
	h := newHarness(t)
	h.history.Append(chat.NewUserMessage("list tables", time.Now()))
	h.history.Append(chat.NewAssistantMessage("* users", time.Now()))

	h.ctrl.Load()
	h.ctrl.Load()

	views := h.ctrl.Views()
	if len(views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(views))
	}
	if views[0].IsMarkup || views[0].Body != "list tables" {
		t.Errorf("Expected literal user view, got %+v", views[0])
	}
	if views[1].Body != "<ul><li>users</li></ul>" {
		t.Errorf("Expected formatted assistant view, got %q", views[1].Body)
	}
	if msgs := h.persisted(t); len(msgs) != 2 {
		t.Errorf("Expected log to stay at 2 messages, got %d", len(msgs))
	}
}

func TestLoad_CorruptHistory(t *testing.T) {
	h := newHarness(t)
	_ = h.mem.Set(history.Key, "[{broken")

	h.ctrl.Load()

	views := h.ctrl.Views()
	if len(views) != 1 || views[0].Raw != chat.CorruptHistoryText {
		t.Fatalf("Expected single corrupt-history notice, got %+v", views)
	}
	if msgs := h.persisted(t); len(msgs) != 1 {
		t.Errorf("Expected fresh log with 1 message, got %d", len(msgs))
	}
}

func TestSubmit_Success(t *testing.T) {
	h := newHarness(t)
	h.backend.response = "There are **3** tables."

	cmd := h.ctrl.Submit("  how many tables?  ")
	if cmd == nil {
		t.Fatal("Expected a command")
	}
	if !h.ctrl.IsProcessing() {
		t.Error("Expected Sending state after submit")
	}
	views := h.ctrl.Views()
	if len(views) != 1 || views[0].Raw != "how many tables?" || views[0].Role != chat.RoleUser {
		t.Fatalf("Expected trimmed user message rendered immediately, got %+v", views)
	}

	h.drive(cmd)

	if h.ctrl.IsProcessing() {
		t.Error("Expected Idle after response")
	}
	if h.backend.messages[0] != "how many tables?" {
		t.Errorf("Expected trimmed message sent, got %q", h.backend.messages[0])
	}
	views = h.ctrl.Views()
	if len(views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(views))
	}
	if views[1].Body != "There are <strong>3</strong> tables." {
		t.Errorf("Unexpected assistant body %q", views[1].Body)
	}

	msgs := h.persisted(t)
	if len(msgs) != 2 || !msgs[0].IsUser || msgs[1].IsUser {
		t.Errorf("Expected user then assistant persisted, got %+v", msgs)
	}
}

func TestSubmit_ResponseDelay(t *testing.T) {
	h := newHarness(t)
	h.ctrl.responseDelay = 20 * time.Millisecond

	cmd := h.ctrl.Submit("hi")
	next := h.ctrl.Update(cmd())
	if next == nil {
		t.Fatal("Expected delayed delivery command")
	}
	if !h.ctrl.IsProcessing() {
		t.Error("Expected to stay Sending during the delay")
	}

	start := time.Now()
	msg := next()
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Expected delay of at least 20ms, got %v", elapsed)
	}
	h.ctrl.Update(msg)
	if h.ctrl.IsProcessing() {
		t.Error("Expected Idle after delivery")
	}
}

func TestSubmit_IgnoredWhileSending(t *testing.T) {
	h := newHarness(t)

	first := h.ctrl.Submit("first")
	second := h.ctrl.Submit("second")
	third := h.ctrl.Submit("third")

	if first == nil {
		t.Fatal("Expected first submit to start a request")
	}
	if second != nil || third != nil {
		t.Error("Expected overlapping submits to be no-ops")
	}

	h.drive(first)

	if got := h.backend.calls(); got != 1 {
		t.Errorf("Expected exactly 1 outbound request, got %d", got)
	}
	if got := len(h.persisted(t)); got != 2 {
		t.Errorf("Expected 2 persisted messages, got %d", got)
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	h := newHarness(t)

	for _, in := range []string{"", "   ", "\n\t"} {
		if cmd := h.ctrl.Submit(in); cmd != nil {
			t.Errorf("Expected no command for %q", in)
		}
	}
	if h.ctrl.IsProcessing() {
		t.Error("Expected to stay Idle")
	}
	if len(h.ctrl.Views()) != 0 {
		t.Error("Expected no messages")
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.chatErr = errors.New("connection refused")

	cmd := h.ctrl.Submit("hi")
	h.drive(cmd)

	if h.ctrl.IsProcessing() {
		t.Error("Expected Idle after failure")
	}
	msgs := h.persisted(t)
	var assistant []chat.Message
	for _, m := range msgs {
		if !m.IsUser {
			assistant = append(assistant, m)
		}
	}
	if len(assistant) != 1 {
		t.Fatalf("Expected exactly 1 assistant message, got %d", len(assistant))
	}
	if assistant[0].Content != chat.NetworkErrorText {
		t.Errorf("Expected network error text, got %q", assistant[0].Content)
	}
	if h.backend.calls() != 1 {
		t.Errorf("Expected no retries, got %d calls", h.backend.calls())
	}
}

func TestSubmit_StatusFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.chatErr = &api.StatusError{Method: "POST", Path: "/chat", StatusCode: 502}

	cmd := h.ctrl.Submit("hi")
	h.drive(cmd)

	views := h.ctrl.Views()
	if last := views[len(views)-1]; last.Raw != chat.NetworkErrorText {
		t.Errorf("Expected network error text, got %q", last.Raw)
	}
}

func TestSubmit_EmptyResponse(t *testing.T) {
	h := newHarness(t)
	h.backend.response = ""

	cmd := h.ctrl.Submit("hi")
	h.drive(cmd)

	views := h.ctrl.Views()
	if last := views[len(views)-1]; last.Raw != chat.EmptyResponseText {
		t.Errorf("Expected fallback text, got %q", last.Raw)
	}
	if h.ctrl.IsProcessing() {
		t.Error("Expected Idle")
	}
}

func TestSubmit_CanSendAgainAfterResponse(t *testing.T) {
	h := newHarness(t)

	cmd := h.ctrl.Submit("one")
	h.drive(cmd)
	cmd = h.ctrl.Submit("two")
	if cmd == nil {
		t.Fatal("Expected second submit after Idle to start a request")
	}
	h.drive(cmd)

	if h.backend.calls() != 2 {
		t.Errorf("Expected 2 requests, got %d", h.backend.calls())
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"healthy", nil, ""},
		{"status", &api.StatusError{Method: "GET", Path: "/health", StatusCode: 503}, chat.UnstableServerText},
		{"unreachable", errors.New("dial tcp: refused"), chat.UnreachableText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.backend.healthErr = tt.err

			h.ctrl.Update(h.ctrl.Probe()())

			views := h.ctrl.Views()
			if tt.want == "" {
				if len(views) != 0 {
					t.Errorf("Expected no messages, got %d", len(views))
				}
				return
			}
			if len(views) != 1 || views[0].Raw != tt.want {
				t.Fatalf("Expected %q, got %+v", tt.want, views)
			}
			if h.ctrl.IsProcessing() {
				t.Error("Probe must not change the send state")
			}
		})
	}
}

func TestProbe_DuringSend(t *testing.T) {
	h := newHarness(t)
	h.backend.healthErr = errors.New("down")

	cmd := h.ctrl.Submit("hi")
	h.ctrl.Update(h.ctrl.Probe()())
	if !h.ctrl.IsProcessing() {
		t.Error("Expected probe result to leave Sending untouched")
	}
	h.drive(cmd)
	if h.ctrl.IsProcessing() {
		t.Error("Expected Idle after response")
	}
}

func TestClearHistory(t *testing.T) {
	h := newHarness(t)
	h.history.Append(chat.NewUserMessage("a", time.Now()))
	h.history.Append(chat.NewAssistantMessage("b", time.Now()))
	h.ctrl.Load()

	if h.ctrl.ClearHistory(false) {
		t.Error("Expected clear without confirmation to do nothing")
	}
	if got := len(h.persisted(t)); got != 2 {
		t.Fatalf("Expected log untouched, got %d messages", got)
	}
	if got := len(h.ctrl.Views()); got != 2 {
		t.Fatalf("Expected transcript untouched, got %d views", got)
	}

	if !h.ctrl.ClearHistory(true) {
		t.Fatal("Expected confirmed clear to succeed")
	}
	msgs := h.persisted(t)
	if len(msgs) != 1 || msgs[0].Content != chat.GreetingText {
		t.Errorf("Expected exactly one greeting, got %+v", msgs)
	}
	views := h.ctrl.Views()
	if len(views) != 1 || views[0].Raw != chat.GreetingText {
		t.Errorf("Expected greeting view only, got %+v", views)
	}
}

func TestClearHistory_Failure(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Load()
	h.mem.FailRemove = errors.New("locked")

	if h.ctrl.ClearHistory(true) {
		t.Error("Expected clear to fail")
	}
	views := h.ctrl.Views()
	if last := views[len(views)-1]; last.Raw != chat.ClearFailedText {
		t.Errorf("Expected clear failure text, got %q", last.Raw)
	}
}

func TestCopy(t *testing.T) {
	h := newHarness(t)
	h.history.Append(chat.NewAssistantMessage("**raw** text", time.Now()))
	h.ctrl.Load()
	v := h.ctrl.Views()[0]

	cmd := h.ctrl.Copy(v.ID)
	if cmd == nil {
		t.Fatal("Expected reset command")
	}
	if len(h.clipboard.copied) != 1 || h.clipboard.copied[0] != "**raw** text" {
		t.Errorf("Expected raw content copied, got %v", h.clipboard.copied)
	}
	if !v.Copied {
		t.Error("Expected copied indicator set")
	}

	h.ctrl.Update(CopyResetMsg{ID: v.ID})
	if v.Copied {
		t.Error("Expected copied indicator reset")
	}
}

func TestCopy_Failures(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Load()

	if cmd := h.ctrl.Copy("missing"); cmd != nil {
		t.Error("Expected nil command for unknown view")
	}

	h.clipboard.err = errors.New("no terminal")
	v := h.ctrl.Views()[0]
	if cmd := h.ctrl.Copy(v.ID); cmd != nil {
		t.Error("Expected nil command on clipboard failure")
	}
	if v.Copied {
		t.Error("Expected indicator unchanged on failure")
	}
}

func TestRenderFailureSkipsMessage(t *testing.T) {
	h := newHarness(t)
	h.ctrl.renderer = render.NewRenderer(nil)
	h.ctrl.renderer.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	cmd := h.ctrl.Submit("hi")
	if cmd == nil {
		t.Fatal("Expected request to proceed")
	}
	if len(h.ctrl.Views()) != 0 {
		t.Error("Expected unrenderable message to be skipped")
	}
	if len(h.persisted(t)) != 0 {
		t.Error("Expected skipped message not to be persisted")
	}
}

func TestThemeAndScroll(t *testing.T) {
	h := newHarness(t)

	if h.ctrl.Theme() != prefs.ThemeLight {
		t.Errorf("Expected light theme, got %q", h.ctrl.Theme())
	}
	if got := h.ctrl.ToggleTheme(); got != prefs.ThemeDark {
		t.Errorf("Expected dark, got %q", got)
	}
	if v, _, _ := h.mem.Get(prefs.ThemeKey); v != "dark" {
		t.Errorf("Expected persisted theme 'dark', got %q", v)
	}

	if _, ok := h.ctrl.ScrollOffset(); ok {
		t.Error("Expected no scroll offset")
	}
	h.ctrl.SetScrollOffset(12)
	if v, _, _ := h.mem.Get(prefs.ScrollKey); v != "12" {
		t.Errorf("Expected persisted offset '12', got %q", v)
	}

	reloaded := New(context.Background(), Config{
		Backend:  h.backend,
		History:  h.history,
		Prefs:    prefs.NewStore(h.mem),
		Renderer: render.NewRenderer(render.DefaultTemplate()),
	})
	if reloaded.Theme() != prefs.ThemeDark {
		t.Errorf("Expected theme restored, got %q", reloaded.Theme())
	}
	if off, ok := reloaded.ScrollOffset(); !ok || off != 12 {
		t.Errorf("Expected offset 12 restored, got %d ok:%v", off, ok)
	}
}
