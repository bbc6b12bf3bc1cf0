package ui

import (
	"log/slog"

	"dbchat/pkg/actions"
	"dbchat/pkg/controller"
	"dbchat/pkg/ui/components/transcript"
	"dbchat/pkg/ui/styles"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

const (
	inputHeight = 3
	wheelStep   = 3
)

// FocusTarget indicates which pane receives navigation keys.
type FocusTarget int

const (
	FocusInput FocusTarget = iota
	FocusTranscript
)

// Options configures the UI model.
type Options struct {
	Controller *controller.Controller
	Endpoint   string
	Logger     *slog.Logger
}

// Model represents the Bubble Tea application state
type Model struct {
	ctrl       *controller.Controller
	dispatcher *actions.Dispatcher
	logger     *slog.Logger
	endpoint   string

	// UI Components
	input      textarea.Model
	spinner    spinner.Model
	transcript *transcript.Transcript
	styles     styles.Styles

	// UI state
	width    int
	height   int
	ready    bool
	restored bool
	focus    FocusTarget
	revision int
	busy     bool

	// Overlays
	confirming bool
	showHelp   bool
}

// NewModel creates a new Bubble Tea model around a loaded controller
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := styles.For(opts.Controller.Theme())

	input := textarea.New()
	input.Placeholder = "Ask about your database..."
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.Focus()

	m := Model{
		ctrl:       opts.Controller,
		dispatcher: actions.NewDispatcher(),
		logger:     logger,
		endpoint:   opts.Endpoint,
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(st.Spinner)),
		transcript: transcript.New(st),
		styles:     st,
		revision:   -1,
	}
	m.syncTranscript()
	return m
}

// Init initializes the model (Bubble Tea lifecycle method)
func (m Model) Init() tea.Cmd {
	return m.ctrl.Probe()
}

// Update handles messages and updates model state (Bubble Tea lifecycle method)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		if !m.restored {
			m.restored = true
			if offset, ok := m.ctrl.ScrollOffset(); ok {
				m.transcript.SetScrollY(offset)
			} else {
				m.transcript.ScrollToBottom()
			}
		}
		m.saveScroll()
		return m, nil

	case tea.KeyPressMsg:
		cmd := m.handleKey(msg)
		cmd = tea.Batch(cmd, m.afterControllerChange())
		return m, cmd

	case tea.PasteMsg:
		if m.busy || m.focus != FocusInput || m.confirming || m.showHelp {
			return m, nil
		}
		m.input.InsertString(msg.Content)
		return m, nil

	case tea.MouseWheelMsg:
		switch msg.Mouse().Button {
		case tea.MouseWheelUp:
			m.transcript.ScrollBy(-wheelStep)
		case tea.MouseWheelDown:
			m.transcript.ScrollBy(wheelStep)
		default:
			return m, nil
		}
		m.saveScroll()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case controller.ChatResultMsg, controller.ProbeResultMsg, controller.CopyResetMsg:
		cmd := m.ctrl.Update(msg)
		cmd = tea.Batch(cmd, m.afterControllerChange())
		return m, cmd
	}

	// Unexported controller messages (the delayed reply) land here.
	if cmd := m.ctrl.Update(msg); cmd != nil || m.ctrl.Revision() != m.revision {
		cmd = tea.Batch(cmd, m.afterControllerChange())
		return m, cmd
	}

	if m.focus == FocusInput && !m.busy {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// afterControllerChange refreshes the transcript and the Idle/Sending chrome
// after the controller may have changed.
func (m *Model) afterControllerChange() tea.Cmd {
	m.syncTranscript()

	processing := m.ctrl.IsProcessing()
	if processing == m.busy {
		return nil
	}
	m.busy = processing
	if processing {
		m.input.Blur()
		return m.spinner.Tick
	}
	if m.focus == FocusInput {
		return m.input.Focus()
	}
	return nil
}

func (m *Model) syncTranscript() {
	if m.ctrl.Revision() == m.revision {
		return
	}
	m.revision = m.ctrl.Revision()
	m.transcript.SetViews(m.ctrl.Views())
}

func (m *Model) layout() {
	m.input.SetWidth(m.width)
	m.transcript.SetSize(m.width, m.transcriptHeight())
}

// transcriptHeight leaves room for the header, separator, input and footer.
func (m *Model) transcriptHeight() int {
	h := m.height - inputHeight - 3
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) saveScroll() {
	m.ctrl.SetScrollOffset(m.transcript.ScrollY())
}

func (m *Model) setFocus(f FocusTarget) tea.Cmd {
	m.focus = f
	if f == FocusTranscript {
		m.input.Blur()
		return nil
	}
	m.transcript.ClearSelection()
	if m.busy {
		return nil
	}
	return m.input.Focus()
}
