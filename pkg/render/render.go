// Package render maps chat messages to display-ready view models.
//
// A View carries everything a rendering target needs: role styling, the body
// to display, whether that body is markup, and a time label. User content is
// never marked as markup.
package render

import (
	"errors"
	"log/slog"
	"time"

	"dbchat/pkg/chat"
	"dbchat/pkg/format"

	"github.com/google/uuid"
)

// CopyIndicatorDuration is how long a view shows its copied state.
const CopyIndicatorDuration = 2 * time.Second

// ErrNoTemplate is logged when a renderer has no usable template.
var ErrNoTemplate = errors.New("render: message template not found")

// Template is the fixed structure every message view is built from.
type Template struct {
	UserClass      string
	AssistantClass string
	TimeLayout     string
}

// DefaultTemplate returns the standard message template.
func DefaultTemplate() *Template {
	return &Template{
		UserClass:      "user-message",
		AssistantClass: "assistant-message",
		TimeLayout:     "15:04",
	}
}

func (t *Template) validate() error {
	if t == nil {
		return ErrNoTemplate
	}
	if t.UserClass == "" || t.AssistantClass == "" {
		return errors.New("render: template is missing a role class")
	}
	if t.TimeLayout == "" {
		return errors.New("render: template is missing a time layout")
	}
	return nil
}

// View is the display model of one message.
type View struct {
	ID        string
	Role      string
	Class     string
	Raw       string // original content, used by the copy action
	Body      string
	IsMarkup  bool
	TimeLabel string
	Timestamp time.Time
	Copied    bool
}

// Renderer builds views from a template.
type Renderer struct {
	template *Template
	location *time.Location
	logger   *slog.Logger
}

// NewRenderer creates a renderer using tmpl. Time labels use local time.
func NewRenderer(tmpl *Template) *Renderer {
	return &Renderer{template: tmpl, location: time.Local, logger: slog.Default()}
}

// SetLocation sets the time zone used for time labels.
func (r *Renderer) SetLocation(loc *time.Location) {
	if loc != nil {
		r.location = loc
	}
}

// SetLogger overrides the logger used for render diagnostics.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Render builds the view for content. It returns nil when the template is
// unusable; callers skip the message in that case.
func (r *Renderer) Render(content string, isUser bool, at time.Time) *View {
	if r == nil {
		slog.Error("render_failed", "error", ErrNoTemplate)
		return nil
	}
	if err := r.template.validate(); err != nil {
		r.logger.Error("render_failed", "error", err)
		return nil
	}

	v := &View{
		ID:        uuid.NewString(),
		Raw:       content,
		Timestamp: at,
		TimeLabel: at.In(r.location).Format(r.template.TimeLayout),
	}
	if isUser {
		v.Role = chat.RoleUser
		v.Class = r.template.UserClass
		v.Body = content
	} else {
		v.Role = chat.RoleAssistant
		v.Class = r.template.AssistantClass
		v.Body = format.Format(content)
		v.IsMarkup = true
	}
	return v
}

// RenderMessage is Render for a stored message.
func (r *Renderer) RenderMessage(msg chat.Message) *View {
	return r.Render(msg.Content, msg.IsUser, msg.Timestamp)
}
