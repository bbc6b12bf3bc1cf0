package transcript

import (
	"strings"

	"dbchat/pkg/chat"
	"dbchat/pkg/render"
	"dbchat/pkg/ui/components/utils"
	"dbchat/pkg/ui/markup"
	"dbchat/pkg/ui/styles"
)

const (
	gutterWidth    = 2
	selectedGutter = "▌ "
	copiedLabel    = "✓ Copied"

	// PinTolerance is how close to the bottom (in lines) the view must be
	// for a resize to keep it pinned there.
	PinTolerance = 3
)

// Transcript is the scrollable list of rendered messages.
type Transcript struct {
	width   int
	height  int
	styles  styles.Styles
	views   []*render.View
	lines   []string
	starts  []int
	scrollY int
	follow  bool

	selected int
}

// New creates an empty transcript that follows new output.
func New(st styles.Styles) *Transcript {
	return &Transcript{
		styles:   st,
		follow:   true,
		selected: -1,
	}
}

// SetStyles switches the theme and repaints.
func (t *Transcript) SetStyles(st styles.Styles) {
	t.styles = st
	t.reflow()
}

// SetSize sets the transcript dimensions. A view that was at or near the
// bottom stays pinned to the bottom.
func (t *Transcript) SetSize(width, height int) {
	pinned := t.follow || t.MaxScroll()-t.scrollY <= PinTolerance
	t.width = width
	t.height = height
	t.reflow()
	if pinned {
		t.ScrollToBottom()
	}
}

// SetViews replaces the messages shown.
func (t *Transcript) SetViews(views []*render.View) {
	t.views = views
	if t.selected >= len(views) {
		t.selected = len(views) - 1
	}
	t.reflow()
	if t.follow {
		t.scrollY = t.MaxScroll()
	}
}

// ScrollY returns the index of the first visible line.
func (t *Transcript) ScrollY() int {
	return t.scrollY
}

// SetScrollY scrolls to y, clamped to the content.
func (t *Transcript) SetScrollY(y int) {
	t.scrollY = clamp(y, 0, t.MaxScroll())
	t.follow = t.AtBottom()
}

// ScrollToBottom shows the newest lines and follows further output.
func (t *Transcript) ScrollToBottom() {
	t.scrollY = t.MaxScroll()
	t.follow = true
}

// AtBottom reports whether the newest line is visible.
func (t *Transcript) AtBottom() bool {
	return t.scrollY >= t.MaxScroll()
}

// ScrollBy moves the view by delta lines.
func (t *Transcript) ScrollBy(delta int) {
	t.SetScrollY(t.scrollY + delta)
}

// HandleScroll processes a scroll key and reports whether it was one.
func (t *Transcript) HandleScroll(key string) bool {
	page := t.height - 1
	if page < 1 {
		page = 1
	}

	switch key {
	case "up":
		t.ScrollBy(-1)
	case "down":
		t.ScrollBy(1)
	case "pgup":
		t.ScrollBy(-page)
	case "pgdown":
		t.ScrollBy(page)
	case "home":
		t.SetScrollY(0)
	case "end":
		t.ScrollToBottom()
	default:
		return false
	}
	return true
}

// MaxScroll returns the largest valid scroll offset.
func (t *Transcript) MaxScroll() int {
	max := len(t.lines) - t.height
	if max < 0 {
		return 0
	}
	return max
}

// Select moves the selection by delta messages, starting from the newest
// message when nothing is selected, and scrolls it into view.
func (t *Transcript) Select(delta int) {
	if len(t.views) == 0 {
		t.selected = -1
		return
	}
	if t.selected < 0 {
		t.selected = len(t.views)
	}
	t.selected = clamp(t.selected+delta, 0, len(t.views)-1)
	t.reflow()
	t.reveal(t.selected)
}

// ClearSelection removes the selection marker.
func (t *Transcript) ClearSelection() {
	if t.selected < 0 {
		return
	}
	t.selected = -1
	t.reflow()
}

// Selected returns the selected message, or the newest one when nothing is
// selected.
func (t *Transcript) Selected() *render.View {
	if len(t.views) == 0 {
		return nil
	}
	if t.selected < 0 {
		return t.views[len(t.views)-1]
	}
	return t.views[t.selected]
}

// View renders the visible window.
func (t *Transcript) View() string {
	if t.height <= 0 {
		return ""
	}
	out := make([]string, 0, t.height)
	end := t.scrollY + t.height
	if end > len(t.lines) {
		end = len(t.lines)
	}
	for i := t.scrollY; i < end; i++ {
		out = append(out, utils.PadStyled(t.lines[i], t.width))
	}
	for len(out) < t.height {
		out = append(out, strings.Repeat(" ", t.width))
	}
	return strings.Join(out, "\n")
}

func (t *Transcript) reveal(idx int) {
	if idx < 0 || idx >= len(t.starts) {
		return
	}
	start := t.starts[idx]
	if start < t.scrollY {
		t.SetScrollY(start)
		return
	}
	if start >= t.scrollY+t.height {
		t.SetScrollY(start - t.height + 1)
	}
}

func (t *Transcript) reflow() {
	t.lines = t.lines[:0]
	t.starts = t.starts[:0]
	bodyWidth := t.width - gutterWidth
	if t.width <= 0 || bodyWidth < 1 {
		t.scrollY = 0
		return
	}

	for i, v := range t.views {
		if i > 0 {
			t.lines = append(t.lines, "")
		}
		t.starts = append(t.starts, len(t.lines))

		gutter := strings.Repeat(" ", gutterWidth)
		if i == t.selected {
			gutter = t.styles.SelectedMarker.Render(selectedGutter)
		}

		t.lines = append(t.lines, gutter+utils.TruncateStyled(t.header(v), bodyWidth))
		for _, line := range markup.Paint(v.Body, v.IsMarkup, bodyWidth, t.styles) {
			t.lines = append(t.lines, gutter+line)
		}
	}

	t.scrollY = clamp(t.scrollY, 0, t.MaxScroll())
}

func (t *Transcript) header(v *render.View) string {
	label := t.styles.AssistantLabel.Render("Assistant")
	if v.Role == chat.RoleUser {
		label = t.styles.UserLabel.Render("You")
	}
	h := label + t.styles.Timestamp.Render(" · "+v.TimeLabel)
	if v.Copied {
		h += "  " + t.styles.Copied.Render(copiedLabel)
	}
	return h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
