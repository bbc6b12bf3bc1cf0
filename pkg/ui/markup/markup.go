// Package markup paints message bodies as styled, width-wrapped terminal lines.
//
// Assistant bodies carry the small tag set produced by the formatter: <br>,
// <pre><code>, <strong>, <ul> and <li>. Anything else is shown literally.
package markup

import (
	"regexp"
	"strings"
	"unicode"

	"dbchat/pkg/ui/styles"

	"github.com/mattn/go-runewidth"
)

const bulletPrefix = "• "

var tagPattern = regexp.MustCompile(`<(/?)(br|pre|code|strong|ul|li)>`)

type lineKind int

const (
	kindText lineKind = iota
	kindCode
	kindItem
)

type token struct {
	text string
	bold bool
}

type line struct {
	kind   lineKind
	tokens []token
}

func (l line) empty() bool {
	for _, t := range l.tokens {
		if t.text != "" {
			return false
		}
	}
	return true
}

// Paint renders body into lines no wider than width. Markup bodies are parsed
// for tags; plain bodies are wrapped as literal text.
func Paint(body string, isMarkup bool, width int, st styles.Styles) []string {
	if width < 1 {
		width = 1
	}
	var lines []line
	if isMarkup {
		lines = parse(sanitize(body))
	} else {
		lines = plainLines(sanitize(body))
	}

	var out []string
	for _, l := range lines {
		switch l.kind {
		case kindCode:
			out = append(out, paintCode(l, width, st)...)
		case kindItem:
			out = append(out, paintItem(l, width, st)...)
		default:
			out = append(out, wrapWords(words(l.tokens), width, st)...)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func plainLines(body string) []line {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	raw := strings.Split(body, "\n")
	lines := make([]line, 0, len(raw))
	for _, r := range raw {
		lines = append(lines, line{tokens: []token{{text: r}}})
	}
	return lines
}

// parse splits markup into logical lines. A break directly after a closed
// list item, list or code block only ends that block.
func parse(body string) []line {
	var (
		lines    []line
		cur      line
		bold     bool
		inCode   bool
		skipNext bool
	)

	flush := func(force bool) {
		if force || !cur.empty() {
			lines = append(lines, cur)
		}
		cur = line{}
		if inCode {
			cur.kind = kindCode
		}
	}
	text := func(s string) {
		if s == "" {
			return
		}
		skipNext = false
		cur.tokens = append(cur.tokens, token{text: s, bold: bold})
	}

	pos := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(body, -1) {
		text(body[pos:m[0]])
		pos = m[1]
		closing := body[m[2]:m[3]] == "/"
		tag := body[m[4]:m[5]]

		switch tag {
		case "br":
			if skipNext {
				skipNext = false
				continue
			}
			flush(true)
		case "strong":
			bold = !closing
		case "pre":
			flush(false)
			inCode = !closing
			cur.kind = kindText
			if inCode {
				cur.kind = kindCode
			}
			skipNext = true
		case "li":
			flush(false)
			if closing {
				skipNext = true
			} else {
				cur.kind = kindItem
			}
		case "ul":
			flush(false)
			skipNext = closing
		}
	}
	text(body[pos:])
	flush(false)
	return lines
}

// word is a run of non-space text that may change weight midway.
type word []token

func (w word) width() int {
	n := 0
	for _, t := range w {
		n += runewidth.StringWidth(t.text)
	}
	return n
}

// words splits prose tokens on whitespace. Adjacent tokens with no space
// between them stay in the same word.
func words(tokens []token) []word {
	var (
		out []word
		cur word
		sb  strings.Builder
	)
	endSegment := func(bold bool) {
		if sb.Len() > 0 {
			cur = append(cur, token{text: sb.String(), bold: bold})
			sb.Reset()
		}
	}
	endWord := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for _, t := range tokens {
		for _, r := range t.text {
			if unicode.IsSpace(r) {
				endSegment(t.bold)
				endWord()
				continue
			}
			sb.WriteRune(r)
		}
		endSegment(t.bold)
	}
	endWord()
	return out
}

func paintItem(l line, width int, st styles.Styles) []string {
	indent := runewidth.StringWidth(bulletPrefix)
	inner := width - indent
	if inner < 1 {
		return wrapWords(words(l.tokens), width, st)
	}
	wrapped := wrapWords(words(l.tokens), inner, st)
	out := make([]string, 0, len(wrapped))
	for i, w := range wrapped {
		if i == 0 {
			out = append(out, st.Bullet.Render(bulletPrefix)+w)
			continue
		}
		out = append(out, strings.Repeat(" ", indent)+w)
	}
	return out
}

func paintCode(l line, width int, st styles.Styles) []string {
	var sb strings.Builder
	for _, t := range l.tokens {
		sb.WriteString(t.text)
	}
	text := strings.ReplaceAll(sb.String(), "\t", "    ")
	if text == "" {
		return []string{st.Code.Render(padPlain("", width))}
	}
	parts := splitByWidth(text, width)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, st.Code.Render(padPlain(part, width)))
	}
	return out
}

func wrapWords(ws []word, width int, st styles.Styles) []string {
	if len(ws) == 0 {
		return []string{""}
	}

	var lines []string
	var lineWords []word
	lineWidth := 0

	flush := func() {
		lines = append(lines, renderWordLine(lineWords, st))
		lineWords = nil
		lineWidth = 0
	}

	for _, w := range ws {
		for _, part := range splitWord(w, width) {
			partWidth := part.width()
			if lineWidth > 0 && lineWidth+1+partWidth > width {
				flush()
			}
			if lineWidth > 0 {
				lineWidth++
			}
			lineWords = append(lineWords, part)
			lineWidth += partWidth
		}
	}
	if len(lineWords) > 0 {
		flush()
	}
	return lines
}

// splitWord breaks a word wider than width into width-sized pieces.
func splitWord(w word, width int) []word {
	if width <= 0 || w.width() <= width {
		return []word{w}
	}

	var (
		parts []word
		cur   word
		sb    strings.Builder
		curW  int
	)
	for _, t := range w {
		for _, r := range t.text {
			rw := runewidth.RuneWidth(r)
			if curW+rw > width && curW > 0 {
				if sb.Len() > 0 {
					cur = append(cur, token{text: sb.String(), bold: t.bold})
					sb.Reset()
				}
				parts = append(parts, cur)
				cur = nil
				curW = 0
			}
			sb.WriteRune(r)
			curW += rw
		}
		if sb.Len() > 0 {
			cur = append(cur, token{text: sb.String(), bold: t.bold})
			sb.Reset()
		}
	}
	if len(cur) > 0 {
		parts = append(parts, cur)
	}
	return parts
}

func renderWordLine(ws []word, st styles.Styles) string {
	var sb strings.Builder
	for i, w := range ws {
		if i > 0 {
			sb.WriteString(st.Text.Render(" "))
		}
		for _, t := range w {
			if t.bold {
				sb.WriteString(st.Bold.Render(t.text))
			} else {
				sb.WriteString(st.Text.Render(t.text))
			}
		}
	}
	return sb.String()
}

func splitByWidth(text string, width int) []string {
	if width <= 0 || text == "" {
		return []string{text}
	}

	var parts []string
	var sb strings.Builder
	currentWidth := 0

	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width && currentWidth > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
			currentWidth = 0
		}
		sb.WriteRune(r)
		currentWidth += rw
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}

func padPlain(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// sanitize drops control characters that would corrupt the terminal.
func sanitize(content string) string {
	if content == "" {
		return content
	}
	var sb strings.Builder
	sb.Grow(len(content))
	for _, r := range content {
		switch r {
		case '\n', '\r', '\t':
			sb.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
