// Package format converts assistant responses into lightweight markup.
//
// The output uses a small fixed tag set: <br>, <pre><code>, <strong>, <ul> and <li>.
// Rules run in a fixed order and later rules see the output of earlier ones.
package format

import (
	"regexp"
	"strings"
)

// LineBreak is the marker that replaces every newline in the input.
const LineBreak = "<br>"

var (
	newlinePattern = regexp.MustCompile(`\r\n|\r|\n`)
	// (?s) lets a fence span injected line-break markers.
	fencePattern = regexp.MustCompile("(?s)```(.*?)```")
	boldPattern  = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

const (
	bulletPrefix = "* "
	itemOpen     = "<li>"
	itemClose    = "</li>"
)

// Format applies the markup rules to content. It never fails; a rule that does
// not match leaves the text unchanged.
func Format(content string) string {
	out := newlinePattern.ReplaceAllLiteralString(content, LineBreak)
	out = fencePattern.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = bulletItems(out)
	return wrapLists(out)
}

// bulletItems turns every line starting with "* " into a list item. Lines are
// delimited by LineBreak markers.
func bulletItems(s string) string {
	if !strings.Contains(s, bulletPrefix) {
		return s
	}
	lines := strings.Split(s, LineBreak)
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, bulletPrefix); ok {
			lines[i] = itemOpen + rest + itemClose
		}
	}
	return strings.Join(lines, LineBreak)
}

// wrapLists wraps each maximal run of list-item lines in a single <ul>.
func wrapLists(s string) string {
	if !strings.Contains(s, itemOpen) {
		return s
	}
	lines := strings.Split(s, LineBreak)

	var sb strings.Builder
	sb.Grow(len(s) + 16)
	inList := false
	for i, line := range lines {
		item := isItem(line)
		if i > 0 {
			if inList && !item {
				sb.WriteString("</ul>")
				inList = false
			}
			sb.WriteString(LineBreak)
		}
		if item && !inList {
			sb.WriteString("<ul>")
			inList = true
		}
		sb.WriteString(line)
	}
	if inList {
		sb.WriteString("</ul>")
	}
	return sb.String()
}

func isItem(line string) bool {
	return strings.HasPrefix(line, itemOpen) && strings.HasSuffix(line, itemClose)
}
