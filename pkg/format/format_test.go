package format

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "plain text keeps content",
			in:   "plain text\nline two",
			want: "plain text<br>line two",
		},
		{
			name: "all newline styles",
			in:   "a\r\nb\rc\nd",
			want: "a<br>b<br>c<br>d",
		},
		{
			name: "bold",
			in:   "**bold**",
			want: "<strong>bold</strong>",
		},
		{
			name: "two bold spans",
			in:   "**a** and **b**",
			want: "<strong>a</strong> and <strong>b</strong>",
		},
		{
			name: "unclosed bold",
			in:   "**unclosed",
			want: "**unclosed",
		},
		{
			name: "code fence across lines",
			in:   "```\ncode\n```",
			want: "<pre><code><br>code<br></code></pre>",
		},
		{
			name: "unterminated fence",
			in:   "a ```x``` b ```y",
			want: "a <pre><code>x</code></pre> b ```y",
		},
		{
			name: "overlapping fences pair left to right",
			in:   "```a```b```",
			want: "<pre><code>a</code></pre>b```",
		},
		{
			name: "consecutive bullets share one list",
			in:   "* a\n* b",
			want: "<ul><li>a</li><br><li>b</li></ul>",
		},
		{
			name: "list between paragraphs",
			in:   "Intro\n* one\n* two\nOutro",
			want: "Intro<br><ul><li>one</li><br><li>two</li></ul><br>Outro",
		},
		{
			name: "separate runs get separate lists",
			in:   "* a\ntext\n* b",
			want: "<ul><li>a</li></ul><br>text<br><ul><li>b</li></ul>",
		},
		{
			name: "bold inside bullet",
			in:   "* **Key**: value",
			want: "<ul><li><strong>Key</strong>: value</li></ul>",
		},
		{
			name: "star without space is not a bullet",
			in:   "*not a bullet\n * indented",
			want: "*not a bullet<br> * indented",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat_NoMarkersOnlyReplacesLineBreaks(t *testing.T) {
	inputs := []string{
		"hello",
		"SELECT id FROM users WHERE id = 1;",
		"first\nsecond\nthird",
		"a single * star and a lone `tick`",
	}
	for _, in := range inputs {
		want := strings.ReplaceAll(in, "\n", LineBreak)
		if got := Format(in); got != want {
			t.Errorf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormat_BoldLeavesNoMarkers(t *testing.T) {
	got := Format("**bold**")
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Fatalf("Expected bold span, got %q", got)
	}
	if strings.Contains(got, "**") {
		t.Errorf("Expected no literal ** in %q", got)
	}
}

func TestFormat_SingleListContainer(t *testing.T) {
	got := Format("* a\n* b")
	if n := strings.Count(got, "<ul>"); n != 1 {
		t.Errorf("Expected 1 list container, got %d in %q", n, got)
	}
	if n := strings.Count(got, "<li>"); n != 2 {
		t.Errorf("Expected 2 list items, got %d in %q", n, got)
	}
}

func TestFormat_Deterministic(t *testing.T) {
	in := "* **x**\n```\ny\n```"
	first := Format(in)
	for i := 0; i < 5; i++ {
		if got := Format(in); got != first {
			t.Fatalf("Format is not deterministic: %q vs %q", got, first)
		}
	}
}

func TestFormatGolden(t *testing.T) {
	in := "Here are the tables:\n" +
		"* **users**: accounts\n" +
		"* **orders**: purchases\n" +
		"\n" +
		"Run:\n" +
		"```\n" +
		"SELECT * FROM users;\n" +
		"```\n" +
		"Done."
	golden.RequireEqual(t, Format(in))
}
