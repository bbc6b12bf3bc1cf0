// Package styles provides the light and dark style sets for the dbchat UI.
package styles

import (
	"image/color"

	"dbchat/pkg/prefs"

	"charm.land/lipgloss/v2"
)

// Color palette - ANSI 256 colors shared by both themes
var (
	// Primary accent color (purple)
	ColorAccent = lipgloss.Color("141")

	// Semantic colors
	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("42")
)

// palette holds the per-theme colors.
type palette struct {
	text        color.Color
	textMuted   color.Color
	textBright  color.Color
	code        color.Color
	codeBg      color.Color
	user        color.Color
	assistant   color.Color
	border      color.Color
	borderMuted color.Color
	placeholder color.Color
}

var (
	lightPalette = palette{
		text:        lipgloss.Color("236"),
		textMuted:   lipgloss.Color("242"),
		textBright:  lipgloss.Color("16"),
		code:        lipgloss.Color("125"),
		codeBg:      lipgloss.Color("254"),
		user:        lipgloss.Color("25"),
		assistant:   lipgloss.Color("91"),
		border:      lipgloss.Color("61"),
		borderMuted: lipgloss.Color("250"),
		placeholder: lipgloss.Color("246"),
	}

	darkPalette = palette{
		text:        lipgloss.Color("252"),
		textMuted:   lipgloss.Color("245"),
		textBright:  lipgloss.Color("15"),
		code:        lipgloss.Color("213"),
		codeBg:      lipgloss.Color("235"),
		user:        lipgloss.Color("81"),
		assistant:   lipgloss.Color("141"),
		border:      lipgloss.Color("141"),
		borderMuted: lipgloss.Color("62"),
		placeholder: lipgloss.Color("240"),
	}
)

// Styles is the full style set for one theme.
type Styles struct {
	Theme prefs.Theme

	// Transcript
	Text           lipgloss.Style
	Bold           lipgloss.Style
	Code           lipgloss.Style
	Bullet         lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	Copied         lipgloss.Style
	SelectedMarker lipgloss.Style

	// Chrome
	Title       lipgloss.Style
	Footer      lipgloss.Style
	Separator   lipgloss.Style
	Placeholder lipgloss.Style
	Spinner     lipgloss.Style
	Error       lipgloss.Style

	// Overlays
	Box       lipgloss.Style
	BoxTitle  lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
}

// For returns the style set for theme. Unknown themes get the light set.
func For(theme prefs.Theme) Styles {
	if theme == prefs.ThemeDark {
		return build(prefs.ThemeDark, darkPalette)
	}
	return build(prefs.ThemeLight, lightPalette)
}

func build(theme prefs.Theme, p palette) Styles {
	return Styles{
		Theme: theme,

		Text: lipgloss.NewStyle().
			Foreground(p.text),
		Bold: lipgloss.NewStyle().
			Foreground(p.textBright).
			Bold(true),
		Code: lipgloss.NewStyle().
			Foreground(p.code).
			Background(p.codeBg),
		Bullet: lipgloss.NewStyle().
			Foreground(ColorAccent),
		UserLabel: lipgloss.NewStyle().
			Foreground(p.user).
			Bold(true),
		AssistantLabel: lipgloss.NewStyle().
			Foreground(p.assistant).
			Bold(true),
		Timestamp: lipgloss.NewStyle().
			Foreground(p.textMuted),
		Copied: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		SelectedMarker: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(p.textMuted).
			Italic(true),
		Separator: lipgloss.NewStyle().
			Foreground(p.borderMuted),
		Placeholder: lipgloss.NewStyle().
			Foreground(p.placeholder).
			Italic(true),
		Spinner: lipgloss.NewStyle().
			Foreground(ColorAccent),
		Error: lipgloss.NewStyle().
			Foreground(ColorError),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		BoxTitle: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),
		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true),
		HelpValue: lipgloss.NewStyle().
			Foreground(p.text),
	}
}
