// Package prefs stores UI preferences: the theme and the last scroll offset.
package prefs

import (
	"log/slog"
	"strconv"
	"strings"

	"dbchat/pkg/storage"
)

// Storage keys.
const (
	ThemeKey  = "dbchat:theme"
	ScrollKey = "dbchat:scrollPosition"
)

// Theme is the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns the theme named s, defaulting to light.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Store reads and writes preferences. Errors are logged and swallowed.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewStore creates a preferences store on top of s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s, logger: slog.Default()}
}

// SetLogger overrides the logger used for swallowed errors.
func (p *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Theme returns the saved theme, or light when none is saved.
func (p *Store) Theme() Theme {
	v, ok, err := p.storage.Get(ThemeKey)
	if err != nil {
		p.logger.Warn("prefs_theme_read_failed", "error", err)
		return ThemeLight
	}
	if !ok {
		return ThemeLight
	}
	return ParseTheme(v)
}

// SetTheme saves t.
func (p *Store) SetTheme(t Theme) {
	if err := p.storage.Set(ThemeKey, string(t)); err != nil {
		p.logger.Warn("prefs_theme_write_failed", "error", err)
	}
}

// ScrollOffset returns the saved scroll offset in lines.
func (p *Store) ScrollOffset() (int, bool) {
	v, ok, err := p.storage.Get(ScrollKey)
	if err != nil {
		p.logger.Warn("prefs_scroll_read_failed", "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SetScrollOffset saves the scroll offset.
func (p *Store) SetScrollOffset(offset int) {
	if err := p.storage.Set(ScrollKey, strconv.Itoa(offset)); err != nil {
		p.logger.Warn("prefs_scroll_write_failed", "error", err)
	}
}
