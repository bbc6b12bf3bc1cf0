package ui

import (
	tea "charm.land/bubbletea/v2"
)

// Test helpers for creating v2 KeyPressMsg values

// newKeyPressMsg creates a KeyPressMsg from a key code (for special keys)
func newKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// newTextKeyPressMsg creates a KeyPressMsg for text input
func newTextKeyPressMsg(text string) tea.KeyPressMsg {
	if len(text) == 0 {
		return tea.KeyPressMsg(tea.Key{})
	}
	r := []rune(text)[0]
	return tea.KeyPressMsg(tea.Key{
		Code: r,
		Text: text,
	})
}

// newCtrlKeyPressMsg creates a Ctrl+X KeyPressMsg
func newCtrlKeyPressMsg(char rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{
		Code: char,
		Mod:  tea.ModCtrl,
	})
}

// Keys used across the UI tests
var (
	testKeyUp    = newKeyPressMsg(tea.KeyUp)
	testKeyEnter = newKeyPressMsg(tea.KeyEnter)
	testKeyTab   = newKeyPressMsg(tea.KeyTab)
	testKeyEsc   = newKeyPressMsg(tea.KeyEscape)
	testKeyPgUp  = newKeyPressMsg(tea.KeyPgUp)
	testKeyF1    = newKeyPressMsg(tea.KeyF1)
	testKeyCtrlC = newCtrlKeyPressMsg('c')
	testKeyCtrlL = newCtrlKeyPressMsg('l')
	testKeyCtrlT = newCtrlKeyPressMsg('t')
)

var testKeyShiftEnter = tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter, Mod: tea.ModShift})
