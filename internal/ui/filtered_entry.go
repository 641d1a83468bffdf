package ui

import (
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// FilteredEntry is an Entry that drops typed runes rejected by its filter.
// Pasted text is not filtered; the service validates whatever is submitted.
type FilteredEntry struct {
	widget.Entry
	accept   func(r rune) bool
	keyboard mobile.KeyboardType
}

func newFilteredEntry(accept func(r rune) bool, kb mobile.KeyboardType) *FilteredEntry {
	entry := &FilteredEntry{accept: accept, keyboard: kb}
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewDateEntry accepts digits, spaces and hyphens ("15 - 7 - 1447").
func NewDateEntry() *FilteredEntry {
	return newFilteredEntry(func(r rune) bool {
		return isDigit(r) || r == ' ' || r == '-'
	}, mobile.NumberKeyboard)
}

// NewTimeEntry accepts "18:30" and "6:30 PM" style input.
func NewTimeEntry() *FilteredEntry {
	return newFilteredEntry(func(r rune) bool {
		switch r {
		case ':', ' ', 'a', 'A', 'p', 'P', 'm', 'M':
			return true
		}
		return isDigit(r)
	}, mobile.DefaultKeyboard)
}

// TypedRune intercepts text input events.
func (e *FilteredEntry) TypedRune(r rune) {
	if e.accept == nil || e.accept(r) {
		e.Entry.TypedRune(r)
	}
}

// Keyboard overrides the default keyboard type on mobile devices.
func (e *FilteredEntry) Keyboard() mobile.KeyboardType {
	return e.keyboard
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
