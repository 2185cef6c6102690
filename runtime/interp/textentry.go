package interp

import (
	"unicode"

	"github.com/aledsdavies/texstack/core/state"
)

// TextEntryState is the line editor used by the entry modes. It is a value:
// every edit returns a new state.
type TextEntryState struct {
	Kind   Mode
	Text   []rune
	Cursor int
	// Editing is the stack item being re-edited, if any. It stays on the
	// stack until the entry is finished.
	Editing state.Item
}

// NewTextEntry starts an empty entry of the given kind.
func NewTextEntry(kind Mode) TextEntryState {
	return TextEntryState{Kind: kind}
}

// String returns the entered text.
func (t TextEntryState) String() string { return string(t.Text) }

// IsEmpty reports whether nothing has been typed.
func (t TextEntryState) IsEmpty() bool { return len(t.Text) == 0 }

// Accepts reports whether r may be typed in this kind of entry.
func (t TextEntryState) Accepts(r rune) bool {
	switch t.Kind {
	case ModeLatexEntry:
		return r < unicode.MaxASCII && unicode.IsLetter(r)
	case ModeConjunctionEntry:
		return unicode.IsLetter(r) || r == ' '
	case ModeTagEntry:
		return unicode.IsPrint(r) && r != '{' && r != '}'
	}
	return unicode.IsPrint(r)
}

// Insert types s at the cursor, dropping characters the entry kind does not
// accept.
func (t TextEntryState) Insert(s string) TextEntryState {
	var accepted []rune
	for _, r := range s {
		if t.Accepts(r) {
			accepted = append(accepted, r)
		}
	}
	if len(accepted) == 0 {
		return t
	}
	text := make([]rune, 0, len(t.Text)+len(accepted))
	text = append(text, t.Text[:t.Cursor]...)
	text = append(text, accepted...)
	text = append(text, t.Text[t.Cursor:]...)
	t.Text = text
	t.Cursor += len(accepted)
	return t
}

// Backspace deletes the character before the cursor.
func (t TextEntryState) Backspace() TextEntryState {
	if t.Cursor == 0 {
		return t
	}
	t.Text = append(append([]rune(nil), t.Text[:t.Cursor-1]...), t.Text[t.Cursor:]...)
	t.Cursor--
	return t
}

// Delete deletes the character under the cursor.
func (t TextEntryState) Delete() TextEntryState {
	if t.Cursor >= len(t.Text) {
		return t
	}
	t.Text = append(append([]rune(nil), t.Text[:t.Cursor]...), t.Text[t.Cursor+1:]...)
	return t
}

// MoveCursor moves the cursor by delta characters, clamped to the text.
func (t TextEntryState) MoveCursor(delta int) TextEntryState {
	t.Cursor = min(max(t.Cursor+delta, 0), len(t.Text))
	return t
}

// Home moves the cursor to the start.
func (t TextEntryState) Home() TextEntryState {
	t.Cursor = 0
	return t
}

// End moves the cursor past the last character.
func (t TextEntryState) End() TextEntryState {
	t.Cursor = len(t.Text)
	return t
}

// WithKind switches the entry to another kind, keeping what was typed.
func (t TextEntryState) WithKind(kind Mode) TextEntryState {
	t.Kind = kind
	return t
}
