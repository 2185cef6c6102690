package interp

import "slices"

// Mode is a state of the interpreter's mode machine. Keymaps are looked up
// per mode.
type Mode string

// Modes
const (
	ModeBase       Mode = "base"
	ModeStack      Mode = "stack"
	ModeSymbol     Mode = "symbol"
	ModeDecoration Mode = "decoration"
	ModeArray      Mode = "array"
	ModeInfix      Mode = "infix"
	ModeDocument   Mode = "document"
	ModeDissect    Mode = "dissect"

	// Line-editor modes
	ModeTextEntry        Mode = "text_entry"
	ModeMathEntry        Mode = "math_entry"
	ModeLatexEntry       Mode = "latex_entry"
	ModeConjunctionEntry Mode = "conjunction_entry"
	ModeTagEntry         Mode = "tag_entry"
)

var modes = map[Mode]bool{
	ModeBase: true, ModeStack: true, ModeSymbol: true, ModeDecoration: true,
	ModeArray: true, ModeInfix: true, ModeDocument: true, ModeDissect: true,
	ModeTextEntry: true, ModeMathEntry: true, ModeLatexEntry: true,
	ModeConjunctionEntry: true, ModeTagEntry: true,
}

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, bool) {
	m := Mode(name)
	return m, modes[m]
}

// IsEntry reports whether m is one of the line-editor modes.
func (m Mode) IsEntry() bool {
	switch m {
	case ModeTextEntry, ModeMathEntry, ModeLatexEntry, ModeConjunctionEntry, ModeTagEntry:
		return true
	}
	return false
}

// Modes returns every mode name, sorted.
func Modes() []Mode {
	out := make([]Mode, 0, len(modes))
	for m := range modes {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
