package main

import "os"

// Terminal styles, keyed by what they mark rather than by hue.
const (
	styleReset     = "\033[0m"
	styleFlash     = "\033[31m" // error flash and "Error:" prefix
	styleNotice    = "\033[32m" // plain notifications
	styleEntry     = "\033[33m" // text entry line and cursor
	styleDepth     = "\033[34m" // stack depth labels, keymap table names
	styleCommand   = "\033[36m" // command usage, floating item label
	styleSecondary = "\033[90m" // status line, error details
)

// paint wraps text in style when color is on.
func paint(text, style string, on bool) string {
	if !on {
		return text
	}
	return style + text + styleReset
}

// colorEnabled reports whether stdout should get ANSI styles. --no-color and
// a non-empty NO_COLOR both turn it off, as does a stdout that is not a
// terminal.
func colorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
