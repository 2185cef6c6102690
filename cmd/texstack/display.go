package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/texstack/core/render"
	"github.com/aledsdavies/texstack/core/state"
	"github.com/aledsdavies/texstack/runtime/interp"
)

// FormatState writes the stack as a tree, deepest item first, followed by
// the interpreter's mode, prefix argument, line editor and notification.
func FormatState(w io.Writer, i *interp.Interpreter, s *state.AppState, useColor bool) {
	items := s.Stack.Items()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, paint("(empty stack)", styleSecondary, useColor))
	}

	dissect, dissecting := i.DissectPath()
	for n, item := range items {
		depth := len(items) - 1 - n
		branch := "├─"
		if n == len(items)-1 {
			branch = "└─"
		}
		latex := render.Item(item)
		if dissecting && depth == 0 {
			latex = render.Selection(dissect)
		}
		label := paint(fmt.Sprintf("%d", depth+1), styleDepth, useColor)
		_, _ = fmt.Fprintf(w, "%s %s %s\n", branch, label, latex)
	}

	if f := s.Stack.Floating(); f != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", paint("floating:", styleCommand, useColor), render.Item(f))
	}

	var status []string
	if s.Document.Len() > 0 {
		status = append(status, fmt.Sprintf("document %d/%d", s.Document.SelectionIndex(), s.Document.Len()))
	}
	if s.Dirty {
		status = append(status, "modified")
	}
	if m := i.Mode(); m != interp.ModeBase {
		status = append(status, "mode "+string(m))
	}
	if p := i.Prefix(); p.IsSet() {
		status = append(status, "prefix "+p.String())
	}
	if len(status) > 0 {
		_, _ = fmt.Fprintln(w, paint("["+strings.Join(status, ", ")+"]", styleSecondary, useColor))
	}

	if t, ok := i.TextEntry(); ok {
		text := []rune(t.String())
		_, _ = fmt.Fprintf(w, "%s %s%s%s\n", paint(string(t.Kind)+">", styleEntry, useColor),
			string(text[:t.Cursor]), paint("▏", styleEntry, useColor), string(text[t.Cursor:]))
	}

	if msg := i.Notification(); msg != "" {
		color := styleNotice
		if i.ErrorFlash() {
			color = styleFlash
		}
		_, _ = fmt.Fprintln(w, paint(msg, color, useColor))
	}
}
