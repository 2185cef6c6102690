package interp

import (
	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

// Context is the per-batch view handlers use for everything besides the
// stack. Nothing recorded here reaches the interpreter unless the whole
// batch succeeds.
type Context struct {
	interp *Interpreter

	// State is the application state the batch started from.
	State *state.AppState

	command string

	replacement *state.AppState
	document    *state.Document
	clearUndo   bool
	undoSteps   int

	mode    Mode
	modeSet bool

	prefix         PrefixArgument
	preservePrefix bool

	suppressUndo bool
	notification string

	textEntry *TextEntryState
	dissect   *expr.Path
}

func newContext(i *Interpreter, s *state.AppState) *Context {
	c := &Context{
		interp: i,
		State:  s,
		prefix: i.prefix,
	}
	if i.textEntry != nil {
		t := *i.textEntry
		c.textEntry = &t
	}
	if i.dissect != nil {
		p := *i.dissect
		c.dissect = &p
	}
	return c
}

// Command returns the name of the subcommand being executed.
func (c *Context) Command() string { return c.command }

// Autoparenthesize reports whether combining should parenthesize loose
// infix expressions.
func (c *Context) Autoparenthesize() bool { return c.interp.autoparenthesize }

// Document returns the document as changed so far in this batch.
func (c *Context) Document() *state.Document {
	if c.document != nil {
		return c.document
	}
	if c.replacement != nil {
		return c.replacement.Document
	}
	return c.State.Document
}

// SetDocument records a new document.
func (c *Context) SetDocument(d *state.Document) { c.document = d }

// ReplaceState swaps in a whole application state, as undo and
// new_document do. The caller returns s.Stack as its result.
func (c *Context) ReplaceState(s *state.AppState) {
	c.replacement = s
	c.document = nil
}

// NewDocument replaces the state with an empty one and clears the undo
// history.
func (c *Context) NewDocument() *state.Stack {
	c.ReplaceState(state.NewAppState())
	c.clearUndo = true
	return c.replacement.Stack
}

// MoveUndo replaces the state with the one n steps back in the undo
// history, or forward for negative n, and keeps the batch out of the
// history. It returns nil, changing nothing, when there is no such state.
func (c *Context) MoveUndo(n int) *state.AppState {
	target := c.interp.undo.Peek(c.undoSteps + n)
	if target == nil {
		return nil
	}
	c.undoSteps += n
	c.ReplaceState(target)
	c.SuppressUndo()
	return target
}

// RequestMode sets the mode to enter after the batch. Without a request the
// interpreter returns to base.
func (c *Context) RequestMode(m Mode) {
	c.mode = m
	c.modeSet = true
}

// CurrentMode returns the mode the interpreter was in when the batch
// started.
func (c *Context) CurrentMode() Mode { return c.interp.mode }

// Notify sets the notification text shown after the batch.
func (c *Context) Notify(text string) { c.notification = text }

// SuppressUndo keeps the batch out of the undo history.
func (c *Context) SuppressUndo() { c.suppressUndo = true }

// PreservePrefix keeps the prefix argument for the next batch.
func (c *Context) PreservePrefix() { c.preservePrefix = true }

// Prefix returns the pending prefix argument.
func (c *Context) Prefix() PrefixArgument { return c.prefix }

// SetPrefix replaces the prefix argument and keeps it for the next batch.
func (c *Context) SetPrefix(p PrefixArgument) {
	c.prefix = p
	c.preservePrefix = true
}

// GetPrefixArgument returns the prefix argument, def when none was given,
// or allValue for the "all" sentinel.
func (c *Context) GetPrefixArgument(def, allValue int) int {
	switch {
	case c.prefix.All:
		return allValue
	case c.prefix.Value > 0:
		return c.prefix.Value
	}
	return def
}

// RequirePrefixArgument returns the prefix argument or fails with
// PREFIX_ARGUMENT_REQUIRED. all reports the "all" sentinel, which is only
// accepted when allOK is set.
func (c *Context) RequirePrefixArgument(allOK bool) (n int, all bool, err error) {
	switch {
	case c.prefix.All && allOK:
		return 0, true, nil
	case c.prefix.Value > 0:
		return c.prefix.Value, false, nil
	}
	return 0, false, errs.PrefixArgumentRequired(c.command)
}

// TextEntry returns the line editor state, if an entry is in progress.
func (c *Context) TextEntry() (TextEntryState, bool) {
	if c.textEntry == nil {
		return TextEntryState{}, false
	}
	return *c.textEntry, true
}

// SetTextEntry replaces the line editor state and stays in its mode.
func (c *Context) SetTextEntry(t TextEntryState) {
	c.textEntry = &t
	c.RequestMode(t.Kind)
}

// EndTextEntry leaves the line editor.
func (c *Context) EndTextEntry() { c.textEntry = nil }

// DissectPath returns the dissect selection, if dissecting.
func (c *Context) DissectPath() (expr.Path, bool) {
	if c.dissect == nil {
		return expr.Path{}, false
	}
	return *c.dissect, true
}

// SetDissectPath replaces the dissect selection and stays in dissect mode.
func (c *Context) SetDissectPath(p expr.Path) {
	c.dissect = &p
	c.RequestMode(ModeDissect)
}

// EndDissect leaves dissect mode.
func (c *Context) EndDissect() { c.dissect = nil }
