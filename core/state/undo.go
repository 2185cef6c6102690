package state

import "github.com/aledsdavies/texstack/core/invariant"

// DefaultUndoDepth is the number of snapshots kept when no depth is given.
const DefaultUndoDepth = 100

// UndoStack is a bounded history of application states. The state at the
// cursor is the current one; states after it can be redone.
type UndoStack struct {
	states    []*AppState
	undoCount int
	depth     int
}

// NewUndoStack creates an empty history keeping at most depth states.
func NewUndoStack(depth int) *UndoStack {
	invariant.Precondition(depth >= 2, "undo depth must be at least 2, got %d", depth)
	return &UndoStack{depth: depth}
}

// Clear forgets every state.
func (u *UndoStack) Clear() {
	u.states = nil
	u.undoCount = 0
}

// Current returns the state at the cursor, or nil when the history is empty.
func (u *UndoStack) Current() *AppState {
	if len(u.states) == 0 {
		return nil
	}
	return u.states[len(u.states)-1-u.undoCount]
}

// PushState records s as the new current state. Any undone states are
// discarded first. It reports false, recording nothing, when s is the same
// as the current state.
func (u *UndoStack) PushState(s *AppState) bool {
	invariant.NotNil(s, "state")
	if cur := u.Current(); cur != nil && cur.SameAs(s) {
		return false
	}
	u.states = u.states[:len(u.states)-u.undoCount]
	u.undoCount = 0
	u.states = append(u.states, s)
	if over := len(u.states) - u.depth; over > 0 {
		u.states = append([]*AppState(nil), u.states[over:]...)
	}
	return true
}

// CanUndo reports whether an earlier state is available.
func (u *UndoStack) CanUndo() bool { return u.undoCount+1 < len(u.states) }

// CanRedo reports whether an undone state is available.
func (u *UndoStack) CanRedo() bool { return u.undoCount > 0 }

// Undo moves the cursor back and returns the state there, or nil when there
// is nothing to undo.
func (u *UndoStack) Undo() *AppState {
	if !u.Move(1) {
		return nil
	}
	return u.Current()
}

// Redo moves the cursor forward and returns the state there, or nil when
// there is nothing to redo.
func (u *UndoStack) Redo() *AppState {
	if !u.Move(-1) {
		return nil
	}
	return u.Current()
}

// Peek returns the state n steps back from the cursor, or forward for
// negative n, without moving. It returns nil when out of range.
func (u *UndoStack) Peek(n int) *AppState {
	at := u.undoCount + n
	if at < 0 || at >= len(u.states) {
		return nil
	}
	return u.states[len(u.states)-1-at]
}

// Move moves the cursor n steps back, or forward for negative n. It reports
// false, leaving the cursor alone, when out of range.
func (u *UndoStack) Move(n int) bool {
	if u.Peek(n) == nil {
		return false
	}
	u.undoCount += n
	return true
}
