package state

import "github.com/aledsdavies/texstack/core/invariant"

// AppState is a snapshot of everything the user edits.
type AppState struct {
	Stack    *Stack
	Document *Document
	Dirty    bool
}

// NewAppState returns an empty, clean state.
func NewAppState() *AppState {
	return &AppState{Stack: NewStack(), Document: NewDocument()}
}

// SameAs reports whether s and o hold the very same stack and document. Two
// states built independently from equal items are not the same.
func (s *AppState) SameAs(o *AppState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Stack == o.Stack && s.Document == o.Document
}

// With returns a state holding stack and document, marked dirty when either
// differs from s.
func (s *AppState) With(stack *Stack, document *Document) *AppState {
	invariant.NotNil(stack, "stack")
	invariant.NotNil(document, "document")
	if stack == s.Stack && document == s.Document {
		return s
	}
	return &AppState{Stack: stack, Document: document, Dirty: true}
}

// Clean returns a copy of s with the dirty flag cleared, as after saving.
func (s *AppState) Clean() *AppState {
	return &AppState{Stack: s.Stack, Document: s.Document}
}
