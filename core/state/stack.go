package state

import (
	"slices"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/invariant"
)

// Stack is an ordered list of items, top last, plus an optional floating
// item held off to the side.
type Stack struct {
	items    []Item
	floating Item
}

// NewStack creates a stack holding items, bottom first.
func NewStack(items ...Item) *Stack {
	for _, item := range items {
		invariant.NotNil(item, "item")
	}
	return &Stack{items: slices.Clip(slices.Clone(items))}
}

// Len returns the number of items, not counting the floating item.
func (s *Stack) Len() int { return len(s.items) }

// Items returns the items bottom first. The slice must not be modified.
func (s *Stack) Items() []Item { return s.items }

// Peek returns the item depth positions below the top (0 is the top).
func (s *Stack) Peek(depth int) (Item, bool) {
	if depth < 0 || depth >= len(s.items) {
		return nil, false
	}
	return s.items[len(s.items)-1-depth], true
}

// Pop removes the top n items and returns them bottom first.
func (s *Stack) Pop(n int) (*Stack, []Item, error) {
	invariant.Precondition(n >= 0, "pop count must not be negative, got %d", n)
	if n > len(s.items) {
		return nil, nil, errs.StackUnderflow(n, len(s.items))
	}
	keep := len(s.items) - n
	popped := slices.Clone(s.items[keep:])
	return &Stack{items: s.items[:keep:keep], floating: s.floating}, popped, nil
}

// PopExprs pops n items that must all wrap expressions.
func (s *Stack) PopExprs(n int) (*Stack, []expr.Expr, error) {
	rest, items, err := s.Pop(n)
	if err != nil {
		return nil, nil, err
	}
	exprs := make([]expr.Expr, len(items))
	for i, item := range items {
		ei, ok := item.(*ExprItem)
		if !ok {
			return nil, nil, errs.StackType("expression").
				WithContext("depth", len(items)-1-i)
		}
		exprs[i] = ei.Expr
	}
	return rest, exprs, nil
}

// PopExpr pops the single top expression.
func (s *Stack) PopExpr() (*Stack, expr.Expr, error) {
	rest, exprs, err := s.PopExprs(1)
	if err != nil {
		return nil, nil, err
	}
	return rest, exprs[0], nil
}

// Push returns a stack with items added on top, the last one topmost.
func (s *Stack) Push(items ...Item) *Stack {
	if len(items) == 0 {
		return s
	}
	for _, item := range items {
		invariant.NotNil(item, "item")
	}
	return &Stack{items: append(slices.Clip(s.items), items...), floating: s.floating}
}

// PushExprs wraps each expression in a new item and pushes them in order.
func (s *Stack) PushExprs(exprs ...expr.Expr) *Stack {
	items := make([]Item, len(exprs))
	for i, e := range exprs {
		items[i] = NewExprItem(e)
	}
	return s.Push(items...)
}

// Floating returns the floating item, or nil.
func (s *Stack) Floating() Item { return s.floating }

// WithFloating returns a stack whose floating slot holds item; nil empties
// the slot.
func (s *Stack) WithFloating(item Item) *Stack {
	return &Stack{items: s.items, floating: item}
}
