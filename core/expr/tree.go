package expr

import (
	"slices"
	"unicode/utf8"
)

// Substitute replaces every occurrence of old in the tree rooted at e with
// replacement. Occurrences are found by node identity, not by structure.
// When old does not occur, e itself is returned.
func Substitute(e, old, replacement Expr) Expr {
	if e == old {
		return replacement
	}
	result := e
	for i, sub := range e.Subexpressions() {
		if updated := Substitute(sub, old, replacement); updated != sub {
			result = result.ReplaceSubexpression(i, updated)
		}
	}
	return result
}

// Contains reports whether target occurs (by identity) in the tree rooted at e.
func Contains(e, target Expr) bool {
	found := false
	Inspect(e, func(n Expr) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}

// Equal reports whether a and b have the same structure and the same
// payload at every node. The split index of an infix chain is edit history,
// not structure, and is ignored; so is a placeholder's hint.
func Equal(a, b Expr) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Text:
		if x.Text != b.(*Text).Text {
			return false
		}
	case *Command:
		y := b.(*Command)
		if x.Name != y.Name || x.Options != y.Options || len(x.Operands) != len(y.Operands) {
			return false
		}
	case *Font:
		y := b.(*Font)
		if x.Typeface != y.Typeface || x.Bold != y.Bold || x.Size != y.Size {
			return false
		}
	case *Infix:
		y := b.(*Infix)
		if len(x.Operands) != len(y.Operands) || !sameLinebreaks(x.LinebreaksAt, y.LinebreaksAt) {
			return false
		}
	case *Sequence:
		y := b.(*Sequence)
		if x.Fused != y.Fused || len(x.Exprs) != len(y.Exprs) {
			return false
		}
	case *Delimiter:
		y := b.(*Delimiter)
		if x.Left != y.Left || x.Right != y.Right || x.Fixed != y.Fixed {
			return false
		}
	case *SubSup:
		y := b.(*SubSup)
		if (x.Sub == nil) != (y.Sub == nil) || (x.Sup == nil) != (y.Sup == nil) {
			return false
		}
	case *Array:
		y := b.(*Array)
		if x.Type != y.Type || x.RowCount != y.RowCount || x.ColumnCount != y.ColumnCount {
			return false
		}
	}
	as, bs := a.Subexpressions(), b.Subexpressions()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func sameLinebreaks(a, b []int) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Inspect traverses the tree rooted at e in depth-first order, calling f for
// each node. Children are visited only when f returns true.
func Inspect(e Expr, f func(Expr) bool) {
	if !f(e) {
		return
	}
	for _, sub := range e.Subexpressions() {
		Inspect(sub, f)
	}
}

// Dissolve breaks e into its components, the inverse of building it up from
// pieces on the stack. Multi-character text splits into its characters and
// a parenthesized argument list loses its parentheses. A leaf that cannot be
// broken down dissolves to itself; a placeholder dissolves to nothing.
func Dissolve(e Expr) []Expr {
	switch x := e.(type) {
	case *Text:
		if utf8.RuneCountInString(x.Text) <= 1 {
			return []Expr{x}
		}
		out := make([]Expr, 0, len(x.Text))
		for _, r := range x.Text {
			out = append(out, NewText(string(r)))
		}
		return out

	case *Command:
		if x.IsZeroArg() {
			return []Expr{x}
		}
		return x.Subexpressions()

	case *Sequence:
		return x.Subexpressions()

	case *FunctionCall:
		args := x.Args
		if d, ok := args.(*Delimiter); ok && d.IsParentheses() {
			args = d.Inner
		}
		return []Expr{x.Fn, args}

	case *Placeholder:
		return nil

	case *Font, *Infix, *Prefix, *Postfix, *Delimiter, *SubSup, *Array:
		return e.Subexpressions()
	}
	return []Expr{e}
}
