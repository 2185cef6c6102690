package expr

import (
	"slices"

	"github.com/aledsdavies/texstack/core/invariant"
)

// Path locates a subexpression inside a fixed root as a sequence of child
// indices. Paths are values: every method returns a new Path and leaves the
// receiver untouched.
type Path struct {
	root    Expr
	indices []int
}

// NewPath returns the path selecting root itself.
func NewPath(root Expr) Path {
	invariant.NotNil(root, "root")
	return Path{root: root}
}

// PathOf returns the path reached from root by descending through indices.
func PathOf(root Expr, indices ...int) Path {
	p := NewPath(root)
	for _, i := range indices {
		p = p.Descend(i)
	}
	return p
}

// Root returns the expression the path is anchored at.
func (p Path) Root() Expr { return p.root }

// Indices returns a copy of the child indices from the root down.
func (p Path) Indices() []int { return slices.Clone(p.indices) }

// Depth is the number of indices in the path.
func (p Path) Depth() int { return len(p.indices) }

// IsZero reports whether p was never anchored at a root.
func (p Path) IsZero() bool { return p.root == nil }

// Selected returns the subexpression the path points at.
func (p Path) Selected() Expr {
	e := p.root
	for _, i := range p.indices {
		e = e.Subexpressions()[i]
	}
	return e
}

// parent returns the node whose child the selection is.
func (p Path) parent() Expr {
	invariant.Precondition(len(p.indices) > 0, "root has no parent")
	return Path{root: p.root, indices: p.indices[:len(p.indices)-1]}.Selected()
}

// CanDescend reports whether the selection has a child i.
func (p Path) CanDescend(i int) bool {
	return i >= 0 && i < len(p.Selected().Subexpressions())
}

// Descend selects child i of the current selection.
func (p Path) Descend(i int) Path {
	invariant.Precondition(p.CanDescend(i), "cannot descend into child %d of %s", i, p.Selected().Kind())
	indices := make([]int, len(p.indices), len(p.indices)+1)
	copy(indices, p.indices)
	return Path{root: p.root, indices: append(indices, i)}
}

// Ascend selects the parent of the current selection.
func (p Path) Ascend() Path {
	invariant.Precondition(len(p.indices) > 0, "cannot ascend above the root")
	return Path{root: p.root, indices: slices.Clone(p.indices[:len(p.indices)-1])}
}

// Move selects the sibling delta positions away, wrapping around at either
// end. At the root there are no siblings and p is returned unchanged.
func (p Path) Move(delta int) Path {
	if len(p.indices) == 0 {
		return p
	}
	count := len(p.parent().Subexpressions())
	last := len(p.indices) - 1
	next := ((p.indices[last]+delta)%count + count) % count
	indices := slices.Clone(p.indices)
	indices[last] = next
	return Path{root: p.root, indices: indices}
}

// ReplaceSelection returns a new root in which the selection is replaced by
// e. Every ancestor along the path is rebuilt; all other subtrees are shared
// with the original root.
func (p Path) ReplaceSelection(e Expr) Expr {
	invariant.NotNil(e, "replacement")
	return replaceAlong(p.root, p.indices, e)
}

func replaceAlong(node Expr, indices []int, e Expr) Expr {
	if len(indices) == 0 {
		return e
	}
	child := node.Subexpressions()[indices[0]]
	return node.ReplaceSubexpression(indices[0], replaceAlong(child, indices[1:], e))
}

// ExtractSelection replaces the selection with a fresh placeholder and
// returns the new root along with the extracted subexpression.
func (p Path) ExtractSelection() (root Expr, extracted Expr) {
	return p.ReplaceSelection(NewPlaceholder()), p.Selected()
}

// Equal reports whether p and q have the same root node (by identity) and
// the same indices.
func (p Path) Equal(q Path) bool {
	return p.root == q.root && slices.Equal(p.indices, q.indices)
}
