package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds \frac{x^2}{a + b} c.
func sample() Expr {
	x2 := Superscript(NewText("x"), NewText("2"))
	frac := NewCommand("frac", x2, CombineInfix(NewText("a"), NewText("b"), NewText("+")))
	return NewSequence([]Expr{frac, NewText("c")}, false)
}

// allPaths enumerates every path below root.
func allPaths(p Path) []Path {
	var out []Path
	for i := range p.Selected().Subexpressions() {
		child := p.Descend(i)
		out = append(out, child)
		out = append(out, allPaths(child)...)
	}
	return out
}

func TestPathExtractReplaceRoundTrip(t *testing.T) {
	root := sample()
	paths := allPaths(NewPath(root))
	require.NotEmpty(t, paths)

	for _, p := range paths {
		newRoot, extracted := p.ExtractSelection()
		assert.Same(t, p.Selected(), extracted)

		hole := PathOf(newRoot, p.Indices()...)
		_, isPlaceholder := hole.Selected().(*Placeholder)
		assert.True(t, isPlaceholder, "path %v", p.Indices())

		restored := hole.ReplaceSelection(extracted)
		if diff := cmp.Diff(root, restored, equateEmpty); diff != "" {
			t.Errorf("round trip through %v changed the tree (-want +got):\n%s", p.Indices(), diff)
		}
	}
}

func TestReplaceSelectionSharesUntouchedSubtrees(t *testing.T) {
	root := sample().(*Sequence)
	frac := root.Exprs[0].(*Command)

	p := PathOf(root, 0, 1, 2) // the "b" in a + b
	updated := p.ReplaceSelection(NewText("y")).(*Sequence)

	assert.NotSame(t, root, updated)
	assert.Same(t, root.Exprs[1], updated.Exprs[1], "sibling of the changed branch is shared")
	assert.Same(t, frac.Operands[0], updated.Exprs[0].(*Command).Operands[0], "numerator is shared")
	assert.Equal(t, "b", root.Exprs[0].(*Command).Operands[1].(*Infix).Operands[1].(*Text).Text)
}

func TestPathMoveWrapsAround(t *testing.T) {
	root := CombineInfix(CombineInfix(NewText("a"), NewText("b"), NewText("+")), NewText("c"), NewText("="))
	count := len(root.Subexpressions())
	require.Equal(t, 5, count)

	last := PathOf(root, count-1)
	assert.Equal(t, []int{0}, last.Move(1).Indices())

	first := PathOf(root, 0)
	assert.Equal(t, []int{count - 1}, first.Move(-1).Indices())

	assert.Equal(t, []int{2}, first.Move(1).Move(1).Indices())
	assert.True(t, NewPath(root).Move(1).Equal(NewPath(root)), "the root has no siblings")
}

func TestPathDescendAscend(t *testing.T) {
	root := sample()
	p := NewPath(root).Descend(0).Descend(0)

	assert.Equal(t, 2, p.Depth())
	assert.IsType(t, &SubSup{}, p.Selected())

	up := p.Ascend()
	assert.Equal(t, []int{0}, up.Indices())
	assert.Equal(t, []int{0, 0}, p.Indices(), "ascending leaves the original path alone")

	assert.Panics(t, func() { NewPath(root).Ascend() })
	assert.Panics(t, func() { NewPath(NewText("x")).Descend(0) })
	assert.False(t, NewPath(root).CanDescend(2))
}

func TestPathEqual(t *testing.T) {
	root := sample()
	twin := sample()

	assert.True(t, PathOf(root, 0, 1).Equal(PathOf(root, 0, 1)))
	assert.False(t, PathOf(root, 0, 1).Equal(PathOf(root, 0, 0)))
	assert.False(t, PathOf(root, 0, 1).Equal(PathOf(twin, 0, 1)), "structurally equal roots are different roots")
}

func TestDescendDoesNotAlias(t *testing.T) {
	root := sample()
	base := NewPath(root).Descend(0)
	left := base.Descend(0)
	right := base.Descend(1)

	assert.Equal(t, []int{0, 0}, left.Indices())
	assert.Equal(t, []int{0, 1}, right.Indices())
}
