package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds a + b = c - d with split at the "=".
func chain() (*Infix, []Expr) {
	a, b, c, d := NewText("a"), NewText("b"), NewText("c"), NewText("d")
	left := CombineInfix(a, b, NewText("+"))
	right := CombineInfix(c, d, NewText("-"))
	return CombineInfix(left, right, NewText("=")), []Expr{a, b, c, d}
}

func TestExtractSideThenCombineIsIdentity(t *testing.T) {
	x, operands := chain()
	x = x.ToggleLinebreakAt(2)

	for i := range x.Operators {
		left := x.ExtractSide(i, SideLeft)
		right := x.ExtractSide(i, SideRight)
		rebuilt := CombineInfix(left, right, x.OperatorAt(i))

		require.Len(t, rebuilt.Operands, len(operands))
		for j := range operands {
			assert.Same(t, operands[j], rebuilt.Operands[j], "operand %d after split at %d", j, i)
		}
		for j := range x.Operators {
			assert.Same(t, x.Operators[j], rebuilt.Operators[j], "operator %d after split at %d", j, i)
		}
		if !x.HasLinebreakBefore(i + 1) {
			// A break at the pivot itself belongs to neither side.
			assert.Equal(t, x.LinebreaksAt, rebuilt.LinebreaksAt, "linebreaks after split at %d", i)
		}
		assert.Equal(t, i, rebuilt.SplitAtIndex)
	}
}

func TestExtractSide(t *testing.T) {
	x, operands := chain()

	assert.Same(t, operands[0], x.ExtractSide(0, SideLeft))
	assert.Same(t, operands[3], x.ExtractSide(2, SideRight))

	left, ok := x.ExtractSide(1, SideLeft).(*Infix)
	require.True(t, ok)
	assert.Equal(t, []Expr{operands[0], operands[1]}, left.Operands)
	assert.Equal(t, 0, left.SplitAtIndex)
}

func TestSwapSidesAt(t *testing.T) {
	x, operands := chain()

	swapped := x.SwapSidesAt(x.SplitAtIndex)
	assert.Equal(t, []Expr{operands[2], operands[3], operands[0], operands[1]}, swapped.Operands)
	assert.Equal(t, []string{"-", "=", "+"}, operatorNames(swapped))
	assert.Equal(t, 1, swapped.SplitAtIndex)
}

func TestSwapSidesAtKeepsLinebreaks(t *testing.T) {
	x, _ := chain()

	// a + b = \\ c - d: the break follows the pivot and stays there.
	pivot := x.ToggleLinebreakAt(1).SwapSidesAt(1)
	assert.Equal(t, []string{"-", "=", "+"}, operatorNames(pivot))
	assert.Equal(t, []int{2}, pivot.LinebreaksAt)

	// a + \\ b = c - d: the break moves with its side.
	inner := x.ToggleLinebreakAt(0).SwapSidesAt(1)
	assert.Equal(t, []int{3}, inner.LinebreaksAt)

	back := pivot.SwapSidesAt(pivot.SplitAtIndex)
	assert.True(t, Equal(x.ToggleLinebreakAt(1), back))
}

func TestNegateAt(t *testing.T) {
	tests := []struct {
		op      string
		want    string
		negated bool
	}{
		{"=", "\\neq", true},
		{"\\neq", "=", true},
		{"<", "\\nless", true},
		{"\\le", "\\nleq", true},
		{"\\leq", "\\nleq", true},
		{"\\nleq", "\\le", true},
		{"\\in", "\\notin", true},
		{"+", "+", false},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			x := CombineInfix(NewText("a"), NewText("b"), OperatorFromName(tt.op))
			got, ok := x.NegateAt(0)
			assert.Equal(t, tt.negated, ok)
			assert.Equal(t, tt.want, operatorName(got.Operators[0]))
		})
	}
}

func TestToggleLinebreakAt(t *testing.T) {
	x, _ := chain()

	on := x.ToggleLinebreakAt(1)
	assert.True(t, on.HasLinebreakBefore(2))
	assert.False(t, x.HasLinebreakBefore(2))

	off := on.ToggleLinebreakAt(1)
	assert.False(t, off.HasLinebreakBefore(2))
	assert.Empty(t, off.LinebreaksAt)
}

func TestOperatorFromName(t *testing.T) {
	cmd, ok := OperatorFromName("\\cdot").(*Command)
	require.True(t, ok)
	assert.Equal(t, "cdot", cmd.Name)

	text, ok := OperatorFromName("+").(*Text)
	require.True(t, ok)
	assert.Equal(t, "+", text.Text)
}

func TestNewInfixRejectsMismatchedCounts(t *testing.T) {
	assert.Panics(t, func() {
		NewInfix([]Expr{NewText("a"), NewText("b")}, nil, 0, nil)
	})
	assert.Panics(t, func() {
		NewInfix([]Expr{NewText("a")}, nil, 0, nil)
	})
}

func operatorNames(x *Infix) []string {
	names := make([]string, len(x.Operators))
	for i, op := range x.Operators {
		names[i] = operatorName(op)
	}
	return names
}
