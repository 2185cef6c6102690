package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/texstack/core/errs"
)

func TestParseMath(t *testing.T) {
	x, a, b := NewText("x"), NewText("a"), NewText("b")

	tests := []struct {
		input string
		want  Expr
	}{
		{"x", x},
		{"42", NewText("42")},
		{
			"x^2 + 2x + 1",
			NewInfix(
				[]Expr{NewSubSup(x, nil, NewText("2")), NewSequence([]Expr{NewText("2"), x}, false), NewText("1")},
				[]Expr{NewText("+"), NewText("+")}, 1, nil),
		},
		{"x_1^2", &SubSup{Base: x, Sub: NewText("1"), Sup: NewText("2")}},
		{"3!!", NewFactorial(NewText("3"), 2)},
		{"a != b", NewInfix([]Expr{a, b}, []Expr{NewCommand("neq")}, 0, nil)},
		{"a <= b", NewInfix([]Expr{a, b}, []Expr{NewCommand("le")}, 0, nil)},
		{"a*b", NewInfix([]Expr{a, b}, []Expr{NewCommand("cdot")}, 0, nil)},
		{"-x", NewPrefix(x, NewText("-"))},
		{"\\frac{1}{2}", NewCommand("frac", NewText("1"), NewText("2"))},
		{"\\sqrt[3]{x}", NewCommand("sqrt", x).WithOptions("3")},
		{"\\alpha\\beta", NewSequence([]Expr{NewCommand("alpha"), NewCommand("beta")}, false)},
		{"\\sin(x)", NewFunctionCall(NewCommand("sin"), Parenthesize(x))},
		{"(a+b)x", NewSequence([]Expr{Parenthesize(NewInfix([]Expr{a, b}, []Expr{NewText("+")}, 0, nil)), x}, false)},
		{"x'", NewPostfix(x, NewText("'"))},
		{"\\int\\int", NewCommand("iint")},
		{"\\frac12", NewCommand("frac", NewText("1"), NewText("2"))},
		{"\\frac{12}5", NewCommand("frac", NewText("12"), NewText("5"))},
		{"\\frac xy", NewCommand("frac", x, NewText("y"))},
		{"\\frac\\alpha2", NewCommand("frac", NewCommand("alpha"), NewText("2"))},
		{"\\sqrt x", NewCommand("sqrt", x)},
		{"\\sqrt[3]x", NewCommand("sqrt", x).WithOptions("3")},
		{"\\sqrt\\blacksquare", NewCommand("sqrt", NewPlaceholder())},
		{"a\\cdot b", NewInfix([]Expr{a, b}, []Expr{NewCommand("cdot")}, 0, nil)},
		{"a\\le b", NewInfix([]Expr{a, b}, []Expr{NewCommand("le")}, 0, nil)},
		{"a\\left", NewSequence([]Expr{a, NewCommand("left")}, false)},
		{"2 3", NewSequence([]Expr{NewText("2"), NewText("3")}, false)},
		{"2 3x", NewSequence([]Expr{NewText("2"), NewText("3"), x}, false)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMath(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, equateEmpty); diff != "" {
				t.Errorf("ParseMath(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseMathErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"", "empty expression"},
		{"   ", "empty expression"},
		{"(a", "unclosed '('"},
		{"a +", "unexpected end of input"},
		{"#", "unexpected '#'"},
		{"1.2.3", "malformed number"},
		{"a)", "unexpected ')'"},
		{"\\frac1", "\\frac needs 2 arguments"},
		{"\\sqrt+", "\\sqrt needs 1 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseMath(tt.input)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrMathSyntax))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
