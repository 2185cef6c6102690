package engine

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) expr.Expr {
	t.Helper()
	e, err := expr.ParseMath(s)
	require.NoError(t, err, "parse %q", s)
	return e
}

func TestToEngineInput(t *testing.T) {
	x := expr.NewText("x")
	tests := []struct {
		name  string
		input expr.Expr
		want  string
	}{
		{"number", expr.NewText("42"), "42"},
		{"variable", x, "x"},
		{"sum", mustParse(t, "x+1"), "(x) + (1)"},
		{"cdot", expr.CombineInfix(x, expr.NewText("y"), expr.NewCommand("cdot")), "(x) * (y)"},
		{"fraction", mustParse(t, `\frac{x^2}{2}`), "((x)**(2))/(2)"},
		{"sqrt", expr.NewCommand("sqrt", x), "sqrt(x)"},
		{"nth root", expr.NewCommand("sqrt", x).WithOptions("3"), "(x)**(1/(3))"},
		{"negation", expr.NewPrefix(x, expr.NewText("-")), "(-(x))"},
		{"equation", expr.CombineInfix(x, expr.NewText("1"), expr.NewText("=")), "Eq(x, 1)"},
		{"factorial", expr.NewFactorial(expr.NewText("3"), 1), "factorial(3)"},
		{"double factorial", expr.NewFactorial(expr.NewText("5"), 2), "factorial2(5)"},
		{"product", expr.NewSequence([]expr.Expr{expr.NewText("2"), x}, false), "(2)*(x)"},
		{"parentheses", expr.Parenthesize(x), "(x)"},
		{"absolute", expr.NewDelimiter("|", "|", x, false), "Abs(x)"},
		{"indexed variable", expr.Subscript(x, expr.NewText("1")), "x_1"},
		{"indexed power", expr.Superscript(expr.Subscript(x, expr.NewText("1")), expr.NewText("2")), "(x_1)**(2)"},
		{"constant", expr.NewCommand("pi"), "pi"},
		{"infinity", expr.NewCommand("infty"), "oo"},
		{"font ignored", expr.NewFont(x, expr.TypefaceRoman, true, 0), "x"},
		{"function", expr.NewFunctionCall(expr.NewCommand("sin"), expr.Parenthesize(x)), "sin(x)"},
		{"user function", expr.NewFunctionCall(expr.NewText("f"),
			expr.Parenthesize(expr.CombineInfix(x, expr.NewText("y"), expr.NewText(",")))), "Function('f')(x, y)"},
		{"matrix", expr.NewArray("bmatrix", [][]expr.Expr{
			{expr.NewText("1"), expr.NewText("2")},
			{expr.NewText("3"), x},
		}), "Matrix([[1, 2], [3, x]])"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEngineInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToEngineInputErrors(t *testing.T) {
	hole := expr.NewPlaceholder()
	less := expr.NewText("<")
	unknown := expr.NewCommand("aleph")
	word := expr.NewText("x+")

	tests := []struct {
		name      string
		input     expr.Expr
		offending expr.Expr
	}{
		{"placeholder", expr.CombineInfix(expr.NewText("x"), hole, expr.NewText("+")), hole},
		{"relation", expr.CombineInfix(expr.NewText("x"), expr.NewText("1"), less), less},
		{"unknown symbol", expr.NewSequence([]expr.Expr{expr.NewText("2"), unknown}, false), unknown},
		{"bad text", word, word},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToEngineInput(tt.input)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrEngineConversion))
			assert.True(t, errs.IsRecoverable(err))

			offending, ok := OffendingExpr(err)
			require.True(t, ok)
			assert.Same(t, tt.offending, offending)
		})
	}
}

func TestOffendingExprOtherErrors(t *testing.T) {
	_, ok := OffendingExpr(errors.New("plain"))
	assert.False(t, ok)
	_, ok = OffendingExpr(errs.New(errs.ErrEngineFailure, "boom"))
	assert.False(t, ok)
}

func decode(t *testing.T, data string) Value {
	t.Helper()
	schema, err := compileValueSchema()
	require.NoError(t, err)
	v, err := DecodeValue(schema, []byte(data))
	require.NoError(t, err)
	return v
}

func TestFromEngineOutput(t *testing.T) {
	x := expr.NewText("x")
	one := expr.NewText("1")
	two := expr.NewText("2")

	tests := []struct {
		name string
		json string
		want expr.Expr
	}{
		{"integer", `{"type":"integer","value":"12"}`, expr.NewText("12")},
		{"negative integer", `{"type":"integer","value":"-3"}`,
			expr.NewPrefix(expr.NewText("3"), expr.NewText("-"))},
		{"rational", `{"type":"rational","num":"1","den":"2"}`,
			expr.NewCommand("frac", one, two)},
		{"symbol", `{"type":"symbol","name":"x"}`, x},
		{"greek symbol", `{"type":"symbol","name":"alpha"}`, expr.NewCommand("alpha")},
		{"indexed symbol", `{"type":"symbol","name":"x_1"}`, expr.Subscript(x, one)},
		{"pi", `{"type":"constant","name":"pi"}`, expr.NewCommand("pi")},
		{"sum", `{"type":"add","args":[{"type":"symbol","name":"x"},{"type":"integer","value":"1"}]}`,
			expr.CombineInfix(x, one, expr.NewText("+"))},
		{"difference", `{"type":"add","args":[{"type":"symbol","name":"x"},{"type":"integer","value":"-1"}]}`,
			expr.CombineInfix(x, one, expr.NewText("-"))},
		{"square", `{"type":"pow","args":[{"type":"symbol","name":"x"},{"type":"integer","value":"2"}]}`,
			expr.Superscript(x, two)},
		{"square root", `{"type":"pow","args":[{"type":"symbol","name":"x"},{"type":"rational","num":"1","den":"2"}]}`,
			expr.NewCommand("sqrt", x)},
		{"reciprocal", `{"type":"pow","args":[{"type":"symbol","name":"x"},{"type":"integer","value":"-1"}]}`,
			expr.NewCommand("frac", one, x)},
		{"product", `{"type":"mul","args":[{"type":"integer","value":"2"},{"type":"symbol","name":"x"}]}`,
			expr.Combine(two, x, true)},
		{"negated product", `{"type":"mul","args":[{"type":"integer","value":"-1"},{"type":"symbol","name":"x"}]}`,
			expr.NewPrefix(x, expr.NewText("-"))},
		{"quotient", `{"type":"mul","args":[{"type":"symbol","name":"x"},{"type":"pow","args":[{"type":"symbol","name":"y"},{"type":"integer","value":"-1"}]}]}`,
			expr.NewCommand("frac", x, expr.NewText("y"))},
		{"function", `{"type":"function","name":"sin","args":[{"type":"symbol","name":"x"}]}`,
			expr.NewFunctionCall(expr.NewCommand("sin"), expr.Parenthesize(x))},
		{"abs", `{"type":"function","name":"Abs","args":[{"type":"symbol","name":"x"}]}`,
			expr.NewDelimiter("|", "|", x, false)},
		{"equation", `{"type":"eq","args":[{"type":"symbol","name":"x"},{"type":"integer","value":"2"}]}`,
			expr.CombineInfix(x, two, expr.NewText("="))},
		{"matrix", `{"type":"matrix","rows":[[{"type":"integer","value":"1"}],[{"type":"integer","value":"2"}]]}`,
			expr.NewArray("bmatrix", [][]expr.Expr{{one}, {two}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromEngineOutput(decode(t, tt.json))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("FromEngineOutput mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeValueRejects(t *testing.T) {
	schema, err := compileValueSchema()
	require.NoError(t, err)

	tests := []struct {
		name string
		json string
	}{
		{"not json", `{"type":`},
		{"unknown type", `{"type":"tensor"}`},
		{"integer without value", `{"type":"integer"}`},
		{"integer with letters", `{"type":"integer","value":"12a"}`},
		{"zero denominator", `{"type":"rational","num":"1","den":"0"}`},
		{"add with one term", `{"type":"add","args":[{"type":"integer","value":"1"}]}`},
		{"pow with three args", `{"type":"pow","args":[{"type":"integer","value":"1"},{"type":"integer","value":"1"},{"type":"integer","value":"1"}]}`},
		{"nested garbage", `{"type":"add","args":[{"type":"integer","value":"1"},{"type":"symbol"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue(schema, []byte(tt.json))
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrEngineFailure), "got %v", err)
		})
	}
}

// fakeEngine records its calls and answers with a fixed result.
type fakeEngine struct {
	function string
	args     []string
	result   string
	err      error
}

func (f *fakeEngine) Call(_ context.Context, function string, args []string) ([]byte, error) {
	f.function, f.args = function, args
	return []byte(f.result), f.err
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func TestBridgeApply(t *testing.T) {
	fake := &fakeEngine{result: `{"type":"mul","args":[{"type":"integer","value":"2"},{"type":"symbol","name":"x"}]}`}
	bridge, err := NewBridge(fake)
	require.NoError(t, err)

	got, err := bridge.Apply(testContext(t), "simplify", mustParse(t, "x+x"))
	require.NoError(t, err)
	assert.Equal(t, "simplify", fake.function)
	assert.Equal(t, []string{"(x) + (x)"}, fake.args)
	assert.Empty(t, cmp.Diff(expr.Combine(expr.NewText("2"), expr.NewText("x"), true), got))
}

func TestBridgeApplyErrors(t *testing.T) {
	t.Run("conversion failure skips the engine", func(t *testing.T) {
		fake := &fakeEngine{}
		bridge, err := NewBridge(fake)
		require.NoError(t, err)

		_, err = bridge.Apply(testContext(t), "simplify", expr.NewPlaceholder())
		assert.True(t, errs.Is(err, errs.ErrEngineConversion))
		assert.Empty(t, fake.function)
	})

	t.Run("engine error becomes failure", func(t *testing.T) {
		bridge, err := NewBridge(&fakeEngine{err: errors.New("crashed")})
		require.NoError(t, err)

		_, err = bridge.Apply(testContext(t), "factor", expr.NewText("x"))
		assert.True(t, errs.Is(err, errs.ErrEngineFailure))
		assert.ErrorContains(t, err, "crashed")
	})

	t.Run("invalid output", func(t *testing.T) {
		bridge, err := NewBridge(&fakeEngine{result: `{"type":"symbol"}`})
		require.NoError(t, err)

		_, err = bridge.Apply(testContext(t), "factor", expr.NewText("x"))
		assert.True(t, errs.Is(err, errs.ErrEngineFailure))
	})
}

func TestExecEngine(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("result", func(t *testing.T) {
		eng := NewExecEngine("sh", "-c", `cat >/dev/null; echo '{"result":{"type":"integer","value":"7"}}'`)
		raw, err := eng.Call(testContext(t), "evaluate", []string{"3 + 4"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"integer","value":"7"}`, string(raw))
	})

	t.Run("request reaches stdin", func(t *testing.T) {
		eng := NewExecEngine("sh", "-c", `grep -q '"function":"expand"' && echo '{"result":{"type":"symbol","name":"ok"}}'`)
		raw, err := eng.Call(testContext(t), "expand", []string{"x"})
		require.NoError(t, err)
		assert.Contains(t, string(raw), "ok")
	})

	t.Run("engine reported error", func(t *testing.T) {
		eng := NewExecEngine("sh", "-c", `cat >/dev/null; echo '{"error":"cannot factor"}'`)
		_, err := eng.Call(testContext(t), "factor", nil)
		assert.True(t, errs.Is(err, errs.ErrEngineFailure))
		assert.ErrorContains(t, err, "cannot factor")
	})

	t.Run("non-zero exit", func(t *testing.T) {
		eng := NewExecEngine("sh", "-c", `cat >/dev/null; echo oops >&2; exit 3`)
		_, err := eng.Call(testContext(t), "factor", nil)
		require.Error(t, err)
		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, errs.ErrEngineFailure, e.Type)
		stderr, _ := e.GetContext("stderr")
		assert.Equal(t, "oops", stderr)
	})
}
