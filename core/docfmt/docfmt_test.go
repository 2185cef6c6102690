package docfmt

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

func sampleState(t *testing.T) *state.AppState {
	t.Helper()
	x := expr.NewText("x")
	every := []expr.Expr{
		expr.NewCommand("frac", expr.NewText("1"), expr.NewText("2")),
		expr.NewCommand("sqrt", x).WithOptions("3"),
		expr.NewFont(x, expr.TypefaceFraktur, true, 2),
		expr.CombineInfix(expr.CombineInfix(x, expr.NewText("y"), expr.NewText("+")), expr.NewText("z"), expr.NewCommand("le")).ToggleLinebreakAt(1),
		expr.NewPrefix(x, expr.NewText("-")),
		expr.NewFactorial(x, 2),
		expr.NewSequence([]expr.Expr{x, expr.NewCommand("alpha")}, true),
		expr.NewDelimiter(`\langle`, `\rangle`, x, false),
		&expr.SubSup{Base: x, Sub: expr.NewText("i"), Sup: expr.NewText("2")},
		expr.Superscript(x, expr.NewText("n")),
		expr.NewArray("pmatrix", [][]expr.Expr{{x, expr.NewText("0")}, {expr.NewText("0"), x}}),
		expr.NewPlaceholder(),
		expr.NewFunctionCall(expr.NewCommand("sin"), expr.Parenthesize(x)),
	}

	stack := state.NewStack().PushExprs(every...).
		WithFloating(state.NewExprItem(expr.NewText("f")).WithTag("float"))

	prose, err := state.ParseTextItem("where $x^2$ is positive", false)
	require.NoError(t, err)
	doc := state.NewDocument(
		state.NewTextItem([]state.TextElement{{Text: "Intro", Bold: true}}, true),
		state.NewExprItem(x).WithTag("eq:1"),
		prose,
		state.NewCodeItem("python", "print(1)\n"),
	).WithSelection(2)

	return &state.AppState{Stack: stack, Document: doc, Dirty: true}
}

func assertSameItems(t *testing.T, want, got []state.Item) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.IsType(t, want[i], got[i])
		assert.Equal(t, want[i].Tag(), got[i].Tag(), "tag of item %d", i)
		switch w := want[i].(type) {
		case *state.ExprItem:
			if diff := cmp.Diff(w.Expr, got[i].(*state.ExprItem).Expr, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("item %d expression mismatch (-want +got):\n%s", i, diff)
			}
		case *state.TextItem:
			g := got[i].(*state.TextItem)
			assert.Equal(t, w.Heading, g.Heading)
			if diff := cmp.Diff(w.Elements, g.Elements, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("item %d elements mismatch (-want +got):\n%s", i, diff)
			}
		case *state.CodeItem:
			g := got[i].(*state.CodeItem)
			assert.Equal(t, w.Language, g.Language)
			assert.Equal(t, w.Source, g.Source)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleState(t)

	var buf bytes.Buffer
	digest, err := Write(&buf, original)
	require.NoError(t, err)

	decoded, readDigest, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, digest, readDigest)

	assertSameItems(t, original.Stack.Items(), decoded.Stack.Items())
	assertSameItems(t, original.Document.Items(), decoded.Document.Items())
	assertSameItems(t, []state.Item{original.Stack.Floating()}, []state.Item{decoded.Stack.Floating()})
	assert.Equal(t, 2, decoded.Document.SelectionIndex())
	assert.False(t, decoded.Dirty, "a loaded state is clean")
}

func TestWriteIsDeterministic(t *testing.T) {
	s := sampleState(t)
	first, err := Marshal(s)
	require.NoError(t, err)
	second, err := Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Fresh items with the same content encode identically; serials are not stored.
	third, err := Marshal(sampleState(t))
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestReadRejectsCorruption(t *testing.T) {
	data, err := Marshal(sampleState(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   string
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, "invalid magic"},
		{"version", func(b []byte) []byte { b[4] = 9; return b }, "unsupported version"},
		{"flags", func(b []byte) []byte { b[6] = 1; return b }, "unsupported flags"},
		{"body", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }, "digest mismatch"},
		{"truncated", func(b []byte) []byte { return b[:len(b)-3] }, "read body"},
		{"empty", func([]byte) []byte { return nil }, "read preamble"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupt := tt.mutate(bytes.Clone(data))
			_, err := Unmarshal(corrupt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		schema string
		ok     bool
	}{
		{"v1.0.0", true},
		{"v1.0", true},
		{"v2.0.0", false},
		{"v1.1.0", false},
		{"1.0.0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			err := checkSchema(tt.schema)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFromWireExprRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		w    *wireExpr
	}{
		{"unknown kind", &wireExpr{Kind: "hologram"}},
		{"infix operator count", &wireExpr{Kind: "infix", Children: []*wireExpr{{Kind: "text"}, {Kind: "text"}}}},
		{"ragged array", &wireExpr{Kind: "array", Text: "matrix", Columns: 2, Children: []*wireExpr{{Kind: "text"}}}},
		{"font size", &wireExpr{Kind: "font", Size: 42, Children: []*wireExpr{{Kind: "text"}}}},
		{"prefix arity", &wireExpr{Kind: "prefix", Children: []*wireExpr{{Kind: "text"}}}},
		{"command name", &wireExpr{Kind: "command"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromWireExpr(tt.w, maxDepth)
			assert.Error(t, err)
		})
	}

	deep := &wireExpr{Kind: "text"}
	for i := 0; i < 10; i++ {
		deep = &wireExpr{Kind: "sequence", Children: []*wireExpr{deep}}
	}
	_, err := fromWireExpr(deep, 5)
	assert.ErrorContains(t, err, "too deep")
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txsk")
	original := sampleState(t)

	require.NoError(t, SaveFile(path, original))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assertSameItems(t, original.Document.Items(), loaded.Document.Items())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txsk"))
	assert.Error(t, err)
}
