// Package expr implements the immutable expression tree behind texstack.
//
// An Expr is one of twelve concrete node types. Nodes are never mutated after
// construction: every transformation allocates new nodes along the path of
// change and shares all untouched subtrees. Change detection elsewhere in the
// system relies on that, comparing nodes by pointer identity rather than by
// structure.
package expr

import (
	"github.com/aledsdavies/texstack/core/invariant"
)

// Kind identifies the concrete type of an Expr.
type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindFont
	KindInfix
	KindPrefix
	KindPostfix
	KindSequence
	KindDelimiter
	KindSubSup
	KindArray
	KindPlaceholder
	KindFunctionCall
)

var kindNames = [...]string{
	KindText:         "text",
	KindCommand:      "command",
	KindFont:         "font",
	KindInfix:        "infix",
	KindPrefix:       "prefix",
	KindPostfix:      "postfix",
	KindSequence:     "sequence",
	KindDelimiter:    "delimiter",
	KindSubSup:       "subscriptsuperscript",
	KindArray:        "array",
	KindPlaceholder:  "placeholder",
	KindFunctionCall: "function_call",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Expr is a node in an expression tree.
//
// Subexpressions returns the ordered children used both for traversal and for
// Path addressing. ReplaceSubexpression returns a new node with child index
// replaced; the receiver is left untouched.
type Expr interface {
	Kind() Kind
	Subexpressions() []Expr
	ReplaceSubexpression(index int, e Expr) Expr
	sealed()
}

// Text is a literal run of markup: a digit string, a variable, an operator.
type Text struct {
	Text string
}

// NewText creates a text node.
func NewText(s string) *Text {
	return &Text{Text: s}
}

func (*Text) Kind() Kind             { return KindText }
func (*Text) Subexpressions() []Expr { return nil }
func (*Text) sealed()                {}

func (t *Text) ReplaceSubexpression(index int, _ Expr) Expr {
	invariant.Precondition(false, "text node has no subexpression %d", index)
	return t
}

// LooksLikeNumber reports whether the text is a bare (possibly partial)
// decimal literal such as "12", "-3", "4." or ".5".
func (t *Text) LooksLikeNumber() bool {
	s := t.Text
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '.':
			if dot {
				return false
			}
			dot = true
		case s[i] < '0' || s[i] > '9':
			return false
		}
	}
	return true
}

// FactorialCount returns n when the text consists of exactly n '!' signs,
// and 0 otherwise.
func (t *Text) FactorialCount() int {
	if t.Text == "" {
		return 0
	}
	for i := 0; i < len(t.Text); i++ {
		if t.Text[i] != '!' {
			return 0
		}
	}
	return len(t.Text)
}

// Command is a LaTeX command with zero or more braced operands and optional
// bracketed options: \name[options]{op1}{op2}.
type Command struct {
	Name     string
	Operands []Expr
	Options  string
}

// NewCommand creates a command node. The name excludes the backslash.
func NewCommand(name string, operands ...Expr) *Command {
	invariant.Precondition(name != "", "command name must not be empty")
	for _, op := range operands {
		invariant.NotNil(op, "operand")
	}
	return &Command{Name: name, Operands: append([]Expr(nil), operands...)}
}

// WithOptions returns a copy of c carrying the given bracketed options.
func (c *Command) WithOptions(options string) *Command {
	return &Command{Name: c.Name, Operands: c.Operands, Options: options}
}

// IsZeroArg reports whether c is a bare symbol-like command such as \alpha.
func (c *Command) IsZeroArg() bool {
	return len(c.Operands) == 0
}

func (*Command) Kind() Kind { return KindCommand }
func (*Command) sealed()    {}

func (c *Command) Subexpressions() []Expr {
	return append([]Expr(nil), c.Operands...)
}

func (c *Command) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, len(c.Operands)-1, "index")
	invariant.NotNil(e, "replacement")
	operands := append([]Expr(nil), c.Operands...)
	operands[index] = e
	return &Command{Name: c.Name, Operands: operands, Options: c.Options}
}

// Typeface names a math alphabet.
type Typeface string

const (
	TypefaceNormal       Typeface = "normal"
	TypefaceRoman        Typeface = "roman"
	TypefaceSansSerif    Typeface = "sans_serif"
	TypefaceTypewriter   Typeface = "typewriter"
	TypefaceBlackboard   Typeface = "blackboard"
	TypefaceCalligraphic Typeface = "calligraphic"
	TypefaceScript       Typeface = "script"
	TypefaceFraktur      Typeface = "fraktur"
)

// Typefaces lists every known typeface.
var Typefaces = []Typeface{
	TypefaceNormal, TypefaceRoman, TypefaceSansSerif, TypefaceTypewriter,
	TypefaceBlackboard, TypefaceCalligraphic, TypefaceScript, TypefaceFraktur,
}

// Font size adjustments are clamped to this range.
const (
	MinFontSize = -4
	MaxFontSize = 5
)

// Font wraps an expression in a typeface, weight and size.
type Font struct {
	Base     Expr
	Typeface Typeface
	Bold     bool
	Size     int
}

// NewFont creates a font node. Use WithFont when a no-op font should collapse
// back to its base.
func NewFont(base Expr, typeface Typeface, bold bool, size int) *Font {
	invariant.NotNil(base, "base")
	invariant.InRange(size, MinFontSize, MaxFontSize, "size")
	if typeface == "" {
		typeface = TypefaceNormal
	}
	return &Font{Base: base, Typeface: typeface, Bold: bold, Size: size}
}

// IsNoOp reports whether the font changes nothing about its base.
func (f *Font) IsNoOp() bool {
	return f.Typeface == TypefaceNormal && !f.Bold && f.Size == 0
}

// SameStyle reports whether f and g would render their bases identically.
func (f *Font) SameStyle(g *Font) bool {
	return f.Typeface == g.Typeface && f.Bold == g.Bold && f.Size == g.Size
}

func (*Font) Kind() Kind               { return KindFont }
func (*Font) sealed()                  {}
func (f *Font) Subexpressions() []Expr { return []Expr{f.Base} }

func (f *Font) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, 0, "index")
	invariant.NotNil(e, "replacement")
	return &Font{Base: e, Typeface: f.Typeface, Bold: f.Bold, Size: f.Size}
}

// Infix is a flat operand/operator chain: a + b - c. Operators are themselves
// expressions (usually Text or zero-argument Command).
//
// SplitAtIndex is the index of the most recently inserted operator; the
// pivot operations default to it. LinebreaksAt holds operand indices that
// start a new line.
type Infix struct {
	Operands     []Expr
	Operators    []Expr
	SplitAtIndex int
	LinebreaksAt []int
}

// NewInfix creates an infix node.
func NewInfix(operands, operators []Expr, splitAt int, linebreaks []int) *Infix {
	invariant.Precondition(len(operands) >= 2, "infix needs at least two operands, got %d", len(operands))
	invariant.Precondition(len(operators) == len(operands)-1,
		"infix has %d operators for %d operands", len(operators), len(operands))
	invariant.InRange(splitAt, 0, len(operators)-1, "split_at_index")
	for _, lb := range linebreaks {
		invariant.InRange(lb, 1, len(operands)-1, "linebreak")
	}
	return &Infix{
		Operands:     append([]Expr(nil), operands...),
		Operators:    append([]Expr(nil), operators...),
		SplitAtIndex: splitAt,
		LinebreaksAt: append([]int(nil), linebreaks...),
	}
}

// HasLinebreakBefore reports whether operand i starts a new line.
func (x *Infix) HasLinebreakBefore(i int) bool {
	for _, lb := range x.LinebreaksAt {
		if lb == i {
			return true
		}
	}
	return false
}

func (*Infix) Kind() Kind { return KindInfix }
func (*Infix) sealed()    {}

// Subexpressions interleaves operands and operators: operand 0, operator 0,
// operand 1, ...
func (x *Infix) Subexpressions() []Expr {
	out := make([]Expr, 0, len(x.Operands)+len(x.Operators))
	for i, operand := range x.Operands {
		if i > 0 {
			out = append(out, x.Operators[i-1])
		}
		out = append(out, operand)
	}
	return out
}

func (x *Infix) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, len(x.Operands)+len(x.Operators)-1, "index")
	invariant.NotNil(e, "replacement")
	operands := append([]Expr(nil), x.Operands...)
	operators := append([]Expr(nil), x.Operators...)
	if index%2 == 0 {
		operands[index/2] = e
	} else {
		operators[index/2] = e
	}
	return &Infix{Operands: operands, Operators: operators, SplitAtIndex: x.SplitAtIndex, LinebreaksAt: x.LinebreaksAt}
}

// Prefix is an operator applied before its base: -x, \neg p.
type Prefix struct {
	Base     Expr
	Operator Expr
}

// NewPrefix creates a prefix node.
func NewPrefix(base, operator Expr) *Prefix {
	invariant.NotNil(base, "base")
	invariant.NotNil(operator, "operator")
	return &Prefix{Base: base, Operator: operator}
}

func (*Prefix) Kind() Kind               { return KindPrefix }
func (*Prefix) sealed()                  {}
func (p *Prefix) Subexpressions() []Expr { return []Expr{p.Operator, p.Base} }

func (p *Prefix) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, 1, "index")
	invariant.NotNil(e, "replacement")
	if index == 0 {
		return &Prefix{Base: p.Base, Operator: e}
	}
	return &Prefix{Base: e, Operator: p.Operator}
}

// Postfix is an operator applied after its base: n!, f'.
type Postfix struct {
	Base     Expr
	Operator Expr
}

// NewPostfix creates a postfix node.
func NewPostfix(base, operator Expr) *Postfix {
	invariant.NotNil(base, "base")
	invariant.NotNil(operator, "operator")
	return &Postfix{Base: base, Operator: operator}
}

// NewFactorial wraps base in a run of count factorial signs.
func NewFactorial(base Expr, count int) *Postfix {
	invariant.Precondition(count > 0, "factorial count must be positive, got %d", count)
	return NewPostfix(base, NewText(repeatBang(count)))
}

// FactorialCount returns the number of factorial signs when p is a factorial
// node, and 0 otherwise.
func (p *Postfix) FactorialCount() int {
	if t, ok := p.Operator.(*Text); ok {
		return t.FactorialCount()
	}
	return 0
}

func (*Postfix) Kind() Kind               { return KindPostfix }
func (*Postfix) sealed()                  {}
func (p *Postfix) Subexpressions() []Expr { return []Expr{p.Base, p.Operator} }

func (p *Postfix) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, 1, "index")
	invariant.NotNil(e, "replacement")
	if index == 0 {
		return &Postfix{Base: e, Operator: p.Operator}
	}
	return &Postfix{Base: p.Base, Operator: e}
}

// Sequence is a juxtaposition of expressions. A fused sequence behaves as a
// single unit and is not flattened by Combine.
type Sequence struct {
	Exprs []Expr
	Fused bool
}

// NewSequence creates a sequence node.
func NewSequence(exprs []Expr, fused bool) *Sequence {
	for _, e := range exprs {
		invariant.NotNil(e, "sequence element")
	}
	return &Sequence{Exprs: append([]Expr(nil), exprs...), Fused: fused}
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) sealed()    {}

func (s *Sequence) Subexpressions() []Expr {
	return append([]Expr(nil), s.Exprs...)
}

func (s *Sequence) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, len(s.Exprs)-1, "index")
	invariant.NotNil(e, "replacement")
	exprs := append([]Expr(nil), s.Exprs...)
	exprs[index] = e
	return &Sequence{Exprs: exprs, Fused: s.Fused}
}

// Delimiter surrounds an expression with a pair of delimiters. Unless Fixed,
// the delimiters stretch (\left( ... \right)).
type Delimiter struct {
	Left  string
	Right string
	Inner Expr
	Fixed bool
}

// NewDelimiter creates a delimiter node. Use "." for an invisible side.
func NewDelimiter(left, right string, inner Expr, fixed bool) *Delimiter {
	invariant.NotNil(inner, "inner")
	invariant.Precondition(left != "" && right != "", "delimiters must not be empty")
	return &Delimiter{Left: left, Right: right, Inner: inner, Fixed: fixed}
}

// Parenthesize wraps e in fixed-size parentheses.
func Parenthesize(e Expr) *Delimiter {
	return NewDelimiter("(", ")", e, true)
}

// IsParentheses reports whether d is a plain pair of round brackets.
func (d *Delimiter) IsParentheses() bool {
	return d.Left == "(" && d.Right == ")"
}

func (*Delimiter) Kind() Kind               { return KindDelimiter }
func (*Delimiter) sealed()                  {}
func (d *Delimiter) Subexpressions() []Expr { return []Expr{d.Inner} }

func (d *Delimiter) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, 0, "index")
	invariant.NotNil(e, "replacement")
	return &Delimiter{Left: d.Left, Right: d.Right, Inner: e, Fixed: d.Fixed}
}

// SubSup attaches a subscript, a superscript or both to a base. A SubSup
// never has both slots empty; NewSubSup returns the bare base in that case.
type SubSup struct {
	Base Expr
	Sub  Expr
	Sup  Expr
}

// NewSubSup creates a subscript/superscript node, or returns base itself
// when both sub and sup are nil.
func NewSubSup(base, sub, sup Expr) Expr {
	invariant.NotNil(base, "base")
	if sub == nil && sup == nil {
		return base
	}
	return &SubSup{Base: base, Sub: sub, Sup: sup}
}

func (*SubSup) Kind() Kind { return KindSubSup }
func (*SubSup) sealed()    {}

// Subexpressions returns the base followed by whichever of subscript and
// superscript are present.
func (s *SubSup) Subexpressions() []Expr {
	out := []Expr{s.Base}
	if s.Sub != nil {
		out = append(out, s.Sub)
	}
	if s.Sup != nil {
		out = append(out, s.Sup)
	}
	return out
}

func (s *SubSup) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, len(s.Subexpressions())-1, "index")
	invariant.NotNil(e, "replacement")
	base, sub, sup := s.Base, s.Sub, s.Sup
	switch {
	case index == 0:
		base = e
	case index == 1 && s.Sub != nil:
		sub = e
	default:
		sup = e
	}
	return &SubSup{Base: base, Sub: sub, Sup: sup}
}

// Array is a matrix-like environment: bmatrix, pmatrix, cases, aligned, ...
type Array struct {
	Type        string
	RowCount    int
	ColumnCount int
	Rows        [][]Expr
}

// NewArray creates an array node. Every row must have the same length.
func NewArray(arrayType string, rows [][]Expr) *Array {
	invariant.Precondition(arrayType != "", "array type must not be empty")
	invariant.Precondition(len(rows) > 0, "array needs at least one row")
	columns := len(rows[0])
	invariant.Precondition(columns > 0, "array needs at least one column")
	copied := make([][]Expr, len(rows))
	for i, row := range rows {
		invariant.Precondition(len(row) == columns,
			"array row %d has %d elements, expected %d", i, len(row), columns)
		for _, e := range row {
			invariant.NotNil(e, "array element")
		}
		copied[i] = append([]Expr(nil), row...)
	}
	return &Array{Type: arrayType, RowCount: len(rows), ColumnCount: columns, Rows: copied}
}

// WithType returns a copy of a using a different environment.
func (a *Array) WithType(arrayType string) *Array {
	return &Array{Type: arrayType, RowCount: a.RowCount, ColumnCount: a.ColumnCount, Rows: a.Rows}
}

// Transpose swaps rows and columns.
func (a *Array) Transpose() *Array {
	rows := make([][]Expr, a.ColumnCount)
	for c := range rows {
		rows[c] = make([]Expr, a.RowCount)
		for r := 0; r < a.RowCount; r++ {
			rows[c][r] = a.Rows[r][c]
		}
	}
	return NewArray(a.Type, rows)
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) sealed()    {}

// Subexpressions returns the elements in row-major order.
func (a *Array) Subexpressions() []Expr {
	out := make([]Expr, 0, a.RowCount*a.ColumnCount)
	for _, row := range a.Rows {
		out = append(out, row...)
	}
	return out
}

func (a *Array) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, a.RowCount*a.ColumnCount-1, "index")
	invariant.NotNil(e, "replacement")
	r, c := index/a.ColumnCount, index%a.ColumnCount
	rows := append([][]Expr(nil), a.Rows...)
	rows[r] = append([]Expr(nil), rows[r]...)
	rows[r][c] = e
	return &Array{Type: a.Type, RowCount: a.RowCount, ColumnCount: a.ColumnCount, Rows: rows}
}

// Placeholder marks an empty slot, rendered as a black square. Hint is
// free-form and does not affect rendering.
type Placeholder struct {
	Hint string
}

// NewPlaceholder creates a distinct placeholder node.
func NewPlaceholder() *Placeholder {
	return &Placeholder{Hint: "placeholder"}
}

func (*Placeholder) Kind() Kind             { return KindPlaceholder }
func (*Placeholder) Subexpressions() []Expr { return nil }
func (*Placeholder) sealed()                {}

func (p *Placeholder) ReplaceSubexpression(index int, _ Expr) Expr {
	invariant.Precondition(false, "placeholder has no subexpression %d", index)
	return p
}

// FunctionCall applies a function expression to an argument list, which is
// usually a parenthesized Delimiter: f(x, y).
type FunctionCall struct {
	Fn   Expr
	Args Expr
}

// NewFunctionCall creates a function call node.
func NewFunctionCall(fn, args Expr) *FunctionCall {
	invariant.NotNil(fn, "fn")
	invariant.NotNil(args, "args")
	return &FunctionCall{Fn: fn, Args: args}
}

func (*FunctionCall) Kind() Kind               { return KindFunctionCall }
func (*FunctionCall) sealed()                  {}
func (f *FunctionCall) Subexpressions() []Expr { return []Expr{f.Fn, f.Args} }

func (f *FunctionCall) ReplaceSubexpression(index int, e Expr) Expr {
	invariant.InRange(index, 0, 1, "index")
	invariant.NotNil(e, "replacement")
	if index == 0 {
		return &FunctionCall{Fn: e, Args: f.Args}
	}
	return &FunctionCall{Fn: f.Fn, Args: e}
}

func repeatBang(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '!'
	}
	return string(b)
}
