package expr

// integralFusions maps adjacent zero-argument integral commands to the
// multi-integral that replaces them.
var integralFusions = map[[2]string]string{
	{"int", "int"}:    "iint",
	{"iint", "int"}:   "iiint",
	{"int", "iint"}:   "iiint",
	{"iiint", "int"}:  "iiiint",
	{"int", "iiint"}:  "iiiint",
	{"oint", "oint"}:  "oiint",
	{"oiint", "oint"}: "oiiint",
	{"oint", "oiint"}: "oiiint",
}

// Operators that bind at least as tightly as juxtaposition. An infix chain
// built only from these does not need parentheses when it is juxtaposed with
// something else.
var tightOperators = map[string]bool{
	"\\cdot":  true,
	"\\times": true,
	"\\circ":  true,
	"/":       true,
	"*":       true,
	"\\div":   true,
}

// Combine merges left and right into a single expression, as when two stack
// items are concatenated. The rules are tried in order:
//
//  1. a run of '!' on the right becomes (or extends) a factorial of left
//  2. an unfused Sequence on either side absorbs the other side
//  3. adjacent integral signs fuse into a multiple integral
//  4. two numeric literals concatenate their digits if that gives a number
//  5. two fonts of identical style merge under one font
//  6. otherwise both sides become a new two-element Sequence
//
// When autoParenthesize is set, low-precedence infix chains are wrapped in
// parentheses before being juxtaposed.
func Combine(left, right Expr, autoParenthesize bool) Expr {
	// 1. factorial coalescing
	if n := factorialRun(right); n > 0 {
		switch l := left.(type) {
		case *Postfix:
			if m := l.FactorialCount(); m > 0 {
				return NewFactorial(l.Base, m+n)
			}
		case *Text:
			if l.FactorialCount() > 0 {
				return NewText(l.Text + repeatBang(n))
			}
		}
		return NewFactorial(maybeParenthesize(left, autoParenthesize), n)
	}

	// 2. sequence absorption
	if ls, ok := left.(*Sequence); ok && !ls.Fused {
		exprs := append([]Expr(nil), ls.Exprs...)
		if rs, ok := right.(*Sequence); ok && !rs.Fused {
			exprs = append(exprs, rs.Exprs...)
		} else {
			exprs = append(exprs, maybeParenthesize(right, autoParenthesize))
		}
		return NewSequence(exprs, false)
	}
	if rs, ok := right.(*Sequence); ok && !rs.Fused {
		exprs := make([]Expr, 0, len(rs.Exprs)+1)
		exprs = append(exprs, maybeParenthesize(left, autoParenthesize))
		exprs = append(exprs, rs.Exprs...)
		return NewSequence(exprs, false)
	}

	// 3. command-pair fusion
	if lc, ok := left.(*Command); ok && lc.IsZeroArg() {
		if rc, ok := right.(*Command); ok && rc.IsZeroArg() {
			if fused, ok := integralFusions[[2]string{lc.Name, rc.Name}]; ok {
				return NewCommand(fused)
			}
		}
	}

	// 4. literal-digit concatenation, only while the result is still a number
	if lt, ok := left.(*Text); ok && lt.LooksLikeNumber() {
		if rt, ok := right.(*Text); ok && rt.LooksLikeNumber() && rt.Text[0] != '-' {
			if joined := NewText(lt.Text + rt.Text); joined.LooksLikeNumber() {
				return joined
			}
		}
	}

	// 5. font-run merging
	if lf, ok := left.(*Font); ok {
		if rf, ok := right.(*Font); ok && lf.SameStyle(rf) {
			exprs := append(sequenceElements(lf.Base), sequenceElements(rf.Base)...)
			return NewFont(NewSequence(exprs, false), lf.Typeface, lf.Bold, lf.Size)
		}
	}

	// 6. default
	return NewSequence([]Expr{
		maybeParenthesize(left, autoParenthesize),
		maybeParenthesize(right, autoParenthesize),
	}, false)
}

// CombineInfix joins left and right with op. Infix chains on either side are
// flattened into the result rather than nested, and the new operator's index
// becomes the result's SplitAtIndex.
func CombineInfix(left, right, op Expr) *Infix {
	var operands, operators []Expr
	var linebreaks []int

	if l, ok := left.(*Infix); ok {
		operands = append(operands, l.Operands...)
		operators = append(operators, l.Operators...)
		linebreaks = append(linebreaks, l.LinebreaksAt...)
	} else {
		operands = append(operands, left)
	}

	splitAt := len(operators)
	operators = append(operators, op)
	offset := len(operands)

	if r, ok := right.(*Infix); ok {
		operands = append(operands, r.Operands...)
		operators = append(operators, r.Operators...)
		for _, lb := range r.LinebreaksAt {
			linebreaks = append(linebreaks, lb+offset)
		}
	} else {
		operands = append(operands, right)
	}

	return NewInfix(operands, operators, splitAt, linebreaks)
}

// NeedsAutoParenthesize reports whether e should be parenthesized before
// being juxtaposed with another expression: an infix chain containing any
// operator looser than multiplication.
func NeedsAutoParenthesize(e Expr) bool {
	x, ok := e.(*Infix)
	if !ok {
		return false
	}
	for _, op := range x.Operators {
		if !tightOperators[operatorName(op)] {
			return true
		}
	}
	return false
}

func maybeParenthesize(e Expr, autoParenthesize bool) Expr {
	if autoParenthesize && NeedsAutoParenthesize(e) {
		return Parenthesize(e)
	}
	return e
}

// factorialRun returns the number of '!' signs when e is a pure run of them.
func factorialRun(e Expr) int {
	switch x := e.(type) {
	case *Text:
		return x.FactorialCount()
	case *Sequence:
		n := 0
		for _, sub := range x.Exprs {
			t, ok := sub.(*Text)
			if !ok || t.FactorialCount() == 0 {
				return 0
			}
			n += t.FactorialCount()
		}
		return n
	}
	return 0
}

func sequenceElements(e Expr) []Expr {
	if s, ok := e.(*Sequence); ok && !s.Fused {
		return append([]Expr(nil), s.Exprs...)
	}
	return []Expr{e}
}

// operatorName returns the text of a Text operator or \name of a command
// operator, and "" for anything else.
func operatorName(op Expr) string {
	switch o := op.(type) {
	case *Text:
		return o.Text
	case *Command:
		if o.IsZeroArg() {
			return "\\" + o.Name
		}
	}
	return ""
}

// Superscript attaches sup to base. When base is already a SubSup with an
// empty superscript slot the slot is filled instead of nesting.
func Superscript(base, sup Expr) Expr {
	if s, ok := base.(*SubSup); ok && s.Sup == nil {
		return NewSubSup(s.Base, s.Sub, sup)
	}
	return NewSubSup(base, nil, sup)
}

// Subscript attaches sub to base, filling an empty subscript slot of an
// existing SubSup.
func Subscript(base, sub Expr) Expr {
	if s, ok := base.(*SubSup); ok && s.Sub == nil {
		return NewSubSup(s.Base, sub, s.Sup)
	}
	return NewSubSup(base, sub, nil)
}

// WithFont applies a typeface, weight and size to e. Applying a font to a
// font node replaces its style instead of nesting, and a style that changes
// nothing unwraps to the bare base.
func WithFont(e Expr, typeface Typeface, bold bool, size int) Expr {
	if f, ok := e.(*Font); ok {
		e = f.Base
	}
	size = clampFontSize(size)
	f := NewFont(e, typeface, bold, size)
	if f.IsNoOp() {
		return e
	}
	return f
}

// ApplyTypeface changes the typeface of e, keeping any weight and size.
func ApplyTypeface(e Expr, typeface Typeface) Expr {
	if f, ok := e.(*Font); ok {
		return WithFont(f, typeface, f.Bold, f.Size)
	}
	return WithFont(e, typeface, false, 0)
}

// ToggleBold flips the weight of e.
func ToggleBold(e Expr) Expr {
	if f, ok := e.(*Font); ok {
		return WithFont(f, f.Typeface, !f.Bold, f.Size)
	}
	return WithFont(e, TypefaceNormal, true, 0)
}

// AdjustFontSize shifts the size of e by delta steps.
func AdjustFontSize(e Expr, delta int) Expr {
	if f, ok := e.(*Font); ok {
		return WithFont(f, f.Typeface, f.Bold, f.Size+delta)
	}
	return WithFont(e, TypefaceNormal, false, delta)
}

func clampFontSize(size int) int {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}
