package expr

import (
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
)

// binaryTokens maps math-entry operator spellings to the operator they
// produce. Longer spellings must be matched first.
var binaryTokens = []struct {
	spelling string
	operator string
}{
	{"<=", "\\le"},
	{">=", "\\ge"},
	{"!=", "\\neq"},
	{"+", "+"},
	{"-", "-"},
	{"*", "\\cdot"},
	{"/", "/"},
	{"=", "="},
	{"<", "<"},
	{">", ">"},
}

// infixCommands are the control words read as binary operators, so that
// rendered chains such as a\cdot b or a\le b parse back to infix nodes.
var infixCommands = map[string]bool{
	"cdot": true, "times": true, "div": true, "circ": true, "pm": true, "mp": true,
	"neq": true, "ne": true, "le": true, "leq": true, "ge": true, "geq": true,
	"nless": true, "ngtr": true, "nleq": true, "ngeq": true,
	"approx": true, "equiv": true, "sim": true, "nsim": true, "cong": true, "ncong": true,
	"propto": true, "in": true, "notin": true, "subset": true, "supset": true,
	"subseteq": true, "supseteq": true, "nsubseteq": true, "nsupseteq": true,
	"cup": true, "cap": true, "wedge": true, "vee": true, "mid": true, "nmid": true,
	"parallel": true, "nparallel": true, "vdash": true, "nvdash": true,
	"to": true, "mapsto": true, "leftarrow": true, "rightarrow": true,
	"nleftarrow": true, "nrightarrow": true, "Rightarrow": true, "Leftarrow": true,
	"iff": true, "implies": true,
}

// commandArity lists commands whose operands may be written without braces,
// one character or control word each, the way the renderer writes them:
// \frac12, \sqrt x.
var commandArity = map[string]int{
	"frac": 2, "dfrac": 2, "tfrac": 2, "binom": 2,
	"sqrt": 1, "hat": 1, "vec": 1, "bar": 1, "tilde": 1, "dot": 1, "ddot": 1,
	"overline": 1, "underline": 1, "widehat": 1, "widetilde": 1,
}

// ParseMath parses a line of math-entry text such as "x^2 + 2x + 1" into an
// expression. Operator chains are built with CombineInfix and juxtaposed
// terms with Combine, so the result has the same shape as if it had been
// assembled on the stack.
func ParseMath(text string) (Expr, error) {
	p := &mathParser{input: text}
	p.skipSpace()
	if p.done() {
		return nil, errs.MathSyntax(text, 0, "empty expression")
	}
	e, err := p.parseChain()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return e, nil
}

type mathParser struct {
	input string
	pos   int
}

func (p *mathParser) done() bool { return p.pos >= len(p.input) }

func (p *mathParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *mathParser) skipSpace() {
	for !p.done() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *mathParser) errorf(format string, args ...interface{}) error {
	return errs.MathSyntax(p.input, p.pos, format, args...)
}

// parseChain parses term (operator term)*.
func (p *mathParser) parseChain() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op, ok := p.matchOperator()
		if !ok {
			return left, nil
		}
		p.skipSpace()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = CombineInfix(left, right, operatorFromName(op))
	}
}

func (p *mathParser) matchOperator() (string, bool) {
	rest := p.input[p.pos:]
	if name, n := controlWord(rest); n > 0 && infixCommands[name] {
		p.pos += n
		return "\\" + name, true
	}
	for _, tok := range binaryTokens {
		if strings.HasPrefix(rest, tok.spelling) {
			p.pos += len(tok.spelling)
			return tok.operator, true
		}
	}
	return "", false
}

// parseTerm parses an optionally negated juxtaposition of factors.
func (p *mathParser) parseTerm() (Expr, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		base, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return NewPrefix(base, NewText("-")), nil
	}

	term, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !p.startsAtom() {
			return term, nil
		}
		next, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		term = juxtapose(term, next)
	}
}

// juxtapose joins adjacent terms. Two number literals separated by a space
// stay two numbers: "2 3" is not 23.
func juxtapose(left, right Expr) Expr {
	if isNumber(left) && isNumber(right) {
		return NewSequence([]Expr{left, right}, false)
	}
	return Combine(left, right, true)
}

func isNumber(e Expr) bool {
	t, ok := e.(*Text)
	return ok && t.LooksLikeNumber()
}

func (p *mathParser) startsAtom() bool {
	switch c := p.peek(); {
	case c == '\\':
		name, _ := controlWord(p.input[p.pos:])
		return !infixCommands[name]
	default:
		return isDigit(c) || c == '.' || isLetter(c) || c == '(' || c == '[' || c == '{'
	}
}

// parsePostfix parses an atom followed by any number of ^, _, ! and '.
func (p *mathParser) parsePostfix() (Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch c := p.peek(); {
		case c == '^' || c == '_':
			p.pos++
			p.skipSpace()
			script, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			if c == '^' {
				e = Superscript(e, script)
			} else {
				e = Subscript(e, script)
			}
		case c == '!' && !strings.HasPrefix(p.input[p.pos:], "!="):
			p.pos++
			e = Combine(e, NewText("!"), true)
		case c == '\'':
			p.pos++
			e = NewPostfix(e, NewText("'"))
		default:
			return e, nil
		}
	}
}

func (p *mathParser) parseAtom() (Expr, error) {
	if p.done() {
		return nil, p.errorf("unexpected end of input")
	}
	c := p.peek()
	switch {
	case isDigit(c) || c == '.':
		start := p.pos
		for !p.done() && (isDigit(p.peek()) || p.peek() == '.') {
			p.pos++
		}
		t := NewText(p.input[start:p.pos])
		if !t.LooksLikeNumber() {
			return nil, errs.MathSyntax(p.input, start, "malformed number %q", t.Text)
		}
		return t, nil

	case isLetter(c):
		p.pos++
		return NewText(string(c)), nil

	case c == '\\':
		return p.parseCommand()

	case c == '(':
		inner, err := p.parseEnclosed('(', ')')
		if err != nil {
			return nil, err
		}
		return Parenthesize(inner), nil

	case c == '[':
		inner, err := p.parseEnclosed('[', ']')
		if err != nil {
			return nil, err
		}
		return NewDelimiter("[", "]", inner, true), nil

	case c == '{':
		return p.parseEnclosed('{', '}')
	}
	return nil, p.errorf("unexpected %q", c)
}

func (p *mathParser) parseEnclosed(open, close byte) (Expr, error) {
	start := p.pos
	p.pos++ // open
	p.skipSpace()
	inner, err := p.parseChain()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != close {
		return nil, errs.MathSyntax(p.input, start, "unclosed %q", open)
	}
	p.pos++
	return inner, nil
}

// parseCommand parses \name, \name{arg}..., \name[opt]{arg} and the
// function-call form \sin(x).
func (p *mathParser) parseCommand() (Expr, error) {
	start := p.pos
	name, err := p.parseControlName()
	if err != nil {
		return nil, err
	}
	if p.pos-start == 2 && !isLetter(name[0]) {
		return NewCommand(name), nil
	}
	if name == "blacksquare" {
		return NewPlaceholder(), nil
	}

	var options string
	if p.peek() == '[' {
		end := strings.IndexByte(p.input[p.pos:], ']')
		if end < 0 {
			return nil, errs.MathSyntax(p.input, p.pos, "unclosed %q", '[')
		}
		options = p.input[p.pos+1 : p.pos+end]
		p.pos += end + 1
	}

	var operands []Expr
	if arity, ok := commandArity[name]; ok {
		for len(operands) < arity {
			arg, err := p.parseOperand(name, arity)
			if err != nil {
				return nil, err
			}
			operands = append(operands, arg)
		}
	} else {
		for p.peek() == '{' {
			arg, err := p.parseEnclosed('{', '}')
			if err != nil {
				return nil, err
			}
			operands = append(operands, arg)
		}
	}

	cmd := NewCommand(name, operands...)
	if options != "" {
		cmd = cmd.WithOptions(options)
	}
	if _, ok := unaryFunctions[name]; ok && cmd.IsZeroArg() && p.peek() == '(' {
		args, err := p.parseEnclosed('(', ')')
		if err != nil {
			return nil, err
		}
		return NewFunctionCall(cmd, Parenthesize(args)), nil
	}
	return cmd, nil
}

// parseControlName consumes a backslash and the control word or single
// control symbol after it, returning the name without the backslash.
func (p *mathParser) parseControlName() (string, error) {
	start := p.pos
	if name, n := controlWord(p.input[p.pos:]); n > 0 {
		p.pos += n
		return name, nil
	}
	p.pos++ // backslash
	if p.done() {
		return "", errs.MathSyntax(p.input, start, "incomplete command")
	}
	p.pos++
	return p.input[start+1 : p.pos], nil
}

// parseOperand reads one operand of a command with known arity: a braced
// group, a control word, or a single character.
func (p *mathParser) parseOperand(name string, arity int) (Expr, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.parseEnclosed('{', '}')
	case c == '\\':
		operand, err := p.parseControlName()
		if err != nil {
			return nil, err
		}
		if operand == "blacksquare" {
			return NewPlaceholder(), nil
		}
		return NewCommand(operand), nil
	case isDigit(c) || isLetter(c):
		p.pos++
		return NewText(string(c)), nil
	}
	return nil, p.errorf("\\%s needs %d arguments", name, arity)
}

// controlWord returns the letters of the control word at the start of s and
// its length including the backslash, or 0 when s does not start with one.
func controlWord(s string) (string, int) {
	if len(s) < 2 || s[0] != '\\' {
		return "", 0
	}
	n := 1
	for n < len(s) && isLetter(s[n]) {
		n++
	}
	if n == 1 {
		return "", 0
	}
	return s[1:n], n
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
