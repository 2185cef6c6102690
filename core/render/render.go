// Package render turns expression trees into LaTeX.
//
// The emitter produces a flat list of tokens, each either raw text or a
// control word such as \frac. A space is inserted only where a control word
// would otherwise run into a following letter. Braces around a group are
// left out when the group is a single character or a single control word.
package render

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/invariant"
)

// HighlightClass is the CSS class wrapped around the selected subexpression.
const HighlightClass = "dissect-highlight"

var typefaceCommands = map[expr.Typeface]string{
	expr.TypefaceRoman:        "\\mathrm",
	expr.TypefaceSansSerif:    "\\mathsf",
	expr.TypefaceTypewriter:   "\\mathtt",
	expr.TypefaceBlackboard:   "\\mathbb",
	expr.TypefaceCalligraphic: "\\mathcal",
	expr.TypefaceScript:       "\\mathscr",
	expr.TypefaceFraktur:      "\\mathfrak",
}

var sizeCommands = map[int]string{
	-4: "\\tiny",
	-3: "\\scriptsize",
	-2: "\\footnotesize",
	-1: "\\small",
	1:  "\\large",
	2:  "\\Large",
	3:  "\\LARGE",
	4:  "\\huge",
	5:  "\\Huge",
}

// Expr renders e as LaTeX math.
func Expr(e expr.Expr) string {
	r := &emitter{}
	r.emit(e)
	return r.String()
}

// Selection renders the root of path, wrapping the subexpression the path
// selects in \htmlClass{dissect-highlight}{...}.
func Selection(path expr.Path) string {
	invariant.Precondition(!path.IsZero(), "selection path has no root")
	r := &emitter{target: path, current: expr.NewPath(path.Root()), tracking: true}
	r.emit(path.Root())
	return r.String()
}

type token struct {
	text    string
	command bool
}

type emitter struct {
	tokens []token

	tracking bool
	target   expr.Path
	current  expr.Path
}

func (r *emitter) text(s string)    { r.tokens = append(r.tokens, token{text: s}) }
func (r *emitter) command(s string) { r.tokens = append(r.tokens, token{text: s, command: true}) }

// symbol emits a delimiter or operator spelled as raw markup, treating a
// control word such as \langle as a command token.
func (r *emitter) symbol(s string) {
	if len(s) > 1 && s[0] == '\\' && isLetter(s[1]) {
		r.command(s)
		return
	}
	r.text(s)
}

func (r *emitter) String() string {
	var b strings.Builder
	for i, t := range r.tokens {
		if i > 0 && r.tokens[i-1].command && t.text != "" && isLetter(t.text[0]) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// child emits subexpression index of the node currently being emitted.
func (r *emitter) child(index int, e expr.Expr) {
	if !r.tracking {
		r.emit(e)
		return
	}
	saved := r.current
	r.current = r.current.Descend(index)
	r.emit(e)
	r.current = saved
}

// group emits a child inside braces unless it comes out as one character or
// one command.
func (r *emitter) group(index int, e expr.Expr) {
	start := len(r.tokens)
	r.child(index, e)
	emitted := r.tokens[start:]
	if len(emitted) == 1 && (emitted[0].command || utf8.RuneCountInString(emitted[0].text) == 1) {
		return
	}
	r.tokens = slices.Insert(r.tokens, start, token{text: "{"})
	r.text("}")
}

func (r *emitter) emit(e expr.Expr) {
	if r.tracking && r.current.Equal(r.target) {
		r.tracking = false
		r.command("\\htmlClass")
		r.text("{" + HighlightClass + "}")
		r.text("{")
		r.emitNode(e)
		r.text("}")
		r.tracking = true
		return
	}
	r.emitNode(e)
}

func (r *emitter) emitNode(e expr.Expr) {
	switch x := e.(type) {
	case *expr.Text:
		r.text(x.Text)

	case *expr.Command:
		r.command("\\" + x.Name)
		if x.Options != "" {
			r.text("[" + x.Options + "]")
		}
		for i, op := range x.Operands {
			r.group(i, op)
		}

	case *expr.Font:
		r.emitFont(x)

	case *expr.Infix:
		for i, operand := range x.Operands {
			if i > 0 {
				if x.HasLinebreakBefore(i) {
					r.text("\\\\")
				}
				r.child(2*i-1, x.Operators[i-1])
			}
			r.child(2*i, operand)
		}

	case *expr.Prefix:
		r.child(0, x.Operator)
		r.child(1, x.Base)

	case *expr.Postfix:
		r.child(0, x.Base)
		r.child(1, x.Operator)

	case *expr.Sequence:
		for i, sub := range x.Exprs {
			r.child(i, sub)
		}

	case *expr.Delimiter:
		if !x.Fixed {
			r.command("\\left")
		}
		r.symbol(x.Left)
		r.child(0, x.Inner)
		if !x.Fixed {
			r.command("\\right")
		}
		r.symbol(x.Right)

	case *expr.SubSup:
		switch x.Base.(type) {
		case *expr.Delimiter, *expr.Font, *expr.Placeholder:
			r.child(0, x.Base)
		default:
			r.group(0, x.Base)
		}
		index := 1
		if x.Sub != nil {
			r.text("_")
			r.group(index, x.Sub)
			index++
		}
		if x.Sup != nil {
			r.text("^")
			r.group(index, x.Sup)
		}

	case *expr.Array:
		r.command("\\begin")
		r.text("{" + x.Type + "}")
		for i, row := range x.Rows {
			if i > 0 {
				r.text("\\\\")
			}
			for j, element := range row {
				if j > 0 {
					r.text("&")
				}
				r.child(i*x.ColumnCount+j, element)
			}
		}
		r.command("\\end")
		r.text("{" + x.Type + "}")

	case *expr.Placeholder:
		r.command("\\blacksquare")

	case *expr.FunctionCall:
		r.child(0, x.Fn)
		r.child(1, x.Args)

	default:
		invariant.Invariant(false, "unhandled expression kind %v", e.Kind())
	}
}

// emitFont wraps the base in its size, weight and typeface commands:
// {\large\boldsymbol{\mathrm{x}}}.
func (r *emitter) emitFont(f *expr.Font) {
	var wrappers []string
	switch {
	case f.Bold && f.Typeface == expr.TypefaceRoman:
		wrappers = append(wrappers, "\\mathbf")
	case f.Bold:
		wrappers = append(wrappers, "\\boldsymbol")
		if cmd, ok := typefaceCommands[f.Typeface]; ok {
			wrappers = append(wrappers, cmd)
		}
	default:
		if cmd, ok := typefaceCommands[f.Typeface]; ok {
			wrappers = append(wrappers, cmd)
		}
	}

	size := sizeCommands[f.Size]
	if size != "" {
		r.text("{")
		r.command(size)
	}
	if len(wrappers) == 0 {
		r.child(0, f.Base)
	} else {
		for _, w := range wrappers[:len(wrappers)-1] {
			r.command(w)
			r.text("{")
		}
		r.command(wrappers[len(wrappers)-1])
		r.group(0, f.Base)
		for range wrappers[:len(wrappers)-1] {
			r.text("}")
		}
	}
	if size != "" {
		r.text("}")
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
