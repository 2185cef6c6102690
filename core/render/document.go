package render

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/texstack/core/state"
)

// textEscapes are the characters that must be escaped in LaTeX prose.
var textEscapes = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\^{}`,
	`~`, `\~{}`,
)

// Item renders a single stack or document item. Expression items render as
// bare math, text items as prose with inline $...$ math, code items
// verbatim.
func Item(item state.Item) string {
	switch it := item.(type) {
	case *state.ExprItem:
		latex := Expr(it.Expr)
		if it.Tag() != "" {
			latex += ` \tag{` + it.Tag() + `}`
		}
		return latex
	case *state.TextItem:
		return textItem(it)
	case *state.CodeItem:
		return it.Source
	}
	return fmt.Sprintf("(unknown item %T)", item)
}

func textItem(it *state.TextItem) string {
	var b strings.Builder
	for _, e := range it.Elements {
		if e.IsMath() {
			b.WriteString("$" + Expr(e.Math) + "$")
			continue
		}
		run := textEscapes.Replace(e.Text)
		if e.Bold {
			run = `\textbf{` + run + `}`
		}
		if e.Italic {
			run = `\textit{` + run + `}`
		}
		b.WriteString(run)
	}
	if it.Heading {
		return `\section*{` + b.String() + `}`
	}
	return b.String()
}

// Document renders every item of d as a LaTeX body: display math for
// expressions, paragraphs for text, verbatim blocks for code.
func Document(d *state.Document) string {
	parts := make([]string, 0, d.Len())
	for _, item := range d.Items() {
		switch it := item.(type) {
		case *state.ExprItem:
			parts = append(parts, `\[ `+Item(it)+` \]`)
		case *state.CodeItem:
			parts = append(parts, "\\begin{verbatim}\n"+it.Source+"\n\\end{verbatim}")
		default:
			parts = append(parts, Item(it))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Standalone wraps Document in a minimal compilable LaTeX file.
func Standalone(d *state.Document) string {
	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage{amsmath,amssymb,mathrsfs}\n")
	b.WriteString("\\begin{document}\n\n")
	if body := Document(d); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString("\\end{document}\n")
	return b.String()
}
