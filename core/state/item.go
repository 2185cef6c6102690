// Package state holds the persistent collections the interpreter operates
// on: items, the stack, the document, whole application states and their
// undo history.
//
// Stacks and documents are never modified in place. Every operation returns
// a new value that shares its unchanged parts with the old one, so whether
// anything changed is answered by comparing pointers.
package state

import (
	"strings"
	"sync/atomic"

	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/invariant"
)

// Counter hands out item serial numbers.
type Counter struct {
	n atomic.Int64
}

// Next returns the next serial number, starting at 1.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

var serials = &Counter{}

// UseCounter makes c the source of new serial numbers and returns a function
// restoring the previous source. Intended for tests.
func UseCounter(c *Counter) (restore func()) {
	invariant.NotNil(c, "counter")
	prev := serials
	serials = c
	return func() { serials = prev }
}

// Item is an entry of the stack or the document.
//
// The serial number distinguishes otherwise identical items (for example two
// copies produced by dup) and plays no part in equality.
type Item interface {
	Serial() int64
	Tag() string
	// Clone returns a copy of the item with a new serial number.
	Clone() Item
	// WithTag returns a copy carrying tag; an empty tag removes it.
	WithTag(tag string) Item
	sealed()
}

type itemHeader struct {
	serial int64
	tag    string
}

func newHeader(tag string) itemHeader {
	return itemHeader{serial: serials.Next(), tag: tag}
}

func (h itemHeader) Serial() int64 { return h.serial }
func (h itemHeader) Tag() string   { return h.tag }

// ExprItem wraps an expression.
type ExprItem struct {
	itemHeader
	Expr expr.Expr
}

// NewExprItem wraps e in a new item.
func NewExprItem(e expr.Expr) *ExprItem {
	invariant.NotNil(e, "expr")
	return &ExprItem{itemHeader: newHeader(""), Expr: e}
}

func (i *ExprItem) Clone() Item {
	return &ExprItem{itemHeader: newHeader(i.tag), Expr: i.Expr}
}

func (i *ExprItem) WithTag(tag string) Item {
	return &ExprItem{itemHeader: newHeader(tag), Expr: i.Expr}
}

func (*ExprItem) sealed() {}

// TextElement is one run of a text item: either plain text or inline math.
type TextElement struct {
	Text   string
	Math   expr.Expr
	Bold   bool
	Italic bool
}

// IsMath reports whether the element holds inline math.
func (e TextElement) IsMath() bool { return e.Math != nil }

// TextItem is prose interleaved with inline math, optionally a heading.
type TextItem struct {
	itemHeader
	Elements []TextElement
	Heading  bool
}

// NewTextItem creates a text item from its runs.
func NewTextItem(elements []TextElement, heading bool) *TextItem {
	return &TextItem{itemHeader: newHeader(""), Elements: append([]TextElement(nil), elements...), Heading: heading}
}

// ParseTextItem splits s on '$' into alternating prose and math runs; the
// math runs are parsed with expr.ParseMath.
func ParseTextItem(s string, heading bool) (*TextItem, error) {
	var elements []TextElement
	for i, part := range strings.Split(s, "$") {
		if part == "" {
			continue
		}
		if i%2 == 0 {
			elements = append(elements, TextElement{Text: part})
			continue
		}
		e, err := expr.ParseMath(part)
		if err != nil {
			return nil, err
		}
		elements = append(elements, TextElement{Math: e})
	}
	return NewTextItem(elements, heading), nil
}

// IsEmpty reports whether the item has no visible content.
func (i *TextItem) IsEmpty() bool {
	for _, e := range i.Elements {
		if e.IsMath() || strings.TrimSpace(e.Text) != "" {
			return false
		}
	}
	return true
}

func (i *TextItem) Clone() Item {
	return &TextItem{itemHeader: newHeader(i.tag), Elements: i.Elements, Heading: i.Heading}
}

func (i *TextItem) WithTag(tag string) Item {
	return &TextItem{itemHeader: newHeader(tag), Elements: i.Elements, Heading: i.Heading}
}

func (*TextItem) sealed() {}

// CodeItem is an opaque block of source, kept verbatim.
type CodeItem struct {
	itemHeader
	Language string
	Source   string
}

// NewCodeItem creates a code item.
func NewCodeItem(language, source string) *CodeItem {
	return &CodeItem{itemHeader: newHeader(""), Language: language, Source: source}
}

func (i *CodeItem) Clone() Item {
	return &CodeItem{itemHeader: newHeader(i.tag), Language: i.Language, Source: i.Source}
}

func (i *CodeItem) WithTag(tag string) Item {
	return &CodeItem{itemHeader: newHeader(tag), Language: i.Language, Source: i.Source}
}

func (*CodeItem) sealed() {}
