package docfmt

import (
	"fmt"
	"slices"

	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

// wireExpr is the encoded form of an expression node. Children holds the
// node's subexpressions in expr order, except for infix (operands only, with
// operators separate) and subscript/superscript (base only, with Sub and Sup
// separate).
type wireExpr struct {
	Kind       string      `cbor:"k"`
	Text       string      `cbor:"t,omitempty"`
	Right      string      `cbor:"r,omitempty"`
	Options    string      `cbor:"o,omitempty"`
	Typeface   string      `cbor:"f,omitempty"`
	Bold       bool        `cbor:"b,omitempty"`
	Size       int         `cbor:"s,omitempty"`
	Flag       bool        `cbor:"x,omitempty"` // fused sequence, fixed delimiter
	Split      int         `cbor:"p,omitempty"`
	Linebreaks []int       `cbor:"l,omitempty"`
	Columns    int         `cbor:"c,omitempty"`
	Children   []*wireExpr `cbor:"ch,omitempty"`
	Operators  []*wireExpr `cbor:"op,omitempty"`
	Sub        *wireExpr   `cbor:"sb,omitempty"`
	Sup        *wireExpr   `cbor:"sp,omitempty"`
}

type wireElement struct {
	Text   string    `cbor:"t,omitempty"`
	Math   *wireExpr `cbor:"m,omitempty"`
	Bold   bool      `cbor:"b,omitempty"`
	Italic bool      `cbor:"i,omitempty"`
}

type wireItem struct {
	Kind     string        `cbor:"k"`
	Tag      string        `cbor:"g,omitempty"`
	Expr     *wireExpr     `cbor:"e,omitempty"`
	Elements []wireElement `cbor:"el,omitempty"`
	Heading  bool          `cbor:"h,omitempty"`
	Language string        `cbor:"lang,omitempty"`
	Source   string        `cbor:"src,omitempty"`
}

type wireBody struct {
	Stack     []wireItem `cbor:"stack"`
	Floating  *wireItem  `cbor:"floating,omitempty"`
	Document  []wireItem `cbor:"document"`
	Selection int        `cbor:"selection"`
}

func toWireBody(s *state.AppState) (*wireBody, error) {
	body := &wireBody{Selection: s.Document.SelectionIndex()}
	var err error
	if body.Stack, err = toWireItems(s.Stack.Items()); err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	if body.Document, err = toWireItems(s.Document.Items()); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if f := s.Stack.Floating(); f != nil {
		w, err := toWireItem(f)
		if err != nil {
			return nil, fmt.Errorf("floating: %w", err)
		}
		body.Floating = &w
	}
	return body, nil
}

func toWireItems(items []state.Item) ([]wireItem, error) {
	out := make([]wireItem, len(items))
	for i, item := range items {
		w, err := toWireItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}

func toWireItem(item state.Item) (wireItem, error) {
	switch it := item.(type) {
	case *state.ExprItem:
		return wireItem{Kind: "expr", Tag: it.Tag(), Expr: toWireExpr(it.Expr)}, nil
	case *state.TextItem:
		elements := make([]wireElement, len(it.Elements))
		for i, e := range it.Elements {
			elements[i] = wireElement{Text: e.Text, Bold: e.Bold, Italic: e.Italic}
			if e.IsMath() {
				elements[i].Math = toWireExpr(e.Math)
			}
		}
		return wireItem{Kind: "text", Tag: it.Tag(), Elements: elements, Heading: it.Heading}, nil
	case *state.CodeItem:
		return wireItem{Kind: "code", Tag: it.Tag(), Language: it.Language, Source: it.Source}, nil
	}
	return wireItem{}, fmt.Errorf("unknown item type: %T", item)
}

func toWireExprs(exprs []expr.Expr) []*wireExpr {
	out := make([]*wireExpr, len(exprs))
	for i, e := range exprs {
		out[i] = toWireExpr(e)
	}
	return out
}

func toWireExpr(e expr.Expr) *wireExpr {
	w := &wireExpr{Kind: e.Kind().String()}
	switch x := e.(type) {
	case *expr.Text:
		w.Text = x.Text
	case *expr.Command:
		w.Text = x.Name
		w.Options = x.Options
		w.Children = toWireExprs(x.Operands)
	case *expr.Font:
		w.Typeface = string(x.Typeface)
		w.Bold = x.Bold
		w.Size = x.Size
		w.Children = toWireExprs([]expr.Expr{x.Base})
	case *expr.Infix:
		w.Children = toWireExprs(x.Operands)
		w.Operators = toWireExprs(x.Operators)
		w.Split = x.SplitAtIndex
		w.Linebreaks = x.LinebreaksAt
	case *expr.Sequence:
		w.Flag = x.Fused
		w.Children = toWireExprs(x.Exprs)
	case *expr.Delimiter:
		w.Text = x.Left
		w.Right = x.Right
		w.Flag = x.Fixed
		w.Children = toWireExprs([]expr.Expr{x.Inner})
	case *expr.SubSup:
		w.Children = toWireExprs([]expr.Expr{x.Base})
		if x.Sub != nil {
			w.Sub = toWireExpr(x.Sub)
		}
		if x.Sup != nil {
			w.Sup = toWireExpr(x.Sup)
		}
	case *expr.Array:
		w.Text = x.Type
		w.Columns = x.ColumnCount
		w.Children = toWireExprs(x.Subexpressions())
	case *expr.Placeholder:
		w.Text = x.Hint
	case *expr.Prefix, *expr.Postfix, *expr.FunctionCall:
		w.Children = toWireExprs(e.Subexpressions())
	}
	return w
}

func fromWireBody(body *wireBody, maxDepth int) (*state.AppState, error) {
	stackItems, err := fromWireItems(body.Stack, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	docItems, err := fromWireItems(body.Document, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if body.Selection < 0 || body.Selection > len(docItems) {
		return nil, fmt.Errorf("selection %d out of range [0, %d]", body.Selection, len(docItems))
	}

	stack := state.NewStack(stackItems...)
	if body.Floating != nil {
		f, err := fromWireItem(*body.Floating, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("floating: %w", err)
		}
		stack = stack.WithFloating(f)
	}
	doc := state.NewDocument(docItems...).WithSelection(body.Selection)
	return &state.AppState{Stack: stack, Document: doc}, nil
}

func fromWireItems(items []wireItem, maxDepth int) ([]state.Item, error) {
	out := make([]state.Item, len(items))
	for i, w := range items {
		item, err := fromWireItem(w, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func fromWireItem(w wireItem, maxDepth int) (state.Item, error) {
	var item state.Item
	switch w.Kind {
	case "expr":
		if w.Expr == nil {
			return nil, fmt.Errorf("expression item without expression")
		}
		e, err := fromWireExpr(w.Expr, maxDepth)
		if err != nil {
			return nil, err
		}
		item = state.NewExprItem(e)
	case "text":
		elements := make([]state.TextElement, len(w.Elements))
		for i, we := range w.Elements {
			elements[i] = state.TextElement{Text: we.Text, Bold: we.Bold, Italic: we.Italic}
			if we.Math != nil {
				e, err := fromWireExpr(we.Math, maxDepth)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				elements[i].Math = e
			}
		}
		item = state.NewTextItem(elements, w.Heading)
	case "code":
		item = state.NewCodeItem(w.Language, w.Source)
	default:
		return nil, fmt.Errorf("unknown item kind %q", w.Kind)
	}
	if w.Tag != "" {
		item = item.WithTag(w.Tag)
	}
	return item, nil
}

func fromWireExprs(ws []*wireExpr, depth int) ([]expr.Expr, error) {
	out := make([]expr.Expr, len(ws))
	for i, w := range ws {
		e, err := fromWireExpr(w, depth)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// fromWireExpr rebuilds an expression, validating shape before calling the
// expr constructors so that corrupt input is an error rather than a panic.
func fromWireExpr(w *wireExpr, depth int) (expr.Expr, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("expression nesting too deep")
	}
	if w == nil {
		return nil, fmt.Errorf("missing expression")
	}
	children, err := fromWireExprs(w.Children, depth-1)
	if err != nil {
		return nil, err
	}
	need := func(n int) error {
		if len(children) != n {
			return fmt.Errorf("%s: expected %d children, got %d", w.Kind, n, len(children))
		}
		return nil
	}

	switch w.Kind {
	case "text":
		return expr.NewText(w.Text), nil

	case "command":
		if w.Text == "" {
			return nil, fmt.Errorf("command without name")
		}
		cmd := expr.NewCommand(w.Text, children...)
		if w.Options != "" {
			cmd = cmd.WithOptions(w.Options)
		}
		return cmd, nil

	case "font":
		if err := need(1); err != nil {
			return nil, err
		}
		if w.Size < expr.MinFontSize || w.Size > expr.MaxFontSize {
			return nil, fmt.Errorf("font size %d out of range", w.Size)
		}
		if w.Typeface != "" && !slices.Contains(expr.Typefaces, expr.Typeface(w.Typeface)) {
			return nil, fmt.Errorf("unknown typeface %q", w.Typeface)
		}
		return expr.NewFont(children[0], expr.Typeface(w.Typeface), w.Bold, w.Size), nil

	case "infix":
		operators, err := fromWireExprs(w.Operators, depth-1)
		if err != nil {
			return nil, err
		}
		if len(children) < 2 || len(operators) != len(children)-1 {
			return nil, fmt.Errorf("infix: %d operands with %d operators", len(children), len(operators))
		}
		if w.Split < 0 || w.Split >= len(operators) {
			return nil, fmt.Errorf("infix: split index %d out of range", w.Split)
		}
		for _, lb := range w.Linebreaks {
			if lb < 1 || lb >= len(children) {
				return nil, fmt.Errorf("infix: linebreak %d out of range", lb)
			}
		}
		return expr.NewInfix(children, operators, w.Split, w.Linebreaks), nil

	case "prefix":
		if err := need(2); err != nil {
			return nil, err
		}
		return expr.NewPrefix(children[1], children[0]), nil

	case "postfix":
		if err := need(2); err != nil {
			return nil, err
		}
		return expr.NewPostfix(children[0], children[1]), nil

	case "sequence":
		return expr.NewSequence(children, w.Flag), nil

	case "delimiter":
		if err := need(1); err != nil {
			return nil, err
		}
		if w.Text == "" || w.Right == "" {
			return nil, fmt.Errorf("delimiter without symbols")
		}
		return expr.NewDelimiter(w.Text, w.Right, children[0], w.Flag), nil

	case "subscriptsuperscript":
		if err := need(1); err != nil {
			return nil, err
		}
		var sub, sup expr.Expr
		if w.Sub != nil {
			if sub, err = fromWireExpr(w.Sub, depth-1); err != nil {
				return nil, err
			}
		}
		if w.Sup != nil {
			if sup, err = fromWireExpr(w.Sup, depth-1); err != nil {
				return nil, err
			}
		}
		return expr.NewSubSup(children[0], sub, sup), nil

	case "array":
		if w.Text == "" || w.Columns <= 0 || len(children) == 0 || len(children)%w.Columns != 0 {
			return nil, fmt.Errorf("array: %d elements do not fill %d columns", len(children), w.Columns)
		}
		rows := make([][]expr.Expr, 0, len(children)/w.Columns)
		for i := 0; i < len(children); i += w.Columns {
			rows = append(rows, children[i:i+w.Columns])
		}
		return expr.NewArray(w.Text, rows), nil

	case "placeholder":
		return &expr.Placeholder{Hint: w.Text}, nil

	case "function_call":
		if err := need(2); err != nil {
			return nil, err
		}
		return expr.NewFunctionCall(children[0], children[1]), nil
	}
	return nil, fmt.Errorf("unknown expression kind %q", w.Kind)
}
