package interp

import (
	"strings"
	"unicode"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/render"
	"github.com/aledsdavies/texstack/core/state"
)

func registerEntryCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "start_entry", Usage: "start_entry KIND", Summary: "open the line editor", Handler: doStartEntry},
		CommandInfo{Name: "edit_item", Usage: "edit_item", Summary: "re-open the top text or expression in the line editor", Handler: doEditItem},
		CommandInfo{Name: "text_entry_char", Usage: "text_entry_char C", Summary: "type at the cursor", Handler: doTextEntryChar},
		CommandInfo{Name: "text_entry_backspace", Usage: "text_entry_backspace", Summary: "delete before the cursor; cancels when empty", Handler: doTextEntryBackspace},
		CommandInfo{Name: "text_entry_delete", Usage: "text_entry_delete", Summary: "delete under the cursor", Handler: doTextEntryDelete},
		CommandInfo{Name: "text_entry_move", Usage: "text_entry_move left|right|home|end", Summary: "move the cursor", Handler: doTextEntryMove},
		CommandInfo{Name: "text_entry_cancel", Usage: "text_entry_cancel", Summary: "abandon the entry", Handler: doTextEntryCancel},
		CommandInfo{Name: "finish_text_entry", Usage: "finish_text_entry [text|heading|math|latex|conjunction|tag]", Summary: "commit the entry", Handler: doFinishTextEntry},
	)
}

// defaultFinish maps an entry kind to the result it produces.
var defaultFinish = map[Mode]string{
	ModeTextEntry:        "text",
	ModeMathEntry:        "math",
	ModeLatexEntry:       "latex",
	ModeConjunctionEntry: "conjunction",
	ModeTagEntry:         "tag",
}

func activeEntry(c *Context) (TextEntryState, error) {
	t, ok := c.TextEntry()
	if !ok {
		return TextEntryState{}, errs.InvalidArgument(c.Command(), "no entry in progress")
	}
	return t, nil
}

func doStartEntry(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	kind, ok := ParseMode(args[0])
	if !ok || !kind.IsEntry() {
		return nil, errs.InvalidArgument(c.Command(), "%q is not an entry mode", args[0])
	}
	c.EndDissect()
	c.SetTextEntry(NewTextEntry(kind))
	return s, nil
}

// doEditItem opens the top item in the line editor. The item stays on the
// stack until the entry is finished.
func doEditItem(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	item, ok := s.Peek(0)
	if !ok {
		return nil, errs.StackUnderflow(1, 0)
	}

	var t TextEntryState
	switch it := item.(type) {
	case *state.TextItem:
		source, ok := textSource(it)
		if !ok {
			return nil, errs.StackType("text whose math can be retyped")
		}
		t = NewTextEntry(ModeTextEntry).Insert(source)
	case *state.ExprItem:
		var ok bool
		if t, ok = exprEntry(it.Expr); !ok {
			return nil, errs.StackType("expression that can be retyped")
		}
	default:
		return nil, errs.StackType("text or expression")
	}
	t.Editing = item
	c.SetTextEntry(t)
	return s, nil
}

// exprEntry opens the line editor on e. A symbol such as \alpha is edited by
// name in LaTeX entry; anything else in math entry, and only when its
// rendering parses back to an equal tree. Finishing an unchanged edit must
// not change the expression.
func exprEntry(e expr.Expr) (TextEntryState, bool) {
	if cmd, ok := e.(*expr.Command); ok && cmd.IsZeroArg() && cmd.Options == "" && isLetters(cmd.Name) {
		return NewTextEntry(ModeLatexEntry).Insert(cmd.Name), true
	}
	source, ok := mathSource(e)
	if !ok {
		return TextEntryState{}, false
	}
	return NewTextEntry(ModeMathEntry).Insert(source), true
}

// mathSource renders e for math entry, reporting false when the rendering
// would not parse back to e.
func mathSource(e expr.Expr) (string, bool) {
	source := render.Expr(e)
	parsed, err := expr.ParseMath(source)
	if err != nil || !expr.Equal(parsed, e) {
		return "", false
	}
	return source, true
}

// textSource writes a text item back in entry syntax, math between '$'.
func textSource(it *state.TextItem) (string, bool) {
	var b strings.Builder
	for _, e := range it.Elements {
		if e.IsMath() {
			source, ok := mathSource(e.Math)
			if !ok {
				return "", false
			}
			b.WriteString("$" + source + "$")
			continue
		}
		b.WriteString(e.Text)
	}
	return b.String(), true
}

func isLetters(s string) bool {
	for _, r := range s {
		if r >= unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// doTextEntryChar types its argument. A backslash typed first in math
// entry switches to LaTeX command entry instead.
func doTextEntryChar(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	t, err := activeEntry(c)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	text := strings.Join(args, " ")
	if t.Kind == ModeMathEntry && t.IsEmpty() && text == "\\" {
		c.SetTextEntry(t.WithKind(ModeLatexEntry))
		return s, nil
	}
	c.SetTextEntry(t.Insert(text))
	return s, nil
}

func doTextEntryBackspace(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	t, err := activeEntry(c)
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return doTextEntryCancel(c, s)
	}
	c.SetTextEntry(t.Backspace())
	return s, nil
}

func doTextEntryDelete(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	t, err := activeEntry(c)
	if err != nil {
		return nil, err
	}
	c.SetTextEntry(t.Delete())
	return s, nil
}

func doTextEntryMove(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	t, err := activeEntry(c)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	switch args[0] {
	case "left":
		t = t.MoveCursor(-1)
	case "right":
		t = t.MoveCursor(1)
	case "home":
		t = t.Home()
	case "end":
		t = t.End()
	default:
		return nil, errs.InvalidArgument(c.Command(), "unknown direction %q", args[0])
	}
	c.SetTextEntry(t)
	return s, nil
}

// doTextEntryCancel leaves the editor. An item being edited was never
// taken off the stack, so it is back unchanged.
func doTextEntryCancel(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	c.EndTextEntry()
	c.RequestMode(ModeBase)
	return s, nil
}

func doFinishTextEntry(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	t, err := activeEntry(c)
	if err != nil {
		return nil, err
	}
	variant := defaultFinish[t.Kind]
	if len(args) > 0 {
		variant = args[0]
	}
	text := t.String()
	if strings.TrimSpace(text) == "" {
		return doTextEntryCancel(c, s)
	}

	if t.Editing != nil {
		if top, ok := s.Peek(0); ok && top.Serial() == t.Editing.Serial() {
			s, _, _ = s.Pop(1)
		}
	}

	var next *state.Stack
	switch variant {
	case "text", "heading":
		item, err := state.ParseTextItem(text, variant == "heading")
		if err != nil {
			return nil, err
		}
		next = s.Push(item)

	case "math":
		e, err := expr.ParseMath(text)
		if err != nil {
			return nil, err
		}
		next = s.PushExprs(e)

	case "latex":
		name := strings.TrimPrefix(text, "\\")
		next = s.PushExprs(expr.NewCommand(name))

	case "conjunction":
		rest, exprs, err := s.PopExprs(2)
		if err != nil {
			return nil, err
		}
		op := expr.NewCommand("text", expr.NewText(" "+strings.TrimSpace(text)+" "))
		next = rest.PushExprs(expr.CombineInfix(exprs[0], exprs[1], op))

	case "tag":
		rest, items, err := s.Pop(1)
		if err != nil {
			return nil, err
		}
		next = rest.Push(items[0].WithTag(text))

	default:
		return nil, errs.InvalidArgument(c.Command(), "unknown entry result %q", variant)
	}

	c.EndTextEntry()
	c.RequestMode(ModeBase)
	return next, nil
}
