package interp

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

func registerStackCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "dup", Usage: "dup", Summary: "copy the top n items (prefix, default 1)", Handler: doDup},
		CommandInfo{Name: "drop", Usage: "drop", Summary: "remove the top n items (prefix, default 1)", Handler: doDrop},
		CommandInfo{Name: "swap", Usage: "swap", Summary: "exchange the top two items", Handler: doSwap},
		CommandInfo{Name: "rot", Usage: "rot", Summary: "move the third item to the top", Handler: doRot},
		CommandInfo{Name: "over", Usage: "over", Summary: "copy the second item to the top", Handler: doOver},
		CommandInfo{Name: "nip", Usage: "nip", Summary: "remove the second item", Handler: doNip},
		CommandInfo{Name: "pick", Usage: "pick", Summary: "copy the nth item to the top (prefix required)", Handler: doPick},
		CommandInfo{Name: "clear_stack", Usage: "clear_stack", Summary: "remove every stack item", Handler: doClearStack},
		CommandInfo{Name: "float", Usage: "float", Summary: "move the top item into the floating slot", Handler: doFloat},
		CommandInfo{Name: "unfloat", Usage: "unfloat", Summary: "push the floating item back", Handler: doUnfloat},
		CommandInfo{Name: "undo", Usage: "undo", Summary: "restore the previous state", Handler: doUndo},
		CommandInfo{Name: "redo", Usage: "redo", Summary: "restore an undone state", Handler: doRedo},
		CommandInfo{Name: "tag", Usage: "tag TEXT", Summary: "label the top item", Handler: doTag},
		CommandInfo{Name: "untag", Usage: "untag", Summary: "remove the label of the top item", Handler: doUntag},
		CommandInfo{Name: "rationalize", Usage: "rationalize", Summary: "replace a numeric value by an exact form", Handler: doRationalize},
		CommandInfo{Name: "evaluate", Usage: "evaluate [NAME=VALUE...]", Summary: "evaluate the top expression numerically", Handler: doEvaluate},
		CommandInfo{Name: "dissolve", Usage: "dissolve", Summary: "break the top expression into its parts", Handler: doDissolve},
	)
}

func doDup(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	n := c.GetPrefixArgument(1, s.Len())
	_, items, err := s.Pop(n)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		items[i] = item.Clone()
	}
	return s.Push(items...), nil
}

func doDrop(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, _, err := s.Pop(c.GetPrefixArgument(1, s.Len()))
	return rest, err
}

func doSwap(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(2)
	if err != nil {
		return nil, err
	}
	return rest.Push(items[1], items[0]), nil
}

func doRot(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(3)
	if err != nil {
		return nil, err
	}
	return rest.Push(items[1], items[2], items[0]), nil
}

func doOver(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	item, ok := s.Peek(1)
	if !ok {
		return nil, errs.StackUnderflow(2, s.Len())
	}
	return s.Push(item.Clone()), nil
}

func doNip(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(2)
	if err != nil {
		return nil, err
	}
	return rest.Push(items[1]), nil
}

func doPick(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	n, _, err := c.RequirePrefixArgument(false)
	if err != nil {
		return nil, err
	}
	item, ok := s.Peek(n - 1)
	if !ok {
		return nil, errs.StackUnderflow(n, s.Len())
	}
	return s.Push(item.Clone()), nil
}

func doClearStack(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	if s.Len() == 0 {
		return s, nil
	}
	return state.NewStack().WithFloating(s.Floating()), nil
}

// doFloat moves the top item into the floating slot. An item already
// floating takes its place on the stack.
func doFloat(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(1)
	if err != nil {
		return nil, err
	}
	if f := s.Floating(); f != nil {
		rest = rest.Push(f)
	}
	return rest.WithFloating(items[0]), nil
}

func doUnfloat(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	f := s.Floating()
	if f == nil {
		return nil, errs.InvalidArgument(c.Command(), "nothing is floating")
	}
	return s.WithFloating(nil).Push(f), nil
}

func doUndo(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return moveUndo(c, s, 1, "nothing to undo")
}

func doRedo(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return moveUndo(c, s, -1, "nothing to redo")
}

func moveUndo(c *Context, s *state.Stack, n int, none string) (*state.Stack, error) {
	count := c.GetPrefixArgument(1, state.DefaultUndoDepth)
	var target *state.AppState
	for ; count > 0; count-- {
		next := c.MoveUndo(n)
		if next == nil {
			break
		}
		target = next
	}
	if target == nil {
		c.Notify(none)
		c.SuppressUndo()
		return s, nil
	}
	return target.Stack, nil
}

func doTag(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if len(args) == 0 {
		return nil, errs.InvalidArgument(c.Command(), "missing tag text")
	}
	rest, items, err := s.Pop(1)
	if err != nil {
		return nil, err
	}
	return rest.Push(items[0].WithTag(strings.Join(args, " "))), nil
}

func doUntag(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(1)
	if err != nil {
		return nil, err
	}
	return rest.Push(items[0].WithTag("")), nil
}

func doRationalize(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, e, err := s.PopExpr()
	if err != nil {
		return nil, err
	}
	value, ok := expr.Evaluate(e, nil)
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "expression has no numeric value")
	}
	exact := expr.Rationalize(value)
	if exact == nil {
		return nil, errs.InvalidArgument(c.Command(), "no exact form found for %s", formatNumber(value))
	}
	return rest.PushExprs(exact), nil
}

// doEvaluate replaces the top expression by its value. Arguments of the
// form name=value assign variables.
func doEvaluate(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	assignments := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, errs.InvalidArgument(c.Command(), "expected NAME=VALUE, got %q", arg)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errs.InvalidArgument(c.Command(), "bad value for %s: %q", name, raw)
		}
		assignments[name] = v
	}

	rest, e, err := s.PopExpr()
	if err != nil {
		return nil, err
	}
	value, ok := expr.Evaluate(e, assignments)
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "expression has no numeric value")
	}
	c.Notify(formatNumber(value))
	return rest.PushExprs(numberExpr(value)), nil
}

func doDissolve(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, e, err := s.PopExpr()
	if err != nil {
		return nil, err
	}
	parts := expr.Dissolve(e)
	if len(parts) == 0 {
		return nil, errs.InvalidArgument(c.Command(), "%s cannot be dissolved", e.Kind())
	}
	return rest.PushExprs(parts...), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// numberExpr writes v as text, negatives as a prefix minus.
func numberExpr(v float64) expr.Expr {
	if v < 0 {
		return expr.NewPrefix(expr.NewText(formatNumber(-v)), expr.NewText("-"))
	}
	return expr.NewText(formatNumber(v))
}
