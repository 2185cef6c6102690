package interp

import (
	"strconv"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

func registerDissectCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "dissect", Usage: "dissect", Summary: "start selecting inside the top expression", Handler: doDissect},
		CommandInfo{Name: "dissect_descend", Usage: "dissect_descend [INDEX]", Summary: "select a child of the selection", Handler: doDissectDescend},
		CommandInfo{Name: "dissect_ascend", Usage: "dissect_ascend", Summary: "select the parent of the selection", Handler: doDissectAscend},
		CommandInfo{Name: "dissect_move", Usage: "dissect_move left|right", Summary: "select a sibling, wrapping around", Handler: doDissectMove},
		CommandInfo{Name: "dissect_copy", Usage: "dissect_copy", Summary: "push a copy of the selection", Handler: doDissectCopy},
		CommandInfo{Name: "dissect_extract", Usage: "dissect_extract", Summary: "cut the selection out, leaving a placeholder", Handler: doDissectExtract},
		CommandInfo{Name: "dissect_replace", Usage: "dissect_replace", Summary: "replace the selection with the floating item", Handler: doDissectReplace},
		CommandInfo{Name: "dissect_finish", Usage: "dissect_finish", Summary: "stop dissecting", Handler: doDissectFinish},
	)
}

// activeDissection returns the dissect path after checking it is still
// anchored at the top stack expression.
func activeDissection(c *Context, s *state.Stack) (expr.Path, error) {
	p, ok := c.DissectPath()
	if !ok {
		return expr.Path{}, errs.InvalidArgument(c.Command(), "not dissecting")
	}
	top, ok := s.Peek(0)
	if ei, isExpr := top.(*state.ExprItem); !ok || !isExpr || ei.Expr != p.Root() {
		return expr.Path{}, errs.InvalidArgument(c.Command(), "the dissected expression is no longer on top")
	}
	return p, nil
}

func doDissect(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	_, e, err := s.PopExpr()
	if err != nil {
		return nil, err
	}
	if len(e.Subexpressions()) == 0 {
		return nil, errs.InvalidArgument(c.Command(), "%s has no parts", e.Kind())
	}
	c.EndTextEntry()
	c.SetDissectPath(expr.NewPath(e))
	return s, nil
}

func doDissectDescend(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	i := 0
	if len(args) > 0 {
		if i, err = strconv.Atoi(args[0]); err != nil {
			return nil, errs.InvalidArgument(c.Command(), "bad child index %q", args[0])
		}
	}
	if !p.CanDescend(i) {
		// A leaf stays selected.
		if i == 0 {
			c.SetDissectPath(p)
			return s, nil
		}
		return nil, errs.InvalidArgument(c.Command(), "no child %d", i)
	}
	c.SetDissectPath(p.Descend(i))
	return s, nil
}

func doDissectAscend(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	if p.Depth() > 0 {
		p = p.Ascend()
	}
	c.SetDissectPath(p)
	return s, nil
}

func doDissectMove(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	switch args[0] {
	case "left":
		p = p.Move(-1)
	case "right":
		p = p.Move(1)
	default:
		return nil, errs.InvalidArgument(c.Command(), "unknown direction %q", args[0])
	}
	c.SetDissectPath(p)
	return s, nil
}

func doDissectCopy(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	c.EndDissect()
	return s.PushExprs(p.Selected()), nil
}

func doDissectExtract(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	rest, _, err := s.Pop(1)
	if err != nil {
		return nil, err
	}
	root, extracted := p.ExtractSelection()
	c.EndDissect()
	return rest.PushExprs(root, extracted), nil
}

// doDissectReplace puts the floating expression in place of the selection
// and keeps dissecting the new tree at the same position.
func doDissectReplace(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	p, err := activeDissection(c, s)
	if err != nil {
		return nil, err
	}
	floating, ok := s.Floating().(*state.ExprItem)
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "float an expression first")
	}
	rest, _, err := s.Pop(1)
	if err != nil {
		return nil, err
	}
	root := p.ReplaceSelection(floating.Expr)
	c.SetDissectPath(expr.PathOf(root, p.Indices()...))
	return rest.WithFloating(nil).PushExprs(root), nil
}

func doDissectFinish(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	c.EndDissect()
	c.RequestMode(ModeBase)
	return s, nil
}
