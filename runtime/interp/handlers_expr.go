package interp

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/state"
)

func registerExprCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "push_text", Usage: "push_text TEXT", Summary: "push a text node", Handler: doPushText},
		CommandInfo{Name: "push_command", Usage: "push_command NAME", Summary: "push a zero-argument command such as \\alpha", Handler: doPushCommand},
		CommandInfo{Name: "push_math", Usage: "push_math SOURCE", Summary: "parse and push a math expression", Handler: doPushMath},
		CommandInfo{Name: "placeholder", Usage: "placeholder", Summary: "push an empty slot", Handler: doPlaceholder},
		CommandInfo{Name: "concat", Usage: "concat", Summary: "combine the top n expressions (prefix, default 2)", Handler: doConcat},
		CommandInfo{Name: "infix", Usage: "infix OPERATOR", Summary: "join the top two expressions with an operator", Handler: doInfix},
		CommandInfo{Name: "prefix", Usage: "prefix OPERATOR", Summary: "apply a prefix operator to the top expression", Handler: doPrefix},
		CommandInfo{Name: "postfix", Usage: "postfix OPERATOR", Summary: "apply a postfix operator to the top expression", Handler: doPostfix},
		CommandInfo{Name: "factorial", Usage: "factorial", Summary: "append a factorial sign", Handler: doFactorial},
		CommandInfo{Name: "command", Usage: "command NAME [OPERANDS] [OPTIONS]", Summary: "wrap the top n expressions in a command", Handler: doCommand},
		CommandInfo{Name: "function_call", Usage: "function_call", Summary: "apply the second expression to the top one", Handler: doFunctionCall},
		CommandInfo{Name: "superscript", Usage: "superscript", Summary: "attach the top expression as superscript", Handler: doSuperscript},
		CommandInfo{Name: "subscript", Usage: "subscript", Summary: "attach the top expression as subscript", Handler: doSubscript},
		CommandInfo{Name: "parenthesize", Usage: "parenthesize", Summary: "wrap the top expression in parentheses", Handler: doParenthesize},
		CommandInfo{Name: "delimiters", Usage: "delimiters LEFT RIGHT", Summary: "wrap the top expression in stretchy delimiters", Handler: doDelimiters},
		CommandInfo{Name: "typeface", Usage: "typeface NAME", Summary: "set the typeface of the top expression", Handler: doTypeface},
		CommandInfo{Name: "bold", Usage: "bold", Summary: "toggle bold on the top expression", Handler: doBold},
		CommandInfo{Name: "font_size", Usage: "font_size DELTA", Summary: "grow or shrink the top expression", Handler: doFontSize},
		CommandInfo{Name: "negate_infix", Usage: "negate_infix", Summary: "negate the pivot relation", Handler: doNegateInfix},
		CommandInfo{Name: "swap_infix", Usage: "swap_infix", Summary: "swap both sides of the pivot operator", Handler: doSwapInfix},
		CommandInfo{Name: "extract_side", Usage: "extract_side left|right", Summary: "keep one side of the pivot operator", Handler: doExtractSide},
		CommandInfo{Name: "split_infix", Usage: "split_infix", Summary: "push both sides of the pivot operator", Handler: doSplitInfix},
		CommandInfo{Name: "linebreak", Usage: "linebreak", Summary: "toggle a line break after the pivot operator", Handler: doLinebreak},
		CommandInfo{Name: "array", Usage: "array TYPE ROWS COLUMNS", Summary: "build a matrix from the top ROWS*COLUMNS expressions", Handler: doArray},
		CommandInfo{Name: "array_type", Usage: "array_type TYPE", Summary: "change the environment of the top array", Handler: doArrayType},
		CommandInfo{Name: "transpose", Usage: "transpose", Summary: "transpose the top array", Handler: doTranspose},
	)
}

func requireArgs(c *Context, args []string, n int) error {
	if len(args) < n {
		return errs.InvalidArgument(c.Command(), "expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

// mapTop replaces the top expression with f applied to it.
func mapTop(s *state.Stack, f func(expr.Expr) (expr.Expr, error)) (*state.Stack, error) {
	rest, e, err := s.PopExpr()
	if err != nil {
		return nil, err
	}
	out, err := f(e)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(out), nil
}

func doPushText(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	return s.PushExprs(expr.NewText(strings.Join(args, " "))), nil
}

func doPushCommand(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(args[0], "\\")
	if name == "" {
		return nil, errs.InvalidArgument(c.Command(), "empty command name")
	}
	return s.PushExprs(expr.NewCommand(name)), nil
}

func doPushMath(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	e, err := expr.ParseMath(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	return s.PushExprs(e), nil
}

func doPlaceholder(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return s.PushExprs(expr.NewPlaceholder()), nil
}

func doConcat(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	n := c.GetPrefixArgument(2, s.Len())
	if n < 2 {
		return nil, errs.InvalidArgument(c.Command(), "need at least two expressions")
	}
	rest, exprs, err := s.PopExprs(n)
	if err != nil {
		return nil, err
	}
	result := exprs[0]
	for _, e := range exprs[1:] {
		result = expr.Combine(result, e, c.Autoparenthesize())
	}
	return rest.PushExprs(result), nil
}

func doInfix(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	rest, exprs, err := s.PopExprs(2)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(expr.CombineInfix(exprs[0], exprs[1], expr.OperatorFromName(args[0]))), nil
}

func doPrefix(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.NewPrefix(e, expr.OperatorFromName(args[0])), nil
	})
}

func doPostfix(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.NewPostfix(e, expr.OperatorFromName(args[0])), nil
	})
}

func doFactorial(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.Combine(e, expr.NewText("!"), c.Autoparenthesize()), nil
	})
}

// doCommand pops the operands of \NAME, one by default.
func doCommand(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(args[0], "\\")
	if name == "" {
		return nil, errs.InvalidArgument(c.Command(), "empty command name")
	}
	n := 1
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return nil, errs.InvalidArgument(c.Command(), "bad operand count %q", args[1])
		}
		n = v
	}
	rest, operands, err := s.PopExprs(n)
	if err != nil {
		return nil, err
	}
	cmd := expr.NewCommand(name, operands...)
	if len(args) > 2 {
		cmd = cmd.WithOptions(args[2])
	}
	return rest.PushExprs(cmd), nil
}

func doFunctionCall(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, exprs, err := s.PopExprs(2)
	if err != nil {
		return nil, err
	}
	args := exprs[1]
	if d, ok := args.(*expr.Delimiter); !ok || !d.IsParentheses() {
		args = expr.Parenthesize(args)
	}
	return rest.PushExprs(expr.NewFunctionCall(exprs[0], args)), nil
}

func doSuperscript(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, exprs, err := s.PopExprs(2)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(expr.Superscript(exprs[0], exprs[1])), nil
}

func doSubscript(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, exprs, err := s.PopExprs(2)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(expr.Subscript(exprs[0], exprs[1])), nil
}

func doParenthesize(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.Parenthesize(e), nil
	})
}

func doDelimiters(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 2); err != nil {
		return nil, err
	}
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.NewDelimiter(args[0], args[1], e, false), nil
	})
}

func doTypeface(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	typeface := expr.Typeface(args[0])
	if !slices.Contains(expr.Typefaces, typeface) {
		return nil, errs.InvalidArgument(c.Command(), "unknown typeface %q", args[0])
	}
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.ApplyTypeface(e, typeface), nil
	})
}

func doBold(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.ToggleBold(e), nil
	})
}

func doFontSize(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, errs.InvalidArgument(c.Command(), "bad size step %q", args[0])
	}
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		return expr.AdjustFontSize(e, delta), nil
	})
}

// pivotInfix pops the top infix expression and picks its pivot operator:
// operator n (1-based) with a prefix argument, SplitAtIndex otherwise.
func pivotInfix(c *Context, s *state.Stack) (*state.Stack, *expr.Infix, int, error) {
	rest, e, err := s.PopExpr()
	if err != nil {
		return nil, nil, 0, err
	}
	x, ok := e.(*expr.Infix)
	if !ok {
		return nil, nil, 0, errs.StackType("infix expression")
	}
	i := c.GetPrefixArgument(x.SplitAtIndex+1, len(x.Operators)) - 1
	if i < 0 || i >= len(x.Operators) {
		return nil, nil, 0, errs.InvalidArgument(c.Command(), "no operator %d", i+1)
	}
	return rest, x, i, nil
}

func doNegateInfix(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, x, i, err := pivotInfix(c, s)
	if err != nil {
		return nil, err
	}
	negated, ok := x.NegateAt(i)
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "operator has no negation")
	}
	return rest.PushExprs(negated), nil
}

func doSwapInfix(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, x, i, err := pivotInfix(c, s)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(x.SwapSidesAt(i)), nil
}

func doExtractSide(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	side, ok := expr.ParseSide(args[0])
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "side must be left or right, got %q", args[0])
	}
	rest, x, i, err := pivotInfix(c, s)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(x.ExtractSide(i, side)), nil
}

func doSplitInfix(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, x, i, err := pivotInfix(c, s)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(x.ExtractSide(i, expr.SideLeft), x.ExtractSide(i, expr.SideRight)), nil
}

func doLinebreak(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, x, i, err := pivotInfix(c, s)
	if err != nil {
		return nil, err
	}
	return rest.PushExprs(x.ToggleLinebreakAt(i)), nil
}

func doArray(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 3); err != nil {
		return nil, err
	}
	rows, err1 := strconv.Atoi(args[1])
	cols, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || rows < 1 || cols < 1 {
		return nil, errs.InvalidArgument(c.Command(), "bad shape %sx%s", args[1], args[2])
	}
	rest, elements, err := s.PopExprs(rows * cols)
	if err != nil {
		return nil, err
	}
	grid := make([][]expr.Expr, rows)
	for r := range grid {
		grid[r] = elements[r*cols : (r+1)*cols]
	}
	return rest.PushExprs(expr.NewArray(args[0], grid)), nil
}

func topArray(s *state.Stack, f func(*expr.Array) expr.Expr) (*state.Stack, error) {
	return mapTop(s, func(e expr.Expr) (expr.Expr, error) {
		a, ok := e.(*expr.Array)
		if !ok {
			return nil, errs.StackType("array")
		}
		return f(a), nil
	})
}

func doArrayType(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	return topArray(s, func(a *expr.Array) expr.Expr { return a.WithType(args[0]) })
}

func doTranspose(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	return topArray(s, func(a *expr.Array) expr.Expr { return a.Transpose() })
}
