package engine

import (
	"errors"
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
)

// symbolCommands are zero-argument commands the engine understands as
// symbols or constants.
var symbolCommands = map[string]string{
	"pi":         "pi",
	"infty":      "oo",
	"alpha":      "alpha",
	"beta":       "beta",
	"gamma":      "gamma",
	"delta":      "delta",
	"epsilon":    "epsilon",
	"zeta":       "zeta",
	"eta":        "eta",
	"theta":      "theta",
	"kappa":      "kappa",
	"lambda":     "lambda",
	"mu":         "mu",
	"nu":         "nu",
	"xi":         "xi",
	"rho":        "rho",
	"sigma":      "sigma",
	"tau":        "tau",
	"phi":        "phi",
	"chi":        "chi",
	"psi":        "psi",
	"omega":      "omega",
	"Gamma":      "Gamma",
	"Delta":      "Delta",
	"Theta":      "Theta",
	"Lambda":     "Lambda",
	"Sigma":      "Sigma",
	"Phi":        "Phi",
	"Psi":        "Psi",
	"Omega":      "Omega",
	"varphi":     "phi",
	"varepsilon": "epsilon",
}

// engineFunctions are the function names passed through unchanged.
var engineFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sec": true, "csc": true, "cot": true,
	"arcsin": true, "arccos": true, "arctan": true,
	"sinh": true, "cosh": true, "tanh": true,
	"exp": true, "ln": true, "log": true,
}

var engineOperators = map[string]string{
	"+":       "+",
	"-":       "-",
	"*":       "*",
	"/":       "/",
	"\\cdot":  "*",
	"\\times": "*",
	"\\div":   "/",
}

// ToEngineInput converts e into the engine's input syntax, for example
// \frac{x^2}{2} becomes ((x)**(2))/(2). Anything without an engine
// equivalent fails with an ENGINE_CONVERSION error whose "expr" context
// holds the offending subexpression.
func ToEngineInput(e expr.Expr) (string, error) {
	switch x := e.(type) {
	case *expr.Text:
		if x.LooksLikeNumber() {
			return x.Text, nil
		}
		if isIdentifier(x.Text) {
			return x.Text, nil
		}
		return "", conversionError(e, "text %q is not a number or variable", x.Text)

	case *expr.Command:
		return commandInput(x)

	case *expr.Font:
		return ToEngineInput(x.Base)

	case *expr.Infix:
		return infixInput(x)

	case *expr.Prefix:
		base, err := ToEngineInput(x.Base)
		if err != nil {
			return "", err
		}
		switch opName(x.Operator) {
		case "-":
			return "(-(" + base + "))", nil
		case "+":
			return base, nil
		}
		return "", conversionError(e, "unsupported prefix operator")

	case *expr.Postfix:
		n := x.FactorialCount()
		if n == 0 {
			return "", conversionError(e, "unsupported postfix operator")
		}
		base, err := ToEngineInput(x.Base)
		if err != nil {
			return "", err
		}
		if n == 2 {
			return "factorial2(" + base + ")", nil
		}
		for i := 0; i < n; i++ {
			base = "factorial(" + base + ")"
		}
		return base, nil

	case *expr.Sequence:
		if len(x.Exprs) == 0 {
			return "", conversionError(e, "empty sequence")
		}
		factors := make([]string, len(x.Exprs))
		for i, sub := range x.Exprs {
			f, err := ToEngineInput(sub)
			if err != nil {
				return "", err
			}
			factors[i] = "(" + f + ")"
		}
		return strings.Join(factors, "*"), nil

	case *expr.Delimiter:
		inner, err := ToEngineInput(x.Inner)
		if err != nil {
			return "", err
		}
		switch {
		case x.Left == "(" || x.Left == "[" || x.Left == "\\{":
			return "(" + inner + ")", nil
		case x.Left == "|" || x.Left == "\\lvert":
			return "Abs(" + inner + ")", nil
		case x.Left == "\\lfloor":
			return "floor(" + inner + ")", nil
		case x.Left == "\\lceil":
			return "ceiling(" + inner + ")", nil
		}
		return "", conversionError(e, "unsupported delimiter %s", x.Left)

	case *expr.SubSup:
		return subSupInput(x)

	case *expr.Array:
		rows := make([]string, len(x.Rows))
		for i, row := range x.Rows {
			elements := make([]string, len(row))
			for j, element := range row {
				s, err := ToEngineInput(element)
				if err != nil {
					return "", err
				}
				elements[j] = s
			}
			rows[i] = "[" + strings.Join(elements, ", ") + "]"
		}
		return "Matrix([" + strings.Join(rows, ", ") + "])", nil

	case *expr.Placeholder:
		return "", conversionError(e, "placeholder has no value")

	case *expr.FunctionCall:
		return functionCallInput(x)
	}
	return "", conversionError(e, "unsupported expression")
}

func commandInput(c *expr.Command) (string, error) {
	if c.IsZeroArg() {
		if name, ok := symbolCommands[c.Name]; ok {
			return name, nil
		}
		return "", conversionError(c, "unknown symbol \\%s", c.Name)
	}

	args := make([]string, len(c.Operands))
	for i, op := range c.Operands {
		s, err := ToEngineInput(op)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	switch {
	case (c.Name == "frac" || c.Name == "dfrac" || c.Name == "tfrac") && len(args) == 2:
		return "(" + args[0] + ")/(" + args[1] + ")", nil
	case c.Name == "sqrt" && len(args) == 1:
		if c.Options != "" {
			return "(" + args[0] + ")**(1/(" + c.Options + "))", nil
		}
		return "sqrt(" + args[0] + ")", nil
	case engineFunctions[c.Name] && len(args) == 1:
		return c.Name + "(" + args[0] + ")", nil
	}
	return "", conversionError(c, "unsupported command \\%s", c.Name)
}

func infixInput(x *expr.Infix) (string, error) {
	operands := make([]string, len(x.Operands))
	for i, operand := range x.Operands {
		s, err := ToEngineInput(operand)
		if err != nil {
			return "", err
		}
		operands[i] = s
	}

	// A single equation becomes Eq(lhs, rhs).
	if len(x.Operators) == 1 && opName(x.Operators[0]) == "=" {
		return "Eq(" + operands[0] + ", " + operands[1] + ")", nil
	}

	var b strings.Builder
	b.WriteString("(" + operands[0] + ")")
	for i, op := range x.Operators {
		sym, ok := engineOperators[opName(op)]
		if !ok {
			return "", conversionError(op, "unsupported operator")
		}
		b.WriteString(" " + sym + " (" + operands[i+1] + ")")
	}
	return b.String(), nil
}

func subSupInput(x *expr.SubSup) (string, error) {
	var base string
	if x.Sub != nil {
		bt, ok1 := x.Base.(*expr.Text)
		st, ok2 := x.Sub.(*expr.Text)
		if !ok1 || !ok2 || !isIdentifier(bt.Text) {
			return "", conversionError(x, "only simple subscripted variables are supported")
		}
		base = bt.Text + "_" + st.Text
	} else {
		b, err := ToEngineInput(x.Base)
		if err != nil {
			return "", err
		}
		base = b
	}
	if x.Sup == nil {
		return base, nil
	}
	exp, err := ToEngineInput(x.Sup)
	if err != nil {
		return "", err
	}
	return "(" + base + ")**(" + exp + ")", nil
}

func functionCallInput(x *expr.FunctionCall) (string, error) {
	var name string
	switch fn := x.Fn.(type) {
	case *expr.Command:
		if !fn.IsZeroArg() || !engineFunctions[fn.Name] {
			return "", conversionError(fn, "unknown function")
		}
		name = fn.Name
	case *expr.Text:
		if !isIdentifier(fn.Text) {
			return "", conversionError(fn, "unknown function")
		}
		name = "Function('" + fn.Text + "')"
	default:
		return "", conversionError(x.Fn, "unknown function")
	}

	args := x.Args
	if d, ok := args.(*expr.Delimiter); ok && d.IsParentheses() {
		args = d.Inner
	}
	var parts []string
	if inf, ok := args.(*expr.Infix); ok && allCommas(inf) {
		for _, operand := range inf.Operands {
			s, err := ToEngineInput(operand)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
	} else {
		s, err := ToEngineInput(args)
		if err != nil {
			return "", err
		}
		parts = []string{s}
	}
	return name + "(" + strings.Join(parts, ", ") + ")", nil
}

func allCommas(x *expr.Infix) bool {
	for _, op := range x.Operators {
		if opName(op) != "," {
			return false
		}
	}
	return true
}

func opName(op expr.Expr) string {
	switch o := op.(type) {
	case *expr.Text:
		return o.Text
	case *expr.Command:
		if o.IsZeroArg() {
			return "\\" + o.Name
		}
	}
	return ""
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && !(i > 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func conversionError(offending expr.Expr, format string, args ...interface{}) error {
	return errs.Newf(errs.ErrEngineConversion, format, args...).
		WithContext("expr", offending).
		WithContext("kind", offending.Kind().String())
}

// OffendingExpr returns the subexpression a conversion error refers to.
func OffendingExpr(err error) (expr.Expr, bool) {
	var e *errs.Error
	if !errors.As(err, &e) || e.Type != errs.ErrEngineConversion {
		return nil, false
	}
	v, ok := e.GetContext("expr")
	if !ok {
		return nil, false
	}
	offending, ok := v.(expr.Expr)
	return offending, ok
}
