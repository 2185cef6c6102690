package expr

import (
	"math"
	"strconv"

	"github.com/aledsdavies/texstack/core/invariant"
)

type binaryOperator struct {
	precedence int
	apply      func(a, b float64) float64
}

// binaryOperators is the fixed table used when evaluating infix chains.
var binaryOperators = map[string]binaryOperator{
	"+":       {1, func(a, b float64) float64 { return a + b }},
	"-":       {1, func(a, b float64) float64 { return a - b }},
	"*":       {2, func(a, b float64) float64 { return a * b }},
	"/":       {2, func(a, b float64) float64 { return a / b }},
	"\\cdot":  {2, func(a, b float64) float64 { return a * b }},
	"\\times": {2, func(a, b float64) float64 { return a * b }},
	"\\div":   {2, func(a, b float64) float64 { return a / b }},
}

var unaryFunctions = map[string]func(float64) float64{
	"sin":    math.Sin,
	"cos":    math.Cos,
	"tan":    math.Tan,
	"arcsin": math.Asin,
	"arccos": math.Acos,
	"arctan": math.Atan,
	"sinh":   math.Sinh,
	"cosh":   math.Cosh,
	"tanh":   math.Tanh,
	"exp":    math.Exp,
	"ln":     math.Log,
	"log":    math.Log10,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Evaluate computes the numeric value of e. Variables (text such as "x" or
// commands such as \alpha) are looked up in assignments by their bare name.
// It reports false when e contains anything that cannot be evaluated.
func Evaluate(e Expr, assignments map[string]float64) (float64, bool) {
	switch x := e.(type) {
	case *Text:
		if x.LooksLikeNumber() {
			v, err := strconv.ParseFloat(x.Text, 64)
			return v, err == nil
		}
		v, ok := assignments[x.Text]
		return v, ok

	case *Command:
		return evaluateCommand(x, assignments)

	case *Font:
		return Evaluate(x.Base, assignments)

	case *Infix:
		return evaluateInfix(x, assignments)

	case *Prefix:
		v, ok := Evaluate(x.Base, assignments)
		if !ok {
			return 0, false
		}
		switch operatorName(x.Operator) {
		case "-":
			return -v, true
		case "+":
			return v, true
		}
		return 0, false

	case *Postfix:
		n := x.FactorialCount()
		if n != 1 {
			return 0, false
		}
		v, ok := Evaluate(x.Base, assignments)
		if !ok || v < 0 || v != math.Trunc(v) {
			return 0, false
		}
		return math.Gamma(v + 1), true

	case *Sequence:
		if len(x.Exprs) == 0 {
			return 0, false
		}
		product := 1.0
		for _, sub := range x.Exprs {
			v, ok := Evaluate(sub, assignments)
			if !ok {
				return 0, false
			}
			product *= v
		}
		return product, true

	case *Delimiter:
		v, ok := Evaluate(x.Inner, assignments)
		if !ok {
			return 0, false
		}
		switch {
		case x.Left == "|" && x.Right == "|":
			return math.Abs(v), true
		case x.Left == "\\lfloor":
			return math.Floor(v), true
		case x.Left == "\\lceil":
			return math.Ceil(v), true
		}
		return v, true

	case *SubSup:
		base := x.Base
		if x.Sub != nil {
			// x_1 is a variable name, not an operation.
			bt, ok1 := x.Base.(*Text)
			st, ok2 := x.Sub.(*Text)
			if !ok1 || !ok2 {
				return 0, false
			}
			base = NewText(bt.Text + "_" + st.Text)
		}
		b, ok := Evaluate(base, assignments)
		if !ok {
			return 0, false
		}
		if x.Sup == nil {
			return b, true
		}
		p, ok := Evaluate(x.Sup, assignments)
		if !ok {
			return 0, false
		}
		return math.Pow(b, p), true

	case *FunctionCall:
		fn, ok := x.Fn.(*Command)
		if !ok || !fn.IsZeroArg() {
			return 0, false
		}
		f, ok := unaryFunctions[fn.Name]
		if !ok {
			return 0, false
		}
		arg, ok := Evaluate(x.Args, assignments)
		if !ok {
			return 0, false
		}
		return f(arg), true

	case *Array, *Placeholder:
		return 0, false
	}
	invariant.Invariant(false, "unhandled expression kind %v", e.Kind())
	return 0, false
}

func evaluateCommand(c *Command, assignments map[string]float64) (float64, bool) {
	if c.IsZeroArg() {
		if v, ok := assignments[c.Name]; ok {
			return v, true
		}
		v, ok := constants[c.Name]
		return v, ok
	}

	args := make([]float64, len(c.Operands))
	for i, op := range c.Operands {
		v, ok := Evaluate(op, assignments)
		if !ok {
			return 0, false
		}
		args[i] = v
	}

	switch c.Name {
	case "frac", "dfrac", "tfrac":
		if len(args) == 2 {
			return args[0] / args[1], true
		}
	case "sqrt":
		if len(args) == 1 {
			if c.Options != "" {
				n, err := strconv.ParseFloat(c.Options, 64)
				if err != nil {
					return 0, false
				}
				return math.Pow(args[0], 1/n), true
			}
			return math.Sqrt(args[0]), true
		}
	}
	if len(args) == 1 {
		if f, ok := unaryFunctions[c.Name]; ok {
			return f(args[0]), true
		}
	}
	return 0, false
}

// evaluateInfix evaluates a flat operand/operator chain by precedence
// climbing over an operand stack and an operator stack.
func evaluateInfix(x *Infix, assignments map[string]float64) (float64, bool) {
	var values []float64
	var operators []binaryOperator

	reduce := func() {
		invariant.Invariant(len(values) >= 2, "reduction needs two operands")
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		a, b := values[len(values)-2], values[len(values)-1]
		values = append(values[:len(values)-2], op.apply(a, b))
	}

	for i, operand := range x.Operands {
		v, ok := Evaluate(operand, assignments)
		if !ok {
			return 0, false
		}
		values = append(values, v)

		if i == len(x.Operators) {
			break
		}
		op, ok := binaryOperators[operatorName(x.Operators[i])]
		if !ok {
			return 0, false
		}
		for len(operators) > 0 && operators[len(operators)-1].precedence >= op.precedence {
			reduce()
		}
		operators = append(operators, op)
	}
	for len(operators) > 0 {
		reduce()
	}

	invariant.Postcondition(len(values) == 1, "infix evaluation left %d values", len(values))
	return values[0], true
}
