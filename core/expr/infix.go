package expr

import (
	"strings"

	"github.com/aledsdavies/texstack/core/invariant"
)

// Side selects one side of an infix operator.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// ParseSide converts "left" / "right" into a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "left":
		return SideLeft, true
	case "right":
		return SideRight, true
	}
	return SideLeft, false
}

// negations pairs relations with their negated forms.
var negations = map[string]string{
	"=":            "\\neq",
	"<":            "\\nless",
	">":            "\\ngtr",
	"\\le":         "\\nleq",
	"\\ge":         "\\ngeq",
	"\\in":         "\\notin",
	"\\subseteq":   "\\nsubseteq",
	"\\supseteq":   "\\nsupseteq",
	"\\sim":        "\\nsim",
	"\\cong":       "\\ncong",
	"\\mid":        "\\nmid",
	"\\parallel":   "\\nparallel",
	"\\vdash":      "\\nvdash",
	"\\leftarrow":  "\\nleftarrow",
	"\\rightarrow": "\\nrightarrow",
}

var negationAliases = map[string]string{
	"\\leq": "\\nleq",
	"\\geq": "\\ngeq",
	"\\ne":  "=",
}

func init() {
	reversed := make(map[string]string, len(negations))
	for k, v := range negations {
		reversed[v] = k
	}
	for k, v := range reversed {
		negations[k] = v
	}
	for k, v := range negationAliases {
		negations[k] = v
	}
}

// OperatorAt returns operator i.
func (x *Infix) OperatorAt(i int) Expr {
	invariant.InRange(i, 0, len(x.Operators)-1, "operator index")
	return x.Operators[i]
}

// ExtractSide returns everything on one side of operator i: a single operand
// or a shorter infix chain. Line breaks on that side are kept; a break right
// after operator i belongs to the operator and is on neither side.
func (x *Infix) ExtractSide(i int, side Side) Expr {
	invariant.InRange(i, 0, len(x.Operators)-1, "operator index")

	var operands, operators []Expr
	var linebreaks []int
	if side == SideLeft {
		operands = x.Operands[:i+1]
		operators = x.Operators[:i]
		for _, lb := range x.LinebreaksAt {
			if lb <= i {
				linebreaks = append(linebreaks, lb)
			}
		}
	} else {
		operands = x.Operands[i+1:]
		operators = x.Operators[i+1:]
		for _, lb := range x.LinebreaksAt {
			if lb > i+1 {
				linebreaks = append(linebreaks, lb-(i+1))
			}
		}
	}

	if len(operands) == 1 {
		return operands[0]
	}
	splitAt := 0
	if side == SideLeft {
		splitAt = len(operators) - 1
	}
	return NewInfix(operands, operators, splitAt, linebreaks)
}

// SwapSidesAt exchanges the two sides of operator i: a = b becomes b = a.
// A line break after operator i stays after it.
func (x *Infix) SwapSidesAt(i int) *Infix {
	swapped := CombineInfix(x.ExtractSide(i, SideRight), x.ExtractSide(i, SideLeft), x.OperatorAt(i))
	if x.HasLinebreakBefore(i + 1) {
		swapped = swapped.ToggleLinebreakAt(swapped.SplitAtIndex)
	}
	return swapped
}

// NegateAt replaces relation i with its negation (= with \neq and so on).
// It reports false when the operator has no known negation.
func (x *Infix) NegateAt(i int) (*Infix, bool) {
	negated, ok := negations[operatorName(x.OperatorAt(i))]
	if !ok {
		return x, false
	}
	operators := append([]Expr(nil), x.Operators...)
	operators[i] = operatorFromName(negated)
	return NewInfix(x.Operands, operators, x.SplitAtIndex, x.LinebreaksAt), true
}

// ToggleLinebreakAt adds or removes a line break after operator i.
func (x *Infix) ToggleLinebreakAt(i int) *Infix {
	invariant.InRange(i, 0, len(x.Operators)-1, "operator index")
	operand := i + 1
	var linebreaks []int
	found := false
	for _, lb := range x.LinebreaksAt {
		if lb == operand {
			found = true
			continue
		}
		linebreaks = append(linebreaks, lb)
	}
	if !found {
		linebreaks = append(linebreaks, operand)
	}
	return NewInfix(x.Operands, x.Operators, x.SplitAtIndex, linebreaks)
}

// operatorFromName turns "\neq" into a zero-argument command and anything
// else into text.
func operatorFromName(name string) Expr {
	if strings.HasPrefix(name, "\\") && len(name) > 1 {
		return NewCommand(name[1:])
	}
	return NewText(name)
}

// OperatorFromName is the exported form of operatorFromName, used when
// building infix chains from command arguments.
func OperatorFromName(name string) Expr {
	invariant.Precondition(name != "", "operator name must not be empty")
	return operatorFromName(name)
}
