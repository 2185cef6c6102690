package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Value is one node of the expression tree an engine writes back.
//
//	{"type": "add", "args": [{"type": "symbol", "name": "x"}, {"type": "integer", "value": "1"}]}
type Value struct {
	Type  string    `json:"type"`
	Value string    `json:"value,omitempty"`
	Name  string    `json:"name,omitempty"`
	Num   string    `json:"num,omitempty"`
	Den   string    `json:"den,omitempty"`
	Args  []Value   `json:"args,omitempty"`
	Rows  [][]Value `json:"rows,omitempty"`
}

// Value types
const (
	TypeInteger  = "integer"
	TypeRational = "rational"
	TypeFloat    = "float"
	TypeSymbol   = "symbol"
	TypeConstant = "constant"
	TypeAdd      = "add"
	TypeMul      = "mul"
	TypePow      = "pow"
	TypeFunction = "function"
	TypeEq       = "eq"
	TypeMatrix   = "matrix"
)

const valueSchemaURL = "schema://engine/value.json"

const valueSchema = `{
  "$ref": "#/$defs/node",
  "$defs": {
    "int": {"type": "string", "pattern": "^-?[0-9]+$"},
    "node": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["integer", "rational", "float", "symbol", "constant", "add", "mul", "pow", "function", "eq", "matrix"]}
      },
      "allOf": [
        {"if": {"properties": {"type": {"const": "integer"}}},
         "then": {"required": ["value"], "properties": {"value": {"$ref": "#/$defs/int"}}}},
        {"if": {"properties": {"type": {"const": "rational"}}},
         "then": {"required": ["num", "den"], "properties": {"num": {"$ref": "#/$defs/int"}, "den": {"type": "string", "pattern": "^[1-9][0-9]*$"}}}},
        {"if": {"properties": {"type": {"const": "float"}}},
         "then": {"required": ["value"], "properties": {"value": {"type": "string", "minLength": 1}}}},
        {"if": {"properties": {"type": {"enum": ["symbol", "constant"]}}},
         "then": {"required": ["name"], "properties": {"name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$"}}}},
        {"if": {"properties": {"type": {"enum": ["add", "mul"]}}},
         "then": {"required": ["args"], "properties": {"args": {"type": "array", "minItems": 2, "items": {"$ref": "#/$defs/node"}}}}},
        {"if": {"properties": {"type": {"enum": ["pow", "eq"]}}},
         "then": {"required": ["args"], "properties": {"args": {"type": "array", "minItems": 2, "maxItems": 2, "items": {"$ref": "#/$defs/node"}}}}},
        {"if": {"properties": {"type": {"const": "function"}}},
         "then": {"required": ["name", "args"], "properties": {
           "name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$"},
           "args": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/node"}}}}},
        {"if": {"properties": {"type": {"const": "matrix"}}},
         "then": {"required": ["rows"], "properties": {"rows": {"type": "array", "minItems": 1,
           "items": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/node"}}}}}}
      ]
    }
  }
}`

// compileValueSchema compiles the engine output schema. Remote references
// are refused.
func compileValueSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("remote $ref not allowed: %s", url)
	}
	if err := compiler.AddResource(valueSchemaURL, strings.NewReader(valueSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(valueSchemaURL)
}

// DecodeValue validates raw engine output against the value schema and
// decodes it.
func DecodeValue(schema *jsonschema.Schema, data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return Value{}, errs.Wrap(errs.ErrEngineFailure, "engine output is not JSON", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Value{}, convertValidationError(err)
	}
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, errs.Wrap(errs.ErrEngineFailure, "engine output does not decode", err)
	}
	return v, nil
}

// convertValidationError reduces a schema failure to its most specific cause.
func convertValidationError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errs.Wrap(errs.ErrEngineFailure, "engine output rejected", err)
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	location := leaf.InstanceLocation
	if location == "" {
		location = "/"
	}
	return errs.Newf(errs.ErrEngineFailure, "engine output invalid at %s: %s", location, leaf.Message).
		WithContext("location", location)
}

var constantExprs = map[string]func() expr.Expr{
	"pi": func() expr.Expr { return expr.NewCommand("pi") },
	"E":  func() expr.Expr { return expr.NewText("e") },
	"I":  func() expr.Expr { return expr.NewText("i") },
	"oo": func() expr.Expr { return expr.NewCommand("infty") },
}

var greekNames = map[string]bool{}

func init() {
	for latex, name := range symbolCommands {
		if latex == name {
			greekNames[name] = true
		}
	}
}

// FromEngineOutput converts an engine value tree back into an expression.
func FromEngineOutput(v Value) (expr.Expr, error) {
	switch v.Type {
	case TypeInteger:
		return signed(v.Value, func(digits string) expr.Expr { return expr.NewText(digits) }), nil

	case TypeRational:
		return signed(v.Num, func(digits string) expr.Expr {
			return expr.NewCommand("frac", expr.NewText(digits), expr.NewText(v.Den))
		}), nil

	case TypeFloat:
		return signed(v.Value, func(digits string) expr.Expr { return expr.NewText(digits) }), nil

	case TypeSymbol:
		return symbolExpr(v.Name), nil

	case TypeConstant:
		build, ok := constantExprs[v.Name]
		if !ok {
			return nil, errs.Newf(errs.ErrEngineFailure, "unknown constant %q", v.Name)
		}
		return build(), nil

	case TypeAdd:
		return sumExpr(v.Args)

	case TypeMul:
		return productExpr(v.Args)

	case TypePow:
		return powerExpr(v.Args[0], v.Args[1])

	case TypeEq:
		lhs, err := FromEngineOutput(v.Args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := FromEngineOutput(v.Args[1])
		if err != nil {
			return nil, err
		}
		return expr.CombineInfix(lhs, rhs, expr.NewText("=")), nil

	case TypeFunction:
		return functionExpr(v.Name, v.Args)

	case TypeMatrix:
		rows := make([][]expr.Expr, len(v.Rows))
		for i, row := range v.Rows {
			if len(row) != len(v.Rows[0]) {
				return nil, errs.Newf(errs.ErrEngineFailure, "matrix row %d has %d elements, expected %d", i, len(row), len(v.Rows[0]))
			}
			rows[i] = make([]expr.Expr, len(row))
			for j, element := range row {
				e, err := FromEngineOutput(element)
				if err != nil {
					return nil, err
				}
				rows[i][j] = e
			}
		}
		return expr.NewArray("bmatrix", rows), nil
	}
	return nil, errs.Newf(errs.ErrEngineFailure, "unknown value type %q", v.Type)
}

// signed builds a number from its unsigned digits, wrapping it in a
// negation prefix when the literal starts with '-'.
func signed(literal string, build func(string) expr.Expr) expr.Expr {
	if rest, ok := strings.CutPrefix(literal, "-"); ok {
		return expr.NewPrefix(build(rest), expr.NewText("-"))
	}
	return build(literal)
}

func symbolExpr(name string) expr.Expr {
	base, sub, hasSub := strings.Cut(name, "_")
	var e expr.Expr
	if greekNames[base] {
		e = expr.NewCommand(base)
	} else {
		e = expr.NewText(base)
	}
	if hasSub && sub != "" {
		return expr.Subscript(e, expr.NewText(sub))
	}
	return e
}

// isNegation reports whether e is a leading minus and returns its operand.
func isNegation(e expr.Expr) (expr.Expr, bool) {
	p, ok := e.(*expr.Prefix)
	if !ok {
		return nil, false
	}
	if t, ok := p.Operator.(*expr.Text); ok && t.Text == "-" {
		return p.Base, true
	}
	return nil, false
}

func sumExpr(args []Value) (expr.Expr, error) {
	var result expr.Expr
	for _, arg := range args {
		term, err := FromEngineOutput(arg)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = term
			continue
		}
		op := "+"
		if base, ok := isNegation(term); ok {
			op, term = "-", base
		}
		result = expr.CombineInfix(result, term, expr.NewText(op))
	}
	return result, nil
}

// productExpr juxtaposes the factors, moving factors with a negative
// integer exponent into a denominator.
func productExpr(args []Value) (expr.Expr, error) {
	negative := false
	var numerator, denominator []expr.Expr
	for _, arg := range args {
		if arg.Type == TypeInteger && arg.Value == "-1" {
			negative = !negative
			continue
		}
		if arg.Type == TypePow && isNegativeInteger(arg.Args[1]) {
			base, err := FromEngineOutput(arg.Args[0])
			if err != nil {
				return nil, err
			}
			exp := strings.TrimPrefix(arg.Args[1].Value, "-")
			if exp != "1" {
				base = expr.Superscript(parenthesizeBase(base), expr.NewText(exp))
			}
			denominator = append(denominator, base)
			continue
		}
		factor, err := FromEngineOutput(arg)
		if err != nil {
			return nil, err
		}
		if base, ok := isNegation(factor); ok {
			negative = !negative
			factor = base
		}
		numerator = append(numerator, factor)
	}

	result := juxtapose(numerator)
	if result == nil {
		result = expr.NewText("1")
	}
	if len(denominator) > 0 {
		result = expr.NewCommand("frac", result, juxtapose(denominator))
	}
	if negative {
		return expr.NewPrefix(result, expr.NewText("-")), nil
	}
	return result, nil
}

func juxtapose(factors []expr.Expr) expr.Expr {
	var result expr.Expr
	for _, f := range factors {
		if result == nil {
			result = f
			continue
		}
		result = expr.Combine(result, f, true)
	}
	return result
}

func isNegativeInteger(v Value) bool {
	return v.Type == TypeInteger && strings.HasPrefix(v.Value, "-")
}

func powerExpr(baseValue, expValue Value) (expr.Expr, error) {
	base, err := FromEngineOutput(baseValue)
	if err != nil {
		return nil, err
	}
	switch {
	case expValue.Type == TypeRational && expValue.Num == "1" && expValue.Den == "2":
		return expr.NewCommand("sqrt", base), nil
	case expValue.Type == TypeRational && expValue.Num == "1":
		return expr.NewCommand("sqrt", base).WithOptions(expValue.Den), nil
	case expValue.Type == TypeInteger && expValue.Value == "-1":
		return expr.NewCommand("frac", expr.NewText("1"), base), nil
	}
	exp, err := FromEngineOutput(expValue)
	if err != nil {
		return nil, err
	}
	return expr.Superscript(parenthesizeBase(base), exp), nil
}

// parenthesizeBase wraps compound bases so that x+1 squared renders as
// (x+1)^2.
func parenthesizeBase(e expr.Expr) expr.Expr {
	switch e.(type) {
	case *expr.Infix, *expr.Prefix, *expr.Sequence, *expr.Command:
		if c, ok := e.(*expr.Command); ok && c.IsZeroArg() {
			return e
		}
		return expr.Parenthesize(e)
	}
	return e
}

func functionExpr(name string, args []Value) (expr.Expr, error) {
	if name == "Abs" && len(args) == 1 {
		inner, err := FromEngineOutput(args[0])
		if err != nil {
			return nil, err
		}
		return expr.NewDelimiter("|", "|", inner, false), nil
	}
	if name == "sqrt" && len(args) == 1 {
		inner, err := FromEngineOutput(args[0])
		if err != nil {
			return nil, err
		}
		return expr.NewCommand("sqrt", inner), nil
	}

	var fn expr.Expr
	if engineFunctions[name] {
		fn = expr.NewCommand(name)
	} else {
		fn = expr.NewText(name)
	}
	var list expr.Expr
	for _, arg := range args {
		e, err := FromEngineOutput(arg)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = e
			continue
		}
		list = expr.CombineInfix(list, e, expr.NewText(","))
	}
	return expr.NewFunctionCall(fn, expr.Parenthesize(list)), nil
}
