package expr

import (
	"math"
	"strconv"
)

const (
	// MaxDenominator bounds the rational search.
	MaxDenominator = 500

	rationalizeTolerance = 1e-8
	mediantTolerance     = 1e-12
	maxRationalizeInput  = 1e12
)

// rationalFactor is a candidate irrational factor f such that value/f may be
// a small rational. numerator and denominator build the factor's markup on
// the corresponding side of the fraction; either may be nil.
type rationalFactor struct {
	value       float64
	numerator   func() Expr
	denominator func() Expr
}

func pi() Expr { return NewCommand("pi") }

func sqrtOf(e Expr) Expr { return NewCommand("sqrt", e) }

// rationalFactors is tried in order; the first acceptable match wins.
var rationalFactors = buildRationalFactors()

func buildRationalFactors() []rationalFactor {
	factors := []rationalFactor{
		{value: 1},
		{value: math.Pi, numerator: pi},
		{value: math.Pi * math.Pi, numerator: func() Expr { return Superscript(pi(), NewText("2")) }},
		{value: 1 / math.Pi, denominator: pi},
		{value: math.Sqrt(math.Pi), numerator: func() Expr { return sqrtOf(pi()) }},
		{value: math.Sqrt(2 * math.Pi), numerator: func() Expr {
			return sqrtOf(NewSequence([]Expr{NewText("2"), pi()}, false))
		}},
		{value: math.Ln2, numerator: func() Expr {
			return NewSequence([]Expr{NewCommand("ln"), NewText("2")}, false)
		}},
	}
	for _, n := range []int{2, 3, 5, 6, 7, 10, 11, 13, 14, 15, 17, 19} {
		text := strconv.Itoa(n)
		factors = append(factors, rationalFactor{
			value:     math.Sqrt(float64(n)),
			numerator: func() Expr { return sqrtOf(NewText(text)) },
		})
	}
	phi := (1 + math.Sqrt(5)) / 2
	factors = append(factors,
		rationalFactor{value: phi, numerator: func() Expr { return NewCommand("phi") }},
		rationalFactor{value: 1 / phi, denominator: func() Expr { return NewCommand("phi") }},
	)
	return factors
}

// Rationalize tries to express value exactly as an integer or small rational
// multiple of a well-known constant (1, pi, pi^2, 1/pi, sqrt(pi), sqrt(2pi),
// ln 2, square roots of squarefree integers up to 19, the golden ratio). It
// returns nil when no candidate reconstructs value within tolerance.
func Rationalize(value float64) Expr {
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) > maxRationalizeInput {
		return nil
	}
	negative := value < 0
	magnitude := math.Abs(value)

	for _, f := range rationalFactors {
		x := magnitude / f.value
		whole := math.Floor(x)
		num, den := bestRational(x-whole, MaxDenominator)
		num += int64(whole) * den

		if math.Abs(float64(num)/float64(den)*f.value-magnitude) >= rationalizeTolerance {
			continue
		}
		result := rationalExpr(num, den, f)
		if negative && num != 0 {
			result = NewPrefix(result, NewText("-"))
		}
		return result
	}
	return nil
}

// bestRational finds the fraction closest to x in [0, 1) with denominator at
// most maxDenominator, walking the Stern-Brocot tree by mediants.
func bestRational(x float64, maxDenominator int64) (int64, int64) {
	if x < mediantTolerance {
		return 0, 1
	}
	a, b, c, d := int64(0), int64(1), int64(1), int64(1)
	for {
		mn, md := a+c, b+d
		if md > maxDenominator {
			break
		}
		m := float64(mn) / float64(md)
		if math.Abs(x-m) < mediantTolerance {
			return mn, md
		}
		if x < m {
			c, d = mn, md
		} else {
			a, b = mn, md
		}
	}
	if x-float64(a)/float64(b) <= float64(c)/float64(d)-x {
		return a, b
	}
	return c, d
}

// rationalExpr renders num/den times the factor, omitting whatever is
// trivial: a unit numerator next to a factor, a unit denominator.
func rationalExpr(num, den int64, f rationalFactor) Expr {
	if num == 0 {
		return NewText("0")
	}
	numText := NewText(strconv.FormatInt(num, 10))

	var numerator Expr = numText
	if f.numerator != nil {
		if num == 1 {
			numerator = f.numerator()
		} else {
			numerator = Combine(numText, f.numerator(), false)
		}
	}

	if den == 1 && f.denominator == nil {
		return numerator
	}

	var denominator Expr = NewText(strconv.FormatInt(den, 10))
	if f.denominator != nil {
		if den == 1 {
			denominator = f.denominator()
		} else {
			denominator = Combine(denominator, f.denominator(), false)
		}
	}
	return NewCommand("frac", numerator, denominator)
}
