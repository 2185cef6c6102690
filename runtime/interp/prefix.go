package interp

import "strconv"

// MaxPrefixArgument caps digit-by-digit prefix accumulation.
const MaxPrefixArgument = 9999

// PrefixArgument is the optional numeric argument typed before a command.
// The zero value means no argument.
type PrefixArgument struct {
	Value int
	All   bool
}

// IsSet reports whether any prefix was entered.
func (p PrefixArgument) IsSet() bool { return p.All || p.Value > 0 }

// WithDigit appends a decimal digit, saturating at MaxPrefixArgument. A
// digit after the "all" sentinel starts a new number.
func (p PrefixArgument) WithDigit(d int) PrefixArgument {
	n := p.Value*10 + d
	if p.All {
		n = d
	}
	if n > MaxPrefixArgument {
		n = MaxPrefixArgument
	}
	return PrefixArgument{Value: n}
}

func (p PrefixArgument) String() string {
	switch {
	case p.All:
		return "*"
	case p.Value > 0:
		return strconv.Itoa(p.Value)
	}
	return ""
}

