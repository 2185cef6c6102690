package interp

import (
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
)

// Reserved argument tokens. Arguments are split on whitespace and pieces on
// ';', so those characters are written as tokens inside arguments.
const (
	SemicolonToken = "[semicolon]"
	SpaceToken     = "[space]"
)

// Subcommand is one piece of a command string: a name and its arguments.
type Subcommand struct {
	Name string
	Args []string
}

// String renders the subcommand back into the mini-language.
func (s Subcommand) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Name)
	for _, arg := range s.Args {
		parts = append(parts, EscapeArgument(arg))
	}
	return strings.Join(parts, " ")
}

// ParseCommand splits "name arg;name2 arg arg" into subcommands. Empty
// pieces are skipped; a command string with no pieces at all is an error.
func ParseCommand(command string) ([]Subcommand, error) {
	var subs []Subcommand
	for _, piece := range strings.Split(command, ";") {
		fields := strings.Fields(piece)
		if len(fields) == 0 {
			continue
		}
		sub := Subcommand{Name: fields[0]}
		for _, field := range fields[1:] {
			sub.Args = append(sub.Args, unescapeArgument(field))
		}
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil, errs.New(errs.ErrInvalidArgument, "empty command")
	}
	return subs, nil
}

// EscapeArgument encodes characters that would otherwise split arg.
func EscapeArgument(arg string) string {
	arg = strings.ReplaceAll(arg, ";", SemicolonToken)
	return strings.ReplaceAll(arg, " ", SpaceToken)
}

func unescapeArgument(arg string) string {
	arg = strings.ReplaceAll(arg, SemicolonToken, ";")
	return strings.ReplaceAll(arg, SpaceToken, " ")
}
