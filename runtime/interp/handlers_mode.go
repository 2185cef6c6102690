package interp

import (
	"strings"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/state"
)

func registerModeCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "mode", Usage: "mode NAME", Summary: "enter a mode for the next key", Handler: doMode},
		CommandInfo{Name: "prefix_digit", Usage: "prefix_digit D", Summary: "append a digit to the prefix argument", Handler: doPrefixDigit},
		CommandInfo{Name: "prefix_all", Usage: "prefix_all", Summary: "set the prefix argument to all", Handler: doPrefixAll},
		CommandInfo{Name: "cancel", Usage: "cancel", Summary: "return to base mode", Handler: doCancel},
		CommandInfo{Name: "notify", Usage: "notify TEXT", Summary: "show a message", Handler: doNotify},
	)
}

func doMode(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	m, ok := ParseMode(args[0])
	if !ok || m.IsEntry() || m == ModeDissect {
		return nil, errs.InvalidArgument(c.Command(), "cannot enter mode %q", args[0])
	}
	c.RequestMode(m)
	c.PreservePrefix()
	c.SuppressUndo()
	return s, nil
}

// doPrefixDigit accumulates the prefix argument and stays in the current
// mode so the command it prefixes can follow.
func doPrefixDigit(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	if len(args[0]) != 1 || args[0][0] < '0' || args[0][0] > '9' {
		return nil, errs.InvalidArgument(c.Command(), "not a digit: %q", args[0])
	}
	c.SetPrefix(c.Prefix().WithDigit(int(args[0][0] - '0')))
	c.RequestMode(c.CurrentMode())
	c.SuppressUndo()
	return s, nil
}

func doPrefixAll(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	c.SetPrefix(PrefixArgument{All: true})
	c.RequestMode(c.CurrentMode())
	c.SuppressUndo()
	return s, nil
}

func doCancel(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	c.EndTextEntry()
	c.EndDissect()
	c.RequestMode(ModeBase)
	return s, nil
}

func doNotify(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	c.Notify(strings.Join(args, " "))
	return s, nil
}
