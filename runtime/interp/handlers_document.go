package interp

import (
	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/state"
)

func registerDocumentCommands(r *Registry) {
	r.MustRegister(
		CommandInfo{Name: "to_document", Usage: "to_document", Summary: "move the top n items below the selection (prefix, default 1)", Handler: doToDocument},
		CommandInfo{Name: "from_document", Usage: "from_document", Summary: "copy the selected item onto the stack", Handler: doFromDocument},
		CommandInfo{Name: "delete_selection", Usage: "delete_selection", Summary: "delete n items ending at the selection (prefix, default 1)", Handler: doDeleteSelection},
		CommandInfo{Name: "select", Usage: "select up|down|first|last", Summary: "move the selection", Handler: doSelect},
		CommandInfo{Name: "move_selection", Usage: "move_selection up|down", Summary: "move the selected item", Handler: doMoveSelection},
		CommandInfo{Name: "new_document", Usage: "new_document", Summary: "start over with an empty stack and document", Handler: doNewDocument},
	)
}

func doToDocument(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	rest, items, err := s.Pop(c.GetPrefixArgument(1, s.Len()))
	if err != nil {
		return nil, err
	}
	c.SetDocument(c.Document().InsertItems(items...))
	return rest, nil
}

func doFromDocument(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	item, ok := c.Document().Selected()
	if !ok {
		return nil, errs.InvalidArgument(c.Command(), "no document item is selected")
	}
	return s.Push(item.Clone()), nil
}

func doDeleteSelection(c *Context, s *state.Stack, _ ...string) (*state.Stack, error) {
	d := c.Document()
	c.SetDocument(d.DeleteSelection(c.GetPrefixArgument(1, d.SelectionIndex())))
	return s, nil
}

func doSelect(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	d := c.Document()
	n := c.GetPrefixArgument(1, d.Len())
	switch args[0] {
	case "up":
		d = d.MoveSelection(-n)
	case "down":
		d = d.MoveSelection(n)
	case "first":
		d = d.WithSelection(0)
	case "last":
		d = d.WithSelection(d.Len())
	default:
		return nil, errs.InvalidArgument(c.Command(), "unknown direction %q", args[0])
	}
	c.SetDocument(d)
	c.RequestMode(ModeDocument)
	return s, nil
}

func doMoveSelection(c *Context, s *state.Stack, args ...string) (*state.Stack, error) {
	if err := requireArgs(c, args, 1); err != nil {
		return nil, err
	}
	n := c.GetPrefixArgument(1, c.Document().Len())
	switch args[0] {
	case "up":
		n = -n
	case "down":
	default:
		return nil, errs.InvalidArgument(c.Command(), "unknown direction %q", args[0])
	}
	c.SetDocument(c.Document().ShiftSelected(n))
	c.RequestMode(ModeDocument)
	return s, nil
}

func doNewDocument(c *Context, _ *state.Stack, _ ...string) (*state.Stack, error) {
	return c.NewDocument(), nil
}
