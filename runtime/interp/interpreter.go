// Package interp is the command interpreter: it parses command strings,
// runs each batch of subcommands atomically against an application state
// and keeps the state that outlives a batch (mode, prefix argument, line
// editor, dissect selection and undo history).
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aledsdavies/texstack/core/engine"
	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/invariant"
	"github.com/aledsdavies/texstack/core/state"
)

// Options configures an Interpreter.
type Options struct {
	UndoDepth        int
	Autoparenthesize bool
	Debug            bool

	// Engine is the algebra engine behind RunExternal. Optional.
	Engine engine.Engine
	// Registry defaults to DefaultRegistry().
	Registry *Registry
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		UndoDepth:        state.DefaultUndoDepth,
		Autoparenthesize: true,
	}
}

// Interpreter executes command batches.
type Interpreter struct {
	registry *Registry
	bridge   *engine.Bridge
	undo     *state.UndoStack
	logger   *slog.Logger

	autoparenthesize bool

	mode      Mode
	prefix    PrefixArgument
	textEntry *TextEntryState
	dissect   *expr.Path

	notification string
	errorFlash   bool
	offending    expr.Expr
}

// step is one resolved subcommand of a batch.
type step struct {
	name string
	args []string
	run  Handler
}

// New creates an interpreter.
func New(opts Options) (*Interpreter, error) {
	if opts.UndoDepth == 0 {
		opts.UndoDepth = state.DefaultUndoDepth
	}
	if opts.UndoDepth < 2 {
		return nil, fmt.Errorf("undo depth must be at least 2, got %d", opts.UndoDepth)
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}

	i := &Interpreter{
		registry:         opts.Registry,
		undo:             state.NewUndoStack(opts.UndoDepth),
		logger:           NewLogger(opts.LogOutput, opts.Debug),
		autoparenthesize: opts.Autoparenthesize,
		mode:             ModeBase,
	}
	if opts.Engine != nil {
		bridge, err := engine.NewBridge(opts.Engine)
		if err != nil {
			return nil, err
		}
		i.bridge = bridge
	}
	return i, nil
}

// NewLogger builds a text logger on w without time and level attributes,
// at Debug when debug is set or TEXSTACK_DEBUG is in the environment.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logLevel := slog.LevelInfo
	if debug || os.Getenv("TEXSTACK_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Registry returns the command registry.
func (i *Interpreter) Registry() *Registry { return i.registry }

// Mode returns the current mode.
func (i *Interpreter) Mode() Mode { return i.mode }

// Prefix returns the pending prefix argument.
func (i *Interpreter) Prefix() PrefixArgument { return i.prefix }

// Notification returns the text set by the last batch.
func (i *Interpreter) Notification() string { return i.notification }

// ErrorFlash reports whether the last batch was discarded.
func (i *Interpreter) ErrorFlash() bool { return i.errorFlash }

// OffendingExpr returns the subexpression an engine conversion failure of
// the last batch pointed at.
func (i *Interpreter) OffendingExpr() expr.Expr { return i.offending }

// TextEntry returns the line editor state while an entry mode is active.
func (i *Interpreter) TextEntry() (TextEntryState, bool) {
	if i.textEntry == nil {
		return TextEntryState{}, false
	}
	return *i.textEntry, true
}

// DissectPath returns the dissect selection while dissecting.
func (i *Interpreter) DissectPath() (expr.Path, bool) {
	if i.dissect == nil {
		return expr.Path{}, false
	}
	return *i.dissect, true
}

// Reset forgets the undo history and per-batch state, as after loading a
// document, and records s as the starting point.
func (i *Interpreter) Reset(s *state.AppState) {
	invariant.NotNil(s, "state")
	i.undo.Clear()
	i.undo.PushState(s)
	i.resetTransient()
	i.notification = ""
	i.errorFlash = false
	i.offending = nil
}

func (i *Interpreter) resetTransient() {
	i.mode = ModeBase
	i.prefix = PrefixArgument{}
	i.textEntry = nil
	i.dissect = nil
}

// ProcessCommand runs every piece of command against s as one batch.
//
// It returns the new state on success. When a piece fails with a
// recoverable error the whole batch is discarded: the result is (nil, nil),
// ErrorFlash reports true, and mode and prefix argument are reset. Any other
// error is returned.
func (i *Interpreter) ProcessCommand(command string, s *state.AppState) (*state.AppState, error) {
	invariant.NotNil(s, "state")
	i.beginBatch()

	subs, err := ParseCommand(command)
	if err != nil {
		return i.discard(command, err)
	}
	steps := make([]step, 0, len(subs))
	for _, sub := range subs {
		info, ok := i.registry.Lookup(sub.Name)
		if !ok {
			return i.discard(command, errs.UnknownCommand(sub.Name, i.registry.Suggest(sub.Name)))
		}
		steps = append(steps, step{name: sub.Name, args: sub.Args, run: info.Handler})
	}
	return i.run(command, s, steps)
}

// RunExternal applies engine function fn to the top n stack expressions of
// s and, once the engine has answered, commits a batch replacing them with
// the result. Engine failures are recoverable and discard the batch.
func (i *Interpreter) RunExternal(ctx context.Context, fn string, n int, s *state.AppState) (*state.AppState, error) {
	invariant.NotNil(s, "state")
	invariant.Precondition(n >= 0, "argument count must not be negative")
	i.beginBatch()

	command := "engine " + fn
	if i.bridge == nil {
		return i.discard(command, errs.InvalidArgument("engine", "no algebra engine configured"))
	}
	_, args, err := s.Stack.PopExprs(n)
	if err != nil {
		return i.discard(command, err)
	}

	i.logger.Debug("engine call", "function", fn, "args", n)
	result, err := i.bridge.Apply(ctx, fn, args...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return i.discard(command, err)
	}

	return i.run(command, s, []step{{
		name: "engine_result",
		run: func(c *Context, st *state.Stack, _ ...string) (*state.Stack, error) {
			st, _, err := st.PopExprs(n)
			if err != nil {
				return nil, err
			}
			return st.PushExprs(result), nil
		},
	}})
}

func (i *Interpreter) beginBatch() {
	i.notification = ""
	i.errorFlash = false
	i.offending = nil
}

// baseline makes s the current undo state when it did not come from this
// interpreter, so the first change made to it can be undone.
func (i *Interpreter) baseline(s *state.AppState) {
	if cur := i.undo.Current(); cur == nil || !cur.SameAs(s) {
		i.undo.PushState(s)
	}
}

func (i *Interpreter) run(command string, s *state.AppState, steps []step) (*state.AppState, error) {
	i.baseline(s)
	c := newContext(i, s)
	stack := s.Stack

	for _, st := range steps {
		c.command = st.name
		i.logger.Debug("subcommand", "name", st.name, "args", st.args)
		next, err := st.run(c, stack, st.args...)
		if err != nil {
			if errs.IsRecoverable(err) {
				return i.discard(command, err)
			}
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		invariant.NotNil(next, "stack returned by "+st.name)
		stack = next
	}

	return i.commit(command, c, stack), nil
}

func (i *Interpreter) commit(command string, c *Context, stack *state.Stack) *state.AppState {
	base := c.State
	if c.replacement != nil {
		base = c.replacement
	}
	result := base.With(stack, c.Document())

	previous := i.mode
	i.mode = ModeBase
	if c.modeSet {
		i.mode = c.mode
	}
	i.textEntry = nil
	if c.textEntry != nil && i.mode.IsEntry() {
		i.textEntry = c.textEntry
	}
	i.dissect = nil
	if c.dissect != nil && i.mode == ModeDissect {
		i.dissect = c.dissect
	}
	i.prefix = PrefixArgument{}
	if c.preservePrefix {
		i.prefix = c.prefix
	}
	i.notification = c.notification

	if c.undoSteps != 0 {
		i.undo.Move(c.undoSteps)
	}
	if c.clearUndo {
		i.undo.Clear()
	}
	logged := false
	if !c.suppressUndo {
		logged = i.undo.PushState(result)
	}

	outcome := "committed"
	if result.SameAs(c.State) {
		outcome = "unchanged"
	}
	i.logger.Debug("batch", "command", command, "outcome", outcome, "undo", logged,
		"mode", string(i.mode), "from", string(previous))
	return result
}

func (i *Interpreter) discard(command string, err error) (*state.AppState, error) {
	i.logger.Debug("batch", "command", command, "outcome", "discarded", "error", err)
	i.resetTransient()
	i.errorFlash = true
	i.notification = err.Error()
	var e *errs.Error
	if errors.As(err, &e) {
		i.notification = e.Message
	}
	if offending, ok := engine.OffendingExpr(err); ok {
		i.offending = offending
	}
	return nil, nil
}
