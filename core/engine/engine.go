// Package engine bridges expressions to an external computer algebra
// engine. Expressions are converted to the engine's input syntax, the
// engine runs as a child process speaking JSON, and its answer comes back
// as a Value tree that is validated and turned into an expression again.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/aledsdavies/texstack/core/expr"
	"github.com/aledsdavies/texstack/core/invariant"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultTimeout bounds a single engine call.
const DefaultTimeout = 30 * time.Second

// Engine performs one algebra operation. args are in the engine's input
// syntax; the result is a JSON-encoded Value.
type Engine interface {
	Call(ctx context.Context, function string, args []string) ([]byte, error)
}

// Request is the JSON object written to the engine process.
type Request struct {
	Function string   `json:"function"`
	Args     []string `json:"args"`
}

// Response is the JSON object the engine process writes back.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ExecEngine runs an external program once per call. The request goes to
// its stdin and the response is read from its stdout.
type ExecEngine struct {
	Command []string
	Timeout time.Duration
	Logger  *slog.Logger // nil discards
}

// NewExecEngine creates an engine around an argv, e.g. ["python3", "engine.py"].
func NewExecEngine(command ...string) *ExecEngine {
	invariant.Precondition(len(command) > 0, "engine command must not be empty")
	return &ExecEngine{Command: append([]string(nil), command...), Timeout: DefaultTimeout}
}

// Call implements Engine.
func (e *ExecEngine) Call(ctx context.Context, function string, args []string) ([]byte, error) {
	invariant.ContextNotBackground(ctx, "ExecEngine.Call")

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	request, err := json.Marshal(Request{Function: function, Args: args})
	if err != nil {
		return nil, errs.Wrap(errs.ErrEngineFailure, "failed to encode request", err)
	}

	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(request)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.Logger != nil {
		e.Logger.Debug("engine call", "command", e.Command[0], "function", function, "args", len(args))
	}
	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrEngineFailure,
			fmt.Sprintf("engine %s failed", e.Command[0]), err).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, errs.Wrap(errs.ErrEngineFailure, "engine response is not JSON", err)
	}
	if response.Error != "" {
		return nil, errs.Newf(errs.ErrEngineFailure, "%s: %s", function, response.Error).
			WithContext("function", function)
	}
	if len(response.Result) == 0 {
		return nil, errs.Newf(errs.ErrEngineFailure, "%s: engine returned no result", function)
	}
	return response.Result, nil
}

// Bridge applies engine functions to expressions.
type Bridge struct {
	engine Engine
	schema *jsonschema.Schema
}

// NewBridge creates a bridge over engine.
func NewBridge(engine Engine) (*Bridge, error) {
	invariant.NotNil(engine, "engine")
	schema, err := compileValueSchema()
	if err != nil {
		return nil, fmt.Errorf("compile engine value schema: %w", err)
	}
	return &Bridge{engine: engine, schema: schema}, nil
}

// Apply converts exprs, calls fn on the engine and converts the answer
// back. Conversion problems are ENGINE_CONVERSION errors; everything that
// goes wrong on the engine side is ENGINE_FAILURE.
func (b *Bridge) Apply(ctx context.Context, fn string, exprs ...expr.Expr) (expr.Expr, error) {
	invariant.Precondition(fn != "", "engine function must not be empty")

	args := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := ToEngineInput(e)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}

	raw, err := b.engine.Call(ctx, fn, args)
	if err != nil {
		if errs.Type(err) == "" {
			err = errs.Wrap(errs.ErrEngineFailure, fn+" failed", err)
		}
		return nil, err
	}

	value, err := DecodeValue(b.schema, raw)
	if err != nil {
		return nil, err
	}
	return FromEngineOutput(value)
}
