package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/aledsdavies/texstack/core/docfmt"
	"github.com/aledsdavies/texstack/core/render"
	"github.com/aledsdavies/texstack/core/state"
	"github.com/aledsdavies/texstack/runtime/config"
	"github.com/aledsdavies/texstack/runtime/interp"
	"github.com/aledsdavies/texstack/runtime/keymap"
)

// session ties an interpreter to the state it is editing and the file the
// state came from. Lines are either command strings or ':' directives.
type session struct {
	interp   *interp.Interpreter
	state    *state.AppState
	keys     atomic.Pointer[keymap.Keymap]
	path     string
	out      io.Writer
	useColor bool
}

func newSession(settings config.Settings, out, logOutput io.Writer, useColor bool) (*session, error) {
	i, err := interp.New(settings.InterpreterOptions(logOutput))
	if err != nil {
		return nil, err
	}
	keys, err := settings.LoadKeymap()
	if err != nil {
		return nil, err
	}

	s := &session{interp: i, state: state.NewAppState(), out: out, useColor: useColor}
	s.keys.Store(keys)
	return s, nil
}

// open loads path when it exists and otherwise starts a new document that
// will be saved there.
func (s *session) open(path string) error {
	err := s.load(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.path = path
		return nil
	}
	return err
}

func (s *session) load(path string) error {
	loaded, err := docfmt.LoadFile(path)
	if err != nil {
		return err
	}
	s.state = loaded
	s.path = path
	s.interp.Reset(loaded)
	return nil
}

func (s *session) save(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return fmt.Errorf("no file to save to")
	}
	if err := docfmt.SaveFile(path, s.state); err != nil {
		return err
	}
	s.state = s.state.Clean()
	s.path = path
	return nil
}

// apply records the result of a batch. A discarded batch leaves the state
// alone.
func (s *session) apply(next *state.AppState, err error) error {
	if err != nil {
		return err
	}
	if next != nil {
		s.state = next
	}
	return nil
}

// exec runs one line. It reports true when the line asks to quit.
func (s *session) exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, ":") {
		return false, s.apply(s.interp.ProcessCommand(line, s.state))
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false, fmt.Errorf("empty directive")
	}
	args := fields[1:]
	switch fields[0] {
	case "quit", "q":
		return true, nil

	case "key", "k":
		for _, key := range args {
			command, ok := s.keys.Load().Lookup(s.interp.Mode(), key)
			if !ok {
				return false, fmt.Errorf("key %q is not bound in %s mode", key, s.interp.Mode())
			}
			if err := s.apply(s.interp.ProcessCommand(command, s.state)); err != nil {
				return false, err
			}
			if s.interp.ErrorFlash() {
				break
			}
		}
		return false, nil

	case "engine", "e":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: :engine FUNCTION [ARGUMENTS]")
		}
		n := 1
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 0 {
				return false, fmt.Errorf("bad argument count %q", args[1])
			}
			n = v
		}
		return false, s.apply(s.interp.RunExternal(ctx, args[0], n, s.state))

	case "save", "w":
		return false, s.save(strings.Join(args, " "))

	case "load", "o":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: :load FILE")
		}
		return false, s.load(strings.Join(args, " "))

	case "render":
		_, _ = fmt.Fprintln(s.out, render.Document(s.state.Document))
		return false, nil

	case "stack":
		FormatState(s.out, s.interp, s.state, s.useColor)
		return false, nil
	}
	return false, fmt.Errorf("unknown directive :%s", fields[0])
}

// complete offers command names for the last piece of line.
func (s *session) complete(line string) []string {
	head := ""
	piece := line
	if i := strings.LastIndex(line, ";"); i >= 0 {
		head, piece = line[:i+1], line[i+1:]
	}
	if strings.ContainsAny(strings.TrimLeft(piece, " "), " ") {
		return nil
	}
	lead := piece[:len(piece)-len(strings.TrimLeft(piece, " "))]
	var out []string
	for _, name := range s.interp.Registry().Complete(strings.TrimLeft(piece, " ")) {
		out = append(out, head+lead+name)
	}
	return out
}
