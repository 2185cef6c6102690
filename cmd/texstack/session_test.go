package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/texstack/core/render"
	"github.com/aledsdavies/texstack/runtime/config"
	"github.com/aledsdavies/texstack/runtime/interp"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := newSession(config.Default(), &out, io.Discard, false)
	require.NoError(t, err)
	return s, &out
}

func execLines(t *testing.T, s *session, lines ...string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, line := range lines {
		quit, err := s.exec(ctx, line)
		require.NoError(t, err, "line %q", line)
		require.False(t, quit)
	}
}

func stackLatex(s *session) []string {
	var out []string
	for _, item := range s.state.Stack.Items() {
		out = append(out, render.Item(item))
	}
	return out
}

func TestSessionCommands(t *testing.T) {
	s, _ := newTestSession(t)
	execLines(t, s, "push_text x;push_text 2;superscript", "", "push_text y")
	assert.Equal(t, []string{"x^2", "y"}, stackLatex(s))

	// A discarded batch keeps the state.
	before := s.state
	execLines(t, s, "rot")
	assert.Same(t, before, s.state)
	assert.True(t, s.interp.ErrorFlash())
}

func TestSessionKeys(t *testing.T) {
	s, _ := newTestSession(t)
	execLines(t, s, ":key 1 2 Enter x +")
	assert.Equal(t, []string{"12+x"}, stackLatex(s))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := s.exec(ctx, ":key F13")
	assert.ErrorContains(t, err, `"F13" is not bound in base mode`)
}

func TestSessionSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.tex.stack")
	s, out := newTestSession(t)
	require.NoError(t, s.open(path))
	execLines(t, s, "push_math a+b;to_document")
	require.True(t, s.state.Dirty)

	execLines(t, s, ":save")
	assert.False(t, s.state.Dirty)

	other, _ := newTestSession(t)
	execLines(t, other, ":load "+path, ":render")
	assert.Equal(t, 1, other.state.Document.Len())

	execLines(t, s, ":render")
	assert.Equal(t, `\[ a+b \]`, strings.TrimSpace(out.String()))
}

func TestSessionDirectiveErrors(t *testing.T) {
	s, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, line := range []string{":", ":nope", ":save", ":load", ":engine", ":engine simplify x"} {
		_, err := s.exec(ctx, line)
		assert.Error(t, err, "line %q", line)
	}

	quit, err := s.exec(ctx, ":quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestSessionEngineWithoutEngineDiscards(t *testing.T) {
	s, _ := newTestSession(t)
	execLines(t, s, "push_text x", ":engine simplify 1")
	assert.True(t, s.interp.ErrorFlash())
	assert.Equal(t, []string{"x"}, stackLatex(s))
}

func TestComplete(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Contains(t, s.complete("push_"), "push_math")
	assert.Contains(t, s.complete("dup;push_te"), "dup;push_text")
	assert.Contains(t, s.complete("dup; push_te"), "dup; push_text")
	assert.Nil(t, s.complete("push_text x"))
}

func TestRunScript(t *testing.T) {
	s, _ := newTestSession(t)
	cmd := &cobra.Command{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)

	script := "# comment\npush_text a\npush_text b;swap\n:quit\npush_text never\n"
	require.NoError(t, runScript(cmd, s, strings.NewReader(script), false))
	assert.Equal(t, []string{"b", "a"}, stackLatex(s))

	err := runScript(cmd, s, strings.NewReader("push_text c\nnip;nip;nip\n"), false)
	assert.ErrorContains(t, err, "line 2")

	require.NoError(t, runScript(cmd, s, strings.NewReader("clear_stack\nnip\npush_text d\n"), true))
	assert.Equal(t, []string{"d"}, stackLatex(s))
}

func TestFormatState(t *testing.T) {
	s, out := newTestSession(t)
	execLines(t, s, "push_text a;push_math x+y;mode stack;prefix_digit 2")
	FormatState(out, s.interp, s.state, false)

	got := out.String()
	assert.Contains(t, got, "├─ 2 a")
	assert.Contains(t, got, "└─ 1 x+y")
	assert.Contains(t, got, "mode stack")
	assert.Contains(t, got, "prefix 2")
	assert.Contains(t, got, "modified")

	out.Reset()
	execLines(t, s, "dissect;dissect_descend 2")
	FormatState(out, s.interp, s.state, false)
	assert.Contains(t, out.String(), `\htmlClass{`+"dissect-highlight"+`}{y}`)
	assert.Equal(t, interp.ModeDissect, s.interp.Mode())
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"repl", "run", "render", "commands", "keys"} {
		assert.Contains(t, names, want)
	}
}

func TestCommandsCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", "", "--no-color", "commands", "dissect_"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "dissect_move left|right")
	assert.NotContains(t, out.String(), "push_text")
}
