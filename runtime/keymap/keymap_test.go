package keymap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/texstack/core/state"
	"github.com/aledsdavies/texstack/runtime/interp"
)

func TestDefaultKeymapBindsRegisteredCommands(t *testing.T) {
	k := Default()
	require.NoError(t, k.Validate(interp.DefaultRegistry()))

	for _, table := range k.Tables() {
		if table == EntryTable {
			continue
		}
		_, ok := interp.ParseMode(table)
		assert.True(t, ok, "table %q is not a mode", table)
	}
}

func TestLookup(t *testing.T) {
	k := Default()
	tests := []struct {
		mode interp.Mode
		key  string
		want string
		ok   bool
	}{
		{interp.ModeBase, "+", "infix +", true},
		{interp.ModeBase, "*", `infix \cdot`, true},
		{interp.ModeBase, "C-z", "undo", true},
		{interp.ModeBase, "x", "push_text x", true},
		{interp.ModeBase, "7", "start_entry math_entry;text_entry_char 7", true},
		{interp.ModeBase, "F13", "", false},
		{interp.ModeStack, "3", "prefix_digit 3", true},
		{interp.ModeStack, "d", "dup", true},
		{interp.ModeStack, "q", "", false},
		{interp.ModeSymbol, "a", "push_command alpha", true},
		{interp.ModeMathEntry, "Enter", "finish_text_entry", true},
		{interp.ModeMathEntry, "x", "text_entry_char x", true},
		{interp.ModeTextEntry, ";", "text_entry_char [semicolon]", true},
		{interp.ModeTextEntry, " ", "text_entry_char [space]", true},
		{interp.ModeTextEntry, "Space", "text_entry_char [space]", true},
		{interp.ModeTextEntry, "S-Enter", "finish_text_entry heading", true},
		{interp.ModeMathEntry, "S-Enter", "", false},
		{interp.ModeMathEntry, "\x01", "", false},
		{interp.ModeDissect, "Left", "dissect_move left", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.key, func(t *testing.T) {
			got, ok := k.Lookup(tt.mode, tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unknown mode", "[nowhere]\na = \"dup\"\n", `unknown mode "nowhere"`},
		{"not a table", "base = \"dup\"\n", "must be a table"},
		{"not a string", "[base]\na = 3\n", "must be a command string"},
		{"empty command", "[base]\na = \";\"\n", "empty command"},
		{"bad toml", "[base\n", "keymap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadMergesOverDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.toml")
	require.NoError(t, os.WriteFile(path, []byte("[base]\n\"+\" = \"infix -\"\n\"C-q\" = \"clear_stack\"\n"), 0o644))

	k, err := Load(path)
	require.NoError(t, err)

	got, _ := k.Lookup(interp.ModeBase, "+")
	assert.Equal(t, "infix -", got)
	got, _ = k.Lookup(interp.ModeBase, "C-q")
	assert.Equal(t, "clear_stack", got)
	got, _ = k.Lookup(interp.ModeBase, "C-z")
	assert.Equal(t, "undo", got, "untouched bindings survive")

	orig, _ := Default().Lookup(interp.ModeBase, "+")
	assert.Equal(t, "infix +", orig, "merging does not change the default")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestBindingsSorted(t *testing.T) {
	bindings := Default().Bindings(string(interp.ModeInfix))
	require.NotEmpty(t, bindings)
	for i := 1; i < len(bindings); i++ {
		assert.Less(t, bindings[i-1].Key, bindings[i].Key)
	}
}

// press feeds keys through the keymap into an interpreter, one batch each.
func press(t *testing.T, k *Keymap, i *interp.Interpreter, s *state.AppState, keys ...string) *state.AppState {
	t.Helper()
	for _, key := range keys {
		command, ok := k.Lookup(i.Mode(), key)
		require.True(t, ok, "key %q unbound in %s mode", key, i.Mode())
		next, err := i.ProcessCommand(command, s)
		require.NoError(t, err)
		require.NotNil(t, next, "key %q (%s): %s", key, command, i.Notification())
		s = next
	}
	return s
}

func TestKeySequences(t *testing.T) {
	opts := interp.DefaultOptions()
	opts.LogOutput = io.Discard
	i, err := interp.New(opts)
	require.NoError(t, err)
	k := Default()

	s := press(t, k, i, state.NewAppState(), "1", "2", "Enter", "x", "+")
	require.Equal(t, 1, s.Stack.Len())
	assert.Equal(t, interp.ModeBase, i.Mode())

	s = press(t, k, i, s, "`", "p")
	assert.Equal(t, 2, s.Stack.Len())

	s = press(t, k, i, s, "[", "2", "x")
	assert.Zero(t, s.Stack.Len())
	assert.Equal(t, interp.ModeBase, i.Mode())

	s = press(t, k, i, s, "C-z")
	assert.Equal(t, 2, s.Stack.Len())
}
