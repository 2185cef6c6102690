package interp

import (
	"strings"
	"testing"

	"github.com/aledsdavies/texstack/core/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopHandler(_ *Context, s *state.Stack, _ ...string) (*state.Stack, error) { return s, nil }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(CommandInfo{Name: "alpha", Handler: nopHandler}))

	assert.Error(t, r.Register(CommandInfo{Name: "alpha", Handler: nopHandler}), "duplicate")
	assert.Error(t, r.Register(CommandInfo{Name: "", Handler: nopHandler}), "empty name")
	assert.Error(t, r.Register(CommandInfo{Name: "beta"}), "no handler")

	info, ok := r.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", info.Name)
	_, ok = r.Lookup("alp")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryMustRegisterPanicsOnCollision(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(CommandInfo{Name: "x", Handler: nopHandler})
	assert.Panics(t, func() { r.MustRegister(CommandInfo{Name: "x", Handler: nopHandler}) })
}

func TestRegistryComplete(t *testing.T) {
	r := DefaultRegistry()

	dissect := r.Complete("dissect")
	require.NotEmpty(t, dissect)
	for _, name := range dissect {
		assert.True(t, strings.HasPrefix(name, "dissect"), name)
	}
	assert.Contains(t, dissect, "dissect_move")
	assert.IsIncreasing(t, dissect)

	assert.Empty(t, r.Complete("zzz"))
	assert.Len(t, r.Names(), r.Len())
	assert.Len(t, r.Commands(), r.Len())
}

func TestRegistrySuggest(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name string
		want string
	}{
		{"ration", "rationalize"},
		{"dupp", "dup"},
		{"transpos", "transpose"},
		{"qqqqq", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Suggest(tt.name))
		})
	}
}

func TestDefaultRegistryHasEveryCommand(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{
		"dup", "drop", "swap", "rot", "over", "nip", "pick", "clear_stack", "float", "unfloat",
		"undo", "redo", "rationalize", "evaluate", "dissolve", "tag",
		"to_document", "from_document", "delete_selection", "select", "move_selection", "new_document",
		"dissect", "dissect_descend", "dissect_ascend", "dissect_move", "dissect_copy",
		"dissect_extract", "dissect_replace", "dissect_finish",
		"infix", "superscript", "subscript", "concat", "finish_text_entry",
	} {
		info, ok := r.Lookup(name)
		if assert.True(t, ok, name) {
			assert.NotEmpty(t, info.Summary, name)
		}
	}
}
