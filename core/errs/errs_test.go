package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := StackUnderflow(2, 1)
	assert.Equal(t, "STACK_UNDERFLOW: need 2 item(s), stack has 1", err.Error())

	needed, ok := err.GetContext("needed")
	require.True(t, ok)
	assert.Equal(t, 2, needed)

	wrapped := Wrap(ErrEngineFailure, "engine exited", errors.New("exit status 1"))
	assert.Equal(t, "ENGINE_FAILURE: engine exited: exit status 1", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "exit status 1")
}

func TestTypeSurvivesWrapping(t *testing.T) {
	base := PrefixArgumentRequired("pick")
	wrapped := fmt.Errorf("handler pick: %w", base)

	assert.True(t, Is(wrapped, ErrPrefixArgumentRequired))
	assert.False(t, Is(wrapped, ErrStackUnderflow))
	assert.Equal(t, ErrPrefixArgumentRequired, Type(wrapped))
	assert.True(t, IsRecoverable(wrapped))
}

func TestRecoverableTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"underflow", StackUnderflow(1, 0), true},
		{"type", StackType("expression"), true},
		{"prefix", PrefixArgumentRequired("pick"), true},
		{"unknown command", UnknownCommand("swpa", "swap"), true},
		{"plain error", errors.New("nil map write"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecoverable(tt.err))
		})
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	err := UnknownCommand("swpa", "swap")
	assert.Contains(t, err.Error(), `did you mean "swap"?`)

	bare := UnknownCommand("zzz", "")
	_, ok := bare.GetContext("suggestion")
	assert.False(t, ok)
}
