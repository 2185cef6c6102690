package interp

import (
	"testing"

	"github.com/aledsdavies/texstack/core/errs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []Subcommand
	}{
		{"single", "dup", []Subcommand{{Name: "dup"}}},
		{"arguments", "infix +", []Subcommand{{Name: "infix", Args: []string{"+"}}}},
		{"batch", "push_text x;push_text 2;superscript", []Subcommand{
			{Name: "push_text", Args: []string{"x"}},
			{Name: "push_text", Args: []string{"2"}},
			{Name: "superscript"},
		}},
		{"extra whitespace", "  swap ;  ; drop  ", []Subcommand{{Name: "swap"}, {Name: "drop"}}},
		{"escaped semicolon", "text_entry_char [semicolon]", []Subcommand{
			{Name: "text_entry_char", Args: []string{";"}},
		}},
		{"escaped space", "tag left[space]side", []Subcommand{
			{Name: "tag", Args: []string{"left side"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.command)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseCommand(%q) mismatch (-want +got):\n%s", tt.command, diff)
			}
		})
	}
}

func TestParseCommandEmpty(t *testing.T) {
	for _, command := range []string{"", "   ", ";;"} {
		_, err := ParseCommand(command)
		assert.True(t, errs.Is(err, errs.ErrInvalidArgument), "command %q", command)
	}
}

func TestSubcommandStringRoundTrip(t *testing.T) {
	sub := Subcommand{Name: "tag", Args: []string{"a;b", "c d"}}
	got, err := ParseCommand(sub.String())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sub, got[0])
}

func TestPrefixArgumentDigits(t *testing.T) {
	var p PrefixArgument
	assert.False(t, p.IsSet())

	for _, d := range []int{1, 2} {
		p = p.WithDigit(d)
	}
	assert.Equal(t, 12, p.Value)
	assert.Equal(t, "12", p.String())

	p = PrefixArgument{All: true}
	assert.Equal(t, "*", p.String())
	assert.Equal(t, PrefixArgument{Value: 7}, p.WithDigit(7))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("math_entry")
	require.True(t, ok)
	assert.True(t, m.IsEntry())

	m, ok = ParseMode("stack")
	require.True(t, ok)
	assert.False(t, m.IsEntry())

	_, ok = ParseMode("nonsense")
	assert.False(t, ok)
	assert.Contains(t, Modes(), ModeDissect)
}
