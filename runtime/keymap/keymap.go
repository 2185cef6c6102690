// Package keymap translates key presses into interpreter command strings.
//
// A keymap is a TOML document with one table per mode. Keys are named the
// way a terminal front end reports them: a single character ("a", "+"), a
// special key ("Enter", "Backspace", "Left") or a modified key ("C-z" for
// control, "S-Enter" for shift). The [entry] table is shared by every entry
// mode.
package keymap

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pelletier/go-toml"

	"github.com/aledsdavies/texstack/runtime/interp"
)

// EntryTable names the table consulted in every entry mode after the mode's
// own table.
const EntryTable = "entry"

//go:embed default.toml
var defaultKeymap []byte

// Binding is one key of one table.
type Binding struct {
	Key     string
	Command string
}

// Keymap holds key bindings per table.
type Keymap struct {
	tables map[string]map[string]string
}

// Default returns the embedded default keymap.
func Default() *Keymap {
	k, err := Parse(defaultKeymap)
	if err != nil {
		panic(fmt.Sprintf("embedded keymap: %v", err))
	}
	return k
}

// Parse reads a keymap from TOML. Table names must be modes or "entry" and
// every value must be a non-empty command string.
func Parse(data []byte) (*Keymap, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}

	k := &Keymap{tables: make(map[string]map[string]string)}
	for _, table := range tree.Keys() {
		if table != EntryTable {
			if _, ok := interp.ParseMode(table); !ok {
				return nil, fmt.Errorf("keymap: unknown mode %q", table)
			}
		}
		sub, ok := tree.GetPath([]string{table}).(*toml.Tree)
		if !ok {
			return nil, fmt.Errorf("keymap: %q must be a table", table)
		}
		bindings := make(map[string]string)
		for _, key := range sub.Keys() {
			command, ok := sub.GetPath([]string{key}).(string)
			if !ok || strings.TrimSpace(command) == "" {
				pos := tree.GetPositionPath([]string{table, key})
				return nil, fmt.Errorf("keymap: %s.%q at %s must be a command string", table, key, pos)
			}
			if _, err := interp.ParseCommand(command); err != nil {
				return nil, fmt.Errorf("keymap: %s.%q: %w", table, key, err)
			}
			bindings[key] = command
		}
		k.tables[table] = bindings
	}
	return k, nil
}

// Load reads the keymap at path and lays it over the default one.
func Load(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}
	user, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Default().Merge(user), nil
}

// Merge returns a keymap with the bindings of o replacing those of k.
func (k *Keymap) Merge(o *Keymap) *Keymap {
	out := &Keymap{tables: make(map[string]map[string]string, len(k.tables))}
	for _, src := range []*Keymap{k, o} {
		for table, bindings := range src.tables {
			dst := out.tables[table]
			if dst == nil {
				dst = make(map[string]string, len(bindings))
				out.tables[table] = dst
			}
			for key, command := range bindings {
				dst[key] = command
			}
		}
	}
	return out
}

// Lookup returns the command string for key in mode, trying the mode's
// table, then the shared entry table, then the fallbacks.
func (k *Keymap) Lookup(mode interp.Mode, key string) (string, bool) {
	if command, ok := k.tables[string(mode)][key]; ok {
		return command, true
	}
	if mode.IsEntry() {
		if command, ok := k.tables[EntryTable][key]; ok {
			return command, true
		}
	}
	return fallback(mode, key)
}

func fallback(mode interp.Mode, key string) (string, bool) {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || !unicode.IsPrint(r) {
		return "", false
	}
	switch {
	case mode.IsEntry():
		return "text_entry_char " + interp.EscapeArgument(key), true
	case mode == interp.ModeStack && unicode.IsDigit(r):
		return "prefix_digit " + key, true
	case mode == interp.ModeBase && unicode.IsDigit(r):
		return "start_entry math_entry;text_entry_char " + key, true
	case mode == interp.ModeBase && unicode.IsLetter(r):
		return "push_text " + key, true
	}
	return "", false
}

// Bindings lists the explicit bindings of a table, sorted by key.
func (k *Keymap) Bindings(table string) []Binding {
	bindings := k.tables[table]
	out := make([]Binding, 0, len(bindings))
	for key, command := range bindings {
		out = append(out, Binding{Key: key, Command: command})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Tables returns the table names, sorted.
func (k *Keymap) Tables() []string {
	out := make([]string, 0, len(k.tables))
	for table := range k.tables {
		out = append(out, table)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every bound command names a registered command.
func (k *Keymap) Validate(r *interp.Registry) error {
	var unknown []string
	for _, table := range k.Tables() {
		for _, b := range k.Bindings(table) {
			subs, err := interp.ParseCommand(b.Command)
			if err != nil {
				return err
			}
			for _, sub := range subs {
				if _, ok := r.Lookup(sub.Name); !ok {
					unknown = append(unknown, fmt.Sprintf("%s.%s: %s", table, b.Key, sub.Name))
				}
			}
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("keymap binds unknown commands: %s", strings.Join(unknown, ", "))
	}
	return nil
}
