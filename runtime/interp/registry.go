package interp

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aledsdavies/texstack/core/state"
	"github.com/armon/go-radix"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Handler executes one subcommand. It receives the stack as transformed by
// the previous subcommands of the batch and returns the new stack; anything
// else it changes goes through c.
type Handler func(c *Context, s *state.Stack, args ...string) (*state.Stack, error)

// CommandInfo describes a registered command.
type CommandInfo struct {
	Name    string
	Usage   string
	Summary string
	Handler Handler
}

// Registry maps command names to handlers. Names are kept in a radix tree
// so prefix completion is a subtree walk.
type Registry struct {
	mu    sync.RWMutex
	names *radix.Tree
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: radix.New()}
}

// Register adds a command. Registering a name twice is an error.
func (r *Registry) Register(info CommandInfo) error {
	if info.Name == "" {
		return fmt.Errorf("command name must not be empty")
	}
	if info.Handler == nil {
		return fmt.Errorf("command %q has no handler", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names.Get(info.Name); exists {
		return fmt.Errorf("command %q already registered", info.Name)
	}
	r.names.Insert(info.Name, info)
	return nil
}

// MustRegister is Register for static tables; a collision is a programming
// error.
func (r *Registry) MustRegister(infos ...CommandInfo) {
	for _, info := range infos {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (CommandInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.names.Get(name)
	if !ok {
		return CommandInfo{}, false
	}
	return v.(CommandInfo), true
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names.Len()
}

// Commands returns every command in name order.
func (r *Registry) Commands() []CommandInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CommandInfo, 0, r.names.Len())
	r.names.Walk(func(_ string, v interface{}) bool {
		out = append(out, v.(CommandInfo))
		return false
	})
	return out
}

// Names returns every command name in order.
func (r *Registry) Names() []string {
	return r.Complete("")
}

// Complete returns the names starting with prefix, in order.
func (r *Registry) Complete(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	r.names.WalkPrefix(prefix, func(name string, _ interface{}) bool {
		out = append(out, name)
		return false
	})
	return out
}

// Suggest returns the registered name closest to an unknown one, or "".
func (r *Registry) Suggest(name string) string {
	candidates := r.Names()
	if len(candidates) == 0 || name == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		// The typo may be longer than the intended name; try it the other way round.
		for _, candidate := range candidates {
			if fuzzy.MatchFold(candidate, name) {
				ranks = append(ranks, fuzzy.Rank{Source: candidate, Target: candidate, Distance: len(name) - len(candidate)})
			}
		}
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
