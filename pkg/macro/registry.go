package macro

import (
	"sort"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// sourceRank orders definition sources; higher ranks shadow lower ones when
// names collide, so user packs can override builtins.
var sourceRank = map[Source]int{
	SourceBuiltin:   0,
	SourceExtension: 1,
	SourceUser:      2,
}

// Registry holds every known macro definition, indexed by name and alias.
// Reads vastly outnumber writes; writes happen only when a pack is loaded
// or reloaded.
type Registry struct {
	mu       sync.RWMutex
	bySource map[Source][]Definition
	index    map[string]*Definition
	all      []*Definition
}

func NewRegistry() *Registry {
	return &Registry{
		bySource: make(map[Source][]Definition),
		index:    make(map[string]*Definition),
	}
}

// NewBuiltinRegistry returns a registry preloaded with the builtin catalog.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	// the builtin catalog always validates
	_ = r.Replace(SourceBuiltin, Builtins())
	return r
}

// Validate checks the arity contract of a definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.New("macro has no name")
	}
	if d.MinArgs > d.MaxArgs {
		return errors.Errorf("macro %q: min_args %d exceeds max_args %d", d.Name, d.MinArgs, d.MaxArgs)
	}
	if len(d.Args) > d.MaxArgs {
		return errors.Errorf("macro %q: %d declared arguments exceed max_args %d", d.Name, len(d.Args), d.MaxArgs)
	}
	return nil
}

// Replace swaps one source's entire contribution and rebuilds the index.
// Definitions that fail validation are skipped and reported; the rest are
// installed regardless, so one bad macro does not take down a pack.
func (r *Registry) Replace(source Source, defs []Definition) error {
	var errs error
	valid := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if def.Source == "" {
			def.Source = source
		}
		valid = append(valid, def)
	}

	r.mu.Lock()
	r.bySource[source] = valid
	r.rebuildLocked()
	r.mu.Unlock()

	return errs
}

func (r *Registry) rebuildLocked() {
	sources := make([]Source, 0, len(r.bySource))
	for source := range r.bySource {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		ri, rj := sourceRank[sources[i]], sourceRank[sources[j]]
		if ri != rj {
			return ri < rj
		}
		return sources[i] < sources[j]
	})

	primary := make(map[string]*Definition)
	for _, source := range sources {
		defs := r.bySource[source]
		for i := range defs {
			primary[strings.ToLower(defs[i].Name)] = &defs[i]
		}
	}

	all := make([]*Definition, 0, len(primary))
	for _, def := range primary {
		all = append(all, def)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	index := make(map[string]*Definition, len(primary))
	for name, def := range primary {
		index[name] = def
	}
	for _, def := range all {
		for _, alias := range def.Aliases {
			key := strings.ToLower(alias)
			// primary names win over aliases
			if _, taken := index[key]; !taken {
				index[key] = def
			}
		}
	}

	r.index = index
	r.all = all
}

// Lookup resolves a macro by primary name or alias, case insensitively.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.index[strings.ToLower(name)]
	return def, ok
}

// All returns every registered definition sorted by name.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the number of distinct macros currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// Flags returns the flag definitions known to the language.
func (r *Registry) Flags() []FlagDefinition {
	return Flags()
}
