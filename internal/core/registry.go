package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps variable names to their definitions and holds the named
// variable sets configurations are built from.
// A Registry is never mutated after construction and is safe for concurrent use.
type Registry struct {
	defs    map[string]VariableDefinition
	order   []string
	sets    map[string][]string
	version string
}

// NewRegistry builds a registry from definitions and sets.
// Fails on a duplicate name or a set that references an unknown name.
func NewRegistry(defs []VariableDefinition, sets map[string][]string) (*Registry, error) {
	r := &Registry{
		defs:  make(map[string]VariableDefinition, len(defs)),
		order: make([]string, 0, len(defs)),
		sets:  make(map[string][]string, len(sets)),
	}

	for _, def := range defs {
		if _, exists := r.defs[def.Name]; exists {
			return nil, fmt.Errorf("variable already defined: %s", def.Name)
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}

	for name, members := range sets {
		var unknown []string
		for _, m := range members {
			if _, ok := r.defs[m]; !ok {
				unknown = append(unknown, m)
			}
		}
		if len(unknown) > 0 {
			return nil, fmt.Errorf("set %s references unknown variables: %s", name, strings.Join(unknown, ", "))
		}
		r.sets[name] = append([]string(nil), members...)
	}

	return r, nil
}

// Lookup returns the definition for name.
// Returns false if the name is not known; callers decide whether that is fatal.
func (r *Registry) Lookup(name string) (VariableDefinition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// VariablesInSet returns the members of a named set in declared order.
// Returns nil for an unknown set.
func (r *Registry) VariablesInSet(set string) []string {
	members, ok := r.sets[set]
	if !ok {
		return nil
	}
	return append([]string(nil), members...)
}

// HasSet reports whether a named set exists.
func (r *Registry) HasSet(set string) bool {
	_, ok := r.sets[set]
	return ok
}

// Names returns every variable name in definition order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Sets returns the set names, sorted.
func (r *Registry) Sets() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of variables.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Version returns the definition source version, empty for registries
// built directly with NewRegistry.
func (r *Registry) Version() string {
	return r.version
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry built from the embedded
// definition source. It is built on first use.
// Panics if the embedded source is invalid or does not satisfy every configuration.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := buildRegistry(embeddedDefinitions)
		if err != nil {
			panic(fmt.Sprintf("licor: invalid embedded definitions: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

func buildRegistry(source string) (*Registry, error) {
	defs, err := LoadDefinitions(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	reg, err := defs.Registry()
	if err != nil {
		return nil, err
	}
	if err := checkConfigurations(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
