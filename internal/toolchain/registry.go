package toolchain

import "sort"

// Registry holds every declared compiler and target by name.
//
// A Registry is filled once while toolchain files are loaded and is only
// read afterwards, so lookups need no locking. Register must not be
// called concurrently with anything else.
type Registry struct {
	compilers map[string]*Compiler
	targets   map[string]*Target
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		compilers: make(map[string]*Compiler),
		targets:   make(map[string]*Target),
	}
}

// Register adds a compiler declaration. Compiler names are global:
// registering a name twice is a DuplicateNameError.
func (r *Registry) Register(c *Compiler) error {
	if old, ok := r.compilers[c.Name]; ok {
		return &DuplicateNameError{Kind: "compiler", Name: c.Name, First: old.Loc, Second: c.Loc}
	}
	r.compilers[c.Name] = c
	return nil
}

// RegisterTarget adds a target declaration.
func (r *Registry) RegisterTarget(t *Target) error {
	if old, ok := r.targets[t.Name]; ok {
		return &DuplicateNameError{Kind: "target", Name: t.Name, First: old.Loc, Second: t.Loc}
	}
	r.targets[t.Name] = t
	return nil
}

// Compiler returns the compiler declared as name.
func (r *Registry) Compiler(name string) (*Compiler, bool) {
	c, ok := r.compilers[name]
	return c, ok
}

// Target returns the target declared as name.
func (r *Registry) Target(name string) (*Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Compilers returns the names of the concrete compilers, sorted.
func (r *Registry) Compilers() []string {
	var names []string
	for name, c := range r.compilers {
		if !c.Abstract {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Targets returns the names of all targets, sorted.
func (r *Registry) Targets() []string {
	return sortedKeys(r.targets)
}
