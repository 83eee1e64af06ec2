package toolchain

import "slices"

// nameSet is an insertion-ordered set of strings.
// The order only makes output stable; equality ignores it.
type nameSet struct {
	order []string
	index map[string]struct{}
}

func newNameSet(names []string) nameSet {
	var s nameSet
	s.add(names...)
	return s
}

func (s *nameSet) add(names ...string) {
	for _, name := range names {
		if _, ok := s.index[name]; ok {
			continue
		}
		if s.index == nil {
			s.index = make(map[string]struct{}, len(names))
		}
		s.index[name] = struct{}{}
		s.order = append(s.order, name)
	}
}

func (s nameSet) has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s nameSet) clone() nameSet {
	return newNameSet(s.order)
}

func (s nameSet) union(o nameSet) nameSet {
	ret := s.clone()
	ret.add(o.order...)
	return ret
}

func (s nameSet) without(name string) nameSet {
	var ret nameSet
	for _, n := range s.order {
		if n != name {
			ret.add(n)
		}
	}
	return ret
}

func (s nameSet) intersect(names []string) []string {
	var ret []string
	for _, n := range names {
		if s.has(n) && !slices.Contains(ret, n) {
			ret = append(ret, n)
		}
	}
	return ret
}

func (s nameSet) equal(o nameSet) bool {
	if len(s.order) != len(o.order) {
		return false
	}
	for _, n := range s.order {
		if !o.has(n) {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

// FlagSet is a set of compiler or linker flags. Merging is a plain union.
type FlagSet struct {
	set nameSet
}

// NewFlagSet returns a FlagSet holding flags, duplicates dropped.
func NewFlagSet(flags ...string) FlagSet {
	return FlagSet{set: newNameSet(flags)}
}

// Add inserts flags into s.
func (s *FlagSet) Add(flags ...string) {
	s.set.add(flags...)
}

// Has reports whether flag is in s.
func (s FlagSet) Has(flag string) bool {
	return s.set.has(flag)
}

// Len returns the number of distinct flags.
func (s FlagSet) Len() int {
	return len(s.set.order)
}

// Flags returns a copy of the flags in first-added order.
func (s FlagSet) Flags() []string {
	return slices.Clone(s.set.order)
}

// Union returns a new FlagSet holding the flags of both s and o.
func (s FlagSet) Union(o FlagSet) FlagSet {
	return FlagSet{set: s.set.union(o.set)}
}

// Equal reports whether s and o hold the same flags, regardless of order.
func (s FlagSet) Equal(o FlagSet) bool {
	return s.set.equal(o.set)
}

// MergeFlags is the flag merge used everywhere in resolution.
// It is idempotent and commutative up to Equal.
func MergeFlags(a, b FlagSet) FlagSet {
	return a.Union(b)
}

// -----------------------------------------------------------------------------

// FeatureNames is a set of feature names. It remembers whether it
// already went through Close so the closure is computed only once.
type FeatureNames struct {
	set      nameSet
	expanded bool
}

// NewFeatureNames returns a non-expanded set holding names.
func NewFeatureNames(names ...string) FeatureNames {
	return FeatureNames{set: newNameSet(names)}
}

// Add inserts names and clears the expanded mark when something new
// was added.
func (s *FeatureNames) Add(names ...string) {
	n := len(s.set.order)
	s.set.add(names...)
	if len(s.set.order) != n {
		s.expanded = false
	}
}

// Has reports whether name is in s.
func (s FeatureNames) Has(name string) bool {
	return s.set.has(name)
}

// Len returns the number of names.
func (s FeatureNames) Len() int {
	return len(s.set.order)
}

// Names returns a copy of the names in first-added order.
func (s FeatureNames) Names() []string {
	return slices.Clone(s.set.order)
}

// Expanded reports whether s is already transitively closed.
func (s FeatureNames) Expanded() bool {
	return s.expanded
}

// Equal reports whether s and o hold the same names.
func (s FeatureNames) Equal(o FeatureNames) bool {
	return s.set.equal(o.set)
}

// Union returns the names of both sets. The result is expanded only
// when both inputs are.
func (s FeatureNames) Union(o FeatureNames) FeatureNames {
	return FeatureNames{set: s.set.union(o.set), expanded: s.expanded && o.expanded}
}

// Without returns s minus name. Removing a name keeps the expanded mark:
// the features name enabled stay enabled.
func (s FeatureNames) Without(name string) FeatureNames {
	return FeatureNames{set: s.set.without(name), expanded: s.expanded}
}

// Intersect returns the members of names that are in s, in the order
// of names.
func (s FeatureNames) Intersect(names []string) []string {
	return s.set.intersect(names)
}
