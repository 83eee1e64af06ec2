package toolchain

import (
	"slices"
	"sort"
)

// ResolvedFlags is what a build generator needs for one profile and
// artifact kind. It includes the flags of every enabled feature.
type ResolvedFlags struct {
	CompilerFlags FlagSet
	LinkerFlags   FlagSet
	Features      FeatureNames
}

func (f ResolvedFlags) clone() ResolvedFlags {
	return ResolvedFlags{
		CompilerFlags: FlagSet{set: f.CompilerFlags.set.clone()},
		LinkerFlags:   FlagSet{set: f.LinkerFlags.set.clone()},
		Features:      FeatureNames{set: f.Features.set.clone(), expanded: f.Features.expanded},
	}
}

// ResolvedCompiler is an immutable, fully resolved compiler. Only its
// concrete profiles are visible.
type ResolvedCompiler struct {
	name     string
	chain    []string
	cxxPath  string
	cPath    string
	profiles map[string]*[kindCount]ResolvedFlags
}

// Name returns the compiler name.
func (c *ResolvedCompiler) Name() string {
	return c.name
}

// Chain returns the extends chain, base compiler first, c last.
func (c *ResolvedCompiler) Chain() []string {
	return slices.Clone(c.chain)
}

// IsDerivedFrom reports whether name is c or one of its bases.
func (c *ResolvedCompiler) IsDerivedFrom(name string) bool {
	return slices.Contains(c.chain, name)
}

// CxxPath returns the C++ compiler executable, if any was declared.
func (c *ResolvedCompiler) CxxPath() string {
	return c.cxxPath
}

// CPath returns the C compiler executable, if any was declared.
func (c *ResolvedCompiler) CPath() string {
	return c.cPath
}

// ProfileNames returns the sorted names of the concrete profiles.
func (c *ResolvedCompiler) ProfileNames() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasProfile reports whether profile is a concrete profile of c.
func (c *ResolvedCompiler) HasProfile(profile string) bool {
	_, ok := c.profiles[profile]
	return ok
}

// FlagsFor returns the flags for profile and kind. ok is false when the
// profile does not exist or is abstract.
func (c *ResolvedCompiler) FlagsFor(profile string, kind ArtifactKind) (flags ResolvedFlags, ok bool) {
	p, ok := c.profiles[profile]
	if !ok || kind < 0 || int(kind) >= kindCount {
		return ResolvedFlags{}, false
	}
	return p[kind].clone(), true
}

// FeatureEnabled reports whether feature is enabled for profile and kind.
func (c *ResolvedCompiler) FeatureEnabled(profile string, kind ArtifactKind, feature string) bool {
	p, ok := c.profiles[profile]
	if !ok || kind < 0 || int(kind) >= kindCount {
		return false
	}
	return p[kind].Features.Has(feature)
}
