package toolchain

import (
	"fmt"
	"strconv"
)

// ArtifactKind is the kind of artifact a project produces.
type ArtifactKind int

const (
	Bin ArtifactKind = iota // executable
	Lib                     // static library
	Dyn                     // dynamic library

	kindCount = 3
)

// ArtifactKinds lists every artifact kind.
var ArtifactKinds = [kindCount]ArtifactKind{Bin, Lib, Dyn}

func (k ArtifactKind) String() string {
	switch k {
	case Bin:
		return "bin"
	case Lib:
		return "lib"
	case Dyn:
		return "dyn"
	}
	return "ArtifactKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseArtifactKind parses "bin", "lib" or "dyn".
func ParseArtifactKind(s string) (ArtifactKind, error) {
	for _, k := range ArtifactKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid artifact kind %q: must be one of bin, lib, dyn", s)
}

// Location is the place a declaration was loaded from.
// It only feeds error messages.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.Line == 0 {
		return l.File
	}
	return l.File + ":" + strconv.Itoa(l.Line)
}

// -----------------------------------------------------------------------------

// Scope holds the flags and features a profile adds, either for every
// artifact kind or for one of them.
type Scope struct {
	CompilerFlags FlagSet
	LinkerFlags   FlagSet
	Features      FeatureNames
}

func (s Scope) isEmpty() bool {
	return s.CompilerFlags.Len() == 0 && s.LinkerFlags.Len() == 0 && s.Features.Len() == 0
}

// Profile is a build configuration such as debug or release.
type Profile struct {
	Name     string
	Extends  string
	Abstract bool

	// Common applies to every artifact kind.
	Common Scope
	// Kinds extends Common for one artifact kind.
	Kinds map[ArtifactKind]Scope

	Loc Location
}

func (p *Profile) nodeName() string    { return p.Name }
func (p *Profile) extendsName() string { return p.Extends }
func (p *Profile) location() Location  { return p.Loc }

// Feature is a named bundle of flags that may enable other features.
type Feature struct {
	Name          string
	Description   string
	CompilerFlags FlagSet
	LinkerFlags   FlagSet
	Enables       FeatureNames

	// Profiles are applied on top of a resolved profile of the same name
	// when the feature is enabled in it.
	Profiles map[string]*Profile

	Loc Location
}

// Rule constrains which features may be enabled together.
// The implementations are OnlyOne and IncompatibleWith.
type Rule interface {
	RuleName() string
	// References returns every feature name the rule mentions.
	References() []string
	Location() Location

	rule()
}

// OnlyOne allows at most one of Features to be enabled.
// A derived scope choosing a member replaces the member chosen by its base.
type OnlyOne struct {
	Name     string
	Features []string
	Loc      Location
}

func (r *OnlyOne) RuleName() string     { return r.Name }
func (r *OnlyOne) References() []string { return r.Features }
func (r *OnlyOne) Location() Location   { return r.Loc }
func (*OnlyOne) rule()                  {}

// IncompatibleWith forbids Feature to be enabled together with any of With.
type IncompatibleWith struct {
	Name    string
	Feature string
	With    []string
	Loc     Location
}

func (r *IncompatibleWith) RuleName() string { return r.Name }
func (r *IncompatibleWith) References() []string {
	return append([]string{r.Feature}, r.With...)
}
func (r *IncompatibleWith) Location() Location { return r.Loc }
func (*IncompatibleWith) rule()                {}

// Compiler is a compiler declaration as loaded from a toolchain file.
// Declarations are never modified once registered.
type Compiler struct {
	Name     string
	Extends  string
	Abstract bool

	// CxxPath and CPath locate the compiler executables.
	// Empty means inherited from the base compiler.
	CxxPath string
	CPath   string

	Profiles map[string]*Profile
	Features map[string]*Feature
	Rules    map[string]Rule

	Loc Location
}

func (c *Compiler) nodeName() string    { return c.Name }
func (c *Compiler) extendsName() string { return c.Extends }
func (c *Compiler) location() Location  { return c.Loc }
