package toolchain

import (
	"fmt"
	"strings"
)

// Target is a platform to build for, named arch-vendor-os-abi.
type Target struct {
	Name   string
	Arch   string
	Vendor string
	OS     string
	ABI    string

	PointerWidth int
	Endianness   string // "little" or "big"

	Loc Location
}

// ParseTarget splits a target name such as "x86_64-pc-windows-msvc"
// into a Target.
func ParseTarget(name string) (*Target, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid target name '%s': expected arch-vendor-os-abi", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid target name '%s': expected arch-vendor-os-abi", name)
		}
	}
	return &Target{
		Name:   name,
		Arch:   parts[0],
		Vendor: parts[1],
		OS:     parts[2],
		ABI:    parts[3],
	}, nil
}

// Toolchain pairs a resolved compiler with the target it builds for.
type Toolchain struct {
	Compiler *ResolvedCompiler
	Target   *Target
}

// NewToolchain resolves compiler through c and looks up target.
// An empty target name leaves Target nil.
func NewToolchain(c *Cache, compiler, target string) (*Toolchain, error) {
	rc, err := c.Resolve(compiler)
	if err != nil {
		return nil, err
	}
	tc := &Toolchain{Compiler: rc}
	if target == "" {
		return tc, nil
	}
	t, ok := c.Registry().Target(target)
	if !ok {
		return nil, &UnresolvedReferenceError{Kind: "target", Name: target}
	}
	tc.Target = t
	return tc, nil
}

// defaultCompilers lists, per GOOS, the compilers tried in order by
// DefaultCompiler.
var defaultCompilers = map[string][]string{
	"windows": {"clangcl", "cl"},
	"linux":   {"gcc", "clang"},
	"darwin":  {"clang", "gcc"},
}

// DefaultCompiler returns the first concrete compiler of reg that is
// usual on goos, or false if there is none.
func DefaultCompiler(reg *Registry, goos string) (string, bool) {
	for _, name := range defaultCompilers[goos] {
		if c, ok := reg.Compiler(name); ok && !c.Abstract {
			return name, true
		}
	}
	return "", false
}
