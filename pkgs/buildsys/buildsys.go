package buildsys

import (
	"fmt"

	"github.com/goplus/kiss/internal/toolchain"
)

// Configurator captures what build helpers (CMake, Autotools, etc) take
// from a resolved toolchain for their configure step.
type Configurator interface {
	// Compiler selects the compiler executables.
	Compiler(rc *toolchain.ResolvedCompiler)

	// Flags passes the resolved flags of one artifact kind.
	Flags(kind toolchain.ArtifactKind, flags toolchain.ResolvedFlags)

	// Target configures code generation for a target platform.
	Target(t *toolchain.Target) error
}

// Apply feeds the flags of profile and kind of tc, its compiler and its
// target, if any, to c.
func Apply(c Configurator, tc *toolchain.Toolchain, profile string, kind toolchain.ArtifactKind) error {
	flags, ok := tc.Compiler.FlagsFor(profile, kind)
	if !ok {
		return fmt.Errorf("compiler '%s' has no profile '%s'", tc.Compiler.Name(), profile)
	}
	c.Compiler(tc.Compiler)
	c.Flags(kind, flags)
	if tc.Target != nil {
		return c.Target(tc.Target)
	}
	return nil
}
