package cmake

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/goplus/kiss/pkgs/buildsys"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake collects the arguments of a CMake configure step with chainable
// configuration. It does not run cmake.
type CMake struct {
	SourceDir string
	buildDir  string
	generator string
	buildType string
	toolchain string
	platform  string
	Defines   map[string]defineValue

	cxxFlags []string
	cFlags   []string
}

var _ buildsys.Configurator = (*CMake)(nil)

// New creates a CMake configure step for the project in sourceDir.
func New(sourceDir string) *CMake {
	return &CMake{
		SourceDir: sourceDir,
		Defines:   map[string]defineValue{},
	}
}

func (c *CMake) Source(dir string) *CMake {
	c.SourceDir = dir
	return c
}

func (c *CMake) BuildDir(dir string) *CMake {
	c.buildDir = dir
	return c
}

func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

func (c *CMake) Define(key, value string) *CMake {
	return c.define(key, value, "STRING")
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if value {
		return c.define(key, "ON", "BOOL")
	}
	return c.define(key, "OFF", "BOOL")
}

func (c *CMake) define(key, value, typeName string) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	c.Defines[key] = defineValue{value: value, typeName: typeName}
	return c
}

// Compiler selects the executables of rc. Paths rc does not declare are
// left to CMake.
func (c *CMake) Compiler(rc *toolchain.ResolvedCompiler) {
	if p := rc.CxxPath(); p != "" {
		c.define("CMAKE_CXX_COMPILER", p, "FILEPATH")
	}
	if p := rc.CPath(); p != "" {
		c.define("CMAKE_C_COMPILER", p, "FILEPATH")
	}
}

// linkerFlagsVar maps an artifact kind to the CMake variable holding
// its link flags. Static libraries are archived, not linked.
var linkerFlagsVar = map[toolchain.ArtifactKind]string{
	toolchain.Bin: "CMAKE_EXE_LINKER_FLAGS",
	toolchain.Dyn: "CMAKE_SHARED_LINKER_FLAGS",
}

// Flags passes the resolved flags of one artifact kind. Compiler flags
// go to CMAKE_CXX_FLAGS, linker flags to the variable of kind, if any.
func (c *CMake) Flags(kind toolchain.ArtifactKind, flags toolchain.ResolvedFlags) {
	c.cxxFlags = append(c.cxxFlags, flags.CompilerFlags.Flags()...)
	if v, ok := linkerFlagsVar[kind]; ok && flags.LinkerFlags.Len() > 0 {
		c.Define(v, strings.Join(flags.LinkerFlags.Flags(), " "))
	}
}

// IsVisualStudio reports whether the generator is a Visual Studio one.
func (c *CMake) IsVisualStudio() bool {
	return strings.HasPrefix(c.generator, "Visual Studio")
}

var (
	// vsPlatforms maps target architectures to the -A platform of
	// Visual Studio generators.
	vsPlatforms = map[string]string{
		"x86_64":  "x64",
		"i686":    "Win32",
		"aarch64": "ARM64",
		"arm":     "ARM",
	}
	// archFlags maps target architectures to the code generation flags
	// of the other generators.
	archFlags = map[string]string{
		"x86_64":  "-m64",
		"i686":    "-m32",
		"aarch64": "-march=armv8-a",
		"arm":     "-march=armv7-a",
	}
)

// Target configures code generation for t. Set the generator first: a
// Visual Studio generator selects the platform, other generators get an
// architecture flag.
func (c *CMake) Target(t *toolchain.Target) error {
	if c.IsVisualStudio() {
		platform, ok := vsPlatforms[t.Arch]
		if !ok {
			return fmt.Errorf("unsupported target architecture for %s: %s", c.generator, t.Name)
		}
		c.platform = platform
		return nil
	}
	flag, ok := archFlags[t.Arch]
	if !ok {
		return fmt.Errorf("unsupported target architecture: %s", t.Name)
	}
	c.cFlags = append(c.cFlags, flag)
	c.cxxFlags = append(c.cxxFlags, flag)
	return nil
}

// ConfigureArgs returns the arguments of `cmake` for the configure step,
// followed by args.
func (c *CMake) ConfigureArgs(args ...string) []string {
	cmakeArgs := []string{"--no-warn-unused-cli", "-S", c.SourceDir}
	if c.buildDir != "" {
		cmakeArgs = append(cmakeArgs, "-B", c.buildDir)
	}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.platform != "" {
		cmakeArgs = append(cmakeArgs, "-A", c.platform)
	}
	if c.toolchain != "" {
		c.define("CMAKE_TOOLCHAIN_FILE", c.toolchain, "FILEPATH")
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	if len(c.cxxFlags) > 0 {
		c.Define("CMAKE_CXX_FLAGS", joinUnique(c.cxxFlags))
	}
	if len(c.cFlags) > 0 {
		c.Define("CMAKE_C_FLAGS", joinUnique(c.cFlags))
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

func joinUnique(flags []string) string {
	seen := make(map[string]bool, len(flags))
	ret := make([]string, 0, len(flags))
	for _, f := range flags {
		if !seen[f] {
			seen[f] = true
			ret = append(ret, f)
		}
	}
	return strings.Join(ret, " ")
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}
