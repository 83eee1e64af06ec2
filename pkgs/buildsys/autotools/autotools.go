package autotools

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/goplus/kiss/pkgs/buildsys"
)

// AutoTools collects the environment and arguments of a ./configure step
// with chainable configuration.
type AutoTools struct {
	SourceDir  string
	installDir string
	host       string
	env        map[string]string
}

var _ buildsys.Configurator = (*AutoTools)(nil)

// New creates a configure step for the project in sourceDir.
func New(sourceDir string) *AutoTools {
	return &AutoTools{
		SourceDir: sourceDir,
		env:       map[string]string{},
	}
}

func (a *AutoTools) Source(dir string) *AutoTools {
	a.SourceDir = dir
	return a
}

func (a *AutoTools) InstallDir(dir string) *AutoTools {
	a.installDir = dir
	return a
}

func (a *AutoTools) Env(key, value string) *AutoTools {
	if a.env == nil {
		a.env = map[string]string{}
	}
	a.env[key] = value
	return a
}

// Compiler sets CC and CXX to the executables of rc.
func (a *AutoTools) Compiler(rc *toolchain.ResolvedCompiler) {
	if p := rc.CxxPath(); p != "" {
		a.Env("CXX", p)
	}
	if p := rc.CPath(); p != "" {
		a.Env("CC", p)
	}
}

// Flags appends compiler flags to CFLAGS and CXXFLAGS. Linker flags go
// to LDFLAGS, except for static libraries, which are archived, not linked.
func (a *AutoTools) Flags(kind toolchain.ArtifactKind, flags toolchain.ResolvedFlags) {
	for _, f := range flags.CompilerFlags.Flags() {
		a.appendFlag("CFLAGS", f)
		a.appendFlag("CXXFLAGS", f)
	}
	if kind == toolchain.Lib {
		return
	}
	for _, f := range flags.LinkerFlags.Flags() {
		a.appendFlag("LDFLAGS", f)
	}
}

// Target cross compiles for t by passing its triple as --host.
func (a *AutoTools) Target(t *toolchain.Target) error {
	a.host = t.Name
	return nil
}

// Prefix makes the headers, libraries and pkg-config files installed
// under dir visible to the configure step. Missing subdirectories are
// skipped.
func (a *AutoTools) Prefix(dir string) *AutoTools {
	if _, err := os.Stat(filepath.Join(dir, "include")); err == nil {
		a.appendFlag("CPPFLAGS", "-I"+filepath.Join(dir, "include"))
	}
	if _, err := os.Stat(filepath.Join(dir, "lib")); err == nil {
		a.appendFlag("LDFLAGS", "-L"+filepath.Join(dir, "lib"))
	}
	if pc := filepath.Join(dir, "lib", "pkgconfig"); isDir(pc) {
		a.prependEnv("PKG_CONFIG_PATH", pc)
	}
	return a
}

// ConfigureArgs returns the arguments of ./configure, followed by args.
func (a *AutoTools) ConfigureArgs(args ...string) []string {
	configArgs := []string{}
	if a.installDir != "" {
		configArgs = append(configArgs, "--prefix="+a.installDir)
	}
	if a.host != "" {
		configArgs = append(configArgs, "--host="+a.host)
	}
	return append(configArgs, args...)
}

// Environ returns the variables set on a, sorted by name.
func (a *AutoTools) Environ() []string {
	return mergeEnv(nil, a.env)
}

// Command returns the ./configure command of the project, run from
// buildDir with the environment of the current process overridden by a.
// An empty buildDir configures in the source tree. Otherwise the script
// is named by its absolute path, as Dir changes how a relative one is
// found.
func (a *AutoTools) Command(buildDir string, args ...string) *exec.Cmd {
	exe := "./configure"
	if buildDir != "" {
		exe = filepath.Join(a.SourceDir, "configure")
		if abs, err := filepath.Abs(exe); err == nil {
			exe = abs
		}
	}
	cmd := exec.Command(exe, a.ConfigureArgs(args...)...)
	cmd.Dir = buildDir
	if buildDir == "" {
		cmd.Dir = a.SourceDir
	}
	cmd.Env = mergeEnv(os.Environ(), a.env)
	return cmd
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

// prependEnv prepends a value to a path list variable.
func (a *AutoTools) prependEnv(key, value string) {
	if current := a.env[key]; current != "" {
		value += string(filepath.ListSeparator) + current
	}
	a.Env(key, value)
}

// appendFlag appends a flag to a space separated variable, once.
func (a *AutoTools) appendFlag(key, flag string) {
	current := a.env[key]
	if current == "" {
		a.Env(key, flag)
		return
	}
	for _, f := range strings.Fields(current) {
		if f == flag {
			return
		}
	}
	a.Env(key, current+" "+flag)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
