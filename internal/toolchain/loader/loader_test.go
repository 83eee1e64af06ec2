package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goplus/kiss/internal/toolchain"
)

const baseYAML = `compilers:
  base:
    is_abstract: true
    cxx-path: c++
    profiles:
      debug:
        cxx-compiler-flags: [-g]
        enable-features: [O0]
      release:
        enable-features: [O2]
        dyn:
          cxx-compiler-flags: [-fPIC]
    features:
      - name: O0
        description: no optimization
        cxx-compiler-flags: [-O0]
      - name: O2
        cxx-compiler-flags: [-O2]
      - name: ASAN
        enable-features: [O0]
        cxx-compiler-flags: [-fsanitize=address]
        profiles:
          debug:
            cxx-linker-flags: [-fsanitize=address]
    feature-rules:
      - only-one: opt
        features: [O0, O2]
      - incompatible: asan_release
        feature: ASAN
        with: [O2]
targets:
  x86_64-unknown-linux-gnu:
    pointer-width: 64
    endianness: little
`

const clangJSONC = `{
  // clang-cl on top of the shared base
  "compilers": {
    "clangcl": {
      "extends": "base",
      "c-path": "clang-cl",
      "profiles": {
        "debug": {
          "bin": { "enable-features": ["ASAN"], },
        },
      },
    },
  },
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	f, err := Parse("base.yaml", []byte(baseYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Compilers) != 1 || len(f.Targets) != 1 {
		t.Fatalf("Parse found %d compilers, %d targets", len(f.Compilers), len(f.Targets))
	}

	c := f.Compilers[0]
	if c.Name != "base" || !c.Abstract || c.CxxPath != "c++" || c.Loc.Line != 2 {
		t.Errorf("compiler = %+v", c)
	}
	debug := c.Profiles["debug"]
	if debug == nil || debug.Loc.Line != 6 {
		t.Fatalf("debug profile = %+v", debug)
	}
	if !reflect.DeepEqual(debug.Common.CompilerFlags.Flags(), []string{"-g"}) || !debug.Common.Features.Has("O0") {
		t.Errorf("debug common = %+v", debug.Common)
	}
	if dyn := c.Profiles["release"].Kinds[toolchain.Dyn]; !dyn.CompilerFlags.Has("-fPIC") {
		t.Errorf("release dyn = %+v", dyn)
	}

	asan := c.Features["ASAN"]
	if asan == nil || asan.Loc.Line != 19 || !asan.Enables.Has("O0") {
		t.Fatalf("ASAN = %+v", asan)
	}
	if nested := asan.Profiles["debug"]; nested == nil || !nested.Common.LinkerFlags.Has("-fsanitize=address") {
		t.Errorf("ASAN nested debug profile = %+v", nested)
	}
	if c.Features["O0"].Description != "no optimization" {
		t.Errorf("O0 description = %q", c.Features["O0"].Description)
	}

	opt, ok := c.Rules["opt"].(*toolchain.OnlyOne)
	if !ok || !reflect.DeepEqual(opt.Features, []string{"O0", "O2"}) {
		t.Errorf("opt rule = %#v", c.Rules["opt"])
	}
	inc, ok := c.Rules["asan_release"].(*toolchain.IncompatibleWith)
	if !ok || inc.Feature != "ASAN" || !reflect.DeepEqual(inc.With, []string{"O2"}) || inc.Loc.Line != 28 {
		t.Errorf("asan_release rule = %#v", c.Rules["asan_release"])
	}

	tg := f.Targets[0]
	if tg.Arch != "x86_64" || tg.OS != "linux" || tg.PointerWidth != 64 || tg.Endianness != "little" {
		t.Errorf("target = %+v", tg)
	}
}

func TestParseJSONC(t *testing.T) {
	f, err := Parse("clang.jsonc", []byte(clangJSONC))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Compilers) != 1 {
		t.Fatalf("Parse found %d compilers", len(f.Compilers))
	}
	c := f.Compilers[0]
	if c.Name != "clangcl" || c.Extends != "base" || c.CPath != "clang-cl" || c.Loc.Line != 4 {
		t.Errorf("compiler = %+v", c)
	}
	if bin := c.Profiles["debug"].Kinds[toolchain.Bin]; !bin.Features.Has("ASAN") {
		t.Errorf("debug bin = %+v", bin)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
		msg  string
	}{
		{"unknown key", "compilers:\n  gcc:\n    flavour: gnu\n", 3, "unknown key 'flavour'"},
		{"wrong type", "compilers:\n  gcc:\n    is_abstract: maybe\n", 3, "must be a boolean"},
		{"flags not a list", "compilers:\n  gcc:\n    profiles:\n      debug:\n        cxx-compiler-flags: -g\n", 5, "list of strings"},
		{"duplicate profile", "compilers:\n  gcc:\n    profiles:\n      debug: {}\n      debug: {}\n", 5, "duplicate key 'debug'"},
		{"duplicate kind", "compilers:\n  gcc:\n    profiles:\n      debug:\n        bin: {}\n        bin: {}\n", 6, "duplicate key 'bin'"},
		{"feature without name", "compilers:\n  gcc:\n    features:\n      - description: x\n", 4, "no name"},
		{"rule of both kinds", "compilers:\n  gcc:\n    feature-rules:\n      - only-one: a\n        incompatible: b\n", 4, "either"},
		{"incompatible without feature", "compilers:\n  gcc:\n    feature-rules:\n      - incompatible: b\n        with: [X]\n", 4, "no feature"},
		{"bad target", "targets:\n  x86_64-linux:\n    arch: x86_64\n", 2, "arch-vendor-os-abi"},
		{"bad pointer width", "targets:\n  x86_64-pc-windows-msvc:\n    pointer-width: 48\n", 3, "pointer-width"},
		{"top level", "compiler:\n  gcc: {}\n", 1, "unknown key 'compiler'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yaml", []byte(tt.data))
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse error = %v, want SyntaxError", err)
			}
			if se.Loc.File != "bad.yaml" || se.Loc.Line != tt.line {
				t.Errorf("error location = %s, want bad.yaml:%d", se.Loc, tt.line)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q lacks %q", err, tt.msg)
			}
		})
	}
}

func TestParseDuplicateFeature(t *testing.T) {
	data := "compilers:\n  gcc:\n    features:\n      - name: A\n      - name: A\n"
	_, err := Parse("dup.yaml", []byte(data))
	var dup *toolchain.DuplicateNameError
	if !errors.As(err, &dup) || dup.First.Line != 4 || dup.Second.Line != 5 {
		t.Errorf("Parse error = %v, want duplicate feature at lines 4 and 5", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, data := range []string{"", "# nothing yet\n", "compilers:\n"} {
		f, err := Parse("empty.yaml", []byte(data))
		if err != nil || len(f.Compilers) != 0 {
			t.Errorf("Parse(%q) = %+v, %v", data, f, err)
		}
	}
}

func TestLoadDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", baseYAML)
	writeFile(t, dir, "clang.jsonc", clangJSONC)
	writeFile(t, dir, "README.md", "not a declaration")

	reg := toolchain.NewRegistry()
	loaded, err := LoadDirs(reg, dir, filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("LoadDirs failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("loaded %v", loaded)
	}

	rc, err := toolchain.Resolve(reg, "clangcl")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	bin, _ := rc.FlagsFor("debug", toolchain.Bin)
	want := toolchain.NewFlagSet("-g", "-O0", "-fsanitize=address")
	if !bin.CompilerFlags.Equal(want) {
		t.Errorf("debug bin compiler flags = %v, want %v", bin.CompilerFlags.Flags(), want.Flags())
	}
	if !bin.LinkerFlags.Has("-fsanitize=address") {
		t.Errorf("debug bin linker flags = %v", bin.LinkerFlags.Flags())
	}
	if rc.CxxPath() != "c++" || rc.CPath() != "clang-cl" {
		t.Errorf("paths = %s / %s", rc.CxxPath(), rc.CPath())
	}
	if _, ok := reg.Target("x86_64-unknown-linux-gnu"); !ok {
		t.Error("target not registered")
	}
}

func TestLoadDirsReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "compilers:\n  gcc:\n    bogus: 1\n")
	writeFile(t, dir, "b.yaml", "compilers: [\n")
	writeFile(t, dir, "c.yaml", "compilers:\n  clang: {}\n")
	writeFile(t, dir, "d.yaml", "compilers:\n  clang: {}\n")

	reg := toolchain.NewRegistry()
	loaded, err := LoadDirs(reg, dir)
	if err == nil {
		t.Fatal("LoadDirs succeeded")
	}
	for _, want := range []string{"a.yaml:3", "b.yaml", "compiler 'clang' declared twice"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
	if len(loaded) != 1 || filepath.Base(loaded[0]) != "c.yaml" {
		t.Errorf("loaded %v", loaded)
	}
	if _, ok := reg.Compiler("clang"); !ok {
		t.Error("good file was not registered")
	}
}

func TestRegisterAllOrNothing(t *testing.T) {
	reg := toolchain.NewRegistry()
	if err := reg.Register(&toolchain.Compiler{Name: "gcc"}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data string
	}{
		{"compiler", "compilers:\n  clang: {}\n  gcc: {}\n  msvc: {}\n"},
		{"target", "compilers:\n  clang: {}\ntargets:\n  x86_64-pc-windows-msvc: {}\n  x86_64-pc-windows-msvc2: {}\n"},
	}
	if err := reg.RegisterTarget(&toolchain.Target{Name: "x86_64-pc-windows-msvc2"}); err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse("more.yaml", []byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			var dup *toolchain.DuplicateNameError
			if err := Register(reg, f); !errors.As(err, &dup) {
				t.Fatalf("Register error = %v, want DuplicateNameError", err)
			}
			for _, name := range []string{"clang", "msvc"} {
				if _, ok := reg.Compiler(name); ok {
					t.Errorf("compiler %s registered from a rejected file", name)
				}
			}
			if _, ok := reg.Target("x86_64-pc-windows-msvc"); ok {
				t.Error("target registered from a rejected file")
			}
		})
	}
}
