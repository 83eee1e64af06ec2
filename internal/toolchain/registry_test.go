package toolchain

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, c := range []*Compiler{
		{Name: "msvc"},
		{Name: "base", Abstract: true},
		{Name: "clang", Extends: "base"},
	} {
		if err := reg.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	if got := reg.Compilers(); !slices.Equal(got, []string{"clang", "msvc"}) {
		t.Errorf("Compilers() = %v", got)
	}
	if c, ok := reg.Compiler("base"); !ok || !c.Abstract {
		t.Error("abstract compiler is not registered")
	}
	if _, ok := reg.Compiler("gcc"); ok {
		t.Error("Compiler(gcc) found an undeclared compiler")
	}

	err := reg.Register(&Compiler{Name: "msvc", Loc: Location{File: "b.yaml", Line: 1}})
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Kind != "compiler" || dup.Second.File != "b.yaml" {
		t.Errorf("Register duplicate = %v", err)
	}
}

func TestRegistryTargets(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"x86_64-unknown-linux-gnu", "aarch64-apple-darwin-none"} {
		tg, err := ParseTarget(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := reg.RegisterTarget(tg); err != nil {
			t.Fatal(err)
		}
	}
	if got := reg.Targets(); !slices.Equal(got, []string{"aarch64-apple-darwin-none", "x86_64-unknown-linux-gnu"}) {
		t.Errorf("Targets() = %v", got)
	}
	tg, _ := ParseTarget("x86_64-unknown-linux-gnu")
	if err := reg.RegisterTarget(tg); err == nil {
		t.Error("RegisterTarget accepted a duplicate")
	}
}
