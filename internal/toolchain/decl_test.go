package toolchain

import (
	"slices"
	"testing"
)

// Builders shared by the tests of this package.

func feature(name string, enables ...string) *Feature {
	return &Feature{Name: name, Enables: NewFeatureNames(enables...)}
}

func featureTable(fs ...*Feature) map[string]*Feature {
	m := make(map[string]*Feature, len(fs))
	for _, f := range fs {
		m[f.Name] = f
	}
	return m
}

func ruleTable(rs ...Rule) map[string]Rule {
	m := make(map[string]Rule, len(rs))
	for _, r := range rs {
		m[r.RuleName()] = r
	}
	return m
}

func onlyOne(name string, members ...string) *OnlyOne {
	return &OnlyOne{Name: name, Features: members}
}

func incompatible(name, feature string, with ...string) *IncompatibleWith {
	return &IncompatibleWith{Name: name, Feature: feature, With: with}
}

func withFeatures(names ...string) Scope {
	return Scope{Features: NewFeatureNames(names...)}
}

func withFlags(flags ...string) Scope {
	return Scope{CompilerFlags: NewFlagSet(flags...)}
}

func sorted(s []string) []string {
	s = slices.Clone(s)
	slices.Sort(s)
	return s
}

func TestParseArtifactKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ArtifactKind
		wantErr bool
	}{
		{in: "bin", want: Bin},
		{in: "lib", want: Lib},
		{in: "dyn", want: Dyn},
		{in: "exe", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArtifactKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseArtifactKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseArtifactKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{}, "<unknown>"},
		{Location{File: "gcc.yaml"}, "gcc.yaml"},
		{Location{File: "gcc.yaml", Line: 12}, "gcc.yaml:12"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("Location%+v.String() = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

func TestRuleReferences(t *testing.T) {
	r := incompatible("no_opt", "O0", "LTO", "LTCG")
	want := []string{"O0", "LTO", "LTCG"}
	if got := r.References(); !slices.Equal(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
	if got := onlyOne("opt", "O0", "O2").References(); !slices.Equal(got, []string{"O0", "O2"}) {
		t.Errorf("References() = %v", got)
	}
}
