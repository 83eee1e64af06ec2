package toolchain

import (
	"errors"
	"slices"
	"testing"
)

func TestClose(t *testing.T) {
	features := featureTable(
		feature("ASAN", "DEBUG_SYMBOLS", "NO_OMIT_FRAME_POINTER"),
		feature("DEBUG_SYMBOLS"),
		feature("NO_OMIT_FRAME_POINTER", "FRAME_INFO"),
		feature("FRAME_INFO", "ASAN"), // loops back
		feature("LTO"),
	)
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, nil},
		{"leaf", []string{"LTO"}, []string{"LTO"}},
		{"transitive", []string{"ASAN"}, []string{"ASAN", "DEBUG_SYMBOLS", "FRAME_INFO", "NO_OMIT_FRAME_POINTER"}},
		{"cycle entered elsewhere", []string{"FRAME_INFO"}, []string{"ASAN", "DEBUG_SYMBOLS", "FRAME_INFO", "NO_OMIT_FRAME_POINTER"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Close(NewFeatureNames(tt.in...), features)
			if err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if !got.Expanded() {
				t.Error("Close result is not marked expanded")
			}
			if !slices.Equal(sorted(got.Names()), tt.want) {
				t.Errorf("Close(%v) = %v, want %v", tt.in, sorted(got.Names()), tt.want)
			}
			again, err := Close(got, features)
			if err != nil || !again.Equal(got) {
				t.Errorf("Close not idempotent: %v, %v", again.Names(), err)
			}
		})
	}
}

func TestCloseIdempotentWhenRecomputed(t *testing.T) {
	features := featureTable(feature("A", "B"), feature("B", "C"), feature("C"))
	once, _ := Close(NewFeatureNames("A"), features)
	// Drop the mark to force a full recomputation.
	twice, err := Close(NewFeatureNames(once.Names()...), features)
	if err != nil {
		t.Fatal(err)
	}
	if !twice.Equal(once) {
		t.Errorf("close(close(S)) = %v, close(S) = %v", twice.Names(), once.Names())
	}
}

func TestCloseSkipsExpanded(t *testing.T) {
	s := NewFeatureNames("UNKNOWN")
	s.expanded = true
	got, err := Close(s, nil)
	if err != nil {
		t.Fatalf("Close on expanded set failed: %v", err)
	}
	if !got.Has("UNKNOWN") {
		t.Error("expanded set was changed")
	}
}

func TestCloseUnresolved(t *testing.T) {
	features := featureTable(feature("A", "B"))
	features["A"].Loc = Location{File: "gcc.yaml", Line: 7}

	_, err := Close(NewFeatureNames("A"), features)
	var unres *UnresolvedReferenceError
	if !errors.As(err, &unres) {
		t.Fatalf("Close error = %v, want UnresolvedReferenceError", err)
	}
	if unres.Name != "B" || unres.Referrer != "feature 'A'" || unres.Loc.Line != 7 {
		t.Errorf("unresolved = %+v", unres)
	}

	_, err = Close(NewFeatureNames("Z"), features)
	if !errors.As(err, &unres) || unres.Name != "Z" || unres.Referrer != "" {
		t.Errorf("Close(Z) error = %v", err)
	}
}
