package toolchain

import "fmt"

// Merge folds derived onto base and returns the combined scope.
//
// Flags are unioned. Features are unioned too, except that for every
// OnlyOne rule where base and derived each enable exactly one member,
// the member of base is dropped: derived wins. A derived scope that
// enables no member of a rule keeps the choice of base.
//
// base must be valid. derived is closed and checked on its own before
// anything is merged.
func Merge(base, derived Scope, features map[string]*Feature, rules map[string]Rule) (Scope, error) {
	kept, err := Close(base.Features, features)
	if err != nil {
		return Scope{}, err
	}
	own, err := Close(derived.Features, features)
	if err != nil {
		return Scope{}, err
	}
	if err := Validate(own, rules); err != nil {
		return Scope{}, err
	}

	for _, name := range sortedKeys(rules) {
		r, ok := rules[name].(*OnlyOne)
		if !ok {
			continue
		}
		inBase := kept.Intersect(r.Features)
		if len(inBase) > 1 {
			return Scope{}, fmt.Errorf("base scope is invalid: %w",
				&RuleViolation{Rule: r.Name, Conflicts: inBase, Enabled: kept.Names()})
		}
		inDerived := own.Intersect(r.Features)
		if len(inBase) == 1 && len(inDerived) == 1 {
			kept = kept.Without(inBase[0])
		}
	}

	ret := Scope{
		CompilerFlags: MergeFlags(base.CompilerFlags, derived.CompilerFlags),
		LinkerFlags:   MergeFlags(base.LinkerFlags, derived.LinkerFlags),
		Features:      kept.Union(own),
	}
	if err := Validate(ret.Features, rules); err != nil {
		return Scope{}, err
	}
	return ret, nil
}
