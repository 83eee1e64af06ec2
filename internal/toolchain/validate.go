package toolchain

import (
	"fmt"
	"sort"
)

// Validate checks names against every rule. Rules are checked in name
// order so the reported violation is stable.
func Validate(names FeatureNames, rules map[string]Rule) error {
	for _, name := range sortedKeys(rules) {
		if err := check(names, rules[name]); err != nil {
			return err
		}
	}
	return nil
}

func check(names FeatureNames, r Rule) error {
	switch r := r.(type) {
	case *OnlyOne:
		if hit := names.Intersect(r.Features); len(hit) > 1 {
			return &RuleViolation{Rule: r.Name, Conflicts: hit, Enabled: names.Names()}
		}
	case *IncompatibleWith:
		if !names.Has(r.Feature) {
			return nil
		}
		if hit := names.Intersect(r.With); len(hit) > 0 {
			return &RuleViolation{Rule: r.Name, Feature: r.Feature, Conflicts: hit, Enabled: names.Names()}
		}
	default:
		panic(fmt.Sprintf("toolchain: unknown feature rule type %T", r))
	}
	return nil
}

// checkRuleRefs makes sure r only mentions declared features.
func checkRuleRefs(r Rule, features map[string]*Feature) error {
	for _, name := range r.References() {
		if _, ok := features[name]; !ok {
			return &UnresolvedReferenceError{
				Kind:     "feature",
				Name:     name,
				Referrer: "feature rule '" + r.RuleName() + "'",
				Loc:      r.Location(),
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
