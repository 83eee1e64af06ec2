package toolchain

// Close returns names plus every feature they enable, directly or not.
// Enables may form cycles; a feature already present is not revisited.
// An expanded set is returned as is.
func Close(names FeatureNames, features map[string]*Feature) (FeatureNames, error) {
	if names.expanded {
		return names, nil
	}
	ret := FeatureNames{set: names.set.clone()}
	worklist := names.Names()
	referrer := make(map[string]string, len(worklist))
	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		f, ok := features[name]
		if !ok {
			e := &UnresolvedReferenceError{Kind: "feature", Name: name}
			if by, ok := referrer[name]; ok {
				e.Referrer = "feature '" + by + "'"
				e.Loc = features[by].Loc
			}
			return FeatureNames{}, e
		}
		for _, next := range f.Enables.set.order {
			if ret.set.has(next) {
				continue
			}
			ret.set.add(next)
			referrer[next] = name
			worklist = append(worklist, next)
		}
	}
	ret.expanded = true
	return ret, nil
}
