package toolchain

import (
	"fmt"
	"maps"
)

// extendedProfile is a profile folded along its extends chain and, for a
// derived compiler, onto the profile of the same name of its base.
type extendedProfile struct {
	name     string
	abstract bool
	common   Scope
	// kinds[k] already contains common, with the kind scope as the
	// derived side.
	kinds [kindCount]Scope
}

// extendedCompiler is the accumulated result of folding an extends chain
// up to one of its compilers.
type extendedCompiler struct {
	name     string
	chain    []string
	abstract bool
	cxxPath  string
	cPath    string
	features map[string]*Feature
	rules    map[string]Rule
	profiles map[string]*extendedProfile
}

// Resolve folds the extends chain of the compiler declared as name into
// a ResolvedCompiler. It never returns a partial result.
func Resolve(reg *Registry, name string) (*ResolvedCompiler, error) {
	c, ok := reg.Compiler(name)
	if !ok {
		return nil, &UnresolvedReferenceError{Kind: "compiler", Name: name}
	}
	if c.Abstract {
		return nil, &AbstractError{Kind: "compiler", Name: name}
	}
	chain, err := flatten("compiler", c, reg.Compiler)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve compiler '%s': %w", name, err)
	}

	var x *extendedCompiler
	for _, decl := range chain {
		if x, err = extend(x, decl); err != nil {
			return nil, fmt.Errorf("failed to resolve compiler '%s': compiler '%s' (%s): %w", name, decl.Name, decl.Loc, err)
		}
	}
	rc, err := x.finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve compiler '%s': %w", name, err)
	}
	return rc, nil
}

// extend folds c onto base. base is nil for the first compiler of a chain,
// which is then extended on its own.
func extend(base *extendedCompiler, c *Compiler) (*extendedCompiler, error) {
	x := &extendedCompiler{
		features: make(map[string]*Feature),
		rules:    make(map[string]Rule),
		profiles: make(map[string]*extendedProfile),
	}
	baseName := ""
	if base != nil {
		baseName = base.name
		*x = *base
		x.chain = append([]string(nil), base.chain...)
		x.features = maps.Clone(base.features)
		x.rules = maps.Clone(base.rules)
		x.profiles = maps.Clone(base.profiles)
	}
	if c.Extends != baseName {
		return nil, &IncoherentExtendsError{Node: c.Name, Extends: c.Extends, GotBase: baseName}
	}
	x.name = c.Name
	x.chain = append(x.chain, c.Name)
	x.abstract = c.Abstract
	if c.CxxPath != "" {
		x.cxxPath = c.CxxPath
	}
	if c.CPath != "" {
		x.cPath = c.CPath
	}

	if err := x.addFeatures(c); err != nil {
		return nil, err
	}
	if err := x.addProfiles(c); err != nil {
		return nil, err
	}
	return x, nil
}

// addFeatures unions the features and rules of c into x. A name already
// declared by a compiler earlier in the chain is an error. The profiles
// nested in the features of c are extended once here, enabled or not.
func (x *extendedCompiler) addFeatures(c *Compiler) error {
	for _, name := range sortedKeys(c.Features) {
		f := c.Features[name]
		if old, ok := x.features[name]; ok {
			return &DuplicateNameError{Kind: "feature", Name: name, First: old.Loc, Second: f.Loc}
		}
		x.features[name] = f
	}
	for _, name := range sortedKeys(c.Rules) {
		r := c.Rules[name]
		if old, ok := x.rules[name]; ok {
			return &DuplicateNameError{Kind: "feature rule", Name: name, First: old.Location(), Second: r.Location()}
		}
		x.rules[name] = r
	}

	for _, name := range sortedKeys(c.Features) {
		f := c.Features[name]
		if _, err := Close(f.Enables, x.features); err != nil {
			return referredBy(err, "feature '"+name+"'", f.Loc)
		}
	}
	for _, name := range sortedKeys(c.Rules) {
		if err := checkRuleRefs(c.Rules[name], x.features); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(c.Features) {
		f := c.Features[name]
		done := make(map[string]*extendedProfile, len(f.Profiles))
		for _, pname := range sortedKeys(f.Profiles) {
			if _, err := x.extendNested(f, f.Profiles[pname], done); err != nil {
				return fmt.Errorf("feature '%s' (%s): %w", name, f.Loc, err)
			}
		}
	}
	return nil
}

// profileLink is one element of a profile extends chain. A link without
// decl stands for a profile only the base compiler declares. A link with
// ext is a profile of c already extended and ends the chain.
type profileLink struct {
	name string
	decl *Profile
	ext  *extendedProfile
}

func (l *profileLink) nodeName() string { return l.name }
func (l *profileLink) extendsName() string {
	if l.decl == nil || l.ext != nil {
		return ""
	}
	return l.decl.Extends
}
func (l *profileLink) location() Location {
	if l.decl == nil {
		return Location{}
	}
	return l.decl.Loc
}

// addProfiles extends every profile c declares and merges it onto the
// profile of the same name inherited from the base, if any.
func (x *extendedCompiler) addProfiles(c *Compiler) error {
	inherited := x.profiles
	done := make(map[string]*extendedProfile, len(c.Profiles))
	lookup := func(name string) (*profileLink, bool) {
		if p, ok := c.Profiles[name]; ok {
			return &profileLink{name: name, decl: p, ext: done[name]}, true
		}
		if _, ok := inherited[name]; ok {
			return &profileLink{name: name}, true
		}
		return nil, false
	}

	for _, name := range sortedKeys(c.Profiles) {
		if _, ok := done[name]; ok {
			continue
		}
		p := c.Profiles[name]
		chain, err := flatten("profile", &profileLink{name: name, decl: p}, lookup)
		if err != nil {
			return fmt.Errorf("profile '%s' (%s): %w", name, p.Loc, err)
		}
		var acc *extendedProfile
		for _, link := range chain {
			if link.ext != nil {
				acc = link.ext
				continue
			}
			if link.decl == nil {
				acc = inherited[link.name]
				continue
			}
			ext, err := x.foldProfile(acc, link.decl)
			if err != nil {
				return fmt.Errorf("profile '%s' (%s): %w", link.name, link.decl.Loc, err)
			}
			if base, ok := inherited[link.name]; ok {
				if ext, err = x.mergeProfiles(base, ext); err != nil {
					return fmt.Errorf("profile '%s' (%s): %w", link.name, link.decl.Loc, err)
				}
			}
			done[link.name] = ext
			acc = ext
		}
	}

	x.profiles = maps.Clone(inherited)
	maps.Copy(x.profiles, done)
	return nil
}

// foldProfile applies the declaration p on top of acc, the extended
// profile p extends. acc is nil when p extends nothing.
func (x *extendedCompiler) foldProfile(acc *extendedProfile, p *Profile) (*extendedProfile, error) {
	if acc == nil {
		acc = &extendedProfile{}
	}
	ret := &extendedProfile{name: p.Name, abstract: p.Abstract}

	var err error
	if ret.common, err = Merge(acc.common, p.Common, x.features, x.rules); err != nil {
		return nil, err
	}
	own, err := Merge(Scope{}, p.Common, x.features, x.rules)
	if err != nil {
		return nil, err
	}
	for _, k := range ArtifactKinds {
		kind, err := Merge(own, p.Kinds[k], x.features, x.rules)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if ret.kinds[k], err = Merge(acc.kinds[k], kind, x.features, x.rules); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	return ret, nil
}

// mergeProfiles merges two extended profiles of the same name: once for
// the common scope and once per artifact kind, derived winning.
func (x *extendedCompiler) mergeProfiles(base, derived *extendedProfile) (*extendedProfile, error) {
	ret := &extendedProfile{name: derived.name, abstract: derived.abstract}

	var err error
	if ret.common, err = Merge(base.common, derived.common, x.features, x.rules); err != nil {
		return nil, err
	}
	for _, k := range ArtifactKinds {
		if ret.kinds[k], err = Merge(base.kinds[k], derived.kinds[k], x.features, x.rules); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	return ret, nil
}

// finalize turns the fully folded chain into a ResolvedCompiler: abstract
// profiles are dropped and the flags of enabled features are added.
func (x *extendedCompiler) finalize() (*ResolvedCompiler, error) {
	rc := &ResolvedCompiler{
		name:     x.name,
		chain:    x.chain,
		cxxPath:  x.cxxPath,
		cPath:    x.cPath,
		profiles: make(map[string]*[kindCount]ResolvedFlags),
	}
	for _, name := range sortedKeys(x.profiles) {
		p := x.profiles[name]
		if p.abstract {
			continue
		}
		flags := new([kindCount]ResolvedFlags)
		for _, k := range ArtifactKinds {
			scope, err := x.applyFeatureProfiles(name, k, p.kinds[k])
			if err != nil {
				return nil, fmt.Errorf("profile '%s' %s: %w", name, k, err)
			}
			if err := Validate(scope.Features, x.rules); err != nil {
				return nil, fmt.Errorf("profile '%s' %s: %w", name, k, err)
			}
			rf := ResolvedFlags{
				CompilerFlags: scope.CompilerFlags,
				LinkerFlags:   scope.LinkerFlags,
				Features:      scope.Features,
			}
			for _, fname := range scope.Features.Names() {
				f := x.features[fname]
				rf.CompilerFlags = rf.CompilerFlags.Union(f.CompilerFlags)
				rf.LinkerFlags = rf.LinkerFlags.Union(f.LinkerFlags)
			}
			flags[k] = rf
		}
		rc.profiles[name] = flags
	}
	return rc, nil
}

// applyFeatureProfiles merges the nested profile named profile of every
// enabled feature onto scope, until no newly enabled feature has one.
func (x *extendedCompiler) applyFeatureProfiles(profile string, k ArtifactKind, scope Scope) (Scope, error) {
	applied := make(map[string]bool)
	for {
		progressed := false
		for _, fname := range scope.Features.Names() {
			if applied[fname] {
				continue
			}
			applied[fname] = true
			f := x.features[fname]
			nested, ok := f.Profiles[profile]
			if !ok {
				continue
			}
			ext, err := x.extendNested(f, nested, nil)
			if err != nil {
				return Scope{}, fmt.Errorf("feature '%s': %w", fname, err)
			}
			if scope, err = Merge(scope, ext.kinds[k], x.features, x.rules); err != nil {
				return Scope{}, fmt.Errorf("feature '%s': %w", fname, err)
			}
			progressed = true
		}
		if !progressed {
			return scope, nil
		}
	}
}

// extendNested extends a profile nested in feature f along the extends
// chain of the profiles f declares. done, if not nil, holds the nested
// profiles of f already extended and receives the new ones.
func (x *extendedCompiler) extendNested(f *Feature, p *Profile, done map[string]*extendedProfile) (*extendedProfile, error) {
	if ext, ok := done[p.Name]; ok {
		return ext, nil
	}
	chain, err := flatten("profile", &profileLink{name: p.Name, decl: p}, func(name string) (*profileLink, bool) {
		q, ok := f.Profiles[name]
		if !ok {
			return nil, false
		}
		return &profileLink{name: name, decl: q, ext: done[name]}, true
	})
	if err != nil {
		return nil, err
	}
	var acc *extendedProfile
	for _, link := range chain {
		if link.ext != nil {
			acc = link.ext
			continue
		}
		if acc, err = x.foldProfile(acc, link.decl); err != nil {
			return nil, fmt.Errorf("profile '%s' (%s): %w", link.name, link.decl.Loc, err)
		}
		if done != nil {
			done[link.name] = acc
		}
	}
	return acc, nil
}

// referredBy fills in the referrer of an unresolved reference found while
// closing the enables of a declaration.
func referredBy(err error, referrer string, loc Location) error {
	if e, ok := err.(*UnresolvedReferenceError); ok && e.Referrer == "" {
		e.Referrer = referrer
		e.Loc = loc
	}
	return err
}
