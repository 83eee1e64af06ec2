package loader

import (
	"fmt"
	"slices"

	"github.com/goplus/kiss/internal/toolchain"
	"gopkg.in/yaml.v3"
)

var (
	fileKeys     = []string{"compilers", "targets"}
	compilerKeys = []string{"is_abstract", "extends", "cxx-path", "c-path", "profiles", "features", "feature-rules"}
	scopeKeys    = []string{"enable-features", "cxx-compiler-flags", "cxx-linker-flags"}
	profileKeys  = append([]string{"extends", "is_abstract", "bin", "lib", "dyn"}, scopeKeys...)
	featureKeys  = append([]string{"name", "description", "profiles"}, scopeKeys...)
	ruleKeys     = []string{"only-one", "features", "incompatible", "feature", "with"}
	targetKeys   = []string{"arch", "vendor", "os", "abi", "pointer-width", "endianness"}
)

// parser turns the node tree of one file into declarations.
type parser struct {
	file string
}

func (p *parser) loc(n *yaml.Node) toolchain.Location {
	return toolchain.Location{File: p.file, Line: n.Line}
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return &SyntaxError{Loc: p.loc(n), Msg: fmt.Sprintf(format, args...)}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// each calls fn for every key/value pair of the mapping n, in document
// order. Keys must be unique and, when known is not nil, one of known.
// A null value is an empty mapping.
func (p *parser) each(n *yaml.Node, what string, known []string, fn func(key, val *yaml.Node) error) error {
	n = deref(n)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return p.errorf(n, "%s must be a mapping", what)
	}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		if key.Kind != yaml.ScalarNode {
			return p.errorf(key, "keys of %s must be strings", what)
		}
		if known != nil && !slices.Contains(known, key.Value) {
			return p.errorf(key, "unknown key '%s' in %s", key.Value, what)
		}
		if seen[key.Value] {
			return p.errorf(key, "duplicate key '%s' in %s", key.Value, what)
		}
		seen[key.Value] = true
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) str(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return "", p.errorf(n, "%s must be a string", what)
	}
	return n.Value, nil
}

func (p *parser) name(n *yaml.Node, what string) (string, error) {
	s, err := p.str(n, what)
	if err == nil && s == "" {
		err = p.errorf(n, "%s must not be empty", what)
	}
	return s, err
}

func (p *parser) boolean(n *yaml.Node, what string) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, p.errorf(n, "%s must be a boolean", what)
	}
	return b, nil
}

func (p *parser) integer(n *yaml.Node, what string) (int, error) {
	var i int
	if n.Kind != yaml.ScalarNode || n.Decode(&i) != nil {
		return 0, p.errorf(n, "%s must be an integer", what)
	}
	return i, nil
}

// strings decodes a list of strings. A null value is an empty list.
func (p *parser) strings(n *yaml.Node, what string) ([]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, "%s must be a list of strings", what)
	}
	ret := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := p.str(deref(item), what+" item")
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// list calls fn for every item of the sequence n. A null value is an
// empty list.
func (p *parser) list(n *yaml.Node, what string, fn func(item *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return p.errorf(n, "%s must be a list", what)
	}
	for _, item := range n.Content {
		if err := fn(deref(item)); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseFile(n *yaml.Node, f *File) error {
	return p.each(n, "toolchain file", fileKeys, func(key, val *yaml.Node) error {
		switch key.Value {
		case "compilers":
			return p.each(val, "compilers", nil, func(name, decl *yaml.Node) error {
				c, err := p.compiler(name, decl)
				if err != nil {
					return err
				}
				f.Compilers = append(f.Compilers, c)
				return nil
			})
		default:
			return p.each(val, "targets", nil, func(name, decl *yaml.Node) error {
				t, err := p.target(name, decl)
				if err != nil {
					return err
				}
				f.Targets = append(f.Targets, t)
				return nil
			})
		}
	})
}

func (p *parser) compiler(name, n *yaml.Node) (*toolchain.Compiler, error) {
	c := &toolchain.Compiler{
		Name:     name.Value,
		Loc:      p.loc(name),
		Profiles: make(map[string]*toolchain.Profile),
		Features: make(map[string]*toolchain.Feature),
		Rules:    make(map[string]toolchain.Rule),
	}
	what := "compiler '" + c.Name + "'"
	err := p.each(n, what, compilerKeys, func(key, val *yaml.Node) (err error) {
		switch key.Value {
		case "is_abstract":
			c.Abstract, err = p.boolean(val, "is_abstract")
		case "extends":
			c.Extends, err = p.name(val, "extends")
		case "cxx-path":
			c.CxxPath, err = p.str(val, "cxx-path")
		case "c-path":
			c.CPath, err = p.str(val, "c-path")
		case "profiles":
			err = p.profiles(val, c.Profiles, what)
		case "features":
			err = p.list(val, "features of "+what, func(item *yaml.Node) error {
				f, err := p.feature(item)
				if err != nil {
					return err
				}
				if old, ok := c.Features[f.Name]; ok {
					return &toolchain.DuplicateNameError{Kind: "feature", Name: f.Name, First: old.Loc, Second: f.Loc}
				}
				c.Features[f.Name] = f
				return nil
			})
		case "feature-rules":
			err = p.list(val, "feature rules of "+what, func(item *yaml.Node) error {
				r, err := p.rule(item)
				if err != nil {
					return err
				}
				if old, ok := c.Rules[r.RuleName()]; ok {
					return &toolchain.DuplicateNameError{Kind: "feature rule", Name: r.RuleName(), First: old.Location(), Second: r.Location()}
				}
				c.Rules[r.RuleName()] = r
				return nil
			})
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) profiles(n *yaml.Node, into map[string]*toolchain.Profile, owner string) error {
	return p.each(n, "profiles of "+owner, nil, func(name, decl *yaml.Node) error {
		pr, err := p.profile(name, decl)
		if err != nil {
			return err
		}
		into[pr.Name] = pr
		return nil
	})
}

func (p *parser) profile(name, n *yaml.Node) (*toolchain.Profile, error) {
	pr := &toolchain.Profile{
		Name:  name.Value,
		Loc:   p.loc(name),
		Kinds: make(map[toolchain.ArtifactKind]toolchain.Scope),
	}
	what := "profile '" + pr.Name + "'"
	err := p.each(n, what, profileKeys, func(key, val *yaml.Node) (err error) {
		switch key.Value {
		case "extends":
			pr.Extends, err = p.name(val, "extends")
		case "is_abstract":
			pr.Abstract, err = p.boolean(val, "is_abstract")
		case "bin", "lib", "dyn":
			kind, _ := toolchain.ParseArtifactKind(key.Value)
			var s toolchain.Scope
			err = p.each(val, what+" "+key.Value, scopeKeys, func(key, val *yaml.Node) error {
				return p.scopeField(&s, key, val)
			})
			pr.Kinds[kind] = s
		default:
			err = p.scopeField(&pr.Common, key, val)
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (p *parser) scopeField(s *toolchain.Scope, key, val *yaml.Node) error {
	names, err := p.strings(val, key.Value)
	if err != nil {
		return err
	}
	switch key.Value {
	case "enable-features":
		s.Features = toolchain.NewFeatureNames(names...)
	case "cxx-compiler-flags":
		s.CompilerFlags = toolchain.NewFlagSet(names...)
	case "cxx-linker-flags":
		s.LinkerFlags = toolchain.NewFlagSet(names...)
	}
	return nil
}

func (p *parser) feature(n *yaml.Node) (*toolchain.Feature, error) {
	f := &toolchain.Feature{
		Loc:      p.loc(n),
		Profiles: make(map[string]*toolchain.Profile),
	}
	err := p.each(n, "feature", featureKeys, func(key, val *yaml.Node) (err error) {
		switch key.Value {
		case "name":
			f.Name, err = p.name(val, "feature name")
		case "description":
			f.Description, err = p.str(val, "description")
		case "profiles":
			err = p.profiles(val, f.Profiles, "feature")
		default:
			var s toolchain.Scope
			if err = p.scopeField(&s, key, val); err == nil {
				f.Enables = f.Enables.Union(s.Features)
				f.CompilerFlags = f.CompilerFlags.Union(s.CompilerFlags)
				f.LinkerFlags = f.LinkerFlags.Union(s.LinkerFlags)
			}
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if f.Name == "" {
		return nil, p.errorf(n, "feature has no name")
	}
	return f, nil
}

func (p *parser) rule(n *yaml.Node) (toolchain.Rule, error) {
	var onlyOne, incompatible, feature string
	var members, with []string
	has := make(map[string]bool)
	err := p.each(n, "feature rule", ruleKeys, func(key, val *yaml.Node) (err error) {
		has[key.Value] = true
		switch key.Value {
		case "only-one":
			onlyOne, err = p.name(val, "only-one")
		case "incompatible":
			incompatible, err = p.name(val, "incompatible")
		case "feature":
			feature, err = p.name(val, "feature")
		case "features":
			members, err = p.strings(val, "features")
		case "with":
			with, err = p.strings(val, "with")
		}
		return
	})
	if err != nil {
		return nil, err
	}

	switch {
	case has["only-one"] && !has["incompatible"]:
		if has["feature"] || has["with"] {
			return nil, p.errorf(n, "only-one rule '%s' takes 'features' only", onlyOne)
		}
		return &toolchain.OnlyOne{Name: onlyOne, Features: members, Loc: p.loc(n)}, nil
	case has["incompatible"] && !has["only-one"]:
		if has["features"] {
			return nil, p.errorf(n, "incompatible rule '%s' takes 'feature' and 'with'", incompatible)
		}
		if feature == "" {
			return nil, p.errorf(n, "incompatible rule '%s' has no feature", incompatible)
		}
		return &toolchain.IncompatibleWith{Name: incompatible, Feature: feature, With: with, Loc: p.loc(n)}, nil
	}
	return nil, p.errorf(n, "feature rule must be either 'only-one' or 'incompatible'")
}

func (p *parser) target(name, n *yaml.Node) (*toolchain.Target, error) {
	t, err := toolchain.ParseTarget(name.Value)
	if err != nil {
		return nil, p.errorf(name, "%v", err)
	}
	t.Loc = p.loc(name)
	what := "target '" + t.Name + "'"
	err = p.each(n, what, targetKeys, func(key, val *yaml.Node) (err error) {
		switch key.Value {
		case "arch":
			t.Arch, err = p.name(val, "arch")
		case "vendor":
			t.Vendor, err = p.name(val, "vendor")
		case "os":
			t.OS, err = p.name(val, "os")
		case "abi":
			t.ABI, err = p.name(val, "abi")
		case "pointer-width":
			if t.PointerWidth, err = p.integer(val, "pointer-width"); err == nil {
				switch t.PointerWidth {
				case 16, 32, 64:
				default:
					err = p.errorf(val, "pointer-width must be 16, 32 or 64")
				}
			}
		case "endianness":
			if t.Endianness, err = p.str(val, "endianness"); err == nil && t.Endianness != "little" && t.Endianness != "big" {
				err = p.errorf(val, "endianness must be 'little' or 'big'")
			}
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
