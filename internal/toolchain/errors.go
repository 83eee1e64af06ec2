package toolchain

import (
	"fmt"
	"strings"
)

// CyclicExtendsError reports an extends chain that loops back on itself.
type CyclicExtendsError struct {
	Kind   string // "compiler" or "profile"
	Node   string // node found twice
	Parent string // node whose extends closed the loop
	// Stack is the chain being visited when the loop was found,
	// from the starting node down to Parent.
	Stack []string
}

func (e *CyclicExtendsError) Error() string {
	return fmt.Sprintf("cyclic extends between %s '%s' and '%s'", e.Kind, e.Node, e.Parent)
}

// Diagram renders the loop:
//
//	debug
//	└ extends: asan
//	    └ ⟲ loop debug
func (e *CyclicExtendsError) Diagram() string {
	names := append(append([]string(nil), e.Stack...), e.Node)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", 4*max(i-1, 0)))
		}
		switch {
		case i == 0:
			b.WriteString(name)
		case i == len(names)-1:
			b.WriteString("└ ⟲ loop " + name)
		default:
			b.WriteString("└ extends: " + name)
		}
	}
	return b.String()
}

// UnresolvedReferenceError reports a name that has no declaration.
type UnresolvedReferenceError struct {
	Kind     string // kind of the missing entity: "compiler", "profile", "feature"
	Name     string
	Referrer string // who mentions Name, e.g. "profile 'debug'"
	Loc      Location
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown %s '%s'", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s references unknown %s '%s'", e.Referrer, e.Kind, e.Name)
}

// DuplicateNameError reports a name declared twice where names must be unique.
type DuplicateNameError struct {
	Kind   string // "compiler", "target", "feature", "feature rule"
	Name   string
	First  Location
	Second Location
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s '%s' declared twice: %s and %s", e.Kind, e.Name, e.First, e.Second)
}

// RuleViolation reports a feature set breaking a feature rule.
type RuleViolation struct {
	Rule string
	// Feature is the feature of an IncompatibleWith rule, empty for OnlyOne.
	Feature string
	// Conflicts are the enabled features that break the rule.
	Conflicts []string
	// Enabled is the whole offending feature set.
	Enabled []string
}

func (e *RuleViolation) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("feature rule '%s': '%s' is incompatible with %s",
			e.Rule, e.Feature, quoteList(e.Conflicts))
	}
	return fmt.Sprintf("feature rule '%s': only one of %s may be enabled",
		e.Rule, quoteList(e.Conflicts))
}

// IncoherentExtendsError reports a fold step given a base that is not
// the node's declared extends target.
type IncoherentExtendsError struct {
	Node    string
	Extends string
	GotBase string
}

func (e *IncoherentExtendsError) Error() string {
	return fmt.Sprintf("'%s' extends '%s' but was folded onto '%s'", e.Node, e.Extends, e.GotBase)
}

// AbstractError reports a request for an abstract compiler or profile
// as a user-visible configuration.
type AbstractError struct {
	Kind string
	Name string
}

func (e *AbstractError) Error() string {
	return fmt.Sprintf("%s '%s' is abstract", e.Kind, e.Name)
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
