package types

import (
	"fmt"
	"sort"
	"strings"
)

// ScopeKind tags what a scope belongs to, per the language's three
// scope levels.
type ScopeKind int

const (
	ScriptScope ScopeKind = iota
	StateScope
	LocalScope
)

func (k ScopeKind) String() string {
	switch k {
	case ScriptScope:
		return "script"
	case StateScope:
		return "state"
	case LocalScope:
		return "local"
	}
	return "unknown"
}

// Scope holds the objects declared at one scope level. Name lookup is
// case-insensitive. A script scope's parent is its ancestor script's
// scope, so LookupParent walks the ancestor chain nearest-first and a
// derived script's member shadows the ancestor's (first match wins).
//
// Scopes are mutated only while their script is being resolved; once
// resolution for a script completes its scope is published read-only.
type Scope struct {
	parent  *Scope
	kind    ScopeKind
	elems   map[string]Object // keyed by folded name
	comment string            // debugging comment, e.g. a script or function name
}

// NewScope creates a scope with the given parent.
func NewScope(parent *Scope, kind ScopeKind, comment string) *Scope {
	return &Scope{
		parent:  parent,
		kind:    kind,
		elems:   make(map[string]Object),
		comment: comment,
	}
}

// Parent returns the parent scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// SetParent re-links the parent scope. The semantic analyzer uses this
// to attach a script scope to its ancestor's scope once the ancestor
// chain is known.
func (s *Scope) SetParent(parent *Scope) { s.parent = parent }

// Kind returns the scope's level.
func (s *Scope) Kind() ScopeKind { return s.kind }

// Comment returns the scope's debugging comment.
func (s *Scope) Comment() string { return s.comment }

// Lookup returns the object with the given name in this scope only.
// Matching is case-insensitive.
func (s *Scope) Lookup(name string) Object {
	return s.elems[Fold(name)]
}

// LookupParent searches from this scope up through all parents,
// returning the first match and the scope it was found in, or
// (nil, nil). Shadowing falls out of the search order.
func (s *Scope) LookupParent(name string) (Object, *Scope) {
	key := Fold(name)
	for scope := s; scope != nil; scope = scope.parent {
		if obj := scope.elems[key]; obj != nil {
			return obj, scope
		}
	}
	return nil, nil
}

// Insert adds an object to the scope. If an object with the same
// folded name already exists, the existing object is returned and the
// scope is unchanged (first declaration wins).
func (s *Scope) Insert(obj Object) Object {
	key := Fold(obj.Name())
	if existing := s.elems[key]; existing != nil {
		return existing
	}
	s.elems[key] = obj
	obj.setParent(s)
	return nil
}

// Names returns the folded names in the scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.elems))
	for name := range s.elems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumObjects returns the number of objects in the scope.
func (s *Scope) NumObjects() int { return len(s.elems) }

// String returns a debugging rendering of the scope.
func (s *Scope) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scope %s {\n", s.kind, s.comment)
	for _, name := range s.Names() {
		obj := s.elems[name]
		fmt.Fprintf(&b, "  %s: %s\n", name, obj.Type())
	}
	b.WriteString("}\n")
	return b.String()
}
