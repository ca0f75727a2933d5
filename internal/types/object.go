package types

import (
	"github.com/vellum-lang/vellum/internal/span"
	"github.com/vellum-lang/vellum/internal/syntax"
)

// Object represents a declared entity: variable, property, function,
// or state.
type Object interface {
	Name() string   // declared name, original casing
	Type() Type     // object type
	Pos() span.Pos  // declaration position
	Parent() *Scope // enclosing scope

	setParent(*Scope) // internal: set by Scope.Insert
	aObject()         // marker method to restrict implementations
}

// object is the base struct for all objects.
type object struct {
	name   string
	typ    Type
	pos    span.Pos
	parent *Scope
}

func (o *object) Name() string       { return o.name }
func (o *object) Type() Type         { return o.typ }
func (o *object) Pos() span.Pos      { return o.pos }
func (o *object) Parent() *Scope     { return o.parent }
func (o *object) setParent(s *Scope) { o.parent = s }
func (*object) aObject()             {}

// Var represents a script variable, local variable, or parameter.
type Var struct {
	object
	param  bool
	hidden bool // synthesized backing storage, not visible to source lookup
}

// NewVar creates a variable object.
func NewVar(pos span.Pos, name string, typ Type) *Var {
	return &Var{object: object{name: name, typ: typ, pos: pos}}
}

// NewParam creates a parameter object.
func NewParam(pos span.Pos, name string, typ Type) *Var {
	return &Var{object: object{name: name, typ: typ, pos: pos}, param: true}
}

// NewBackingVar creates the hidden backing variable of an
// auto-property. Its name starts with "::" so no source identifier
// can reference it.
func NewBackingVar(pos span.Pos, propName string, typ Type) *Var {
	return &Var{
		object: object{name: "::" + propName + "_var", typ: typ, pos: pos},
		hidden: true,
	}
}

// IsParam reports whether the variable is a function parameter.
func (v *Var) IsParam() bool { return v.param }

// Hidden reports whether the variable is synthesized backing storage.
func (v *Var) Hidden() bool { return v.hidden }

// SetType sets the variable's type once resolved.
func (v *Var) SetType(typ Type) { v.typ = typ }

// Prop represents a property. After the semantic analyzer runs, every
// property has a getter and, unless read-only, a setter; auto
// properties additionally have hidden backing storage.
type Prop struct {
	object
	auto     bool
	readOnly bool
	getter   *FuncObj
	setter   *FuncObj
	backing  *Var
	decl     *syntax.PropertyDecl
}

// NewProp creates a property object.
func NewProp(pos span.Pos, name string, typ Type, decl *syntax.PropertyDecl) *Prop {
	return &Prop{
		object:   object{name: name, typ: typ, pos: pos},
		auto:     decl.Auto,
		readOnly: decl.ReadOnly,
		decl:     decl,
	}
}

// Auto reports whether the property was declared Auto or AutoReadOnly.
func (p *Prop) Auto() bool { return p.auto || p.readOnly }

// ReadOnly reports whether the property was declared AutoReadOnly.
func (p *Prop) ReadOnly() bool { return p.readOnly }

// Getter returns the property's getter, nil before materialization.
func (p *Prop) Getter() *FuncObj { return p.getter }

// Setter returns the property's setter, nil for read-only properties.
func (p *Prop) Setter() *FuncObj { return p.setter }

// Backing returns the hidden backing variable, nil for explicit
// properties.
func (p *Prop) Backing() *Var { return p.backing }

// Decl returns the property's AST declaration.
func (p *Prop) Decl() *syntax.PropertyDecl { return p.decl }

// SetType sets the property's type once resolved.
func (p *Prop) SetType(typ Type) { p.typ = typ }

// SetAccessors records the property's accessors and backing storage.
func (p *Prop) SetAccessors(get, set *FuncObj, backing *Var) {
	p.getter = get
	p.setter = set
	p.backing = backing
}

// FuncObj represents a declared function or event.
type FuncObj struct {
	object
	sig  *Func
	decl *syntax.FuncDecl
}

// NewFuncObj creates a function object. The signature is attached once
// resolved via SetSignature.
func NewFuncObj(pos span.Pos, name string, decl *syntax.FuncDecl) *FuncObj {
	return &FuncObj{object: object{name: name, pos: pos}, decl: decl}
}

// Signature returns the function signature.
func (f *FuncObj) Signature() *Func { return f.sig }

// Decl returns the function's AST declaration.
func (f *FuncObj) Decl() *syntax.FuncDecl { return f.decl }

// SetSignature sets the resolved signature.
func (f *FuncObj) SetSignature(sig *Func) {
	f.sig = sig
	f.typ = sig
}

// StateObj represents a named state and the function overrides active
// while the owning object is in that state.
type StateObj struct {
	object
	auto  bool
	funcs map[string]*FuncObj // folded name -> override
	decl  *syntax.StateDecl
}

// NewStateObj creates a state object.
func NewStateObj(pos span.Pos, name string, auto bool, decl *syntax.StateDecl) *StateObj {
	return &StateObj{
		object: object{name: name, typ: Typ[None], pos: pos},
		auto:   auto,
		funcs:  make(map[string]*FuncObj),
		decl:   decl,
	}
}

// Auto reports whether this is the default state.
func (s *StateObj) Auto() bool { return s.auto }

// Decl returns the state's AST declaration.
func (s *StateObj) Decl() *syntax.StateDecl { return s.decl }

// Override returns the state's override for a function name, or nil.
func (s *StateObj) Override(name string) *FuncObj {
	return s.funcs[Fold(name)]
}

// AddOverride records a function override. Returns the existing
// override if the name is already taken (first declaration wins).
func (s *StateObj) AddOverride(fn *FuncObj) *FuncObj {
	key := Fold(fn.Name())
	if existing := s.funcs[key]; existing != nil {
		return existing
	}
	s.funcs[key] = fn
	return nil
}

// Overrides returns the override names in folded form.
func (s *StateObj) Overrides() map[string]*FuncObj { return s.funcs }
