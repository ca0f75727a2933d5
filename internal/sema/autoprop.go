package sema

import (
	"github.com/vellum-lang/vellum/internal/diag"
	"github.com/vellum-lang/vellum/internal/syntax"
	"github.com/vellum-lang/vellum/internal/types"
)

// materializeProperties gives every property its accessor pair. Auto
// properties get a hidden backing variable plus synthesized
// getter/setter bodies spliced into the AST; explicit properties get
// their declared accessors validated against the property type. After
// this phase the code generator never distinguishes the two forms.
func (c *checker) materializeProperties() {
	for _, s := range c.result.Order {
		c.cur = s
		c.scope = s.Scope
		for _, m := range s.Unit.Members {
			pd, ok := m.(*syntax.PropertyDecl)
			if !ok {
				continue
			}
			prop, ok := s.Scope.Lookup(pd.Name.Value).(*types.Prop)
			if !ok || prop.Decl() != pd {
				// Lost a duplicate-symbol conflict; already reported.
				continue
			}
			if pd.IsAuto() {
				c.materializeAuto(s, pd, prop)
			} else {
				c.checkExplicit(pd, prop)
			}
		}
	}
	c.cur = nil
	c.scope = nil
}

func (c *checker) materializeAuto(s *Script, pd *syntax.PropertyDecl, prop *types.Prop) {
	backing := types.NewBackingVar(pd.Pos(), prop.Name(), prop.Type())
	// The "::" name prefix is unwritable in source, so this insert
	// cannot conflict.
	s.Scope.Insert(backing)

	get, set := syntax.NewAutoAccessors(pd, backing.Name())
	pd.Get, pd.Set = get, set

	getObj := types.NewFuncObj(pd.Pos(), "Get", get)
	getObj.SetSignature(types.NewFunc(nil, prop.Type(), false, false, false))

	var setObj *types.FuncObj
	if set != nil {
		param := types.NewParam(pd.Pos(), "value", prop.Type())
		setObj = types.NewFuncObj(pd.Pos(), "Set", set)
		setObj.SetSignature(types.NewFunc([]*types.Var{param}, nil, false, false, false))
	}
	prop.SetAccessors(getObj, setObj, backing)

	if pd.Init == nil {
		if prop.ReadOnly() {
			c.errorf(diag.TypeMismatch, pd.Pos(),
				"AutoReadOnly property %s requires an initial value", prop.Name())
		}
		return
	}
	c.literalInit(pd.Init, prop.Type(), "property "+prop.Name())
}

// checkExplicit validates the accessor declarations of a full-form
// property: the getter takes no parameters and returns the property
// type, the setter takes exactly one parameter of the property type
// and returns nothing.
func (c *checker) checkExplicit(pd *syntax.PropertyDecl, prop *types.Prop) {
	if pd.Get == nil && pd.Set == nil {
		c.errorf(diag.SyntaxError, pd.Pos(),
			"property %s declares neither Get nor Set", prop.Name())
		return
	}

	var getObj, setObj *types.FuncObj
	if pd.Get != nil {
		getObj = types.NewFuncObj(pd.Get.Pos(), "Get", pd.Get)
		getObj.SetSignature(c.funcSignature(pd.Get))
		sig := getObj.Signature()
		if sig.NumParams() != 0 || !types.Identical(sig.Result(), prop.Type()) {
			c.errorf(diag.TypeMismatch, pd.Get.Pos(),
				"property %s getter must take no parameters and return %s",
				prop.Name(), prop.Type())
		}
	}
	if pd.Set != nil {
		setObj = types.NewFuncObj(pd.Set.Pos(), "Set", pd.Set)
		setObj.SetSignature(c.funcSignature(pd.Set))
		sig := setObj.Signature()
		if sig.NumParams() != 1 || !types.Identical(sig.Param(0).Type(), prop.Type()) ||
			!types.IsNone(sig.Result()) {
			c.errorf(diag.TypeMismatch, pd.Set.Pos(),
				"property %s setter must take one %s parameter and return nothing",
				prop.Name(), prop.Type())
		}
	}
	prop.SetAccessors(getObj, setObj, nil)
}
