// Package types implements the Vellum type system and the symbol
// (object/scope) layer shared by the semantic analyzer and the code
// generator. Types and published scopes are immutable after
// resolution completes for a script.
package types

// Type is the interface implemented by all types.
type Type interface {
	// String returns a human-readable representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}
