package types

// BasicKind describes the kind of basic type.
type BasicKind int

const (
	Invalid BasicKind = iota // invalid type, used after errors

	Bool
	Int
	Float
	String

	// None is both the void return type and the null object value.
	None
)

// BasicInfo describes properties of a basic type.
type BasicInfo int

const (
	IsBoolean BasicInfo = 1 << iota
	IsInteger
	IsFloat
	IsString
	IsNumeric = IsInteger | IsFloat
)

// Basic represents a basic type: bool, int, float, string, or none.
type Basic struct {
	typ
	kind BasicKind
	info BasicInfo
	name string
}

// Kind returns the kind of the basic type.
func (b *Basic) Kind() BasicKind { return b.kind }

// Info returns information about the basic type.
func (b *Basic) Info() BasicInfo { return b.info }

// String implements Type.
func (b *Basic) String() string { return b.name }

// Typ holds the predeclared basic types, indexed by BasicKind.
// Typ[Invalid] is nil, representing an invalid type.
var Typ = []*Basic{
	Invalid: nil,
	Bool:    {kind: Bool, info: IsBoolean, name: "bool"},
	Int:     {kind: Int, info: IsInteger, name: "int"},
	Float:   {kind: Float, info: IsFloat, name: "float"},
	String:  {kind: String, info: IsString, name: "string"},
	None:    {kind: None, name: "none"},
}

// basicByName maps lowercased names of the primitive types.
// Loaded once at process start and never mutated.
var basicByName = map[string]*Basic{
	"bool":   Typ[Bool],
	"int":    Typ[Int],
	"float":  Typ[Float],
	"string": Typ[String],
	"none":   Typ[None],
}

// BasicByName returns the primitive type with the given
// case-insensitive name, or nil.
func BasicByName(name string) *Basic {
	return basicByName[Fold(name)]
}
