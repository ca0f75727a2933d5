package types

// IsNumericType reports whether t is int or float.
func IsNumericType(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.info&IsNumeric != 0
}

// IsIntegerType reports whether t is the int type.
func IsIntegerType(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == Int
}

// IsFloatType reports whether t is the float type.
func IsFloatType(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == Float
}

// IsBool reports whether t is the bool type.
func IsBool(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == Bool
}

// IsStringType reports whether t is the string type.
func IsStringType(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == String
}

// IsNone reports whether t is the none type.
func IsNone(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind == None
}

// IsPrimitive reports whether t is bool, int, float, or string.
func IsPrimitive(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.kind != None && b.kind != Invalid
}

// Widens reports whether a value of type from implicitly widens to
// type to. The only implicit numeric conversion in the language is
// int to float; there is no implicit narrowing.
func Widens(from, to Type) bool {
	return IsIntegerType(from) && IsFloatType(to)
}

// AssignableTo reports whether a value of type from may be assigned to
// a location of type to:
//   - identical types are assignable
//   - int widens to float
//   - a script type assigns to any of its ancestors (nominal
//     covariance over the ancestor chain)
//   - none assigns to any script or array type (the null value)
//   - arrays are invariant in their element type
func AssignableTo(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}
	if Identical(from, to) {
		return true
	}
	if Widens(from, to) {
		return true
	}
	if fs, ok := from.(*Script); ok {
		if ts, ok := to.(*Script); ok {
			return fs.Extends(ts)
		}
	}
	if IsNone(from) {
		switch to.(type) {
		case *Script, *Array:
			return true
		}
	}
	return false
}

// ConvertibleTo reports whether an explicit cast from one type to
// another is legal:
//   - every assignable pair
//   - numeric narrowing (float to int, truncating toward zero)
//   - any primitive to string, and string to any primitive
//   - bool from any primitive or object (none-ness test)
//   - script downcasts along the ancestor chain (checked at runtime)
func ConvertibleTo(from, to Type) bool {
	if AssignableTo(from, to) {
		return true
	}
	if IsNumericType(from) && IsNumericType(to) {
		return true
	}
	if IsStringType(to) && IsPrimitive(from) {
		return true
	}
	if IsStringType(from) && IsPrimitive(to) {
		return true
	}
	if IsBool(to) {
		return true
	}
	if fs, ok := from.(*Script); ok {
		if ts, ok := to.(*Script); ok {
			return ts.Extends(fs) // downcast
		}
	}
	return false
}

// ArithmeticResult returns the result type of an arithmetic operator
// applied to operand types l and r, or nil if the combination is not
// permitted. add selects the + operator, which additionally
// concatenates when either side is a string (any primitive operand is
// implicitly stringified).
//
// This is the coercion policy table from the design notes; changing
// coercion rules means changing this function only.
func ArithmeticResult(l, r Type, add bool) Type {
	if add && (IsStringType(l) || IsStringType(r)) {
		if (IsPrimitive(l) || IsStringType(l)) && (IsPrimitive(r) || IsStringType(r)) {
			return Typ[String]
		}
		return nil
	}
	if !IsNumericType(l) || !IsNumericType(r) {
		return nil
	}
	if IsFloatType(l) || IsFloatType(r) {
		return Typ[Float]
	}
	return Typ[Int]
}

// ComparableWith reports whether operands of types l and r may be
// compared with the ordering operators (< <= > >=).
func ComparableWith(l, r Type) bool {
	if IsNumericType(l) && IsNumericType(r) {
		return true
	}
	return IsStringType(l) && IsStringType(r)
}

// EquatableWith reports whether operands of types l and r may be
// compared with == and !=.
func EquatableWith(l, r Type) bool {
	if IsNumericType(l) && IsNumericType(r) {
		return true
	}
	if Identical(l, r) {
		return true
	}
	// Object comparisons permit related scripts and none.
	return AssignableTo(l, r) || AssignableTo(r, l)
}
