// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package registry

// Kind enumerates the closed set of parameter value kinds.
type Kind int

const (
	// KindScalar is a plain value: string, int, float or bool.
	KindScalar Kind = iota

	// KindNested is a single nested capability-typed object.
	KindNested

	// KindList is an ordered sequence of nested capability-typed objects.
	KindList

	// KindCollection maps arbitrary user-chosen names to nested
	// capability-typed objects.
	KindCollection
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNested:
		return "nested"
	case KindList:
		return "list"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// ScalarType enumerates the value types a scalar parameter may declare.
type ScalarType int

const (
	TypeString ScalarType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// String implements the fmt.Stringer interface.
func (t ScalarType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Param is one parameter specification of a variant: a name, an
// expected value kind and, optionally, a default. A parameter with no
// default is required.
type Param struct {
	name       string
	kind       Kind
	scalar     ScalarType
	capability string
	def        any
	hasDefault bool
	doc        string
}

// String declares a string-valued scalar parameter.
func String(name string) Param {
	return Param{name: name, kind: KindScalar, scalar: TypeString}
}

// Int declares an int-valued scalar parameter.
func Int(name string) Param {
	return Param{name: name, kind: KindScalar, scalar: TypeInt}
}

// Float declares a float-valued scalar parameter.
func Float(name string) Param {
	return Param{name: name, kind: KindScalar, scalar: TypeFloat}
}

// Bool declares a bool-valued scalar parameter.
func Bool(name string) Param {
	return Param{name: name, kind: KindScalar, scalar: TypeBool}
}

// Nested declares a parameter satisfied by one variant of the given capability.
func Nested(name, capability string) Param {
	return Param{name: name, kind: KindNested, capability: capability}
}

// List declares a parameter satisfied by an ordered sequence of
// variants of the given capability.
func List(name, capability string) Param {
	return Param{name: name, kind: KindList, capability: capability}
}

// Collection declares a parameter satisfied by a named set of variants
// of the given capability.
func Collection(name, capability string) Param {
	return Param{name: name, kind: KindCollection, capability: capability}
}

// WithDefault returns a copy of the parameter carrying the given
// default value. Declaring a default makes the parameter optional.
func (p Param) WithDefault(v any) Param {
	p.def = v
	p.hasDefault = true
	return p
}

// WithDoc returns a copy of the parameter carrying documentation text.
func (p Param) WithDoc(doc string) Param {
	p.doc = doc
	return p
}

// Name returns the parameter name matched against config keys.
func (p Param) Name() string {
	return p.name
}

// Kind returns the parameter's value kind.
func (p Param) Kind() Kind {
	return p.kind
}

// Scalar returns the declared scalar type. It is only meaningful for
// KindScalar parameters.
func (p Param) Scalar() ScalarType {
	return p.scalar
}

// Capability returns the capability a nested parameter requests. It is
// empty for KindScalar parameters.
func (p Param) Capability() string {
	return p.capability
}

// Default returns the declared default value, if any.
func (p Param) Default() (any, bool) {
	return p.def, p.hasDefault
}

// Required reports whether the parameter must be supplied by the
// configuration. It is the exact complement of having a default.
func (p Param) Required() bool {
	return !p.hasDefault
}

// Doc returns the parameter's documentation text.
func (p Param) Doc() string {
	return p.doc
}
