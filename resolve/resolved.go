// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"sort"

	"github.com/polyconf/polyconf/registry"

	"github.com/go-viper/mapstructure/v2"
)

// Resolved is one node of a resolved parameter tree: the chosen
// variant's identity, its namespace tag and the validated parameter
// values. Resolved trees are immutable once produced.
type Resolved struct {
	variant   string
	namespace string
	params    map[string]Value
}

// Variant returns the public name of the resolved concrete variant.
func (r *Resolved) Variant() string {
	return r.variant
}

// Namespace returns the node's identity namespace tag.
func (r *Resolved) Namespace() string {
	return r.namespace
}

// ParamNames returns the bound parameter names in lexical order.
func (r *Resolved) ParamNames() []string {
	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Param returns the bound value of the named parameter.
func (r *Resolved) Param(name string) (Value, bool) {
	v, ok := r.params[name]
	return v, ok
}

// Decode unmarshals the node's parameter values into v, matching struct
// fields by the "config" tag. Nested nodes decode into nested structs,
// lists into slices. Variant identities and namespace tags are not part
// of the decoded data.
func (r *Resolved) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "config",
		Result:  v,
	})
	if err != nil {
		return err
	}
	return dec.Decode(r.raw())
}

// raw rebuilds the plain nested value the node binds to.
func (r *Resolved) raw() map[string]any {
	out := make(map[string]any, len(r.params))
	for name, v := range r.params {
		out[name] = v.raw()
	}
	return out
}

// Value is the bound value of one parameter: a scalar, a nested
// resolved node, an ordered sequence of nodes or a named collection of
// nodes, depending on the parameter's declared kind.
type Value struct {
	kind   registry.Kind
	scalar any
	child  *Resolved
	list   []*Resolved
	coll   map[string]*Resolved
}

func scalarValue(v any) Value {
	return Value{kind: registry.KindScalar, scalar: v}
}

func nestedValue(child *Resolved) Value {
	return Value{kind: registry.KindNested, child: child}
}

func listValue(children []*Resolved) Value {
	return Value{kind: registry.KindList, list: children}
}

func collectionValue(children map[string]*Resolved) Value {
	return Value{kind: registry.KindCollection, coll: children}
}

// Kind returns the value's kind.
func (v Value) Kind() registry.Kind {
	return v.kind
}

// Scalar returns the coerced scalar value of a KindScalar parameter.
func (v Value) Scalar() any {
	return v.scalar
}

// Child returns the nested node of a KindNested parameter.
func (v Value) Child() *Resolved {
	return v.child
}

// List returns the nodes of a KindList parameter in configuration order.
func (v Value) List() []*Resolved {
	out := make([]*Resolved, len(v.list))
	copy(out, v.list)
	return out
}

// Collection returns the nodes of a KindCollection parameter keyed by
// their configured names.
func (v Value) Collection() map[string]*Resolved {
	out := make(map[string]*Resolved, len(v.coll))
	for k, c := range v.coll {
		out[k] = c
	}
	return out
}

func (v Value) raw() any {
	switch v.kind {
	case registry.KindNested:
		return v.child.raw()
	case registry.KindList:
		out := make([]any, len(v.list))
		for i, c := range v.list {
			out[i] = c.raw()
		}
		return out
	case registry.KindCollection:
		out := make(map[string]any, len(v.coll))
		for k, c := range v.coll {
			out[k] = c.raw()
		}
		return out
	default:
		return v.scalar
	}
}
