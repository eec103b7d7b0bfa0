// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"fmt"
	"strings"

	"github.com/polyconf/polyconf/config"
	"github.com/polyconf/polyconf/registry"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/sync/errgroup"
)

// MissingParameterError occurs when a required parameter is absent from
// a node's configuration.
type MissingParameterError struct {
	Variant string
	Param   string
}

// Error implements the error interface.
func (e MissingParameterError) Error() string {
	return fmt.Sprintf("%q value not found in %q configuration", e.Param, e.Variant)
}

// UnknownParameterError occurs when a node supplies a key matching no
// declared parameter of the chosen variant.
type UnknownParameterError struct {
	Variant string
	Param   string
}

// Error implements the error interface.
func (e UnknownParameterError) Error() string {
	return fmt.Sprintf("%q does not configure any parameter of %q", e.Param, e.Variant)
}

// TypeMismatchError occurs when a supplied value cannot be coerced to a
// parameter's declared type.
type TypeMismatchError struct {
	Variant  string
	Param    string
	Declared string
	Provided string
}

// Error implements the error interface.
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%q of %q declares %s but configuration provides %s", e.Param, e.Variant, e.Declared, e.Provided)
}

// ParamError wraps a failure binding one nested parameter.
type ParamError struct {
	Param string
	Cause error
}

// Error implements the error interface.
func (e ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ParamError) Unwrap() error {
	return e.Cause
}

// InvalidNodeError is the aggregate binding failure of one node. Every
// problem found with the node is reported together, so a configuration
// can be fixed in one edit-and-retry cycle.
type InvalidNodeError struct {
	Variant string
	Errors  []error
}

// Error implements the error interface.
func (e InvalidNodeError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("configuration of %q has %d problem(s): %s", e.Variant, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidNodeError) Unwrap() []error {
	return e.Errors
}

// Bind resolves the node against the capability and recursively binds
// the chosen variant's parameters, producing an immutable [Resolved]
// tree. It never instantiates runtime objects and has no side effects;
// on failure, no partially bound tree is returned.
func Bind(reg *registry.Registry, capability string, node config.Node) (*Resolved, error) {
	return bind(reg, capability, node, config.DefaultNamespace)
}

func bind(reg *registry.Registry, capability string, node config.Node, namespace string) (*Resolved, error) {
	desc, paramsNode, err := pick(reg, capability, node)
	if err != nil {
		return nil, err
	}

	var errs []error
	namespace, nsErr := effectiveNamespace(desc, node, paramsNode, namespace)
	if nsErr != nil {
		errs = append(errs, nsErr)
	}

	if !paramsNode.IsMapping() && !paramsNode.IsNull() {
		errs = append(errs, TypeMismatchError{
			Variant:  desc.Name(),
			Param:    desc.Name(),
			Declared: "mapping",
			Provided: describe(paramsNode.Value()),
		})
		return nil, InvalidNodeError{Variant: desc.Name(), Errors: errs}
	}

	declared := make(map[string]bool)
	values := make(map[string]Value)
	for _, p := range desc.Params() {
		declared[p.Name()] = true

		sub, ok := paramsNode.Field(p.Name())
		if !ok {
			def, hasDefault := p.Default()
			if !hasDefault {
				errs = append(errs, MissingParameterError{Variant: desc.Name(), Param: p.Name()})
				continue
			}
			// Defaults travel the same validation path as supplied values.
			sub = config.NodeOf(def)
		}

		v, err := bindParam(reg, desc, p, sub, namespace)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[p.Name()] = v
	}

	for _, key := range paramsNode.Keys() {
		if key == config.NamespaceKey || declared[key] {
			continue
		}
		errs = append(errs, UnknownParameterError{Variant: desc.Name(), Param: key})
	}

	if len(errs) > 0 {
		return nil, InvalidNodeError{Variant: desc.Name(), Errors: errs}
	}
	return &Resolved{variant: desc.Name(), namespace: namespace, params: values}, nil
}

// effectiveNamespace applies the nearest explicit config_namespace tag:
// the parameter node wins over the type-key node, which wins over the
// namespace inherited from the enclosing construction.
func effectiveNamespace(desc registry.Descriptor, node, paramsNode config.Node, inherited string) (string, error) {
	namespace := inherited
	for _, n := range []config.Node{node, paramsNode} {
		tag, ok := n.Field(config.NamespaceKey)
		if !ok {
			continue
		}
		s, ok := tag.Value().(string)
		if !ok {
			return inherited, TypeMismatchError{
				Variant:  desc.Name(),
				Param:    config.NamespaceKey,
				Declared: "string",
				Provided: describe(tag.Value()),
			}
		}
		namespace = s
	}
	return namespace, nil
}

func bindParam(reg *registry.Registry, desc registry.Descriptor, p registry.Param, sub config.Node, namespace string) (Value, error) {
	switch p.Kind() {
	case registry.KindNested:
		child, err := bind(reg, p.Capability(), sub, namespace)
		if err != nil {
			return Value{}, ParamError{Param: p.Name(), Cause: err}
		}
		return nestedValue(child), nil

	case registry.KindList:
		return bindList(reg, desc, p, sub, namespace)

	case registry.KindCollection:
		return bindCollection(reg, desc, p, sub, namespace)

	default:
		v, err := coerce(desc, p, sub.Value())
		if err != nil {
			return Value{}, err
		}
		return scalarValue(v), nil
	}
}

// bindList binds every element of a sequence independently. Elements
// have no data dependency on one another, so they are bound in
// parallel; the output order is the configuration order regardless.
func bindList(reg *registry.Registry, desc registry.Descriptor, p registry.Param, sub config.Node, namespace string) (Value, error) {
	if !sub.IsSequence() {
		return Value{}, TypeMismatchError{
			Variant:  desc.Name(),
			Param:    p.Name(),
			Declared: fmt.Sprintf("sequence of %s", p.Capability()),
			Provided: describe(sub.Value()),
		}
	}

	items := sub.Items()
	children := make([]*Resolved, len(items))
	elemErrs := make([]error, len(items))

	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			child, err := bind(reg, p.Capability(), item, namespace)
			children[i] = child
			elemErrs[i] = err
			return err
		})
	}
	if err := g.Wait(); err != nil {
		for i, elemErr := range elemErrs {
			if elemErr != nil {
				return Value{}, ParamError{Param: fmt.Sprintf("%s[%d]", p.Name(), i), Cause: elemErr}
			}
		}
	}
	return listValue(children), nil
}

func bindCollection(reg *registry.Registry, desc registry.Descriptor, p registry.Param, sub config.Node, namespace string) (Value, error) {
	if !sub.IsMapping() {
		return Value{}, TypeMismatchError{
			Variant:  desc.Name(),
			Param:    p.Name(),
			Declared: fmt.Sprintf("named collection of %s", p.Capability()),
			Provided: describe(sub.Value()),
		}
	}

	children := make(map[string]*Resolved)
	for _, name := range sub.Keys() {
		entry, _ := sub.Field(name)
		child, err := bind(reg, p.Capability(), entry, namespace)
		if err != nil {
			return Value{}, ParamError{Param: fmt.Sprintf("%s.%s", p.Name(), name), Cause: err}
		}
		children[name] = child
	}
	return collectionValue(children), nil
}

// coerce validates a raw scalar against the declared scalar type. Cross
// kind coercion is deliberately narrow: ints are accepted for float
// parameters, nothing else converts.
func coerce(desc registry.Descriptor, p registry.Param, raw any) (any, error) {
	mismatch := TypeMismatchError{
		Variant:  desc.Name(),
		Param:    p.Name(),
		Declared: p.Scalar().String(),
		Provided: describe(raw),
	}

	switch p.Scalar() {
	case registry.TypeString:
		if _, ok := raw.(string); !ok {
			return nil, mismatch
		}
		var out string
		if err := decode(raw, &out, mismatch); err != nil {
			return nil, err
		}
		return out, nil

	case registry.TypeInt:
		switch raw.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return nil, mismatch
		}
		var out int
		if err := decode(raw, &out, mismatch); err != nil {
			return nil, err
		}
		return out, nil

	case registry.TypeFloat:
		switch raw.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			return nil, mismatch
		}
		var out float64
		if err := decode(raw, &out, mismatch); err != nil {
			return nil, err
		}
		return out, nil

	case registry.TypeBool:
		if _, ok := raw.(bool); !ok {
			return nil, mismatch
		}
		var out bool
		if err := decode(raw, &out, mismatch); err != nil {
			return nil, err
		}
		return out, nil

	default:
		return nil, mismatch
	}
}

func decode(raw any, target any, mismatch TypeMismatchError) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: target})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return mismatch
	}
	return nil
}

func describe(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return fmt.Sprintf("%T", v)
	}
}
