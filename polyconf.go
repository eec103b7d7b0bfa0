// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package polyconf builds typed object graphs from hierarchical text
// configuration, where the structure of the configuration mirrors a
// polymorphic type hierarchy: a config node names a concrete variant
// and its fields become that variant's validated parameters,
// recursively.
//
// The sub-packages hold the machinery — config loading and macro
// substitution, the variant registry, resolution and binding, identity
// hashing — while this package ties one full pass together:
//
//	rpt, id, err := polyconf.Resolve(reg, "Augmenter", config.FromYaml(f))
//	obj, id, err := polyconf.Construct(reg, "Augmenter", config.FromYaml(f))
package polyconf

import (
	"fmt"

	"github.com/polyconf/polyconf/config"
	"github.com/polyconf/polyconf/identity"
	"github.com/polyconf/polyconf/registry"
	"github.com/polyconf/polyconf/resolve"
)

// Resolve reads the given config sources and binds the tree against
// the capability, returning the validated resolved parameter tree and
// its canonical identity. No runtime object is instantiated.
func Resolve(reg *registry.Registry, capability string, srcs ...config.Source) (*resolve.Resolved, identity.Identity, error) {
	tree, err := config.Read(srcs...)
	if err != nil {
		return nil, identity.Identity{}, LoadError{Cause: err}
	}

	rpt, err := resolve.Bind(reg, capability, tree.Root())
	if err != nil {
		return nil, identity.Identity{}, ResolveError{Cause: err}
	}
	return rpt, identity.Hash(rpt), nil
}

// Construct runs a full pass: read, resolve, bind, then instantiate
// the object graph bottom-up through the registered variant factories.
// Structural failures (missing parameters, unknown keys, type
// mismatches) all surface from the resolution stage; a factory can only
// fail for domain reasons of its own.
func Construct(reg *registry.Registry, capability string, srcs ...config.Source) (any, identity.Identity, error) {
	rpt, id, err := Resolve(reg, capability, srcs...)
	if err != nil {
		return nil, identity.Identity{}, err
	}

	obj, err := Build(reg, rpt)
	if err != nil {
		return nil, identity.Identity{}, ConstructError{Cause: err}
	}
	return obj, id, nil
}

// ConstructAs is Construct with the result asserted to T.
func ConstructAs[T any](reg *registry.Registry, capability string, srcs ...config.Source) (T, identity.Identity, error) {
	obj, id, err := Construct(reg, capability, srcs...)
	if err != nil {
		var zero T
		return zero, identity.Identity{}, err
	}

	t, ok := obj.(T)
	if !ok {
		var zero T
		return zero, identity.Identity{}, ConstructError{
			Cause: fmt.Errorf("constructed %T does not satisfy requested type %T", obj, zero),
		}
	}
	return t, id, nil
}

// Build instantiates the object graph for an already validated
// resolved parameter tree. Children are constructed before their
// parent, which receives them through its [registry.Args].
func Build(reg *registry.Registry, rpt *resolve.Resolved) (any, error) {
	desc, ok := reg.Descriptor(rpt.Variant())
	if !ok {
		return nil, fmt.Errorf("resolved variant %q is not registered", rpt.Variant())
	}

	args := make(registry.Args, len(rpt.ParamNames()))
	for _, name := range rpt.ParamNames() {
		v, _ := rpt.Param(name)

		switch v.Kind() {
		case registry.KindNested:
			child, err := Build(reg, v.Child())
			if err != nil {
				return nil, err
			}
			args[name] = child

		case registry.KindList:
			list := v.List()
			children := make([]any, len(list))
			for i, c := range list {
				child, err := Build(reg, c)
				if err != nil {
					return nil, err
				}
				children[i] = child
			}
			args[name] = children

		case registry.KindCollection:
			coll := v.Collection()
			children := make(map[string]any, len(coll))
			for collName, c := range coll {
				child, err := Build(reg, c)
				if err != nil {
					return nil, err
				}
				children[collName] = child
			}
			args[name] = children

		default:
			args[name] = v.Scalar()
		}
	}
	return desc.New(args)
}

// LoadError occurs when the config sources fail to read, merge or
// macro-substitute.
type LoadError struct {
	Cause error
}

// Error implements the error interface.
func (e LoadError) Error() string {
	return fmt.Sprintf("failed to load config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e LoadError) Unwrap() error {
	return e.Cause
}

// ResolveError occurs when the loaded tree fails to resolve or bind
// against the requested capability.
type ResolveError struct {
	Cause error
}

// Error implements the error interface.
func (e ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ResolveError) Unwrap() error {
	return e.Cause
}

// ConstructError occurs when a variant factory fails while the object
// graph is instantiated from a validated resolved parameter tree.
type ConstructError struct {
	Cause error
}

// Error implements the error interface.
func (e ConstructError) Error() string {
	return fmt.Sprintf("failed to construct object graph: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConstructError) Unwrap() error {
	return e.Cause
}
