// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package registry

import (
	"fmt"
	"sort"
)

// Variant declares one concrete (or abstract) member of a capability
// tree for registration.
type Variant struct {
	// Name is the public name matched, exactly, against config keys.
	Name string

	// Capability names the direct base capability, if any. The named
	// capability must itself be registered.
	Capability string

	// Abstract marks a variant which only anchors a capability and
	// declares inheritable parameters; it cannot be constructed.
	Abstract bool

	// Params are the parameter specifications declared by this variant,
	// extending (never removing) those inherited from its ancestors. A
	// declaration with the same name as an inherited one takes precedence.
	Params []Param

	// New constructs the runtime object from validated arguments. It may
	// be nil for callers which only resolve configurations. Failures
	// returned from New are domain failures, outside the configuration
	// error taxonomy.
	New func(Args) (any, error)

	// Doc describes the variant for exploration tooling.
	Doc string
}

// DuplicateVariantError occurs at registry build time when two variants
// register the same public name.
type DuplicateVariantError struct {
	Name string
}

// Error implements the error interface.
func (e DuplicateVariantError) Error() string {
	return fmt.Sprintf("variant %q is registered more than once", e.Name)
}

// UnknownCapabilityError occurs at registry build time when a variant
// names a base capability that was never registered.
type UnknownCapabilityError struct {
	Variant    string
	Capability string
}

// Error implements the error interface.
func (e UnknownCapabilityError) Error() string {
	return fmt.Sprintf("variant %q names unregistered capability %q", e.Variant, e.Capability)
}

// CapabilityCycleError occurs at registry build time when the
// capability tree contains a cycle.
type CapabilityCycleError struct {
	Name string
}

// Error implements the error interface.
func (e CapabilityCycleError) Error() string {
	return fmt.Sprintf("capability chain of variant %q is cyclic", e.Name)
}

// Builder accumulates variant registrations until Build is called.
type Builder struct {
	variants []Variant
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds variants to the builder. All validation is deferred to
// Build so that registration order never matters.
func (b *Builder) Register(vs ...Variant) *Builder {
	b.variants = append(b.variants, vs...)
	return b
}

// Build validates all registrations and returns the finished Registry.
// The Registry is read-only from here on.
func (b *Builder) Build() (*Registry, error) {
	byName := make(map[string]Variant, len(b.variants))
	children := make(map[string][]string)
	for _, v := range b.variants {
		if _, exists := byName[v.Name]; exists {
			return nil, DuplicateVariantError{Name: v.Name}
		}
		byName[v.Name] = v
	}
	for _, v := range b.variants {
		if v.Capability == "" {
			continue
		}
		if _, ok := byName[v.Capability]; !ok {
			return nil, UnknownCapabilityError{Variant: v.Name, Capability: v.Capability}
		}
		children[v.Capability] = append(children[v.Capability], v.Name)
	}

	reg := &Registry{
		descriptors: make(map[string]Descriptor, len(b.variants)),
		children:    children,
	}
	for _, v := range b.variants {
		params, err := effectiveParams(byName, v)
		if err != nil {
			return nil, err
		}
		reg.descriptors[v.Name] = Descriptor{
			name:          v.Name,
			capability:    v.Capability,
			constructible: !v.Abstract,
			params:        params,
			factory:       v.New,
			doc:           v.Doc,
		}
	}
	return reg, nil
}

// effectiveParams merges the declared parameters of v's ancestor chain,
// root first, so that more derived declarations win by name.
func effectiveParams(byName map[string]Variant, v Variant) ([]Param, error) {
	var chain []Variant
	seen := make(map[string]bool)
	for cur := v; ; {
		if seen[cur.Name] {
			return nil, CapabilityCycleError{Name: v.Name}
		}
		seen[cur.Name] = true
		chain = append(chain, cur)
		if cur.Capability == "" {
			break
		}
		cur = byName[cur.Capability]
	}

	merged := make(map[string]Param)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, p := range chain[i].Params {
			merged[p.name] = p
		}
	}

	params := make([]Param, 0, len(merged))
	for _, p := range merged {
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].name < params[j].name })
	return params, nil
}

// Registry is the read-only index of all registered variants. It is
// built once at initialization and safely shared across any number of
// concurrent resolution passes.
type Registry struct {
	descriptors map[string]Descriptor
	children    map[string][]string
}

// Descriptor returns the descriptor registered under the given public name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// VariantsOf returns every constructible variant reachable from the
// given capability, the capability itself included when it is
// constructible. The result is flattened over the whole subtree and
// sorted by name. It is a pure query; no resolution pass is required.
func (r *Registry) VariantsOf(capability string) []Descriptor {
	if _, ok := r.descriptors[capability]; !ok {
		return nil
	}

	var out []Descriptor
	stack := []string{capability}
	visited := make(map[string]bool)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true

		d := r.descriptors[name]
		if d.constructible {
			out = append(out, d)
		}
		stack = append(stack, r.children[name]...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Descriptor is the resolved, immutable view of one registered variant:
// its public name, its position in the capability tree and the full set
// of parameter specifications it declares, inherited ones included.
type Descriptor struct {
	name          string
	capability    string
	constructible bool
	params        []Param
	factory       func(Args) (any, error)
	doc           string
}

// Name returns the variant's public name.
func (d Descriptor) Name() string {
	return d.name
}

// Capability returns the direct base capability, or "" for a root.
func (d Descriptor) Capability() string {
	return d.capability
}

// Constructible reports whether the variant may terminate a resolution.
func (d Descriptor) Constructible() bool {
	return d.constructible
}

// Params returns the variant's effective parameter specifications,
// sorted by name.
func (d Descriptor) Params() []Param {
	out := make([]Param, len(d.params))
	copy(out, d.params)
	return out
}

// Param returns the effective parameter specification with the given name.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.params {
		if p.name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Doc returns the variant's documentation text.
func (d Descriptor) Doc() string {
	return d.doc
}

// New constructs the runtime object from validated arguments.
func (d Descriptor) New(args Args) (any, error) {
	if d.factory == nil {
		return nil, fmt.Errorf("variant %q has no factory registered", d.name)
	}
	return d.factory(args)
}

// HasFactory reports whether a factory was registered for the variant.
func (d Descriptor) HasFactory() bool {
	return d.factory != nil
}
