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
)

// NoCandidateError occurs when a config node names no registered
// variant of the requested capability. It carries the full candidate
// set so the caller can construct a precise diagnostic.
type NoCandidateError struct {
	// Capability is the requested capability.
	Capability string

	// Requested are the node's keys that were matched against the candidates.
	Requested []string

	// Candidates are the public names of every eligible variant.
	Candidates []string
}

// Error implements the error interface.
func (e NoCandidateError) Error() string {
	return fmt.Sprintf(
		"configuration does not match any variant of capability %q (requested: [%s], candidates: [%s])",
		e.Capability, strings.Join(e.Requested, ", "), strings.Join(e.Candidates, ", "),
	)
}

// AmbiguousCandidateError occurs when a config node names more than one
// registered variant of the requested capability.
type AmbiguousCandidateError struct {
	// Capability is the requested capability.
	Capability string

	// Matched are the node's keys that each matched a candidate.
	Matched []string

	// Candidates are the public names of every eligible variant.
	Candidates []string
}

// Error implements the error interface.
func (e AmbiguousCandidateError) Error() string {
	return fmt.Sprintf(
		"configuration matches multiple variants of capability %q (matched: [%s], candidates: [%s])",
		e.Capability, strings.Join(e.Matched, ", "), strings.Join(e.Candidates, ", "),
	)
}

// Resolve matches the given config node to exactly one constructible
// variant of the capability. Matching is exact-string on variant public
// names over the capability's whole flattened subtree.
func Resolve(reg *registry.Registry, capability string, node config.Node) (registry.Descriptor, error) {
	d, _, err := pick(reg, capability, node)
	return d, err
}

// pick returns the chosen descriptor together with the sub-node holding
// its parameters. When the node supplies no recognized type key and the
// capability itself is constructible, the node itself is the parameter
// node; this is the base-case termination of recursion for simple
// non-polymorphic nodes.
func pick(reg *registry.Registry, capability string, node config.Node) (registry.Descriptor, config.Node, error) {
	candidates := reg.VariantsOf(capability)
	candidateNames := make([]string, len(candidates))
	byName := make(map[string]registry.Descriptor, len(candidates))
	for i, d := range candidates {
		candidateNames[i] = d.Name()
		byName[d.Name()] = d
	}

	var matched []string
	for _, key := range node.Keys() {
		if key == config.NamespaceKey {
			continue
		}
		if _, ok := byName[key]; ok {
			matched = append(matched, key)
		}
	}

	switch len(matched) {
	case 1:
		sub, _ := node.Field(matched[0])
		return byName[matched[0]], sub, nil
	case 0:
		// A node with no recognized type key can still resolve when the
		// capability itself is directly constructible; its own defaults
		// and declared parameters then apply.
		if d, ok := reg.Descriptor(capability); ok && d.Constructible() {
			return d, node, nil
		}
		return registry.Descriptor{}, config.Node{}, NoCandidateError{
			Capability: capability,
			Requested:  requestedKeys(node),
			Candidates: candidateNames,
		}
	default:
		return registry.Descriptor{}, config.Node{}, AmbiguousCandidateError{
			Capability: capability,
			Matched:    matched,
			Candidates: candidateNames,
		}
	}
}

func requestedKeys(node config.Node) []string {
	var keys []string
	for _, k := range node.Keys() {
		if k == config.NamespaceKey {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
