// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Tree is the immutable parsed representation of the configuration,
// post macro-substitution. It is created once per Read and never
// mutated; any number of resolution passes may share one Tree.
type Tree struct {
	root map[string]any
}

// Root returns the top-level node of the tree.
func (t *Tree) Root() Node {
	return Node{val: t.root}
}

// Encode writes the tree back out as YAML.
func (t *Tree) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	err := enc.Encode(t.root)
	if err != nil {
		return err
	}
	return enc.Close()
}

// Node is a read-only view over one position in a Tree. A Node is
// either a mapping, a sequence, or a scalar (string, number, bool or null).
type Node struct {
	val any
}

// NodeOf wraps a raw nested value in a Node view. It is mainly useful
// in tests and for callers which assemble nodes programmatically.
func NodeOf(val any) Node {
	if m, ok := normalizeMapping(val); ok {
		return Node{val: m}
	}
	return Node{val: val}
}

// IsMapping reports whether the node is a mapping.
func (n Node) IsMapping() bool {
	_, ok := n.val.(map[string]any)
	return ok
}

// IsSequence reports whether the node is a sequence.
func (n Node) IsSequence() bool {
	_, ok := n.val.([]any)
	return ok
}

// IsNull reports whether the node is the null scalar. A config key
// naming a variant with no body (e.g. "NoiseAugmenter:") parses to null.
func (n Node) IsNull() bool {
	return n.val == nil
}

// Keys returns the mapping keys in lexical order. It returns nil for
// non-mapping nodes.
func (n Node) Keys() []string {
	m, ok := n.val.(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the sub-node under the given mapping key.
func (n Node) Field(key string) (Node, bool) {
	m, ok := n.val.(map[string]any)
	if !ok {
		return Node{}, false
	}
	v, ok := m[key]
	if !ok {
		return Node{}, false
	}
	return Node{val: v}, true
}

// Items returns the elements of a sequence node, preserving order.
func (n Node) Items() []Node {
	s, ok := n.val.([]any)
	if !ok {
		return nil
	}

	items := make([]Node, len(s))
	for i, v := range s {
		items[i] = Node{val: v}
	}
	return items
}

// Value returns the raw underlying value of the node.
func (n Node) Value() any {
	return n.val
}
