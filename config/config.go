// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"time"
)

// Reserved keys recognized by the loader and the binder.
const (
	// ConstantsKey is the top-level mapping holding named sub-trees
	// referenced elsewhere via ${name} tokens. It is consumed during
	// Read and never appears in the resulting Tree.
	ConstantsKey = "constants"

	// NamespaceKey tags a node with an identity namespace. It is left
	// in place for the binder to consume.
	NamespaceKey = "config_namespace"
)

// DefaultNamespace is the namespace of any node without an explicit
// NamespaceKey value anywhere in its ancestry.
const DefaultNamespace = "root"

// Store represents a general key value structure.
type Store interface {
	Set(key string, val any) error
}

// Source defines valid config sources as those who can
// serialize themselves into a key value like structure.
type Source interface {
	Apply(Store) error
}

// Read merges the given sources and returns the macro-expanded Tree.
// Subsequent sources override previous sources. The returned Tree owns
// all of its data; callers may freely reuse the inputs afterwards.
func Read(srcs ...Source) (*Tree, error) {
	store := make(Map)
	for _, src := range srcs {
		err := src.Apply(store)
		if err != nil {
			return nil, err
		}
	}

	root, err := expand(store, time.Now())
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}
