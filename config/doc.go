// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config loads hierarchical text configuration into an immutable
// [Tree], ready for variant resolution.
//
// Configuration is read from one or more [Source]s. Subsequent sources
// override previous sources key by key, which is how ad-hoc overrides are
// layered on top of a base file:
//
//	tree, err := config.Read(
//	    config.FromYaml(f),
//	    config.FromMap(overrides),
//	)
//
// After all sources are merged, macro substitution runs over the whole
// tree. A token of the form ${name} inside any scalar or key position is
// replaced by the matching entry of the reserved top-level "constants"
// mapping, or by one of the built-in macros:
//
//   - ${datetime} expands to a timestamp evaluated once per Read, so every
//     occurrence in one load renders identically.
//   - ${inherit} expands to the nearest enclosing value of the same key up
//     the node's ancestry chain.
//
// The "constants" mapping itself is removed from the resulting Tree and
// may not reference itself cyclically.
package config
