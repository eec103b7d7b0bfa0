// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package resolve matches configuration nodes against registered
// variants and binds their parameters into resolved parameter trees.
//
// Resolution picks exactly one constructible variant for a node; zero or
// multiple matches are errors carrying the full candidate set. Binding
// then walks the chosen variant's parameter specifications, coercing
// scalars, applying defaults and recursing into nested capability
// parameters. All problems with one node (missing required parameters,
// unknown keys, type mismatches) are accumulated and reported together,
// so a configuration can be fixed in one edit instead of one error at a
// time.
//
// Binding is a pure computation. It never instantiates runtime objects;
// it produces an immutable [Resolved] tree which later construction, or
// identity hashing, consumes.
package resolve
