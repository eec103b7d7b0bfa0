// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package identity computes canonical digests of resolved parameter
// trees, so that two semantically equivalent configurations share one
// identity regardless of how their source text was ordered.
package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/polyconf/polyconf/registry"
	"github.com/polyconf/polyconf/resolve"
)

// Identity is the fixed-width digest of a resolved parameter tree. It
// is usable as a map key, log field or deduplication key.
type Identity [sha256.Size]byte

// String implements the fmt.Stringer interface.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Hash computes the canonical digest of a resolved parameter tree.
//
// Parameters are serialized ordered by name, never by source order.
// Nested nodes are hashed recursively and their digests substituted in
// place of the sub-tree, composing Merkle-style, so a node's identity
// covers exactly its own values plus the identities of its children.
// The variant's type identity and the node's namespace tag are both
// part of the digest input: structurally identical trees under
// different namespaces produce different identities.
//
// Hash is a pure function of the tree; it produces identical output
// across process runs.
func Hash(r *resolve.Resolved) Identity {
	return sha256.Sum256(Canonical(r))
}

// Canonical returns the exact byte serialization of one node that Hash
// digests. Child nodes appear as their hex digests, not their contents.
func Canonical(r *resolve.Resolved) []byte {
	var buf bytes.Buffer
	buf.WriteString("variant:")
	buf.WriteString(r.Variant())
	buf.WriteString("\nnamespace:")
	buf.WriteString(r.Namespace())
	buf.WriteByte('\n')

	for _, name := range r.ParamNames() {
		v, _ := r.Param(name)
		buf.WriteString(name)
		buf.WriteByte('=')
		writeValue(&buf, v)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v resolve.Value) {
	switch v.Kind() {
	case registry.KindNested:
		writeChild(buf, v.Child())

	case registry.KindList:
		buf.WriteByte('[')
		for i, child := range v.List() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeChild(buf, child)
		}
		buf.WriteByte(']')

	case registry.KindCollection:
		coll := v.Collection()
		names := make([]string, 0, len(coll))
		for name := range coll {
			names = append(names, name)
		}
		sort.Strings(names)

		buf.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(name)
			buf.WriteByte(':')
			writeChild(buf, coll[name])
		}
		buf.WriteByte('}')

	default:
		writeScalar(buf, v.Scalar())
	}
}

func writeChild(buf *bytes.Buffer, child *resolve.Resolved) {
	id := Hash(child)
	buf.WriteByte('#')
	buf.WriteString(id.String())
}

// writeScalar encodes a scalar with a type sigil so that, for example,
// the string "3" and the int 3 can never collide.
func writeScalar(buf *bytes.Buffer, v any) {
	switch v := v.(type) {
	case nil:
		buf.WriteString("~")
	case string:
		buf.WriteString("s:")
		buf.WriteString(strconv.Quote(v))
	case int:
		buf.WriteString("i:")
		buf.WriteString(strconv.Itoa(v))
	case float64:
		buf.WriteString("f:")
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		buf.WriteString("b:")
		buf.WriteString(strconv.FormatBool(v))
	default:
		fmt.Fprintf(buf, "%T:%v", v, v)
	}
}
