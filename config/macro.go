// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"
	"time"
)

// datetimeLayout is the rendering of the ${datetime} macro. The value is
// evaluated once per Read so that every occurrence in one load is
// identical, even across midnight.
const datetimeLayout = "20060102_150405"

const (
	macroDatetime = "datetime"
	macroInherit  = "inherit"
)

// MacroError occurs when a ${...} token cannot be substituted.
type MacroError struct {
	// Name is the token between ${ and }.
	Name string

	// Key is the mapping key whose value (or key text) carried the token.
	Key string

	// Reason describes why substitution failed.
	Reason string
}

// Error implements the error interface.
func (e MacroError) Error() string {
	return fmt.Sprintf("failed to substitute ${%s} at key %q: %s", e.Name, e.Key, e.Reason)
}

// ConstantCycleError occurs when entries of the constants mapping
// reference each other cyclically.
type ConstantCycleError struct {
	// Name is the constant at which the cycle was detected.
	Name string
}

// Error implements the error interface.
func (e ConstantCycleError) Error() string {
	return fmt.Sprintf("constant %q references itself cyclically", e.Name)
}

// DuplicateKeyError occurs when two keys of one mapping expand to the
// same name after macro substitution.
type DuplicateKeyError struct {
	Key string
}

// Error implements the error interface.
func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate mapping key %q after macro substitution", e.Key)
}

type expander struct {
	consts   map[string]any
	resolved map[string]any
	visiting map[string]bool
	now      string
}

// expand substitutes all macros in root and returns a freshly allocated
// tree. The reserved constants mapping is consumed in the process.
func expand(root map[string]any, now time.Time) (map[string]any, error) {
	e := &expander{
		resolved: make(map[string]any),
		visiting: make(map[string]bool),
		now:      now.Format(datetimeLayout),
	}
	if c, ok := root[ConstantsKey]; ok {
		consts, ok := normalizeMapping(c)
		if !ok {
			return nil, MacroError{Name: ConstantsKey, Key: ConstantsKey, Reason: "constants must be a mapping"}
		}
		e.consts = consts
	}

	out, err := e.mapping(root, nil)
	if err != nil {
		return nil, err
	}
	delete(out, ConstantsKey)
	return out, nil
}

// mapping expands one mapping node. above holds the enclosing raw
// mappings, outermost first; m itself is not part of it.
func (e *expander) mapping(m map[string]any, above []map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))

	for k, v := range m {
		key, err := e.key(k, above)
		if err != nil {
			return nil, err
		}
		if _, exists := out[key]; exists {
			return nil, DuplicateKeyError{Key: key}
		}

		ev, err := e.value(v, above, m, key)
		if err != nil {
			return nil, err
		}
		out[key] = ev
	}
	return out, nil
}

func (e *expander) key(k string, above []map[string]any) (string, error) {
	v, err := e.scalar(k, above, k)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", MacroError{Name: k, Key: k, Reason: "key must expand to a string"}
	}
	return s, nil
}

// value expands one node sitting under key term of the mapping parent.
// Sequence elements share the term, and the parent, of the sequence itself.
func (e *expander) value(v any, above []map[string]any, parent map[string]any, term string) (any, error) {
	if m, ok := normalizeMapping(v); ok {
		chain := above
		if parent != nil {
			chain = append(chain, parent)
		}
		return e.mapping(m, chain)
	}

	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, item := range s {
			ev, err := e.value(item, above, parent, term)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}

	if s, ok := v.(string); ok {
		return e.scalar(s, above, term)
	}
	return v, nil
}

// scalar expands the ${...} tokens of one string in a single left to
// right pass. A string consisting of exactly one token may expand to a
// non-string value (e.g. a whole constant sub-tree); a token spliced
// into surrounding text must expand to a scalar.
func (e *expander) scalar(s string, above []map[string]any, term string) (any, error) {
	var b strings.Builder
	rest := s
	spliced := false
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			break
		}
		name := rest[start+2 : start+end]

		val, err := e.token(name, above, term)
		if err != nil {
			return nil, err
		}

		whole := !spliced && start == 0 && start+end+1 == len(rest) && b.Len() == 0
		if whole {
			return val, nil
		}

		switch val.(type) {
		case map[string]any, []any:
			return nil, MacroError{Name: name, Key: term, Reason: "cannot splice a non-scalar value into a string"}
		}
		b.WriteString(rest[:start])
		fmt.Fprint(&b, val)
		rest = rest[start+end+1:]
		spliced = true
	}
	if !spliced {
		return s, nil
	}
	b.WriteString(rest)
	return b.String(), nil
}

func (e *expander) token(name string, above []map[string]any, term string) (any, error) {
	switch name {
	case macroDatetime:
		return e.now, nil
	case macroInherit:
		return e.inherit(above, term)
	}

	if _, ok := e.consts[name]; ok {
		return e.constant(name)
	}
	return nil, MacroError{Name: name, Key: term, Reason: "no constant or macro by this name"}
}

// constant resolves one entry of the constants mapping, expanding any
// macros within it. Constants may reference other constants; a reference
// cycle is a fatal load error.
func (e *expander) constant(name string) (any, error) {
	if v, ok := e.resolved[name]; ok {
		return v, nil
	}
	if e.visiting[name] {
		return nil, ConstantCycleError{Name: name}
	}

	e.visiting[name] = true
	v, err := e.value(e.consts[name], nil, nil, name)
	delete(e.visiting, name)
	if err != nil {
		return nil, err
	}

	e.resolved[name] = v
	return v, nil
}

// inherit resolves ${inherit} to the nearest enclosing non-substituted
// value of the same key. The mapping directly containing the token is
// not searched, only its ancestors, nearest first.
func (e *expander) inherit(above []map[string]any, term string) (any, error) {
	for i := len(above) - 1; i >= 0; i-- {
		v, ok := above[i][term]
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.Contains(s, "${"+macroInherit+"}") {
			continue
		}
		return e.value(v, nil, nil, term)
	}
	return nil, MacroError{Name: macroInherit, Key: term, Reason: "no ancestor defines this key"}
}
