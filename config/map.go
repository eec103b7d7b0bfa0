// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

// Map is an in-memory [Source] and [Store].
type Map map[string]any

// FromMap returns a Source backed by the given mapping. It is the
// natural carrier for programmatic overrides layered over a file source.
func FromMap(m map[string]any) Map {
	return Map(m)
}

// Apply implements the Source interface.
func (m Map) Apply(store Store) error {
	for k, v := range m {
		err := store.Set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Set implements the Store interface. Mappings are merged recursively,
// any other value replaces what was there before. The stored value is a
// deep copy, so later mutation of the source does not leak into the store.
func (m Map) Set(key string, val any) error {
	prev, ok := m[key]
	if !ok {
		m[key] = deepCopy(val)
		return nil
	}

	prevMap, prevOk := prev.(map[string]any)
	valMap, valOk := normalizeMapping(val)
	if !prevOk || !valOk {
		m[key] = deepCopy(val)
		return nil
	}

	for k, v := range valMap {
		err := Map(prevMap).Set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// normalizeMapping reports whether val is a mapping, converting the
// map[any]any shape some decoders produce into map[string]any.
func normalizeMapping(val any) (map[string]any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return v, true
	case Map:
		return v, true
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			m[s] = e
		}
		return m, true
	default:
		return nil, false
	}
}

func deepCopy(val any) any {
	if m, ok := normalizeMapping(val); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = deepCopy(v)
		}
		return out
	}
	if s, ok := val.([]any); ok {
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = deepCopy(v)
		}
		return out
	}
	return val
}
