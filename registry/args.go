// Copyright (c) 2025 Polyconf Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package registry

// Args carries the validated parameter values a variant is constructed
// from. Scalar parameters appear under their declared Go type, nested
// parameters as the already constructed child objects. Every declared
// parameter is guaranteed present by the time a factory sees an Args;
// the typed accessors therefore do not report absence.
type Args map[string]any

// String returns a string parameter value.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Int returns an int parameter value.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// Float returns a float parameter value.
func (a Args) Float(name string) float64 {
	v, _ := a[name].(float64)
	return v
}

// Bool returns a bool parameter value.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Object returns the constructed object of a nested parameter.
func (a Args) Object(name string) any {
	return a[name]
}

// Objects returns the constructed objects of a list parameter, in
// configuration order.
func (a Args) Objects(name string) []any {
	v, _ := a[name].([]any)
	return v
}

// ObjectMap returns the constructed objects of a collection parameter
// keyed by their configured names.
func (a Args) ObjectMap(name string) map[string]any {
	v, _ := a[name].(map[string]any)
	return v
}
