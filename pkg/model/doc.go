// Package model describes component types as ordered sets of attributes.
//
// # Instances
//
// A component instance is any non-nil pointer to a Go struct. Its type
// identity is the struct type behind the pointer, so two instances are
// compatible only when they point at the same named struct type.
//
// # Attributes
//
// Attributes are discovered from a type's static metadata and cached for
// the lifetime of the process:
//
//	Property  a SetX(T) method, optionally paired with an X() T getter
//	Field     an exported struct field
//
// Getters may return (T, error) and setters may return error. Members
// promoted from embedded structs are marked Inherited and can be excluded
// with the DeclaredOnly scope.
//
// Attribute names are the lowerCamel form of the Go identifier:
//
//	SharedMaterial()  -> "sharedMaterial"
//	Intensity float64 -> "intensity"
//
// # Deprecation
//
// Fields are hidden with a struct tag:
//
//	Legacy int `preset:"deprecated"`
//	Cache  int `preset:"-"`
//
// Properties are hidden by implementing Deprecator on the pointer type.
//
// # Registry
//
// A Registry maps type names to struct types so instances can be recreated
// from stored presets.
package model
