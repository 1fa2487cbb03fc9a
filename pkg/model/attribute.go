package model

import (
	"errors"
	"fmt"
	"reflect"
)

// Access flags for attributes.
type Access uint8

const (
	// AccessRead allows reading the attribute.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing the attribute.
	AccessWrite

	// AccessReadWrite is read and write.
	AccessReadWrite = AccessRead | AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns the access flags as a string.
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if s == "" {
		return "-"
	}
	return s
}

// Kind distinguishes accessor-backed attributes from plain data members.
type Kind uint8

const (
	// KindProperty is a getter/setter method pair.
	KindProperty Kind = iota
	// KindField is an exported struct field.
	KindField
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Attribute errors.
var (
	ErrAttributeNotReadable = errors.New("attribute is not readable")
	ErrAttributeNotWritable = errors.New("attribute is not writable")
	ErrAttributeValueType   = errors.New("invalid value type for attribute")
	ErrAttributePanic       = errors.New("attribute accessor panicked")
)

// AttributeError reports a failed read or write of a single attribute.
type AttributeError struct {
	Type      string
	Attribute string
	Op        string // "get" or "set"
	Err       error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s %s.%s: %v", e.Op, e.Type, e.Attribute, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

// Attribute describes one named, typed piece of state on a component type.
// Attributes are immutable once built by Describe.
type Attribute struct {
	// Name is the lowerCamel attribute name.
	Name string

	// GoName is the Go identifier the attribute was derived from.
	GoName string

	// Type is the declared value type.
	Type reflect.Type

	// Kind tells whether the attribute is a property or a field.
	Kind Kind

	// Access defines the allowed operations.
	Access Access

	// Deprecated attributes are never copied.
	Deprecated bool

	// Inherited is set for members promoted from an embedded struct.
	Inherited bool

	owner  reflect.Type
	index  []int
	getter string
	setter string
}

// Copyable reports whether transfers should touch this attribute.
func (a *Attribute) Copyable() bool {
	return a.Access.CanWrite() && !a.Deprecated
}

// Get reads the attribute from instance, which must be a pointer to the
// attribute's owner type. Panics raised by getters are returned as errors.
func (a *Attribute) Get(instance reflect.Value) (v reflect.Value, err error) {
	defer a.recoverInto("get", &err)

	if !a.Access.CanRead() {
		return reflect.Value{}, a.fail("get", ErrAttributeNotReadable)
	}
	if err := a.checkInstance(instance); err != nil {
		return reflect.Value{}, a.fail("get", err)
	}

	switch a.Kind {
	case KindField:
		f, err := instance.Elem().FieldByIndexErr(a.index)
		if err != nil {
			return reflect.Value{}, a.fail("get", err)
		}
		return f, nil
	default:
		out := instance.MethodByName(a.getter).Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, a.fail("get", out[1].Interface().(error))
		}
		return out[0], nil
	}
}

// Set writes value to the attribute of instance. Panics raised by setters
// are returned as errors.
func (a *Attribute) Set(instance reflect.Value, value reflect.Value) (err error) {
	defer a.recoverInto("set", &err)

	if !a.Access.CanWrite() {
		return a.fail("set", ErrAttributeNotWritable)
	}
	if err := a.checkInstance(instance); err != nil {
		return a.fail("set", err)
	}
	if !value.IsValid() {
		value = reflect.Zero(a.Type)
	}
	if !value.Type().AssignableTo(a.Type) {
		return a.fail("set", fmt.Errorf("%w: %s is not assignable to %s", ErrAttributeValueType, value.Type(), a.Type))
	}

	switch a.Kind {
	case KindField:
		f, err := instance.Elem().FieldByIndexErr(a.index)
		if err != nil {
			return a.fail("set", err)
		}
		f.Set(value)
		return nil
	default:
		out := instance.MethodByName(a.setter).Call([]reflect.Value{value})
		if len(out) == 1 && !out[0].IsNil() {
			return a.fail("set", out[0].Interface().(error))
		}
		return nil
	}
}

// GetValue is Get for callers holding plain values.
func (a *Attribute) GetValue(instance any) (any, error) {
	v, err := a.Get(reflect.ValueOf(instance))
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// SetValue is Set for callers holding plain values.
func (a *Attribute) SetValue(instance any, value any) error {
	return a.Set(reflect.ValueOf(instance), reflect.ValueOf(value))
}

func (a *Attribute) checkInstance(instance reflect.Value) error {
	if !instance.IsValid() || instance.Kind() != reflect.Pointer || instance.IsNil() {
		return ErrNilInstance
	}
	if instance.Type().Elem() != a.owner {
		return fmt.Errorf("%w: %s is not %s", ErrTypeMismatch, instance.Type().Elem(), a.owner)
	}
	return nil
}

func (a *Attribute) fail(op string, err error) error {
	return &AttributeError{
		Type:      TypeName(a.owner),
		Attribute: a.Name,
		Op:        op,
		Err:       err,
	}
}

func (a *Attribute) recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = a.fail(op, fmt.Errorf("%w: %v", ErrAttributePanic, r))
	}
}
