package model

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

// Instance errors.
var (
	ErrNilInstance  = errors.New("instance is nil")
	ErrNotInstance  = errors.New("instance must be a pointer to a struct")
	ErrTypeMismatch = errors.New("type mismatch")
)

// Scope selects which members of a type are described.
type Scope uint8

const (
	// ScopeInherited includes members promoted from embedded structs.
	ScopeInherited Scope = iota
	// ScopeDeclaredOnly only includes members declared on the type itself.
	ScopeDeclaredOnly
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeDeclaredOnly {
		return "declared-only"
	}
	return "inherited"
}

// tagName is the struct tag consulted for field options.
const tagName = "preset"

// Deprecator is implemented by component types that hide some of their
// attributes from transfers. It is called on a zero value, so the result
// must not depend on instance state. Names may be Go or lowerCamel names.
type Deprecator interface {
	DeprecatedAttributes() []string
}

// Resetter is implemented by component types that need non-zero defaults
// when created through New.
type Resetter interface {
	Reset()
}

var (
	deprecatorType = reflect.TypeFor[Deprecator]()
	errorType      = reflect.TypeFor[error]()
)

// TypeDescriptor is the ordered attribute set of a component type.
// Properties come first in method order, then fields in declaration order.
type TypeDescriptor struct {
	Type       reflect.Type
	Scope      Scope
	Attributes []*Attribute

	byName map[string]*Attribute
}

// Name returns the short type name.
func (d *TypeDescriptor) Name() string { return d.Type.Name() }

// FullName returns the package-qualified type name.
func (d *TypeDescriptor) FullName() string { return FullTypeName(d.Type) }

// Lookup returns the attribute with the given lowerCamel or Go name.
func (d *TypeDescriptor) Lookup(name string) (*Attribute, bool) {
	a, ok := d.byName[name]
	return a, ok
}

// Properties returns the property attributes.
func (d *TypeDescriptor) Properties() []*Attribute {
	return d.ofKind(KindProperty)
}

// Fields returns the field attributes.
func (d *TypeDescriptor) Fields() []*Attribute {
	return d.ofKind(KindField)
}

func (d *TypeDescriptor) ofKind(k Kind) []*Attribute {
	out := make([]*Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

type descriptorKey struct {
	t     reflect.Type
	scope Scope
}

var descriptors sync.Map // descriptorKey -> *TypeDescriptor

// TypeOf returns the component type of instance.
func TypeOf(instance any) (reflect.Type, error) {
	if instance == nil {
		return nil, ErrNilInstance
	}
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.Type().Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrNotInstance, instance)
	}
	if v.IsNil() {
		return nil, ErrNilInstance
	}
	return v.Type().Elem(), nil
}

// SameType reports whether a and b are instances of the same component type.
func SameType(a, b any) bool {
	ta, err := TypeOf(a)
	if err != nil {
		return false
	}
	tb, err := TypeOf(b)
	if err != nil {
		return false
	}
	return ta == tb
}

// TypeName returns the short name of t, or "" for nil.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// FullTypeName returns the package-qualified name of t, or "" for nil.
func FullTypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// New allocates a zero instance of t and calls Reset when available.
func New(t reflect.Type) any {
	v := reflect.New(t).Interface()
	if r, ok := v.(Resetter); ok {
		r.Reset()
	}
	return v
}

// DescribeInstance returns the descriptor for the type of instance.
func DescribeInstance(instance any, scope Scope) (*TypeDescriptor, error) {
	t, err := TypeOf(instance)
	if err != nil {
		return nil, err
	}
	return Describe(t, scope)
}

// Describe returns the cached descriptor of struct type t.
func Describe(t reflect.Type, scope Scope) (*TypeDescriptor, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %v", ErrNotInstance, t)
	}

	key := descriptorKey{t: t, scope: scope}
	if d, ok := descriptors.Load(key); ok {
		return d.(*TypeDescriptor), nil
	}

	d := build(t, scope)
	actual, _ := descriptors.LoadOrStore(key, d)
	return actual.(*TypeDescriptor), nil
}

func build(t reflect.Type, scope Scope) *TypeDescriptor {
	d := &TypeDescriptor{
		Type:   t,
		Scope:  scope,
		byName: make(map[string]*Attribute),
	}

	deprecated := deprecatedNames(t)
	embedded := embeddedTypes(t)

	for _, a := range properties(t, embedded) {
		if scope == ScopeDeclaredOnly && a.Inherited {
			continue
		}
		a.Deprecated = deprecated[a.Name] || deprecated[a.GoName]
		d.add(a)
	}

	for _, a := range fields(t) {
		if scope == ScopeDeclaredOnly && a.Inherited {
			continue
		}
		if deprecated[a.Name] || deprecated[a.GoName] {
			a.Deprecated = true
		}
		if prev, taken := d.byName[a.Name]; taken {
			// A write-only property does not hide a readable field.
			if prev.Kind != KindProperty || prev.Access.CanRead() {
				continue
			}
			d.remove(prev)
		}
		d.add(a)
	}

	return d
}

func (d *TypeDescriptor) add(a *Attribute) {
	d.Attributes = append(d.Attributes, a)
	d.byName[a.Name] = a
	d.byName[a.GoName] = a
}

func (d *TypeDescriptor) remove(a *Attribute) {
	d.Attributes = slices.DeleteFunc(d.Attributes, func(x *Attribute) bool { return x == a })
	delete(d.byName, a.Name)
	delete(d.byName, a.GoName)
}

// properties finds SetX methods on *t and pairs them with X getters.
func properties(t reflect.Type, embedded []reflect.Type) []*Attribute {
	pt := reflect.PointerTo(t)

	var attrs []*Attribute
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		goName, ok := strings.CutPrefix(m.Name, "Set")
		if !ok || goName == "" || !isUpper(goName[0]) {
			continue
		}
		if !isSetter(m.Type) {
			continue
		}
		valueType := m.Type.In(1)

		a := &Attribute{
			Name:      strcase.ToLowerCamel(goName),
			GoName:    goName,
			Type:      valueType,
			Kind:      KindProperty,
			Access:    AccessWrite,
			Inherited: promoted(t, m.Name, embedded),
			owner:     t,
			setter:    m.Name,
		}
		if g, ok := pt.MethodByName(goName); ok && isGetter(g.Type, valueType) {
			a.Access |= AccessRead
			a.getter = goName
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// fields lists the exported fields of t, flattening embedded structs.
func fields(t reflect.Type) []*Attribute {
	var (
		attrs  []*Attribute
		hidden [][]int
	)

	for _, f := range reflect.VisibleFields(t) {
		if underHidden(f.Index, hidden) {
			continue
		}
		opt := f.Tag.Get(tagName)
		if f.Anonymous && isStructLike(f.Type) {
			if opt == "-" {
				hidden = append(hidden, f.Index)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}

		attrs = append(attrs, &Attribute{
			Name:       strcase.ToLowerCamel(f.Name),
			GoName:     f.Name,
			Type:       f.Type,
			Kind:       KindField,
			Access:     AccessReadWrite,
			Deprecated: opt == "-" || opt == "deprecated",
			Inherited:  len(f.Index) > 1,
			owner:      t,
			index:      f.Index,
		})
	}
	return attrs
}

func deprecatedNames(t reflect.Type) map[string]bool {
	out := make(map[string]bool)
	if !reflect.PointerTo(t).Implements(deprecatorType) {
		return out
	}
	for _, n := range reflect.New(t).Interface().(Deprecator).DeprecatedAttributes() {
		out[n] = true
	}
	return out
}

// embeddedTypes returns the method-set carriers of t's embedded fields.
func embeddedTypes(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Struct:
			out = append(out, reflect.PointerTo(f.Type))
		default:
			out = append(out, f.Type)
		}
	}
	return out
}

// promoted reports whether method reaches t only through an embedded
// field. A method t declares itself shadows the embedded one.
func promoted(t reflect.Type, method string, embedded []reflect.Type) bool {
	for _, et := range embedded {
		if _, ok := et.MethodByName(method); ok {
			return !declared(t, method)
		}
	}
	return false
}

// declared reports whether t or *t has its own method named method.
// Promoted methods are compiler-generated wrappers without a source file.
func declared(t reflect.Type, method string) bool {
	for _, mt := range []reflect.Type{reflect.PointerTo(t), t} {
		m, ok := mt.MethodByName(method)
		if !ok {
			continue
		}
		fn := runtime.FuncForPC(m.Func.Pointer())
		if fn == nil {
			continue
		}
		if file, _ := fn.FileLine(fn.Entry()); file != "<autogenerated>" {
			return true
		}
	}
	return false
}

// isSetter matches func(recv, T) and func(recv, T) error.
func isSetter(ft reflect.Type) bool {
	if ft.NumIn() != 2 || ft.IsVariadic() {
		return false
	}
	switch ft.NumOut() {
	case 0:
		return true
	case 1:
		return ft.Out(0) == errorType
	default:
		return false
	}
}

// isGetter matches func(recv) T and func(recv) (T, error).
func isGetter(ft reflect.Type, value reflect.Type) bool {
	if ft.NumIn() != 1 {
		return false
	}
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) == value
	case 2:
		return ft.Out(0) == value && ft.Out(1) == errorType
	default:
		return false
	}
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func underHidden(index []int, hidden [][]int) bool {
	for _, h := range hidden {
		if len(index) > len(h) && slices.Equal(index[:len(h)], h) {
			return true
		}
	}
	return false
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
