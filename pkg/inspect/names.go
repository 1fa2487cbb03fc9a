package inspect

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/runtime-presets/presets-go/pkg/model"
)

// ResolveTypeName resolves a type name against the registry. Exact full or
// short names win; otherwise the short name is matched case-insensitively.
func ResolveTypeName(reg *model.Registry, name string) (reflect.Type, bool) {
	if t, err := reg.Lookup(name); err == nil {
		return t, true
	}

	lname := strings.ToLower(name)
	var found reflect.Type
	for _, full := range reg.Names() {
		short := full[strings.LastIndex(full, ".")+1:]
		if strings.ToLower(short) != lname {
			continue
		}
		if found != nil {
			return nil, false
		}
		t, err := reg.Lookup(full)
		if err != nil {
			return nil, false
		}
		found = t
	}
	return found, found != nil
}

// ResolveAttributeName resolves an attribute name (case-insensitive).
// Snake and kebab case are accepted, so "spot_angle" finds spotAngle.
func ResolveAttributeName(d *model.TypeDescriptor, name string) (*model.Attribute, bool) {
	if a, ok := d.Lookup(name); ok {
		return a, true
	}
	if a, ok := d.Lookup(strcase.ToLowerCamel(name)); ok {
		return a, true
	}
	lname := strings.ToLower(name)
	for _, a := range d.Attributes {
		if strings.ToLower(a.Name) == lname {
			return a, true
		}
	}
	return nil, false
}

// AttributeNames returns the attribute names of d in descriptor order.
func AttributeNames(d *model.TypeDescriptor) []string {
	names := make([]string, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		names = append(names, a.Name)
	}
	return names
}
