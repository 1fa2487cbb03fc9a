package inspect

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/scene"
	"github.com/runtime-presets/presets-go/pkg/scope"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

// Inspector errors.
var (
	ErrComponentNotFound = errors.New("component not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrNotWritable       = model.ErrAttributeNotWritable
	ErrPartialPath       = errors.New("path does not name an attribute")
)

// Inspector provides inspection and mutation capabilities for a scene.
type Inspector struct {
	scene    *scene.Scene
	registry *model.Registry
}

// NewInspector creates a new Inspector for the given scene.
func NewInspector(s *scene.Scene, reg *model.Registry) *Inspector {
	return &Inspector{scene: s, registry: reg}
}

// Scene returns the underlying scene.
func (i *Inspector) Scene() *scene.Scene {
	return i.scene
}

// ObjectInfo represents a scene object for display.
type ObjectInfo struct {
	Name       string
	ScopeID    string
	Components []ComponentInfo
}

// ComponentInfo represents a component instance for display.
type ComponentInfo struct {
	Type       string
	FullType   string
	Attributes []AttributeInfo
}

// AttributeInfo represents one attribute and its current value.
type AttributeInfo struct {
	Name       string
	Value      any
	Type       reflect.Type
	Kind       model.Kind
	Access     model.Access
	Deprecated bool
	Inherited  bool

	// Err is set when the value could not be read.
	Err error

	// Skipped is set for attributes that are not read during inspection.
	Skipped bool
}

// InspectScene returns every object of the scene.
func (i *Inspector) InspectScene() []ObjectInfo {
	out := make([]ObjectInfo, 0, len(i.scene.Objects))
	for _, o := range i.scene.Objects {
		out = append(out, inspectObject(o))
	}
	return out
}

// InspectObject returns information about one object.
func (i *Inspector) InspectObject(name string) (*ObjectInfo, error) {
	o, err := i.scene.Object(name)
	if err != nil {
		return nil, err
	}
	info := inspectObject(o)
	return &info, nil
}

func inspectObject(o *scene.Object) ObjectInfo {
	info := ObjectInfo{Name: o.Name, ScopeID: o.Scope.ID()}
	for _, c := range o.Components() {
		ci, err := InspectInstance(c)
		if err != nil {
			continue
		}
		info.Components = append(info.Components, *ci)
	}
	return info
}

// InspectInstance reads every attribute of a component instance. Read
// failures are recorded per attribute.
func InspectInstance(instance any) (*ComponentInfo, error) {
	d, err := model.DescribeInstance(instance, model.ScopeInherited)
	if err != nil {
		return nil, err
	}
	info := &ComponentInfo{Type: d.Name(), FullType: d.FullName()}
	for _, a := range d.Attributes {
		ai := AttributeInfo{
			Name:       a.Name,
			Type:       a.Type,
			Kind:       a.Kind,
			Access:     a.Access,
			Deprecated: a.Deprecated,
			Inherited:  a.Inherited,
		}
		// Renamed accessors instantiate on read.
		if _, renamed := transfer.DefaultRenames.Resolve(a.Name); renamed {
			ai.Skipped = true
		} else if a.Access.CanRead() {
			ai.Value, ai.Err = a.GetValue(instance)
		}
		info.Attributes = append(info.Attributes, ai)
	}
	return info, nil
}

// InspectComponent returns information about the component at path.
func (i *Inspector) InspectComponent(path *Path) (*ComponentInfo, error) {
	instance, err := i.component(path)
	if err != nil {
		return nil, err
	}
	return InspectInstance(instance)
}

// Component returns the component instance at path.
func (i *Inspector) Component(path *Path) (any, error) {
	return i.component(path)
}

// Resolve returns the component instance and attribute named by path.
func (i *Inspector) Resolve(path *Path) (any, *model.Attribute, error) {
	if path.IsPartial() {
		return nil, nil, fmt.Errorf("%w: %s", ErrPartialPath, path)
	}
	instance, err := i.component(path)
	if err != nil {
		return nil, nil, err
	}
	d, err := model.DescribeInstance(instance, model.ScopeInherited)
	if err != nil {
		return nil, nil, err
	}
	attr, ok := ResolveAttributeName(d, path.Attribute)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrAttributeNotFound, d.Name(), path.Attribute)
	}
	return instance, attr, nil
}

// ReadAttribute reads an attribute value using a path.
func (i *Inspector) ReadAttribute(path *Path) (any, *model.Attribute, error) {
	instance, attr, err := i.Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	v, err := attr.GetValue(instance)
	if err != nil {
		return nil, attr, err
	}
	return v, attr, nil
}

// WriteAttribute writes an attribute value using a path.
func (i *Inspector) WriteAttribute(path *Path, value any) error {
	instance, attr, err := i.Resolve(path)
	if err != nil {
		return err
	}
	if !attr.Access.CanWrite() {
		return fmt.Errorf("%w: %s", ErrNotWritable, attr.Name)
	}
	return attr.SetValue(instance, value)
}

// WriteAttributeText parses text as YAML into the attribute's type and
// writes it. "2.5", "true" and "{r: 1, g: 0, b: 0, a: 1}" are all valid.
func (i *Inspector) WriteAttributeText(path *Path, text string) error {
	instance, attr, err := i.Resolve(path)
	if err != nil {
		return err
	}
	if !attr.Access.CanWrite() {
		return fmt.Errorf("%w: %s", ErrNotWritable, attr.Name)
	}
	v, err := ParseValue(attr.Type, text)
	if err != nil {
		return fmt.Errorf("%s: %w", attr.Name, err)
	}
	return attr.Set(reflect.ValueOf(instance), v)
}

// ParseValue decodes YAML text into a value of type t.
func ParseValue(t reflect.Type, text string) (reflect.Value, error) {
	ptr := reflect.New(t)
	if err := yaml.Unmarshal([]byte(text), ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (i *Inspector) component(path *Path) (any, error) {
	o, err := i.scene.Object(path.Object)
	if err != nil {
		return nil, err
	}
	if path.Type == "" {
		return nil, fmt.Errorf("%w: %s", ErrPartialPath, path)
	}
	t, ok := ResolveTypeName(i.registry, path.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownType, path.Type)
	}
	c, err := o.Scope.Get(t)
	if errors.Is(err, scope.ErrComponentNotFound) {
		return nil, fmt.Errorf("%w: %s has no %s", ErrComponentNotFound, o.Name, t.Name())
	}
	return c, err
}
