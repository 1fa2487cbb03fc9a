// Package scene loads and saves YAML scene documents: named objects, each
// carrying a set of components with attribute values. Every object is
// backed by a persistent scope holding its live component instances.
//
//	name: demo
//	objects:
//	  - name: Lamp
//	    components:
//	      - type: Light
//	        attributes:
//	          intensity: 2
//	          color: {r: 1, g: 0, b: 0, a: 1}
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/scope"
)

// Scene errors.
var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrDuplicateObject = errors.New("duplicate object name")
)

// Object is a named scope within a scene.
type Object struct {
	Name  string
	Scope *scope.Scope
}

// Components returns the object's component instances in document order.
func (o *Object) Components() []any {
	return o.Scope.Components()
}

// Component returns the object's component of the named type.
func (o *Object) Component(reg *model.Registry, typeName string) (any, error) {
	t, err := reg.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return o.Scope.Get(t)
}

// Scene is a set of objects.
type Scene struct {
	Name    string
	Objects []*Object
}

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{Name: name}
}

// AddObject creates a new object.
func (s *Scene) AddObject(name string) (*Object, error) {
	if _, ok := s.Find(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateObject, name)
	}
	o := &Object{Name: name, Scope: scope.New(scope.Persistent, name)}
	s.Objects = append(s.Objects, o)
	return o, nil
}

// Find returns the object with the given name.
func (s *Scene) Find(name string) (*Object, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Object returns the object with the given name, or ErrObjectNotFound.
func (s *Scene) Object(name string) (*Object, error) {
	o, ok := s.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	return o, nil
}

// Instances returns every component of type t across the scene, in
// object order.
func (s *Scene) Instances(t reflect.Type) []any {
	var out []any
	for _, o := range s.Objects {
		if c, err := o.Scope.Get(t); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Destroy destroys every object scope.
func (s *Scene) Destroy() {
	for _, o := range s.Objects {
		_ = o.Scope.Destroy()
	}
	s.Objects = nil
}

type document struct {
	Name    string           `yaml:"name"`
	Objects []objectDocument `yaml:"objects"`
}

type objectDocument struct {
	Name       string              `yaml:"name"`
	Components []componentDocument `yaml:"components"`
}

type componentDocument struct {
	Type       string               `yaml:"type"`
	Attributes map[string]yaml.Node `yaml:"attributes,omitempty"`
}

// Decode parses a scene document and creates its component instances.
// Attributes that a component type does not declare, or that cannot be
// written, are reported to logger and skipped.
func Decode(data []byte, reg *model.Registry, logger log.Logger) (*Scene, error) {
	logger = log.OrNoop(logger)

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}

	s := New(doc.Name)
	for _, od := range doc.Objects {
		o, err := s.AddObject(od.Name)
		if err != nil {
			s.Destroy()
			return nil, err
		}
		for _, cd := range od.Components {
			a, unknown, err := asset.DecodeNodes(cd.Type, cd.Attributes, reg)
			if err != nil {
				s.Destroy()
				return nil, fmt.Errorf("object %q: %w", od.Name, err)
			}
			_, report, err := a.Instantiate(reg, o.Scope)
			if err != nil {
				s.Destroy()
				return nil, fmt.Errorf("object %q: %w", od.Name, err)
			}
			for _, name := range unknown {
				skip(logger, o, a.Type, name, asset.ErrUnknownAttribute)
			}
			for _, sk := range report.Skipped {
				skip(logger, o, a.Type, sk.Attribute, sk.Err)
			}
		}
	}
	return s, nil
}

// Encode serializes the scene, reading the current values of every
// component.
func Encode(s *Scene) ([]byte, error) {
	doc := document{Name: s.Name}
	for _, o := range s.Objects {
		od := objectDocument{Name: o.Name}
		for _, c := range o.Components() {
			a, err := asset.FromInstance(c, o.Name)
			if err != nil {
				return nil, fmt.Errorf("object %q: %w", o.Name, err)
			}
			nodes, err := asset.EncodeNodes(a.Attributes)
			if err != nil {
				return nil, fmt.Errorf("object %q: %w", o.Name, err)
			}
			od.Components = append(od.Components, componentDocument{
				Type:       reflect.TypeOf(c).Elem().Name(),
				Attributes: nodes,
			})
		}
		doc.Objects = append(doc.Objects, od)
	}
	return yaml.Marshal(&doc)
}

// Load reads a scene file.
func Load(path string, reg *model.Registry, logger log.Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes the scene to path.
func Save(path string, s *Scene) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func skip(logger log.Logger, o *Object, typ, attribute string, err error) {
	logger.Log(log.Event{
		Timestamp: time.Now(),
		Operation: log.OpLoad,
		Outcome:   log.OutcomeSkipped,
		Type:      typ,
		Attribute: attribute,
		ScopeID:   o.Scope.ID(),
		Detail:    o.Name,
		Error:     log.ErrorString(err),
	})
}
