// Package asset stores preset templates outside the process.
//
// An Asset is the serialized form of a preset: the template's type name
// and the values of its copyable attributes. Assets are encoded as CBOR
// (".preset" files) or YAML (".preset.yaml" files). Loading an asset
// recreates the template in a persistent scope, so releasing the loaded
// preset never destroys it.
//
// Attribute values are read through the shared accessors: attributes in
// the rename table are not stored, their replacements are.
package asset

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/scope"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

// Version is the current asset format version.
const Version = 1

// Asset errors.
var (
	ErrEmptyPreset        = errors.New("preset has no template")
	ErrUnsupportedVersion = errors.New("unsupported asset version")
	ErrUnknownAttribute   = errors.New("unknown attribute")
)

// Asset is a stored preset.
type Asset struct {
	// Version is the asset format version.
	Version int

	// ID is the unique asset identifier.
	ID string

	// Name is the user-facing asset name.
	Name string

	// Type is the full name of the template's type.
	Type string

	// CreatedAt is when the asset was created.
	CreatedAt time.Time

	// Attributes holds the template's values by attribute name.
	Attributes map[string]any

	// Skipped lists attributes whose getter failed while the asset was
	// built. It is not encoded.
	Skipped []transfer.Skip
}

// FromPreset captures the template of p as a new asset.
func FromPreset(p *preset.Preset, name string) (*Asset, error) {
	template := p.Template()
	if template == nil {
		return nil, ErrEmptyPreset
	}
	return FromInstance(template, name)
}

// FromInstance builds an asset from the current state of instance.
// Attributes that cannot be read are left out and listed in Skipped.
func FromInstance(instance any, name string) (*Asset, error) {
	d, err := model.DescribeInstance(instance, model.ScopeInherited)
	if err != nil {
		return nil, err
	}

	a := &Asset{
		Version:    Version,
		ID:         uuid.NewString(),
		Name:       name,
		Type:       d.FullName(),
		CreatedAt:  time.Now().UTC(),
		Attributes: make(map[string]any),
	}
	for _, attr := range d.Attributes {
		if !storable(attr) {
			continue
		}
		v, err := attr.GetValue(instance)
		if err != nil {
			a.Skipped = append(a.Skipped, transfer.Skip{Attribute: attr.Name, Err: err})
			continue
		}
		a.Attributes[attr.Name] = v
	}
	return a, nil
}

// Report returns the outcome of building the asset as a transfer report.
func (a *Asset) Report() *transfer.Report {
	return &transfer.Report{Type: a.Type, Copied: a.Names(), Skipped: a.Skipped}
}

// Names returns the attribute names in sorted order.
func (a *Asset) Names() []string {
	names := make([]string, 0, len(a.Attributes))
	for n := range a.Attributes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Instantiate creates a new instance of the asset's type in s and writes
// the stored values to it. Attributes that cannot be written are listed
// in the returned report and do not fail the call.
func (a *Asset) Instantiate(reg *model.Registry, s *scope.Scope) (any, *transfer.Report, error) {
	if a.Version > Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.Version)
	}
	t, err := reg.Lookup(a.Type)
	if err != nil {
		return nil, nil, err
	}
	d, err := model.Describe(t, model.ScopeInherited)
	if err != nil {
		return nil, nil, err
	}
	instance, err := s.GetOrCreate(t)
	if err != nil {
		return nil, nil, err
	}

	report := &transfer.Report{Type: d.FullName()}
	for _, name := range a.Names() {
		attr, ok := d.Lookup(name)
		if !ok || !storable(attr) {
			report.Skipped = append(report.Skipped, transfer.Skip{
				Attribute: name,
				Err:       fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, d.Name(), name),
			})
			continue
		}
		if err := attr.Set(reflect.ValueOf(instance), valueOf(a.Attributes[name])); err != nil {
			report.Skipped = append(report.Skipped, transfer.Skip{Attribute: name, Err: err})
			continue
		}
		report.Copied = append(report.Copied, name)
	}
	return instance, report, nil
}

// ToPreset recreates the template in a new persistent scope and binds a
// preset to it.
func (a *Asset) ToPreset(reg *model.Registry, opts ...preset.Option) (*preset.Preset, *transfer.Report, error) {
	s := scope.New(scope.Persistent, a.Name)
	template, report, err := a.Instantiate(reg, s)
	if err != nil {
		return nil, nil, err
	}
	p, err := preset.Bind(template, s, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p, report, nil
}

// storable reports whether attr is saved in assets. Renamed attributes
// are represented by their replacement.
func storable(attr *model.Attribute) bool {
	if !attr.Copyable() || !attr.Access.CanRead() {
		return false
	}
	_, renamed := transfer.DefaultRenames.Resolve(attr.Name)
	return !renamed
}

// valueOf keeps typed nils intact; a bare nil becomes the zero value.
func valueOf(v any) reflect.Value {
	if v == nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(v)
}
