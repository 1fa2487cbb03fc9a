package asset

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/runtime-presets/presets-go/pkg/model"
)

// File extensions per format.
const (
	ExtCBOR = ".preset"
	ExtYAML = ".preset.yaml"
)

// ErrUnknownFormat is returned for unrecognised format names or extensions.
var ErrUnknownFormat = errors.New("unknown asset format")

// Format selects the asset encoding.
type Format uint8

const (
	FormatCBOR Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCBOR:
		return "cbor"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Ext returns the file extension of the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ExtYAML
	}
	return ExtCBOR
}

// ParseFormat parses "cbor" or "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "cbor":
		return FormatCBOR, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath selects the format from a file name.
func FormatForPath(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ExtYAML), strings.HasSuffix(path, ".preset.yml"):
		return FormatYAML, nil
	case strings.HasSuffix(path, ExtCBOR):
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// encMode is the CBOR encoder mode for assets.
// Configured for deterministic output with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for assets.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create asset CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create asset CBOR decoder mode: %v", err))
	}
}

type cborAsset struct {
	Version    int                        `cbor:"1,keyasint"`
	ID         string                     `cbor:"2,keyasint"`
	Name       string                     `cbor:"3,keyasint,omitempty"`
	Type       string                     `cbor:"4,keyasint"`
	CreatedAt  time.Time                  `cbor:"5,keyasint"`
	Attributes map[string]cbor.RawMessage `cbor:"6,keyasint,omitempty"`
}

type yamlAsset struct {
	Version    int                  `yaml:"version"`
	ID         string               `yaml:"id"`
	Name       string               `yaml:"name,omitempty"`
	Type       string               `yaml:"type"`
	CreatedAt  time.Time            `yaml:"createdAt"`
	Attributes map[string]yaml.Node `yaml:"attributes,omitempty"`
}

// Encode serializes a in the given format.
func Encode(a *Asset, f Format) ([]byte, error) {
	switch f {
	case FormatCBOR:
		w := cborAsset{Version: a.Version, ID: a.ID, Name: a.Name, Type: a.Type, CreatedAt: a.CreatedAt}
		if len(a.Attributes) > 0 {
			w.Attributes = make(map[string]cbor.RawMessage, len(a.Attributes))
		}
		for name, v := range a.Attributes {
			raw, err := encMode.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			w.Attributes[name] = raw
		}
		return encMode.Marshal(w)

	case FormatYAML:
		w := yamlAsset{Version: a.Version, ID: a.ID, Name: a.Name, Type: a.Type, CreatedAt: a.CreatedAt}
		if len(a.Attributes) > 0 {
			nodes, err := EncodeNodes(a.Attributes)
			if err != nil {
				return nil, err
			}
			w.Attributes = nodes
		}
		return yaml.Marshal(&w)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Decode parses an asset. Attribute values are decoded into the types
// declared by the registered component type; attributes the type does not
// declare are dropped and returned in unknown.
func Decode(data []byte, f Format, reg *model.Registry) (a *Asset, unknown []string, err error) {
	a = &Asset{Attributes: make(map[string]any)}

	var decodeValue func(name string, target any) error
	var names []string

	switch f {
	case FormatCBOR:
		var w cborAsset
		if err := decMode.Unmarshal(data, &w); err != nil {
			return nil, nil, fmt.Errorf("failed to decode asset: %w", err)
		}
		a.Version, a.ID, a.Name, a.Type, a.CreatedAt = w.Version, w.ID, w.Name, w.Type, w.CreatedAt
		for n := range w.Attributes {
			names = append(names, n)
		}
		decodeValue = func(name string, target any) error {
			return decMode.Unmarshal(w.Attributes[name], target)
		}

	case FormatYAML:
		var w yamlAsset
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, nil, fmt.Errorf("failed to decode asset: %w", err)
		}
		a.Version, a.ID, a.Name, a.Type, a.CreatedAt = w.Version, w.ID, w.Name, w.Type, w.CreatedAt
		for n := range w.Attributes {
			names = append(names, n)
		}
		decodeValue = func(name string, target any) error {
			n := w.Attributes[name]
			return n.Decode(target)
		}

	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}

	unknown, err = resolve(a, names, decodeValue, reg)
	if err != nil {
		return nil, nil, err
	}
	return a, unknown, nil
}

// EncodeNodes encodes attribute values as YAML nodes, for documents that
// embed attribute maps.
func EncodeNodes(values map[string]any) (map[string]yaml.Node, error) {
	nodes := make(map[string]yaml.Node, len(values))
	for name, v := range values {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		nodes[name] = n
	}
	return nodes, nil
}

// DecodeNodes decodes YAML attribute nodes for the named type into an
// asset. Attributes the type does not declare are returned in unknown.
func DecodeNodes(typeName string, nodes map[string]yaml.Node, reg *model.Registry) (a *Asset, unknown []string, err error) {
	a = &Asset{Version: Version, Type: typeName, Attributes: make(map[string]any)}
	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	unknown, err = resolve(a, names, func(name string, target any) error {
		n := nodes[name]
		return n.Decode(target)
	}, reg)
	if err != nil {
		return nil, nil, err
	}
	return a, unknown, nil
}

func resolve(a *Asset, names []string, decodeValue func(name string, target any) error, reg *model.Registry) (unknown []string, err error) {
	if a.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.Version)
	}
	t, err := reg.Lookup(a.Type)
	if err != nil {
		return nil, err
	}
	d, err := model.Describe(t, model.ScopeInherited)
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	for _, name := range names {
		attr, ok := d.Lookup(name)
		if !ok || !storable(attr) {
			unknown = append(unknown, name)
			continue
		}
		ptr := reflect.New(attr.Type)
		if err := decodeValue(name, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", d.Name(), name, err)
		}
		a.Attributes[attr.Name] = ptr.Elem().Interface()
	}
	return unknown, nil
}
