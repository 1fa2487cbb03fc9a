// Package components provides a small set of engine-style components used
// by the presetctl tool and by tests: lights, mesh renderers and mesh
// filters. Their accessors mirror a game engine's, including accessors
// that instantiate per-object copies of shared assets on read.
package components

import (
	"fmt"
	"maps"
)

// Color is a linear RGBA color.
type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

// Common colors.
var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
	Red   = Color{R: 1, A: 1}
)

// String returns the color as RGBA components.
func (c Color) String() string {
	return fmt.Sprintf("RGBA(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

// Material is a shared rendering asset.
type Material struct {
	Name   string             `yaml:"name"`
	Shader string             `yaml:"shader"`
	Color  Color              `yaml:"color"`
	Floats map[string]float64 `yaml:"floats,omitempty"`
}

// Clone returns an instance copy of m, named the way an engine names
// per-object material instances.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	c.Name = m.Name + " (Instance)"
	c.Floats = maps.Clone(m.Floats)
	return &c
}

// Mesh is a shared geometry asset.
type Mesh struct {
	Name     string `yaml:"name"`
	Vertices int    `yaml:"vertices"`
}

// Clone returns an instance copy of m.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	c := *m
	c.Name = m.Name + " Instance"
	return &c
}

// Behaviour carries the state common to all components.
type Behaviour struct {
	enabled bool
}

// Enabled reports whether the component is enabled.
func (b *Behaviour) Enabled() bool { return b.enabled }

// SetEnabled enables or disables the component.
func (b *Behaviour) SetEnabled(v bool) { b.enabled = v }
