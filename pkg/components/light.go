package components

import (
	"errors"
	"fmt"
)

// ErrSpotAngle is returned for spot angles outside [1, 179].
var ErrSpotAngle = errors.New("spot angle out of range")

// LightType selects the light model.
type LightType uint8

const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
)

// String returns the light type name.
func (t LightType) String() string {
	switch t {
	case LightSpot:
		return "Spot"
	case LightDirectional:
		return "Directional"
	case LightPoint:
		return "Point"
	case LightArea:
		return "Area"
	default:
		return fmt.Sprintf("LightType(%d)", uint8(t))
	}
}

// ShadowMode selects how a light casts shadows.
type ShadowMode uint8

const (
	ShadowsNone ShadowMode = iota
	ShadowsHard
	ShadowsSoft
)

// Light is a light source component.
type Light struct {
	Behaviour

	// CullingMask selects the layers the light affects.
	CullingMask int `yaml:"cullingMask"`

	// Cookie names the projected texture, if any.
	Cookie string `yaml:"cookie"`

	lightType      LightType
	color          Color
	intensity      float32
	lightRange     float32
	spotAngle      float32
	shadows        ShadowMode
	shadowSoftness float32
}

// Reset restores engine defaults.
func (l *Light) Reset() {
	l.SetEnabled(true)
	l.CullingMask = -1
	l.lightType = LightPoint
	l.color = White
	l.intensity = 1
	l.lightRange = 10
	l.spotAngle = 30
	l.shadows = ShadowsNone
}

func (l *Light) Type() LightType     { return l.lightType }
func (l *Light) SetType(t LightType) { l.lightType = t }

func (l *Light) Color() Color     { return l.color }
func (l *Light) SetColor(c Color) { l.color = c }

func (l *Light) Intensity() float32     { return l.intensity }
func (l *Light) SetIntensity(v float32) { l.intensity = v }

func (l *Light) Range() float32     { return l.lightRange }
func (l *Light) SetRange(v float32) { l.lightRange = v }

func (l *Light) SpotAngle() float32 { return l.spotAngle }

// SetSpotAngle sets the cone angle in degrees.
func (l *Light) SetSpotAngle(v float32) error {
	if v < 1 || v > 179 {
		return fmt.Errorf("%w: %v", ErrSpotAngle, v)
	}
	l.spotAngle = v
	return nil
}

func (l *Light) Shadows() ShadowMode     { return l.shadows }
func (l *Light) SetShadows(m ShadowMode) { l.shadows = m }

// ShadowSoftness is kept for old scenes and is ignored by the renderer.
func (l *Light) ShadowSoftness() float32     { return l.shadowSoftness }
func (l *Light) SetShadowSoftness(v float32) { l.shadowSoftness = v }

// DeprecatedAttributes lists attributes presets must not copy.
func (l *Light) DeprecatedAttributes() []string {
	return []string{"shadowSoftness"}
}
