package components

import "slices"

// ShadowCasting selects how a renderer casts shadows.
type ShadowCasting uint8

const (
	ShadowCastingOff ShadowCasting = iota
	ShadowCastingOn
	ShadowCastingTwoSided
	ShadowCastingShadowsOnly
)

// MeshRenderer draws a mesh with a list of materials.
//
// The shared accessors read and write the asset references directly. The
// material accessors behave like an engine's: reading them replaces the
// shared materials with per-object instances that belong to this renderer.
type MeshRenderer struct {
	Behaviour

	ShadowCasting ShadowCasting `yaml:"shadowCasting"`
	SortingOrder  int           `yaml:"sortingOrder"`

	receiveShadows bool
	shared         []*Material
	instances      []*Material
}

// Reset restores engine defaults.
func (r *MeshRenderer) Reset() {
	r.SetEnabled(true)
	r.ShadowCasting = ShadowCastingOn
	r.receiveShadows = true
}

func (r *MeshRenderer) ReceiveShadows() bool     { return r.receiveShadows }
func (r *MeshRenderer) SetReceiveShadows(v bool) { r.receiveShadows = v }

// SharedMaterial returns the first shared material.
func (r *MeshRenderer) SharedMaterial() *Material {
	if len(r.shared) == 0 {
		return nil
	}
	return r.shared[0]
}

// SetSharedMaterial replaces the first shared material.
func (r *MeshRenderer) SetSharedMaterial(m *Material) {
	if len(r.shared) == 0 {
		r.shared = []*Material{m}
	} else {
		r.shared = slices.Clone(r.shared)
		r.shared[0] = m
	}
	r.instances = nil
}

// SharedMaterials returns a copy of the shared material list.
func (r *MeshRenderer) SharedMaterials() []*Material {
	return slices.Clone(r.shared)
}

// SetSharedMaterials replaces the shared material list.
func (r *MeshRenderer) SetSharedMaterials(ms []*Material) {
	r.shared = slices.Clone(ms)
	r.instances = nil
}

// Material returns this renderer's instance of the first material,
// instantiating it on first use.
func (r *MeshRenderer) Material() *Material {
	r.instantiate()
	if len(r.instances) == 0 {
		return nil
	}
	return r.instances[0]
}

// SetMaterial assigns m as both the shared and the instance material.
func (r *MeshRenderer) SetMaterial(m *Material) {
	r.SetSharedMaterial(m)
	r.instances = slices.Clone(r.shared)
}

// Materials returns this renderer's material instances, instantiating
// them on first use.
func (r *MeshRenderer) Materials() []*Material {
	r.instantiate()
	return slices.Clone(r.instances)
}

// SetMaterials assigns ms as both the shared and the instance materials.
func (r *MeshRenderer) SetMaterials(ms []*Material) {
	r.SetSharedMaterials(ms)
	r.instances = slices.Clone(r.shared)
}

// Instantiated reports whether per-object material instances exist.
func (r *MeshRenderer) Instantiated() bool {
	return r.instances != nil
}

// CastShadows is the boolean form of ShadowCasting, kept for old scenes.
func (r *MeshRenderer) CastShadows() bool {
	return r.ShadowCasting != ShadowCastingOff
}

func (r *MeshRenderer) SetCastShadows(v bool) {
	if v {
		r.ShadowCasting = ShadowCastingOn
	} else {
		r.ShadowCasting = ShadowCastingOff
	}
}

// DeprecatedAttributes lists attributes presets must not copy.
func (r *MeshRenderer) DeprecatedAttributes() []string {
	return []string{"castShadows"}
}

func (r *MeshRenderer) instantiate() {
	if r.instances != nil {
		return
	}
	r.instances = make([]*Material, len(r.shared))
	for i, m := range r.shared {
		r.instances[i] = m.Clone()
	}
	r.shared = slices.Clone(r.instances)
}

// MeshFilter holds the mesh a renderer draws.
type MeshFilter struct {
	shared   *Mesh
	instance *Mesh
}

// SharedMesh returns the shared mesh asset.
func (f *MeshFilter) SharedMesh() *Mesh { return f.shared }

// SetSharedMesh replaces the shared mesh asset.
func (f *MeshFilter) SetSharedMesh(m *Mesh) {
	f.shared = m
	f.instance = nil
}

// Mesh returns this filter's instance of the mesh, instantiating it on
// first use.
func (f *MeshFilter) Mesh() *Mesh {
	if f.instance == nil && f.shared != nil {
		f.instance = f.shared.Clone()
		f.shared = f.instance
	}
	return f.instance
}

// SetMesh assigns m as both the shared and the instance mesh.
func (f *MeshFilter) SetMesh(m *Mesh) {
	f.shared = m
	f.instance = m
}

// Instantiated reports whether a per-object mesh instance exists.
func (f *MeshFilter) Instantiated() bool {
	return f.instance != nil
}
