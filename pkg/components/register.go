package components

import "github.com/runtime-presets/presets-go/pkg/model"

// Register adds the component types of this package to r.
func Register(r *model.Registry) error {
	for _, prototype := range []any{
		&Light{},
		&MeshRenderer{},
		&MeshFilter{},
	} {
		if err := r.Register(prototype); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the component types of this package.
func NewRegistry() *model.Registry {
	r := model.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
