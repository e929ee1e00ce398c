// Package merge combines the material groups of an OBJ model into a single
// atlas-textured material.
package merge

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/objatlas/pkg/atlas"
	"github.com/Faultbox/objatlas/pkg/formats"
	"github.com/Faultbox/objatlas/pkg/math"
)

// ErrAlreadyPlaced is returned when a material is placed a second time.
var ErrAlreadyPlaced = errors.New("material already placed")

// Material is one named material of the source model.
type Material struct {
	Name     string
	ImageRef string // map_Kd as written, "" if the material has none
	Library  string // Path of the defining MTL file

	// Set when the image is loaded.
	ImagePath string
	Image     *image.RGBA

	// Set once by Place.
	Rect      atlas.Rect
	Transform math.Mat3
	placed    bool
}

// HasImage reports whether the material references a diffuse map.
func (m *Material) HasImage() bool {
	return m.ImageRef != ""
}

// Placed reports whether the material's atlas position is fixed.
func (m *Material) Placed() bool {
	return m.placed
}

// Size returns the pixel extent of the loaded image.
func (m *Material) Size() atlas.Size {
	if m.Image == nil {
		return atlas.Size{}
	}
	b := m.Image.Bounds()
	return atlas.Size{Width: b.Dx(), Height: b.Dy()}
}

// Place fixes the material at r with the UV transform t. It may be called
// once.
func (m *Material) Place(r atlas.Rect, t math.Mat3) error {
	if m.placed {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, m.Name)
	}
	m.Rect = r
	m.Transform = t
	m.placed = true
	return nil
}

// Registry holds materials in the order their libraries declare them.
type Registry struct {
	materials []*Material
	byName    map[string]*Material
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Material)}
}

// Add registers a material. Names are unique across all libraries.
func (r *Registry) Add(name, imageRef, library string) (*Material, error) {
	if prev, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q in %s, first defined in %s",
			formats.ErrDuplicateMaterial, name, library, prev.Library)
	}
	m := &Material{
		Name:      name,
		ImageRef:  imageRef,
		Library:   library,
		Transform: math.Identity(),
	}
	r.materials = append(r.materials, m)
	r.byName[name] = m
	return m, nil
}

// AddLibrary registers every material of a parsed MTL file.
func (r *Registry) AddLibrary(path string, lib *formats.MTL) error {
	for _, mm := range lib.Materials {
		if _, err := r.Add(mm.Name, mm.DiffuseMap, path); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the material with the given name.
func (r *Registry) Get(name string) (*Material, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// All returns every material in registration order.
func (r *Registry) All() []*Material {
	return r.materials
}

// Len returns the number of materials.
func (r *Registry) Len() int {
	return len(r.materials)
}
