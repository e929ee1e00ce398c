package merge

import (
	"errors"
	"testing"

	"github.com/Faultbox/objatlas/pkg/atlas"
	"github.com/Faultbox/objatlas/pkg/formats"
)

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry()
	lib := &formats.MTL{Materials: []formats.MTLMaterial{
		{Name: "stone", DiffuseMap: "stone.png"},
		{Name: "wood", DiffuseMap: "wood.png"},
		{Name: "glass"},
	}}
	if err := reg.AddLibrary("a.mtl", lib); err != nil {
		t.Fatalf("AddLibrary failed: %v", err)
	}

	if reg.Len() != 3 {
		t.Fatalf("expected 3 materials, got %d", reg.Len())
	}
	for i, want := range []string{"stone", "wood", "glass"} {
		if got := reg.All()[i].Name; got != want {
			t.Errorf("material %d: got %s, want %s", i, got, want)
		}
	}

	glass, ok := reg.Get("glass")
	if !ok || glass.HasImage() {
		t.Errorf("glass should exist without image: %+v", glass)
	}
	if !glass.Transform.IsIdentity() {
		t.Error("new material should start with identity transform")
	}
	if _, ok := reg.Get("metal"); ok {
		t.Error("unexpected material metal")
	}
}

func TestRegistryDuplicateAcrossLibraries(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Add("wood", "a.png", "a.mtl"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_, err := reg.Add("wood", "b.png", "b.mtl")
	if !errors.Is(err, formats.ErrDuplicateMaterial) {
		t.Errorf("expected ErrDuplicateMaterial, got %v", err)
	}
}

func TestMaterialPlaceOnce(t *testing.T) {
	reg := NewRegistry()
	m, _ := reg.Add("wood", "wood.png", "a.mtl")

	r := atlas.Rect{X0: 0, Y0: 0, X1: 64, Y1: 64}
	if err := m.Place(r, atlas.PlacementTransform(128, r)); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if !m.Placed() || m.Rect != r {
		t.Errorf("unexpected placement %v", m.Rect)
	}
	if m.Transform != atlas.PlacementTransform(128, r) {
		t.Errorf("unexpected transform %v", m.Transform)
	}

	if err := m.Place(r, atlas.PlacementTransform(256, r)); !errors.Is(err, ErrAlreadyPlaced) {
		t.Errorf("expected ErrAlreadyPlaced, got %v", err)
	}
	if m.Transform != atlas.PlacementTransform(128, r) {
		t.Error("second Place changed the transform")
	}
}
