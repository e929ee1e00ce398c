package merge

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/objatlas/pkg/formats"
)

// Association errors.
var (
	ErrUnknownMaterial   = errors.New("unknown material")
	ErrUnresolvedOwner   = errors.New("texture vertex used with no active material")
	ErrOwnershipConflict = errors.New("texture vertex shared by two materials")
)

// Ownership maps every texture vertex of a model to the material whose
// faces reference it.
type Ownership struct {
	owners []*Material // Indexed like OBJ.TexCoords; nil if unreferenced
	reg    *Registry
}

// Owner returns the owning material of texture vertex i (0-based), or nil.
func (o *Ownership) Owner(i int) *Material {
	return o.owners[i]
}

// Len returns the number of texture vertices covered.
func (o *Ownership) Len() int {
	return len(o.owners)
}

// Used returns the materials that own at least one texture vertex, in
// registry order.
func (o *Ownership) Used() []*Material {
	used := make(map[*Material]bool)
	for _, m := range o.owners {
		if m != nil {
			used[m] = true
		}
	}

	var out []*Material
	for _, m := range o.reg.All() {
		if used[m] {
			out = append(out, m)
		}
	}
	return out
}

// Unowned returns how many texture vertices no face references.
func (o *Ownership) Unowned() int {
	n := 0
	for _, m := range o.owners {
		if m == nil {
			n++
		}
	}
	return n
}

// Associate resolves the owner of every texture vertex from the usemtl in
// effect for each face. Every problem found is reported in one combined
// error.
func Associate(obj *formats.OBJ, reg *Registry) (*Ownership, error) {
	own := &Ownership{
		owners: make([]*Material, len(obj.TexCoords)),
		reg:    reg,
	}
	firstUse := make([]int, len(obj.TexCoords)) // Face line that claimed each vt
	conflicted := make(map[int]bool)

	var errs error

	for _, line := range obj.Lines {
		if line.Kind != formats.OBJUseMaterial {
			continue
		}
		if _, ok := reg.Get(line.Fields[1]); !ok {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w: %q", line.Num, ErrUnknownMaterial, line.Fields[1]))
		}
	}

	for _, face := range obj.Faces {
		for _, fv := range face.Vertices {
			if fv.VT == 0 {
				continue
			}
			if face.Material == "" {
				errs = multierr.Append(errs, fmt.Errorf("line %d: %w: vt %d", face.Line, ErrUnresolvedOwner, fv.VT))
				continue
			}
			m, ok := reg.Get(face.Material)
			if !ok {
				continue // Reported at the usemtl line
			}

			i := fv.VT - 1
			switch prev := own.owners[i]; {
			case prev == nil:
				own.owners[i] = m
				firstUse[i] = face.Line
			case prev != m && !conflicted[i]:
				conflicted[i] = true
				errs = multierr.Append(errs, fmt.Errorf("line %d: %w: vt %d belongs to %q (line %d) and %q",
					face.Line, ErrOwnershipConflict, fv.VT, prev.Name, firstUse[i], m.Name))
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return own, nil
}
