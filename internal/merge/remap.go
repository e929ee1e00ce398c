package merge

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objatlas/pkg/formats"
	"github.com/Faultbox/objatlas/pkg/math"
)

// ErrNotPlaced is returned when a textured material is remapped before its
// atlas position is known.
var ErrNotPlaced = errors.New("material not placed")

// Remap returns the atlas texture coordinate of every texture vertex.
// Vertices without an owner, or whose owner has no image, keep their value.
func Remap(obj *formats.OBJ, own *Ownership) ([]math.Vec2, error) {
	if own.Len() != len(obj.TexCoords) {
		return nil, fmt.Errorf("ownership covers %d texture vertices, model has %d", own.Len(), len(obj.TexCoords))
	}

	out := make([]math.Vec2, len(obj.TexCoords))
	for i, tc := range obj.TexCoords {
		m := own.Owner(i)
		switch {
		case m == nil || !m.HasImage():
			out[i] = tc.UV
		case !m.Placed():
			return nil, fmt.Errorf("%w: %s", ErrNotPlaced, m.Name)
		default:
			out[i] = m.Transform.TransformPoint(tc.UV)
		}
	}
	return out, nil
}
