package atlas

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/objatlas/pkg/texture"
)

// ErrSizeMismatch is returned when an image does not match its rectangle.
var ErrSizeMismatch = errors.New("image size does not match placement")

// Placement pairs a source image with its frozen atlas rectangle.
type Placement struct {
	Name  string
	Image image.Image
	Rect  Rect
}

// Composite copies every image pixel-for-pixel into a size x size canvas at
// its rectangle, then flips the canvas vertically so row 0 of the result is
// the bottom of the atlas.
func Composite(size int, placements []Placement) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))

	for _, p := range placements {
		b := p.Image.Bounds()
		if b.Dx() != p.Rect.Width() || b.Dy() != p.Rect.Height() {
			return nil, fmt.Errorf("%w: %s is %dx%d, placed at %s",
				ErrSizeMismatch, p.Name, b.Dx(), b.Dy(), p.Rect)
		}
		if !p.Rect.Within(size) {
			return nil, fmt.Errorf("placement %s of %s lies outside %dx%d atlas", p.Rect, p.Name, size, size)
		}
		xdraw.Copy(canvas, image.Pt(p.Rect.X0, p.Rect.Y0), p.Image, b, xdraw.Src, nil)
	}

	texture.FlipVertical(canvas)
	return canvas, nil
}
