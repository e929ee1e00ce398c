// Package texture decodes and encodes texture images and provides the pixel
// helpers used when building an atlas.
package texture

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ImageToRGBA converts any image.Image to an *image.RGBA whose bounds start
// at (0,0). An *image.RGBA already anchored at the origin is returned as is.
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return rgba
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, bounds, xdraw.Src, nil)
	return rgba
}

// FlipVertical mirrors img top to bottom in place.
func FlipVertical(img *image.RGBA) {
	b := img.Bounds()
	rowSize := b.Dx() * 4
	if rowSize == 0 {
		return
	}
	tmp := make([]byte, rowSize)

	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.PixOffset(b.Min.X, top)
		u := img.PixOffset(b.Min.X, bottom)
		copy(tmp, img.Pix[t:t+rowSize])
		copy(img.Pix[t:t+rowSize], img.Pix[u:u+rowSize])
		copy(img.Pix[u:u+rowSize], tmp)
	}
}
