package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrUnsupportedFormat is returned when no codec matches a file name.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultJPEGQuality is used when EncodeOptions leaves Quality at zero.
const DefaultJPEGQuality = 95

// EncodeOptions controls lossy encoders.
type EncodeOptions struct {
	// JPEG quality, 1..100. Zero means DefaultJPEGQuality.
	Quality int
}

// Decode reads an image and converts it to RGBA. The name is only used to
// detect TGA files, which carry no magic number; every other format is
// detected from its content.
func Decode(r io.Reader, name string) (*image.RGBA, error) {
	if isTGA(name) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ImageToRGBA(img), nil
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	img, err := Decode(bytes.NewReader(data), path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Encode writes img in the format implied by name's extension: .png, .jpg,
// .jpeg, .bmp, .tif or .tiff.
func Encode(w io.Writer, img image.Image, name string, opts EncodeOptions) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		return enc.Encode(w, img)
	case ".jpg", ".jpeg":
		q := opts.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// CanEncode reports whether Encode supports the extension of name.
func CanEncode(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

func isTGA(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tga")
}
