package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTruncatedTGAData = errors.New("truncated TGA data")
	ErrUnsupportedTGA   = errors.New("unsupported TGA variant")
)

// TGA image type constants.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

const tgaHeaderSize = 18

// tgaHeader holds the fields of the 18-byte TGA header that decoding needs.
type tgaHeader struct {
	idLength     int
	colorMapType uint8
	imageType    uint8
	width        int
	height       int
	bpp          int
	topToBottom  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, ErrTruncatedTGAData
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		// Bit 5 of the descriptor: rows stored top to bottom
		topToBottom: data[17]&0x20 != 0,
	}

	if h.colorMapType != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	switch h.imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return h, fmt.Errorf("%w: %d-bit true-color", ErrUnsupportedTGA, h.bpp)
		}
	case TGATypeGray, TGATypeGrayRLE:
		if h.bpp != 8 {
			return h, fmt.Errorf("%w: %d-bit grayscale", ErrUnsupportedTGA, h.bpp)
		}
	default:
		return h, fmt.Errorf("%w: type %d", ErrUnsupportedTGA, h.imageType)
	}
	return h, nil
}

// DecodeTGA decodes a TGA image. Uncompressed and RLE true-color (24/32 bit)
// and grayscale (8 bit) images are supported.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, ErrTruncatedTGAData
	}

	d := &tgaDecoder{
		h:   h,
		img: image.NewRGBA(image.Rect(0, 0, h.width, h.height)),
		src: data[offset:],
		bpp: h.bpp / 8,
	}

	switch h.imageType {
	case TGATypeTrueColor, TGATypeGray:
		err = d.decodeRaw()
	default:
		err = d.decodeRLE()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	h   tgaHeader
	img *image.RGBA
	src []byte
	pos int
	bpp int
}

// readPixel consumes one pixel from the source stream.
func (d *tgaDecoder) readPixel() (color.RGBA, bool) {
	if d.pos+d.bpp > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos : d.pos+d.bpp]
	d.pos += d.bpp

	if d.bpp == 1 {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}, true
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}

// set stores the i-th pixel of the stream, honoring the row order.
func (d *tgaDecoder) set(i int, c color.RGBA) {
	x := i % d.h.width
	y := i / d.h.width
	if !d.h.topToBottom {
		y = d.h.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.h.width * d.h.height
	if len(d.src) < count*d.bpp {
		return fmt.Errorf("%w: pixel data", ErrTruncatedTGAData)
	}
	for i := 0; i < count; i++ {
		c, _ := d.readPixel()
		d.set(i, c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.h.width * d.h.height
	i := 0
	for i < count {
		if d.pos >= len(d.src) {
			return fmt.Errorf("%w: RLE stream ends at pixel %d of %d", ErrTruncatedTGAData, i, count)
		}
		packet := d.src[d.pos]
		d.pos++
		n := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run-length packet: one pixel repeated n times
			c, ok := d.readPixel()
			if !ok {
				return fmt.Errorf("%w: RLE packet", ErrTruncatedTGAData)
			}
			for k := 0; k < n && i < count; k++ {
				d.set(i, c)
				i++
			}
			continue
		}

		// Raw packet: n literal pixels
		for k := 0; k < n && i < count; k++ {
			c, ok := d.readPixel()
			if !ok {
				return fmt.Errorf("%w: raw packet", ErrTruncatedTGAData)
			}
			d.set(i, c)
			i++
		}
	}
	return nil
}
