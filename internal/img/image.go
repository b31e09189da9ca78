// Package img exposes graphic frames as image.Image values and admits
// images as frames. No color conversion is ever performed: 8bpp frames map
// to *image.Paletted and 16bpp frames to *RGB565.
package img

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/dyuri/fenixconv/internal/model"
)

// Palette builds a display color table from a graphic palette
func Palette(p *model.Palette) color.Palette {
	red, green, blue := p.Plane(model.Red), p.Plane(model.Green), p.Plane(model.Blue)
	pal := make(color.Palette, model.PaletteSize)
	for i := range pal {
		pal[i] = color.RGBA{R: red[i], G: green[i], B: blue[i], A: 0xFF}
	}
	return pal
}

// Image returns frame index of g as an image. The pixels are copied.
func Image(g *model.Graphic, index int) (image.Image, error) {
	frame, err := g.Frame(index)
	if err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, g.Width(), g.Height())

	if g.Depth() == model.Depth8 {
		m := image.NewPaletted(rect, Palette(g.Palette()))
		copy(m.Pix, frame.Bytes())
		return m, nil
	}
	m := NewRGB565(rect)
	copy(m.Pix, frame.Bytes())
	return m, nil
}

// AddImage admits an image as a new frame of g and returns its index.
// Paletted images become 8bpp frames and must carry a 256 color table;
// RGB565 images become 16bpp frames. Any other image is rejected.
func AddImage(g *model.Graphic, m image.Image) (int, error) {
	b := m.Bounds()
	buf := model.PixelBuffer{Width: b.Dx(), Height: b.Dy()}

	switch src := m.(type) {
	case *image.Paletted:
		buf.Depth = model.Depth8
		buf.Colors = len(src.Palette)
		buf.Pix = packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), b.Dx(), b.Dy())
	case *RGB565:
		buf.Depth = model.Depth16
		buf.Pix = packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), b.Dx()*2, b.Dy())
	default:
		return 0, model.Errorf(model.ErrInvalidFrame, "unsupported image type %T", m)
	}
	return g.AddFrame(buf)
}

// packRows copies rows of rowLen bytes out of a strided buffer
func packRows(pix []byte, stride, offset, rowLen, rows int) []byte {
	out := make([]byte, 0, rowLen*rows)
	for y := 0; y < rows; y++ {
		start := offset + y*stride
		out = append(out, pix[start:start+rowLen]...)
	}
	return out
}

// Color565 is a 16-bit 5-6-5 direct color
type Color565 uint16

// RGBA expands the 5 and 6 bit components to 16 bits
func (c Color565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F

	r = (r5<<3 | r5>>2) * 0x101
	g = (g6<<2 | g6>>4) * 0x101
	b = (b5<<3 | b5>>2) * 0x101
	return r, g, b, 0xFFFF
}

// RGB565Model converts colors to Color565 by truncating components
var RGB565Model = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return Color565((r>>11)<<11 | (g>>10)<<5 | b>>11)
})

// RGB565 is an in-memory image of little-endian 565 pixels
type RGB565 struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewRGB565 returns a new RGB565 image with the given bounds
func NewRGB565(r image.Rectangle) *RGB565 {
	return &RGB565{
		Pix:    make([]byte, 2*r.Dx()*r.Dy()),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB565) ColorModel() color.Model { return RGB565Model }

func (p *RGB565) Bounds() image.Rectangle { return p.Rect }

func (p *RGB565) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), or 0 outside the bounds
func (p *RGB565) RGB565At(x, y int) Color565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	return Color565(binary.LittleEndian.Uint16(p.Pix[p.PixOffset(x, y):]))
}

// Set stores c, converted to 565
func (p *RGB565) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, RGB565Model.Convert(c).(Color565))
}

// SetRGB565 stores a 565 pixel
func (p *RGB565) SetRGB565(x, y int, c Color565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	binary.LittleEndian.PutUint16(p.Pix[p.PixOffset(x, y):], uint16(c))
}

// PixOffset returns the index of the first byte of pixel (x, y)
func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
