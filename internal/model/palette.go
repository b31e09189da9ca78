package model

// PaletteSize is the number of entries of every palette
const PaletteSize = 256

// Color represents an RGB color
type Color struct {
	R byte // Red (0-255)
	G byte // Green (0-255)
	B byte // Blue (0-255)
}

// NewColor creates a color from integer components, each of which must be
// in [0,255].
func NewColor(r, g, b int) (Color, error) {
	if !inByteRange(r) || !inByteRange(g) || !inByteRange(b) {
		return Color{}, Errorf(ErrOutOfRange, "color component out of range: (%d, %d, %d)", r, g, b)
	}
	return Color{R: byte(r), G: byte(g), B: byte(b)}, nil
}

func inByteRange(v int) bool {
	return v >= 0 && v <= 255
}

// Gray returns the luminance gray tone of the color
func (c Color) Gray() Color {
	tone := byte(float32(c.R)*0.299 + float32(c.G)*0.587 + float32(c.B)*0.114)
	return Color{R: tone, G: tone, B: tone}
}

// Invert returns the negative of the color
func (c Color) Invert() Color {
	return Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// Channel selects one component of a color
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Palette is a fixed 256 entry color table. The zero value is an all-black
// palette ready to use.
type Palette struct {
	colors [PaletteSize]Color
}

// NewPalette creates a palette from up to 256 colors. Missing entries are
// black.
func NewPalette(colors []Color) *Palette {
	p := &Palette{}
	copy(p.colors[:], colors)
	return p
}

// Get returns the color at index
func (p *Palette) Get(index int) (Color, error) {
	if index < 0 || index >= PaletteSize {
		return Color{}, Errorf(ErrOutOfRange, "palette index %d out of range", index)
	}
	return p.colors[index], nil
}

// Set replaces the color at index
func (p *Palette) Set(index int, c Color) error {
	if index < 0 || index >= PaletteSize {
		return Errorf(ErrOutOfRange, "palette index %d out of range", index)
	}
	p.colors[index] = c
	return nil
}

// Colors returns a copy of the color table
func (p *Palette) Colors() [PaletteSize]Color {
	return p.colors
}

// Clone returns an independent copy of the palette
func (p *Palette) Clone() *Palette {
	dup := *p
	return &dup
}

// Plane returns the 256 values of one channel, in palette order.
func (p *Palette) Plane(ch Channel) [PaletteSize]byte {
	var plane [PaletteSize]byte
	for i, c := range p.colors {
		switch ch {
		case Red:
			plane[i] = c.R
		case Green:
			plane[i] = c.G
		case Blue:
			plane[i] = c.B
		}
	}
	return plane
}

// Equal reports whether both palettes hold the same colors
func (p *Palette) Equal(other *Palette) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.colors == other.colors
}
