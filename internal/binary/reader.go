package binary

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dyuri/fenixconv/internal/model"
)

// File magics
var (
	palMagic = []byte{'p', 'a', 'l', 0x1A, 0x0D, 0x0A, 0x00, 0x00}
	fplMagic = []byte{'F', 'e', 'n', 'i', 'x', 'P', 'a', 'l', 'e', 't', 't', 'e', 0x1A, 0x0D, 0x0A, 0x00}
	mapMagic = []byte{'m', 'a', 'p', 0x1A, 0x0D, 0x0A, 0x00, 0x00}
	m16Magic = []byte{'m', '1', '6', 0x1A, 0x0D, 0x0A, 0x00, 0x00}
	fbmMagic = []byte{'F', 'e', 'n', 'i', 'x', 'B', 'i', 't', 'm', 'a', 'p', ' ', 0x1A, 0x0D, 0x0A, 0x00}
)

// Version of the versioned formats (FPL and FBM)
const (
	versionMajor int16 = 0x0100
	versionMinor int16 = 0x0000
)

// gammaSize is the reserved block that follows MAP and PAL color tables
const gammaSize = 576

// Format identifies one of the supported file formats
type Format int

const (
	FormatUnknown Format = iota
	FormatPAL            // Legacy palette, 6-bit components
	FormatFPL            // Versioned palette
	FormatMAP            // Static graphic, 8bpp (map) or 16bpp (m16)
	FormatFBM            // Animated graphic
)

var formatNames = map[Format]string{
	FormatPAL: "pal",
	FormatFPL: "fpl",
	FormatMAP: "map",
	FormatFBM: "fbm",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// IsPalette reports whether the format stores only a palette
func (f Format) IsPalette() bool {
	return f == FormatPAL || f == FormatFPL
}

// ParseFormat converts a format name or file extension ("fbm", ".map", "M16")
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	if name == "m16" {
		return FormatMAP, nil
	}
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatUnknown, model.Errorf(model.ErrFormatMismatch, "unknown format %q", name)
}

// Detect identifies the format of decompressed data from its leading bytes
func Detect(prefix []byte) (Format, error) {
	switch {
	case hasMagic(prefix, fbmMagic, false):
		return FormatFBM, nil
	case hasMagic(prefix, fplMagic, false):
		return FormatFPL, nil
	case hasMagic(prefix, mapMagic, true), hasMagic(prefix, m16Magic, true):
		return FormatMAP, nil
	case hasMagic(prefix, palMagic, true):
		return FormatPAL, nil
	}
	return FormatUnknown, model.Errorf(model.ErrFormatMismatch, "unrecognized file signature")
}

func hasMagic(data, magic []byte, fold bool) bool {
	if len(data) < len(magic) {
		return false
	}
	if fold {
		return bytes.EqualFold(data[:len(magic)], magic)
	}
	return bytes.Equal(data[:len(magic)], magic)
}

// Reader handles parsing of Fenix files
type Reader struct {
	c *Cursor
}

// NewReader buffers and, if needed, decompresses the whole input
func NewReader(r io.Reader) (*Reader, error) {
	c, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return &Reader{c: c}, nil
}

// Format detects the format of the buffered input
func (r *Reader) Format() (Format, error) {
	return Detect(r.c.Peek(len(fbmMagic)))
}

// ReadPalette reads a PAL or FPL file, whichever the input is
func (r *Reader) ReadPalette() (*model.Palette, error) {
	format, err := r.Format()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPAL:
		return r.ReadPAL()
	case FormatFPL:
		return r.ReadFPL()
	}
	return nil, model.Errorf(model.ErrFormatMismatch, "%s file is not a palette", format)
}

// ReadGraphic reads a MAP or FBM file, whichever the input is
func (r *Reader) ReadGraphic() (*model.Graphic, error) {
	format, err := r.Format()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatMAP:
		return r.ReadMAP()
	case FormatFBM:
		return r.ReadFBM()
	}
	return nil, model.Errorf(model.ErrFormatMismatch, "%s file is not a graphic", format)
}

// readMagic consumes len(magic) bytes and checks them. Input shorter than
// the magic is a format mismatch as well.
func (r *Reader) readMagic(magic []byte, fold bool, kind string) error {
	if !hasMagic(r.c.Peek(len(magic)), magic, fold) {
		return model.Errorf(model.ErrFormatMismatch, "not a valid %s file", kind)
	}
	return r.c.Skip(len(magic))
}

// readVersion reads and checks the major/minor version pair
func (r *Reader) readVersion() error {
	major, err := r.c.ReadInt16()
	if err != nil {
		return err
	}
	if _, err := r.c.ReadInt16(); err != nil {
		return err
	}
	if major != versionMajor {
		return model.Errorf(model.ErrUnsupportedVersion, "incompatible file version %#04x", uint16(major))
	}
	return nil
}

// readColors reads 256 RGB triples. With shift 2 every stored value is a
// 6-bit component scaled by 4.
func (r *Reader) readColors(shift uint) (*model.Palette, error) {
	raw, err := r.c.ReadBytes(model.PaletteSize * 3)
	if err != nil {
		return nil, fmt.Errorf("read color table: %w", err)
	}

	limit := byte(0xFF >> shift)
	p := &model.Palette{}
	for i := 0; i < model.PaletteSize; i++ {
		rgb := raw[i*3 : i*3+3]
		if rgb[0] > limit || rgb[1] > limit || rgb[2] > limit {
			return nil, model.Errorf(model.ErrOutOfRange, "color %d component exceeds %d", i, limit)
		}
		p.Set(i, model.Color{R: rgb[0] << shift, G: rgb[1] << shift, B: rgb[2] << shift})
	}
	return p, nil
}

// readCount reads a max-index counter and returns the number of entries it
// announces
func (r *Reader) readCount(what string) (int, error) {
	v, err := r.c.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v < -1 {
		return 0, model.Errorf(model.ErrOutOfRange, "invalid %s counter %d", what, v)
	}
	return int(v) + 1, nil
}

// ensure checks that n records of size bytes can still be read
func (r *Reader) ensure(n, size int, what string) error {
	if n < 0 || size < 0 || (size > 0 && n > r.c.Remaining()/size) {
		return model.Wrap(model.ErrTruncated, io.ErrUnexpectedEOF,
			"%d %s need %d bytes each, only %d left", n, what, size, r.c.Remaining())
	}
	return nil
}
