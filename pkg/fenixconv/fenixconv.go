// Package fenixconv provides functions for working with Fenix palette and
// graphic files (PAL, FPL, MAP/M16 and FBM).
//
// This package can be used as a library to read, edit and write those files
// programmatically. Every reader accepts plain or gzip-compressed input;
// every writer produces gzip-compressed output.
//
// Example usage:
//
//	g, err := fenixconv.ReadGraphicFile("hero.fbm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	walk := g.AddSequence("walk")
//	g.AddKeyFrame(walk, fenixconv.KeyFrame{Frame: 0, Pause: 100})
//
//	err = fenixconv.WriteFile("hero.fbm", fenixconv.FormatFBM, g)
package fenixconv

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/dyuri/fenixconv/internal/binary"
	"github.com/dyuri/fenixconv/internal/img"
	"github.com/dyuri/fenixconv/internal/model"
	"github.com/dyuri/fenixconv/internal/text"
	"github.com/sirupsen/logrus"
)

// Logger receives debug entries for every file read or written. Replace it
// to route them elsewhere.
var Logger logrus.FieldLogger = logrus.StandardLogger()

type (
	Graphic      = model.Graphic
	Palette      = model.Palette
	Color        = model.Color
	ControlPoint = model.ControlPoint
	KeyFrame     = model.KeyFrame
	Sequence     = model.Sequence
	PixelBuffer  = model.PixelBuffer
	Depth        = model.Depth
	Format       = binary.Format
	Description  = text.Description
)

const (
	Depth8     = model.Depth8
	Depth16    = model.Depth16
	NoSequence = model.NoSequence

	FormatUnknown = binary.FormatUnknown
	FormatPAL     = binary.FormatPAL
	FormatFPL     = binary.FormatFPL
	FormatMAP     = binary.FormatMAP
	FormatFBM     = binary.FormatFBM
)

// Error kinds, for use with errors.Is
var (
	ErrFormatMismatch     = model.ErrFormatMismatch
	ErrUnsupportedVersion = model.ErrUnsupportedVersion
	ErrUnsupportedDepth   = model.ErrUnsupportedDepth
	ErrUnsupportedFeature = model.ErrUnsupportedFeature
	ErrInvalidFrame       = model.ErrInvalidFrame
	ErrOutOfRange         = model.ErrOutOfRange
	ErrNotFound           = model.ErrNotFound
	ErrTruncated          = model.ErrTruncated
)

// New creates an empty graphic. An 8bpp graphic needs a palette; a 16bpp
// one must not have one.
func New(width, height int, depth Depth, palette *Palette) (*Graphic, error) {
	return model.New(width, height, depth, palette)
}

// Equal reports whether two graphics have the same content
func Equal(a, b *Graphic) bool {
	return model.Equal(a, b)
}

// ParseFormat maps a format name or file extension (".fbm", "M16") to a
// format.
func ParseFormat(name string) (Format, error) {
	return binary.ParseFormat(name)
}

func newReader(r io.Reader) (*binary.Reader, error) {
	return binary.NewReader(r)
}

// ReadPalette reads a PAL or FPL palette, detecting which one r holds
func ReadPalette(r io.Reader) (*Palette, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadPalette()
}

// ReadGraphic reads a MAP or FBM graphic, detecting which one r holds
func ReadGraphic(r io.Reader) (*Graphic, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadGraphic()
}

// Read reads any supported file and returns its format with either a
// *Palette or a *Graphic.
func Read(r io.Reader) (Format, any, error) {
	br, err := newReader(r)
	if err != nil {
		return FormatUnknown, nil, err
	}
	format, err := br.Format()
	if err != nil {
		return FormatUnknown, nil, err
	}
	if format.IsPalette() {
		p, err := br.ReadPalette()
		return format, p, err
	}
	g, err := br.ReadGraphic()
	return format, g, err
}

// ReadPAL reads a legacy palette file
func ReadPAL(r io.Reader) (*Palette, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadPAL()
}

// ReadFPL reads a Fenix palette file
func ReadFPL(r io.Reader) (*Palette, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadFPL()
}

// ReadMAP reads a static graphic. The result has one frame and one
// sequence showing it.
func ReadMAP(r io.Reader) (*Graphic, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadMAP()
}

// ReadFBM reads an animated graphic
func ReadFBM(r io.Reader) (*Graphic, error) {
	br, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return br.ReadFBM()
}

// Write encodes v, a *Palette or *Graphic, in the given format. An 8bpp
// graphic can be written as a palette.
func Write(w io.Writer, format Format, v any) error {
	return binary.NewWriter(w).Write(format, v)
}

// WritePAL writes a legacy palette file
func WritePAL(w io.Writer, p *Palette) error {
	return binary.NewWriter(w).WritePAL(p)
}

// WriteFPL writes a Fenix palette file
func WriteFPL(w io.Writer, p *Palette) error {
	return binary.NewWriter(w).WriteFPL(p)
}

// WriteMAP writes a single frame graphic as a static graphic
func WriteMAP(w io.Writer, g *Graphic) error {
	return binary.NewWriter(w).WriteMAP(g)
}

// WriteFBM writes an animated graphic
func WriteFBM(w io.Writer, g *Graphic) error {
	return binary.NewWriter(w).WriteFBM(g)
}

// WriteDescription writes the text description of g: everything but its
// pixel data.
func WriteDescription(w io.Writer, g *Graphic) error {
	return text.NewWriter(w).Write(g)
}

// WritePaletteDescription writes p as a text [_palette] section
func WritePaletteDescription(w io.Writer, p *Palette) error {
	return text.NewWriter(w).WritePalette(p)
}

// ReadDescription parses a text description. Use Description.Apply to
// transfer it onto a graphic.
func ReadDescription(r io.Reader) (*Description, error) {
	return text.NewReader(r).Read()
}

// FrameImage returns a copy of frame index as an image. 8bpp frames are
// *image.Paletted; 16bpp frames use the RGB565 image type of this module.
func FrameImage(g *Graphic, index int) (image.Image, error) {
	return img.Image(g, index)
}

// AddImage admits a *image.Paletted (8bpp) or a frame image returned by
// FrameImage as a new frame of g.
func AddImage(g *Graphic, m image.Image) (int, error) {
	return img.AddImage(g, m)
}

// ReadFile reads any supported file from disk
func ReadFile(path string) (Format, any, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	format, v, err := Read(f)
	if err != nil {
		return FormatUnknown, nil, fmt.Errorf("read %s: %w", path, err)
	}
	Logger.WithFields(logrus.Fields{"path": path, "format": format}).Debug("read file")
	return format, v, nil
}

// ReadPaletteFile reads a PAL or FPL file from disk
func ReadPaletteFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	p, err := ReadPalette(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	Logger.WithField("path", path).Debug("read palette")
	return p, nil
}

// ReadGraphicFile reads a MAP or FBM file from disk
func ReadGraphicFile(path string) (*Graphic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	g, err := ReadGraphic(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	Logger.WithFields(logrus.Fields{
		"path":   path,
		"frames": g.NumFrames(),
		"depth":  g.Depth(),
	}).Debug("read graphic")
	return g, nil
}

// WriteFile encodes v and replaces path with the result. The output is
// written to a temporary file in the same directory and renamed into place,
// so path is either left untouched or fully written.
func WriteFile(path string, format Format, v any) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	Logger.WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"bytes":  buf.Len(),
	}).Debug("wrote file")
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}
