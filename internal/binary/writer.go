package binary

import (
	"io"

	"github.com/dyuri/fenixconv/internal/model"
)

// Writer handles writing Fenix files. Each Write method stages the complete
// file in memory and only then compresses it to the underlying writer, so a
// validation failure writes nothing.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes v in the given format. v must be a *model.Palette for
// palette formats; graphic formats take a *model.Graphic.
func (w *Writer) Write(format Format, v any) error {
	switch format {
	case FormatPAL, FormatFPL:
		p, err := paletteOf(v)
		if err != nil {
			return err
		}
		if format == FormatPAL {
			return w.WritePAL(p)
		}
		return w.WriteFPL(p)
	case FormatMAP, FormatFBM:
		g, ok := v.(*model.Graphic)
		if !ok {
			return model.Errorf(model.ErrFormatMismatch, "%s needs a graphic, got %T", format, v)
		}
		if format == FormatMAP {
			return w.WriteMAP(g)
		}
		return w.WriteFBM(g)
	}
	return model.Errorf(model.ErrFormatMismatch, "unknown format %s", format)
}

// paletteOf accepts a palette or an indexed graphic's palette
func paletteOf(v any) (*model.Palette, error) {
	switch t := v.(type) {
	case *model.Palette:
		return t, nil
	case *model.Graphic:
		if t.Palette() == nil {
			return nil, model.Errorf(model.ErrUnsupportedDepth, "%dbpp graphic has no palette", t.Depth())
		}
		return t.Palette(), nil
	}
	return nil, model.Errorf(model.ErrFormatMismatch, "cannot write %T as a palette", v)
}

// writeColors appends 256 RGB triples, dividing components by 1<<shift
func writeColors(b *Builder, p *model.Palette, shift uint) {
	for _, c := range p.Colors() {
		b.WriteUint8(c.R >> shift)
		b.WriteUint8(c.G >> shift)
		b.WriteUint8(c.B >> shift)
	}
}

// writeHeader appends a versioned header: magic, version and depth
func writeHeader(b *Builder, magic []byte, depth model.Depth) {
	b.WriteBytes(magic)
	b.WriteInt16(versionMajor)
	b.WriteInt16(versionMinor)
	b.WriteInt32(int32(depth))
}
