package binary

import (
	"fmt"

	"github.com/dyuri/fenixconv/internal/model"
)

// gammaFill is written over the reserved PAL/MAP block, which legacy tools
// reject when zeroed
const gammaFill = 0x01

// ReadPAL reads a legacy PAL palette. Colors are stored as 6-bit values and
// scaled by 4. The trailing gamma block is not needed and not read.
func (r *Reader) ReadPAL() (*model.Palette, error) {
	if err := r.readMagic(palMagic, true, "pal"); err != nil {
		return nil, err
	}
	p, err := r.readColors(2)
	if err != nil {
		return nil, fmt.Errorf("read pal colors: %w", err)
	}
	return p, nil
}

// WritePAL writes a legacy PAL palette. The two low bits of every component
// are lost.
func (w *Writer) WritePAL(p *model.Palette) error {
	b := NewBuilder()
	b.WriteBytes(palMagic)
	writeColors(b, p, 2)
	b.Fill(gammaFill, gammaSize)
	return b.Compress(w.w)
}

// ReadFPL reads a versioned FPL palette
func (r *Reader) ReadFPL() (*model.Palette, error) {
	if err := r.readMagic(fplMagic, false, "fpl"); err != nil {
		return nil, err
	}
	if err := r.readVersion(); err != nil {
		return nil, fmt.Errorf("read fpl header: %w", err)
	}
	depth, err := r.c.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("read fpl header: %w", err)
	}
	if model.Depth(depth) != model.Depth8 {
		return nil, model.Errorf(model.ErrUnsupportedDepth, "fpl depth %d, want 8", depth)
	}
	p, err := r.readColors(0)
	if err != nil {
		return nil, fmt.Errorf("read fpl colors: %w", err)
	}
	return p, nil
}

// WriteFPL writes a versioned FPL palette
func (w *Writer) WriteFPL(p *model.Palette) error {
	b := NewBuilder()
	writeHeader(b, fplMagic, model.Depth8)
	writeColors(b, p, 0)
	return b.Compress(w.w)
}
