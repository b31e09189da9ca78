package binary

import (
	"fmt"
	"math"

	"github.com/dyuri/fenixconv/internal/model"
)

// MAP layout constants
const (
	MapNameSize   = 32
	mapCountMask  = 0x0FFF // Low 12 bits of the control point field
	mapFlagsMask  = 0xF000 // Bit 12 marks (unsupported) map animation
	mapMaxPoints  = mapCountMask
	mapMaxSide    = math.MaxUint16
	mapUnsetCoord = -1
)

// MapSequenceName is the name of the sequence synthesized for static graphics
const MapSequenceName = "Map sequence"

// ReadMAP reads a static 8bpp (map) or 16bpp (m16) graphic. The result has
// one frame, one sequence and one keyframe pointing at the frame.
func (r *Reader) ReadMAP() (*model.Graphic, error) {
	var depth model.Depth
	switch prefix := r.c.Peek(len(mapMagic)); {
	case hasMagic(prefix, mapMagic, true):
		depth = model.Depth8
	case hasMagic(prefix, m16Magic, true):
		depth = model.Depth16
	default:
		return nil, model.Errorf(model.ErrFormatMismatch, "not a valid map file")
	}
	r.c.Skip(len(mapMagic))

	width, err := r.c.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("read map header: %w", err)
	}
	height, err := r.c.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("read map header: %w", err)
	}
	id, err := r.c.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("read map header: %w", err)
	}
	name, err := r.c.ReadAsciiZ(MapNameSize)
	if err != nil {
		return nil, fmt.Errorf("read map header: %w", err)
	}

	var palette *model.Palette
	if depth == model.Depth8 {
		if palette, err = r.readColors(2); err != nil {
			return nil, fmt.Errorf("read map palette: %w", err)
		}
		if err := r.c.Skip(gammaSize); err != nil {
			return nil, fmt.Errorf("skip map gamma block: %w", err)
		}
	}

	g, err := model.New(int(width), int(height), depth, palette)
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.ID = id

	if err := r.readMapControlPoints(g); err != nil {
		return nil, fmt.Errorf("read map control points: %w", err)
	}

	pix, err := r.c.ReadBytes(g.FrameSize())
	if err != nil {
		return nil, fmt.Errorf("read map pixels: %w", err)
	}
	if _, err := g.AddFrame(frameBuffer(g, pix)); err != nil {
		return nil, err
	}

	seq := g.AddSequence(MapSequenceName)
	if err := g.AddKeyFrame(seq, model.KeyFrame{Frame: 0}); err != nil {
		return nil, err
	}
	return g, nil
}

// readMapControlPoints reads the packed control point block. Entry i is
// control point i; (-1,-1) marks an unset entry.
func (r *Reader) readMapControlPoints(g *model.Graphic) error {
	raw, err := r.c.ReadUint16()
	if err != nil {
		return err
	}
	if raw&mapFlagsMask != 0 {
		return model.Errorf(model.ErrUnsupportedFeature, "map animation is not supported (flags %#04x)", raw)
	}

	count := int(raw & mapCountMask)
	if err := r.ensure(count, 4, "control points"); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		x, _ := r.c.ReadInt16()
		y, _ := r.c.ReadInt16()
		if x == mapUnsetCoord && y == mapUnsetCoord {
			continue
		}
		g.ControlPoints.Set(i, int(x), int(y))
	}
	return nil
}

// frameBuffer wraps raw pixels read from a file of g's depth
func frameBuffer(g *model.Graphic, pix []byte) model.PixelBuffer {
	buf := model.PixelBuffer{
		Width:  g.Width(),
		Height: g.Height(),
		Depth:  g.Depth(),
		Pix:    pix,
	}
	if g.Depth() == model.Depth8 {
		buf.Colors = model.PaletteSize
	}
	return buf
}

// WriteMAP writes a static graphic. Only single frame graphics can be
// stored; sequences and flags have no representation in the format.
func (w *Writer) WriteMAP(g *model.Graphic) error {
	if g.NumFrames() != 1 {
		return model.Errorf(model.ErrUnsupportedFeature, "map files hold exactly one frame, graphic has %d", g.NumFrames())
	}
	if g.Width() > mapMaxSide || g.Height() > mapMaxSide {
		return model.Errorf(model.ErrOutOfRange, "map dimensions %dx%d exceed %d", g.Width(), g.Height(), mapMaxSide)
	}

	b := NewBuilder()
	if g.Depth() == model.Depth8 {
		b.WriteBytes(mapMagic)
	} else {
		b.WriteBytes(m16Magic)
	}
	b.WriteUint16(uint16(g.Width()))
	b.WriteUint16(uint16(g.Height()))
	b.WriteInt32(g.ID)
	if err := b.WriteAsciiZ(g.Name, MapNameSize); err != nil {
		return err
	}

	if g.Depth() == model.Depth8 {
		writeColors(b, g.Palette(), 2)
		b.Fill(gammaFill, gammaSize)
	}

	if err := writeMapControlPoints(b, &g.ControlPoints); err != nil {
		return err
	}

	frame, _ := g.Frame(0)
	b.WriteBytes(frame.Bytes())
	return b.Compress(w.w)
}

// writeMapControlPoints writes the positional control point block, filling
// gaps with (-1,-1)
func writeMapControlPoints(b *Builder, set *model.ControlPointSet) error {
	points := set.All()
	count := 0
	if len(points) > 0 {
		if points[0].Index < 0 {
			return model.Errorf(model.ErrOutOfRange, "negative control point index %d", points[0].Index)
		}
		count = points[len(points)-1].Index + 1
	}
	if count > mapMaxPoints {
		return model.Errorf(model.ErrOutOfRange, "%d control points exceed the map limit of %d", count, mapMaxPoints)
	}

	b.WriteUint16(uint16(count))
	next := 0
	for i := 0; i < count; i++ {
		if next < len(points) && points[next].Index == i {
			cp := points[next]
			next++
			if !fitsInt16(cp.X) || !fitsInt16(cp.Y) {
				return model.Errorf(model.ErrOutOfRange, "control point %d (%d,%d) exceeds 16 bits", cp.Index, cp.X, cp.Y)
			}
			if cp.X == mapUnsetCoord && cp.Y == mapUnsetCoord {
				return model.Errorf(model.ErrOutOfRange, "control point %d at (-1,-1) reads back as unset", cp.Index)
			}
			b.WriteInt16(int16(cp.X))
			b.WriteInt16(int16(cp.Y))
			continue
		}
		b.WriteInt16(mapUnsetCoord)
		b.WriteInt16(mapUnsetCoord)
	}
	return nil
}

func fitsInt16(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}
