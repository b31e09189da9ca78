package model

import (
	"bytes"
	"encoding/binary"
)

// Graphic is the unified in-memory representation of every graphic format.
// A static graphic is simply one with a single frame, sequence and keyframe.
//
// Frames are kept in an arena owned by the graphic; keyframes refer to them
// by position, and sequences refer to each other the same way.
type Graphic struct {
	Name          string
	ID            int32 // Slot hint used by graphic collections
	Flags         int32 // Opaque bitfield
	ControlPoints ControlPointSet

	width     int
	height    int
	depth     Depth
	palette   *Palette
	frames    []*Frame
	sequences []*sequence
}

// NoSequence marks a sequence without a successor
const NoSequence = -1

// Depth defines the pixel encoding of a graphic
type Depth int

const (
	Depth8  Depth = 8  // 8-bit palette indexed
	Depth16 Depth = 16 // 16-bit 565 direct color
)

// ParseDepth converts an on-disk depth value
func ParseDepth(bits int) (Depth, error) {
	switch Depth(bits) {
	case Depth8, Depth16:
		return Depth(bits), nil
	}
	return 0, Errorf(ErrUnsupportedDepth, "unsupported depth %d", bits)
}

// BytesPerPixel returns the storage size of one pixel
func (d Depth) BytesPerPixel() int {
	if d == Depth16 {
		return 2
	}
	return 1
}

// Frame is one immutable pixel buffer of a graphic
type Frame struct {
	width  int
	height int
	depth  Depth
	pix    []byte
}

// Bytes returns the raw pixel data: one palette index per pixel for 8bpp,
// one little-endian 565 word per pixel for 16bpp. The slice must not be
// modified.
func (f *Frame) Bytes() []byte { return f.pix }

// Depth returns the pixel encoding of the frame
func (f *Frame) Depth() Depth { return f.depth }

// Index returns the palette index of an 8bpp pixel
func (f *Frame) Index(x, y int) byte {
	return f.pix[y*f.width+x]
}

// RGB565 returns the 565 word of a 16bpp pixel
func (f *Frame) RGB565(x, y int) uint16 {
	off := (y*f.width + x) * 2
	return binary.LittleEndian.Uint16(f.pix[off:])
}

// PixelBuffer is a candidate frame offered to Graphic.AddFrame
type PixelBuffer struct {
	Width  int
	Height int
	Depth  Depth
	Pix    []byte
	Colors int // Size of the color table carried by an 8bpp buffer
}

// KeyFrame is one animation step
type KeyFrame struct {
	Frame int // Index into the graphic's frames
	Flags int32
	Angle int32
	Pause int32
}

type sequence struct {
	name      string
	keyFrames []KeyFrame
	next      int
}

// Sequence is a snapshot of one animation sequence
type Sequence struct {
	Name      string
	KeyFrames []KeyFrame
	Next      int // Index of the following sequence, or NoSequence
}

// New creates an empty graphic. Indexed graphics require a palette and
// direct color graphics must not have one. The graphic keeps its own copy
// of the palette.
func New(width, height int, depth Depth, palette *Palette) (*Graphic, error) {
	if width <= 0 || height <= 0 {
		return nil, Errorf(ErrOutOfRange, "invalid dimensions %dx%d", width, height)
	}
	switch depth {
	case Depth8:
		if palette == nil {
			return nil, Errorf(ErrUnsupportedDepth, "8bpp graphic requires a palette")
		}
	case Depth16:
		if palette != nil {
			return nil, Errorf(ErrUnsupportedDepth, "16bpp graphic cannot have a palette")
		}
	default:
		return nil, Errorf(ErrUnsupportedDepth, "unsupported depth %d", depth)
	}
	if palette != nil {
		palette = palette.Clone()
	}
	return &Graphic{
		width:   width,
		height:  height,
		depth:   depth,
		palette: palette,
	}, nil
}

// Width returns the width of every frame
func (g *Graphic) Width() int { return g.width }

// Height returns the height of every frame
func (g *Graphic) Height() int { return g.height }

// Depth returns the pixel encoding
func (g *Graphic) Depth() Depth { return g.depth }

// Palette returns the palette of an indexed graphic, nil otherwise. The
// palette may be modified in place.
func (g *Graphic) Palette() *Palette { return g.palette }

// FrameSize returns the size in bytes of one frame buffer
func (g *Graphic) FrameSize() int {
	return g.width * g.height * g.depth.BytesPerPixel()
}

// AddFrame admits a pixel buffer as a new frame and returns its index. The
// buffer must match the graphic's dimensions and depth; 8bpp buffers must
// carry a 256 color table. The pixels are copied.
func (g *Graphic) AddFrame(buf PixelBuffer) (int, error) {
	if buf.Width != g.width || buf.Height != g.height {
		return 0, Errorf(ErrInvalidFrame, "frame is %dx%d, graphic is %dx%d",
			buf.Width, buf.Height, g.width, g.height)
	}
	if buf.Depth != g.depth {
		return 0, Errorf(ErrInvalidFrame, "frame depth %d does not match graphic depth %d", buf.Depth, g.depth)
	}
	if g.depth == Depth8 && buf.Colors != PaletteSize {
		return 0, Errorf(ErrInvalidFrame, "indexed frame has %d colors, want %d", buf.Colors, PaletteSize)
	}
	if len(buf.Pix) != g.FrameSize() {
		return 0, Errorf(ErrInvalidFrame, "frame has %d bytes, want %d", len(buf.Pix), g.FrameSize())
	}

	g.frames = append(g.frames, &Frame{
		width:  g.width,
		height: g.height,
		depth:  g.depth,
		pix:    bytes.Clone(buf.Pix),
	})
	return len(g.frames) - 1, nil
}

// Frame returns the frame at index
func (g *Graphic) Frame(index int) (*Frame, error) {
	if index < 0 || index >= len(g.frames) {
		return nil, Errorf(ErrNotFound, "frame %d not found", index)
	}
	return g.frames[index], nil
}

// NumFrames returns the number of frames
func (g *Graphic) NumFrames() int { return len(g.frames) }

// AddSequence appends an empty sequence and returns its index
func (g *Graphic) AddSequence(name string) int {
	g.sequences = append(g.sequences, &sequence{name: name, next: NoSequence})
	return len(g.sequences) - 1
}

func (g *Graphic) sequence(index int) (*sequence, error) {
	if index < 0 || index >= len(g.sequences) {
		return nil, Errorf(ErrNotFound, "sequence %d not found", index)
	}
	return g.sequences[index], nil
}

// AddKeyFrame appends a keyframe to a sequence. The keyframe's frame must
// exist.
func (g *Graphic) AddKeyFrame(seq int, kf KeyFrame) error {
	s, err := g.sequence(seq)
	if err != nil {
		return err
	}
	if kf.Frame < 0 || kf.Frame >= len(g.frames) {
		return Errorf(ErrNotFound, "keyframe references missing frame %d", kf.Frame)
	}
	s.keyFrames = append(s.keyFrames, kf)
	return nil
}

// SetNext links seq to the sequence that follows it. NoSequence clears the
// link.
func (g *Graphic) SetNext(seq, next int) error {
	s, err := g.sequence(seq)
	if err != nil {
		return err
	}
	if next != NoSequence {
		if _, err := g.sequence(next); err != nil {
			return err
		}
	}
	s.next = next
	return nil
}

// SetSequenceName renames a sequence
func (g *Graphic) SetSequenceName(seq int, name string) error {
	s, err := g.sequence(seq)
	if err != nil {
		return err
	}
	s.name = name
	return nil
}

// Sequence returns a snapshot of the sequence at index
func (g *Graphic) Sequence(index int) (Sequence, error) {
	s, err := g.sequence(index)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{
		Name:      s.name,
		KeyFrames: append([]KeyFrame(nil), s.keyFrames...),
		Next:      s.next,
	}, nil
}

// Sequences returns a snapshot of every sequence in order
func (g *Graphic) Sequences() []Sequence {
	out := make([]Sequence, len(g.sequences))
	for i := range g.sequences {
		out[i], _ = g.Sequence(i)
	}
	return out
}

// NumSequences returns the number of sequences
func (g *Graphic) NumSequences() int { return len(g.sequences) }

// NumKeyFrames returns the number of keyframes across all sequences
func (g *Graphic) NumKeyFrames() int {
	n := 0
	for _, s := range g.sequences {
		n += len(s.keyFrames)
	}
	return n
}

// ResetSequences removes every sequence. Frames are kept.
func (g *Graphic) ResetSequences() {
	g.sequences = nil
}

// Equal reports whether two graphics are structurally identical: same
// descriptor, palette, control points, frame pixels and sequence graph.
func Equal(a, b *Graphic) bool {
	if a.Name != b.Name || a.ID != b.ID || a.Flags != b.Flags ||
		a.width != b.width || a.height != b.height || a.depth != b.depth {
		return false
	}
	if !a.palette.Equal(b.palette) || !a.ControlPoints.Equal(&b.ControlPoints) {
		return false
	}
	if len(a.frames) != len(b.frames) || len(a.sequences) != len(b.sequences) {
		return false
	}
	for i := range a.frames {
		if !bytes.Equal(a.frames[i].pix, b.frames[i].pix) {
			return false
		}
	}
	for i := range a.sequences {
		sa, sb := a.sequences[i], b.sequences[i]
		if sa.name != sb.name || sa.next != sb.next || len(sa.keyFrames) != len(sb.keyFrames) {
			return false
		}
		for j := range sa.keyFrames {
			if sa.keyFrames[j] != sb.keyFrames[j] {
				return false
			}
		}
	}
	return true
}
