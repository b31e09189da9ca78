package binary

import (
	"fmt"
	"math"

	"github.com/dyuri/fenixconv/internal/model"
)

// FBM layout constants
const (
	FBMNameSize        = 64
	SequenceNameSize   = 32
	sequenceRecordSize = SequenceNameSize + 3*4
	keyFrameRecordSize = 4 * 4
	pointRecordSize    = 3 * 4
	noNextSequence     = -1
)

// sequenceRecord is one entry of the on-disk sequence table
type sequenceRecord struct {
	name  string
	first int32 // First keyframe, inclusive
	last  int32 // Last keyframe, inclusive; first > last means no keyframes
	next  int32 // Next sequence, or -1
}

// keyFrameRecord is one entry of the on-disk keyframe table
type keyFrameRecord struct {
	frame int32
	angle int32
	flags int32
	pause int32
}

// fbmDescriptor holds the header extension that follows magic and version
type fbmDescriptor struct {
	name         string
	width        int32
	height       int32
	flags        int32
	id           int32
	frames       int // maxFrame + 1
	sequences    int // maxSequence + 1
	keyFrames    int // maxKeyFrame + 1
	maxPoint     int32
	pointEntries int32
}

// ReadFBM reads an animated graphic. Sequence and keyframe tables are staged
// first and linked into the graphic once every frame exists.
func (r *Reader) ReadFBM() (*model.Graphic, error) {
	if err := r.readMagic(fbmMagic, false, "fbm"); err != nil {
		return nil, err
	}
	if err := r.readVersion(); err != nil {
		return nil, fmt.Errorf("read fbm header: %w", err)
	}
	bits, err := r.c.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("read fbm header: %w", err)
	}
	depth, err := model.ParseDepth(int(bits))
	if err != nil {
		return nil, err
	}

	desc, err := r.readFBMDescriptor()
	if err != nil {
		return nil, fmt.Errorf("read fbm descriptor: %w", err)
	}

	var palette *model.Palette
	if depth == model.Depth8 {
		if palette, err = r.readColors(0); err != nil {
			return nil, fmt.Errorf("read fbm palette: %w", err)
		}
	}

	g, err := model.New(int(desc.width), int(desc.height), depth, palette)
	if err != nil {
		return nil, err
	}
	g.Name = desc.name
	g.ID = desc.id
	g.Flags = desc.flags

	sequences, err := r.readSequenceTable(desc.sequences)
	if err != nil {
		return nil, fmt.Errorf("read sequence table: %w", err)
	}
	keyFrames, err := r.readKeyFrameTable(desc.keyFrames)
	if err != nil {
		return nil, fmt.Errorf("read keyframe table: %w", err)
	}

	if err := r.readFBMControlPoints(g, int(desc.pointEntries)); err != nil {
		return nil, fmt.Errorf("read control points: %w", err)
	}

	if err := r.ensure(desc.frames, g.FrameSize(), "frames"); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	for i := 0; i < desc.frames; i++ {
		pix, _ := r.c.ReadBytes(g.FrameSize())
		if _, err := g.AddFrame(frameBuffer(g, pix)); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	if err := linkSequences(g, sequences, keyFrames); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Reader) readFBMDescriptor() (fbmDescriptor, error) {
	var d fbmDescriptor
	var err error

	if d.name, err = r.c.ReadAsciiZ(FBMNameSize); err != nil {
		return d, err
	}
	for _, field := range []*int32{&d.width, &d.height, &d.flags, &d.id} {
		if *field, err = r.c.ReadInt32(); err != nil {
			return d, err
		}
	}
	if d.frames, err = r.readCount("frame"); err != nil {
		return d, err
	}
	if d.sequences, err = r.readCount("sequence"); err != nil {
		return d, err
	}
	if d.keyFrames, err = r.readCount("keyframe"); err != nil {
		return d, err
	}
	if d.maxPoint, err = r.c.ReadInt32(); err != nil {
		return d, err
	}
	if d.pointEntries, err = r.c.ReadInt32(); err != nil {
		return d, err
	}
	if d.pointEntries < 0 {
		return d, model.Errorf(model.ErrOutOfRange, "negative control point count %d", d.pointEntries)
	}
	return d, nil
}

func (r *Reader) readSequenceTable(n int) ([]sequenceRecord, error) {
	if err := r.ensure(n, sequenceRecordSize, "sequences"); err != nil {
		return nil, err
	}
	records := make([]sequenceRecord, n)
	for i := range records {
		rec := &records[i]
		rec.name, _ = r.c.ReadAsciiZ(SequenceNameSize)
		rec.first, _ = r.c.ReadInt32()
		rec.last, _ = r.c.ReadInt32()
		rec.next, _ = r.c.ReadInt32()
	}
	return records, nil
}

func (r *Reader) readKeyFrameTable(n int) ([]keyFrameRecord, error) {
	if err := r.ensure(n, keyFrameRecordSize, "keyframes"); err != nil {
		return nil, err
	}
	records := make([]keyFrameRecord, n)
	for i := range records {
		rec := &records[i]
		rec.frame, _ = r.c.ReadInt32()
		rec.angle, _ = r.c.ReadInt32()
		rec.flags, _ = r.c.ReadInt32()
		rec.pause, _ = r.c.ReadInt32()
	}
	return records, nil
}

func (r *Reader) readFBMControlPoints(g *model.Graphic, n int) error {
	if err := r.ensure(n, pointRecordSize, "control points"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		index, _ := r.c.ReadInt32()
		x, _ := r.c.ReadInt32()
		y, _ := r.c.ReadInt32()
		g.ControlPoints.Set(int(index), int(x), int(y))
	}
	return nil
}

// linkSequences builds the sequence graph from the staged tables. The first
// pass creates every sequence with its keyframes; links are resolved in a
// second pass because a sequence may point at one defined after it.
func linkSequences(g *model.Graphic, sequences []sequenceRecord, keyFrames []keyFrameRecord) error {
	for i, rec := range sequences {
		if rec.first <= rec.last {
			if rec.first < 0 || int(rec.last) >= len(keyFrames) {
				return model.Errorf(model.ErrOutOfRange,
					"sequence %d keyframes [%d,%d] outside table of %d", i, rec.first, rec.last, len(keyFrames))
			}
		}

		seq := g.AddSequence(rec.name)
		for j := int(rec.first); j <= int(rec.last); j++ {
			kf := keyFrames[j]
			if kf.frame < 0 || int(kf.frame) >= g.NumFrames() {
				return model.Errorf(model.ErrOutOfRange,
					"keyframe %d references frame %d of %d", j, kf.frame, g.NumFrames())
			}
			err := g.AddKeyFrame(seq, model.KeyFrame{
				Frame: int(kf.frame),
				Flags: kf.flags,
				Angle: kf.angle,
				Pause: kf.pause,
			})
			if err != nil {
				return err
			}
		}
	}

	for i, rec := range sequences {
		if rec.next == noNextSequence {
			continue
		}
		if rec.next < 0 || int(rec.next) >= len(sequences) {
			return model.Errorf(model.ErrOutOfRange,
				"sequence %d links to sequence %d of %d", i, rec.next, len(sequences))
		}
		if err := g.SetNext(i, int(rec.next)); err != nil {
			return err
		}
	}
	return nil
}

// flattenSequences turns the sequence graph into the on-disk tables. Each
// sequence owns a contiguous run of keyframes; an empty sequence gets
// first = last + 1.
func flattenSequences(g *model.Graphic) ([]sequenceRecord, []keyFrameRecord) {
	sequences := g.Sequences()
	seqRecords := make([]sequenceRecord, len(sequences))
	kfRecords := make([]keyFrameRecord, 0, g.NumKeyFrames())

	for i, seq := range sequences {
		first := int32(len(kfRecords))
		for _, kf := range seq.KeyFrames {
			kfRecords = append(kfRecords, keyFrameRecord{
				frame: int32(kf.Frame),
				angle: kf.Angle,
				flags: kf.Flags,
				pause: kf.Pause,
			})
		}
		seqRecords[i] = sequenceRecord{
			name:  seq.Name,
			first: first,
			last:  int32(len(kfRecords)) - 1,
			next:  int32(seq.Next),
		}
	}
	return seqRecords, kfRecords
}

// WriteFBM writes an animated graphic. Every sequence link is written as
// the index of its target.
func (w *Writer) WriteFBM(g *model.Graphic) error {
	if g.Width() > math.MaxInt32 || g.Height() > math.MaxInt32 {
		return model.Errorf(model.ErrOutOfRange, "dimensions %dx%d exceed 32 bits", g.Width(), g.Height())
	}
	sequences, keyFrames := flattenSequences(g)
	points := g.ControlPoints.All()

	maxPoint := int32(0)
	if len(points) > 0 {
		maxPoint = int32(points[len(points)-1].Index)
	}

	b := NewBuilder()
	writeHeader(b, fbmMagic, g.Depth())

	if err := b.WriteAsciiZ(g.Name, FBMNameSize); err != nil {
		return err
	}
	b.WriteInt32(int32(g.Width()))
	b.WriteInt32(int32(g.Height()))
	b.WriteInt32(g.Flags)
	b.WriteInt32(g.ID)
	b.WriteInt32(int32(g.NumFrames() - 1))
	b.WriteInt32(int32(len(sequences) - 1))
	b.WriteInt32(int32(len(keyFrames) - 1))
	b.WriteInt32(maxPoint)
	b.WriteInt32(int32(len(points)))

	if g.Depth() == model.Depth8 {
		writeColors(b, g.Palette(), 0)
	}

	for _, rec := range sequences {
		if err := b.WriteAsciiZ(rec.name, SequenceNameSize); err != nil {
			return err
		}
		b.WriteInt32(rec.first)
		b.WriteInt32(rec.last)
		b.WriteInt32(rec.next)
	}

	for _, rec := range keyFrames {
		b.WriteInt32(rec.frame)
		b.WriteInt32(rec.angle)
		b.WriteInt32(rec.flags)
		b.WriteInt32(rec.pause)
	}

	for _, cp := range points {
		if !fitsInt32(cp.Index) || !fitsInt32(cp.X) || !fitsInt32(cp.Y) {
			return model.Errorf(model.ErrOutOfRange, "control point %d (%d,%d) exceeds 32 bits", cp.Index, cp.X, cp.Y)
		}
		b.WriteInt32(int32(cp.Index))
		b.WriteInt32(int32(cp.X))
		b.WriteInt32(int32(cp.Y))
	}

	for i := 0; i < g.NumFrames(); i++ {
		frame, _ := g.Frame(i)
		b.WriteBytes(frame.Bytes())
	}
	return b.Compress(w.w)
}

func fitsInt32(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}
