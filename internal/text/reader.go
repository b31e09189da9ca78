package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyuri/fenixconv/internal/model"
	"github.com/lucasb-eyer/go-colorful"
)

// Description is a parsed graphic description: everything but pixel data
type Description struct {
	Name   string
	ID     int32
	Flags  int32
	Width  int
	Height int
	Depth  model.Depth
	Frames int

	Palette       *model.Palette // nil when the description has no [_palette] section
	ControlPoints []model.ControlPoint
	Sequences     []model.Sequence
}

// Reader handles reading graphic descriptions from text format
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a new text format reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
		line:    0,
	}
}

// Read parses the entire text and returns the description
func (r *Reader) Read() (*Description, error) {
	desc := &Description{}

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if !strings.HasPrefix(line, "[") {
			return nil, fmt.Errorf("line %d: unexpected %q outside a section", r.line, line)
		}

		section := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
		var err error
		switch section {
		case "_graphic":
			err = r.readEntries(desc.setHeader)
		case "_palette":
			if desc.Palette == nil {
				desc.Palette = &model.Palette{}
			}
			err = r.readEntries(desc.setColor)
		case "_point":
			var cp model.ControlPoint
			err = r.readEntries(func(key, value string) error {
				return setPoint(&cp, key, value)
			})
			desc.ControlPoints = append(desc.ControlPoints, cp)
		case "_sequence":
			seq := model.Sequence{Next: model.NoSequence}
			err = r.readEntries(func(key, value string) error {
				return setSequence(&seq, key, value)
			})
			desc.Sequences = append(desc.Sequences, seq)
		case "end":
			continue
		default:
			// Unknown section - skip until [end]
			err = r.readEntries(func(string, string) error { return nil })
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: read [%s]: %w", r.line, section, err)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	return desc, nil
}

// readEntries feeds every key=value pair of the current section to set,
// until [end]
func (r *Reader) readEntries(set func(key, value string) error) error {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[end]") {
			return nil
		}

		// Parse key=value pairs
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := set(key, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return fmt.Errorf("missing [end]")
}

// parseName accepts a plain name or a Go-quoted one
func parseName(value string) (string, error) {
	if strings.HasPrefix(value, `"`) {
		return strconv.Unquote(value)
	}
	return value, nil
}

func parseInt32(value string) (int32, error) {
	v, err := strconv.ParseInt(value, 0, 32)
	return int32(v), err
}

func parseInt(value string) (int, error) {
	v, err := strconv.ParseInt(value, 0, 64)
	return int(v), err
}

func (d *Description) setHeader(key, value string) error {
	var err error
	switch key {
	case "Name":
		d.Name, err = parseName(value)
	case "Width":
		d.Width, err = parseInt(value)
	case "Height":
		d.Height, err = parseInt(value)
	case "Depth":
		var bits int
		if bits, err = parseInt(value); err == nil {
			d.Depth, err = model.ParseDepth(bits)
		}
	case "ID":
		d.ID, err = parseInt32(value)
	case "Flags":
		d.Flags, err = parseInt32(value)
	case "Frames":
		d.Frames, err = parseInt(value)
	}
	return err
}

// setColor parses "index,#rrggbb"
func (d *Description) setColor(key, value string) error {
	if key != "Color" {
		return nil
	}
	idx, hex, ok := strings.Cut(value, ",")
	if !ok {
		return fmt.Errorf("want index,#rrggbb, got %q", value)
	}
	i, err := parseInt(strings.TrimSpace(idx))
	if err != nil {
		return err
	}
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return err
	}
	r, g, b := c.RGB255()
	return d.Palette.Set(i, model.Color{R: r, G: g, B: b})
}

func setPoint(cp *model.ControlPoint, key, value string) error {
	var err error
	switch key {
	case "Index":
		cp.Index, err = parseInt(value)
	case "X":
		cp.X, err = parseInt(value)
	case "Y":
		cp.Y, err = parseInt(value)
	}
	return err
}

// setSequence handles Name, Next and repeated KeyFrame=frame,flags,angle,pause
func setSequence(seq *model.Sequence, key, value string) error {
	var err error
	switch key {
	case "Name":
		seq.Name, err = parseName(value)
	case "Next":
		seq.Next, err = parseInt(value)
	case "KeyFrame":
		fields := strings.Split(value, ",")
		if len(fields) != 4 {
			return fmt.Errorf("want frame,flags,angle,pause, got %q", value)
		}
		var kf model.KeyFrame
		if kf.Frame, err = parseInt(strings.TrimSpace(fields[0])); err != nil {
			return err
		}
		for i, dst := range []*int32{&kf.Flags, &kf.Angle, &kf.Pause} {
			if *dst, err = parseInt32(strings.TrimSpace(fields[i+1])); err != nil {
				return err
			}
		}
		seq.KeyFrames = append(seq.KeyFrames, kf)
	}
	return err
}

// Apply replaces the descriptor, palette, control points and sequence graph
// of g with the description. Dimensions and depth must match g. Every
// reference is checked before g is modified.
func (d *Description) Apply(g *model.Graphic) error {
	if d.Width != g.Width() || d.Height != g.Height() || d.Depth != g.Depth() {
		return model.Errorf(model.ErrInvalidFrame, "description is %dx%d@%d, graphic is %dx%d@%d",
			d.Width, d.Height, d.Depth, g.Width(), g.Height(), g.Depth())
	}
	if d.Palette != nil && g.Palette() == nil {
		return model.Errorf(model.ErrUnsupportedDepth, "%dbpp graphic cannot take a palette", g.Depth())
	}

	for i, seq := range d.Sequences {
		if seq.Next != model.NoSequence && (seq.Next < 0 || seq.Next >= len(d.Sequences)) {
			return model.Errorf(model.ErrNotFound, "sequence %d links to missing sequence %d", i, seq.Next)
		}
		for j, kf := range seq.KeyFrames {
			if kf.Frame < 0 || kf.Frame >= g.NumFrames() {
				return model.Errorf(model.ErrNotFound, "sequence %d keyframe %d references missing frame %d", i, j, kf.Frame)
			}
		}
	}

	g.Name = d.Name
	g.ID = d.ID
	g.Flags = d.Flags

	if d.Palette != nil {
		for i, c := range d.Palette.Colors() {
			g.Palette().Set(i, c)
		}
	}

	g.ControlPoints.Clear()
	for _, cp := range d.ControlPoints {
		g.ControlPoints.Set(cp.Index, cp.X, cp.Y)
	}

	g.ResetSequences()
	for _, seq := range d.Sequences {
		idx := g.AddSequence(seq.Name)
		for _, kf := range seq.KeyFrames {
			if err := g.AddKeyFrame(idx, kf); err != nil {
				return err
			}
		}
	}
	for i, seq := range d.Sequences {
		if err := g.SetNext(i, seq.Next); err != nil {
			return err
		}
	}
	return nil
}
