package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/dyuri/fenixconv/internal/model"
	"github.com/lucasb-eyer/go-colorful"
)

// Writer handles writing graphic descriptions in text format
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a new text format writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write outputs everything but the pixel data of g
func (w *Writer) Write(g *model.Graphic) error {
	fmt.Fprintf(w.w, "; fenixconv graphic description\n")
	fmt.Fprintf(w.w, "; KeyFrame=frame,flags,angle,pause\n\n")

	w.writeHeader(g)

	if g.Palette() != nil {
		if err := w.WritePalette(g.Palette()); err != nil {
			return fmt.Errorf("write palette: %w", err)
		}
	}

	for _, cp := range g.ControlPoints.All() {
		w.writeControlPoint(cp)
	}

	for _, seq := range g.Sequences() {
		w.writeSequence(seq)
	}

	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush description: %w", err)
	}
	return nil
}

// writeHeader writes the [_graphic] section
func (w *Writer) writeHeader(g *model.Graphic) {
	fmt.Fprintf(w.w, "[_graphic]\n")
	fmt.Fprintf(w.w, "Name=%s\n", formatName(g.Name))
	fmt.Fprintf(w.w, "Width=%d\n", g.Width())
	fmt.Fprintf(w.w, "Height=%d\n", g.Height())
	fmt.Fprintf(w.w, "Depth=%d\n", g.Depth())
	fmt.Fprintf(w.w, "ID=%d\n", g.ID)
	fmt.Fprintf(w.w, "Flags=%d\n", g.Flags)
	fmt.Fprintf(w.w, "Frames=%d\n", g.NumFrames())
	fmt.Fprintf(w.w, "[end]\n\n")
}

// WritePalette writes a [_palette] section. It can be used on its own to
// describe a standalone palette.
func (w *Writer) WritePalette(p *model.Palette) error {
	fmt.Fprintf(w.w, "[_palette]\n")
	for i, c := range p.Colors() {
		fmt.Fprintf(w.w, "Color=%d,%s\n", i, colorToHex(c))
	}
	fmt.Fprintf(w.w, "[end]\n\n")
	return w.w.Flush()
}

// formatName writes names as is unless they would not read back
// unchanged, in which case they are quoted
func formatName(name string) string {
	if name != strings.TrimSpace(name) || strings.HasPrefix(name, `"`) ||
		strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return strconv.Quote(name)
	}
	return name
}

func colorToHex(c model.Color) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// writeControlPoint writes a [_point] section
func (w *Writer) writeControlPoint(cp model.ControlPoint) {
	fmt.Fprintf(w.w, "[_point]\n")
	fmt.Fprintf(w.w, "Index=%d\n", cp.Index)
	fmt.Fprintf(w.w, "X=%d\n", cp.X)
	fmt.Fprintf(w.w, "Y=%d\n", cp.Y)
	fmt.Fprintf(w.w, "[end]\n\n")
}

// writeSequence writes a [_sequence] section
func (w *Writer) writeSequence(seq model.Sequence) {
	fmt.Fprintf(w.w, "[_sequence]\n")
	fmt.Fprintf(w.w, "Name=%s\n", formatName(seq.Name))
	fmt.Fprintf(w.w, "Next=%d\n", seq.Next)
	for _, kf := range seq.KeyFrames {
		fmt.Fprintf(w.w, "KeyFrame=%d,%d,%d,%d\n", kf.Frame, kf.Flags, kf.Angle, kf.Pause)
	}
	fmt.Fprintf(w.w, "[end]\n\n")
}
