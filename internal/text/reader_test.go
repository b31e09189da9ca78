package text

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dyuri/fenixconv/internal/model"
)

func TestReadHeader(t *testing.T) {
	input := `[_graphic]
Name=hero
Width=32
Height=48
Depth=16
ID=7
Flags=0x11
Frames=3
[end]
`
	reader := NewReader(strings.NewReader(input))
	desc, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if desc.Name != "hero" {
		t.Errorf("Name = %q, want %q", desc.Name, "hero")
	}
	if desc.Width != 32 || desc.Height != 48 || desc.Depth != model.Depth16 {
		t.Errorf("size = %dx%d@%d, want 32x48@16", desc.Width, desc.Height, desc.Depth)
	}
	if desc.ID != 7 || desc.Flags != 0x11 || desc.Frames != 3 {
		t.Errorf("ID=%d Flags=%#x Frames=%d, want 7 0x11 3", desc.ID, desc.Flags, desc.Frames)
	}
	if desc.Palette != nil {
		t.Error("Palette set without a [_palette] section")
	}
}

func TestReadSequence(t *testing.T) {
	input := `; comment
[_sequence]
Name=walk
Next=2
KeyFrame=0,1,90,100
KeyFrame=1, 0, 180, -1
[end]
[_sequence]
Name=idle
[end]
`
	desc, err := NewReader(strings.NewReader(input)).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(desc.Sequences) != 2 {
		t.Fatalf("Got %d sequences, want 2", len(desc.Sequences))
	}
	walk := desc.Sequences[0]
	if walk.Name != "walk" || walk.Next != 2 || len(walk.KeyFrames) != 2 {
		t.Fatalf("walk = %+v", walk)
	}
	want := model.KeyFrame{Frame: 1, Flags: 0, Angle: 180, Pause: -1}
	if walk.KeyFrames[1] != want {
		t.Errorf("keyframe 1 = %+v, want %+v", walk.KeyFrames[1], want)
	}
	if desc.Sequences[1].Next != model.NoSequence {
		t.Errorf("idle Next = %d, want NoSequence", desc.Sequences[1].Next)
	}
}

func TestReadPaletteAndPoints(t *testing.T) {
	input := `[_palette]
Color=0,#000000
Color=14,#e8e8e8
Color=255,#fcdcfc
[end]
[_point]
Index=3
X=-4
Y=10
[end]
`
	desc, err := NewReader(strings.NewReader(input)).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	c, _ := desc.Palette.Get(255)
	if c != (model.Color{R: 252, G: 220, B: 252}) {
		t.Errorf("color 255 = %v, want {252 220 252}", c)
	}
	if len(desc.ControlPoints) != 1 || desc.ControlPoints[0] != (model.ControlPoint{Index: 3, X: -4, Y: 10}) {
		t.Errorf("control points = %+v", desc.ControlPoints)
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"missing end":      "[_graphic]\nName=x\n",
		"bad number":       "[_graphic]\nWidth=wide\n[end]\n",
		"bad depth":        "[_graphic]\nDepth=24\n[end]\n",
		"short keyframe":   "[_sequence]\nKeyFrame=1,2\n[end]\n",
		"bad color":        "[_palette]\nColor=1,red\n[end]\n",
		"color index":      "[_palette]\nColor=256,#ffffff\n[end]\n",
		"outside sections": "Name=x\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewReader(strings.NewReader(input)).Read(); err == nil {
				t.Error("Read succeeded, want error")
			}
		})
	}
}

func testGraphic(t *testing.T) *model.Graphic {
	t.Helper()
	p := &model.Palette{}
	for i := 0; i < model.PaletteSize; i++ {
		p.Set(i, model.Color{R: byte(i), G: byte(i / 2), B: 255 - byte(i)})
	}
	g, err := model.New(2, 2, model.Depth8, p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g.Name = "hero"
	g.ID = 5
	g.Flags = 3
	g.ControlPoints.Set(0, 1, 1)
	g.ControlPoints.Set(4, -2, 8)
	for i := 0; i < 2; i++ {
		g.AddFrame(model.PixelBuffer{Width: 2, Height: 2, Depth: model.Depth8, Pix: make([]byte, 4), Colors: model.PaletteSize})
	}
	walk := g.AddSequence("walk")
	g.AddKeyFrame(walk, model.KeyFrame{Frame: 0, Pause: 10})
	g.AddKeyFrame(walk, model.KeyFrame{Frame: 1, Angle: -90, Flags: 2})
	g.AddSequence("empty")
	idle := g.AddSequence("idle")
	g.AddKeyFrame(idle, model.KeyFrame{Frame: 1})
	g.SetNext(walk, idle)
	g.SetNext(idle, walk)
	return g
}

func TestRoundTripApply(t *testing.T) {
	src := testGraphic(t)

	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(src); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	desc, err := NewReader(&buf).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if desc.Frames != 2 {
		t.Errorf("Frames = %d, want 2", desc.Frames)
	}

	// Target has the same frames but nothing else
	dst, _ := model.New(2, 2, model.Depth8, &model.Palette{})
	for i := 0; i < 2; i++ {
		dst.AddFrame(model.PixelBuffer{Width: 2, Height: 2, Depth: model.Depth8, Pix: make([]byte, 4), Colors: model.PaletteSize})
	}
	dst.AddSequence("stale")

	if err := desc.Apply(dst); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !model.Equal(src, dst) {
		t.Error("graphic differs after write, read and apply")
	}
}

func TestApplyValidation(t *testing.T) {
	base := func() *Description {
		return &Description{Width: 2, Height: 2, Depth: model.Depth8}
	}

	tests := []struct {
		name string
		desc *Description
		want error
	}{
		{"size mismatch", &Description{Width: 3, Height: 2, Depth: model.Depth8}, model.ErrInvalidFrame},
		{"missing frame", func() *Description {
			d := base()
			d.Sequences = []model.Sequence{{Next: -1, KeyFrames: []model.KeyFrame{{Frame: 2}}}}
			return d
		}(), model.ErrNotFound},
		{"missing sequence", func() *Description {
			d := base()
			d.Sequences = []model.Sequence{{Next: 1}}
			return d
		}(), model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGraphic(t)
			before := g.Sequences()
			if err := tt.desc.Apply(g); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if len(g.Sequences()) != len(before) || g.Name != "hero" {
				t.Error("graphic modified by a failed Apply")
			}
		})
	}

	g16, _ := model.New(2, 2, model.Depth16, nil)
	d := &Description{Width: 2, Height: 2, Depth: model.Depth16, Palette: &model.Palette{}}
	if err := d.Apply(g16); !errors.Is(err, model.ErrUnsupportedDepth) {
		t.Errorf("palette on 16bpp error = %v, want ErrUnsupportedDepth", err)
	}
}

func TestNameQuoting(t *testing.T) {
	names := []string{"plain", " padded ", "two\nlines", "tab\there", `"quoted"`, "caña"}

	for _, name := range names {
		g, _ := model.New(1, 1, model.Depth16, nil)
		g.Name = name
		seq := g.AddSequence(name)
		g.SetNext(seq, seq)

		var buf bytes.Buffer
		if err := NewWriter(&buf).Write(g); err != nil {
			t.Fatalf("Write(%q) failed: %v", name, err)
		}
		desc, err := NewReader(&buf).Read()
		if err != nil {
			t.Fatalf("Read(%q) failed: %v", name, err)
		}
		if desc.Name != name {
			t.Errorf("Name = %q, want %q", desc.Name, name)
		}
		if len(desc.Sequences) != 1 || desc.Sequences[0].Name != name {
			t.Errorf("sequences = %+v, want one named %q", desc.Sequences, name)
		}
	}

	if got := formatName("plain"); got != "plain" {
		t.Errorf("formatName(plain) = %q, want it unquoted", got)
	}
	if _, err := NewReader(strings.NewReader("[_graphic]\nName=\"open\n[end]\n")).Read(); err == nil {
		t.Error("Read accepted an unterminated quoted name")
	}
}
