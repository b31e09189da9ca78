package fenixconv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sprite(t *testing.T) *Graphic {
	t.Helper()
	p := &Palette{}
	p.Set(1, Color{R: 255})
	g, err := New(2, 2, Depth8, p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g.Name = "sprite"
	for i := 0; i < 2; i++ {
		if _, err := g.AddFrame(PixelBuffer{Width: 2, Height: 2, Depth: Depth8, Pix: []byte{byte(i), 1, 1, 0}, Colors: 256}); err != nil {
			t.Fatalf("AddFrame failed: %v", err)
		}
	}
	walk := g.AddSequence("walk")
	g.AddKeyFrame(walk, KeyFrame{Frame: 0, Pause: 5})
	g.AddKeyFrame(walk, KeyFrame{Frame: 1, Pause: 5})
	g.SetNext(walk, walk)
	return g
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.fbm")
	src := sprite(t)

	if err := WriteFile(path, FormatFBM, src); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadGraphicFile(path)
	if err != nil {
		t.Fatalf("ReadGraphicFile failed: %v", err)
	}
	if !Equal(src, got) {
		t.Error("graphic differs after write and read")
	}

	format, v, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if format != FormatFBM {
		t.Errorf("format = %v, want fbm", format)
	}
	if _, ok := v.(*Graphic); !ok {
		t.Errorf("ReadFile value = %T, want *Graphic", v)
	}
}

func TestWriteFileKeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.map")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Two frames cannot be stored as a static graphic
	err := WriteFile(path, FormatMAP, sprite(t))
	if !errors.Is(err, ErrUnsupportedFeature) {
		t.Fatalf("error = %v, want ErrUnsupportedFeature", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Errorf("existing file changed to %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Got %d files in output directory, want 1", len(entries))
	}
}

func TestPaletteFromGraphic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.fpl")
	if err := WriteFile(path, FormatFPL, sprite(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	p, err := ReadPaletteFile(path)
	if err != nil {
		t.Fatalf("ReadPaletteFile failed: %v", err)
	}
	if c, _ := p.Get(1); c != (Color{R: 255}) {
		t.Errorf("color 1 = %v, want {255 0 0}", c)
	}
}

func TestReadDetectsKind(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePAL(&buf, &Palette{}); err != nil {
		t.Fatalf("WritePAL failed: %v", err)
	}
	if _, err := ReadGraphic(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("ReadGraphic(pal) error = %v, want ErrFormatMismatch", err)
	}
	if _, err := ReadPalette(bytes.NewReader(buf.Bytes())); err != nil {
		t.Errorf("ReadPalette failed: %v", err)
	}
	if _, err := ReadPalette(strings.NewReader("not a palette")); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("ReadPalette(garbage) error = %v, want ErrFormatMismatch", err)
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	src := sprite(t)
	var buf bytes.Buffer
	if err := WriteDescription(&buf, src); err != nil {
		t.Fatalf("WriteDescription failed: %v", err)
	}
	desc, err := ReadDescription(&buf)
	if err != nil {
		t.Fatalf("ReadDescription failed: %v", err)
	}

	dst := sprite(t)
	dst.ResetSequences()
	dst.Name = "other"
	if err := desc.Apply(dst); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !Equal(src, dst) {
		t.Error("graphic differs after applying its own description")
	}
}

func TestValidate(t *testing.T) {
	if issues := Validate(sprite(t)); len(issues) != 0 {
		t.Errorf("clean sprite has issues: %v", issues)
	}

	g := sprite(t)
	g.Name = "sprïte"
	g.AddSequence("empty")
	g.AddFrame(PixelBuffer{Width: 2, Height: 2, Depth: Depth8, Pix: make([]byte, 4), Colors: 256})

	want := map[string]bool{
		"Name":       false,
		"Sequence 1": false,
		"Frame 2":    false,
	}
	for _, issue := range Validate(g) {
		if issue.Level != LevelWarning {
			t.Errorf("unexpected %s: %v", issue.Level, issue)
		}
		if _, ok := want[issue.Field]; ok {
			want[issue.Field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("no warning for %s", field)
		}
	}
}

func TestParseFormatReexport(t *testing.T) {
	f, err := ParseFormat(".M16")
	if err != nil || f != FormatMAP {
		t.Errorf("ParseFormat(.M16) = %v, %v, want map", f, err)
	}
}

func TestFrameImage(t *testing.T) {
	g := sprite(t)
	m, err := FrameImage(g, 1)
	if err != nil {
		t.Fatalf("FrameImage failed: %v", err)
	}
	idx, err := AddImage(g, m)
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}
	a, _ := g.Frame(1)
	b, _ := g.Frame(idx)
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("frame added from image differs from its source")
	}
	if _, err := FrameImage(g, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("FrameImage(9) error = %v, want ErrNotFound", err)
	}
}

func TestValidateUnsetPoint(t *testing.T) {
	g := sprite(t)
	g.ControlPoints.Set(1, -1, -1)
	issues := Validate(g)
	if len(issues) != 1 || issues[0].Field != "Control point 1" {
		t.Errorf("issues = %v, want one warning for control point 1", issues)
	}
}
