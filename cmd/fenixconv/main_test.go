package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyuri/fenixconv/pkg/fenixconv"
)

func writeSprite(t *testing.T, path string) *fenixconv.Graphic {
	t.Helper()
	p := &fenixconv.Palette{}
	p.Set(7, fenixconv.Color{G: 200})
	g, err := fenixconv.New(2, 1, fenixconv.Depth8, p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	g.AddFrame(fenixconv.PixelBuffer{Width: 2, Height: 1, Depth: fenixconv.Depth8, Pix: []byte{7, 0}, Colors: 256})
	seq := g.AddSequence("still")
	g.AddKeyFrame(seq, fenixconv.KeyFrame{Frame: 0})
	if err := fenixconv.WriteFile(path, fenixconv.FormatFBM, g); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return g
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, path string
		want       fenixconv.Format
		wantErr    bool
	}{
		{"", "out.fpl", fenixconv.FormatFPL, false},
		{"", "OUT.M16", fenixconv.FormatMAP, false},
		{"fbm", "out.bin", fenixconv.FormatFBM, false},
		{"", "out.png", fenixconv.FormatUnknown, true},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %v, %v, want %v", tt.flag, tt.path, got, err, tt.want)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sprite.fbm")
	src := writeSprite(t, in)

	out := filepath.Join(dir, "sprite.map")
	if err := run(t, "convert", in, "-o", out); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	got, err := fenixconv.ReadGraphicFile(out)
	if err != nil {
		t.Fatalf("ReadGraphicFile failed: %v", err)
	}
	f, _ := got.Frame(0)
	if f.Index(0, 0) != 7 {
		t.Errorf("pixel (0,0) = %d, want 7", f.Index(0, 0))
	}
	if c, _ := got.Palette().Get(7); c != (fenixconv.Color{G: 200}) {
		t.Errorf("color 7 = %v, want {0 200 0}", c)
	}
	if got.Width() != src.Width() || got.Height() != src.Height() {
		t.Errorf("size = %dx%d, want 2x1", got.Width(), got.Height())
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "sprite.fbm"))

	manifest := filepath.Join(dir, "batch.toml")
	content := `
[[job]]
input = "sprite.fbm"
output = "sprite.fpl"

[[job]]
input = "sprite.fbm"
output = "still.map"

[[job]]
input = "missing.fbm"
output = "missing.map"
`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "batch", manifest); err == nil {
		t.Error("batch succeeded with a missing input")
	}
	for _, name := range []string{"sprite.fpl", "still.map"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := fenixconv.ReadPaletteFile(filepath.Join(dir, "sprite.fpl")); err != nil {
		t.Errorf("ReadPaletteFile failed: %v", err)
	}
}
