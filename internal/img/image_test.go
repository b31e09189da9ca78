package img

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/dyuri/fenixconv/internal/model"
)

func TestColor565(t *testing.T) {
	tests := []struct {
		c       Color565
		r, g, b uint32
	}{
		{0xF800, 0xFFFF, 0, 0},
		{0x07E0, 0, 0xFFFF, 0},
		{0x001F, 0, 0, 0xFFFF},
		{0x0000, 0, 0, 0},
	}
	for _, tt := range tests {
		r, g, b, a := tt.c.RGBA()
		if r != tt.r || g != tt.g || b != tt.b || a != 0xFFFF {
			t.Errorf("%#04x.RGBA() = %#x %#x %#x %#x", uint16(tt.c), r, g, b, a)
		}
		if back := RGB565Model.Convert(tt.c); back != tt.c {
			t.Errorf("Convert(%#04x) = %v", uint16(tt.c), back)
		}
	}

	if got := RGB565Model.Convert(color.RGBA{R: 0xFF, A: 0xFF}); got != Color565(0xF800) {
		t.Errorf("Convert(red) = %v, want 0xf800", got)
	}
}

func TestIndexedImageRoundTrip(t *testing.T) {
	p := &model.Palette{}
	p.Set(3, model.Color{R: 10, G: 20, B: 30})
	g, _ := model.New(3, 2, model.Depth8, p)

	src := image.NewPaletted(image.Rect(0, 0, 3, 2), Palette(p))
	src.SetColorIndex(2, 1, 3)

	idx, err := AddImage(g, src)
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	m, err := Image(g, idx)
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	pm, ok := m.(*image.Paletted)
	if !ok {
		t.Fatalf("Image type = %T, want *image.Paletted", m)
	}
	if pm.ColorIndexAt(2, 1) != 3 {
		t.Errorf("index at (2,1) = %d, want 3", pm.ColorIndexAt(2, 1))
	}
	if c := pm.At(2, 1).(color.RGBA); c != (color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}) {
		t.Errorf("color at (2,1) = %v", c)
	}
}

func TestAddSubImage(t *testing.T) {
	g, _ := model.New(2, 2, model.Depth16, nil)

	big := NewRGB565(image.Rect(0, 0, 4, 4))
	big.SetRGB565(2, 3, 0xABCD)
	sub := &RGB565{Pix: big.Pix[big.PixOffset(1, 2):], Stride: big.Stride, Rect: image.Rect(1, 2, 3, 4)}

	if _, err := AddImage(g, sub); err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}
	f, _ := g.Frame(0)
	if f.RGB565(1, 1) != 0xABCD {
		t.Errorf("pixel (1,1) = %#04x, want 0xabcd", f.RGB565(1, 1))
	}
}

func TestAddImageRejected(t *testing.T) {
	g, _ := model.New(2, 2, model.Depth8, &model.Palette{})

	tests := map[string]image.Image{
		"rgba":          image.NewRGBA(image.Rect(0, 0, 2, 2)),
		"small palette": image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White}),
		"wrong size":    image.NewPaletted(image.Rect(0, 0, 3, 2), make(color.Palette, 256)),
		"wrong depth":   NewRGB565(image.Rect(0, 0, 2, 2)),
	}
	for name, m := range tests {
		if _, err := AddImage(g, m); !errors.Is(err, model.ErrInvalidFrame) {
			t.Errorf("%s: error = %v, want ErrInvalidFrame", name, err)
		}
	}
	if g.NumFrames() != 0 {
		t.Errorf("NumFrames = %d, want 0", g.NumFrames())
	}
}
