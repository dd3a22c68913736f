package render

import (
	"image/color"
	"slices"
	"testing"

	"flashsync/internal/core"
)

func TestFillFieldRGBAPalette(t *testing.T) {
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	buf := make([]byte, 12)
	fillFieldRGBA(buf, []uint8{0, 1, 7}, palette, nil, GlowTint)
	want := []byte{1, 0, 0, 255, 0, 2, 0, 255, 0, 2, 0, 255}
	if !slices.Equal(buf, want) {
		t.Fatalf("pixels = %v, want %v", buf, want)
	}

	fillFieldRGBA(buf, []uint8{0, 1, 7}, nil, nil, GlowTint)
	if !slices.Equal(buf, make([]byte, 12)) {
		t.Fatalf("empty palette should clear, got %v", buf)
	}
}

func TestFillFieldRGBAGlow(t *testing.T) {
	palette := []color.RGBA{{A: 255}, {R: 9, G: 9, B: 9, A: 255}}
	tint := color.RGBA{R: 200, G: 100, A: 255}
	buf := make([]byte, 16)
	fillFieldRGBA(buf, []uint8{0, 0, 1, 0}, palette, []float32{1, 0.25, 1, 0}, tint)
	want := []byte{
		120, 60, 0, 255, // full glow moves 0.6 of the way
		60, 30, 0, 255, // sqrt(0.25) * 0.6
		9, 9, 9, 255, // fireflies keep their state colour
		0, 0, 0, 255,
	}
	if !slices.Equal(buf, want) {
		t.Fatalf("pixels = %v, want %v", buf, want)
	}

	fillFieldRGBA(buf, []uint8{0, 0, 1, 0}, palette, []float32{1}, tint)
	if buf[0] != 0 {
		t.Fatalf("mismatched glow mask should be ignored, got %v", buf[:4])
	}
}

func TestMonoPaletteClampsValues(t *testing.T) {
	buf := make([]byte, 12)
	fillFieldRGBA(buf, []uint8{0, 1, 4}, MonoPalette, nil, GlowTint)
	want := []byte{0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255}
	if !slices.Equal(buf, want) {
		t.Fatalf("pixels = %v, want %v", buf, want)
	}
}

func TestGlowFieldHaloWrapsAndDecays(t *testing.T) {
	g := NewGlowField(5, 5, 1, 0.5)
	g.Respond(0, core.Point{X: 0, Y: 0}, 0)
	for _, v := range g.Mask() {
		if v != 0 {
			t.Fatal("a dark firefly must not glow")
		}
	}

	g.Respond(0, core.Point{X: 0, Y: 0}, 1)
	m := g.Mask()
	if m[0] != 1 {
		t.Fatalf("centre = %f, want 1", m[0])
	}
	// (4,4) is a wrapped diagonal neighbour of (0,0)
	if m[4*5+4] != 0.5 {
		t.Fatalf("wrapped halo = %f, want 0.5", m[24])
	}
	if m[2] != 0 {
		t.Fatalf("cell outside radius lit: %f", m[2])
	}

	g.Decay()
	if m[0] != 0.5 || m[24] != 0.25 {
		t.Fatalf("decay gave centre %f halo %f", m[0], m[24])
	}
	for i := 0; i < 10; i++ {
		g.Decay()
	}
	if m[0] != 0 {
		t.Fatalf("expected glow to die out, got %f", m[0])
	}
}
