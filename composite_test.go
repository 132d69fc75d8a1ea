package iconcomposer

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func solid(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func plan(t *testing.T, img image.Image, l Layer, implicit float64) layerPlan {
	t.Helper()
	return newLayerPlan(premultiply(img), l, img.Bounds().Dx(), implicit)
}

func TestComposeAppliesLayersInOrder(t *testing.T) {
	red := solid(32, color.NRGBA{255, 0, 0, 128})
	green := solid(32, color.NRGBA{0, 255, 0, 128})
	blue := solid(32, color.NRGBA{0, 0, 255, 200})
	plans := []layerPlan{
		plan(t, red, Layer{}, 2),
		plan(t, green, Layer{Scale: ptr(0.5)}, 2),
		plan(t, blue, Layer{Shift: &[2]float64{-4, 4}, Scale: ptr(0.25)}, 2),
	}

	want := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for _, p := range plans {
		layer, _ := p.place(64, 0, p.tint)
		blendOver(want, layer)
	}

	got := compose(plans, 64, 0)
	if diff := cmp.Diff(want.Pix, got.canvas.Pix); diff != "" {
		t.Errorf("compose differs from sequential blending (-want +got):\n%s", diff)
	}

	reversed := compose([]layerPlan{plans[2], plans[1], plans[0]}, 64, 0)
	if cmp.Equal(got.canvas.Pix, reversed.canvas.Pix) {
		t.Error("reversing the layer order should change the result")
	}
}

func TestLayerPlanGeometry(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		layer     Layer
		implicit  float64
		wantSide  int
		wantShift image.Point
	}{
		{"reference", 32, Layer{}, 2, 64, image.Point{}},
		{"scale ignores size without scale", 64, Layer{}, 2, 64, image.Point{}},
		{"explicit scale", 64, Layer{Scale: ptr(0.5)}, 2, 64, image.Point{}},
		{"small explicit scale", 32, Layer{Scale: ptr(0.5)}, 2, 32, image.Point{}},
		{"shift", 32, Layer{Shift: &[2]float64{4, -2}}, 2, 64, image.Pt(8, -4)},
		{"shift rounds", 32, Layer{Shift: &[2]float64{1.3, 1.8}}, 2, 64, image.Pt(3, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(t, solid(tt.size, color.NRGBA{A: 255}), tt.layer, tt.implicit)
			if p.side != tt.wantSide || p.shift != tt.wantShift {
				t.Errorf("side, shift = %d, %v; want %d, %v", p.side, p.shift, tt.wantSide, tt.wantShift)
			}
		})
	}
}

func TestPlaceReportsOverflowBox(t *testing.T) {
	p := plan(t, solid(32, color.NRGBA{A: 255}), Layer{Shift: &[2]float64{1.5, 0}}, 2)
	_, box := p.place(64, 0, p.tint)
	if want := image.Rect(3, 0, 67, 64); box != want {
		t.Fatalf("box = %v, want %v", box, want)
	}
	if got := overflow(box, 64); got != 3 {
		t.Errorf("overflow = %d, want 3", got)
	}
	if got := overflow(image.Rect(-5, 2, 10, 70), 64); got != 6 {
		t.Errorf("overflow = %d, want 6", got)
	}
	if got := overflow(image.Rectangle{}, 64); got != 0 {
		t.Errorf("overflow of empty box = %d", got)
	}
}

func TestComposeWithRetry(t *testing.T) {
	opaque := solid(32, color.NRGBA{R: 200, A: 255})
	tests := []struct {
		name       string
		shift      *[2]float64
		wantEvent  Overflow
		wantPasses int
	}{
		{"fits", nil, Overflow{}, 1},
		{"minor", &[2]float64{1.5, 0}, Overflow{Kind: OverflowMinor, Pixels: 3, Slack: 3}, 2},
		{"minor negative", &[2]float64{0, -2}, Overflow{Kind: OverflowMinor, Pixels: 4, Slack: 4}, 2},
		{"bad", &[2]float64{5, 0}, Overflow{Kind: OverflowBad, Pixels: 10, Slack: 4}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := []layerPlan{plan(t, opaque, Layer{Shift: tt.shift}, 2)}
			c, ev, passes := composeWithRetry(plans, 64, 4)
			if ev != tt.wantEvent || passes != tt.wantPasses {
				t.Fatalf("event, passes = %+v, %d; want %+v, %d", ev, passes, tt.wantEvent, tt.wantPasses)
			}
			if side := 64 + 2*ev.Slack; c.canvas.Bounds() != image.Rect(0, 0, side, side) {
				t.Errorf("canvas bounds = %v", c.canvas.Bounds())
			}
		})
	}
}

// A 3px overflow fits entirely inside the slack canvas of the retry.
func TestRetryKeepsMinorOverflowVisible(t *testing.T) {
	plans := []layerPlan{plan(t, solid(32, color.NRGBA{G: 255, A: 255}), Layer{Shift: &[2]float64{1.5, 0}}, 2)}
	c, _, _ := composeWithRetry(plans, 64, 4)

	opaque := 0
	for i := 3; i < len(c.canvas.Pix); i += 4 {
		if c.canvas.Pix[i] == 255 {
			opaque++
		}
	}
	if opaque != 64*64 {
		t.Errorf("opaque pixels = %d, want %d", opaque, 64*64)
	}
}

func TestOverflowKindString(t *testing.T) {
	for k, want := range map[OverflowKind]string{OverflowNone: "none", OverflowMinor: "minor", OverflowBad: "bad"} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
