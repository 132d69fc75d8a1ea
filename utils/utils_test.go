package utils

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"
)

func TestSaveAndReadImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	path := filepath.Join(t.TempDir(), "nested", "icon.png")
	if err := SaveImage(img, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	nrgba, ok := got.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T, want *image.NRGBA", got)
	}
	if diff := cmp.Diff(img.Pix, nrgba.Pix); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage(bytes.NewReader([]byte("not a png"))); err == nil {
		t.Error("expected an error")
	}
}

func TestParsePaletteMethod(t *testing.T) {
	tests := []struct {
		in   string
		want PaletteMethod
	}{
		{"kmeans", PaletteMethodKMeans},
		{"dominantcolor", PaletteMethodDominantColor},
		{"", PaletteMethodDominantColor},
		{"bogus", PaletteMethodDominantColor},
	}
	for _, tt := range tests {
		if got := ParsePaletteMethod(tt.in); got != tt.want {
			t.Errorf("ParsePaletteMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTransparentImageHasNoPalette(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for _, m := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		if got := DominantHex(img, m); got != "" {
			t.Errorf("%v: DominantHex = %q, want empty", m, got)
		}
	}
}

func TestSelectDiverseWeightedColors(t *testing.T) {
	red := colorful.Color{R: 1}
	darkRed := colorful.Color{R: 0.95}
	blue := colorful.Color{B: 1}
	cands := []weightedColor{
		{Col: darkRed, Weight: 5},
		{Col: red, Weight: 10},
		{Col: blue, Weight: 1},
	}

	got := selectDiverseWeightedColors(cands, 2)
	want := []colorful.Color{red, blue}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := selectDiverseWeightedColors(cands, 10); len(got) != 3 {
		t.Errorf("k larger than candidates gave %d colours", len(got))
	}
	if got := selectDiverseWeightedColors(nil, 3); got != nil {
		t.Errorf("no candidates gave %v", got)
	}
}

func TestSortPaletteByBrightness(t *testing.T) {
	p := []colorful.Color{{R: 1, G: 1, B: 1}, {}, {G: 0.5}}
	SortPaletteByBrightness(p)
	want := []colorful.Color{{}, {G: 0.5}, {R: 1, G: 1, B: 1}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
