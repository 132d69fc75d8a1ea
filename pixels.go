package iconcomposer

import (
	"fmt"
	"image"
	"image/color"
)

// Image.RGBA is premultiplied in Go, so canvases and transformed layers use
// it directly. Conversions in and out of premultiplied form round to
// nearest, which keeps premultiply(unpremultiply(p)) == p wherever alpha > 0.

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mulDiv255 returns round(a*b/255).
func mulDiv255(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

func addClamp(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// premultiply copies img into a fresh premultiplied buffer whose bounds
// start at the origin. The source is never modified, so cached decodes can
// be shared between icons.
func premultiply(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	switch src := img.(type) {
	case *image.NRGBA:
		for y := range h {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(0, y)
			for range w {
				a := src.Pix[si+3]
				out.Pix[di+0] = mulDiv255(src.Pix[si+0], a)
				out.Pix[di+1] = mulDiv255(src.Pix[si+1], a)
				out.Pix[di+2] = mulDiv255(src.Pix[si+2], a)
				out.Pix[di+3] = a
				si += 4
				di += 4
			}
		}
	case *image.RGBA:
		for y := range h {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[out.PixOffset(0, y):out.PixOffset(w, y)], src.Pix[si:si+4*w])
		}
	default:
		for y := range h {
			for x := range w {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := out.PixOffset(x, y)
				out.Pix[i+0] = mulDiv255(c.R, c.A)
				out.Pix[i+1] = mulDiv255(c.G, c.A)
				out.Pix[i+2] = mulDiv255(c.B, c.A)
				out.Pix[i+3] = c.A
			}
		}
	}
	return out
}

// unpremultiply converts a premultiplied buffer to straight alpha. Fully
// transparent pixels become transparent black.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := out.PixOffset(0, y)
		for range b.Dx() {
			a := uint32(src.Pix[si+3])
			if a != 0 {
				for c := range 3 {
					v := (uint32(src.Pix[si+c])*255 + a/2) / a
					out.Pix[di+c] = uint8(min(v, 255))
				}
				out.Pix[di+3] = uint8(a)
			}
			si += 4
			di += 4
		}
	}
	return out
}

// cropSquare returns a copy of the top-left size×size square of src,
// clipped to the source bounds. Anything packed below or to the right of
// the square (mipmaps) is dropped.
func cropSquare(src *image.RGBA, size int) *image.RGBA {
	r := image.Rect(0, 0, size, size).Intersect(src.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := range r.Dy() {
		si := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[out.PixOffset(0, y):out.PixOffset(r.Dx(), y)], src.Pix[si:si+4*r.Dx()])
	}
	return out
}

// applyTint multiplies every premultiplied channel by t/255 in place.
func applyTint(img *image.RGBA, t Tint) {
	if t == NoTint {
		return
	}
	m := [4]uint8{t.R, t.G, t.B, t.A}
	for i := 0; i < len(img.Pix); i += 4 {
		for c := range 4 {
			img.Pix[i+c] = mulDiv255(img.Pix[i+c], m[c])
		}
	}
}

// blendOver composites src over dst in place with the premultiplied
// source-over operator: D = S + D*(1-Sa), per channel including alpha.
// Both buffers must have identical bounds.
func blendOver(dst, src *image.RGBA) {
	if dst.Bounds() != src.Bounds() {
		panic(fmt.Sprintf("iconcomposer: blend of %v over %v", src.Bounds(), dst.Bounds()))
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		sa := src.Pix[i+3]
		if sa == 0 && src.Pix[i] == 0 && src.Pix[i+1] == 0 && src.Pix[i+2] == 0 {
			continue
		}
		inv := 255 - sa
		for c := range 4 {
			dst.Pix[i+c] = addClamp(src.Pix[i+c], mulDiv255(dst.Pix[i+c], inv))
		}
	}
}

// opaqueBounds returns the smallest rectangle containing every pixel with
// non-zero alpha, or the empty rectangle.
func opaqueBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	r := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}
