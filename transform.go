package iconcomposer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// layerPlan is a decoded layer with every scale-dependent quantity already
// resolved. The src buffer is owned by the plan.
type layerPlan struct {
	src   *image.RGBA // cropped, premultiplied, untinted
	tint  Tint
	ghost bool
	side  int         // resized side length in output pixels
	shift image.Point // output pixels
}

// newLayerPlan crops src to size and resolves the resized side and pixel
// shift of l under the icon's implicit scale.
func newLayerPlan(src *image.RGBA, l Layer, size int, implicit float64) layerPlan {
	tint, ghost := NormalizeTint(l.Tint)
	target := ReferenceSize * implicit
	if l.Scale != nil {
		target = *l.Scale * float64(size) * implicit
	}
	p := layerPlan{
		src:   cropSquare(src, size),
		tint:  tint,
		ghost: ghost,
		side:  max(int(math.Round(target)), 1),
	}
	if l.Shift != nil {
		p.shift = image.Pt(
			int(math.Round(l.Shift[0]*implicit)),
			int(math.Round(l.Shift[1]*implicit)),
		)
	}
	return p
}

// place tints, resizes and positions the layer on a transparent canvas of
// side outputSize+2*slack, centered on the output area and moved by the
// layer shift. It also returns the opaque bounding box of the placed layer
// in zero-slack output coordinates, which may extend past the canvas.
func (p layerPlan) place(outputSize, slack int, tint Tint) (*image.RGBA, image.Rectangle) {
	tinted := image.NewRGBA(p.src.Bounds())
	copy(tinted.Pix, p.src.Pix)
	applyTint(tinted, tint)

	resized := tinted
	if p.side != tinted.Bounds().Dx() || p.side != tinted.Bounds().Dy() {
		resized = image.NewRGBA(image.Rect(0, 0, p.side, p.side))
		draw.BiLinear.Scale(resized, resized.Bounds(), tinted, tinted.Bounds(), draw.Src, nil)
	}

	// floor((outputSize-side)/2), also for layers larger than the output.
	origin := image.Pt((outputSize-p.side)>>1, (outputSize-p.side)>>1).Add(p.shift)

	side := outputSize + 2*slack
	canvas := image.NewRGBA(image.Rect(0, 0, side, side))
	at := origin.Add(image.Pt(slack, slack))
	draw.Draw(canvas, resized.Bounds().Add(at), resized, image.Point{}, draw.Src)

	return canvas, opaqueBounds(resized).Add(origin)
}

// overflow returns how many pixels r extends past [0, outputSize) on its
// worst edge.
func overflow(r image.Rectangle, outputSize int) int {
	if r.Empty() {
		return 0
	}
	return max(0, -r.Min.X, -r.Min.Y, r.Max.X-outputSize, r.Max.Y-outputSize)
}
