package iconcomposer

import (
	"image"
	"image/color"
)

// GhostGrey is the premultiplied colour painted under ghost-layer
// footprints that would otherwise stay invisible.
var GhostGrey = color.RGBA{R: 113, G: 113, B: 113, A: 200}

// Thresholds for "left no visible trace".
const (
	nearBlack     = 8
	nearZeroAlpha = 8
)

// recoverGhosts paints GhostGrey into every pixel of footprint where the
// composited canvas is near-black and near-transparent, then composites the
// canvas over that backdrop. Pixels outside the mask keep their value.
func recoverGhosts(canvas *image.RGBA, footprint *image.Alpha) *image.RGBA {
	out := image.NewRGBA(canvas.Bounds())
	for i := 0; i < len(canvas.Pix); i += 4 {
		if footprint.Pix[i/4] == 0 {
			continue
		}
		px := canvas.Pix[i : i+4 : i+4]
		if px[0] > nearBlack || px[1] > nearBlack || px[2] > nearBlack || px[3] > nearZeroAlpha {
			continue
		}
		out.Pix[i+0] = GhostGrey.R
		out.Pix[i+1] = GhostGrey.G
		out.Pix[i+2] = GhostGrey.B
		out.Pix[i+3] = GhostGrey.A
	}
	blendOver(out, canvas)
	return out
}
