package iconcomposer

import (
	"image"
)

// OverflowKind classifies how far a layered icon reached past the output
// canvas.
type OverflowKind uint8

const (
	// OverflowNone means every layer fit; no retry happened.
	OverflowNone OverflowKind = iota
	// OverflowMinor means the icon was recomposed with slack equal to the
	// overflow and nothing was clipped.
	OverflowMinor
	// OverflowBad means the overflow exceeded the slack limit; the icon was
	// recomposed with the maximum slack and clipped.
	OverflowBad
)

func (k OverflowKind) String() string {
	switch k {
	case OverflowMinor:
		return "minor"
	case OverflowBad:
		return "bad"
	default:
		return "none"
	}
}

// Overflow describes the overflow event of one composition.
type Overflow struct {
	Kind   OverflowKind
	Pixels int // worst edge overflow measured on the zero-slack pass
	Slack  int // margin used by the final pass
}

// composition is the output of one pass over all layers.
type composition struct {
	canvas    *image.RGBA
	footprint *image.Alpha // ghost-layer coverage, nil without ghosts
	overflow  int
}

// compose paints plans bottom to top onto a transparent canvas with the
// given slack margin.
func compose(plans []layerPlan, outputSize, slack int) composition {
	side := outputSize + 2*slack
	c := composition{canvas: image.NewRGBA(image.Rect(0, 0, side, side))}
	for _, p := range plans {
		layer, box := p.place(outputSize, slack, p.tint)
		c.overflow = max(c.overflow, overflow(box, outputSize))
		blendOver(c.canvas, layer)

		if !p.ghost {
			continue
		}
		if c.footprint == nil {
			c.footprint = image.NewAlpha(c.canvas.Bounds())
		}
		cover, _ := p.place(outputSize, slack, NoTint)
		for i := 3; i < len(cover.Pix); i += 4 {
			if cover.Pix[i] != 0 {
				c.footprint.Pix[i/4] = 0xff
			}
		}
	}
	return c
}

// composeWithRetry runs the zero-slack pass and, when some layer overflows,
// exactly one more pass with slack = min(overflow, maxSlack). It returns
// the final composition, the overflow event and the number of passes.
func composeWithRetry(plans []layerPlan, outputSize, maxSlack int) (composition, Overflow, int) {
	first := compose(plans, outputSize, 0)
	if first.overflow == 0 {
		return first, Overflow{}, 1
	}
	ev := Overflow{
		Kind:   OverflowMinor,
		Pixels: first.overflow,
		Slack:  min(first.overflow, maxSlack),
	}
	if first.overflow > maxSlack {
		ev.Kind = OverflowBad
	}
	return compose(plans, outputSize, ev.Slack), ev, 2
}
