package iconcomposer

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Tint is a normalized per-channel multiplier, each channel in [0,255].
type Tint struct {
	R, G, B, A uint8
}

// NoTint leaves a layer unchanged.
var NoTint = Tint{255, 255, 255, 255}

// NormalizeTint resolves a tint spec to a canonical multiplier.
//
// Missing R, G and B default to 0 and a missing A defaults to 255. When any
// of the first three components of a list, or any given component of a
// mapping, exceeds 1.0 the whole tint is taken to be in 0-255 scale,
// otherwise every component is scaled from 0-1. Fractions are truncated.
// The second result reports an explicit alpha of exactly 0, which marks a
// ghost layer.
func NormalizeTint(spec *TintSpec) (Tint, bool) {
	if spec == nil {
		return NoTint, false
	}
	scaled := 3
	if spec.kind == tintMap {
		scaled = 4
	}
	in255 := false
	for i := range scaled {
		if spec.set[i] && spec.vals[i] > 1.0 {
			in255 = true
		}
	}
	var ch [4]uint8
	for i := range 4 {
		if !spec.set[i] {
			if i == 3 {
				ch[i] = 255
			}
			continue
		}
		v := spec.vals[i]
		if !in255 {
			v *= 255
		}
		ch[i] = uint8(clampInt(int(v), 0, 255))
	}
	ghost := spec.set[3] && spec.vals[3] == 0
	return Tint{ch[0], ch[1], ch[2], ch[3]}, ghost
}

// Hex formats the tint as #rrggbb, ignoring alpha.
func (t Tint) Hex() string {
	return colorful.Color{
		R: float64(t.R) / 255,
		G: float64(t.G) / 255,
		B: float64(t.B) / 255,
	}.Hex()
}
