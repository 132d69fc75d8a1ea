package iconcomposer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IconSpec is the game's icon specification. It is either the single-layer
// form (Icon + IconSize) or the layered form (Icons, with IconSize as the
// default layer size).
type IconSpec struct {
	Name     string  `json:"name,omitempty"`
	Icon     string  `json:"icon,omitempty"`
	IconSize int     `json:"icon_size,omitempty"`
	Icons    []Layer `json:"icons,omitempty"`
}

// Layered reports whether s uses the multi-layer form.
func (s IconSpec) Layered() bool {
	return len(s.Icons) > 0
}

// Layer is one entry of a layered icon. Layers paint in slice order.
type Layer struct {
	Icon     string      `json:"icon"`
	IconSize int         `json:"icon_size,omitempty"` // 0: use IconSpec.IconSize
	Tint     *TintSpec   `json:"tint,omitempty"`
	Scale    *float64    `json:"scale,omitempty"`
	Shift    *[2]float64 `json:"shift,omitempty"` // reference units
}

// size returns the effective source size of the layer.
func (l Layer) size(def int) int {
	if l.IconSize != 0 {
		return l.IconSize
	}
	return def
}

type tintKind uint8

const (
	tintList tintKind = iota + 1
	tintMap
)

// TintSpec is a loosely typed tint: either an ordered R,G,B[,A] list or a
// mapping with optional r, g, b, a keys, in 0-1 or 0-255 scale. It is
// resolved once by NormalizeTint.
type TintSpec struct {
	kind tintKind
	vals [4]float64
	set  [4]bool
}

// TintList builds a list-form tint. Components beyond the fourth are
// ignored.
func TintList(v ...float64) *TintSpec {
	t := &TintSpec{kind: tintList}
	for i := range min(len(v), 4) {
		t.vals[i] = v[i]
		t.set[i] = true
	}
	return t
}

// TintMap builds a mapping-form tint from the keys r, g, b and a. Unknown
// keys are ignored.
func TintMap(m map[string]float64) *TintSpec {
	t := &TintSpec{kind: tintMap}
	for i, k := range [4]string{"r", "g", "b", "a"} {
		if v, ok := m[k]; ok {
			t.vals[i] = v
			t.set[i] = true
		}
	}
	return t
}

// UnmarshalJSON accepts either a JSON array or a JSON object.
func (t *TintSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty tint", ErrMalformedSpec)
	}
	switch data[0] {
	case '[':
		var v []float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: tint: %v", ErrMalformedSpec, err)
		}
		*t = *TintList(v...)
	case '{':
		var m map[string]float64
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("%w: tint: %v", ErrMalformedSpec, err)
		}
		*t = *TintMap(m)
	default:
		return fmt.Errorf("%w: tint must be a list or a mapping", ErrMalformedSpec)
	}
	return nil
}

// MarshalJSON writes the tint back in the form it was given.
func (t TintSpec) MarshalJSON() ([]byte, error) {
	if t.kind == tintList {
		var v []float64
		for i := range 4 {
			if t.set[i] {
				v = append(v, t.vals[i])
			}
		}
		return json.Marshal(v)
	}
	m := map[string]float64{}
	for i, k := range [4]string{"r", "g", "b", "a"} {
		if t.set[i] {
			m[k] = t.vals[i]
		}
	}
	return json.Marshal(m)
}
