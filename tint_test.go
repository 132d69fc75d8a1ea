package iconcomposer

import (
	"encoding/json"
	"testing"
)

func TestNormalizeTint(t *testing.T) {
	tests := []struct {
		name      string
		spec      *TintSpec
		want      Tint
		wantGhost bool
	}{
		{"nil", nil, NoTint, false},
		{"unit list", TintList(1, 0.5, 0), Tint{255, 127, 0, 255}, false},
		{"byte list", TintList(255, 127, 0), Tint{255, 127, 0, 255}, false},
		{"byte list with alpha", TintList(255, 127, 0, 255), Tint{255, 127, 0, 255}, false},
		{"unit list quarter", TintList(0.25, 1, 1, 0.5), Tint{63, 255, 255, 127}, false},
		{"one channel over 1 switches scale", TintList(2, 0.5, 0), Tint{2, 0, 0, 255}, false},
		{"clamped", TintList(300, -5, 10), Tint{255, 0, 10, 255}, false},
		{"map defaults", TintMap(map[string]float64{"r": 1}), Tint{255, 0, 0, 255}, false},
		{"map ghost", TintMap(map[string]float64{"r": 0.5, "a": 0}), Tint{127, 0, 0, 0}, true},
		{"list ghost", TintList(1, 1, 1, 0), Tint{255, 255, 255, 0}, true},
		{"map alpha over 1 switches scale", TintMap(map[string]float64{"r": 1, "a": 255}), Tint{1, 0, 0, 255}, false},
		{"list alpha over 1 keeps unit scale", TintList(1, 0, 0, 255), Tint{255, 0, 0, 255}, false},
		{"short list", TintList(0.5), Tint{127, 0, 0, 255}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ghost := NormalizeTint(tt.spec)
			if got != tt.want || ghost != tt.wantGhost {
				t.Errorf("NormalizeTint() = %v, %v; want %v, %v", got, ghost, tt.want, tt.wantGhost)
			}
		})
	}
}

// The same tint written in 0-1 and 0-255 scale normalizes identically.
func TestNormalizeTintScalesAgree(t *testing.T) {
	for _, v := range []float64{0, 51, 102, 204, 255} {
		unit, _ := NormalizeTint(TintList(v/255, 1, 0, 1))
		bytes, _ := NormalizeTint(TintList(v, 255, 0, 255))
		if unit != bytes {
			t.Errorf("v=%v: unit %v != bytes %v", v, unit, bytes)
		}
	}
}

func TestTintSpecJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Tint
	}{
		{`[1, 0, 0]`, Tint{255, 0, 0, 255}},
		{`{"r": 0.5, "g": 0.5}`, Tint{127, 127, 0, 255}},
		{`{"b": 200, "a": 100}`, Tint{0, 0, 200, 100}},
	}
	for _, tt := range tests {
		var spec TintSpec
		if err := json.Unmarshal([]byte(tt.in), &spec); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if got, _ := NormalizeTint(&spec); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}

	var spec TintSpec
	if err := json.Unmarshal([]byte(`"red"`), &spec); err == nil {
		t.Error("string tint should be rejected")
	}
}

func TestTintHex(t *testing.T) {
	if got := (Tint{255, 0, 128, 0}).Hex(); got != "#ff0080" {
		t.Errorf("Hex() = %q, want #ff0080", got)
	}
}
