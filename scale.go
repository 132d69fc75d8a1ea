package iconcomposer

import "fmt"

// ReferenceSize is the engine's canonical icon unit in pixels.
const ReferenceSize = 32

// ImplicitScale returns the factor applied to the size and shift of every
// layer of a layered icon. It is derived from the first layer only: with an
// explicit scale the requested size is scale*size, otherwise ReferenceSize.
// Later layers are scaled by the same factor even when that makes them
// visually off relative to the first; the engine behaves the same way.
func ImplicitScale(first Layer, defaultSize, outputSize int) (float64, error) {
	size := first.size(defaultSize)
	if size <= 0 {
		return 0, fmt.Errorf("%w: first layer has no icon_size", ErrMalformedSpec)
	}
	requested := float64(ReferenceSize)
	if first.Scale != nil {
		requested = *first.Scale * float64(size)
	}
	if requested <= 0 {
		return 0, fmt.Errorf("%w: first layer scale %v", ErrMalformedSpec, *first.Scale)
	}
	return float64(outputSize) / requested, nil
}
