package medfilt

import (
	"fmt"
	"math"
)

// Numeric is the set of element types a median series can be converted to.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Convert copies a median series into a freshly allocated slice of another
// numeric element type. Conversions to floating-point types round as usual
// and pass NaN through; conversions to integer types must be exact, so a
// fractional, out-of-range or NaN median returns ErrInexactConversion naming
// the offending index.
func Convert[T Numeric](src []float64) ([]T, error) {
	// Converting 0.5 truncates to zero exactly when T is an integer type.
	half := 0.5
	integral := T(half) == T(0)
	out := make([]T, len(src))
	for i, v := range src {
		t := T(v)
		if math.IsNaN(v) {
			if !math.IsNaN(float64(t)) {
				return nil, fmt.Errorf("%w: NaN at index %d has no integer representation", ErrInexactConversion, i)
			}
			out[i] = t
			continue
		}
		if integral && float64(t) != v {
			return nil, fmt.Errorf("%w: value %v at index %d", ErrInexactConversion, v, i)
		}
		out[i] = t
	}
	return out, nil
}
