package pcm

import (
	"errors"
	"fmt"
	"math"
)

// Scale factors between 16-bit signed samples and [-1, 1]
const (
	NegScale = 32768.0
	PosScale = 32767.0
)

// ErrOutOfRange is wrapped by every RangeError
var ErrOutOfRange = errors.New("sample out of 16-bit range")

// RangeError reports a denormalized value that does not fit an int16
type RangeError struct {
	Value   float64 // normalized input
	Rounded float64 // scaled and rounded value that failed to narrow
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("denormalize %g: %g does not fit 16 bits", e.Value, e.Rounded)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// Normalize maps a sample to [-1, 1] with asymmetric scaling
func Normalize(sample int16) float64 {
	if sample < 0 {
		return float64(sample) / NegScale
	}
	return float64(sample) / PosScale
}

// Denormalize maps a value in [-1, 1] back to a sample. Halfway cases
// round to even. Values that do not fit after rounding, including NaN and
// infinities, return a *RangeError instead of being clamped.
func Denormalize(c3 float64) (int16, error) {
	v := c3
	if v < 0 {
		v *= NegScale
	} else {
		v *= PosScale
	}
	r := math.RoundToEven(v)
	if math.IsNaN(r) || r < math.MinInt16 || r > math.MaxInt16 {
		return 0, &RangeError{Value: c3, Rounded: r}
	}
	return int16(r), nil
}
