// Package sds implements the stochastic differential system used to
// scramble audio: a damped nonlinear oscillator whose cubic term is driven
// by the normalized sample and whose velocity is kicked by keyed noise.
package sds

import (
	"errors"
	"fmt"
	"math"

	"github.com/mattetti/sdscrypt/internal/noise"
)

// System parameters. Changing any of them breaks every existing stream.
const (
	B1 = 0.02
	B2 = 2.0
	C1 = 1.0
	C5 = 0.5
	// N0 is the white noise intensity
	N0 = 0.0004
	// DT is the integration time step
	DT = 0.1
	// X10 and X20 are the initial state
	X10 = 0.1
	X20 = 0.0
	// Z1 and Z2 map a uniform draw u to Z1 + Z2*u
	Z1 = -5.0
	Z2 = 10.0
)

var (
	// ErrSingular means x1[i] is zero and the cubic term carries no
	// information about the forcing value.
	ErrSingular = errors.New("x1 is zero, step cannot be inverted")
	// ErrNonFinite means the inverse produced NaN or an infinity.
	ErrNonFinite = errors.New("inverse produced a non-finite value")
)

// StepError records which recurrence step failed
type StepError struct {
	Step int64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Noise turns uniform draws into the noise term of the recurrence
type Noise struct {
	src   noise.Source
	scale float64
	draws int64
}

// NewNoise wraps a seeded source
func NewNoise(src noise.Source) *Noise {
	return &Noise{src: src, scale: math.Sqrt(N0 / DT)}
}

// Next draws exactly one uniform value and scales it
func (n *Noise) Next() float64 {
	z := Z1 + Z2*n.src.Float64()
	n.draws++
	return z * n.scale
}

// Draws is the number of values taken so far
func (n *Noise) Draws() int64 { return n.draws }

// State is the recurrence state carried from one step to the next
type State struct {
	X1 float64
	X2 float64
	N  float64 // noise drawn for the step that produced this state
}

// Step advances the state by one sample. c3 is the normalized sample and
// n the noise value for the new state.
func (s State) Step(c3, n float64) State {
	x1 := s.X1 + s.X2*DT
	x2 := s.X2 + (s.N-B1*s.X2-B2*s.X2*math.Abs(s.X2)-C1*s.X1-c3*math.Pow(s.X1, 3.0)-C5*math.Pow(s.X1, 5.0))*DT
	return State{X1: x1, X2: x2, N: n}
}

// Invert recovers the forcing value of step i from x1[i], x1[i+1], x1[i+2]
// and the noise value drawn for step i.
func Invert(x1i, x1i1, x1i2, n float64) (float64, error) {
	if x1i == 0 {
		return 0, ErrSingular
	}
	d := x1i1 - x1i
	c3 := ((2.0*x1i1-x1i-x1i2)/(DT*DT) + n - C1*x1i - C5*math.Pow(x1i, 5.0) - B1*d/DT - B2*d*math.Abs(d)/(DT*DT)) / math.Pow(x1i, 3.0)
	if math.IsNaN(c3) || math.IsInf(c3, 0) {
		return c3, ErrNonFinite
	}
	return c3, nil
}
