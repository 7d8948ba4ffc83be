package sds

import "github.com/mattetti/sdscrypt/internal/noise"

// Encoder runs the recurrence forward, one sample at a time
type Encoder struct {
	noise *Noise
	state State
	steps int64
}

// NewEncoder seeds the initial state. The first noise value is drawn here,
// before any sample is consumed.
func NewEncoder(src noise.Source) *Encoder {
	nz := NewNoise(src)
	return &Encoder{
		noise: nz,
		state: State{X1: X10, X2: X20, N: nz.Next()},
	}
}

// Leading is the value written ahead of the first transformed sample. It
// gives the decoder a full window from the first real sample onwards.
func (e *Encoder) Leading() float64 { return X10 }

// Encode consumes one normalized sample and returns the next x1
func (e *Encoder) Encode(c3 float64) float64 {
	e.state = e.state.Step(c3, e.noise.Next())
	e.steps++
	return e.state.X1
}

// Steps is the number of samples encoded
func (e *Encoder) Steps() int64 { return e.steps }

// Decoder inverts the recurrence over a sliding window of three values
type Decoder struct {
	noise  *Noise
	window [3]float64
	filled int
	steps  int64
}

// NewDecoder seeds a decoder. src must be seeded like the encoder's.
func NewDecoder(src noise.Source) *Decoder {
	return &Decoder{noise: NewNoise(src)}
}

// Push adds the next transformed value. ok is false until the window holds
// three values; after that every push recovers exactly one sample and slides
// the window by one. The noise draw is taken even when inversion fails so
// later steps stay in sync.
func (d *Decoder) Push(x1 float64) (c3 float64, ok bool, err error) {
	if d.filled < 3 {
		d.window[d.filled] = x1
		d.filled++
		if d.filled < 3 {
			return 0, false, nil
		}
	} else {
		d.window[0], d.window[1], d.window[2] = d.window[1], d.window[2], x1
	}

	step := d.steps
	d.steps++
	c3, err = Invert(d.window[0], d.window[1], d.window[2], d.noise.Next())
	if err != nil {
		return c3, true, &StepError{Step: step, Err: err}
	}
	return c3, true, nil
}

// Steps is the number of windows inverted, including failed ones
func (d *Decoder) Steps() int64 { return d.steps }
