// Package analysis measures how far a data region is from intelligible
// audio. A well-scrambled stream has a flat spectrum, so the report pairs
// plain time-domain statistics with spectral flatness.
package analysis

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/mattetti/sdscrypt/internal/pcm"
)

// MaxFFTSize caps the spectral window; longer inputs use their first
// MaxFFTSize samples.
const MaxFFTSize = 1 << 16

// Report holds statistics of one data region
type Report struct {
	Samples  int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Flatness float64 // 0 for a pure tone, 1 for white noise
}

// Analyze computes a report for samples
func Analyze(samples []float64) Report {
	r := Report{Samples: len(samples)}
	if len(samples) == 0 {
		return r
	}

	r.Mean, r.StdDev = stat.MeanStdDev(samples, nil)
	if len(samples) == 1 {
		r.StdDev = 0
	}
	r.Min, r.Max = samples[0], samples[0]
	for _, v := range samples[1:] {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	r.Flatness = Flatness(samples)
	return r
}

// Flatness is the ratio of the geometric to the arithmetic mean of the
// power spectrum, DC excluded, over the largest power-of-two prefix of
// samples. Fewer than 4 samples yield 0.
func Flatness(samples []float64) float64 {
	n := 1
	for n*2 <= len(samples) && n*2 <= MaxFFTSize {
		n *= 2
	}
	if n < 4 {
		return 0
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples[:n])

	var logSum, sum float64
	bins := 0
	for _, c := range coeffs[1:] {
		p := cmplx.Abs(c)
		p *= p
		if p == 0 {
			// a zero bin drives the geometric mean to zero
			return 0
		}
		logSum += math.Log(p)
		sum += p
		bins++
	}
	if sum == 0 {
		return 0
	}
	geo := math.Exp(logSum / float64(bins))
	return geo / (sum / float64(bins))
}

// FromIntBuffer normalizes a go-audio buffer holding 16-bit samples
func FromIntBuffer(buf *audio.IntBuffer) []float64 {
	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = pcm.Normalize(int16(v))
	}
	return out
}

// LoadPCM decodes the whole data chunk of a 16-bit PCM WAV stream and
// normalizes it.
func LoadPCM(r io.ReadSeeker) ([]float64, error) {
	d := gowav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	return FromIntBuffer(buf), nil
}

// ReadFloat64 reads up to limit little-endian IEEE-754 doubles
func ReadFloat64(r io.Reader, limit int) ([]float64, error) {
	br := bufio.NewReader(r)
	var b [8]byte
	var out []float64
	for len(out) < limit {
		if _, err := io.ReadFull(br, b[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return out, err
		}
		out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(b[:])))
	}
	return out, nil
}
