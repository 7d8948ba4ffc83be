package converter

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/mattetti/sdscrypt/internal/noise"
	"github.com/mattetti/sdscrypt/internal/pcm"
	"github.com/mattetti/sdscrypt/internal/sds"
	"github.com/mattetti/sdscrypt/internal/wav"
)

// ErrTruncated means the data region ended in the middle of a sample
var ErrTruncated = errors.New("data region ends mid-sample")

// Options represents the conversion options
type Options struct {
	Debug bool
	// Noise selects the generator seeded by the key
	Noise noise.Kind
	// Lenient writes silence for samples that cannot be recovered and
	// records them in Result.Faults instead of aborting the run.
	Lenient bool
}

// FaultError reports the sample at which a run failed
type FaultError struct {
	Index int64
	Err   error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("sample %d: %v", e.Index, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

// Result describes one completed run
type Result struct {
	Path    string
	Header  wav.Header
	Samples int64 // samples consumed (forward) or recovered (inverse)
	Faults  []FaultError
	Elapsed time.Duration
}

// Converter handles the conversion process
type Converter struct {
	options Options
	encoder *wav.Encoder
}

// NewConverter creates a new converter
func NewConverter(options Options) *Converter {
	return &Converter{
		options: options,
		encoder: wav.NewEncoder(options.Debug),
	}
}

// Debug logs a message if debug mode is enabled
func (c *Converter) Debug(message string) {
	if c.options.Debug {
		fmt.Println(message)
	}
}

// Encrypt reads 16-bit samples from r until EOF and writes the leading value
// followed by one 8-byte value per sample to w. w should be buffered.
func (c *Converter) Encrypt(r io.Reader, w io.Writer, key int32) (Result, error) {
	var res Result
	src, err := noise.New(c.options.Noise, key)
	if err != nil {
		return res, err
	}
	enc := sds.NewEncoder(src)

	var in [2]byte
	var out [8]byte
	put := func(v float64) error {
		binary.LittleEndian.PutUint64(out[:], math.Float64bits(v))
		if _, err := w.Write(out[:]); err != nil {
			return fmt.Errorf("error writing encrypted data: %w", err)
		}
		return nil
	}

	if err := put(enc.Leading()); err != nil {
		return res, err
	}

	for {
		_, err := io.ReadFull(r, in[:])
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return res, &FaultError{Index: res.Samples, Err: ErrTruncated}
		}
		if err != nil {
			return res, fmt.Errorf("error reading audio data: %w", err)
		}

		c3 := pcm.Normalize(int16(binary.LittleEndian.Uint16(in[:])))
		if err := put(enc.Encode(c3)); err != nil {
			return res, err
		}
		res.Samples++
	}

	c.Debug(fmt.Sprintf("Encrypted %d samples, %d noise draws", res.Samples, res.Samples+1))
	return res, nil
}

// Decrypt reads 8-byte values from r until EOF and writes every recovered
// 16-bit sample to w. The last two values only ever complete a window, so
// the output holds two samples fewer than the input holds values.
func (c *Converter) Decrypt(r io.Reader, w io.Writer, key int32) (Result, error) {
	var res Result
	src, err := noise.New(c.options.Noise, key)
	if err != nil {
		return res, err
	}
	dec := sds.NewDecoder(src)

	var in [8]byte
	var out [2]byte
	for {
		_, err := io.ReadFull(r, in[:])
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return res, &FaultError{Index: res.Samples, Err: ErrTruncated}
		}
		if err != nil {
			return res, fmt.Errorf("error reading encrypted data: %w", err)
		}

		c3, ok, err := dec.Push(math.Float64frombits(binary.LittleEndian.Uint64(in[:])))
		if !ok {
			continue
		}

		var sample int16
		if err == nil {
			sample, err = pcm.Denormalize(c3)
		}
		if err != nil {
			var stepErr *sds.StepError
			if errors.As(err, &stepErr) {
				err = stepErr.Err
			}
			fault := FaultError{Index: res.Samples, Err: err}
			if !c.options.Lenient {
				return res, &fault
			}
			c.Debug(fmt.Sprintf("Writing silence for %v", &fault))
			res.Faults = append(res.Faults, fault)
			sample = 0
		}

		binary.LittleEndian.PutUint16(out[:], uint16(sample))
		if _, err := w.Write(out[:]); err != nil {
			return res, fmt.Errorf("error writing decrypted data: %w", err)
		}
		res.Samples++
	}

	c.Debug(fmt.Sprintf("Decrypted %d samples, %d faults", res.Samples, len(res.Faults)))
	return res, nil
}

// EncryptFile transforms the WAV file at src into dst
func (c *Converter) EncryptFile(src, dst string, key int32) (Result, error) {
	in, h, err := openSource(src)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	if err := h.CheckForward(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", filepath.Base(src), err)
	}
	info, err := wav.Probe(src)
	if err != nil {
		return Result{}, err
	}

	c.Debug(fmt.Sprintf("Encrypting %d samples (%s, %d Hz, %d channels) from %s",
		h.NumSamples(), info.Duration().Round(time.Millisecond), info.SampleRate, info.NumChannels, filepath.Base(src)))
	return c.run(in, h, dst, wav.DeriveForward(h), func(r io.Reader, w io.Writer) (Result, error) {
		return c.Encrypt(r, w, key)
	})
}

// DecryptFile recovers the WAV file at dst from the transformed file at src
func (c *Converter) DecryptFile(src, dst string, key int32) (Result, error) {
	in, h, err := openSource(src)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	return c.decrypt(in, h, dst, wav.DecodedFromEncoded(h), key)
}

// RoundTrip transforms src into encDst and immediately recovers it into
// decDst, deriving both headers from the source header.
func (c *Converter) RoundTrip(src, encDst, decDst string, key int32) (enc, dec Result, err error) {
	enc, err = c.EncryptFile(src, encDst, key)
	if err != nil {
		return enc, dec, err
	}

	in, h, err := openSource(src)
	if err != nil {
		return enc, dec, err
	}
	in.Close()

	encrypted, encHeader, err := openSource(encDst)
	if err != nil {
		return enc, dec, err
	}
	defer encrypted.Close()

	dec, err = c.decrypt(encrypted, encHeader, decDst, wav.DeriveInverse(h), key)
	return enc, dec, err
}

func (c *Converter) decrypt(in *os.File, h wav.Header, dst string, outHeader wav.Header, key int32) (Result, error) {
	return c.run(in, h, dst, outHeader, func(r io.Reader, w io.Writer) (Result, error) {
		return c.Decrypt(r, w, key)
	})
}

// run writes outHeader to dst and streams the data region of in through fn.
// A failed run removes dst, since its header would describe data that was
// never written.
func (c *Converter) run(in *os.File, h wav.Header, dst string, outHeader wav.Header, fn func(io.Reader, io.Writer) (Result, error)) (Result, error) {
	startTime := time.Now()

	out, err := c.encoder.Create(dst, outHeader)
	if err != nil {
		return Result{}, err
	}

	data := bufio.NewReaderSize(io.LimitReader(in, int64(h.Subchunk2Size)), 64*1024)
	res, err := fn(data, out)
	closeErr := out.Close()
	res.Path = dst
	res.Header = outHeader
	res.Elapsed = time.Since(startTime)
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			c.Debug(fmt.Sprintf("Could not remove incomplete %s: %v", filepath.Base(dst), rmErr))
		}
		res.Path = ""
		return res, fmt.Errorf("%s: %w", filepath.Base(dst), err)
	}
	return res, nil
}

// openSource opens a container and leaves it positioned at the data region
func openSource(path string) (*os.File, wav.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wav.Header{}, fmt.Errorf("error opening file: %w", err)
	}
	h, err := wav.ReadHeader(f)
	if err == nil {
		err = h.Validate()
	}
	if err != nil {
		f.Close()
		return nil, wav.Header{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, h, nil
}
