package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Sample widths on each side of the transform
const (
	pcmSampleSize     = 2 // int16
	encodedSampleSize = 8 // float64
)

var (
	// ErrShortHeader means fewer than 44 bytes were available
	ErrShortHeader = errors.New("wav: file shorter than the 44-byte header")
	// ErrUnsupported means the header does not describe canonical 16-bit PCM
	ErrUnsupported = errors.New("wav: unsupported container")
)

// NewHeader builds a canonical PCM header for dataSize bytes of samples
func NewHeader(sampleRate uint32, numChannels, bitsPerSample uint16, dataSize uint32) Header {
	blockAlign := numChannels * bitsPerSample / 8
	return Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     dataSize + 36,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   numChannels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// ReadHeader reads the fixed 44-byte header. The reader is left at the
// first byte of the data region.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrShortHeader
		}
		return Header{}, fmt.Errorf("error reading WAV header: %w", err)
	}
	return h, nil
}

// WriteTo writes the 44-byte header
func (h Header) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return 0, fmt.Errorf("error writing WAV header: %w", err)
	}
	return HeaderSize, nil
}

// Validate checks that h describes the canonical 16-bit PCM layout the
// transform can stream.
func (h Header) Validate() error {
	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return fmt.Errorf("%w: chunk id %q, want \"RIFF\"", ErrUnsupported, h.ChunkID[:])
	case string(h.Format[:]) != "WAVE":
		return fmt.Errorf("%w: format %q, want \"WAVE\"", ErrUnsupported, h.Format[:])
	case string(h.Subchunk1ID[:]) != "fmt ":
		return fmt.Errorf("%w: first sub-chunk %q, want \"fmt \"", ErrUnsupported, h.Subchunk1ID[:])
	case h.Subchunk1Size != 16:
		return fmt.Errorf("%w: fmt chunk is %d bytes, want 16", ErrUnsupported, h.Subchunk1Size)
	case h.AudioFormat != 1:
		return fmt.Errorf("%w: audio format %d is not PCM", ErrUnsupported, h.AudioFormat)
	case h.BitsPerSample != 16:
		return fmt.Errorf("%w: %d bits per sample, want 16", ErrUnsupported, h.BitsPerSample)
	case h.NumChannels != 1 && h.NumChannels != 2:
		return fmt.Errorf("%w: %d channels, want mono or stereo", ErrUnsupported, h.NumChannels)
	case string(h.Subchunk2ID[:]) != "data":
		return fmt.Errorf("%w: second sub-chunk %q, want \"data\"", ErrUnsupported, h.Subchunk2ID[:])
	}
	return nil
}

// MaxForwardData is the largest data region whose transformed container
// still fits the 32-bit RIFF size fields.
const MaxForwardData = (math.MaxUint32 - 36 - encodedSampleSize) / (encodedSampleSize / pcmSampleSize)

// CheckForward reports whether DeriveForward(h) can be represented. Larger
// data regions would wrap the size fields.
func (h Header) CheckForward() error {
	if uint64(h.Subchunk2Size) > MaxForwardData {
		return fmt.Errorf("%w: %d-byte data region exceeds the %d-byte limit for transformed files",
			ErrUnsupported, h.Subchunk2Size, uint64(MaxForwardData))
	}
	return nil
}

// DeriveForward returns the header of the transformed file: every 2-byte
// sample becomes an 8-byte value and one leading value is prepended. The
// sizes wrap unless h passes CheckForward.
func DeriveForward(h Header) Header {
	h.Subchunk2Size = h.Subchunk2Size*(encodedSampleSize/pcmSampleSize) + encodedSampleSize
	h.ChunkSize = h.Subchunk2Size + 36
	return h
}

// DeriveInverse returns the header of the recovered file: the last sample
// cannot be recovered.
func DeriveInverse(h Header) Header {
	h.Subchunk2Size = saturatingSub(h.Subchunk2Size, pcmSampleSize)
	h.ChunkSize = h.Subchunk2Size + 36
	return h
}

// DecodedFromEncoded returns the recovered header when only the transformed
// header is known. When h holds whole samples (an even Subchunk2Size) and
// passes CheckForward, DecodedFromEncoded(DeriveForward(h)) equals
// DeriveInverse(h).
func DecodedFromEncoded(h Header) Header {
	values := h.Subchunk2Size / encodedSampleSize
	h.Subchunk2Size = saturatingSub(values, 1) * pcmSampleSize
	return DeriveInverse(h)
}

// NumSamples is the number of individual samples (all channels) in the
// data region, for a header that describes 16-bit PCM.
func (h Header) NumSamples() int64 {
	return int64(h.Subchunk2Size) / pcmSampleSize
}

// Duration computes the playing time described by the header
func (h Header) Duration() time.Duration {
	bytesPerSample := uint32(h.BitsPerSample / 8)
	if bytesPerSample == 0 || h.NumChannels == 0 || h.SampleRate == 0 {
		return 0
	}
	seconds := float64(h.Subchunk2Size) / float64(bytesPerSample) / float64(h.NumChannels) / float64(h.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

func saturatingSub(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}
