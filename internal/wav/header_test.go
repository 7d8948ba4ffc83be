package wav

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

func TestNewHeaderLayout(t *testing.T) {
	h := NewHeader(44100, 2, 16, 1000)
	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != HeaderSize || buf.Len() != HeaderSize {
		t.Fatalf("wrote %d (reported %d) bytes, want %d", buf.Len(), n, HeaderSize)
	}

	b := buf.Bytes()
	checks := []struct {
		off  int
		want string
	}{
		{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"},
	}
	for _, c := range checks {
		if got := string(b[c.off : c.off+4]); got != c.want {
			t.Errorf("bytes %d-%d = %q, want %q", c.off, c.off+4, got, c.want)
		}
	}
	if h.ByteRate != 44100*4 || h.BlockAlign != 4 {
		t.Errorf("byte rate %d, block align %d", h.ByteRate, h.BlockAlign)
	}
	if h.ChunkSize != 1036 {
		t.Errorf("chunk size = %d, want 1036", h.ChunkSize)
	}
}

func TestReadHeaderRoundTrip(t *testing.T) {
	h := NewHeader(8000, 1, 16, 6)
	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	buf.Write([]byte{1, 2, 3, 4, 5, 6})

	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("read %+v, want %+v", got, h)
	}
	if buf.Len() != 6 {
		t.Errorf("reader left %d bytes, want the 6 data bytes", buf.Len())
	}
}

func TestReadHeaderShort(t *testing.T) {
	for _, n := range []int{0, 10, 43} {
		_, err := ReadHeader(bytes.NewReader(make([]byte, n)))
		if !errors.Is(err, ErrShortHeader) {
			t.Errorf("%d bytes: error = %v, want ErrShortHeader", n, err)
		}
	}
}

func TestValidate(t *testing.T) {
	good := NewHeader(44100, 1, 16, 0)
	if err := good.Validate(); err != nil {
		t.Fatalf("canonical header rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Header)
	}{
		{"riff", func(h *Header) { h.ChunkID = [4]byte{'R', 'I', 'F', 'X'} }},
		{"wave", func(h *Header) { h.Format = [4]byte{'A', 'V', 'I', ' '} }},
		{"fmt", func(h *Header) { h.Subchunk1ID = [4]byte{'J', 'U', 'N', 'K'} }},
		{"fmt size", func(h *Header) { h.Subchunk1Size = 18 }},
		{"float", func(h *Header) { h.AudioFormat = 3 }},
		{"24-bit", func(h *Header) { h.BitsPerSample = 24 }},
		{"8-bit", func(h *Header) { h.BitsPerSample = 8 }},
		{"surround", func(h *Header) { h.NumChannels = 6 }},
		{"list chunk", func(h *Header) { h.Subchunk2ID = [4]byte{'L', 'I', 'S', 'T'} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := good
			tt.mutate(&h)
			if err := h.Validate(); !errors.Is(err, ErrUnsupported) {
				t.Errorf("error = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestDeriveForwardAndInverse(t *testing.T) {
	for _, d := range []uint32{0, 2, 8, 1000, 88200} {
		h := NewHeader(44100, 1, 16, d)

		fwd := DeriveForward(h)
		if fwd.Subchunk2Size != 4*d+8 {
			t.Errorf("d=%d: forward data size = %d, want %d", d, fwd.Subchunk2Size, 4*d+8)
		}
		if fwd.ChunkSize != fwd.Subchunk2Size+36 {
			t.Errorf("d=%d: forward chunk size %d != data+36", d, fwd.ChunkSize)
		}

		inv := DeriveInverse(fwd)
		if inv.Subchunk2Size != 4*d+8-2 {
			t.Errorf("d=%d: inverse of forward = %d, want %d", d, inv.Subchunk2Size, 4*d+6)
		}
		if inv.ChunkSize != inv.Subchunk2Size+36 {
			t.Errorf("d=%d: inverse chunk size %d != data+36", d, inv.ChunkSize)
		}

		if got, want := DecodedFromEncoded(fwd), DeriveInverse(h); got != want {
			t.Errorf("d=%d: DecodedFromEncoded = %+v, want %+v", d, got, want)
		}

		// derivations return copies
		if h.Subchunk2Size != d {
			t.Errorf("d=%d: source header mutated to %d", d, h.Subchunk2Size)
		}
		if fwd.SampleRate != h.SampleRate || fwd.BitsPerSample != h.BitsPerSample {
			t.Errorf("d=%d: format fields changed", d)
		}
	}
}

func TestCheckForward(t *testing.T) {
	tests := []struct {
		name    string
		d       uint32
		wantErr bool
	}{
		{"empty", 0, false},
		{"largest", MaxForwardData, false},
		{"one past largest", MaxForwardData + 1, true},
		{"1 GiB", 1 << 30, true},
		{"max", math.MaxUint32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(44100, 2, 16, tt.d)
			err := h.CheckForward()
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupported) {
					t.Errorf("CheckForward(%d) = %v, want ErrUnsupported", tt.d, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckForward(%d) = %v", tt.d, err)
			}
			fwd := DeriveForward(h)
			if want := 4*uint64(tt.d) + 8; uint64(fwd.Subchunk2Size) != want {
				t.Errorf("forward data size = %d, want %d", fwd.Subchunk2Size, want)
			}
			if uint64(fwd.ChunkSize) != uint64(fwd.Subchunk2Size)+36 {
				t.Errorf("forward chunk size %d wrapped", fwd.ChunkSize)
			}
		})
	}
}

func TestDecodedFromEncodedOddData(t *testing.T) {
	// whole 8-byte values only; the trailing half sample is not counted
	h := NewHeader(8000, 1, 16, 7)
	if got := DecodedFromEncoded(DeriveForward(h)).Subchunk2Size; got != 4 {
		t.Errorf("decoded size for 7 data bytes = %d, want 4", got)
	}
}

func TestDeriveInverseSaturates(t *testing.T) {
	h := DeriveInverse(NewHeader(8000, 1, 16, 0))
	if h.Subchunk2Size != 0 || h.ChunkSize != 36 {
		t.Errorf("got data %d chunk %d, want 0 and 36", h.Subchunk2Size, h.ChunkSize)
	}
	h = DecodedFromEncoded(NewHeader(8000, 1, 16, 0))
	if h.Subchunk2Size != 0 {
		t.Errorf("decoded from empty = %d, want 0", h.Subchunk2Size)
	}
}

func TestDuration(t *testing.T) {
	h := NewHeader(8000, 2, 16, 8000*2*2*90+8000*2)
	if got, want := h.Duration(), 90500*time.Millisecond; got != want {
		t.Errorf("duration = %v, want %v", got, want)
	}
	if got := h.NumSamples(); got != 8000*2*90+8000 {
		t.Errorf("samples = %d", got)
	}
	var zero Header
	if zero.Duration() != 0 {
		t.Error("zero header should have zero duration")
	}
}

func writeGoAudioFile(t *testing.T, path string, bitDepth int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := gowav.NewEncoder(f, 8000, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.wav")
	writeGoAudioFile(t, good, 16, []int{0, 100, -100, 32767, -32768})
	info, err := Probe(good)
	if err != nil {
		t.Fatalf("Probe(good): %v", err)
	}
	if info.SampleRate != 8000 || info.NumChannels != 1 || info.BitDepth != 16 || info.PCMLen != 10 {
		t.Errorf("info = %+v", info)
	}

	eight := filepath.Join(dir, "eight.wav")
	writeGoAudioFile(t, eight, 8, []int{0, 10, 20})
	if _, err := Probe(eight); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Probe(8-bit) error = %v, want ErrUnsupported", err)
	}

	junk := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(junk, []byte("definitely not a wav file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Probe(junk); err == nil {
		t.Error("Probe(junk) should fail")
	}

	if _, err := Probe(filepath.Join(dir, "missing.wav")); err == nil {
		t.Error("Probe(missing) should fail")
	}
}

func TestEncoderCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	h := DeriveForward(NewHeader(8000, 1, 16, 4))

	f, err := NewEncoder(false).Create(path, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(make([]byte, h.Subchunk2Size)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != HeaderSize+int(h.Subchunk2Size) {
		t.Fatalf("file is %d bytes, want %d", len(raw), HeaderSize+int(h.Subchunk2Size))
	}
	got, err := ReadHeader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("header on disk = %+v, want %+v", got, h)
	}
}

func TestInfoDuration(t *testing.T) {
	info := Info{SampleRate: 8000, NumChannels: 2, BitDepth: 16, PCMLen: 8000 * 2 * 2 * 3}
	if got := info.Duration(); got != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", got)
	}
	if got := (Info{}).Duration(); got != 0 {
		t.Errorf("empty Duration = %v, want 0", got)
	}
}
