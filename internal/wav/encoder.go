package wav

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Encoder creates output containers. Data is appended by the caller after
// the header has been written.
type Encoder struct {
	debug bool
}

// NewEncoder creates a new WAV encoder
func NewEncoder(debug bool) *Encoder {
	return &Encoder{debug: debug}
}

// Debug logs a message if debug mode is enabled
func (e *Encoder) Debug(message string) {
	if e.debug {
		fmt.Println(message)
	}
}

// File is an output container whose header has been written. Writes go to
// the data region through a buffer; Close flushes it.
type File struct {
	*bufio.Writer
	f      *os.File
	Header Header
}

// Close flushes buffered data and closes the file
func (f *File) Close() error {
	flushErr := f.Flush()
	closeErr := f.f.Close()
	if flushErr != nil {
		return fmt.Errorf("error writing audio data: %w", flushErr)
	}
	return closeErr
}

// Create writes h to a new file at path and returns it positioned at the
// start of the data region.
func (e *Encoder) Create(path string, h Header) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}

	out := &File{Writer: bufio.NewWriterSize(file, 64*1024), f: file, Header: h}
	if _, err := h.WriteTo(out); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}

	e.Debug(fmt.Sprintf("Wrote header to %s (data size %d, chunk size %d)", filepath.Base(path), h.Subchunk2Size, h.ChunkSize))
	return out, nil
}
