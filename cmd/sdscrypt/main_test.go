package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		input, dir, tag, want string
	}{
		{"song.wav", "out", "encrypted", filepath.Join("out", "song (encrypted).wav")},
		{filepath.Join("in", "song.wav"), "in", "decrypted", filepath.Join("in", "song (decrypted).wav")},
		{"song (encrypted).wav", ".", "decrypted", "song (decrypted).wav"},
		{"take.two.WAV", "x", "encrypted", filepath.Join("x", "take.two (encrypted).wav")},
	}
	for _, tt := range tests {
		if got := derivedPath(tt.input, tt.dir, tt.tag); got != tt.want {
			t.Errorf("derivedPath(%q, %q, %q) = %q, want %q", tt.input, tt.dir, tt.tag, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00.00"},
		{90500 * time.Millisecond, "01:30.50"},
		{10*time.Minute + 5*time.Second, "10:05.00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
