package noise

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Source produces uniform values in [0, 1). The sequence must be a pure
// function of the seed and the number of draws taken so far.
type Source interface {
	Float64() float64
}

// Kind names a generator implementation
type Kind string

const (
	// KindSubtractive is the Knuth subtractive generator seeded like
	// System.Random, so SDSSoundEncrypt files decode with the same key.
	KindSubtractive Kind = "subtractive"
	// KindPCG uses math/rand/v2's PCG generator.
	KindPCG Kind = "pcg"
)

// pcgStream is the fixed second PCG seed word. Changing it changes every
// stream produced with KindPCG.
const pcgStream = 0x5d5d0a11f0e3c2b1

// ParseKind converts a flag value into a Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSubtractive, KindPCG:
		return k, nil
	case "":
		return KindSubtractive, nil
	default:
		return "", fmt.Errorf("unknown noise generator %q (want %q or %q)", s, KindSubtractive, KindPCG)
	}
}

// New creates a freshly seeded generator of the given kind
func New(kind Kind, seed int32) (Source, error) {
	switch kind {
	case KindSubtractive, "":
		return NewSubtractive(seed), nil
	case KindPCG:
		return NewPCG(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise generator %q", kind)
	}
}

// NewPCG returns a math/rand/v2 generator seeded from seed
func NewPCG(seed int32) Source {
	return rand.New(rand.NewPCG(uint64(uint32(seed)), pcgStream))
}
