package noise

import "math"

const (
	mbig  = math.MaxInt32
	mseed = 161803398
)

// Subtractive is Knuth's subtractive generator with the seeding rules of
// the .NET System.Random(int) constructor. All arithmetic is int32 and
// wraps on overflow the same way the reference runtime does.
type Subtractive struct {
	seedArray [56]int32
	inext     int
	inextp    int
}

// NewSubtractive seeds a generator
func NewSubtractive(seed int32) *Subtractive {
	s := &Subtractive{}

	subtraction := seed
	if seed == math.MinInt32 {
		subtraction = math.MaxInt32
	} else if seed < 0 {
		subtraction = -seed
	}

	mj := int32(mseed) - subtraction
	s.seedArray[55] = mj
	mk := int32(1)
	for i := 1; i < 55; i++ {
		ii := (21 * i) % 55
		s.seedArray[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = s.seedArray[ii]
	}

	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			s.seedArray[i] -= s.seedArray[1+(i+30)%55]
			if s.seedArray[i] < 0 {
				s.seedArray[i] += mbig
			}
		}
	}

	s.inext = 0
	s.inextp = 21
	return s
}

// Int31 returns the next raw value in [0, 2^31-1)
func (s *Subtractive) Int31() int32 {
	next := s.inext + 1
	if next >= 56 {
		next = 1
	}
	nextp := s.inextp + 1
	if nextp >= 56 {
		nextp = 1
	}

	ret := s.seedArray[next] - s.seedArray[nextp]
	if ret == mbig {
		ret--
	}
	if ret < 0 {
		ret += mbig
	}

	s.seedArray[next] = ret
	s.inext = next
	s.inextp = nextp
	return ret
}

// Float64 returns the next value in [0, 1)
func (s *Subtractive) Float64() float64 {
	return float64(s.Int31()) * (1.0 / mbig)
}
