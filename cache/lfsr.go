package cache

// lfsrTaps is the tap mask of a maximal-length 32-bit feedback polynomial.
const lfsrTaps uint32 = 0xd0000001

// An LFSR is a 32-bit linear-feedback shift register. It is the
// deterministic bit source behind the random replacement policy: two cores
// seeded identically and driven with the same access sequence make
// identical eviction decisions.
type LFSR struct {
	state uint32
}

// NewLFSR creates an LFSR with the given seed. Zero is an absorbing state
// that would produce an all-zero stream, so it is rejected.
func NewLFSR(seed uint32) *LFSR {
	if seed == 0 {
		panic("lfsr: seed must not be zero")
	}

	return &LFSR{state: seed}
}

// Next advances the register and returns the new state.
func (l *LFSR) Next() uint32 {
	l.state = (l.state >> 1) ^ (-(l.state & 1) & lfsrTaps)
	return l.state
}
