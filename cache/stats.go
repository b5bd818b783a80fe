package cache

import (
	"fmt"
	"io"
)

// Stats accumulates the traffic counters of one cache core. All counters
// are monotonically non-decreasing and reset only at construction.
type Stats struct {
	ReadAccesses  uint64
	ReadMisses    uint64
	BytesRead     uint64
	WriteAccesses uint64
	WriteMisses   uint64
	BytesWritten  uint64
	Writebacks    uint64
}

// Accesses returns the total number of accesses recorded.
func (s Stats) Accesses() uint64 {
	return s.ReadAccesses + s.WriteAccesses
}

// Misses returns the total number of misses recorded.
func (s Stats) Misses() uint64 {
	return s.ReadMisses + s.WriteMisses
}

// MissRate returns the miss rate as a percentage. The second return value
// is false when no access has been recorded, in which case no rate exists.
func (s Stats) MissRate() (float64, bool) {
	if s.Accesses() == 0 {
		return 0, false
	}

	return 100 * float64(s.Misses()) / float64(s.Accesses()), true
}

// Report writes the fixed-format statistics report, each line prefixed
// with the core's name. Nothing is written for a core that recorded no
// accesses.
func (s Stats) Report(w io.Writer, name string) {
	rate, ok := s.MissRate()
	if !ok {
		return
	}

	fmt.Fprintf(w, "%s Bytes Read:            %d\n", name, s.BytesRead)
	fmt.Fprintf(w, "%s Bytes Written:         %d\n", name, s.BytesWritten)
	fmt.Fprintf(w, "%s Read Accesses:         %d\n", name, s.ReadAccesses)
	fmt.Fprintf(w, "%s Write Accesses:        %d\n", name, s.WriteAccesses)
	fmt.Fprintf(w, "%s Read Misses:           %d\n", name, s.ReadMisses)
	fmt.Fprintf(w, "%s Write Misses:          %d\n", name, s.WriteMisses)
	fmt.Fprintf(w, "%s Writebacks:            %d\n", name, s.Writebacks)
	fmt.Fprintf(w, "%s Miss Rate:             %.3f%%\n", name, rate)
}
