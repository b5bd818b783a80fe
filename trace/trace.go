// Package trace models the memory-event stream that drives a cache
// hierarchy: event classification, a text trace reader, and the router
// that fans events out to the top-level caches.
package trace

import (
	"github.com/sarchlab/cachesim/cache"
)

// An AccessType classifies one memory event. Every event is exactly one of
// the three kinds.
type AccessType int

// The memory event kinds.
const (
	Fetch AccessType = iota
	Load
	Store
)

func (t AccessType) String() string {
	switch t {
	case Fetch:
		return "fetch"
	case Load:
		return "load"
	case Store:
		return "store"
	}

	return "unknown"
}

// An Event is one memory access observed by the trace source.
type Event struct {
	Type  AccessType
	Addr  uint64
	Bytes uint64
}

// A Router fans events out to the top-level cache cores: fetches go to the
// instruction cache, loads and stores to the data cache. A core left nil
// simply does not observe its event class.
type Router struct {
	icache cache.Handler
	dcache cache.Handler
}

// NewRouter creates a Router over the given top-level cores.
func NewRouter(icache, dcache cache.Handler) *Router {
	return &Router{icache: icache, dcache: dcache}
}

// Route delivers one event to the core interested in it.
func (r *Router) Route(e Event) {
	switch e.Type {
	case Fetch:
		if r.icache != nil {
			r.icache.Access(e.Addr, e.Bytes, false)
		}
	case Load:
		if r.dcache != nil {
			r.dcache.Access(e.Addr, e.Bytes, false)
		}
	case Store:
		if r.dcache != nil {
			r.dcache.Access(e.Addr, e.Bytes, true)
		}
	}
}
