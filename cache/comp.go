// Package cache implements a functional (untimed) model of a hardware
// cache: associative tag matching, LRU or random victim selection, dirty
// tracking, and write-back/write-through propagation into an optional
// next-level cache.
package cache

import "log"

// A Handler receives the accesses a cache core forwards downward: line
// fills, writebacks, and write-through stores.
type Handler interface {
	Access(addr uint64, bytes uint64, store bool)
}

// A Comp models one cache in a hierarchy. It owns its tag storage, random
// generator, and statistics; the miss handler reference is non-owning and
// set by whoever assembles the hierarchy. A Comp with no miss handler
// treats misses as satisfied by unmodeled backing memory.
//
// A Comp is driven by exactly one logical thread of control; Access is not
// safe for concurrent use.
type Comp struct {
	name        string
	cfg         Config
	idxShift    uint
	store       tagStore
	rng         *LFSR
	missHandler Handler
	missLog     *log.Logger
	stats       Stats
}

// Name returns the core's reporting label.
func (c *Comp) Name() string {
	return c.name
}

// Config returns the configuration the core was built with.
func (c *Comp) Config() Config {
	return c.cfg
}

// Stats returns a copy of the core's counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// SetMissHandler installs the next-level core that receives this core's
// fill, writeback, and write-through traffic. The caller must keep the
// chain acyclic.
func (c *Comp) SetMissHandler(h Handler) {
	c.missHandler = h
}

// MissHandler returns the configured next-level handler, or nil.
func (c *Comp) MissHandler() Handler {
	return c.missHandler
}

// SetMissLogger enables per-miss diagnostic logging. A nil logger disables
// it.
func (c *Comp) SetMissLogger(l *log.Logger) {
	c.missLog = l
}

// Access runs the access protocol for one memory event. Forwarded accesses
// into the next level complete synchronously before Access returns.
func (c *Comp) Access(addr uint64, bytes uint64, store bool) {
	if store {
		c.stats.WriteAccesses++
		c.stats.BytesWritten += bytes
	} else {
		c.stats.ReadAccesses++
		c.stats.BytesRead += bytes
	}

	tag := addr >> c.idxShift
	if sl := c.store.lookup(tag, true); sl != nil {
		c.hit(addr, sl, store)
		return
	}

	c.miss(addr, tag, store)
}

func (c *Comp) hit(addr uint64, sl *slot, store bool) {
	if !store {
		return
	}

	if c.cfg.Write == WriteBack {
		sl.dirty = true
		return
	}

	// Write-through: the line is never held dirty locally.
	c.forward(c.lineAlign(addr), true)
}

func (c *Comp) miss(addr, tag uint64, store bool) {
	if store {
		c.stats.WriteMisses++
	} else {
		c.stats.ReadMisses++
	}

	if c.missLog != nil {
		kind := "read"
		if store {
			kind = "write"
		}
		c.missLog.Printf("%s %s miss 0x%x", c.name, kind, addr)
	}

	victim := c.store.victimize(tag, c.rng)
	if c.cfg.Write == WriteBack && victim.valid && victim.dirty {
		c.forward(victim.tag<<c.idxShift, true)
		c.stats.Writebacks++
	}

	// The fill is forwarded even on a store miss so that occupancy at
	// deeper levels reflects the line regardless of allocation policy.
	c.forward(c.lineAlign(addr), false)

	if !store {
		return
	}

	if c.cfg.Write == WriteBack {
		installed := c.store.lookup(tag, false)
		if installed == nil {
			panic("cache: freshly installed line missing from tag store")
		}
		installed.dirty = true
		return
	}

	c.forward(c.lineAlign(addr), true)
}

func (c *Comp) forward(addr uint64, store bool) {
	if c.missHandler == nil {
		return
	}

	c.missHandler.Access(addr, c.cfg.LineSize, store)
}

func (c *Comp) lineAlign(addr uint64) uint64 {
	return addr &^ (c.cfg.LineSize - 1)
}

// Snapshot deep-copies the core's tag storage, recency state, generator,
// and counters for inspection. The copy is detached: it has no miss
// handler and no miss logger.
func (c *Comp) Snapshot() *Comp {
	rng := *c.rng

	return &Comp{
		name:     c.name,
		cfg:      c.cfg,
		idxShift: c.idxShift,
		store:    c.store.snapshot(),
		rng:      &rng,
		stats:    c.stats,
	}
}
