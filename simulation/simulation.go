// Package simulation assembles cache hierarchies, drives them with memory
// traces, and records their results.
package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/trace"
)

// statsEntry is one cache core's final counters in the results database.
type statsEntry struct {
	Core          string
	Sets          uint64
	Ways          uint64
	LineSize      uint64
	Replacement   string
	WritePolicy   string
	ReadAccesses  uint64
	ReadMisses    uint64
	BytesRead     uint64
	WriteAccesses uint64
	WriteMisses   uint64
	BytesWritten  uint64
	Writebacks    uint64
	MissRate      float64
}

// A Simulation owns the cache cores of one trace run: it keeps the core
// registry, guarantees the hierarchy stays an acyclic chain, routes trace
// events, and emits reports and recorded results at teardown.
type Simulation struct {
	id string

	cores         []*cache.Comp
	coreNameIndex map[string]int
	router        *trace.Router

	dataRecorder datarecording.DataRecorder
	reportWriter io.Writer
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// DataRecorder returns the data recorder used by the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// RegisterCore registers a cache core with the simulation. Core names must
// be unique.
func (s *Simulation) RegisterCore(c *cache.Comp) {
	name := c.Name()
	if _, ok := s.coreNameIndex[name]; ok {
		panic("core " + name + " already registered")
	}

	s.cores = append(s.cores, c)
	s.coreNameIndex[name] = len(s.cores) - 1
}

// CoreByName returns the registered core with the given name.
func (s *Simulation) CoreByName(name string) *cache.Comp {
	index, ok := s.coreNameIndex[name]
	if !ok {
		panic("core " + name + " not registered")
	}

	return s.cores[index]
}

// Cores returns the registered cores in registration order.
func (s *Simulation) Cores() []*cache.Comp {
	return s.cores
}

// MustLink makes lower the miss handler of upper. It panics if the link
// would make the hierarchy anything but an acyclic chain.
func (s *Simulation) MustLink(upper, lower string) {
	upperCore := s.CoreByName(upper)
	lowerCore := s.CoreByName(lower)

	if upperCore == lowerCore {
		panic("core " + upper + " cannot be its own miss handler")
	}

	for c := lowerCore; c != nil; {
		next, ok := c.MissHandler().(*cache.Comp)
		if !ok {
			break
		}
		if next == upperCore {
			panic(fmt.Sprintf(
				"linking %s below %s would create a cycle", lower, upper))
		}
		c = next
	}

	upperCore.SetMissHandler(lowerCore)
}

// Route delivers one trace event to the hierarchy.
func (s *Simulation) Route(e trace.Event) {
	s.router.Route(e)
}

// Drive pulls events from the reader until the trace is exhausted.
func (s *Simulation) Drive(r *trace.Reader) error {
	for {
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		s.Route(e)
	}
}

// Terminate finalizes the run: every core that saw traffic reports its
// counters, final statistics are recorded, and the recorder is closed.
func (s *Simulation) Terminate() {
	for _, c := range s.cores {
		stats := c.Stats()
		stats.Report(s.reportWriter, c.Name())

		rate, ok := stats.MissRate()
		if !ok {
			continue
		}

		cfg := c.Config()
		s.dataRecorder.InsertData("cache_stats", statsEntry{
			Core:          c.Name(),
			Sets:          cfg.Sets,
			Ways:          cfg.Ways,
			LineSize:      cfg.LineSize,
			Replacement:   cfg.Replacement.String(),
			WritePolicy:   cfg.Write.String(),
			ReadAccesses:  stats.ReadAccesses,
			ReadMisses:    stats.ReadMisses,
			BytesRead:     stats.BytesRead,
			WriteAccesses: stats.WriteAccesses,
			WriteMisses:   stats.WriteMisses,
			BytesWritten:  stats.BytesWritten,
			Writebacks:    stats.Writebacks,
			MissRate:      rate,
		})
	}

	s.dataRecorder.Close()
}
