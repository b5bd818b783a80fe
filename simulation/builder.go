package simulation

import (
	"io"
	"log"
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/trace"
)

// The reporting labels of the standard three-core hierarchy.
const (
	ICacheName  = "I$"
	DCacheName  = "D$"
	L2CacheName = "L2$"
)

// Builder can be used to build a simulation.
type Builder struct {
	icacheConfig *cache.Config
	dcacheConfig *cache.Config
	l2Config     *cache.Config

	writePolicy      cache.WritePolicy
	allocationPolicy cache.AllocationPolicy

	missLogWriter  io.Writer
	reportWriter   io.Writer
	outputFileName string
}

// MakeBuilder creates a new builder. By default no cache is configured,
// the hierarchy is write-back/write-allocate, reports go to stdout, and
// miss logging is off.
func MakeBuilder() Builder {
	return Builder{
		writePolicy:      cache.WriteBack,
		allocationPolicy: cache.WriteAllocate,
		reportWriter:     os.Stdout,
	}
}

// WithICache configures the instruction cache.
func (b Builder) WithICache(cfg cache.Config) Builder {
	cfg.Name = ICacheName
	b.icacheConfig = &cfg
	return b
}

// WithDCache configures the data cache.
func (b Builder) WithDCache(cfg cache.Config) Builder {
	cfg.Name = DCacheName
	b.dcacheConfig = &cfg
	return b
}

// WithL2 configures the shared second-level cache.
func (b Builder) WithL2(cfg cache.Config) Builder {
	cfg.Name = L2CacheName
	b.l2Config = &cfg
	return b
}

// WithWritePolicy sets the write policy of every core in the hierarchy.
func (b Builder) WithWritePolicy(p cache.WritePolicy) Builder {
	b.writePolicy = p
	return b
}

// WithAllocationPolicy sets the allocation policy of every core in the
// hierarchy.
func (b Builder) WithAllocationPolicy(p cache.AllocationPolicy) Builder {
	b.allocationPolicy = p
	return b
}

// WithMissLogging makes every core log its misses to w.
func (b Builder) WithMissLogging(w io.Writer) Builder {
	b.missLogWriter = w
	return b
}

// WithReportWriter redirects the teardown reports, which go to stdout by
// default.
func (b Builder) WithReportWriter(w io.Writer) Builder {
	b.reportWriter = w
	return b
}

// WithOutputFileName sets a custom results-database name.
func (b Builder) WithOutputFileName(name string) Builder {
	b.outputFileName = name
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.icacheConfig == nil && b.dcacheConfig == nil {
		panic("at least one top-level cache must be configured")
	}
}

// Build builds the simulation: it constructs the configured cores, links
// the top-level caches above the L2 when one is present, and opens the
// results database.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		coreNameIndex: make(map[string]int),
		reportWriter:  b.reportWriter,
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "cachesim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)
	s.dataRecorder.CreateTable("cache_stats", statsEntry{})

	var missLog *log.Logger
	if b.missLogWriter != nil {
		missLog = log.New(b.missLogWriter, "", 0)
	}

	buildCore := func(cfg cache.Config) *cache.Comp {
		c := cache.MakeBuilder().
			WithConfig(cfg).
			WithWritePolicy(b.writePolicy).
			WithAllocationPolicy(b.allocationPolicy).
			WithMissLogger(missLog).
			Build()
		s.RegisterCore(c)

		return c
	}

	var icache, dcache *cache.Comp
	if b.icacheConfig != nil {
		icache = buildCore(*b.icacheConfig)
	}
	if b.dcacheConfig != nil {
		dcache = buildCore(*b.dcacheConfig)
	}

	if b.l2Config != nil {
		buildCore(*b.l2Config)

		if icache != nil {
			s.MustLink(ICacheName, L2CacheName)
		}
		if dcache != nil {
			s.MustLink(DCacheName, L2CacheName)
		}
	}

	s.router = trace.NewRouter(handlerOrNil(icache), handlerOrNil(dcache))

	return s
}

// handlerOrNil avoids wrapping a nil *cache.Comp in a non-nil Handler
// interface value.
func handlerOrNil(c *cache.Comp) cache.Handler {
	if c == nil {
		return nil
	}

	return c
}
