package cache

import (
	"log"
	"math/bits"
)

// A single-set cache with more ways than this is represented with the
// map-backed fully-associative store; a degenerate one-set array with many
// ways scans every way on every probe. The threshold is empirical.
const fullyAssocWayThreshold = 4

// defaultLFSRSeed is the fixed non-zero seed shared by all cores so that
// runs are reproducible.
const defaultLFSRSeed = 1

// A Builder can build cache cores.
type Builder struct {
	cfg     Config
	seed    uint32
	missLog *log.Logger
}

// MakeBuilder creates a Builder with a 64-set, 4-way, 64-byte-line LRU
// write-back configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: Config{
			Name:        "Cache",
			Sets:        64,
			Ways:        4,
			LineSize:    64,
			Replacement: LRU,
			Write:       WriteBack,
			Allocation:  WriteAllocate,
		},
		seed: defaultLFSRSeed,
	}
}

// WithConfig sets the full configuration of the core to build.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithName sets the core's reporting label.
func (b Builder) WithName(name string) Builder {
	b.cfg.Name = name
	return b
}

// WithWritePolicy sets the write policy of the core to build.
func (b Builder) WithWritePolicy(p WritePolicy) Builder {
	b.cfg.Write = p
	return b
}

// WithAllocationPolicy sets the allocation policy of the core to build.
func (b Builder) WithAllocationPolicy(p AllocationPolicy) Builder {
	b.cfg.Allocation = p
	return b
}

// WithMissLogger enables per-miss diagnostic logging on the built core.
func (b Builder) WithMissLogger(l *log.Logger) Builder {
	b.missLog = l
	return b
}

// WithLFSRSeed sets the seed of the core's random generator.
func (b Builder) WithLFSRSeed(seed uint32) Builder {
	b.seed = seed
	return b
}

func (b Builder) mustHaveValidParams() {
	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	if b.seed == 0 {
		panic("cache: lfsr seed must not be zero")
	}
}

// Build builds the cache core. Single-set configurations with many ways
// get the fully-associative representation; everything else gets the
// array-backed set-associative one.
func (b Builder) Build() *Comp {
	b.mustHaveValidParams()

	lru := b.cfg.Replacement == LRU

	var store tagStore
	if b.cfg.Sets == 1 && b.cfg.Ways > fullyAssocWayThreshold {
		store = newFullyAssocStore(b.cfg.Ways, lru)
	} else {
		store = newSetAssocStore(b.cfg.Sets, b.cfg.Ways, lru)
	}

	return &Comp{
		name:     b.cfg.Name,
		cfg:      b.cfg,
		idxShift: uint(bits.TrailingZeros64(b.cfg.LineSize)),
		store:    store,
		rng:      NewLFSR(b.seed),
		missLog:  b.missLog,
	}
}
