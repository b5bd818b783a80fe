package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// A ReplacementPolicy decides which resident line a miss evicts.
type ReplacementPolicy int

// The supported replacement policies.
const (
	Random ReplacementPolicy = iota
	LRU
)

func (p ReplacementPolicy) String() string {
	switch p {
	case Random:
		return "random"
	case LRU:
		return "lru"
	}

	return "unknown"
}

// A WritePolicy decides when a store is propagated to the next level.
type WritePolicy int

// The supported write policies.
const (
	WriteBack WritePolicy = iota
	WriteThrough
)

func (p WritePolicy) String() string {
	switch p {
	case WriteBack:
		return "writeback"
	case WriteThrough:
		return "writethrough"
	}

	return "unknown"
}

// An AllocationPolicy decides whether a store miss installs a line locally.
type AllocationPolicy int

// The supported allocation policies.
const (
	WriteAllocate AllocationPolicy = iota
	NoWriteAllocate
)

func (p AllocationPolicy) String() string {
	switch p {
	case WriteAllocate:
		return "writeallocate"
	case NoWriteAllocate:
		return "nowriteallocate"
	}

	return "unknown"
}

// ConfigUsage describes the accepted cache-geometry grammar. It is the
// diagnostic shown to the operator when a configuration cannot be parsed.
const ConfigUsage = `cache configurations must be of the form
  sets:ways:linesize      (random replacement)
  sets:ways:linesize:lru  (LRU replacement)
where sets, ways, and linesize are positive integers, with sets and
linesize both powers of two and linesize at least 8`

// A Config describes the geometry and policies of one cache core.
type Config struct {
	Name        string
	Sets        uint64
	Ways        uint64
	LineSize    uint64
	Replacement ReplacementPolicy
	Write       WritePolicy
	Allocation  AllocationPolicy
}

// ParseConfig parses the sets:ways:linesize[:lru] grammar into a Config
// carrying the given name. The write and allocation policies are separate
// configuration values and keep their zero defaults here.
func ParseConfig(s, name string) (Config, error) {
	cfg := Config{Name: name}

	fields := strings.Split(s, ":")
	if len(fields) != 3 && len(fields) != 4 {
		return Config{}, configError(s)
	}

	var err error
	cfg.Sets, err = strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Config{}, configError(s)
	}

	cfg.Ways, err = strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Config{}, configError(s)
	}

	cfg.LineSize, err = strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Config{}, configError(s)
	}

	if len(fields) == 4 {
		if fields[3] != "lru" {
			return Config{}, configError(s)
		}
		cfg.Replacement = LRU
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseWritePolicy recognizes the write-policy configuration tokens.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch strings.ToLower(s) {
	case "writeback", "write-back", "wb":
		return WriteBack, nil
	case "writethrough", "write-through", "wt":
		return WriteThrough, nil
	}

	return 0, fmt.Errorf(
		"unknown write policy %q, expecting writeback or writethrough", s)
}

// ParseAllocationPolicy recognizes the allocation-policy configuration
// tokens.
func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch strings.ToLower(s) {
	case "writeallocate", "write-allocate", "wa":
		return WriteAllocate, nil
	case "nowriteallocate", "no-write-allocate", "nwa":
		return NoWriteAllocate, nil
	}

	return 0, fmt.Errorf(
		"unknown allocation policy %q, "+
			"expecting writeallocate or nowriteallocate", s)
}

// Validate reports the first geometry violation, if any.
func (c Config) Validate() error {
	if c.Sets == 0 || !isPowerOfTwo(c.Sets) {
		return fmt.Errorf(
			"cache %s: sets must be a power of two, got %d\n%s",
			c.Name, c.Sets, ConfigUsage)
	}

	if c.Ways == 0 {
		return fmt.Errorf(
			"cache %s: ways must be positive\n%s", c.Name, ConfigUsage)
	}

	if c.LineSize < 8 || !isPowerOfTwo(c.LineSize) {
		return fmt.Errorf(
			"cache %s: linesize must be a power of two no smaller than 8, "+
				"got %d\n%s",
			c.Name, c.LineSize, ConfigUsage)
	}

	return nil
}

func configError(s string) error {
	return fmt.Errorf("malformed cache configuration %q\n%s", s, ConfigUsage)
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
