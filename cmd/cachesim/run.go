package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/sarchlab/cachesim/trace"
)

var runFlags = struct {
	icache      string
	dcache      string
	l2          string
	writePolicy string
	allocPolicy string
	tracePath   string
	missLog     bool
	output      string
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace through the configured cache hierarchy",
	Long: `Replay a trace through the configured cache hierarchy. Cache ` +
		`geometries use the sets:ways:linesize[:lru] grammar. Flags left ` +
		`empty fall back to the CACHESIM_ICACHE, CACHESIM_DCACHE, and ` +
		`CACHESIM_L2 environment variables, which may come from a .env file.`,
	Run: runTrace,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.icache, "icache", "",
		"instruction cache geometry, sets:ways:linesize[:lru]")
	runCmd.Flags().StringVar(&runFlags.dcache, "dcache", "",
		"data cache geometry, sets:ways:linesize[:lru]")
	runCmd.Flags().StringVar(&runFlags.l2, "l2", "",
		"shared L2 geometry, sets:ways:linesize[:lru]")
	runCmd.Flags().StringVar(&runFlags.writePolicy, "write-policy",
		"writeback", "write policy, writeback or writethrough")
	runCmd.Flags().StringVar(&runFlags.allocPolicy, "alloc-policy",
		"writeallocate", "allocation policy, writeallocate or nowriteallocate")
	runCmd.Flags().StringVar(&runFlags.tracePath, "trace", "",
		"trace file to replay, - for stdin")
	runCmd.Flags().BoolVar(&runFlags.missLog, "miss-log", false,
		"log every miss to stderr")
	runCmd.Flags().StringVar(&runFlags.output, "output", "",
		"results database name, without the .sqlite3 suffix")

	rootCmd.AddCommand(runCmd)
}

func runTrace(_ *cobra.Command, _ []string) {
	// A missing .env file is fine; flags and the environment still apply.
	_ = godotenv.Load()

	b := makeSimulationBuilder()

	traceFile := openTrace()
	defer traceFile.Close()

	s := b.Build()
	if err := s.Drive(trace.NewReader(traceFile)); err != nil {
		fatal(err)
	}

	s.Terminate()
}

func makeSimulationBuilder() simulation.Builder {
	b := simulation.MakeBuilder().
		WithOutputFileName(runFlags.output)

	icache := flagOrEnv(runFlags.icache, "CACHESIM_ICACHE")
	dcache := flagOrEnv(runFlags.dcache, "CACHESIM_DCACHE")
	l2 := flagOrEnv(runFlags.l2, "CACHESIM_L2")

	if icache == "" && dcache == "" {
		fatal(fmt.Errorf(
			"at least one of --icache and --dcache must be configured\n%s",
			cache.ConfigUsage))
	}

	if icache != "" {
		b = b.WithICache(mustParseConfig(icache, simulation.ICacheName))
	}
	if dcache != "" {
		b = b.WithDCache(mustParseConfig(dcache, simulation.DCacheName))
	}
	if l2 != "" {
		b = b.WithL2(mustParseConfig(l2, simulation.L2CacheName))
	}

	writePolicy, err := cache.ParseWritePolicy(runFlags.writePolicy)
	if err != nil {
		fatal(err)
	}
	b = b.WithWritePolicy(writePolicy)

	allocPolicy, err := cache.ParseAllocationPolicy(runFlags.allocPolicy)
	if err != nil {
		fatal(err)
	}
	b = b.WithAllocationPolicy(allocPolicy)

	if runFlags.missLog {
		b = b.WithMissLogging(os.Stderr)
	}

	return b
}

func flagOrEnv(flagValue, envName string) string {
	if flagValue != "" {
		return flagValue
	}

	return os.Getenv(envName)
}

func mustParseConfig(s, name string) cache.Config {
	cfg, err := cache.ParseConfig(s, name)
	if err != nil {
		fatal(err)
	}

	return cfg
}

func openTrace() *os.File {
	if runFlags.tracePath == "" {
		fatal(fmt.Errorf("a trace must be provided with --trace"))
	}

	if runFlags.tracePath == "-" {
		return os.Stdin
	}

	f, err := os.Open(runFlags.tracePath)
	if err != nil {
		fatal(err)
	}

	return f
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	atexit.Exit(1)
}
