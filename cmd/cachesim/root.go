package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays memory traces through a model of a cache hierarchy.",
	Long: `cachesim replays a trace of instruction fetches, loads, and stores ` +
		`through a split L1 (instruction + data) cache hierarchy with an ` +
		`optional shared L2, under selectable replacement, write, and ` +
		`allocation policies. Each run reports per-cache traffic counters ` +
		`and stores them in a results database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
