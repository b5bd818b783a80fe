package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/viewer"
)

var viewFlags = struct {
	db   string
	port int
}{}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Serve a recorded results database over HTTP",
	Run:   view,
}

func init() {
	viewCmd.Flags().StringVar(&viewFlags.db, "db", "",
		"results database to serve, without the .sqlite3 suffix")
	viewCmd.Flags().IntVar(&viewFlags.port, "port", 0,
		"port to listen on, 0 for a random port")

	rootCmd.AddCommand(viewCmd)
}

func view(_ *cobra.Command, _ []string) {
	reader, err := datarecording.NewReader(viewFlags.db)
	if err != nil {
		fatal(err)
	}
	defer reader.Close()

	v := viewer.New(reader)
	if viewFlags.port != 0 {
		v = v.WithPortNumber(viewFlags.port)
	}

	if err := v.StartServer(); err != nil {
		fatal(err)
	}
}
