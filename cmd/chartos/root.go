// Package main is the chartos binary entry point: a spf13/cobra root
// command plus a serve subcommand, replacing tegola's go-spatial/cobra
// fork-based cmd/tegola with the real upstream package, and
// chartos/make_app.py's make_app wiring function with explicit Go
// construction of each component.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:          "chartos",
	Short:        "chartos serves dynamic vector tiles out of PostGIS",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
