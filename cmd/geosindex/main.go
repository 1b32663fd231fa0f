// Command geosindex builds and queries MinMax and R-tree indexes over
// particle-simulation block data (spec.md §6, "CLI surface").
package main

import (
	"fmt"
	"os"

	"github.com/geosindex/geosindexgo/internal/geoslog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "geosindex",
		Short: "Build and query spatial/scalar indexes over particle block data",
	}
	root.AddCommand(newBuildCommand())
	root.AddCommand(newQueryCommand())

	if err := root.Execute(); err != nil {
		geoslog.Diagnostics.WithError(err).Error("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
