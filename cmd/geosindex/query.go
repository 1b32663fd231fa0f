package main

import (
	"fmt"

	"github.com/geosindex/geosindexgo/internal/geoslog"
	"github.com/geosindex/geosindexgo/internal/minmax"
	"github.com/geosindex/geosindexgo/internal/rtree"
	"github.com/geosindex/geosindexgo/internal/storage"
	"github.com/spf13/cobra"
)

type queryFlags struct {
	indexSaveBase string
	indexType     string
	backend       string
	queryKey      string
}

func newQueryCommand() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Report index metadata for a key (unbounded range over the tree/list)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.indexSaveBase, "index-base", "i", "", "index save path/namespace base")
	flags.StringVarP(&f.indexType, "type", "t", "minmax", "index type: minmax|rtree")
	flags.StringVarP(&f.backend, "backend", "d", "file", "storage backend: file|kv")
	flags.StringVarP(&f.queryKey, "key", "k", "", "query key")

	return cmd
}

// runQuery reports metadata for queryKey: the R-tree's leaf envelopes via the
// unbounded-probe form of its range query (spec.md §4.5 "Metadata root /
// leaves"), or the MinMax list's full node set, decoded directly from the
// stored record. The CLI surface (spec.md §6) does not expose min/max probe
// flags; bounded range queries are reserved for the language bindings this
// specification treats as an external collaborator.
func runQuery(f *queryFlags) error {
	defer geoslog.Stage("query")()

	backendKind, err := storage.ParseKind(f.backend)
	if err != nil {
		return err
	}

	reader, err := storage.NewReader(backendKind, f.indexSaveBase)
	if err != nil {
		return fmt.Errorf("query: opening backend: %w", err)
	}
	defer reader.Close()

	switch f.indexType {
	case "minmax":
		return queryMinMax(reader, f.queryKey)
	case "rtree":
		return queryRTree(reader, f.queryKey)
	default:
		return fmt.Errorf("query: unknown index type %q", f.indexType)
	}
}

func queryMinMax(reader storage.Reader, key string) error {
	data, err := reader.Get(key)
	if err != nil {
		geoslog.Diagnostics.WithField("key", key).Warn("metadata-missing")
		return err
	}
	list, err := minmax.Decode(data)
	if err != nil {
		return fmt.Errorf("query: decoding minmax list for key %q: %w", key, err)
	}
	for _, n := range list.Nodes {
		fmt.Printf("%d\t%d\t%g\t%g\n", n.Start, n.End, n.Min, n.Max)
	}
	return nil
}

func queryRTree(reader storage.Reader, key string) error {
	leaves, err := rtree.MetaDataLeaves(reader, key)
	if err != nil {
		geoslog.Diagnostics.WithField("key", key).Warn("metadata-missing")
		return err
	}
	for _, e := range leaves {
		fmt.Printf("%d\t%d\t%g\t%g\t%g\t%g\t%g\t%g\n", e.Start, e.End, e.MinX, e.MaxX, e.MinY, e.MaxY, e.MinZ, e.MaxZ)
	}
	return nil
}
