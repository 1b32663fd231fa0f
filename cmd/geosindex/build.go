package main

import (
	"context"
	"fmt"

	"github.com/geosindex/geosindexgo/internal/blockio"
	"github.com/geosindex/geosindexgo/internal/bloomfilter"
	"github.com/geosindex/geosindexgo/internal/geoslog"
	"github.com/geosindex/geosindexgo/internal/minmax"
	"github.com/geosindex/geosindexgo/internal/pipeline"
	"github.com/geosindex/geosindexgo/internal/rtree"
	"github.com/geosindex/geosindexgo/internal/storage"
	"github.com/geosindex/geosindexgo/internal/strtree"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	inputFile        string
	workerCount      int
	readerThreads    int
	iteration        int
	indexSaveBase    string
	blockBatchSize   int
	indexType        string
	attribute        string
	species          string
	backend          string
	secondary        string
	inblockSliceSize int
	bloom            bool
}

func newBuildCommand() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a MinMax or R-tree index from block data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.inputFile, "input-file", "f", "", "input fixture file")
	flags.IntVarP(&f.workerCount, "workers", "m", 1, "worker thread count (by-batch mode only)")
	flags.IntVarP(&f.readerThreads, "reader-threads", "n", 1, "reader thread count (spec pins this at one reader)")
	flags.IntVar(&f.iteration, "iteration", 0, "iteration number")
	flags.StringVarP(&f.indexSaveBase, "index-base", "i", "", "index save path/namespace base")
	flags.IntVarP(&f.blockBatchSize, "batch-size", "b", 0, "block batch size (0 selects by-block mode)")
	flags.StringVarP(&f.indexType, "type", "t", "minmax", "index type: minmax|rtree")
	flags.StringVarP(&f.attribute, "attribute", "p", "position", "particle attribute")
	flags.StringVarP(&f.species, "species", "s", "", "particle species")
	flags.StringVarP(&f.backend, "backend", "d", "file", "storage backend: file|kv")
	flags.StringVarP(&f.secondary, "secondary", "x", "none", "secondary index type: none|minmax (minmax index only; any other value builds no secondary index)")
	flags.IntVarP(&f.inblockSliceSize, "inblock-slice-size", "l", 1000, "intra-block slice size for secondary minmax")
	flags.BoolVar(&f.bloom, "bloom", false, "enable Bloom-filter enrichment for rtree identifier tracing")

	return cmd
}

func runBuild(ctx context.Context, f *buildFlags) error {
	defer geoslog.Stage("build")()

	backendKind, err := storage.ParseKind(f.backend)
	if err != nil {
		return err
	}

	store, err := blockio.LoadMemStoreFile(f.inputFile)
	if err != nil {
		return fmt.Errorf("build: loading input file: %w", err)
	}

	key := fmt.Sprintf("/data/%d/particles/%s/%s/", f.iteration, f.species, f.attribute)

	switch f.indexType {
	case "minmax":
		return buildMinMax(ctx, store, key, backendKind, f)
	case "rtree":
		return buildRTree(ctx, store, key, backendKind, f)
	default:
		return fmt.Errorf("build: unknown index type %q", f.indexType)
	}
}

func buildMinMax(ctx context.Context, store *blockio.MemStore, key string, backendKind storage.Kind, f *buildFlags) error {
	secondary := minmax.SecondaryNone
	if f.secondary == minmax.SecondaryMinMax {
		secondary = minmax.SecondaryMinMax
	}
	builder, err := minmax.NewBuilder(secondary, f.inblockSliceSize)
	if err != nil {
		return err
	}

	stats, err := runPipeline(ctx, store, key, f, pipeline.MinMaxProcessor{Builder: builder})
	if err != nil {
		return err
	}

	writer, err := storage.NewBuilder(backendKind, f.indexSaveBase)
	if err != nil {
		return fmt.Errorf("build: opening primary backend: %w", err)
	}
	for axisKey, list := range builder.Primary() {
		if err := writer.Put(axisKey, list.Encode()); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if secondary != minmax.SecondaryNone {
		secWriter, err := storage.NewBuilder(backendKind, f.indexSaveBase+".secondary")
		if err != nil {
			return fmt.Errorf("build: opening secondary backend: %w", err)
		}
		for axisKey, list := range builder.Secondary() {
			if err := secWriter.Put(axisKey, list.Encode()); err != nil {
				return err
			}
		}
		if err := secWriter.Close(); err != nil {
			return err
		}
	}

	return pipeline.WriteBlockMeta(f.indexSaveBase+".blockmeta", f.iteration, stats.Blocks)
}

func buildRTree(ctx context.Context, store *blockio.MemStore, key string, backendKind storage.Kind, f *buildFlags) error {
	bloomOpts := rtree.BloomOptions{}
	if f.bloom {
		bloomOpts = rtree.BloomOptions{
			Enabled:     true,
			IDKey:       key + "id",
			MaxSizeBits: bloomfilter.DefaultMaxSizeBits,
			ReadIDs: func(idKey string, start, end uint64) ([]uint64, error) {
				return store.ReadIdentifiers(ctx, idKey, start, end-start)
			},
		}
	}
	builder := rtree.NewBuilder(strtree.DefaultLeafSize, bloomOpts)

	stats, err := runPipeline(ctx, store, key, f, pipeline.RTreeProcessor{Builder: builder})
	if err != nil {
		return err
	}

	trees, err := builder.Trees()
	if err != nil {
		return fmt.Errorf("build: bulk-loading rtrees: %w", err)
	}

	writer, err := storage.NewBuilder(backendKind, f.indexSaveBase)
	if err != nil {
		return fmt.Errorf("build: opening primary backend: %w", err)
	}
	for treeKey, root := range trees {
		if err := writer.Put(treeKey, strtree.Serialize(root)); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return pipeline.WriteBlockMeta(f.indexSaveBase+".blockmeta", f.iteration, stats.Blocks)
}

func runPipeline(ctx context.Context, store *blockio.MemStore, key string, f *buildFlags, proc pipeline.Processor) (pipeline.Stats, error) {
	if f.blockBatchSize <= 0 {
		return pipeline.RunByBlock(ctx, store, key, proc)
	}
	return pipeline.RunByBatch(ctx, store, key, f.blockBatchSize, f.workerCount, proc)
}
