// Package pipeline drives the build-time traversal of block inventory
// through an index Processor, either inline (by-block) or via a reader
// goroutine feeding a worker pool (by-batch). Grounded on wal_writer.go's
// single-loop-goroutine-over-a-channel pattern, generalized from one writer
// to a reader-producer plus N compute-consumer workers.
package pipeline

import (
	"context"
	"fmt"

	"github.com/geosindex/geosindexgo/internal/blockio"
)

// Processor is implemented by index builders (minmax.Builder, rtree.Builder
// adapters) to consume one block's data during a build.
type Processor interface {
	ProcessBlock(data blockio.BlockData) error
}

// Reader is the subset of blockio.Store the pipeline needs to enumerate and
// fetch blocks.
type Reader interface {
	BlocksInfo(ctx context.Context, key string) ([]blockio.BlockInfo, error)
	ReadBlockAxes(ctx context.Context, key string, start, count uint64) (x, y, z []float64, err error)
}

// Stats summarizes one build pipeline run.
type Stats struct {
	BlocksProcessed int
	Blocks          []blockio.BlockInfo
}

// RunByBlock implements the by-block (inline) build strategy (spec.md
// §4.1): for each block in reader order, fetch x/y/z synchronously and
// invoke processor.ProcessBlock. No queues, no workers.
func RunByBlock(ctx context.Context, reader Reader, key string, processor Processor) (Stats, error) {
	blocks, err := reader.BlocksInfo(ctx, key)
	if err != nil {
		return Stats{}, fmt.Errorf("pipeline: listing blocks for key %q: %w", key, err)
	}

	for _, blk := range blocks {
		x, y, z, err := reader.ReadBlockAxes(ctx, key, blk.Start, blk.Count)
		if err != nil {
			return Stats{}, fmt.Errorf("pipeline: reading block [%d,%d) for key %q: %w", blk.Start, blk.Start+blk.Count, key, err)
		}
		data := blockio.BlockData{X: x, Y: y, Z: z, Start: blk.Start, End: blk.Start + blk.Count, Key: key}
		if err := processor.ProcessBlock(data); err != nil {
			return Stats{}, fmt.Errorf("pipeline: processing block [%d,%d) for key %q: %w", blk.Start, blk.Start+blk.Count, key, err)
		}
	}
	return Stats{BlocksProcessed: len(blocks), Blocks: blocks}, nil
}
