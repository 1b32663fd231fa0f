package pipeline

import (
	"github.com/geosindex/geosindexgo/internal/blockio"
	"github.com/geosindex/geosindexgo/internal/minmax"
	"github.com/geosindex/geosindexgo/internal/rtree"
)

// MinMaxProcessor adapts a minmax.Builder to Processor, fanning one block
// out to its three per-axis keys (spec.md §3, "Per-axis keys append x/y/z").
type MinMaxProcessor struct {
	Builder *minmax.Builder
}

func (p MinMaxProcessor) ProcessBlock(data blockio.BlockData) error {
	if len(data.X) == 0 {
		return nil
	}
	p.Builder.ProcessAxis(data.Key+"x", data.X, data.Start, data.End)
	p.Builder.ProcessAxis(data.Key+"y", data.Y, data.Start, data.End)
	p.Builder.ProcessAxis(data.Key+"z", data.Z, data.Start, data.End)
	return nil
}

// RTreeProcessor adapts an rtree.Builder to Processor: one envelope per
// block spans all three axes under the block's base key.
type RTreeProcessor struct {
	Builder *rtree.Builder
}

func (p RTreeProcessor) ProcessBlock(data blockio.BlockData) error {
	return p.Builder.ProcessAxes(data.Key, data.X, data.Y, data.Z, data.Start, data.End)
}
