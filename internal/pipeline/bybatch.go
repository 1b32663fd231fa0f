package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/geosindex/geosindexgo/internal/blockio"
)

// BatchJob is a contiguous run of up to blockBatchSize blocks to be read in
// one ranged fetch (spec.md §4.1).
type BatchJob struct {
	Start, Count uint64
	Blocks       []blockio.BlockInfo
}

// planBatches partitions block inventory into contiguous batch jobs of up
// to blockBatchSize blocks each; the last batch may be short.
func planBatches(blocks []blockio.BlockInfo, blockBatchSize int) []BatchJob {
	if blockBatchSize <= 0 {
		blockBatchSize = 1
	}
	var jobs []BatchJob
	for i := 0; i < len(blocks); i += blockBatchSize {
		end := i + blockBatchSize
		if end > len(blocks) {
			end = len(blocks)
		}
		group := blocks[i:end]
		jobs = append(jobs, BatchJob{
			Start:  group[0].Start,
			Count:  (group[len(group)-1].Start + group[len(group)-1].Count) - group[0].Start,
			Blocks: group,
		})
	}
	return jobs
}

// RunByBatch implements the by-batch (pipelined) build strategy (spec.md
// §4.1): a single reader goroutine issues one ranged read per batch job and
// slices the result back along block boundaries, pushing block-data items
// to a channel drained by a pool of worker goroutines. The channel's
// capacity of blockBatchSize/2 is the idiomatic replacement for the
// sleep-and-retry backpressure loop spec.md §9 calls out: a send blocks
// naturally once the channel is full, and Go's runtime parks the blocked
// goroutine instead of busy-waiting.
func RunByBatch(ctx context.Context, reader Reader, key string, blockBatchSize, maxThreads int, processor Processor) (Stats, error) {
	blocks, err := reader.BlocksInfo(ctx, key)
	if err != nil {
		return Stats{}, fmt.Errorf("pipeline: listing blocks for key %q: %w", key, err)
	}
	if len(blocks) == 0 {
		return Stats{}, nil
	}
	if maxThreads <= 0 {
		maxThreads = 1
	}

	jobs := planBatches(blocks, blockBatchSize)
	capacity := blockBatchSize / 2
	if capacity < 1 {
		capacity = 1
	}
	items := make(chan blockio.BlockData, capacity)

	var readErr error
	var readErrOnce sync.Once
	setReadErr := func(err error) {
		readErrOnce.Do(func() { readErr = err })
	}

	go func() {
		defer close(items)
		for _, job := range jobs {
			if readErr != nil {
				return
			}
			x, y, z, err := reader.ReadBlockAxes(ctx, key, job.Start, job.Count)
			if err != nil {
				setReadErr(fmt.Errorf("pipeline: reading batch [%d,%d) for key %q: %w", job.Start, job.Start+job.Count, key, err))
				return
			}
			for _, blk := range job.Blocks {
				lo := blk.Start - job.Start
				hi := lo + blk.Count
				data := blockio.BlockData{
					X:     append([]float64(nil), x[lo:hi]...),
					Y:     append([]float64(nil), y[lo:hi]...),
					Z:     append([]float64(nil), z[lo:hi]...),
					Start: blk.Start,
					End:   blk.Start + blk.Count,
					Key:   key,
				}
				select {
				case items <- data:
				case <-ctx.Done():
					setReadErr(ctx.Err())
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	var procErrMu sync.Mutex
	var procErr error
	for w := 0; w < maxThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for data := range items {
				if err := processor.ProcessBlock(data); err != nil {
					procErrMu.Lock()
					if procErr == nil {
						procErr = fmt.Errorf("pipeline: processing block [%d,%d) for key %q: %w", data.Start, data.End, key, err)
					}
					procErrMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if readErr != nil {
		return Stats{}, readErr
	}
	if procErr != nil {
		return Stats{}, procErr
	}
	return Stats{BlocksProcessed: len(blocks), Blocks: blocks}, nil
}
