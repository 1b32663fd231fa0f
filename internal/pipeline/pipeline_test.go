package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/geosindex/geosindexgo/internal/blockio"
	"github.com/geosindex/geosindexgo/internal/minmax"
)

func newFixtureStore() *blockio.MemStore {
	store := blockio.NewMemStore()
	store.AddBlock("/k/", []float64{1, 2, 3}, []float64{1, 2, 3}, []float64{1, 2, 3})
	store.AddBlock("/k/", []float64{4, 5}, []float64{4, 5}, []float64{4, 5})
	store.AddBlock("/k/", []float64{6, 7, 8, 9}, []float64{6, 7, 8, 9}, []float64{6, 7, 8, 9})
	return store
}

func TestRunByBlockFeedsMinMaxBuilder(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore()
	builder, err := minmax.NewBuilder(minmax.SecondaryNone, 0)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := RunByBlock(ctx, store, "/k/", MinMaxProcessor{Builder: builder})
	if err != nil {
		t.Fatal(err)
	}
	if stats.BlocksProcessed != 3 {
		t.Fatalf("expected 3 blocks processed, got %d", stats.BlocksProcessed)
	}

	primary := builder.Primary()
	list, ok := primary["/k/x"]
	if !ok || len(list.Nodes) != 3 {
		t.Fatalf("expected 3 minmax nodes for /k/x, got %+v", list)
	}
}

func TestRunByBatchFeedsMinMaxBuilderConcurrently(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore()
	builder, err := minmax.NewBuilder(minmax.SecondaryNone, 0)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := RunByBatch(ctx, store, "/k/", 2, 4, MinMaxProcessor{Builder: builder})
	if err != nil {
		t.Fatal(err)
	}
	if stats.BlocksProcessed != 3 {
		t.Fatalf("expected 3 blocks processed, got %d", stats.BlocksProcessed)
	}

	primary := builder.Primary()
	list, ok := primary["/k/x"]
	if !ok || len(list.Nodes) != 3 {
		t.Fatalf("expected 3 minmax nodes for /k/x, got %+v", list)
	}

	var sawStarts []uint64
	for _, n := range list.Nodes {
		sawStarts = append(sawStarts, n.Start)
	}
	wantStarts := map[uint64]bool{0: true, 3: true, 5: true}
	for _, s := range sawStarts {
		if !wantStarts[s] {
			t.Fatalf("unexpected block start %d in %v", s, sawStarts)
		}
	}
}

type countingProcessor struct {
	mu    sync.Mutex
	count int
}

func (c *countingProcessor) ProcessBlock(data blockio.BlockData) error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return nil
}

func TestRunByBatchProcessesEveryBlockExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore()
	proc := &countingProcessor{}

	if _, err := RunByBatch(ctx, store, "/k/", 1, 3, proc); err != nil {
		t.Fatal(err)
	}
	if proc.count != 3 {
		t.Fatalf("expected 3 ProcessBlock calls, got %d", proc.count)
	}
}
