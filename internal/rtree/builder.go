// Package rtree builds and queries the 3-D R-tree index: per-block bounding
// envelopes bulk-loaded into an STR tree, with optional per-subtree Bloom
// filters for identifier tracing. Grounded on
// _examples/original_source/src/rtreebuild.cpp and rtreequery.cpp.
package rtree

import (
	"fmt"
	"sort"
	"sync"

	"github.com/geosindex/geosindexgo/internal/bloomfilter"
	"github.com/geosindex/geosindexgo/internal/strtree"
)

// IdentifierReader reads the particle identifier array for [start, end) at
// the given key, the "readIDData" operation of the upstream reader.
type IdentifierReader func(key string, start, end uint64) ([]uint64, error)

// BloomOptions configures identifier-tracing enrichment (spec.md §4.3).
type BloomOptions struct {
	Enabled     bool
	IDKey       string
	MaxSizeBits uint
	ReadIDs     IdentifierReader
}

// Builder accumulates per-key envelope lists across concurrently processed
// blocks, then bulk-loads an STR tree per key at persist time. It
// implements pipeline.Processor.
type Builder struct {
	leafSize int
	bloom    BloomOptions

	mu   sync.Mutex
	envs map[string][]strtree.Envelope3d
}

// NewBuilder constructs a Builder with the given STR-tree leaf fan-out
// (strtree.DefaultLeafSize when leafSize <= 0) and optional Bloom
// enrichment.
func NewBuilder(leafSize int, bloom BloomOptions) *Builder {
	if leafSize <= 0 {
		leafSize = strtree.DefaultLeafSize
	}
	return &Builder{
		leafSize: leafSize,
		bloom:    bloom,
		envs:     make(map[string][]strtree.Envelope3d),
	}
}

// ProcessAxes computes the bounding envelope of one block's x/y/z arrays
// and appends it to the per-key envelope list.
func (b *Builder) ProcessAxes(key string, x, y, z []float64, start, end uint64) error {
	if len(x) == 0 || len(y) == 0 || len(z) == 0 {
		return nil
	}
	if len(x) != len(y) || len(y) != len(z) {
		return fmt.Errorf("rtree: mismatched axis lengths for key %q: x=%d y=%d z=%d", key, len(x), len(y), len(z))
	}

	env := strtree.Envelope3d{
		MinX: minSlice(x), MaxX: maxSlice(x),
		MinY: minSlice(y), MaxY: maxSlice(y),
		MinZ: minSlice(z), MaxZ: maxSlice(z),
		Start: start, End: end,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.envs[key] = append(b.envs[key], env)
	return nil
}

// Trees bulk-loads and (if configured) Bloom-enriches an STR tree per key.
// It is only safe to call after all producers have finished calling
// ProcessAxes.
func (b *Builder) Trees() (map[string]*strtree.Node, error) {
	out := make(map[string]*strtree.Node, len(b.envs))
	for key, envs := range b.envs {
		root := strtree.BulkLoad(envs, b.leafSize)
		if b.bloom.Enabled {
			if err := b.enrich(root); err != nil {
				return nil, fmt.Errorf("rtree: bloom enrichment for key %q: %w", key, err)
			}
		}
		out[key] = root
	}
	return out, nil
}

// enrich reads the full identifier range covered by root and post-order
// walks the tree, attaching a Bloom filter to every node except the root.
func (b *Builder) enrich(root *strtree.Node) error {
	maxLevel := root.Level
	ids, err := b.bloom.ReadIDs(b.bloom.IDKey, root.Bounds.Start, root.Bounds.End)
	if err != nil {
		return err
	}

	var walk func(n *strtree.Node) []uint64
	walk = func(n *strtree.Node) []uint64 {
		var sub []uint64
		for _, c := range n.Children {
			sub = append(sub, walk(c)...)
		}
		if n.IsLeaf() {
			sub = idsInRange(ids, root.Bounds.Start, n.Bounds.Start, n.Bounds.End)
		}
		if n.Level == maxLevel {
			// root: never enriched, but its id set is still returned so
			// callers one level down can be built from it.
			return sub
		}
		bitsPerKey := uint(maxLevel-n.Level) + 1
		filter := bloomfilter.Build(sub, bitsPerKey, b.bloom.MaxSizeBits)
		data, err := filter.MarshalBinary()
		if err == nil {
			n.Bounds.Bloom = data
		}
		return sub
	}
	walk(root)
	return nil
}

// idsInRange returns the slice of ids covering particle range [start, end)
// given that ids[0] corresponds to particle offset idsBase.
func idsInRange(ids []uint64, idsBase, start, end uint64) []uint64 {
	if start < idsBase {
		start = idsBase
	}
	lo := start - idsBase
	hi := end - idsBase
	if hi > uint64(len(ids)) {
		hi = uint64(len(ids))
	}
	if lo > hi {
		return nil
	}
	out := make([]uint64, hi-lo)
	copy(out, ids[lo:hi])
	return out
}

func minSlice(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxSlice(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// sortedUnique64 is a small helper used by the query path's interacted
// tracing to produce the sorted intersection of two id sets.
func sortedUnique64(ids []uint64) []uint64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	var prev uint64
	for i, v := range ids {
		if i == 0 || v != prev {
			out = append(out, v)
		}
		prev = v
	}
	return out
}
