package rtree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/geosindex/geosindexgo/internal/strtree"
)

// Source abstracts a single-key record lookup, implemented by both the file
// and KV storage backends (see internal/storage).
type Source interface {
	Get(key string) ([]byte, error)
}

// SubResult is a matched secondary-tree leaf.
type SubResult struct {
	Start, End uint64
}

// BlockResult is a matched primary-tree leaf, with any matching
// secondary-tree leaves keyed by their decimal start offset.
type BlockResult struct {
	Start, End uint64
	SubSlices  map[string]SubResult
}

// TracingResult accumulates the identifiers the caller asked to trace that
// landed in one leaf block.
type TracingResult struct {
	Start, End uint64
	IDs        []uint64
}

// LoadTree reads and deserializes the tree stored under key.
func LoadTree(source Source, key string) (*strtree.Node, error) {
	data, err := source.Get(key)
	if err != nil {
		return nil, err
	}
	root, err := strtree.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("rtree: decoding tree for key %q: %w", key, err)
	}
	return root, nil
}

// QueryEnvelope descends the tree rooted at key and returns the leaf
// envelopes that intersect probe.
func QueryEnvelope(source Source, key string, probe strtree.Envelope3d) ([]strtree.Envelope3d, error) {
	root, err := LoadTree(source, key)
	if err != nil {
		return nil, err
	}
	var hits []strtree.Envelope3d
	var match func(n *strtree.Node)
	match = func(n *strtree.Node) {
		if !n.Bounds.Intersects(probe) {
			return
		}
		if n.IsLeaf() {
			hits = append(hits, n.Bounds)
			return
		}
		for _, c := range n.Children {
			match(c)
		}
	}
	match(root)
	return hits, nil
}

// QueryXYZ implements query_xyz(key, minx..maxz): range query the primary
// tree, and for every hit block with a secondary tree (key+blockStart),
// range query that too and populate SubSlices.
func QueryXYZ(primary Source, secondary Source, key string, probe strtree.Envelope3d) (map[string]BlockResult, error) {
	hits, err := QueryEnvelope(primary, key, probe)
	if err != nil {
		return nil, err
	}

	results := make(map[string]BlockResult, len(hits))
	for _, env := range hits {
		blockKey := strconv.FormatUint(env.Start, 10)
		result := BlockResult{Start: env.Start, End: env.End}

		if secondary != nil {
			subHits, err := QueryEnvelope(secondary, key+blockKey, probe)
			if err == nil {
				subSlices := make(map[string]SubResult, len(subHits))
				for _, sub := range subHits {
					subSlices[strconv.FormatUint(sub.Start, 10)] = SubResult{Start: sub.Start, End: sub.End}
				}
				result.SubSlices = subSlices
			}
			// metadata-missing for the secondary tree: leave SubSlices nil
			// rather than failing the whole query.
		}
		results[blockKey] = result
	}
	return results, nil
}

// MetaDataLeaves is QueryEnvelope with an unbounded probe: every leaf in
// the tree.
func MetaDataLeaves(source Source, key string) ([]strtree.Envelope3d, error) {
	return QueryEnvelope(source, key, strtree.UnboundedEnvelope())
}

// MetaDataRoot returns the root envelope alone, without descending.
func MetaDataRoot(source Source, key string) (strtree.Envelope3d, error) {
	root, err := LoadTree(source, key)
	if err != nil {
		return strtree.Envelope3d{}, err
	}
	return root.Bounds, nil
}

// Trace walks the tree from the root once per id, descending into any
// child whose Bloom filter declares may-contain and accumulating the id
// under its leaf block's start in the returned map. It relies solely on
// Bloom filters, never on envelope containment (spec.md §4.5): false
// positives at internal nodes cause redundant subtree work, at leaves they
// cause spurious (leaf_start -> id) pairs. Callers must treat the result as
// a may-contain set.
func Trace(source Source, key string, ids []uint64) (map[string]TracingResult, error) {
	root, err := LoadTree(source, key)
	if err != nil {
		return nil, err
	}

	results := make(map[string]TracingResult)
	for _, id := range ids {
		if root.IsLeaf() {
			// Single-leaf tree: the root is the only block.
			if root.MayMatch(id) {
				key := strconv.FormatUint(root.Bounds.Start, 10)
				r, ok := results[key]
				if !ok {
					r = TracingResult{Start: root.Bounds.Start, End: root.Bounds.End}
				}
				r.IDs = append(r.IDs, id)
				results[key] = r
			}
			continue
		}
		traceOne(root, id, results)
	}
	return results, nil
}

func traceOne(n *strtree.Node, id uint64, results map[string]TracingResult) {
	for _, child := range n.Children {
		if !child.MayMatch(id) {
			continue
		}
		if child.IsLeaf() {
			key := strconv.FormatUint(child.Bounds.Start, 10)
			r, ok := results[key]
			if !ok {
				r = TracingResult{Start: child.Bounds.Start, End: child.Bounds.End}
			}
			r.IDs = append(r.IDs, id)
			results[key] = r
			continue
		}
		traceOne(child, id, results)
	}
}

// momentumKey substitutes the first occurrence of "position" with
// "momentum" in key, reporting whether a substitution was made.
func momentumKey(key string) (string, bool) {
	idx := strings.Index(key, "position")
	if idx < 0 {
		return key, false
	}
	return key[:idx] + "momentum" + key[idx+len("position"):], true
}

// TraceInteracted runs Trace on key (expected to be a position key) and on
// the corresponding momentum key, intersecting per-block id lists. Blocks
// missing from either map are dropped. When key does not contain
// "position" the momentum pass is skipped and Trace's own result is
// returned unchanged.
func TraceInteracted(source Source, key string, ids []uint64) (map[string]TracingResult, error) {
	positionResults, err := Trace(source, key, ids)
	if err != nil {
		return nil, err
	}

	mKey, ok := momentumKey(key)
	if !ok {
		return positionResults, nil
	}

	momentumResults, err := Trace(source, mKey, ids)
	if err != nil {
		return nil, err
	}

	final := make(map[string]TracingResult)
	for blockKey, posResult := range positionResults {
		momResult, ok := momentumResults[blockKey]
		if !ok {
			continue
		}
		final[blockKey] = TracingResult{
			Start: posResult.Start,
			End:   posResult.End,
			IDs:   intersectSorted(sortedUnique64(posResult.IDs), sortedUnique64(momResult.IDs)),
		}
	}
	return final, nil
}

func intersectSorted(a, b []uint64) []uint64 {
	var out []uint64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
