package minmax

import "strconv"

// SliceResult is a match within a secondary (intra-block) window.
type SliceResult struct {
	Start, End uint64
}

// BlockResult is a matched primary block, with any matching secondary
// windows keyed by their decimal start offset.
type BlockResult struct {
	Start, End uint64
	SubSlices  map[string]SliceResult
}

// Source abstracts a single-key record lookup, implemented by both the
// file and KV storage backends (see internal/storage).
type Source interface {
	Get(key string) ([]byte, error)
}

// Query evaluates query(key, min, max) against the primary list for key,
// optionally descending into the secondary list at key+blockStart when
// secondarySource is non-nil. Results are keyed by the decimal encoding of
// each block's (or window's) start offset, per spec.md §4.4.
func Query(primarySource Source, secondarySource Source, key string, min, max float64) (map[string]BlockResult, error) {
	data, err := primarySource.Get(key)
	if err != nil {
		return map[string]BlockResult{}, err
	}
	list, err := Decode(data)
	if err != nil {
		return nil, err
	}

	results := make(map[string]BlockResult)
	for _, node := range list.Nodes {
		if !node.Overlaps(min, max) {
			continue
		}

		blockKey := strconv.FormatUint(node.Start, 10)
		if secondarySource == nil {
			results[blockKey] = BlockResult{Start: node.Start, End: node.End}
			continue
		}

		subData, err := secondarySource.Get(key + blockKey)
		if err != nil {
			// metadata-missing: secondary list absent for this block, emit
			// the primary hit with no sub-slices rather than failing.
			results[blockKey] = BlockResult{Start: node.Start, End: node.End}
			continue
		}
		subList, err := Decode(subData)
		if err != nil {
			return nil, err
		}

		subSlices := make(map[string]SliceResult)
		for _, sub := range subList.Nodes {
			if sub.Overlaps(min, max) {
				subSlices[strconv.FormatUint(sub.Start, 10)] = SliceResult{Start: sub.Start, End: sub.End}
			}
		}
		results[blockKey] = BlockResult{Start: node.Start, End: node.End, SubSlices: subSlices}
	}
	return results, nil
}
