package strtree

import "sort"

// DefaultLeafSize is the default STR-tree fan-out, matching
// original_source's STRtreeLeafSize default of 10.
const DefaultLeafSize = 10

// center returns the centroid of e projected onto the given axis
// (0 = x, 1 = y, 2 = z), used only to order items during packing.
func center(e Envelope3d, axis int) float64 {
	switch axis {
	case 0:
		return (e.MinX + e.MaxX) / 2
	case 1:
		return (e.MinY + e.MaxY) / 2
	default:
		return (e.MinZ + e.MaxZ) / 2
	}
}

// BulkLoad packs envelopes into a 3-D STR tree with the given leaf fan-out.
// Every envelope becomes its own level-0 leaf (level = 0, child_count = 0
// per spec.md §3); it extends the classic 2-D Sort-Tile-Recursive algorithm
// with a third pass over Z purely to order items spatially: items are
// sliced along X into vertical strips, each strip sliced along Y into
// tiles, and each tile sorted along Z. Parent levels are then built
// bottom-up by chunking the ordered leaves into groups of up to leafSize,
// until a single root remains.
func BulkLoad(envelopes []Envelope3d, leafSize int) *Node {
	if leafSize < 1 {
		leafSize = DefaultLeafSize
	}
	if len(envelopes) == 0 {
		return &Node{Level: 0, Bounds: Envelope3d{}}
	}

	leaves := tileLeaves(envelopes, leafSize)
	nodes := leaves
	level := uint32(0)
	for len(nodes) > 1 {
		level++
		nodes = packLevel(nodes, leafSize, level)
	}
	return nodes[0]
}

// tileLeaves performs the X/Y/Z ordering pass and returns one level-0 leaf
// per envelope, in tile order, ready for packLevel to group into parents.
func tileLeaves(envelopes []Envelope3d, leafSize int) []*Node {
	n := len(envelopes)
	numGroups := ceilDiv(n, leafSize) // number of leafSize-sized parent groups this ordering aims to produce
	numStrips := ceilSqrt(numGroups)
	stripSize := ceilDiv(n, numStrips) // items per X strip

	items := append([]Envelope3d(nil), envelopes...)
	sort.Slice(items, func(i, j int) bool { return center(items[i], 0) < center(items[j], 0) })

	var leaves []*Node
	for x := 0; x < n; x += stripSize {
		end := x + stripSize
		if end > n {
			end = n
		}
		strip := items[x:end]

		numTiles := ceilDiv(len(strip), leafSize)
		if numTiles < 1 {
			numTiles = 1
		}
		tileSize := ceilDiv(len(strip), numTiles)

		sort.Slice(strip, func(i, j int) bool { return center(strip[i], 1) < center(strip[j], 1) })

		for y := 0; y < len(strip); y += tileSize {
			tEnd := y + tileSize
			if tEnd > len(strip) {
				tEnd = len(strip)
			}
			tile := strip[y:tEnd]
			sort.Slice(tile, func(i, j int) bool { return center(tile[i], 2) < center(tile[j], 2) })

			for _, e := range tile {
				leaves = append(leaves, &Node{Level: 0, Bounds: e})
			}
		}
	}
	return leaves
}

// packLevel groups nodes (already in spatially coherent order from the
// tiling pass or a prior packLevel call) into parents of up to leafSize
// children each.
func packLevel(nodes []*Node, leafSize int, level uint32) []*Node {
	var parents []*Node
	for i := 0; i < len(nodes); i += leafSize {
		end := i + leafSize
		if end > len(nodes) {
			end = len(nodes)
		}
		group := nodes[i:end]
		bounds := group[0].Bounds
		for _, c := range group[1:] {
			bounds = Union(bounds, c.Bounds)
		}
		parents = append(parents, &Node{
			Level:    level,
			Bounds:   bounds,
			Children: append([]*Node(nil), group...),
		})
	}
	return parents
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

func ceilSqrt(n int) int {
	if n <= 1 {
		return 1
	}
	r := 1
	for r*r < n {
		r++
	}
	return r
}
