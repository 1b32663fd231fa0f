// Package minmax implements the 1-D MinMax index: per-block min/max nodes,
// optional intra-block secondary slicing, and the overlap query. Grounded
// on _examples/original_source/src/minmaxbuild.cpp and minmaxquery.cpp.
package minmax

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// PositiveInfinity and NegativeInfinity are the canonical unbounded query
// endpoints (spec.md §3/§4.4), matching original_source's DoubleInfinity.
var (
	PositiveInfinity = math.Inf(1)
	NegativeInfinity = math.Inf(-1)
)

// Node is a 1-D (min, max, start, end) summary of a block or an intra-block
// window. Invariant: Min <= Max, Start < End.
type Node struct {
	Min, Max   float64
	Start, End uint64
}

// Overlaps reports whether the node's [Min, Max] interval overlaps [min, max].
func (n Node) Overlaps(min, max float64) bool {
	return n.Min <= max && n.Max >= min
}

// List is an ordered sequence of Nodes for one key.
type List struct {
	Nodes []Node
}

// Encode serializes a List as:
//
//	[count uint32][node0: min,max float64 + start,end uint64]...[crc32 uint32]
func (l List) Encode() []byte {
	var body bytes.Buffer
	_ = binary.Write(&body, binary.LittleEndian, uint32(len(l.Nodes)))
	for _, n := range l.Nodes {
		_ = binary.Write(&body, binary.LittleEndian, math.Float64bits(n.Min))
		_ = binary.Write(&body, binary.LittleEndian, math.Float64bits(n.Max))
		_ = binary.Write(&body, binary.LittleEndian, n.Start)
		_ = binary.Write(&body, binary.LittleEndian, n.End)
	}
	crc := crc32.ChecksumIEEE(body.Bytes())
	_ = binary.Write(&body, binary.LittleEndian, crc)
	return body.Bytes()
}

// Decode parses a record produced by Encode.
func Decode(data []byte) (List, error) {
	if len(data) < 8 {
		return List{}, fmt.Errorf("minmax: record too short")
	}
	payload, wantCRC := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if got := crc32.ChecksumIEEE(payload); got != wantCRC {
		return List{}, fmt.Errorf("minmax: checksum mismatch: malformed record")
	}

	r := bytes.NewReader(payload)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return List{}, fmt.Errorf("minmax: reading count: %w", err)
	}
	nodes := make([]Node, count)
	for i := range nodes {
		var minBits, maxBits uint64
		if err := binary.Read(r, binary.LittleEndian, &minBits); err != nil {
			return List{}, fmt.Errorf("minmax: reading node %d: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &maxBits); err != nil {
			return List{}, fmt.Errorf("minmax: reading node %d: %w", i, err)
		}
		nodes[i].Min = math.Float64frombits(minBits)
		nodes[i].Max = math.Float64frombits(maxBits)
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].Start); err != nil {
			return List{}, fmt.Errorf("minmax: reading node %d: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].End); err != nil {
			return List{}, fmt.Errorf("minmax: reading node %d: %w", i, err)
		}
	}
	return List{Nodes: nodes}, nil
}
