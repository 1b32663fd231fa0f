package strtree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Serialize flattens root into a depth-first pre-order record:
//
//	[nodeCount uint32][node0][node1]...[nodeN-1][crc32 uint32]
//
// where each node is:
//
//	[level uint32][childCount uint32][minx..maxz 6*float64][start,end 2*uint64][bloomLen uint32][bloom bytes]
//
// This mirrors FlashLogGo's sst.writer style of explicit binary.Write calls
// with a trailing CRC32, applied to the tree shape spec.md §4.8 and
// original_source's utils.cpp::serialize describe.
func Serialize(root *Node) []byte {
	var body bytes.Buffer
	count := uint32(0)
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		writeNode(&body, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, count)
	out.Write(body.Bytes())

	crc := crc32.ChecksumIEEE(out.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, crc)
	return out.Bytes()
}

func writeNode(w *bytes.Buffer, n *Node) {
	_ = binary.Write(w, binary.LittleEndian, n.Level)
	_ = binary.Write(w, binary.LittleEndian, uint32(len(n.Children)))
	for _, v := range []float64{n.Bounds.MinX, n.Bounds.MaxX, n.Bounds.MinY, n.Bounds.MaxY, n.Bounds.MinZ, n.Bounds.MaxZ} {
		_ = binary.Write(w, binary.LittleEndian, math.Float64bits(v))
	}
	_ = binary.Write(w, binary.LittleEndian, n.Bounds.Start)
	_ = binary.Write(w, binary.LittleEndian, n.Bounds.End)
	_ = binary.Write(w, binary.LittleEndian, uint32(len(n.Bounds.Bloom)))
	w.Write(n.Bounds.Bloom)
}

// Deserialize parses a record produced by Serialize and reconstructs the
// tree, recursing childCount times per spec.md §4.8.
func Deserialize(data []byte) (*Node, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("strtree: record too short to be a tree")
	}
	payload := data[:len(data)-4]
	wantCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if gotCRC := crc32.ChecksumIEEE(payload); gotCRC != wantCRC {
		return nil, fmt.Errorf("strtree: checksum mismatch: malformed tree record")
	}

	r := bytes.NewReader(payload)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("strtree: reading node count: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("strtree: empty node list")
	}

	nodes := make([]*Node, count)
	remainingChildren := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		n, childCount, err := readNode(r)
		if err != nil {
			return nil, fmt.Errorf("strtree: reading node %d: %w", i, err)
		}
		nodes[i] = n
		remainingChildren[i] = childCount
	}

	root, _, err := attachChildren(nodes, remainingChildren, 0)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func attachChildren(nodes []*Node, childCounts []uint32, idx int) (*Node, int, error) {
	if idx >= len(nodes) {
		return nil, idx, fmt.Errorf("strtree: malformed tree record: index out of range")
	}
	n := nodes[idx]
	idx++
	for i := uint32(0); i < childCounts[idx-1]; i++ {
		child, next, err := attachChildren(nodes, childCounts, idx)
		if err != nil {
			return nil, idx, err
		}
		n.Children = append(n.Children, child)
		idx = next
	}
	return n, idx, nil
}

func readNode(r *bytes.Reader) (*Node, uint32, error) {
	n := &Node{}
	if err := binary.Read(r, binary.LittleEndian, &n.Level); err != nil {
		return nil, 0, err
	}
	var childCount uint32
	if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
		return nil, 0, err
	}
	vals := make([]float64, 6)
	for i := range vals {
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, 0, err
		}
		vals[i] = math.Float64frombits(bits)
	}
	n.Bounds.MinX, n.Bounds.MaxX = vals[0], vals[1]
	n.Bounds.MinY, n.Bounds.MaxY = vals[2], vals[3]
	n.Bounds.MinZ, n.Bounds.MaxZ = vals[4], vals[5]
	if err := binary.Read(r, binary.LittleEndian, &n.Bounds.Start); err != nil {
		return nil, 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Bounds.End); err != nil {
		return nil, 0, err
	}
	var bloomLen uint32
	if err := binary.Read(r, binary.LittleEndian, &bloomLen); err != nil {
		return nil, 0, err
	}
	if bloomLen > 0 {
		n.Bounds.Bloom = make([]byte, bloomLen)
		if _, err := r.Read(n.Bounds.Bloom); err != nil {
			return nil, 0, err
		}
	}
	return n, childCount, nil
}
