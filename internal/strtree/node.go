package strtree

import "math"

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// Node is a level of the bulk-loaded STR tree. Leaves have Level == 0 and no
// children; internal nodes have strictly increasing Level toward the root
// and Bounds equal to the tight union of their children's bounds.
type Node struct {
	Level    uint32
	Bounds   Envelope3d
	Children []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}
