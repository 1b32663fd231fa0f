package strtree

// Walk visits n and every descendant in pre-order, calling visit(node) for
// each. This is the tree packer's "traverse" operation; callers that need
// to prune (envelope range queries, identifier tracing) walk the tree
// themselves instead of using this helper, since pruning decisions are
// domain-specific.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// MayMatch reports whether id could be a member of the subtree rooted at n,
// consulting n's own Bloom filter only (not its children's).
func (n *Node) MayMatch(id uint64) bool {
	if n == nil {
		return false
	}
	return n.Bounds.mayMatch(id)
}
