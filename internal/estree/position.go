package estree

import (
	"cmp"
	"slices"
)

// FindNodesAtPosition returns every node whose range contains pos, most
// specific first. Candidates are ordered by span size, then by start offset.
//
// Range boundaries are inclusive at both ends: an offset sitting exactly
// between two tokens matches both. Offsets outside the root range yield nil.
func FindNodesAtPosition(root *Node, pos int) []*Node {
	if !root.Addressable() || pos < 0 || !root.Range.Contains(pos) {
		return nil
	}

	var found []*Node
	Walk(root, func(n *Node) bool {
		if n.Range.Contains(pos) {
			found = append(found, n)
		}
		// Children are not guaranteed to nest inside their parent's range
		// (decorators, synthetic wrappers), so never prune here.
		return true
	})

	slices.SortStableFunc(found, func(a, b *Node) int {
		if c := cmp.Compare(a.Range.Len(), b.Range.Len()); c != 0 {
			return c
		}
		return cmp.Compare(a.Range.Start, b.Range.Start)
	})
	return found
}

// NodeAtPosition returns the most specific node containing pos, or nil.
func NodeAtPosition(root *Node, pos int) *Node {
	nodes := FindNodesAtPosition(root, pos)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
