package estree

// Path locates a node within its tree during a walk. Paths are immutable and
// share their parent chain, so a matcher may keep them after the walk ends.
type Path struct {
	Node   *Node
	Parent *Path
	// Key is the parent field holding Node; empty for the root.
	Key string
	// Index is the position inside a list field, or -1 for a single-node field.
	Index int
	// Siblings is the list field holding Node, nil for single-node fields.
	Siblings NodeList
	Depth    int
}

// Ancestor returns the n-th ancestor path (1 = parent), or nil.
func (p *Path) Ancestor(n int) *Path {
	cur := p
	for i := 0; i < n && cur != nil; i++ {
		cur = cur.Parent
	}
	return cur
}

// WalkFunc is called for every addressable node in pre-order. Returning false
// skips the node's children.
type WalkFunc func(p *Path) bool

// WalkPaths traverses the tree rooted at root in pre-order, descending into
// every field listed by ChildKeys. Nodes without a range are skipped together
// with their subtree.
func WalkPaths(root *Node, fn WalkFunc) {
	if !root.Addressable() {
		return
	}
	walk(&Path{Node: root, Index: -1}, fn)
}

func walk(p *Path, fn WalkFunc) {
	if !fn(p) {
		return
	}
	n := p.Node
	for _, key := range ChildKeys(n) {
		switch v := n.Get(key).(type) {
		case *Node:
			if v.Addressable() {
				walk(&Path{Node: v, Parent: p, Key: key, Index: -1, Depth: p.Depth + 1}, fn)
			}
		case NodeList:
			for i, c := range v {
				if c.Addressable() {
					walk(&Path{Node: c, Parent: p, Key: key, Index: i, Siblings: v, Depth: p.Depth + 1}, fn)
				}
			}
		}
	}
}

// Walk is the parent-free form of WalkPaths.
func Walk(root *Node, fn func(n *Node) bool) {
	WalkPaths(root, func(p *Path) bool { return fn(p.Node) })
}

// Children returns the addressable direct children of n in traversal order.
func Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, key := range ChildKeys(n) {
		switch v := n.Get(key).(type) {
		case *Node:
			if v.Addressable() {
				out = append(out, v)
			}
		case NodeList:
			for _, c := range v {
				if c.Addressable() {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// Count returns the number of addressable nodes in the tree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}

// Types returns the set of node types present in the tree.
func Types(root *Node) map[Type]int {
	seen := make(map[Type]int)
	Walk(root, func(n *Node) bool {
		seen[n.Type]++
		return true
	})
	return seen
}
