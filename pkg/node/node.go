// Package node implements the name/value tree that lambda expressions are
// evaluated against.
//
// A Node has a name, a dynamically typed value, an ordered list of children
// and a back-reference to its parent. Identity is pointer identity: two nodes
// are the same node only when they are the same *Node.
//
// # Example
//
//	root := node.New("root", nil).
//	    Add("name", "Thomas").
//	    Add("age", 44)
//	fmt.Println(root.Child(1).Value) // 44
//
// The tree performs no locking. Callers that share a tree between goroutines
// must serialize structural mutation themselves.
package node

// Node is a single element of a tree.
type Node struct {
	// Name is the node's name; the empty string is a valid name.
	Name string
	// Value is the node's value. Any Go value, including another *Node.
	Value any

	parent   *Node
	children []*Node
}

// New creates a detached node.
func New(name string, value any) *Node {
	return &Node{Name: name, Value: value}
}

// Add appends a new child with the given name and value and returns n,
// so trees can be built fluently.
func (n *Node) Add(name string, value any) *Node {
	n.Append(New(name, value))
	return n
}

// Append appends child to n's children. A child that belongs to another
// parent is detached from it first. Returns n.
func (n *Node) Append(child *Node) *Node {
	child.UnTie()
	child.parent = n
	n.children = append(n.children, child)
	return n
}

// Insert inserts child at position idx. Positions past the end append.
func (n *Node) Insert(idx int, child *Node) *Node {
	child.UnTie()
	child.parent = n
	if idx < 0 {
		idx = 0
	}
	if idx >= len(n.children) {
		n.children = append(n.children, child)
		return n
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	return n
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the outermost ancestor of n (n itself when it has no parent).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the child at position idx, or nil when out of range.
func (n *Node) Child(idx int) *Node {
	if idx < 0 || idx >= len(n.children) {
		return nil
	}
	return n.children[idx]
}

// Children returns a copy of n's children slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	return n.Child(0)
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	return n.Child(len(n.children) - 1)
}

// Named returns every direct child with the given name, in order.
func (n *Node) Named(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Index returns n's position among its parent's children, or -1 for a root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Sibling returns the sibling offset positions away from n; negative
// offsets look backwards. Returns nil when there is no such sibling.
func (n *Node) Sibling(offset int) *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.Index() + offset)
}

// PreviousNode returns the node preceding n in document (pre-order) order:
// the deepest last descendant of the previous sibling, or the parent.
func (n *Node) PreviousNode() *Node {
	prev := n.Sibling(-1)
	if prev == nil {
		return n.parent
	}
	for len(prev.children) > 0 {
		prev = prev.children[len(prev.children)-1]
	}
	return prev
}

// NextNode returns the node following n in document (pre-order) order:
// the first child, else the next sibling of n or of its nearest ancestor
// that has one.
func (n *Node) NextNode() *Node {
	if len(n.children) > 0 {
		return n.children[0]
	}
	for cur := n; cur != nil; cur = cur.parent {
		if next := cur.Sibling(1); next != nil {
			return next
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// UnTie detaches n from its parent. It is a no-op for roots.
func (n *Node) UnTie() *Node {
	if n.parent == nil {
		return n
	}
	p := n.parent
	if idx := n.Index(); idx >= 0 {
		p.children = append(p.children[:idx], p.children[idx+1:]...)
	}
	n.parent = nil
	return n
}

// Clear removes all children of n.
func (n *Node) Clear() *Node {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	return n
}

// Clone returns a deep copy of n with fresh identity and no parent.
// Node-typed values are cloned too.
func (n *Node) Clone() *Node {
	c := &Node{Name: n.Name, Value: cloneValue(n.Value)}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			cc := child.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// Replace swaps n's name, value and children for those of a deep clone of
// src. n keeps its identity and its position in the tree.
func (n *Node) Replace(src *Node) *Node {
	c := src.Clone()
	n.Clear()
	n.Name = c.Name
	n.Value = c.Value
	n.children = c.children
	for _, child := range n.children {
		child.parent = n
	}
	return n
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case *Node:
		if tv == nil {
			return tv
		}
		return tv.Clone()
	case []byte:
		out := make([]byte, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}
