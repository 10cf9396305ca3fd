package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is the position fingerprint of a node: the child index taken at each
// level, walking down from the root. The root's path is empty.
type Path []int

// Path returns the position path of n from its root.
func (n *Node) Path() Path {
	var rev []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		rev = append(rev, cur.Index())
	}
	p := make(Path, len(rev))
	for i, idx := range rev {
		p[len(rev)-1-i] = idx
	}
	return p
}

// Find resolves p starting at n. Returns nil when the path no longer
// identifies a node.
func (n *Node) Find(p Path) *Node {
	cur := n
	for _, idx := range p {
		cur = cur.Child(idx)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// String renders the path as dash separated indexes, e.g. "0-2-1".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "-")
}

// Equal reports whether p and o describe the same position.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ParsePath parses the textual form produced by Path.String.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, "-")
	p := make(Path, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, s)
		}
		p[i] = idx
	}
	return p, nil
}
