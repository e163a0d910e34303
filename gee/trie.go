package gee

import "strings"

// node is one path segment of the routing trie. Static children win over
// wildcard children; ":name" matches one segment and "*name" the remainder.
type node struct {
	pattern string // full route pattern, set only on route end nodes
	part    string
	static  map[string]*node
	wild    []*node
}

func isWildPart(part string) bool {
	return part != "" && (part[0] == ':' || part[0] == '*')
}

func (n *node) child(part string) *node {
	if !isWildPart(part) {
		return n.static[part]
	}
	for _, w := range n.wild {
		if w.part == part {
			return w
		}
	}
	return nil
}

func (n *node) insert(pattern string, parts []string, height int) {
	if len(parts) == height {
		n.pattern = pattern
		return
	}
	part := parts[height]
	next := n.child(part)
	if next == nil {
		next = &node{part: part}
		if isWildPart(part) {
			n.wild = append(n.wild, next)
		} else {
			if n.static == nil {
				n.static = make(map[string]*node)
			}
			n.static[part] = next
		}
	}
	next.insert(pattern, parts, height+1)
}

func (n *node) search(parts []string, height int) *node {
	if len(parts) == height || strings.HasPrefix(n.part, "*") {
		if n.pattern == "" {
			return nil
		}
		return n
	}

	part := parts[height]
	if s, ok := n.static[part]; ok {
		if found := s.search(parts, height+1); found != nil {
			return found
		}
	}
	for _, w := range n.wild {
		if found := w.search(parts, height+1); found != nil {
			return found
		}
	}
	return nil
}
