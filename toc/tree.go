package toc

// Node is one entry of the outline. The root returned by Build has level
// 0 and no id.
type Node struct {
	ID       string  `json:"id,omitempty"`
	Text     string  `json:"text,omitempty"`
	Level    int     `json:"level"`
	Children []*Node `json:"children"`
}

// Build nests headings under a synthetic root. Each heading becomes a
// child of the nearest preceding heading with a lower level. Headings
// outside 1-4 are skipped.
func Build(headings []Heading) *Node {
	root := &Node{Children: []*Node{}}
	stack := []*Node{root}
	for _, h := range headings {
		if h.Level < 1 || h.Level > MaxLevel {
			continue
		}
		n := &Node{ID: h.ID, Text: h.Text, Level: h.Level, Children: []*Node{}}
		for len(stack) > 1 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
		stack = append(stack, n)
	}
	return root
}

// Walk visits every node below n depth first, passing its parent. The
// parent of a top-level entry is n itself.
func (n *Node) Walk(fn func(node, parent *Node)) {
	for _, c := range n.Children {
		fn(c, n)
		c.Walk(fn)
	}
}

// Empty reports whether the outline has no entries.
func (n *Node) Empty() bool {
	return n == nil || len(n.Children) == 0
}
