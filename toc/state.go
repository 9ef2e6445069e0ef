package toc

// CollapseLevel is the shallowest level whose entries start collapsed
// when they have children.
const CollapseLevel = 3

// State is the expand/collapse and active-entry state of one rendered
// outline. It is owned by a single view and is not safe for concurrent use.
type State struct {
	root      *Node
	nodes     map[string]*Node
	parent    map[string]*Node
	collapsed map[string]bool
	active    string
}

// NewState returns the default state for root: entries at CollapseLevel
// or deeper that have children are collapsed, everything else is expanded.
func NewState(root *Node) *State {
	s := &State{
		root:      root,
		nodes:     map[string]*Node{},
		parent:    map[string]*Node{},
		collapsed: map[string]bool{},
	}
	if root == nil {
		s.root = &Node{Children: []*Node{}}
		return s
	}
	root.Walk(func(n, p *Node) {
		s.nodes[n.ID] = n
		if p != root {
			s.parent[n.ID] = p
		}
		if n.Level >= CollapseLevel && len(n.Children) > 0 {
			s.collapsed[n.ID] = true
		}
	})
	return s
}

// Root returns the outline the state belongs to.
func (s *State) Root() *Node {
	return s.root
}

// Collapsed reports whether the entry id is collapsed.
func (s *State) Collapsed(id string) bool {
	return s.collapsed[id]
}

// Toggle flips the entry id and returns its new collapsed state. Entries
// without children cannot be collapsed.
func (s *State) Toggle(id string) bool {
	n, ok := s.nodes[id]
	if !ok || len(n.Children) == 0 {
		return false
	}
	if s.collapsed[id] {
		delete(s.collapsed, id)
		return false
	}
	s.collapsed[id] = true
	return true
}

// Expand opens the entry id.
func (s *State) Expand(id string) {
	delete(s.collapsed, id)
}

// Ancestors returns the ids above id, nearest first.
func (s *State) Ancestors(id string) []string {
	var ids []string
	for p := s.parent[id]; p != nil; p = s.parent[p.ID] {
		ids = append(ids, p.ID)
	}
	return ids
}

// Activate marks id as the active entry and expands it and every
// ancestor. Sibling entries keep their state. Unknown ids are ignored.
func (s *State) Activate(id string) bool {
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	s.active = id
	s.Expand(id)
	for _, a := range s.Ancestors(id) {
		s.Expand(a)
	}
	return true
}

// Clear removes the active entry.
func (s *State) Clear() {
	s.active = ""
}

// Active returns the active entry id, or "" when none is active.
func (s *State) Active() string {
	return s.active
}

// Observe applies one scroll-spy observation: the selected heading becomes
// active, or the active entry is cleared when no heading intersects.
func (s *State) Observe(spy Spy, obs []Observation, viewport float64) string {
	id := spy.Select(obs, viewport)
	if id == "" || !s.Activate(id) {
		s.Clear()
	}
	return s.active
}
