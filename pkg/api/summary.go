package api

// ActivitySummary is one node of the static activity topology of a workflow
// definition. Summaries are built once per definition version and are not
// modified afterwards.
type ActivitySummary struct {
	TypeName      string
	QualifiedName string

	// Parent is nil for the root. It does not own the parent.
	Parent   *ActivitySummary
	Children []*ActivitySummary
}

// AddChild links child under s.
func (s *ActivitySummary) AddChild(child *ActivitySummary) {
	child.Parent = s
	s.Children = append(s.Children, child)
}

// Walk visits s and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func (s *ActivitySummary) Walk(fn func(*ActivitySummary) bool) bool {
	if s == nil {
		return true
	}
	if !fn(s) {
		return false
	}
	for _, c := range s.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree rooted at s.
func (s *ActivitySummary) Count() int {
	n := 0
	s.Walk(func(*ActivitySummary) bool {
		n++
		return true
	})
	return n
}

// Find returns the node with the given qualified name, or nil.
func (s *ActivitySummary) Find(qualifiedName string) *ActivitySummary {
	var found *ActivitySummary
	s.Walk(func(n *ActivitySummary) bool {
		if n.QualifiedName == qualifiedName {
			found = n
			return false
		}
		return true
	})
	return found
}
