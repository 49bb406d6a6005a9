// Package topology derives the static activity tree of a workflow definition
// and tracks whether it changed between runs.
package topology

import "github.com/petrijr/wftrack/pkg/api"

// Build walks the live activity tree breadth-first and returns its summary.
//
// Disabled children of a composite are not visited, so whole disabled
// subtrees are excluded. Siblings keep their source order. A node is linked
// under the summary of its parent when that parent was visited as a
// composite; the first node visited becomes the root.
func Build(root api.Activity) *api.ActivitySummary {
	if root == nil {
		return nil
	}

	var (
		summary *api.ActivitySummary
		byName  = make(map[string]*api.ActivitySummary)
		queue   = []api.Activity{root}
	)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		node := &api.ActivitySummary{
			TypeName:      cur.TypeName(),
			QualifiedName: cur.QualifiedName(),
		}
		if p := cur.Parent(); p != nil {
			if parent, ok := byName[p.QualifiedName()]; ok {
				parent.AddChild(node)
			}
		}
		if summary == nil {
			summary = node
		}

		c, ok := api.AsComposite(cur)
		if !ok {
			continue
		}
		byName[node.QualifiedName] = node
		for _, child := range c.Activities() {
			if child != nil && child.Enabled() {
				queue = append(queue, child)
			}
		}
	}

	return summary
}
