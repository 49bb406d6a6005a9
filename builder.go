package wftrack

import (
	"fmt"

	"github.com/petrijr/wftrack/internal/topology"
	"github.com/petrijr/wftrack/pkg/api"
)

// TreeBuilder provides a fluent API for describing a live activity
// hierarchy, for hosts that have no activity tree of their own:
//
//	root := wftrack.NewTree("ApprovalWorkflow", "root").
//	    Activity("CodeActivity", "intake").
//	    Sequence("SequenceActivity", "review", func(b *wftrack.TreeBuilder) {
//	        b.Activity("ApprovalActivity", "approve")
//	    }).
//	    Build()
//
//	ch, err := svc.OpenChannel(ctx, wftrack.ChannelParams{InstanceID: id, Root: root})
type TreeBuilder struct {
	node *api.Node
}

// NewTree creates a builder for a composite root activity.
func NewTree(typeName, qualifiedName string) *TreeBuilder {
	mustName(typeName, qualifiedName)
	return &TreeBuilder{node: api.NewCompositeNode(typeName, qualifiedName)}
}

// Activity appends an enabled leaf activity.
func (b *TreeBuilder) Activity(typeName, qualifiedName string) *TreeBuilder {
	mustName(typeName, qualifiedName)
	b.node.Add(api.NewNode(typeName, qualifiedName))
	return b
}

// DisabledActivity appends a disabled leaf activity. Disabled activities are
// left out of the persisted topology.
func (b *TreeBuilder) DisabledActivity(typeName, qualifiedName string) *TreeBuilder {
	mustName(typeName, qualifiedName)
	n := api.NewNode(typeName, qualifiedName)
	n.Disabled = true
	b.node.Add(n)
	return b
}

// Sequence appends a composite activity whose children are added by fn.
func (b *TreeBuilder) Sequence(typeName, qualifiedName string, fn func(*TreeBuilder)) *TreeBuilder {
	mustName(typeName, qualifiedName)
	child := &TreeBuilder{node: api.NewCompositeNode(typeName, qualifiedName)}
	if fn != nil {
		fn(child)
	}
	b.node.Add(child.node)
	return b
}

// Build returns the root activity.
func (b *TreeBuilder) Build() *api.Node {
	return b.node
}

// Summary returns the topology that would be persisted for the tree.
func (b *TreeBuilder) Summary() *ActivitySummary {
	return topology.Build(b.node)
}

func mustName(typeName, qualifiedName string) {
	if qualifiedName == "" {
		panic("wftrack: activity qualified name must not be empty")
	}
	if typeName == "" {
		panic(fmt.Sprintf("wftrack: activity %q has empty type name", qualifiedName))
	}
}
