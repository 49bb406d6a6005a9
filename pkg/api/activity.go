package api

// Activity is the host runtime's view of one node of a live workflow
// definition.
type Activity interface {
	TypeName() string
	QualifiedName() string
	// Parent returns nil for the root activity.
	Parent() Activity
	Enabled() bool
}

// Composite is an Activity that owns child activities.
type Composite interface {
	Activity
	Activities() []Activity
}

// Node is a plain Activity implementation. A Node with Composite set is
// treated as a composite activity even when it has no children.
type Node struct {
	Type      string
	Name      string
	Disabled  bool
	Composite bool

	parent   *Node
	children []Activity
}

var _ Composite = (*Node)(nil)

// NewNode creates a leaf node.
func NewNode(typeName, qualifiedName string) *Node {
	return &Node{Type: typeName, Name: qualifiedName}
}

// NewCompositeNode creates a node that can hold children.
func NewCompositeNode(typeName, qualifiedName string) *Node {
	return &Node{Type: typeName, Name: qualifiedName, Composite: true}
}

// Add appends children and sets their parent to n.
func (n *Node) Add(children ...*Node) *Node {
	n.Composite = true
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) TypeName() string      { return n.Type }
func (n *Node) QualifiedName() string { return n.Name }
func (n *Node) Enabled() bool         { return !n.Disabled }

func (n *Node) Parent() Activity {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Activities() []Activity {
	if !n.Composite {
		return nil
	}
	return n.children
}

// AsComposite returns the activity as a Composite when it has a child
// collection.
func AsComposite(a Activity) (Composite, bool) {
	if n, ok := a.(*Node); ok && !n.Composite {
		return nil, false
	}
	c, ok := a.(Composite)
	return c, ok
}
