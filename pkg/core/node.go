package core

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// Node is an element of the UI tree.
//
// Nodes are not safe for concurrent use; a tree belongs to one UI goroutine.
type Node struct {
	id       uuid.UUID
	name     string
	typeName string

	store    *property.Store
	handlers events.HandlerTable
	layout   Layout
	host     *Host

	parent   *Node
	children []*Node

	// visual composition; nil visualChildren means "same as children"
	visualParent   *Node
	visualChildren []*Node
	hasVisual      bool

	// structure counts child list and attached layout data changes so
	// layouts can rebuild derived state lazily.
	structure uint64

	measureDirty  bool
	arrangeDirty  bool
	renderDirty   bool
	measuredOnce  bool
	arrangedOnce  bool
	inMeasure     bool
	lastAvailable graphics.Size
	lastFinal     graphics.Rect
	desired       graphics.Size
	renderSize    graphics.Size
	offset        graphics.Offset
	measureCount  int
	arrangeCount  int
}

// NewNode creates a detached node. typeName selects class handlers and
// appears in diagnostics; name is optional.
func NewNode(typeName, name string) *Node {
	n := &Node{
		id:           uuid.New(),
		name:         name,
		typeName:     typeName,
		measureDirty: true,
		arrangeDirty: true,
		renderDirty:  true,
	}
	n.store = property.NewStore(n, nil)
	return n
}

// ID returns the node's unique identifier.
func (n *Node) ID() uuid.UUID { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// SetName renames the node.
func (n *Node) SetName(name string) { n.name = name }

// TypeName returns the node's type name.
func (n *Node) TypeName() string { return n.typeName }

// String returns "Type#name", or "Type#<id prefix>" for unnamed nodes.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.name != "" {
		return n.typeName + "#" + n.name
	}
	return fmt.Sprintf("%s#%s", n.typeName, n.id.String()[:8])
}

// PropertyStore returns the node's property store.
func (n *Node) PropertyStore() *property.Store { return n.store }

// GetValue returns the effective value of d.
func (n *Node) GetValue(d *property.Descriptor) any { return n.store.GetValue(d) }

// SetValue sets the local value of d.
func (n *Node) SetValue(d *property.Descriptor, value any) error {
	return n.store.SetValue(d, value)
}

// ClearValue removes the local value of d.
func (n *Node) ClearValue(d *property.Descriptor) { n.store.ClearValue(d) }

// EventHandlers returns the instance handler table.
func (n *Node) EventHandlers() *events.HandlerTable { return &n.handlers }

// Layout returns the node's layout strategy, or nil for content layout.
func (n *Node) Layout() Layout { return n.layout }

// SetLayout installs a layout strategy. Layouts implementing Attacher are
// told about the change.
func (n *Node) SetLayout(l Layout) {
	if a, ok := n.layout.(Attacher); ok {
		a.Detach(n)
	}
	n.layout = l
	if a, ok := l.(Attacher); ok {
		a.Attach(n)
	}
	n.InvalidateStructure()
}

// Parent returns the logical parent.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the logical children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns the number of logical children.
func (n *Node) ChildCount() int { return len(n.children) }

// Depth returns the number of visual ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.VisualParent(); p != nil; p = p.VisualParent() {
		d++
	}
	return d
}

// Root returns the topmost visual ancestor.
func (n *Node) Root() *Node {
	cur := n
	for p := cur.VisualParent(); p != nil; p = cur.VisualParent() {
		cur = p
	}
	return cur
}

// AddChild appends child to the logical children. A child that already has
// a parent is removed from it first.
func (n *Node) AddChild(child *Node) {
	n.InsertChild(len(n.children), child)
}

// InsertChild inserts child at index, clamped to the valid range.
func (n *Node) InsertChild(index int, child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, child)
	child.parent = n
	if !n.hasVisual {
		child.visualParent = n
	}
	child.adopt(n)
	n.InvalidateStructure()
}

// RemoveChild detaches child. It reports whether child was a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	if child.visualParent == n {
		child.visualParent = nil
	}
	child.orphan()
	n.InvalidateStructure()
	return true
}

// VisualParent returns the visual parent, which defaults to the logical
// parent.
func (n *Node) VisualParent() *Node {
	if n.visualParent != nil {
		return n.visualParent
	}
	return n.parent
}

// VisualChildren returns the nodes laid out, hit-tested and navigated as
// this node's children.
func (n *Node) VisualChildren() []*Node {
	if n.hasVisual {
		return n.visualChildren
	}
	return n.children
}

// SetVisualChildren replaces the visual composition. Passing no nodes
// reverts to the logical children.
func (n *Node) SetVisualChildren(nodes ...*Node) {
	for _, c := range n.visualChildren {
		if c.visualParent == n {
			c.visualParent = nil
			if c.parent == nil {
				c.orphan()
			}
		}
	}
	n.visualChildren = nil
	n.hasVisual = len(nodes) > 0
	if n.hasVisual {
		n.visualChildren = slices.Clone(nodes)
		for _, c := range nodes {
			c.visualParent = n
			c.adopt(n)
		}
	} else {
		for _, c := range n.children {
			if c.visualParent == nil {
				c.visualParent = n
			}
		}
	}
	n.InvalidateStructure()
}

// Walk visits n and its visual descendants depth-first in document order.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.VisualChildren() {
		c.Walk(fn)
	}
}

// Find returns the first node in document order with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// IsAncestorOf reports whether n is a visual ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.VisualParent(); p != nil; p = p.VisualParent() {
		if p == n {
			return true
		}
	}
	return false
}

// adopt joins child's subtree to parent's guard. Layout state is reset
// because the old cache was computed for another slot.
func (n *Node) adopt(parent *Node) {
	guard := parent.store.Guard()
	n.Walk(func(c *Node) bool {
		c.store.SetGuard(guard)
		return true
	})
	n.measureDirty = false
	n.arrangeDirty = false
	n.InvalidateMeasure()
}

func (n *Node) orphan() {
	n.Walk(func(c *Node) bool {
		c.store.SetGuard(nil)
		return true
	})
}

// Structure returns a counter that changes whenever the children or their
// layout-relevant attached data change.
func (n *Node) Structure() uint64 { return n.structure }

// InvalidateStructure bumps the structure counter and invalidates measure.
// Attached layout properties call it on the owning container.
func (n *Node) InvalidateStructure() {
	n.structure++
	n.InvalidateMeasure()
}

// InheritanceParent implements property.Owner.
func (n *Node) InheritanceParent() property.Owner {
	if p := n.VisualParent(); p != nil {
		return p
	}
	return nil
}

// VisitInheritanceChildren implements property.Owner.
func (n *Node) VisitInheritanceChildren(fn func(property.Owner)) {
	for _, c := range n.VisualChildren() {
		fn(c)
	}
	if n.hasVisual {
		// logical children outside the visual composition still inherit
		for _, c := range n.children {
			if c.VisualParent() == n && !slices.Contains(n.visualChildren, c) {
				fn(c)
			}
		}
	}
}

// RouteParent implements events.Target by routing along visual parents.
func (n *Node) RouteParent() events.Target {
	if p := n.VisualParent(); p != nil {
		return p
	}
	return nil
}
