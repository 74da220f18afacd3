// Package core provides the element tree and the generic two-pass layout
// protocol that every container builds on.
//
// # Nodes
//
// A Node owns a property store, an event handler table, and an ordered list
// of logical children. Its parent pointer is a non-owning back reference.
// A node may additionally expose a visual composition that differs from its
// logical children, for example a content host whose presenter is not a
// logical child:
//
//	panel := core.NewNode("Panel", "root")
//	panel.AddChild(core.NewNode("Button", "ok"))
//
// # Layout
//
// Layout runs in two passes. Measure asks a node how much space it wants
// given the space available; Arrange gives it a final rectangle. Both passes
// are memoized: a clean node called with the same input returns its cached
// result without touching its children. Containers plug in by implementing
// Layout:
//
//	type Layout interface {
//	    MeasureOverride(n *Node, available graphics.Size) graphics.Size
//	    ArrangeOverride(n *Node, final graphics.Size) graphics.Size
//	}
//
// Property writes with AffectsMeasure or AffectsArrange mark the node dirty
// and walk up the logical parents until a node that is already dirty. When
// the walk reaches a root attached to a Host, the root is scheduled on the
// host's Pipeline, which runs the next layout pass.
//
// # Failure isolation
//
// A panic inside one node's MeasureOverride or ArrangeOverride is reported
// through the errors package and leaves that node zero-sized; its siblings
// lay out normally. Fatal errors such as RecursionLimitError are re-raised.
package core
