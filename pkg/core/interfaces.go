package core

import (
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// Layout is the measure/arrange strategy of a container. Implementations
// measure and arrange the node's visual children and must not mutate the
// tree.
type Layout interface {
	// MeasureOverride returns the size the content needs within available,
	// which already excludes the node's margin and honours its size limits.
	MeasureOverride(n *Node, available graphics.Size) graphics.Size
	// ArrangeOverride positions the children within final and returns the
	// size actually used.
	ArrangeOverride(n *Node, final graphics.Size) graphics.Size
}

// Attacher is implemented by layouts that keep per-node state and need to
// know which node they serve.
type Attacher interface {
	Attach(n *Node)
	Detach(n *Node)
}

// LayoutNode is the two-pass layout surface of a node.
type LayoutNode interface {
	Measure(available graphics.Size) graphics.Size
	Arrange(final graphics.Rect) graphics.Size
	DesiredSize() graphics.Size
	RenderSize() graphics.Size
	InvalidateMeasure()
	InvalidateArrange()
}

// PropertyHolder reads and writes dependency properties.
type PropertyHolder interface {
	property.Getter
	GetValue(d *property.Descriptor) any
	SetValue(d *property.Descriptor, value any) error
	ClearValue(d *property.Descriptor)
}

var (
	_ LayoutNode     = (*Node)(nil)
	_ PropertyHolder = (*Node)(nil)
	_ property.Owner = (*Node)(nil)
	_ events.Target  = (*Node)(nil)
)
