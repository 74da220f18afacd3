// Package layout provides the container layouts that plug into core.Node:
// Stack, Dock, Canvas, Wrap and Grid.
//
// A layout is installed on a node and arranges that node's visual
// children. Per-child placement (a Grid cell, a Dock edge, Canvas
// coordinates) is stored in attached properties on the children:
//
//	grid := layout.NewGrid().
//	    WithColumns(layout.Auto(), layout.Star(1), layout.Star(2))
//	panel := core.NewNode("Grid", "form")
//	panel.SetLayout(grid)
//	layout.SetColumn(label, 0)
//
// Stack, Wrap and Grid implement core.NeighborFinder, which the focus
// navigator uses for arrow-key movement.
package layout

import (
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/property"
)

// Orientation is the main axis of Stack and Wrap.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// invalidateParent is the Changed callback of attached properties: the
// container that reads them has to rebuild its placement.
func invalidateParent(owner property.Owner, _ property.Change) {
	n, ok := owner.(*core.Node)
	if !ok {
		return
	}
	if p := n.VisualParent(); p != nil {
		p.InvalidateStructure()
	}
}

// visibleSiblings filters children to those not collapsed.
func visibleSiblings(children []*core.Node) []*core.Node {
	out := make([]*core.Node, 0, len(children))
	for _, c := range children {
		if c.Visibility() != core.Collapsed {
			out = append(out, c)
		}
	}
	return out
}
