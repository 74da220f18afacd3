package layout

import (
	"math"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// DockSide is the edge a Dock child attaches to.
type DockSide int

const (
	DockLeft DockSide = iota
	DockTop
	DockRight
	DockBottom
)

// DockProperty is attached to children of a Dock.
var DockProperty = property.Register[DockSide]("Dock", "Dock", property.Metadata{
	Default: DockLeft,
	Changed: invalidateParent,
})

// SetDock attaches n to side.
func SetDock(n *core.Node, side DockSide) { _ = n.SetValue(DockProperty, side) }

// GetDock returns the side n is attached to.
func GetDock(n *core.Node) DockSide { return property.Value[DockSide](n, DockProperty) }

// Dock attaches children to its edges in order; each child takes space from
// what the previous ones left. With LastChildFill the last child receives
// the remaining rectangle.
type Dock struct {
	LastChildFill bool
}

// NewDock creates a dock whose last child fills.
func NewDock() *Dock { return &Dock{LastChildFill: true} }

func (d *Dock) MeasureOverride(n *core.Node, available graphics.Size) graphics.Size {
	var usedW, usedH, width, height float64
	for _, c := range n.VisualChildren() {
		remaining := graphics.Size{
			Width:  math.Max(0, available.Width-usedW),
			Height: math.Max(0, available.Height-usedH),
		}
		ds := c.Measure(remaining)
		switch GetDock(c) {
		case DockLeft, DockRight:
			height = math.Max(height, usedH+ds.Height)
			usedW += ds.Width
		case DockTop, DockBottom:
			width = math.Max(width, usedW+ds.Width)
			usedH += ds.Height
		}
	}
	return graphics.Size{Width: math.Max(width, usedW), Height: math.Max(height, usedH)}
}

func (d *Dock) ArrangeOverride(n *core.Node, final graphics.Size) graphics.Size {
	children := n.VisualChildren()
	docked := len(children)
	if d.LastChildFill && docked > 0 {
		docked--
	}
	var left, top, right, bottom float64
	for i, c := range children {
		ds := c.DesiredSize()
		rc := graphics.Size{
			Width:  math.Max(0, final.Width-(left+right)),
			Height: math.Max(0, final.Height-(top+bottom)),
		}
		x, y := left, top
		if i < docked {
			switch GetDock(c) {
			case DockLeft:
				left += ds.Width
				rc.Width = ds.Width
			case DockRight:
				right += ds.Width
				x = math.Max(0, final.Width-right)
				rc.Width = ds.Width
			case DockTop:
				top += ds.Height
				rc.Height = ds.Height
			case DockBottom:
				bottom += ds.Height
				y = math.Max(0, final.Height-bottom)
				rc.Height = ds.Height
			}
		}
		c.Arrange(graphics.RectFromLTWH(x, y, rc.Width, rc.Height))
	}
	return final
}

// Neighbor finds the docked child in dir by position.
func (d *Dock) Neighbor(container, from *core.Node, dir core.Direction) *core.Node {
	return core.SpatialNeighbor(container, from, dir)
}
