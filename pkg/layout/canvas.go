package layout

import (
	"math"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// Canvas coordinates attached to children. NaN leaves an edge unset; Left
// wins over Right and Top over Bottom.
var (
	CanvasLeftProperty   = canvasProperty("Left")
	CanvasTopProperty    = canvasProperty("Top")
	CanvasRightProperty  = canvasProperty("Right")
	CanvasBottomProperty = canvasProperty("Bottom")
)

func canvasProperty(name string) *property.Descriptor {
	return property.Register[float64](name, "Canvas", property.Metadata{
		Default: math.NaN(),
		Changed: func(owner property.Owner, _ property.Change) {
			if n, ok := owner.(*core.Node); ok && n.VisualParent() != nil {
				n.VisualParent().InvalidateArrange()
			}
		},
	})
}

// SetCanvasPosition places n at (left, top).
func SetCanvasPosition(n *core.Node, left, top float64) {
	_ = n.SetValue(CanvasLeftProperty, left)
	_ = n.SetValue(CanvasTopProperty, top)
}

// Canvas positions children at absolute coordinates. Children are measured
// with unlimited space and the canvas itself asks for none.
type Canvas struct{}

func (Canvas) MeasureOverride(n *core.Node, _ graphics.Size) graphics.Size {
	for _, c := range n.VisualChildren() {
		c.Measure(graphics.InfiniteSize)
	}
	return graphics.Size{}
}

func (Canvas) ArrangeOverride(n *core.Node, final graphics.Size) graphics.Size {
	for _, c := range n.VisualChildren() {
		ds := c.DesiredSize()
		x, y := 0.0, 0.0
		if left := property.Value[float64](c, CanvasLeftProperty); !math.IsNaN(left) {
			x = left
		} else if right := property.Value[float64](c, CanvasRightProperty); !math.IsNaN(right) {
			x = final.Width - ds.Width - right
		}
		if top := property.Value[float64](c, CanvasTopProperty); !math.IsNaN(top) {
			y = top
		} else if bottom := property.Value[float64](c, CanvasBottomProperty); !math.IsNaN(bottom) {
			y = final.Height - ds.Height - bottom
		}
		c.Arrange(graphics.RectFromLTWH(x, y, ds.Width, ds.Height))
	}
	return final
}

// Neighbor finds the positioned child in dir by geometry.
func (Canvas) Neighbor(container, from *core.Node, dir core.Direction) *core.Node {
	return core.SpatialNeighbor(container, from, dir)
}
