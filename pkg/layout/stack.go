package layout

import (
	"math"
	"slices"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
)

// Stack places children one after another along its orientation. Children
// get unlimited space along the main axis and the full cross axis.
type Stack struct {
	Orientation Orientation
	// Spacing is inserted between visible children.
	Spacing float64
}

// NewStack creates a stack with the given orientation.
func NewStack(o Orientation) *Stack { return &Stack{Orientation: o} }

func (s *Stack) MeasureOverride(n *core.Node, available graphics.Size) graphics.Size {
	horizontal := s.Orientation == Horizontal
	child := available
	if horizontal {
		child.Width = graphics.Inf
	} else {
		child.Height = graphics.Inf
	}
	var size graphics.Size
	visible := 0
	for _, c := range n.VisualChildren() {
		d := c.Measure(child)
		if c.Visibility() == core.Collapsed {
			continue
		}
		visible++
		if horizontal {
			size.Width += d.Width
			size.Height = math.Max(size.Height, d.Height)
		} else {
			size.Height += d.Height
			size.Width = math.Max(size.Width, d.Width)
		}
	}
	if visible > 1 {
		gap := s.Spacing * float64(visible-1)
		if horizontal {
			size.Width += gap
		} else {
			size.Height += gap
		}
	}
	return size
}

func (s *Stack) ArrangeOverride(n *core.Node, final graphics.Size) graphics.Size {
	horizontal := s.Orientation == Horizontal
	pos := 0.0
	for _, c := range n.VisualChildren() {
		if c.Visibility() == core.Collapsed {
			c.Arrange(graphics.RectFromLTWH(pos, 0, 0, 0))
			continue
		}
		d := c.DesiredSize()
		if horizontal {
			c.Arrange(graphics.RectFromLTWH(pos, 0, d.Width, final.Height))
			pos += d.Width + s.Spacing
		} else {
			c.Arrange(graphics.RectFromLTWH(0, pos, final.Width, d.Height))
			pos += d.Height + s.Spacing
		}
	}
	return final
}

// Neighbor answers moves along the stacking axis with the previous or next
// visible sibling. Moves across the axis are left to the enclosing
// container.
func (s *Stack) Neighbor(container, from *core.Node, dir core.Direction) *core.Node {
	step := 0
	switch {
	case s.Orientation == Vertical && dir == core.DirectionUp,
		s.Orientation == Horizontal && dir == core.DirectionLeft:
		step = -1
	case s.Orientation == Vertical && dir == core.DirectionDown,
		s.Orientation == Horizontal && dir == core.DirectionRight:
		step = 1
	default:
		return nil
	}
	return sibling(container, from, step)
}

// sibling returns the nearest non-collapsed visual child of container
// step positions away from from.
func sibling(container, from *core.Node, step int) *core.Node {
	children := container.VisualChildren()
	i := slices.Index(children, from)
	if i < 0 {
		return nil
	}
	for j := i + step; j >= 0 && j < len(children); j += step {
		if children[j].Visibility() != core.Collapsed {
			return children[j]
		}
	}
	return nil
}
