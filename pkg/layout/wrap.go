package layout

import (
	"math"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
)

// Wrap places children along its orientation and starts a new line when
// the next child does not fit.
type Wrap struct {
	Orientation Orientation
}

// NewWrap creates a wrap with the given orientation.
func NewWrap(o Orientation) *Wrap { return &Wrap{Orientation: o} }

// uv maps a size onto the main (u) and cross (v) axes.
type uv struct{ u, v float64 }

func (w *Wrap) toUV(s graphics.Size) uv {
	if w.Orientation == Horizontal {
		return uv{u: s.Width, v: s.Height}
	}
	return uv{u: s.Height, v: s.Width}
}

func (w *Wrap) fromUV(p uv) graphics.Size {
	if w.Orientation == Horizontal {
		return graphics.Size{Width: p.u, Height: p.v}
	}
	return graphics.Size{Width: p.v, Height: p.u}
}

func (w *Wrap) MeasureOverride(n *core.Node, available graphics.Size) graphics.Size {
	limit := w.toUV(available)
	var line, panel uv
	for _, c := range n.VisualChildren() {
		sz := w.toUV(c.Measure(available))
		if line.u+sz.u > limit.u && line.u > 0 {
			panel.u = math.Max(line.u, panel.u)
			panel.v += line.v
			line = sz
			if sz.u > limit.u {
				// a child wider than the line gets a line of its own
				panel.u = math.Max(sz.u, panel.u)
				panel.v += sz.v
				line = uv{}
			}
			continue
		}
		line.u += sz.u
		line.v = math.Max(sz.v, line.v)
	}
	panel.u = math.Max(line.u, panel.u)
	panel.v += line.v
	return w.fromUV(panel)
}

func (w *Wrap) ArrangeOverride(n *core.Node, final graphics.Size) graphics.Size {
	limit := w.toUV(final)
	children := n.VisualChildren()
	start := 0
	var line uv
	offsetV := 0.0
	for i, c := range children {
		sz := w.toUV(c.DesiredSize())
		if line.u+sz.u > limit.u && line.u > 0 {
			w.arrangeLine(children[start:i], offsetV, line.v)
			offsetV += line.v
			line = sz
			start = i
			if sz.u > limit.u {
				w.arrangeLine(children[i:i+1], offsetV, sz.v)
				offsetV += sz.v
				line = uv{}
				start = i + 1
			}
			continue
		}
		line.u += sz.u
		line.v = math.Max(sz.v, line.v)
	}
	if start < len(children) {
		w.arrangeLine(children[start:], offsetV, line.v)
	}
	return final
}

func (w *Wrap) arrangeLine(line []*core.Node, v, thickness float64) {
	u := 0.0
	for _, c := range line {
		sz := w.toUV(c.DesiredSize())
		var rect graphics.Rect
		if w.Orientation == Horizontal {
			rect = graphics.RectFromLTWH(u, v, sz.u, thickness)
		} else {
			rect = graphics.RectFromLTWH(v, u, thickness, sz.u)
		}
		c.Arrange(rect)
		u += sz.u
	}
}

// Neighbor moves along a line to the previous or next child, and across
// lines to the child in the adjacent line whose center is closest.
func (w *Wrap) Neighbor(container, from *core.Node, dir core.Direction) *core.Node {
	along := w.Orientation == Horizontal && (dir == core.DirectionLeft || dir == core.DirectionRight) ||
		w.Orientation == Vertical && (dir == core.DirectionUp || dir == core.DirectionDown)
	if along {
		step := 1
		if dir == core.DirectionLeft || dir == core.DirectionUp {
			step = -1
		}
		return sibling(container, from, step)
	}
	return w.acrossLines(container, from, dir == core.DirectionDown || dir == core.DirectionRight)
}

func (w *Wrap) acrossLines(container, from *core.Node, forward bool) *core.Node {
	fromRect := from.LayoutRect()
	fromV, fromU := w.axes(fromRect)
	var best *core.Node
	bestLine, bestDist := 0.0, math.Inf(1)
	for _, c := range visibleSiblings(container.VisualChildren()) {
		if c == from {
			continue
		}
		v, u := w.axes(c.LayoutRect())
		if forward && v <= fromV || !forward && v >= fromV {
			continue
		}
		dist := math.Abs(u - fromU)
		switch {
		case best == nil,
			forward && v < bestLine,
			!forward && v > bestLine,
			v == bestLine && dist < bestDist:
			best, bestLine, bestDist = c, v, dist
		}
	}
	return best
}

// axes returns the line position (start of v) and the u center of r.
func (w *Wrap) axes(r graphics.Rect) (line, center float64) {
	if w.Orientation == Horizontal {
		return r.Top, (r.Left + r.Right) / 2
	}
	return r.Left, (r.Top + r.Bottom) / 2
}
