package core

import (
	"math"

	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// DesiredSize returns the size computed by the last Measure, margin included.
func (n *Node) DesiredSize() graphics.Size { return n.desired }

// RenderSize returns the size computed by the last Arrange, margin excluded.
func (n *Node) RenderSize() graphics.Size { return n.renderSize }

// Offset returns the position of the node's render area relative to its
// visual parent.
func (n *Node) Offset() graphics.Offset { return n.offset }

// LayoutRect returns the arranged bounds relative to the visual parent.
func (n *Node) LayoutRect() graphics.Rect {
	return graphics.RectFromLTWH(n.offset.X, n.offset.Y, n.renderSize.Width, n.renderSize.Height)
}

// GlobalOffset returns the position of the node relative to the root.
func (n *Node) GlobalOffset() graphics.Offset {
	var o graphics.Offset
	for cur := n; cur != nil; cur = cur.VisualParent() {
		o = o.Add(cur.offset)
	}
	return o
}

// IsMeasureDirty reports whether the node needs a new Measure.
func (n *Node) IsMeasureDirty() bool { return n.measureDirty }

// IsArrangeDirty reports whether the node needs a new Arrange.
func (n *Node) IsArrangeDirty() bool { return n.arrangeDirty }

// IsRenderDirty reports whether the node asked for a repaint since the last
// ClearRenderDirty.
func (n *Node) IsRenderDirty() bool { return n.renderDirty }

// ClearRenderDirty acknowledges a repaint.
func (n *Node) ClearRenderDirty() { n.renderDirty = false }

// LayoutCounts returns how many times the layout override ran for Measure
// and Arrange. Memoized calls are not counted.
func (n *Node) LayoutCounts() (measure, arrange int) {
	return n.measureCount, n.arrangeCount
}

// InvalidateMeasure marks the node measure-dirty and walks up the logical
// parents, stopping at the first node that is already dirty. A root reached
// by the walk is scheduled on its host's pipeline.
func (n *Node) InvalidateMeasure() {
	for cur := n; cur != nil; cur = cur.layoutParent() {
		if cur.measureDirty {
			return
		}
		cur.measureDirty = true
		if cur.layoutParent() == nil && cur.host != nil {
			cur.host.pipeline.ScheduleLayout(cur)
		}
	}
}

// InvalidateArrange marks the node arrange-dirty without forcing a new
// measure, walking up like InvalidateMeasure.
func (n *Node) InvalidateArrange() {
	for cur := n; cur != nil; cur = cur.layoutParent() {
		if cur.arrangeDirty {
			return
		}
		cur.arrangeDirty = true
		if cur.layoutParent() == nil && cur.host != nil {
			cur.host.pipeline.ScheduleLayout(cur)
		}
	}
}

// InvalidateRender marks the node for repaint and notifies the host.
func (n *Node) InvalidateRender() {
	n.renderDirty = true
	if h := n.Root().host; h != nil {
		h.pipeline.ScheduleRender(n)
	}
}

// layoutParent is the logical parent, or the visual parent for nodes that
// only exist in a visual composition.
func (n *Node) layoutParent() *Node {
	if n.parent != nil {
		return n.parent
	}
	return n.visualParent
}

func (n *Node) layoutRounding() (bool, float64) {
	if !property.Value[bool](n, UseLayoutRoundingProperty) {
		return false, 1
	}
	scale := 1.0
	if h := n.Root().host; h != nil {
		scale = h.scale
	}
	return true, scale
}

// Measure computes the node's desired size within available. A clean node
// measured again with the same available size returns its cached result.
func (n *Node) Measure(available graphics.Size) graphics.Size {
	if !n.measureDirty && n.measuredOnce && available.Equal(n.lastAvailable) {
		return n.desired
	}
	if n.inMeasure {
		// Re-entrant measure from an override: keep the previous answer.
		return n.desired
	}
	n.inMeasure = true
	defer func() { n.inMeasure = false }()

	n.lastAvailable = available
	n.measuredOnce = true
	n.arrangeDirty = true

	if n.Visibility() == Collapsed {
		n.desired = graphics.Size{}
		n.measureDirty = false
		return n.desired
	}

	margin := n.Margin()
	mm := n.limits()
	frame := available.Deflate(margin)
	frame.Width = clamp(frame.Width, mm.minWidth, mm.maxWidth)
	frame.Height = clamp(frame.Height, mm.minHeight, mm.maxHeight)

	// Clear before the override so invalidations raised while measuring
	// children are kept.
	n.measureDirty = false
	content := n.measureOverride(frame)

	content.Width = math.Max(content.Width, mm.minWidth)
	content.Height = math.Max(content.Height, mm.minHeight)
	content.Width = math.Min(content.Width, mm.maxWidth)
	content.Height = math.Min(content.Height, mm.maxHeight)

	desired := graphics.Size{
		Width:  math.Max(0, content.Width+margin.Horizontal()),
		Height: math.Max(0, content.Height+margin.Vertical()),
	}
	if !math.IsInf(available.Width, 1) {
		desired.Width = math.Min(desired.Width, available.Width)
	}
	if !math.IsInf(available.Height, 1) {
		desired.Height = math.Min(desired.Height, available.Height)
	}
	if ok, scale := n.layoutRounding(); ok {
		desired = graphics.RoundSize(desired, scale)
	}
	n.desired = desired
	return desired
}

func (n *Node) measureOverride(available graphics.Size) (size graphics.Size) {
	defer errors.RecoverWithCallback("core.Node.Measure", func(any) {
		size = graphics.Size{}
	})
	n.measureCount++
	if n.layout == nil {
		return contentLayout{}.MeasureOverride(n, available)
	}
	return n.layout.MeasureOverride(n, available)
}

// Arrange positions the node within final, which is relative to the visual
// parent, and returns the render size. A clean node arranged again into the
// same rectangle returns its cached result.
func (n *Node) Arrange(final graphics.Rect) graphics.Size {
	if n.measureDirty || !n.measuredOnce {
		avail := n.lastAvailable
		if !n.measuredOnce {
			avail = final.Size()
		}
		n.Measure(avail)
	}
	if !n.arrangeDirty && n.arrangedOnce && rectEqual(final, n.lastFinal) {
		return n.renderSize
	}
	n.lastFinal = final
	n.arrangedOnce = true
	n.arrangeDirty = false

	if n.Visibility() == Collapsed {
		n.renderSize = graphics.Size{}
		n.offset = final.TopLeft()
		return n.renderSize
	}

	margin := n.Margin()
	client := final.Size().Deflate(margin)
	arrangeSize := client
	unclipped := n.desired.Deflate(margin)

	ha := property.Value[HorizontalAlignment](n, HorizontalAlignmentProperty)
	va := property.Value[VerticalAlignment](n, VerticalAlignmentProperty)
	if ha != AlignStretch {
		arrangeSize.Width = unclipped.Width
	}
	if va != AlignFill {
		arrangeSize.Height = unclipped.Height
	}
	arrangeSize.Width = math.Max(arrangeSize.Width, unclipped.Width)
	arrangeSize.Height = math.Max(arrangeSize.Height, unclipped.Height)

	mm := n.limits()
	arrangeSize.Width = clamp(arrangeSize.Width, mm.minWidth, math.Max(unclipped.Width, mm.maxWidth))
	arrangeSize.Height = clamp(arrangeSize.Height, mm.minHeight, math.Max(unclipped.Height, mm.maxHeight))

	inner := n.arrangeOverride(arrangeSize)
	render := graphics.Size{
		Width:  math.Min(inner.Width, mm.maxWidth),
		Height: math.Min(inner.Height, mm.maxHeight),
	}

	off := graphics.Offset{
		X: final.Left + margin.Left + ha.offset(client.Width, render.Width),
		Y: final.Top + margin.Top + va.offset(client.Height, render.Height),
	}
	if ok, scale := n.layoutRounding(); ok {
		render = graphics.RoundSize(render, scale)
		off = graphics.RoundOffset(off, scale)
	}
	n.renderSize = render
	n.offset = off
	return render
}

func (n *Node) arrangeOverride(final graphics.Size) (size graphics.Size) {
	defer errors.RecoverWithCallback("core.Node.Arrange", func(any) {
		size = graphics.Size{}
	})
	n.arrangeCount++
	if n.layout == nil {
		return contentLayout{}.ArrangeOverride(n, final)
	}
	return n.layout.ArrangeOverride(n, final)
}

// offset returns where content of the given extent starts within slot.
// Stretched content larger than its slot aligns to the start.
func (a HorizontalAlignment) offset(slot, content float64) float64 {
	switch {
	case a == AlignLeft, a == AlignStretch && content > slot:
		return 0
	case a == AlignRight:
		return slot - content
	default:
		return (slot - content) / 2
	}
}

func (a VerticalAlignment) offset(slot, content float64) float64 {
	switch {
	case a == AlignTop, a == AlignFill && content > slot:
		return 0
	case a == AlignBottom:
		return slot - content
	default:
		return (slot - content) / 2
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func rectEqual(a, b graphics.Rect) bool {
	return graphics.FloatEqual(a.Left, b.Left) && graphics.FloatEqual(a.Top, b.Top) &&
		graphics.FloatEqual(a.Right, b.Right) && graphics.FloatEqual(a.Bottom, b.Bottom)
}

// contentLayout sizes a node to its largest child and gives every child the
// full slot. It is used when no Layout is installed.
type contentLayout struct{}

func (contentLayout) MeasureOverride(n *Node, available graphics.Size) graphics.Size {
	var size graphics.Size
	for _, c := range n.VisualChildren() {
		size = size.Max(c.Measure(available))
	}
	return size
}

func (contentLayout) ArrangeOverride(n *Node, final graphics.Size) graphics.Size {
	for _, c := range n.VisualChildren() {
		c.Arrange(graphics.RectFromSize(final))
	}
	return final
}

// ContentLayout returns the default layout used by nodes without one.
func ContentLayout() Layout { return contentLayout{} }
