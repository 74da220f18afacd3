package core

import (
	"math"

	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// HorizontalAlignment positions a node horizontally within its slot.
type HorizontalAlignment int

const (
	AlignLeft HorizontalAlignment = iota
	AlignCenter
	AlignRight
	AlignStretch
)

// VerticalAlignment positions a node vertically within its slot.
type VerticalAlignment int

const (
	AlignTop VerticalAlignment = iota
	AlignMiddle
	AlignBottom
	AlignFill
)

// Visibility controls whether a node is drawn and whether it takes space.
type Visibility int

const (
	// Visible nodes are drawn and take space.
	Visible Visibility = iota
	// Hidden nodes take space but are not drawn or hit-tested.
	Hidden
	// Collapsed nodes take no space.
	Collapsed
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	case Collapsed:
		return "collapsed"
	default:
		return "unknown"
	}
}

const nodeType = "Node"

// Framework properties shared by every node. Size properties use NaN for
// "auto".
var (
	WidthProperty     = sizeProperty("Width", math.NaN())
	HeightProperty    = sizeProperty("Height", math.NaN())
	MinWidthProperty  = sizeProperty("MinWidth", 0.0)
	MinHeightProperty = sizeProperty("MinHeight", 0.0)
	MaxWidthProperty  = sizeProperty("MaxWidth", math.Inf(1))
	MaxHeightProperty = sizeProperty("MaxHeight", math.Inf(1))

	MarginProperty = property.Register[graphics.Thickness]("Margin", nodeType, property.Metadata{
		Options: property.AffectsMeasure,
	})

	HorizontalAlignmentProperty = property.Register[HorizontalAlignment]("HorizontalAlignment", nodeType, property.Metadata{
		Default: AlignStretch,
		Options: property.AffectsArrange,
	})

	VerticalAlignmentProperty = property.Register[VerticalAlignment]("VerticalAlignment", nodeType, property.Metadata{
		Default: AlignFill,
		Options: property.AffectsArrange,
	})

	VisibilityProperty = property.Register[Visibility]("Visibility", nodeType, property.Metadata{
		Default: Visible,
		Options: property.AffectsMeasure | property.AffectsRender,
	})

	// IsEnabledProperty is inherited: disabling a node disables the subtree
	// unless a descendant sets its own value. IsEffectivelyEnabled also
	// honours disabled ancestors.
	IsEnabledProperty = property.Register[bool]("IsEnabled", nodeType, property.Metadata{
		Default: true,
		Options: property.Inherits | property.AffectsRender,
	})

	IsHitTestVisibleProperty = property.Register[bool]("IsHitTestVisible", nodeType, property.Metadata{
		Default: true,
	})

	// FocusableProperty marks nodes that can receive keyboard focus.
	FocusableProperty = property.Register[bool]("Focusable", nodeType, property.Metadata{
		Default: false,
	})

	UseLayoutRoundingProperty = property.Register[bool]("UseLayoutRounding", nodeType, property.Metadata{
		Default: false,
		Options: property.Inherits | property.AffectsMeasure,
	})
)

func sizeProperty(name string, def float64) *property.Descriptor {
	return property.Register[float64](name, nodeType, property.Metadata{
		Default: def,
		Options: property.AffectsMeasure,
		Coerce:  nonNegative,
	})
}

// nonNegative clamps negative sizes to zero and keeps NaN (auto) as is.
func nonNegative(_ property.Owner, v any) any {
	if f := v.(float64); f < 0 {
		return 0.0
	}
	return v
}

// Width returns the explicit width, or NaN when auto.
func (n *Node) Width() float64 { return property.Value[float64](n, WidthProperty) }

// SetWidth sets an explicit width. NaN restores auto sizing.
func (n *Node) SetWidth(v float64) { _ = n.store.SetValue(WidthProperty, v) }

// Height returns the explicit height, or NaN when auto.
func (n *Node) Height() float64 { return property.Value[float64](n, HeightProperty) }

// SetHeight sets an explicit height. NaN restores auto sizing.
func (n *Node) SetHeight(v float64) { _ = n.store.SetValue(HeightProperty, v) }

// Margin returns the outer spacing.
func (n *Node) Margin() graphics.Thickness {
	return property.Value[graphics.Thickness](n, MarginProperty)
}

// SetMargin sets the outer spacing.
func (n *Node) SetMargin(t graphics.Thickness) { _ = n.store.SetValue(MarginProperty, t) }

// Visibility returns the node's own visibility.
func (n *Node) Visibility() Visibility { return property.Value[Visibility](n, VisibilityProperty) }

// SetVisibility sets the node's visibility.
func (n *Node) SetVisibility(v Visibility) { _ = n.store.SetValue(VisibilityProperty, v) }

// IsVisible reports whether the node and all its visual ancestors are
// Visible.
func (n *Node) IsVisible() bool {
	for cur := n; cur != nil; cur = cur.VisualParent() {
		if cur.Visibility() != Visible {
			return false
		}
	}
	return true
}

// IsEnabled returns the effective IsEnabled value.
func (n *Node) IsEnabled() bool { return property.Value[bool](n, IsEnabledProperty) }

// SetEnabled sets IsEnabled locally.
func (n *Node) SetEnabled(v bool) { _ = n.store.SetValue(IsEnabledProperty, v) }

// IsEffectivelyEnabled reports whether the node and every ancestor are
// enabled.
func (n *Node) IsEffectivelyEnabled() bool {
	for cur := n; cur != nil; cur = cur.VisualParent() {
		if !cur.IsEnabled() {
			return false
		}
	}
	return true
}

// Focusable reports whether the node can take keyboard focus.
func (n *Node) Focusable() bool { return property.Value[bool](n, FocusableProperty) }

// SetFocusable sets Focusable.
func (n *Node) SetFocusable(v bool) { _ = n.store.SetValue(FocusableProperty, v) }

// IsHitTestVisible reports whether HitTest may return the node.
func (n *Node) IsHitTestVisible() bool {
	return property.Value[bool](n, IsHitTestVisibleProperty)
}

// minMax holds the effective size limits of a node.
type minMax struct {
	minWidth, maxWidth   float64
	minHeight, maxHeight float64
}

// limits folds Width/Height into the Min/Max bounds. An explicit size wins
// over Max but never goes below Min.
func (n *Node) limits() minMax {
	var mm minMax
	mm.maxHeight = property.Value[float64](n, MaxHeightProperty)
	mm.minHeight = property.Value[float64](n, MinHeightProperty)
	h := n.Height()
	v := h
	if math.IsNaN(v) {
		v = math.Inf(1)
	}
	mm.maxHeight = math.Max(math.Min(v, mm.maxHeight), mm.minHeight)
	v = h
	if math.IsNaN(v) {
		v = 0
	}
	mm.minHeight = math.Max(math.Min(mm.maxHeight, v), mm.minHeight)

	mm.maxWidth = property.Value[float64](n, MaxWidthProperty)
	mm.minWidth = property.Value[float64](n, MinWidthProperty)
	w := n.Width()
	v = w
	if math.IsNaN(v) {
		v = math.Inf(1)
	}
	mm.maxWidth = math.Max(math.Min(v, mm.maxWidth), mm.minWidth)
	v = w
	if math.IsNaN(v) {
		v = 0
	}
	mm.minWidth = math.Max(math.Min(mm.maxWidth, v), mm.minWidth)
	return mm
}
