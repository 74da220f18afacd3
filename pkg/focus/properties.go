// Package focus implements keyboard focus: tab-order and directional
// navigation between navigation stops, focus scopes that remember their
// focused element, and the GotFocus/LostFocus routed events.
//
// A navigation stop is a node that is a tab stop, focusable, enabled and
// visible. A navigation container is the root or any node whose
// TabNavigation mode is not Continue; Tab order is resolved inside the
// nearest container and the mode decides what happens at its boundary.
package focus

import (
	"fmt"
	"math"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/property"
)

const navigationType = "KeyboardNavigation"

// Mode selects how a navigation container treats traversal.
type Mode int

const (
	// Continue makes the node part of the enclosing container.
	Continue Mode = iota
	// Cycle wraps around at the container boundary.
	Cycle
	// Contained stops at the container boundary.
	Contained
	// Once visits the container as a single stop, restoring its last focused
	// element.
	Once
	// None skips the container's descendants.
	None
	// Local orders by tab index within the container, then leaves it.
	Local
)

var modeNames = [...]string{"Continue", "Cycle", "Contained", "Once", "None", "Local"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

var (
	// TabNavigationProperty is the container mode for Tab traversal.
	TabNavigationProperty = property.Register[Mode]("TabNavigation", navigationType, property.Metadata{
		Default: Continue,
	})

	// DirectionalNavigationProperty is the container mode for arrow keys.
	DirectionalNavigationProperty = property.Register[Mode]("DirectionalNavigation", navigationType, property.Metadata{
		Default: Continue,
	})

	// TabIndexProperty orders stops within a container; lower first, ties
	// in document order.
	TabIndexProperty = property.Register[int]("TabIndex", navigationType, property.Metadata{
		Default: math.MaxInt32,
	})

	IsTabStopProperty = property.Register[bool]("IsTabStop", navigationType, property.Metadata{
		Default: true,
	})

	// IsFocusScopeProperty marks a node that tracks its own FocusedElement.
	IsFocusScopeProperty = property.Register[bool]("IsFocusScope", "FocusManager", property.Metadata{})

	// FocusedElementProperty holds a scope's focused element.
	FocusedElementProperty = property.Register[*core.Node]("FocusedElement", "FocusManager", property.Metadata{})

	IsFocusedProperty = property.Register[bool]("IsFocused", "FocusManager", property.Metadata{
		Options: property.AffectsRender,
	})

	// lastFocusedProperty remembers the last focused descendant of a
	// container so Once containers can restore it.
	lastFocusedProperty = property.Register[*core.Node]("LastFocused", navigationType, property.Metadata{})
)

// SetTabNavigation sets the Tab mode of n.
func SetTabNavigation(n *core.Node, m Mode) { _ = n.SetValue(TabNavigationProperty, m) }

// TabNavigation returns the Tab mode of n.
func TabNavigation(n *core.Node) Mode { return property.Value[Mode](n, TabNavigationProperty) }

// SetDirectionalNavigation sets the arrow-key mode of n.
func SetDirectionalNavigation(n *core.Node, m Mode) {
	_ = n.SetValue(DirectionalNavigationProperty, m)
}

// DirectionalNavigation returns the arrow-key mode of n.
func DirectionalNavigation(n *core.Node) Mode {
	return property.Value[Mode](n, DirectionalNavigationProperty)
}

// SetTabIndex sets the tab index of n.
func SetTabIndex(n *core.Node, i int) { _ = n.SetValue(TabIndexProperty, i) }

// TabIndex returns the tab index of n.
func TabIndex(n *core.Node) int { return property.Value[int](n, TabIndexProperty) }

// SetIsTabStop sets whether n takes part in traversal.
func SetIsTabStop(n *core.Node, v bool) { _ = n.SetValue(IsTabStopProperty, v) }

// IsTabStop reports whether n takes part in traversal.
func IsTabStop(n *core.Node) bool { return property.Value[bool](n, IsTabStopProperty) }

// SetIsFocusScope marks n as a focus scope.
func SetIsFocusScope(n *core.Node, v bool) { _ = n.SetValue(IsFocusScopeProperty, v) }

// IsFocusScope reports whether n is a focus scope.
func IsFocusScope(n *core.Node) bool { return property.Value[bool](n, IsFocusScopeProperty) }

// FocusedElement returns the element recorded on scope, or nil.
func FocusedElement(scope *core.Node) *core.Node {
	return property.Value[*core.Node](scope, FocusedElementProperty)
}

// IsFocused reports whether n holds keyboard focus.
func IsFocused(n *core.Node) bool { return property.Value[bool](n, IsFocusedProperty) }

// IsNavigationStop reports whether traversal may land on n.
func IsNavigationStop(n *core.Node) bool {
	return n != nil && IsTabStop(n) && n.Focusable() && n.IsEffectivelyEnabled() && n.IsVisible()
}

// FocusScope returns the nearest focus scope enclosing n, excluding n
// itself, or the root.
func FocusScope(n *core.Node) *core.Node {
	if n == nil {
		return nil
	}
	cur := n.VisualParent()
	if cur == nil {
		return n
	}
	for {
		if IsFocusScope(cur) {
			return cur
		}
		p := cur.VisualParent()
		if p == nil {
			return cur
		}
		cur = p
	}
}

func lastFocused(container *core.Node) *core.Node {
	return property.Value[*core.Node](container, lastFocusedProperty)
}
