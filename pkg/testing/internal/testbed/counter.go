// Package testbed provides node fixtures for the testing package's tests.
package testbed

import (
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/input"
	"github.com/go-drift/retain/pkg/layout"
	"github.com/go-drift/retain/pkg/property"
)

// CounterType is the type name of counter nodes.
const CounterType = "Counter"

// CountProperty is the number of times a counter was activated.
var CountProperty = property.Register[int]("Count", CounterType, property.Metadata{
	Options: property.AffectsRender,
})

// Count returns the count of n.
func Count(n *core.Node) int { return property.Value[int](n, CountProperty) }

// NewCounter returns a focusable 80x20 counter node starting at initial.
func NewCounter(name string, initial int) *core.Node {
	n := core.NewNode(CounterType, name)
	n.SetFocusable(true)
	n.SetWidth(80)
	n.SetHeight(20)
	if initial != 0 {
		_ = n.SetValue(CountProperty, initial)
	}
	return n
}

// Register installs the counter class handlers on r: a left click that is
// released over the counter increments it, as do Enter and Space while it
// has focus.
func Register(r *events.Registry) {
	// runs before the press behavior clears IsPressed
	r.RegisterClassHandler(CounterType, input.MouseUpEvent, func(sender events.Target, e *events.EventData) {
		n := sender.(*core.Node)
		if args, _ := events.PayloadAs[input.MouseEvent](e); args.Button != input.MouseLeft {
			return
		}
		if input.IsPressed(n) && input.IsMouseOver(n) {
			increment(n)
			e.Handled = true
		}
	}, true)
	input.RegisterPressBehavior(r, CounterType)
	r.RegisterClassHandler(CounterType, input.KeyDownEvent, func(sender events.Target, e *events.EventData) {
		key, _ := events.PayloadAs[input.KeyEvent](e)
		if key.Is(input.KeyEnter, input.ModNone) || key.Is(input.KeySpace, input.ModNone) {
			increment(sender.(*core.Node))
			e.Handled = true
		}
	}, false)
}

func increment(n *core.Node) {
	_ = n.SetValue(CountProperty, Count(n)+1)
}

// Column returns a vertical stack of children with 10 DIP spacing.
func Column(name string, children ...*core.Node) *core.Node {
	n := core.NewNode("Column", name)
	s := layout.NewStack(layout.Vertical)
	s.Spacing = 10
	n.SetLayout(s)
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}
