package input

import (
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/property"
)

const inputType = "Input"

// Keyboard events. Previews tunnel from the root to the focused element, the
// bubbling events return from it to the root.
var (
	PreviewKeyDownEvent = events.Register[KeyEvent]("PreviewKeyDown", events.Tunnel, inputType)
	KeyDownEvent        = events.Register[KeyEvent]("KeyDown", events.Bubble, inputType)
	PreviewKeyUpEvent   = events.Register[KeyEvent]("PreviewKeyUp", events.Tunnel, inputType)
	KeyUpEvent          = events.Register[KeyEvent]("KeyUp", events.Bubble, inputType)
)

// Mouse events. Enter and leave are direct: each node on the hover path gets
// its own.
var (
	PreviewMouseDownEvent = events.Register[MouseEvent]("PreviewMouseDown", events.Tunnel, inputType)
	MouseDownEvent        = events.Register[MouseEvent]("MouseDown", events.Bubble, inputType)
	PreviewMouseUpEvent   = events.Register[MouseEvent]("PreviewMouseUp", events.Tunnel, inputType)
	MouseUpEvent          = events.Register[MouseEvent]("MouseUp", events.Bubble, inputType)
	MouseMoveEvent        = events.Register[MouseEvent]("MouseMove", events.Bubble, inputType)
	MouseEnterEvent       = events.Register[MouseEvent]("MouseEnter", events.Direct, inputType)
	MouseLeaveEvent       = events.Register[MouseEvent]("MouseLeave", events.Direct, inputType)
)

var (
	// IsMouseOverProperty is true on every node of the hover path.
	IsMouseOverProperty = property.Register[bool]("IsMouseOver", inputType, property.Metadata{
		Options: property.AffectsRender,
	})

	// IsPressedProperty is maintained by the press behavior installed with
	// RegisterPressBehavior.
	IsPressedProperty = property.Register[bool]("IsPressed", inputType, property.Metadata{
		Options: property.AffectsRender,
	})
)

// IsMouseOver reports whether n is on the current hover path.
func IsMouseOver(n *core.Node) bool { return property.Value[bool](n, IsMouseOverProperty) }

// IsPressed reports whether n is pressed.
func IsPressed(n *core.Node) bool { return property.Value[bool](n, IsPressedProperty) }

// RegisterPressBehavior installs class handlers on r that make nodes of
// typeName pressable: a left button down marks the node pressed and handles
// the event, the matching up releases it. The press is skipped when an
// earlier handler already handled the down event; the release always runs.
func RegisterPressBehavior(r *events.Registry, typeName string) {
	r.RegisterClassHandler(typeName, MouseDownEvent, func(sender events.Target, e *events.EventData) {
		n, ok := sender.(*core.Node)
		if !ok || !n.IsEffectivelyEnabled() {
			return
		}
		if args, _ := events.PayloadAs[MouseEvent](e); args.Button != MouseLeft {
			return
		}
		_ = n.SetValue(IsPressedProperty, true)
		e.Handled = true
	}, false)
	r.RegisterClassHandler(typeName, MouseUpEvent, func(sender events.Target, e *events.EventData) {
		n, ok := sender.(*core.Node)
		if !ok || !IsPressed(n) {
			return
		}
		n.ClearValue(IsPressedProperty)
	}, true)
}
