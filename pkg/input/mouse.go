package input

import (
	"fmt"

	"github.com/go-drift/retain/pkg/graphics"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	// MouseNone is used for motion without a button change.
	MouseNone MouseButton = iota
	// MouseLeft is the primary button.
	MouseLeft
	// MouseMiddle is the middle button.
	MouseMiddle
	// MouseRight is the secondary button.
	MouseRight
)

func (b MouseButton) String() string {
	switch b {
	case MouseNone:
		return "None"
	case MouseLeft:
		return "Left"
	case MouseMiddle:
		return "Middle"
	case MouseRight:
		return "Right"
	default:
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
}

// MouseEvent is the payload of the mouse routed events.
type MouseEvent struct {
	// Position is in root coordinates.
	Position graphics.Offset
	// Button is the button that changed state. MouseNone for moves.
	Button MouseButton
	// Mod holds the active keyboard modifiers.
	Mod Modifier
}
