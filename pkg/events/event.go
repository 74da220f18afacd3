// Package events implements routed events: a registry of event identities,
// per-target handler tables, and a router that walks the tree from the root
// down to the target (tunnel) or from the target up to the root (bubble).
//
// Events are registered once at startup, like properties:
//
//	var KeyDownEvent = events.Register[KeyArgs]("KeyDown", events.Bubble, "Input")
//
// A Target takes part in routing by reporting its route parent and exposing
// a HandlerTable.
package events

import (
	"fmt"
	"reflect"
)

// RoutingStrategy selects how an event travels through the tree.
type RoutingStrategy int

const (
	// Direct invokes only the target's handlers.
	Direct RoutingStrategy = iota
	// Bubble walks from the target up to the root.
	Bubble
	// Tunnel walks from the root down to the target.
	Tunnel
)

func (s RoutingStrategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Bubble:
		return "bubble"
	case Tunnel:
		return "tunnel"
	default:
		return fmt.Sprintf("RoutingStrategy(%d)", int(s))
	}
}

// RoutedEvent identifies a registered event.
type RoutedEvent struct {
	name        string
	owner       string
	strategy    RoutingStrategy
	payloadType reflect.Type
	index       int
}

// Name returns the event name.
func (e *RoutedEvent) Name() string { return e.name }

// OwnerType returns the registering type name.
func (e *RoutedEvent) OwnerType() string { return e.owner }

// Strategy returns the routing strategy.
func (e *RoutedEvent) Strategy() RoutingStrategy { return e.strategy }

// PayloadType returns the payload type, or nil when any payload is accepted.
func (e *RoutedEvent) PayloadType() reflect.Type { return e.payloadType }

// String returns "Owner.Name".
func (e *RoutedEvent) String() string { return e.owner + "." + e.name }

// Target is a participant in event routing.
type Target interface {
	// RouteParent returns the next target towards the root, or nil.
	RouteParent() Target
	// EventHandlers returns the target's instance handler table.
	EventHandlers() *HandlerTable
	// TypeName is the type used to look up class handlers.
	TypeName() string
}
