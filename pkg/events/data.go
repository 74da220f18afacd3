package events

// EventData is the mutable state shared by every handler along one route.
// Instances are pooled by the Router and are only valid for the duration of
// the Raise call that produced them; handlers must not retain them.
type EventData struct {
	// Event is the event currently being routed. RaisePair switches it from
	// the preview event to the bubbling event between phases.
	Event *RoutedEvent
	// Source is the target the event was raised on.
	Source Target
	// Handled marks the event as handled. It is advisory: instance handlers
	// further along the route still run and may inspect it.
	Handled bool
	// Payload carries event-specific arguments.
	Payload any

	stopped bool
	pooled  bool
}

// StopRouting ends the walk after the current handler returns.
func (e *EventData) StopRouting() { e.stopped = true }

// Stopped reports whether StopRouting was called.
func (e *EventData) Stopped() bool { return e.stopped }

func (e *EventData) reset() {
	*e = EventData{pooled: e.pooled}
}

// PayloadAs returns the payload as T.
func PayloadAs[T any](e *EventData) (T, bool) {
	v, ok := e.Payload.(T)
	return v, ok
}
