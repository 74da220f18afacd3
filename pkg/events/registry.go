package events

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-drift/retain/pkg/errors"
)

type eventKey struct {
	owner string
	name  string
}

type classKey struct {
	typeName string
	event    *RoutedEvent
}

type classHandler struct {
	fn         Handler
	handledToo bool
}

// Registry holds routed event identities and class handlers. It is written
// during startup and read afterwards.
type Registry struct {
	mu      sync.RWMutex
	events  map[eventKey]*RoutedEvent
	ordered []*RoutedEvent
	classes map[classKey][]classHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		events:  make(map[eventKey]*RoutedEvent),
		classes: make(map[classKey][]classHandler),
	}
}

// Default is the process-wide event registry.
var Default = NewRegistry()

// Register adds an event. payloadType may be nil to accept any payload.
// Registering the same (owner, name) twice fails with
// DuplicateRegistrationError.
func (r *Registry) Register(name string, strategy RoutingStrategy, payloadType reflect.Type, owner string) (*RoutedEvent, error) {
	if strategy < Direct || strategy > Tunnel {
		return nil, fmt.Errorf("event %s.%s: unknown routing strategy %d", owner, name, strategy)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := eventKey{owner: owner, name: name}
	if _, exists := r.events[key]; exists {
		return nil, &errors.DuplicateRegistrationError{Registry: "event", Owner: owner, Name: name}
	}
	ev := &RoutedEvent{
		name:        name,
		owner:       owner,
		strategy:    strategy,
		payloadType: payloadType,
		index:       len(r.ordered),
	}
	r.events[key] = ev
	r.ordered = append(r.ordered, ev)
	return ev, nil
}

// MustRegister is like Register but panics on failure.
func (r *Registry) MustRegister(name string, strategy RoutingStrategy, payloadType reflect.Type, owner string) *RoutedEvent {
	ev, err := r.Register(name, strategy, payloadType, owner)
	if err != nil {
		panic(err)
	}
	return ev
}

// Lookup finds an event by owner type and name.
func (r *Registry) Lookup(owner, name string) (*RoutedEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[eventKey{owner: owner, name: name}]
	return ev, ok
}

// Events returns all events in registration order.
func (r *Registry) Events() []*RoutedEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RoutedEvent, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// RegisterClassHandler attaches a handler that runs for every target whose
// TypeName is typeName, before that target's instance handlers. Class
// handlers carry default behavior and are skipped once the event is handled
// unless handledToo is set.
func (r *Registry) RegisterClassHandler(typeName string, ev *RoutedEvent, fn Handler, handledToo bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := classKey{typeName: typeName, event: ev}
	r.classes[key] = append(r.classes[key], classHandler{fn: fn, handledToo: handledToo})
}

func (r *Registry) classHandlers(typeName string, ev *RoutedEvent) []classHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[classKey{typeName: typeName, event: ev}]
}

// Register adds an event with payload type P to the Default registry and
// panics on failure.
func Register[P any](name string, strategy RoutingStrategy, owner string) *RoutedEvent {
	return Default.MustRegister(name, strategy, reflect.TypeFor[P](), owner)
}

// RegisterUntyped adds an event that accepts any payload to the Default
// registry and panics on failure.
func RegisterUntyped(name string, strategy RoutingStrategy, owner string) *RoutedEvent {
	return Default.MustRegister(name, strategy, nil, owner)
}
