package events

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-drift/retain/pkg/errors"
)

// DefaultMaxDispatchDepth bounds nested Raise calls made from handlers.
const DefaultMaxDispatchDepth = 32

// Router dispatches routed events. A Router is bound to the goroutine that
// owns the tree and is not safe for concurrent use.
type Router struct {
	registry *Registry
	pool     *Pool
	logger   *slog.Logger
	maxDepth int
	depth    int
	route    []Target
}

// Option configures a Router.
type Option func(*Router)

// WithRegistry sets the registry used to find class handlers.
func WithRegistry(r *Registry) Option {
	return func(rt *Router) { rt.registry = r }
}

// WithMaxDispatchDepth bounds nested dispatch. Values < 1 keep the default.
func WithMaxDispatchDepth(n int) Option {
	return func(rt *Router) {
		if n > 0 {
			rt.maxDepth = n
		}
	}
}

// WithLogger sets the logger for dispatch tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Router) { rt.logger = l }
}

// NewRouter creates a router using the Default registry.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		registry: Default,
		pool:     &Pool{},
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxDispatchDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pool exposes the EventData pool.
func (r *Router) Pool() *Pool { return r.pool }

// Depth returns the current nesting of Raise calls.
func (r *Router) Depth() int { return r.depth }

// Route returns the targets ev visits when raised on target, in visit order.
func (r *Router) Route(ev *RoutedEvent, target Target) []Target {
	return buildRoute(nil, ev.strategy, target)
}

// Raise routes ev from target according to its strategy and reports whether
// any handler marked it handled. A payload that does not match the event's
// payload type returns TypeMismatchError without invoking handlers.
//
// Exceeding the dispatch depth panics with *errors.RecursionLimitError.
// Handler panics propagate to the caller after the EventData is released.
func (r *Router) Raise(ev *RoutedEvent, target Target, payload any) (bool, error) {
	if err := r.validate(ev, target, payload); err != nil {
		return false, err
	}
	r.enter(ev)
	defer r.leave()

	data := r.pool.Acquire()
	defer r.pool.Release(data)
	data.Event = ev
	data.Source = target
	data.Payload = payload

	r.walk(data, target)
	r.logger.Debug("routed event", "event", ev.String(), "strategy", ev.strategy.String(), "handled", data.Handled)
	return data.Handled, nil
}

// RaisePair raises a tunneling preview event followed by its bubbling
// counterpart on the same EventData, so Handled set during the preview is
// visible to the bubble phase. StopRouting in the preview skips the bubble.
func (r *Router) RaisePair(preview, bubble *RoutedEvent, target Target, payload any) (bool, error) {
	if preview.strategy != Tunnel || bubble.strategy != Bubble {
		return false, fmt.Errorf("events: RaisePair(%s, %s) needs a tunnel and a bubble event", preview, bubble)
	}
	if err := r.validate(preview, target, payload); err != nil {
		return false, err
	}
	if err := r.validate(bubble, target, payload); err != nil {
		return false, err
	}
	r.enter(preview)
	defer r.leave()

	data := r.pool.Acquire()
	defer r.pool.Release(data)
	data.Source = target
	data.Payload = payload

	data.Event = preview
	r.walk(data, target)
	if !data.stopped {
		data.Event = bubble
		r.walk(data, target)
	}
	r.logger.Debug("routed event pair", "preview", preview.String(), "event", bubble.String(), "handled", data.Handled)
	return data.Handled, nil
}

func (r *Router) validate(ev *RoutedEvent, target Target, payload any) error {
	if ev == nil {
		return fmt.Errorf("events: raise of nil event")
	}
	if target == nil {
		return fmt.Errorf("events: raise of %s on nil target", ev)
	}
	if ev.payloadType == nil || payload == nil {
		return nil
	}
	if got := reflect.TypeOf(payload); !got.AssignableTo(ev.payloadType) {
		return &errors.TypeMismatchError{Subject: ev.String(), Want: ev.payloadType, Got: got}
	}
	return nil
}

func (r *Router) enter(ev *RoutedEvent) {
	if r.depth >= r.maxDepth {
		panic(&errors.RecursionLimitError{Op: "dispatch", Subject: ev.String(), Depth: r.maxDepth})
	}
	r.depth++
}

func (r *Router) leave() { r.depth-- }

// walk invokes handlers along the route computed from data.Event. The route
// is captured up front so handlers that restructure the tree do not affect
// the current dispatch.
func (r *Router) walk(data *EventData, target Target) {
	base := len(r.route)
	r.route = buildRoute(r.route, data.Event.strategy, target)
	defer func() {
		clear(r.route[base:])
		r.route = r.route[:base]
	}()
	for _, node := range r.route[base:] {
		r.invoke(node, data)
		if data.stopped {
			return
		}
	}
}

func (r *Router) invoke(node Target, data *EventData) {
	for _, ch := range r.registry.classHandlers(node.TypeName(), data.Event) {
		if data.Handled && !ch.handledToo {
			continue
		}
		ch.fn(node, data)
		if data.stopped {
			return
		}
	}
	table := node.EventHandlers()
	if table == nil {
		return
	}
	for _, h := range table.handlers(data.Event) {
		h.fn(node, data)
		if data.stopped {
			return
		}
	}
}

// buildRoute appends the visit order for strategy to dst.
func buildRoute(dst []Target, strategy RoutingStrategy, target Target) []Target {
	base := len(dst)
	switch strategy {
	case Direct:
		return append(dst, target)
	default:
		for t := target; t != nil; t = t.RouteParent() {
			dst = append(dst, t)
		}
	}
	if strategy == Tunnel {
		path := dst[base:]
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
	}
	return dst
}
