// Package errors provides structured error handling for the retain engine.
//
// The engine separates errors that are returned to the caller (type mismatches),
// errors that are reported to the configured [ErrorHandler] and recovered from
// (invalid grid spans, navigation cycles, faults inside a single node's layout),
// and fatal conditions that panic with a typed error value (duplicate
// registrations at startup, runaway recursion).
//
// Every typed error matches its sentinel through the standard errors.Is:
//
//	if errors.Is(err, rerrors.ErrTypeMismatch) { ... }
package errors

import (
	"fmt"
	"reflect"
	"time"
)

// sentinel is a comparable error value used as an errors.Is target.
type sentinel string

func (s sentinel) Error() string { return string(s) }

// Sentinels matched by the typed errors below.
const (
	ErrDuplicateRegistration = sentinel("duplicate registration")
	ErrTypeMismatch          = sentinel("type mismatch")
	ErrInvalidSpan           = sentinel("invalid span")
	ErrRecursionLimit        = sentinel("recursion limit exceeded")
	ErrNavigationCycle       = sentinel("navigation cycle detected")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRegistration indicates a property or event registration failure.
	KindRegistration
	// KindProperty indicates a property read or write failure.
	KindProperty
	// KindLayout indicates a measure or arrange failure.
	KindLayout
	// KindEvent indicates a routed event dispatch failure.
	KindEvent
	// KindNavigation indicates a focus navigation failure.
	KindNavigation
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates a configuration error.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindProperty:
		return "property"
	case KindLayout:
		return "layout"
	case KindEvent:
		return "event"
	case KindNavigation:
		return "navigation"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// EngineError represents a structured, reported error in the engine.
type EngineError struct {
	// Op is the operation that failed (e.g., "layout.Grid.Measure").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Subject names the node, property or event involved, if any.
	Subject string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EngineError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s [%s] subject=%s: %v", e.Op, e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.Node.Measure").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// DuplicateRegistrationError reports a second registration of the same
// (owner, name) pair. It is fatal at startup.
type DuplicateRegistrationError struct {
	// Registry is "property" or "event".
	Registry string
	// Owner is the owner type name.
	Owner string
	// Name is the registered name.
	Name string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s %s.%s is already registered", e.Registry, e.Owner, e.Name)
}

func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// TypeMismatchError reports a value whose type is incompatible with a
// property or event payload. The property is left unchanged.
type TypeMismatchError struct {
	// Subject is the property or event, formatted as "Owner.Name".
	Subject string
	// Want is the expected type.
	Want reflect.Type
	// Got is the supplied type; nil for an untyped nil value.
	Got reflect.Type
}

func (e *TypeMismatchError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	want := "nil"
	if e.Want != nil {
		want = e.Want.String()
	}
	return fmt.Sprintf("%s: cannot use value of type %s as %s", e.Subject, got, want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// InvalidSpanError reports a grid cell that references tracks beyond the
// declared definitions. The cell is clamped to the last track.
type InvalidSpanError struct {
	// Element describes the offending child.
	Element string
	// Axis is "row" or "column".
	Axis string
	// Index and Span are the requested placement.
	Index, Span int
	// Count is the number of declared tracks on the axis.
	Count int
}

func (e *InvalidSpanError) Error() string {
	return fmt.Sprintf("%s: %s %d span %d exceeds %d declared tracks",
		e.Element, e.Axis, e.Index, e.Span, e.Count)
}

func (e *InvalidSpanError) Is(target error) bool {
	return target == ErrInvalidSpan
}

// RecursionLimitError reports runaway re-entrant invalidation or dispatch.
// It is fatal and raised with panic.
type RecursionLimitError struct {
	// Op is the guarded operation ("property", "dispatch", "layout").
	Op string
	// Subject is the property or event that triggered the overflow.
	Subject string
	// Depth is the limit that was exceeded.
	Depth int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("%s recursion limit %d exceeded at %s", e.Op, e.Depth, e.Subject)
}

func (e *RecursionLimitError) Is(target error) bool {
	return target == ErrRecursionLimit
}

// NavigationCycleError reports a focus traversal that revisited its own
// starting point without finding a stop. It is recovered as "no movement".
type NavigationCycleError struct {
	// Request is the traversal request (e.g., "next").
	Request string
	// Container describes the navigation container being searched.
	Container string
	// Steps is the number of traversal steps taken.
	Steps int
}

func (e *NavigationCycleError) Error() string {
	return fmt.Sprintf("navigation %s cycled in %s after %d steps", e.Request, e.Container, e.Steps)
}

func (e *NavigationCycleError) Is(target error) bool {
	return target == ErrNavigationCycle
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when a recoverable error occurs.
	HandleError(err *EngineError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
