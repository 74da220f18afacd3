// Package property implements dependency properties: a process-wide registry
// of property descriptors and a per-node store that resolves effective values
// by precedence and raises change notifications and layout invalidation.
//
// Descriptors are registered during package initialization and never mutated
// afterwards:
//
//	var WidthProperty = property.Register[float64]("Width", "Node", property.Metadata{
//	    Default: math.NaN(),
//	    Options: property.AffectsMeasure,
//	})
//
// Effective values resolve animation > local > style > inherited > default.
package property

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-drift/retain/pkg/errors"
)

// Owner is implemented by objects that own a Store. The store reaches back
// through it to walk the inheritance tree and to raise invalidation.
type Owner interface {
	fmt.Stringer
	// PropertyStore returns the owner's store.
	PropertyStore() *Store
	// InheritanceParent returns the owner to inherit values from, or nil.
	InheritanceParent() Owner
	// VisitInheritanceChildren calls fn for each owner that inherits from this one.
	VisitInheritanceChildren(fn func(Owner))
	// InvalidateMeasure marks the owner measure-dirty.
	InvalidateMeasure()
	// InvalidateArrange marks the owner arrange-dirty.
	InvalidateArrange()
	// InvalidateRender asks for a repaint of the owner.
	InvalidateRender()
}

// Change describes a change of effective value.
type Change struct {
	Property  *Descriptor
	Old       any
	New       any
	OldSource ValueSource
	NewSource ValueSource
}

// ChangedFunc is invoked synchronously after the effective value changed and
// before invalidation is raised. It may write other properties.
type ChangedFunc func(owner Owner, change Change)

// CoerceFunc adjusts a value after type checking and before storage.
type CoerceFunc func(owner Owner, value any) any

// EqualFunc compares two values of the descriptor's type.
type EqualFunc func(a, b any) bool

// Metadata configures a property at registration.
type Metadata struct {
	// Default is the default value. Ignored when DefaultFunc is set.
	Default any
	// DefaultFunc produces the default value on each read, for mutable defaults.
	DefaultFunc func() any
	// Options are the invalidation and inheritance flags.
	Options Options
	// Changed is called when the effective value changes.
	Changed ChangedFunc
	// Coerce adjusts incoming values.
	Coerce CoerceFunc
	// Equal overrides the default value comparison.
	Equal EqualFunc
}

// Descriptor identifies a registered property. Descriptors are immutable and
// safe to share between goroutines.
type Descriptor struct {
	name        string
	owner       string
	valueType   reflect.Type
	options     Options
	defaultVal  any
	defaultFunc func() any
	changed     ChangedFunc
	coerce      CoerceFunc
	equal       EqualFunc
	index       int
}

// Name returns the property name.
func (d *Descriptor) Name() string { return d.name }

// OwnerType returns the name of the type that registered the property.
func (d *Descriptor) OwnerType() string { return d.owner }

// ValueType returns the declared value type.
func (d *Descriptor) ValueType() reflect.Type { return d.valueType }

// Options returns the metadata flags.
func (d *Descriptor) Options() Options { return d.options }

// Index returns the registration order within its registry.
func (d *Descriptor) Index() int { return d.index }

// String returns "Owner.Name".
func (d *Descriptor) String() string {
	return d.owner + "." + d.name
}

// Default returns the default value.
func (d *Descriptor) Default() any {
	if d.defaultFunc != nil {
		return d.defaultFunc()
	}
	return d.defaultVal
}

// Equal compares two values using the descriptor's comparison.
func (d *Descriptor) Equal(a, b any) bool {
	if d.equal != nil {
		return d.equal(a, b)
	}
	return defaultEqual(a, b)
}

// check validates and normalizes a value for storage.
func (d *Descriptor) check(owner Owner, value any) (any, error) {
	if d.options.Has(CoerceToString) {
		if value == nil {
			value = ""
		} else if _, ok := value.(string); !ok {
			value = fmt.Sprint(value)
		}
	}
	normalized, err := conform(d.valueType, value)
	if err != nil {
		return nil, &errors.TypeMismatchError{Subject: d.String(), Want: d.valueType, Got: reflect.TypeOf(value)}
	}
	if d.coerce != nil {
		normalized = d.coerce(owner, normalized)
	}
	return normalized, nil
}

// conform checks that value is usable as typ and normalizes untyped nil to
// the typed zero value for pointer-like kinds.
func conform(typ reflect.Type, value any) (any, error) {
	if value == nil {
		switch typ.Kind() {
		case reflect.Interface:
			return nil, nil
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(typ).Interface(), nil
		}
		return nil, errors.ErrTypeMismatch
	}
	if !reflect.TypeOf(value).AssignableTo(typ) {
		return nil, errors.ErrTypeMismatch
	}
	return value, nil
}

func defaultEqual(a, b any) bool {
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
		}
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
