package property

import (
	"reflect"

	"github.com/go-drift/retain/pkg/errors"
)

// Getter is implemented by anything that exposes a property store.
type Getter interface {
	PropertyStore() *Store
}

// Get returns the effective value of d as T. It fails with TypeMismatchError
// when T is not the descriptor's value type.
func Get[T any](g Getter, d *Descriptor) (T, error) {
	var zero T
	want := reflect.TypeFor[T]()
	if d == nil || want != d.valueType {
		var have reflect.Type
		subject := "<nil property>"
		if d != nil {
			have = d.valueType
			subject = d.String()
		}
		return zero, &errors.TypeMismatchError{Subject: subject, Want: have, Got: want}
	}
	v := g.PropertyStore().GetValue(d)
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

// Value returns the effective value of d as T, or the zero value of T when
// the types do not match. Use it for descriptors whose type is known at the
// call site.
func Value[T any](g Getter, d *Descriptor) T {
	v, _ := Get[T](g, d)
	return v
}

// Set writes a local value.
func Set[T any](g Getter, d *Descriptor, value T) error {
	return g.PropertyStore().SetValue(d, value)
}
