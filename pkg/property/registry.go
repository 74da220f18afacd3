package property

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-drift/retain/pkg/errors"
)

type registryKey struct {
	owner string
	name  string
}

// Registry is a table of property descriptors keyed by (owner type, name).
//
// Registration happens at startup; afterwards the registry is only read.
// Seal makes later registrations fail so that accidental runtime
// registration is caught.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[registryKey]*Descriptor
	ordered     []*Descriptor
	sealed      bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[registryKey]*Descriptor)}
}

// Default is the process-wide registry used by package-level Register.
var Default = NewRegistry()

// Register adds a property. It fails with DuplicateRegistrationError when
// (owner, name) already exists and with TypeMismatchError when the default
// value does not fit valueType.
func (r *Registry) Register(name, owner string, valueType reflect.Type, md Metadata) (*Descriptor, error) {
	if valueType == nil {
		return nil, fmt.Errorf("property %s.%s: nil value type", owner, name)
	}
	if md.Options.Has(CoerceToString) && valueType.Kind() != reflect.String {
		return nil, fmt.Errorf("property %s.%s: CoerceToString requires a string type, got %s", owner, name, valueType)
	}
	d := &Descriptor{
		name:        name,
		owner:       owner,
		valueType:   valueType,
		options:     md.Options,
		defaultFunc: md.DefaultFunc,
		changed:     md.Changed,
		coerce:      md.Coerce,
		equal:       md.Equal,
	}
	if md.DefaultFunc == nil {
		def := md.Default
		if def == nil && valueType.Kind() != reflect.Interface {
			def = reflect.Zero(valueType).Interface()
		}
		normalized, err := conform(valueType, def)
		if err != nil {
			return nil, &errors.TypeMismatchError{Subject: d.String(), Want: valueType, Got: reflect.TypeOf(def)}
		}
		d.defaultVal = normalized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return nil, &errors.EngineError{
			Op:      "property.Registry.Register",
			Kind:    errors.KindRegistration,
			Subject: d.String(),
			Err:     fmt.Errorf("registry is sealed"),
		}
	}
	key := registryKey{owner: owner, name: name}
	if _, exists := r.descriptors[key]; exists {
		return nil, &errors.DuplicateRegistrationError{Registry: "property", Owner: owner, Name: name}
	}
	d.index = len(r.ordered)
	r.descriptors[key] = d
	r.ordered = append(r.ordered, d)
	return d, nil
}

// MustRegister is like Register but panics on failure. Registration errors
// are fatal at startup.
func (r *Registry) MustRegister(name, owner string, valueType reflect.Type, md Metadata) *Descriptor {
	d, err := r.Register(name, owner, valueType, md)
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup finds a descriptor by owner type and name.
func (r *Registry) Lookup(owner, name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[registryKey{owner: owner, name: name}]
	return d, ok
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Seal rejects all further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Register adds a property of type T to the Default registry and panics on
// failure. It is meant for package-level var initialization.
func Register[T any](name, owner string, md Metadata) *Descriptor {
	return Default.MustRegister(name, owner, reflect.TypeFor[T](), md)
}
