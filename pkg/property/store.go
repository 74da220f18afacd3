package property

import (
	"reflect"

	"github.com/go-drift/retain/pkg/errors"
)

type layer uint8

const (
	layerStyle layer = 1 << iota
	layerLocal
	layerAnimation
)

// entry holds the values set on one property of one owner.
type entry struct {
	set      layer
	style    any
	local    any
	animated any
}

func (e *entry) effective() (any, ValueSource, bool) {
	switch {
	case e.set&layerAnimation != 0:
		return e.animated, SourceAnimation, true
	case e.set&layerLocal != 0:
		return e.local, SourceLocal, true
	case e.set&layerStyle != 0:
		return e.style, SourceStyle, true
	}
	return nil, SourceDefault, false
}

// Store holds the property values of a single owner.
//
// The zero value is not usable; create stores with NewStore.
type Store struct {
	owner   Owner
	guard   *Guard
	entries map[*Descriptor]*entry
}

// NewStore creates a store for owner. A nil guard uses DefaultGuard.
func NewStore(owner Owner, guard *Guard) *Store {
	return &Store{owner: owner, guard: guard}
}

// Owner returns the object that owns this store.
func (s *Store) Owner() Owner { return s.owner }

// SetGuard replaces the recursion guard, typically when the owner joins a
// tree with its own limits.
func (s *Store) SetGuard(g *Guard) { s.guard = g }

func (s *Store) activeGuard() *Guard {
	if s.guard != nil {
		return s.guard
	}
	return DefaultGuard
}

// GetValue returns the effective value of d. It never fails: when no layer
// is set and nothing is inherited the descriptor default is returned.
func (s *Store) GetValue(d *Descriptor) any {
	v, _ := s.resolve(d)
	return v
}

// ValueSource reports which layer currently supplies the effective value.
func (s *Store) ValueSource(d *Descriptor) ValueSource {
	_, src := s.resolve(d)
	return src
}

// ReadLocalValue returns the local value, if one is set.
func (s *Store) ReadLocalValue(d *Descriptor) (any, bool) {
	if e := s.entries[d]; e != nil && e.set&layerLocal != 0 {
		return e.local, true
	}
	return nil, false
}

// HasOwnValue reports whether any layer on this store sets d.
func (s *Store) HasOwnValue(d *Descriptor) bool {
	e := s.entries[d]
	return e != nil && e.set != 0
}

func (s *Store) resolve(d *Descriptor) (any, ValueSource) {
	if e := s.entries[d]; e != nil {
		if v, src, ok := e.effective(); ok {
			return v, src
		}
	}
	if d.options.Has(Inherits) && s.owner != nil {
		for p := s.owner.InheritanceParent(); p != nil; p = p.InheritanceParent() {
			ps := p.PropertyStore()
			if ps == nil {
				continue
			}
			if e := ps.entries[d]; e != nil {
				if v, _, ok := e.effective(); ok {
					return v, SourceInherited
				}
			}
		}
	}
	return d.Default(), SourceDefault
}

// SetValue sets the local value. It returns TypeMismatchError, leaving the
// property unchanged, when value does not fit the descriptor's type.
func (s *Store) SetValue(d *Descriptor, value any) error {
	return s.write(d, layerLocal, value, false)
}

// SetStyledValue sets the value contributed by styling or markup. Local and
// animated values take precedence over it.
func (s *Store) SetStyledValue(d *Descriptor, value any) error {
	return s.write(d, layerStyle, value, false)
}

// SetAnimatedValue sets an animation override, the highest precedence layer.
func (s *Store) SetAnimatedValue(d *Descriptor, value any) error {
	return s.write(d, layerAnimation, value, false)
}

// ClearValue removes the local value.
func (s *Store) ClearValue(d *Descriptor) {
	_ = s.write(d, layerLocal, nil, true)
}

// ClearStyledValue removes the styled value.
func (s *Store) ClearStyledValue(d *Descriptor) {
	_ = s.write(d, layerStyle, nil, true)
}

// ClearAnimatedValue removes the animation override.
func (s *Store) ClearAnimatedValue(d *Descriptor) {
	_ = s.write(d, layerAnimation, nil, true)
}

func (s *Store) write(d *Descriptor, l layer, value any, clear bool) error {
	if d == nil {
		return &errors.TypeMismatchError{Subject: "<nil property>", Got: reflect.TypeOf(value)}
	}
	if !clear {
		v, err := d.check(s.owner, value)
		if err != nil {
			return err
		}
		value = v
	}

	oldValue, oldSource := s.resolve(d)

	e := s.entries[d]
	if e == nil {
		if clear {
			return nil
		}
		if s.entries == nil {
			s.entries = make(map[*Descriptor]*entry)
		}
		e = &entry{}
		s.entries[d] = e
	}
	switch l {
	case layerStyle:
		e.style = value
	case layerLocal:
		e.local = value
	case layerAnimation:
		e.animated = value
	}
	if clear {
		e.set &^= l
		if e.set == 0 {
			delete(s.entries, d)
		}
	} else {
		e.set |= l
	}

	newValue, newSource := s.resolve(d)
	if d.Equal(oldValue, newValue) {
		return nil
	}
	s.notify(Change{Property: d, Old: oldValue, New: newValue, OldSource: oldSource, NewSource: newSource})
	return nil
}

// notify runs the change callback, raises invalidation and pushes inherited
// changes to descendants that do not set their own value.
func (s *Store) notify(c Change) {
	g := s.activeGuard()
	g.enter(c.Property)
	defer g.leave()
	s.dispatch(c)
}

// dispatch is notify without a guard level; inherited propagation runs at
// the depth of the write that started it.
func (s *Store) dispatch(c Change) {
	d := c.Property
	if d.changed != nil {
		d.changed(s.owner, c)
	}
	if s.owner == nil {
		return
	}
	if d.options.Has(AffectsMeasure) {
		s.owner.InvalidateMeasure()
	}
	if d.options.Has(AffectsArrange) {
		s.owner.InvalidateArrange()
	}
	if d.options.Has(AffectsRender) {
		s.owner.InvalidateRender()
	}
	if d.options.Has(Inherits) {
		s.owner.VisitInheritanceChildren(func(child Owner) {
			cs := child.PropertyStore()
			if cs == nil || cs.HasOwnValue(d) {
				return
			}
			cs.dispatch(Change{
				Property:  d,
				Old:       c.Old,
				New:       c.New,
				OldSource: inheritedSource(c.OldSource),
				NewSource: inheritedSource(c.NewSource),
			})
		})
	}
}

func inheritedSource(src ValueSource) ValueSource {
	if src == SourceDefault {
		return SourceDefault
	}
	return SourceInherited
}

// Guard returns the guard used for change notifications.
func (s *Store) Guard() *Guard { return s.activeGuard() }
