package property

import (
	stderrors "errors"
	"math"
	"reflect"
	"testing"

	"github.com/go-drift/retain/pkg/errors"
)

// testOwner is a minimal Owner with an explicit parent link.
type testOwner struct {
	name     string
	store    *Store
	parent   *testOwner
	children []*testOwner

	measures, arranges, renders int
}

func newTestOwner(name string, parent *testOwner) *testOwner {
	o := &testOwner{name: name, parent: parent}
	o.store = NewStore(o, NewGuard(0))
	if parent != nil {
		parent.children = append(parent.children, o)
		o.store.SetGuard(parent.store.guard)
	}
	return o
}

func (o *testOwner) String() string        { return o.name }
func (o *testOwner) PropertyStore() *Store { return o.store }
func (o *testOwner) InheritanceParent() Owner {
	if o.parent == nil {
		return nil
	}
	return o.parent
}
func (o *testOwner) VisitInheritanceChildren(fn func(Owner)) {
	for _, c := range o.children {
		fn(c)
	}
}
func (o *testOwner) InvalidateMeasure() { o.measures++ }
func (o *testOwner) InvalidateArrange() { o.arranges++ }
func (o *testOwner) InvalidateRender()  { o.renders++ }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Width", "Node", reflect.TypeFor[float64](), Metadata{Default: 0.0}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := r.Register("Width", "Node", reflect.TypeFor[float64](), Metadata{Default: 0.0})
	if !stderrors.Is(err, errors.ErrDuplicateRegistration) {
		t.Fatalf("second Register error = %v, want duplicate registration", err)
	}
	// Same name under another owner is a different property.
	if _, err := r.Register("Width", "Column", reflect.TypeFor[float64](), Metadata{}); err != nil {
		t.Errorf("Register under another owner: %v", err)
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("Name", "Node", reflect.TypeFor[string](), Metadata{})
	defer func() {
		r := recover()
		if _, ok := r.(*errors.DuplicateRegistrationError); !ok {
			t.Fatalf("recovered %v, want *DuplicateRegistrationError", r)
		}
	}()
	r.MustRegister("Name", "Node", reflect.TypeFor[string](), Metadata{})
}

func TestRegisterRejectsBadDefault(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("Count", "Node", reflect.TypeFor[float64](), Metadata{Default: 3})
	if !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("err = %v, want type mismatch for int default on float64 property", err)
	}
}

func TestSealedRegistry(t *testing.T) {
	r := NewRegistry()
	r.Seal()
	if !r.Sealed() {
		t.Fatal("Sealed() = false after Seal")
	}
	if _, err := r.Register("Late", "Node", reflect.TypeFor[int](), Metadata{}); err == nil {
		t.Error("expected registration after Seal to fail")
	}
}

func TestLookupAndOrder(t *testing.T) {
	r := NewRegistry()
	a := r.MustRegister("A", "Node", reflect.TypeFor[int](), Metadata{})
	b := r.MustRegister("B", "Node", reflect.TypeFor[int](), Metadata{})
	if got, ok := r.Lookup("Node", "B"); !ok || got != b {
		t.Errorf("Lookup(Node, B) = %v, %v", got, ok)
	}
	if _, ok := r.Lookup("Node", "C"); ok {
		t.Error("Lookup of unknown property succeeded")
	}
	all := r.Descriptors()
	if len(all) != 2 || all[0] != a || all[1] != b || b.Index() != 1 {
		t.Errorf("Descriptors() = %v, want [A B]", all)
	}
}

func TestPrecedence(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Opacity", "Node", reflect.TypeFor[float64](), Metadata{Default: 1.0})
	o := newTestOwner("o", nil)
	s := o.store

	steps := []struct {
		name string
		do   func()
		want float64
		src  ValueSource
	}{
		{"default", func() {}, 1, SourceDefault},
		{"styled", func() { _ = s.SetStyledValue(d, 0.2) }, 0.2, SourceStyle},
		{"local beats style", func() { _ = s.SetValue(d, 0.5) }, 0.5, SourceLocal},
		{"style under local is hidden", func() { _ = s.SetStyledValue(d, 0.3) }, 0.5, SourceLocal},
		{"animation beats local", func() { _ = s.SetAnimatedValue(d, 0.9) }, 0.9, SourceAnimation},
		{"clear animation", func() { s.ClearAnimatedValue(d) }, 0.5, SourceLocal},
		{"clear local", func() { s.ClearValue(d) }, 0.3, SourceStyle},
		{"clear style", func() { s.ClearStyledValue(d) }, 1, SourceDefault},
	}
	for _, step := range steps {
		step.do()
		if got := s.GetValue(d); got != step.want {
			t.Errorf("%s: GetValue = %v, want %v", step.name, got, step.want)
		}
		if got := s.ValueSource(d); got != step.src {
			t.Errorf("%s: ValueSource = %v, want %v", step.name, got, step.src)
		}
	}
}

func TestInheritedValue(t *testing.T) {
	r := NewRegistry()
	font := r.MustRegister("FontSize", "Node", reflect.TypeFor[float64](), Metadata{Default: 12.0, Options: Inherits | AffectsMeasure})
	plain := r.MustRegister("Tag", "Node", reflect.TypeFor[string](), Metadata{Default: "none"})

	root := newTestOwner("root", nil)
	mid := newTestOwner("mid", root)
	leaf := newTestOwner("leaf", mid)

	_ = root.store.SetValue(font, 20.0)
	_ = root.store.SetValue(plain, "root")

	if got := leaf.store.GetValue(font); got != 20.0 {
		t.Errorf("leaf FontSize = %v, want inherited 20", got)
	}
	if got := leaf.store.ValueSource(font); got != SourceInherited {
		t.Errorf("leaf source = %v, want inherited", got)
	}
	if got := leaf.store.GetValue(plain); got != "none" {
		t.Errorf("non-inheriting property leaked to descendant: %v", got)
	}

	_ = mid.store.SetStyledValue(font, 16.0)
	if got := leaf.store.GetValue(font); got != 16.0 {
		t.Errorf("leaf FontSize = %v, want nearest ancestor value 16", got)
	}
}

func TestInheritedChangeNotifiesDescendants(t *testing.T) {
	r := NewRegistry()
	var seen []string
	font := r.MustRegister("FontSize", "Node", reflect.TypeFor[float64](), Metadata{
		Default: 12.0,
		Options: Inherits | AffectsMeasure,
		Changed: func(owner Owner, c Change) {
			seen = append(seen, owner.String())
		},
	})
	root := newTestOwner("root", nil)
	a := newTestOwner("a", root)
	b := newTestOwner("b", root)
	aa := newTestOwner("aa", a)
	_ = b.store.SetValue(font, 30.0)

	seen = nil
	_ = root.store.SetValue(font, 14.0)

	want := []string{"root", "a", "aa"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("notified %v, want %v (b has its own value)", seen, want)
	}
	if aa.measures != 1 {
		t.Errorf("aa measure invalidations = %d, want 1", aa.measures)
	}
	if b.measures != 1 {
		t.Errorf("b measure invalidations = %d, want only its own write", b.measures)
	}
}

func TestSetValueTypeMismatch(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Width", "Node", reflect.TypeFor[float64](), Metadata{Default: 5.0})
	o := newTestOwner("o", nil)

	err := o.store.SetValue(d, "wide")
	var mismatch *errors.TypeMismatchError
	if !stderrors.As(err, &mismatch) {
		t.Fatalf("err = %v, want *TypeMismatchError", err)
	}
	if mismatch.Subject != "Node.Width" {
		t.Errorf("Subject = %q", mismatch.Subject)
	}
	if got := o.store.GetValue(d); got != 5.0 {
		t.Errorf("value after failed write = %v, want unchanged 5", got)
	}
	if err := o.store.SetValue(d, nil); !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("nil on float64 property: err = %v", err)
	}
}

func TestNilForPointerProperty(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Target", "Node", reflect.TypeFor[*testOwner](), Metadata{})
	o := newTestOwner("o", nil)
	if err := o.store.SetValue(d, o); err != nil {
		t.Fatal(err)
	}
	if err := o.store.SetValue(d, nil); err != nil {
		t.Fatalf("SetValue(nil): %v", err)
	}
	got, err := Get[*testOwner](o, d)
	if err != nil || got != nil {
		t.Errorf("Get = %v, %v, want nil, nil", got, err)
	}
}

func TestCoerceToString(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Text", "Node", reflect.TypeFor[string](), Metadata{Options: CoerceToString})
	o := newTestOwner("o", nil)

	tests := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{3.5, "3.5"},
		{"already", "already"},
		{true, "true"},
		{nil, ""},
	}
	for _, tt := range tests {
		if err := o.store.SetValue(d, tt.in); err != nil {
			t.Fatalf("SetValue(%v): %v", tt.in, err)
		}
		if got := o.store.GetValue(d); got != tt.want {
			t.Errorf("SetValue(%v) stored %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := r.Register("Bad", "Node", reflect.TypeFor[int](), Metadata{Options: CoerceToString}); err == nil {
		t.Error("CoerceToString on non-string type should fail registration")
	}
}

func TestCoerceFunc(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Value", "Range", reflect.TypeFor[float64](), Metadata{
		Coerce: func(owner Owner, v any) any { return math.Min(100, math.Max(0, v.(float64))) },
	})
	o := newTestOwner("o", nil)
	_ = o.store.SetValue(d, 250.0)
	if got := o.store.GetValue(d); got != 100.0 {
		t.Errorf("coerced value = %v, want 100", got)
	}
}

func TestChangeCallbackAndInvalidation(t *testing.T) {
	r := NewRegistry()
	var changes []Change
	d := r.MustRegister("Width", "Node", reflect.TypeFor[float64](), Metadata{
		Default: math.NaN(),
		Options: AffectsMeasure | AffectsRender,
		Changed: func(owner Owner, c Change) { changes = append(changes, c) },
	})
	arr := r.MustRegister("Offset", "Node", reflect.TypeFor[float64](), Metadata{Options: AffectsArrange})
	o := newTestOwner("o", nil)

	_ = o.store.SetValue(d, 10.0)
	_ = o.store.SetValue(d, 10.0)       // same value: no-op
	_ = o.store.SetValue(d, math.NaN()) // NaN replaces 10
	_ = o.store.SetStyledValue(d, 10.0) // hidden under local
	o.store.ClearValue(d)               // reveals styled 10
	_ = o.store.SetValue(arr, 0.0)      // equals default

	if len(changes) != 3 {
		t.Fatalf("callbacks = %d, want 3: %+v", len(changes), changes)
	}
	if !math.IsNaN(changes[0].Old.(float64)) || changes[0].New != 10.0 {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[2].OldSource != SourceLocal || changes[2].NewSource != SourceStyle {
		t.Errorf("last change sources = %v -> %v", changes[2].OldSource, changes[2].NewSource)
	}
	if o.measures != 3 || o.renders != 3 {
		t.Errorf("measure/render invalidations = %d/%d, want 3/3", o.measures, o.renders)
	}
	if o.arranges != 0 {
		t.Errorf("arrange invalidations = %d, want 0 for a default-equal write", o.arranges)
	}
}

func TestCallbackSettingSameValueDoesNotRecurse(t *testing.T) {
	r := NewRegistry()
	calls := 0
	var d *Descriptor
	d = r.MustRegister("Count", "Node", reflect.TypeFor[int](), Metadata{
		Changed: func(owner Owner, c Change) {
			calls++
			// Writing the value that is already effective must be a no-op.
			if err := owner.PropertyStore().SetValue(d, c.New); err != nil {
				panic(err)
			}
		},
	})
	o := newTestOwner("o", nil)
	if err := o.store.SetValue(d, 7); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
	if o.store.activeGuard().Depth() != 0 {
		t.Errorf("guard depth = %d after write, want 0", o.store.activeGuard().Depth())
	}
}

func TestCallbackChainAcrossOwners(t *testing.T) {
	r := NewRegistry()
	a := newTestOwner("a", nil)
	b := newTestOwner("b", a)
	var mirror *Descriptor
	mirror = r.MustRegister("Mirror", "Node", reflect.TypeFor[int](), Metadata{
		Changed: func(owner Owner, c Change) {
			if owner == a {
				_ = b.store.SetValue(mirror, c.New)
			}
		},
	})
	_ = a.store.SetValue(mirror, 3)
	if got := b.store.GetValue(mirror); got != 3 {
		t.Errorf("b mirror = %v, want 3", got)
	}
}

func TestRunawayCallbackHitsRecursionLimit(t *testing.T) {
	r := NewRegistry()
	var d *Descriptor
	d = r.MustRegister("Counter", "Node", reflect.TypeFor[int](), Metadata{
		Changed: func(owner Owner, c Change) {
			_ = owner.PropertyStore().SetValue(d, c.New.(int)+1)
		},
	})
	o := newTestOwner("o", nil)
	o.store.SetGuard(NewGuard(16))

	defer func() {
		rec := recover()
		limit, ok := rec.(*errors.RecursionLimitError)
		if !ok {
			t.Fatalf("recovered %v, want *RecursionLimitError", rec)
		}
		if limit.Subject != "Node.Counter" || limit.Depth != 16 {
			t.Errorf("limit error = %+v", limit)
		}
		if o.store.activeGuard().Depth() != 0 {
			t.Errorf("guard depth = %d after unwind, want 0", o.store.activeGuard().Depth())
		}
	}()
	_ = o.store.SetValue(d, 0)
	t.Fatal("expected RecursionLimitError panic")
}

func TestTypedGet(t *testing.T) {
	r := NewRegistry()
	d := r.MustRegister("Label", "Node", reflect.TypeFor[string](), Metadata{Default: "x"})
	o := newTestOwner("o", nil)

	if v, err := Get[string](o, d); err != nil || v != "x" {
		t.Errorf("Get[string] = %q, %v", v, err)
	}
	if _, err := Get[int](o, d); !stderrors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("Get[int] err = %v, want type mismatch", err)
	}
	if v := Value[int](o, d); v != 0 {
		t.Errorf("Value[int] on string property = %v, want zero", v)
	}
	if err := Set(o, d, "y"); err != nil || Value[string](o, d) != "y" {
		t.Errorf("Set/Value round trip failed: %v", err)
	}
}

func TestOptionsString(t *testing.T) {
	tests := []struct {
		o    Options
		want string
	}{
		{None, "none"},
		{AffectsMeasure, "measure"},
		{AffectsMeasure | Inherits | AffectsRender, "measure|inherits|render"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Options(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}
