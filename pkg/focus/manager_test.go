package focus

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/retain/pkg/config"
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/input"
)

func TestFocusRaisesLostThenGot(t *testing.T) {
	a, b := stop("a"), stop("b")
	root := panel("root", a, b)
	pump(root)
	m := NewManager(root, events.NewRouter())

	var log []string
	record := func(sender events.Target, e *events.EventData) {
		change, _ := events.PayloadAs[FocusChange](e)
		log = append(log, sender.(*core.Node).Name()+"."+e.Event.Name()+" "+name(change.Old)+"->"+name(change.New))
	}
	for _, n := range []*core.Node{root, a, b} {
		events.AddHandler(n, LostFocusEvent, record)
		events.AddHandler(n, GotFocusEvent, record)
	}

	if moved, err := m.Focus(a); err != nil || !moved {
		t.Fatalf("Focus(a) = %v, %v", moved, err)
	}
	log = nil
	if moved, err := m.Focus(b); err != nil || !moved {
		t.Fatalf("Focus(b) = %v, %v", moved, err)
	}

	want := []string{
		"a.LostFocus a->b",
		"root.LostFocus a->b",
		"b.GotFocus a->b",
		"root.GotFocus a->b",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
	if IsFocused(a) || !IsFocused(b) {
		t.Errorf("IsFocused a=%v b=%v, want false true", IsFocused(a), IsFocused(b))
	}
	if got := FocusedElement(root); got != b {
		t.Errorf("FocusedElement(root) = %s, want b", name(got))
	}
}

func TestFocusRejectsNonStops(t *testing.T) {
	a := stop("a")
	label := core.NewNode("Label", "label")
	root := panel("root", a, label)
	pump(root)
	m := NewManager(root, events.NewRouter())

	if moved, _ := m.Focus(label); moved {
		t.Error("Focus(label) moved focus to a non-focusable node")
	}
	_, _ = m.Focus(a)
	if moved, _ := m.Focus(a); moved {
		t.Error("Focus on the focused element reported a move")
	}
	if moved, _ := m.Focus(nil); !moved || m.Focused() != nil || IsFocused(a) {
		t.Error("Focus(nil) did not clear focus")
	}
}

func TestFocusScopesRememberTheirElement(t *testing.T) {
	a, x := stop("a"), stop("x")
	scope := panel("scope", x)
	SetIsFocusScope(scope, true)
	root := panel("root", a, scope)
	pump(root)
	m := NewManager(root, events.NewRouter())

	_, _ = m.Focus(x)
	_, _ = m.Focus(a)
	if got := FocusedElement(scope); got != x {
		t.Errorf("FocusedElement(scope) = %s, want x", name(got))
	}
	if got := FocusedElement(root); got != a {
		t.Errorf("FocusedElement(root) = %s, want a", name(got))
	}
	if got := FocusScope(x); got != scope {
		t.Errorf("FocusScope(x) = %s, want scope", name(got))
	}
}

func TestFocusedClearsWhenDetached(t *testing.T) {
	a, b := stop("a"), stop("b")
	root := panel("root", a, b)
	pump(root)
	m := NewManager(root, events.NewRouter())

	_, _ = m.Focus(b)
	root.RemoveChild(b)
	if got := m.Focused(); got != nil {
		t.Errorf("Focused = %s after removal, want nil", name(got))
	}
	if moved, _ := m.Move(Next); !moved || m.Focused() != a {
		t.Errorf("Move(Next) focused %s, want a", name(m.Focused()))
	}
}

func TestBindMovesFocusOnKeys(t *testing.T) {
	a, b, c := stop("a"), stop("b"), stop("c")
	root := panel("root", a, b, c)
	pump(root)
	router := events.NewRouter()
	im := input.NewManager(root, router)
	m := NewManager(root, router)
	m.Bind(im)

	var targets []string
	events.AddHandler(b, input.KeyDownEvent, func(_ events.Target, e *events.EventData) {
		targets = append(targets, "b")
	})

	_, _ = m.Focus(a)
	steps := []struct {
		key  input.KeyEvent
		want string
	}{
		{input.KeyEvent{Key: input.KeyTab}, "b"},
		{input.KeyEvent{Key: input.KeyDown}, "c"},
		{input.KeyEvent{Key: input.KeyTab, Mod: input.ModShift}, "b"},
		{input.KeyEvent{Key: input.KeyUp}, "a"},
	}
	for _, s := range steps {
		handled, err := im.KeyDown(s.key)
		if err != nil {
			t.Fatalf("KeyDown(%s): %v", s.key, err)
		}
		if !handled {
			t.Errorf("KeyDown(%s) not handled", s.key)
		}
		if got := name(m.Focused()); got != s.want {
			t.Errorf("after %s focused %s, want %s", s.key, got, s.want)
		}
	}
	// keys go to the focused element: b saw Down and Up
	if diff := cmp.Diff([]string{"b", "b"}, targets); diff != "" {
		t.Errorf("KeyDown on b mismatch (-want +got):\n%s", diff)
	}

	if handled, _ := im.KeyDown(input.KeyEvent{Key: input.KeyUp}); handled {
		t.Error("Up from the first row reported handled without moving")
	}

	m.Unbind()
	_, _ = im.KeyDown(input.KeyEvent{Key: input.KeyTab})
	if got := name(m.Focused()); got != "a" {
		t.Errorf("after Unbind Tab focused %s, want a", got)
	}
}

func TestBindSkipsHandledKeys(t *testing.T) {
	a, b := stop("a"), stop("b")
	root := panel("root", a, b)
	pump(root)
	router := events.NewRouter()
	im := input.NewManager(root, router)
	m := NewManager(root, router)
	m.Bind(im)
	_, _ = m.Focus(a)

	events.AddHandler(a, input.PreviewKeyDownEvent, func(_ events.Target, e *events.EventData) {
		e.Handled = true
	})
	_, _ = im.KeyDown(input.KeyEvent{Key: input.KeyTab})
	if got := name(m.Focused()); got != "a" {
		t.Errorf("focused %s, want a: a preview handler consumed Tab", got)
	}
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("keys:\n  next: [\"Ctrl+n\"]\n  previous: [\"Ctrl+p\"]\n  first: [\"Home\"]\nlimits:\n  max_navigation_steps: 64\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	a, b, c := stop("a"), stop("b"), stop("c")
	root := panel("root", a, b, c)
	pump(root)
	router := events.NewRouter()
	im := input.NewManager(root, router)
	m := NewManager(root, router, opts...)
	m.Bind(im)
	_, _ = m.Focus(b)

	_, _ = im.KeyDown(input.KeyEvent{Key: input.KeyTab})
	if got := name(m.Focused()); got != "b" {
		t.Errorf("Tab moved focus to %s; it is no longer bound", got)
	}
	_, _ = im.KeyDown(input.KeyEvent{Key: input.KeyRune, Rune: 'n', Mod: input.ModCtrl})
	if got := name(m.Focused()); got != "c" {
		t.Errorf("Ctrl+n focused %s, want c", got)
	}
	_, _ = im.KeyDown(input.KeyEvent{Key: input.KeyHome})
	if got := name(m.Focused()); got != "a" {
		t.Errorf("Home focused %s, want a", got)
	}
	if m.Navigator().maxSteps != 64 {
		t.Errorf("maxSteps = %d, want 64", m.Navigator().maxSteps)
	}
}
