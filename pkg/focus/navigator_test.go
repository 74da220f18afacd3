package focus

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/layout"
)

func stop(name string) *core.Node {
	n := core.NewNode("Button", name)
	n.SetFocusable(true)
	n.SetHeight(10)
	n.SetWidth(10)
	return n
}

func panel(name string, children ...*core.Node) *core.Node {
	n := core.NewNode("Panel", name)
	n.SetLayout(layout.NewStack(layout.Vertical))
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

func pump(root *core.Node) {
	core.NewHost(root, graphics.Size{Width: 200, Height: 200}).Pump()
}

func name(n *core.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name()
}

type recordingHandler struct {
	errs []*errors.EngineError
}

func (h *recordingHandler) HandleError(err *errors.EngineError) { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(*errors.PanicError)      {}

func TestNextCyclesByTabIndex(t *testing.T) {
	s0, s1, s2 := stop("s0"), stop("s1"), stop("s2")
	SetTabIndex(s0, 0)
	SetTabIndex(s1, 1)
	SetTabIndex(s2, 2)
	// document order differs from tab order
	group := panel("group", s2, s0, s1)
	SetTabNavigation(group, Cycle)
	root := panel("root", stop("before"), group, stop("after"))
	pump(root)

	nav := NewNavigator(root, 0)
	got := nav.Move(s1, Next)
	if got != s2 {
		t.Fatalf("Next from s1 = %s, want s2", name(got))
	}
	got = nav.Move(got, Next)
	if got != s0 {
		t.Fatalf("Next from s2 = %s, want s0", name(got))
	}
	if got := nav.Move(s0, Previous); got != s2 {
		t.Errorf("Previous from s0 = %s, want s2", name(got))
	}
}

func TestEqualTabIndexKeepsDocumentOrder(t *testing.T) {
	a, b, c := stop("a"), stop("b"), stop("c")
	SetTabIndex(c, 1)
	SetTabIndex(a, 5)
	SetTabIndex(b, 5)
	root := panel("root", a, b, c)
	pump(root)

	nav := NewNavigator(root, 0)
	var order []string
	cur := nav.Move(nil, First)
	for range 3 {
		order = append(order, name(cur))
		cur = nav.Move(cur, Next)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestContainedStopsAtBoundary(t *testing.T) {
	x, y := stop("x"), stop("y")
	group := panel("group", x, y)
	SetTabNavigation(group, Contained)
	root := panel("root", group, stop("after"))
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(y, Next); got != nil {
		t.Errorf("Next from y = %s, want no movement", name(got))
	}
	if got := nav.Move(x, Previous); got != nil {
		t.Errorf("Previous from x = %s, want no movement", name(got))
	}
	if got := nav.Move(x, Next); got != y {
		t.Errorf("Next from x = %s, want y", name(got))
	}
}

func TestLocalExitsToParentContainer(t *testing.T) {
	a, x, y, b := stop("a"), stop("x"), stop("y"), stop("b")
	group := panel("group", x, y)
	SetTabNavigation(group, Local)
	root := panel("root", a, group, b)
	pump(root)

	nav := NewNavigator(root, 0)
	tests := []struct {
		from *core.Node
		req  Request
		want *core.Node
	}{
		{a, Next, x},
		{y, Next, b},
		{x, Previous, a},
		{b, Previous, y},
		{b, Next, a},     // the root wraps
		{a, Previous, b}, // in both directions
	}
	for _, tt := range tests {
		if got := nav.Move(tt.from, tt.req); got != tt.want {
			t.Errorf("%s from %s = %s, want %s", tt.req, name(tt.from), name(got), name(tt.want))
		}
	}
}

func TestContinueFlattensIntoParent(t *testing.T) {
	a, x, y, b := stop("a"), stop("x"), stop("y"), stop("b")
	SetTabIndex(b, 0)
	inner := panel("inner", x, y) // Continue: its stops sort with the root's
	root := panel("root", a, inner, b)
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(b, Next); got != a {
		t.Errorf("Next from b = %s, want a", name(got))
	}
	if got := nav.Move(x, Next); got != y {
		t.Errorf("Next from x = %s, want y", name(got))
	}
}

func TestOnceRestoresLastFocused(t *testing.T) {
	a, x, y, b := stop("a"), stop("x"), stop("y"), stop("b")
	group := panel("group", x, y)
	SetTabNavigation(group, Once)
	root := panel("root", a, group, b)
	pump(root)

	m := NewManager(root, events.NewRouter())
	nav := m.Navigator()
	if got := nav.Move(a, Next); got != x {
		t.Fatalf("Next from a = %s, want x", name(got))
	}
	if got := nav.Move(b, Previous); got != y {
		t.Fatalf("Previous from b = %s, want y (last stop going backward)", name(got))
	}

	for _, n := range []*core.Node{y, b} {
		if _, err := m.Focus(n); err != nil {
			t.Fatalf("Focus(%s): %v", n.Name(), err)
		}
	}

	if got := nav.Move(a, Next); got != y {
		t.Errorf("Next from a = %s, want restored y", name(got))
	}
	if got := nav.Move(y, Next); got != b {
		t.Errorf("Next from y = %s, want b: Once leaves after one stop", name(got))
	}
	if got := nav.Move(y, Previous); got != a {
		t.Errorf("Previous from y = %s, want a", name(got))
	}
}

func TestNoneAndNonStopsAreSkipped(t *testing.T) {
	a, hidden, disabled, plain, x, b := stop("a"), stop("hidden"), stop("disabled"), stop("plain"), stop("x"), stop("b")
	hidden.SetVisibility(core.Hidden)
	disabled.SetEnabled(false)
	SetIsTabStop(plain, false)
	skipped := panel("skipped", x)
	SetTabNavigation(skipped, None)
	root := panel("root", a, hidden, disabled, plain, skipped, b)
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(a, Next); got != b {
		t.Errorf("Next from a = %s, want b", name(got))
	}
}

func TestFirstAndLast(t *testing.T) {
	a, x, y, b := stop("a"), stop("x"), stop("y"), stop("b")
	group := panel("group", x, y)
	SetTabNavigation(group, Cycle)
	root := panel("root", a, group, b)
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(y, First); got != a {
		t.Errorf("First = %s, want a", name(got))
	}
	if got := nav.Move(nil, Last); got != b {
		t.Errorf("Last = %s, want b", name(got))
	}
	if got := nav.Move(nil, Next); got != a {
		t.Errorf("Next with nothing focused = %s, want a", name(got))
	}
	if got := nav.Move(nil, Previous); got != b {
		t.Errorf("Previous with nothing focused = %s, want b", name(got))
	}
}

func TestDirectionalStack(t *testing.T) {
	a, b, c := stop("a"), stop("b"), stop("c")
	root := panel("root", a, b, c)
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(a, Down); got != b {
		t.Errorf("Down from a = %s, want b", name(got))
	}
	if got := nav.Move(c, Up); got != b {
		t.Errorf("Up from c = %s, want b", name(got))
	}
	if got := nav.Move(a, Up); got != nil {
		t.Errorf("Up from a = %s, want no movement", name(got))
	}
	if got := nav.Move(a, Left); got != nil {
		t.Errorf("Left from a = %s, want no movement", name(got))
	}

	SetDirectionalNavigation(root, Cycle)
	if got := nav.Move(a, Up); got != c {
		t.Errorf("Up from a in Cycle = %s, want c", name(got))
	}
	if got := nav.Move(c, Down); got != a {
		t.Errorf("Down from c in Cycle = %s, want a", name(got))
	}
}

func TestDirectionalSkipsNonStops(t *testing.T) {
	a, gap, c := stop("a"), core.NewNode("Label", "gap"), stop("c")
	gap.SetHeight(10)
	root := panel("root", a, gap, c)
	pump(root)

	if got := NewNavigator(root, 0).Move(a, Down); got != c {
		t.Errorf("Down from a = %s, want c", name(got))
	}
}

func TestDirectionalClimbsToOuterLayout(t *testing.T) {
	p1, p2, q := stop("p1"), stop("p2"), stop("q")
	column := panel("column", p1, p2)
	root := core.NewNode("Panel", "root")
	root.SetLayout(layout.NewStack(layout.Horizontal))
	root.AddChild(column)
	root.AddChild(q)
	pump(root)

	nav := NewNavigator(root, 0)
	if got := nav.Move(p2, Right); got != q {
		t.Errorf("Right from p2 = %s, want q", name(got))
	}
	if got := nav.Move(q, Left); got != p2 {
		t.Errorf("Left from q = %s, want p2 (last stop of the column)", name(got))
	}

	SetDirectionalNavigation(column, Contained)
	if got := nav.Move(p2, Right); got != nil {
		t.Errorf("Right from p2 in Contained column = %s, want no movement", name(got))
	}
}

func TestDirectionalGrid(t *testing.T) {
	cells := map[string]*core.Node{}
	root := core.NewNode("Panel", "root")
	root.SetLayout(layout.NewGrid().
		WithColumns(layout.Star(1), layout.Star(1)).
		WithRows(layout.Star(1), layout.Star(1)))
	for i, n := range []string{"tl", "tr", "bl", "br"} {
		c := stop(n)
		layout.SetCell(c, i/2, i%2)
		root.AddChild(c)
		cells[n] = c
	}
	pump(root)

	nav := NewNavigator(root, 0)
	tests := []struct {
		from string
		req  Request
		want string
	}{
		{"tl", Right, "tr"},
		{"tr", Down, "br"},
		{"br", Left, "bl"},
		{"bl", Up, "tl"},
	}
	for _, tt := range tests {
		if got := nav.Move(cells[tt.from], tt.req); got != cells[tt.want] {
			t.Errorf("%s from %s = %s, want %s", tt.req, tt.from, name(got), tt.want)
		}
	}
	if got := nav.Move(cells["tl"], Left); got != nil {
		t.Errorf("Left from tl = %s, want no movement", name(got))
	}
}

func TestStepLimitReportsCycle(t *testing.T) {
	h := &recordingHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	var children []*core.Node
	for _, n := range []string{"e1", "e2", "e3"} {
		empty := panel(n)
		SetTabNavigation(empty, Contained)
		children = append(children, empty)
	}
	target := stop("target")
	root := panel("root", append(children, target)...)
	pump(root)

	if got := NewNavigator(root, 2).Move(nil, First); got != nil {
		t.Fatalf("First = %s, want no movement", name(got))
	}
	if len(h.errs) != 1 {
		t.Fatalf("reported %d errors, want 1", len(h.errs))
	}
	err := h.errs[0]
	if err.Kind != errors.KindNavigation {
		t.Errorf("Kind = %v, want navigation", err.Kind)
	}
	if !stderrors.Is(err, errors.ErrNavigationCycle) {
		t.Errorf("error %v does not match ErrNavigationCycle", err)
	}

	if got := NewNavigator(root, 0).Move(nil, First); got != target {
		t.Errorf("First with default budget = %s, want target", name(got))
	}
}

func TestParseRequest(t *testing.T) {
	for i, s := range requestNames {
		got, ok := ParseRequest(" " + s + " ")
		if !ok || got != Request(i) {
			t.Errorf("ParseRequest(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := ParseRequest("sideways"); ok {
		t.Error("ParseRequest accepted an unknown name")
	}
}
