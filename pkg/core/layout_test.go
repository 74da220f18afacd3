package core

import (
	"math"
	"testing"

	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/graphics"
)

// fixedLayout reports a constant content size and counts override calls.
type fixedLayout struct {
	size     graphics.Size
	measures int
	arranges int
}

func (f *fixedLayout) MeasureOverride(n *Node, available graphics.Size) graphics.Size {
	f.measures++
	for _, c := range n.VisualChildren() {
		c.Measure(available)
	}
	return f.size
}

func (f *fixedLayout) ArrangeOverride(n *Node, final graphics.Size) graphics.Size {
	f.arranges++
	for _, c := range n.VisualChildren() {
		c.Arrange(graphics.RectFromSize(final))
	}
	return final
}

func leaf(name string, w, h float64) (*Node, *fixedLayout) {
	n := NewNode("Leaf", name)
	l := &fixedLayout{size: graphics.Size{Width: w, Height: h}}
	n.SetLayout(l)
	return n, l
}

func TestMeasureIsMemoized(t *testing.T) {
	root := NewNode("Panel", "root")
	a, la := leaf("a", 30, 10)
	b, lb := leaf("b", 50, 20)
	root.AddChild(a)
	root.AddChild(b)

	avail := graphics.Size{Width: 100, Height: 100}
	first := root.Measure(avail)
	second := root.Measure(avail)

	if first != second {
		t.Errorf("Measure not idempotent: %v then %v", first, second)
	}
	if want := (graphics.Size{Width: 50, Height: 20}); first != want {
		t.Errorf("desired = %v, want %v", first, want)
	}
	if la.measures != 1 || lb.measures != 1 {
		t.Errorf("children measured %d/%d times, want 1/1", la.measures, lb.measures)
	}
	if m, _ := root.LayoutCounts(); m != 1 {
		t.Errorf("root override ran %d times, want 1", m)
	}

	root.Measure(graphics.Size{Width: 80, Height: 100})
	if la.measures != 2 {
		t.Errorf("new available size should re-measure, got %d measures", la.measures)
	}
}

func TestInvalidateMeasureMarksAncestorChain(t *testing.T) {
	root := NewNode("Panel", "root")
	a := NewNode("Panel", "a")
	b := NewNode("Panel", "b")
	c := NewNode("Panel", "c")
	d := NewNode("Panel", "d")
	sibling := NewNode("Panel", "sibling")
	cousin := NewNode("Panel", "cousin")
	root.AddChild(a)
	a.AddChild(b)
	a.AddChild(cousin)
	b.AddChild(c)
	c.AddChild(d)
	c.AddChild(sibling)

	host := NewHost(root, graphics.Size{Width: 100, Height: 100})
	host.Pump()
	for _, n := range []*Node{root, a, b, c, d, sibling, cousin} {
		if n.IsMeasureDirty() {
			t.Fatalf("%v dirty after pump", n)
		}
	}

	d.SetWidth(10)
	for _, n := range []*Node{root, a, b, c, d} {
		if !n.IsMeasureDirty() {
			t.Errorf("%v should be measure-dirty", n)
		}
	}
	for _, n := range []*Node{sibling, cousin} {
		if n.IsMeasureDirty() {
			t.Errorf("%v should stay clean", n)
		}
	}
	if !host.Pipeline().NeedsLayout() {
		t.Error("root should be scheduled on the pipeline")
	}

	host.Pump()
	// b already dirty: the walk from d stops there.
	b.measureDirty = true
	d.SetHeight(5)
	if !c.IsMeasureDirty() || !d.IsMeasureDirty() {
		t.Error("c and d should be dirty")
	}
	if a.IsMeasureDirty() || root.IsMeasureDirty() {
		t.Error("walk should stop at the already-dirty b")
	}
}

func TestInvalidateArrangeDoesNotRemeasure(t *testing.T) {
	root := NewNode("Panel", "root")
	child, l := leaf("child", 20, 20)
	root.AddChild(child)
	host := NewHost(root, graphics.Size{Width: 100, Height: 100})
	host.Pump()

	_ = child.SetValue(HorizontalAlignmentProperty, AlignRight)
	if child.IsMeasureDirty() {
		t.Error("alignment change should not mark measure dirty")
	}
	if !child.IsArrangeDirty() || !root.IsArrangeDirty() {
		t.Error("alignment change should mark arrange dirty up the chain")
	}
	host.Pump()
	if l.measures != 1 {
		t.Errorf("measures = %d, want 1", l.measures)
	}
	if l.arranges != 2 {
		t.Errorf("arranges = %d, want 2", l.arranges)
	}
	if got := child.Offset().X; got != 80 {
		t.Errorf("right-aligned offset = %v, want 80", got)
	}
}

func TestArrangeAlignmentAndMargin(t *testing.T) {
	tests := []struct {
		name   string
		ha     HorizontalAlignment
		va     VerticalAlignment
		margin graphics.Thickness
		want   graphics.Rect
	}{
		{"stretch", AlignStretch, AlignFill, graphics.Thickness{}, graphics.RectFromLTWH(0, 0, 200, 100)},
		{"center bottom", AlignCenter, AlignBottom, graphics.Thickness{}, graphics.RectFromLTWH(75, 80, 50, 20)},
		{"left top margin", AlignLeft, AlignTop, graphics.Uniform(10), graphics.RectFromLTWH(10, 10, 50, 20)},
		{"stretch margin", AlignStretch, AlignFill, graphics.Uniform(10), graphics.RectFromLTWH(10, 10, 180, 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewNode("Panel", "root")
			child, _ := leaf("child", 50, 20)
			_ = child.SetValue(HorizontalAlignmentProperty, tt.ha)
			_ = child.SetValue(VerticalAlignmentProperty, tt.va)
			child.SetMargin(tt.margin)
			root.AddChild(child)
			NewHost(root, graphics.Size{Width: 200, Height: 100}).Pump()

			if got := child.LayoutRect(); got != tt.want {
				t.Errorf("LayoutRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExplicitSizeAndLimits(t *testing.T) {
	n, _ := leaf("n", 500, 500)
	n.SetWidth(40)
	_ = n.SetValue(MaxHeightProperty, 30.0)
	_ = n.SetValue(MinWidthProperty, 60.0)

	got := n.Measure(graphics.Size{Width: 1000, Height: 1000})
	if want := (graphics.Size{Width: 60, Height: 30}); got != want {
		t.Errorf("desired = %v, want %v", got, want)
	}

	n.SetWidth(-5)
	if w := n.Width(); w != 0 {
		t.Errorf("negative width coerced to %v, want 0", w)
	}
	n.SetWidth(math.NaN())
	if !math.IsNaN(n.Width()) {
		t.Error("NaN should restore auto width")
	}
}

func TestDesiredSizeNeverExceedsAvailable(t *testing.T) {
	n, _ := leaf("n", 300, 300)
	n.SetMargin(graphics.Uniform(5))
	got := n.Measure(graphics.Size{Width: 100, Height: graphics.Inf})
	if want := (graphics.Size{Width: 100, Height: 310}); got != want {
		t.Errorf("desired = %v, want %v", got, want)
	}
}

func TestCollapsedTakesNoSpace(t *testing.T) {
	root := NewNode("Panel", "root")
	child, l := leaf("child", 50, 50)
	child.SetVisibility(Collapsed)
	root.AddChild(child)

	if got := root.Measure(graphics.Size{Width: 100, Height: 100}); got != (graphics.Size{}) {
		t.Errorf("desired = %v, want zero", got)
	}
	if l.measures != 0 {
		t.Error("collapsed node should not run its layout")
	}
	child.SetVisibility(Hidden)
	if got := root.Measure(graphics.Size{Width: 100, Height: 100}); got.Width != 50 {
		t.Errorf("hidden node should keep its space, desired = %v", got)
	}
}

type panicLayout struct{ value any }

func (p panicLayout) MeasureOverride(*Node, graphics.Size) graphics.Size { panic(p.value) }
func (p panicLayout) ArrangeOverride(*Node, graphics.Size) graphics.Size { return graphics.Size{} }

type captureHandler struct {
	panics []*errors.PanicError
}

func (c *captureHandler) HandleError(*errors.EngineError) {}
func (c *captureHandler) HandlePanic(p *errors.PanicError) { c.panics = append(c.panics, p) }

func TestPanicIsolatedToSubtree(t *testing.T) {
	capture := &captureHandler{}
	old := errors.DefaultHandler
	errors.SetHandler(capture)
	defer errors.SetHandler(old)

	root := NewNode("Panel", "root")
	bad := NewNode("Broken", "bad")
	bad.SetLayout(panicLayout{value: "broken layout"})
	good, _ := leaf("good", 40, 40)
	root.AddChild(bad)
	root.AddChild(good)

	NewHost(root, graphics.Size{Width: 100, Height: 100}).Pump()

	if got := bad.DesiredSize(); got != (graphics.Size{}) {
		t.Errorf("failed node desired = %v, want zero", got)
	}
	if got := good.RenderSize(); got != (graphics.Size{Width: 100, Height: 100}) {
		t.Errorf("sibling render size = %v", got)
	}
	if len(capture.panics) != 1 || capture.panics[0].Op != "core.Node.Measure" {
		t.Errorf("captured panics = %+v", capture.panics)
	}
}

func TestRecursionLimitPanicIsNotIsolated(t *testing.T) {
	old := errors.DefaultHandler
	errors.SetHandler(&captureHandler{})
	defer errors.SetHandler(old)

	n := NewNode("Broken", "bad")
	fatal := &errors.RecursionLimitError{Op: "property", Subject: "Node.Width", Depth: 4}
	n.SetLayout(panicLayout{value: fatal})

	defer func() {
		if r := recover(); r != fatal {
			t.Fatalf("recovered %v, want the recursion error", r)
		}
	}()
	n.Measure(graphics.Size{Width: 10, Height: 10})
	t.Fatal("Measure should have panicked")
}

// restless invalidates its node on every arrange.
type restless struct{}

func (restless) MeasureOverride(*Node, graphics.Size) graphics.Size { return graphics.Size{} }
func (restless) ArrangeOverride(n *Node, final graphics.Size) graphics.Size {
	n.measureDirty = false
	n.InvalidateMeasure()
	return final
}

func TestPipelineStopsRunawayLayout(t *testing.T) {
	root := NewNode("Panel", "root")
	root.SetLayout(restless{})
	host := NewHost(root, graphics.Size{Width: 10, Height: 10}, WithMaxLayoutPasses(3))

	defer func() {
		rl, ok := recover().(*errors.RecursionLimitError)
		if !ok {
			t.Fatal("expected RecursionLimitError")
		}
		if rl.Op != "layout" || rl.Depth != 3 {
			t.Errorf("got %+v", rl)
		}
	}()
	host.Pump()
}

func TestLayoutRounding(t *testing.T) {
	root := NewNode("Panel", "root")
	child, _ := leaf("child", 10.3, 7.1)
	_ = child.SetValue(HorizontalAlignmentProperty, AlignLeft)
	_ = child.SetValue(VerticalAlignmentProperty, AlignTop)
	child.SetMargin(graphics.Thickness{Left: 3.3})
	root.AddChild(child)
	NewHost(root, graphics.Size{Width: 100, Height: 100}, WithScale(1.5), WithLayoutRounding(true)).Pump()

	// 10.3 DIP is 15.45 px, snapped to 15 px.
	if got := child.RenderSize().Width; got != 10 {
		t.Errorf("rounded width = %v, want 10", got)
	}
	// 3.3 DIP is 4.95 px, snapped to 5 px.
	if got := child.Offset().X; !graphics.FloatEqual(got, 5/1.5) {
		t.Errorf("rounded x = %v, want %v", got, 5/1.5)
	}
}

func TestResizeRelayouts(t *testing.T) {
	root := NewNode("Panel", "root")
	host := NewHost(root, graphics.Size{Width: 100, Height: 100})
	host.Pump()
	host.Resize(graphics.Size{Width: 50, Height: 40})
	f := host.Pump()
	if f.LayoutPasses != 1 {
		t.Errorf("LayoutPasses = %d, want 1", f.LayoutPasses)
	}
	if got := root.RenderSize(); got != (graphics.Size{Width: 50, Height: 40}) {
		t.Errorf("root size = %v", got)
	}
	if f := host.Pump(); f.LayoutPasses != 0 {
		t.Errorf("clean frame ran %d passes", f.LayoutPasses)
	}
}
