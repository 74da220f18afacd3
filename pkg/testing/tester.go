package testing

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/go-drift/retain/pkg/config"
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/focus"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/input"
)

const (
	// DefaultTestWidth is the default viewport width in DIPs.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default viewport height in DIPs.
	DefaultTestHeight = 600
	// DefaultSettleFrames bounds PumpAndSettle.
	DefaultSettleFrames = 16
)

// ErrSettleTimeout is returned when PumpAndSettle runs out of frames.
var ErrSettleTimeout = errors.New("PumpAndSettle: tree did not settle")

// Tester hosts a node tree and drives it the way an application loop
// would: input goes through an input.Manager, keyboard focus through a
// focus.Manager bound to it, and Pump runs layout.
type Tester struct {
	host   *core.Host
	router *events.Router
	input  *input.Manager
	focus  *focus.Manager
	frames []core.Frame

	// pointer is set once a gesture has placed the pointer.
	pointer bool
}

type options struct {
	size     graphics.Size
	cfg      *config.Config
	registry *events.Registry
	logger   *slog.Logger
}

// Option configures a Tester.
type Option func(*options)

// WithSize sets the viewport size.
func WithSize(size graphics.Size) Option {
	return func(o *options) { o.size = size }
}

// WithConfig applies a loaded configuration to the host, router and focus
// manager.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithRegistry routes events through r instead of events.Default, so class
// handlers registered by one test do not leak into others.
func WithRegistry(r *events.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger for every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewTester attaches root to a new host and runs the first frame. Call
// Cleanup when done, or use NewTesterWithT.
func NewTester(root *core.Node, opts ...Option) (*Tester, error) {
	o := options{
		size: graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
		cfg:  config.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	hostOpts := o.cfg.HostOptions()
	routerOpts := o.cfg.RouterOptions()
	inputOpts := []input.Option{}
	focusOpts, err := focus.FromConfig(o.cfg)
	if err != nil {
		return nil, err
	}
	if o.registry != nil {
		routerOpts = append(routerOpts, events.WithRegistry(o.registry))
	}
	if o.logger != nil {
		hostOpts = append(hostOpts, core.WithLogger(o.logger))
		routerOpts = append(routerOpts, events.WithLogger(o.logger))
		inputOpts = append(inputOpts, input.WithLogger(o.logger))
		focusOpts = append(focusOpts, focus.WithLogger(o.logger))
	}

	t := &Tester{
		host:   core.NewHost(root, o.size, hostOpts...),
		router: events.NewRouter(routerOpts...),
	}
	t.input = input.NewManager(root, t.router, inputOpts...)
	t.focus = focus.NewManager(root, t.router, focusOpts...)
	t.focus.Bind(t.input)
	t.Pump()
	return t, nil
}

// NewTesterWithT creates a tester that is cleaned up with t and fails the
// test on construction errors.
func NewTesterWithT(t testing.TB, root *core.Node, opts ...Option) *Tester {
	t.Helper()
	tester, err := NewTester(root, opts...)
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unbinds focus handling and detaches the tree from the host.
func (t *Tester) Cleanup() {
	t.focus.Unbind()
	t.host.Detach()
}

// Root returns the root node.
func (t *Tester) Root() *core.Node { return t.host.Root() }

// Host returns the host driving layout.
func (t *Tester) Host() *core.Host { return t.host }

// Router returns the router all events go through.
func (t *Tester) Router() *events.Router { return t.router }

// Input returns the input manager fed by the gesture helpers.
func (t *Tester) Input() *input.Manager { return t.input }

// Focus returns the focus manager.
func (t *Tester) Focus() *focus.Manager { return t.focus }

// SetSize resizes the viewport. The next Pump lays out again.
func (t *Tester) SetSize(size graphics.Size) { t.host.Resize(size) }

// Pump runs one frame and, once the pointer has been used, refreshes the
// hover state against the new layout.
func (t *Tester) Pump() core.Frame {
	f := t.host.Pump()
	t.frames = append(t.frames, f)
	if f.LayoutPasses > 0 && t.pointer {
		_ = t.input.Refresh()
	}
	return f
}

// Frames returns every frame pumped so far.
func (t *Tester) Frames() []core.Frame { return t.frames }

// PumpAndSettle pumps until a frame does no layout and repaints nothing,
// or returns ErrSettleTimeout after maxFrames (DefaultSettleFrames when
// maxFrames <= 0).
func (t *Tester) PumpAndSettle(maxFrames int) error {
	if maxFrames <= 0 {
		maxFrames = DefaultSettleFrames
	}
	for range maxFrames {
		f := t.Pump()
		if f.LayoutPasses == 0 && len(f.Repaint) == 0 {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Find evaluates a finder against the tree.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{nodes: finder.Evaluate(t.Root()), finder: finder}
}

// FocusOn focuses the first node matched by finder.
func (t *Tester) FocusOn(finder Finder) error {
	n, err := t.single("FocusOn", finder)
	if err != nil {
		return err
	}
	moved, err := t.focus.Focus(n)
	if err != nil {
		return err
	}
	if !moved && t.focus.Focused() != n {
		return &FinderError{Op: "FocusOn", Finder: finder, Reason: "node is not a navigation stop"}
	}
	return nil
}

// Focused returns the focused node, or nil.
func (t *Tester) Focused() *core.Node { return t.focus.Focused() }
