package core

import (
	"log/slog"

	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/property"
)

// Host owns a tree's root and the per-tree services: layout pipeline,
// property recursion guard, DPI scale and logger.
type Host struct {
	root     *Node
	pipeline *Pipeline
	guard    *property.Guard
	logger   *slog.Logger
	scale    float64
	size     graphics.Size
	frames   int
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithScale sets the device pixels per DIP used for layout rounding.
func WithScale(scale float64) HostOption {
	return func(h *Host) {
		if scale > 0 {
			h.scale = scale
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithPropertyDepth sets the nesting limit for property change callbacks.
func WithPropertyDepth(limit int) HostOption {
	return func(h *Host) { h.guard = property.NewGuard(limit) }
}

// WithMaxLayoutPasses bounds layout re-runs within one frame.
func WithMaxLayoutPasses(n int) HostOption {
	return func(h *Host) { h.pipeline = NewPipeline(n) }
}

// WithLayoutRounding turns on UseLayoutRounding for the whole tree.
func WithLayoutRounding(on bool) HostOption {
	return func(h *Host) {
		if on {
			_ = h.root.SetValue(UseLayoutRoundingProperty, true)
		}
	}
}

// NewHost attaches root to a new host with the given viewport size.
func NewHost(root *Node, size graphics.Size, opts ...HostOption) *Host {
	h := &Host{
		root:     root,
		pipeline: NewPipeline(0),
		guard:    property.NewGuard(property.DefaultMaxDepth),
		logger:   slog.New(slog.DiscardHandler),
		scale:    1,
		size:     size,
	}
	for _, opt := range opts {
		opt(h)
	}
	if root.parent != nil {
		root.parent.RemoveChild(root)
	}
	root.host = h
	root.Walk(func(n *Node) bool {
		n.store.SetGuard(h.guard)
		return true
	})
	h.pipeline.ScheduleLayout(root)
	return h
}

// Root returns the root node.
func (h *Host) Root() *Node { return h.root }

// Pipeline returns the layout pipeline.
func (h *Host) Pipeline() *Pipeline { return h.pipeline }

// Guard returns the property recursion guard shared by the tree.
func (h *Host) Guard() *property.Guard { return h.guard }

// Logger returns the host logger.
func (h *Host) Logger() *slog.Logger { return h.logger }

// Scale returns the device pixels per DIP.
func (h *Host) Scale() float64 { return h.scale }

// Size returns the viewport size.
func (h *Host) Size() graphics.Size { return h.size }

// Resize changes the viewport. The next frame re-lays out the root.
func (h *Host) Resize(size graphics.Size) {
	if size.Equal(h.size) {
		return
	}
	h.size = size
	h.pipeline.ScheduleLayout(h.root)
}

// Frame summarizes one Pump.
type Frame struct {
	Number       int
	LayoutPasses int
	Repaint      []*Node
}

// Pump runs one frame: layout until clean, then collects repaints.
func (h *Host) Pump() Frame {
	h.frames++
	f := Frame{Number: h.frames}
	f.LayoutPasses = h.pipeline.FlushLayout(h.root, h.size)
	f.Repaint = h.pipeline.FlushRender()
	if f.LayoutPasses > 0 || len(f.Repaint) > 0 {
		h.logger.Debug("frame", "frame", f.Number, "layout_passes", f.LayoutPasses, "repaint", len(f.Repaint))
	}
	return f
}

// Detach releases the root from the host.
func (h *Host) Detach() {
	if h.root.host == h {
		h.root.host = nil
	}
}
