package core

import (
	"math"
	"slices"

	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/graphics"
)

// DefaultMaxLayoutPasses bounds how often one flush re-runs layout when
// layout keeps invalidating itself.
const DefaultMaxLayoutPasses = 16

// Pipeline tracks nodes that need layout or repaint.
//
// Invalidation walks up to the root of the tree, so the layout list holds
// roots scheduled by InvalidateMeasure or InvalidateArrange. FlushLayout
// re-runs Measure and Arrange from the root until the tree is clean; clean
// subtrees are skipped by memoization.
type Pipeline struct {
	dirtyLayout    []*Node
	dirtyLayoutSet map[*Node]bool
	dirtyRender    map[*Node]struct{}
	needsLayout    bool
	needsRender    bool
	maxPasses      int
}

// NewPipeline creates a pipeline. maxPasses < 1 uses DefaultMaxLayoutPasses.
func NewPipeline(maxPasses int) *Pipeline {
	if maxPasses < 1 {
		maxPasses = DefaultMaxLayoutPasses
	}
	return &Pipeline{maxPasses: maxPasses}
}

// ScheduleLayout records a root that needs layout.
func (p *Pipeline) ScheduleLayout(n *Node) {
	if p.dirtyLayoutSet == nil {
		p.dirtyLayoutSet = make(map[*Node]bool)
	}
	p.needsLayout = true
	p.needsRender = true
	if p.dirtyLayoutSet[n] {
		return
	}
	p.dirtyLayoutSet[n] = true
	p.dirtyLayout = append(p.dirtyLayout, n)
}

// ScheduleRender records a node that needs repaint.
func (p *Pipeline) ScheduleRender(n *Node) {
	if p.dirtyRender == nil {
		p.dirtyRender = make(map[*Node]struct{})
	}
	p.dirtyRender[n] = struct{}{}
	p.needsRender = true
}

// NeedsLayout reports whether any root was scheduled since the last flush.
func (p *Pipeline) NeedsLayout() bool { return p.needsLayout }

// NeedsRender reports whether anything needs repaint.
func (p *Pipeline) NeedsRender() bool { return p.needsRender }

// FlushLayout lays out root within available and returns the number of
// passes it took. A root with infinite available size is arranged at its
// desired size.
//
// Layout that keeps invalidating itself for more than the configured number
// of passes panics with *errors.RecursionLimitError.
func (p *Pipeline) FlushLayout(root *Node, available graphics.Size) int {
	if root == nil {
		return 0
	}
	passes := 0
	for root.measureDirty || root.arrangeDirty || !root.arrangedOnce || !available.Equal(root.lastAvailable) {
		if passes >= p.maxPasses {
			p.reset()
			panic(&errors.RecursionLimitError{Op: "layout", Subject: root.String(), Depth: p.maxPasses})
		}
		passes++
		p.reset()

		desired := root.Measure(available)
		final := available
		if math.IsInf(final.Width, 1) {
			final.Width = desired.Width
		}
		if math.IsInf(final.Height, 1) {
			final.Height = desired.Height
		}
		root.Arrange(graphics.RectFromSize(final))
	}
	p.reset()
	return passes
}

func (p *Pipeline) reset() {
	p.dirtyLayout = nil
	p.dirtyLayoutSet = nil
	p.needsLayout = false
}

// FlushRender returns the nodes that asked for repaint, parents first, and
// clears the list.
func (p *Pipeline) FlushRender() []*Node {
	if !p.needsRender || len(p.dirtyRender) == 0 {
		p.dirtyRender = nil
		p.needsRender = false
		return nil
	}
	dirty := make([]*Node, 0, len(p.dirtyRender))
	for n := range p.dirtyRender {
		dirty = append(dirty, n)
	}
	slices.SortFunc(dirty, func(a, b *Node) int {
		return a.Depth() - b.Depth()
	})
	p.dirtyRender = nil
	p.needsRender = false
	return dirty
}
