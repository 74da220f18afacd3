package property

import "github.com/go-drift/retain/pkg/errors"

// DefaultMaxDepth is the nesting limit for change notifications.
const DefaultMaxDepth = 64

// Guard bounds re-entrant change notifications. A change callback that
// writes another property nests one level deeper; exceeding Limit panics
// with a RecursionLimitError naming the property that overflowed.
//
// Guards are not safe for concurrent use. One guard is shared by all stores
// of a tree, which all live on the UI thread.
type Guard struct {
	// Limit is the maximum nesting depth. Zero means DefaultMaxDepth.
	Limit int
	depth int
}

// NewGuard creates a guard with the given limit.
func NewGuard(limit int) *Guard {
	return &Guard{Limit: limit}
}

// DefaultGuard is used by stores that were not given a guard.
var DefaultGuard = NewGuard(DefaultMaxDepth)

// Depth returns the current nesting depth.
func (g *Guard) Depth() int { return g.depth }

func (g *Guard) limit() int {
	if g.Limit <= 0 {
		return DefaultMaxDepth
	}
	return g.Limit
}

func (g *Guard) enter(d *Descriptor) {
	if g.depth >= g.limit() {
		limit := g.limit()
		// Reset so the engine is usable after the fatal error is handled.
		g.depth = 0
		panic(&errors.RecursionLimitError{Op: "property", Subject: d.String(), Depth: limit})
	}
	g.depth++
}

func (g *Guard) leave() {
	if g.depth > 0 {
		g.depth--
	}
}
