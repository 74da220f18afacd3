package layout

import (
	"math"

	"github.com/go-drift/retain/pkg/core"
)

// Neighbor returns the child in the nearest cell in direction dir whose
// span overlaps from's span on the other axis. Ties go to the cell whose
// start is closest to from's, then to document order.
func (g *Grid) Neighbor(container, from *core.Node, dir core.Direction) *core.Node {
	g.ensureCells(container)
	var origin *cell
	for i := range g.cells {
		if g.cells[i].node == from {
			origin = &g.cells[i]
			break
		}
	}
	if origin == nil {
		return nil
	}

	var best *core.Node
	bestGap, bestSkew := math.MaxInt, math.MaxInt
	for i := range g.cells {
		c := &g.cells[i]
		if c == origin || c.node.Visibility() == core.Collapsed {
			continue
		}
		gap, skew, ok := cellDistance(origin, c, dir)
		if !ok {
			continue
		}
		if gap < bestGap || gap == bestGap && skew < bestSkew {
			best, bestGap, bestSkew = c.node, gap, skew
		}
	}
	return best
}

// cellDistance measures how far c is from o in direction dir: the number of
// tracks between them along dir and the offset of their starts across it.
func cellDistance(o, c *cell, dir core.Direction) (gap, skew int, ok bool) {
	switch dir {
	case core.DirectionLeft, core.DirectionRight:
		if !overlaps(o.row, o.rowSpan, c.row, c.rowSpan) {
			return 0, 0, false
		}
		skew = abs(c.row - o.row)
		if dir == core.DirectionLeft {
			gap = o.column - (c.column + c.colSpan)
		} else {
			gap = c.column - (o.column + o.colSpan)
		}
	default:
		if !overlaps(o.column, o.colSpan, c.column, c.colSpan) {
			return 0, 0, false
		}
		skew = abs(c.column - o.column)
		if dir == core.DirectionUp {
			gap = o.row - (c.row + c.rowSpan)
		} else {
			gap = c.row - (o.row + o.rowSpan)
		}
	}
	return gap, skew, gap >= 0
}

func overlaps(a, aSpan, b, bSpan int) bool {
	return a < b+bSpan && b < a+aSpan
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
