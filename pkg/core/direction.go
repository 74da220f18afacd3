package core

import (
	"math"

	"github.com/go-drift/retain/pkg/graphics"
)

// Direction is a directional navigation request.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "unknown"
	}
}

// NeighborFinder is implemented by layouts that can answer directional
// navigation among their children. from is a direct visual child of
// container; the result is the visual child to move to, or nil when the
// layout has no neighbor in that direction.
type NeighborFinder interface {
	Neighbor(container, from *Node, dir Direction) *Node
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	case DirectionUp:
		return DirectionDown
	default:
		return DirectionUp
	}
}

// SpatialNeighbor picks the visual child of container whose layout rect
// lies in dir from from's rect, scoring by distance along dir plus twice the
// cross-axis distance so aligned children win. Layouts without a structural
// notion of adjacency use it as their NeighborFinder. Children that are not
// visible or not yet arranged are skipped.
func SpatialNeighbor(container, from *Node, dir Direction) *Node {
	src := from.LayoutRect()
	if !from.arrangedOnce || src.IsEmpty() {
		return nil
	}
	var best *Node
	bestScore := math.MaxFloat64
	for _, c := range container.VisualChildren() {
		if c == from || !c.arrangedOnce || c.Visibility() != Visible {
			continue
		}
		dst := c.LayoutRect()
		if dst.IsEmpty() || !inDirection(src, dst, dir) {
			continue
		}
		if score := directionalScore(src, dst, dir); score < bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func inDirection(src, dst graphics.Rect, dir Direction) bool {
	s, d := src.Center(), dst.Center()
	switch dir {
	case DirectionLeft:
		return d.X < s.X
	case DirectionRight:
		return d.X > s.X
	case DirectionUp:
		return d.Y < s.Y
	case DirectionDown:
		return d.Y > s.Y
	}
	return false
}

func directionalScore(src, dst graphics.Rect, dir Direction) float64 {
	s, d := src.Center(), dst.Center()
	primary, cross := math.Abs(d.X-s.X), math.Abs(d.Y-s.Y)
	if dir == DirectionUp || dir == DirectionDown {
		primary, cross = cross, primary
	}
	return primary + cross*2
}
