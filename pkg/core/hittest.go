package core

import "github.com/go-drift/retain/pkg/graphics"

// HitTest returns the topmost node under p, or nil. p is in the coordinate
// space of root's visual parent. Hidden, collapsed, not yet arranged and
// non hit-test-visible nodes are skipped along with their subtrees. Later
// siblings are on top of earlier ones.
func HitTest(root *Node, p graphics.Offset) *Node {
	if root == nil {
		return nil
	}
	return hitTest(root, p)
}

func hitTest(n *Node, p graphics.Offset) *Node {
	if !n.arrangedOnce || n.Visibility() != Visible || !n.IsHitTestVisible() {
		return nil
	}
	local := graphics.Offset{X: p.X - n.offset.X, Y: p.Y - n.offset.Y}
	children := n.VisualChildren()
	for i := len(children) - 1; i >= 0; i-- {
		if hit := hitTest(children[i], local); hit != nil {
			return hit
		}
	}
	if graphics.RectFromSize(n.renderSize).Contains(local) {
		return n
	}
	return nil
}

// HitPath returns the hit node and its visual ancestors up to root,
// innermost first.
func HitPath(root *Node, p graphics.Offset) []*Node {
	hit := HitTest(root, p)
	var path []*Node
	for cur := hit; cur != nil; cur = cur.VisualParent() {
		path = append(path, cur)
		if cur == root {
			break
		}
	}
	return path
}
