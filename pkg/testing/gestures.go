package testing

import (
	"fmt"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/input"
)

// Click moves the pointer to the center of the first node matched by
// finder and clicks the left button there.
func (t *Tester) Click(finder Finder) error {
	n, err := t.single("Click", finder)
	if err != nil {
		return err
	}
	return t.ClickAt(nodeCenter(n))
}

// ClickAt clicks the left button at pos.
func (t *Tester) ClickAt(pos graphics.Offset) error {
	if err := t.MoveTo(pos); err != nil {
		return err
	}
	if err := t.Press(input.MouseLeft); err != nil {
		return err
	}
	return t.Release(input.MouseLeft)
}

// MoveTo moves the pointer to pos, updating the hover path.
func (t *Tester) MoveTo(pos graphics.Offset) error {
	t.pointer = true
	_, err := t.input.MouseMove(input.MouseEvent{Position: pos})
	return err
}

// Press presses button at the current pointer position.
func (t *Tester) Press(button input.MouseButton) error {
	t.pointer = true
	_, err := t.input.MouseDown(input.MouseEvent{Position: t.input.Position(), Button: button})
	return err
}

// Release releases button at the current pointer position.
func (t *Tester) Release(button input.MouseButton) error {
	_, err := t.input.MouseUp(input.MouseEvent{Position: t.input.Position(), Button: button})
	return err
}

// Drag presses the left button on the first node matched by finder, moves
// by delta and releases.
func (t *Tester) Drag(finder Finder, delta graphics.Offset) error {
	n, err := t.single("Drag", finder)
	if err != nil {
		return err
	}
	return t.DragFrom(nodeCenter(n), delta)
}

// DragFrom presses the left button at start, moves by delta in a few steps
// and releases.
func (t *Tester) DragFrom(start, delta graphics.Offset) error {
	if err := t.MoveTo(start); err != nil {
		return err
	}
	if err := t.Press(input.MouseLeft); err != nil {
		return err
	}
	const steps = 4
	for i := 1; i <= steps; i++ {
		frac := float64(i) / steps
		pos := graphics.Offset{X: start.X + delta.X*frac, Y: start.Y + delta.Y*frac}
		if err := t.MoveTo(pos); err != nil {
			return err
		}
	}
	return t.Release(input.MouseLeft)
}

// SendKey delivers a key press and release to the focused element (the
// root when nothing is focused) and reports whether the press was handled.
func (t *Tester) SendKey(e input.KeyEvent) (bool, error) {
	handled, err := t.input.KeyDown(e)
	if err != nil {
		return handled, err
	}
	_, err = t.input.KeyUp(e)
	return handled, err
}

// PressKey parses gesture notation such as "Tab" or "Shift+Tab" and sends
// it with SendKey.
func (t *Tester) PressKey(gesture string) (bool, error) {
	g, err := input.ParseKeyGesture(gesture)
	if err != nil {
		return false, fmt.Errorf("PressKey: %w", err)
	}
	return t.SendKey(input.KeyEvent{Key: g.Key, Rune: g.Rune, Mod: g.Mod})
}

// nodeCenter returns the center of n's arranged rect in root coordinates.
func nodeCenter(n *core.Node) graphics.Offset {
	o := n.GlobalOffset()
	size := n.RenderSize()
	return graphics.Offset{X: o.X + size.Width/2, Y: o.Y + size.Height/2}
}
