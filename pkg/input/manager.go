package input

import (
	"log/slog"
	"slices"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/graphics"
)

// Manager turns device-level input into routed events on a node tree. It
// tracks the hover path and the node that received the last button press so
// the release goes to the same node.
//
// Manager is not safe for concurrent use; call it from the UI goroutine.
type Manager struct {
	root      *core.Node
	router    *events.Router
	keyTarget func() *core.Node
	logger    *slog.Logger

	hover    []*core.Node
	pressed  *core.Node
	position graphics.Offset
	buttons  map[MouseButton]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeyTarget sets the function that returns the keyboard target,
// normally the focused element. A nil result targets the root.
func WithKeyTarget(fn func() *core.Node) Option {
	return func(m *Manager) { m.keyTarget = fn }
}

// WithLogger sets the logger for input tracing.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager raising events on root through router.
func NewManager(root *core.Node, router *events.Router, opts ...Option) *Manager {
	m := &Manager{
		root:    root,
		router:  router,
		logger:  slog.New(slog.DiscardHandler),
		buttons: make(map[MouseButton]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the node tree root.
func (m *Manager) Root() *core.Node { return m.root }

// Router returns the router events are raised through.
func (m *Manager) Router() *events.Router { return m.router }

// SetKeyTarget replaces the keyboard target function.
func (m *Manager) SetKeyTarget(fn func() *core.Node) { m.keyTarget = fn }

// Hovered returns the innermost node under the pointer, or nil.
func (m *Manager) Hovered() *core.Node {
	if len(m.hover) == 0 {
		return nil
	}
	return m.hover[0]
}

// Pressed returns the node that received the unreleased button press.
func (m *Manager) Pressed() *core.Node { return m.pressed }

// Position returns the last known pointer position.
func (m *Manager) Position() graphics.Offset { return m.position }

// IsButtonDown reports whether b is held.
func (m *Manager) IsButtonDown(b MouseButton) bool { return m.buttons[b] }

func (m *Manager) keyboardTarget() *core.Node {
	if m.keyTarget != nil {
		if n := m.keyTarget(); n != nil {
			return n
		}
	}
	return m.root
}

// KeyDown raises PreviewKeyDown then KeyDown on the keyboard target and
// reports whether a handler handled it.
func (m *Manager) KeyDown(e KeyEvent) (bool, error) {
	target := m.keyboardTarget()
	m.logger.Debug("key down", "key", e.String(), "target", target.String())
	return m.router.RaisePair(PreviewKeyDownEvent, KeyDownEvent, target, e)
}

// KeyUp raises PreviewKeyUp then KeyUp on the keyboard target.
func (m *Manager) KeyUp(e KeyEvent) (bool, error) {
	target := m.keyboardTarget()
	return m.router.RaisePair(PreviewKeyUpEvent, KeyUpEvent, target, e)
}

// MouseMove updates the hover path and raises MouseMove on the node under
// the pointer. Moves over empty space return false.
func (m *Manager) MouseMove(e MouseEvent) (bool, error) {
	m.position = e.Position
	e.Button = MouseNone
	if err := m.updateHover(e); err != nil {
		return false, err
	}
	target := m.Hovered()
	if target == nil {
		return false, nil
	}
	return m.router.Raise(MouseMoveEvent, target, e)
}

// MouseDown raises PreviewMouseDown then MouseDown on the node under the
// pointer and remembers it for the release.
func (m *Manager) MouseDown(e MouseEvent) (bool, error) {
	m.position = e.Position
	m.buttons[e.Button] = true
	if err := m.updateHover(e); err != nil {
		return false, err
	}
	target := m.Hovered()
	if target == nil {
		return false, nil
	}
	m.pressed = target
	m.logger.Debug("mouse down", "button", e.Button.String(), "target", target.String())
	return m.router.RaisePair(PreviewMouseDownEvent, MouseDownEvent, target, e)
}

// MouseUp raises PreviewMouseUp then MouseUp on the node that received the
// press, or on the node under the pointer when there was none.
func (m *Manager) MouseUp(e MouseEvent) (bool, error) {
	m.position = e.Position
	delete(m.buttons, e.Button)
	target := m.pressed
	if len(m.buttons) == 0 {
		m.pressed = nil
	}
	if err := m.updateHover(e); err != nil {
		return false, err
	}
	if target == nil || target.Root() != m.root {
		target = m.Hovered()
	}
	if target == nil {
		return false, nil
	}
	return m.router.RaisePair(PreviewMouseUpEvent, MouseUpEvent, target, e)
}

// Refresh re-runs hit testing at the last pointer position, for use after
// layout moved nodes under a stationary pointer.
func (m *Manager) Refresh() error {
	return m.updateHover(MouseEvent{Position: m.position})
}

// updateHover diffs the hover path. Nodes leaving the path get MouseLeave,
// innermost first; nodes joining it get MouseEnter, outermost first.
func (m *Manager) updateHover(e MouseEvent) error {
	path := core.HitPath(m.root, e.Position)
	if slices.Equal(path, m.hover) {
		return nil
	}
	old := m.hover
	m.hover = path
	e.Button = MouseNone

	for _, n := range old {
		if slices.Contains(path, n) {
			continue
		}
		n.ClearValue(IsMouseOverProperty)
		if _, err := m.router.Raise(MouseLeaveEvent, n, e); err != nil {
			return err
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if slices.Contains(old, n) {
			continue
		}
		_ = n.SetValue(IsMouseOverProperty, true)
		if _, err := m.router.Raise(MouseEnterEvent, n, e); err != nil {
			return err
		}
	}
	return nil
}
