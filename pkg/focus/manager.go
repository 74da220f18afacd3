package focus

import (
	"log/slog"
	"slices"

	"github.com/go-drift/retain/pkg/config"
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/input"
)

// FocusChange is the payload of GotFocus and LostFocus.
type FocusChange struct {
	Old, New *core.Node
}

// Focus events bubble from the element losing or gaining focus.
var (
	LostFocusEvent = events.Register[FocusChange]("LostFocus", events.Bubble, "FocusManager")
	GotFocusEvent  = events.Register[FocusChange]("GotFocus", events.Bubble, "FocusManager")
)

// Binding maps a key gesture to a navigation request.
type Binding struct {
	Gesture input.KeyGesture
	Request Request
}

// DefaultBindings returns Tab, Shift+Tab and the arrow keys.
func DefaultBindings() []Binding {
	return []Binding{
		{Gesture: input.KeyGesture{Key: input.KeyTab}, Request: Next},
		{Gesture: input.KeyGesture{Key: input.KeyTab, Mod: input.ModShift}, Request: Previous},
		{Gesture: input.KeyGesture{Key: input.KeyLeft}, Request: Left},
		{Gesture: input.KeyGesture{Key: input.KeyRight}, Request: Right},
		{Gesture: input.KeyGesture{Key: input.KeyUp}, Request: Up},
		{Gesture: input.KeyGesture{Key: input.KeyDown}, Request: Down},
	}
}

// Manager owns keyboard focus for one tree.
type Manager struct {
	root     *core.Node
	router   *events.Router
	nav      *Navigator
	focused  *core.Node
	bindings []Binding
	maxSteps int
	logger   *slog.Logger

	bound  bool
	token  events.HandlerToken
	moving bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithBindings replaces the key bindings used by Bind.
func WithBindings(b []Binding) Option {
	return func(m *Manager) { m.bindings = slices.Clone(b) }
}

// WithMaxSteps bounds a single traversal.
func WithMaxSteps(n int) Option {
	return func(m *Manager) { m.maxSteps = n }
}

// WithLogger sets the logger for focus changes.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// FromConfig returns the options for cfg's key bindings and step limit.
func FromConfig(cfg *config.Config) ([]Option, error) {
	gestures, err := cfg.Keys.Gestures()
	if err != nil {
		return nil, &errors.EngineError{Op: "focus.FromConfig", Kind: errors.KindConfig, Err: err}
	}
	var bindings []Binding
	for _, name := range requestNames {
		req, _ := ParseRequest(name)
		for _, g := range gestures[name] {
			bindings = append(bindings, Binding{Gesture: g, Request: req})
		}
	}
	return []Option{WithBindings(bindings), WithMaxSteps(cfg.Limits.MaxNavigationSteps)}, nil
}

// NewManager creates a focus manager for root raising events through
// router. Nothing is focused initially.
func NewManager(root *core.Node, router *events.Router, opts ...Option) *Manager {
	m := &Manager{
		root:     root,
		router:   router,
		bindings: DefaultBindings(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.nav = NewNavigator(root, m.maxSteps)
	return m
}

// Navigator returns the traversal used by Move.
func (m *Manager) Navigator() *Navigator { return m.nav }

// Focused returns the focused element, or nil.
func (m *Manager) Focused() *core.Node {
	if m.focused != nil && m.focused != m.root && !m.root.IsAncestorOf(m.focused) {
		m.focused = nil
	}
	return m.focused
}

// Focus moves focus to n. A nil n clears focus. It reports false when n is
// not a navigation stop or already focused.
func (m *Manager) Focus(n *core.Node) (bool, error) {
	old := m.Focused()
	if n == old {
		return false, nil
	}
	if n != nil && !IsNavigationStop(n) {
		return false, nil
	}

	m.focused = n
	if old != nil {
		old.ClearValue(IsFocusedProperty)
	}
	if n != nil {
		if err := n.SetValue(IsFocusedProperty, true); err != nil {
			return false, err
		}
		if err := FocusScope(n).SetValue(FocusedElementProperty, n); err != nil {
			return false, err
		}
		for c := n.VisualParent(); c != nil; c = c.VisualParent() {
			if TabNavigation(c) != Continue {
				if err := c.SetValue(lastFocusedProperty, n); err != nil {
					return false, err
				}
			}
		}
	}
	m.logger.Debug("focus changed", "old", nodeName(old), "new", nodeName(n))

	change := FocusChange{Old: old, New: n}
	if old != nil {
		if _, err := m.router.Raise(LostFocusEvent, old, change); err != nil {
			return true, err
		}
	}
	if n != nil {
		if _, err := m.router.Raise(GotFocusEvent, n, change); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Move applies a navigation request to the focused element. It reports
// whether focus moved.
func (m *Manager) Move(req Request) (bool, error) {
	target := m.nav.Move(m.Focused(), req)
	if target == nil {
		return false, nil
	}
	return m.Focus(target)
}

// Bind installs a KeyDown handler on the root that maps the bindings to
// Move and handles the key when focus moved. Bind also makes the focused
// element the input manager's keyboard target when im is non-nil.
func (m *Manager) Bind(im *input.Manager) {
	if im != nil {
		im.SetKeyTarget(m.Focused)
	}
	if m.bound {
		return
	}
	m.token = events.AddHandler(m.root, input.KeyDownEvent, m.onKeyDown)
	m.bound = true
}

// Unbind removes the handler installed by Bind.
func (m *Manager) Unbind() {
	if !m.bound {
		return
	}
	events.RemoveHandler(m.root, input.KeyDownEvent, m.token)
	m.bound = false
}

func (m *Manager) onKeyDown(_ events.Target, e *events.EventData) {
	if e.Handled || m.moving {
		return
	}
	key, ok := events.PayloadAs[input.KeyEvent](e)
	if !ok {
		return
	}
	for _, b := range m.bindings {
		if !b.Gesture.Matches(key) {
			continue
		}
		m.moving = true
		moved, err := m.Move(b.Request)
		m.moving = false
		if err != nil {
			m.logger.Warn("focus move failed", "request", b.Request.String(), "error", err)
		}
		if moved {
			e.Handled = true
		}
		return
	}
}

func nodeName(n *core.Node) string {
	if n == nil {
		return "<none>"
	}
	return n.String()
}
