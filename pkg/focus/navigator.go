package focus

import (
	"cmp"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
)

// DefaultMaxSteps bounds the nodes visited by one traversal.
const DefaultMaxSteps = 1024

// Request is a navigation request.
type Request int

const (
	Next Request = iota
	Previous
	First
	Last
	Left
	Right
	Up
	Down
)

var requestNames = [...]string{"next", "previous", "first", "last", "left", "right", "up", "down"}

func (r Request) String() string {
	if r >= 0 && int(r) < len(requestNames) {
		return requestNames[r]
	}
	return fmt.Sprintf("Request(%d)", int(r))
}

// ParseRequest maps a request name, as used in configuration, to a Request.
func ParseRequest(name string) (Request, bool) {
	i := slices.Index(requestNames[:], strings.ToLower(strings.TrimSpace(name)))
	if i < 0 {
		return 0, false
	}
	return Request(i), true
}

// Direction returns the layout direction of a directional request.
func (r Request) Direction() (core.Direction, bool) {
	switch r {
	case Left:
		return core.DirectionLeft, true
	case Right:
		return core.DirectionRight, true
	case Up:
		return core.DirectionUp, true
	case Down:
		return core.DirectionDown, true
	}
	return 0, false
}

var errStepLimit = stderrors.New("step limit")

// Navigator computes where a navigation request moves focus. It reads the
// tree and never changes focus itself; see Manager.
type Navigator struct {
	root     *core.Node
	maxSteps int
}

// NewNavigator creates a navigator over root. maxSteps <= 0 uses
// DefaultMaxSteps.
func NewNavigator(root *core.Node, maxSteps int) *Navigator {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Navigator{root: root, maxSteps: maxSteps}
}

// Root returns the tree root.
func (nav *Navigator) Root() *core.Node { return nav.root }

// Move returns the stop req leads to from from, or nil for no movement.
// A nil or detached from starts at the first or last stop. Traversals that
// exceed the step limit report a NavigationCycleError and return nil.
func (nav *Navigator) Move(from *core.Node, req Request) *core.Node {
	w := &walk{nav: nav}
	if from != nil && from != nav.root && !nav.root.IsAncestorOf(from) {
		from = nil
	}

	var (
		target *core.Node
		err    error
	)
	switch req {
	case Next, Previous:
		forward := req == Next
		if from == nil || from == nav.root {
			target, err = w.enterContainer(nav.root, forward)
		} else {
			target, err = w.moveWithin(w.container(from), from, forward, false)
		}
	case First:
		target, err = w.enterContainer(nav.root, true)
	case Last:
		target, err = w.enterContainer(nav.root, false)
	default:
		dir, _ := req.Direction()
		if from == nil || from == nav.root {
			target, err = w.enterContainer(nav.root, dir == core.DirectionRight || dir == core.DirectionDown)
		} else {
			target, err = w.directional(from, dir)
		}
	}
	if err != nil {
		container := "<root>"
		if from != nil {
			container = w.container(from).String()
		}
		errors.Report(&errors.EngineError{
			Op:      "focus.Navigator.Move",
			Kind:    errors.KindNavigation,
			Subject: container,
			Err:     &errors.NavigationCycleError{Request: req.String(), Container: container, Steps: w.steps},
		})
		return nil
	}
	if target == from {
		return nil
	}
	return target
}

// walk carries the step budget of one traversal.
type walk struct {
	nav   *Navigator
	steps int
}

func (w *walk) step() error {
	w.steps++
	if w.steps > w.nav.maxSteps {
		return errStepLimit
	}
	return nil
}

// container returns the navigation container of n: the nearest visual
// ancestor with a TabNavigation mode other than Continue, or the root.
func (w *walk) container(n *core.Node) *core.Node {
	for cur := n.VisualParent(); cur != nil; cur = cur.VisualParent() {
		if cur == w.nav.root || TabNavigation(cur) != Continue {
			return cur
		}
	}
	return w.nav.root
}

// entry is one position in a container's tab order: a stop, or a nested
// container that is entered rather than landed on.
type entry struct {
	node  *core.Node
	group bool
	index int
}

// entries lists the tab order of container. Descendants of Continue nodes
// are flattened in; nested containers appear as groups right after their
// own stop entry; None containers contribute only themselves.
func (w *walk) entries(container *core.Node) []entry {
	var out []entry
	var visit func(n *core.Node)
	visit = func(n *core.Node) {
		for _, c := range n.VisualChildren() {
			if c.Visibility() != core.Visible {
				continue
			}
			if IsNavigationStop(c) {
				out = append(out, entry{node: c, index: TabIndex(c)})
			}
			switch TabNavigation(c) {
			case Continue:
				visit(c)
			case None:
			default:
				out = append(out, entry{node: c, group: true, index: TabIndex(c)})
			}
		}
	}
	visit(container)
	slices.SortStableFunc(out, func(a, b entry) int { return cmp.Compare(a.index, b.index) })
	return out
}

// position finds from in es. A group containing from matches; when exiting
// a container, its group entry is preferred over its own stop entry.
func position(es []entry, from *core.Node, exiting bool) int {
	found := -1
	for i, e := range es {
		switch {
		case e.group && (e.node == from || e.node.IsAncestorOf(from)):
			if exiting || e.node != from {
				return i
			}
		case !e.group && e.node == from:
			if !exiting {
				return i
			}
			found = i
		}
	}
	return found
}

// moveWithin steps from from to the next or previous entry of container,
// applying the container mode at the boundary.
func (w *walk) moveWithin(container, from *core.Node, forward, exiting bool) (*core.Node, error) {
	if err := w.step(); err != nil {
		return nil, err
	}
	isRoot := container == w.nav.root
	mode := TabNavigation(container)
	if !isRoot && (mode == Once || mode == None) {
		return w.exit(container, forward)
	}

	es := w.entries(container)
	i := position(es, from, exiting)
	delta := 1
	if !forward {
		delta = -1
	}
	k := i
	if i < 0 && !forward {
		k = len(es)
	}
	wrapped := false
	for {
		k += delta
		if k < 0 || k >= len(es) {
			switch {
			case mode == Contained:
				return nil, nil
			case mode == Cycle || isRoot:
				if wrapped || len(es) == 0 {
					return nil, nil
				}
				wrapped = true
				if forward {
					k = 0
				} else {
					k = len(es) - 1
				}
			default:
				return w.exit(container, forward)
			}
		}
		if k == i && wrapped {
			return nil, nil
		}
		if err := w.step(); err != nil {
			return nil, err
		}
		target, err := w.enter(es[k], forward)
		if err != nil || target != nil {
			return target, err
		}
	}
}

// exit continues traversal in the parent container, past container.
func (w *walk) exit(container *core.Node, forward bool) (*core.Node, error) {
	if container == w.nav.root {
		return nil, nil
	}
	return w.moveWithin(w.container(container), container, forward, true)
}

// enter returns the stop an entry resolves to when traversal reaches it.
func (w *walk) enter(e entry, forward bool) (*core.Node, error) {
	if !e.group {
		return e.node, nil
	}
	if TabNavigation(e.node) == Once {
		last := lastFocused(e.node)
		if last != nil && e.node.IsAncestorOf(last) && IsNavigationStop(last) {
			return last, nil
		}
	}
	return w.enterContainer(e.node, forward)
}

// enterContainer returns the first (or last) stop inside container.
func (w *walk) enterContainer(container *core.Node, forward bool) (*core.Node, error) {
	es := w.entries(container)
	for k := range es {
		if !forward {
			k = len(es) - 1 - k
		}
		if err := w.step(); err != nil {
			return nil, err
		}
		target, err := w.enter(es[k], forward)
		if err != nil || target != nil {
			return target, err
		}
	}
	return nil, nil
}

// directional asks the nearest ancestor layout implementing
// core.NeighborFinder for the neighbor in dir, descending into the result
// to find a stop. Unresolved requests climb to the next such layout while
// the DirectionalNavigation mode is Continue.
func (w *walk) directional(from *core.Node, dir core.Direction) (*core.Node, error) {
	child := from
	for container := from.VisualParent(); container != nil; child, container = container, container.VisualParent() {
		finder, ok := container.Layout().(core.NeighborFinder)
		if ok {
			for cur := child; ; {
				if err := w.step(); err != nil {
					return nil, err
				}
				cand := finder.Neighbor(container, cur, dir)
				if cand == nil {
					break
				}
				target, err := w.descend(cand, dir)
				if err != nil || target != nil {
					return target, err
				}
				cur = cand
			}
		}
		switch DirectionalNavigation(container) {
		case Cycle:
			if ok {
				return w.wrap(finder, container, child, dir)
			}
			return nil, nil
		case Contained, None, Once:
			return nil, nil
		}
		if container == w.nav.root {
			break
		}
	}
	return nil, nil
}

// wrap continues a Cycle container from the far edge opposite dir.
func (w *walk) wrap(finder core.NeighborFinder, container, child *core.Node, dir core.Direction) (*core.Node, error) {
	edge := child
	for {
		if err := w.step(); err != nil {
			return nil, err
		}
		p := finder.Neighbor(container, edge, dir.Opposite())
		if p == nil {
			break
		}
		edge = p
	}
	for cand := edge; cand != nil && cand != child; cand = finder.Neighbor(container, cand, dir) {
		if err := w.step(); err != nil {
			return nil, err
		}
		target, err := w.descend(cand, dir)
		if err != nil || target != nil {
			return target, err
		}
	}
	return nil, nil
}

// descend returns cand when it is a stop, else the first stop inside it
// (the last one when moving left or up).
func (w *walk) descend(cand *core.Node, dir core.Direction) (*core.Node, error) {
	if IsNavigationStop(cand) {
		return cand, nil
	}
	if cand.Visibility() != core.Visible || TabNavigation(cand) == None {
		return nil, nil
	}
	return w.enterContainer(cand, dir == core.DirectionRight || dir == core.DirectionDown)
}
