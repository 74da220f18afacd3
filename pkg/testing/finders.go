package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/focus"
	"github.com/go-drift/retain/pkg/property"
)

// Finder locates nodes in the visual tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *core.Node) []*core.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderError reports a finder that could not be used for an action.
type FinderError struct {
	Op     string
	Finder Finder
	Reason string
}

func (e *FinderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Reason, e.Finder.Description())
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*core.Node
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.describe()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Names returns the names of all matches.
func (r FinderResult) Names() []string {
	names := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		names[i] = n.Name()
	}
	return names
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// --- Concrete finders ---

// predicateFinder matches nodes satisfying a predicate.
type predicateFinder struct {
	fn   func(*core.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *core.Node) []*core.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByName matches nodes with the given name.
func ByName(name string) Finder {
	return &predicateFinder{
		fn:   func(n *core.Node) bool { return n.Name() == name },
		desc: fmt.Sprintf("ByName(%q)", name),
	}
}

// ByType matches nodes whose type name is typeName.
func ByType(typeName string) Finder {
	return &predicateFinder{
		fn:   func(n *core.Node) bool { return n.TypeName() == typeName },
		desc: fmt.Sprintf("ByType(%s)", typeName),
	}
}

// ByProperty matches nodes whose effective value of d equals value.
func ByProperty(d *property.Descriptor, value any) Finder {
	return &predicateFinder{
		fn: func(n *core.Node) bool {
			v := n.GetValue(d)
			if v == nil || value == nil || !reflect.TypeOf(v).Comparable() {
				return reflect.DeepEqual(v, value)
			}
			return v == value
		},
		desc: fmt.Sprintf("ByProperty(%s=%v)", d, value),
	}
}

// Focused matches the node holding keyboard focus.
func Focused() Finder {
	return &predicateFinder{fn: focus.IsFocused, desc: "Focused()"}
}

// ByPredicate matches nodes satisfying fn.
func ByPredicate(fn func(*core.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' that are descendants
// of nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *core.Node) []*core.Node {
	var results []*core.Node
	seen := make(map[*core.Node]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		// the ancestor itself is not its own descendant
		for _, child := range ancestor.VisualChildren() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching'
// that are descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds nodes matching 'matching' that are ancestors of
// nodes matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root *core.Node) []*core.Node {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	var results []*core.Node
	for _, candidate := range f.matching.Evaluate(root) {
		for _, d := range descendants {
			if candidate.IsAncestorOf(d) {
				results = append(results, candidate)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches nodes satisfying 'matching' that
// are ancestors of nodes matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// collectMatches performs a depth-first pre-order traversal of the visual
// tree, collecting nodes that satisfy the predicate.
func collectMatches(root *core.Node, predicate func(*core.Node) bool) []*core.Node {
	var results []*core.Node
	var visit func(*core.Node)
	visit = func(n *core.Node) {
		if predicate(n) {
			results = append(results, n)
		}
		for _, c := range n.VisualChildren() {
			visit(c)
		}
	}
	visit(root)
	return results
}

// single returns the first match of finder or a FinderError.
func (t *Tester) single(op string, finder Finder) (*core.Node, error) {
	n := t.Find(finder).FirstOrNil()
	if n == nil {
		return nil, &FinderError{Op: op, Finder: finder, Reason: "finder matched no nodes"}
	}
	return n, nil
}
