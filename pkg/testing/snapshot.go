package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/focus"
	"github.com/go-drift/retain/pkg/input"
	"github.com/go-drift/retain/pkg/property"
)

// UpdateSnapshotsEnv names the environment variable that makes MatchesFile
// rewrite golden files instead of comparing.
const UpdateSnapshotsEnv = "RETAIN_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the arranged tree.
type Snapshot struct {
	Tree *NodeSnapshot `json:"tree"`
}

// NodeSnapshot is one node of a Snapshot.
type NodeSnapshot struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type"`
	Size       [2]float64      `json:"size"`
	Offset     [2]float64      `json:"offset"`
	Properties map[string]any  `json:"props,omitempty"`
	Children   []*NodeSnapshot `json:"children,omitempty"`
}

// snapshotProperties are recorded when they differ from their default.
var snapshotProperties = []*property.Descriptor{
	core.VisibilityProperty,
	core.IsEnabledProperty,
	focus.IsFocusedProperty,
	input.IsMouseOverProperty,
	input.IsPressedProperty,
}

// CaptureSnapshot captures the current layout of the tree.
func (t *Tester) CaptureSnapshot() *Snapshot {
	return &Snapshot{Tree: captureNode(t.Root(), &typeCounter{})}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When RETAIN_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a diff from other to this snapshot, or "" when equal. Both
// sides are compared in their JSON form so loaded and captured snapshots
// agree on number types.
func (s *Snapshot) Diff(other *Snapshot) string {
	return cmp.Diff(normalize(other), normalize(s))
}

// --- Internal ---

// typeCounter assigns stable IDs like "Button#0", "Button#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureNode(n *core.Node, counter *typeCounter) *NodeSnapshot {
	size := n.RenderSize()
	offset := n.Offset()
	node := &NodeSnapshot{
		ID:     counter.next(n.TypeName()),
		Name:   n.Name(),
		Type:   n.TypeName(),
		Size:   [2]float64{round2(size.Width), round2(size.Height)},
		Offset: [2]float64{round2(offset.X), round2(offset.Y)},
	}
	for _, d := range snapshotProperties {
		if n.PropertyStore().ValueSource(d) == property.SourceDefault {
			continue
		}
		if node.Properties == nil {
			node.Properties = make(map[string]any)
		}
		node.Properties[d.Name()] = fmt.Sprint(n.GetValue(d))
	}
	for _, c := range n.VisualChildren() {
		node.Children = append(node.Children, captureNode(c, counter))
	}
	return node
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalize(s *Snapshot) any {
	if s == nil {
		return nil
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err.Error()
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err.Error()
	}
	return v
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
