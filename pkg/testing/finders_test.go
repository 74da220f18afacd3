package testing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/testing/internal/testbed"
)

func TestByName(t *testing.T) {
	tester := counters(t)

	n := tester.Find(ByName("two")).First()
	if testbed.Count(n) != 5 {
		t.Errorf("expected count 5, got %d", testbed.Count(n))
	}
	if tester.Find(ByName("four")).Exists() {
		t.Error("should not find four")
	}
}

func TestByType(t *testing.T) {
	tester := counters(t)

	result := tester.Find(ByType(testbed.CounterType))
	if diff := cmp.Diff([]string{"one", "two", "three"}, result.Names()); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}
	if result.Count() != 3 {
		t.Errorf("expected 3 counters, got %d", result.Count())
	}
	if result.At(2).Name() != "three" {
		t.Errorf("expected At(2) to be three, got %s", result.At(2).Name())
	}
}

func TestByPropertyAndFocused(t *testing.T) {
	tester := counters(t)

	if got := tester.Find(ByProperty(testbed.CountProperty, 5)).Names(); !cmp.Equal(got, []string{"two"}) {
		t.Errorf("expected [two], got %v", got)
	}
	if tester.Find(Focused()).Exists() {
		t.Error("expected no focused node")
	}
	if err := tester.FocusOn(ByName("three")); err != nil {
		t.Fatal(err)
	}
	if got := tester.Find(Focused()).First().Name(); got != "three" {
		t.Errorf("expected three focused, got %s", got)
	}
}

func TestByPredicate(t *testing.T) {
	tester := counters(t)

	result := tester.Find(ByPredicate(func(n *core.Node) bool {
		return testbed.Count(n) == 0 && n.TypeName() == testbed.CounterType
	}))
	if diff := cmp.Diff([]string{"one", "three"}, result.Names()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDescendantAndAncestor(t *testing.T) {
	inner := testbed.Column("inner", testbed.NewCounter("nested", 0))
	root := testbed.Column("root", testbed.NewCounter("top", 0), inner)
	tester := NewTesterWithT(t, root)

	got := tester.Find(Descendant(ByName("inner"), ByType(testbed.CounterType))).Names()
	if diff := cmp.Diff([]string{"nested"}, got); diff != "" {
		t.Errorf("Descendant mismatch (-want +got):\n%s", diff)
	}
	if tester.Find(Descendant(ByName("inner"), ByName("inner"))).Exists() {
		t.Error("a node is not its own descendant")
	}

	got = tester.Find(Ancestor(ByName("nested"), ByType("Column"))).Names()
	if diff := cmp.Diff([]string{"root", "inner"}, got); diff != "" {
		t.Errorf("Ancestor mismatch (-want +got):\n%s", diff)
	}
}

func TestFinderResult_FirstOrNil(t *testing.T) {
	tester := counters(t)

	if tester.Find(ByName("one")).FirstOrNil() == nil {
		t.Error("FirstOrNil should return the node for an existing name")
	}
	if tester.Find(ByName("missing")).FirstOrNil() != nil {
		t.Error("FirstOrNil should return nil for a missing name")
	}
}

func TestFinderResult_First_PanicsOnEmpty(t *testing.T) {
	tester := counters(t)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected First() to panic on empty result")
		}
	}()
	tester.Find(ByName("missing")).First()
}

func TestFinderResult_At_PanicsOutOfRange(t *testing.T) {
	tester := counters(t)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected At() to panic out of range")
		}
	}()
	tester.Find(ByType(testbed.CounterType)).At(3)
}
