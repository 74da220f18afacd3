// Package testing provides an integration test harness for retain trees.
//
// # Quick Start
//
// Build a tree, host it in a Tester, and drive it through the same input
// and focus managers an application would use:
//
//	func TestSaveButton(t *testing.T) {
//	    root := buildForm()
//	    tester := retaintest.NewTesterWithT(t, root)
//
//	    // Find nodes
//	    save := tester.Find(retaintest.ByName("save")).First()
//
//	    // Simulate input
//	    tester.Click(retaintest.ByName("save"))
//	    tester.PressKey("Tab")
//	    tester.Pump()
//
//	    // Assert state
//	    if !focus.IsFocused(save) {
//	        t.Error("expected save to keep focus")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare the arranged tree:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/form.snapshot.json")
//
// Update snapshots with:
//
//	RETAIN_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Configuration
//
// WithConfig applies a retain.yaml configuration, so key bindings and
// limits under test match the ones shipped:
//
//	cfg, _ := config.LoadOptional(".")
//	tester := retaintest.NewTesterWithT(t, root, retaintest.WithConfig(cfg))
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import retaintest "github.com/go-drift/retain/pkg/testing"
package testing
