package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/retain/pkg/config"
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/input"
	"github.com/go-drift/retain/pkg/property"
)

// newTestDemo lays the demo out on a 30x9 screen: a title row and two rows
// of tiles four cells high.
func newTestDemo(t *testing.T) *demo {
	t.Helper()
	d, err := newDemo(config.Default(), graphics.Size{Width: 30, Height: 9}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(d.close)
	return d
}

func tileCount(n *core.Node) int { return property.Value[int](n, tileCountProperty) }

func press(t *testing.T, d *demo, key input.Key) {
	t.Helper()
	_, err := d.input.KeyDown(input.KeyEvent{Key: key})
	require.NoError(t, err)
	_, err = d.input.KeyUp(input.KeyEvent{Key: key})
	require.NoError(t, err)
}

func TestDemoLayout(t *testing.T) {
	d := newTestDemo(t)
	a, f := d.tiles[0], d.tiles[5]
	assert.Equal(t, graphics.Offset{X: 1, Y: 2}, a.GlobalOffset())
	assert.Equal(t, graphics.Size{Width: 8, Height: 3}, a.RenderSize())
	assert.Equal(t, graphics.Offset{X: 21, Y: 6}, f.GlobalOffset())
}

func TestDemoStartsOnFirstTile(t *testing.T) {
	d := newTestDemo(t)
	assert.Same(t, d.tiles[0], d.focus.Focused())
}

func TestDemoKeysMoveFocusAndCount(t *testing.T) {
	d := newTestDemo(t)

	press(t, d, input.KeyTab)
	require.Same(t, d.tiles[1], d.focus.Focused())
	press(t, d, input.KeyEnter)
	press(t, d, input.KeySpace)
	assert.Equal(t, 2, tileCount(d.tiles[1]))

	press(t, d, input.KeyDown)
	require.Same(t, d.tiles[4], d.focus.Focused())
	press(t, d, input.KeyEnter)
	assert.Equal(t, 1, tileCount(d.tiles[4]))
	assert.Equal(t, 0, tileCount(d.tiles[0]))
}

func TestDemoClickFocusesAndCounts(t *testing.T) {
	d := newTestDemo(t)
	f := d.tiles[5]
	o, size := f.GlobalOffset(), f.RenderSize()
	at := input.MouseEvent{Position: graphics.Offset{X: o.X + size.Width/2, Y: o.Y + size.Height/2}, Button: input.MouseLeft}

	_, err := d.input.MouseMove(input.MouseEvent{Position: at.Position})
	require.NoError(t, err)
	_, err = d.input.MouseDown(at)
	require.NoError(t, err)
	assert.Same(t, f, d.focus.Focused())
	_, err = d.input.MouseUp(at)
	require.NoError(t, err)

	assert.Equal(t, 1, tileCount(f))
	assert.False(t, input.IsPressed(f))
}

func TestDemoQuitKeys(t *testing.T) {
	for _, ev := range []input.KeyEvent{{Key: input.KeyRune, Rune: 'q'}, {Key: input.KeyEscape}} {
		d := newTestDemo(t)
		quits := 0
		d.quit = func() { quits++ }
		handled, err := d.input.KeyDown(ev)
		require.NoError(t, err)
		assert.True(t, handled, ev.String())
		assert.Equal(t, 1, quits, ev.String())
	}
}

func TestDemoDraw(t *testing.T) {
	d := newTestDemo(t)
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(30, 9)

	d.draw(s)
	cells, w, _ := s.GetContents()
	row := func(y int) string {
		var b strings.Builder
		for x := 0; x < w; x++ {
			if r := cells[y*w+x].Runes; len(r) > 0 {
				b.WriteRune(r[0])
			}
		}
		return b.String()
	}

	assert.True(t, strings.HasPrefix(row(0), "retain demo:"), row(0))
	assert.Contains(t, row(2), "+------+  +------+  +------+")
	assert.Contains(t, row(3), "|a: 0  |")
	assert.Contains(t, row(7), "|f: 0  |")

	_, _, attrs := cells[3*w+1].Style.Decompose()
	assert.NotZero(t, attrs&tcell.AttrReverse, "focused tile is drawn reversed")
	_, _, attrs = cells[3*w+11].Style.Decompose()
	assert.Zero(t, attrs&tcell.AttrReverse)
}

// scriptedScreen queues keys once the demo initializes it.
type scriptedScreen struct {
	tcell.SimulationScreen
	keys []rune
}

func (s *scriptedScreen) Init() error {
	if err := s.SimulationScreen.Init(); err != nil {
		return err
	}
	s.SetSize(30, 9)
	for _, r := range s.keys {
		s.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	return nil
}

func withScreen(t *testing.T, s tcell.Screen) {
	t.Helper()
	prev := newScreen
	newScreen = func() (tcell.Screen, error) { return s, nil }
	t.Cleanup(func() { newScreen = prev })
}

func TestRunDemoQuits(t *testing.T) {
	withScreen(t, &scriptedScreen{SimulationScreen: tcell.NewSimulationScreen(""), keys: []rune{' ', 'q'}})
	logPath := filepath.Join(t.TempDir(), "demo.log")

	require.NoError(t, runDemo([]string{t.TempDir(), "--log", logPath}))
	_, err := os.Stat(logPath)
	assert.NoError(t, err)
}

func TestRunDemoRejectsBadConfig(t *testing.T) {
	opened := false
	prev := newScreen
	newScreen = func() (tcell.Screen, error) {
		opened = true
		return tcell.NewSimulationScreen(""), nil
	}
	t.Cleanup(func() { newScreen = prev })

	dir := t.TempDir()
	writeFile(t, dir, "limits:\n  max_layout_passes: -1\n")
	err := runDemo([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_layout_passes")
	assert.False(t, opened)

	assert.Error(t, runDemo([]string{"--log"}))
}
