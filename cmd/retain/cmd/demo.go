package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/retain/pkg/config"
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/focus"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/input"
	"github.com/go-drift/retain/pkg/input/tcellinput"
	"github.com/go-drift/retain/pkg/layout"
	"github.com/go-drift/retain/pkg/property"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run the terminal focus demo",
		Long: `Run an interactive demo in the terminal.

The screen holds a grid of tiles laid out with star-sized rows and
columns. Focus moves with the keys bound in retain.yaml (Tab, Shift+Tab
and the arrows by default); Enter, Space or a click counts on a tile.
Press q or Escape to quit.

Flags:
  --log FILE   Write logs to FILE (the terminal is busy drawing)`,
		Usage: "retain demo [dir] [--log FILE]",
		Run:   runDemo,
	})
}

// newScreen is replaced in tests.
var newScreen = tcell.NewScreen

const (
	tileType  = "Tile"
	titleType = "Title"

	demoTitle = "retain demo: Tab/arrows move, Enter counts, q quits"
)

var tileCountProperty = property.Register[int]("Count", tileType, property.Metadata{
	Options: property.AffectsRender,
})

// demo is the node tree and managers behind the terminal demo.
type demo struct {
	root  *core.Node
	tiles []*core.Node
	host  *core.Host
	input *input.Manager
	focus *focus.Manager
	quit  func()
}

func runDemo(args []string) error {
	dir := "."
	logPath := ""
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--log":
			if i+1 >= len(args) {
				return fmt.Errorf("--log requires a file path")
			}
			logPath = args[i+1]
			i++
		default:
			dir = arg
		}
	}

	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return err
	}
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := cfg.Logging.NewLogger(logOut)
	if err != nil {
		return err
	}

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	w, h := screen.Size()
	d, err := newDemo(cfg, graphics.Size{Width: float64(w), Height: float64(h)}, logger)
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	d.quit = cancel

	a := tcellinput.New(d.input,
		tcellinput.WithHost(d.host),
		tcellinput.WithLogger(logger),
		tcellinput.WithFrameHook(func(core.Frame) { d.draw(screen) }),
	)
	return a.Run(ctx, screen)
}

// newDemo builds a title row over two rows of three tiles and focuses the
// first tile.
func newDemo(cfg *config.Config, size graphics.Size, logger *slog.Logger) (*demo, error) {
	d := &demo{quit: func() {}}

	grid := layout.NewGrid().
		WithColumns(layout.Star(1), layout.Star(1), layout.Star(1)).
		WithRows(layout.Pixels(1), layout.Star(1), layout.Star(1))
	d.root = core.NewNode("Panel", "root")
	d.root.SetLayout(grid)
	focus.SetTabNavigation(d.root, focus.Cycle)
	focus.SetDirectionalNavigation(d.root, focus.Cycle)

	title := core.NewNode(titleType, "title")
	layout.SetCell(title, 0, 0)
	layout.SetColumnSpan(title, 3)
	d.root.AddChild(title)

	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		tile := core.NewNode(tileType, name)
		tile.SetFocusable(true)
		tile.SetMargin(graphics.Thickness{Left: 1, Top: 1, Right: 1, Bottom: 0})
		layout.SetCell(tile, 1+i/3, i%3)
		d.root.AddChild(tile)
		d.tiles = append(d.tiles, tile)
	}

	focusOpts, err := focus.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	hostOpts := append(cfg.HostOptions(), core.WithLogger(logger), core.WithLayoutRounding(true))
	d.host = core.NewHost(d.root, size, hostOpts...)

	registry := events.NewRegistry()
	routerOpts := append(cfg.RouterOptions(), events.WithRegistry(registry), events.WithLogger(logger))
	router := events.NewRouter(routerOpts...)
	d.input = input.NewManager(d.root, router, input.WithLogger(logger))
	d.focus = focus.NewManager(d.root, router, append(focusOpts, focus.WithLogger(logger))...)
	d.registerTile(registry)
	d.focus.Bind(d.input)

	events.AddHandler(d.root, input.KeyDownEvent, func(_ events.Target, e *events.EventData) {
		key, _ := events.PayloadAs[input.KeyEvent](e)
		if key.Is(input.KeyEscape, input.ModNone) || (key.Key == input.KeyRune && key.Rune == 'q') {
			e.Handled = true
			d.quit()
		}
	})

	d.host.Pump()
	if _, err := d.focus.Move(focus.First); err != nil {
		return nil, err
	}
	return d, nil
}

// registerTile installs the tile class handlers: pressing a tile focuses
// it, and a click or Enter/Space counts.
func (d *demo) registerTile(r *events.Registry) {
	r.RegisterClassHandler(tileType, input.MouseUpEvent, func(sender events.Target, e *events.EventData) {
		n := sender.(*core.Node)
		if input.IsPressed(n) && input.IsMouseOver(n) {
			count(n)
			e.Handled = true
		}
	}, true)
	input.RegisterPressBehavior(r, tileType)
	r.RegisterClassHandler(tileType, input.MouseDownEvent, func(sender events.Target, e *events.EventData) {
		if _, err := d.focus.Focus(sender.(*core.Node)); err != nil {
			d.host.Logger().Error("focus on press failed", "error", err)
		}
	}, true)
	r.RegisterClassHandler(tileType, input.KeyDownEvent, func(sender events.Target, e *events.EventData) {
		key, _ := events.PayloadAs[input.KeyEvent](e)
		if key.Is(input.KeyEnter, input.ModNone) || key.Is(input.KeySpace, input.ModNone) {
			count(sender.(*core.Node))
			e.Handled = true
		}
	}, false)
}

func count(n *core.Node) {
	_ = n.SetValue(tileCountProperty, property.Value[int](n, tileCountProperty)+1)
}

func (d *demo) close() {
	d.focus.Unbind()
	d.host.Detach()
}

// draw paints the arranged tree, one DIP per cell.
func (d *demo) draw(s tcell.Screen) {
	s.Clear()
	d.root.Walk(func(n *core.Node) bool {
		if !n.IsVisible() {
			return false
		}
		switch n.TypeName() {
		case titleType:
			o := n.GlobalOffset()
			drawText(s, cell(o.X), cell(o.Y), cell(n.RenderSize().Width), tcell.StyleDefault.Bold(true), demoTitle)
		case tileType:
			drawTile(s, n)
		}
		return true
	})
	s.Show()
}

func drawTile(s tcell.Screen, n *core.Node) {
	o := n.GlobalOffset()
	size := n.RenderSize()
	x0, y0 := cell(o.X), cell(o.Y)
	x1, y1 := cell(o.X+size.Width)-1, cell(o.Y+size.Height)-1
	if x1 <= x0 || y1 <= y0 {
		return
	}

	style := tcell.StyleDefault
	switch {
	case focus.IsFocused(n):
		style = style.Reverse(true)
	case input.IsMouseOver(n):
		style = style.Underline(true)
	}
	if input.IsPressed(n) {
		style = style.Bold(true)
	}

	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			r := ' '
			switch {
			case (x == x0 || x == x1) && (y == y0 || y == y1):
				r = '+'
			case y == y0 || y == y1:
				r = '-'
			case x == x0 || x == x1:
				r = '|'
			}
			s.SetContent(x, y, r, nil, style)
		}
	}
	label := fmt.Sprintf("%s: %d", n.Name(), property.Value[int](n, tileCountProperty))
	drawText(s, x0+1, y0+(y1-y0)/2, x1-x0-1, style, label)
}

func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		if i >= width {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}

func cell(v float64) int { return int(math.Round(v)) }
