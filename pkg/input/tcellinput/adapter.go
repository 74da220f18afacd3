// Package tcellinput feeds terminal input read through tcell into an
// input.Manager. Terminal cells map to device-independent pixels through a
// configurable cell size.
package tcellinput

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/graphics"
	"github.com/go-drift/retain/pkg/input"
)

// trackedButtons are the buttons translated to MouseDown/MouseUp; wheel
// motion is ignored.
const trackedButtons = tcell.Button1 | tcell.Button2 | tcell.Button3

var buttonMap = []struct {
	mask   tcell.ButtonMask
	button input.MouseButton
}{
	{tcell.Button1, input.MouseLeft},
	{tcell.Button3, input.MouseMiddle},
	{tcell.Button2, input.MouseRight},
}

var keyMap = map[tcell.Key]input.Key{
	tcell.KeyEnter:      input.KeyEnter,
	tcell.KeyTab:        input.KeyTab,
	tcell.KeyBackspace:  input.KeyBackspace,
	tcell.KeyBackspace2: input.KeyBackspace,
	tcell.KeyDelete:     input.KeyDelete,
	tcell.KeyInsert:     input.KeyInsert,
	tcell.KeyEscape:     input.KeyEscape,
	tcell.KeyUp:         input.KeyUp,
	tcell.KeyDown:       input.KeyDown,
	tcell.KeyLeft:       input.KeyLeft,
	tcell.KeyRight:      input.KeyRight,
	tcell.KeyHome:       input.KeyHome,
	tcell.KeyEnd:        input.KeyEnd,
	tcell.KeyPgUp:       input.KeyPageUp,
	tcell.KeyPgDn:       input.KeyPageDown,
	tcell.KeyF1:         input.KeyF1,
	tcell.KeyF2:         input.KeyF2,
	tcell.KeyF3:         input.KeyF3,
	tcell.KeyF4:         input.KeyF4,
	tcell.KeyF5:         input.KeyF5,
	tcell.KeyF6:         input.KeyF6,
	tcell.KeyF7:         input.KeyF7,
	tcell.KeyF8:         input.KeyF8,
	tcell.KeyF9:         input.KeyF9,
	tcell.KeyF10:        input.KeyF10,
	tcell.KeyF11:        input.KeyF11,
	tcell.KeyF12:        input.KeyF12,
}

// Adapter translates tcell events into input.Manager calls.
type Adapter struct {
	manager *input.Manager
	host    *core.Host
	cell    graphics.Size
	logger  *slog.Logger
	onFrame func(core.Frame)

	buttons  tcell.ButtonMask
	position graphics.Offset
	moved    bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHost makes resize events resize h and Run pump a frame after each
// event.
func WithHost(h *core.Host) Option {
	return func(a *Adapter) { a.host = h }
}

// WithCellSize sets the size of one terminal cell in DIPs. The default is
// 1x1.
func WithCellSize(width, height float64) Option {
	return func(a *Adapter) {
		if width > 0 && height > 0 {
			a.cell = graphics.Size{Width: width, Height: height}
		}
	}
}

// WithFrameHook makes Run call fn after every frame it pumps. It has no
// effect without WithHost.
func WithFrameHook(fn func(core.Frame)) Option {
	return func(a *Adapter) { a.onFrame = fn }
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an adapter feeding m.
func New(m *input.Manager, opts ...Option) *Adapter {
	a := &Adapter{
		manager: m,
		cell:    graphics.Size{Width: 1, Height: 1},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleEvent translates one event and reports whether a handler handled
// it. Terminals only report presses, so a key event raises KeyDown followed
// by KeyUp.
func (a *Adapter) HandleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		ke, ok := TranslateKey(ev)
		if !ok {
			a.logger.Debug("unmapped key", "name", ev.Name())
			return false, nil
		}
		handled, err := a.manager.KeyDown(ke)
		if err != nil {
			return handled, err
		}
		_, err = a.manager.KeyUp(ke)
		return handled, err
	case *tcell.EventMouse:
		return a.handleMouse(ev)
	case *tcell.EventResize:
		if a.host != nil {
			w, h := ev.Size()
			a.host.Resize(graphics.Size{Width: float64(w) * a.cell.Width, Height: float64(h) * a.cell.Height})
		}
	}
	return false, nil
}

func (a *Adapter) handleMouse(ev *tcell.EventMouse) (bool, error) {
	x, y := ev.Position()
	pos := graphics.Offset{X: float64(x) * a.cell.Width, Y: float64(y) * a.cell.Height}
	mod := translateMod(ev.Modifiers())
	buttons := ev.Buttons() & trackedButtons
	handled := false

	if !a.moved || pos != a.position {
		a.moved = true
		a.position = pos
		h, err := a.manager.MouseMove(input.MouseEvent{Position: pos, Mod: mod})
		if err != nil {
			return h, err
		}
		handled = handled || h
	}
	for _, b := range buttonMap {
		was, is := a.buttons&b.mask != 0, buttons&b.mask != 0
		if was == is {
			continue
		}
		me := input.MouseEvent{Position: pos, Button: b.button, Mod: mod}
		var (
			h   bool
			err error
		)
		if is {
			h, err = a.manager.MouseDown(me)
		} else {
			h, err = a.manager.MouseUp(me)
		}
		if err != nil {
			return handled, err
		}
		handled = handled || h
	}
	a.buttons = buttons
	return handled, nil
}

// Run reads events from s until ctx is done or the screen is finalized,
// handling each on the calling goroutine. With a host attached a frame is
// pumped after every event. Handler errors are logged and handler panics
// reported to the errors handler; neither stops the loop.
func (a *Adapter) Run(ctx context.Context, s tcell.Screen) error {
	evs := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(evs)
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case evs <- ev:
			case <-done:
				return
			}
		}
	}()

	a.pump()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			a.dispatch(ev)
			if a.pump() {
				if err := a.manager.Refresh(); err != nil {
					a.logger.Error("hover refresh failed", "error", err)
				}
			}
		}
	}
}

// dispatch handles one event for Run. A panicking handler is reported and
// the loop goes on; fatal panics are re-raised.
func (a *Adapter) dispatch(ev tcell.Event) {
	defer errors.Recover("tcellinput.Adapter.Run")
	if _, err := a.HandleEvent(ev); err != nil {
		a.logger.Error("input dispatch failed", "error", err)
	}
}

func (a *Adapter) pump() bool {
	if a.host == nil {
		return false
	}
	f := a.host.Pump()
	if a.onFrame != nil {
		a.onFrame(f)
	}
	return true
}

// TranslateKey converts a tcell key event. Control letters become the
// lowercase rune with ModCtrl and Backtab becomes Shift+Tab. It reports
// false for keys with no counterpart.
func TranslateKey(ev *tcell.EventKey) (input.KeyEvent, bool) {
	ke := input.KeyEvent{Mod: translateMod(ev.Modifiers())}
	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		if r := ev.Rune(); r == ' ' {
			ke.Key = input.KeySpace
		} else {
			ke.Key, ke.Rune = input.KeyRune, r
		}
	case k == tcell.KeyBacktab:
		ke.Key = input.KeyTab
		ke.Mod |= input.ModShift
	default:
		if mapped, ok := keyMap[k]; ok {
			ke.Key = mapped
			break
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			ke.Key, ke.Rune = input.KeyRune, rune('a'+int(k-tcell.KeyCtrlA))
			ke.Mod |= input.ModCtrl
			break
		}
		return input.KeyEvent{}, false
	}
	return ke, true
}

func translateMod(m tcell.ModMask) input.Modifier {
	var mod input.Modifier
	if m&tcell.ModShift != 0 {
		mod |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mod |= input.ModCtrl
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		mod |= input.ModAlt
	}
	return mod
}
