// Package input defines the keyboard and mouse routed events and the
// Manager that device adapters feed.
//
// Adapters translate raw device events into Manager calls. The Manager picks
// the target (the focused element for keys, the hit-tested element for the
// mouse) and raises the paired preview/bubble events through an
// events.Router:
//
//	m := input.NewManager(root, router, input.WithKeyTarget(focusManager.Focused))
//	handled, err := m.KeyDown(input.KeyEvent{Key: input.KeyTab})
package input

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key identifies a keyboard key.
type Key uint16

const (
	// KeyNone is the zero value.
	KeyNone Key = iota
	// KeyRune is a printable character; the character is in KeyEvent.Rune.
	KeyRune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeySpace

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeyNone:      "None",
	KeyRune:      "Rune",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
	KeySpace:     "Space",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyF1:        "F1",
	KeyF2:        "F2",
	KeyF3:        "F3",
	KeyF4:        "F4",
	KeyF5:        "F5",
	KeyF6:        "F6",
	KeyF7:        "F7",
	KeyF8:        "F8",
	KeyF9:        "F9",
	KeyF10:       "F10",
	KeyF11:       "F11",
	KeyF12:       "F12",
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[strings.ToLower(name)] = k
	}
	m["esc"] = KeyEscape
	m["return"] = KeyEnter
	m["pgup"] = KeyPageUp
	m["pgdn"] = KeyPageDown
	return m
}()

// String returns the key name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// Modifier is a set of keyboard modifier flags.
type Modifier uint8

const (
	// ModNone means no modifiers.
	ModNone Modifier = 0
	// ModCtrl is the Ctrl modifier.
	ModCtrl Modifier = 1 << iota
	// ModAlt is the Alt modifier.
	ModAlt
	// ModShift is the Shift modifier.
	ModShift
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// String returns the modifiers joined with "+", or "None".
func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// KeyEvent is the payload of the keyboard routed events.
type KeyEvent struct {
	// Key is the key pressed. Printable characters use KeyRune.
	Key Key
	// Rune is the character for KeyRune events.
	Rune rune
	// Mod holds the active modifiers.
	Mod Modifier
}

// Is reports whether the event is key with exactly the given modifiers.
// With no modifiers given, any modifiers match.
func (e KeyEvent) Is(key Key, mods ...Modifier) bool {
	if e.Key != key {
		return false
	}
	if len(mods) == 0 {
		return true
	}
	var combined Modifier
	for _, m := range mods {
		combined |= m
	}
	return e.Mod == combined
}

// String returns the event in gesture notation, e.g. "Shift+Tab" or "j".
func (e KeyEvent) String() string {
	return KeyGesture{Key: e.Key, Rune: e.Rune, Mod: e.Mod}.String()
}

// KeyGesture is a key plus the exact modifiers that must accompany it.
// Gestures are how key bindings are configured.
type KeyGesture struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

// Matches reports whether e triggers the gesture.
func (g KeyGesture) Matches(e KeyEvent) bool {
	if g.Key != e.Key || g.Mod != e.Mod {
		return false
	}
	return g.Key != KeyRune || g.Rune == e.Rune
}

// String renders the gesture the way ParseKeyGesture reads it.
func (g KeyGesture) String() string {
	var b strings.Builder
	if g.Mod != ModNone {
		b.WriteString(g.Mod.String())
		b.WriteByte('+')
	}
	if g.Key == KeyRune {
		b.WriteRune(g.Rune)
	} else {
		b.WriteString(g.Key.String())
	}
	return b.String()
}

// ParseKeyGesture parses notation such as "Tab", "Shift+Tab", "Ctrl+n" or
// "j". Key names are case-insensitive; a single character is a rune key.
func ParseKeyGesture(s string) (KeyGesture, error) {
	trimmed := strings.TrimSpace(s)
	parts := strings.Split(trimmed, "+")
	// "Ctrl++" names the plus key.
	if strings.HasSuffix(trimmed, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}
	var g KeyGesture
	for i, part := range parts {
		if part == "" {
			return KeyGesture{}, fmt.Errorf("input: empty key in gesture %q", s)
		}
		if i < len(parts)-1 {
			switch strings.ToLower(part) {
			case "ctrl", "control":
				g.Mod |= ModCtrl
			case "alt", "meta":
				g.Mod |= ModAlt
			case "shift":
				g.Mod |= ModShift
			default:
				return KeyGesture{}, fmt.Errorf("input: unknown modifier %q in gesture %q", part, s)
			}
			continue
		}
		if utf8.RuneCountInString(part) == 1 {
			r, _ := utf8.DecodeRuneInString(part)
			if r == ' ' {
				g.Key = KeySpace
			} else {
				g.Key, g.Rune = KeyRune, r
			}
			continue
		}
		k, ok := keysByName[strings.ToLower(part)]
		if !ok || k == KeyNone || k == KeyRune {
			return KeyGesture{}, fmt.Errorf("input: unknown key %q in gesture %q", part, s)
		}
		g.Key = k
	}
	return g, nil
}

// MustParseKeyGesture is ParseKeyGesture for literals; it panics on error.
func MustParseKeyGesture(s string) KeyGesture {
	g, err := ParseKeyGesture(s)
	if err != nil {
		panic(err)
	}
	return g
}
