package property

import "strings"

// Options are metadata flags attached to a property at registration.
type Options uint8

const (
	// AffectsMeasure marks the owner measure-dirty when the value changes.
	AffectsMeasure Options = 1 << iota
	// AffectsArrange marks the owner arrange-dirty when the value changes.
	AffectsArrange
	// Inherits makes descendants without their own value see the nearest
	// ancestor's effective value.
	Inherits
	// CoerceToString converts non-string values with fmt.Sprint before storage.
	CoerceToString
	// AffectsRender asks the owner to repaint when the value changes.
	AffectsRender
)

// None is the empty option set.
const None Options = 0

// Has reports whether all bits of flag are set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

func (o Options) String() string {
	if o == None {
		return "none"
	}
	var parts []string
	names := []struct {
		flag Options
		name string
	}{
		{AffectsMeasure, "measure"},
		{AffectsArrange, "arrange"},
		{Inherits, "inherits"},
		{CoerceToString, "string"},
		{AffectsRender, "render"},
	}
	for _, n := range names {
		if o.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ValueSource identifies which precedence layer supplied an effective value.
// Higher values win.
type ValueSource int

const (
	// SourceDefault means the descriptor's default was used.
	SourceDefault ValueSource = iota
	// SourceInherited means the value came from an ancestor.
	SourceInherited
	// SourceStyle means a styling or markup loader set the value.
	SourceStyle
	// SourceLocal means application code set the value.
	SourceLocal
	// SourceAnimation means an animation override is active.
	SourceAnimation
)

func (s ValueSource) String() string {
	switch s {
	case SourceInherited:
		return "inherited"
	case SourceStyle:
		return "style"
	case SourceLocal:
		return "local"
	case SourceAnimation:
		return "animation"
	default:
		return "default"
	}
}
