package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GridUnit is the sizing mode of a grid track.
type GridUnit int

const (
	// UnitPixel is a fixed size in DIPs.
	UnitPixel GridUnit = iota
	// UnitAuto sizes the track to its content.
	UnitAuto
	// UnitStar takes a weighted share of the space left by other tracks.
	UnitStar
)

// GridLength is the declared size of a row or column.
type GridLength struct {
	Value float64
	Unit  GridUnit
}

// Pixels returns a fixed length.
func Pixels(v float64) GridLength { return GridLength{Value: v, Unit: UnitPixel} }

// Auto returns a content-sized length.
func Auto() GridLength { return GridLength{Value: 1, Unit: UnitAuto} }

// Star returns a proportional length with the given weight.
func Star(weight float64) GridLength { return GridLength{Value: weight, Unit: UnitStar} }

// IsAuto reports whether l is content-sized.
func (l GridLength) IsAuto() bool { return l.Unit == UnitAuto }

// IsStar reports whether l is proportional.
func (l GridLength) IsStar() bool { return l.Unit == UnitStar }

// String formats l the way ParseGridLength reads it.
func (l GridLength) String() string {
	switch l.Unit {
	case UnitAuto:
		return "Auto"
	case UnitStar:
		if l.Value == 1 {
			return "*"
		}
		return strconv.FormatFloat(l.Value, 'g', -1, 64) + "*"
	default:
		return strconv.FormatFloat(l.Value, 'g', -1, 64)
	}
}

// ParseGridLength reads "Auto", "*", "2.5*" or a plain number.
func ParseGridLength(s string) (GridLength, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "auto"):
		return Auto(), nil
	case s == "*":
		return Star(1), nil
	case strings.HasSuffix(s, "*"):
		w, err := strconv.ParseFloat(strings.TrimSuffix(s, "*"), 64)
		if err != nil || w < 0 || math.IsInf(w, 0) {
			return GridLength{}, fmt.Errorf("layout: invalid star length %q", s)
		}
		return Star(w), nil
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) {
			return GridLength{}, fmt.Errorf("layout: invalid grid length %q", s)
		}
		return Pixels(v), nil
	}
}

// Definition is a grid row or column.
type Definition struct {
	Length GridLength
	// Min is the lower bound of the track size.
	Min float64
	// Max is the upper bound of the track size. Zero means unbounded.
	Max float64

	kind     GridUnit // effective unit for the current measure
	measured float64
	content  float64
	actual   float64
	offset   float64
}

// NewDefinition creates an unbounded track.
func NewDefinition(l GridLength) *Definition {
	return &Definition{Length: l}
}

// Definitions creates one unbounded track per length.
func Definitions(lengths ...GridLength) []*Definition {
	defs := make([]*Definition, len(lengths))
	for i, l := range lengths {
		defs[i] = NewDefinition(l)
	}
	return defs
}

func (d *Definition) maxSize() float64 {
	if d.Max <= 0 {
		return math.Inf(1)
	}
	return math.Max(d.Max, d.Min)
}

// MeasuredSize is the size computed for the track during measure. Auto and
// unresolved star tracks report +Inf.
func (d *Definition) MeasuredSize() float64 { return d.measured }

// ContentSize is the largest content size recorded for the track.
func (d *Definition) ContentSize() float64 { return d.content }

// FinalDimension is the track size after measure: the content size for
// Auto tracks, the measured size otherwise.
func (d *Definition) FinalDimension() float64 {
	if d.kind == UnitAuto {
		return d.content
	}
	return d.measured
}

// ActualSize is the track size after arrange.
func (d *Definition) ActualSize() float64 { return d.actual }

// Offset is the track start after arrange.
func (d *Definition) Offset() float64 { return d.offset }
