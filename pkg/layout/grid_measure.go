package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/graphics"
)

func (g *Grid) MeasureOverride(n *core.Node, available graphics.Size) graphics.Size {
	g.ensureCells(n)
	cols, rows := g.Columns(), g.Rows()
	// On an unbounded axis there is nothing to share, so stars size to
	// content like Auto.
	initDefinitions(cols, math.IsInf(available.Width, 1))
	initDefinitions(rows, math.IsInf(available.Height, 1))
	g.classify(cols, rows)

	starCols, starRows := hasKind(cols, UnitStar), hasKind(rows, UnitStar)

	g.measureGroup(0, cols, rows, false, false)
	switch {
	case !g.prioOneInAutoRows:
		// Star rows do not depend on column widths: resolve rows first.
		if starRows {
			resolveStars(rows, available.Height)
		}
		g.measureGroup(2, cols, rows, false, false)
		if starCols {
			resolveStars(cols, available.Width)
		}
		g.measureGroup(1, cols, rows, false, false)
	case g.priorityCount[2] == 0:
		if starCols {
			resolveStars(cols, available.Width)
		}
		g.measureGroup(1, cols, rows, false, false)
		if starRows {
			resolveStars(rows, available.Height)
		}
	default:
		// Auto rows need star column widths, star columns need auto
		// column widths from cells in star rows. Measure those cells with
		// unbounded height for their width, then settle the rows, then
		// measure them again for their height only.
		g.measureGroup(2, cols, rows, false, true)
		if starCols {
			resolveStars(cols, available.Width)
		}
		g.measureGroup(1, cols, rows, false, false)
		if starRows {
			resolveStars(rows, available.Height)
		}
		g.measureGroup(2, cols, rows, true, false)
	}
	g.measureGroup(3, cols, rows, false, false)

	return graphics.Size{Width: desiredSize(cols), Height: desiredSize(rows)}
}

// initDefinitions resets per-measure track state.
func initDefinitions(defs []*Definition, starAsAuto bool) {
	for _, d := range defs {
		d.kind = d.Length.Unit
		if d.kind == UnitStar && starAsAuto {
			d.kind = UnitAuto
		}
		switch d.kind {
		case UnitPixel:
			d.measured = math.Max(d.Min, math.Min(d.Length.Value, d.maxSize()))
			d.content = d.measured
		default:
			d.measured = d.maxSize()
			d.content = d.Min
		}
	}
}

func hasKind(defs []*Definition, kind GridUnit) bool {
	for _, d := range defs {
		if d.kind == kind {
			return true
		}
	}
	return false
}

type spanKey struct {
	columns bool
	start   int
	count   int
}

// measureGroup measures the cells of one priority and records their
// desired sizes into the tracks. Single-track cells raise the track's
// content size; wider spans are collected and distributed afterwards.
func (g *Grid) measureGroup(priority int, cols, rows []*Definition, ignoreWidth, unboundedHeight bool) {
	if g.priorityCount[priority] == 0 {
		return
	}
	spans := make(map[spanKey]float64)
	for i := range g.cells {
		c := &g.cells[i]
		if c.priority != priority {
			continue
		}
		avail := graphics.Size{
			Width:  cellExtent(cols[c.column:c.column+c.colSpan], c.flags&autoColumns != 0 && c.flags&starColumns == 0),
			Height: cellExtent(rows[c.row:c.row+c.rowSpan], c.flags&autoRows != 0 && c.flags&starRows == 0),
		}
		if unboundedHeight {
			avail.Height = graphics.Inf
		}
		desired := c.node.Measure(avail)

		if !ignoreWidth {
			if c.colSpan == 1 {
				recordContent(cols[c.column], desired.Width)
			} else {
				k := spanKey{columns: true, start: c.column, count: c.colSpan}
				spans[k] = math.Max(spans[k], desired.Width)
			}
		}
		if c.rowSpan == 1 {
			recordContent(rows[c.row], desired.Height)
		} else {
			k := spanKey{start: c.row, count: c.rowSpan}
			spans[k] = math.Max(spans[k], desired.Height)
		}
	}

	keys := make([]spanKey, 0, len(spans))
	for k := range spans {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b spanKey) int {
		if a.columns != b.columns {
			if a.columns {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.start, b.start), cmp.Compare(a.count, b.count))
	})
	for _, k := range keys {
		defs := rows
		if k.columns {
			defs = cols
		}
		distributeSpan(defs[k.start:k.start+k.count], spans[k])
	}
}

// cellExtent is the space a cell may use along one axis. Cells in auto
// tracks without stars measure unbounded.
func cellExtent(defs []*Definition, unbounded bool) float64 {
	if unbounded {
		return graphics.Inf
	}
	size := 0.0
	for _, d := range defs {
		if d.kind == UnitAuto {
			size += d.content
		} else {
			size += d.measured
		}
	}
	return size
}

// recordContent raises a track's content size. Pixel tracks keep their
// declared size.
func recordContent(d *Definition, size float64) {
	if d.kind == UnitPixel {
		return
	}
	d.content = math.Max(d.content, math.Min(size, d.maxSize()))
}

// distributeSpan grows the Auto tracks under a multi-track cell so that
// together with the other spanned tracks they cover size. The excess is
// shared in proportion to the Auto tracks' current content, equally when
// they are all empty. Pixel and Star tracks never grow here.
func distributeSpan(defs []*Definition, size float64) {
	current := 0.0
	var autos []*Definition
	for _, d := range defs {
		switch d.kind {
		case UnitAuto:
			current += d.content
			autos = append(autos, d)
		default:
			if !math.IsInf(d.measured, 1) {
				current += d.measured
			}
		}
	}
	excess := size - current
	if excess <= 0 || len(autos) == 0 {
		return
	}
	total := 0.0
	for _, d := range autos {
		total += d.content
	}
	for _, d := range autos {
		share := excess / float64(len(autos))
		if total > 0 {
			share = excess * d.content / total
		}
		d.content = math.Min(d.content+share, d.maxSize())
	}
}

// resolveStars sets the measured size of star tracks from the space left by
// the other tracks.
func resolveStars(defs []*Definition, available float64) {
	taken := 0.0
	var stars []*Definition
	for _, d := range defs {
		switch d.kind {
		case UnitAuto:
			taken += d.content
		case UnitPixel:
			taken += d.measured
		case UnitStar:
			stars = append(stars, d)
		}
	}
	shareStars(stars, available-taken, func(d *Definition, size float64) { d.measured = size })
}

// shareStars splits space among star tracks by weight: unit = space / Σw,
// never below zero. Each round sizes the unresolved tracks at the current
// unit and sums how far their Min/Max bounds move them. A positive total
// fixes every floored track at its Min, a negative one every capped track
// at its Max; fixed tracks leave the pool with their size and the rest is
// shared again. Zero-weight tracks get their Min.
func shareStars(stars []*Definition, space float64, set func(*Definition, float64)) {
	pool := make([]*Definition, 0, len(stars))
	for _, d := range stars {
		if w := d.Length.Value; w <= 0 || math.IsNaN(w) {
			set(d, d.Min)
			space -= d.Min
			continue
		}
		pool = append(pool, d)
	}

	for len(pool) > 0 {
		weights := 0.0
		for _, d := range pool {
			weights += d.Length.Value
		}
		unit := math.Max(space, 0) / weights

		violation := 0.0
		for _, d := range pool {
			size := unit * d.Length.Value
			violation += clampTrack(d, size) - size
		}
		if violation == 0 {
			for _, d := range pool {
				set(d, unit*d.Length.Value)
			}
			return
		}

		rest := make([]*Definition, 0, len(pool))
		for _, d := range pool {
			size := unit * d.Length.Value
			clamped := clampTrack(d, size)
			if violation > 0 && clamped > size || violation < 0 && clamped < size {
				set(d, clamped)
				space -= clamped
				continue
			}
			rest = append(rest, d)
		}
		pool = rest
	}
}

func clampTrack(d *Definition, size float64) float64 {
	return math.Max(d.Min, math.Min(size, d.maxSize()))
}

// desiredSize sums the tracks: final dimension for Pixel and Auto, the
// content (at least Min) for Star.
func desiredSize(defs []*Definition) float64 {
	size := 0.0
	for _, d := range defs {
		if d.kind == UnitStar {
			size += math.Max(d.content, d.Min)
		} else {
			size += d.FinalDimension()
		}
	}
	return size
}

func (g *Grid) ArrangeOverride(n *core.Node, final graphics.Size) graphics.Size {
	g.ensureCells(n)
	cols, rows := g.Columns(), g.Rows()
	arrangeDefinitions(cols, final.Width)
	arrangeDefinitions(rows, final.Height)

	for _, c := range g.cells {
		x := cols[c.column].offset
		y := rows[c.row].offset
		w := spanSize(cols[c.column : c.column+c.colSpan])
		h := spanSize(rows[c.row : c.row+c.rowSpan])
		c.node.Arrange(graphics.RectFromLTWH(x, y, w, h))
	}
	return final
}

// arrangeDefinitions settles the track sizes for the final extent: Pixel
// and Auto tracks keep their measured size, star tracks share the rest.
// Tracks are then positioned one after another.
func arrangeDefinitions(defs []*Definition, extent float64) {
	taken := 0.0
	var stars []*Definition
	for _, d := range defs {
		switch d.Length.Unit {
		case UnitPixel:
			d.actual = d.measured
		case UnitAuto:
			d.actual = math.Max(d.Min, math.Min(d.content, d.maxSize()))
		case UnitStar:
			stars = append(stars, d)
			continue
		}
		taken += d.actual
	}
	shareStars(stars, extent-taken, func(d *Definition, size float64) { d.actual = size })

	pos := 0.0
	for _, d := range defs {
		d.offset = pos
		pos += d.actual
	}
}

func spanSize(defs []*Definition) float64 {
	size := 0.0
	for _, d := range defs {
		size += d.actual
	}
	return size
}
