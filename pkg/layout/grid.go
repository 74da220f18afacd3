package layout

import (
	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/property"
)

// Grid cell placement attached to children.
var (
	GridRowProperty        = cellProperty("Row", 0)
	GridColumnProperty     = cellProperty("Column", 0)
	GridRowSpanProperty    = cellProperty("RowSpan", 1)
	GridColumnSpanProperty = cellProperty("ColumnSpan", 1)
)

func cellProperty(name string, lowest int) *property.Descriptor {
	return property.Register[int](name, "Grid", property.Metadata{
		Default: lowest,
		Changed: invalidateParent,
		Coerce: func(_ property.Owner, v any) any {
			return max(v.(int), lowest)
		},
	})
}

// SetRow places n in row r.
func SetRow(n *core.Node, r int) { _ = n.SetValue(GridRowProperty, r) }

// SetColumn places n in column c.
func SetColumn(n *core.Node, c int) { _ = n.SetValue(GridColumnProperty, c) }

// SetRowSpan makes n span span rows.
func SetRowSpan(n *core.Node, span int) { _ = n.SetValue(GridRowSpanProperty, span) }

// SetColumnSpan makes n span span columns.
func SetColumnSpan(n *core.Node, span int) { _ = n.SetValue(GridColumnSpanProperty, span) }

// SetCell places n at (row, column).
func SetCell(n *core.Node, row, column int) {
	SetRow(n, row)
	SetColumn(n, column)
}

type cellFlags uint8

const (
	autoRows cellFlags = 1 << iota
	starRows
	autoColumns
	starColumns
)

// cell is a child's placement, derived from its attached properties.
type cell struct {
	node     *core.Node
	row      int
	column   int
	rowSpan  int
	colSpan  int
	flags    cellFlags
	priority int
}

// Grid arranges children in rows and columns of Pixel, Auto or Star size.
// A grid without row (or column) definitions has one implicit star track.
type Grid struct {
	node    *core.Node
	columns []*Definition
	rows    []*Definition

	implicitColumns []*Definition
	implicitRows    []*Definition

	cells      []cell
	built      bool
	builtFor   uint64
	spanErrors []error

	// set by classify for the current measure
	priorityCount     [4]int
	prioOneInAutoRows bool
}

// NewGrid creates a grid with no definitions.
func NewGrid() *Grid {
	return &Grid{
		implicitColumns: Definitions(Star(1)),
		implicitRows:    Definitions(Star(1)),
	}
}

// WithColumns replaces the column definitions and returns g.
func (g *Grid) WithColumns(lengths ...GridLength) *Grid {
	g.SetColumns(Definitions(lengths...)...)
	return g
}

// WithRows replaces the row definitions and returns g.
func (g *Grid) WithRows(lengths ...GridLength) *Grid {
	g.SetRows(Definitions(lengths...)...)
	return g
}

// SetColumns replaces the column definitions.
func (g *Grid) SetColumns(defs ...*Definition) {
	g.columns = defs
	g.invalidate()
}

// SetRows replaces the row definitions.
func (g *Grid) SetRows(defs ...*Definition) {
	g.rows = defs
	g.invalidate()
}

// Columns returns the effective column definitions.
func (g *Grid) Columns() []*Definition {
	if len(g.columns) == 0 {
		return g.implicitColumns
	}
	return g.columns
}

// Rows returns the effective row definitions.
func (g *Grid) Rows() []*Definition {
	if len(g.rows) == 0 {
		return g.implicitRows
	}
	return g.rows
}

// SpanErrors returns the placement errors found when the cells were last
// rebuilt.
func (g *Grid) SpanErrors() []error { return g.spanErrors }

// Attach implements core.Attacher.
func (g *Grid) Attach(n *core.Node) { g.node = n }

// Detach implements core.Attacher.
func (g *Grid) Detach(n *core.Node) {
	if g.node == n {
		g.node = nil
	}
	g.built = false
}

func (g *Grid) invalidate() {
	g.built = false
	if g.node != nil {
		g.node.InvalidateStructure()
	}
}

// ensureCells rebuilds the cell list when the children, their placement or
// the definitions changed.
func (g *Grid) ensureCells(n *core.Node) {
	if g.built && g.builtFor == n.Structure() {
		return
	}
	g.built = true
	g.builtFor = n.Structure()
	g.spanErrors = nil

	children := n.VisualChildren()
	g.cells = g.cells[:0]
	numCols, numRows := len(g.Columns()), len(g.Rows())
	for _, child := range children {
		c := cell{node: child}
		c.column, c.colSpan = g.place(child, "column",
			property.Value[int](child, GridColumnProperty),
			property.Value[int](child, GridColumnSpanProperty), numCols)
		c.row, c.rowSpan = g.place(child, "row",
			property.Value[int](child, GridRowProperty),
			property.Value[int](child, GridRowSpanProperty), numRows)
		g.cells = append(g.cells, c)
	}
}

// place clamps an index and span into [0, count) and reports placements
// that do not fit.
func (g *Grid) place(child *core.Node, axis string, index, span, count int) (int, int) {
	if index+span <= count {
		return index, span
	}
	err := &errors.InvalidSpanError{
		Element: child.String(),
		Axis:    axis,
		Index:   index,
		Span:    span,
		Count:   count,
	}
	g.spanErrors = append(g.spanErrors, err)
	errors.Report(&errors.EngineError{
		Op:      "layout.Grid.Measure",
		Kind:    errors.KindLayout,
		Subject: child.String(),
		Err:     err,
	})
	if index >= count {
		return count - 1, 1
	}
	return index, count - index
}

// classify computes cell flags and priorities against the effective track
// units of the current measure.
//
//	0: no star tracks on either axis (measured first, fixes auto tracks)
//	1: star columns, no star rows (measured once star columns are resolved)
//	2: star rows and auto columns, no star columns (feeds auto column widths)
//	3: everything else (measured last, against all resolved tracks)
func (g *Grid) classify(cols, rows []*Definition) {
	g.priorityCount = [4]int{}
	g.prioOneInAutoRows = false
	for i := range g.cells {
		c := &g.cells[i]
		c.flags = spanFlags(cols[c.column:c.column+c.colSpan], autoColumns, starColumns) |
			spanFlags(rows[c.row:c.row+c.rowSpan], autoRows, starRows)
		switch {
		case c.flags&(starRows|starColumns) == 0:
			c.priority = 0
		case c.flags&starRows == 0:
			c.priority = 1
			if c.flags&autoRows != 0 {
				g.prioOneInAutoRows = true
			}
		case c.flags&autoColumns != 0 && c.flags&starColumns == 0:
			c.priority = 2
		default:
			c.priority = 3
		}
		g.priorityCount[c.priority]++
	}
}

func spanFlags(defs []*Definition, auto, star cellFlags) cellFlags {
	var f cellFlags
	for _, d := range defs {
		switch d.kind {
		case UnitAuto:
			f |= auto
		case UnitStar:
			f |= star
		}
	}
	return f
}
