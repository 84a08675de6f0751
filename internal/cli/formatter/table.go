package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colGap = 2

	treeBranch = "├─ "
	treeCorner = "└─ "
)

// Column describes one table column.
type Column struct {
	Title string

	// Right aligns byte and count figures on their last digit.
	Right bool

	// Alert turns the cell red on rows marked over capacity.
	Alert bool
}

type tableRow struct {
	cells []string
	sub   bool
	over  bool
}

// Table lays out slot listings: sub-slot rows hang under their slot with
// tree connectors in the Nest column, and over-capacity rows are flagged
// in every Alert column. Widths are measured on visible text so styled
// cells align.
type Table struct {
	Columns []Column
	Nest    int

	rows []tableRow
}

// NewTable creates a table whose sub-rows nest under column 0.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a top-level row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells})
}

// AddSubRow appends a row nested under the closest preceding top-level row.
func (t *Table) AddSubRow(cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells, sub: true})
}

// MarkOver flags the most recently added row as over capacity.
func (t *Table) MarkOver() {
	if len(t.rows) > 0 {
		t.rows[len(t.rows)-1].over = true
	}
}

// Render draws the header, a separator line and every row.
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	display := make([][]string, len(t.rows))
	for r := range t.rows {
		display[r] = t.displayCells(r)
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, cells := range display {
		for i, cell := range cells {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for i, c := range t.Columns {
		t.writeCell(&b, i, StyleHeader.Render(c.Title), widths[i])
	}
	b.WriteString("\n")
	for i, w := range widths {
		t.writeCell(&b, i, StyleDim.Render(strings.Repeat("─", w)), w)
	}
	b.WriteString("\n")
	for _, cells := range display {
		for i, cell := range cells {
			t.writeCell(&b, i, cell, widths[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Table) displayCells(r int) []string {
	row := t.rows[r]
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(row.cells) {
			out[i] = row.cells[i]
		}
		if row.over && col.Alert {
			out[i] = StyleRed.Render(out[i])
		}
	}
	if row.sub && t.Nest >= 0 && t.Nest < len(out) {
		connector := treeBranch
		if r == len(t.rows)-1 || !t.rows[r+1].sub {
			connector = treeCorner
		}
		out[t.Nest] = Dim(connector) + out[t.Nest]
	}
	return out
}

// writeCell pads cell to width. The last left-aligned column is not padded
// so lines carry no trailing blanks.
func (t *Table) writeCell(b *strings.Builder, i int, cell string, width int) {
	gap := max(width-lipgloss.Width(cell), 0)
	last := i == len(t.Columns)-1
	if t.Columns[i].Right {
		b.WriteString(strings.Repeat(" ", gap))
		b.WriteString(cell)
	} else {
		b.WriteString(cell)
		if !last {
			b.WriteString(strings.Repeat(" ", gap))
		}
	}
	if !last {
		b.WriteString(strings.Repeat(" ", colGap))
	}
}

// RenderTable renders a flat left-aligned table.
func RenderTable(headers []string, rows [][]string) string {
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{Title: h}
	}
	t := NewTable(cols...)
	for _, row := range rows {
		t.AddRow(row...)
	}
	return t.Render()
}
