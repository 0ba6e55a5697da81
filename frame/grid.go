// Package frame holds the per-frame picture model shared by the scene pass and the encoder.
//
// A Grid is sized to the terminal once at startup. Each Cell carries two vertically stacked
// samples: Fg is the upper sample (even source row), Bg the lower one (odd source row), drawn
// through the upper half block glyph.
package frame

// Cell is one terminal character position
type Cell struct {
	Fg RGB
	Bg RGB
}

// Grid is a fixed-size row-major cell array, index = x + Cols*row
type Grid struct {
	Cols  int
	Rows  int
	Cells []Cell
}

// NewGrid allocates a black grid of cols x rows terminal cells
// Non-positive dimensions produce an empty grid
func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Grid{
		Cols:  cols,
		Rows:  rows,
		Cells: make([]Cell, cols*rows),
	}
}

// SourceHeight returns the sample height, two samples per terminal row
func (g *Grid) SourceHeight() int {
	return g.Rows * 2
}

// Index returns the slice index of cell (x, row)
func (g *Grid) Index(x, row int) int {
	return x + g.Cols*row
}

// At returns the cell at (x, row), zero Cell when out of range
func (g *Grid) At(x, row int) Cell {
	if x < 0 || x >= g.Cols || row < 0 || row >= g.Rows {
		return Cell{}
	}
	return g.Cells[g.Index(x, row)]
}

// Set writes both samples of cell (x, row); out of range writes are ignored
func (g *Grid) Set(x, row int, fg, bg RGB) {
	if x < 0 || x >= g.Cols || row < 0 || row >= g.Rows {
		return
	}
	g.Cells[g.Index(x, row)] = Cell{Fg: fg, Bg: bg}
}

// Fill sets every cell to c
func (g *Grid) Fill(c Cell) {
	for i := range g.Cells {
		g.Cells[i] = c
	}
}
