// Package codec turns a frame.Grid into the terminal byte stream.
//
// Wire format per frame:
//
//	ESC[?25l ESC[H                       prelude, once
//	ESC[48;2;R;G;Bm ESC[38;2;R;G;Bm ▀    per cell, background = lower sample
//	ESC[49m ESC[39m #N, FPS:F            status line, 7 trailing spaces
//
// The last terminal row is never emitted: after Cols*(Rows-1) cells the cursor sits at the
// start of the bottom row and the status line is written there.
package codec

import "github.com/lixenwraith/halfshade/frame"

// Encoder serializes grids into Buffers without allocation
// Stateless across frames apart from the shared channel table
type Encoder struct {
	digits *[256][]byte
}

// NewEncoder returns an encoder using the precomputed channel table
func NewEncoder() *Encoder {
	return &Encoder{digits: &channelDigits}
}

// Encode writes the prelude and every cell group except the last terminal row
// buf must have room for Capacity(grid.Cols, grid.Rows) bytes past its cursor
func (e *Encoder) Encode(grid *frame.Grid, buf *Buffer) {
	if buf.Cap()-buf.Len() < Capacity(grid.Cols, grid.Rows) {
		panic(ErrCapacity)
	}

	buf.Append(seqPrelude)

	cells := grid.Cells
	last := len(cells) - grid.Cols
	for i := 0; i < last; i++ {
		e.writeCell(buf, cells[i])
	}
}

// writeCell emits one cell group, background first
func (e *Encoder) writeCell(buf *Buffer, c frame.Cell) {
	d := e.digits
	buf.Append(seqCellBg)
	buf.Append(d[c.Bg.R])
	buf.Append(d[c.Bg.G])
	buf.Append(d[c.Bg.B])
	buf.Append(seqCellFg)
	buf.Append(d[c.Fg.R])
	buf.Append(d[c.Fg.G])
	buf.Append(d[c.Fg.B])
	buf.Append(seqCellGlyph)
}

// Status appends the frame counter line with default colors
func (e *Encoder) Status(buf *Buffer, frameNo, fps uint64) {
	buf.Append(seqStatusReset)
	buf.AppendByte('#')
	buf.AppendUint(frameNo)
	buf.Append(seqStatusFPS)
	buf.AppendUint(fps)
	buf.Append(seqStatusPad)
}

// CellGroups returns the number of cell groups Encode emits for a grid
func CellGroups(cols, rows int) int {
	if cols <= 0 || rows <= 1 {
		return 0
	}
	return cols * (rows - 1)
}
