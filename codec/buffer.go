package codec

import (
	"errors"
	"io"
)

// ErrCapacity is the panic value when a frame cannot fit its buffer
// Capacity is sized for the worst case at startup, so this is a sizing bug
var ErrCapacity = errors.New("codec: frame exceeds buffer capacity")

// Capacity returns the worst-case encoded size of a cols x rows frame
func Capacity(cols, rows int) int {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return PreludeLen + cols*rows*MaxCellBytes + MaxStatusBytes
}

// Buffer is a fixed-capacity byte store with a write cursor
// Storage never grows; two buffers are role-swapped between frames
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a buffer holding exactly capacity bytes
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Reset rewinds the cursor, contents are overwritten by the next frame
func (b *Buffer) Reset() {
	b.n = 0
}

// Len returns bytes written since the last Reset
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the fixed storage size
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Bytes returns the written range; valid until the next Reset
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Append copies p at the cursor
// Panics with ErrCapacity on overflow, output is never truncated silently
func (b *Buffer) Append(p []byte) {
	if len(p) > len(b.data)-b.n {
		panic(ErrCapacity)
	}
	b.n += copy(b.data[b.n:], p)
}

// AppendByte writes a single byte at the cursor
func (b *Buffer) AppendByte(c byte) {
	if b.n >= len(b.data) {
		panic(ErrCapacity)
	}
	b.data[b.n] = c
	b.n++
}

// AppendUint writes n in decimal without leading zeros
func (b *Buffer) AppendUint(n uint64) {
	var tmp [maxUintDigits]byte
	b.Append(appendUint(tmp[:0], n))
}

// WriteTo writes the encoded range to w in a single call
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data[:b.n])
	if err == nil && n < b.n {
		err = io.ErrShortWrite
	}
	return int64(n), err
}
