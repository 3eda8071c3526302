// Package wire implements the byte-level primitives of the structure format:
// little-endian fixed-width integers and floats, 7-bit variable-length
// integers, length-prefixed UTF-8 strings and explicit-width counts.
//
// [Writer] appends to an in-memory buffer and never fails on its own; only
// count prefixes can overflow, and those report a capacity error. [Reader]
// consumes a byte slice and remembers the first error it hits. Once a Reader
// has failed every further read returns zero, so callers can decode a whole
// record and check [Reader.Err] once at the end.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/matzehuels/structio/pkg/errors"
)

// Width is the byte width of a count prefix.
type Width uint8

// Count prefix widths.
const (
	U8  Width = 1
	U16 Width = 2
)

// Max returns the largest count representable in w.
func (w Width) Max() int {
	if w == U8 {
		return math.MaxUint8
	}
	return math.MaxUint16
}

func (w Width) String() string {
	if w == U8 {
		return "u8"
	}
	return "u16"
}

// Writer appends little-endian values to a byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded bytes. The slice aliases the Writer's buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends one byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// I8 appends v as its two's-complement byte.
func (w *Writer) I8(v int8) { w.buf = append(w.buf, byte(v)) }

// U16 appends v in two little-endian bytes.
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

// I16 appends v in two little-endian bytes.
func (w *Writer) I16(v int16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v)) }

// I32 appends v in four little-endian bytes.
func (w *Writer) I32(v int32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v)) }

// F32 appends the IEEE 754 bits of v, little-endian.
func (w *Writer) F32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// Raw appends p unchanged.
func (w *Writer) Raw(p []byte) { w.buf = append(w.buf, p...) }

// F32s appends every value of vs.
func (w *Writer) F32s(vs ...float32) {
	for _, v := range vs {
		w.F32(v)
	}
}

// Uvarint appends v as a 7-bit variable-length integer: seven data bits per
// byte, least significant group first, high bit set on every byte but the last.
func (w *Writer) Uvarint(v uint32) {
	w.buf = binary.AppendUvarint(w.buf, uint64(v))
}

// String appends s prefixed with its UTF-8 byte length as a varint.
func (w *Writer) String(s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return errors.New(errors.ErrCodeCapacity, "string of %d bytes exceeds varint range", len(s))
	}
	w.Uvarint(uint32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// Count appends n using width. It fails with a capacity error instead of
// truncating when n does not fit; what names the counted field in the error.
func (w *Writer) Count(width Width, n int, what string) error {
	if n < 0 || n > width.Max() {
		return errors.New(errors.ErrCodeCapacity, "%s: count %d exceeds %s range (max %d)", what, n, width, width.Max())
	}
	if width == U8 {
		w.U8(uint8(n))
	} else {
		w.U16(uint16(n))
	}
	return nil
}
