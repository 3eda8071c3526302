package wire

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/matzehuels/structio/pkg/errors"
)

// maxVarintLen is the number of bytes a 32-bit varint may occupy.
const maxVarintLen = 5

// Reader decodes little-endian values from a byte slice.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Fail records err unless an earlier error is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.Remaining() {
		r.err = errors.Wrap(errors.ErrCodeInvalidData, io.ErrUnexpectedEOF,
			"truncated input: need %d bytes at offset %d, have %d", n, r.off, r.Remaining())
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	if p := r.take(1); p != nil {
		return p[0]
	}
	return 0
}

// I8 reads one two's-complement byte.
func (r *Reader) I8() int8 { return int8(r.U8()) }

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	if p := r.take(2); p != nil {
		return binary.LittleEndian.Uint16(p)
	}
	return 0
}

// I16 reads a little-endian int16.
func (r *Reader) I16() int16 { return int16(r.U16()) }

// I32 reads a little-endian int32.
func (r *Reader) I32() int32 {
	if p := r.take(4); p != nil {
		return int32(binary.LittleEndian.Uint32(p))
	}
	return 0
}

// F32 reads a little-endian IEEE 754 float.
func (r *Reader) F32() float32 {
	if p := r.take(4); p != nil {
		return math.Float32frombits(binary.LittleEndian.Uint32(p))
	}
	return 0
}

// Raw returns the next n bytes. The slice aliases the input.
func (r *Reader) Raw(n int) []byte {
	return r.take(n)
}

// Count reads a count prefix of the given width.
func (r *Reader) Count(width Width) int {
	if width == U8 {
		return int(r.U8())
	}
	return int(r.U16())
}

// Uvarint reads a 7-bit variable-length integer. Encodings longer than a
// 32-bit value allows are rejected as invalid data.
func (r *Reader) Uvarint() uint32 {
	var v uint32
	for i := 0; i < maxVarintLen; i++ {
		start := r.off
		b := r.U8()
		if r.err != nil {
			return 0
		}
		if i == maxVarintLen-1 && b > 0x0F {
			r.err = errors.New(errors.ErrCodeInvalidData, "varint at offset %d overflows 32 bits", start-i)
			return 0
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return v
		}
	}
	return v
}

// String reads a varint length-prefixed UTF-8 string.
func (r *Reader) String() string {
	start := r.off
	n := r.Uvarint()
	if r.err != nil {
		return ""
	}
	if int64(n) > int64(r.Remaining()) {
		r.err = errors.Wrap(errors.ErrCodeInvalidData, io.ErrUnexpectedEOF,
			"truncated input: string of %d bytes at offset %d, have %d", n, start, r.Remaining())
		return ""
	}
	p := r.take(int(n))
	if !utf8.Valid(p) {
		r.err = errors.New(errors.ErrCodeInvalidData, "string at offset %d is not valid UTF-8", start)
		return ""
	}
	return string(p)
}
