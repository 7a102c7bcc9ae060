// Package serial implements the low-level binary archive primitives used to
// persist component state.
//
// A Writer and a Reader of the same component type must agree on exact field
// order; the archive carries no per-field metadata. Strings and byte slices
// are length-prefixed, fixed-width values are little-endian. Truncation is
// reported as ErrTruncated so callers can distinguish a short archive from
// an I/O failure.
package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrTruncated reports that the byte stream ended before the expected
// structure was complete.
var ErrTruncated = errors.New("archive truncated")

// maxBlobLen bounds length prefixes read back from an archive so a corrupt
// stream cannot trigger a huge allocation.
const maxBlobLen = 1 << 30

// Writer serializes primitive values to an output byte sink.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps an output sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered while writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
}

// Bool writes a bool as a single byte.
func (w *Writer) Bool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	w.write(b)
}

// Uint16 writes a fixed-width uint16.
func (w *Writer) Uint16(v uint16) { w.write(v) }

// Uint32 writes a fixed-width uint32.
func (w *Writer) Uint32(v uint32) { w.write(v) }

// Uint64 writes a fixed-width uint64.
func (w *Writer) Uint64(v uint64) { w.write(v) }

// Int64 writes a fixed-width int64.
func (w *Writer) Int64(v int64) { w.write(v) }

// Float64 writes an IEEE 754 double.
func (w *Writer) Float64(v float64) { w.write(math.Float64bits(v)) }

// String writes a length-prefixed UTF-8 string.
func (w *Writer) String(v string) {
	w.Uint32(uint32(len(v)))
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, v)
}

// Float64s writes a length-prefixed slice of doubles.
func (w *Writer) Float64s(v []float64) {
	w.Uint32(uint32(len(v)))
	for _, f := range v {
		w.Float64(f)
	}
}

// Int64s writes a length-prefixed slice of int64s.
func (w *Writer) Int64s(v []int64) {
	w.Uint32(uint32(len(v)))
	for _, i := range v {
		w.Int64(i)
	}
}

// Strings writes a length-prefixed slice of strings.
func (w *Writer) Strings(v []string) {
	w.Uint32(uint32(len(v)))
	for _, s := range v {
		w.String(s)
	}
}

// Reader deserializes primitive values from an input byte stream.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader wraps an input stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered while reading. A premature end of
// stream surfaces as ErrTruncated.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(v any) {
	if r.err != nil {
		return
	}
	err := binary.Read(r.r, binary.LittleEndian, v)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncated
	}
	r.err = err
}

// Bool reads a single-byte bool.
func (r *Reader) Bool() bool {
	var b uint8
	r.read(&b)
	return b != 0
}

// Uint16 reads a fixed-width uint16.
func (r *Reader) Uint16() uint16 {
	var v uint16
	r.read(&v)
	return v
}

// Uint32 reads a fixed-width uint32.
func (r *Reader) Uint32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

// Uint64 reads a fixed-width uint64.
func (r *Reader) Uint64() uint64 {
	var v uint64
	r.read(&v)
	return v
}

// Int64 reads a fixed-width int64.
func (r *Reader) Int64() int64 {
	var v int64
	r.read(&v)
	return v
}

// Float64 reads an IEEE 754 double.
func (r *Reader) Float64() float64 {
	var v uint64
	r.read(&v)
	return math.Float64frombits(v)
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() string {
	n := r.Uint32()
	if r.err != nil {
		return ""
	}
	if n > maxBlobLen {
		r.err = fmt.Errorf("string length %d exceeds limit: %w", n, ErrTruncated)
		return ""
	}
	buf := make([]byte, n)
	_, err := io.ReadFull(r.r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncated
	}
	if err != nil {
		r.err = err
		return ""
	}
	return string(buf)
}

// Float64s reads a length-prefixed slice of doubles.
func (r *Reader) Float64s() []float64 {
	n := r.Uint32()
	if r.err != nil || n == 0 {
		return nil
	}
	if n > maxBlobLen/8 {
		r.err = fmt.Errorf("slice length %d exceeds limit: %w", n, ErrTruncated)
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	if r.err != nil {
		return nil
	}
	return out
}

// Int64s reads a length-prefixed slice of int64s.
func (r *Reader) Int64s() []int64 {
	n := r.Uint32()
	if r.err != nil || n == 0 {
		return nil
	}
	if n > maxBlobLen/8 {
		r.err = fmt.Errorf("slice length %d exceeds limit: %w", n, ErrTruncated)
		return nil
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = r.Int64()
	}
	if r.err != nil {
		return nil
	}
	return out
}

// Strings reads a length-prefixed slice of strings.
func (r *Reader) Strings() []string {
	n := r.Uint32()
	if r.err != nil || n == 0 {
		return nil
	}
	if n > maxBlobLen/8 {
		r.err = fmt.Errorf("slice length %d exceeds limit: %w", n, ErrTruncated)
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = r.String()
	}
	if r.err != nil {
		return nil
	}
	return out
}
