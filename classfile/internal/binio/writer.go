package binio

import (
	"bytes"
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"
)

// Writer writes big-endian values and counts the bytes written. Like Reader
// it keeps the first error and turns later writes into no-ops.
type Writer struct {
	w     io.Writer
	buf   *bytes.Buffer
	count int64
	err   error
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	bw, _ := w.(*bytes.Buffer)
	return &Writer{w: w, buf: bw}
}

// NewBufferWriter returns a Writer backed by an in-memory buffer.
func NewBufferWriter() *Writer {
	buf := new(bytes.Buffer)
	return &Writer{w: buf, buf: buf}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 { return w.count }

func (w *Writer) Err() error { return w.err }

// Fail records err unless an error has already been recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Bytes returns the buffered output of a buffer-backed writer, or nil.
func (w *Writer) Bytes() []byte {
	if w.buf == nil {
		return nil
	}
	return w.buf.Bytes()
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.Fail(err)
	return n, err
}

func (w *Writer) U1(v uint8) { w.Write([]byte{v}) }

func (w *Writer) U2(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.Write(buf[:])
}

func (w *Writer) U4(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func (w *Writer) U8(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func (w *Writer) I1(v int8)  { w.U1(uint8(v)) }
func (w *Writer) I2(v int16) { w.U2(uint16(v)) }
func (w *Writer) I4(v int32) { w.U4(uint32(v)) }

// WriteBytes writes p unchanged.
func (w *Writer) WriteBytes(p []byte) {
	if len(p) == 0 {
		return
	}
	w.Write(p)
}

var zeros [8]byte

// Zeros writes n zero bytes.
func (w *Writer) Zeros(n int) {
	for n > 0 && w.err == nil {
		k := min(n, len(zeros))
		w.Write(zeros[:k])
		n -= k
	}
}

// Roundup rounds n up to the nearest multiple of align, which must be a power
// of two.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// Padding returns the number of bytes needed to move pos up to the next
// multiple of align.
func Padding[T constraints.Integer](pos, align T) T { return Roundup(pos, align) - pos }
