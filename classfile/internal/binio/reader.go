// Package binio provides the big-endian primitives the class file codec is
// built on: a forward-only counting reader and a counting writer, both with a
// sticky first error.
package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedEOF is returned when a read needs more bytes than remain.
var ErrUnexpectedEOF = errors.New("binio: unexpected end of input")

// Reader reads big-endian values from an underlying stream. After the first
// failure every further read returns the zero value and Err reports the
// original error.
type Reader struct {
	r     io.Reader
	count int64
	size  int64
	err   error
}

// NewReader returns a Reader over r. Len reports -1 unless r is a
// *bytes.Reader.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bytes.Reader); ok {
		return &Reader{r: br, size: int64(br.Len())}
	}
	return &Reader{r: r, size: -1}
}

// NewBytesReader returns a Reader bounded to b.
func NewBytesReader(b []byte) *Reader {
	return &Reader{r: bytes.NewReader(b), size: int64(len(b))}
}

// Count returns the number of bytes consumed so far.
func (r *Reader) Count() int64 { return r.count }

// Len returns the number of unread bytes, or -1 when the size of the
// underlying stream is unknown.
func (r *Reader) Len() int64 {
	if r.size < 0 {
		return -1
	}
	return r.size - r.count
}

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

// Fail records err unless an error has already been recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *Reader) fill(buf []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, buf)
	at := r.count
	r.count += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: need %d bytes at offset %d", ErrUnexpectedEOF, len(buf), at)
		}
		r.err = err
		return false
	}
	return true
}

func (r *Reader) U1() uint8 {
	var buf [1]byte
	if !r.fill(buf[:]) {
		return 0
	}
	return buf[0]
}

func (r *Reader) U2() uint16 {
	var buf [2]byte
	if !r.fill(buf[:]) {
		return 0
	}
	return binary.BigEndian.Uint16(buf[:])
}

func (r *Reader) U4() uint32 {
	var buf [4]byte
	if !r.fill(buf[:]) {
		return 0
	}
	return binary.BigEndian.Uint32(buf[:])
}

func (r *Reader) U8() uint64 {
	var buf [8]byte
	if !r.fill(buf[:]) {
		return 0
	}
	return binary.BigEndian.Uint64(buf[:])
}

func (r *Reader) I1() int8  { return int8(r.U1()) }
func (r *Reader) I2() int16 { return int16(r.U2()) }
func (r *Reader) I4() int32 { return int32(r.U4()) }

// Bytes reads exactly n bytes into a fresh slice.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = fmt.Errorf("binio: negative length %d at offset %d", n, r.count)
		return nil
	}
	// A bounded reader can reject an oversized length before allocating it.
	if r.size >= 0 && int64(n) > r.Len() {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d", ErrUnexpectedEOF, n, r.count)
		return nil
	}
	buf := make([]byte, n)
	if !r.fill(buf) {
		return nil
	}
	return buf
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) {
	if r.err != nil || n <= 0 {
		return
	}
	m, err := io.CopyN(io.Discard, r.r, n)
	at := r.count
	r.count += m
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: need %d bytes at offset %d", ErrUnexpectedEOF, n, at)
		}
		r.err = err
	}
}
