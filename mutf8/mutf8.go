// Package mutf8 implements the modified UTF-8 encoding used for strings in
// JVM class files.
//
// Modified UTF-8 differs from standard UTF-8 in two ways: the NUL character
// is written as the two byte sequence C0 80, and code points outside the
// Basic Multilingual Plane are written as a UTF-16 surrogate pair with each
// surrogate encoded separately in three bytes. Encoded strings are prefixed
// in the class file by a 16-bit byte length, so no encoding may exceed
// MaxLen bytes.
//
// Decode is strict: every input it accepts re-encodes to the same bytes.
// Unpaired surrogates are carried through the Go string as their three byte
// generalized UTF-8 form so that they survive a round trip. A high surrogate
// directly followed by a low one in that form is rejected by Encode, since
// Decode would join them into a single code point.
package mutf8

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxLen is the largest number of bytes an encoded string may occupy.
const MaxLen = 0xFFFF

var (
	// ErrMalformed is wrapped by every decoding failure.
	ErrMalformed = errors.New("mutf8: malformed modified UTF-8")

	// ErrTooLong is returned when an encoded string would exceed MaxLen bytes.
	ErrTooLong = errors.New("mutf8: encoded string exceeds 65535 bytes")
)

// MalformedError reports the position of invalid input.
type MalformedError struct {
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("mutf8: malformed input at byte %d: %s", e.Offset, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// Encode returns the modified UTF-8 form of s.
func Encode(s string) ([]byte, error) {
	buf, err := AppendEncoded(make([]byte, 0, len(s)+len(s)/8), s)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// AppendEncoded appends the modified UTF-8 form of s to dst.
func AppendEncoded(dst []byte, s string) ([]byte, error) {
	start := len(dst)
	for i := 0; i < len(s); {
		r, size := decodeGeneralized(s, i)
		if size == 0 {
			return dst, &MalformedError{Offset: i, Reason: "invalid UTF-8 in string"}
		}
		if utf16.IsSurrogate(r) && r < 0xDC00 && i+size < len(s) {
			if lo, n := decodeGeneralized(s, i+size); n == 3 && utf16.IsSurrogate(lo) && lo >= 0xDC00 {
				return dst[:start], &MalformedError{Offset: i, Reason: "surrogate pair must be written as one code point"}
			}
		}
		i += size

		switch {
		case r == 0:
			dst = append(dst, 0xC0, 0x80)
		case r < 0x80:
			dst = append(dst, byte(r))
		case r < 0x800:
			dst = append(dst, 0xC0|byte(r>>6), 0x80|byte(r)&0x3F)
		case r < 0x10000:
			dst = appendThree(dst, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = appendThree(dst, hi)
			dst = appendThree(dst, lo)
		}
	}
	if n := len(dst) - start; n > MaxLen {
		return dst[:start], fmt.Errorf("%w: %d bytes", ErrTooLong, n)
	}
	return dst, nil
}

func appendThree(dst []byte, r rune) []byte {
	return append(dst, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
}

// decodeGeneralized decodes one code point at s[i], accepting the three byte
// form of a lone surrogate. It returns size 0 for invalid input.
func decodeGeneralized(s string, i int) (rune, int) {
	r, size := utf8.DecodeRuneInString(s[i:])
	if r != utf8.RuneError || size != 1 {
		return r, size
	}
	if i+2 < len(s) && s[i] == 0xED && s[i+1] >= 0xA0 && s[i+1] <= 0xBF && s[i+2]&0xC0 == 0x80 {
		return 0xD000 | rune(s[i+1]&0x3F)<<6 | rune(s[i+2]&0x3F), 3
	}
	return 0, 0
}

// EncodedLen returns the number of bytes Encode would produce for a valid
// string s, without the length limit applied.
func EncodedLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := decodeGeneralized(s, i)
		if size == 0 {
			n++
			i++
			continue
		}
		i += size
		switch {
		case r == 0:
			n += 2
		case r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}
	return n
}

// Decode converts modified UTF-8 bytes to a string.
func Decode(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", &MalformedError{Offset: i, Reason: "raw NUL byte"}

		case c < 0x80:
			sb.WriteByte(c)
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(b) {
				return "", &MalformedError{Offset: i, Reason: "truncated two byte sequence"}
			}
			if b[i+1]&0xC0 != 0x80 {
				return "", &MalformedError{Offset: i + 1, Reason: "invalid continuation byte"}
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if r != 0 && r < 0x80 {
				return "", &MalformedError{Offset: i, Reason: "overlong two byte sequence"}
			}
			sb.WriteRune(r)
			i += 2

		case c&0xF0 == 0xE0:
			if i+2 >= len(b) {
				return "", &MalformedError{Offset: i, Reason: "truncated three byte sequence"}
			}
			if b[i+1]&0xC0 != 0x80 {
				return "", &MalformedError{Offset: i + 1, Reason: "invalid continuation byte"}
			}
			if b[i+2]&0xC0 != 0x80 {
				return "", &MalformedError{Offset: i + 2, Reason: "invalid continuation byte"}
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r < 0x800 {
				return "", &MalformedError{Offset: i, Reason: "overlong three byte sequence"}
			}
			if utf16.IsSurrogate(r) {
				if r < 0xDC00 && i+5 < len(b) && b[i+3] == 0xED && b[i+4]&0xF0 == 0xB0 && b[i+5]&0xC0 == 0x80 {
					lo := rune(0xD)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
					sb.WriteRune(utf16.DecodeRune(r, lo))
					i += 6
					continue
				}
				sb.Write(b[i : i+3])
				i += 3
				continue
			}
			sb.WriteRune(r)
			i += 3

		default:
			return "", &MalformedError{Offset: i, Reason: fmt.Sprintf("invalid lead byte 0x%02X", c)}
		}
	}
	return sb.String(), nil
}
