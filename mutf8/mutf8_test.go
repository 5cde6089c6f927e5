package mutf8

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"empty", "", []byte{}},
		{"ascii", "Code", []byte("Code")},
		{"nul", "\x00", []byte{0xC0, 0x80}},
		{"two byte", "é", []byte{0xC3, 0xA9}},
		{"three byte", "€", []byte{0xE2, 0x82, 0xAC}},
		{"supplementary", "\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
		{"mixed", "a\x00b", []byte{'a', 0xC0, 0x80, 'b'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), EncodedLen(tt.in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"java/lang/Object",
		"<init>",
		"(Ljava/lang/String;I)V",
		"\x00\x00",
		"café 世界",
		"emoji \U0001F600 and \U00010348",
		"\uffff\u0800\u07ff\u0080\u007f",
		strings.Repeat("x", MaxLen),
	}

	for _, in := range inputs {
		enc, err := Encode(in)
		require.NoError(t, err)
		dec, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

func TestDecodeReencodesIdentically(t *testing.T) {
	inputs := [][]byte{
		{0xED, 0xA0, 0x80},                   // lone high surrogate
		{0xED, 0xB0, 0x80, 'x'},              // lone low surrogate
		{0xED, 0xB0, 0x80, 0xED, 0xA0, 0x80}, // low before high
		{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, // paired
		{0xC0, 0x80},
	}

	for _, in := range inputs {
		s, err := Decode(in)
		require.NoError(t, err)
		out, err := Encode(s)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestEncodeTooLong(t *testing.T) {
	_, err := Encode(strings.Repeat("x", MaxLen+1))
	assert.ErrorIs(t, err, ErrTooLong)

	// 21846 * 3 bytes crosses the limit even though the rune count is small.
	_, err = Encode(strings.Repeat("€", 21846))
	assert.ErrorIs(t, err, ErrTooLong)

	// NUL doubles in size.
	_, err = Encode(strings.Repeat("\x00", MaxLen/2+1))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestEncodeInvalidString(t *testing.T) {
	_, err := Encode("ok\xffno")
	var merr *MalformedError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 2, merr.Offset)
}

func TestEncodeRejectsSplitSurrogatePair(t *testing.T) {
	_, err := Encode("ab\xed\xa0\x80\xed\xb0\x80")
	require.ErrorIs(t, err, ErrMalformed)
	var merr *MalformedError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 2, merr.Offset)

	// Unpaired halves in either order still round trip.
	for _, in := range []string{"\xed\xa0\x80x", "\xed\xb0\x80\xed\xa0\x80", "\xed\xa0\x80\xed\xa0\x80"} {
		enc, err := Encode(in)
		require.NoError(t, err)
		dec, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		offset int
	}{
		{"raw nul", []byte{'a', 0x00}, 1},
		{"overlong two byte", []byte{0xC1, 0x81}, 0},
		{"overlong three byte", []byte{0xE0, 0x81, 0x81}, 0},
		{"bad continuation", []byte{0xC3, 0x41}, 1},
		{"bad third byte", []byte{0xE2, 0x82, 0x41}, 2},
		{"truncated two", []byte{'x', 0xC3}, 1},
		{"truncated three", []byte{0xE2, 0x82}, 0},
		{"four byte lead", []byte{0xF0, 0x9F, 0x98, 0x80}, 0},
		{"stray continuation", []byte{0x80}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.ErrorIs(t, err, ErrMalformed)
			var merr *MalformedError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, tt.offset, merr.Offset)
		})
	}
}
