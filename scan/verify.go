package scan

import (
	"github.com/dhamidi/jclass/classfile"
)

// Verify decodes data, writes the class back and reports the first offset at
// which the output differs from data, or -1 when they are identical. opts
// must not include classfile.WithSkipAttributes.
func Verify(data []byte, opts ...classfile.Option) (*classfile.ClassFile, int64, error) {
	cf, err := classfile.ParseBytes(data, opts...)
	if err != nil {
		return nil, -1, err
	}
	out, err := cf.Bytes()
	if err != nil {
		return cf, -1, err
	}
	return cf, FirstDifference(data, out), nil
}

// FirstDifference returns the first offset at which a and b differ, or -1
// when they are equal.
func FirstDifference(a, b []byte) int64 {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	if len(a) != len(b) {
		return int64(n)
	}
	return -1
}
