package classfile

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantPoolAddIsIdempotent(t *testing.T) {
	cp := NewConstantPool()

	i1, err := cp.AddMethodref("java/lang/Object", "<init>", "()V")
	require.NoError(t, err)
	n := cp.Len()

	i2, err := cp.AddMethodref("java/lang/Object", "<init>", "()V")
	require.NoError(t, err)
	assert.Equal(t, i1, i2)
	assert.Equal(t, n, cp.Len())

	class, name, desc, err := cp.MemberRef(i1)
	require.NoError(t, err)
	assert.Equal(t, "java/lang/Object", class)
	assert.Equal(t, "<init>", name)
	assert.Equal(t, "()V", desc)

	// Utf8, Class, Utf8, Utf8, NameAndType, Methodref
	assert.Equal(t, 7, cp.Len())
}

func TestConstantPoolPlaceholder(t *testing.T) {
	cp := NewConstantPool()
	long, err := cp.AddLong(math.MaxInt64)
	require.NoError(t, err)
	next, err := cp.AddInteger(7)
	require.NoError(t, err)

	assert.Equal(t, uint16(1), long)
	assert.Equal(t, uint16(3), next)
	assert.Equal(t, 4, cp.Len())

	_, err = cp.Get(2)
	require.ErrorIs(t, err, ErrConstantPoolIndex)
	var ierr *IndexError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, ierr.Placeholder)

	var indices []uint16
	for i := range cp.All() {
		indices = append(indices, i)
	}
	assert.Equal(t, []uint16{1, 3}, indices)
}

func TestConstantPoolLookupErrors(t *testing.T) {
	cp := NewConstantPool()
	utf8, err := cp.AddUtf8("hello")
	require.NoError(t, err)
	class, err := cp.AddClass("demo/A")
	require.NoError(t, err)

	tests := []struct {
		name  string
		index uint16
		tag   ConstantTag
		want  error
	}{
		{"zero index", 0, ConstantUtf8, ErrConstantPoolIndex},
		{"past the end", uint16(cp.Len()), ConstantUtf8, ErrConstantPoolIndex},
		{"wrong tag", utf8, ConstantClass, ErrConstantPoolType},
		{"right tag", class, ConstantClass, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := cp.Entry(tt.index, tt.tag)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.tag, c.Tag())
				return
			}
			require.ErrorIs(t, err, tt.want)
			var ierr *IndexError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.index, ierr.Index)
			assert.Equal(t, tt.tag, ierr.Want)
		})
	}

	_, err = cp.ClassName(utf8)
	assert.ErrorIs(t, err, ErrConstantPoolType)
	assert.Equal(t, "", cp.GetClassName(utf8))
	assert.Equal(t, "demo/A", cp.GetClassName(class))
}

func TestConstantPoolDuplicatesFromInput(t *testing.T) {
	cp := NewConstantPool()
	a, err := cp.push(ConstantUtf8Info{Value: "dup"})
	require.NoError(t, err)
	b, err := cp.push(ConstantUtf8Info{Value: "dup"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	i, ok := cp.Find(ConstantUtf8Info{Value: "dup"})
	require.True(t, ok)
	assert.Equal(t, a, i)

	// Replacing the first copy moves the index to the second.
	require.NoError(t, cp.Set(a, ConstantUtf8Info{Value: "other"}))
	i, ok = cp.Find(ConstantUtf8Info{Value: "dup"})
	require.True(t, ok)
	assert.Equal(t, b, i)
	i, ok = cp.Find(ConstantUtf8Info{Value: "other"})
	require.True(t, ok)
	assert.Equal(t, a, i)
}

func TestConstantPoolSetWidth(t *testing.T) {
	cp := NewConstantPool()
	i, err := cp.AddInteger(1)
	require.NoError(t, err)

	err = cp.Set(i, ConstantLongInfo{Value: 1})
	assert.ErrorIs(t, err, ErrConstantPoolType)
}

func TestConstantPoolFull(t *testing.T) {
	cp := NewConstantPool()
	for i := 1; i < math.MaxUint16; i++ {
		_, err := cp.AddInteger(int32(i))
		require.NoError(t, err)
	}
	assert.Equal(t, math.MaxUint16, cp.Len())

	_, err := cp.AddInteger(-1)
	assert.ErrorIs(t, err, ErrConstantPoolFull)

	// Existing entries are still found.
	i, err := cp.AddInteger(5)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), i)
}

func TestAddUtf8TooLong(t *testing.T) {
	cp := NewConstantPool()
	_, err := cp.AddUtf8(strings.Repeat("a", 0x10000))
	assert.ErrorIs(t, err, ErrStringTooLong)

	// NUL takes two bytes, so this is one byte over.
	_, err = cp.AddUtf8(strings.Repeat("a", 0xFFFE) + "\x00")
	assert.ErrorIs(t, err, ErrStringTooLong)

	_, err = cp.AddUtf8(strings.Repeat("a", 0xFFFF))
	assert.NoError(t, err)
}

func TestFloatConstantsKeepBits(t *testing.T) {
	nan := math.Float64bits(math.NaN()) | 1
	b := newClassBuilder(t, "demo/F", "java/lang/Object")
	b.must(b.cf.ConstantPool.Add(ConstantDoubleInfo{Bits: nan}))
	b.must(b.cf.ConstantPool.Add(ConstantFloatInfo{Bits: 0x7fc00001}))

	cf, err := ParseBytes(b.bytes())
	require.NoError(t, err)

	_, ok := cf.ConstantPool.Find(ConstantDoubleInfo{Bits: nan})
	assert.True(t, ok)
	_, ok = cf.ConstantPool.Find(ConstantFloatInfo{Bits: 0x7fc00001})
	assert.True(t, ok)
}

func TestConstantPoolStringHelpers(t *testing.T) {
	cp := NewConstantPool()
	s, err := cp.AddString("hi")
	require.NoError(t, err)
	nt, err := cp.AddNameAndType("x", "I")
	require.NoError(t, err)
	mod, err := cp.AddModule("java.base")
	require.NoError(t, err)
	pkg, err := cp.AddPackage("java/lang")
	require.NoError(t, err)

	assert.Equal(t, "hi", cp.GetString(s))
	name, desc := cp.GetNameAndType(nt)
	assert.Equal(t, "x", name)
	assert.Equal(t, "I", desc)
	assert.Equal(t, "java.base", cp.GetModuleName(mod))
	assert.Equal(t, "java/lang", cp.GetPackageName(pkg))

	assert.Equal(t, "Utf8", ConstantUtf8.String())
	assert.Equal(t, "Tag(2)", ConstantTag(2).String())
}
