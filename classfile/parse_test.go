package classfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jclass/classfile/bytecode"
)

func TestParseClassFile(t *testing.T) {
	data := sampleClass(t).bytes()

	cf, err := ParseBytes(data)
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, uint16(61), cf.MajorVersion)
		assert.Equal(t, uint16(0), cf.MinorVersion)
		assert.Equal(t, "demo/Sample", cf.ClassName())
		assert.Equal(t, "java/lang/Object", cf.SuperClassName())
		assert.Equal(t, []string{"java/lang/Runnable"}, cf.InterfaceNames())
		assert.True(t, cf.IsClass())
		assert.False(t, cf.IsInterface())
		assert.Equal(t, []string{"public", "super"}, cf.AccessFlags.Names(FlagsClass))
		assert.Equal(t, "Sample.java", cf.SourceFile())
	})

	t.Run("fields", func(t *testing.T) {
		require.Len(t, cf.Fields, 2)

		answer := cf.GetField("ANSWER")
		require.NotNil(t, answer)
		assert.True(t, answer.IsStatic() && answer.IsFinal() && answer.IsPublic())
		assert.Equal(t, "I", answer.Descriptor(cf.ConstantPool))

		c, err := cf.ConstantPoolEntry(answer.ConstantValue(), ConstantInteger)
		require.NoError(t, err)
		assert.Equal(t, ConstantIntegerInfo{Value: 42}, c)

		name := cf.GetField("name")
		require.NotNil(t, name)
		assert.True(t, name.IsPrivate())
		ft, err := name.ParsedDescriptor(cf.ConstantPool)
		require.NoError(t, err)
		assert.Equal(t, "java.lang.String", ft.String())

		assert.Nil(t, cf.GetField("missing"))
	})

	t.Run("methods", func(t *testing.T) {
		require.Len(t, cf.Methods, 3)

		ctor := cf.GetMethod("<init>", "()V")
		require.NotNil(t, ctor)
		assert.True(t, ctor.IsConstructor(cf.ConstantPool))
		code := ctor.Code()
		require.NotNil(t, code)
		require.Len(t, code.Code, 5)
		assert.Equal(t, byte(0x2a), code.Code[0])
		assert.Equal(t, byte(0xb7), code.Code[1])
		assert.Equal(t, byte(0xb1), code.Code[4])
		assert.Equal(t, []LineNumberEntry{{StartPC: 0, LineNumber: 3}}, code.LineNumbers())

		pick := cf.GetMethod("pick", "")
		require.NotNil(t, pick)
		assert.Equal(t, []string{"java/io/IOException"}, pick.Exceptions(cf.ConstantPool))
		instrs, err := pick.Code().Instructions()
		require.NoError(t, err)
		require.Len(t, instrs, 8)
		ts, ok := instrs[1].(*bytecode.TableSwitchInstruction)
		require.True(t, ok)
		assert.Equal(t, 2, ts.Pos())
		assert.Equal(t, int32(1), ts.High)

		run := cf.GetMethod("run", "()V")
		require.NotNil(t, run)
		assert.True(t, run.IsAbstract())
		assert.Nil(t, run.Code())

		assert.Len(t, cf.GetMethods("<init>"), 1)
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *classBuilder
	}{
		{"sample", sampleClass},
		{"empty interface", func(t *testing.T) *classBuilder {
			b := newClassBuilder(t, "demo/Marker", "java/lang/Object")
			b.cf.AccessFlags = AccPublic | AccInterface | AccAbstract
			return b
		}},
		{"wide constants", func(t *testing.T) *classBuilder {
			b := newClassBuilder(t, "demo/Wide", "java/lang/Object")
			cp := b.cf.ConstantPool
			b.must(cp.AddLong(-1))
			b.must(cp.AddDouble(2.5))
			b.must(cp.AddFloat(1.5))
			b.must(cp.AddString("café \x00 \U0001F600"))
			b.must(cp.AddMethodHandle(RefInvokeStatic, b.must(cp.AddMethodref("demo/Wide", "m", "()V"))))
			b.must(cp.AddMethodType("(I)V"))
			b.must(cp.AddInterfaceMethodref("java/lang/Runnable", "run", "()V"))
			b.must(cp.AddFieldref("demo/Wide", "f", "J"))
			b.must(cp.AddModule("java.base"))
			b.must(cp.AddPackage("demo"))
			return b
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.build(t).bytes()
			cf, err := ParseBytes(data)
			require.NoError(t, err)

			out, err := cf.Bytes()
			require.NoError(t, err)
			assert.Equal(t, data, out)

			var buf bytes.Buffer
			n, err := cf.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), n)
			assert.Equal(t, data, buf.Bytes())
		})
	}
}

func TestParseReaderAndFile(t *testing.T) {
	data := sampleClass(t).bytes()

	cf, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "demo/Sample", cf.ClassName())

	cf, err = Parse(bytes.NewBuffer(data))
	require.NoError(t, err)
	assert.Equal(t, "demo/Sample", cf.ClassName())

	path := filepath.Join(t.TempDir(), "Sample.class")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	cf, err = ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo/Sample", cf.ClassName())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.class"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIconstIreturn(t *testing.T) {
	b := newClassBuilder(t, "demo/Zero", "java/lang/Object")
	b.method(AccPublic|AccStatic, "zero", "()I", b.attr(&CodeAttribute{
		MaxStack:  1,
		MaxLocals: 0,
		Code:      []byte{0x03, 0xac},
	}))
	data := b.bytes()

	cf, err := ParseBytes(data)
	require.NoError(t, err)
	code := cf.GetMethod("zero", "()I").Code()
	instrs, err := code.Instructions()
	require.NoError(t, err)
	require.Len(t, instrs, 2)
	assert.Equal(t, bytecode.OpIconst0, instrs[0].Op())
	assert.Equal(t, 0, instrs[0].Pos())
	assert.Equal(t, bytecode.OpIreturn, instrs[1].Op())
	assert.Equal(t, 1, instrs[1].Pos())

	require.NoError(t, code.SetInstructions(instrs))
	assert.Equal(t, []byte{0x03, 0xac}, code.Code)

	out, err := cf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestUnknownAttributePreserved(t *testing.T) {
	b := sampleClass(t)
	b.classAttr(&UnknownAttribute{Name: "org.example.Custom", Data: []byte{0xde, 0xad, 0xbe, 0xef, 0x00}})
	data := b.bytes()

	cf, err := ParseBytes(data)
	require.NoError(t, err)

	attr := cf.FindAttribute("org.example.Custom")
	require.NotNil(t, attr)
	assert.Equal(t, uint32(5), attr.Length)
	assert.Equal(t, "org.example.Custom", attr.Name(cf.ConstantPool))
	unknown, ok := attr.Body.(*UnknownAttribute)
	require.True(t, ok)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x00}, unknown.Data)

	out, err := cf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestInvalidMagic(t *testing.T) {
	data := sampleClass(t).bytes()
	data[3] = 0xBF

	_, err := ParseBytes(data)
	require.ErrorIs(t, err, ErrInvalidMagic)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "magic", perr.Section)
	assert.Equal(t, int64(4), perr.Offset)
}

func TestTruncatedInput(t *testing.T) {
	data := sampleClass(t).bytes()

	for n := 0; n < len(data); n++ {
		_, err := ParseBytes(data[:n])
		if !assert.ErrorIs(t, err, ErrUnexpectedEOF, "prefix of %d bytes", n) {
			return
		}
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	}
}

func TestTolerateTruncation(t *testing.T) {
	b := sampleClass(t)
	b.classAttr(&UnknownAttribute{Name: "Trailer", Data: []byte{1, 2, 3, 4}})
	data := b.bytes()

	t.Run("inside the attribute table", func(t *testing.T) {
		var warnings []error
		cf, err := ParseBytes(data[:len(data)-2], WithTolerateTruncation(), WithWarningHandler(func(err error) {
			warnings = append(warnings, err)
		}))
		require.NoError(t, err)
		require.Len(t, cf.Attributes, 1)
		assert.Equal(t, "Sample.java", cf.SourceFile())

		require.Len(t, warnings, 1)
		var tw *TruncationWarning
		require.ErrorAs(t, warnings[0], &tw)
		assert.Equal(t, 1, tw.Read)
		assert.Equal(t, 2, tw.Declared)
	})

	t.Run("before the attribute count", func(t *testing.T) {
		full, err := ParseBytes(data)
		require.NoError(t, err)
		full.Attributes = nil
		noAttrs, err := full.Bytes()
		require.NoError(t, err)

		cf, err := ParseBytes(noAttrs[:len(noAttrs)-2], WithTolerateTruncation())
		require.NoError(t, err)
		assert.Empty(t, cf.Attributes)
		assert.Len(t, cf.Methods, 3)
	})

	t.Run("before the attributes is still fatal", func(t *testing.T) {
		_, err := ParseBytes(data[:40], WithTolerateTruncation())
		assert.ErrorIs(t, err, ErrUnexpectedEOF)
	})
}

func TestVersionWarning(t *testing.T) {
	tests := []struct {
		major uint16
		warn  bool
	}{
		{44, true},
		{45, false},
		{52, false},
		{69, false},
		{70, true},
	}

	for _, tt := range tests {
		b := newClassBuilder(t, "demo/V", "java/lang/Object")
		b.cf.MajorVersion = tt.major
		var warnings []error
		cf, err := ParseBytes(b.bytes(), WithWarningHandler(func(err error) { warnings = append(warnings, err) }))
		require.NoError(t, err)
		assert.Equal(t, tt.major, cf.MajorVersion)

		if !tt.warn {
			assert.Empty(t, warnings, "major %d", tt.major)
			continue
		}
		require.Len(t, warnings, 1, "major %d", tt.major)
		var vw *VersionWarning
		require.ErrorAs(t, warnings[0], &vw)
		assert.Equal(t, tt.major, vw.Major)
	}
}

func TestSkipAttributes(t *testing.T) {
	data := sampleClass(t).bytes()

	cf, err := ParseBytes(data, WithSkipAttributes())
	require.NoError(t, err)

	ctor := cf.GetMethod("<init>", "()V")
	require.NotNil(t, ctor)
	assert.Nil(t, ctor.Code())
	attr := ctor.FindAttribute(AttrCode)
	require.NotNil(t, attr)
	assert.IsType(t, &SkippedAttribute{}, attr.Body)
	assert.NotZero(t, attr.Length)

	_, err = cf.Bytes()
	assert.ErrorIs(t, err, ErrSkippedAttribute)
}

func TestAttributeLengthMismatch(t *testing.T) {
	b := newClassBuilder(t, "demo/Bad", "java/lang/Object")
	b.classAttr(&SourceFileAttribute{SourceFileIndex: b.utf8("Bad.java")})
	data := b.bytes()

	// The SourceFile attribute is the last six bytes plus its two byte body.
	tests := []struct {
		name     string
		patch    func([]byte) []byte
		consumed int64
	}{
		{
			name: "declared longer than body",
			patch: func(d []byte) []byte {
				d = append(d, 0x00)
				d[len(d)-4] = 3
				return d
			},
			consumed: 2,
		},
		{
			name: "declared shorter than body",
			patch: func(d []byte) []byte {
				d[len(d)-3] = 1
				return d[:len(d)-1]
			},
			consumed: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.patch(bytes.Clone(data))
			_, err := ParseBytes(in)
			require.ErrorIs(t, err, ErrAttributeLength)
			var lerr *AttributeLengthError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, "SourceFile", lerr.Name)
			assert.Equal(t, tt.consumed, lerr.Consumed)
		})
	}
}

func TestWriteChecksAttributeName(t *testing.T) {
	b := sampleClass(t)
	b.cf.Attributes[0].NameIndex = b.utf8("Signature")

	_, err := b.cf.Bytes()
	assert.ErrorIs(t, err, ErrAttributeName)
}

func TestUnknownConstantTag(t *testing.T) {
	// magic, version 52.0, constant_pool_count 2, tag 2 (unused)
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52, 0, 2, 2}

	_, err := ParseBytes(data)
	require.ErrorIs(t, err, ErrUnknownConstantTag)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "constant pool entry 1", perr.Section)
}

func TestMalformedUtf8Constant(t *testing.T) {
	// A lone continuation byte is never valid.
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52, 0, 2, 1, 0, 1, 0x80}

	_, err := ParseBytes(data)
	assert.ErrorIs(t, err, ErrMalformedUtf8)
}

func TestLongInLastSlot(t *testing.T) {
	// constant_pool_count 2 leaves room for one slot only.
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52, 0, 2, 5, 0, 0, 0, 0, 0, 0, 0, 1}

	_, err := ParseBytes(data)
	assert.ErrorIs(t, err, ErrConstantPoolIndex)
}

func TestZeroConstantPoolCount(t *testing.T) {
	// A count of 0 cannot be written back; the smallest valid count is 1.
	data := []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 52, 0, 0}

	_, err := ParseBytes(data)
	require.ErrorIs(t, err, ErrConstantPoolIndex)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "constant pool", perr.Section)
	assert.Equal(t, int64(10), perr.Offset)
}

func TestParseErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidMagic, ErrConstantPoolIndex, ErrConstantPoolType, ErrUnknownConstantTag,
		ErrUnexpectedEOF, ErrIllegalOpcode, ErrTruncatedInstruction, ErrMalformedUtf8,
		ErrAttributeLength,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}
