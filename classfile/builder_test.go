package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jclass/classfile/bytecode"
)

// classBuilder assembles class files through the public model so tests do not
// depend on compiled fixtures.
type classBuilder struct {
	t  *testing.T
	cf *ClassFile
}

func newClassBuilder(t *testing.T, name, super string) *classBuilder {
	t.Helper()
	b := &classBuilder{t: t, cf: New(61, 0)}
	b.cf.AccessFlags = AccPublic | AccSuper
	b.cf.ThisClass = b.class(name)
	if super != "" {
		b.cf.SuperClass = b.class(super)
	}
	return b
}

func (b *classBuilder) must(i uint16, err error) uint16 {
	b.t.Helper()
	require.NoError(b.t, err)
	return i
}

func (b *classBuilder) utf8(s string) uint16  { return b.must(b.cf.ConstantPool.AddUtf8(s)) }
func (b *classBuilder) class(s string) uint16 { return b.must(b.cf.ConstantPool.AddClass(s)) }

func (b *classBuilder) attr(body Attribute) AttributeInfo {
	b.t.Helper()
	a, err := NewAttribute(b.cf.ConstantPool, body)
	require.NoError(b.t, err)
	return a
}

func (b *classBuilder) implements(names ...string) {
	for _, n := range names {
		b.cf.Interfaces = append(b.cf.Interfaces, b.class(n))
	}
}

func (b *classBuilder) field(flags AccessFlags, name, desc string, attrs ...AttributeInfo) {
	b.cf.Fields = append(b.cf.Fields, FieldInfo{MemberInfo{
		AccessFlags:     flags,
		NameIndex:       b.utf8(name),
		DescriptorIndex: b.utf8(desc),
		Attributes:      attrs,
	}})
}

func (b *classBuilder) method(flags AccessFlags, name, desc string, attrs ...AttributeInfo) {
	b.cf.Methods = append(b.cf.Methods, MethodInfo{MemberInfo{
		AccessFlags:     flags,
		NameIndex:       b.utf8(name),
		DescriptorIndex: b.utf8(desc),
		Attributes:      attrs,
	}})
}

// code builds a Code attribute from instructions.
func (b *classBuilder) code(maxStack, maxLocals uint16, instrs []bytecode.Instruction, attrs ...AttributeInfo) AttributeInfo {
	b.t.Helper()
	c := &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Attributes: attrs}
	require.NoError(b.t, c.SetInstructions(instrs))
	return b.attr(c)
}

func (b *classBuilder) classAttr(body Attribute) {
	b.cf.Attributes = append(b.cf.Attributes, b.attr(body))
}

func (b *classBuilder) bytes() []byte {
	b.t.Helper()
	data, err := b.cf.Bytes()
	require.NoError(b.t, err)
	return data
}

// sampleClass is a small class using most of the common structures:
//
//	public class demo/Sample extends java/lang/Object implements java/lang/Runnable {
//	    public static final int ANSWER = 42;
//	    private String name;
//	    public <init>() { aload_0; invokespecial Object.<init>; return }
//	    public int pick(int) { tableswitch ... }
//	    public abstract void run();
//	}
func sampleClass(t *testing.T) *classBuilder {
	t.Helper()
	b := newClassBuilder(t, "demo/Sample", "java/lang/Object")
	b.implements("java/lang/Runnable")
	cp := b.cf.ConstantPool

	answer := b.must(cp.AddInteger(42))
	b.field(AccPublic|AccStatic|AccFinal, "ANSWER", "I", b.attr(&ConstantValueAttribute{ConstantValueIndex: answer}))
	b.field(AccPrivate, "name", "Ljava/lang/String;")

	objInit := b.must(cp.AddMethodref("java/lang/Object", "<init>", "()V"))
	b.method(AccPublic, "<init>", "()V",
		b.code(1, 1, []bytecode.Instruction{
			bytecode.NewSimple(bytecode.OpAload0),
			bytecode.NewImmediateShort(bytecode.OpInvokespecial, objInit),
			bytecode.NewSimple(bytecode.OpReturn),
		}, b.attr(&LineNumberTableAttribute{LineNumberTable: []LineNumberEntry{{StartPC: 0, LineNumber: 3}}})))

	b.method(AccPublic, "pick", "(I)I",
		b.code(1, 2, []bytecode.Instruction{
			bytecode.NewImmediateByte(bytecode.OpIload, 1, false),
			bytecode.NewTableSwitch(26, 0, 22, 24),
			bytecode.NewSimple(bytecode.OpIconst1),
			bytecode.NewSimple(bytecode.OpIreturn),
			bytecode.NewSimple(bytecode.OpIconst2),
			bytecode.NewSimple(bytecode.OpIreturn),
			bytecode.NewSimple(bytecode.OpIconst0),
			bytecode.NewSimple(bytecode.OpIreturn),
		}),
		b.attr(&ExceptionsAttribute{ExceptionIndexTable: []uint16{b.class("java/io/IOException")}}))

	b.method(AccPublic|AccAbstract, "run", "()V")
	b.classAttr(&SourceFileAttribute{SourceFileIndex: b.utf8("Sample.java")})
	return b
}
