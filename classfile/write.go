package classfile

import (
	"fmt"
	"io"

	"github.com/dhamidi/jclass/classfile/internal/binio"
	"github.com/dhamidi/jclass/mutf8"
)

// WriteTo serializes the class file in file order. Every length and count is
// recomputed from the model; the Length fields of attributes are ignored.
func (cf *ClassFile) WriteTo(w io.Writer) (int64, error) {
	data, err := cf.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Bytes returns the serialized class file. Nothing is returned unless the
// whole class could be encoded.
func (cf *ClassFile) Bytes() ([]byte, error) {
	if cf.ConstantPool == nil {
		return nil, fmt.Errorf("classfile: class has no constant pool")
	}
	bw := binio.NewBufferWriter()
	e := &encoder{w: bw, cp: cf.ConstantPool}

	bw.U4(Magic)
	bw.U2(cf.MinorVersion)
	bw.U2(cf.MajorVersion)
	if err := writeConstantPool(bw, cf.ConstantPool); err != nil {
		return nil, fmt.Errorf("constant pool: %w", err)
	}

	bw.U2(uint16(cf.AccessFlags))
	bw.U2(cf.ThisClass)
	bw.U2(cf.SuperClass)
	e.u2s(cf.Interfaces)

	e.count(len(cf.Fields))
	for i := range cf.Fields {
		writeMember(e, &cf.Fields[i].MemberInfo)
		if err := bw.Err(); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}
	e.count(len(cf.Methods))
	for i := range cf.Methods {
		writeMember(e, &cf.Methods[i].MemberInfo)
		if err := bw.Err(); err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
	}
	writeAttributes(e, cf.Attributes)
	if err := bw.Err(); err != nil {
		return nil, err
	}
	return bw.Bytes(), nil
}

func writeConstantPool(w *binio.Writer, cp *ConstantPool) error {
	w.U2(uint16(cp.Len()))
	for i, c := range cp.All() {
		w.U1(uint8(c.Tag()))
		switch c := c.(type) {
		case ConstantUtf8Info:
			b, err := mutf8.Encode(c.Value)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			w.U2(uint16(len(b)))
			w.WriteBytes(b)
		case ConstantIntegerInfo:
			w.I4(c.Value)
		case ConstantFloatInfo:
			w.U4(c.Bits)
		case ConstantLongInfo:
			w.U8(uint64(c.Value))
		case ConstantDoubleInfo:
			w.U8(c.Bits)
		case ConstantClassInfo:
			w.U2(c.NameIndex)
		case ConstantStringInfo:
			w.U2(c.StringIndex)
		case ConstantFieldrefInfo:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case ConstantMethodrefInfo:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case ConstantInterfaceMethodrefInfo:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case ConstantNameAndTypeInfo:
			w.U2(c.NameIndex)
			w.U2(c.DescriptorIndex)
		case ConstantMethodHandleInfo:
			w.U1(uint8(c.ReferenceKind))
			w.U2(c.ReferenceIndex)
		case ConstantMethodTypeInfo:
			w.U2(c.DescriptorIndex)
		case ConstantDynamicInfo:
			w.U2(c.BootstrapMethodAttrIndex)
			w.U2(c.NameAndTypeIndex)
		case ConstantInvokeDynamicInfo:
			w.U2(c.BootstrapMethodAttrIndex)
			w.U2(c.NameAndTypeIndex)
		case ConstantModuleInfo:
			w.U2(c.NameIndex)
		case ConstantPackageInfo:
			w.U2(c.NameIndex)
		}
	}
	return w.Err()
}
