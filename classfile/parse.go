package classfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/jclass/classfile/internal/binio"
	"github.com/dhamidi/jclass/mutf8"
)

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data, opts...)
}

// Parse reads a complete class file from r.
func Parse(r io.Reader, opts ...Option) (*ClassFile, error) {
	if br, ok := r.(*bytes.Reader); ok {
		return parse(binio.NewReader(br), newOptions(opts))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Section: "input", Err: err}
	}
	return ParseBytes(data, opts...)
}

func ParseBytes(data []byte, opts ...Option) (*ClassFile, error) {
	return parse(binio.NewBytesReader(data), newOptions(opts))
}

type parser struct {
	r    *binio.Reader
	opts *options
	cf   *ClassFile
}

func (p *parser) fail(section string, err error) error {
	return &ParseError{Section: section, Offset: p.r.Count(), Err: err}
}

func parse(r *binio.Reader, opts *options) (*ClassFile, error) {
	p := &parser{r: r, opts: opts, cf: &ClassFile{ConstantPool: NewConstantPool()}}
	cf := p.cf

	magic := r.U4()
	if err := r.Err(); err != nil {
		return nil, p.fail("magic", err)
	}
	if magic != Magic {
		return nil, p.fail("magic", fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic))
	}

	cf.MinorVersion = r.U2()
	cf.MajorVersion = r.U2()
	if err := r.Err(); err != nil {
		return nil, p.fail("version", err)
	}
	if cf.MajorVersion < MinMajorVersion || cf.MajorVersion > MaxMajorVersion {
		opts.warn(&VersionWarning{Major: cf.MajorVersion, Minor: cf.MinorVersion})
	}
	opts.tracef("version %d.%d", cf.MajorVersion, cf.MinorVersion)

	if err := p.readConstantPool(); err != nil {
		return nil, err
	}

	cf.AccessFlags = AccessFlags(r.U2())
	cf.ThisClass = r.U2()
	cf.SuperClass = r.U2()
	if err := r.Err(); err != nil {
		return nil, p.fail("class header", err)
	}

	n := r.U2()
	if err := r.Err(); err != nil {
		return nil, p.fail("interfaces", err)
	}
	cf.Interfaces = make([]uint16, n)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.U2()
	}
	if err := r.Err(); err != nil {
		return nil, p.fail("interfaces", err)
	}

	d := &decoder{r: r, cp: cf.ConstantPool, opts: opts}

	n = r.U2()
	if err := r.Err(); err != nil {
		return nil, p.fail("fields", err)
	}
	opts.tracef("%d fields at offset %d", n, r.Count())
	cf.Fields = make([]FieldInfo, n)
	for i := range cf.Fields {
		m, err := readMember(d)
		if err != nil {
			return nil, p.fail(fmt.Sprintf("field %d", i), err)
		}
		cf.Fields[i] = FieldInfo{m}
	}

	n = r.U2()
	if err := r.Err(); err != nil {
		return nil, p.fail("methods", err)
	}
	opts.tracef("%d methods at offset %d", n, r.Count())
	cf.Methods = make([]MethodInfo, n)
	for i := range cf.Methods {
		m, err := readMember(d)
		if err != nil {
			return nil, p.fail(fmt.Sprintf("method %d", i), err)
		}
		cf.Methods[i] = MethodInfo{m}
	}

	if err := p.readClassAttributes(d); err != nil {
		return nil, err
	}
	return cf, nil
}

// readClassAttributes reads the trailing attribute table. In tolerant mode
// the input may end anywhere inside it.
func (p *parser) readClassAttributes(d *decoder) error {
	n := p.r.U2()
	if err := p.r.Err(); err != nil {
		if p.truncated(err, 0, 0) {
			return nil
		}
		return p.fail("attributes", err)
	}
	p.cf.Attributes = make([]AttributeInfo, 0, n)
	for i := 0; i < int(n); i++ {
		attr, err := readAttribute(d)
		if err != nil {
			if p.truncated(err, i, int(n)) {
				return nil
			}
			return p.fail("attributes", err)
		}
		p.cf.Attributes = append(p.cf.Attributes, attr)
	}
	if p.r.Len() > 0 {
		p.opts.warn(fmt.Errorf("classfile: %d trailing bytes after class attributes", p.r.Len()))
	}
	return nil
}

func (p *parser) truncated(err error, read, declared int) bool {
	if !p.opts.tolerateTruncation || !errors.Is(err, binio.ErrUnexpectedEOF) {
		return false
	}
	p.opts.warn(&TruncationWarning{Offset: p.r.Count(), Read: read, Declared: declared})
	return true
}

func (p *parser) readConstantPool() error {
	r := p.r
	count := r.U2()
	if err := r.Err(); err != nil {
		return p.fail("constant pool", err)
	}
	if count == 0 {
		return p.fail("constant pool", fmt.Errorf("%w: constant_pool_count is 0", ErrConstantPoolIndex))
	}
	p.opts.tracef("constant pool count %d", count)

	cp := p.cf.ConstantPool
	for cp.Len() < int(count) {
		at := r.Count()
		index := cp.Len()
		c, err := readConstant(r)
		if err != nil {
			return p.fail(fmt.Sprintf("constant pool entry %d", index), err)
		}
		if index+width(c) > int(count) {
			return p.fail(fmt.Sprintf("constant pool entry %d", index),
				fmt.Errorf("%w: %s needs two slots but only one is left", ErrConstantPoolIndex, c.Tag()))
		}
		if _, err := cp.push(c); err != nil {
			return p.fail(fmt.Sprintf("constant pool entry %d", index), err)
		}
		p.opts.tracef("constant %d %s at offset %d", index, c.Tag(), at)
	}
	return nil
}

func readConstant(r *binio.Reader) (Constant, error) {
	tag := ConstantTag(r.U1())
	if err := r.Err(); err != nil {
		return nil, err
	}
	var c Constant
	switch tag {
	case ConstantUtf8:
		b := r.Bytes(int(r.U2()))
		if err := r.Err(); err != nil {
			return nil, err
		}
		s, err := mutf8.Decode(b)
		if err != nil {
			return nil, err
		}
		c = ConstantUtf8Info{Value: s}
	case ConstantInteger:
		c = ConstantIntegerInfo{Value: r.I4()}
	case ConstantFloat:
		c = ConstantFloatInfo{Bits: r.U4()}
	case ConstantLong:
		c = ConstantLongInfo{Value: int64(r.U8())}
	case ConstantDouble:
		c = ConstantDoubleInfo{Bits: r.U8()}
	case ConstantClass:
		c = ConstantClassInfo{NameIndex: r.U2()}
	case ConstantString:
		c = ConstantStringInfo{StringIndex: r.U2()}
	case ConstantFieldref:
		c = ConstantFieldrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantMethodref:
		c = ConstantMethodrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantInterfaceMethodref:
		c = ConstantInterfaceMethodrefInfo{ClassIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantNameAndType:
		c = ConstantNameAndTypeInfo{NameIndex: r.U2(), DescriptorIndex: r.U2()}
	case ConstantMethodHandle:
		c = ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.U1()), ReferenceIndex: r.U2()}
	case ConstantMethodType:
		c = ConstantMethodTypeInfo{DescriptorIndex: r.U2()}
	case ConstantDynamic:
		c = ConstantDynamicInfo{BootstrapMethodAttrIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantInvokeDynamic:
		c = ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: r.U2(), NameAndTypeIndex: r.U2()}
	case ConstantModule:
		c = ConstantModuleInfo{NameIndex: r.U2()}
	case ConstantPackage:
		c = ConstantPackageInfo{NameIndex: r.U2()}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownConstantTag, uint8(tag))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return c, nil
}
