package classfile

import (
	"errors"
	"fmt"
	"math"

	"github.com/dhamidi/jclass/classfile/internal/binio"
)

// AttributeKind is the name an attribute is stored under in the constant
// pool.
type AttributeKind string

const (
	AttrConstantValue                        AttributeKind = "ConstantValue"
	AttrCode                                 AttributeKind = "Code"
	AttrStackMapTable                        AttributeKind = "StackMapTable"
	AttrExceptions                           AttributeKind = "Exceptions"
	AttrInnerClasses                         AttributeKind = "InnerClasses"
	AttrEnclosingMethod                      AttributeKind = "EnclosingMethod"
	AttrSynthetic                            AttributeKind = "Synthetic"
	AttrSignature                            AttributeKind = "Signature"
	AttrSourceFile                           AttributeKind = "SourceFile"
	AttrSourceDebugExtension                 AttributeKind = "SourceDebugExtension"
	AttrLineNumberTable                      AttributeKind = "LineNumberTable"
	AttrLocalVariableTable                   AttributeKind = "LocalVariableTable"
	AttrLocalVariableTypeTable               AttributeKind = "LocalVariableTypeTable"
	AttrDeprecated                           AttributeKind = "Deprecated"
	AttrRuntimeVisibleAnnotations            AttributeKind = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations          AttributeKind = "RuntimeInvisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   AttributeKind = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeInvisibleParameterAnnotations AttributeKind = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        AttributeKind = "RuntimeVisibleTypeAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      AttributeKind = "RuntimeInvisibleTypeAnnotations"
	AttrAnnotationDefault                    AttributeKind = "AnnotationDefault"
	AttrBootstrapMethods                     AttributeKind = "BootstrapMethods"
	AttrMethodParameters                     AttributeKind = "MethodParameters"
	AttrModule                               AttributeKind = "Module"
	AttrModulePackages                       AttributeKind = "ModulePackages"
	AttrModuleMainClass                      AttributeKind = "ModuleMainClass"
	AttrModuleTarget                         AttributeKind = "ModuleTarget"
	AttrModuleHashes                         AttributeKind = "ModuleHashes"
	AttrModuleResolution                     AttributeKind = "ModuleResolution"
	AttrNestHost                             AttributeKind = "NestHost"
	AttrNestMembers                          AttributeKind = "NestMembers"
	AttrRecord                               AttributeKind = "Record"
	AttrPermittedSubclasses                  AttributeKind = "PermittedSubclasses"
)

// Attribute is the decoded body of an attribute. The set of implementations
// is closed: every known attribute name has its own type, anything else is
// an *UnknownAttribute, and attributes read with WithSkipAttributes are
// *SkippedAttribute.
type Attribute interface {
	Kind() AttributeKind
	decode(d *decoder)
	encode(e *encoder)
}

// AttributeInfo is an attribute as it appears in a class file. Length is the
// length declared in the input; it is recomputed from Body when writing.
type AttributeInfo struct {
	NameIndex uint16
	Length    uint32
	Body      Attribute
}

func (a *AttributeInfo) Name(cp *ConstantPool) string {
	return cp.GetUtf8(a.NameIndex)
}

// newAttribute returns an empty body for the attribute called name.
func newAttribute(name string) Attribute {
	switch AttributeKind(name) {
	case AttrConstantValue:
		return &ConstantValueAttribute{}
	case AttrCode:
		return &CodeAttribute{}
	case AttrStackMapTable:
		return &StackMapTableAttribute{}
	case AttrExceptions:
		return &ExceptionsAttribute{}
	case AttrInnerClasses:
		return &InnerClassesAttribute{}
	case AttrEnclosingMethod:
		return &EnclosingMethodAttribute{}
	case AttrSynthetic:
		return &SyntheticAttribute{}
	case AttrSignature:
		return &SignatureAttribute{}
	case AttrSourceFile:
		return &SourceFileAttribute{}
	case AttrSourceDebugExtension:
		return &SourceDebugExtensionAttribute{}
	case AttrLineNumberTable:
		return &LineNumberTableAttribute{}
	case AttrLocalVariableTable:
		return &LocalVariableTableAttribute{}
	case AttrLocalVariableTypeTable:
		return &LocalVariableTypeTableAttribute{}
	case AttrDeprecated:
		return &DeprecatedAttribute{}
	case AttrRuntimeVisibleAnnotations:
		return &RuntimeVisibleAnnotationsAttribute{}
	case AttrRuntimeInvisibleAnnotations:
		return &RuntimeInvisibleAnnotationsAttribute{}
	case AttrRuntimeVisibleParameterAnnotations:
		return &RuntimeVisibleParameterAnnotationsAttribute{}
	case AttrRuntimeInvisibleParameterAnnotations:
		return &RuntimeInvisibleParameterAnnotationsAttribute{}
	case AttrRuntimeVisibleTypeAnnotations:
		return &RuntimeVisibleTypeAnnotationsAttribute{}
	case AttrRuntimeInvisibleTypeAnnotations:
		return &RuntimeInvisibleTypeAnnotationsAttribute{}
	case AttrAnnotationDefault:
		return &AnnotationDefaultAttribute{}
	case AttrBootstrapMethods:
		return &BootstrapMethodsAttribute{}
	case AttrMethodParameters:
		return &MethodParametersAttribute{}
	case AttrModule:
		return &ModuleAttribute{}
	case AttrModulePackages:
		return &ModulePackagesAttribute{}
	case AttrModuleMainClass:
		return &ModuleMainClassAttribute{}
	case AttrModuleTarget:
		return &ModuleTargetAttribute{}
	case AttrModuleHashes:
		return &ModuleHashesAttribute{}
	case AttrModuleResolution:
		return &ModuleResolutionAttribute{}
	case AttrNestHost:
		return &NestHostAttribute{}
	case AttrNestMembers:
		return &NestMembersAttribute{}
	case AttrRecord:
		return &RecordAttribute{}
	case AttrPermittedSubclasses:
		return &PermittedSubclassesAttribute{}
	}
	return &UnknownAttribute{Name: name}
}

// decoder reads attribute bodies. Every attribute gets its own decoder whose
// reader is bounded to the attribute's declared length.
type decoder struct {
	r    *binio.Reader
	cp   *ConstantPool
	opts *options
}

func (d *decoder) sub(data []byte) *decoder {
	return &decoder{r: binio.NewBytesReader(data), cp: d.cp, opts: d.opts}
}

// u2s reads a u2 count followed by that many u2 values.
func (d *decoder) u2s() []uint16 {
	n := d.r.U2()
	if d.r.Err() != nil {
		return nil
	}
	v := make([]uint16, n)
	for i := range v {
		v[i] = d.r.U2()
	}
	return v
}

func (d *decoder) fail(format string, args ...any) {
	d.r.Fail(fmt.Errorf("%w: "+format, append([]any{ErrMalformedAttribute}, args...)...))
}

type encoder struct {
	w  *binio.Writer
	cp *ConstantPool
}

func (e *encoder) sub() *encoder {
	return &encoder{w: binio.NewBufferWriter(), cp: e.cp}
}

// count writes a u2 table length.
func (e *encoder) count(n int) {
	if n > math.MaxUint16 {
		e.w.Fail(fmt.Errorf("%w: %d entries", ErrCountOverflow, n))
		return
	}
	e.w.U2(uint16(n))
}

// count1 writes a u1 table length.
func (e *encoder) count1(n int) {
	if n > math.MaxUint8 {
		e.w.Fail(fmt.Errorf("%w: %d entries", ErrCountOverflow, n))
		return
	}
	e.w.U1(uint8(n))
}

func (e *encoder) u2s(v []uint16) {
	e.count(len(v))
	for _, x := range v {
		e.w.U2(x)
	}
}

func readAttributes(d *decoder) ([]AttributeInfo, error) {
	n := d.r.U2()
	if err := d.r.Err(); err != nil {
		return nil, err
	}
	attrs := make([]AttributeInfo, 0, n)
	for i := 0; i < int(n); i++ {
		attr, err := readAttribute(d)
		if err != nil {
			return attrs, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func readAttribute(d *decoder) (AttributeInfo, error) {
	at := d.r.Count()
	nameIndex := d.r.U2()
	length := d.r.U4()
	if err := d.r.Err(); err != nil {
		return AttributeInfo{}, err
	}
	name, err := d.cp.Utf8(nameIndex)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("attribute name: %w", err)
	}
	d.opts.tracef("attribute %s at offset %d, %d bytes", name, at, length)

	info := AttributeInfo{NameIndex: nameIndex, Length: length}
	if d.opts.skipAttributes {
		d.r.Skip(int64(length))
		info.Body = &SkippedAttribute{Name: name}
		return info, d.r.Err()
	}

	data := d.r.Bytes(int(length))
	if err := d.r.Err(); err != nil {
		return AttributeInfo{}, err
	}
	body := newAttribute(name)
	sub := d.sub(data)
	body.decode(sub)
	if err := sub.r.Err(); err != nil {
		if errors.Is(err, binio.ErrUnexpectedEOF) {
			return AttributeInfo{}, &AttributeLengthError{Name: name, Declared: length, Consumed: -1}
		}
		return AttributeInfo{}, fmt.Errorf("attribute %s: %w", name, err)
	}
	if n := sub.r.Count(); n != int64(length) {
		return AttributeInfo{}, &AttributeLengthError{Name: name, Declared: length, Consumed: n}
	}
	info.Body = body
	return info, nil
}

func writeAttributes(e *encoder, attrs []AttributeInfo) {
	e.count(len(attrs))
	for i := range attrs {
		writeAttribute(e, &attrs[i])
	}
}

func writeAttribute(e *encoder, a *AttributeInfo) {
	if e.w.Err() != nil {
		return
	}
	if err := checkAttributeName(e.cp, a); err != nil {
		e.w.Fail(err)
		return
	}
	sub := e.sub()
	a.Body.encode(sub)
	if err := sub.w.Err(); err != nil {
		e.w.Fail(fmt.Errorf("attribute %s: %w", a.Body.Kind(), err))
		return
	}
	body := sub.w.Bytes()
	if int64(len(body)) > math.MaxUint32 {
		e.w.Fail(&AttributeLengthError{Name: string(a.Body.Kind()), Declared: math.MaxUint32, Consumed: int64(len(body))})
		return
	}
	e.w.U2(a.NameIndex)
	e.w.U4(uint32(len(body)))
	e.w.WriteBytes(body)
}

// checkAttributeName verifies that the name at NameIndex matches the body.
func checkAttributeName(cp *ConstantPool, a *AttributeInfo) error {
	if a.Body == nil {
		return fmt.Errorf("%w: attribute %d has no body", ErrMalformedAttribute, a.NameIndex)
	}
	name, err := cp.Utf8(a.NameIndex)
	if err != nil {
		return fmt.Errorf("attribute name: %w", err)
	}
	if name != string(a.Body.Kind()) {
		return fmt.Errorf("%w: name %q, body %s", ErrAttributeName, name, a.Body.Kind())
	}
	return nil
}

// NewAttribute registers the name of body in cp and returns the attribute
// ready to be appended to an attribute table.
func NewAttribute(cp *ConstantPool, body Attribute) (AttributeInfo, error) {
	ni, err := cp.AddUtf8(string(body.Kind()))
	if err != nil {
		return AttributeInfo{}, err
	}
	e := &encoder{w: binio.NewBufferWriter(), cp: cp}
	body.encode(e)
	if err := e.w.Err(); err != nil {
		return AttributeInfo{}, err
	}
	return AttributeInfo{NameIndex: ni, Length: uint32(e.w.Len()), Body: body}, nil
}

// FindAttribute returns the first attribute of the given kind.
func FindAttribute(attrs []AttributeInfo, kind AttributeKind) *AttributeInfo {
	for i := range attrs {
		if attrs[i].Body != nil && attrs[i].Body.Kind() == kind {
			return &attrs[i]
		}
	}
	return nil
}

// AttributeOf returns the first attribute body of type T.
func AttributeOf[T Attribute](attrs []AttributeInfo) (T, bool) {
	for i := range attrs {
		if body, ok := attrs[i].Body.(T); ok {
			return body, true
		}
	}
	var zero T
	return zero, false
}

// UnknownAttribute holds the raw bytes of an attribute with an unrecognised
// name. It is written back unchanged.
type UnknownAttribute struct {
	Name string
	Data []byte
}

func (a *UnknownAttribute) Kind() AttributeKind { return AttributeKind(a.Name) }
func (a *UnknownAttribute) decode(d *decoder)   { a.Data = d.r.Bytes(int(d.r.Len())) }
func (a *UnknownAttribute) encode(e *encoder)   { e.w.WriteBytes(a.Data) }

// SkippedAttribute stands in for an attribute that was not decoded.
type SkippedAttribute struct {
	Name string
}

func (a *SkippedAttribute) Kind() AttributeKind { return AttributeKind(a.Name) }
func (a *SkippedAttribute) decode(d *decoder)   { d.r.Skip(d.r.Len()) }
func (a *SkippedAttribute) encode(e *encoder) {
	e.w.Fail(fmt.Errorf("%w: %s", ErrSkippedAttribute, a.Name))
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (a *ConstantValueAttribute) Kind() AttributeKind { return AttrConstantValue }
func (a *ConstantValueAttribute) decode(d *decoder)   { a.ConstantValueIndex = d.r.U2() }
func (a *ConstantValueAttribute) encode(e *encoder)   { e.w.U2(a.ConstantValueIndex) }

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (a *ExceptionsAttribute) Kind() AttributeKind { return AttrExceptions }
func (a *ExceptionsAttribute) decode(d *decoder)   { a.ExceptionIndexTable = d.u2s() }
func (a *ExceptionsAttribute) encode(e *encoder)   { e.u2s(a.ExceptionIndexTable) }

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

func (a *InnerClassesAttribute) Kind() AttributeKind { return AttrInnerClasses }

func (a *InnerClassesAttribute) decode(d *decoder) {
	a.Classes = make([]InnerClassEntry, d.r.U2())
	for i := range a.Classes {
		a.Classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   d.r.U2(),
			OuterClassInfoIndex:   d.r.U2(),
			InnerNameIndex:        d.r.U2(),
			InnerClassAccessFlags: AccessFlags(d.r.U2()),
		}
	}
}

func (a *InnerClassesAttribute) encode(e *encoder) {
	e.count(len(a.Classes))
	for _, c := range a.Classes {
		e.w.U2(c.InnerClassInfoIndex)
		e.w.U2(c.OuterClassInfoIndex)
		e.w.U2(c.InnerNameIndex)
		e.w.U2(uint16(c.InnerClassAccessFlags))
	}
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

func (a *EnclosingMethodAttribute) Kind() AttributeKind { return AttrEnclosingMethod }

func (a *EnclosingMethodAttribute) decode(d *decoder) {
	a.ClassIndex = d.r.U2()
	a.MethodIndex = d.r.U2()
}

func (a *EnclosingMethodAttribute) encode(e *encoder) {
	e.w.U2(a.ClassIndex)
	e.w.U2(a.MethodIndex)
}

type SyntheticAttribute struct{}

func (a *SyntheticAttribute) Kind() AttributeKind { return AttrSynthetic }
func (a *SyntheticAttribute) decode(*decoder)     {}
func (a *SyntheticAttribute) encode(*encoder)     {}

type DeprecatedAttribute struct{}

func (a *DeprecatedAttribute) Kind() AttributeKind { return AttrDeprecated }
func (a *DeprecatedAttribute) decode(*decoder)     {}
func (a *DeprecatedAttribute) encode(*encoder)     {}

type SignatureAttribute struct {
	SignatureIndex uint16
}

func (a *SignatureAttribute) Kind() AttributeKind { return AttrSignature }
func (a *SignatureAttribute) decode(d *decoder)   { a.SignatureIndex = d.r.U2() }
func (a *SignatureAttribute) encode(e *encoder)   { e.w.U2(a.SignatureIndex) }

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (a *SourceFileAttribute) Kind() AttributeKind { return AttrSourceFile }
func (a *SourceFileAttribute) decode(d *decoder)   { a.SourceFileIndex = d.r.U2() }
func (a *SourceFileAttribute) encode(e *encoder)   { e.w.U2(a.SourceFileIndex) }

// SourceDebugExtensionAttribute keeps its payload as raw bytes; it has no
// length prefix of its own.
type SourceDebugExtensionAttribute struct {
	DebugExtension []byte
}

func (a *SourceDebugExtensionAttribute) Kind() AttributeKind { return AttrSourceDebugExtension }
func (a *SourceDebugExtensionAttribute) decode(d *decoder) {
	a.DebugExtension = d.r.Bytes(int(d.r.Len()))
}
func (a *SourceDebugExtensionAttribute) encode(e *encoder) { e.w.WriteBytes(a.DebugExtension) }

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

func (a *LineNumberTableAttribute) Kind() AttributeKind { return AttrLineNumberTable }

func (a *LineNumberTableAttribute) decode(d *decoder) {
	a.LineNumberTable = make([]LineNumberEntry, d.r.U2())
	for i := range a.LineNumberTable {
		a.LineNumberTable[i] = LineNumberEntry{StartPC: d.r.U2(), LineNumber: d.r.U2()}
	}
}

func (a *LineNumberTableAttribute) encode(e *encoder) {
	e.count(len(a.LineNumberTable))
	for _, l := range a.LineNumberTable {
		e.w.U2(l.StartPC)
		e.w.U2(l.LineNumber)
	}
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

func (a *LocalVariableTableAttribute) Kind() AttributeKind { return AttrLocalVariableTable }

func (a *LocalVariableTableAttribute) decode(d *decoder) {
	a.LocalVariableTable = make([]LocalVariableEntry, d.r.U2())
	for i := range a.LocalVariableTable {
		a.LocalVariableTable[i] = LocalVariableEntry{
			StartPC:         d.r.U2(),
			Length:          d.r.U2(),
			NameIndex:       d.r.U2(),
			DescriptorIndex: d.r.U2(),
			Index:           d.r.U2(),
		}
	}
}

func (a *LocalVariableTableAttribute) encode(e *encoder) {
	e.count(len(a.LocalVariableTable))
	for _, v := range a.LocalVariableTable {
		e.w.U2(v.StartPC)
		e.w.U2(v.Length)
		e.w.U2(v.NameIndex)
		e.w.U2(v.DescriptorIndex)
		e.w.U2(v.Index)
	}
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableTypeEntry
}

type LocalVariableTypeEntry struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

func (a *LocalVariableTypeTableAttribute) Kind() AttributeKind { return AttrLocalVariableTypeTable }

func (a *LocalVariableTypeTableAttribute) decode(d *decoder) {
	a.LocalVariableTypeTable = make([]LocalVariableTypeEntry, d.r.U2())
	for i := range a.LocalVariableTypeTable {
		a.LocalVariableTypeTable[i] = LocalVariableTypeEntry{
			StartPC:        d.r.U2(),
			Length:         d.r.U2(),
			NameIndex:      d.r.U2(),
			SignatureIndex: d.r.U2(),
			Index:          d.r.U2(),
		}
	}
}

func (a *LocalVariableTypeTableAttribute) encode(e *encoder) {
	e.count(len(a.LocalVariableTypeTable))
	for _, v := range a.LocalVariableTypeTable {
		e.w.U2(v.StartPC)
		e.w.U2(v.Length)
		e.w.U2(v.NameIndex)
		e.w.U2(v.SignatureIndex)
		e.w.U2(v.Index)
	}
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

func (a *BootstrapMethodsAttribute) Kind() AttributeKind { return AttrBootstrapMethods }

func (a *BootstrapMethodsAttribute) decode(d *decoder) {
	a.BootstrapMethods = make([]BootstrapMethod, d.r.U2())
	for i := range a.BootstrapMethods {
		a.BootstrapMethods[i].BootstrapMethodRef = d.r.U2()
		a.BootstrapMethods[i].BootstrapArguments = d.u2s()
	}
}

func (a *BootstrapMethodsAttribute) encode(e *encoder) {
	e.count(len(a.BootstrapMethods))
	for _, m := range a.BootstrapMethods {
		e.w.U2(m.BootstrapMethodRef)
		e.u2s(m.BootstrapArguments)
	}
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

func (a *MethodParametersAttribute) Kind() AttributeKind { return AttrMethodParameters }

func (a *MethodParametersAttribute) decode(d *decoder) {
	a.Parameters = make([]MethodParameter, d.r.U1())
	for i := range a.Parameters {
		a.Parameters[i] = MethodParameter{NameIndex: d.r.U2(), AccessFlags: AccessFlags(d.r.U2())}
	}
}

func (a *MethodParametersAttribute) encode(e *encoder) {
	e.count1(len(a.Parameters))
	for _, p := range a.Parameters {
		e.w.U2(p.NameIndex)
		e.w.U2(uint16(p.AccessFlags))
	}
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

func (a *NestHostAttribute) Kind() AttributeKind { return AttrNestHost }
func (a *NestHostAttribute) decode(d *decoder)   { a.HostClassIndex = d.r.U2() }
func (a *NestHostAttribute) encode(e *encoder)   { e.w.U2(a.HostClassIndex) }

type NestMembersAttribute struct {
	Classes []uint16
}

func (a *NestMembersAttribute) Kind() AttributeKind { return AttrNestMembers }
func (a *NestMembersAttribute) decode(d *decoder)   { a.Classes = d.u2s() }
func (a *NestMembersAttribute) encode(e *encoder)   { e.u2s(a.Classes) }

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

func (a *PermittedSubclassesAttribute) Kind() AttributeKind { return AttrPermittedSubclasses }
func (a *PermittedSubclassesAttribute) decode(d *decoder)   { a.Classes = d.u2s() }
func (a *PermittedSubclassesAttribute) encode(e *encoder)   { e.u2s(a.Classes) }

type RecordAttribute struct {
	Components []RecordComponentInfo
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (a *RecordAttribute) Kind() AttributeKind { return AttrRecord }

func (a *RecordAttribute) decode(d *decoder) {
	n := d.r.U2()
	if d.r.Err() != nil {
		return
	}
	a.Components = make([]RecordComponentInfo, n)
	for i := range a.Components {
		c := &a.Components[i]
		c.NameIndex = d.r.U2()
		c.DescriptorIndex = d.r.U2()
		attrs, err := readAttributes(d)
		if err != nil {
			d.r.Fail(fmt.Errorf("record component %d: %w", i, err))
			return
		}
		c.Attributes = attrs
	}
}

func (a *RecordAttribute) encode(e *encoder) {
	e.count(len(a.Components))
	for _, c := range a.Components {
		e.w.U2(c.NameIndex)
		e.w.U2(c.DescriptorIndex)
		writeAttributes(e, c.Attributes)
	}
}
