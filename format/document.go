package format

import (
	"fmt"
	"strconv"

	"github.com/dhamidi/jclass/classfile"
)

// Document is a resolved view of a class file: constant pool references are
// replaced by the names they point at.
type Document struct {
	Name       string     `json:"name"`
	SuperClass string     `json:"superClass,omitempty"`
	Interfaces []string   `json:"interfaces,omitempty"`
	Kind       string     `json:"kind"`
	Flags      []string   `json:"flags,omitempty"`
	Version    Version    `json:"version"`
	SourceFile string     `json:"sourceFile,omitempty"`
	Constants  []Constant `json:"constants"`
	Fields     []Member   `json:"fields,omitempty"`
	Methods    []Member   `json:"methods,omitempty"`
	Attributes []string   `json:"attributes,omitempty"`
}

type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type Constant struct {
	Index uint16 `json:"index"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type Member struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Type       string   `json:"type,omitempty"`
	Flags      []string `json:"flags,omitempty"`
	Signature  string   `json:"signature,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
	Code       *Code    `json:"code,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

type Code struct {
	MaxStack  uint16 `json:"maxStack"`
	MaxLocals uint16 `json:"maxLocals"`
	Length    int    `json:"length"`
	Handlers  int    `json:"handlers,omitempty"`
}

func NewDocument(cf *classfile.ClassFile) *Document {
	cp := cf.ConstantPool
	doc := &Document{
		Name:       cf.ClassName(),
		SuperClass: cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Kind:       classKind(cf),
		Flags:      cf.AccessFlags.Names(classfile.FlagsClass),
		Version:    Version{Major: cf.MajorVersion, Minor: cf.MinorVersion},
		SourceFile: cf.SourceFile(),
		Constants:  []Constant{},
		Attributes: attributeNames(cp, cf.Attributes),
	}
	for i, c := range cp.All() {
		doc.Constants = append(doc.Constants, Constant{Index: i, Tag: c.Tag().String(), Value: DescribeConstant(cp, c)})
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		m := member(cp, &f.MemberInfo, f.FlagNames())
		if ft, err := f.ParsedDescriptor(cp); err == nil {
			m.Type = ft.String()
		}
		doc.Fields = append(doc.Fields, m)
	}
	for i := range cf.Methods {
		mi := &cf.Methods[i]
		m := member(cp, &mi.MemberInfo, mi.FlagNames())
		if md, err := mi.ParsedDescriptor(cp); err == nil {
			m.Type = md.String()
		}
		m.Exceptions = mi.Exceptions(cp)
		if code := mi.Code(); code != nil {
			m.Code = &Code{
				MaxStack:  code.MaxStack,
				MaxLocals: code.MaxLocals,
				Length:    len(code.Code),
				Handlers:  len(code.ExceptionTable),
			}
		}
		doc.Methods = append(doc.Methods, m)
	}
	return doc
}

func member(cp *classfile.ConstantPool, m *classfile.MemberInfo, flags []string) Member {
	return Member{
		Name:       m.Name(cp),
		Descriptor: m.Descriptor(cp),
		Flags:      flags,
		Signature:  m.Signature(cp),
		Attributes: attributeNames(cp, m.Attributes),
	}
}

func attributeNames(cp *classfile.ConstantPool, attrs []classfile.AttributeInfo) []string {
	var names []string
	for i := range attrs {
		names = append(names, attrs[i].Name(cp))
	}
	return names
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsModule():
		return "module"
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsInterface():
		return "interface"
	case cf.IsEnum():
		return "enum"
	default:
		return "class"
	}
}

// DescribeConstant renders c the way javap lists the constant pool: operand
// indices followed by the values they resolve to.
func DescribeConstant(cp *classfile.ConstantPool, c classfile.Constant) string {
	switch c := c.(type) {
	case classfile.ConstantUtf8Info:
		return strconv.Quote(c.Value)
	case classfile.ConstantIntegerInfo:
		return strconv.FormatInt(int64(c.Value), 10)
	case classfile.ConstantFloatInfo:
		return strconv.FormatFloat(float64(c.Float()), 'g', -1, 32) + "f"
	case classfile.ConstantLongInfo:
		return strconv.FormatInt(c.Value, 10) + "l"
	case classfile.ConstantDoubleInfo:
		return strconv.FormatFloat(c.Float(), 'g', -1, 64) + "d"
	case classfile.ConstantClassInfo:
		return fmt.Sprintf("#%d // %s", c.NameIndex, cp.GetUtf8(c.NameIndex))
	case classfile.ConstantStringInfo:
		return fmt.Sprintf("#%d // %s", c.StringIndex, strconv.Quote(cp.GetUtf8(c.StringIndex)))
	case classfile.ConstantFieldrefInfo:
		return memberRef(cp, c.ClassIndex, c.NameAndTypeIndex)
	case classfile.ConstantMethodrefInfo:
		return memberRef(cp, c.ClassIndex, c.NameAndTypeIndex)
	case classfile.ConstantInterfaceMethodrefInfo:
		return memberRef(cp, c.ClassIndex, c.NameAndTypeIndex)
	case classfile.ConstantNameAndTypeInfo:
		return fmt.Sprintf("#%d:#%d // %s:%s", c.NameIndex, c.DescriptorIndex,
			cp.GetUtf8(c.NameIndex), cp.GetUtf8(c.DescriptorIndex))
	case classfile.ConstantMethodHandleInfo:
		return fmt.Sprintf("%s #%d", c.ReferenceKind, c.ReferenceIndex)
	case classfile.ConstantMethodTypeInfo:
		return fmt.Sprintf("#%d // %s", c.DescriptorIndex, cp.GetUtf8(c.DescriptorIndex))
	case classfile.ConstantDynamicInfo:
		return dynamic(cp, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case classfile.ConstantInvokeDynamicInfo:
		return dynamic(cp, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case classfile.ConstantModuleInfo:
		return fmt.Sprintf("#%d // %s", c.NameIndex, cp.GetUtf8(c.NameIndex))
	case classfile.ConstantPackageInfo:
		return fmt.Sprintf("#%d // %s", c.NameIndex, cp.GetUtf8(c.NameIndex))
	}
	return ""
}

func memberRef(cp *classfile.ConstantPool, class, nat uint16) string {
	name, desc := cp.GetNameAndType(nat)
	return fmt.Sprintf("#%d.#%d // %s.%s:%s", class, nat, cp.GetClassName(class), name, desc)
}

func dynamic(cp *classfile.ConstantPool, bsm, nat uint16) string {
	name, desc := cp.GetNameAndType(nat)
	return fmt.Sprintf("#%d:#%d // %s:%s", bsm, nat, name, desc)
}
