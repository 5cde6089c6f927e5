package classfile

// ClassFile is a decoded class file. Every index field refers to
// ConstantPool. A ClassFile is not safe for concurrent mutation.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// New returns an empty class file with a fresh constant pool, ready to be
// populated and written.
func New(major, minor uint16) *ClassFile {
	return &ClassFile{
		MajorVersion: major,
		MinorVersion: minor,
		ConstantPool: NewConstantPool(),
	}
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// SuperClassName returns "" for java/lang/Object and module-info, whose
// super_class is zero.
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// GetMethod finds a method by name, and by descriptor unless descriptor is
// empty.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

// ConstantPoolEntry is a typed constant pool lookup; see ConstantPool.Entry.
func (cf *ClassFile) ConstantPoolEntry(index uint16, tag ConstantTag) (Constant, error) {
	return cf.ConstantPool.Entry(index, tag)
}

// FindAttribute returns the first class attribute of the given kind.
func (cf *ClassFile) FindAttribute(kind AttributeKind) *AttributeInfo {
	return FindAttribute(cf.Attributes, kind)
}

// SourceFile returns the name recorded in the SourceFile attribute.
func (cf *ClassFile) SourceFile() string {
	if sf, ok := AttributeOf[*SourceFileAttribute](cf.Attributes); ok {
		return cf.ConstantPool.GetUtf8(sf.SourceFileIndex)
	}
	return ""
}
