package classfile

type FieldInfo struct {
	MemberInfo
}

func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

func (f *FieldInfo) FlagNames() []string { return f.AccessFlags.Names(FlagsField) }

func (f *FieldInfo) ParsedDescriptor(cp *ConstantPool) (*FieldType, error) {
	return ParseFieldDescriptor(f.Descriptor(cp))
}

// ConstantValue returns the index of the field's initial value, or zero.
func (f *FieldInfo) ConstantValue() uint16 {
	if cv, ok := AttributeOf[*ConstantValueAttribute](f.Attributes); ok {
		return cv.ConstantValueIndex
	}
	return 0
}
