package classfile

type MethodInfo struct {
	MemberInfo
}

// Code returns the method's Code attribute, or nil for abstract and native
// methods.
func (m *MethodInfo) Code() *CodeAttribute {
	code, _ := AttributeOf[*CodeAttribute](m.Attributes)
	return code
}

func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsStrict() bool       { return m.AccessFlags.IsStrict() }

func (m *MethodInfo) FlagNames() []string { return m.AccessFlags.Names(FlagsMethod) }

func (m *MethodInfo) IsConstructor(cp *ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp *ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

func (m *MethodInfo) ParsedDescriptor(cp *ConstantPool) (*MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor(cp))
}

// Exceptions lists the internal names of the checked exceptions the method
// declares.
func (m *MethodInfo) Exceptions(cp *ConstantPool) []string {
	ex, ok := AttributeOf[*ExceptionsAttribute](m.Attributes)
	if !ok {
		return nil
	}
	names := make([]string, len(ex.ExceptionIndexTable))
	for i, idx := range ex.ExceptionIndexTable {
		names[i] = cp.GetClassName(idx)
	}
	return names
}
