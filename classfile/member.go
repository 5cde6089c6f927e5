package classfile

// MemberInfo is the layout shared by fields and methods.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MemberInfo) Name(cp *ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MemberInfo) Descriptor(cp *ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MemberInfo) FindAttribute(kind AttributeKind) *AttributeInfo {
	return FindAttribute(m.Attributes, kind)
}

// Signature returns the generic signature, or "" if the member has none.
func (m *MemberInfo) Signature(cp *ConstantPool) string {
	if s, ok := AttributeOf[*SignatureAttribute](m.Attributes); ok {
		return cp.GetUtf8(s.SignatureIndex)
	}
	return ""
}

func (m *MemberInfo) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *MemberInfo) IsPrivate() bool   { return m.AccessFlags.IsPrivate() }
func (m *MemberInfo) IsProtected() bool { return m.AccessFlags.IsProtected() }
func (m *MemberInfo) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *MemberInfo) IsFinal() bool     { return m.AccessFlags.IsFinal() }
func (m *MemberInfo) IsSynthetic() bool { return m.AccessFlags.IsSynthetic() }

func readMember(d *decoder) (MemberInfo, error) {
	m := MemberInfo{
		AccessFlags:     AccessFlags(d.r.U2()),
		NameIndex:       d.r.U2(),
		DescriptorIndex: d.r.U2(),
	}
	if err := d.r.Err(); err != nil {
		return m, err
	}
	attrs, err := readAttributes(d)
	m.Attributes = attrs
	return m, err
}

func writeMember(e *encoder, m *MemberInfo) {
	e.w.U2(uint16(m.AccessFlags))
	e.w.U2(m.NameIndex)
	e.w.U2(m.DescriptorIndex)
	writeAttributes(e, m.Attributes)
}
