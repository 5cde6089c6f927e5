package classfile

import "fmt"

// TypeAnnotation is an annotation on a use of a type. TargetType selects the
// concrete TargetInfo.
type TypeAnnotation struct {
	TargetType        uint8
	TargetInfo        TargetInfo
	TargetPath        TypePath
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

// TargetInfo identifies the annotated type use.
type TargetInfo interface {
	encodeTarget(e *encoder)
}

// TypeParameterTarget is used for target types 0x00 and 0x01.
type TypeParameterTarget struct {
	TypeParameterIndex uint8
}

// SupertypeTarget is used for target type 0x10. Index 65535 denotes the
// superclass, anything else an entry of the interfaces table.
type SupertypeTarget struct {
	SupertypeIndex uint16
}

// TypeParameterBoundTarget is used for target types 0x11 and 0x12.
type TypeParameterBoundTarget struct {
	TypeParameterIndex uint8
	BoundIndex         uint8
}

// EmptyTarget is used for target types 0x13 to 0x15.
type EmptyTarget struct{}

// FormalParameterTarget is used for target type 0x16.
type FormalParameterTarget struct {
	FormalParameterIndex uint8
}

// ThrowsTarget is used for target type 0x17.
type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

// LocalVarTarget is used for target types 0x40 and 0x41.
type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

// CatchTarget is used for target type 0x42.
type CatchTarget struct {
	ExceptionTableIndex uint16
}

// OffsetTarget is used for target types 0x43 to 0x46.
type OffsetTarget struct {
	Offset uint16
}

// TypeArgumentTarget is used for target types 0x47 to 0x4B.
type TypeArgumentTarget struct {
	Offset            uint16
	TypeArgumentIndex uint8
}

// TypePath locates the annotated part of a compound type.
type TypePath struct {
	Path []TypePathEntry
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

func (t *TypeParameterTarget) encodeTarget(e *encoder) { e.w.U1(t.TypeParameterIndex) }
func (t *SupertypeTarget) encodeTarget(e *encoder)     { e.w.U2(t.SupertypeIndex) }

func (t *TypeParameterBoundTarget) encodeTarget(e *encoder) {
	e.w.U1(t.TypeParameterIndex)
	e.w.U1(t.BoundIndex)
}

func (t *EmptyTarget) encodeTarget(*encoder)             {}
func (t *FormalParameterTarget) encodeTarget(e *encoder) { e.w.U1(t.FormalParameterIndex) }
func (t *ThrowsTarget) encodeTarget(e *encoder)          { e.w.U2(t.ThrowsTypeIndex) }

func (t *LocalVarTarget) encodeTarget(e *encoder) {
	e.count(len(t.Table))
	for _, v := range t.Table {
		e.w.U2(v.StartPC)
		e.w.U2(v.Length)
		e.w.U2(v.Index)
	}
}

func (t *CatchTarget) encodeTarget(e *encoder)  { e.w.U2(t.ExceptionTableIndex) }
func (t *OffsetTarget) encodeTarget(e *encoder) { e.w.U2(t.Offset) }

func (t *TypeArgumentTarget) encodeTarget(e *encoder) {
	e.w.U2(t.Offset)
	e.w.U1(t.TypeArgumentIndex)
}

func readTargetInfo(d *decoder, targetType uint8) TargetInfo {
	switch {
	case targetType <= 0x01:
		return &TypeParameterTarget{TypeParameterIndex: d.r.U1()}
	case targetType == 0x10:
		return &SupertypeTarget{SupertypeIndex: d.r.U2()}
	case targetType == 0x11 || targetType == 0x12:
		return &TypeParameterBoundTarget{TypeParameterIndex: d.r.U1(), BoundIndex: d.r.U1()}
	case targetType >= 0x13 && targetType <= 0x15:
		return &EmptyTarget{}
	case targetType == 0x16:
		return &FormalParameterTarget{FormalParameterIndex: d.r.U1()}
	case targetType == 0x17:
		return &ThrowsTarget{ThrowsTypeIndex: d.r.U2()}
	case targetType == 0x40 || targetType == 0x41:
		n := d.r.U2()
		if d.r.Err() != nil {
			return nil
		}
		t := &LocalVarTarget{Table: make([]LocalVarTargetEntry, n)}
		for i := range t.Table {
			t.Table[i] = LocalVarTargetEntry{StartPC: d.r.U2(), Length: d.r.U2(), Index: d.r.U2()}
		}
		return t
	case targetType == 0x42:
		return &CatchTarget{ExceptionTableIndex: d.r.U2()}
	case targetType >= 0x43 && targetType <= 0x46:
		return &OffsetTarget{Offset: d.r.U2()}
	case targetType >= 0x47 && targetType <= 0x4B:
		return &TypeArgumentTarget{Offset: d.r.U2(), TypeArgumentIndex: d.r.U1()}
	}
	d.fail("type annotation target type 0x%02X", targetType)
	return nil
}

// targetMatches reports whether t is the TargetInfo variant targetType
// requires.
func targetMatches(targetType uint8, t TargetInfo) bool {
	switch t.(type) {
	case *TypeParameterTarget:
		return targetType <= 0x01
	case *SupertypeTarget:
		return targetType == 0x10
	case *TypeParameterBoundTarget:
		return targetType == 0x11 || targetType == 0x12
	case *EmptyTarget:
		return targetType >= 0x13 && targetType <= 0x15
	case *FormalParameterTarget:
		return targetType == 0x16
	case *ThrowsTarget:
		return targetType == 0x17
	case *LocalVarTarget:
		return targetType == 0x40 || targetType == 0x41
	case *CatchTarget:
		return targetType == 0x42
	case *OffsetTarget:
		return targetType >= 0x43 && targetType <= 0x46
	case *TypeArgumentTarget:
		return targetType >= 0x47 && targetType <= 0x4B
	}
	return false
}

func readTypeAnnotation(d *decoder) TypeAnnotation {
	ta := TypeAnnotation{TargetType: d.r.U1()}
	if d.r.Err() != nil {
		return ta
	}
	ta.TargetInfo = readTargetInfo(d, ta.TargetType)

	n := d.r.U1()
	if d.r.Err() != nil {
		return ta
	}
	ta.TargetPath.Path = make([]TypePathEntry, n)
	for i := range ta.TargetPath.Path {
		ta.TargetPath.Path[i] = TypePathEntry{TypePathKind: d.r.U1(), TypeArgumentIndex: d.r.U1()}
	}

	a := readAnnotation(d)
	ta.TypeIndex = a.TypeIndex
	ta.ElementValuePairs = a.ElementValuePairs
	return ta
}

func writeTypeAnnotation(e *encoder, ta *TypeAnnotation) {
	if ta.TargetInfo == nil || !targetMatches(ta.TargetType, ta.TargetInfo) {
		e.w.Fail(fmt.Errorf("%w: target info %T does not fit target type 0x%02X", ErrMalformedAttribute, ta.TargetInfo, ta.TargetType))
		return
	}
	e.w.U1(ta.TargetType)
	ta.TargetInfo.encodeTarget(e)
	e.count1(len(ta.TargetPath.Path))
	for _, p := range ta.TargetPath.Path {
		e.w.U1(p.TypePathKind)
		e.w.U1(p.TypeArgumentIndex)
	}
	writeAnnotation(e, &Annotation{TypeIndex: ta.TypeIndex, ElementValuePairs: ta.ElementValuePairs})
}

func readTypeAnnotations(d *decoder) []TypeAnnotation {
	n := d.r.U2()
	if d.r.Err() != nil {
		return nil
	}
	tas := make([]TypeAnnotation, 0, n)
	for i := 0; i < int(n) && d.r.Err() == nil; i++ {
		tas = append(tas, readTypeAnnotation(d))
	}
	return tas
}

func writeTypeAnnotations(e *encoder, tas []TypeAnnotation) {
	e.count(len(tas))
	for i := range tas {
		writeTypeAnnotation(e, &tas[i])
	}
}

type RuntimeVisibleTypeAnnotationsAttribute struct {
	Annotations []TypeAnnotation
}

func (a *RuntimeVisibleTypeAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeVisibleTypeAnnotations
}

func (a *RuntimeVisibleTypeAnnotationsAttribute) decode(d *decoder) {
	a.Annotations = readTypeAnnotations(d)
}

func (a *RuntimeVisibleTypeAnnotationsAttribute) encode(e *encoder) {
	writeTypeAnnotations(e, a.Annotations)
}

type RuntimeInvisibleTypeAnnotationsAttribute struct {
	Annotations []TypeAnnotation
}

func (a *RuntimeInvisibleTypeAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeInvisibleTypeAnnotations
}

func (a *RuntimeInvisibleTypeAnnotationsAttribute) decode(d *decoder) {
	a.Annotations = readTypeAnnotations(d)
}

func (a *RuntimeInvisibleTypeAnnotationsAttribute) encode(e *encoder) {
	writeTypeAnnotations(e, a.Annotations)
}
