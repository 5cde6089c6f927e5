package classfile

import "fmt"

type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

// StackMapFrame is one frame of a StackMapTable. FrameType decides which of
// the other fields are present in the encoding: same frames (0-63) carry
// their offset delta in the type byte, same_locals_1_stack_item frames
// (64-127) add one Stack entry, chop frames (248-250) remove locals, append
// frames (252-254) add FrameType-251 Locals and full frames (255) carry
// both lists explicitly.
type StackMapFrame struct {
	FrameType   uint8
	OffsetDelta uint16
	Locals      []VerificationTypeInfo
	Stack       []VerificationTypeInfo
}

type VerificationTag uint8

const (
	ItemTop               VerificationTag = 0
	ItemInteger           VerificationTag = 1
	ItemFloat             VerificationTag = 2
	ItemDouble            VerificationTag = 3
	ItemLong              VerificationTag = 4
	ItemNull              VerificationTag = 5
	ItemUninitializedThis VerificationTag = 6
	ItemObject            VerificationTag = 7
	ItemUninitialized     VerificationTag = 8
)

// VerificationTypeInfo is one slot of a frame. CPoolIndex is set for
// ItemObject and Offset for ItemUninitialized.
type VerificationTypeInfo struct {
	Tag        VerificationTag
	CPoolIndex uint16
	Offset     uint16
}

func (a *StackMapTableAttribute) Kind() AttributeKind { return AttrStackMapTable }

func (a *StackMapTableAttribute) decode(d *decoder) {
	n := d.r.U2()
	if d.r.Err() != nil {
		return
	}
	a.Entries = make([]StackMapFrame, 0, n)
	for i := 0; i < int(n) && d.r.Err() == nil; i++ {
		a.Entries = append(a.Entries, readFrame(d))
	}
}

func (a *StackMapTableAttribute) encode(e *encoder) {
	e.count(len(a.Entries))
	for i := range a.Entries {
		writeFrame(e, &a.Entries[i])
	}
}

func readFrame(d *decoder) StackMapFrame {
	f := StackMapFrame{FrameType: d.r.U1()}
	switch t := f.FrameType; {
	case t <= 63:
		f.OffsetDelta = uint16(t)
	case t <= 127:
		f.OffsetDelta = uint16(t - 64)
		f.Stack = []VerificationTypeInfo{readVerificationType(d)}
	case t <= 246:
		d.fail("reserved stack map frame type %d", t)
	case t == 247:
		f.OffsetDelta = d.r.U2()
		f.Stack = []VerificationTypeInfo{readVerificationType(d)}
	case t <= 251:
		f.OffsetDelta = d.r.U2()
	case t <= 254:
		f.OffsetDelta = d.r.U2()
		f.Locals = readVerificationTypes(d, int(t-251))
	default:
		f.OffsetDelta = d.r.U2()
		f.Locals = readVerificationTypes(d, int(d.r.U2()))
		f.Stack = readVerificationTypes(d, int(d.r.U2()))
	}
	return f
}

func writeFrame(e *encoder, f *StackMapFrame) {
	bad := func(what string) {
		e.w.Fail(fmt.Errorf("%w: stack map frame type %d %s", ErrMalformedAttribute, f.FrameType, what))
	}
	e.w.U1(f.FrameType)
	switch t := f.FrameType; {
	case t <= 63:
		if f.OffsetDelta != uint16(t) {
			bad("encodes a different offset delta")
		}
	case t <= 127:
		if f.OffsetDelta != uint16(t-64) || len(f.Stack) != 1 {
			bad("needs its offset delta in the type and one stack item")
			return
		}
		writeVerificationType(e, f.Stack[0])
	case t <= 246:
		bad("is reserved")
	case t == 247:
		if len(f.Stack) != 1 {
			bad("needs one stack item")
			return
		}
		e.w.U2(f.OffsetDelta)
		writeVerificationType(e, f.Stack[0])
	case t <= 251:
		e.w.U2(f.OffsetDelta)
	case t <= 254:
		if len(f.Locals) != int(t-251) {
			bad(fmt.Sprintf("needs %d locals", t-251))
			return
		}
		e.w.U2(f.OffsetDelta)
		writeVerificationTypes(e, f.Locals)
	default:
		e.w.U2(f.OffsetDelta)
		e.count(len(f.Locals))
		writeVerificationTypes(e, f.Locals)
		e.count(len(f.Stack))
		writeVerificationTypes(e, f.Stack)
	}
}

func readVerificationType(d *decoder) VerificationTypeInfo {
	v := VerificationTypeInfo{Tag: VerificationTag(d.r.U1())}
	switch v.Tag {
	case ItemObject:
		v.CPoolIndex = d.r.U2()
	case ItemUninitialized:
		v.Offset = d.r.U2()
	default:
		if v.Tag > ItemUninitialized && d.r.Err() == nil {
			d.fail("verification type tag %d", v.Tag)
		}
	}
	return v
}

func readVerificationTypes(d *decoder, n int) []VerificationTypeInfo {
	if d.r.Err() != nil {
		return nil
	}
	vs := make([]VerificationTypeInfo, 0, n)
	for i := 0; i < n && d.r.Err() == nil; i++ {
		vs = append(vs, readVerificationType(d))
	}
	return vs
}

func writeVerificationType(e *encoder, v VerificationTypeInfo) {
	e.w.U1(uint8(v.Tag))
	switch v.Tag {
	case ItemObject:
		e.w.U2(v.CPoolIndex)
	case ItemUninitialized:
		e.w.U2(v.Offset)
	}
}

func writeVerificationTypes(e *encoder, vs []VerificationTypeInfo) {
	for _, v := range vs {
		writeVerificationType(e, v)
	}
}
