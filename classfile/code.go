package classfile

import (
	"fmt"
	"math"

	"github.com/dhamidi/jclass/classfile/bytecode"
)

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	// CatchType is zero for a handler that catches everything.
	CatchType uint16
}

func (a *CodeAttribute) Kind() AttributeKind { return AttrCode }

func (a *CodeAttribute) decode(d *decoder) {
	a.MaxStack = d.r.U2()
	a.MaxLocals = d.r.U2()
	a.Code = d.r.Bytes(int(d.r.U4()))
	n := d.r.U2()
	if d.r.Err() != nil {
		return
	}
	a.ExceptionTable = make([]ExceptionTableEntry, n)
	for i := range a.ExceptionTable {
		a.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   d.r.U2(),
			EndPC:     d.r.U2(),
			HandlerPC: d.r.U2(),
			CatchType: d.r.U2(),
		}
	}
	if d.r.Err() != nil {
		return
	}
	attrs, err := readAttributes(d)
	if err != nil {
		d.r.Fail(err)
		return
	}
	a.Attributes = attrs
}

func (a *CodeAttribute) encode(e *encoder) {
	e.w.U2(a.MaxStack)
	e.w.U2(a.MaxLocals)
	if int64(len(a.Code)) > math.MaxUint32 {
		e.w.Fail(fmt.Errorf("%w: code array of %d bytes", ErrCountOverflow, len(a.Code)))
		return
	}
	e.w.U4(uint32(len(a.Code)))
	e.w.WriteBytes(a.Code)
	e.count(len(a.ExceptionTable))
	for _, x := range a.ExceptionTable {
		e.w.U2(x.StartPC)
		e.w.U2(x.EndPC)
		e.w.U2(x.HandlerPC)
		e.w.U2(x.CatchType)
	}
	writeAttributes(e, a.Attributes)
}

// Instructions decodes the code array.
func (a *CodeAttribute) Instructions() ([]bytecode.Instruction, error) {
	return bytecode.Decode(a.Code)
}

// SetInstructions replaces the code array with the encoding of instrs.
// Exception table and debug attribute offsets are left untouched.
func (a *CodeAttribute) SetInstructions(instrs []bytecode.Instruction) error {
	code, err := bytecode.Encode(instrs)
	if err != nil {
		return err
	}
	a.Code = code
	return nil
}

// LineNumbers returns the entries of every LineNumberTable attribute in
// order.
func (a *CodeAttribute) LineNumbers() []LineNumberEntry {
	var lines []LineNumberEntry
	for _, attr := range a.Attributes {
		if t, ok := attr.Body.(*LineNumberTableAttribute); ok {
			lines = append(lines, t.LineNumberTable...)
		}
	}
	return lines
}
