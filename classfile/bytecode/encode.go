package bytecode

import (
	"github.com/dhamidi/jclass/classfile/internal/binio"
)

// Encode writes instrs back to back. Each instruction's Offset is updated to
// its position in the output before it is encoded, so switch padding always
// matches the final layout. A Wide flag must be set exactly on the
// widenable instruction that follows a wide prefix.
func Encode(instrs []Instruction) ([]byte, error) {
	w := binio.NewBufferWriter()
	afterWide := false
	for _, ins := range instrs {
		ins.setPos(int(w.Len()))
		if err := checkWide(ins, afterWide); err != nil {
			return nil, err
		}
		if err := ins.encode(w); err != nil {
			return nil, err
		}
		afterWide = ins.Op() == OpWide
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func checkWide(ins Instruction, afterWide bool) error {
	var wide bool
	switch i := ins.(type) {
	case *ImmediateByteInstruction:
		wide = i.Wide
	case *IncrementInstruction:
		wide = i.Wide
	default:
		return nil
	}
	if wide != (afterWide && widenable[ins.Op()]) {
		return &EncodeError{Offset: ins.Pos(), Opcode: ins.Op(), Err: ErrWidePrefix}
	}
	return nil
}

func (i *SimpleInstruction) encode(w *binio.Writer) error {
	if err := i.check(formSimple); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	return nil
}

func (i *ImmediateByteInstruction) encode(w *binio.Writer) error {
	if err := i.check(formByte); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	if i.Wide {
		w.U2(i.Value)
		return nil
	}
	if i.Value > 0xFF {
		return &EncodeError{Offset: i.Offset, Opcode: i.Opcode, Err: ErrOperandRange}
	}
	w.U1(uint8(i.Value))
	return nil
}

func (i *ImmediateShortInstruction) encode(w *binio.Writer) error {
	if err := i.check(formShort); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	w.U2(i.Value)
	return nil
}

func (i *IncrementInstruction) encode(w *binio.Writer) error {
	if err := i.check(formIinc); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	if i.Wide {
		w.U2(i.Index)
		w.I2(i.Const)
		return nil
	}
	if i.Index > 0xFF || i.Const < -128 || i.Const > 127 {
		return &EncodeError{Offset: i.Offset, Opcode: i.Opcode, Err: ErrOperandRange}
	}
	w.U1(uint8(i.Index))
	w.I1(int8(i.Const))
	return nil
}

func (i *BranchInstruction) encode(w *binio.Writer) error {
	switch forms[i.Opcode] {
	case formBranch16:
		if i.Branch < -0x8000 || i.Branch > 0x7FFF {
			return &EncodeError{Offset: i.Offset, Opcode: i.Opcode, Err: ErrOperandRange}
		}
		w.U1(uint8(i.Opcode))
		w.I2(int16(i.Branch))
	case formBranch32:
		w.U1(uint8(i.Opcode))
		w.I4(i.Branch)
	default:
		return &EncodeError{Offset: i.Offset, Opcode: i.Opcode, Err: ErrOpcodeForm}
	}
	return nil
}

func (i *TableSwitchInstruction) encode(w *binio.Writer) error {
	if err := i.check(formTableSwitch); err != nil {
		return err
	}
	if int64(i.High)-int64(i.Low)+1 != int64(len(i.Offsets)) {
		return &EncodeError{Offset: i.Offset, Opcode: i.Opcode, Err: ErrInvalidSwitch}
	}
	w.U1(uint8(i.Opcode))
	writePadding(w, i.Padding)
	w.I4(i.Default)
	w.I4(i.Low)
	w.I4(i.High)
	for _, off := range i.Offsets {
		w.I4(off)
	}
	return nil
}

func (i *LookupSwitchInstruction) encode(w *binio.Writer) error {
	if err := i.check(formLookupSwitch); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	writePadding(w, i.Padding)
	w.I4(i.Default)
	w.I4(int32(len(i.Pairs)))
	for _, p := range i.Pairs {
		w.I4(p.Match)
		w.I4(p.Offset)
	}
	return nil
}

func (i *InvokeInterfaceInstruction) encode(w *binio.Writer) error {
	if err := i.check(formInvokeInterface); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	w.U2(i.Index)
	w.U1(i.Count)
	w.U1(i.Reserved)
	return nil
}

func (i *InvokeDynamicInstruction) encode(w *binio.Writer) error {
	if err := i.check(formInvokeDynamic); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	w.U2(i.Index)
	w.U2(i.Reserved)
	return nil
}

func (i *MultiANewArrayInstruction) encode(w *binio.Writer) error {
	if err := i.check(formMultiANewArray); err != nil {
		return err
	}
	w.U1(uint8(i.Opcode))
	w.U2(i.Index)
	w.U1(i.Dimensions)
	return nil
}

// writePadding aligns w to four bytes, reusing pad when it has the right
// length.
func writePadding(w *binio.Writer, pad []byte) {
	n := binio.Padding(int(w.Len()), 4)
	if len(pad) == n {
		w.WriteBytes(pad)
		return
	}
	w.Zeros(n)
}
