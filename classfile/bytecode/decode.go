package bytecode

import (
	"errors"
	"slices"

	"github.com/dhamidi/jclass/classfile/internal/binio"
)

// Decode decodes a complete code array.
func Decode(code []byte) ([]Instruction, error) {
	return DecodeAppend(nil, code)
}

// DecodeAppend decodes code and appends the instructions to dst. On error the
// instructions decoded before the failing one are returned along with it.
func DecodeAppend(dst []Instruction, code []byte) ([]Instruction, error) {
	r := binio.NewBytesReader(code)
	wide := false
	for r.Len() > 0 {
		pos := int(r.Count())
		op := Opcode(r.U1())
		ins, err := decodeOne(r, op, pos, wide)
		if err != nil {
			return dst, err
		}
		dst = append(dst, ins)
		wide = op == OpWide
	}
	return dst, nil
}

func decodeOne(r *binio.Reader, op Opcode, pos int, wide bool) (Instruction, error) {
	h := Header{Opcode: op, Offset: pos}
	fail := func(err error) (Instruction, error) {
		return nil, &DecodeError{Offset: pos, Opcode: op, Err: err}
	}

	var ins Instruction
	switch forms[op] {
	case formIllegal:
		return fail(ErrIllegalOpcode)

	case formSimple:
		ins = &SimpleInstruction{Header: h}

	case formByte:
		wide = wide && widenable[op]
		i := &ImmediateByteInstruction{Header: h, Wide: wide}
		if wide {
			i.Value = r.U2()
		} else {
			i.Value = uint16(r.U1())
		}
		ins = i

	case formShort:
		ins = &ImmediateShortInstruction{Header: h, Value: r.U2()}

	case formIinc:
		i := &IncrementInstruction{Header: h, Wide: wide}
		if wide {
			i.Index = r.U2()
			i.Const = r.I2()
		} else {
			i.Index = uint16(r.U1())
			i.Const = int16(r.I1())
		}
		ins = i

	case formBranch16:
		ins = &BranchInstruction{Header: h, Branch: int32(r.I2())}

	case formBranch32:
		ins = &BranchInstruction{Header: h, Branch: r.I4()}

	case formTableSwitch:
		pad := readPadding(r, pos)
		i := &TableSwitchInstruction{Header: h, Padding: pad, Default: r.I4(), Low: r.I4(), High: r.I4()}
		if r.Err() == nil {
			n := int64(i.High) - int64(i.Low) + 1
			if n < 0 {
				return fail(ErrInvalidSwitch)
			}
			if n*4 > r.Len() {
				return fail(ErrTruncatedInstruction)
			}
			i.Offsets = make([]int32, n)
			for k := range i.Offsets {
				i.Offsets[k] = r.I4()
			}
		}
		ins = i

	case formLookupSwitch:
		pad := readPadding(r, pos)
		i := &LookupSwitchInstruction{Header: h, Padding: pad, Default: r.I4()}
		n := int64(r.I4())
		if r.Err() == nil {
			if n < 0 {
				return fail(ErrInvalidSwitch)
			}
			if n*8 > r.Len() {
				return fail(ErrTruncatedInstruction)
			}
			i.Pairs = make([]MatchOffset, n)
			for k := range i.Pairs {
				i.Pairs[k] = MatchOffset{Match: r.I4(), Offset: r.I4()}
			}
		}
		ins = i

	case formInvokeInterface:
		ins = &InvokeInterfaceInstruction{Header: h, Index: r.U2(), Count: r.U1(), Reserved: r.U1()}

	case formInvokeDynamic:
		ins = &InvokeDynamicInstruction{Header: h, Index: r.U2(), Reserved: r.U2()}

	case formMultiANewArray:
		ins = &MultiANewArrayInstruction{Header: h, Index: r.U2(), Dimensions: r.U1()}
	}

	if err := r.Err(); err != nil {
		if errors.Is(err, binio.ErrUnexpectedEOF) {
			return fail(ErrTruncatedInstruction)
		}
		return fail(err)
	}
	return ins, nil
}

// readPadding consumes the alignment bytes after a switch opcode at pos. They
// are returned only when one of them is non-zero.
func readPadding(r *binio.Reader, pos int) []byte {
	pad := r.Bytes(binio.Padding(pos+1, 4))
	if slices.ContainsFunc(pad, func(c byte) bool { return c != 0 }) {
		return pad
	}
	return nil
}
