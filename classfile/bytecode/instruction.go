// Package bytecode decodes and encodes the instruction stream held in a Code
// attribute.
//
// Decoding and encoding are exact inverses: Encode(Decode(code)) returns the
// original bytes for every code array Decode accepts. Switch padding is
// measured from the start of the code array, so instructions can be inserted
// or removed and Encode recomputes offsets and padding from scratch.
package bytecode

import (
	"fmt"
	"strings"

	"github.com/dhamidi/jclass/classfile/internal/binio"
)

// Instruction is one decoded instruction. The set of implementations is
// closed; use a type switch to inspect operands.
type Instruction interface {
	Op() Opcode
	// Pos is the byte offset of the opcode within the code array.
	Pos() int
	String() string

	setPos(pos int)
	encode(w *binio.Writer) error
}

// Header is embedded by every instruction variant.
type Header struct {
	Opcode Opcode
	Offset int
}

func (h *Header) Op() Opcode     { return h.Opcode }
func (h *Header) Pos() int       { return h.Offset }
func (h *Header) setPos(pos int) { h.Offset = pos }
func (h *Header) prefix() string { return fmt.Sprintf("%d: %s", h.Offset, h.Opcode) }

func (h *Header) check(f form) error {
	if forms[h.Opcode] != f {
		return &EncodeError{Offset: h.Offset, Opcode: h.Opcode, Err: ErrOpcodeForm}
	}
	return nil
}

// SimpleInstruction has no operands. The wide prefix is decoded as a
// SimpleInstruction followed by the widened instruction.
type SimpleInstruction struct {
	Header
}

// ImmediateByteInstruction carries one operand byte: a local variable index,
// a constant pool index (ldc), a signed value (bipush) or an array type
// (newarray). When Wide is set the operand is two bytes. Only local variable
// loads and stores and ret can be wide, and only directly after a wide
// prefix.
type ImmediateByteInstruction struct {
	Header
	Value uint16
	Wide  bool
}

// ImmediateShortInstruction carries a two byte operand, usually a constant
// pool index.
type ImmediateShortInstruction struct {
	Header
	Value uint16
}

// IncrementInstruction is iinc.
type IncrementInstruction struct {
	Header
	Index uint16
	Const int16
	Wide  bool
}

// BranchInstruction holds a relative jump. goto_w and jsr_w use a four byte
// offset, every other branch two bytes.
type BranchInstruction struct {
	Header
	Branch int32
}

// Target returns the absolute code offset the branch jumps to.
func (i *BranchInstruction) Target() int { return i.Offset + int(i.Branch) }

type TableSwitchInstruction struct {
	Header
	// Padding holds the alignment bytes as read when any of them is
	// non-zero. It is written back only while its length still fits the
	// instruction's position; otherwise zeros are written.
	Padding []byte
	Default int32
	Low     int32
	High    int32
	Offsets []int32
}

// MatchOffset is one lookupswitch pair.
type MatchOffset struct {
	Match  int32
	Offset int32
}

// LookupSwitchInstruction keeps its pairs in the order they were read.
type LookupSwitchInstruction struct {
	Header
	// Padding follows the same rules as TableSwitchInstruction.Padding.
	Padding []byte
	Default int32
	Pairs   []MatchOffset
}

// InvokeInterfaceInstruction is invokeinterface. Reserved is the trailing
// byte, zero in valid code.
type InvokeInterfaceInstruction struct {
	Header
	Index    uint16
	Count    uint8
	Reserved uint8
}

// InvokeDynamicInstruction is invokedynamic. Reserved holds the two bytes
// after the index, zero in valid code.
type InvokeDynamicInstruction struct {
	Header
	Index    uint16
	Reserved uint16
}

type MultiANewArrayInstruction struct {
	Header
	Index      uint16
	Dimensions uint8
}

func NewSimple(op Opcode) *SimpleInstruction {
	return &SimpleInstruction{Header: Header{Opcode: op}}
}

func NewImmediateByte(op Opcode, v uint16, wide bool) *ImmediateByteInstruction {
	return &ImmediateByteInstruction{Header: Header{Opcode: op}, Value: v, Wide: wide}
}

func NewImmediateShort(op Opcode, v uint16) *ImmediateShortInstruction {
	return &ImmediateShortInstruction{Header: Header{Opcode: op}, Value: v}
}

func NewIncrement(index uint16, delta int16, wide bool) *IncrementInstruction {
	return &IncrementInstruction{Header: Header{Opcode: OpIinc}, Index: index, Const: delta, Wide: wide}
}

func NewBranch(op Opcode, branch int32) *BranchInstruction {
	return &BranchInstruction{Header: Header{Opcode: op}, Branch: branch}
}

// NewTableSwitch builds a tableswitch whose High bound follows from the
// number of offsets.
func NewTableSwitch(def, low int32, offsets ...int32) *TableSwitchInstruction {
	return &TableSwitchInstruction{
		Header:  Header{Opcode: OpTableswitch},
		Default: def,
		Low:     low,
		High:    low + int32(len(offsets)) - 1,
		Offsets: offsets,
	}
}

func NewLookupSwitch(def int32, pairs ...MatchOffset) *LookupSwitchInstruction {
	return &LookupSwitchInstruction{Header: Header{Opcode: OpLookupswitch}, Default: def, Pairs: pairs}
}

func NewInvokeInterface(index uint16, count uint8) *InvokeInterfaceInstruction {
	return &InvokeInterfaceInstruction{Header: Header{Opcode: OpInvokeinterface}, Index: index, Count: count}
}

func NewInvokeDynamic(index uint16) *InvokeDynamicInstruction {
	return &InvokeDynamicInstruction{Header: Header{Opcode: OpInvokedynamic}, Index: index}
}

func NewMultiANewArray(index uint16, dims uint8) *MultiANewArrayInstruction {
	return &MultiANewArrayInstruction{Header: Header{Opcode: OpMultianewarray}, Index: index, Dimensions: dims}
}

func (i *SimpleInstruction) String() string { return i.prefix() }

func (i *ImmediateByteInstruction) String() string {
	if i.Opcode == OpBipush && !i.Wide {
		return fmt.Sprintf("%s %d", i.prefix(), int8(i.Value))
	}
	return fmt.Sprintf("%s %d", i.prefix(), i.Value)
}

func (i *ImmediateShortInstruction) String() string {
	if i.Opcode == OpSipush {
		return fmt.Sprintf("%s %d", i.prefix(), int16(i.Value))
	}
	return fmt.Sprintf("%s #%d", i.prefix(), i.Value)
}

func (i *IncrementInstruction) String() string {
	return fmt.Sprintf("%s %d, %d", i.prefix(), i.Index, i.Const)
}

func (i *BranchInstruction) String() string {
	return fmt.Sprintf("%s %d", i.prefix(), i.Target())
}

func (i *TableSwitchInstruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s { // %d to %d", i.prefix(), i.Low, i.High)
	for k, off := range i.Offsets {
		fmt.Fprintf(&sb, "\n\t%d: %d", i.Low+int32(k), i.Offset+int(off))
	}
	fmt.Fprintf(&sb, "\n\tdefault: %d\n}", i.Offset+int(i.Default))
	return sb.String()
}

func (i *LookupSwitchInstruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s { // %d", i.prefix(), len(i.Pairs))
	for _, p := range i.Pairs {
		fmt.Fprintf(&sb, "\n\t%d: %d", p.Match, i.Offset+int(p.Offset))
	}
	fmt.Fprintf(&sb, "\n\tdefault: %d\n}", i.Offset+int(i.Default))
	return sb.String()
}

func (i *InvokeInterfaceInstruction) String() string {
	return fmt.Sprintf("%s #%d, %d", i.prefix(), i.Index, i.Count)
}

func (i *InvokeDynamicInstruction) String() string {
	return fmt.Sprintf("%s #%d, 0", i.prefix(), i.Index)
}

func (i *MultiANewArrayInstruction) String() string {
	return fmt.Sprintf("%s #%d, %d", i.prefix(), i.Index, i.Dimensions)
}
