package bytecode

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalOpcode        = errors.New("bytecode: illegal opcode")
	ErrTruncatedInstruction = errors.New("bytecode: truncated instruction")
	ErrInvalidSwitch        = errors.New("bytecode: invalid switch bounds")
	ErrOpcodeForm           = errors.New("bytecode: opcode does not match instruction form")
	ErrOperandRange         = errors.New("bytecode: operand out of range")
	ErrWidePrefix           = errors.New("bytecode: wide flag does not match wide prefix")
)

// DecodeError reports the instruction that could not be decoded.
type DecodeError struct {
	Offset int
	Opcode Opcode
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bytecode: decode %s at offset %d: %v", e.Opcode, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports an instruction whose fields cannot be encoded.
type EncodeError struct {
	Offset int
	Opcode Opcode
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bytecode: encode %s at offset %d: %v", e.Opcode, e.Offset, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
