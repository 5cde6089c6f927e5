package classfile

import (
	"errors"
	"fmt"

	"github.com/dhamidi/jclass/classfile/bytecode"
	"github.com/dhamidi/jclass/classfile/internal/binio"
	"github.com/dhamidi/jclass/mutf8"
)

var (
	ErrInvalidMagic       = errors.New("classfile: invalid magic number")
	ErrConstantPoolIndex  = errors.New("classfile: invalid constant pool index")
	ErrConstantPoolType   = errors.New("classfile: unexpected constant pool entry type")
	ErrUnknownConstantTag = errors.New("classfile: unknown constant pool tag")
	ErrConstantPoolFull   = errors.New("classfile: constant pool exceeds 65535 entries")
	ErrAttributeLength    = errors.New("classfile: attribute length mismatch")
	ErrAttributeName      = errors.New("classfile: attribute name does not match its body")
	ErrSkippedAttribute   = errors.New("classfile: attribute was skipped while parsing")
	ErrMalformedAttribute = errors.New("classfile: malformed attribute")
	ErrCountOverflow      = errors.New("classfile: table too large for its count field")

	ErrUnexpectedEOF        = binio.ErrUnexpectedEOF
	ErrIllegalOpcode        = bytecode.ErrIllegalOpcode
	ErrTruncatedInstruction = bytecode.ErrTruncatedInstruction
	ErrMalformedUtf8        = mutf8.ErrMalformed
	ErrStringTooLong        = mutf8.ErrTooLong
)

// IndexError reports a constant pool lookup that failed.
type IndexError struct {
	Index uint16
	// Want is the tag that was requested, or zero for an untyped lookup.
	Want ConstantTag
	// Got is the tag found at Index when the types disagreed.
	Got         ConstantTag
	Placeholder bool
	Err         error
}

func (e *IndexError) Error() string {
	switch {
	case e.Placeholder:
		return fmt.Sprintf("classfile: constant pool index %d is the second slot of a Long or Double", e.Index)
	case e.Got != 0:
		return fmt.Sprintf("classfile: constant pool index %d is %s, want %s", e.Index, e.Got, e.Want)
	default:
		return fmt.Sprintf("classfile: constant pool index %d out of range", e.Index)
	}
}

func (e *IndexError) Unwrap() error { return e.Err }

// ParseError wraps a fatal decoding failure with the part of the class file
// being read and the stream offset at which reading stopped.
type ParseError struct {
	Section string
	Offset  int64
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("classfile: %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AttributeLengthError reports an attribute whose body did not consume
// exactly its declared length. Consumed is negative when the body needed
// more bytes than were declared.
type AttributeLengthError struct {
	Name     string
	Declared uint32
	Consumed int64
}

func (e *AttributeLengthError) Error() string {
	if e.Consumed < 0 {
		return fmt.Sprintf("classfile: attribute %s runs past its declared %d bytes", e.Name, e.Declared)
	}
	return fmt.Sprintf("classfile: attribute %s declares %d bytes but its body uses %d", e.Name, e.Declared, e.Consumed)
}

func (e *AttributeLengthError) Unwrap() error { return ErrAttributeLength }

// VersionWarning is reported for a class file whose major version is
// outside the supported range. Parsing continues.
type VersionWarning struct {
	Major uint16
	Minor uint16
}

func (w *VersionWarning) Error() string {
	return fmt.Sprintf("classfile: unsupported version %d.%d (supported majors %d to %d)", w.Major, w.Minor, MinMajorVersion, MaxMajorVersion)
}

// TruncationWarning is reported in tolerant mode when the stream ends before
// the class attributes are complete.
type TruncationWarning struct {
	Offset int64
	// Read is the number of class attributes read before the end.
	Read     int
	Declared int
}

func (w *TruncationWarning) Error() string {
	return fmt.Sprintf("classfile: input ends at offset %d after %d of %d class attributes", w.Offset, w.Read, w.Declared)
}
