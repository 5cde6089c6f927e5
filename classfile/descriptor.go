package classfile

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedDescriptor = errors.New("classfile: malformed descriptor")

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// FieldType is a parsed field descriptor. Exactly one of BaseType and
// ClassName is set.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type in source form, e.g. java.lang.String[].
func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for range ft.ArrayDepth {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft *FieldType) IsArray() bool     { return ft.ArrayDepth > 0 }
func (ft *FieldType) IsPrimitive() bool { return ft.ArrayDepth == 0 && ft.BaseType != "" }
func (ft *FieldType) IsReference() bool { return !ft.IsPrimitive() }

// Slots is the number of local variable slots a value of this type uses.
func (ft *FieldType) Slots() int {
	if ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double") {
		return 2
	}
	return 1
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	if md.ReturnType == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(md.ReturnType.String())
	}
	sb.WriteString(" (")
	for i := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(md.Parameters[i].String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ParameterSlots is the number of local variable slots the parameters use,
// not counting the receiver.
func (md *MethodDescriptor) ParameterSlots() int {
	n := 0
	for i := range md.Parameters {
		n += md.Parameters[i].Slots()
	}
	return n
}

func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, descriptorError(desc, n, "trailing characters")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if desc == "" || desc[0] != '(' {
		return nil, descriptorError(desc, 0, "expected '('")
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, next, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, *ft)
		i = next
	}
	if i >= len(desc) {
		return nil, descriptorError(desc, i, "missing ')'")
	}
	i++
	if i < len(desc) && desc[i] == 'V' {
		i++
	} else {
		ft, next, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.ReturnType = ft
		i = next
	}
	if i != len(desc) {
		return nil, descriptorError(desc, i, "trailing characters")
	}
	return md, nil
}

// parseFieldType parses the field type starting at desc[i] and returns the
// index just past it.
func parseFieldType(desc string, i int) (*FieldType, int, error) {
	ft := &FieldType{}
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if ft.ArrayDepth > 255 {
		return nil, i, descriptorError(desc, i, "more than 255 array dimensions")
	}
	if i >= len(desc) {
		return nil, i, descriptorError(desc, i, "unexpected end")
	}
	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i + 1, nil
	}
	if desc[i] != 'L' {
		return nil, i, descriptorError(desc, i, fmt.Sprintf("unexpected %q", desc[i]))
	}
	end := strings.IndexByte(desc[i:], ';')
	if end <= 1 {
		return nil, i, descriptorError(desc, i, "unterminated class name")
	}
	ft.ClassName = desc[i+1 : i+end]
	return ft, i + end + 1, nil
}

func descriptorError(desc string, at int, reason string) error {
	return fmt.Errorf("%w: %q at %d: %s", ErrMalformedDescriptor, desc, at, reason)
}

// InternalToSourceName turns java/lang/String into java.lang.String.
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
