package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/jclass/classfile"
	"github.com/dhamidi/jclass/classfile/bytecode"
)

// Disassemble writes the decoded instructions of every method whose name is
// method, or of all methods when method is empty.
func Disassemble(w io.Writer, cf *classfile.ClassFile, method string) error {
	cp := cf.ConstantPool
	found := false
	for i := range cf.Methods {
		m := &cf.Methods[i]
		name := m.Name(cp)
		if method != "" && name != method {
			continue
		}
		found = true

		fmt.Fprintf(w, "%s%s\t%s\n", name, m.Descriptor(cp), list(m.FlagNames()))
		code := m.Code()
		if code == nil {
			fmt.Fprintln(w, "  no code")
			continue
		}
		instrs, err := code.Instructions()
		if err != nil {
			return fmt.Errorf("%s%s: %w", name, m.Descriptor(cp), err)
		}
		fmt.Fprintf(w, "  stack=%d locals=%d length=%d\n", code.MaxStack, code.MaxLocals, len(code.Code))
		for _, in := range instrs {
			line := strings.ReplaceAll(in.String(), "\n", "\n    ")
			if ref := constantRef(in); ref != 0 {
				if c, err := cp.Get(ref); err == nil {
					line += "\t// " + c.Tag().String() + " " + resolved(DescribeConstant(cp, c))
				}
			}
			fmt.Fprintf(w, "    %s\n", line)
		}
		for _, h := range code.ExceptionTable {
			catch := "any"
			if h.CatchType != 0 {
				catch = cp.GetClassName(h.CatchType)
			}
			fmt.Fprintf(w, "  catch %d-%d -> %d %s\n", h.StartPC, h.EndPC, h.HandlerPC, catch)
		}
	}
	if !found && method != "" {
		return fmt.Errorf("method %q not found in %s", method, cf.ClassName())
	}
	return nil
}

// constantRef returns the constant pool index an instruction refers to, or 0.
func constantRef(in bytecode.Instruction) uint16 {
	switch in := in.(type) {
	case *bytecode.ImmediateByteInstruction:
		if in.Opcode == bytecode.OpLdc {
			return in.Value
		}
	case *bytecode.ImmediateShortInstruction:
		if in.Opcode != bytecode.OpSipush {
			return in.Value
		}
	case *bytecode.InvokeInterfaceInstruction:
		return in.Index
	case *bytecode.InvokeDynamicInstruction:
		return in.Index
	case *bytecode.MultiANewArrayInstruction:
		return in.Index
	}
	return 0
}

// resolved drops the "#n // " operand prefix of a constant description.
func resolved(desc string) string {
	if _, after, ok := strings.Cut(desc, "// "); ok {
		return after
	}
	return desc
}
