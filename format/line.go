package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/jclass/classfile"
)

// LineEncoder writes one tab separated record per class, member and class
// attribute. Empty lists are written as "-".
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	doc := NewDocument(e.class)

	fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", doc.Kind, doc.Name, list(doc.Flags), doc.Version)
	if doc.SuperClass != "" {
		fmt.Fprintf(&sb, "super\t%s\n", doc.SuperClass)
	}
	for _, iface := range doc.Interfaces {
		fmt.Fprintf(&sb, "implements\t%s\n", iface)
	}

	for _, f := range doc.Fields {
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n", f.Name, f.Descriptor, list(f.Flags), list(f.Attributes))
	}

	for _, m := range doc.Methods {
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\n", m.Name, m.Descriptor, list(m.Flags), list(m.Attributes))
	}

	for _, a := range doc.Attributes {
		fmt.Fprintf(&sb, "attribute\t%s\n", a)
	}

	return []byte(sb.String()), nil
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

// WriteConstants lists the constant pool, one entry per line.
func WriteConstants(w io.Writer, cp *classfile.ConstantPool) error {
	for i, c := range cp.All() {
		if _, err := fmt.Fprintf(w, "%6s = %-18s %s\n", fmt.Sprintf("#%d", i), c.Tag(), DescribeConstant(cp, c)); err != nil {
			return err
		}
	}
	return nil
}
