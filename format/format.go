// Package format renders parsed class files as JSON, CBOR, tab separated
// lines or a bytecode listing.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/jclass/classfile"
)

type Encoder interface {
	Encode(cf *classfile.ClassFile) error
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"line", "json", "cbor"}

func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "line", "":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "cbor":
		return NewCBOREncoder(w)
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Formats)
	}
}
