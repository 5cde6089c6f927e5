package format

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/dhamidi/jclass/classfile"
)

// CBOREncoder writes the Document in canonical CBOR, so equal classes
// produce equal bytes.
type CBOREncoder struct {
	w    io.Writer
	mode cbor.EncMode
}

func NewCBOREncoder(w io.Writer) (*CBOREncoder, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoding mode: %w", err)
	}
	return &CBOREncoder{w: w, mode: mode}, nil
}

func (e *CBOREncoder) Encode(cf *classfile.ClassFile) error {
	data, err := e.MarshalBinary(cf)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

func (e *CBOREncoder) MarshalBinary(cf *classfile.ClassFile) ([]byte, error) {
	return e.mode.Marshal(NewDocument(cf))
}

// DecodeCBOR reads a Document written by CBOREncoder.
func DecodeCBOR(data []byte) (*Document, error) {
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
