package classfile

import "fmt"

var errMissingElementValue = fmt.Errorf("%w: missing element value", ErrMalformedAttribute)

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is the value of an annotation element. The concrete type
// follows the tag byte: *ConstElementValue for B C D F I J S Z and s,
// *EnumElementValue for e, *ClassElementValue for c, *AnnotationElementValue
// for @ and *ArrayElementValue for [.
type ElementValue interface {
	ElementTag() byte
	encodeValue(e *encoder)
}

type ConstElementValue struct {
	Tag             byte
	ConstValueIndex uint16
}

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ClassElementValue struct {
	ClassInfoIndex uint16
}

type AnnotationElementValue struct {
	Annotation Annotation
}

type ArrayElementValue struct {
	Values []ElementValue
}

func (v *ConstElementValue) ElementTag() byte      { return v.Tag }
func (v *EnumElementValue) ElementTag() byte       { return 'e' }
func (v *ClassElementValue) ElementTag() byte      { return 'c' }
func (v *AnnotationElementValue) ElementTag() byte { return '@' }
func (v *ArrayElementValue) ElementTag() byte      { return '[' }

// WalkElementValues calls visit for v and every value nested in it, depth
// first. Walking stops at the first error visit returns.
func WalkElementValues(v ElementValue, visit func(ElementValue) error) error {
	if err := visit(v); err != nil {
		return err
	}
	switch v := v.(type) {
	case *ArrayElementValue:
		for _, item := range v.Values {
			if err := WalkElementValues(item, visit); err != nil {
				return err
			}
		}
	case *AnnotationElementValue:
		for _, pair := range v.Annotation.ElementValuePairs {
			if err := WalkElementValues(pair.Value, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func readElementValue(d *decoder) ElementValue {
	tag := d.r.U1()
	if d.r.Err() != nil {
		return nil
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		return &ConstElementValue{Tag: tag, ConstValueIndex: d.r.U2()}
	case 'e':
		return &EnumElementValue{TypeNameIndex: d.r.U2(), ConstNameIndex: d.r.U2()}
	case 'c':
		return &ClassElementValue{ClassInfoIndex: d.r.U2()}
	case '@':
		return &AnnotationElementValue{Annotation: readAnnotation(d)}
	case '[':
		n := d.r.U2()
		if d.r.Err() != nil {
			return nil
		}
		arr := &ArrayElementValue{Values: make([]ElementValue, 0, n)}
		for i := 0; i < int(n) && d.r.Err() == nil; i++ {
			arr.Values = append(arr.Values, readElementValue(d))
		}
		return arr
	}
	d.fail("element value tag %q", tag)
	return nil
}

func writeElementValue(e *encoder, v ElementValue) {
	if v == nil {
		e.w.Fail(errMissingElementValue)
		return
	}
	e.w.U1(v.ElementTag())
	v.encodeValue(e)
}

func (v *ConstElementValue) encodeValue(e *encoder) { e.w.U2(v.ConstValueIndex) }

func (v *EnumElementValue) encodeValue(e *encoder) {
	e.w.U2(v.TypeNameIndex)
	e.w.U2(v.ConstNameIndex)
}

func (v *ClassElementValue) encodeValue(e *encoder)      { e.w.U2(v.ClassInfoIndex) }
func (v *AnnotationElementValue) encodeValue(e *encoder) { writeAnnotation(e, &v.Annotation) }

func (v *ArrayElementValue) encodeValue(e *encoder) {
	e.count(len(v.Values))
	for _, item := range v.Values {
		writeElementValue(e, item)
	}
}

func readAnnotation(d *decoder) Annotation {
	a := Annotation{TypeIndex: d.r.U2()}
	n := d.r.U2()
	if d.r.Err() != nil {
		return a
	}
	a.ElementValuePairs = make([]ElementValuePair, 0, n)
	for i := 0; i < int(n) && d.r.Err() == nil; i++ {
		name := d.r.U2()
		a.ElementValuePairs = append(a.ElementValuePairs, ElementValuePair{
			ElementNameIndex: name,
			Value:            readElementValue(d),
		})
	}
	return a
}

func writeAnnotation(e *encoder, a *Annotation) {
	e.w.U2(a.TypeIndex)
	e.count(len(a.ElementValuePairs))
	for _, p := range a.ElementValuePairs {
		e.w.U2(p.ElementNameIndex)
		writeElementValue(e, p.Value)
	}
}

func readAnnotations(d *decoder) []Annotation {
	n := d.r.U2()
	if d.r.Err() != nil {
		return nil
	}
	as := make([]Annotation, 0, n)
	for i := 0; i < int(n) && d.r.Err() == nil; i++ {
		as = append(as, readAnnotation(d))
	}
	return as
}

func writeAnnotations(e *encoder, as []Annotation) {
	e.count(len(as))
	for i := range as {
		writeAnnotation(e, &as[i])
	}
}

func readParameterAnnotations(d *decoder) [][]Annotation {
	n := d.r.U1()
	if d.r.Err() != nil {
		return nil
	}
	params := make([][]Annotation, 0, n)
	for i := 0; i < int(n) && d.r.Err() == nil; i++ {
		params = append(params, readAnnotations(d))
	}
	return params
}

func writeParameterAnnotations(e *encoder, params [][]Annotation) {
	e.count1(len(params))
	for _, as := range params {
		writeAnnotations(e, as)
	}
}

type RuntimeVisibleAnnotationsAttribute struct {
	Annotations []Annotation
}

func (a *RuntimeVisibleAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeVisibleAnnotations
}

func (a *RuntimeVisibleAnnotationsAttribute) decode(d *decoder) { a.Annotations = readAnnotations(d) }

func (a *RuntimeVisibleAnnotationsAttribute) encode(e *encoder) { writeAnnotations(e, a.Annotations) }

type RuntimeInvisibleAnnotationsAttribute struct {
	Annotations []Annotation
}

func (a *RuntimeInvisibleAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeInvisibleAnnotations
}

func (a *RuntimeInvisibleAnnotationsAttribute) decode(d *decoder) { a.Annotations = readAnnotations(d) }

func (a *RuntimeInvisibleAnnotationsAttribute) encode(e *encoder) { writeAnnotations(e, a.Annotations) }

type RuntimeVisibleParameterAnnotationsAttribute struct {
	ParameterAnnotations [][]Annotation
}

func (a *RuntimeVisibleParameterAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeVisibleParameterAnnotations
}

func (a *RuntimeVisibleParameterAnnotationsAttribute) decode(d *decoder) {
	a.ParameterAnnotations = readParameterAnnotations(d)
}

func (a *RuntimeVisibleParameterAnnotationsAttribute) encode(e *encoder) {
	writeParameterAnnotations(e, a.ParameterAnnotations)
}

type RuntimeInvisibleParameterAnnotationsAttribute struct {
	ParameterAnnotations [][]Annotation
}

func (a *RuntimeInvisibleParameterAnnotationsAttribute) Kind() AttributeKind {
	return AttrRuntimeInvisibleParameterAnnotations
}

func (a *RuntimeInvisibleParameterAnnotationsAttribute) decode(d *decoder) {
	a.ParameterAnnotations = readParameterAnnotations(d)
}

func (a *RuntimeInvisibleParameterAnnotationsAttribute) encode(e *encoder) {
	writeParameterAnnotations(e, a.ParameterAnnotations)
}

// AnnotationDefaultAttribute holds the default of an annotation interface
// element. Its body is a single element value, tag byte first.
type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func (a *AnnotationDefaultAttribute) Kind() AttributeKind { return AttrAnnotationDefault }
func (a *AnnotationDefaultAttribute) decode(d *decoder)   { a.DefaultValue = readElementValue(d) }
func (a *AnnotationDefaultAttribute) encode(e *encoder)   { writeElementValue(e, a.DefaultValue) }
