package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jclass/classfile/bytecode"
)

// roundTrip serializes b, parses the result and checks that writing it again
// gives the same bytes.
func roundTrip(t *testing.T, b *classBuilder) *ClassFile {
	t.Helper()
	data := b.bytes()
	cf, err := ParseBytes(data)
	require.NoError(t, err)
	out, err := cf.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, out)
	return cf
}

func TestAnnotationDefault(t *testing.T) {
	b := newClassBuilder(t, "demo/Config", "java/lang/Object")
	b.cf.AccessFlags = AccPublic | AccInterface | AccAbstract | AccAnnotation
	cp := b.cf.ConstantPool

	def := &ArrayElementValue{Values: []ElementValue{
		&ConstElementValue{Tag: 's', ConstValueIndex: b.utf8("a")},
		&EnumElementValue{TypeNameIndex: b.utf8("Ldemo/Mode;"), ConstNameIndex: b.utf8("FAST")},
		&ClassElementValue{ClassInfoIndex: b.utf8("Ljava/lang/String;")},
		&AnnotationElementValue{Annotation: Annotation{
			TypeIndex: b.utf8("Ldemo/Inner;"),
			ElementValuePairs: []ElementValuePair{{
				ElementNameIndex: b.utf8("value"),
				Value:            &ConstElementValue{Tag: 'I', ConstValueIndex: b.must(cp.AddInteger(3))},
			}},
		}},
	}}
	b.method(AccPublic|AccAbstract, "names", "()[Ljava/lang/Object;", b.attr(&AnnotationDefaultAttribute{DefaultValue: def}))

	cf := roundTrip(t, b)
	assert.True(t, cf.IsAnnotation())

	ad, ok := AttributeOf[*AnnotationDefaultAttribute](cf.Methods[0].Attributes)
	require.True(t, ok)
	arr, ok := ad.DefaultValue.(*ArrayElementValue)
	require.True(t, ok)
	require.Len(t, arr.Values, 4)

	var tags []byte
	require.NoError(t, WalkElementValues(ad.DefaultValue, func(v ElementValue) error {
		tags = append(tags, v.ElementTag())
		return nil
	}))
	assert.Equal(t, []byte{'[', 's', 'e', 'c', '@', 'I'}, tags)

	enum := arr.Values[1].(*EnumElementValue)
	assert.Equal(t, "FAST", cf.ConstantPool.GetUtf8(enum.ConstNameIndex))
}

func TestDeeplyNestedElementValues(t *testing.T) {
	b := newClassBuilder(t, "demo/Deep", "java/lang/Object")
	var v ElementValue = &ConstElementValue{Tag: 'Z', ConstValueIndex: b.must(b.cf.ConstantPool.AddInteger(1))}
	const depth = 500
	for range depth {
		v = &ArrayElementValue{Values: []ElementValue{v}}
	}
	b.method(AccPublic|AccAbstract, "deep", "()[Z", b.attr(&AnnotationDefaultAttribute{DefaultValue: v}))

	cf := roundTrip(t, b)
	ad, ok := AttributeOf[*AnnotationDefaultAttribute](cf.Methods[0].Attributes)
	require.True(t, ok)

	n := 0
	require.NoError(t, WalkElementValues(ad.DefaultValue, func(ElementValue) error {
		n++
		return nil
	}))
	assert.Equal(t, depth+1, n)
}

func TestRuntimeAnnotations(t *testing.T) {
	b := sampleClass(t)
	deprecated := Annotation{TypeIndex: b.utf8("Ljava/lang/Deprecated;")}
	b.classAttr(&RuntimeVisibleAnnotationsAttribute{Annotations: []Annotation{deprecated}})
	b.classAttr(&RuntimeInvisibleAnnotationsAttribute{Annotations: []Annotation{{TypeIndex: b.utf8("Ldemo/Internal;")}}})
	b.cf.Methods[1].Attributes = append(b.cf.Methods[1].Attributes,
		b.attr(&RuntimeVisibleParameterAnnotationsAttribute{ParameterAnnotations: [][]Annotation{{deprecated}}}),
		b.attr(&RuntimeInvisibleParameterAnnotationsAttribute{ParameterAnnotations: [][]Annotation{{}}}),
	)

	cf := roundTrip(t, b)
	rva, ok := AttributeOf[*RuntimeVisibleAnnotationsAttribute](cf.Attributes)
	require.True(t, ok)
	require.Len(t, rva.Annotations, 1)
	assert.Equal(t, "Ljava/lang/Deprecated;", cf.ConstantPool.GetUtf8(rva.Annotations[0].TypeIndex))

	rvpa, ok := AttributeOf[*RuntimeVisibleParameterAnnotationsAttribute](cf.Methods[1].Attributes)
	require.True(t, ok)
	require.Len(t, rvpa.ParameterAnnotations, 1)
	assert.Len(t, rvpa.ParameterAnnotations[0], 1)
}

func TestMissingElementValue(t *testing.T) {
	cp := NewConstantPool()
	_, err := NewAttribute(cp, &AnnotationDefaultAttribute{})
	assert.ErrorIs(t, err, ErrMalformedAttribute)
}

func TestTypeAnnotations(t *testing.T) {
	b := sampleClass(t)
	ann := b.utf8("Ldemo/NonNull;")
	targets := []TypeAnnotation{
		{TargetType: 0x00, TargetInfo: &TypeParameterTarget{TypeParameterIndex: 1}},
		{TargetType: 0x10, TargetInfo: &SupertypeTarget{SupertypeIndex: 0xFFFF}},
		{TargetType: 0x11, TargetInfo: &TypeParameterBoundTarget{TypeParameterIndex: 0, BoundIndex: 1}},
		{TargetType: 0x13, TargetInfo: &EmptyTarget{}},
		{TargetType: 0x16, TargetInfo: &FormalParameterTarget{FormalParameterIndex: 2}},
		{TargetType: 0x17, TargetInfo: &ThrowsTarget{ThrowsTypeIndex: 0}},
		{TargetType: 0x40, TargetInfo: &LocalVarTarget{Table: []LocalVarTargetEntry{{StartPC: 0, Length: 4, Index: 1}}}},
		{TargetType: 0x42, TargetInfo: &CatchTarget{ExceptionTableIndex: 0}},
		{TargetType: 0x44, TargetInfo: &OffsetTarget{Offset: 7}},
		{
			TargetType: 0x47,
			TargetInfo: &TypeArgumentTarget{Offset: 3, TypeArgumentIndex: 0},
			TargetPath: TypePath{Path: []TypePathEntry{{TypePathKind: 0}, {TypePathKind: 3, TypeArgumentIndex: 1}}},
		},
	}
	for i := range targets {
		targets[i].TypeIndex = ann
		targets[i].ElementValuePairs = []ElementValuePair{}
		if targets[i].TargetPath.Path == nil {
			targets[i].TargetPath.Path = []TypePathEntry{}
		}
	}
	b.classAttr(&RuntimeVisibleTypeAnnotationsAttribute{Annotations: targets})
	b.classAttr(&RuntimeInvisibleTypeAnnotationsAttribute{Annotations: targets[:1]})

	cf := roundTrip(t, b)
	rvta, ok := AttributeOf[*RuntimeVisibleTypeAnnotationsAttribute](cf.Attributes)
	require.True(t, ok)
	assert.Equal(t, targets, rvta.Annotations)
}

func TestTypeAnnotationTargetMismatch(t *testing.T) {
	cp := NewConstantPool()
	_, err := NewAttribute(cp, &RuntimeVisibleTypeAnnotationsAttribute{Annotations: []TypeAnnotation{
		{TargetType: 0x10, TargetInfo: &EmptyTarget{}},
	}})
	assert.ErrorIs(t, err, ErrMalformedAttribute)
}

func TestStackMapTable(t *testing.T) {
	b := sampleClass(t)
	obj := b.class("java/lang/Object")
	frames := []StackMapFrame{
		{FrameType: 5, OffsetDelta: 5},
		{FrameType: 64 + 3, OffsetDelta: 3, Stack: []VerificationTypeInfo{{Tag: ItemInteger}}},
		{FrameType: 247, OffsetDelta: 300, Stack: []VerificationTypeInfo{{Tag: ItemObject, CPoolIndex: obj}}},
		{FrameType: 249, OffsetDelta: 2},
		{FrameType: 251, OffsetDelta: 9},
		{FrameType: 253, OffsetDelta: 1, Locals: []VerificationTypeInfo{{Tag: ItemLong}, {Tag: ItemUninitialized, Offset: 12}}},
		{
			FrameType:   255,
			OffsetDelta: 0,
			Locals:      []VerificationTypeInfo{{Tag: ItemUninitializedThis}, {Tag: ItemTop}},
			Stack:       []VerificationTypeInfo{{Tag: ItemNull}, {Tag: ItemFloat}, {Tag: ItemDouble}},
		},
	}
	code := b.code(2, 3, []bytecode.Instruction{
		bytecode.NewSimple(bytecode.OpIconst0),
		bytecode.NewSimple(bytecode.OpIreturn),
	}, b.attr(&StackMapTableAttribute{Entries: frames}))
	b.method(AccStatic, "frames", "()I", code)

	cf := roundTrip(t, b)
	smt, ok := AttributeOf[*StackMapTableAttribute](cf.GetMethod("frames", "()I").Code().Attributes)
	require.True(t, ok)
	assert.Equal(t, frames, smt.Entries)
}

func TestStackMapFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame StackMapFrame
	}{
		{"reserved type", StackMapFrame{FrameType: 200}},
		{"same frame delta mismatch", StackMapFrame{FrameType: 4, OffsetDelta: 5}},
		{"append frame local count", StackMapFrame{FrameType: 252}},
		{"extended frame without stack item", StackMapFrame{FrameType: 247}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAttribute(NewConstantPool(), &StackMapTableAttribute{Entries: []StackMapFrame{tt.frame}})
			assert.ErrorIs(t, err, ErrMalformedAttribute)
		})
	}
}

func TestModuleAttributes(t *testing.T) {
	b := newClassBuilder(t, "module-info", "")
	b.cf.AccessFlags = AccModule
	cp := b.cf.ConstantPool
	mod := func(name string) uint16 { return b.must(cp.AddModule(name)) }
	pkg := func(name string) uint16 { return b.must(cp.AddPackage(name)) }

	module := &ModuleAttribute{
		ModuleNameIndex:    mod("demo.app"),
		ModuleFlags:        AccOpen,
		ModuleVersionIndex: b.utf8("1.0"),
		Requires: []ModuleRequires{
			{RequiresIndex: mod("java.base"), RequiresFlags: AccMandated},
			{RequiresIndex: mod("demo.lib"), RequiresFlags: AccTransitive | AccStaticPhase},
		},
		Exports: []ModuleExports{{ExportsIndex: pkg("demo/api"), ExportsToIndex: []uint16{}}},
		Opens:   []ModuleOpens{{OpensIndex: pkg("demo/impl"), OpensToIndex: []uint16{mod("demo.lib")}}},
		Uses:    []uint16{b.class("demo/api/Plugin")},
		Provides: []ModuleProvides{{
			ProvidesIndex:     b.class("demo/api/Plugin"),
			ProvidesWithIndex: []uint16{b.class("demo/impl/Default")},
		}},
	}
	b.classAttr(module)
	b.classAttr(&ModulePackagesAttribute{PackageIndex: []uint16{pkg("demo/api"), pkg("demo/impl")}})
	b.classAttr(&ModuleMainClassAttribute{MainClassIndex: b.class("demo/impl/Main")})
	b.classAttr(&ModuleTargetAttribute{TargetPlatformIndex: b.utf8("linux-amd64")})
	b.classAttr(&ModuleHashesAttribute{
		AlgorithmIndex: b.utf8("SHA-256"),
		Hashes:         []ModuleHash{{ModuleNameIndex: mod("demo.lib"), Hash: []byte{1, 2, 3, 4}}},
	})
	b.classAttr(&ModuleResolutionAttribute{ResolutionFlags: 0x0001})

	cf := roundTrip(t, b)
	assert.True(t, cf.IsModule())
	assert.False(t, cf.IsClass())
	assert.Equal(t, "", cf.SuperClassName())

	got, ok := AttributeOf[*ModuleAttribute](cf.Attributes)
	require.True(t, ok)
	assert.Equal(t, module, got)
	assert.Equal(t, "demo.app", cf.ConstantPool.GetModuleName(got.ModuleNameIndex))
	assert.Equal(t, []string{"transitive", "static_phase"}, got.Requires[1].RequiresFlags.Names(FlagsRequires))

	hashes, ok := AttributeOf[*ModuleHashesAttribute](cf.Attributes)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, hashes.Hashes[0].Hash)
}

func TestRecordAttribute(t *testing.T) {
	b := newClassBuilder(t, "demo/Point", "java/lang/Record")
	b.cf.AccessFlags = AccPublic | AccFinal | AccSuper
	record := &RecordAttribute{Components: []RecordComponentInfo{
		{NameIndex: b.utf8("x"), DescriptorIndex: b.utf8("I")},
		{
			NameIndex:       b.utf8("tags"),
			DescriptorIndex: b.utf8("Ljava/util/List;"),
			Attributes:      []AttributeInfo{b.attr(&SignatureAttribute{SignatureIndex: b.utf8("Ljava/util/List<Ljava/lang/String;>;")})},
		},
	}}
	b.classAttr(record)

	cf := roundTrip(t, b)
	got, ok := AttributeOf[*RecordAttribute](cf.Attributes)
	require.True(t, ok)
	require.Len(t, got.Components, 2)
	assert.Empty(t, got.Components[0].Attributes)
	sig, ok := AttributeOf[*SignatureAttribute](got.Components[1].Attributes)
	require.True(t, ok)
	assert.Equal(t, "Ljava/util/List<Ljava/lang/String;>;", cf.ConstantPool.GetUtf8(sig.SignatureIndex))
}

func TestClassLevelAttributes(t *testing.T) {
	b := sampleClass(t)
	outer := b.class("demo/Sample")
	inner := b.class("demo/Sample$Node")
	handle := b.must(b.cf.ConstantPool.AddMethodHandle(RefInvokeStatic,
		b.must(b.cf.ConstantPool.AddMethodref("java/lang/invoke/LambdaMetafactory", "metafactory", "()V"))))

	b.classAttr(&InnerClassesAttribute{Classes: []InnerClassEntry{{
		InnerClassInfoIndex:   inner,
		OuterClassInfoIndex:   outer,
		InnerNameIndex:        b.utf8("Node"),
		InnerClassAccessFlags: AccPrivate | AccStatic,
	}}})
	b.classAttr(&NestMembersAttribute{Classes: []uint16{inner}})
	b.classAttr(&PermittedSubclassesAttribute{Classes: []uint16{inner}})
	b.classAttr(&EnclosingMethodAttribute{ClassIndex: outer})
	b.classAttr(&BootstrapMethodsAttribute{BootstrapMethods: []BootstrapMethod{{BootstrapMethodRef: handle, BootstrapArguments: []uint16{handle}}}})
	b.classAttr(&SourceDebugExtensionAttribute{DebugExtension: []byte("SMAP\nSample.java\n")})
	b.classAttr(&SyntheticAttribute{})
	b.classAttr(&DeprecatedAttribute{})
	b.classAttr(&SignatureAttribute{SignatureIndex: b.utf8("Ljava/lang/Object;")})
	b.cf.Methods[1].Attributes = append(b.cf.Methods[1].Attributes,
		b.attr(&MethodParametersAttribute{Parameters: []MethodParameter{{NameIndex: b.utf8("n"), AccessFlags: AccFinal}}}))
	b.cf.Fields[1].Attributes = append(b.cf.Fields[1].Attributes,
		b.attr(&SignatureAttribute{SignatureIndex: b.utf8("TT;")}))

	cf := roundTrip(t, b)

	ic, ok := AttributeOf[*InnerClassesAttribute](cf.Attributes)
	require.True(t, ok)
	assert.Equal(t, []string{"private", "static"}, ic.Classes[0].InnerClassAccessFlags.Names(FlagsInnerClass))

	sde, ok := AttributeOf[*SourceDebugExtensionAttribute](cf.Attributes)
	require.True(t, ok)
	assert.Equal(t, "SMAP\nSample.java\n", string(sde.DebugExtension))

	mp, ok := AttributeOf[*MethodParametersAttribute](cf.Methods[1].Attributes)
	require.True(t, ok)
	assert.Equal(t, []string{"final"}, mp.Parameters[0].AccessFlags.Names(FlagsParameter))

	assert.Equal(t, "TT;", cf.Fields[1].Signature(cf.ConstantPool))
	assert.NotNil(t, cf.FindAttribute(AttrDeprecated))
	assert.Nil(t, cf.FindAttribute(AttrNestHost))
}

func TestCodeAttributeExceptionTable(t *testing.T) {
	b := sampleClass(t)
	catchType := b.class("java/lang/Exception")
	code := &CodeAttribute{
		MaxStack:  1,
		MaxLocals: 1,
		ExceptionTable: []ExceptionTableEntry{
			{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: catchType},
			{StartPC: 0, EndPC: 1, HandlerPC: 2},
		},
	}
	require.NoError(t, code.SetInstructions([]bytecode.Instruction{
		bytecode.NewSimple(bytecode.OpIconst0),
		bytecode.NewSimple(bytecode.OpIreturn),
		bytecode.NewSimple(bytecode.OpAstore0),
		bytecode.NewSimple(bytecode.OpIconst1),
		bytecode.NewSimple(bytecode.OpIreturn),
	}))
	b.method(AccStatic, "guarded", "()I", b.attr(code))

	cf := roundTrip(t, b)
	got := cf.GetMethod("guarded", "()I").Code()
	require.NotNil(t, got)
	assert.Equal(t, code.ExceptionTable, got.ExceptionTable)
	assert.Equal(t, []byte{0x03, 0xac, 0x4b, 0x04, 0xac}, got.Code)
}

func TestNestedAttributeLengthError(t *testing.T) {
	b := sampleClass(t)
	data := b.bytes()

	cf, err := ParseBytes(data)
	require.NoError(t, err)
	code := cf.GetMethod("<init>", "()V").Code()
	require.NotNil(t, code)

	// Declare one extra byte in the LineNumberTable nested in the Code
	// attribute and append that byte to the Code body.
	lnt := &code.Attributes[0]
	lnt.Body = &UnknownAttribute{Name: "LineNumberTable", Data: []byte{0, 1, 0, 0, 0, 3, 0xff}}
	out, err := cf.Bytes()
	require.NoError(t, err)

	_, err = ParseBytes(out)
	require.ErrorIs(t, err, ErrAttributeLength)
	var lerr *AttributeLengthError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "LineNumberTable", lerr.Name)
	assert.Equal(t, int64(6), lerr.Consumed)
}
